package instance

import "os"

// DefaultRedisURL is used when neither configuration nor environment
// names a Redis server.
const DefaultRedisURL = "redis://localhost:6379"

// RedisURL resolves the Redis connection URL for the current process.
// Precedence: the AERIE_REDIS_URL environment variable, then the
// configured value, then DefaultRedisURL.
func RedisURL(configured string) string {
	if env := os.Getenv("AERIE_REDIS_URL"); env != "" {
		return env
	}
	if configured != "" {
		return configured
	}
	return DefaultRedisURL
}
