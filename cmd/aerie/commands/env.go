package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/redis/go-redis/v9"

	"github.com/dyluth/aerie/internal/config"
	"github.com/dyluth/aerie/internal/eventstream"
	"github.com/dyluth/aerie/internal/instance"
	"github.com/dyluth/aerie/internal/printer"
	"github.com/dyluth/aerie/internal/snapshot"
)

// resolveSettings determines the effective instance name and Redis URL.
// Precedence for the name: --name flag, AERIE_INSTANCE_NAME, aerie.yml,
// then "default". The URL follows AERIE_REDIS_URL, aerie.yml, default.
// A missing aerie.yml is fine; a broken one is an error.
func resolveSettings(flagInstance string) (instanceName, redisURL string, err error) {
	cfgInstance := ""
	cfgRedisURL := ""

	if _, statErr := os.Stat(config.DefaultFileName); statErr == nil {
		cfg, loadErr := config.Load(config.DefaultFileName)
		if loadErr != nil {
			return "", "", printer.Error(
				"invalid configuration",
				fmt.Sprintf("Failed to load %s: %v", config.DefaultFileName, loadErr),
				"Fix the file, or re-scaffold it with:\n  aerie init --force",
			)
		}
		cfgInstance = cfg.Instance
		cfgRedisURL = cfg.Redis.URL
	}

	name := flagInstance
	if name == "" {
		name = instance.Name(cfgInstance)
	} else if err := instance.ValidateName(name); err != nil {
		return "", "", printer.Error(
			"invalid instance name",
			err.Error(),
			"Instance names are DNS labels: lowercase letters, digits, and hyphens.",
		)
	}

	return name, instance.RedisURL(cfgRedisURL), nil
}

// connectStream resolves settings and returns a verified event stream.
func connectStream(ctx context.Context, flagInstance string) (*eventstream.Stream, error) {
	name, redisURL, err := resolveSettings(flagInstance)
	if err != nil {
		return nil, err
	}

	redisOpts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	stream, err := eventstream.New(redisOpts, name)
	if err != nil {
		return nil, fmt.Errorf("failed to create event stream: %w", err)
	}

	if err := stream.Ping(ctx); err != nil {
		stream.Close()
		return nil, printer.Error(
			"Redis connection failed",
			fmt.Sprintf("Could not connect to Redis at %s", redisURL),
			"Check the Redis server is running and reachable.",
			"Point aerie elsewhere with AERIE_REDIS_URL or redis.url in aerie.yml.",
		)
	}

	return stream, nil
}

// connectStore resolves settings and returns a verified snapshot store
// plus the instance name it is bound to.
func connectStore(ctx context.Context, flagInstance string) (*snapshot.Store, string, error) {
	name, redisURL, err := resolveSettings(flagInstance)
	if err != nil {
		return nil, "", err
	}

	redisOpts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, "", fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	store, err := snapshot.NewStore(redisOpts, name)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create snapshot store: %w", err)
	}

	if err := store.Ping(ctx); err != nil {
		store.Close()
		return nil, "", printer.Error(
			"Redis connection failed",
			fmt.Sprintf("Could not connect to Redis at %s", redisURL),
			"Check the Redis server is running and reachable.",
			"Point aerie elsewhere with AERIE_REDIS_URL or redis.url in aerie.yml.",
		)
	}

	return store, name, nil
}
