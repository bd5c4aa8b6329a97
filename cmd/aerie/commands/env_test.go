package commands

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dyluth/aerie/internal/instance"
)

// chdirTemp moves the test into a fresh directory so resolveSettings
// sees exactly the aerie.yml the test writes, or none at all.
func chdirTemp(t *testing.T) string {
	t.Helper()

	oldWd, err := os.Getwd()
	require.NoError(t, err)

	tmpDir := t.TempDir()
	require.NoError(t, os.Chdir(tmpDir))
	t.Cleanup(func() {
		if err := os.Chdir(oldWd); err != nil {
			t.Errorf("failed to restore working directory: %v", err)
		}
	})

	return tmpDir
}

// clearEnv blanks the aerie environment overrides so the host
// machine's settings cannot leak into the test.
func clearEnv(t *testing.T) {
	t.Helper()
	t.Setenv("AERIE_INSTANCE_NAME", "")
	t.Setenv("AERIE_REDIS_URL", "")
}

const validConfig = `version: "1.0"
instance: trading-floor
overseer:
  name: Overseer
redis:
  url: redis://redis.internal:6400
`

func writeConfig(t *testing.T, dir, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "aerie.yml"), []byte(content), 0644))
}

func TestResolveSettings_Defaults(t *testing.T) {
	chdirTemp(t)
	clearEnv(t)

	name, redisURL, err := resolveSettings("")
	require.NoError(t, err)
	assert.Equal(t, instance.DefaultName, name)
	assert.Equal(t, instance.DefaultRedisURL, redisURL)
}

func TestResolveSettings_ConfigFile(t *testing.T) {
	dir := chdirTemp(t)
	clearEnv(t)
	writeConfig(t, dir, validConfig)

	name, redisURL, err := resolveSettings("")
	require.NoError(t, err)
	assert.Equal(t, "trading-floor", name)
	assert.Equal(t, "redis://redis.internal:6400", redisURL)
}

func TestResolveSettings_EnvOverridesConfig(t *testing.T) {
	dir := chdirTemp(t)
	clearEnv(t)
	writeConfig(t, dir, validConfig)
	t.Setenv("AERIE_INSTANCE_NAME", "staging")
	t.Setenv("AERIE_REDIS_URL", "redis://staging.internal:6379")

	name, redisURL, err := resolveSettings("")
	require.NoError(t, err)
	assert.Equal(t, "staging", name)
	assert.Equal(t, "redis://staging.internal:6379", redisURL)
}

func TestResolveSettings_FlagWinsOverEnvAndConfig(t *testing.T) {
	dir := chdirTemp(t)
	clearEnv(t)
	writeConfig(t, dir, validConfig)
	t.Setenv("AERIE_INSTANCE_NAME", "staging")

	name, _, err := resolveSettings("ops")
	require.NoError(t, err)
	assert.Equal(t, "ops", name)
}

func TestResolveSettings_InvalidFlagName(t *testing.T) {
	chdirTemp(t)
	clearEnv(t)

	_, _, err := resolveSettings("Not_Valid")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid instance name")
}

func TestResolveSettings_BrokenConfigFile(t *testing.T) {
	dir := chdirTemp(t)
	clearEnv(t)
	writeConfig(t, dir, "{not valid yaml")

	_, _, err := resolveSettings("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid configuration")
}

func TestConnectStream_Connects(t *testing.T) {
	chdirTemp(t)
	clearEnv(t)

	mr := miniredis.RunT(t)
	t.Setenv("AERIE_REDIS_URL", "redis://"+mr.Addr())

	stream, err := connectStream(context.Background(), "")
	require.NoError(t, err)
	defer stream.Close()

	assert.Equal(t, instance.DefaultName, stream.Instance())
}

func TestConnectStream_Unreachable(t *testing.T) {
	chdirTemp(t)
	clearEnv(t)
	t.Setenv("AERIE_REDIS_URL", "redis://127.0.0.1:1")

	_, err := connectStream(context.Background(), "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Redis connection failed")
}

func TestConnectStore_BoundToRequestedInstance(t *testing.T) {
	chdirTemp(t)
	clearEnv(t)

	mr := miniredis.RunT(t)
	t.Setenv("AERIE_REDIS_URL", "redis://"+mr.Addr())

	store, name, err := connectStore(context.Background(), "ops")
	require.NoError(t, err)
	defer store.Close()

	assert.Equal(t, "ops", name)
}
