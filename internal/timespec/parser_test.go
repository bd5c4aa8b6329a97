package timespec

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAt(t *testing.T) {
	now := time.Date(2026, 8, 21, 12, 0, 0, 0, time.UTC)

	t.Run("RFC3339 timestamp", func(t *testing.T) {
		got, err := parseAt("2026-08-21T13:00:00Z", now)
		require.NoError(t, err)
		assert.Equal(t, time.Date(2026, 8, 21, 13, 0, 0, 0, time.UTC), got)
	})

	t.Run("duration is relative to now", func(t *testing.T) {
		got, err := parseAt("1h30m", now)
		require.NoError(t, err)
		assert.Equal(t, now.Add(-90*time.Minute), got)
	})

	t.Run("empty spec", func(t *testing.T) {
		_, err := parseAt("", now)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "empty time specification")
	})

	t.Run("garbage spec", func(t *testing.T) {
		_, err := parseAt("yesterday", now)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "invalid time specification")
	})
}

func TestParseRange(t *testing.T) {
	t.Run("both bounds empty", func(t *testing.T) {
		since, until, err := ParseRange("", "")
		require.NoError(t, err)
		assert.True(t, since.IsZero())
		assert.True(t, until.IsZero())
	})

	t.Run("since only", func(t *testing.T) {
		since, until, err := ParseRange("2026-08-20T00:00:00Z", "")
		require.NoError(t, err)
		assert.False(t, since.IsZero())
		assert.True(t, until.IsZero())
	})

	t.Run("since after until is rejected", func(t *testing.T) {
		_, _, err := ParseRange("2026-08-21T13:00:00Z", "2026-08-21T12:00:00Z")
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "--since must be before --until")
	})

	t.Run("invalid since is wrapped", func(t *testing.T) {
		_, _, err := ParseRange("nope", "")
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "invalid --since")
	})
}
