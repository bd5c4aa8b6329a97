package printer

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestError(t *testing.T) {
	t.Run("returns error with title", func(t *testing.T) {
		err := Error("Test Error", "This is a test error")
		require.Error(t, err)
		require.Equal(t, "Test Error", err.Error())
	})

	t.Run("returns error with title when including a suggestion", func(t *testing.T) {
		err := Error("Test Error", "Explanation", "Try this fix")
		require.Error(t, err)
		require.Equal(t, "Test Error", err.Error())
	})

	t.Run("returns error with title for multiple suggestions", func(t *testing.T) {
		err := Error("Test Error", "Explanation",
			"First option",
			"Second option",
		)
		require.Error(t, err)
		require.Equal(t, "Test Error", err.Error())
	})

	t.Run("empty explanation is allowed", func(t *testing.T) {
		err := Error("Test Error", "")
		require.Error(t, err)
		require.Equal(t, "Test Error", err.Error())
	})
}

// Note: Error prints formatted output to stderr with colors. The error
// object returned only contains the title for Cobra's error handling.
// This is intentional to avoid duplicate output while providing rich
// formatted errors.
