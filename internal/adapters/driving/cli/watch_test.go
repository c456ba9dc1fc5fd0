package cli

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatchCmd_Flags(t *testing.T) {
	assert.Equal(t, "watch [dir]", watchCmd.Use)
	assert.True(t, needsEngine(watchCmd))
	require.NotNil(t, watchCmd.Flags().Lookup("scan"))
	require.NotNil(t, watchCmd.Flags().Lookup("debounce-ms"))
}

func TestWatchCmd_Errors(t *testing.T) {
	t.Run("not configured", func(t *testing.T) {
		clearServices()

		_, err := executeCommand(t, "", "watch", t.TempDir())

		require.Error(t, err)
		assert.Contains(t, err.Error(), "document service is required")
	})

	t.Run("missing directory", func(t *testing.T) {
		setupTestServices(t)

		_, err := executeCommand(t, "", "watch", filepath.Join(t.TempDir(), "missing"))

		assert.Error(t, err)
	})

	t.Run("requires directory argument", func(t *testing.T) {
		setupTestServices(t)

		_, err := executeCommand(t, "", "watch")

		assert.Error(t, err)
	})
}
