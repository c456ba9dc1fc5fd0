package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServeCmd_Use(t *testing.T) {
	assert.Equal(t, "serve", serveCmd.Use)
	assert.True(t, needsEngine(serveCmd))
}

func TestServeCmd_NotConfigured(t *testing.T) {
	clearServices()

	_, err := executeCommand(t, "", "serve", "--addr", "127.0.0.1:0")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "document service is required")
}
