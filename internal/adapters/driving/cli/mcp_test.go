package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMCPCmd_Registered(t *testing.T) {
	found := false
	for _, cmd := range mcpCmd.Commands() {
		if cmd.Use == "serve" {
			found = true
		}
	}
	assert.True(t, found, "serve should be registered under mcp")
}

func TestMCPServeCmd_PortFlag(t *testing.T) {
	flag := mcpServeCmd.Flags().Lookup("port")
	require.NotNil(t, flag)
	assert.Equal(t, "p", flag.Shorthand)
	assert.Equal(t, "0", flag.DefValue)
}

func TestMCPServeCmd_HostFlag(t *testing.T) {
	flag := mcpServeCmd.Flags().Lookup("host")
	require.NotNil(t, flag)
	assert.Equal(t, "localhost", flag.DefValue)
}

func TestMCPServeCmd_LongDescription(t *testing.T) {
	assert.Contains(t, mcpServeCmd.Long, "analyze_document")
	assert.Contains(t, mcpServeCmd.Long, "insight://analyses")
	assert.Contains(t, mcpServeCmd.Long, "insight mcp serve --port 8080")
}
