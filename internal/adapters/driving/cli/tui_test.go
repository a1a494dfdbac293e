package cli

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/insight/internal/adapters/driving/tui"
)

func TestBrowseCmd_Exists(t *testing.T) {
	found := false
	for _, cmd := range rootCmd.Commands() {
		if cmd.Name() == "browse" {
			found = true
			break
		}
	}
	assert.True(t, found, "browse command should be registered")
	assert.Contains(t, browseCmd.Aliases, "tui")
}

func TestBrowseCmd_ShortDescription(t *testing.T) {
	assert.Equal(t, "Launch the interactive terminal UI", browseCmd.Short)
}

func TestBrowseCmd_LongDescription(t *testing.T) {
	assert.Contains(t, browseCmd.Long, "interactive terminal user interface")
	assert.Contains(t, browseCmd.Long, "Controls:")
}

func TestBrowseCmd_HelpOutput(t *testing.T) {
	stdout, _, err := executeCommand("tui", "--help")

	require.NoError(t, err)
	assert.Contains(t, stdout, "interactive terminal user interface")
	assert.Contains(t, stdout, "Controls:")
}

func TestBrowseCmd_TooManyArgs(t *testing.T) {
	_, _, err := executeCommand("browse", "a", "b")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "accepts at most 1 arg(s)")
}

func TestRunBrowser_RequiresAnalysisService(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()
	analysisService = nil

	err := runBrowser(context.Background(), "")

	require.Error(t, err)
	assert.ErrorIs(t, err, tui.ErrMissingAnalysisService)
}
