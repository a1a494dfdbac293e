package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/insight/internal/core/domain"
)

func TestExportCmd_Flags(t *testing.T) {
	flag := exportCmd.Flags().Lookup("format")
	require.NotNil(t, flag)
	assert.Equal(t, "f", flag.Shorthand)
	assert.Equal(t, "markdown", flag.DefValue)

	flag = exportCmd.Flags().Lookup("output")
	require.NotNil(t, flag)
	assert.Equal(t, "o", flag.Shorthand)
}

func TestExportCmd_MarkdownToStdout(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	stdout, _, err := executeCommand("export", "an-1")

	require.NoError(t, err)
	assert.Contains(t, stdout, "# notes.txt")
	assert.Contains(t, stdout, "## Main Idea")
	assert.Contains(t, stdout, "### Supporting Detail")
}

func TestExportCmd_JSONToStdout(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	stdout, _, err := executeCommand("export", "an-1", "--format", "json")

	require.NoError(t, err)
	var decoded domain.AnalysisResult
	require.NoError(t, json.Unmarshal([]byte(stdout), &decoded))
	assert.Equal(t, "an-1", decoded.ID)
}

func TestExportCmd_OutputFile(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()
	path := filepath.Join(t.TempDir(), "notes.md")

	stdout, _, err := executeCommand("export", "an-1", "-o", path)

	require.NoError(t, err)
	assert.Contains(t, stdout, "Wrote "+path)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "# notes.txt")
}

func TestExportCmd_FormatFromExtension(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()
	path := filepath.Join(t.TempDir(), "notes.JSON")

	_, _, err := executeCommand("export", "an-1", "--output", path)

	require.NoError(t, err)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, json.Valid(data))
}

func TestExportCmd_ExplicitFormatWins(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()
	path := filepath.Join(t.TempDir(), "notes.json")

	_, _, err := executeCommand("export", "an-1", "--output", path, "--format", "md")

	require.NoError(t, err)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "# notes.txt")
}

func TestExportCmd_InvalidFormat(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	_, _, err := executeCommand("export", "an-1", "--format", "pdf")

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestExportCmd_NotFound(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	_, _, err := executeCommand("export", "missing")

	assert.ErrorIs(t, err, domain.ErrNotFound)
}
