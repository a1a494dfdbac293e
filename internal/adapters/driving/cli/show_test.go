package cli

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/insight/internal/core/domain"
)

func TestShowCmd_RequiresExactlyOneArg(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	_, _, err := executeCommand("show")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "accepts 1 arg(s)")
}

func TestShowCmd_PrintsTree(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()
	ts.analysis.results["an-1"].MentalModel = &domain.MentalModel{Name: "Layers", Description: "each builds on the last"}

	stdout, _, err := executeCommand("show", "an-1", "-d")

	require.NoError(t, err)
	assert.Contains(t, stdout, "Mental model: Layers: each builds on the last")
	assert.Contains(t, stdout, "Main Idea: what it is about")
	assert.Contains(t, stdout, "Supporting Detail")
}

func TestShowCmd_JSON(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	stdout, _, err := executeCommand("show", "an-1", "--json")

	require.NoError(t, err)
	var decoded domain.AnalysisResult
	require.NoError(t, json.Unmarshal([]byte(stdout), &decoded))
	assert.Equal(t, "notes.txt", decoded.DocumentName)
}

func TestShowCmd_NotFound(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	_, _, err := executeCommand("show", "missing")

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Contains(t, err.Error(), "analysis missing")
}

func TestDeleteCmd(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()

	stdout, _, err := executeCommand("delete", "an-1")

	require.NoError(t, err)
	assert.Contains(t, stdout, "Deleted analysis an-1")
	assert.Equal(t, []string{"an-1"}, ts.analysis.deleted)
}

func TestDeleteCmd_Alias(t *testing.T) {
	assert.Contains(t, deleteCmd.Aliases, "rm")
}

func TestDeleteCmd_NotFound(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	_, _, err := executeCommand("delete", "missing")

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
