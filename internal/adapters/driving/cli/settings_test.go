package cli

import (
	"bufio"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/insight/internal/core/domain"
)

// Test helper functions in settings.go

func TestMaskAPIKey(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "Short key",
			input:    "abc123",
			expected: "****",
		},
		{
			name:     "Exactly 8 chars",
			input:    "12345678",
			expected: "****",
		},
		{
			name:     "Long key",
			input:    "sk-1234567890abcdef",
			expected: "sk-1...cdef",
		},
		{
			name:     "Very long key",
			input:    "sk-proj-1234567890abcdefghijklmnop",
			expected: "sk-p...mnop",
		},
		{
			name:     "Empty key",
			input:    "",
			expected: "****",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := maskAPIKey(tt.input)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestParseChoice(t *testing.T) {
	tests := []struct {
		name       string
		input      string
		maxVal     int
		defaultVal int
		expected   int
	}{
		{
			name:       "Empty input returns default",
			input:      "",
			maxVal:     5,
			defaultVal: 1,
			expected:   1,
		},
		{
			name:       "Valid choice within range",
			input:      "3",
			maxVal:     5,
			defaultVal: 1,
			expected:   3,
		},
		{
			name:       "Choice below minimum returns default",
			input:      "0",
			maxVal:     5,
			defaultVal: 1,
			expected:   1,
		},
		{
			name:       "Choice above maximum returns default",
			input:      "6",
			maxVal:     5,
			defaultVal: 1,
			expected:   1,
		},
		{
			name:       "Invalid input returns default",
			input:      "abc",
			maxVal:     5,
			defaultVal: 2,
			expected:   2,
		},
		{
			name:       "Negative number returns default",
			input:      "-1",
			maxVal:     5,
			defaultVal: 1,
			expected:   1,
		},
		{
			name:       "Whitespace returns default",
			input:      "   ",
			maxVal:     5,
			defaultVal: 1,
			expected:   1,
		},
		{
			name:       "Maximum value is valid",
			input:      "5",
			maxVal:     5,
			defaultVal: 1,
			expected:   5,
		},
		{
			name:       "Minimum value is valid",
			input:      "1",
			maxVal:     5,
			defaultVal: 3,
			expected:   1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := parseChoice(tt.input, tt.maxVal, tt.defaultVal)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestSettingsShowCmd(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()

	stdout, _, err := executeCommand("settings", "show")

	require.NoError(t, err)
	assert.Contains(t, stdout, "[LLM]")
	assert.Contains(t, stdout, "Model: "+domain.DefaultLLMModel)
	assert.Contains(t, stdout, "API Key: (not set)")
	assert.Contains(t, stdout, "Status: not configured")
	assert.Contains(t, stdout, "[Analysis]")
	assert.Contains(t, stdout, "Chunk Threshold: 3000 words")
	assert.Contains(t, stdout, "Timeout: 3m0s")
	assert.Contains(t, stdout, "insight settings llm")

	ts.settings.settings.LLM.APIKey = "sk-ant-1234567890"
	stdout, _, err = executeCommand("settings")

	require.NoError(t, err)
	assert.Contains(t, stdout, "API Key: sk-a...7890")
	assert.NotContains(t, stdout, "sk-ant-1234567890")
	assert.Contains(t, stdout, "Configuration is valid.")
}

func TestSettingsShowCmd_InvalidSettings(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()
	ts.settings.settings.Analysis.Concurrency = 0

	stdout, _, err := executeCommand("settings", "show")

	require.NoError(t, err)
	assert.Contains(t, stdout, "Warning:")
	assert.Contains(t, stdout, "analysis.concurrency")
}

func TestSettingsSetCmd(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()

	stdout, _, err := executeCommand("settings", "set", "analysis.concurrency", "5")

	require.NoError(t, err)
	assert.Equal(t, "5", ts.settings.sets["analysis.concurrency"])
	assert.Contains(t, stdout, "Set analysis.concurrency = 5")
}

func TestSettingsSetCmd_MasksAPIKey(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	stdout, _, err := executeCommand("settings", "set", "llm.api_key", "sk-ant-abcdefghijkl")

	require.NoError(t, err)
	assert.Contains(t, stdout, "Set llm.api_key = sk-a...ijkl")
	assert.NotContains(t, stdout, "abcdefgh")
}

func TestSettingsSetCmd_Error(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()
	ts.settings.setErr = domain.ErrInvalidInput

	_, _, err := executeCommand("settings", "set", "llm.nope", "x")

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Contains(t, err.Error(), "failed to set llm.nope")
}

func TestSettingsSetCmd_RequiresTwoArgs(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	_, _, err := executeCommand("settings", "set", "llm.model")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "accepts 2 arg(s)")
}

func TestSettingsKeysCmd(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	stdout, _, err := executeCommand("settings", "keys")

	require.NoError(t, err)
	assert.Equal(t, "llm.api_key\nllm.model\nanalysis.concurrency\n", stdout)
}

func TestSettingsLLMCmd(t *testing.T) {
	t.Run("picks listed model and saves key", func(t *testing.T) {
		ts, cleanup := setupTestServices()
		defer cleanup()

		var validated domain.LLMSettings
		validateLLM = func(_ context.Context, s domain.LLMSettings) error {
			validated = s
			return nil
		}

		rootCmd.SetIn(strings.NewReader("2\n\nsk-ant-secretkey99\n"))
		stdout, _, err := executeCommand("settings", "llm")

		require.NoError(t, err)
		require.NotNil(t, ts.settings.saved)
		models := domain.KnownLLMModels()
		assert.Equal(t, models[1], ts.settings.saved.LLM.Model)
		assert.Equal(t, domain.DefaultLLMBaseURL, ts.settings.saved.LLM.BaseURL)
		assert.Equal(t, "sk-ant-secretkey99", ts.settings.saved.LLM.APIKey)
		assert.Equal(t, "sk-ant-secretkey99", validated.APIKey)
		assert.Contains(t, stdout, "1. "+models[0]+" (current)")
		assert.Contains(t, stdout, "Validating configuration... OK")
		assert.NotContains(t, stdout, "secretkey")
	})

	t.Run("custom model keeps existing key", func(t *testing.T) {
		ts, cleanup := setupTestServices()
		defer cleanup()
		ts.settings.settings.LLM.APIKey = "sk-ant-existing1234"

		rootCmd.SetIn(strings.NewReader("4\nclaude-custom\nhttp://localhost:9000\n\n"))
		stdout, _, err := executeCommand("settings", "llm")

		require.NoError(t, err)
		assert.Equal(t, "claude-custom", ts.settings.saved.LLM.Model)
		assert.Equal(t, "http://localhost:9000", ts.settings.saved.LLM.BaseURL)
		assert.Equal(t, "sk-ant-existing1234", ts.settings.saved.LLM.APIKey)
		assert.Contains(t, stdout, "Enter API key [sk-a...1234]")
		assert.NotContains(t, stdout, "Validating")
	})

	t.Run("missing key fails", func(t *testing.T) {
		ts, cleanup := setupTestServices()
		defer cleanup()

		rootCmd.SetIn(strings.NewReader("\n\n\n"))
		_, _, err := executeCommand("settings", "llm")

		require.Error(t, err)
		assert.Contains(t, err.Error(), "API key is required")
		assert.Nil(t, ts.settings.saved)
	})

	t.Run("validation failure is returned", func(t *testing.T) {
		_, cleanup := setupTestServices()
		defer cleanup()
		validateLLM = func(context.Context, domain.LLMSettings) error {
			return domain.ErrLLMUnavailable
		}

		rootCmd.SetIn(strings.NewReader("1\n\nsk-ant-badkey12345\n"))
		stdout, _, err := executeCommand("settings", "llm")

		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrLLMUnavailable)
		assert.Contains(t, stdout, "FAILED")
	})
}

func TestReadPassword_FallsBackToReader(t *testing.T) {
	in := strings.NewReader("  typed-key \n")
	assert.Equal(t, "typed-key", readPassword(in, bufio.NewReader(in)))
}
