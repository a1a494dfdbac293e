package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDefaultAppSettings(t *testing.T) {
	s := DefaultAppSettings()
	assert.NoError(t, s.Validate())
	assert.Equal(t, 3000, s.Analysis.ChunkThresholdWords)
	assert.Equal(t, 800, s.Analysis.ChunkTargetWords)
	assert.Equal(t, 180*time.Second, s.LLM.Timeout())
	assert.False(t, s.LLM.IsConfigured())
}

func TestLLMSettings_TimeoutFloor(t *testing.T) {
	assert.Equal(t, 60*time.Second, LLMSettings{TimeoutSeconds: 5}.Timeout())
	assert.Equal(t, 90*time.Second, LLMSettings{TimeoutSeconds: 90}.Timeout())
}

func TestAppSettings_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*AppSettings)
	}{
		{"empty model", func(s *AppSettings) { s.LLM.Model = "" }},
		{"zero max tokens", func(s *AppSettings) { s.LLM.MaxTokens = 0 }},
		{"negative rate", func(s *AppSettings) { s.LLM.RequestsPerSecond = -1 }},
		{"zero threshold", func(s *AppSettings) { s.Analysis.ChunkThresholdWords = 0 }},
		{"zero target", func(s *AppSettings) { s.Analysis.ChunkTargetWords = 0 }},
		{"zero concurrency", func(s *AppSettings) { s.Analysis.Concurrency = 0 }},
		{"negative retries", func(s *AppSettings) { s.Analysis.ParseRetries = -1 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := DefaultAppSettings()
			tt.mutate(&s)
			assert.ErrorIs(t, s.Validate(), ErrInvalidInput)
		})
	}
}

func TestKnownLLMModels(t *testing.T) {
	models := KnownLLMModels()
	assert.Equal(t, DefaultLLMModel, models[0])
	assert.Len(t, models, 3)

	models[0] = "changed"
	assert.Equal(t, DefaultLLMModel, KnownLLMModels()[0])
}
