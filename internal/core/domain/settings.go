package domain

import (
	"fmt"
	"time"
)

// Default analysis parameters.
const (
	DefaultChunkThresholdWords = 3000
	DefaultChunkTargetWords    = 800
	DefaultConcurrency         = 3
	DefaultTransportRetries    = 2
	DefaultParseRetries        = 1
)

// Default LLM parameters.
const (
	DefaultLLMBaseURL        = "https://api.anthropic.com"
	DefaultLLMModel          = "claude-3-opus-20240229"
	DefaultLLMMaxTokens      = 4096
	DefaultLLMTimeoutSeconds = 180
	MinLLMTimeoutSeconds     = 60
)

// KnownLLMModels lists the models offered by the settings prompt.
// The first entry is the default.
func KnownLLMModels() []string {
	return []string{
		DefaultLLMModel,
		"claude-3-5-sonnet-20241022",
		"claude-3-5-haiku-20241022",
	}
}

// AppSettings is the complete user configuration.
type AppSettings struct {
	LLM      LLMSettings
	Analysis AnalysisSettings
}

// LLMSettings configures the completion endpoint.
type LLMSettings struct {
	APIKey            string
	BaseURL           string
	Model             string
	MaxTokens         int
	TimeoutSeconds    int
	RequestsPerSecond float64
	Burst             int
}

// IsConfigured returns true when an API key is present.
func (s LLMSettings) IsConfigured() bool {
	return s.APIKey != ""
}

// Timeout returns the request timeout, never below the minimum.
func (s LLMSettings) Timeout() time.Duration {
	secs := s.TimeoutSeconds
	if secs < MinLLMTimeoutSeconds {
		secs = MinLLMTimeoutSeconds
	}
	return time.Duration(secs) * time.Second
}

// AnalysisSettings configures chunking and retry behaviour.
type AnalysisSettings struct {
	ChunkThresholdWords int
	ChunkTargetWords    int
	Concurrency         int
	TransportRetries    int
	ParseRetries        int
}

// DefaultAppSettings returns settings used when nothing is configured.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		LLM: LLMSettings{
			BaseURL:           DefaultLLMBaseURL,
			Model:             DefaultLLMModel,
			MaxTokens:         DefaultLLMMaxTokens,
			TimeoutSeconds:    DefaultLLMTimeoutSeconds,
			RequestsPerSecond: 1,
			Burst:             1,
		},
		Analysis: AnalysisSettings{
			ChunkThresholdWords: DefaultChunkThresholdWords,
			ChunkTargetWords:    DefaultChunkTargetWords,
			Concurrency:         DefaultConcurrency,
			TransportRetries:    DefaultTransportRetries,
			ParseRetries:        DefaultParseRetries,
		},
	}
}

// Validate checks that numeric settings are usable.
func (s AppSettings) Validate() error {
	switch {
	case s.LLM.Model == "":
		return fmt.Errorf("%w: llm.model must not be empty", ErrInvalidInput)
	case s.LLM.MaxTokens <= 0:
		return fmt.Errorf("%w: llm.max_tokens must be positive", ErrInvalidInput)
	case s.LLM.RequestsPerSecond < 0:
		return fmt.Errorf("%w: llm.requests_per_second must not be negative", ErrInvalidInput)
	case s.Analysis.ChunkThresholdWords <= 0:
		return fmt.Errorf("%w: analysis.chunk_threshold_words must be positive", ErrInvalidInput)
	case s.Analysis.ChunkTargetWords <= 0:
		return fmt.Errorf("%w: analysis.chunk_target_words must be positive", ErrInvalidInput)
	case s.Analysis.Concurrency <= 0:
		return fmt.Errorf("%w: analysis.concurrency must be positive", ErrInvalidInput)
	case s.Analysis.TransportRetries < 0, s.Analysis.ParseRetries < 0:
		return fmt.Errorf("%w: retry counts must not be negative", ErrInvalidInput)
	}
	return nil
}
