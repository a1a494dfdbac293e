package services

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/custodia-labs/insight/internal/core/domain"
	"github.com/custodia-labs/insight/internal/core/ports/driven"
	"github.com/custodia-labs/insight/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	keyLLMAPIKey            = "llm.api_key"
	keyLLMBaseURL           = "llm.base_url"
	keyLLMModel             = "llm.model"
	keyLLMMaxTokens         = "llm.max_tokens"
	keyLLMTimeout           = "llm.timeout_seconds"
	keyLLMRequestsPerSecond = "llm.requests_per_second"
	keyLLMBurst             = "llm.burst"
	keyChunkThreshold       = "analysis.chunk_threshold_words"
	keyChunkTarget          = "analysis.chunk_target_words"
	keyConcurrency          = "analysis.concurrency"
	keyTransportRetries     = "analysis.transport_retries"
	keyParseRetries         = "analysis.parse_retries"
)

// Environment variables that override stored settings.
//
//nolint:gosec // G101: environment variable names, not credentials.
const (
	EnvAPIKey = "ANTHROPIC_API_KEY"
	EnvModel  = "INSIGHT_MODEL"
)

type keyKind int

const (
	kindString keyKind = iota
	kindInt
	kindFloat
)

var settingKeys = []struct {
	key  string
	kind keyKind
}{
	{keyLLMAPIKey, kindString},
	{keyLLMBaseURL, kindString},
	{keyLLMModel, kindString},
	{keyLLMMaxTokens, kindInt},
	{keyLLMTimeout, kindInt},
	{keyLLMRequestsPerSecond, kindFloat},
	{keyLLMBurst, kindInt},
	{keyChunkThreshold, kindInt},
	{keyChunkTarget, kindInt},
	{keyConcurrency, kindInt},
	{keyTransportRetries, kindInt},
	{keyParseRetries, kindInt},
}

// SettingsService manages application settings.
type SettingsService struct {
	configStore driven.ConfigStore
	lookupEnv   func(string) (string, bool)
}

// NewSettingsService creates a new settings service reading overrides from
// the process environment.
func NewSettingsService(configStore driven.ConfigStore) *SettingsService {
	return &SettingsService{
		configStore: configStore,
		lookupEnv:   os.LookupEnv,
	}
}

// SetEnvLookup replaces the environment lookup, for tests.
func (s *SettingsService) SetEnvLookup(lookup func(string) (string, bool)) {
	s.lookupEnv = lookup
}

// Get retrieves current application settings.
func (s *SettingsService) Get() (*domain.AppSettings, error) {
	defaults := domain.DefaultAppSettings()

	settings := &domain.AppSettings{
		LLM: domain.LLMSettings{
			APIKey:            s.configStore.GetString(keyLLMAPIKey),
			BaseURL:           s.getString(keyLLMBaseURL, defaults.LLM.BaseURL),
			Model:             s.getString(keyLLMModel, defaults.LLM.Model),
			MaxTokens:         s.getInt(keyLLMMaxTokens, defaults.LLM.MaxTokens),
			TimeoutSeconds:    s.getInt(keyLLMTimeout, defaults.LLM.TimeoutSeconds),
			RequestsPerSecond: s.getFloat(keyLLMRequestsPerSecond, defaults.LLM.RequestsPerSecond),
			Burst:             s.getInt(keyLLMBurst, defaults.LLM.Burst),
		},
		Analysis: domain.AnalysisSettings{
			ChunkThresholdWords: s.getInt(keyChunkThreshold, defaults.Analysis.ChunkThresholdWords),
			ChunkTargetWords:    s.getInt(keyChunkTarget, defaults.Analysis.ChunkTargetWords),
			Concurrency:         s.getInt(keyConcurrency, defaults.Analysis.Concurrency),
			TransportRetries:    s.getCount(keyTransportRetries, defaults.Analysis.TransportRetries),
			ParseRetries:        s.getCount(keyParseRetries, defaults.Analysis.ParseRetries),
		},
	}

	if v, ok := s.lookupEnv(EnvAPIKey); ok && v != "" {
		settings.LLM.APIKey = v
	}
	if v, ok := s.lookupEnv(EnvModel); ok && v != "" {
		settings.LLM.Model = v
	}

	return settings, nil
}

// Save persists application settings. An empty API key is not written so
// that a key supplied through the environment is never cleared on disk.
func (s *SettingsService) Save(settings *domain.AppSettings) error {
	if err := settings.Validate(); err != nil {
		return err
	}

	values := []struct {
		key   string
		value any
	}{
		{keyLLMBaseURL, settings.LLM.BaseURL},
		{keyLLMModel, settings.LLM.Model},
		{keyLLMMaxTokens, settings.LLM.MaxTokens},
		{keyLLMTimeout, settings.LLM.TimeoutSeconds},
		{keyLLMRequestsPerSecond, settings.LLM.RequestsPerSecond},
		{keyLLMBurst, settings.LLM.Burst},
		{keyChunkThreshold, settings.Analysis.ChunkThresholdWords},
		{keyChunkTarget, settings.Analysis.ChunkTargetWords},
		{keyConcurrency, settings.Analysis.Concurrency},
		{keyTransportRetries, settings.Analysis.TransportRetries},
		{keyParseRetries, settings.Analysis.ParseRetries},
	}
	if settings.LLM.APIKey != "" {
		values = append(values, struct {
			key   string
			value any
		}{keyLLMAPIKey, settings.LLM.APIKey})
	}

	for _, v := range values {
		if err := s.configStore.Set(v.key, v.value); err != nil {
			return fmt.Errorf("save %s: %w", v.key, err)
		}
	}
	return nil
}

// Set parses value according to the key's type and persists it.
func (s *SettingsService) Set(key, value string) error {
	for _, k := range settingKeys {
		if k.key != key {
			continue
		}
		var parsed any
		switch k.kind {
		case kindInt:
			n, err := strconv.Atoi(strings.TrimSpace(value))
			if err != nil {
				return fmt.Errorf("%w: %s expects an integer, got %q", domain.ErrInvalidInput, key, value)
			}
			parsed = n
		case kindFloat:
			f, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
			if err != nil {
				return fmt.Errorf("%w: %s expects a number, got %q", domain.ErrInvalidInput, key, value)
			}
			parsed = f
		default:
			parsed = value
		}

		if err := s.validateCandidate(key, parsed); err != nil {
			return err
		}
		if err := s.configStore.Set(key, parsed); err != nil {
			return fmt.Errorf("save %s: %w", key, err)
		}
		return nil
	}
	return fmt.Errorf("%w: unknown setting %q", domain.ErrInvalidInput, key)
}

// validateCandidate rejects a value that would make the settings unusable.
func (s *SettingsService) validateCandidate(key string, value any) error {
	current, err := s.Get()
	if err != nil {
		return err
	}
	switch key {
	case keyLLMModel:
		current.LLM.Model, _ = value.(string)
	case keyLLMMaxTokens:
		current.LLM.MaxTokens, _ = value.(int)
	case keyLLMRequestsPerSecond:
		current.LLM.RequestsPerSecond, _ = value.(float64)
	case keyChunkThreshold:
		current.Analysis.ChunkThresholdWords, _ = value.(int)
	case keyChunkTarget:
		current.Analysis.ChunkTargetWords, _ = value.(int)
	case keyConcurrency:
		current.Analysis.Concurrency, _ = value.(int)
	case keyTransportRetries:
		current.Analysis.TransportRetries, _ = value.(int)
	case keyParseRetries:
		current.Analysis.ParseRetries, _ = value.(int)
	}
	return current.Validate()
}

// Keys lists the settable keys in display order.
func (s *SettingsService) Keys() []string {
	keys := make([]string, len(settingKeys))
	for i, k := range settingKeys {
		keys[i] = k.key
	}
	return keys
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

// Helper methods for reading config with defaults.

func (s *SettingsService) getString(key, defaultVal string) string {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getInt(key string, defaultVal int) int {
	val := s.configStore.GetInt(key)
	if val == 0 {
		return defaultVal
	}
	return val
}

// getCount is getInt where zero is a meaningful stored value.
func (s *SettingsService) getCount(key string, defaultVal int) int {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetInt(key)
}

func (s *SettingsService) getFloat(key string, defaultVal float64) float64 {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetFloat(key)
}
