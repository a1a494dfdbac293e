// Package anthropic provides a completion client for the Anthropic Messages API.
package anthropic

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/custodia-labs/insight/internal/core/domain"
	"github.com/custodia-labs/insight/internal/core/ports/driven"
	"github.com/custodia-labs/insight/internal/logger"
)

// Ensure Client implements the interface.
var _ driven.CompletionClient = (*Client)(nil)

// Default configuration values.
const (
	DefaultBaseURL   = domain.DefaultLLMBaseURL
	DefaultModel     = domain.DefaultLLMModel
	DefaultTimeout   = time.Duration(domain.DefaultLLMTimeoutSeconds) * time.Second
	DefaultMaxTokens = domain.DefaultLLMMaxTokens

	// anthropicVersion is the required API version header.
	anthropicVersion = "2023-06-01"
)

// Config holds configuration for the Anthropic client.
type Config struct {
	// APIKey is the Anthropic API key (required).
	APIKey string

	// BaseURL is the API base URL (default: https://api.anthropic.com).
	BaseURL string

	// Model is the model to use (default: claude-3-opus-20240229).
	Model string

	// Timeout is the per-request timeout (default: 180s).
	Timeout time.Duration

	// RequestsPerSecond and Burst configure client-side rate limiting.
	// A zero rate disables the limiter.
	RequestsPerSecond float64
	Burst             int

	// HTTPClient overrides the transport. Timeout is ignored when set.
	HTTPClient *http.Client
}

// ConfigFromSettings maps user settings to a client Config.
func ConfigFromSettings(s domain.LLMSettings) Config {
	return Config{
		APIKey:            s.APIKey,
		BaseURL:           s.BaseURL,
		Model:             s.Model,
		Timeout:           s.Timeout(),
		RequestsPerSecond: s.RequestsPerSecond,
		Burst:             s.Burst,
	}
}

// Client performs single completions against /v1/messages.
// It never retries; retry policy belongs to the caller.
type Client struct {
	client  *http.Client
	baseURL string
	apiKey  string
	model   string
	limiter *RateLimiter
}

// messagesRequest is the Anthropic /v1/messages request format.
type messagesRequest struct {
	Model     string            `json:"model"`
	MaxTokens int               `json:"max_tokens"`
	System    string            `json:"system,omitempty"`
	Messages  []messagesMessage `json:"messages"`
}

// messagesMessage is the Anthropic message format.
type messagesMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// messagesResponse is the subset of the /v1/messages response we read.
type messagesResponse struct {
	Content []struct {
		Type string  `json:"type"`
		Text *string `json:"text"`
	} `json:"content"`
	StopReason string `json:"stop_reason"`
	Usage      struct {
		InputTokens  int `json:"input_tokens"`
		OutputTokens int `json:"output_tokens"`
	} `json:"usage"`
}

// NewClient creates a new Anthropic completion client.
func NewClient(cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: anthropic API key is required", domain.ErrLLMUnavailable)
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}

	c := &Client{
		client:  httpClient,
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		model:   cfg.Model,
	}
	if cfg.RequestsPerSecond > 0 {
		c.limiter = NewRateLimiter(RateLimitConfig{
			RequestsPerSecond: cfg.RequestsPerSecond,
			BurstSize:         cfg.Burst,
		})
	}
	return c, nil
}

// Complete sends one system/user prompt pair and returns content[0].text.
func (c *Client) Complete(ctx context.Context, in driven.CompletionRequest) (string, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return "", err
		}
	}

	maxTokens := in.MaxTokens
	if maxTokens <= 0 {
		maxTokens = DefaultMaxTokens
	}

	jsonBody, err := json.Marshal(messagesRequest{
		Model:     c.model,
		MaxTokens: maxTokens,
		System:    in.SystemPrompt,
		Messages:  []messagesMessage{{Role: "user", Content: in.UserPrompt}},
	})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/messages", bytes.NewReader(jsonBody))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	c.setHeaders(req)
	req.Header.Set("Content-Type", "application/json")

	logger.Debug("anthropic: POST /v1/messages model=%s max_tokens=%d system=%d user=%d chars",
		c.model, maxTokens, len(in.SystemPrompt), len(in.UserPrompt))

	resp, err := c.client.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}
		return "", domain.NewNetworkError(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", domain.NewNetworkError(fmt.Errorf("read response: %w", err))
	}

	logger.Debug("anthropic: status %d, %d bytes", resp.StatusCode, len(body))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		if resp.StatusCode == http.StatusTooManyRequests && c.limiter != nil {
			c.limiter.RecordRateLimitError(retryAfterSeconds(resp.Header))
		}
		return "", domain.NewHTTPError(resp.StatusCode, string(body))
	}

	var msgResp messagesResponse
	if err := json.Unmarshal(body, &msgResp); err != nil {
		return "", domain.NewMalformedEnvelopeError(string(body), fmt.Errorf("decode response: %w", err))
	}
	if len(msgResp.Content) == 0 || msgResp.Content[0].Text == nil {
		return "", domain.NewMalformedEnvelopeError(string(body), errors.New("content[0].text missing"))
	}

	logger.Debug("anthropic: stop_reason=%s input_tokens=%d output_tokens=%d",
		msgResp.StopReason, msgResp.Usage.InputTokens, msgResp.Usage.OutputTokens)

	return *msgResp.Content[0].Text, nil
}

// ModelName returns the name of the model being used.
func (c *Client) ModelName() string {
	return c.model
}

// Ping validates the service is reachable by checking the /v1/models endpoint.
// This validates the API key without running inference.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/v1/models", http.NoBody)
	if err != nil {
		return fmt.Errorf("anthropic: failed to create ping request: %w", err)
	}
	c.setHeaders(req)

	resp, err := c.client.Do(req)
	if err != nil {
		return domain.NewNetworkError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return domain.NewHTTPError(resp.StatusCode, string(body))
	}
	return nil
}

// Close releases resources.
func (c *Client) Close() error {
	// HTTP client doesn't need explicit cleanup
	return nil
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("x-api-key", c.apiKey)
	req.Header.Set("anthropic-version", anthropicVersion)
}

// retryAfterSeconds reads the retry-after header; 0 when absent or unparseable.
func retryAfterSeconds(h http.Header) int {
	v := h.Get("Retry-After")
	if v == "" {
		return 0
	}
	if secs, err := strconv.Atoi(v); err == nil {
		return secs
	}
	if t, err := http.ParseTime(v); err == nil {
		if d := time.Until(t); d > 0 {
			return int(d.Seconds()) + 1
		}
	}
	return 0
}
