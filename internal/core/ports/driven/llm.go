package driven

import "context"

// CompletionClient performs a single exchange with an LLM completion endpoint.
// The returned text is untrusted and may be malformed.
//
// Implementations must not retry internally; retry policy belongs to the caller.
// Failures are reported as *domain.CompletionError.
type CompletionClient interface {
	// Complete sends one system/user prompt pair and returns the raw completion text.
	Complete(ctx context.Context, req CompletionRequest) (string, error)

	// ModelName returns the name of the model being used.
	ModelName() string

	// Ping validates the endpoint is reachable without running inference.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}

// CompletionRequest is one prompt pair and its output budget.
type CompletionRequest struct {
	// SystemPrompt is the system instruction.
	SystemPrompt string

	// UserPrompt is the single user message.
	UserPrompt string

	// MaxTokens is the maximum number of tokens to generate.
	MaxTokens int
}
