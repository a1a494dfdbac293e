package domain

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnsupportedType indicates a document format that cannot be ingested.
	ErrUnsupportedType = errors.New("unsupported type")

	// ErrAnalysisInProgress indicates the same document is already being analysed.
	ErrAnalysisInProgress = errors.New("analysis in progress")

	// ErrStorageUnavailable indicates no analysis store is configured.
	ErrStorageUnavailable = errors.New("storage unavailable")

	// ErrLLMUnavailable indicates the completion endpoint is not configured.
	ErrLLMUnavailable = errors.New("LLM service unavailable")

	// Error categories. Typed errors below unwrap to exactly one of these.

	// ErrTransport indicates a network-level failure. Retryable.
	ErrTransport = errors.New("transport error")

	// ErrProtocol indicates a non-2xx response or a malformed envelope.
	ErrProtocol = errors.New("protocol error")

	// ErrParse indicates the model output could not be decoded.
	ErrParse = errors.New("parse error")

	// ErrIntegrity indicates a dangling or cyclic parent reference.
	// It is never fatal; affected concepts are demoted to top level.
	ErrIntegrity = errors.New("integrity warning")
)

// PreviewLimit bounds diagnostic previews carried by errors.
const PreviewLimit = 800

// Preview truncates s to at most PreviewLimit runes.
func Preview(s string) string {
	return truncateRunes(s, PreviewLimit)
}

func truncateRunes(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}

// CompletionErrorKind classifies completion failures.
type CompletionErrorKind string

const (
	// CompletionNetwork covers connection refused, DNS and timeouts.
	CompletionNetwork CompletionErrorKind = "network"

	// CompletionHTTP covers non-2xx responses.
	CompletionHTTP CompletionErrorKind = "http"

	// CompletionMalformedEnvelope covers 2xx responses without content[0].text.
	CompletionMalformedEnvelope CompletionErrorKind = "malformed_envelope"
)

// CompletionError is returned by completion clients.
type CompletionError struct {
	Kind       CompletionErrorKind
	StatusCode int
	Body       string
	Err        error
}

// NewHTTPError builds an HTTP completion error with a bounded body preview.
func NewHTTPError(status int, body string) *CompletionError {
	return &CompletionError{Kind: CompletionHTTP, StatusCode: status, Body: Preview(body)}
}

// NewNetworkError wraps a transport failure.
func NewNetworkError(err error) *CompletionError {
	return &CompletionError{Kind: CompletionNetwork, Err: err}
}

// NewMalformedEnvelopeError builds an envelope error with a bounded body preview.
func NewMalformedEnvelopeError(body string, err error) *CompletionError {
	return &CompletionError{Kind: CompletionMalformedEnvelope, Body: Preview(body), Err: err}
}

func (e *CompletionError) Error() string {
	switch e.Kind {
	case CompletionNetwork:
		return fmt.Sprintf("completion network error: %v", e.Err)
	case CompletionHTTP:
		return fmt.Sprintf("completion http error (status %d): %s", e.StatusCode, e.Body)
	default:
		if e.Err != nil {
			return fmt.Sprintf("completion malformed envelope: %v: %s", e.Err, e.Body)
		}
		return fmt.Sprintf("completion malformed envelope: %s", e.Body)
	}
}

// Unwrap exposes the category sentinel and the underlying cause.
func (e *CompletionError) Unwrap() []error {
	category := ErrProtocol
	if e.Kind == CompletionNetwork {
		category = ErrTransport
	}
	if e.Err == nil {
		return []error{category}
	}
	return []error{category, e.Err}
}

// ParseErrorKind classifies model output decode failures.
type ParseErrorKind string

const (
	// ParseNoJSONFound means no brace-delimited span exists.
	ParseNoJSONFound ParseErrorKind = "no_json_found"

	// ParseMissingField means a required field is absent or null.
	ParseMissingField ParseErrorKind = "missing_field"

	// ParseTypeMismatch means a field has the wrong JSON type.
	ParseTypeMismatch ParseErrorKind = "type_mismatch"

	// ParseMalformedJSON means the span is not valid JSON.
	ParseMalformedJSON ParseErrorKind = "malformed_json"
)

// ParseError is returned by the response parser.
// Preview never exceeds PreviewLimit runes.
type ParseError struct {
	Kind         ParseErrorKind
	FieldPath    string
	ExpectedType string
	Detail       string
	Preview      string
}

func (e *ParseError) Error() string {
	var b strings.Builder
	switch e.Kind {
	case ParseNoJSONFound:
		b.WriteString("no JSON object found in response")
	case ParseMissingField:
		fmt.Fprintf(&b, "missing required field %q", e.FieldPath)
	case ParseTypeMismatch:
		fmt.Fprintf(&b, "field %q: expected %s", e.FieldPath, e.ExpectedType)
	default:
		fmt.Fprintf(&b, "malformed JSON: %s", e.Detail)
	}
	if e.Preview != "" {
		fmt.Fprintf(&b, "\n\nResponse preview:\n%s", e.Preview)
	}
	return b.String()
}

// Unwrap returns ErrParse.
func (e *ParseError) Unwrap() error {
	return ErrParse
}

// AnalysisError is the terminal payload of a failed analysis.
// It carries enough context to reproduce the failure.
type AnalysisError struct {
	FileName  string
	WordCount int
	Phase     Phase
	// Chunk is the 1-based chunk number, 0 when not chunk-specific.
	Chunk int
	Err   error
}

func (e *AnalysisError) Error() string {
	where := string(e.Phase)
	if e.Chunk > 0 {
		where = fmt.Sprintf("%s part %d", e.Phase, e.Chunk)
	}
	return fmt.Sprintf("analyse %s (%d words) failed during %s [%s]: %v",
		e.FileName, e.WordCount, where, Category(e.Err), e.Err)
}

func (e *AnalysisError) Unwrap() error {
	return e.Err
}

// Category names the error category of err for user-facing output.
func Category(err error) string {
	switch {
	case errors.Is(err, ErrTransport):
		return "transport"
	case errors.Is(err, ErrProtocol):
		return "protocol"
	case errors.Is(err, ErrParse):
		return "parse"
	case errors.Is(err, ErrIntegrity):
		return "integrity"
	case errors.Is(err, ErrUnsupportedType):
		return "unsupported"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "cancelled"
	default:
		return "internal"
	}
}
