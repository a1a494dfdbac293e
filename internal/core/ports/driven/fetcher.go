package driven

import (
	"context"

	"github.com/custodia-labs/insight/internal/core/domain"
)

// Fetcher retrieves a remote document over HTTP.
type Fetcher interface {
	// Fetch downloads rawURL. The returned document carries the final URL
	// after redirects in both URI and SourceURL, and the response media type.
	Fetch(ctx context.Context, rawURL string) (*domain.RawDocument, error)
}
