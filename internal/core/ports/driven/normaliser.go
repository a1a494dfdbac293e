package driven

import (
	"context"

	"github.com/custodia-labs/insight/internal/core/domain"
)

// Normaliser transforms raw document bytes into analysable text.
// Each normaliser handles specific file extensions (e.g., .md, .html).
type Normaliser interface {
	// SupportedExtensions returns the lower-case extensions handled, including the dot.
	SupportedExtensions() []string

	// SupportedMIMETypes returns the MIME types handled.
	SupportedMIMETypes() []string

	// DocumentType returns the document type produced.
	DocumentType() domain.DocumentType

	// Priority returns the selection priority (higher = preferred).
	// Format-specific normalisers should return 50-89.
	// Fallback normalisers should return 1-9.
	Priority() int

	// Normalise transforms a raw document into a parsed document.
	Normalise(ctx context.Context, raw *domain.RawDocument) (*domain.ParsedDocument, error)
}
