package driven

import (
	"context"

	"github.com/custodia-labs/insight/internal/core/domain"
)

// NormaliserRegistry selects the appropriate normaliser for a document.
// It maintains a priority-ordered list of normalisers and dispatches
// based on file extension, then MIME type.
type NormaliserRegistry interface {
	// Normalise transforms a raw document using the best matching normaliser.
	Normalise(ctx context.Context, raw *domain.RawDocument) (*domain.ParsedDocument, error)

	// Register adds a normaliser to the registry.
	Register(normaliser Normaliser)

	// IsSupported reports whether a file name has a usable normaliser.
	IsSupported(fileName string) bool

	// SupportedExtensions returns all extensions that can be normalised.
	SupportedExtensions() []string
}
