package plaintext

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/custodia-labs/insight/internal/core/domain"
	"github.com/custodia-labs/insight/internal/core/ports/driven"
)

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

// Normaliser handles plain text documents.
type Normaliser struct{}

// New creates a new plain text normaliser.
func New() *Normaliser {
	return &Normaliser{}
}

// SupportedExtensions returns the file extensions this normaliser handles.
func (n *Normaliser) SupportedExtensions() []string {
	return []string{".txt"}
}

// SupportedMIMETypes returns the MIME types this normaliser handles.
func (n *Normaliser) SupportedMIMETypes() []string {
	return []string{"text/plain"}
}

// DocumentType returns the document type produced.
func (n *Normaliser) DocumentType() domain.DocumentType {
	return domain.DocumentTypeText
}

// Priority returns the selection priority.
func (n *Normaliser) Priority() int {
	return 5 // Fallback normaliser
}

// Normalise decodes the raw bytes as UTF-8 and trims surrounding whitespace.
func (n *Normaliser) Normalise(_ context.Context, raw *domain.RawDocument) (*domain.ParsedDocument, error) {
	if raw == nil {
		return nil, domain.ErrInvalidInput
	}
	if !utf8.Valid(raw.Content) {
		return nil, fmt.Errorf("%w: %s is not valid UTF-8", domain.ErrInvalidInput, displayName(raw))
	}

	text := strings.ReplaceAll(string(raw.Content), "\r\n", "\n")
	doc := domain.NewParsedDocument(strings.TrimSpace(text), domain.DocumentTypeText, displayName(raw))
	doc.SourceURL = raw.SourceURL
	return &doc, nil
}

// displayName prefers the explicit file name and falls back to the URI base.
func displayName(raw *domain.RawDocument) string {
	if raw.FileName != "" {
		return raw.FileName
	}
	return filepath.Base(raw.URI)
}
