// Package docx recognises Word documents so they can be rejected with a
// clear error instead of being treated as an unknown file.
package docx

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/custodia-labs/insight/internal/core/domain"
	"github.com/custodia-labs/insight/internal/core/ports/driven"
)

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

// Normaliser handles DOCX documents.
type Normaliser struct{}

// New creates a new DOCX normaliser.
func New() *Normaliser {
	return &Normaliser{}
}

// SupportedExtensions returns the file extensions this normaliser handles.
func (n *Normaliser) SupportedExtensions() []string {
	return []string{".docx"}
}

// SupportedMIMETypes returns the MIME types this normaliser handles.
func (n *Normaliser) SupportedMIMETypes() []string {
	return []string{
		"application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	}
}

// DocumentType returns the document type produced.
func (n *Normaliser) DocumentType() domain.DocumentType {
	return domain.DocumentTypeDOCX
}

// Priority returns the selection priority.
func (n *Normaliser) Priority() int {
	return 50
}

// Normalise always fails with domain.ErrUnsupportedType.
func (n *Normaliser) Normalise(_ context.Context, raw *domain.RawDocument) (*domain.ParsedDocument, error) {
	if raw == nil {
		return nil, domain.ErrInvalidInput
	}
	name := raw.FileName
	if name == "" {
		name = filepath.Base(raw.URI)
	}
	return nil, fmt.Errorf("%w: %s: DOCX documents are not supported, save as .txt or .md", domain.ErrUnsupportedType, name)
}
