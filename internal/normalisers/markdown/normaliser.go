// Package markdown provides a Normaliser for Markdown documents.
//
// Markdown is passed through with its formatting intact: headings and lists
// carry structure the model uses when grouping concepts.
package markdown

import (
	"context"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/custodia-labs/insight/internal/core/domain"
	"github.com/custodia-labs/insight/internal/core/ports/driven"
)

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

// Normaliser handles Markdown documents.
type Normaliser struct{}

// New creates a new Markdown normaliser.
func New() *Normaliser {
	return &Normaliser{}
}

// SupportedExtensions returns the file extensions this normaliser handles.
func (n *Normaliser) SupportedExtensions() []string {
	return []string{".md", ".markdown"}
}

// SupportedMIMETypes returns the MIME types this normaliser handles.
func (n *Normaliser) SupportedMIMETypes() []string {
	return []string{"text/markdown", "text/x-markdown"}
}

// DocumentType returns the document type produced.
func (n *Normaliser) DocumentType() domain.DocumentType {
	return domain.DocumentTypeMarkdown
}

// Priority returns the selection priority.
func (n *Normaliser) Priority() int {
	return 50 // Generic format normaliser, higher than plaintext
}

// frontMatter matches a leading YAML front matter block.
var frontMatter = regexp.MustCompile(`(?s)\A---\n.*?\n---\n`)

// Normalise trims the document and drops YAML front matter.
func (n *Normaliser) Normalise(_ context.Context, raw *domain.RawDocument) (*domain.ParsedDocument, error) {
	if raw == nil {
		return nil, domain.ErrInvalidInput
	}
	name := raw.FileName
	if name == "" {
		name = filepath.Base(raw.URI)
	}
	if !utf8.Valid(raw.Content) {
		return nil, fmt.Errorf("%w: %s is not valid UTF-8", domain.ErrInvalidInput, name)
	}

	text := strings.ReplaceAll(string(raw.Content), "\r\n", "\n")
	text = frontMatter.ReplaceAllString(text, "")

	doc := domain.NewParsedDocument(strings.TrimSpace(text), domain.DocumentTypeMarkdown, name)
	doc.SourceURL = raw.SourceURL
	return &doc, nil
}
