package normalisers

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/insight/internal/core/domain"
	"github.com/custodia-labs/insight/internal/core/ports/driven"
)

// registryMockNormaliser is a simple mock for testing registry selection.
type registryMockNormaliser struct {
	extensions []string
	mimeTypes  []string
	priority   int
	label      string
}

func (m *registryMockNormaliser) SupportedExtensions() []string { return m.extensions }
func (m *registryMockNormaliser) SupportedMIMETypes() []string  { return m.mimeTypes }
func (m *registryMockNormaliser) DocumentType() domain.DocumentType {
	return domain.DocumentTypeText
}
func (m *registryMockNormaliser) Priority() int { return m.priority }
func (m *registryMockNormaliser) Normalise(_ context.Context, raw *domain.RawDocument) (*domain.ParsedDocument, error) {
	doc := domain.NewParsedDocument(m.label, domain.DocumentTypeText, raw.FileName)
	return &doc, nil
}

func TestNewRegistry(t *testing.T) {
	r := NewRegistry()
	require.NotNil(t, r)
	assert.Empty(t, r.SupportedExtensions())
}

func TestDefaultRegistry_SupportedExtensions(t *testing.T) {
	r := NewDefaultRegistry()
	assert.Equal(t, []string{".docx", ".htm", ".html", ".markdown", ".md", ".txt"}, r.SupportedExtensions())
}

func TestDefaultRegistry_IsSupported(t *testing.T) {
	r := NewDefaultRegistry()

	tests := []struct {
		name     string
		expected bool
	}{
		{"notes.txt", true},
		{"README.md", true},
		{"README.MD", true},
		{"guide.markdown", true},
		{"page.html", true},
		{"page.htm", true},
		{"report.docx", true},
		{"slides.pdf", false},
		{"archive.tar.gz", false},
		{"Makefile", false},
		{"", false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, r.IsSupported(tc.name))
		})
	}
}

func TestDefaultRegistry_Normalise(t *testing.T) {
	r := NewDefaultRegistry()
	ctx := context.Background()

	tests := []struct {
		name         string
		raw          *domain.RawDocument
		expectedType domain.DocumentType
		expectedText string
	}{
		{
			name:         "text by extension",
			raw:          &domain.RawDocument{FileName: "a.txt", Content: []byte(" one two ")},
			expectedType: domain.DocumentTypeText,
			expectedText: "one two",
		},
		{
			name:         "markdown by extension",
			raw:          &domain.RawDocument{FileName: "a.md", Content: []byte("# Head")},
			expectedType: domain.DocumentTypeMarkdown,
			expectedText: "# Head",
		},
		{
			name:         "html by extension",
			raw:          &domain.RawDocument{FileName: "a.html", Content: []byte("<p>Hi &amp; bye</p>")},
			expectedType: domain.DocumentTypeHTML,
			expectedText: "Hi & bye",
		},
		{
			name: "html by mime type",
			raw: &domain.RawDocument{
				URI:      "https://example.com/article",
				MIMEType: "text/html; charset=utf-8",
				Content:  []byte("<title>Article</title><p>Body</p>"),
			},
			expectedType: domain.DocumentTypeHTML,
			expectedText: "Body",
		},
		{
			name: "extension in url path",
			raw: &domain.RawDocument{
				URI:     "https://example.com/notes.txt?download=1",
				Content: []byte("plain"),
			},
			expectedType: domain.DocumentTypeText,
			expectedText: "plain",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			doc, err := r.Normalise(ctx, tc.raw)
			require.NoError(t, err)
			assert.Equal(t, tc.expectedType, doc.DocumentType)
			assert.Equal(t, tc.expectedText, doc.Text)
		})
	}
}

func TestDefaultRegistry_Unsupported(t *testing.T) {
	r := NewDefaultRegistry()
	ctx := context.Background()

	_, err := r.Normalise(ctx, &domain.RawDocument{FileName: "slides.pdf", Content: []byte("%PDF")})
	assert.ErrorIs(t, err, domain.ErrUnsupportedType)
	assert.Contains(t, err.Error(), "slides.pdf")

	_, err = r.Normalise(ctx, &domain.RawDocument{FileName: "report.docx", Content: []byte("PK")})
	assert.ErrorIs(t, err, domain.ErrUnsupportedType)

	_, err = r.Normalise(ctx, &domain.RawDocument{URI: "https://x.test/", MIMEType: "image/png"})
	assert.ErrorIs(t, err, domain.ErrUnsupportedType)

	_, err = r.Normalise(ctx, nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestRegistry_PriorityWins(t *testing.T) {
	r := NewRegistry()
	r.Register(&registryMockNormaliser{extensions: []string{".txt"}, priority: 5, label: "low"})
	r.Register(&registryMockNormaliser{extensions: []string{".txt"}, priority: 60, label: "high"})
	r.Register(nil)

	doc, err := r.Normalise(context.Background(), &domain.RawDocument{FileName: "a.txt"})
	require.NoError(t, err)
	assert.Equal(t, "high", doc.Text)
	assert.Equal(t, []string{".txt"}, r.SupportedExtensions())
}

func TestRegistry_ExtensionBeforeMIMEType(t *testing.T) {
	r := NewRegistry()
	r.Register(&registryMockNormaliser{extensions: []string{".md"}, priority: 10, label: "by-ext"})
	r.Register(&registryMockNormaliser{mimeTypes: []string{"text/plain"}, priority: 90, label: "by-mime"})

	doc, err := r.Normalise(context.Background(), &domain.RawDocument{FileName: "a.md", MIMEType: "text/plain"})
	require.NoError(t, err)
	assert.Equal(t, "by-ext", doc.Text)
}

func TestInterfaceCompliance(t *testing.T) {
	var _ driven.NormaliserRegistry = (*Registry)(nil)
}
