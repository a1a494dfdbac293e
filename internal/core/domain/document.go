package domain

import "strings"

// DocumentType identifies the format a document was ingested from.
type DocumentType string

const (
	// DocumentTypeText is a plain text file.
	DocumentTypeText DocumentType = "text"

	// DocumentTypeMarkdown is a Markdown file.
	DocumentTypeMarkdown DocumentType = "markdown"

	// DocumentTypeHTML is an HTML page with tags stripped.
	DocumentTypeHTML DocumentType = "html"

	// DocumentTypeDOCX is a Word document. Recognised but not supported.
	DocumentTypeDOCX DocumentType = "docx"
)

// String returns the document type as a string.
func (t DocumentType) String() string {
	return string(t)
}

// IsValid reports whether t is a known document type.
func (t DocumentType) IsValid() bool {
	switch t {
	case DocumentTypeText, DocumentTypeMarkdown, DocumentTypeHTML, DocumentTypeDOCX:
		return true
	}
	return false
}

// ParsedDocument is the normalised input to analysis.
// It is created once at ingestion and never mutated.
type ParsedDocument struct {
	// Text is the normalised document text.
	Text string

	// WordCount is the number of whitespace-delimited tokens in Text.
	WordCount int

	// DocumentType is the format the text was extracted from.
	DocumentType DocumentType

	// FileName is the base name of the source file.
	FileName string

	// SourcePath is the absolute path of a local source file.
	SourcePath string

	// SourceURL is set when the document was fetched over HTTP.
	SourceURL string
}

// NewParsedDocument builds a ParsedDocument, deriving WordCount from text.
func NewParsedDocument(text string, docType DocumentType, fileName string) ParsedDocument {
	return ParsedDocument{
		Text:         text,
		WordCount:    CountWords(text),
		DocumentType: docType,
		FileName:     fileName,
	}
}

// Key identifies the document for in-flight tracking: the source URL, else
// the source path, else the file name.
func (d ParsedDocument) Key() string {
	switch {
	case d.SourceURL != "":
		return d.SourceURL
	case d.SourcePath != "":
		return d.SourcePath
	default:
		return d.FileName
	}
}

// CountWords returns the number of whitespace-delimited tokens in text.
func CountWords(text string) int {
	return len(strings.Fields(text))
}
