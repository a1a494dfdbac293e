package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCountWords(t *testing.T) {
	tests := []struct {
		name string
		text string
		want int
	}{
		{"empty", "", 0},
		{"whitespace only", " \n\t ", 0},
		{"single", "word", 1},
		{"mixed separators", "one two\nthree\tfour\n\nfive", 5},
		{"leading and trailing", "  padded words  ", 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CountWords(tt.text))
		})
	}
}

func TestNewParsedDocument(t *testing.T) {
	doc := NewParsedDocument("alpha beta gamma", DocumentTypeMarkdown, "notes.md")
	assert.Equal(t, 3, doc.WordCount)
	assert.Equal(t, DocumentTypeMarkdown, doc.DocumentType)
	assert.Equal(t, "notes.md", doc.FileName)
	assert.Equal(t, "notes.md", doc.Key())

	doc.SourcePath = "/work/a/notes.md"
	assert.Equal(t, "/work/a/notes.md", doc.Key())

	other := doc
	other.SourcePath = "/work/b/notes.md"
	assert.NotEqual(t, doc.Key(), other.Key(), "same base name in different directories")

	doc.SourceURL = "https://example.com/page"
	assert.Equal(t, "https://example.com/page", doc.Key())
}

func TestDocumentType_IsValid(t *testing.T) {
	assert.True(t, DocumentTypeText.IsValid())
	assert.True(t, DocumentTypeHTML.IsValid())
	assert.True(t, DocumentTypeDOCX.IsValid())
	assert.False(t, DocumentType("pdf").IsValid())
	assert.Equal(t, "markdown", DocumentTypeMarkdown.String())
}

func TestPhase_IsTerminal(t *testing.T) {
	assert.True(t, PhaseComplete.IsTerminal())
	assert.True(t, PhaseFailed.IsTerminal())
	assert.False(t, PhaseAnalyzing.IsTerminal())
	assert.False(t, PhaseIdle.IsTerminal())
}

func TestAnalysisResult_ConceptByID(t *testing.T) {
	r := AnalysisResult{Concepts: []Concept{{ID: "a", Title: "A"}, {ID: "b", Title: "B"}}}
	c := r.ConceptByID("b")
	if assert.NotNil(t, c) {
		assert.Equal(t, "B", c.Title)
		assert.True(t, c.IsRoot())
	}
	assert.Nil(t, r.ConceptByID("missing"))
}
