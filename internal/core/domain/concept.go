package domain

import "time"

// RawExcerpt is an excerpt as emitted by the model.
type RawExcerpt struct {
	Text     string
	Location string
	Context  *string
}

// RawConcept is a flat concept as emitted by the model.
// ExternalID and ParentExternalID are only unique within one completion
// unless they have been qualified by the merge step.
type RawConcept struct {
	ExternalID       string
	Title            string
	ParentExternalID *string
	Order            int
	OneLineSummary   string
	WhatThisIs       string
	WhyItMatters     string
	KeyPoints        []string
	Excerpts         []RawExcerpt
}

// MentalModel is the optional document-wide framing the model may return.
type MentalModel struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// AnalysisResponse is the decoded payload of one completion.
type AnalysisResponse struct {
	Concepts    []RawConcept
	MentalModel *MentalModel
}

// Excerpt is a verbatim quotation owned by exactly one Concept.
type Excerpt struct {
	ID       string  `json:"id"`
	Text     string  `json:"text"`
	Location string  `json:"location"`
	Context  *string `json:"context,omitempty"`
}

// Concept is a resolved concept with a locally generated identity.
// ParentID, when set, references another Concept in the same result.
type Concept struct {
	ID             string    `json:"id"`
	Title          string    `json:"title"`
	ParentID       *string   `json:"parent_id,omitempty"`
	Order          int       `json:"order"`
	OneLineSummary string    `json:"one_line_summary"`
	WhatThisIs     string    `json:"what_this_is"`
	WhyItMatters   string    `json:"why_it_matters"`
	KeyPoints      []string  `json:"key_points"`
	Excerpts       []Excerpt `json:"excerpts"`
}

// IsRoot reports whether the concept has no parent.
func (c *Concept) IsRoot() bool {
	return c.ParentID == nil
}

// AnalysisResult is the aggregate root produced by one successful analysis.
type AnalysisResult struct {
	ID           string       `json:"id"`
	DocumentName string       `json:"document_name"`
	DocumentType DocumentType `json:"document_type"`
	AnalyzedAt   time.Time    `json:"analyzed_at"`
	ModelUsed    string       `json:"model_used"`
	WordCount    *int         `json:"word_count,omitempty"`
	SourceURL    *string      `json:"source_url,omitempty"`
	MentalModel  *MentalModel `json:"mental_model,omitempty"`
	Concepts     []Concept    `json:"concepts"`
}

// ConceptByID returns the concept with the given id, or nil.
func (r *AnalysisResult) ConceptByID(id string) *Concept {
	for i := range r.Concepts {
		if r.Concepts[i].ID == id {
			return &r.Concepts[i]
		}
	}
	return nil
}

// AnalysisSummary is a lightweight listing entry for stored analyses.
type AnalysisSummary struct {
	ID           string
	DocumentName string
	DocumentType DocumentType
	AnalyzedAt   time.Time
	ModelUsed    string
	WordCount    *int
	ConceptCount int
}
