package mcp

import (
	"context"
	"time"

	"github.com/custodia-labs/insight/internal/core/domain"
)

// mockAnalysisService is a mock implementation of driving.AnalysisService.
type mockAnalysisService struct {
	result    *domain.AnalysisResult
	summaries []domain.AnalysisSummary
	err       error

	analysed *domain.ParsedDocument
	gotID    string
	deleted  string
}

func (m *mockAnalysisService) Analyze(
	_ context.Context,
	doc *domain.ParsedDocument,
	_ domain.ProgressFunc,
) (*domain.AnalysisResult, error) {
	m.analysed = doc
	return m.result, m.err
}

func (m *mockAnalysisService) Get(_ context.Context, id string) (*domain.AnalysisResult, error) {
	m.gotID = id
	if m.err != nil {
		return nil, m.err
	}
	if m.result == nil || m.result.ID != id {
		return nil, domain.ErrNotFound
	}
	return m.result, nil
}

func (m *mockAnalysisService) List(_ context.Context) ([]domain.AnalysisSummary, error) {
	return m.summaries, m.err
}

func (m *mockAnalysisService) Delete(_ context.Context, id string) error {
	if m.err != nil {
		return m.err
	}
	m.deleted = id
	return nil
}

// mockIngestService is a mock implementation of driving.IngestService.
type mockIngestService struct {
	doc  *domain.ParsedDocument
	err  error
	path string
	url  string
}

func (m *mockIngestService) LoadFile(_ context.Context, path string) (*domain.ParsedDocument, error) {
	m.path = path
	return m.doc, m.err
}

func (m *mockIngestService) LoadURL(_ context.Context, rawURL string) (*domain.ParsedDocument, error) {
	m.url = rawURL
	return m.doc, m.err
}

func (m *mockIngestService) IsSupported(_ string) bool {
	return true
}

func intPtr(v int) *int       { return &v }
func strPtr(s string) *string { return &s }

func sampleResult() *domain.AnalysisResult {
	return &domain.AnalysisResult{
		ID:           "an-1",
		DocumentName: "notes.md",
		DocumentType: domain.DocumentTypeMarkdown,
		AnalyzedAt:   time.Date(2024, 5, 2, 8, 0, 0, 0, time.FixedZone("CEST", 2*60*60)),
		ModelUsed:    "claude-3-opus-20240229",
		WordCount:    intPtr(420),
		MentalModel:  &domain.MentalModel{Name: "Pipeline", Description: "stages feed each other"},
		Concepts: []domain.Concept{
			{
				ID: "c1", Title: "Ingest", Order: 0, OneLineSummary: "getting text in",
				KeyPoints: []string{"files", "urls"},
				Excerpts:  []domain.Excerpt{{ID: "e1", Text: "read the file", Location: "para 1", Context: strPtr("intro")}},
			},
			{ID: "c2", Title: "Parse", ParentID: strPtr("c1"), Order: 0},
		},
	}
}
