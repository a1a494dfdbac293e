package mcp

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/insight/internal/core/domain"
)

func newTestServer(t *testing.T, analysis *mockAnalysisService, ingest *mockIngestService) *Server {
	t.Helper()
	ports := &Ports{Analysis: analysis}
	if ingest != nil {
		ports.Ingest = ingest
	}
	server, err := NewServer(ports)
	require.NoError(t, err)
	return server
}

func TestServer_handleAnalyze(t *testing.T) {
	ctx := context.Background()
	doc := &domain.ParsedDocument{Text: "some words", WordCount: 2, DocumentType: domain.DocumentTypeText, FileName: "a.txt"}

	t.Run("analyses a local file", func(t *testing.T) {
		analysis := &mockAnalysisService{result: sampleResult()}
		ingest := &mockIngestService{doc: doc}
		server := newTestServer(t, analysis, ingest)

		_, output, err := server.handleAnalyze(ctx, nil, AnalyzeInput{Path: " ./a.txt "})

		require.NoError(t, err)
		assert.Equal(t, "./a.txt", ingest.path)
		assert.Same(t, doc, analysis.analysed)
		assert.Equal(t, "an-1", output.ID)
		assert.Len(t, output.Concepts, 2)
	})

	t.Run("analyses a url", func(t *testing.T) {
		analysis := &mockAnalysisService{result: sampleResult()}
		ingest := &mockIngestService{doc: doc}
		server := newTestServer(t, analysis, ingest)

		_, _, err := server.handleAnalyze(ctx, nil, AnalyzeInput{URL: "https://example.com/post"})

		require.NoError(t, err)
		assert.Equal(t, "https://example.com/post", ingest.url)
		assert.Empty(t, ingest.path)
	})

	t.Run("requires exactly one source", func(t *testing.T) {
		server := newTestServer(t, &mockAnalysisService{}, &mockIngestService{doc: doc})

		_, _, err := server.handleAnalyze(ctx, nil, AnalyzeInput{})
		assert.ErrorIs(t, err, domain.ErrInvalidInput)

		_, _, err = server.handleAnalyze(ctx, nil, AnalyzeInput{Path: "a.txt", URL: "https://example.com"})
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("fails without ingest service", func(t *testing.T) {
		server := newTestServer(t, &mockAnalysisService{}, nil)

		_, _, err := server.handleAnalyze(ctx, nil, AnalyzeInput{Path: "a.txt"})

		assert.ErrorIs(t, err, ErrIngestUnavailable)
	})

	t.Run("propagates ingest error", func(t *testing.T) {
		analysis := &mockAnalysisService{}
		server := newTestServer(t, analysis, &mockIngestService{err: domain.ErrUnsupportedType})

		_, _, err := server.handleAnalyze(ctx, nil, AnalyzeInput{Path: "a.pdf"})

		assert.ErrorIs(t, err, domain.ErrUnsupportedType)
		assert.Nil(t, analysis.analysed)
	})

	t.Run("propagates analysis error", func(t *testing.T) {
		server := newTestServer(t, &mockAnalysisService{err: domain.ErrAnalysisInProgress}, &mockIngestService{doc: doc})

		_, _, err := server.handleAnalyze(ctx, nil, AnalyzeInput{Path: "a.txt"})

		assert.ErrorIs(t, err, domain.ErrAnalysisInProgress)
	})
}

func TestServer_handleGetAnalysis(t *testing.T) {
	ctx := context.Background()

	t.Run("returns flattened analysis", func(t *testing.T) {
		server := newTestServer(t, &mockAnalysisService{result: sampleResult()}, nil)

		_, output, err := server.handleGetAnalysis(ctx, nil, GetAnalysisInput{ID: "an-1"})

		require.NoError(t, err)
		assert.Equal(t, "notes.md", output.DocumentName)
		assert.Equal(t, "markdown", output.DocumentType)
		assert.Equal(t, "2024-05-02T06:00:00Z", output.AnalyzedAt)
		assert.Equal(t, 420, output.WordCount)
		assert.Empty(t, output.SourceURL)
		require.NotNil(t, output.MentalModel)
		assert.Equal(t, "Pipeline", output.MentalModel.Name)

		require.Len(t, output.Concepts, 2)
		root := output.Concepts[0]
		assert.Empty(t, root.ParentID)
		assert.Equal(t, []string{"files", "urls"}, root.KeyPoints)
		require.Len(t, root.Excerpts, 1)
		assert.Equal(t, "intro", root.Excerpts[0].Context)

		child := output.Concepts[1]
		assert.Equal(t, "c1", child.ParentID)
		assert.NotNil(t, child.KeyPoints)
		assert.NotNil(t, child.Excerpts)
	})

	t.Run("requires id", func(t *testing.T) {
		server := newTestServer(t, &mockAnalysisService{}, nil)

		_, _, err := server.handleGetAnalysis(ctx, nil, GetAnalysisInput{ID: "  "})

		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("returns not found", func(t *testing.T) {
		server := newTestServer(t, &mockAnalysisService{result: sampleResult()}, nil)

		_, _, err := server.handleGetAnalysis(ctx, nil, GetAnalysisInput{ID: "missing"})

		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestServer_handleListAnalyses(t *testing.T) {
	ctx := context.Background()
	summaries := []domain.AnalysisSummary{
		{ID: "b", DocumentName: "b.txt", DocumentType: domain.DocumentTypeText, AnalyzedAt: time.Unix(200, 0), ConceptCount: 3, WordCount: intPtr(10)},
		{ID: "a", DocumentName: "a.html", DocumentType: domain.DocumentTypeHTML, AnalyzedAt: time.Unix(100, 0), ConceptCount: 5},
	}

	t.Run("returns all summaries", func(t *testing.T) {
		server := newTestServer(t, &mockAnalysisService{summaries: summaries}, nil)

		_, output, err := server.handleListAnalyses(ctx, nil, ListAnalysesInput{})

		require.NoError(t, err)
		assert.Equal(t, 2, output.Count)
		assert.Equal(t, "b", output.Analyses[0].ID)
		assert.Equal(t, 10, output.Analyses[0].WordCount)
		assert.Equal(t, "html", output.Analyses[1].DocumentType)
		assert.Equal(t, 5, output.Analyses[1].ConceptCount)
	})

	t.Run("applies limit", func(t *testing.T) {
		server := newTestServer(t, &mockAnalysisService{summaries: summaries}, nil)

		_, output, err := server.handleListAnalyses(ctx, nil, ListAnalysesInput{Limit: 1})

		require.NoError(t, err)
		assert.Equal(t, 1, output.Count)
		assert.Equal(t, "b", output.Analyses[0].ID)
	})

	t.Run("empty store returns empty list", func(t *testing.T) {
		server := newTestServer(t, &mockAnalysisService{}, nil)

		_, output, err := server.handleListAnalyses(ctx, nil, ListAnalysesInput{})

		require.NoError(t, err)
		assert.Equal(t, 0, output.Count)
		assert.NotNil(t, output.Analyses)
	})

	t.Run("returns error on failure", func(t *testing.T) {
		server := newTestServer(t, &mockAnalysisService{err: errors.New("database error")}, nil)

		_, _, err := server.handleListAnalyses(ctx, nil, ListAnalysesInput{})

		assert.EqualError(t, err, "database error")
	})
}

func TestServer_handleDeleteAnalysis(t *testing.T) {
	ctx := context.Background()

	t.Run("deletes by id", func(t *testing.T) {
		analysis := &mockAnalysisService{}
		server := newTestServer(t, analysis, nil)

		_, output, err := server.handleDeleteAnalysis(ctx, nil, GetAnalysisInput{ID: "an-1"})

		require.NoError(t, err)
		assert.True(t, output.Deleted)
		assert.Equal(t, "an-1", analysis.deleted)
	})

	t.Run("requires id", func(t *testing.T) {
		server := newTestServer(t, &mockAnalysisService{}, nil)

		_, _, err := server.handleDeleteAnalysis(ctx, nil, GetAnalysisInput{})

		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("propagates not found", func(t *testing.T) {
		server := newTestServer(t, &mockAnalysisService{err: domain.ErrNotFound}, nil)

		_, _, err := server.handleDeleteAnalysis(ctx, nil, GetAnalysisInput{ID: "x"})

		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}
