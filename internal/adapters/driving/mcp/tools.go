package mcp

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/insight/internal/core/domain"
)

// AnalyzeInput is the input schema for the analyze_document tool.
type AnalyzeInput struct {
	Path string `json:"path,omitempty" jsonschema:"local .txt, .md or .html file to analyse"`
	URL  string `json:"url,omitempty" jsonschema:"http or https URL of an HTML page to analyse"`
}

// GetAnalysisInput is the input schema for get_analysis and delete_analysis.
type GetAnalysisInput struct {
	ID string `json:"id" jsonschema:"the analysis id returned by analyze_document or list_analyses"`
}

// ListAnalysesInput is the input schema for the list_analyses tool.
type ListAnalysesInput struct {
	Limit int `json:"limit,omitempty" jsonschema:"maximum number of analyses to return, newest first (default all)"`
}

// AnalysisOutput is a complete analysis with its flat concept list.
type AnalysisOutput struct {
	ID           string             `json:"id"`
	DocumentName string             `json:"document_name"`
	DocumentType string             `json:"document_type"`
	AnalyzedAt   string             `json:"analyzed_at"`
	ModelUsed    string             `json:"model_used"`
	WordCount    int                `json:"word_count,omitempty"`
	SourceURL    string             `json:"source_url,omitempty"`
	MentalModel  *MentalModelOutput `json:"mental_model,omitempty"`
	Concepts     []ConceptOutput    `json:"concepts"`
}

// MentalModelOutput is the document-wide framing, when the model gave one.
type MentalModelOutput struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// ConceptOutput is one concept. Top-level concepts have no parent_id.
type ConceptOutput struct {
	ID             string          `json:"id"`
	Title          string          `json:"title"`
	ParentID       string          `json:"parent_id,omitempty"`
	Order          int             `json:"order"`
	OneLineSummary string          `json:"one_line_summary"`
	WhatThisIs     string          `json:"what_this_is"`
	WhyItMatters   string          `json:"why_it_matters"`
	KeyPoints      []string        `json:"key_points"`
	Excerpts       []ExcerptOutput `json:"excerpts"`
}

// ExcerptOutput is a verbatim quotation supporting a concept.
type ExcerptOutput struct {
	Text     string `json:"text"`
	Location string `json:"location"`
	Context  string `json:"context,omitempty"`
}

// ListAnalysesOutput is the output schema for the list_analyses tool.
type ListAnalysesOutput struct {
	Analyses []SummaryOutput `json:"analyses"`
	Count    int             `json:"count"`
}

// SummaryOutput is one stored analysis without its concepts.
type SummaryOutput struct {
	ID           string `json:"id"`
	DocumentName string `json:"document_name"`
	DocumentType string `json:"document_type"`
	AnalyzedAt   string `json:"analyzed_at"`
	ModelUsed    string `json:"model_used"`
	WordCount    int    `json:"word_count,omitempty"`
	ConceptCount int    `json:"concept_count"`
}

// DeleteAnalysisOutput is the output schema for the delete_analysis tool.
type DeleteAnalysisOutput struct {
	ID      string `json:"id"`
	Deleted bool   `json:"deleted"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "analyze_document",
		Description: "Extract a hierarchy of key concepts from a local file or a web page and store the result",
	}, s.handleAnalyze)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "list_analyses",
		Description: "List stored analyses, newest first",
	}, s.handleListAnalyses)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "get_analysis",
		Description: "Get a stored analysis with all concepts and excerpts",
	}, s.handleGetAnalysis)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "delete_analysis",
		Description: "Delete a stored analysis",
	}, s.handleDeleteAnalysis)
}

// handleAnalyze handles the analyze_document tool invocation.
func (s *Server) handleAnalyze(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input AnalyzeInput,
) (*mcp.CallToolResult, AnalysisOutput, error) {
	if s.ports.Ingest == nil {
		return nil, AnalysisOutput{}, ErrIngestUnavailable
	}

	path := strings.TrimSpace(input.Path)
	rawURL := strings.TrimSpace(input.URL)
	if (path == "") == (rawURL == "") {
		return nil, AnalysisOutput{}, fmt.Errorf("%w: provide exactly one of path or url", domain.ErrInvalidInput)
	}

	var (
		doc *domain.ParsedDocument
		err error
	)
	if path != "" {
		doc, err = s.ports.Ingest.LoadFile(ctx, path)
	} else {
		doc, err = s.ports.Ingest.LoadURL(ctx, rawURL)
	}
	if err != nil {
		return nil, AnalysisOutput{}, err
	}

	result, err := s.ports.Analysis.Analyze(ctx, doc, nil)
	if err != nil {
		return nil, AnalysisOutput{}, err
	}

	return nil, toAnalysisOutput(result), nil
}

// handleListAnalyses handles the list_analyses tool invocation.
func (s *Server) handleListAnalyses(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ListAnalysesInput,
) (*mcp.CallToolResult, ListAnalysesOutput, error) {
	summaries, err := s.ports.Analysis.List(ctx)
	if err != nil {
		return nil, ListAnalysesOutput{}, err
	}

	if input.Limit > 0 && len(summaries) > input.Limit {
		summaries = summaries[:input.Limit]
	}

	output := ListAnalysesOutput{
		Analyses: make([]SummaryOutput, len(summaries)),
		Count:    len(summaries),
	}
	for i := range summaries {
		output.Analyses[i] = toSummaryOutput(&summaries[i])
	}

	return nil, output, nil
}

// handleGetAnalysis handles the get_analysis tool invocation.
func (s *Server) handleGetAnalysis(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input GetAnalysisInput,
) (*mcp.CallToolResult, AnalysisOutput, error) {
	id := strings.TrimSpace(input.ID)
	if id == "" {
		return nil, AnalysisOutput{}, fmt.Errorf("%w: id is required", domain.ErrInvalidInput)
	}

	result, err := s.ports.Analysis.Get(ctx, id)
	if err != nil {
		return nil, AnalysisOutput{}, err
	}

	return nil, toAnalysisOutput(result), nil
}

// handleDeleteAnalysis handles the delete_analysis tool invocation.
func (s *Server) handleDeleteAnalysis(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input GetAnalysisInput,
) (*mcp.CallToolResult, DeleteAnalysisOutput, error) {
	id := strings.TrimSpace(input.ID)
	if id == "" {
		return nil, DeleteAnalysisOutput{}, fmt.Errorf("%w: id is required", domain.ErrInvalidInput)
	}

	if err := s.ports.Analysis.Delete(ctx, id); err != nil {
		return nil, DeleteAnalysisOutput{}, err
	}

	return nil, DeleteAnalysisOutput{ID: id, Deleted: true}, nil
}

func toAnalysisOutput(r *domain.AnalysisResult) AnalysisOutput {
	out := AnalysisOutput{
		ID:           r.ID,
		DocumentName: r.DocumentName,
		DocumentType: string(r.DocumentType),
		AnalyzedAt:   formatTime(r.AnalyzedAt),
		ModelUsed:    r.ModelUsed,
		Concepts:     make([]ConceptOutput, len(r.Concepts)),
	}
	if r.WordCount != nil {
		out.WordCount = *r.WordCount
	}
	if r.SourceURL != nil {
		out.SourceURL = *r.SourceURL
	}
	if r.MentalModel != nil {
		out.MentalModel = &MentalModelOutput{
			Name:        r.MentalModel.Name,
			Description: r.MentalModel.Description,
		}
	}

	for i := range r.Concepts {
		c := &r.Concepts[i]
		co := ConceptOutput{
			ID:             c.ID,
			Title:          c.Title,
			Order:          c.Order,
			OneLineSummary: c.OneLineSummary,
			WhatThisIs:     c.WhatThisIs,
			WhyItMatters:   c.WhyItMatters,
			KeyPoints:      append([]string{}, c.KeyPoints...),
			Excerpts:       make([]ExcerptOutput, len(c.Excerpts)),
		}
		if c.ParentID != nil {
			co.ParentID = *c.ParentID
		}
		for j, e := range c.Excerpts {
			co.Excerpts[j] = ExcerptOutput{Text: e.Text, Location: e.Location}
			if e.Context != nil {
				co.Excerpts[j].Context = *e.Context
			}
		}
		out.Concepts[i] = co
	}

	return out
}

func toSummaryOutput(s *domain.AnalysisSummary) SummaryOutput {
	out := SummaryOutput{
		ID:           s.ID,
		DocumentName: s.DocumentName,
		DocumentType: string(s.DocumentType),
		AnalyzedAt:   formatTime(s.AnalyzedAt),
		ModelUsed:    s.ModelUsed,
		ConceptCount: s.ConceptCount,
	}
	if s.WordCount != nil {
		out.WordCount = *s.WordCount
	}
	return out
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}
