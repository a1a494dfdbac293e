package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/insight/internal/analysis/render"
	"github.com/custodia-labs/insight/internal/core/domain"
)

const (
	// uriScheme is the custom URI scheme for insight resources.
	uriScheme = "insight://"

	analysesURI    = uriScheme + "analyses"
	markdownSuffix = "/markdown"

	mimeJSON     = "application/json"
	mimeMarkdown = "text/markdown"
)

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	s.server.AddResource(&mcp.Resource{
		URI:         analysesURI,
		Name:        "analyses",
		Description: "Summaries of all stored analyses, newest first",
		MIMEType:    mimeJSON,
	}, s.handleAnalysesResource)

	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: analysesURI + "/{id}",
		Name:        "analysis",
		Description: "A stored analysis with its concepts and excerpts",
		MIMEType:    mimeJSON,
	}, s.handleAnalysisResource)

	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: analysesURI + "/{id}" + markdownSuffix,
		Name:        "analysis-markdown",
		Description: "A stored analysis rendered as Markdown",
		MIMEType:    mimeMarkdown,
	}, s.handleAnalysisMarkdownResource)
}

// handleAnalysesResource returns summaries of all stored analyses.
func (s *Server) handleAnalysesResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	summaries, err := s.ports.Analysis.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing analyses: %w", err)
	}

	infos := make([]SummaryOutput, len(summaries))
	for i := range summaries {
		infos[i] = toSummaryOutput(&summaries[i])
	}

	data, err := json.MarshalIndent(infos, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling analyses: %w", err)
	}

	return textResult(req.Params.URI, mimeJSON, string(data)), nil
}

// handleAnalysisResource returns one analysis as JSON.
func (s *Server) handleAnalysisResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	result, err := s.loadAnalysis(ctx, req.Params.URI, "")
	if err != nil {
		return nil, err
	}

	data, err := render.JSON(result)
	if err != nil {
		return nil, err
	}

	return textResult(req.Params.URI, mimeJSON, string(data)), nil
}

// handleAnalysisMarkdownResource returns one analysis as Markdown.
func (s *Server) handleAnalysisMarkdownResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	result, err := s.loadAnalysis(ctx, req.Params.URI, markdownSuffix)
	if err != nil {
		return nil, err
	}

	return textResult(req.Params.URI, mimeMarkdown, render.Markdown(result)), nil
}

func (s *Server) loadAnalysis(ctx context.Context, uri, suffix string) (*domain.AnalysisResult, error) {
	id := extractAnalysisID(uri, suffix)
	if id == "" {
		return nil, mcp.ResourceNotFoundError(uri)
	}

	result, err := s.ports.Analysis.Get(ctx, id)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, mcp.ResourceNotFoundError(uri)
	}
	if err != nil {
		return nil, fmt.Errorf("getting analysis: %w", err)
	}
	return result, nil
}

func textResult(uri, mimeType, text string) *mcp.ReadResourceResult {
	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: mimeType,
			Text:     text,
		}},
	}
}

// extractAnalysisID extracts the id from insight://analyses/{id}{suffix}.
// It returns "" when the URI does not have exactly that shape.
func extractAnalysisID(uri, suffix string) string {
	const prefix = analysesURI + "/"

	if !strings.HasPrefix(uri, prefix) {
		return ""
	}
	uri = strings.TrimPrefix(uri, prefix)

	if suffix != "" {
		if !strings.HasSuffix(uri, suffix) {
			return ""
		}
		uri = strings.TrimSuffix(uri, suffix)
	}

	if strings.Contains(uri, "/") {
		return ""
	}
	return uri
}
