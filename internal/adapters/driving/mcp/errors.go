// Package mcp provides an MCP (Model Context Protocol) server adapter for insight.
// It lets AI assistants run document analyses and read stored concept trees.
package mcp

import "errors"

var (
	// ErrMissingAnalysisService is returned when the analysis service is not provided.
	ErrMissingAnalysisService = errors.New("mcp: analysis service is required")

	// ErrIngestUnavailable is returned by analyze_document when no ingest service is configured.
	ErrIngestUnavailable = errors.New("mcp: ingest service is not configured")
)
