package mcp

import (
	"github.com/custodia-labs/insight/internal/core/ports/driving"
)

// Ports aggregates the driving ports used by the MCP server.
type Ports struct {
	// Analysis runs, lists and deletes analyses.
	Analysis driving.AnalysisService

	// Ingest loads files and URLs. Optional; without it analyze_document fails.
	Ingest driving.IngestService
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p == nil || p.Analysis == nil {
		return ErrMissingAnalysisService
	}
	return nil
}
