// Package tui provides an interactive terminal user interface for insight.
// It implements a driving adapter following hexagonal architecture principles.
package tui

import (
	"github.com/custodia-labs/insight/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the TUI.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Analysis lists, loads and deletes stored analyses.
	Analysis driving.AnalysisService
}

// NewPorts creates a new Ports aggregate with the given services.
func NewPorts(analysis driving.AnalysisService) *Ports {
	return &Ports{Analysis: analysis}
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p == nil {
		return ErrInvalidPorts
	}
	if p.Analysis == nil {
		return ErrMissingAnalysisService
	}
	return nil
}
