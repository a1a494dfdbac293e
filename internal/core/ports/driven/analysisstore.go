package driven

import (
	"context"

	"github.com/custodia-labs/insight/internal/core/domain"
)

// AnalysisStore persists analysis results.
// Results are saved whole; concepts and excerpts are owned by their analysis
// and are removed with it.
type AnalysisStore interface {
	// Save stores a complete analysis result atomically.
	Save(ctx context.Context, result *domain.AnalysisResult) error

	// Get retrieves an analysis with all concepts and excerpts.
	// Returns domain.ErrNotFound when absent.
	Get(ctx context.Context, id string) (*domain.AnalysisResult, error)

	// List returns summaries of all stored analyses, newest first.
	List(ctx context.Context) ([]domain.AnalysisSummary, error)

	// Delete removes an analysis and everything it owns.
	// Returns domain.ErrNotFound when absent.
	Delete(ctx context.Context, id string) error
}
