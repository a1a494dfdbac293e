package driving

import (
	"context"

	"github.com/custodia-labs/insight/internal/core/domain"
)

// AnalysisService runs and manages document analyses.
type AnalysisService interface {
	// Analyze extracts the concept tree of doc and persists the result.
	// progress may be nil. Nothing is persisted when an error is returned.
	Analyze(ctx context.Context, doc *domain.ParsedDocument, progress domain.ProgressFunc) (*domain.AnalysisResult, error)

	// Get retrieves a stored analysis by ID.
	Get(ctx context.Context, id string) (*domain.AnalysisResult, error)

	// List returns summaries of stored analyses, newest first.
	List(ctx context.Context) ([]domain.AnalysisSummary, error)

	// Delete removes an analysis with its concepts and excerpts.
	Delete(ctx context.Context, id string) error
}

// IngestService turns files and URLs into parsed documents.
type IngestService interface {
	// LoadFile reads and normalises a local file.
	LoadFile(ctx context.Context, path string) (*domain.ParsedDocument, error)

	// LoadURL fetches and normalises a remote HTML document.
	LoadURL(ctx context.Context, rawURL string) (*domain.ParsedDocument, error)

	// IsSupported reports whether the file name has an ingestible extension.
	IsSupported(path string) bool
}
