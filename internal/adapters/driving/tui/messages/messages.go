// Package messages defines Bubbletea message types for the TUI.
// Messages represent events and commands that flow through the Elm architecture.
package messages

import (
	"github.com/custodia-labs/insight/internal/core/domain"
)

// ViewChanged is sent when navigating between views.
type ViewChanged struct {
	View ViewType
}

// ViewType identifies which view is currently active.
type ViewType int

const (
	// ViewAnalyses lists stored analyses.
	ViewAnalyses ViewType = iota
	// ViewConcepts browses the concept tree of one analysis.
	ViewConcepts
	// ViewHelp is the help/keybindings view.
	ViewHelp
)

// String returns the string representation of the view type.
func (v ViewType) String() string {
	switch v {
	case ViewAnalyses:
		return "analyses"
	case ViewConcepts:
		return "concepts"
	case ViewHelp:
		return "help"
	default:
		return "unknown"
	}
}

// ErrorOccurred signals that an error happened.
type ErrorOccurred struct {
	Err error
}

// Quit signals the application should exit.
type Quit struct{}

// AnalysesLoaded carries stored analysis summaries from the service.
type AnalysesLoaded struct {
	Analyses []domain.AnalysisSummary
	Err      error
}

// AnalysisSelected requests the concept view for an analysis.
type AnalysisSelected struct {
	ID string
}

// AnalysisLoaded carries a full analysis result.
type AnalysisLoaded struct {
	Result *domain.AnalysisResult
	Err    error
}

// AnalysisDeleted signals an analysis was deleted.
type AnalysisDeleted struct {
	ID  string
	Err error
}

// ProgressUpdated carries one progress event of a running analysis.
type ProgressUpdated struct {
	Progress domain.Progress
}

// AnalysisFinished signals a running analysis returned.
type AnalysisFinished struct {
	Result *domain.AnalysisResult
	Err    error
}
