package domain

// Phase is a state of the analysis state machine.
type Phase string

const (
	PhaseIdle       Phase = "idle"
	PhasePreparing  Phase = "preparing"
	PhaseAnalyzing  Phase = "analyzing"
	PhaseMerging    Phase = "merging"
	PhaseAssembling Phase = "assembling"
	PhaseSaving     Phase = "saving"
	PhaseComplete   Phase = "complete"
	PhaseFailed     Phase = "failed"
)

// IsTerminal reports whether no further transitions follow p.
func (p Phase) IsTerminal() bool {
	return p == PhaseComplete || p == PhaseFailed
}

// Progress is emitted synchronously at every state transition.
// Current and Total are only meaningful while analysing chunks.
type Progress struct {
	Phase   Phase
	Current int
	Total   int
	Message string
	Err     error
}

// ProgressFunc receives progress events. It must not block for long.
type ProgressFunc func(Progress)
