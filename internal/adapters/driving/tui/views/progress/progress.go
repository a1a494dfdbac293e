// Package progress renders a running analysis with a spinner and chunk bar.
//
// It is a standalone Bubbletea model: the analyze command runs it on
// terminals while the orchestrator reports progress from another goroutine.
package progress

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/insight/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/insight/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/insight/internal/core/domain"
	"github.com/custodia-labs/insight/internal/core/ports/driving"
)

// barWidth is the number of cells in the chunk progress bar.
const barWidth = 24

// Model is the progress display for one analysis.
type Model struct {
	styles   *styles.Styles
	spinner  spinner.Model
	name     string
	words    int
	progress domain.Progress
	result   *domain.AnalysisResult
	err      error
	done     bool
	aborted  bool
	cancel   context.CancelFunc
	started  time.Time
	now      func() time.Time
}

var _ tea.Model = (*Model)(nil)

// New creates a progress model for the named document.
func New(s *styles.Styles, name string, words int) *Model {
	if s == nil {
		s = styles.DefaultStyles()
	}
	sp := spinner.New(
		spinner.WithSpinner(spinner.Dot),
		spinner.WithStyle(s.Subtitle),
	)
	return &Model{
		styles:   s,
		spinner:  sp,
		name:     name,
		words:    words,
		progress: domain.Progress{Phase: domain.PhaseIdle},
		started:  time.Now(),
		now:      time.Now,
	}
}

// WithCancel sets the function called when the user aborts.
func (m *Model) WithCancel(cancel context.CancelFunc) *Model {
	m.cancel = cancel
	return m
}

// Init starts the spinner.
func (m *Model) Init() tea.Cmd {
	return m.spinner.Tick
}

// Update handles progress events, completion and abort keys.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case messages.ProgressUpdated:
		m.progress = msg.Progress
		return m, nil

	case messages.AnalysisFinished:
		m.done = true
		m.result = msg.Result
		m.err = msg.Err
		return m, tea.Quit

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q", "esc":
			m.aborted = true
			if m.cancel != nil {
				m.cancel()
			}
			return m, tea.Quit
		}
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

// View renders the current phase.
func (m *Model) View() string {
	var b strings.Builder

	title := m.styles.Title.Render(m.name)
	if m.words > 0 {
		title += m.styles.Muted.Render(fmt.Sprintf(" (%d words)", m.words))
	}
	b.WriteString(title)
	b.WriteString("\n\n")

	switch {
	case m.done && m.err != nil:
		b.WriteString(m.styles.Error.Render("✗ " + m.err.Error()))
	case m.done && m.result != nil:
		b.WriteString(m.styles.Success.Render(fmt.Sprintf("✓ %d concepts extracted", len(m.result.Concepts))))
	case m.aborted:
		b.WriteString(m.styles.Warning.Render("Cancelled"))
	default:
		b.WriteString(m.spinner.View())
		b.WriteString(" ")
		b.WriteString(m.styles.Normal.Render(m.statusLine()))
		if m.progress.Phase == domain.PhaseAnalyzing && m.progress.Total > 1 {
			b.WriteString("\n  ")
			b.WriteString(m.bar())
		}
		b.WriteString("\n\n")
		b.WriteString(m.styles.Muted.Render(fmt.Sprintf("elapsed %s", m.now().Sub(m.started).Round(time.Second))))
		b.WriteString("  ")
		b.WriteString(m.styles.Help.Render("[q] cancel"))
	}
	b.WriteString("\n")
	return b.String()
}

// statusLine describes the phase in words.
func (m *Model) statusLine() string {
	if m.progress.Message != "" {
		return m.progress.Message
	}
	switch m.progress.Phase {
	case domain.PhaseIdle, "":
		return "Starting..."
	case domain.PhaseAnalyzing:
		if m.progress.Total > 1 {
			return fmt.Sprintf("Analysing part %d of %d", m.progress.Current, m.progress.Total)
		}
		return "Analysing document"
	default:
		return strings.ToUpper(string(m.progress.Phase[:1])) + string(m.progress.Phase[1:])
	}
}

// bar renders completed chunks as a fixed-width bar.
func (m *Model) bar() string {
	filled := barWidth * m.progress.Current / m.progress.Total
	if filled > barWidth {
		filled = barWidth
	}
	return m.styles.Subtitle.Render(strings.Repeat("█", filled)) +
		m.styles.Branch.Render(strings.Repeat("░", barWidth-filled)) +
		m.styles.Muted.Render(fmt.Sprintf(" %d/%d", m.progress.Current, m.progress.Total))
}

// Progress returns the latest progress event.
func (m *Model) Progress() domain.Progress {
	return m.progress
}

// Done reports whether the analysis returned.
func (m *Model) Done() bool {
	return m.done
}

// Aborted reports whether the user cancelled.
func (m *Model) Aborted() bool {
	return m.aborted
}

// Result returns the analysis result and error once done.
func (m *Model) Result() (*domain.AnalysisResult, error) {
	return m.result, m.err
}

// Run analyses doc while rendering progress. Aborting the program cancels
// the analysis and returns context.Canceled.
func Run(
	ctx context.Context,
	service driving.AnalysisService,
	doc *domain.ParsedDocument,
	opts ...tea.ProgramOption,
) (*domain.AnalysisResult, error) {
	if service == nil {
		return nil, errors.New("analysis service not configured")
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	model := New(nil, doc.FileName, doc.WordCount).WithCancel(cancel)
	program := tea.NewProgram(model, opts...)

	finished := make(chan struct{})
	go func() {
		defer close(finished)
		result, err := service.Analyze(ctx, doc, func(p domain.Progress) {
			program.Send(messages.ProgressUpdated{Progress: p})
		})
		program.Send(messages.AnalysisFinished{Result: result, Err: err})
	}()

	if _, err := program.Run(); err != nil {
		cancel()
		<-finished
		return nil, fmt.Errorf("progress display: %w", err)
	}

	if !model.Done() {
		cancel()
		<-finished
		return nil, context.Canceled
	}
	<-finished
	return model.Result()
}
