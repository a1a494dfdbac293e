package tui

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/insight/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/insight/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/insight/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/insight/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/insight/internal/adapters/driving/tui/views/analyses"
	"github.com/custodia-labs/insight/internal/adapters/driving/tui/views/concepts"
)

// App is the main TUI application following the Elm architecture.
// It implements tea.Model for use with Bubbletea.
type App struct {
	// ports provides access to core services via driving ports.
	ports *Ports

	// ctx is the context for cancellation.
	ctx context.Context

	styles *styles.Styles
	keymap *keymap.KeyMap

	analysesView *analyses.View
	conceptsView *concepts.View
	statusBar    *status.Bar

	// initialID opens the concept view directly when set.
	initialID string

	// currentView tracks which view is active.
	currentView messages.ViewType

	// err holds the last error that occurred.
	err error

	// width and height are terminal dimensions.
	width  int
	height int

	// ready indicates if the app has initialised.
	ready bool
}

// Ensure App implements tea.Model.
var _ tea.Model = (*App)(nil)

// NewApp creates a new TUI application with the given ports.
func NewApp(ports *Ports) (*App, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("creating app: %w", err)
	}

	s := styles.DefaultStyles()
	km := keymap.DefaultKeyMap()

	return &App{
		ports:        ports,
		ctx:          context.Background(),
		styles:       s,
		keymap:       km,
		analysesView: analyses.NewView(s, ports.Analysis),
		conceptsView: concepts.NewView(s, ports.Analysis),
		statusBar:    status.NewBar(s, km),
		currentView:  messages.ViewAnalyses,
	}, nil
}

// WithContext sets the context for the app.
func (a *App) WithContext(ctx context.Context) *App {
	a.ctx = ctx
	return a
}

// WithAnalysis opens the concept view for id on start.
func (a *App) WithAnalysis(id string) *App {
	a.initialID = id
	if id != "" {
		a.currentView = messages.ViewConcepts
	}
	return a
}

// Init implements tea.Model.
// It runs initial commands when the program starts.
func (a *App) Init() tea.Cmd {
	load := a.analysesView.Init()
	if a.initialID != "" {
		load = a.conceptsView.Load(a.initialID)
	}
	a.statusBar.SetState(status.StateLoading)
	return tea.Batch(
		tea.EnterAltScreen,
		tea.SetWindowTitle("insight"),
		load,
	)
}

// Update implements tea.Model.
// It handles messages and updates the model state.
//
//nolint:gocyclo // central message handler requires complexity
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	if a.ctx.Err() != nil {
		return a, tea.Quit
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.SetDimensions(msg.Width, msg.Height)
		return a, nil

	case tea.KeyMsg:
		// Global quit with ctrl+c
		if msg.String() == "ctrl+c" {
			return a, tea.Quit
		}

		switch a.currentView {
		case messages.ViewAnalyses:
			a.analysesView, cmd = a.analysesView.Update(msg)
		case messages.ViewConcepts:
			a.conceptsView, cmd = a.conceptsView.Update(msg)
		case messages.ViewHelp:
			k := msg.String()
			if keymap.Matches(k, a.keymap.Back) || keymap.Matches(k, a.keymap.Help) {
				return a.switchTo(messages.ViewAnalyses)
			}
			if keymap.Matches(k, a.keymap.Quit) {
				return a, tea.Quit
			}
		}
		return a, cmd

	case messages.ViewChanged:
		return a.switchTo(msg.View)

	case messages.AnalysisSelected:
		a.currentView = messages.ViewConcepts
		a.statusBar.SetState(status.StateLoading)
		a.statusBar.SetMessage("Loading analysis...")
		return a, a.conceptsView.Load(msg.ID)

	case messages.AnalysesLoaded, messages.AnalysisDeleted:
		a.analysesView, cmd = a.analysesView.Update(msg)
		a.syncStatus()
		return a, cmd

	case messages.AnalysisLoaded:
		a.conceptsView, cmd = a.conceptsView.Update(msg)
		a.syncStatus()
		return a, cmd

	case messages.ErrorOccurred:
		a.err = msg.Err
		a.statusBar.SetState(status.StateError)
		if msg.Err != nil {
			a.statusBar.SetMessage(msg.Err.Error())
		}
		return a, nil

	case messages.Quit:
		return a, tea.Quit
	}

	return a, nil
}

// switchTo activates a view, reloading the analyses list when returning to it.
func (a *App) switchTo(view messages.ViewType) (tea.Model, tea.Cmd) {
	a.currentView = view
	switch view {
	case messages.ViewAnalyses:
		a.statusBar.Clear()
		a.statusBar.SetState(status.StateLoading)
		return a, a.analysesView.Init()
	case messages.ViewHelp:
		a.statusBar.SetState(status.StateHelp)
	case messages.ViewConcepts:
		// Entered through AnalysisSelected
	}
	return a, nil
}

// syncStatus mirrors the active view's state into the status bar.
func (a *App) syncStatus() {
	a.statusBar.Clear()
	switch a.currentView {
	case messages.ViewAnalyses:
		if err := a.analysesView.Err(); err != nil {
			a.err = err
			a.statusBar.SetState(status.StateError)
			a.statusBar.SetMessage(err.Error())
			return
		}
		a.statusBar.SetState(status.StateListing)
		a.statusBar.SetCount(a.analysesView.Count(), "analyses")
	case messages.ViewConcepts:
		if err := a.conceptsView.Err(); err != nil {
			a.err = err
			a.statusBar.SetState(status.StateError)
			a.statusBar.SetMessage(err.Error())
			return
		}
		if r := a.conceptsView.Result(); r != nil {
			a.statusBar.SetCount(len(r.Concepts), "concepts")
		}
	case messages.ViewHelp:
		a.statusBar.SetState(status.StateHelp)
	}
}

// View implements tea.Model.
// It renders the current view as a string.
func (a *App) View() string {
	if !a.ready {
		return "Initialising..."
	}

	var body string
	switch a.currentView {
	case messages.ViewConcepts:
		body = a.conceptsView.View()
	case messages.ViewHelp:
		body = a.viewHelp()
	default:
		body = a.analysesView.View()
	}

	gap := a.height - lipgloss.Height(body) - 1
	if gap < 1 {
		gap = 1
	}
	return body + strings.Repeat("\n", gap) + a.statusBar.View()
}

// viewHelp renders the help view.
func (a *App) viewHelp() string {
	var b strings.Builder
	b.WriteString(a.styles.Title.Render("Help"))
	b.WriteString("\n\n")
	for _, group := range a.keymap.FullHelp() {
		for _, binding := range group {
			h := binding.Help()
			b.WriteString(fmt.Sprintf("  %-10s %s\n", h.Key, h.Desc))
		}
		b.WriteString("\n")
	}
	b.WriteString(a.styles.Subtitle.Render("Concept tree"))
	b.WriteString("\n  ←/h        collapse or go to parent\n  →/l        expand\n\n")
	b.WriteString(a.styles.Help.Render("[esc] back"))
	return b.String()
}

// Run starts the TUI application.
func (a *App) Run() error {
	p := tea.NewProgram(a, tea.WithAltScreen(), tea.WithContext(a.ctx))
	_, err := p.Run()
	return err
}

// CurrentView returns the current view type.
func (a *App) CurrentView() messages.ViewType {
	return a.currentView
}

// Err returns the last error that occurred.
func (a *App) Err() error {
	return a.err
}

// Ready returns whether the app has been initialised.
func (a *App) Ready() bool {
	return a.ready
}

// SetDimensions sets the terminal dimensions.
func (a *App) SetDimensions(width, height int) {
	a.width = width
	a.height = height
	a.ready = true
	a.analysesView.SetDimensions(width, height-1)
	a.conceptsView.SetDimensions(width, height-1)
	a.statusBar.SetWidth(width)
}
