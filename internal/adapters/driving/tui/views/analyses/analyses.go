// Package analyses provides the stored analyses list view.
package analyses

import (
	"context"
	"errors"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/insight/internal/adapters/driving/tui/components/list"
	"github.com/custodia-labs/insight/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/insight/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/insight/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/insight/internal/core/ports/driving"
)

// errNoService is reported when the view has no analysis service.
var errNoService = errors.New("analysis service not available")

// View lists stored analyses.
type View struct {
	styles  *styles.Styles
	keymap  *keymap.KeyMap
	service driving.AnalysisService
	list    *list.AnalysisList
	loading bool
	err     error
	width   int
	height  int
	ready   bool
}

// NewView creates a new analyses view.
func NewView(s *styles.Styles, service driving.AnalysisService) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	return &View{
		styles:  s,
		keymap:  keymap.DefaultKeyMap(),
		service: service,
		list:    list.NewAnalysisList(s),
	}
}

// Init loads the analyses.
func (v *View) Init() tea.Cmd {
	v.loading = true
	v.err = nil
	return v.load()
}

// load returns a command that fetches analysis summaries.
func (v *View) load() tea.Cmd {
	return func() tea.Msg {
		if v.service == nil {
			return messages.AnalysesLoaded{Err: errNoService}
		}
		items, err := v.service.List(context.Background())
		return messages.AnalysesLoaded{Analyses: items, Err: err}
	}
}

// remove returns a command that deletes an analysis.
func (v *View) remove(id string) tea.Cmd {
	return func() tea.Msg {
		if v.service == nil {
			return messages.AnalysisDeleted{ID: id, Err: errNoService}
		}
		return messages.AnalysisDeleted{ID: id, Err: v.service.Delete(context.Background(), id)}
	}
}

// Update handles messages for the analyses view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case messages.AnalysesLoaded:
		v.loading = false
		v.err = msg.Err
		if msg.Err == nil {
			v.list.SetItems(msg.Analyses)
		}
		return v, nil

	case messages.AnalysisDeleted:
		if msg.Err != nil {
			v.err = msg.Err
			return v, nil
		}
		v.err = nil
		v.list.Remove(msg.ID)
		return v, nil

	case tea.KeyMsg:
		return v.handleKeyMsg(msg)
	}
	return v, nil
}

// handleKeyMsg handles key presses.
func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	k := msg.String()
	switch {
	case keymap.Matches(k, v.keymap.Quit):
		return v, func() tea.Msg { return messages.Quit{} }
	case keymap.Matches(k, v.keymap.Help):
		return v, func() tea.Msg { return messages.ViewChanged{View: messages.ViewHelp} }
	case keymap.Matches(k, v.keymap.Refresh):
		return v, v.Init()
	case v.loading:
		return v, nil
	case keymap.Matches(k, v.keymap.Select):
		if item := v.list.SelectedItem(); item != nil {
			id := item.ID
			return v, func() tea.Msg { return messages.AnalysisSelected{ID: id} }
		}
	case keymap.Matches(k, v.keymap.Delete):
		if item := v.list.SelectedItem(); item != nil {
			return v, v.remove(item.ID)
		}
	default:
		v.list, _ = v.list.Update(msg)
	}
	return v, nil
}

// View renders the analyses view.
func (v *View) View() string {
	var b strings.Builder

	b.WriteString(v.styles.Title.Render("insight"))
	b.WriteString("\n\n")

	switch {
	case v.loading:
		b.WriteString(v.styles.Muted.Render("Loading analyses..."))
	case v.err != nil:
		b.WriteString(v.styles.Error.Render("Error: " + v.err.Error()))
		b.WriteString("\n\n")
		b.WriteString(v.list.View())
	default:
		b.WriteString(v.list.View())
	}

	b.WriteString("\n\n")
	b.WriteString(v.styles.Help.Render("[enter] open  [d] delete  [r] reload  [?] help  [q] quit"))
	return b.String()
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true
	v.list.SetDimensions(width, height-4)
}

// Count returns the number of listed analyses.
func (v *View) Count() int {
	return v.list.Count()
}

// Loading reports whether a load is in flight.
func (v *View) Loading() bool {
	return v.loading
}

// Err returns the last error.
func (v *View) Err() error {
	return v.err
}
