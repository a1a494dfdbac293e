// Package concepts provides the concept tree browser for one analysis.
package concepts

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/insight/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/insight/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/insight/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/insight/internal/analysis/tree"
	"github.com/custodia-labs/insight/internal/core/domain"
	"github.com/custodia-labs/insight/internal/core/ports/driving"
)

var errNoService = errors.New("analysis service not available")

// row is one visible line of the tree.
type row struct {
	node  *tree.Node
	depth int
}

// View browses the concept hierarchy with a detail pane.
type View struct {
	styles   *styles.Styles
	keymap   *keymap.KeyMap
	service  driving.AnalysisService
	result   *domain.AnalysisResult
	roots    []*tree.Node
	rows     []row
	expanded map[string]bool
	selected int
	loading  bool
	err      error
	width    int
	height   int
}

// NewView creates a new concepts view.
func NewView(s *styles.Styles, service driving.AnalysisService) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	return &View{
		styles:   s,
		keymap:   keymap.DefaultKeyMap(),
		service:  service,
		expanded: make(map[string]bool),
		width:    80,
		height:   24,
	}
}

// Load returns a command that fetches the analysis with the given id.
func (v *View) Load(id string) tea.Cmd {
	v.loading = true
	v.err = nil
	return func() tea.Msg {
		if v.service == nil {
			return messages.AnalysisLoaded{Err: errNoService}
		}
		result, err := v.service.Get(context.Background(), id)
		return messages.AnalysisLoaded{Result: result, Err: err}
	}
}

// SetResult shows result with every concept that has children expanded.
func (v *View) SetResult(result *domain.AnalysisResult) {
	v.result = result
	v.selected = 0
	v.expanded = make(map[string]bool)
	v.roots = nil
	if result != nil {
		v.roots = tree.Build(result.Concepts)
		tree.Walk(v.roots, func(n *tree.Node, _ int) {
			if len(n.Children) > 0 {
				v.expanded[n.Concept.ID] = true
			}
		})
	}
	v.rebuild()
}

// rebuild flattens the visible part of the tree.
func (v *View) rebuild() {
	v.rows = v.rows[:0]
	var visit func(nodes []*tree.Node, depth int)
	visit = func(nodes []*tree.Node, depth int) {
		for _, n := range nodes {
			v.rows = append(v.rows, row{node: n, depth: depth})
			if v.expanded[n.Concept.ID] {
				visit(n.Children, depth+1)
			}
		}
	}
	visit(v.roots, 0)
	if v.selected >= len(v.rows) {
		v.selected = len(v.rows) - 1
	}
	if v.selected < 0 {
		v.selected = 0
	}
}

// Update handles messages for the concepts view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case messages.AnalysisLoaded:
		v.loading = false
		v.err = msg.Err
		if msg.Err == nil {
			v.SetResult(msg.Result)
		}
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
	case keymap.Matches(k, v.keymap.Back):
		return v, func() tea.Msg { return messages.ViewChanged{View: messages.ViewAnalyses} }
	case keymap.Matches(k, v.keymap.Quit):
		return v, func() tea.Msg { return messages.Quit{} }
	case keymap.Matches(k, v.keymap.Up):
		if v.selected > 0 {
			v.selected--
		}
	case keymap.Matches(k, v.keymap.Down):
		if v.selected < len(v.rows)-1 {
			v.selected++
		}
	case keymap.Matches(k, v.keymap.Select):
		v.toggle()
	case k == "left" || k == "h":
		v.collapse()
	case k == "right" || k == "l":
		if n := v.current(); n != nil && len(n.Children) > 0 {
			v.expanded[n.Concept.ID] = true
			v.rebuild()
		}
	}
	return v, nil
}

// toggle expands or collapses the selected concept.
func (v *View) toggle() {
	n := v.current()
	if n == nil || len(n.Children) == 0 {
		return
	}
	v.expanded[n.Concept.ID] = !v.expanded[n.Concept.ID]
	v.rebuild()
}

// collapse closes the selected concept, or moves to its parent when it is closed.
func (v *View) collapse() {
	n := v.current()
	if n == nil {
		return
	}
	if v.expanded[n.Concept.ID] {
		v.expanded[n.Concept.ID] = false
		v.rebuild()
		return
	}
	depth := v.rows[v.selected].depth
	for i := v.selected - 1; i >= 0; i-- {
		if v.rows[i].depth < depth {
			v.selected = i
			return
		}
	}
}

// current returns the selected node, or nil.
func (v *View) current() *tree.Node {
	if v.selected < 0 || v.selected >= len(v.rows) {
		return nil
	}
	return v.rows[v.selected].node
}

// View renders the concepts view.
func (v *View) View() string {
	var b strings.Builder

	switch {
	case v.loading:
		b.WriteString(v.styles.Muted.Render("Loading analysis..."))
	case v.err != nil:
		b.WriteString(v.styles.Error.Render("Error: " + v.err.Error()))
	case v.result == nil:
		b.WriteString(v.styles.Muted.Render("No analysis selected."))
	default:
		b.WriteString(v.renderHeader())
		b.WriteString("\n\n")
		treeWidth := v.width * 2 / 5
		if treeWidth < 24 {
			treeWidth = 24
		}
		left := lipgloss.NewStyle().Width(treeWidth).Render(v.renderTree(treeWidth))
		right := v.styles.Detail.Width(max(v.width-treeWidth-4, 20)).Render(v.renderDetail())
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, left, right))
	}

	b.WriteString("\n\n")
	b.WriteString(v.styles.Help.Render("[↑/↓] move  [enter] expand/collapse  [←/→] fold  [esc] back  [q] quit"))
	return b.String()
}

func (v *View) renderHeader() string {
	r := v.result
	header := v.styles.Title.Render(r.DocumentName)
	meta := fmt.Sprintf("%s · %d concepts · %s", r.DocumentType, len(r.Concepts), r.ModelUsed)
	if r.WordCount != nil {
		meta = fmt.Sprintf("%s · %d words", meta, *r.WordCount)
	}
	header += "\n" + v.styles.Muted.Render(meta)
	if r.MentalModel != nil {
		header += "\n" + v.styles.Subtitle.Render(r.MentalModel.Name) +
			v.styles.Muted.Render(": "+r.MentalModel.Description)
	}
	return header
}

func (v *View) renderTree(width int) string {
	if len(v.rows) == 0 {
		return v.styles.Muted.Render("No concepts")
	}

	lines := make([]string, 0, len(v.rows))
	for i, r := range v.rows {
		marker := "  "
		if len(r.node.Children) > 0 {
			marker = "▸ "
			if v.expanded[r.node.Concept.ID] {
				marker = "▾ "
			}
		}
		indent := strings.Repeat("  ", r.depth)
		title := truncate(r.node.Concept.Title, width-len([]rune(indent))-3)
		if i == v.selected {
			lines = append(lines, v.styles.Selected.Render(indent+marker+title))
			continue
		}
		lines = append(lines, v.styles.Branch.Render(indent+marker)+v.styles.Level(r.depth).Render(title))
	}
	return strings.Join(lines, "\n")
}

func (v *View) renderDetail() string {
	n := v.current()
	if n == nil {
		return ""
	}
	c := n.Concept

	var b strings.Builder
	b.WriteString(v.styles.Subtitle.Render(c.Title))
	if c.OneLineSummary != "" {
		b.WriteString("\n" + v.styles.Normal.Render(c.OneLineSummary))
	}
	section := func(label, body string) {
		if body == "" {
			return
		}
		b.WriteString("\n\n" + v.styles.Title.Render(label) + "\n" + v.styles.Normal.Render(body))
	}
	section("What this is", c.WhatThisIs)
	section("Why it matters", c.WhyItMatters)

	if len(c.KeyPoints) > 0 {
		b.WriteString("\n\n" + v.styles.Title.Render("Key points"))
		for _, p := range c.KeyPoints {
			b.WriteString("\n• " + v.styles.Normal.Render(p))
		}
	}
	if len(c.Excerpts) > 0 {
		b.WriteString("\n\n" + v.styles.Title.Render("Excerpts"))
		for _, e := range c.Excerpts {
			b.WriteString("\n" + v.styles.Quote.Render("“"+e.Text+"”"))
			if e.Location != "" {
				b.WriteString(" " + v.styles.Muted.Render("("+e.Location+")"))
			}
		}
	}
	return b.String()
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
}

// Result returns the analysis being browsed.
func (v *View) Result() *domain.AnalysisResult {
	return v.result
}

// Selected returns the selected concept, or nil.
func (v *View) Selected() *domain.Concept {
	if n := v.current(); n != nil {
		return n.Concept
	}
	return nil
}

// VisibleCount returns the number of visible tree rows.
func (v *View) VisibleCount() int {
	return len(v.rows)
}

// Err returns the last error.
func (v *View) Err() error {
	return v.err
}

func truncate(s string, limit int) string {
	if limit < 4 {
		limit = 4
	}
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit-3]) + "..."
}
