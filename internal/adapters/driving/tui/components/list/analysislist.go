// Package list provides list display components for the TUI.
package list

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/insight/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/insight/internal/core/domain"
)

// dateLayout is how analysis timestamps are shown in the list.
const dateLayout = "2006-01-02 15:04"

// AnalysisList displays stored analyses in a navigable list.
type AnalysisList struct {
	items    []domain.AnalysisSummary
	selected int
	styles   *styles.Styles
	width    int
	height   int
}

// NewAnalysisList creates a new analysis list component.
func NewAnalysisList(s *styles.Styles) *AnalysisList {
	if s == nil {
		s = styles.DefaultStyles()
	}

	return &AnalysisList{
		styles: s,
		width:  80,
		height: 10,
	}
}

// Init initialises the list.
func (l *AnalysisList) Init() tea.Cmd {
	return nil
}

// Update handles list navigation messages.
func (l *AnalysisList) Update(msg tea.Msg) (*AnalysisList, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "up", "k":
			l.MoveUp()
		case "down", "j":
			l.MoveDown()
		}
	}
	return l, nil
}

// View renders the list.
func (l *AnalysisList) View() string {
	if len(l.items) == 0 {
		return l.styles.Muted.Render("No analyses yet. Run `insight analyze <file>` to create one.")
	}

	lines := make([]string, 0, len(l.items)+2)
	lines = append(lines, l.styles.Subtitle.Render(fmt.Sprintf("Analyses (%d)", len(l.items))), "")

	// Each item takes two lines
	visibleCount := (l.height - 4) / 2
	if visibleCount < 1 {
		visibleCount = 1
	}

	start := 0
	if l.selected >= visibleCount {
		start = l.selected - visibleCount + 1
	}
	end := start + visibleCount
	if end > len(l.items) {
		end = len(l.items)
	}

	for i := start; i < end; i++ {
		lines = append(lines, l.renderItem(i, &l.items[i]))
	}

	return strings.Join(lines, "\n")
}

// renderItem formats a single analysis with its metadata line.
func (l *AnalysisList) renderItem(index int, item *domain.AnalysisSummary) string {
	indicator := "  "
	if index == l.selected {
		indicator = "> "
	}

	name := item.DocumentName
	if name == "" {
		name = "(Untitled)"
	}
	maxNameLen := l.width - 16
	if maxNameLen < 10 {
		maxNameLen = 10
	}
	name = truncate(name, maxNameLen)

	badge := fmt.Sprintf("[%s]", item.DocumentType)

	var titleLine string
	if index == l.selected {
		titleLine = l.styles.Selected.Render(fmt.Sprintf("%s%-*s %s", indicator, maxNameLen, name, badge))
	} else {
		titleLine = l.styles.Normal.Render(fmt.Sprintf("%s%-*s ", indicator, maxNameLen, name)) +
			l.styles.Subtitle.Render(badge)
	}

	meta := fmt.Sprintf("%d concepts", item.ConceptCount)
	if item.WordCount != nil {
		meta += fmt.Sprintf(" · %d words", *item.WordCount)
	}
	meta += " · " + item.AnalyzedAt.Local().Format(dateLayout)
	if item.ModelUsed != "" {
		meta += " · " + item.ModelUsed
	}

	return titleLine + "\n" + l.styles.Muted.Render("    "+meta)
}

// SetItems replaces the list contents, keeping the selection in range.
func (l *AnalysisList) SetItems(items []domain.AnalysisSummary) {
	l.items = items
	if l.selected >= len(items) {
		l.selected = len(items) - 1
	}
	if l.selected < 0 {
		l.selected = 0
	}
}

// Items returns the current items.
func (l *AnalysisList) Items() []domain.AnalysisSummary {
	return l.items
}

// Selected returns the index of the selected item.
func (l *AnalysisList) Selected() int {
	return l.selected
}

// SetSelected sets the selected index.
func (l *AnalysisList) SetSelected(index int) {
	if index >= 0 && index < len(l.items) {
		l.selected = index
	}
}

// SelectedItem returns the currently selected item, or nil if none.
func (l *AnalysisList) SelectedItem() *domain.AnalysisSummary {
	if len(l.items) == 0 || l.selected < 0 || l.selected >= len(l.items) {
		return nil
	}
	return &l.items[l.selected]
}

// Remove drops the item with the given id.
func (l *AnalysisList) Remove(id string) {
	for i := range l.items {
		if l.items[i].ID == id {
			l.SetItems(append(l.items[:i:i], l.items[i+1:]...))
			return
		}
	}
}

// MoveUp moves selection up.
func (l *AnalysisList) MoveUp() {
	if l.selected > 0 {
		l.selected--
	}
}

// MoveDown moves selection down.
func (l *AnalysisList) MoveDown() {
	if l.selected < len(l.items)-1 {
		l.selected++
	}
}

// SetDimensions sets the component dimensions.
func (l *AnalysisList) SetDimensions(width, height int) {
	l.width = width
	l.height = height
}

// Count returns the number of items.
func (l *AnalysisList) Count() int {
	return len(l.items)
}

// IsEmpty returns whether the list is empty.
func (l *AnalysisList) IsEmpty() bool {
	return len(l.items) == 0
}

func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit-3]) + "..."
}
