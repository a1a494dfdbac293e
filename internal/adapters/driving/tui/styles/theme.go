// Package styles provides the colour palette and lipgloss styles of the browser.
package styles

import (
	"github.com/charmbracelet/lipgloss"
)

// Theme is the palette the styles are built from.
type Theme struct {
	// Accent marks headings and the selection background.
	Accent lipgloss.Color
	// Highlight marks concept titles in the detail pane and excerpts.
	Highlight lipgloss.Color
	Text      lipgloss.Color
	Dim       lipgloss.Color
	// Rule colours borders and tree branches.
	Rule    lipgloss.Color
	Good    lipgloss.Color
	Caution lipgloss.Color
	Bad     lipgloss.Color
	Bar     lipgloss.Color

	// Levels colours concept titles by tree depth, cycling past the end.
	Levels []lipgloss.Color
}

// DefaultTheme returns the dark palette.
func DefaultTheme() *Theme {
	return &Theme{
		Accent:    lipgloss.Color("#7C3AED"),
		Highlight: lipgloss.Color("#06B6D4"),
		Text:      lipgloss.Color("#CDD6F4"),
		Dim:       lipgloss.Color("#6C7086"),
		Rule:      lipgloss.Color("#45475A"),
		Good:      lipgloss.Color("#A6E3A1"),
		Caution:   lipgloss.Color("#F9E2AF"),
		Bad:       lipgloss.Color("#F38BA8"),
		Bar:       lipgloss.Color("#181825"),
		Levels: []lipgloss.Color{
			"#CDD6F4",
			"#B4BEFE",
			"#94E2D5",
			"#BAC2DE",
		},
	}
}

// Styles holds the lipgloss styles used across views.
type Styles struct {
	theme  *Theme
	levels []lipgloss.Style

	Title    lipgloss.Style
	Subtitle lipgloss.Style
	Normal   lipgloss.Style
	Muted    lipgloss.Style
	Selected lipgloss.Style
	Error    lipgloss.Style
	Success  lipgloss.Style
	Warning  lipgloss.Style

	// Branch draws tree connectors.
	Branch lipgloss.Style
	// Quote renders verbatim excerpts.
	Quote lipgloss.Style
	// Detail frames the concept detail pane.
	Detail lipgloss.Style

	StatusBar lipgloss.Style
	Help      lipgloss.Style
	Border    lipgloss.Style
}

// NewStyles builds styles from theme. A nil theme uses DefaultTheme.
func NewStyles(theme *Theme) *Styles {
	if theme == nil {
		theme = DefaultTheme()
	}

	s := &Styles{
		theme:    theme,
		Title:    lipgloss.NewStyle().Bold(true).Foreground(theme.Accent),
		Subtitle: lipgloss.NewStyle().Bold(true).Foreground(theme.Highlight),
		Normal:   lipgloss.NewStyle().Foreground(theme.Text),
		Muted:    lipgloss.NewStyle().Foreground(theme.Dim),
		Selected: lipgloss.NewStyle().Bold(true).Foreground(theme.Text).Background(theme.Accent),
		Error:    lipgloss.NewStyle().Foreground(theme.Bad),
		Success:  lipgloss.NewStyle().Foreground(theme.Good),
		Warning:  lipgloss.NewStyle().Foreground(theme.Caution),
		Branch:   lipgloss.NewStyle().Foreground(theme.Rule),
		Quote:    lipgloss.NewStyle().Italic(true).Foreground(theme.Highlight),
		Detail: lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(theme.Rule).
			Padding(0, 1),
		StatusBar: lipgloss.NewStyle().Foreground(theme.Dim).Background(theme.Bar).Padding(0, 1),
		Help:      lipgloss.NewStyle().Foreground(theme.Dim),
		Border:    lipgloss.NewStyle().BorderStyle(lipgloss.RoundedBorder()).BorderForeground(theme.Rule),
	}

	for _, c := range theme.Levels {
		s.levels = append(s.levels, lipgloss.NewStyle().Foreground(c))
	}
	return s
}

// DefaultStyles returns styles with the default theme.
func DefaultStyles() *Styles {
	return NewStyles(DefaultTheme())
}

// Theme returns the palette the styles were built from.
func (s *Styles) Theme() *Theme {
	return s.theme
}

// Level returns the title style for a concept at depth. Top-level concepts
// are bold. Without level colours it falls back to Normal.
func (s *Styles) Level(depth int) lipgloss.Style {
	style := s.Normal
	if len(s.levels) > 0 {
		if depth < 0 {
			depth = 0
		}
		style = s.levels[depth%len(s.levels)]
	}
	if depth == 0 {
		style = style.Bold(true)
	}
	return style
}
