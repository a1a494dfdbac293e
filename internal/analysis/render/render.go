// Package render formats analysis results for terminals, Markdown and JSON.
package render

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	ltree "github.com/charmbracelet/lipgloss/tree"

	"github.com/custodia-labs/insight/internal/analysis/tree"
	"github.com/custodia-labs/insight/internal/core/domain"
)

// Format names an export format.
type Format string

const (
	FormatJSON     Format = "json"
	FormatMarkdown Format = "markdown"
)

// ParseFormat accepts "json", "markdown" or "md".
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "json":
		return FormatJSON, nil
	case "markdown", "md":
		return FormatMarkdown, nil
	}
	return "", fmt.Errorf("%w: unknown format %q (use json or markdown)", domain.ErrInvalidInput, s)
}

// Export renders result in the given format.
func Export(result *domain.AnalysisResult, format Format) ([]byte, error) {
	switch format {
	case FormatJSON:
		return JSON(result)
	case FormatMarkdown:
		return []byte(Markdown(result)), nil
	}
	return nil, fmt.Errorf("%w: unknown format %q", domain.ErrInvalidInput, format)
}

// JSON returns the indented JSON encoding of result.
func JSON(result *domain.AnalysisResult) ([]byte, error) {
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling analysis: %w", err)
	}
	return append(data, '\n'), nil
}

// Markdown renders result as a Markdown document with one heading per concept.
func Markdown(result *domain.AnalysisResult) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# %s\n\n", result.DocumentName)
	fmt.Fprintf(&b, "- Type: %s\n", result.DocumentType)
	fmt.Fprintf(&b, "- Analysed: %s\n", result.AnalyzedAt.UTC().Format(time.RFC3339))
	if result.ModelUsed != "" {
		fmt.Fprintf(&b, "- Model: %s\n", result.ModelUsed)
	}
	if result.WordCount != nil {
		fmt.Fprintf(&b, "- Words: %d\n", *result.WordCount)
	}
	if result.SourceURL != nil {
		fmt.Fprintf(&b, "- Source: %s\n", *result.SourceURL)
	}

	if mm := result.MentalModel; mm != nil {
		fmt.Fprintf(&b, "\n> **%s**: %s\n", mm.Name, mm.Description)
	}

	tree.Walk(tree.Build(result.Concepts), func(n *tree.Node, depth int) {
		writeConcept(&b, n.Concept, depth)
	})

	return b.String()
}

func writeConcept(b *strings.Builder, c *domain.Concept, depth int) {
	level := min(depth+2, 6)
	fmt.Fprintf(b, "\n%s %s\n", strings.Repeat("#", level), c.Title)

	if c.OneLineSummary != "" {
		fmt.Fprintf(b, "\n*%s*\n", c.OneLineSummary)
	}
	if c.WhatThisIs != "" {
		fmt.Fprintf(b, "\n**What this is:** %s\n", c.WhatThisIs)
	}
	if c.WhyItMatters != "" {
		fmt.Fprintf(b, "\n**Why it matters:** %s\n", c.WhyItMatters)
	}
	if len(c.KeyPoints) > 0 {
		b.WriteString("\n")
		for _, p := range c.KeyPoints {
			fmt.Fprintf(b, "- %s\n", p)
		}
	}
	for _, e := range c.Excerpts {
		fmt.Fprintf(b, "\n> %s", e.Text)
		if e.Location != "" {
			fmt.Fprintf(b, " (%s)", e.Location)
		}
		b.WriteString("\n")
	}
}

// Outline renders the concept hierarchy as a tree rooted at the document
// name. With details, each concept carries its one-line summary.
func Outline(result *domain.AnalysisResult, details bool) string {
	root := ltree.Root(result.DocumentName)
	for _, n := range tree.Build(result.Concepts) {
		root.Child(outlineNode(n, details))
	}
	return root.String()
}

func outlineNode(n *tree.Node, details bool) any {
	label := n.Concept.Title
	if details && n.Concept.OneLineSummary != "" {
		label += ": " + n.Concept.OneLineSummary
	}
	if len(n.Children) == 0 {
		return label
	}
	t := ltree.Root(label)
	for _, child := range n.Children {
		t.Child(outlineNode(child, details))
	}
	return t
}
