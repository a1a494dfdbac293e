package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/insight/internal/core/domain"
)

const listTimeFormat = "2006-01-02 15:04"

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List stored analyses",
	Long:    `List stored analyses, newest first.`,
	Args:    cobra.NoArgs,
	RunE:    runList,
}

func init() {
	listCmd.Flags().Bool("json", false, "print summaries as JSON")
	rootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, _ []string) error {
	if analysisService == nil {
		return errors.New("analysis service not configured")
	}

	asJSON, _ := cmd.Flags().GetBool("json")

	summaries, err := analysisService.List(cmd.Context())
	if err != nil {
		return fmt.Errorf("listing analyses: %w", err)
	}

	if asJSON {
		return printSummariesJSON(cmd, summaries)
	}

	if len(summaries) == 0 {
		cmd.Println("No analyses yet. Run 'insight analyze <file>' to create one.")
		return nil
	}

	cmd.Println(summaryTable(summaries))
	return nil
}

func summaryTable(summaries []domain.AnalysisSummary) string {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("ID", "DOCUMENT", "TYPE", "CONCEPTS", "WORDS", "ANALYSED", "MODEL")

	for i := range summaries {
		s := &summaries[i]
		words := "-"
		if s.WordCount != nil {
			words = strconv.Itoa(*s.WordCount)
		}
		t.Row(
			s.ID,
			s.DocumentName,
			string(s.DocumentType),
			strconv.Itoa(s.ConceptCount),
			words,
			s.AnalyzedAt.Local().Format(listTimeFormat),
			s.ModelUsed,
		)
	}

	return t.String()
}

type summaryJSON struct {
	ID           string `json:"id"`
	DocumentName string `json:"document_name"`
	DocumentType string `json:"document_type"`
	AnalyzedAt   string `json:"analyzed_at"`
	ModelUsed    string `json:"model_used"`
	WordCount    *int   `json:"word_count,omitempty"`
	ConceptCount int    `json:"concept_count"`
}

func printSummariesJSON(cmd *cobra.Command, summaries []domain.AnalysisSummary) error {
	out := make([]summaryJSON, len(summaries))
	for i := range summaries {
		s := &summaries[i]
		out[i] = summaryJSON{
			ID:           s.ID,
			DocumentName: s.DocumentName,
			DocumentType: string(s.DocumentType),
			AnalyzedAt:   s.AnalyzedAt.UTC().Format(time.RFC3339),
			ModelUsed:    s.ModelUsed,
			WordCount:    s.WordCount,
			ConceptCount: s.ConceptCount,
		}
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("marshalling analyses: %w", err)
	}
	cmd.Println(string(data))
	return nil
}
