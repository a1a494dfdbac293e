package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/insight/internal/adapters/driving/tui/views/progress"
	"github.com/custodia-labs/insight/internal/analysis/render"
	"github.com/custodia-labs/insight/internal/core/domain"
)

// isTerminal reports whether w is an interactive terminal.
var isTerminal = func(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

var analyzeCmd = &cobra.Command{
	Use:     "analyze [file]",
	Aliases: []string{"analyse"},
	Short:   "Analyse a document and store its concept tree",
	Long: `Analyse a local document or a web page and store the resulting concept tree.

Supported files are .txt, .md and .html. Documents above the chunk
threshold (analysis.chunk_threshold_words) are split into parts that are
analysed concurrently and merged.

On a terminal a live progress display is shown; press q to cancel.
Otherwise progress is written to stderr, one line per step.

Examples:
  insight analyze notes.md
  insight analyze --url https://example.com/article --json
  insight analyze report.html --browse`,
	Args: cobra.MaximumNArgs(1),
	RunE: runAnalyze,
}

func init() {
	analyzeCmd.Flags().String("url", "", "fetch and analyse an HTML page instead of a file")
	analyzeCmd.Flags().Bool("json", false, "print the result as JSON")
	analyzeCmd.Flags().BoolP("quiet", "q", false, "do not report progress")
	analyzeCmd.Flags().BoolP("details", "d", false, "include one-line summaries in the outline")
	analyzeCmd.Flags().Bool("browse", false, "open the result in the interactive browser")
	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	if analysisService == nil {
		return errors.New("analysis service not configured")
	}
	if ingestService == nil {
		return errors.New("ingest service not configured")
	}

	rawURL, _ := cmd.Flags().GetString("url")
	asJSON, _ := cmd.Flags().GetBool("json")
	quiet, _ := cmd.Flags().GetBool("quiet")
	details, _ := cmd.Flags().GetBool("details")
	browse, _ := cmd.Flags().GetBool("browse")

	rawURL = strings.TrimSpace(rawURL)
	if (len(args) == 0) == (rawURL == "") {
		return errors.New("provide either a file or --url")
	}

	ctx := cmd.Context()
	var (
		doc *domain.ParsedDocument
		err error
	)
	if rawURL != "" {
		doc, err = ingestService.LoadURL(ctx, rawURL)
	} else {
		doc, err = ingestService.LoadFile(ctx, args[0])
	}
	if err != nil {
		return fmt.Errorf("loading document: %w", err)
	}

	result, err := analyseDocument(cmd, doc, quiet)
	if err != nil {
		return err
	}

	if browse {
		return runBrowser(ctx, result.ID)
	}
	return printResult(cmd, result, asJSON, details)
}

// analyseDocument runs the analysis with a spinner on terminals and plain
// progress lines on stderr otherwise.
func analyseDocument(cmd *cobra.Command, doc *domain.ParsedDocument, quiet bool) (*domain.AnalysisResult, error) {
	ctx := cmd.Context()
	if !quiet && isTerminal(cmd.OutOrStdout()) {
		return progress.Run(ctx, analysisService, doc)
	}

	var report domain.ProgressFunc
	if !quiet {
		stderr := cmd.ErrOrStderr()
		report = func(p domain.Progress) {
			fmt.Fprintln(stderr, progressLine(p))
		}
	}
	return analysisService.Analyze(ctx, doc, report)
}

// progressLine formats p as "[phase] message" with a c/t counter while analysing parts.
func progressLine(p domain.Progress) string {
	line := fmt.Sprintf("[%s] %s", p.Phase, p.Message)
	if p.Phase == domain.PhaseAnalyzing && p.Total > 1 {
		line += fmt.Sprintf(" (%d/%d)", p.Current, p.Total)
	}
	return line
}

func printResult(cmd *cobra.Command, result *domain.AnalysisResult, asJSON, details bool) error {
	if asJSON {
		data, err := render.JSON(result)
		if err != nil {
			return err
		}
		cmd.Print(string(data))
		return nil
	}

	cmd.Println(render.Outline(result, details))
	cmd.Println()
	cmd.Printf("%d concepts · id %s\n", len(result.Concepts), result.ID)
	return nil
}
