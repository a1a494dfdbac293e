package cli

import (
	"context"
	"fmt"
	"os"
	"runtime/debug"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/insight/internal/adapters/driving/tui"
)

// browseCmd represents the browse command.
var browseCmd = &cobra.Command{
	Use:     "browse [id]",
	Aliases: []string{"tui"},
	Short:   "Launch the interactive terminal UI",
	Long: `Launch the interactive terminal user interface for insight.

The TUI lists stored analyses and opens each one as a collapsible concept
tree next to the details of the selected concept. Pass an analysis id to
open it directly.

Controls:
  ↑/k, ↓/j - Navigate
  Enter    - Open / Expand or collapse
  ←/h, →/l - Collapse / Expand
  d        - Delete analysis
  r        - Reload list
  Esc      - Back
  ?        - Toggle help
  q        - Quit`,
	Args: cobra.MaximumNArgs(1),
	RunE: runTUI,
}

func init() {
	rootCmd.AddCommand(browseCmd)
}

func runTUI(cmd *cobra.Command, args []string) error {
	id := ""
	if len(args) == 1 {
		id = args[0]
	}
	return runBrowser(cmd.Context(), id)
}

// runBrowser opens the TUI, showing analysis id when it is not empty.
func runBrowser(ctx context.Context, id string) (err error) {
	// Add panic recovery to get stack traces
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "Panic in TUI: %v\n", r)
			fmt.Fprintf(os.Stderr, "Stack trace:\n%s\n", debug.Stack())
			err = fmt.Errorf("TUI panic: %v", r)
		}
	}()

	app, err := tui.NewApp(tui.NewPorts(analysisService))
	if err != nil {
		return fmt.Errorf("failed to create TUI: %w", err)
	}

	app.WithContext(ctx)
	if id != "" {
		app.WithAnalysis(id)
	}

	if err := app.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}

	return nil
}
