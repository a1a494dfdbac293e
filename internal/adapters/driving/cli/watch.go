package cli

import (
	"errors"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/insight/internal/core/domain"
	"github.com/custodia-labs/insight/internal/logger"
)

var watchCmd = &cobra.Command{
	Use:   "watch <dir>",
	Short: "Analyse documents as they appear in a directory",
	Long: `Watch a directory tree and analyse every supported document that is
created or modified in it. Hidden files and directories are ignored.

Each file is analysed once it has been quiet for the debounce period.
Failures are reported and watching continues. Press Ctrl+C to stop.`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().Duration("debounce", 2*time.Second, "quiet period before a changed file is analysed")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	if analysisService == nil {
		return errors.New("analysis service not configured")
	}
	if ingestService == nil {
		return errors.New("ingest service not configured")
	}
	if newWatcher == nil {
		return errors.New("file watcher not configured")
	}

	debounce, _ := cmd.Flags().GetDuration("debounce")

	dir := args[0]
	paths, err := newWatcher(dir, ingestService.IsSupported, debounce).Watch(cmd.Context())
	if err != nil {
		return err
	}

	cmd.Printf("Watching %s (Ctrl+C to stop)\n", dir)
	for path := range paths {
		analyseWatched(cmd, path)
	}
	return nil
}

// analyseWatched analyses one changed file. Errors are reported, not returned.
func analyseWatched(cmd *cobra.Command, path string) {
	ctx := cmd.Context()
	name := filepath.Base(path)

	doc, err := ingestService.LoadFile(ctx, path)
	if err != nil {
		cmd.PrintErrf("%s: %v\n", name, err)
		return
	}

	result, err := analysisService.Analyze(ctx, doc, func(p domain.Progress) {
		logger.Debug("%s: %s", name, progressLine(p))
	})
	switch {
	case errors.Is(err, domain.ErrAnalysisInProgress):
		logger.Debug("%s: already being analysed", name)
		return
	case ctx.Err() != nil:
		return
	case err != nil:
		cmd.PrintErrf("%s: %v\n", name, err)
		return
	}

	cmd.Printf("%s: %d concepts (id %s)\n", name, len(result.Concepts), result.ID)
}
