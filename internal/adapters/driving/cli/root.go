// Package cli provides the command-line interface for insight.
package cli

import (
	"context"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/insight/internal/core/domain"
	"github.com/custodia-labs/insight/internal/core/ports/driven"
	"github.com/custodia-labs/insight/internal/core/ports/driving"
	"github.com/custodia-labs/insight/internal/logger"
)

// version is set at build time or through SetVersion.
var version = "dev"

// Services used by the commands. Nil services make the commands that
// need them fail with a "not configured" error.
var (
	analysisService driving.AnalysisService
	ingestService   driving.IngestService
	settingsService driving.SettingsService
	newWatcher      WatcherFactory
	validateLLM     LLMValidator
)

// WatcherFactory creates a watcher over dir that reports files accepted by filter.
type WatcherFactory func(dir string, filter func(path string) bool, debounce time.Duration) driven.FileWatcher

// LLMValidator checks that settings reach a working completion endpoint.
type LLMValidator func(ctx context.Context, settings domain.LLMSettings) error

// Services holds everything the commands depend on.
type Services struct {
	Analysis    driving.AnalysisService
	Ingest      driving.IngestService
	Settings    driving.SettingsService
	NewWatcher  WatcherFactory
	ValidateLLM LLMValidator
}

// SetServices injects the services used by all commands.
func SetServices(s Services) {
	analysisService = s.Analysis
	ingestService = s.Ingest
	settingsService = s.Settings
	newWatcher = s.NewWatcher
	validateLLM = s.ValidateLLM
}

// SetVersion sets the version reported by the version command.
func SetVersion(v string) {
	if v != "" {
		version = v
	}
}

var rootCmd = &cobra.Command{
	Use:   "insight",
	Short: "Turn documents into navigable concept trees",
	Long: `insight reads a text, Markdown or HTML document, asks a language model
for its key concepts and stores them as a hierarchy you can browse.

Long documents are split into parts that are analysed concurrently and
merged by concept title.

Examples:
  insight analyze notes.md
  insight analyze --url https://example.com/article
  insight list
  insight browse`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, _ []string) {
		verbose, _ := cmd.Flags().GetBool("verbose")
		logger.SetVerbose(verbose)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "print debug output to stderr")
}

// Execute runs the root command with ctx. Command output goes to stdout.
func Execute(ctx context.Context) error {
	rootCmd.SetOut(os.Stdout)
	return rootCmd.ExecuteContext(ctx)
}
