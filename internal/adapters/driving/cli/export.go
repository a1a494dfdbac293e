package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/insight/internal/analysis/render"
)

var exportCmd = &cobra.Command{
	Use:   "export <id>",
	Short: "Export a stored analysis as Markdown or JSON",
	Long: `Export a stored analysis as Markdown or JSON.

Without --format, the format follows the --output extension (.json for
JSON) and defaults to Markdown.

Examples:
  insight export 3f2a... > notes.md
  insight export 3f2a... --format json --output notes.json`,
	Args: cobra.ExactArgs(1),
	RunE: runExport,
}

func init() {
	exportCmd.Flags().StringP("format", "f", "markdown", "output format: markdown or json")
	exportCmd.Flags().StringP("output", "o", "", "write to file instead of stdout")
	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, args []string) error {
	if analysisService == nil {
		return errors.New("analysis service not configured")
	}

	formatName, _ := cmd.Flags().GetString("format")
	output, _ := cmd.Flags().GetString("output")

	if !cmd.Flags().Changed("format") && strings.EqualFold(filepath.Ext(output), ".json") {
		formatName = string(render.FormatJSON)
	}
	format, err := render.ParseFormat(formatName)
	if err != nil {
		return err
	}

	result, err := getAnalysis(cmd, args[0])
	if err != nil {
		return err
	}

	data, err := render.Export(result, format)
	if err != nil {
		return err
	}

	if output == "" {
		_, err := cmd.OutOrStdout().Write(data)
		return err
	}

	if err := os.WriteFile(output, data, 0644); err != nil {
		return fmt.Errorf("writing %s: %w", output, err)
	}
	cmd.Printf("Wrote %s\n", output)
	return nil
}
