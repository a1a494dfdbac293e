package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/insight/internal/core/domain"
)

var showCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show the concept tree of a stored analysis",
	Args:  cobra.ExactArgs(1),
	RunE:  runShow,
}

var deleteCmd = &cobra.Command{
	Use:     "delete <id>",
	Aliases: []string{"rm"},
	Short:   "Delete a stored analysis",
	Args:    cobra.ExactArgs(1),
	RunE:    runDelete,
}

func init() {
	showCmd.Flags().BoolP("details", "d", false, "include one-line summaries")
	showCmd.Flags().Bool("json", false, "print the analysis as JSON")
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(deleteCmd)
}

func runShow(cmd *cobra.Command, args []string) error {
	if analysisService == nil {
		return errors.New("analysis service not configured")
	}

	details, _ := cmd.Flags().GetBool("details")
	asJSON, _ := cmd.Flags().GetBool("json")

	result, err := getAnalysis(cmd, args[0])
	if err != nil {
		return err
	}

	if !asJSON {
		cmd.Printf("%s (%s)\n", result.DocumentName, result.AnalyzedAt.Local().Format(listTimeFormat))
		if mm := result.MentalModel; mm != nil {
			cmd.Printf("Mental model: %s: %s\n", mm.Name, mm.Description)
		}
		cmd.Println()
	}
	return printResult(cmd, result, asJSON, details)
}

func runDelete(cmd *cobra.Command, args []string) error {
	if analysisService == nil {
		return errors.New("analysis service not configured")
	}

	if err := analysisService.Delete(cmd.Context(), args[0]); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("analysis %s: %w", args[0], err)
		}
		return fmt.Errorf("deleting analysis: %w", err)
	}

	cmd.Printf("Deleted analysis %s\n", args[0])
	return nil
}

func getAnalysis(cmd *cobra.Command, id string) (*domain.AnalysisResult, error) {
	result, err := analysisService.Get(cmd.Context(), id)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("analysis %s: %w", id, err)
	}
	if err != nil {
		return nil, fmt.Errorf("getting analysis: %w", err)
	}
	return result, nil
}
