package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/insight/internal/core/domain"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage application settings",
	Long: `View and configure the LLM endpoint and analysis parameters.

Settings are stored in the config file. ANTHROPIC_API_KEY and
INSIGHT_MODEL override the stored API key and model.`,
	RunE: runSettingsShow,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	RunE:  runSettingsShow,
}

var settingsSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a single setting",
	Long: `Set a single setting by its dotted key.

Run 'insight settings keys' to list the available keys.

Examples:
  insight settings set llm.model claude-3-5-sonnet-20241022
  insight settings set analysis.concurrency 5`,
	Args: cobra.ExactArgs(2),
	RunE: runSettingsSet,
}

var settingsKeysCmd = &cobra.Command{
	Use:   "keys",
	Short: "List settable keys",
	Args:  cobra.NoArgs,
	RunE:  runSettingsKeys,
}

var settingsLLMCmd = &cobra.Command{
	Use:   "llm",
	Short: "Configure the LLM endpoint",
	Long:  `Interactively choose the model and enter the Anthropic API key.`,
	RunE:  runSettingsLLM,
}

func init() {
	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsSetCmd)
	settingsCmd.AddCommand(settingsKeysCmd)
	settingsCmd.AddCommand(settingsLLMCmd)
	rootCmd.AddCommand(settingsCmd)
}

func runSettingsShow(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	cmd.Println("Current Settings")
	cmd.Println("================")
	cmd.Println()

	// LLM settings
	cmd.Println("[LLM]")
	cmd.Printf("  Model: %s\n", settings.LLM.Model)
	cmd.Printf("  Base URL: %s\n", settings.LLM.BaseURL)
	if settings.LLM.APIKey != "" {
		cmd.Printf("  API Key: %s\n", maskAPIKey(settings.LLM.APIKey))
	} else {
		cmd.Printf("  API Key: (not set)\n")
	}
	cmd.Printf("  Max Tokens: %d\n", settings.LLM.MaxTokens)
	cmd.Printf("  Timeout: %s\n", settings.LLM.Timeout())
	cmd.Printf("  Rate Limit: %g req/s (burst %d)\n", settings.LLM.RequestsPerSecond, settings.LLM.Burst)
	status := "configured"
	if !settings.LLM.IsConfigured() {
		status = "not configured"
	}
	cmd.Printf("  Status: %s\n", status)
	cmd.Println()

	// Analysis settings
	cmd.Println("[Analysis]")
	cmd.Printf("  Chunk Threshold: %d words\n", settings.Analysis.ChunkThresholdWords)
	cmd.Printf("  Chunk Target: %d words\n", settings.Analysis.ChunkTargetWords)
	cmd.Printf("  Concurrency: %d\n", settings.Analysis.Concurrency)
	cmd.Printf("  Transport Retries: %d\n", settings.Analysis.TransportRetries)
	cmd.Printf("  Parse Retries: %d\n", settings.Analysis.ParseRetries)
	cmd.Println()

	// Validation
	switch err := settings.Validate(); {
	case err != nil:
		cmd.Printf("Warning: %v\n", err)
	case !settings.LLM.IsConfigured():
		cmd.Println("Run 'insight settings llm' to set an API key.")
	default:
		cmd.Println("Configuration is valid.")
	}

	return nil
}

func runSettingsSet(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	key, value := args[0], args[1]
	if err := settingsService.Set(key, value); err != nil {
		return fmt.Errorf("failed to set %s: %w", key, err)
	}

	if strings.HasSuffix(key, "api_key") {
		value = maskAPIKey(value)
	}
	cmd.Printf("Set %s = %s\n", key, value)
	return nil
}

func runSettingsKeys(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	for _, key := range settingsService.Keys() {
		cmd.Println(key)
	}
	return nil
}

func runSettingsLLM(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	reader := bufio.NewReader(cmd.InOrStdin())
	return configureLLM(cmd, reader)
}

func configureLLM(cmd *cobra.Command, reader *bufio.Reader) error {
	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	// Model
	cmd.Println("Select Model")
	models := domain.KnownLLMModels()
	current := 1
	for i, m := range models {
		marker := ""
		if m == settings.LLM.Model {
			marker = " (current)"
			current = i + 1
		}
		cmd.Printf("  %d. %s%s\n", i+1, m, marker)
	}
	cmd.Printf("  %d. Other\n", len(models)+1)
	cmd.Printf("\nEnter choice [%d]: ", current)
	idx := parseChoice(readLine(reader), len(models)+1, current)

	model := settings.LLM.Model
	if idx <= len(models) {
		model = models[idx-1]
	} else {
		cmd.Printf("Enter model name [%s]: ", settings.LLM.Model)
		if input := readLine(reader); input != "" {
			model = input
		}
	}

	// Base URL
	cmd.Printf("Enter base URL [%s]: ", settings.LLM.BaseURL)
	baseURL := readLine(reader)
	if baseURL == "" {
		baseURL = settings.LLM.BaseURL
	}

	// API key
	if settings.LLM.APIKey != "" {
		cmd.Printf("Enter API key [%s]: ", maskAPIKey(settings.LLM.APIKey))
	} else {
		cmd.Print("Enter API key: ")
	}
	apiKey := readPassword(cmd.InOrStdin(), reader)
	cmd.Println()
	if apiKey == "" {
		apiKey = settings.LLM.APIKey
	}
	if apiKey == "" {
		return errors.New("API key is required")
	}

	settings.LLM.Model = model
	settings.LLM.BaseURL = baseURL
	settings.LLM.APIKey = apiKey
	if err := settingsService.Save(settings); err != nil {
		return fmt.Errorf("failed to save LLM settings: %w", err)
	}

	// Validate the configuration by pinging the service
	if validateLLM != nil {
		cmd.Print("Validating configuration... ")
		if err := validateLLM(cmd.Context(), settings.LLM); err != nil {
			cmd.Printf("FAILED: %v\n", err)
			return fmt.Errorf("LLM configuration validation failed: %w", err)
		}
		cmd.Println("OK")
	}

	cmd.Printf("LLM configured: %s (%s)\n", model, maskAPIKey(apiKey))
	return nil
}

// Helper functions.

//nolint:errcheck // CLI helper, error ignored for UX
func readLine(reader *bufio.Reader) string {
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}

func parseChoice(input string, maxVal, defaultVal int) int {
	if input == "" {
		return defaultVal
	}
	val, err := strconv.Atoi(input)
	if err != nil || val < 1 || val > maxVal {
		return defaultVal
	}
	return val
}

// readPassword reads without echo when in is a terminal, else a plain line from reader.
func readPassword(in io.Reader, reader *bufio.Reader) string {
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		password, err := term.ReadPassword(int(f.Fd()))
		if err == nil {
			return strings.TrimSpace(string(password))
		}
	}
	return readLine(reader)
}

func maskAPIKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}
