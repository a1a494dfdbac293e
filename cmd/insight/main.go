// Command insight extracts the key concepts of documents as navigable trees.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/custodia-labs/insight/internal/adapters/driven/config/file"
	"github.com/custodia-labs/insight/internal/adapters/driven/fetch/web"
	"github.com/custodia-labs/insight/internal/adapters/driven/llm/anthropic"
	"github.com/custodia-labs/insight/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/insight/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/insight/internal/adapters/driven/watch/fswatch"
	"github.com/custodia-labs/insight/internal/adapters/driving/cli"
	"github.com/custodia-labs/insight/internal/analysis/prompt"
	"github.com/custodia-labs/insight/internal/core/domain"
	"github.com/custodia-labs/insight/internal/core/ports/driven"
	"github.com/custodia-labs/insight/internal/core/services"
	"github.com/custodia-labs/insight/internal/logger"
	"github.com/custodia-labs/insight/internal/normalisers"
)

// version is set by the linker.
var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := run(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	var configStore driven.ConfigStore
	fileConfig, err := file.NewConfigStore("")
	if err != nil {
		logger.Warn("config unavailable, using defaults: %v", err)
		configStore = memory.NewConfigStore()
	} else {
		configStore = fileConfig
	}

	settingsService := services.NewSettingsService(configStore)
	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("loading settings: %w", err)
	}

	var store driven.AnalysisStore
	sqliteStore, err := sqlite.NewStore("")
	if err != nil {
		logger.Warn("database unavailable, analyses will not be kept: %v", err)
		store = memory.NewAnalysisStore()
	} else {
		defer sqliteStore.Close()
		store = sqliteStore
	}

	// Without an API key the client stays nil and Analyze reports ErrLLMUnavailable.
	var client driven.CompletionClient
	if anthropicClient, err := anthropic.NewClient(anthropic.ConfigFromSettings(settings.LLM)); err != nil {
		logger.Debug("completion client disabled: %v", err)
	} else {
		defer anthropicClient.Close()
		client = anthropicClient
	}

	builder := prompt.NewBuilder(nil)
	if promptStore, err := file.NewPromptStore(""); err != nil {
		logger.Debug("custom prompts disabled: %v", err)
	} else {
		builder.SetPromptStore(promptStore)
	}

	analysis := services.NewAnalysisOrchestrator(
		client,
		store,
		services.AnalysisConfigFromSettings(*settings),
		services.WithPromptBuilder(builder),
	)

	ingest := services.NewIngestService(normalisers.NewDefaultRegistry(), web.NewFetcher(web.Config{}))

	cli.SetVersion(version)
	cli.SetServices(cli.Services{
		Analysis: analysis,
		Ingest:   ingest,
		Settings: settingsService,
		NewWatcher: func(dir string, filter func(string) bool, debounce time.Duration) driven.FileWatcher {
			return fswatch.New(dir, filter, debounce)
		},
		ValidateLLM: validateLLM,
	})

	return cli.Execute(ctx)
}

// validateLLM pings the endpoint with s to check the key and base URL.
func validateLLM(ctx context.Context, s domain.LLMSettings) error {
	client, err := anthropic.NewClient(anthropic.ConfigFromSettings(s))
	if err != nil {
		return err
	}
	defer client.Close()

	ctx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()
	return client.Ping(ctx)
}
