package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"slices"
	"syscall"

	"github.com/thomas-vilte/promptforge/internal/ai/registry"
	"github.com/thomas-vilte/promptforge/internal/catalog"
	cliRegistry "github.com/thomas-vilte/promptforge/internal/cli/registry"
	"github.com/thomas-vilte/promptforge/internal/commands/cache"
	catalogCmd "github.com/thomas-vilte/promptforge/internal/commands/catalog"
	"github.com/thomas-vilte/promptforge/internal/commands/completion"
	"github.com/thomas-vilte/promptforge/internal/commands/completion_helper"
	configCmd "github.com/thomas-vilte/promptforge/internal/commands/config"
	"github.com/thomas-vilte/promptforge/internal/commands/enhance"
	"github.com/thomas-vilte/promptforge/internal/commands/history"
	"github.com/thomas-vilte/promptforge/internal/commands/serve"
	"github.com/thomas-vilte/promptforge/internal/commands/stats"
	cfg "github.com/thomas-vilte/promptforge/internal/config"
	"github.com/thomas-vilte/promptforge/internal/i18n"
	"github.com/thomas-vilte/promptforge/internal/logger"
	"github.com/thomas-vilte/promptforge/internal/ports"
	"github.com/thomas-vilte/promptforge/internal/services/cost"
	"github.com/thomas-vilte/promptforge/internal/services/usage"
	"github.com/thomas-vilte/promptforge/internal/storage"
	"github.com/thomas-vilte/promptforge/internal/ui"
	"github.com/thomas-vilte/promptforge/internal/version"
	"github.com/urfave/cli/v3"
)

func main() {
	args := os.Args
	logger.Initialize(slices.Contains(args, "--debug"), slices.Contains(args, "--verbose"))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, translations, store, err := initializeApp()
	if err != nil {
		log.Fatalf("Error starting promptforge: %v", err)
	}

	err = app.Run(ctx, args)
	if cerr := store.Close(); cerr != nil {
		logger.Warn(ctx, "failed to close the local store", "error", cerr)
	}
	if err != nil {
		ui.StopActiveSpinner()
		ui.HandleAppError(os.Stderr, err, translations)
		stop()
		os.Exit(1)
	}
}

func initializeApp() (*cli.Command, *i18n.Translations, ports.KVStore, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, nil, nil, fmt.Errorf("could not resolve the home directory: %w", err)
	}

	cfgApp, err := cfg.LoadConfig(homeDir)
	if err != nil {
		return nil, nil, nil, err
	}

	translations, err := i18n.NewTranslations(cfgApp.Language)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("error loading translations: %w", err)
	}

	forge := catalog.NewRegistry()
	if cfgApp.CatalogOverlay != "" {
		if err := forge.LoadOverlay(cfgApp.CatalogOverlay); err != nil {
			return nil, nil, nil, err
		}
	}

	store, err := storage.Open(cfgApp.Storage, cfgApp.Dir())
	if err != nil {
		return nil, nil, nil, err
	}
	recorder := usage.NewRecorder(store, cfgApp.MonthlyLimit)
	spend := cost.NewManager(store)

	// The provider is built on first use so catalog, history and config
	// commands work without an API key.
	streamer := ports.StreamerProvider(func(ctx context.Context) (ports.CompletionStreamer, error) {
		return registry.NewRouter(ctx, registry.Default(), cfgApp)
	})

	registerCommand := cliRegistry.NewRegistry(cfgApp, translations)

	factories := []struct {
		name    string
		factory cliRegistry.CommandFactory
	}{
		{"enhance", enhance.NewEnhanceCommandFactory(forge, streamer, recorder, spend)},
		{"history", history.NewHistoryCommandFactory(recorder)},
		{"stats", stats.NewStatsCommandFactory(recorder, spend)},
		{"catalog", catalogCmd.NewCatalogCommandFactory(forge)},
		{"config", configCmd.NewConfigCommandFactory()},
		{"serve", serve.NewServeCommandFactory(forge, streamer, recorder, spend)},
		{"cache", cache.NewCacheCommand()},
		{"completion", completion.NewCompletionCommand()},
	}
	for _, f := range factories {
		if err := registerCommand.Register(f.name, f.factory); err != nil {
			return nil, nil, nil, fmt.Errorf("error registering command '%s': %w", f.name, err)
		}
	}

	commands := registerCommand.CreateCommands()

	helpCommand := &cli.Command{
		Name:  "help",
		Usage: translations.GetMessage("help_command_usage", 0, nil),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return cli.ShowAppHelp(cmd)
		},
	}
	commands = append(commands, helpCommand)

	return &cli.Command{
		Name:        "promptforge",
		Usage:       translations.GetMessage("app_usage", 0, nil),
		Version:     version.Version,
		Description: translations.GetMessage("app_description", 0, nil),
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "debug",
				Usage: translations.GetMessage("flag_debug_usage", 0, nil),
			},
			&cli.BoolFlag{
				Name:  "verbose",
				Usage: translations.GetMessage("flag_verbose_usage", 0, nil),
			},
		},
		Commands:              commands,
		EnableShellCompletion: true,
		ShellComplete:         completion_helper.CatalogComplete(forge),
	}, translations, store, nil
}
