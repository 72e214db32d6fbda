package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/Tomas-vilte/MateImpact/internal/cli/command/analyze"
	"github.com/Tomas-vilte/MateImpact/internal/cli/command/config"
	"github.com/Tomas-vilte/MateImpact/internal/cli/command/serve"
	versioncmd "github.com/Tomas-vilte/MateImpact/internal/cli/command/version"
	"github.com/Tomas-vilte/MateImpact/internal/cli/registry"
	cfg "github.com/Tomas-vilte/MateImpact/internal/config"
	"github.com/Tomas-vilte/MateImpact/internal/i18n"
	"github.com/Tomas-vilte/MateImpact/internal/infrastructure/factory"
	"github.com/Tomas-vilte/MateImpact/internal/ui"
	"github.com/Tomas-vilte/MateImpact/internal/version"
	"github.com/urfave/cli/v3"
)

func main() {
	serviceFactory := factory.NewServiceFactory()

	app, translations, err := initializeApp(serviceFactory)
	if err != nil {
		ui.HandleAppError(os.Stderr, err, nil)
		os.Exit(1)
	}

	runErr := app.Run(context.Background(), os.Args)
	if err := serviceFactory.Close(); err != nil {
		log.Printf("Warning: could not release providers: %v", err)
	}
	if runErr != nil {
		ui.HandleAppError(os.Stderr, runErr, translations)
		os.Exit(1)
	}
}

func initializeApp(serviceFactory *factory.ServiceFactory) (*cli.Command, *i18n.Translations, error) {
	// Usage strings follow the language of the default config file. The
	// --config flag is honoured once a command runs.
	cfgApp, err := cfg.LoadConfig("")
	if err != nil {
		return nil, nil, err
	}
	lang := cfgApp.Language
	if lang == "" {
		lang = "en"
	}

	translations, err := i18n.NewTranslations(lang, cfgApp.Server.LocalesDir)
	if err != nil {
		return nil, nil, fmt.Errorf("error loading translations: %w", err)
	}

	registerCommand := registry.NewRegistry(translations)

	if err := registerCommand.Register("analyze", analyze.NewAnalyzeCommand(serviceFactory)); err != nil {
		return nil, nil, err
	}
	if err := registerCommand.Register("serve", serve.NewServeCommand(serviceFactory)); err != nil {
		return nil, nil, err
	}
	if err := registerCommand.Register("config", config.NewConfigCommandFactory(serviceFactory)); err != nil {
		return nil, nil, err
	}
	if err := registerCommand.Register("version", versioncmd.NewVersionCommand()); err != nil {
		return nil, nil, err
	}

	return &cli.Command{
		Name:     "mate-impact",
		Usage:    translations.GetMessage("app_usage", 0, nil),
		Version:  version.FullVersion(),
		Commands: registerCommand.CreateCommands(),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    registry.ConfigFlag,
				Aliases: []string{"c"},
				Usage:   translations.GetMessage("config_file_usage", 0, nil),
			},
			&cli.BoolFlag{
				Name:  registry.DebugFlag,
				Usage: translations.GetMessage("debug_usage", 0, nil),
			},
			&cli.BoolFlag{
				Name:  registry.VerboseFlag,
				Usage: translations.GetMessage("verbose_usage", 0, nil),
			},
		},
		EnableShellCompletion: true,
	}, translations, nil
}
