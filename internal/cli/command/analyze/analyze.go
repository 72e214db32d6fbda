package analyze

import (
	"context"
	"fmt"

	"github.com/Tomas-vilte/MateImpact/internal/cli/registry"
	"github.com/Tomas-vilte/MateImpact/internal/domain/models"
	"github.com/Tomas-vilte/MateImpact/internal/i18n"
	"github.com/Tomas-vilte/MateImpact/internal/infrastructure/factory"
	"github.com/Tomas-vilte/MateImpact/internal/logger"
	"github.com/Tomas-vilte/MateImpact/internal/ui"
	"github.com/urfave/cli/v3"
)

type AnalyzeCommand struct {
	factory factory.ServiceFactoryInterface
}

func NewAnalyzeCommand(f factory.ServiceFactoryInterface) *AnalyzeCommand {
	return &AnalyzeCommand{
		factory: f,
	}
}

func (c *AnalyzeCommand) CreateCommand(t *i18n.Translations) *cli.Command {
	return &cli.Command{
		Name:    "analyze",
		Aliases: []string{"a"},
		Usage:   t.GetMessage("analyze_usage", 0, nil),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "pr-url",
				Aliases:  []string{"u"},
				Usage:    t.GetMessage("pr_url_usage", 0, nil),
				Required: true,
			},
			&cli.BoolFlag{
				Name:  "cli-mode",
				Usage: t.GetMessage("cli_mode_usage", 0, nil),
			},
			&cli.BoolFlag{
				Name:  "publish",
				Usage: t.GetMessage("publish_usage", 0, nil),
			},
		},
		Action: func(ctx context.Context, command *cli.Command) error {
			logger.Initialize(command.Bool(registry.DebugFlag), command.Bool(registry.VerboseFlag), logger.FormatPretty)

			analyzer, err := c.factory.CreateAnalyzer(ctx, command.String(registry.ConfigFlag))
			if err != nil {
				return fmt.Errorf(t.GetMessage("error.analyzer_creation_error", 0, nil)+": %w", err)
			}

			opts := models.AnalyzeOptions{CLIMode: command.Bool("cli-mode")}
			if command.IsSet("publish") {
				publish := command.Bool("publish")
				opts.Publish = &publish
			}

			outcome, err := analyzer.Analyze(ctx, command.String("pr-url"), opts)
			if err != nil {
				return fmt.Errorf(t.GetMessage("error.analysis_error", 0, nil)+": %w", err)
			}

			w := command.Root().Writer
			switch {
			case outcome.Report == "":
				ui.PrintWarning(w, t.GetMessage("no_analysis_result", 0, nil))
			case !outcome.Published && !opts.CLIMode:
				ui.PrintSuccess(w, t.GetMessage("analysis_not_published", 0, nil))
			}
			return nil
		},
	}
}
