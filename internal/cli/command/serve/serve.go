package serve

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/Tomas-vilte/MateImpact/internal/cli/registry"
	"github.com/Tomas-vilte/MateImpact/internal/i18n"
	"github.com/Tomas-vilte/MateImpact/internal/infrastructure/factory"
	"github.com/Tomas-vilte/MateImpact/internal/logger"
	"github.com/urfave/cli/v3"
)

type ServeCommand struct {
	factory factory.ServiceFactoryInterface
}

func NewServeCommand(f factory.ServiceFactoryInterface) *ServeCommand {
	return &ServeCommand{
		factory: f,
	}
}

func (c *ServeCommand) CreateCommand(t *i18n.Translations) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: t.GetMessage("serve_usage", 0, nil),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "addr",
				Usage: t.GetMessage("addr_usage", 0, nil),
			},
		},
		Action: func(ctx context.Context, command *cli.Command) error {
			logger.Initialize(command.Bool(registry.DebugFlag), command.Bool(registry.VerboseFlag), logger.FormatJSON)

			ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
			defer stop()

			srv, err := c.factory.CreateServer(ctx, command.String(registry.ConfigFlag), command.String("addr"))
			if err != nil {
				return fmt.Errorf(t.GetMessage("error.analyzer_creation_error", 0, nil)+": %w", err)
			}
			return srv.Run(ctx)
		},
	}
}
