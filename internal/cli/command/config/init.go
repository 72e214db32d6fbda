package config

import (
	"context"
	"errors"
	"os"

	"github.com/Tomas-vilte/MateImpact/internal/cli/registry"
	"github.com/Tomas-vilte/MateImpact/internal/config"
	"github.com/Tomas-vilte/MateImpact/internal/i18n"
	"github.com/Tomas-vilte/MateImpact/internal/ui"
	"github.com/urfave/cli/v3"
)

func (c *ConfigCommandFactory) newInitCommand(t *i18n.Translations) *cli.Command {
	return &cli.Command{
		Name:  "init",
		Usage: t.GetMessage("config_init_usage", 0, nil),
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "force",
				Aliases: []string{"f"},
				Usage:   t.GetMessage("force_usage", 0, nil),
			},
		},
		Action: func(ctx context.Context, command *cli.Command) error {
			path := command.String(registry.ConfigFlag)
			if path == "" {
				p, err := config.DefaultPath()
				if err != nil {
					return err
				}
				path = p
			}

			if _, err := os.Stat(path); err == nil && !command.Bool("force") {
				return errors.New(t.GetMessage("config_exists", 0, map[string]interface{}{"Path": path}))
			}

			if err := config.SaveConfig(config.DefaultConfig(path)); err != nil {
				return err
			}
			ui.PrintSuccess(command.Root().Writer, t.GetMessage("config_written", 0, map[string]interface{}{"Path": path}))
			return nil
		},
	}
}
