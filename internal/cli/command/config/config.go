package config

import (
	"github.com/Tomas-vilte/MateImpact/internal/i18n"
	"github.com/Tomas-vilte/MateImpact/internal/infrastructure/factory"
	"github.com/urfave/cli/v3"
)

type ConfigCommandFactory struct {
	factory factory.ServiceFactoryInterface
}

func NewConfigCommandFactory(f factory.ServiceFactoryInterface) *ConfigCommandFactory {
	return &ConfigCommandFactory{
		factory: f,
	}
}

func (c *ConfigCommandFactory) CreateCommand(t *i18n.Translations) *cli.Command {
	return &cli.Command{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   t.GetMessage("config_usage", 0, nil),
		Commands: []*cli.Command{
			c.newShowCommand(t),
			c.newInitCommand(t),
		},
	}
}
