package version

import (
	"context"
	"fmt"

	"github.com/Tomas-vilte/MateImpact/internal/i18n"
	appversion "github.com/Tomas-vilte/MateImpact/internal/version"
	"github.com/urfave/cli/v3"
)

type VersionCommand struct{}

func NewVersionCommand() *VersionCommand {
	return &VersionCommand{}
}

func (c *VersionCommand) CreateCommand(t *i18n.Translations) *cli.Command {
	return &cli.Command{
		Name:  "version",
		Usage: t.GetMessage("version_usage", 0, nil),
		Action: func(ctx context.Context, command *cli.Command) error {
			_, err := fmt.Fprintln(command.Root().Writer, t.GetMessage("version_output", 0, map[string]interface{}{
				"Version": appversion.FullVersion(),
			}))
			return err
		},
	}
}
