package config

import (
	"context"
	"fmt"
	"strings"

	"github.com/Tomas-vilte/MateImpact/internal/cli/registry"
	"github.com/Tomas-vilte/MateImpact/internal/config"
	"github.com/Tomas-vilte/MateImpact/internal/i18n"
	"github.com/Tomas-vilte/MateImpact/internal/prompt"
	"github.com/urfave/cli/v3"
)

func (c *ConfigCommandFactory) newShowCommand(t *i18n.Translations) *cli.Command {
	return &cli.Command{
		Name:  "show",
		Usage: t.GetMessage("config_show_usage", 0, nil),
		Action: func(ctx context.Context, command *cli.Command) error {
			path := command.String(registry.ConfigFlag)
			if path == "" {
				p, err := config.DefaultPath()
				if err != nil {
					return err
				}
				path = p
			}

			settings, err := c.factory.LoadSettings(path)
			if err != nil {
				return err
			}

			w := command.Root().Writer
			_, _ = fmt.Fprintln(w, t.GetMessage("config_source", 0, map[string]interface{}{"Path": path}))
			_, _ = fmt.Fprintln(w, "━━━━━━━━━━━━━━━━━━━━━━━")
			for _, key := range settings.Keys() {
				value, _ := settings.Lookup(key)
				_, _ = fmt.Fprintf(w, "%s = %s\n", key, formatValue(t, key, value))
			}
			return nil
		},
	}
}

func formatValue(t *i18n.Translations, key string, value any) string {
	s := fmt.Sprint(value)
	if list, ok := value.([]string); ok {
		s = "[" + strings.Join(list, ", ") + "]"
	}

	switch {
	case config.IsSecret(key):
		if s == "" {
			return t.GetMessage("value_not_set", 0, nil)
		}
		return maskSecret(s)
	case s == prompt.DefaultSystemTemplate || s == prompt.DefaultUserTemplate:
		return "(built-in)"
	case strings.Contains(s, "\n"):
		return fmt.Sprintf("(custom, %d lines)", strings.Count(s, "\n")+1)
	case s == "":
		return t.GetMessage("value_not_set", 0, nil)
	}
	return s
}

// maskSecret keeps the first four characters of long secrets.
func maskSecret(s string) string {
	if len(s) <= 8 {
		return "****"
	}
	return s[:4] + "****"
}
