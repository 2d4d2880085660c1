package config

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/thomas-vilte/promptforge/internal/config"
	"github.com/thomas-vilte/promptforge/internal/i18n"
	"github.com/thomas-vilte/promptforge/internal/ui"
	"github.com/urfave/cli/v3"
)

func (c *ConfigCommandFactory) newSetCommand(t *i18n.Translations, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:      "set",
		Usage:     t.GetMessage("config_set_usage", 0, nil),
		ArgsUsage: t.GetMessage("config_set_args_usage", 0, nil),
		ShellComplete: func(_ context.Context, _ *cli.Command) {
			for _, key := range config.Keys {
				_, _ = fmt.Fprintln(c.out, key)
			}
		},
		Action: func(_ context.Context, command *cli.Command) error {
			if command.Args().Len() < 2 {
				ui.PrintError(c.out, t.GetMessage("config_set_error_args", 0, nil))
				return errors.New("missing arguments")
			}

			key := strings.ToLower(command.Args().Get(0))
			value := strings.Join(command.Args().Slice()[1:], " ")

			previous := *cfg
			if err := cfg.Set(key, value); err != nil {
				return err
			}
			if err := config.SaveConfig(cfg); err != nil {
				*cfg = previous
				return fmt.Errorf(t.GetMessage("config_save_error", 0, nil)+": %w", err)
			}

			// Confirm in the language just chosen.
			if key == "lang" || key == "language" {
				if err := t.SetLanguage(cfg.Language); err != nil {
					return err
				}
			}

			ui.PrintSuccess(c.out, t.GetMessage("config_updated", 0, map[string]interface{}{
				"Key": key,
			}))
			return nil
		},
	}
}
