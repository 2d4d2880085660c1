package config

import (
	"context"
	"fmt"

	"github.com/thomas-vilte/promptforge/internal/config"
	"github.com/thomas-vilte/promptforge/internal/i18n"
	"github.com/thomas-vilte/promptforge/internal/ui"
	"github.com/urfave/cli/v3"
)

func (c *ConfigCommandFactory) newShowCommand(t *i18n.Translations, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "show",
		Usage: t.GetMessage("config_show_usage", 0, nil),
		Action: func(_ context.Context, _ *cli.Command) error {
			_, _ = fmt.Fprintln(c.out, ui.Info.Sprint(t.GetMessage("current_config", 0, nil)))
			_, _ = fmt.Fprintln(c.out, "━━━━━━━━━━━━━━━━━━━━━━━")
			ui.PrintKeyValue(c.out, "file", cfg.PathFile)

			for _, key := range config.Keys {
				value, _ := cfg.Get(key)
				if value == "" {
					value = ui.Dim.Sprint("-")
				}
				ui.PrintKeyValue(c.out, key, value)
			}

			_, _ = fmt.Fprintln(c.out)
			switch {
			case cfg.Provider == config.ProviderOpenRouter && cfg.OpenRouterKey() == "":
				ui.PrintWarning(c.out, t.GetMessage("config_api_key_missing", 0, nil))
			case cfg.Provider == config.ProviderGemini && cfg.GeminiKey() == "":
				ui.PrintWarning(c.out, t.GetMessage("config_gemini_key_missing", 0, nil))
			default:
				ui.PrintSuccess(c.out, t.GetMessage("config_provider_ready", 0, map[string]interface{}{
					"Provider": cfg.Provider,
				}))
			}
			if cfg.User.Name == "" && cfg.User.Email == "" {
				ui.PrintWarning(c.out, t.GetMessage("config_not_signed_in", 0, nil))
			}
			return nil
		},
	}
}
