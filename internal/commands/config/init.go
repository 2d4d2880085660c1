package config

import (
	"context"
	"fmt"
	"os/user"
	"strings"

	"github.com/thomas-vilte/promptforge/internal/commands/completion_helper"
	"github.com/thomas-vilte/promptforge/internal/config"
	"github.com/thomas-vilte/promptforge/internal/i18n"
	"github.com/thomas-vilte/promptforge/internal/ui"
	"github.com/urfave/cli/v3"
)

// currentUser is swapped in tests.
var currentUser = user.Current

func (c *ConfigCommandFactory) newInitCommand(t *i18n.Translations, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "init",
		Usage: t.GetMessage("config_init_usage", 0, nil),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "name",
				Usage: t.GetMessage("config_init_name_flag", 0, nil),
			},
			&cli.StringFlag{
				Name:  "email",
				Usage: t.GetMessage("config_init_email_flag", 0, nil),
			},
			&cli.StringFlag{
				Name:  "provider",
				Usage: t.GetMessage("config_init_provider_flag", 0, nil),
			},
			&cli.StringFlag{
				Name:  "api-key",
				Usage: t.GetMessage("config_init_api_key_flag", 0, nil),
			},
			&cli.StringFlag{
				Name:  "lang",
				Usage: t.GetMessage("config_init_lang_flag", 0, nil),
			},
		},
		ShellComplete: completion_helper.DefaultFlagComplete,
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if v := cmd.String("lang"); v != "" {
				if err := cfg.Set("language", v); err != nil {
					return err
				}
			}
			if v := cmd.String("provider"); v != "" {
				if err := cfg.Set("provider", v); err != nil {
					return err
				}
			}
			if v := cmd.String("api-key"); v != "" {
				key := "openrouter_api_key"
				if cfg.Provider == config.ProviderGemini {
					key = "gemini_api_key"
				}
				if err := cfg.Set(key, v); err != nil {
					return err
				}
			}
			if v := cmd.String("email"); v != "" {
				cfg.User.Email = v
			}

			switch name := strings.TrimSpace(cmd.String("name")); {
			case name != "":
				cfg.User.Name = name
			case cfg.User.Name == "":
				cfg.User.Name = systemUserName()
			}

			if err := config.SaveConfig(cfg); err != nil {
				return fmt.Errorf(t.GetMessage("config_save_error", 0, nil)+": %w", err)
			}

			ui.PrintSuccess(c.out, t.GetMessage("config_initialized", 0, map[string]interface{}{
				"Path": cfg.PathFile,
			}))
			if cfg.User.Name != "" {
				ui.PrintKeyValue(c.out, t.GetMessage("config_signed_in_as", 0, nil), cfg.User.Name)
			}
			if cfg.Provider == config.ProviderOpenRouter && cfg.OpenRouterKey() == "" {
				ui.PrintWarning(c.out, t.GetMessage("config_api_key_missing", 0, nil))
			}
			return nil
		},
	}
}

// systemUserName is the display name of the OS account, falling back to the
// login name.
func systemUserName() string {
	u, err := currentUser()
	if err != nil {
		return ""
	}
	if name := strings.TrimSpace(u.Name); name != "" {
		return name
	}
	return u.Username
}
