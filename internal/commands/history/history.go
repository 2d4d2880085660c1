package history

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"os"

	"github.com/thomas-vilte/promptforge/internal/config"
	"github.com/thomas-vilte/promptforge/internal/i18n"
	"github.com/thomas-vilte/promptforge/internal/services/usage"
	"github.com/thomas-vilte/promptforge/internal/ui"
	"github.com/urfave/cli/v3"
)

type HistoryCommandFactory struct {
	recorder *usage.Recorder
	in       io.Reader
	out      io.Writer
}

func NewHistoryCommandFactory(rec *usage.Recorder) *HistoryCommandFactory {
	return &HistoryCommandFactory{
		recorder: rec,
		in:       os.Stdin,
		out:      os.Stdout,
	}
}

func (f *HistoryCommandFactory) CreateCommand(t *i18n.Translations, _ *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "history",
		Usage: t.GetMessage("history.usage", 0, nil),
		Commands: []*cli.Command{
			f.newListCommand(t),
			f.newShowCommand(t),
			f.newClearCommand(t),
		},
		Action: func(ctx context.Context, _ *cli.Command) error {
			ui.PrintHistory(f.out, f.recorder.LoadHistory(ctx), t)
			return nil
		},
	}
}

func (f *HistoryCommandFactory) newListCommand(t *i18n.Translations) *cli.Command {
	return &cli.Command{
		Name:    "list",
		Aliases: []string{"ls"},
		Usage:   t.GetMessage("history.list_usage", 0, nil),
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "limit",
				Aliases: []string{"n"},
				Usage:   t.GetMessage("history.flag_limit", 0, nil),
				Value:   10,
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: t.GetMessage("history.flag_json", 0, nil),
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			entries := f.recorder.LoadHistory(ctx)
			if limit := int(cmd.Int("limit")); limit > 0 && len(entries) > limit {
				entries = entries[:limit]
			}

			if cmd.Bool("json") {
				enc := json.NewEncoder(f.out)
				enc.SetIndent("", "  ")
				return enc.Encode(entries)
			}

			ui.PrintHistory(f.out, entries, t)
			return nil
		},
	}
}

func (f *HistoryCommandFactory) newShowCommand(t *i18n.Translations) *cli.Command {
	return &cli.Command{
		Name:      "show",
		Usage:     t.GetMessage("history.show_usage", 0, nil),
		ArgsUsage: "<id>",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			id := cmd.Args().First()
			if id == "" {
				return errors.New(t.GetMessage("history.error_missing_id", 0, nil))
			}

			entry, ok := f.recorder.FindEntry(ctx, id)
			if !ok {
				return errors.New(t.GetMessage("history.not_found", 0, map[string]interface{}{
					"ID": id,
				}))
			}

			ui.PrintHistoryEntry(f.out, entry, t)
			return nil
		},
	}
}

func (f *HistoryCommandFactory) newClearCommand(t *i18n.Translations) *cli.Command {
	return &cli.Command{
		Name:  "clear",
		Usage: t.GetMessage("history.clear_usage", 0, nil),
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "yes",
				Aliases: []string{"y"},
				Usage:   t.GetMessage("history.flag_yes", 0, nil),
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			entries := f.recorder.LoadHistory(ctx)
			if len(entries) == 0 {
				ui.PrintInfo(f.out, t.GetMessage("history.empty", 0, nil))
				return nil
			}

			if !cmd.Bool("yes") {
				question := t.GetMessage("history.clear_confirm", len(entries), map[string]interface{}{
					"Count": len(entries),
				})
				if !ui.AskConfirmation(f.in, f.out, question) {
					ui.PrintWarning(f.out, t.GetMessage("operation_cancelled", 0, nil))
					return nil
				}
			}

			if err := f.recorder.ClearHistory(ctx); err != nil {
				return err
			}
			ui.PrintSuccess(f.out, t.GetMessage("history.cleared", 0, nil))
			return nil
		},
	}
}
