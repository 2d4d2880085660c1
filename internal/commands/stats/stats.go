package stats

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/thomas-vilte/promptforge/internal/config"
	"github.com/thomas-vilte/promptforge/internal/i18n"
	"github.com/thomas-vilte/promptforge/internal/models"
	"github.com/thomas-vilte/promptforge/internal/services/cost"
	"github.com/thomas-vilte/promptforge/internal/services/usage"
	"github.com/thomas-vilte/promptforge/internal/ui"
	"github.com/urfave/cli/v3"
)

type StatsCommandFactory struct {
	recorder *usage.Recorder
	spend    *cost.Manager
	now      func() time.Time
	out      io.Writer
}

func NewStatsCommandFactory(rec *usage.Recorder, spend *cost.Manager) *StatsCommandFactory {
	return &StatsCommandFactory{
		recorder: rec,
		spend:    spend,
		now:      time.Now,
		out:      os.Stdout,
	}
}

type statsReport struct {
	models.UsageStats
	SpentTodayUSD     float64 `json:"spent_today_usd"`
	SpentThisMonthUSD float64 `json:"spent_this_month_usd"`
}

func (f *StatsCommandFactory) CreateCommand(t *i18n.Translations, _ *config.Config) *cli.Command {
	return &cli.Command{
		Name:    "stats",
		Aliases: []string{"cost"},
		Usage:   t.GetMessage("stats.usage_description", 0, nil),
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "json",
				Usage: t.GetMessage("stats.flag_json", 0, nil),
			},
		},
		Commands: []*cli.Command{
			{
				Name:  "reset",
				Usage: t.GetMessage("stats.reset_usage", 0, nil),
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "spend",
						Usage: t.GetMessage("stats.flag_reset_spend", 0, nil),
					},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					if err := f.recorder.ResetStats(ctx); err != nil {
						return err
					}
					if cmd.Bool("spend") {
						if err := f.spend.Clear(ctx); err != nil {
							return fmt.Errorf(t.GetMessage("stats.error_reset_spend", 0, nil)+": %w", err)
						}
					}
					ui.PrintSuccess(f.out, t.GetMessage("stats.reset_done", 0, nil))
					return nil
				},
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			now := f.now()
			report := statsReport{
				UsageStats:        f.recorder.LoadStats(ctx),
				SpentTodayUSD:     f.spend.GetDailyTotal(ctx, now),
				SpentThisMonthUSD: f.spend.GetMonthlyTotal(ctx, now),
			}

			if cmd.Bool("json") {
				enc := json.NewEncoder(f.out)
				enc.SetIndent("", "  ")
				return enc.Encode(report)
			}

			ui.PrintUsageStats(f.out, report.UsageStats, t)
			ui.PrintSpend(f.out, report.SpentTodayUSD, report.SpentThisMonthUSD, t)
			_, _ = fmt.Fprintln(f.out)
			return nil
		},
	}
}
