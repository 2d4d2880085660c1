package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	forge "github.com/thomas-vilte/promptforge/internal/catalog"
	"github.com/thomas-vilte/promptforge/internal/config"
	"github.com/thomas-vilte/promptforge/internal/i18n"
	"github.com/thomas-vilte/promptforge/internal/ui"
	"github.com/urfave/cli/v3"
)

type CatalogCommandFactory struct {
	registry *forge.Registry
	out      io.Writer
}

func NewCatalogCommandFactory(reg *forge.Registry) *CatalogCommandFactory {
	return &CatalogCommandFactory{registry: reg, out: os.Stdout}
}

func (f *CatalogCommandFactory) CreateCommand(t *i18n.Translations, cfg *config.Config) *cli.Command {
	jsonFlag := func() cli.Flag {
		return &cli.BoolFlag{
			Name:  "json",
			Usage: t.GetMessage("catalog.flag_json", 0, nil),
		}
	}

	return &cli.Command{
		Name:    "catalog",
		Aliases: []string{"ls"},
		Usage:   t.GetMessage("catalog.usage", 0, nil),
		Flags:   []cli.Flag{jsonFlag()},
		Commands: []*cli.Command{
			{
				Name:  "models",
				Usage: t.GetMessage("catalog.models_usage", 0, nil),
				Flags: []cli.Flag{jsonFlag()},
				Action: func(_ context.Context, cmd *cli.Command) error {
					if cmd.Bool("json") {
						return f.writeJSON(f.registry.Models())
					}
					f.printModels(t, cfg)
					return nil
				},
			},
			{
				Name:  "techniques",
				Usage: t.GetMessage("catalog.techniques_usage", 0, nil),
				Flags: []cli.Flag{jsonFlag()},
				Action: func(_ context.Context, cmd *cli.Command) error {
					if cmd.Bool("json") {
						return f.writeJSON(f.registry.Techniques())
					}
					f.printTechniques(t, cfg)
					return nil
				},
			},
			{
				Name:  "formats",
				Usage: t.GetMessage("catalog.formats_usage", 0, nil),
				Flags: []cli.Flag{jsonFlag()},
				Action: func(_ context.Context, cmd *cli.Command) error {
					if cmd.Bool("json") {
						return f.writeJSON(f.registry.Formats())
					}
					f.printFormats(t, cfg)
					return nil
				},
			},
		},
		Action: func(_ context.Context, cmd *cli.Command) error {
			if cmd.Bool("json") {
				return f.writeJSON(map[string]interface{}{
					"models":     f.registry.Models(),
					"techniques": f.registry.Techniques(),
					"formats":    f.registry.Formats(),
				})
			}
			f.printModels(t, cfg)
			f.printTechniques(t, cfg)
			f.printFormats(t, cfg)
			return nil
		},
	}
}

func (f *CatalogCommandFactory) printModels(t *i18n.Translations, cfg *config.Config) {
	ui.PrintSectionBanner(f.out, t.GetMessage("catalog.models_title", 0, nil))
	yellow := color.New(color.FgYellow)
	for _, m := range f.registry.Models() {
		f.printItem(t, m.ID, m.Name, m.ID == cfg.Defaults.Model)
		_, _ = fmt.Fprintf(f.out, "      %s · %s\n",
			ui.Dim.Sprint(m.Provider),
			yellow.Sprintf("$%.4f / 1k tokens", m.CostPer1kTokens))
		_, _ = fmt.Fprintf(f.out, "      %s\n", m.Description)
	}
}

func (f *CatalogCommandFactory) printTechniques(t *i18n.Translations, cfg *config.Config) {
	ui.PrintSectionBanner(f.out, t.GetMessage("catalog.techniques_title", 0, nil))
	for _, tq := range f.registry.Techniques() {
		f.printItem(t, tq.ID, tq.Icon+" "+tq.Name, tq.ID == cfg.Defaults.Technique)
		_, _ = fmt.Fprintf(f.out, "      %s\n", tq.Description)
	}
}

func (f *CatalogCommandFactory) printFormats(t *i18n.Translations, cfg *config.Config) {
	ui.PrintSectionBanner(f.out, t.GetMessage("catalog.formats_title", 0, nil))
	for _, ft := range f.registry.Formats() {
		f.printItem(t, ft.ID, ft.Name, ft.ID == cfg.Defaults.Format)
		_, _ = fmt.Fprintf(f.out, "      %s\n", ft.Description)
	}
}

func (f *CatalogCommandFactory) printItem(t *i18n.Translations, id, name string, isDefault bool) {
	marker := ""
	if isDefault {
		marker = " " + ui.Success.Sprint(t.GetMessage("catalog.default_marker", 0, nil))
	}
	_, _ = fmt.Fprintf(f.out, "   %s  %s%s\n", ui.Accent.Sprint(id), name, marker)
}

func (f *CatalogCommandFactory) writeJSON(v interface{}) error {
	enc := json.NewEncoder(f.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
