package cache

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/thomas-vilte/promptforge/internal/cache"
	"github.com/thomas-vilte/promptforge/internal/config"
	"github.com/thomas-vilte/promptforge/internal/i18n"
	"github.com/thomas-vilte/promptforge/internal/ui"
	"github.com/urfave/cli/v3"
)

type CacheCommand struct {
	out io.Writer
}

func NewCacheCommand() *CacheCommand {
	return &CacheCommand{out: os.Stdout}
}

func (c *CacheCommand) CreateCommand(t *i18n.Translations, cfg *config.Config) *cli.Command {
	open := func() (*cache.Cache, error) {
		ttl := time.Duration(cfg.Server.CacheTTLSeconds) * time.Second
		responses, err := cache.NewCache(filepath.Join(cfg.Dir(), cache.DirName), ttl)
		if err != nil {
			return nil, fmt.Errorf(t.GetMessage("cache.error_init", 0, nil)+": %w", err)
		}
		return responses, nil
	}

	return &cli.Command{
		Name:  "cache",
		Usage: t.GetMessage("cache.usage", 0, nil),
		Commands: []*cli.Command{
			{
				Name:  "clean",
				Usage: t.GetMessage("cache.clean_usage", 0, nil),
				Action: func(_ context.Context, _ *cli.Command) error {
					responses, err := open()
					if err != nil {
						return err
					}

					if err := responses.Clean(); err != nil {
						return fmt.Errorf(t.GetMessage("cache.error_clean", 0, nil)+": %w", err)
					}

					ui.PrintSuccess(c.out, t.GetMessage("cache.cleaned", 0, nil))
					return nil
				},
			},
		},
	}
}
