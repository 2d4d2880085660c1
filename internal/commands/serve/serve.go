package serve

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/thomas-vilte/promptforge/internal/cache"
	"github.com/thomas-vilte/promptforge/internal/catalog"
	"github.com/thomas-vilte/promptforge/internal/config"
	"github.com/thomas-vilte/promptforge/internal/i18n"
	"github.com/thomas-vilte/promptforge/internal/logger"
	"github.com/thomas-vilte/promptforge/internal/ports"
	"github.com/thomas-vilte/promptforge/internal/server"
	"github.com/thomas-vilte/promptforge/internal/services/cost"
	"github.com/thomas-vilte/promptforge/internal/services/usage"
	"github.com/urfave/cli/v3"
)

const cacheSweepInterval = 10 * time.Minute

type ServeCommandFactory struct {
	catalog  *catalog.Registry
	streamer ports.StreamerProvider
	recorder *usage.Recorder
	spend    *cost.Manager
}

func NewServeCommandFactory(reg *catalog.Registry, streamer ports.StreamerProvider, rec *usage.Recorder, spend *cost.Manager) *ServeCommandFactory {
	return &ServeCommandFactory{
		catalog:  reg,
		streamer: streamer,
		recorder: rec,
		spend:    spend,
	}
}

func (f *ServeCommandFactory) CreateCommand(t *i18n.Translations, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: t.GetMessage("serve.usage", 0, nil),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "addr",
				Usage: t.GetMessage("serve.flag_addr", 0, nil),
				Value: cfg.Server.Addr,
			},
			&cli.BoolFlag{
				Name:  "json-logs",
				Usage: t.GetMessage("serve.flag_json_logs", 0, nil),
			},
			&cli.BoolFlag{
				Name:  "no-cache",
				Usage: t.GetMessage("serve.flag_no_cache", 0, nil),
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if cmd.Bool("json-logs") {
				l := logger.New(os.Stderr, logger.Options{JSON: true, Verbose: true})
				slog.SetDefault(l)
				ctx = logger.WithLogger(ctx, l)
			}
			if addr := cmd.String("addr"); addr != "" {
				cfg.Server.Addr = addr
			}

			srv, responses, err := f.build(ctx, cfg, !cmd.Bool("no-cache"))
			if err != nil {
				return err
			}

			g, gctx := errgroup.WithContext(ctx)
			g.Go(func() error {
				return srv.ListenAndServe(gctx)
			})
			if responses != nil {
				g.Go(func() error {
					sweepCache(gctx, responses, cacheSweepInterval)
					return nil
				})
			}
			return g.Wait()
		},
	}
}

// build wires the server. A provider that cannot be built leaves the
// enhancement endpoints answering 500 while the read endpoints keep working.
func (f *ServeCommandFactory) build(ctx context.Context, cfg *config.Config, withCache bool) (*server.Server, *cache.Cache, error) {
	streamer, err := f.streamer(ctx)
	if err != nil {
		logger.Warn(ctx, "model provider unavailable, enhancement endpoints disabled",
			"provider", cfg.Provider,
			"error", err)
		streamer = nil
	}

	opts := []server.Option{server.WithSpendLedger(f.spend)}

	var responses *cache.Cache
	if withCache && cfg.Server.CacheTTLSeconds > 0 {
		ttl := time.Duration(cfg.Server.CacheTTLSeconds) * time.Second
		responses, err = cache.NewCache(filepath.Join(cfg.Dir(), cache.DirName), ttl)
		if err != nil {
			return nil, nil, err
		}
		opts = append(opts, server.WithCache(responses))
		logger.Info(ctx, "response cache enabled", "ttl", ttl.String())
	}

	return server.New(cfg, f.catalog, streamer, f.recorder, opts...), responses, nil
}

func sweepCache(ctx context.Context, c *cache.Cache, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := c.CleanExpired(); err != nil {
				logger.Warn(ctx, "cache sweep failed", "error", err)
			}
		}
	}
}
