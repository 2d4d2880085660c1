package enhance

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/thomas-vilte/promptforge/internal/ai"
	"github.com/thomas-vilte/promptforge/internal/auth"
	"github.com/thomas-vilte/promptforge/internal/catalog"
	"github.com/thomas-vilte/promptforge/internal/commands/completion_helper"
	"github.com/thomas-vilte/promptforge/internal/config"
	"github.com/thomas-vilte/promptforge/internal/enhancement"
	"github.com/thomas-vilte/promptforge/internal/i18n"
	"github.com/thomas-vilte/promptforge/internal/logger"
	"github.com/thomas-vilte/promptforge/internal/models"
	"github.com/thomas-vilte/promptforge/internal/ports"
	"github.com/thomas-vilte/promptforge/internal/services/cost"
	"github.com/thomas-vilte/promptforge/internal/services/usage"
	"github.com/thomas-vilte/promptforge/internal/ui"
	"github.com/thomas-vilte/promptforge/internal/workspace"
	"github.com/urfave/cli/v3"
)

type EnhanceCommandFactory struct {
	catalog  *catalog.Registry
	streamer ports.StreamerProvider
	recorder *usage.Recorder
	spend    *cost.Manager
	calc     *cost.Calculator

	in  io.Reader
	out io.Writer
}

func NewEnhanceCommandFactory(reg *catalog.Registry, streamer ports.StreamerProvider, rec *usage.Recorder, spend *cost.Manager) *EnhanceCommandFactory {
	return &EnhanceCommandFactory{
		catalog:  reg,
		streamer: streamer,
		recorder: rec,
		spend:    spend,
		calc:     cost.NewCalculator(),
		in:       os.Stdin,
		out:      os.Stdout,
	}
}

type jsonResult struct {
	Model     string                   `json:"model"`
	Technique string                   `json:"technique"`
	Format    string                   `json:"format"`
	Result    models.EnhancementResult `json:"result"`
	Usage     *models.TokenUsage       `json:"usage,omitempty"`
	CostUSD   float64                  `json:"cost_usd"`
}

func (f *EnhanceCommandFactory) CreateCommand(t *i18n.Translations, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:      "enhance",
		Aliases:   []string{"e"},
		Usage:     t.GetMessage("enhance.usage", 0, nil),
		ArgsUsage: t.GetMessage("enhance.args_usage", 0, nil),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "model",
				Aliases: []string{"m"},
				Usage:   t.GetMessage("enhance.flag_model", 0, nil),
			},
			&cli.StringFlag{
				Name:    "technique",
				Aliases: []string{"t"},
				Usage:   t.GetMessage("enhance.flag_technique", 0, nil),
			},
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Usage:   t.GetMessage("enhance.flag_format", 0, nil),
			},
			&cli.StringFlag{
				Name:    "instructions",
				Aliases: []string{"i"},
				Usage:   t.GetMessage("enhance.flag_instructions", 0, nil),
			},
			&cli.StringFlag{
				Name:  "file",
				Usage: t.GetMessage("enhance.flag_file", 0, nil),
			},
			&cli.BoolFlag{
				Name:    "quiet",
				Aliases: []string{"q"},
				Usage:   t.GetMessage("enhance.flag_quiet", 0, nil),
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: t.GetMessage("enhance.flag_json", 0, nil),
			},
		},
		ShellComplete: completion_helper.CatalogComplete(f.catalog),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return f.run(ctx, cmd, t, cfg)
		},
	}
}

func (f *EnhanceCommandFactory) run(ctx context.Context, cmd *cli.Command, t *i18n.Translations, cfg *config.Config) error {
	content, err := f.readPrompt(cmd)
	if err != nil {
		return fmt.Errorf(t.GetMessage("enhance.error_reading_prompt", 0, nil)+": %w", err)
	}

	ws := workspace.New(workspace.Defaults{
		ModelID:     cfg.Defaults.Model,
		TechniqueID: cfg.Defaults.Technique,
		FormatID:    cfg.Defaults.Format,
	})
	ws.SetInputPrompt(content)
	if v := cmd.String("model"); v != "" {
		ws.SetModel(v)
	}
	if v := cmd.String("technique"); v != "" {
		ws.SetTechnique(v)
	}
	if v := cmd.String("format"); v != "" {
		ws.SetFormat(v)
	}

	req, err := ws.BuildRequest(f.catalog, cmd.String("instructions"))
	if err != nil {
		return err
	}

	streamer, err := f.streamer(ctx)
	if err != nil {
		return err
	}

	var done *enhancement.Completion
	ctrl := enhancement.NewController(streamer, auth.FromConfig(cfg),
		enhancement.WithRecorder(f.recorder),
		enhancement.WithCostTracking(f.calc, f.spend),
		enhancement.WithCompletionHook(func(_ context.Context, c enhancement.Completion) {
			done = &c
		}),
	)

	asJSON := cmd.Bool("json")
	quiet := cmd.Bool("quiet") || asJSON

	spinner := ui.NewSpinner().
		WithMessage(t.GetMessage("enhance.waiting", 0, map[string]interface{}{
			"Model":     req.Model.Name,
			"Technique": req.Technique.Name,
		})).
		WithWriter(f.out).
		Build()
	if !quiet {
		spinner.Start()
	}
	defer spinner.Stop()

	printed := 0
	if !asJSON {
		unsubscribe := ctrl.Subscribe(func(st enhancement.State) {
			if st.Status != enhancement.StatusEnhancing || len(st.Output) <= printed {
				return
			}
			if printed == 0 {
				spinner.Stop()
			}
			_, _ = io.WriteString(f.out, st.Output[printed:])
			printed = len(st.Output)
		})
		defer unsubscribe()
	}

	result, err := ctrl.Enhance(ctx, req)
	spinner.Stop()
	if printed > 0 {
		_, _ = fmt.Fprintln(f.out)
	}
	if err != nil {
		return err
	}
	if result == nil {
		ui.PrintWarning(f.out, t.GetMessage("enhance.cancelled", 0, nil))
		return nil
	}

	var (
		usageBlock *models.TokenUsage
		costUSD    float64
		estimated  = true
	)
	if done != nil {
		usageBlock = done.Usage
		tokens := estimateTokens(done)
		costUSD = f.calc.Cost(req.Model, usageBlock, tokens)
		estimated = usageBlock == nil || usageBlock.TotalTokens == 0
	}

	logger.Debug(ctx, "enhance command finished",
		"enhanced_chars", result.EnhancedLength,
		"cost_usd", costUSD)

	if asJSON {
		enc := json.NewEncoder(f.out)
		enc.SetIndent("", "  ")
		return enc.Encode(jsonResult{
			Model:     req.Model.ID,
			Technique: req.Technique.ID,
			Format:    req.OutputFormat.ID,
			Result:    *result,
			Usage:     usageBlock,
			CostUSD:   costUSD,
		})
	}

	if quiet {
		return nil
	}

	_, _ = fmt.Fprintln(f.out)
	ui.PrintDuration(f.out, t.GetMessage("enhance.completed", 0, nil), result.Duration)
	ui.PrintKeyValue(f.out, t.GetMessage("enhance.characters", 0, nil),
		fmt.Sprintf("%d → %d", result.OriginalLength, result.EnhancedLength))
	ui.PrintTokenUsage(f.out, usageBlock, costUSD, estimated, t)
	return nil
}

// readPrompt takes the prompt from the arguments, or from --file when none
// are given. "--file -" reads standard input.
func (f *EnhanceCommandFactory) readPrompt(cmd *cli.Command) (string, error) {
	if cmd.Args().Len() > 0 {
		return strings.Join(cmd.Args().Slice(), " "), nil
	}

	path := cmd.String("file")
	switch path {
	case "":
		return "", nil
	case "-":
		data, err := io.ReadAll(f.in)
		return string(data), err
	default:
		data, err := os.ReadFile(path)
		return string(data), err
	}
}

func estimateTokens(c *enhancement.Completion) int {
	if c.Usage != nil && c.Usage.TotalTokens > 0 {
		return c.Usage.TotalTokens
	}
	return ai.EstimateTokens(c.Request.Content) + ai.EstimateTokens(c.Result.EnhancedText)
}
