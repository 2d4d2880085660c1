package logger

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"github.com/fatih/color"
)

var (
	levelBadges = map[slog.Level]*color.Color{
		slog.LevelDebug: color.New(color.FgHiBlack),
		slog.LevelInfo:  color.New(color.FgCyan),
		slog.LevelWarn:  color.New(color.FgYellow),
		slog.LevelError: color.New(color.FgRed, color.Bold),
	}

	// keyColors highlights the fields the enhancement pipeline logs most.
	keyColors = map[string]*color.Color{
		"error":       color.New(color.FgRed),
		"model":       color.New(color.FgCyan),
		"technique":   color.New(color.FgCyan),
		"format":      color.New(color.FgCyan),
		"provider":    color.New(color.FgCyan),
		"chars":       color.New(color.FgGreen),
		"tokens":      color.New(color.FgGreen),
		"duration_ms": color.New(color.FgMagenta),
		"status":      color.New(color.FgMagenta),
	}

	plainKey = color.New(color.FgHiBlack)
)

// ConsoleHandler writes one line per record for terminals:
//
//	WARN  failed to record spend error=disk full model=deepseek/deepseek-chat-v3-0324
//
// Attributes bound with WithAttrs are rendered once, when they are bound.
type ConsoleHandler struct {
	level  slog.Leveler
	source bool

	mu     *sync.Mutex
	w      io.Writer
	bound  string
	prefix string
}

func NewConsoleHandler(w io.Writer, opts *slog.HandlerOptions) *ConsoleHandler {
	h := &ConsoleHandler{level: slog.LevelWarn, mu: &sync.Mutex{}, w: w}
	if opts != nil {
		if opts.Level != nil {
			h.level = opts.Level
		}
		h.source = opts.AddSource
	}
	return h
}

func (h *ConsoleHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

func (h *ConsoleHandler) Handle(_ context.Context, r slog.Record) error {
	var b strings.Builder

	b.WriteString(badge(r.Level))
	b.WriteByte(' ')
	b.WriteString(r.Message)
	b.WriteString(h.bound)
	r.Attrs(func(a slog.Attr) bool {
		writeAttr(&b, h.prefix, a)
		return true
	})

	if h.source && r.PC != 0 {
		frame, _ := runtime.CallersFrames([]uintptr{r.PC}).Next()
		if frame.File != "" {
			b.WriteByte(' ')
			b.WriteString(plainKey.Sprintf("(%s:%d)", filepath.Base(frame.File), frame.Line))
		}
	}
	b.WriteByte('\n')

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := io.WriteString(h.w, b.String())
	return err
}

func (h *ConsoleHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) == 0 {
		return h
	}
	var b strings.Builder
	b.WriteString(h.bound)
	for _, a := range attrs {
		writeAttr(&b, h.prefix, a)
	}
	next := *h
	next.bound = b.String()
	return &next
}

func (h *ConsoleHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	next := *h
	next.prefix = h.prefix + name + "."
	return &next
}

func badge(level slog.Level) string {
	text := level.String()
	if len(text) < 5 {
		text += strings.Repeat(" ", 5-len(text))
	}
	if c, ok := levelBadges[level]; ok {
		return c.Sprint(text)
	}
	return text
}

// writeAttr appends " key=value", flattening groups into dotted keys.
func writeAttr(b *strings.Builder, prefix string, a slog.Attr) {
	a.Value = a.Value.Resolve()
	if a.Equal(slog.Attr{}) {
		return
	}

	if a.Value.Kind() == slog.KindGroup {
		if a.Key != "" {
			prefix += a.Key + "."
		}
		for _, ga := range a.Value.Group() {
			writeAttr(b, prefix, ga)
		}
		return
	}

	c, ok := keyColors[a.Key]
	if !ok {
		c = plainKey
	}
	b.WriteByte(' ')
	b.WriteString(c.Sprintf("%s%s=%s", prefix, a.Key, a.Value.String()))
}
