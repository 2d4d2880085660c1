package logger

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
)

func TestConsoleHandler_FiltersBelowLevel(t *testing.T) {
	// Arrange
	color.NoColor = true
	var buf bytes.Buffer
	l := slog.New(NewConsoleHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo}))

	// Act
	l.Debug("hidden")
	l.Info("enhancement completed", "model", "DeepSeek v3", "chars", 120)

	// Assert
	assert.Equal(t, "INFO  enhancement completed model=DeepSeek v3 chars=120\n", buf.String())
}

func TestConsoleHandler_DefaultsToWarn(t *testing.T) {
	// Arrange
	h := NewConsoleHandler(&bytes.Buffer{}, nil)

	// Act & Assert
	assert.False(t, h.Enabled(context.Background(), slog.LevelInfo))
	assert.True(t, h.Enabled(context.Background(), slog.LevelWarn))
}

func TestConsoleHandler_AttrsAndGroups(t *testing.T) {
	tests := []struct {
		name     string
		log      func(l *slog.Logger)
		expected string
	}{
		{
			name: "attrs bound before a group keep their key",
			log: func(l *slog.Logger) {
				l.With("session", "abc").WithGroup("store").Warn("write failed", "key", "history")
			},
			expected: "WARN  write failed session=abc store.key=history\n",
		},
		{
			name: "attrs bound inside a group are prefixed",
			log: func(l *slog.Logger) {
				l.WithGroup("server").With("addr", ":8888").Error("listen failed", "error", errors.New("in use"))
			},
			expected: "ERROR listen failed server.addr=:8888 server.error=in use\n",
		},
		{
			name: "group values are flattened",
			log: func(l *slog.Logger) {
				l.Warn("slow", slog.Group("usage", "tokens", 12, "chars", 40))
			},
			expected: "WARN  slow usage.tokens=12 usage.chars=40\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Arrange
			color.NoColor = true
			var buf bytes.Buffer
			l := slog.New(NewConsoleHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

			// Act
			tt.log(l)

			// Assert
			assert.Equal(t, tt.expected, buf.String())
		})
	}
}

func TestContextLogger(t *testing.T) {
	// Arrange
	var buf bytes.Buffer
	l := New(&buf, Options{Verbose: true, JSON: true})
	ctx := WithLogger(context.Background(), l)
	ctx = With(ctx, "request_id", "r-1")

	// Act
	Info(ctx, "started")
	Error(ctx, "failed", errors.New("boom"))
	Debug(ctx, "not shown")

	// Assert
	out := buf.String()
	assert.Contains(t, out, `"request_id":"r-1"`)
	assert.Contains(t, out, `"msg":"started"`)
	assert.Contains(t, out, `"error":"boom"`)
	assert.NotContains(t, out, "not shown")
}

func TestFromContext_FallsBackToDefault(t *testing.T) {
	assert.Equal(t, slog.Default(), FromContext(context.Background()))
}
