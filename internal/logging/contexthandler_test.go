package logging_test

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/myrjola/gumshoe/internal/logging"
	"github.com/stretchr/testify/require"
)

func TestContextHandler(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.New(&buf, "debug", false).With("source", "test")

	ctx := logging.WithCase(context.Background(), "case-1")
	ctx = logging.WithAttrs(ctx, slog.Int("step", 2))
	logger.LogAttrs(ctx, slog.LevelInfo, "travelled")

	out := buf.String()
	require.Contains(t, out, "case_id=case-1")
	require.Contains(t, out, "step=2")
	require.Contains(t, out, "source=test")
}

func TestWithAttrsDoesNotLeakBetweenBranches(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.New(&buf, "info", false)

	base := logging.WithAttrs(context.Background(), slog.String("a", "1"))
	_ = logging.WithAttrs(base, slog.String("b", "2"))
	logger.LogAttrs(base, slog.LevelInfo, "base")

	require.NotContains(t, buf.String(), "b=2")
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{in: "debug", want: slog.LevelDebug},
		{in: "INFO", want: slog.LevelInfo},
		{in: "warn", want: slog.LevelWarn},
		{in: "error", want: slog.LevelError},
		{in: "nonsense", want: slog.LevelInfo},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			require.Equal(t, tt.want, logging.ParseLevel(tt.in))
		})
	}
}
