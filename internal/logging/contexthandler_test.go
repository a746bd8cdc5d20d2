package logging_test

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/myrjola/fitroadmap/internal/logging"
)

func TestWithAttrs(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.NewLogger(&buf, slog.LevelDebug, nil)

	ctx := logging.WithAttrs(context.Background(), slog.String("trace_id", "abc"))
	child := logging.WithAttrs(ctx, slog.String("user", "u1"))
	logger.LogAttrs(child, slog.LevelInfo, "first")
	logger.LogAttrs(ctx, slog.LevelInfo, "second")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if got, want := len(lines), 2; got != want {
		t.Fatalf("got %d lines, want %d", got, want)
	}
	if !strings.Contains(lines[0], "trace_id=abc") || !strings.Contains(lines[0], "user=u1") {
		t.Errorf("first line missing context attributes: %s", lines[0])
	}
	if strings.Contains(lines[1], "user=u1") {
		t.Errorf("parent context must not see child attributes: %s", lines[1])
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{in: "debug", want: slog.LevelDebug},
		{in: " WARN ", want: slog.LevelWarn},
		{in: "error", want: slog.LevelError},
		{in: "", want: slog.LevelInfo},
		{in: "verbose", want: slog.LevelInfo},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := logging.ParseLevel(tt.in); got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}
