package logger

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConditionalSourceHandler(t *testing.T) {
	tests := []struct {
		name       string
		level      slog.Level
		minSource  slog.Level
		wantSource bool
	}{
		{name: "info below threshold", level: slog.LevelInfo, minSource: slog.LevelWarn, wantSource: false},
		{name: "warn at threshold", level: slog.LevelWarn, minSource: slog.LevelWarn, wantSource: true},
		{name: "error above threshold", level: slog.LevelError, minSource: slog.LevelWarn, wantSource: true},
		{name: "debug mode shows all", level: slog.LevelDebug, minSource: slog.LevelDebug, wantSource: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			base := slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})
			l := slog.New(NewConditionalSourceHandler(base, tt.minSource))

			l.Log(context.Background(), tt.level, "hello", "k", "v")

			out := buf.String()
			assert.Contains(t, out, "hello")
			assert.Equal(t, tt.wantSource, bytes.Contains([]byte(out), []byte("source=")), out)
		})
	}
}

func TestConditionalSourceHandler_WithAttrsKeepsThreshold(t *testing.T) {
	var buf bytes.Buffer
	base := slog.NewTextHandler(&buf, nil)
	l := slog.New(NewConditionalSourceHandler(base, slog.LevelError)).With("tenant", "acme")

	l.Warn("no source here")
	assert.Contains(t, buf.String(), "tenant=acme")
	assert.NotContains(t, buf.String(), "source=")
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("warning"))
	assert.Equal(t, slog.LevelError, ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, ParseLevel(""))
}
