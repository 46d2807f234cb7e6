// Package logging provides structured logging using slog.
package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
)

// Config holds logging configuration.
type Config struct {
	Format string `yaml:"format" toml:"format"` // "json" | "text"
	Level  string `yaml:"level" toml:"level"`   // "debug" | "info" | "warn" | "error"
}

// Setup initializes the global slog logger based on configuration. A nil w
// means stdout.
func Setup(cfg Config, w io.Writer) {
	if w == nil {
		w = os.Stdout
	}
	slog.SetDefault(New(cfg, w))
}

// New returns a logger writing to w in the configured format.
func New(cfg Config, w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: parseLevel(cfg.Level),
	}

	var handler slog.Handler
	switch strings.ToLower(cfg.Format) {
	case "json":
		handler = slog.NewJSONHandler(w, opts)
	default:
		handler = slog.NewTextHandler(w, opts)
	}
	return slog.New(handler)
}

// parseLevel converts a string level to slog.Level.
func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// buildIDKey is the context key for build IDs.
type buildIDKey struct{}

// WithBuildID adds a build ID to the context.
func WithBuildID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, buildIDKey{}, id)
}

// BuildID retrieves the build ID from context.
func BuildID(ctx context.Context) string {
	if id, ok := ctx.Value(buildIDKey{}).(string); ok {
		return id
	}
	return ""
}

// BuildLogger returns base with build context fields.
func BuildLogger(base *slog.Logger, buildID string, sheets int) *slog.Logger {
	return base.With(
		"build_id", buildID,
		"sheets", sheets,
	)
}

// Component returns a logger with a component name.
func Component(name string) *slog.Logger {
	return slog.With("component", name)
}
