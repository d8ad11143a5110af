package slogobs

import (
	"io"
	"log/slog"
	"os"
)

// Option configures an Observer.
type Option func(*config)

type config struct {
	format Format
	level  slog.Level
	output io.Writer
	logger *slog.Logger
}

func WithFormat(format Format) Option {
	return func(c *config) { c.format = format }
}

func WithLevel(level slog.Level) Option {
	return func(c *config) { c.level = level }
}

// WithOutput redirects log lines, os.Stderr by default.
func WithOutput(output io.Writer) Option {
	return func(c *config) { c.output = output }
}

// WithLogger routes everything through an existing logger. Format, level and
// output options are ignored when it is set.
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) { c.logger = logger }
}

func applyOptions(opts ...Option) *config {
	cfg := &config{
		format: FormatFromEnv(),
		level:  LevelFromEnv(),
		output: os.Stderr,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}
