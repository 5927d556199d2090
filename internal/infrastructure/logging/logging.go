package logging

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/blooprocket-create/ChaosInFull-sub002/internal/infrastructure/config"
)

// NewLogger builds the root logger from config. Components derive child
// loggers from it with their own component field.
func NewLogger(cfg *config.LoggingConfig) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}

	var out io.Writer
	switch cfg.Output {
	case "stderr":
		out = os.Stderr
	default:
		out = os.Stdout
	}

	if cfg.Format == "console" {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	}

	return zerolog.New(out).Level(level).With().Timestamp().Logger()
}
