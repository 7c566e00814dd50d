// Package logging wires github.com/rs/zerolog with optional
// gopkg.in/natefinch/lumberjack.v2 rotation for cmd/mediacodec. Library
// packages never import this package or install a global logger
// themselves (spec §5: no process-wide state), and they take no logger
// parameter: only cmd/mediacodec logs.
package logging

import (
	"io"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	lumberjack "gopkg.in/natefinch/lumberjack.v2"
)

// Options configures New.
type Options struct {
	// Level is one of "debug", "info", "warn", "error". Anything else
	// defaults to "info".
	Level string
	// File, if non-empty, also writes logs to a lumberjack-rotated file,
	// in addition to stderr.
	File      string
	MaxSizeMB int
}

// New builds a zerolog.Logger tagged with a fresh correlation id for
// this process invocation, the way jpfielding-dicos.go and
// stapelberg-scan2drive use uuid for request/session correlation.
func New(opts Options) zerolog.Logger {
	level := parseLevel(opts.Level)

	var writer io.Writer = os.Stderr
	if opts.File != "" {
		maxSize := opts.MaxSizeMB
		if maxSize <= 0 {
			maxSize = 100
		}
		writer = io.MultiWriter(os.Stderr, &lumberjack.Logger{
			Filename: opts.File,
			MaxSize:  maxSize,
			MaxBackups: 3,
			Compress: true,
		})
	}

	return zerolog.New(writer).
		Level(level).
		With().
		Timestamp().
		Str("session_id", uuid.NewString()).
		Logger()
}

func parseLevel(s string) zerolog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}
