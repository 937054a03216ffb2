package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Rotation limits for the optional log file.
const (
	maxFileSizeMB = 100
	maxBackups    = 5
	maxAgeDays    = 30
)

// Options configures New.
type Options struct {
	Level string
	// Output defaults to stdout.
	Output io.Writer
	// File, when set, receives a copy of every record and is rotated by size.
	File string
}

// New builds a JSON slog.Logger writing to the output and, if configured, to
// a rotated log file. The returned closer releases the file.
func New(opts Options) (*slog.Logger, io.Closer) {
	var (
		w      io.Writer = os.Stdout
		closer io.Closer = nopCloser{}
	)
	if opts.Output != nil {
		w = opts.Output
	}
	if opts.File != "" {
		lj := &lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    maxFileSizeMB,
			MaxBackups: maxBackups,
			MaxAge:     maxAgeDays,
			Compress:   true,
		}
		w = io.MultiWriter(w, lj)
		closer = lj
	}

	logger := slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: ParseLevel(opts.Level),
	}))
	return logger, closer
}

// ParseLevel maps a level name (debug, info, warn, error, any case) to a
// slog.Level. Unknown or empty names fall back to info.
func ParseLevel(level string) slog.Level {
	var l slog.Level
	if err := l.UnmarshalText([]byte(strings.TrimSpace(level))); err != nil {
		return slog.LevelInfo
	}
	return l
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
