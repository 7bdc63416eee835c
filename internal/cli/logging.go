package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/natefinch/lumberjack.v2"

	"codeberg.org/snonux/wortschatz/internal"
)

// Rotation limits of the log file
const (
	logFileMaxSizeMB  = 10
	logFileMaxBackups = 3
	logFileMaxAgeDays = 28
)

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// NewLogger creates the run logger. It writes text to stderr and, when file
// is set, also to a rotating log file. Every record carries the run ID.
// The returned closer flushes the file sink.
func NewLogger(level, file string) (*slog.Logger, io.Closer, error) {
	return newLogger(os.Stderr, level, file)
}

func newLogger(w io.Writer, level, file string) (*slog.Logger, io.Closer, error) {
	lvl, err := ParseLevel(level)
	if err != nil {
		return nil, nil, err
	}

	var closer io.Closer = nopCloser{}
	if file != "" {
		sink := &lumberjack.Logger{
			Filename:   file,
			MaxSize:    logFileMaxSizeMB,
			MaxBackups: logFileMaxBackups,
			MaxAge:     logFileMaxAgeDays,
		}
		w = io.MultiWriter(w, sink)
		closer = sink
	}

	handler := slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl})
	logger := slog.New(handler).With("run_id", internal.NewRunID())
	return logger, closer, nil
}

// ParseLevel converts a level name into a slog level
func ParseLevel(level string) (slog.Level, error) {
	var lvl slog.Level
	if level == "" {
		return slog.LevelInfo, nil
	}
	if err := lvl.UnmarshalText([]byte(strings.ToLower(level))); err != nil {
		return slog.LevelInfo, fmt.Errorf("invalid log level %q", level)
	}
	return lvl, nil
}
