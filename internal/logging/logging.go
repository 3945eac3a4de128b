// Package logging configures zerolog for djb-downloader.
//
// Progress events (internal/download.ProgressEvent) are the user-facing
// channel; the zerolog logger is the forensic one. The CLI logs to stderr,
// the TUI to a file, since Bubble Tea owns the terminal while downloads run.
package logging

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// New returns a logger writing human-readable console lines to w at the
// given level ("debug", "info", "warn", "error"; unknown values mean info).
func New(w io.Writer, level string) zerolog.Logger {
	console := zerolog.ConsoleWriter{Out: w, TimeFormat: time.TimeOnly}
	return zerolog.New(console).With().Timestamp().Logger().Level(parseLevel(level))
}

// NewFile returns a logger appending JSON lines to the file at path, plus a
// closer the caller must invoke when done. An empty path yields a disabled
// logger.
func NewFile(path, level string) (zerolog.Logger, io.Closer, error) {
	if strings.TrimSpace(path) == "" {
		return zerolog.Nop(), nopCloser{}, nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return zerolog.Nop(), nopCloser{}, err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return zerolog.Nop(), nopCloser{}, err
	}

	logger := zerolog.New(f).With().Timestamp().Logger().Level(parseLevel(level))
	return logger, f, nil
}

func parseLevel(level string) zerolog.Level {
	parsed, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil || parsed == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return parsed
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
