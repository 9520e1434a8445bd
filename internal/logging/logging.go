package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/bookshelf/bookshelf/internal/config"
)

// Setup initializes the logger. Records go to stderr, since stdout carries the
// report, and additionally to a daily file when directory is set.
func Setup(level, directory string) (*slog.Logger, error) {
	var writer io.Writer = os.Stderr

	if directory != "" {
		directory = config.ExpandHome(directory)
		if err := os.MkdirAll(directory, 0o755); err != nil {
			return nil, fmt.Errorf("creating log directory: %w", err)
		}

		filename := fmt.Sprintf("bookshelf-%s.log", time.Now().Format("2006-01-02"))
		file, err := os.OpenFile(filepath.Join(directory, filename), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, fmt.Errorf("opening log file: %w", err)
		}
		writer = io.MultiWriter(os.Stderr, file)
	}

	return New(writer, level), nil
}

// New builds a text logger writing to w at the given level.
func New(w io.Writer, level string) *slog.Logger {
	handler := slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: ParseLevel(level),
	})
	return slog.New(handler)
}

// ParseLevel maps a config level name to a slog level, defaulting to info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Discard returns a logger that drops every record.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
