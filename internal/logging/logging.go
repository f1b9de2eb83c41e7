// Package logging sets up the process logger. The terminal belongs to the UI,
// so records go to a size-rotated JSON file instead of stderr.
package logging

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/sadopc/hibidash/internal/config"
)

// New returns a JSON logger writing to cfg.File. The returned closer flushes
// and closes the rotating file.
func New(cfg config.LogConfig) (*slog.Logger, io.Closer, error) {
	level, err := config.ParseLevel(cfg.Level)
	if err != nil {
		return nil, nil, err
	}
	if err := os.MkdirAll(filepath.Dir(cfg.File), 0o755); err != nil {
		return nil, nil, err
	}
	w := &lumberjack.Logger{
		Filename:   cfg.File,
		MaxSize:    cfg.MaxSizeMB,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAgeDays,
		Compress:   false,
	}
	return NewWithWriter(w, level), w, nil
}

func NewWithWriter(w io.Writer, level slog.Level) *slog.Logger {
	h := slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level})
	return slog.New(h).With(slog.String("app", config.AppName))
}
