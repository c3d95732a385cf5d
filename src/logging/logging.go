package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

// Init sets up the diagnostics sink: a compact text log written to path and to stderr.
// Every record carries the run id. The returned close function flushes the log file.
func Init(path, level string) (*slog.Logger, func() error, error) {
	logFile, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open diagnostics file: %w", err)
	}

	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		logFile.Close()
		return nil, nil, fmt.Errorf("log level %q: %w", level, err)
	}

	logger := slog.New(NewHandler(io.MultiWriter(os.Stderr, logFile), lvl)).
		With("run", uuid.NewString())
	slog.SetDefault(logger)
	return logger, logFile.Close, nil
}

// NewHandler formats time as 15:04:05 and the source as file:line.
func NewHandler(w io.Writer, level slog.Leveler) slog.Handler {
	return slog.NewTextHandler(w, &slog.HandlerOptions{
		Level:       level,
		AddSource:   true,
		ReplaceAttr: compact,
	})
}

func compact(_ []string, a slog.Attr) slog.Attr {
	switch v := a.Value.Any().(type) {
	case time.Time:
		if a.Key == slog.TimeKey {
			return slog.String(a.Key, v.Format(time.TimeOnly))
		}
	case *slog.Source:
		if a.Key == slog.SourceKey {
			return slog.String(a.Key, fmt.Sprintf("%s:%d", filepath.Base(v.File), v.Line))
		}
	}
	return a
}
