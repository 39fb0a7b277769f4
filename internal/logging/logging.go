package logging

import (
	"io"
	"log/slog"
	"os"
)

// Logger writes structured logs to stderr and, when configured, a log file.
type Logger struct {
	*slog.Logger
	file *os.File
}

// New creates a text slog logger. An empty path logs to stderr only.
func New(path string, level slog.Level) (*Logger, error) {
	writers := []io.Writer{os.Stderr}

	var file *os.File
	if path != "" {
		var err error
		file, err = os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, err
		}
		writers = append(writers, file)
	}

	handler := slog.NewTextHandler(io.MultiWriter(writers...), &slog.HandlerOptions{Level: level})
	return &Logger{Logger: slog.New(handler), file: file}, nil
}

// Discard returns a logger that drops everything.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// Close releases the log file, if any.
func (l *Logger) Close() error {
	if l.file == nil {
		return nil
	}
	return l.file.Close()
}
