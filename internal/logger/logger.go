package logger

import (
	"io"
	"log/slog"
	"os"
)

// New builds the process-wide slog logger. When logFile is non-empty the
// output is duplicated into that file alongside stdout.
func New(logFile string) *slog.Logger {
	var w io.Writer = os.Stdout
	if logFile != "" {
		f, err := os.OpenFile(logFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o666)
		if err == nil {
			w = io.MultiWriter(os.Stdout, f)
		}
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug}))
}
