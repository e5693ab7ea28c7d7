package magnify

import (
	"io"
	"log/slog"
	"os"
)

type Logger interface {
	Info(message string, module string)
	Error(string)
}

var logger Logger = NewLogger(io.Discard, io.Discard)

func SetLogger(l Logger) {
	logger = l
}

func GetLogger() Logger {
	return logger
}

// SlogLogger writes info messages through the bracketed text handler and
// errors as JSON.
type SlogLogger struct {
	InfoLog  *slog.Logger
	ErrorLog *slog.Logger
}

func NewLogger(infoOut io.Writer, errorOut io.Writer) SlogLogger {
	opts := &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}
	return SlogLogger{
		InfoLog:  slog.New(NewHandler(infoOut, opts)),
		ErrorLog: slog.New(slog.NewJSONHandler(errorOut, opts)),
	}
}

func NewStdLogger() SlogLogger {
	return NewLogger(os.Stdout, os.Stderr)
}

func (l SlogLogger) Info(message string, module string) {
	l.InfoLog.Info(message, "module", module)
}

func (l SlogLogger) Error(message string) {
	l.ErrorLog.Error(message)
}
