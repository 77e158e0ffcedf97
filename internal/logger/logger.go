package logger

import (
	"io"
	"log/slog"
	"os"

	"gopkg.in/natefinch/lumberjack.v2"
)

var Logger *slog.Logger

// Init sets up the default logger. With a non-empty logFile the output is
// also written to that file, rotated by size.
func Init(debug bool, logFile string) {
	Logger = New(debug, writer(logFile))
	slog.SetDefault(Logger)
}

// New builds a text logger writing to w.
func New(debug bool, w io.Writer) *slog.Logger {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{
		Level: level,
	}

	return slog.New(slog.NewTextHandler(w, opts))
}

func writer(logFile string) io.Writer {
	if logFile == "" {
		return os.Stdout
	}
	rotator := &lumberjack.Logger{
		Filename:   logFile,
		MaxSize:    10, // megabytes
		MaxBackups: 5,
		MaxAge:     30, // days
		Compress:   true,
	}
	return io.MultiWriter(os.Stdout, rotator)
}
