package app

import (
	"io"
	"log/slog"

	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/ayoisaiah/moodmap/internal/config"
)

const (
	logMaxSizeMB  = 10
	logMaxBackups = 3
	logMaxAgeDays = 28
)

// logFile is closed when the app exits.
var logFile io.Closer

// newLogger returns a JSON logger that writes to the rotating log file.
func newLogger(w io.Writer, debug bool) *slog.Logger {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}

	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: level,
	}))
}

// setupLogging sends the default logger to the moodmap log file.
func setupLogging(debug bool) {
	lj := &lumberjack.Logger{
		Filename:   config.LogFilePath(),
		MaxSize:    logMaxSizeMB,
		MaxBackups: logMaxBackups,
		MaxAge:     logMaxAgeDays,
	}

	logFile = lj

	slog.SetDefault(newLogger(lj, debug))
}
