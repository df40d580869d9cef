package logger

import (
	"io"
	"log/slog"
	"os"

	"gopkg.in/natefinch/lumberjack.v2"
)

var Logger = slog.Default()

// Options controls where log lines go. A zero value logs info and above to stdout.
type Options struct {
	Debug bool

	// File enables a rotating log file next to stdout.
	File       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

// Init builds the process logger and installs it as the slog default.
// The returned closer releases the log file, if any.
func Init(opts Options) io.Closer {
	level := slog.LevelInfo
	if opts.Debug {
		level = slog.LevelDebug
	}

	var out io.Writer = os.Stdout
	var closer io.Closer = nopCloser{}
	if opts.File != "" {
		rotator := &lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    opts.MaxSizeMB,
			MaxBackups: opts.MaxBackups,
			MaxAge:     opts.MaxAgeDays,
			Compress:   true,
		}
		out = io.MultiWriter(os.Stdout, rotator)
		closer = rotator
	}

	Logger = slog.New(slog.NewTextHandler(out, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(Logger)
	return closer
}

// With returns a child logger tagged with the component name.
func With(component string) *slog.Logger {
	return Logger.With("component", component)
}

func Info(msg string, args ...any) {
	Logger.Info(msg, args...)
}

func Error(msg string, args ...any) {
	Logger.Error(msg, args...)
}

func Debug(msg string, args ...any) {
	Logger.Debug(msg, args...)
}

func Warn(msg string, args ...any) {
	Logger.Warn(msg, args...)
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
