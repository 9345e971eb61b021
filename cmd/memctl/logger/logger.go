// Package logger provides the process-wide debug logger for memctl.
// Logging is discarded unless Init enables it, so library output stays
// clean for --json consumers.
package logger

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"
)

// L is the global logger. It discards everything until Init enables output.
var L = slog.New(slog.NewTextHandler(io.Discard, nil))

// Options configures Init.
type Options struct {
	Enabled bool       // leave false to keep logging disabled
	LogDir  string     // directory for the log file, default ~/.memctl/logs
	Level   slog.Level // minimum level, default LevelInfo
}

// Init points L at a per-day log file under the configured directory.
// With Enabled false it resets L to the discarding logger.
func Init(opts Options) error {
	if !opts.Enabled {
		L = slog.New(slog.NewTextHandler(io.Discard, nil))
		return nil
	}

	dir := opts.LogDir
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return err
		}
		dir = filepath.Join(home, ".memctl", "logs")
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	name := filepath.Join(dir, "memctl-"+time.Now().Format("2006-01-02")+".log")
	f, err := os.OpenFile(name, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}

	level := opts.Level
	if level == 0 {
		level = slog.LevelInfo
	}
	L = slog.New(slog.NewJSONHandler(f, &slog.HandlerOptions{Level: level}))
	return nil
}

// Debug logs a debug message with optional key-value pairs.
func Debug(msg string, args ...any) { L.Debug(msg, args...) }

// Info logs an info message with optional key-value pairs.
func Info(msg string, args ...any) { L.Info(msg, args...) }

// Warn logs a warning message with optional key-value pairs.
func Warn(msg string, args ...any) { L.Warn(msg, args...) }

// Error logs an error message with optional key-value pairs.
func Error(msg string, args ...any) { L.Error(msg, args...) }
