// Package logging implements the engine's leveled logger: a file sink
// plus optional stdout echo, gated by level.
package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"wipeengine/internal/config"
)

var levelOrder = map[string]int{"debug": 0, "info": 1, "warn": 2, "error": 3}

// Logger is the engine's leveled logger.
type Logger struct {
	level   string
	file    *os.File
	verbose bool
}

// New builds a Logger from cfg. If cfg.Logging.File can't be created,
// New falls back to stdout-only logging rather than failing the run.
func New(cfg *config.Config, verbose bool) *Logger {
	l := &Logger{level: cfg.Logging.Level, verbose: verbose}
	if cfg.Logging.File == "" {
		return l
	}

	dir := filepath.Dir(cfg.Logging.File)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "logging: could not create log dir %s: %v (falling back to stdout)\n", dir, err)
		return l
	}
	f, err := os.OpenFile(cfg.Logging.File, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logging: could not open log file %s: %v (falling back to stdout)\n", cfg.Logging.File, err)
		return l
	}
	l.file = f
	return l
}

func (l *Logger) log(level, msg string) {
	if levelOrder[level] < levelOrder[l.level] {
		return
	}
	entry := fmt.Sprintf("[%s] [%s] %s", time.Now().Format("2006-01-02 15:04:05"), level, msg)
	if l.file != nil {
		fmt.Fprintln(l.file, entry)
	}
	if l.verbose || level == "warn" || level == "error" {
		fmt.Println(entry)
	}
}

func (l *Logger) Debugf(format string, args ...any) { l.log("debug", fmt.Sprintf(format, args...)) }
func (l *Logger) Infof(format string, args ...any)  { l.log("info", fmt.Sprintf(format, args...)) }
func (l *Logger) Warnf(format string, args ...any)  { l.log("warn", fmt.Sprintf(format, args...)) }
func (l *Logger) Errorf(format string, args ...any) { l.log("error", fmt.Sprintf(format, args...)) }

// Close releases the underlying log file, if one was opened.
func (l *Logger) Close() error {
	if l.file != nil {
		return l.file.Close()
	}
	return nil
}
