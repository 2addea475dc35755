// Package logging provides the levelled logger used by the axl tools.
package logging

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"sync"
)

// Level enumerates severity tiers.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

var levelNames = [...]string{"DEBUG", "INFO", "WARN", "ERROR"}

func (l Level) String() string {
	if l >= 0 && int(l) < len(levelNames) {
		return levelNames[l]
	}
	return "UNKNOWN"
}

// ParseLevel converts a config string such as "info" into a Level.
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug, nil
	case "", "info":
		return LevelInfo, nil
	case "warn", "warning":
		return LevelWarn, nil
	case "error":
		return LevelError, nil
	}
	return LevelInfo, fmt.Errorf("unknown log level %q", s)
}

// Logger is a concurrency-safe, levelled wrapper around log.Logger.
type Logger struct {
	mu    sync.Mutex
	level Level
	inner *log.Logger
}

// New creates a logger writing to w. Messages below level are dropped.
func New(w io.Writer, level Level) *Logger {
	return &Logger{
		level: level,
		inner: log.New(w, "", log.LstdFlags),
	}
}

// Default returns an info level logger on stderr.
func Default() *Logger {
	return New(os.Stderr, LevelInfo)
}

// Discard returns a logger that drops everything.
func Discard() *Logger {
	return New(io.Discard, LevelError+1)
}

// Level returns the minimum level that is written.
func (l *Logger) Level() Level {
	return l.level
}

func (l *Logger) logf(lvl Level, format string, args ...any) {
	if lvl < l.level {
		return
	}
	msg := fmt.Sprintf(format, args...)
	l.mu.Lock()
	l.inner.Printf("[%s] %s", lvl, msg)
	l.mu.Unlock()
}

func (l *Logger) Debugf(f string, a ...any) { l.logf(LevelDebug, f, a...) }
func (l *Logger) Infof(f string, a ...any)  { l.logf(LevelInfo, f, a...) }
func (l *Logger) Warnf(f string, a ...any)  { l.logf(LevelWarn, f, a...) }
func (l *Logger) Errorf(f string, a ...any) { l.logf(LevelError, f, a...) }

// Logf returns a printf style function logging at lvl, for packages that
// accept a plain Logf hook.
func (l *Logger) Logf(lvl Level) func(format string, v ...any) {
	return func(format string, v ...any) {
		l.logf(lvl, format, v...)
	}
}
