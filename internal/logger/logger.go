// Package logger provides the leveled logger shared by every component.
// Three levels: off (silent), normal (info/warn/error), verbose (adds
// debug). Output normally goes to a file so the prompt stays clean.
// Safe for concurrent use.
package logger

import (
	"fmt"
	"io"
	"log"
	"os"
	"sync"
)

// Level controls verbosity.
type Level int

const (
	// LevelOff disables all output.
	LevelOff Level = iota
	// LevelNormal enables info, warn, and error.
	LevelNormal
	// LevelVerbose enables everything including debug.
	LevelVerbose
)

// Logger is a leveled logger writing to a single sink.
type Logger struct {
	mu    sync.RWMutex
	level Level
	sink  *log.Logger
}

// New creates a logger at the given level writing to out.
// A nil out falls back to os.Stderr.
func New(level Level, out io.Writer) *Logger {
	if out == nil {
		out = os.Stderr
	}
	return &Logger{
		level: level,
		sink:  log.New(out, "", log.Ltime),
	}
}

// SetLevel changes the level at runtime.
func (l *Logger) SetLevel(level Level) {
	l.mu.Lock()
	l.level = level
	l.mu.Unlock()
}

// GetLevel returns the current level.
func (l *Logger) GetLevel() Level {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.level
}

func (l *Logger) emit(min Level, tag, format string, args ...any) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.level < min {
		return
	}
	l.sink.Output(3, tag+" "+fmt.Sprintf(format, args...))
}

// Debug logs at debug level (verbose mode only).
func (l *Logger) Debug(format string, args ...any) {
	l.emit(LevelVerbose, "[DBG]", format, args...)
}

// Info logs at info level.
func (l *Logger) Info(format string, args ...any) {
	l.emit(LevelNormal, "[INF]", format, args...)
}

// Warn logs at warn level.
func (l *Logger) Warn(format string, args ...any) {
	l.emit(LevelNormal, "[WRN]", format, args...)
}

// Error logs at error level.
func (l *Logger) Error(format string, args ...any) {
	l.emit(LevelNormal, "[ERR]", format, args...)
}
