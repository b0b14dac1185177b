// Package verbosity provides the Logger handle used across the codec
// and CLI layers. Logger is an explicit handle passed to the functions
// that need it, never a package-level global, so operations stay
// testable and nothing mutates shared state mid-run.
package verbosity

import (
	"fmt"
	"io"
	"log"
)

// Level selects how much a Logger prints.
type Level int

const (
	Silent Level = iota
	Basic
	Debug
)

// Logger prints messages at or below its configured level.
type Logger struct {
	level Level
	out   *log.Logger
}

// New returns a Logger writing to w at the given level.
func New(w io.Writer, level Level) *Logger {
	return &Logger{level: level, out: log.New(w, "", 0)}
}

// Basicf prints a message visible at Basic verbosity or higher.
func (l *Logger) Basicf(format string, args ...any) {
	l.printf(Basic, format, args...)
}

// Debugf prints a message visible only at Debug verbosity.
func (l *Logger) Debugf(format string, args ...any) {
	l.printf(Debug, format, args...)
}

func (l *Logger) printf(level Level, format string, args ...any) {
	if l == nil || l.level < level {
		return
	}
	l.out.Output(3, fmt.Sprintf(format, args...)) //nolint:errcheck
}
