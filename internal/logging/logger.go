// Package logging provides a small leveled logger on top of the standard
// library log package.
package logging

import (
	"fmt"
	"io"
	"log"

	"github.com/fatih/color"
)

// Logger is a leveled, prefixed logger. A nil *Logger is valid and discards
// everything. Output goes through a *log.Logger, so its flags apply. It is
// safe for concurrent use.
type Logger struct {
	// base is the underlying logger.
	base *log.Logger
	// level is the maximum level that will be emitted.
	level Level
	// prefix is the dotted sublogger name, if any.
	prefix string
}

// New creates a root logger writing to w at the specified level.
func New(w io.Writer, level Level) *Logger {
	return &Logger{
		base:  log.New(w, "", log.LstdFlags),
		level: level,
	}
}

// Sublogger creates a new sublogger with the specified name.
func (l *Logger) Sublogger(name string) *Logger {
	if l == nil {
		return nil
	}

	prefix := name
	if l.prefix != "" {
		prefix = l.prefix + "." + name
	}

	return &Logger{
		base:   l.base,
		level:  l.level,
		prefix: prefix,
	}
}

// enabled reports whether messages at the given level are emitted.
func (l *Logger) enabled(level Level) bool {
	return l != nil && level != LevelDisabled && level <= l.level
}

// output is the internal logging method.
func (l *Logger) output(line string) {
	if l.prefix != "" {
		line = fmt.Sprintf("[%s] %s", l.prefix, line)
	}
	l.base.Output(3, line)
}

// Noticef logs a message with fmt.Printf semantics regardless of the
// configured level. Only a nil logger drops it.
func (l *Logger) Noticef(format string, v ...interface{}) {
	if l != nil {
		l.output(fmt.Sprintf(format, v...))
	}
}

// Infof logs basic execution information with fmt.Printf semantics.
func (l *Logger) Infof(format string, v ...interface{}) {
	if l.enabled(LevelInfo) {
		l.output(fmt.Sprintf(format, v...))
	}
}

// Debugf logs diagnostic information with fmt.Printf semantics.
func (l *Logger) Debugf(format string, v ...interface{}) {
	if l.enabled(LevelDebug) {
		l.output(fmt.Sprintf(format, v...))
	}
}

// Tracef logs low-level information with fmt.Printf semantics.
func (l *Logger) Tracef(format string, v ...interface{}) {
	if l.enabled(LevelTrace) {
		l.output(fmt.Sprintf(format, v...))
	}
}

// Warn logs error information with a warning prefix and yellow color.
func (l *Logger) Warn(err error) {
	if l.enabled(LevelWarn) {
		l.output(color.YellowString("Warning: %v", err))
	}
}

// Warnf logs a formatted warning with a warning prefix and yellow color.
func (l *Logger) Warnf(format string, v ...interface{}) {
	if l.enabled(LevelWarn) {
		l.output(color.YellowString("Warning: "+format, v...))
	}
}

// Error logs error information with an error prefix and red color.
func (l *Logger) Error(err error) {
	if l.enabled(LevelError) {
		l.output(color.RedString("Error: %v", err))
	}
}
