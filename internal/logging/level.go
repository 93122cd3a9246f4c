package logging

import (
	"fmt"
	"strings"
)

// Level represents a log level. Its values are ordered so that levels can be
// compared directly.
type Level uint

const (
	// LevelDisabled indicates that logging is completely disabled.
	LevelDisabled Level = iota
	// LevelError indicates that only errors are logged.
	LevelError
	// LevelWarn indicates that errors and warnings are logged.
	LevelWarn
	// LevelInfo indicates that basic execution information is logged.
	LevelInfo
	// LevelDebug indicates that additional diagnostic information is logged.
	LevelDebug
	// LevelTrace indicates that everything is logged.
	LevelTrace
)

// NameToLevel converts a level name to a Level. The boolean reports whether
// the name was recognized. Names are matched case-insensitively.
func NameToLevel(name string) (Level, bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "disabled":
		return LevelDisabled, true
	case "error":
		return LevelError, true
	case "warn", "warning":
		return LevelWarn, true
	case "info":
		return LevelInfo, true
	case "debug":
		return LevelDebug, true
	case "trace":
		return LevelTrace, true
	default:
		return LevelDisabled, false
	}
}

// String provides a human-readable representation of a log level.
func (l Level) String() string {
	switch l {
	case LevelDisabled:
		return "disabled"
	case LevelError:
		return "error"
	case LevelWarn:
		return "warn"
	case LevelInfo:
		return "info"
	case LevelDebug:
		return "debug"
	case LevelTrace:
		return "trace"
	default:
		return "unknown"
	}
}

// UnmarshalText implements encoding.TextUnmarshaler so that levels can be
// decoded directly from TOML and YAML configuration files.
func (l *Level) UnmarshalText(text []byte) error {
	level, ok := NameToLevel(string(text))
	if !ok {
		return fmt.Errorf("unknown log level: %q", string(text))
	}
	*l = level
	return nil
}
