package logger

import (
	"strings"

	"github.com/pkg/errors"
)

//go:generate go run golang.org/x/tools/cmd/stringer -type=Level -linecomment

// Level orders log output from silent to most verbose. A logger at some
// level writes every message at that level or below.
type Level int

const (
	LevelOff   Level = iota // OFF
	LevelFatal              // FATAL
	LevelError              // ERROR
	LevelWarn               // WARN
	LevelInfo               // INFO
	LevelDebug              // DEBUG
	LevelTrace              // TRACE
)

var levelNames = map[string]Level{
	"OFF":     LevelOff,
	"FATAL":   LevelFatal,
	"ERROR":   LevelError,
	"WARN":    LevelWarn,
	"WARNING": LevelWarn,
	"INFO":    LevelInfo,
	"DEBUG":   LevelDebug,
	"TRACE":   LevelTrace,
}

// ParseLevel reads the log_level setting and SHOPPA_LOG_LEVEL, ignoring case
// and surrounding space.
func ParseLevel(s string) (Level, error) {
	level, ok := levelNames[strings.ToUpper(strings.TrimSpace(s))]
	if !ok {
		return -1, errors.Errorf("invalid level: %q, want one of OFF, FATAL, ERROR, WARN, INFO, DEBUG, TRACE", s)
	}
	return level, nil
}

// Enables reports whether a logger at l writes messages at m.
func (l Level) Enables(m Level) bool {
	return m != LevelOff && m <= l
}
