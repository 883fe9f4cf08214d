package logger

import (
	"fmt"
	"io"
	"log"
)

// Logger writes leveled lines. A nil per-level logger disables that level.
type Logger struct {
	traceLogger *log.Logger
	debugLogger *log.Logger
	infoLogger  *log.Logger
	warnLogger  *log.Logger
	errorLogger *log.Logger
}

func (l *Logger) Trace(v ...any) { output(l.traceLogger, fmt.Sprintln(v...)) }
func (l *Logger) Debug(v ...any) { output(l.debugLogger, fmt.Sprintln(v...)) }
func (l *Logger) Info(v ...any)  { output(l.infoLogger, fmt.Sprintln(v...)) }
func (l *Logger) Warn(v ...any)  { output(l.warnLogger, fmt.Sprintln(v...)) }
func (l *Logger) Error(v ...any) { output(l.errorLogger, fmt.Sprintln(v...)) }

func (l *Logger) Tracef(format string, v ...any) { output(l.traceLogger, fmt.Sprintf(format, v...)) }
func (l *Logger) Debugf(format string, v ...any) { output(l.debugLogger, fmt.Sprintf(format, v...)) }
func (l *Logger) Infof(format string, v ...any)  { output(l.infoLogger, fmt.Sprintf(format, v...)) }
func (l *Logger) Warnf(format string, v ...any)  { output(l.warnLogger, fmt.Sprintf(format, v...)) }
func (l *Logger) Errorf(format string, v ...any) { output(l.errorLogger, fmt.Sprintf(format, v...)) }

func output(l *log.Logger, s string) {
	if l != nil {
		// 3 skips output and the Logger method so the caller's file is reported.
		_ = l.Output(3, s)
	}
}

// New returns a Logger that writes every level up to and including level.
func New(level Level, w io.Writer) *Logger {
	flag := log.LstdFlags | log.Lshortfile
	l := &Logger{}
	if level >= LevelTrace {
		l.traceLogger = log.New(w, "TRACE:", flag)
	}
	if level >= LevelDebug {
		l.debugLogger = log.New(w, "DEBUG:", flag)
	}
	if level >= LevelInfo {
		l.infoLogger = log.New(w, "INFO :", flag)
	}
	if level >= LevelWarn {
		l.warnLogger = log.New(w, "WARN :", flag)
	}
	if level >= LevelError {
		l.errorLogger = log.New(w, "ERROR:", flag)
	}
	return l
}

// Discard returns a Logger with every level disabled.
func Discard() *Logger {
	return New(LevelOff, io.Discard)
}
