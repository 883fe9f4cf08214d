package logger

import (
	"bytes"
	"strings"
	"testing"
)

func TestLoggerLevels(t *testing.T) {
	var buf bytes.Buffer
	l := New(LevelInfo, &buf)

	l.Debugf("hidden %d", 1)
	l.Infof("shown %d", 2)
	l.Errorf("shown %d", 3)
	l.Trace("hidden")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("output contains disabled levels:\n%s", out)
	}
	if !strings.Contains(out, "INFO :") || !strings.Contains(out, "shown 2") {
		t.Errorf("missing info line:\n%s", out)
	}
	if !strings.Contains(out, "ERROR:") || !strings.Contains(out, "shown 3") {
		t.Errorf("missing error line:\n%s", out)
	}
	if !strings.Contains(out, "logger_test.go") {
		t.Errorf("expected caller file in output:\n%s", out)
	}
}

func TestDiscard(t *testing.T) {
	l := Discard()
	l.Error("nothing")
	l.Tracef("nothing %s", "either")
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    Level
		wantErr bool
	}{
		{"debug", LevelDebug, false},
		{" INFO ", LevelInfo, false},
		{"Trace", LevelTrace, false},
		{"off", LevelOff, false},
		{"warning", LevelWarn, false},
		{"", -1, true},
		{"verbose", -1, true},
	}
	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseLevel(%q) err = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestLevelString(t *testing.T) {
	if LevelWarn.String() != "WARN" {
		t.Errorf("LevelWarn.String() = %q", LevelWarn.String())
	}
	if Level(42).String() != "Level(42)" {
		t.Errorf("Level(42).String() = %q", Level(42).String())
	}
}

func TestLevelEnables(t *testing.T) {
	tests := []struct {
		level, msg Level
		want       bool
	}{
		{LevelInfo, LevelError, true},
		{LevelInfo, LevelInfo, true},
		{LevelInfo, LevelDebug, false},
		{LevelTrace, LevelDebug, true},
		{LevelOff, LevelFatal, false},
		{LevelTrace, LevelOff, false},
	}
	for _, tt := range tests {
		if got := tt.level.Enables(tt.msg); got != tt.want {
			t.Errorf("%v.Enables(%v) = %v, want %v", tt.level, tt.msg, got, tt.want)
		}
	}
}
