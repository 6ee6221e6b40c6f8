package vilog

import (
	"bytes"
	"strings"
	"testing"
)

func TestLoggerFiltersBelowLevel(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: LevelWarn, Output: &buf})
	l.Info("should not appear")
	if buf.Len() != 0 {
		t.Errorf("expected no output, got %q", buf.String())
	}
	l.Warn("should appear")
	if !strings.Contains(buf.String(), "should appear") {
		t.Errorf("missing warn line: %q", buf.String())
	}
}

func TestLoggerWithFieldAppendsKeyValue(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: LevelDebug, Output: &buf})
	l.WithField("line", 3).Info("processed")
	if !strings.Contains(buf.String(), "line=3") {
		t.Errorf("missing field: %q", buf.String())
	}
}

func TestDisabledLoggerWritesNothing(t *testing.T) {
	var buf bytes.Buffer
	l := Disabled()
	l.output = &buf
	l.Error("boom")
	if buf.Len() != 0 {
		t.Errorf("expected no output from disabled logger, got %q", buf.String())
	}
}

func TestWithFieldDoesNotMutateReceiver(t *testing.T) {
	var buf bytes.Buffer
	base := New(Config{Level: LevelDebug, Output: &buf})
	_ = base.WithField("a", 1)
	base.Info("plain")
	if strings.Contains(buf.String(), "a=1") {
		t.Errorf("WithField mutated base logger: %q", buf.String())
	}
}
