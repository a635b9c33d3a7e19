package log

import (
	"bytes"
	"strings"
	"testing"
)

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: LevelWarn, Output: &buf})

	l.Debug("hidden")
	l.Info("hidden")
	l.Warn("shown")
	l.Error("also shown")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("messages below the level leaked: %q", out)
	}
	if !strings.Contains(out, "shown") || !strings.Contains(out, "also shown") {
		t.Errorf("messages at or above the level missing: %q", out)
	}
}

func TestKeyValuePairs(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: LevelDebug, Output: &buf})

	l.Info("placed", "item", "abc", "track", 2)

	out := buf.String()
	if !strings.Contains(out, "item=abc") || !strings.Contains(out, "track=2") {
		t.Errorf("key-value pairs not rendered: %q", out)
	}
}

func TestDanglingValue(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: LevelDebug, Output: &buf})

	l.Info("odd args", "orphan")

	if !strings.Contains(buf.String(), "orphan") {
		t.Errorf("dangling arg dropped: %q", buf.String())
	}
}

func TestWithComponent(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: LevelDebug, Output: &buf}).WithComponent("gesture")

	l.Info("drag begun")

	if !strings.Contains(buf.String(), "component=gesture") {
		t.Errorf("bound field missing: %q", buf.String())
	}
}

func TestBoundFieldsSorted(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: LevelDebug, Output: &buf}).
		WithField("zeta", 1).WithField("alpha", 2)

	l.Info("x")

	out := buf.String()
	if strings.Index(out, "alpha=2") > strings.Index(out, "zeta=1") {
		t.Errorf("bound fields not sorted: %q", out)
	}
}

func TestDiscardWritesNothing(t *testing.T) {
	Discard.Error("nobody hears this")
}

func TestParseLevel(t *testing.T) {
	if ParseLevel("debug") != LevelDebug || ParseLevel("ERROR") != LevelError {
		t.Error("ParseLevel missed a known level")
	}
	if ParseLevel("chatty") != LevelInfo {
		t.Error("unknown level should fall back to info")
	}
}
