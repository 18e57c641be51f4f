package rdplog

import (
	"bytes"
	"strings"
	"testing"
)

func TestPreInitLoggerUsesConfiguredHandler(t *testing.T) {
	logger := L("portal")

	var buf bytes.Buffer
	Init("text", "info", &buf)

	logger.Info("session created", "session", "/s/1")

	out := buf.String()
	if !strings.Contains(out, "msg=\"session created\"") {
		t.Fatalf("expected plain message, got: %s", out)
	}
	if !strings.Contains(out, "component=portal") {
		t.Fatalf("expected component field, got: %s", out)
	}
	if !strings.Contains(out, "session=/s/1") {
		t.Fatalf("expected session field, got: %s", out)
	}
}

func TestPreInitLoggerRespectsConfiguredLevel(t *testing.T) {
	logger := L("portal")

	var buf bytes.Buffer
	Init("text", "warn", &buf)

	logger.Info("hidden")
	logger.Warn("shown")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Fatalf("info log should be filtered at warn level: %s", out)
	}
	if !strings.Contains(out, "shown") {
		t.Fatalf("warn log should be emitted: %s", out)
	}
}
