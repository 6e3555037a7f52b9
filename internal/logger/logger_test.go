package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"go.uber.org/zap/zapcore"
)

func TestZapLoggerWritesStructuredField(t *testing.T) {
	var buf bytes.Buffer
	log := New("debug", zapcore.AddSync(&buf))

	log.InfoObj("robot command issued", "command", map[string]any{"robot_id": "42"})

	var line map[string]any
	if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
		t.Fatalf("decode log line %q: %v", buf.String(), err)
	}
	if line["msg"] != "robot command issued" {
		t.Fatalf("msg = %v", line["msg"])
	}
	if _, ok := line["ts"]; !ok {
		t.Fatalf("missing ts key: %v", line)
	}
	cmd, ok := line["command"].(map[string]any)
	if !ok || cmd["robot_id"] != "42" {
		t.Fatalf("command field = %#v", line["command"])
	}
}

func TestZapLoggerRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	log := New("warn", zapcore.AddSync(&buf))

	log.DebugObj("hidden", "k", 1)
	log.InfoObj("hidden", "k", 1)
	if buf.Len() != 0 {
		t.Fatalf("expected nothing below warn, got %q", buf.String())
	}
	log.WarnObj("shown", "k", 1)
	if buf.Len() == 0 {
		t.Fatalf("expected warn entry")
	}
}

func TestPackageHelpersAreNoopsBeforeInit(t *testing.T) {
	S = nil
	InfoObj("x", "k", 1)
	ErrorObj("x", "k", 1)
	if err := Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
}
