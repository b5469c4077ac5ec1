package logging

import (
	"bytes"
	"encoding/json"
	"testing"
)

func TestJSONLines(t *testing.T) {
	var buf bytes.Buffer
	if err := SetupWriter(&buf, "info", "json"); err != nil {
		t.Fatal(err)
	}
	defer Setup("info", "json")

	Info("user_ingested", map[string]any{"user_id": 42, "posts": 3})
	Debug("hidden", nil)

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	if len(lines) != 1 {
		t.Fatalf("expected one line, got %d: %s", len(lines), buf.String())
	}
	var m map[string]any
	if err := json.Unmarshal(lines[0], &m); err != nil {
		t.Fatal(err)
	}
	if m["msg"] != "user_ingested" || m["user_id"] != float64(42) {
		t.Fatalf("unexpected entry: %v", m)
	}
}

func TestBadLevel(t *testing.T) {
	var buf bytes.Buffer
	if err := SetupWriter(&buf, "loud", "json"); err == nil {
		t.Fatal("expected error for unknown level")
	}
}
