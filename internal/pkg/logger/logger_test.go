package logger

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func TestDevWritesTextWithDebug(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, "dev")

	l.Debug("checking store", "kind", "memory")

	out := buf.String()
	if !strings.Contains(out, "level=DEBUG") || !strings.Contains(out, "kind=memory") {
		t.Errorf("unexpected output: %q", out)
	}
}

func TestProdWritesJSONAndDropsDebug(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, "prod").With("component", "server")

	l.Debug("hidden")
	l.Info("started", "addr", ":5000")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected 1 line, got %d: %q", len(lines), buf.String())
	}
	var rec map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &rec); err != nil {
		t.Fatalf("output is not JSON: %v", err)
	}
	if rec["msg"] != "started" || rec["addr"] != ":5000" || rec["component"] != "server" {
		t.Errorf("unexpected record: %v", rec)
	}
}

func TestNopAndSync(t *testing.T) {
	l := Nop()
	l.Error("ignored", "err", "x")
	if err := l.Sync(); err != nil {
		t.Errorf("Sync() = %v", err)
	}
}
