package telemetry

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"strings"
	"testing"
)

func TestWriteEmitsJSONWithFields(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	defer SetOutput(os.Stdout)

	Error("render.failed", map[string]any{
		"template": "classic",
		"err":      errors.New("boom"),
	})

	var payload map[string]any
	if err := json.Unmarshal([]byte(strings.TrimSpace(buf.String())), &payload); err != nil {
		t.Fatalf("decode log json: %v", err)
	}
	if payload["level"] != "error" {
		t.Fatalf("unexpected level: %v", payload["level"])
	}
	if payload["msg"] != "render.failed" {
		t.Fatalf("unexpected msg: %v", payload["msg"])
	}
	if payload["template"] != "classic" || payload["err"] != "boom" {
		t.Fatalf("unexpected fields: %v", payload)
	}
	if _, ok := payload["ts"]; !ok {
		t.Fatalf("missing ts")
	}
}

func TestSetLevelFiltersLowerLevels(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	SetLevel("warn")
	defer func() {
		SetLevel("info")
		SetOutput(os.Stdout)
	}()

	Info("ignored", nil)
	Warn("kept", nil)

	out := strings.TrimSpace(buf.String())
	if strings.Contains(out, "ignored") {
		t.Fatalf("info line should be filtered: %s", out)
	}
	if !strings.Contains(out, "kept") {
		t.Fatalf("warn line missing: %s", out)
	}
}
