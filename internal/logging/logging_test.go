package logging

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"go.uber.org/zap"
)

func TestJSONFormat(t *testing.T) {
	var buf bytes.Buffer
	logger, err := NewWithWriter(&buf, "debug", "json")
	if err != nil {
		t.Fatalf("NewWithWriter: %v", err)
	}
	logger.Debug("board rendered", zap.Int("cells", 64))
	_ = logger.Sync()

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("output is not JSON: %q", buf.String())
	}
	if entry["msg"] != "board rendered" || entry["level"] != "debug" || entry["cells"] != float64(64) {
		t.Fatalf("unexpected entry %v", entry)
	}
}

func TestLevelFilters(t *testing.T) {
	var buf bytes.Buffer
	logger, err := NewWithWriter(&buf, "warn", "console")
	if err != nil {
		t.Fatalf("NewWithWriter: %v", err)
	}
	logger.Info("hidden")
	logger.Warn("captured pieces data is missing")
	_ = logger.Sync()

	out := buf.String()
	if strings.Contains(out, "hidden") || !strings.Contains(out, "WARN") {
		t.Fatalf("unexpected output %q", out)
	}
}

func TestOffLevelWritesNothing(t *testing.T) {
	var buf bytes.Buffer
	logger, err := NewWithWriter(&buf, "off", "")
	if err != nil {
		t.Fatalf("NewWithWriter: %v", err)
	}
	logger.Error("nothing")
	if buf.Len() != 0 {
		t.Fatalf("expected no output, got %q", buf.String())
	}
}

func TestRejectsUnknownSettings(t *testing.T) {
	if _, err := NewWithWriter(&bytes.Buffer{}, "loud", "json"); err == nil {
		t.Fatalf("expected level error")
	}
	if _, err := NewWithWriter(&bytes.Buffer{}, "info", "xml"); err == nil {
		t.Fatalf("expected format error")
	}
}
