package logger

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
)

func TestNewParsesLevel(t *testing.T) {
	tests := map[string]logrus.Level{
		"debug":   logrus.DebugLevel,
		"warn":    logrus.WarnLevel,
		"ERROR":   logrus.ErrorLevel,
		"":        logrus.InfoLevel,
		"verbose": logrus.InfoLevel,
	}
	for level, want := range tests {
		if got := New(level, "text").GetLevel(); got != want {
			t.Errorf("New(%q) level = %v, want %v", level, got, want)
		}
	}
}

func TestJSONFormat(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithOutput("info", "json", &buf)

	WithFields(l, logrus.Fields{"todo_id": 7}).Info("Created todo")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("output is not JSON: %q", buf.String())
	}
	if entry["msg"] != "Created todo" || entry["level"] != "info" || entry["todo_id"] != float64(7) {
		t.Fatalf("unexpected entry: %v", entry)
	}
}

func TestTextFormat(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithOutput("info", "text", &buf)
	l.Debug("hidden")
	l.Info("shown")

	out := buf.String()
	if strings.Contains(out, "hidden") || !strings.Contains(out, `msg=shown`) {
		t.Fatalf("unexpected output: %q", out)
	}
}
