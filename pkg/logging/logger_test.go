package logging

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func decodeLine(t *testing.T, data []byte) map[string]any {
	t.Helper()
	var line map[string]any
	if err := json.Unmarshal(data, &line); err != nil {
		t.Fatalf("unmarshal log line: %v", err)
	}
	return line
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input string
		want  Level
	}{
		{"debug", DebugLevel},
		{"DEBUG", DebugLevel},
		{"info", InfoLevel},
		{"warn", WarnLevel},
		{"WARNING", WarnLevel},
		{"error", ErrorLevel},
		{"", InfoLevel},
		{"verbose", InfoLevel},
	}
	for _, tt := range tests {
		if got := ParseLevel(tt.input); got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestJSONLogger_FlattenedFields(t *testing.T) {
	var buf bytes.Buffer
	logger := NewJSONLogger(&buf, DebugLevel)

	logger.Info("built subgraph", CenterID("e1"), Nodes(12), Bool("truncated", false))

	line := decodeLine(t, buf.Bytes())
	if line["level"] != "INFO" || line["msg"] != "built subgraph" {
		t.Errorf("level/msg = %v/%v", line["level"], line["msg"])
	}
	if line["center_entity_id"] != "e1" {
		t.Errorf("center_entity_id = %v", line["center_entity_id"])
	}
	if line["nodes"] != float64(12) {
		t.Errorf("nodes = %v", line["nodes"])
	}
	if line["truncated"] != false {
		t.Errorf("truncated = %v", line["truncated"])
	}
	if line["time"] == nil {
		t.Error("time key missing")
	}
}

func TestJSONLogger_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := NewJSONLogger(&buf, WarnLevel)

	logger.Debug("dropped")
	logger.Info("dropped")
	logger.Warn("kept")
	logger.Error("kept")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want 2", len(lines))
	}
	if l := decodeLine(t, []byte(lines[0])); l["level"] != "WARN" {
		t.Errorf("first line level = %v", l["level"])
	}
	if l := decodeLine(t, []byte(lines[1])); l["level"] != "ERROR" {
		t.Errorf("second line level = %v", l["level"])
	}
}

func TestJSONLogger_ChildCarriesPresetFields(t *testing.T) {
	var buf bytes.Buffer
	logger := NewJSONLogger(&buf, InfoLevel)

	child := logger.With(Component("analysis")).With(AnalysisID("a-1"))
	child.Info("phase done", String("phase", "centrality"))

	line := decodeLine(t, buf.Bytes())
	if line["component"] != "analysis" {
		t.Errorf("component = %v", line["component"])
	}
	if line["analysis_id"] != "a-1" {
		t.Errorf("analysis_id = %v", line["analysis_id"])
	}
	if line["phase"] != "centrality" {
		t.Errorf("phase = %v", line["phase"])
	}

	// The parent stays unannotated.
	buf.Reset()
	logger.Info("plain")
	if line := decodeLine(t, buf.Bytes()); line["component"] != nil {
		t.Errorf("parent leaked component = %v", line["component"])
	}
}

func TestJSONLogger_ReservedKeysWin(t *testing.T) {
	var buf bytes.Buffer
	logger := NewJSONLogger(&buf, InfoLevel)

	logger.Info("real message", String("msg", "impostor"), String("level", "FAKE"))

	line := decodeLine(t, buf.Bytes())
	if line["msg"] != "real message" {
		t.Errorf("msg = %v, reserved key must win", line["msg"])
	}
	if line["level"] != "INFO" {
		t.Errorf("level = %v, reserved key must win", line["level"])
	}
}

func TestFieldConstructors(t *testing.T) {
	if f := EntityID("e-42"); f.Key != "entity_id" || f.Value != "e-42" {
		t.Errorf("EntityID = %+v", f)
	}
	if f := Error(errors.New("boom")); f.Key != "error" || f.Value != "boom" {
		t.Errorf("Error = %+v", f)
	}
	if f := Error(nil); f.Key != "error" || f.Value != nil {
		t.Errorf("Error(nil) = %+v", f)
	}
	if f := Latency(0); f.Key != "latency" {
		t.Errorf("Latency = %+v", f)
	}
}

func TestNopLogger(t *testing.T) {
	logger := NewNopLogger()
	child := logger.With(Component("x"))
	// Must be safe to call and never write anywhere.
	child.Debug("a")
	child.Info("b")
	child.Warn("c")
	child.Error("d", Error(errors.New("ignored")))
	if child != logger {
		t.Error("NopLogger.With should return itself")
	}
}

func TestDefaultLogger(t *testing.T) {
	if DefaultLogger() == nil {
		t.Fatal("DefaultLogger returned nil")
	}
}
