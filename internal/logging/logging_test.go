package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want Level
	}{
		{"debug", LevelDebug},
		{"info", LevelInfo},
		{"warn", LevelWarn},
		{"warning", LevelWarn},
		{"error", LevelError},
		{"DEBUG", LevelDebug},
		{"nonsense", LevelInfo},
	}
	for _, tt := range tests {
		if got := ParseLevel(tt.in); got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestParseFormat(t *testing.T) {
	if ParseFormat("json") != FormatJSON {
		t.Error("json should parse to FormatJSON")
	}
	if ParseFormat("JSON") != FormatJSON {
		t.Error("parse should be case-insensitive")
	}
	if ParseFormat("text") != FormatText {
		t.Error("text should parse to FormatText")
	}
	if ParseFormat("") != FormatText {
		t.Error("unknown formats fall back to text")
	}
}

func TestFileOutput(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "logs", "test.log")

	l, err := New(&Config{
		Level:    LevelInfo,
		Format:   FormatJSON,
		Output:   "file",
		FilePath: path,
	})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	l.Info("hello", "answer", 42)
	if err := l.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("log file missing: %v", err)
	}
	out := string(data)
	if !strings.Contains(out, `"msg":"hello"`) || !strings.Contains(out, `"answer":42`) {
		t.Errorf("unexpected log content: %s", out)
	}
}

func TestLevelFiltering(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.log")

	l, err := New(&Config{
		Level:    LevelWarn,
		Output:   "file",
		FilePath: path,
	})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	l.Debug("hidden")
	l.Info("hidden too")
	l.Warn("visible")
	l.Close()

	data, _ := os.ReadFile(path)
	out := string(data)
	if strings.Contains(out, "hidden") {
		t.Errorf("below-level entries leaked: %s", out)
	}
	if !strings.Contains(out, "visible") {
		t.Errorf("warn entry missing: %s", out)
	}
}

func TestWithComponent(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.log")

	l, err := New(&Config{
		Level:    LevelInfo,
		Format:   FormatJSON,
		Output:   "file",
		FilePath: path,
	})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	l.WithComponent("limiter").Info("tagged")
	l.Close()

	data, _ := os.ReadFile(path)
	if !strings.Contains(string(data), `"component":"limiter"`) {
		t.Errorf("component attribute missing: %s", data)
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.Level != LevelInfo || cfg.Output != "stderr" {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
	if cfg.FilePath == "" {
		t.Error("default file path must be set")
	}
}
