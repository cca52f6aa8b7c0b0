package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/example/go-kitten-tts/internal/config"
	"github.com/example/go-kitten-tts/internal/onnx"
	"github.com/example/go-kitten-tts/internal/testutil"
)

func TestDescribeRuntime(t *testing.T) {
	tests := []struct {
		name string
		info onnx.RuntimeInfo
		want string
	}{
		{
			name: "with version",
			info: onnx.RuntimeInfo{LibraryPath: "/usr/lib/libonnxruntime.so", Version: "1.22.0"},
			want: "/usr/lib/libonnxruntime.so (version 1.22.0)",
		},
		{
			name: "version unknown",
			info: onnx.RuntimeInfo{LibraryPath: "/opt/ort/libonnxruntime.so", Version: "unknown"},
			want: "/opt/ort/libonnxruntime.so",
		},
		{
			name: "version empty",
			info: onnx.RuntimeInfo{LibraryPath: "/opt/ort/libonnxruntime.so"},
			want: "/opt/ort/libonnxruntime.so",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := describeRuntime(tt.info); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDescribePhonemizerRuleEngine(t *testing.T) {
	got, err := describePhonemizer(config.TTSConfig{Engine: config.EngineRule})
	if err != nil {
		t.Fatalf("describePhonemizer: %v", err)
	}
	if !strings.Contains(got, "rule engine") {
		t.Errorf("got %q, want rule engine description", got)
	}
}

func TestDescribePhonemizerUnknownEngine(t *testing.T) {
	if _, err := describePhonemizer(config.TTSConfig{Engine: "festival"}); err == nil {
		t.Error("expected error for unknown engine")
	}
}

func TestLoadVoiceNames(t *testing.T) {
	dir := t.TempDir()
	voicesPath := filepath.Join(dir, "voices.npz")
	configPath := filepath.Join(dir, "config.json")

	testutil.WriteNPZ(t, voicesPath, []testutil.NPYArray{
		{Name: "expr-voice-2-f", Shape: []int64{4}, Data: []float32{1, 2, 3, 4}},
		{Name: "expr-voice-5-m", Shape: []int64{4}, Data: []float32{5, 6, 7, 8}},
		{Name: "short", Shape: []int64{2}, Data: []float32{9, 10}},
	})
	if err := os.WriteFile(configPath, []byte(`{"sample_rate":24000,"style_dim":4}`), 0o644); err != nil {
		t.Fatalf("write config fixture: %v", err)
	}

	names, placeholders, err := loadVoiceNames(voicesPath, configPath)
	if err != nil {
		t.Fatalf("loadVoiceNames: %v", err)
	}
	if len(names) != 3 {
		t.Errorf("got %d names, want 3: %v", len(names), names)
	}
	if len(placeholders) != 1 || placeholders[0] != "short" {
		t.Errorf("placeholders = %v, want [short]", placeholders)
	}
}

func TestLoadVoiceNamesBrokenConfigUsesDefaultDim(t *testing.T) {
	dir := t.TempDir()
	voicesPath := filepath.Join(dir, "voices.npz")

	// Entries are 4 wide; with the default 256-dim fallback they all
	// degrade to placeholders, but the listing itself must still work.
	testutil.WriteNPZ(t, voicesPath, []testutil.NPYArray{
		{Name: "expr-voice-2-f", Shape: []int64{4}, Data: []float32{1, 2, 3, 4}},
	})

	names, placeholders, err := loadVoiceNames(voicesPath, filepath.Join(dir, "missing-config.json"))
	if err != nil {
		t.Fatalf("loadVoiceNames: %v", err)
	}
	if len(names) != 1 {
		t.Errorf("got %d names, want 1", len(names))
	}
	if len(placeholders) != 1 {
		t.Errorf("got %d placeholders, want 1", len(placeholders))
	}
}

func TestLoadVoiceNamesMissingArchive(t *testing.T) {
	dir := t.TempDir()
	if _, _, err := loadVoiceNames(filepath.Join(dir, "nope.npz"), filepath.Join(dir, "nope.json")); err == nil {
		t.Error("expected error for missing archive")
	}
}
