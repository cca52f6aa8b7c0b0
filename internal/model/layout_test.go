package model

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeBundle(t *testing.T, dir string, names ...string) {
	t.Helper()
	for _, name := range names {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644); err != nil {
			t.Fatalf("WriteFile(%s): %v", name, err)
		}
	}
}

func TestResolveLayout_Defaults(t *testing.T) {
	l := ResolveLayout("models", "", "", "")
	if l.Dir != "models" {
		t.Errorf("Dir = %q; want models", l.Dir)
	}
	if want := filepath.Join("models", ModelFilename); l.ModelPath != want {
		t.Errorf("ModelPath = %q; want %q", l.ModelPath, want)
	}
	if want := filepath.Join("models", VoicesFilename); l.VoicesPath != want {
		t.Errorf("VoicesPath = %q; want %q", l.VoicesPath, want)
	}
	if want := filepath.Join("models", ConfigFilename); l.ConfigPath != want {
		t.Errorf("ConfigPath = %q; want %q", l.ConfigPath, want)
	}
}

func TestResolveLayout_Overrides(t *testing.T) {
	l := ResolveLayout("models", "custom.onnx", "v.npz", "c.json")
	if want := filepath.Join("models", "custom.onnx"); l.ModelPath != want {
		t.Errorf("ModelPath = %q; want %q", l.ModelPath, want)
	}
	if want := filepath.Join("models", "v.npz"); l.VoicesPath != want {
		t.Errorf("VoicesPath = %q; want %q", l.VoicesPath, want)
	}
	if want := filepath.Join("models", "c.json"); l.ConfigPath != want {
		t.Errorf("ConfigPath = %q; want %q", l.ConfigPath, want)
	}
}

func TestResolveLayout_AbsoluteOverrideWins(t *testing.T) {
	abs := filepath.Join(t.TempDir(), "elsewhere.onnx")
	l := ResolveLayout("models", abs, "", "")
	if l.ModelPath != abs {
		t.Errorf("ModelPath = %q; want %q", l.ModelPath, abs)
	}
}

func TestLayoutCheck_CompleteBundle(t *testing.T) {
	dir := t.TempDir()
	writeBundle(t, dir, ModelFilename, VoicesFilename, ConfigFilename)

	l := ResolveLayout(dir, "", "", "")
	if err := l.Check(); err != nil {
		t.Errorf("Check() = %v; want nil", err)
	}
}

func TestLayoutCheck_ReportsAllMissing(t *testing.T) {
	dir := t.TempDir()
	writeBundle(t, dir, ConfigFilename)

	l := ResolveLayout(dir, "", "", "")
	err := l.Check()
	if err == nil {
		t.Fatal("Check() = nil; want error for missing assets")
	}
	// Both absent files show up in a single error.
	if !strings.Contains(err.Error(), ModelFilename) {
		t.Errorf("error %v does not mention %s", err, ModelFilename)
	}
	if !strings.Contains(err.Error(), VoicesFilename) {
		t.Errorf("error %v does not mention %s", err, VoicesFilename)
	}
	if strings.Contains(err.Error(), ConfigFilename) {
		t.Errorf("error %v mentions present file %s", err, ConfigFilename)
	}
}

func TestLayoutCheck_DirectoryAtAssetPath(t *testing.T) {
	dir := t.TempDir()
	writeBundle(t, dir, VoicesFilename, ConfigFilename)
	if err := os.Mkdir(filepath.Join(dir, ModelFilename), 0o755); err != nil {
		t.Fatalf("Mkdir: %v", err)
	}

	l := ResolveLayout(dir, "", "", "")
	if err := l.Check(); err == nil {
		t.Error("Check() = nil; want error for directory at model path")
	}
}

func TestLayoutCheck_SuggestsDownload(t *testing.T) {
	l := ResolveLayout(t.TempDir(), "", "", "")
	err := l.Check()
	if err == nil {
		t.Fatal("Check() on empty dir = nil; want error")
	}
	if !strings.Contains(err.Error(), "model download") {
		t.Errorf("error %v should point at the download command", err)
	}
}
