// Package model locates, downloads and verifies the on-disk speech model
// bundle: the ONNX graph, the voice embedding archive and the model config.
package model

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Asset filenames as published in the upstream repository.
const (
	ModelFilename  = "kitten_tts_nano_v0_1.onnx"
	VoicesFilename = "voices.npz"
	ConfigFilename = "config.json"
)

// Layout holds the resolved locations of the three model assets.
type Layout struct {
	Dir        string
	ModelPath  string
	VoicesPath string
	ConfigPath string
}

// ResolveLayout maps a model directory and optional per-file overrides to
// concrete asset paths. A relative override replaces the conventional
// filename inside dir; an absolute override is used as-is.
func ResolveLayout(dir, modelFile, voicesFile, configFile string) Layout {
	return Layout{
		Dir:        dir,
		ModelPath:  resolveAssetPath(dir, modelFile, ModelFilename),
		VoicesPath: resolveAssetPath(dir, voicesFile, VoicesFilename),
		ConfigPath: resolveAssetPath(dir, configFile, ConfigFilename),
	}
}

func resolveAssetPath(dir, override, defaultName string) string {
	if override == "" {
		return filepath.Join(dir, defaultName)
	}
	if filepath.IsAbs(override) {
		return override
	}

	return filepath.Join(dir, override)
}

// Check verifies every asset exists and is a regular file. All missing
// assets are reported in a single error so operators fix them in one pass.
func (l Layout) Check() error {
	var missing []string
	for _, p := range []string{l.ModelPath, l.VoicesPath, l.ConfigPath} {
		fi, err := os.Stat(p)
		if err != nil {
			missing = append(missing, p)
			continue
		}
		if fi.IsDir() {
			return fmt.Errorf("model asset %s is a directory", p)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf(
			"missing model assets: %s (run `kittentts model download` or point --model-dir at an existing bundle)",
			strings.Join(missing, ", "),
		)
	}

	return nil
}
