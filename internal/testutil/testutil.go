// Package testutil provides shared fixtures and skip helpers for tests.
//
// The Require helpers call t.Skip with a human-readable reason when the named
// prerequisite is absent, so integration tests remain runnable in partial
// environments without failing noisily.
//
// Typical usage:
//
//	func TestMyIntegration(t *testing.T) {
//	    testutil.RequireEspeakNG(t)
//	    dir := testutil.RequireModelDir(t)
//	    ...
//	}
package testutil

import (
	"os"
	"os/exec"
	"path/filepath"
	"testing"
)

// Model bundle filenames, mirrored here because the model package's own
// tests import testutil.
const (
	modelFilename  = "kitten_tts_nano_v0_1.onnx"
	voicesFilename = "voices.npz"
	configFilename = "config.json"
)

// RequireEspeakNG skips the test if the espeak-ng binary is not found in
// PATH or at the path given by the KITTENTTS_ESPEAK_PATH environment
// variable.
func RequireEspeakNG(tb testing.TB) string {
	tb.Helper()

	exe := os.Getenv("KITTENTTS_ESPEAK_PATH")
	if exe == "" {
		exe = "espeak-ng"
	}

	path, err := exec.LookPath(exe)
	if err != nil {
		tb.Skipf("espeak-ng binary not available (%q not in PATH); set KITTENTTS_ESPEAK_PATH to override", exe)
	}

	return path
}

// RequireONNXRuntime skips the test if no ONNX Runtime shared library can be
// located, and returns the library path otherwise. It checks (in order): the
// ORT_LIBRARY_PATH env var, then the KITTENTTS_ORT_LIB env var, then common
// system library paths.
func RequireONNXRuntime(tb testing.TB) string {
	tb.Helper()

	for _, env := range []string{"ORT_LIBRARY_PATH", "KITTENTTS_ORT_LIB"} {
		if p := os.Getenv(env); p != "" {
			_, err := os.Stat(p)
			if err == nil {
				return p
			}

			tb.Skipf("ONNX Runtime library not found at %s=%q", env, p)
		}
	}
	// Fall back to common system locations.
	candidates := []string{
		"/usr/lib/libonnxruntime.so",
		"/usr/local/lib/libonnxruntime.so",
		"/usr/lib/x86_64-linux-gnu/libonnxruntime.so",
	}
	for _, p := range candidates {
		_, err := os.Stat(p)
		if err == nil {
			return p
		}
	}

	tb.Skip("ONNX Runtime shared library not found; set ORT_LIBRARY_PATH or KITTENTTS_ORT_LIB")
	return ""
}

// RequireModelDir skips the test unless KITTENTTS_MODEL_DIR points at a
// complete model bundle, and returns the directory otherwise.
func RequireModelDir(tb testing.TB) string {
	tb.Helper()

	dir := os.Getenv("KITTENTTS_MODEL_DIR")
	if dir == "" {
		tb.Skip("KITTENTTS_MODEL_DIR not set; run `kittentts model download` and point it at the output directory")
	}

	for _, name := range []string{modelFilename, voicesFilename, configFilename} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			tb.Skipf("model bundle incomplete: %s missing from %s", name, dir)
		}
	}

	return dir
}
