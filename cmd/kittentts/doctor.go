package main

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/spf13/cobra"

	"github.com/example/go-kitten-tts/internal/config"
	"github.com/example/go-kitten-tts/internal/doctor"
	"github.com/example/go-kitten-tts/internal/model"
	"github.com/example/go-kitten-tts/internal/onnx"
	"github.com/example/go-kitten-tts/internal/phoneme"
	"github.com/example/go-kitten-tts/internal/voice"
)

func newDoctorCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Check the local runtime, model bundle and voices",
		RunE: func(_ *cobra.Command, _ []string) error {
			cfg, err := requireConfig()
			if err != nil {
				return err
			}

			layout := resolveLayout(cfg)

			result := doctor.Run(doctor.Config{
				ORTLibrary: func() (string, error) {
					info, err := onnx.DetectRuntime(cfg.Runtime)
					if err != nil {
						return "", err
					}
					return describeRuntime(info), nil
				},
				Phonemizer: func() (string, error) {
					return describePhonemizer(cfg.TTS)
				},
				CheckLayout: layout.Check,
				LoadDescriptor: func() (model.Descriptor, error) {
					return model.LoadDescriptor(layout.ConfigPath)
				},
				LoadVoices: func() ([]string, []string, error) {
					return loadVoiceNames(layout.VoicesPath, layout.ConfigPath)
				},
			}, os.Stdout)

			if result.Failed() {
				for _, f := range result.Failures() {
					fmt.Fprintf(os.Stderr, "FAIL: %s\n", f)
				}
				return errors.New("doctor checks failed")
			}

			fmt.Fprintln(os.Stdout, "doctor checks passed")

			return nil
		},
	}

	return cmd
}

func describeRuntime(info onnx.RuntimeInfo) string {
	if info.Version != "" && info.Version != "unknown" {
		return fmt.Sprintf("%s (version %s)", info.LibraryPath, info.Version)
	}
	return info.LibraryPath
}

// describePhonemizer reports the engine synthesis would pick, probing
// espeak-ng's version when that engine is in play.
func describePhonemizer(tts config.TTSConfig) (string, error) {
	engine, err := selectEngine(tts)
	if err != nil {
		return "", err
	}

	if engine.Name() == "rule" {
		return "rule engine (builtin)", nil
	}

	binary := tts.EspeakPath
	if binary == "" {
		binary = phoneme.DefaultCommandBinary
	}
	out, err := exec.Command(binary, "--version").Output()
	if err != nil {
		return "", fmt.Errorf("%s --version: %w", binary, err)
	}

	return strings.TrimSpace(string(out)), nil
}

// loadVoiceNames opens the archive and splits names into all voices and the
// placeholder subset. A broken model config falls back to the default style
// dimension so the voices check still runs.
func loadVoiceNames(voicesPath, configPath string) ([]string, []string, error) {
	desc, err := model.LoadDescriptor(configPath)
	if err != nil {
		desc = model.DefaultDescriptor()
	}

	store := voice.NewStore(voicesPath, desc.StyleDim)

	names, err := store.List()
	if err != nil {
		return nil, nil, err
	}
	placeholders, err := store.Placeholders()
	if err != nil {
		return nil, nil, err
	}

	return names, placeholders, nil
}
