package main

import (
	"fmt"
	"log/slog"

	"github.com/example/go-kitten-tts/internal/config"
	"github.com/example/go-kitten-tts/internal/model"
	"github.com/example/go-kitten-tts/internal/onnx"
	"github.com/example/go-kitten-tts/internal/phoneme"
	"github.com/example/go-kitten-tts/internal/synth"
	"github.com/example/go-kitten-tts/internal/voice"
)

// pipeline bundles the synthesis service with the resources the commands
// need alongside it. cleanup releases the ONNX session.
type pipeline struct {
	svc     *synth.Service
	store   *voice.Store
	cleanup func()
}

func resolveLayout(cfg config.Config) model.Layout {
	return model.ResolveLayout(cfg.Paths.ModelDir, cfg.Paths.ModelFile, cfg.Paths.VoicesFile, cfg.Paths.ModelConfig)
}

// buildPipeline assembles the full synthesis stack from configuration:
// model layout, descriptor, voice store, phonemizer engine and the ONNX
// runner. The caller must invoke cleanup when done.
func buildPipeline(cfg config.Config) (pipeline, error) {
	layout := resolveLayout(cfg)
	if err := layout.Check(); err != nil {
		return pipeline{}, err
	}

	desc, err := model.LoadDescriptor(layout.ConfigPath)
	if err != nil {
		return pipeline{}, err
	}

	store := voice.NewStore(layout.VoicesPath, desc.StyleDim)

	engine, err := selectEngine(cfg.TTS)
	if err != nil {
		return pipeline{}, err
	}
	slog.Debug("phonemizer engine selected", "engine", engine.Name())

	info, err := onnx.Bootstrap(cfg.Runtime)
	if err != nil {
		return pipeline{}, err
	}

	provider, err := onnx.ParseProvider(cfg.Runtime.Provider)
	if err != nil {
		return pipeline{}, err
	}
	if provider.Effective() != provider {
		slog.Warn("execution provider unavailable, falling back to cpu", "requested", provider.String())
		provider = provider.Effective()
	}

	runner, err := onnx.NewRunner("speech", layout.ModelPath, onnx.RunnerConfig{
		LibraryPath: info.LibraryPath,
		APIVersion:  cfg.Runtime.ORTAPIVersion,
		Provider:    provider,
	})
	if err != nil {
		return pipeline{}, err
	}

	svc, err := synth.NewService(synth.Options{
		Runner:     runner,
		Voices:     store,
		Phonemizer: phoneme.NewAdapter(engine),
		Descriptor: desc,
	})
	if err != nil {
		runner.Close()
		return pipeline{}, err
	}

	return pipeline{svc: svc, store: store, cleanup: func() { runner.Close() }}, nil
}

// selectEngine maps the configured engine name to a phonemizer. Auto prefers
// espeak-ng when it is installed and falls back to the builtin rule engine.
func selectEngine(tts config.TTSConfig) (phoneme.Engine, error) {
	engine, err := config.NormalizeEngine(tts.Engine)
	if err != nil {
		return nil, err
	}

	switch engine {
	case config.EngineRule:
		return phoneme.NewRuleEngine(), nil
	case config.EngineEspeak:
		cmd := phoneme.NewCommandEngine(tts.EspeakPath)
		if !cmd.Available() {
			return nil, fmt.Errorf("engine %q requested but espeak-ng is not available", engine)
		}
		return cmd, nil
	default:
		cmd := phoneme.NewCommandEngine(tts.EspeakPath)
		if cmd.Available() {
			return cmd, nil
		}
		return phoneme.NewRuleEngine(), nil
	}
}
