package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/example/go-kitten-tts/internal/audio"
	"github.com/example/go-kitten-tts/internal/config"
	"github.com/example/go-kitten-tts/internal/model"
	"github.com/example/go-kitten-tts/internal/synth"
	"github.com/example/go-kitten-tts/internal/text"
	"github.com/example/go-kitten-tts/internal/voice"
)

type generateOptions struct {
	Text          string
	Out           string
	Voice         string
	Speed         float64
	Language      string
	Chunk         bool
	MaxChunkChars int
	Normalize     bool
	DCBlock       bool
	FadeInMS      float64
	FadeOutMS     float64
	AutoDownload  bool
}

func newGenerateCmd() *cobra.Command {
	var opts generateOptions

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Synthesize text into a WAV file",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := requireConfig()
			if err != nil {
				return err
			}

			if opts.AutoDownload {
				if err := ensureModelBundle(cfg); err != nil {
					return err
				}
			}

			p, err := buildPipeline(cfg)
			if err != nil {
				return err
			}
			defer p.cleanup()

			return runGenerate(cmd.Context(), p.svc, cfg, opts, os.Stdin, os.Stdout)
		},
	}

	cmd.Flags().StringVar(&opts.Text, "text", "", "Text to synthesize (omit to read from stdin)")
	cmd.Flags().StringVar(&opts.Out, "out", "out.wav", "Output WAV path ('-' writes to stdout)")
	cmd.Flags().StringVar(&opts.Voice, "voice", "", "Voice name from the archive (overrides config)")
	cmd.Flags().Float64Var(&opts.Speed, "speed", 0, "Speech speed, 1.0 is normal (overrides config)")
	cmd.Flags().StringVar(&opts.Language, "language", "", "Phonemizer language (overrides config)")
	cmd.Flags().BoolVar(&opts.Chunk, "chunk", false, "Split long text into sentence chunks before synthesis")
	cmd.Flags().IntVar(&opts.MaxChunkChars, "max-chunk-chars", 220, "Maximum characters per chunk with --chunk")
	cmd.Flags().BoolVar(&opts.Normalize, "normalize", false, "Peak-normalize the output audio")
	cmd.Flags().BoolVar(&opts.DCBlock, "dc-block", false, "Remove DC offset from the output audio")
	cmd.Flags().Float64Var(&opts.FadeInMS, "fade-in-ms", 0, "Linear fade-in duration in milliseconds")
	cmd.Flags().Float64Var(&opts.FadeOutMS, "fade-out-ms", 0, "Linear fade-out duration in milliseconds")
	cmd.Flags().BoolVar(&opts.AutoDownload, "auto-download", false, "Download the model bundle first if files are missing")

	return cmd
}

// synthesizer is the slice of synth.Service the generate and bench commands
// depend on.
type synthesizer interface {
	Synthesize(ctx context.Context, req synth.Request) (synth.Result, error)
	SampleRate() int
}

// runGenerate executes the full generate flow against an already constructed
// service: read input, chunk, synthesize, post-process, encode, write.
func runGenerate(ctx context.Context, svc synthesizer, cfg config.Config, opts generateOptions, stdin io.Reader, stdout io.Writer) error {
	input, err := readInputText(opts.Text, stdin)
	if err != nil {
		return err
	}

	chunks, err := buildGenerateChunks(input, opts.Chunk, opts.MaxChunkChars)
	if err != nil {
		return err
	}

	req := synth.Request{
		Voice:    cfg.TTS.Voice,
		Speed:    cfg.TTS.Speed,
		Language: cfg.TTS.Language,
	}
	if opts.Voice != "" {
		req.Voice = opts.Voice
	}
	if opts.Speed != 0 {
		req.Speed = opts.Speed
	}
	if opts.Language != "" {
		req.Language = opts.Language
	}

	var (
		merged            []float32
		warnedPlaceholder bool
	)
	for i, chunkText := range chunks {
		if err := ctx.Err(); err != nil {
			return err
		}

		req.Text = chunkText
		res, err := svc.Synthesize(ctx, req)
		if err != nil {
			return fmt.Errorf("chunk %d synthesis failed: %w", i+1, err)
		}
		if res.VoiceSource == voice.SourcePlaceholder && !warnedPlaceholder {
			slog.Warn("voice embedding degraded to placeholder", "voice", res.Voice)
			warnedPlaceholder = true
		}
		merged = append(merged, res.Samples...)
	}
	if len(merged) == 0 {
		return errors.New("synthesis produced no samples")
	}

	merged = audio.ApplyHooks(merged, generateHooks(svc.SampleRate(), opts)...)

	return writeWAVOutput(opts.Out, merged, svc.SampleRate(), stdout)
}

// readInputText returns the --text value, or falls back to reading stdin
// until EOF.
func readInputText(flagText string, stdin io.Reader) (string, error) {
	if strings.TrimSpace(flagText) != "" {
		return flagText, nil
	}

	data, err := io.ReadAll(stdin)
	if err != nil {
		return "", fmt.Errorf("read stdin: %w", err)
	}

	input := strings.TrimSpace(string(data))
	if input == "" {
		return "", errors.New("no input text: provide --text or pipe text on stdin")
	}

	return input, nil
}

// buildGenerateChunks splits the input by sentence when chunking is enabled,
// otherwise returns the input as a single chunk.
func buildGenerateChunks(input string, chunk bool, maxChars int) ([]string, error) {
	if !chunk {
		return []string{input}, nil
	}

	if maxChars < 1 {
		return nil, fmt.Errorf("max-chunk-chars must be positive, got %d", maxChars)
	}

	chunks := text.ChunkBySentence(input, maxChars)
	if len(chunks) == 0 {
		return nil, errors.New("chunking produced no synthesizable text")
	}

	return chunks, nil
}

// generateHooks assembles the flag-gated post filters in a fixed order:
// normalize, DC block, fade-in, fade-out.
func generateHooks(sampleRate int, opts generateOptions) []audio.Hook {
	var hooks []audio.Hook

	if opts.Normalize {
		hooks = append(hooks, audio.PeakNormalize)
	}
	if opts.DCBlock {
		hooks = append(hooks, func(s []float32) []float32 {
			return audio.DCBlock(s, sampleRate)
		})
	}
	if opts.FadeInMS > 0 {
		hooks = append(hooks, func(s []float32) []float32 {
			return audio.FadeIn(s, sampleRate, opts.FadeInMS)
		})
	}
	if opts.FadeOutMS > 0 {
		hooks = append(hooks, func(s []float32) []float32 {
			return audio.FadeOut(s, sampleRate, opts.FadeOutMS)
		})
	}

	return hooks
}

// writeWAVOutput serializes samples to the given path, or to stdout when the
// path is "-".
func writeWAVOutput(out string, samples []float32, sampleRate int, stdout io.Writer) error {
	if out == "-" {
		return audio.WriteWAV(stdout, samples, sampleRate)
	}

	f, err := os.Create(out)
	if err != nil {
		return fmt.Errorf("create WAV file: %w", err)
	}
	if err := audio.WriteWAV(f, samples, sampleRate); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close WAV file: %w", err)
	}

	slog.Info("wrote WAV file", "path", out, "samples", len(samples), "sample_rate", sampleRate)

	return nil
}

// ensureModelBundle downloads the pinned bundle when any asset is missing.
// Progress goes to stderr so a '-' output target stays clean.
func ensureModelBundle(cfg config.Config) error {
	layout := resolveLayout(cfg)
	if err := layout.Check(); err == nil {
		return nil
	}

	slog.Info("model bundle incomplete, downloading", "dir", cfg.Paths.ModelDir)

	return model.Download(model.DownloadOptions{
		OutDir:  cfg.Paths.ModelDir,
		HFToken: os.Getenv("HF_TOKEN"),
		Stdout:  os.Stderr,
		Stderr:  os.Stderr,
	})
}
