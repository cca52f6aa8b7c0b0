package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/example/go-kitten-tts/internal/audio"
	"github.com/example/go-kitten-tts/internal/bench"
	"github.com/example/go-kitten-tts/internal/synth"
)

func newBenchCmd() *cobra.Command {
	var (
		benchText    string
		benchVoice   string
		benchRuns    int
		benchFormat  string
		rtfThreshold float64
	)

	cmd := &cobra.Command{
		Use:   "bench",
		Short: "Benchmark synthesis latency and realtime factor",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := requireConfig()
			if err != nil {
				return err
			}

			if strings.TrimSpace(benchText) == "" {
				return errors.New("--text is required")
			}
			if benchRuns < 1 {
				return fmt.Errorf("--runs must be at least 1, got %d", benchRuns)
			}
			if benchFormat != "table" && benchFormat != "json" {
				return fmt.Errorf("--format must be 'table' or 'json', got %q", benchFormat)
			}

			req := synth.Request{
				Text:     benchText,
				Voice:    cfg.TTS.Voice,
				Speed:    cfg.TTS.Speed,
				Language: cfg.TTS.Language,
			}
			if benchVoice != "" {
				req.Voice = benchVoice
			}

			p, err := buildPipeline(cfg)
			if err != nil {
				return err
			}
			defer p.cleanup()

			results, err := runBench(cmd.Context(), p.svc, req, benchRuns)
			if err != nil {
				return err
			}

			durations := make([]time.Duration, len(results))
			for i, r := range results {
				durations[i] = r.Duration
			}
			stats := bench.ComputeStats(durations)

			if benchFormat == "json" {
				bench.FormatJSON(results, stats, os.Stdout)
			} else {
				bench.FormatTable(results, stats, os.Stdout)
			}

			return bench.CheckRTFThreshold(meanRTF(results), rtfThreshold)
		},
	}

	cmd.Flags().StringVar(&benchText, "text", "", "Text to synthesize on every run")
	cmd.Flags().StringVar(&benchVoice, "voice", "", "Voice name (overrides config)")
	cmd.Flags().IntVar(&benchRuns, "runs", 5, "Number of synthesis runs")
	cmd.Flags().StringVar(&benchFormat, "format", "table", "Output format: table or json")
	cmd.Flags().Float64Var(&rtfThreshold, "rtf-threshold", 0, "Fail when mean RTF exceeds this value (0 disables)")

	return cmd
}

// runBench synthesizes the same request repeatedly, timing each run and
// marking the first as cold. A WAV parse failure only loses the RTF column,
// it does not abort the benchmark.
func runBench(ctx context.Context, svc synthesizer, req synth.Request, runs int) ([]bench.RunResult, error) {
	results := make([]bench.RunResult, 0, runs)

	for i := 0; i < runs; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		start := time.Now()
		res, err := svc.Synthesize(ctx, req)
		if err != nil {
			return nil, fmt.Errorf("run %d failed: %w", i+1, err)
		}
		wav, err := audio.EncodeWAV(res.Samples, res.SampleRate)
		if err != nil {
			return nil, fmt.Errorf("run %d encode failed: %w", i+1, err)
		}
		elapsed := time.Since(start)

		audioDur, err := bench.WAVDuration(wav)
		if err != nil {
			fmt.Fprintf(os.Stderr, "warn: run %d: could not determine WAV duration: %v\n", i+1, err)
		}

		results = append(results, bench.RunResult{
			Index:       i,
			Cold:        i == 0,
			Duration:    elapsed,
			WAVDuration: audioDur,
			RTF:         bench.CalcRTF(elapsed, audioDur),
		})
	}

	return results, nil
}

// meanRTF averages the per-run RTF values, skipping runs with no audio
// duration.
func meanRTF(results []bench.RunResult) float64 {
	var sum float64
	var n int
	for _, r := range results {
		if r.RTF > 0 {
			sum += r.RTF
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}
