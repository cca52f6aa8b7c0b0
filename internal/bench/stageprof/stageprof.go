package stageprof

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"runtime/pprof"
	"time"

	"github.com/example/go-kitten-tts/internal/audio"
	"github.com/example/go-kitten-tts/internal/config"
	"github.com/example/go-kitten-tts/internal/model"
	"github.com/example/go-kitten-tts/internal/onnx"
	"github.com/example/go-kitten-tts/internal/phoneme"
	"github.com/example/go-kitten-tts/internal/synth"
	textpkg "github.com/example/go-kitten-tts/internal/text"
	"github.com/example/go-kitten-tts/internal/tokenizer"
	"github.com/example/go-kitten-tts/internal/voice"
)

type timings struct {
	prepare  time.Duration
	generate time.Duration
	encode   time.Duration
	total    time.Duration
	samples  int
	tokens   int
}

type pipeline struct {
	runner     onnx.GraphRunner
	phonemizer *phoneme.Adapter
	style      []float32
	speed      float64
	language   string
	sampleRate int
}

func Main() {
	var (
		input      string
		runs       int
		warmup     int
		cpuprofile string
		modelDir   string
		voiceName  string
		speed      float64
		language   string
		engineName string
		espeakPath string
		ortLib     string
		debugLogs  bool
	)
	flag.StringVar(&input, "text", "Hello from KittenTTS.", "input text")
	flag.IntVar(&runs, "runs", 5, "number of profiled runs")
	flag.IntVar(&warmup, "warmup", 1, "number of warmup runs")
	flag.StringVar(&cpuprofile, "cpuprofile", "", "write cpu profile")
	flag.StringVar(&modelDir, "model-dir", "models", "model bundle directory")
	flag.StringVar(&voiceName, "voice", "expr-voice-5-m", "voice name from the archive")
	flag.Float64Var(&speed, "speed", 1.0, "speech speed")
	flag.StringVar(&language, "language", "en-us", "phonemizer language")
	flag.StringVar(&engineName, "engine", config.EngineAuto, "phonemizer engine (auto|rule|espeak)")
	flag.StringVar(&espeakPath, "espeak-path", "", "espeak-ng executable")
	flag.StringVar(&ortLib, "ort-lib", "", "ONNX Runtime shared library (falls back to KITTENTTS_ORT_LIB)")
	flag.BoolVar(&debugLogs, "debug-logs", false, "enable debug logs from pipeline stages")
	flag.Parse()

	if debugLogs {
		slog.SetDefault(
			slog.New(
				slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}),
			),
		)
	}

	if runs < 1 {
		fatalf("--runs must be >= 1")
	}

	cfg := config.DefaultConfig()
	cfg.Paths.ModelDir = modelDir
	if ortLib != "" {
		cfg.Runtime.ORTLibraryPath = ortLib
	}

	layout := model.ResolveLayout(cfg.Paths.ModelDir, "", "", "")
	if err := layout.Check(); err != nil {
		fatalf("model layout: %v", err)
	}

	desc, err := model.LoadDescriptor(layout.ConfigPath)
	if err != nil {
		fatalf("load model config: %v", err)
	}

	store := voice.NewStore(layout.VoicesPath, desc.StyleDim)
	emb, err := store.Resolve(voiceName)
	if err != nil {
		fatalf("resolve voice: %v", err)
	}

	engine, err := pickEngine(engineName, espeakPath)
	if err != nil {
		fatalf("%v", err)
	}

	info, err := onnx.Bootstrap(cfg.Runtime)
	if err != nil {
		fatalf("detect onnx runtime: %v", err)
	}

	runner, err := onnx.NewRunner("speech", layout.ModelPath, onnx.RunnerConfig{
		LibraryPath: info.LibraryPath,
		APIVersion:  cfg.Runtime.ORTAPIVersion,
	})
	if err != nil {
		fatalf("open speech graph: %v", err)
	}
	defer runner.Close()

	p := pipeline{
		runner:     runner,
		phonemizer: phoneme.NewAdapter(engine),
		style:      emb.Data,
		speed:      speed,
		language:   language,
		sampleRate: desc.SampleRate,
	}

	ctx := context.Background()

	for i := range warmup {
		_, err := runOnce(ctx, p, input)
		if err != nil {
			fatalf("warmup run %d failed: %v", i+1, err)
		}
	}

	if cpuprofile != "" {
		f, err := os.Create(cpuprofile)
		if err != nil {
			fatalf("create cpuprofile: %v", err)
		}
		defer f.Close()

		err = pprof.StartCPUProfile(f)
		if err != nil {
			fatalf("start cpuprofile: %v", err)
		}

		defer pprof.StopCPUProfile()
	}

	var agg timings

	for i := range runs {
		t, err := runOnce(ctx, p, input)
		if err != nil {
			fatalf("profiled run %d failed: %v", i+1, err)
		}

		agg.prepare += t.prepare
		agg.generate += t.generate
		agg.encode += t.encode
		agg.total += t.total
		agg.samples = t.samples
		agg.tokens = t.tokens
	}

	div := float64(runs)
	avgPrepare := agg.prepare.Seconds() * 1000 / div
	avgGenerate := agg.generate.Seconds() * 1000 / div
	avgEncode := agg.encode.Seconds() * 1000 / div
	avgTotal := agg.total.Seconds() * 1000 / div

	audioMS := float64(agg.samples) * 1000.0 / float64(p.sampleRate)
	rtf := avgTotal / audioMS

	fmt.Printf("text: %q\n", input)
	fmt.Printf("runs: %d (warmup %d)\n", runs, warmup)
	fmt.Printf("engine: %s\n", p.phonemizer.EngineName())
	fmt.Printf("ort_library: %s\n", info.LibraryPath)
	fmt.Printf("voice: %s (%s)\n", emb.Voice, emb.Source)
	fmt.Printf("tokens: %d\n", agg.tokens)
	fmt.Printf("audio_ms: %.2f\n", audioMS)
	fmt.Printf("avg_prepare_ms: %.2f\n", avgPrepare)
	fmt.Printf("avg_generate_ms: %.2f\n", avgGenerate)
	fmt.Printf("avg_encode_ms: %.2f\n", avgEncode)
	fmt.Printf("avg_total_ms: %.2f\n", avgTotal)
	fmt.Printf("rtf: %.3f\n", rtf)

	if avgTotal > 0 {
		fmt.Printf("share_prepare_pct: %.2f\n", 100*avgPrepare/avgTotal)
		fmt.Printf("share_generate_pct: %.2f\n", 100*avgGenerate/avgTotal)
		fmt.Printf("share_encode_pct: %.2f\n", 100*avgEncode/avgTotal)
	}
}

// pickEngine mirrors the main binary's selection: an explicit engine is
// honored, auto prefers espeak-ng and falls back to the rule engine.
func pickEngine(name, espeakPath string) (phoneme.Engine, error) {
	engine, err := config.NormalizeEngine(name)
	if err != nil {
		return nil, err
	}

	switch engine {
	case config.EngineRule:
		return phoneme.NewRuleEngine(), nil
	case config.EngineEspeak:
		cmd := phoneme.NewCommandEngine(espeakPath)
		if !cmd.Available() {
			return nil, fmt.Errorf("espeak-ng not found in PATH")
		}

		return cmd, nil
	default:
		cmd := phoneme.NewCommandEngine(espeakPath)
		if cmd.Available() {
			return cmd, nil
		}

		return phoneme.NewRuleEngine(), nil
	}
}

func runOnce(ctx context.Context, p pipeline, input string) (timings, error) {
	var out timings
	startTotal := time.Now()

	var inputs map[string]*onnx.Tensor
	var tokens []int64
	var prepErr error

	pprof.Do(ctx, pprof.Labels("stage", "prepare"), func(ctx context.Context) {
		start := time.Now()
		inputs, tokens, prepErr = prepare(ctx, p, input)
		out.prepare = time.Since(start)
	})

	if prepErr != nil {
		return out, fmt.Errorf("prepare inputs: %w", prepErr)
	}

	var samples []float32
	var genErr error

	pprof.Do(ctx, pprof.Labels("stage", "generate"), func(ctx context.Context) {
		start := time.Now()

		outputs, err := p.runner.Run(ctx, inputs)
		if err != nil {
			genErr = err
			return
		}

		wave, err := synth.SelectWaveform(outputs)
		if err != nil {
			genErr = err
			return
		}

		samples = synth.TrimEdges(wave)
		out.generate = time.Since(start)
	})

	if genErr != nil {
		return out, fmt.Errorf("generate audio: %w", genErr)
	}

	var encErr error

	pprof.Do(ctx, pprof.Labels("stage", "encode"), func(context.Context) {
		start := time.Now()
		_, encErr = audio.EncodeWAV(samples, p.sampleRate)
		out.encode = time.Since(start)
	})

	if encErr != nil {
		return out, fmt.Errorf("encode wav: %w", encErr)
	}

	out.total = time.Since(startTotal)
	out.samples = len(samples)
	out.tokens = len(tokens)

	return out, nil
}

// prepare covers everything before inference: normalization, phonemization,
// tokenization and tensor assembly.
func prepare(ctx context.Context, p pipeline, input string) (map[string]*onnx.Tensor, []int64, error) {
	normalized, err := textpkg.Normalize(input)
	if err != nil {
		return nil, nil, err
	}

	seq, err := p.phonemizer.Phonemize(ctx, normalized, p.language)
	if err != nil {
		return nil, nil, err
	}

	tokens := tokenizer.Tokenize(seq.Symbols)

	inputs, err := synth.BuildInputs(tokens, p.style, p.speed)
	if err != nil {
		return nil, nil, err
	}

	return inputs, tokens, nil
}

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
