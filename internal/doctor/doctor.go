// Package doctor provides environment preflight checks for kittentts.
package doctor

import (
	"fmt"
	"io"

	"github.com/example/go-kitten-tts/internal/model"
	"github.com/example/go-kitten-tts/internal/tokenizer"
)

// PassMark and FailMark are the prefix symbols printed for each check result.
const (
	PassMark = "✓"
	FailMark = "✗"
)

// modelVocabSize is the symbol count the nano model was trained with. A
// different count means the baked-in table no longer matches the graph.
const modelVocabSize = 178

// VersionFunc returns a version string or an error if the component is unavailable.
type VersionFunc func() (string, error)

// Config holds injectable dependencies for each doctor check. A nil field
// skips its check.
type Config struct {
	// ORTLibrary locates the ONNX Runtime shared library and reports its path.
	ORTLibrary VersionFunc
	// Phonemizer describes the engine synthesis would use (e.g. the espeak-ng
	// path, or the builtin rule engine).
	Phonemizer VersionFunc
	// CheckLayout verifies the model directory holds a complete bundle.
	CheckLayout func() error
	// LoadDescriptor parses the model config.
	LoadDescriptor func() (model.Descriptor, error)
	// LoadVoices opens the voice archive and reports all names plus the
	// subset that degraded to placeholders.
	LoadVoices func() (names, placeholders []string, err error)
}

// Result collects the outcome of all checks.
type Result struct {
	failures []string
}

// Failed returns true if any check failed.
func (r *Result) Failed() bool { return len(r.failures) > 0 }

// Failures returns the list of failure messages.
func (r *Result) Failures() []string { return append([]string(nil), r.failures...) }

// AddFailure appends an external failure message to the result.
func (r *Result) AddFailure(msg string) { r.failures = append(r.failures, msg) }

func (r *Result) fail(msg string) { r.failures = append(r.failures, msg) }

// Run executes all configured checks and writes human-readable output to w.
// Each check line is prefixed with PassMark or FailMark.
func Run(cfg Config, w io.Writer) Result {
	var res Result

	// ---- ONNX Runtime library ---------------------------------------------
	if cfg.ORTLibrary == nil {
		fmt.Fprintf(w, "%s onnxruntime library: skipped\n", PassMark)
	} else {
		lib, err := cfg.ORTLibrary()
		if err != nil {
			res.fail(fmt.Sprintf("onnxruntime library: %v", err))
			fmt.Fprintf(w, "%s onnxruntime library: not found (%v)\n", FailMark, err)
		} else {
			fmt.Fprintf(w, "%s onnxruntime library: %s\n", PassMark, lib)
		}
	}

	// ---- phonemizer engine ------------------------------------------------
	if cfg.Phonemizer == nil {
		fmt.Fprintf(w, "%s phonemizer: skipped\n", PassMark)
	} else {
		engine, err := cfg.Phonemizer()
		if err != nil {
			res.fail(fmt.Sprintf("phonemizer: %v", err))
			fmt.Fprintf(w, "%s phonemizer: %v\n", FailMark, err)
		} else {
			fmt.Fprintf(w, "%s phonemizer: %s\n", PassMark, engine)
		}
	}

	// ---- model directory layout -------------------------------------------
	if cfg.CheckLayout == nil {
		fmt.Fprintf(w, "%s model layout: skipped\n", PassMark)
	} else if err := cfg.CheckLayout(); err != nil {
		res.fail(fmt.Sprintf("model layout: %v", err))
		fmt.Fprintf(w, "%s model layout: %v\n", FailMark, err)
	} else {
		fmt.Fprintf(w, "%s model layout: complete\n", PassMark)
	}

	// ---- model config -----------------------------------------------------
	if cfg.LoadDescriptor == nil {
		fmt.Fprintf(w, "%s model config: skipped\n", PassMark)
	} else if desc, err := cfg.LoadDescriptor(); err != nil {
		res.fail(fmt.Sprintf("model config: %v", err))
		fmt.Fprintf(w, "%s model config: %v\n", FailMark, err)
	} else {
		fmt.Fprintf(w, "%s model config: %d Hz, %d-dim style\n", PassMark, desc.SampleRate, desc.StyleDim)
	}

	// ---- voice archive ----------------------------------------------------
	if cfg.LoadVoices == nil {
		fmt.Fprintf(w, "%s voice archive: skipped\n", PassMark)
	} else if names, placeholders, err := cfg.LoadVoices(); err != nil {
		res.fail(fmt.Sprintf("voice archive: %v", err))
		fmt.Fprintf(w, "%s voice archive: %v\n", FailMark, err)
	} else if len(names) == 0 {
		res.fail("voice archive: contains no entries")
		fmt.Fprintf(w, "%s voice archive: contains no entries\n", FailMark)
	} else {
		fmt.Fprintf(w, "%s voice archive: %s\n", PassMark, voiceSummary(names, placeholders))
		for _, name := range placeholders {
			fmt.Fprintf(w, "  degraded to placeholder: %s\n", name)
		}
	}

	// ---- tokenizer vocabulary ---------------------------------------------
	if got := tokenizer.VocabSize(); got != modelVocabSize {
		res.fail(fmt.Sprintf("tokenizer: vocabulary has %d symbols, model expects %d", got, modelVocabSize))
		fmt.Fprintf(w, "%s tokenizer: vocabulary has %d symbols, model expects %d\n", FailMark, got, modelVocabSize)
	} else {
		fmt.Fprintf(w, "%s tokenizer: %d symbols\n", PassMark, modelVocabSize)
	}

	return res
}

// voiceSummary formats the archive listing for a passing check line.
func voiceSummary(names, placeholders []string) string {
	if len(placeholders) == 0 {
		return fmt.Sprintf("%d voices", len(names))
	}
	return fmt.Sprintf("%d voices, %d degraded to placeholder", len(names), len(placeholders))
}
