// Package synth orchestrates a single text-to-speech request end to end:
// normalization, phonemization, tokenization, voice lookup, speech graph
// inference and edge trimming. The package owns no I/O beyond the graph
// runner it is handed; WAV encoding and delivery stay with the callers.
package synth

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"

	"github.com/example/go-kitten-tts/internal/model"
	"github.com/example/go-kitten-tts/internal/onnx"
	"github.com/example/go-kitten-tts/internal/phoneme"
	"github.com/example/go-kitten-tts/internal/text"
	"github.com/example/go-kitten-tts/internal/tokenizer"
	"github.com/example/go-kitten-tts/internal/voice"
)

// DefaultLanguage is applied when a request does not name a phonemizer
// language.
const DefaultLanguage = "en-us"

// ErrInvalidSpeed rejects speed factors the model cannot honor. Speed scales
// phoneme durations inside the graph, so zero, negative and non-finite
// values have no meaningful interpretation.
var ErrInvalidSpeed = errors.New("invalid speed")

// InferenceError wraps a failure inside the speech graph, tagged with the
// graph name so multi-model setups stay diagnosable.
type InferenceError struct {
	Graph string
	Err   error
}

func (e *InferenceError) Error() string {
	return fmt.Sprintf("inference failed for graph %q: %v", e.Graph, e.Err)
}

func (e *InferenceError) Unwrap() error { return e.Err }

// VoiceResolver is the slice of the voice store the service needs.
type VoiceResolver interface {
	Resolve(name string) (voice.Embedding, error)
}

// Request describes one synthesis job. Text is raw user input; the service
// normalizes it before phonemization.
type Request struct {
	Text     string
	Voice    string
	Speed    float64
	Language string
}

// Result carries the synthesized waveform plus the metadata callers report
// back to users. Samples are trimmed but otherwise unprocessed; gain and
// fade shaping are left to the audio hooks.
type Result struct {
	Samples     []float32
	SampleRate  int
	Voice       string
	VoiceSource voice.Source
	TokenCount  int
}

// Options wires the service's collaborators. Runner, Voices and Phonemizer
// are mandatory; a zero Descriptor falls back to the model defaults.
type Options struct {
	Runner     onnx.GraphRunner
	Voices     VoiceResolver
	Phonemizer *phoneme.Adapter
	Descriptor model.Descriptor
}

// Service converts text into trimmed waveforms. It is safe for concurrent
// use; runs against the underlying graph are serialized because ONNX Runtime
// sessions are not guaranteed re-entrant under every provider.
type Service struct {
	runner     onnx.GraphRunner
	voices     VoiceResolver
	phonemizer *phoneme.Adapter
	desc       model.Descriptor

	runMu sync.Mutex
}

// NewService validates the wiring and returns a ready service. The caller
// keeps ownership of the runner and closes it after the service is done.
func NewService(opts Options) (*Service, error) {
	if opts.Runner == nil {
		return nil, errors.New("synth: nil graph runner")
	}
	if opts.Voices == nil {
		return nil, errors.New("synth: nil voice resolver")
	}
	if opts.Phonemizer == nil {
		return nil, errors.New("synth: nil phonemizer")
	}

	desc := opts.Descriptor
	if desc.SampleRate <= 0 {
		desc.SampleRate = model.DefaultSampleRate
	}
	if desc.StyleDim <= 0 {
		desc.StyleDim = model.DefaultStyleDim
	}

	return &Service{
		runner:     opts.Runner,
		voices:     opts.Voices,
		phonemizer: opts.Phonemizer,
		desc:       desc,
	}, nil
}

// SampleRate returns the rate of every waveform the service produces.
func (s *Service) SampleRate() int { return s.desc.SampleRate }

// Synthesize runs the full pipeline for one request. Text errors surface as
// text.ErrEmptyText, unknown voices as *voice.UnknownVoiceError and graph
// failures as *InferenceError, so callers can map them onto exit codes or
// HTTP statuses.
func (s *Service) Synthesize(ctx context.Context, req Request) (Result, error) {
	if err := validateSpeed(req.Speed); err != nil {
		return Result{}, err
	}

	language := req.Language
	if language == "" {
		language = DefaultLanguage
	}

	normalized, err := text.Normalize(req.Text)
	if err != nil {
		return Result{}, err
	}

	seq, err := s.phonemizer.Phonemize(ctx, normalized, language)
	if err != nil {
		return Result{}, err
	}

	tokens := tokenizer.Tokenize(seq.Symbols)

	emb, err := s.voices.Resolve(req.Voice)
	if err != nil {
		return Result{}, err
	}

	inputs, err := BuildInputs(tokens, emb.Data, req.Speed)
	if err != nil {
		return Result{}, err
	}

	s.runMu.Lock()
	outputs, err := s.runner.Run(ctx, inputs)
	s.runMu.Unlock()
	if err != nil {
		return Result{}, &InferenceError{Graph: s.runner.Name(), Err: err}
	}

	wave, err := SelectWaveform(outputs)
	if err != nil {
		return Result{}, &InferenceError{Graph: s.runner.Name(), Err: err}
	}

	return Result{
		Samples:     TrimEdges(wave),
		SampleRate:  s.desc.SampleRate,
		Voice:       emb.Voice,
		VoiceSource: emb.Source,
		TokenCount:  len(tokens),
	}, nil
}

func validateSpeed(speed float64) error {
	if math.IsNaN(speed) || math.IsInf(speed, 0) || speed <= 0 {
		return fmt.Errorf("%w: %v", ErrInvalidSpeed, speed)
	}
	return nil
}
