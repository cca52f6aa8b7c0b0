package phoneme

import "context"

// Engine is the narrow capability the adapter requires from an external
// phonemizer: raw text in, raw phoneme string out. Implementations are free
// to emit engine-specific annotations; the adapter re-encodes the result
// into the canonical alphabet.
type Engine interface {
	// PhonemizeRaw converts text in the given language into the engine's
	// native phoneme notation.
	PhonemizeRaw(ctx context.Context, text, language string) (string, error)

	// Name identifies the engine in logs and diagnostics.
	Name() string
}
