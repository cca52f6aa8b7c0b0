// Package phoneme converts normalized text into the canonical phoneme
// symbol stream the synthesis model consumes.
//
// Actual grapheme-to-phoneme conversion is delegated to an Engine; the
// Adapter owns the symbol contract on top of it: re-encoding engine output
// into the canonical alphabet, stripping engine annotations the vocabulary
// does not carry, and inserting pause symbols at sentence boundaries.
package phoneme

import "fmt"

// Sequence is an ordered run of canonical phoneme symbols produced from one
// normalized text, tagged with the language it was phonemized for. Each
// symbol is a single rune from the model alphabet; symbols the alphabet does
// not cover survive re-encoding and are mapped to the reserved id by the
// tokenizer downstream.
type Sequence struct {
	Language string
	Symbols  []string
}

// PhonemizationError reports that the phonemizer engine failed or produced
// an empty result for non-empty input. Phonemization is deterministic, so
// the failure is fatal for the request and retrying cannot help.
type PhonemizationError struct {
	Language string
	Reason   string
	Cause    error
}

func (e *PhonemizationError) Error() string {
	reason := e.Reason
	if reason == "" {
		reason = "phonemization failed"
	}

	if e.Cause != nil {
		return fmt.Sprintf("phonemize (lang=%s): %s: %v", e.Language, reason, e.Cause)
	}

	return fmt.Sprintf("phonemize (lang=%s): %s", e.Language, reason)
}

func (e *PhonemizationError) Unwrap() error { return e.Cause }
