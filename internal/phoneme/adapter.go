package phoneme

import (
	"context"
	"strings"
	"unicode"

	"github.com/example/go-kitten-tts/internal/text"
)

// Adapter turns engine output into the canonical phoneme sequence. It is the
// only caller of an Engine.
type Adapter struct {
	engine Engine
}

func NewAdapter(engine Engine) *Adapter {
	return &Adapter{engine: engine}
}

// EngineName identifies the wrapped engine for logs and diagnostics.
func (a *Adapter) EngineName() string { return a.engine.Name() }

// Phonemize converts normalized text into a canonical phoneme sequence.
//
// The text is phonemized sentence by sentence. After each sentence the
// adapter appends its terminator as an explicit pause symbol (unless the
// engine already preserved it) and a word gap before the next sentence.
// Engine failures and empty results for non-empty input surface as a
// *PhonemizationError; there is no retry.
func (a *Adapter) Phonemize(ctx context.Context, normalized, language string) (Sequence, error) {
	sentences := text.SplitSentences(normalized)
	if len(sentences) == 0 {
		sentences = []string{normalized}
	}

	seq := Sequence{Language: language}

	for i, sentence := range sentences {
		raw, err := a.engine.PhonemizeRaw(ctx, sentence, language)
		if err != nil {
			return Sequence{}, &PhonemizationError{Language: language, Reason: "engine failed", Cause: err}
		}

		symbols := reencode(raw)
		if len(symbols) == 0 {
			return Sequence{}, &PhonemizationError{Language: language, Reason: "engine returned no phonemes for " + quoteSnippet(sentence)}
		}

		symbols = ensureTerminator(symbols, sentenceTerminator(sentence))

		if i > 0 {
			seq.Symbols = append(seq.Symbols, " ")
		}
		seq.Symbols = append(seq.Symbols, symbols...)
	}

	if len(seq.Symbols) == 0 {
		return Sequence{}, &PhonemizationError{Language: language, Reason: "empty phoneme sequence"}
	}

	return seq, nil
}

// reencode flattens a raw engine string into canonical single-rune symbols.
// Engine annotations without phonetic content are dropped: combining ties,
// zero-width joiners, espeak word separators, and parenthesized
// language-switch markers. Whitespace collapses into single word gaps.
// Anything else passes through one rune per symbol; runes outside the model
// alphabet are left for the tokenizer's reserved id.
func reencode(raw string) []string {
	symbols := make([]string, 0, len(raw))
	parenDepth := 0
	lastWasGap := true

	for _, r := range raw {
		switch r {
		case '(':
			parenDepth++
			continue
		case ')':
			if parenDepth > 0 {
				parenDepth--
				continue
			}
		}

		if parenDepth > 0 {
			continue
		}

		switch r {
		case '͡', '͜': // combining ties between affricate halves
			continue
		case '\u200b', '\u200c', '\u200d', '\ufeff': // zero-width space, non-joiner, joiner, no-break space
			continue
		case '_': // espeak phoneme separator mode
			continue
		}

		if unicode.IsSpace(r) {
			if !lastWasGap {
				symbols = append(symbols, " ")
				lastWasGap = true
			}

			continue
		}

		symbols = append(symbols, string(r))
		lastWasGap = false
	}

	// Trim a trailing word gap.
	if n := len(symbols); n > 0 && symbols[n-1] == " " {
		symbols = symbols[:n-1]
	}

	return symbols
}

// ensureTerminator appends the pause symbol for a sentence unless the engine
// already emitted it as the final symbol.
func ensureTerminator(symbols []string, term string) []string {
	for i := len(symbols) - 1; i >= 0; i-- {
		if symbols[i] == " " {
			continue
		}

		if symbols[i] == term {
			return symbols
		}

		break
	}

	return append(symbols, term)
}

// sentenceTerminator picks the pause symbol carried by a sentence: its
// trailing terminator when present, a full stop otherwise.
func sentenceTerminator(sentence string) string {
	trimmed := strings.TrimRight(sentence, " ")
	if trimmed == "" {
		return "."
	}

	switch trimmed[len(trimmed)-1] {
	case '!', '?', '.':
		return string(trimmed[len(trimmed)-1])
	}

	return "."
}

// quoteSnippet quotes a sentence fragment for error messages, truncating
// long input.
func quoteSnippet(s string) string {
	const max = 32
	if len(s) > max {
		s = s[:max] + "…"
	}

	return "\"" + s + "\""
}
