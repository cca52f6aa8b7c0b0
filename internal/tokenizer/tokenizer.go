// Package tokenizer maps phoneme symbols onto the fixed integer vocabulary
// of the synthesis model.
//
// The mapping is a static table baked into the build; there is no trained
// tokenizer model to load. Tokenize is total: unknown symbols map onto a
// reserved id instead of failing, so phonemizer drift degrades output
// quality rather than aborting synthesis.
package tokenizer

// Reserved ids shared with the model's training convention. The pad id
// doubles as the sequence boundary marker and as the unknown-symbol id.
const (
	PadID      int64 = 0
	BoundaryID int64 = 0
	UnknownID  int64 = 0
)

// Tokenize converts a phoneme sequence into model token ids and wraps the
// result with the start and end boundary id.
//
// The boundary wrap is part of the model contract, not a formatting nicety:
// sequences without it push the model into a degraded regime that produces
// distorted or silent audio. Every returned id lies in [0, VocabSize()) and
// len(result) == len(phonemes) + 2.
func Tokenize(phonemes []string) []int64 {
	tokens := make([]int64, 0, len(phonemes)+2)
	tokens = append(tokens, BoundaryID)

	for _, p := range phonemes {
		tokens = append(tokens, symbolID(p))
	}

	return append(tokens, BoundaryID)
}

// SymbolID returns the vocabulary id for a single-rune phoneme symbol and
// whether the symbol is part of the vocabulary.
func SymbolID(symbol string) (int64, bool) {
	rs := []rune(symbol)
	if len(rs) != 1 {
		return UnknownID, false
	}

	id, ok := symbolToID[rs[0]]
	if !ok {
		return UnknownID, false
	}

	return id, true
}

// Known reports whether r is part of the model vocabulary.
func Known(r rune) bool {
	_, ok := symbolToID[r]
	return ok
}

// VocabSize returns the number of entries in the model's symbol table.
func VocabSize() int {
	return vocabCount
}

func symbolID(symbol string) int64 {
	id, ok := SymbolID(symbol)
	if !ok {
		return UnknownID
	}

	return id
}
