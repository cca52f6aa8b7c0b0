package text

import (
	"errors"
	"strings"
	"unicode"
)

// ErrEmptyText is returned when the input text is empty or whitespace-only.
var ErrEmptyText = errors.New("text is empty")

// Normalize canonicalizes raw input text for phonemization.
// It expands common abbreviations and digit sequences into words, strips
// control characters, collapses whitespace runs (including line endings) to
// single spaces, and trims the edges. Case is preserved; characters the
// pipeline does not recognize pass through unchanged.
func Normalize(s string) (string, error) {
	s = expandAbbreviations(s)
	s = ExpandNumbers(s)
	s = stripControl(s)
	s = strings.Join(strings.Fields(s), " ")

	if s == "" {
		return "", ErrEmptyText
	}

	return s, nil
}

// abbreviations maps common written abbreviations to their spoken expansions.
// Matched verbatim, so the trailing period is consumed by the expansion.
var abbreviations = [][2]string{
	{"Mr.", "Mister"},
	{"Mrs.", "Missus"},
	{"Ms.", "Miss"},
	{"Dr.", "Doctor"},
	{"Prof.", "Professor"},
	{"St.", "Saint"},
	{"Jr.", "Junior"},
	{"Sr.", "Senior"},
	{"vs.", "versus"},
	{"etc.", "etcetera"},
	{"approx.", "approximately"},
	{"dept.", "department"},
	{"govt.", "government"},
	{"e.g.", "for example"},
	{"i.e.", "that is"},
}

func expandAbbreviations(s string) string {
	for _, pair := range abbreviations {
		s = strings.ReplaceAll(s, pair[0], pair[1])
	}

	return s
}

// stripControl replaces control characters with spaces so that adjacent words
// do not fuse when the character is removed.
func stripControl(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return ' '
		}

		return r
	}, s)
}
