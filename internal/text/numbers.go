package text

import (
	"strconv"
	"strings"
)

// maxSpokenDigits bounds the integer part read as a cardinal; longer runs are
// read digit by digit instead.
const maxSpokenDigits = 15

var onesWords = [...]string{
	"zero", "one", "two", "three", "four", "five", "six", "seven", "eight",
	"nine", "ten", "eleven", "twelve", "thirteen", "fourteen", "fifteen",
	"sixteen", "seventeen", "eighteen", "nineteen",
}

var tensWords = [...]string{
	"", "", "twenty", "thirty", "forty", "fifty", "sixty", "seventy",
	"eighty", "ninety",
}

var scaleWords = [...]string{"", "thousand", "million", "billion", "trillion"}

// ExpandNumbers replaces every decimal number literal in s with its English
// words. Integer parts are read as cardinals ("42" -> "forty two"), fractional
// digits are read one by one ("3.14" -> "three point one four"), and a minus
// sign directly in front of a number at a word boundary becomes "minus".
// Runs with leading zeros or longer than maxSpokenDigits are read digit by
// digit. Everything else passes through unchanged.
func ExpandNumbers(s string) string {
	var out strings.Builder
	out.Grow(len(s))

	for i := 0; i < len(s); {
		c := s[i]

		if c == '-' && i+1 < len(s) && isASCIIDigit(s[i+1]) && atWordBoundary(s, i) {
			out.WriteString("minus ")
			i++

			continue
		}

		if !isASCIIDigit(c) {
			out.WriteByte(c)
			i++

			continue
		}

		j := i
		for j < len(s) && isASCIIDigit(s[j]) {
			j++
		}

		intPart := s[i:j]
		fracPart := ""

		if j+1 < len(s) && s[j] == '.' && isASCIIDigit(s[j+1]) {
			k := j + 1
			for k < len(s) && isASCIIDigit(s[k]) {
				k++
			}

			fracPart = s[j+1 : k]
			j = k
		}

		out.WriteString(numberPhrase(intPart, fracPart))
		i = j
	}

	return out.String()
}

func numberPhrase(intDigits, fracDigits string) string {
	var parts []string

	switch {
	case len(intDigits) > maxSpokenDigits,
		len(intDigits) > 1 && intDigits[0] == '0':
		parts = append(parts, digitWords(intDigits)...)
	default:
		n, err := strconv.ParseUint(intDigits, 10, 64)
		if err != nil {
			parts = append(parts, digitWords(intDigits)...)
		} else {
			parts = append(parts, cardinalWords(n))
		}
	}

	if fracDigits != "" {
		parts = append(parts, "point")
		parts = append(parts, digitWords(fracDigits)...)
	}

	return strings.Join(parts, " ")
}

// cardinalWords spells a non-negative integer as English words, grouping by
// thousands up to the trillions.
func cardinalWords(n uint64) string {
	if n == 0 {
		return "zero"
	}

	var groups []uint64
	for n > 0 {
		groups = append(groups, n%1000)
		n /= 1000
	}

	var parts []string

	for i := len(groups) - 1; i >= 0; i-- {
		g := int(groups[i])
		if g == 0 {
			continue
		}

		w := smallCardinal(g)
		if i > 0 {
			w += " " + scaleWords[i]
		}

		parts = append(parts, w)
	}

	return strings.Join(parts, " ")
}

// smallCardinal spells n in [0, 999].
func smallCardinal(n int) string {
	switch {
	case n < 20:
		return onesWords[n]
	case n < 100:
		w := tensWords[n/10]
		if n%10 != 0 {
			w += " " + onesWords[n%10]
		}

		return w
	default:
		w := onesWords[n/100] + " hundred"
		if n%100 != 0 {
			w += " " + smallCardinal(n%100)
		}

		return w
	}
}

func digitWords(digits string) []string {
	words := make([]string, 0, len(digits))
	for i := 0; i < len(digits); i++ {
		words = append(words, onesWords[digits[i]-'0'])
	}

	return words
}

func isASCIIDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

// atWordBoundary reports whether the byte at position i starts a word, i.e.
// it is at the beginning of the string or preceded by whitespace or an
// opening bracket.
func atWordBoundary(s string, i int) bool {
	if i == 0 {
		return true
	}

	switch s[i-1] {
	case ' ', '\t', '\n', '\r', '(', '[':
		return true
	}

	return false
}
