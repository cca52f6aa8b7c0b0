package phoneme

import (
	"context"
	"fmt"
	"strings"
	"unicode"
)

// RuleEngine is a dependency-free English grapheme-to-phoneme engine: a
// dictionary of frequent words backed by longest-match spelling rules. It
// exists so synthesis works out of the box; an external espeak-ng engine
// gives better pronunciations when installed.
type RuleEngine struct{}

func NewRuleEngine() *RuleEngine {
	return &RuleEngine{}
}

func (e *RuleEngine) Name() string { return "rule" }

// PhonemizeRaw converts English text into an IPA string. Words resolve
// through the dictionary first and fall back to spelling rules; punctuation
// passes through so the adapter can keep pause information.
func (e *RuleEngine) PhonemizeRaw(_ context.Context, text, language string) (string, error) {
	if language != "" && !strings.HasPrefix(language, "en") {
		return "", fmt.Errorf("rule engine supports English only, got %q", language)
	}

	var out strings.Builder

	for _, tok := range splitTokens(text) {
		if isPunctToken(tok) {
			out.WriteString(tok)
			continue
		}

		if out.Len() > 0 {
			out.WriteByte(' ')
		}

		lower := strings.ToLower(tok)
		if ipa, ok := wordIPA[lower]; ok {
			out.WriteString(ipa)
			continue
		}

		out.WriteString(applySpellingRules(lower))
	}

	return out.String(), nil
}

// splitTokens separates text into word tokens (letters plus apostrophes) and
// single-rune punctuation tokens; everything else is a separator.
func splitTokens(text string) []string {
	var tokens []string
	var current strings.Builder

	flush := func() {
		if current.Len() > 0 {
			tokens = append(tokens, current.String())
			current.Reset()
		}
	}

	for _, r := range text {
		switch {
		case unicode.IsLetter(r) || r == '\'':
			current.WriteRune(r)
		case strings.ContainsRune(".,!?;:—", r):
			flush()
			tokens = append(tokens, string(r))
		default:
			flush()
		}
	}

	flush()

	return tokens
}

func isPunctToken(tok string) bool {
	return len([]rune(tok)) == 1 && strings.ContainsRune(".,!?;:—", []rune(tok)[0])
}

// applySpellingRules converts a lowercase word using longest-match grapheme
// rules, trying four-character sequences down to single characters.
func applySpellingRules(word string) string {
	var out strings.Builder

	for i := 0; i < len(word); {
		matched := false

		for length := 4; length >= 2; length-- {
			if i+length > len(word) {
				continue
			}

			if ipa, ok := spellingRules[word[i:i+length]]; ok {
				out.WriteString(ipa)
				i += length
				matched = true

				break
			}
		}

		if !matched {
			if ipa, ok := spellingRules[word[i:i+1]]; ok {
				out.WriteString(ipa)
			}
			i++
		}
	}

	return out.String()
}

// spellingRules maps English grapheme sequences to IPA, longest first.
var spellingRules = map[string]string{
	"tion": "ʃən",
	"sion": "ʒən",
	"ough": "ʌf",
	"ight": "aɪt",
	"eous": "iəs",
	"ious": "iəs",
	"ture": "tʃɚ",
	"sure": "ʃɚ",
	"ould": "ʊd",
	"ound": "aʊnd",
	"ence": "əns",
	"ance": "əns",
	"ment": "mənt",
	"ness": "nəs",
	"able": "əbəl",
	"ible": "əbəl",
	"ally": "əli",

	"ful": "fəl",
	"ing": "ɪŋ",
	"ght": "t",
	"tch": "tʃ",
	"dge": "dʒ",
	"sch": "sk",
	"chr": "kɹ",
	"que": "k",

	"ph": "f",
	"th": "θ",
	"sh": "ʃ",
	"ch": "tʃ",
	"wh": "w",
	"wr": "ɹ",
	"kn": "n",
	"gn": "n",
	"ck": "k",
	"ng": "ŋ",
	"gh": "",
	"ee": "i",
	"ea": "i",
	"oo": "u",
	"ou": "aʊ",
	"ow": "oʊ",
	"ai": "eɪ",
	"ay": "eɪ",
	"oi": "ɔɪ",
	"oy": "ɔɪ",
	"au": "ɔ",
	"aw": "ɔ",
	"er": "ɚ",
	"ir": "ɝ",
	"ur": "ɝ",
	"ar": "ɑɹ",
	"or": "ɔɹ",
	"le": "əl",

	"a": "æ",
	"b": "b",
	"c": "k",
	"d": "d",
	"e": "ɛ",
	"f": "f",
	"g": "ɡ",
	"h": "h",
	"i": "ɪ",
	"j": "dʒ",
	"k": "k",
	"l": "l",
	"m": "m",
	"n": "n",
	"o": "ɑ",
	"p": "p",
	"q": "k",
	"r": "ɹ",
	"s": "s",
	"t": "t",
	"u": "ʌ",
	"v": "v",
	"w": "w",
	"x": "ks",
	"y": "j",
	"z": "z",
}

// wordIPA covers the most frequent English words, which spelling rules would
// otherwise mangle. A full pronunciation dictionary would be loaded from
// disk; this inline set keeps the engine self-contained.
var wordIPA = map[string]string{
	"the":     "ðə",
	"a":       "ə",
	"an":      "ən",
	"and":     "ænd",
	"or":      "ɔɹ",
	"is":      "ɪz",
	"are":     "ɑɹ",
	"was":     "wɑz",
	"were":    "wɝ",
	"be":      "bi",
	"been":    "bɪn",
	"have":    "hæv",
	"has":     "hæz",
	"had":     "hæd",
	"do":      "du",
	"does":    "dʌz",
	"did":     "dɪd",
	"will":    "wɪl",
	"would":   "wʊd",
	"could":   "kʊd",
	"should":  "ʃʊd",
	"may":     "meɪ",
	"might":   "maɪt",
	"can":     "kæn",
	"must":    "mʌst",
	"i":       "aɪ",
	"you":     "ju",
	"he":      "hi",
	"she":     "ʃi",
	"it":      "ɪt",
	"we":      "wi",
	"they":    "ðeɪ",
	"me":      "mi",
	"him":     "hɪm",
	"her":     "hɝ",
	"us":      "ʌs",
	"them":    "ðɛm",
	"my":      "maɪ",
	"your":    "jɔɹ",
	"his":     "hɪz",
	"its":     "ɪts",
	"our":     "aʊɚ",
	"their":   "ðɛɹ",
	"this":    "ðɪs",
	"that":    "ðæt",
	"these":   "ðiz",
	"those":   "ðoʊz",
	"what":    "wʌt",
	"which":   "wɪtʃ",
	"who":     "hu",
	"where":   "wɛɹ",
	"when":    "wɛn",
	"why":     "waɪ",
	"how":     "haʊ",
	"not":     "nɑt",
	"no":      "noʊ",
	"yes":     "jɛs",
	"to":      "tu",
	"of":      "ʌv",
	"in":      "ɪn",
	"on":      "ɑn",
	"at":      "æt",
	"by":      "baɪ",
	"for":     "fɔɹ",
	"with":    "wɪθ",
	"from":    "fɹʌm",
	"about":   "əbaʊt",
	"into":    "ɪntu",
	"through": "θɹu",
	"after":   "æftɚ",
	"before":  "bɪfɔɹ",
	"between": "bɪtwin",
	"under":   "ʌndɚ",
	"over":    "oʊvɚ",
	"up":      "ʌp",
	"down":    "daʊn",
	"out":     "aʊt",
	"off":     "ɔf",
	"if":      "ɪf",
	"then":    "ðɛn",
	"than":    "ðæn",
	"so":      "soʊ",
	"just":    "dʒʌst",
	"also":    "ɔlsoʊ",
	"very":    "vɛɹi",
	"well":    "wɛl",
	"here":    "hiɹ",
	"there":   "ðɛɹ",
	"now":     "naʊ",
	"only":    "oʊnli",
	"still":   "stɪl",
	"even":    "ivən",
	"again":   "əɡɛn",
	"good":    "ɡʊd",
	"new":     "nu",
	"first":   "fɝst",
	"last":    "læst",
	"long":    "lɔŋ",
	"great":   "ɡɹeɪt",
	"little":  "lɪtəl",
	"own":     "oʊn",
	"other":   "ʌðɚ",
	"old":     "oʊld",
	"right":   "ɹaɪt",
	"big":     "bɪɡ",
	"high":    "haɪ",
	"small":   "smɔl",
	"large":   "lɑɹdʒ",
	"same":    "seɪm",
	"say":     "seɪ",
	"said":    "sɛd",
	"get":     "ɡɛt",
	"make":    "meɪk",
	"go":      "ɡoʊ",
	"see":     "si",
	"know":    "noʊ",
	"take":    "teɪk",
	"come":    "kʌm",
	"think":   "θɪŋk",
	"look":    "lʊk",
	"want":    "wɑnt",
	"give":    "ɡɪv",
	"use":     "juz",
	"find":    "faɪnd",
	"tell":    "tɛl",
	"ask":     "æsk",
	"work":    "wɝk",
	"feel":    "fil",
	"try":     "tɹaɪ",
	"leave":   "liv",
	"call":    "kɔl",
	"need":    "nid",
	"keep":    "kip",
	"let":     "lɛt",
	"begin":   "bɪɡɪn",
	"show":    "ʃoʊ",
	"hear":    "hiɹ",
	"play":    "pleɪ",
	"run":     "ɹʌn",
	"move":    "muv",
	"live":    "lɪv",
	"believe": "bɪliv",
	"hold":    "hoʊld",
	"bring":   "bɹɪŋ",
	"write":   "ɹaɪt",
	"sit":     "sɪt",
	"stand":   "stænd",
	"lose":    "luz",
	"pay":     "peɪ",
	"meet":    "mit",
	"set":     "sɛt",
	"learn":   "lɝn",
	"change":  "tʃeɪndʒ",
	"lead":    "lid",
	"watch":   "wɑtʃ",
	"follow":  "fɑloʊ",
	"stop":    "stɑp",
	"create":  "kɹieɪt",
	"speak":   "spik",
	"read":    "ɹid",
	"spend":   "spɛnd",
	"grow":    "ɡɹoʊ",
	"open":    "oʊpən",
	"walk":    "wɔk",
	"win":     "wɪn",
	"offer":   "ɔfɚ",
	"love":    "lʌv",
	"buy":     "baɪ",
	"wait":    "weɪt",
	"serve":   "sɝv",
	"send":    "sɛnd",
	"expect":  "ɪkspɛkt",
	"build":   "bɪld",
	"stay":    "steɪ",
	"fall":    "fɔl",
	"cut":     "kʌt",
	"reach":   "ɹitʃ",
	"remain":  "ɹɪmeɪn",
	"hello":   "hɛloʊ",
	"okay":    "oʊkeɪ",
	"sure":    "ʃʊɹ",
	"thanks":  "θæŋks",
	"sorry":   "sɑɹi",
	"please":  "pliz",
}
