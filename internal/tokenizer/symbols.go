package tokenizer

// The symbol inventory matches the vocabulary the model was trained with.
// The table is ordered: pad, punctuation, Latin letters, IPA block. Ids are
// the position in that order, so reordering any of these strings changes the
// numeric contract with the model.
const (
	padSymbol   = "$"
	punctuation = ";:,.!?¡¿—…\"«»“” "
	letters     = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"
	lettersIPA  = "ɑɐɒæɓʙβɔɕçɗɖðʤəɘɚɛɜɝɞɟʄɡɠɢʛɦɧħɥʜɨɪʝɭɬɫɮʟɱɯɰŋɳɲɴøɵɸθœɶʘɹɺɾɻʀʁɽʂʃʈʧʉʊʋⱱʌɣɤʍχʎʏʑʐʒʔʡʕʢǀǁǂǃˈˌːˑʼʴʰʱʲʷˠˤ˞↓↑→↗↘'̩'ᵻ"
)

var symbolToID = buildSymbolTable()

// vocabCount counts table positions, not distinct runes: the training table
// keeps duplicate entries (the apostrophe appears twice), and the embedding
// matrix is sized by position count.
var vocabCount = len([]rune(padSymbol + punctuation + letters + lettersIPA))

func buildSymbolTable() map[rune]int64 {
	symbols := []rune(padSymbol + punctuation + letters + lettersIPA)

	m := make(map[rune]int64, len(symbols))
	for i, r := range symbols {
		// Later duplicates overwrite earlier ones, mirroring the reference
		// table construction.
		m[r] = int64(i)
	}

	return m
}
