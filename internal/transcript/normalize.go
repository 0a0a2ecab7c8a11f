// Package transcript recovers a PNR from noisy, multilingual speech transcripts.
package transcript

import (
	"strings"
	"unicode"
)

// digitWords maps spoken digit words to their digit glyph.
// Keys are lower-case; native-script spellings and common romanizations of
// the major Indian languages are included. Romanizations shared by several
// languages ("char", "aaru") are listed once, under the first. Romanizations
// that are also everyday English words ("no", "do", "at", "be") are left
// out: transcripts mix English in freely and a stray digit shifts the PNR.
var digitWords = map[string]string{
	// English
	"zero": "0", "one": "1", "two": "2", "three": "3", "four": "4",
	"five": "5", "six": "6", "seven": "7", "eight": "8", "nine": "9",

	// Hindi / Urdu
	"शून्य": "0", "shuny": "0", "shunya": "0",
	"एक": "1", "ek": "1",
	"दो": "2", "dau": "2",
	"तीन": "3", "teen": "3",
	"चार": "4", "char": "4", "chaar": "4",
	"पांच": "5", "paanch": "5", "panch": "5",
	"छह": "6", "chhah": "6", "chha": "6", "chhe": "6",
	"सात": "7", "saat": "7",
	"आठ": "8", "aath": "8", "ath": "8",
	"नौ": "9", "nau": "9",

	// Bengali
	"শূন্য": "0", "shunno": "0",
	"এক": "1", "æk": "1",
	"দুই": "2", "dui": "2",
	"তিন":  "3",
	"চার":  "4",
	"পাঁচ": "5", "pãch": "5",
	"ছয়": "6", "choy": "6",
	"সাত": "7",
	"আট":  "8", "aat": "8",
	"নয়": "9", "noy": "9",

	// Tamil
	"பூஜ்ஜியம்": "0", "poojiyam": "0",
	"ஒன்று": "1", "onru": "1", "ondru": "1",
	"இரண்டு": "2", "irandu": "2",
	"மூன்று": "3", "moondru": "3", "munru": "3",
	"நான்கு": "4", "naangu": "4", "nanku": "4",
	"ஐந்து": "5", "ainthu": "5",
	"ஆறு": "6", "aaru": "6",
	"ஏழு": "7", "ezhu": "7",
	"எட்டு": "8", "ettu": "8",
	"ஒன்பது": "9", "onbathu": "9",

	// Telugu
	"సున్న": "0", "sunna": "0",
	"ఒకటి": "1", "okati": "1",
	"రెండు": "2", "rendu": "2",
	"మూడు": "3", "moodu": "3",
	"నాలుగు": "4", "naalugu": "4",
	"ఐదు": "5", "aidu": "5",
	"ఆరు": "6",
	"ఏడు": "7", "yedu": "7",
	"ఎనిమిది": "8", "enimidi": "8",
	"తొమ్మిది": "9", "tommidi": "9",

	// Marathi
	"दोन": "2", "doan": "2",
	"पाच": "5", "paach": "5",
	"सहा": "6", "saha": "6",
	"नऊ": "9",

	// Gujarati
	"શૂન્ય": "0",
	"એક":    "1",
	"બે":    "2", "bey": "2",
	"ત્રણ": "3", "tran": "3",
	"ચાર":  "4",
	"પાંચ": "5",
	"છ":    "6",
	"સાત":  "7",
	"આઠ":   "8",
	"નવ":   "9", "nav": "9",

	// Kannada
	"ಸೊನ್ನೆ": "0", "sonne": "0",
	"ಒಂದು": "1", "ondu": "1",
	"ಎರಡು": "2", "eradu": "2",
	"ಮೂರು": "3", "mooru": "3",
	"ನಾಲ್ಕು": "4", "naalku": "4",
	"ಐದು": "5",
	"ಆರು": "6",
	"ಏಳು": "7", "elu": "7",
	"ಎಂಟು": "8", "entu": "8",
	"ಒಂಬತ್ತು": "9", "ombattu": "9",

	// Malayalam
	"പൂജ്യം": "0", "poojyam": "0",
	"ഒന്ന്": "1", "onnu": "1",
	"രണ്ട്": "2", "randu": "2",
	"മൂന്ന്": "3", "moonnu": "3",
	"നാല്": "4", "naalu": "4",
	"അഞ്ച്": "5", "anchu": "5",
	"ആറ്":    "6",
	"ഏഴ്":    "7",
	"എട്ട്":  "8",
	"ഒമ്പത്": "9", "ombathu": "9",

	// Punjabi
	"ਸਿਫ਼ਰ": "0", "sifar": "0",
	"ਇੱਕ": "1", "ikk": "1",
	"ਦੋ":   "2",
	"ਤਿੰਨ": "3", "tinn": "3",
	"ਚਾਰ": "4",
	"ਪੰਜ": "5", "panj": "5",
	"ਛੇ":  "6",
	"ਸੱਤ": "7", "satt": "7",
	"ਅੱਠ": "8", "atth": "8",
	"ਨੌਂ": "9", "naun": "9",
}

// digitZeros lists the code point of zero for each script whose native
// numerals speech engines emit. Each block is ten contiguous digits.
var digitZeros = []rune{
	0x0660, // Arabic-Indic
	0x06F0, // Extended Arabic-Indic (Urdu)
	0x0966, // Devanagari
	0x09E6, // Bengali
	0x0A66, // Gurmukhi
	0x0AE6, // Gujarati
	0x0B66, // Oriya
	0x0BE6, // Tamil
	0x0C66, // Telugu
	0x0CE6, // Kannada
	0x0D66, // Malayalam
}

// CleanWord strips punctuation and symbols from a token and lower-cases it.
// Letters, combining marks and digits are kept so that native-script words
// keep their vowel signs.
func CleanWord(w string) string {
	var b strings.Builder
	b.Grow(len(w))
	for _, r := range w {
		if unicode.IsPunct(r) || unicode.IsSymbol(r) {
			continue
		}
		b.WriteRune(r)
	}
	return strings.ToLower(b.String())
}

// DigitWord returns the digit glyph for a spoken digit token.
// The whole token must match; digit words inside longer words do not count.
func DigitWord(token string) (string, bool) {
	d, ok := digitWords[CleanWord(token)]
	return d, ok
}

// NormalizeDigits replaces every whitespace-separated token that is a spoken
// digit word with its digit. Other tokens pass through unchanged and the
// result is re-joined with single spaces.
func NormalizeDigits(text string) string {
	words := strings.Fields(text)
	for i, w := range words {
		if d, ok := DigitWord(w); ok {
			words[i] = d
		}
	}
	return strings.Join(words, " ")
}

// FoldDigits rewrites native-script decimal numerals as ASCII digits.
func FoldDigits(text string) string {
	return strings.Map(func(r rune) rune {
		if r < 0x80 {
			return r
		}
		for _, zero := range digitZeros {
			if r >= zero && r <= zero+9 {
				return '0' + (r - zero)
			}
		}
		return r
	}, text)
}
