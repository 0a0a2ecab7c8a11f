// Package speech wraps the speech-to-text and text-to-speech services and
// the language bookkeeping between them.
package speech

import (
	"strings"
	"unicode"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// DefaultLanguage is used whenever no better guess exists.
const DefaultLanguage = "english"

// languageCodes maps ISO 639-1 codes reported by the transcriber to the
// language names used across the pipeline.
var languageCodes = map[string]string{
	"en": "english",
	"hi": "hindi",
	"ur": "urdu",
	"pa": "punjabi",
	"bn": "bengali",
	"te": "telugu",
	"mr": "marathi",
	"ta": "tamil",
	"gu": "gujarati",
	"kn": "kannada",
	"ml": "malayalam",
}

var languageNames = func() map[string]string {
	m := make(map[string]string, len(languageCodes))
	for code, name := range languageCodes {
		m[name] = code
	}
	return m
}()

// LanguageName normalizes a transcriber language value, which may be an
// ISO code ("hi") or a name ("Hindi"), to a lower-case language name.
// Unknown values pass through lower-cased.
func LanguageName(v string) string {
	v = strings.ToLower(strings.TrimSpace(v))
	if v == "" {
		return DefaultLanguage
	}
	if name, ok := languageCodes[v]; ok {
		return name
	}
	if _, ok := languageNames[v]; ok {
		return v
	}
	if tag, err := language.Parse(v); err == nil {
		if name := display.English.Languages().Name(tag); name != "" {
			return strings.ToLower(name)
		}
	}
	return v
}

// LanguageCode returns the ISO code for a language name, "en" if unknown.
func LanguageCode(name string) string {
	if code, ok := languageNames[strings.ToLower(strings.TrimSpace(name))]; ok {
		return code
	}
	return "en"
}

// Locale returns the BCP 47 tag used to pick a synthesis voice, e.g. "hi-IN".
func Locale(name string) string {
	tag, err := language.Parse(LanguageCode(name) + "-IN")
	if err != nil {
		return "en-IN"
	}
	return tag.String()
}

// scripts maps Unicode scripts to the language most likely written in them.
// Devanagari is shared by Hindi and Marathi; Hindi wins.
var scripts = []struct {
	table *unicode.RangeTable
	name  string
}{
	{unicode.Devanagari, "hindi"},
	{unicode.Bengali, "bengali"},
	{unicode.Gurmukhi, "punjabi"},
	{unicode.Gujarati, "gujarati"},
	{unicode.Tamil, "tamil"},
	{unicode.Telugu, "telugu"},
	{unicode.Kannada, "kannada"},
	{unicode.Malayalam, "malayalam"},
	{unicode.Arabic, "urdu"},
}

// DetectScript guesses a language from the dominant script of text.
// Latin text, and text with no letters, yields DefaultLanguage.
func DetectScript(text string) string {
	counts := make([]int, len(scripts))
	latin := 0
	for _, r := range text {
		if !unicode.IsLetter(r) && !unicode.Is(unicode.Mn, r) && !unicode.Is(unicode.Mc, r) {
			continue
		}
		if unicode.Is(unicode.Latin, r) {
			latin++
			continue
		}
		for i, s := range scripts {
			if unicode.Is(s.table, r) {
				counts[i]++
				break
			}
		}
	}

	best, bestCount := DefaultLanguage, latin
	for i, n := range counts {
		if n > bestCount {
			best, bestCount = scripts[i].name, n
		}
	}
	return best
}

// RefineLanguage prefers the script of the transcript over the transcriber's
// guess when the script points to a different non-English language. Mixed
// Hindi/English speech is often reported as English.
func RefineLanguage(reported, text string) string {
	reported = LanguageName(reported)
	if detected := DetectScript(text); detected != DefaultLanguage && detected != reported {
		return detected
	}
	return reported
}
