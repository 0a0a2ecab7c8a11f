package transcript

import (
	"regexp"
	"strings"

	"github.com/raphaelgruber/railvoice/internal/models"
)

// fillers are removed by literal substring replacement after lower-casing.
// None of them contains a digit, so removal order cannot change the digits.
var fillers = []string{
	"pause", "wait", "uh", "um",
	"है", "ha", "hain", "ka", "ki", "ke",
}

var digitRun = regexp.MustCompile(`[0-9]+`)

// Prepare runs the normalization steps that precede digit scanning: spoken
// digits become glyphs, native numerals become ASCII, the text is
// lower-cased and filler words are blanked out.
func Prepare(text string) string {
	text = FoldDigits(NormalizeDigits(text))
	text = strings.ToLower(text)
	for _, f := range fillers {
		text = strings.ReplaceAll(text, f, " ")
	}
	return text
}

// DigitRuns returns the maximal runs of digits in text, in order.
func DigitRuns(text string) []string {
	return digitRun.FindAllString(text, -1)
}

// ExtractPNR recovers a ten-digit PNR from a raw transcript.
//
// A run of exactly ten digits wins. Otherwise all runs are concatenated in
// order and the first ten digits are returned, which joins a number that was
// spoken in groups. Fewer than ten digits in total yields ErrNoPNRFound.
func ExtractPNR(text string) (string, error) {
	runs := DigitRuns(Prepare(text))

	for _, run := range runs {
		if len(run) == models.PNRLength {
			return run, nil
		}
	}

	all := strings.Join(runs, "")
	if len(all) >= models.PNRLength {
		return all[:models.PNRLength], nil
	}

	return "", models.ErrNoPNRFound
}
