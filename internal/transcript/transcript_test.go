package transcript

import (
	"errors"
	"testing"

	"github.com/raphaelgruber/railvoice/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeDigits(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"english", "two six zero", "2 6 0"},
		{"case insensitive", "TWO Six", "2 6"},
		{"punctuation stripped", "two, six. nine!", "2 6 9"},
		{"hindi script", "दो छह शून्य", "2 6 0"},
		{"hindi romanized", "ek dau teen char", "1 2 3 4"},
		{"english words are not digits", "no. do at be sat don edu tin punch", "no. do at be sat don edu tin punch"},
		{"tamil", "ஒன்று இரண்டு", "1 2"},
		{"bengali romanized", "dui choy", "2 6"},
		{"unknown words pass through", "my pnr is", "my pnr is"},
		{"no partial match", "someone twofold", "someone twofold"},
		{"collapses whitespace", "  one \t two\n", "1 2"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeDigits(tt.in))
		})
	}
}

func TestDigitWord(t *testing.T) {
	d, ok := DigitWord("Nine?")
	require.True(t, ok)
	assert.Equal(t, "9", d)

	_, ok = DigitWord("ninety")
	assert.False(t, ok)
}

func TestFoldDigits(t *testing.T) {
	assert.Equal(t, "2608290686", FoldDigits("२६०८२९०६८६"))
	assert.Equal(t, "pnr 12", FoldDigits("pnr ১২"))
	assert.Equal(t, "abc", FoldDigits("abc"))
}

func TestExtractPNR(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    string
		wantErr bool
	}{
		{
			name: "spoken digits form an exact run",
			in:   "my pnr is two six zero eight two nine zero six eight six",
			want: "2608290686",
		},
		{
			name: "two short runs are concatenated",
			in:   "booking 12345 and 67890 confirmed",
			want: "1234567890",
		},
		{
			name: "exact ten digit run preferred over concatenation",
			in:   "call 555 about 9876543210 please",
			want: "9876543210",
		},
		{
			name: "two six digit runs truncate to the first ten",
			in:   "123456 then 789012",
			want: "1234567890",
		},
		{
			name: "longer run is truncated",
			in:   "pnr 123456789012",
			want: "1234567890",
		},
		{
			name: "fillers split nothing that matters",
			in:   "uh 26082 um 90686",
			want: "2608290686",
		},
		{
			name: "hindi mixed transcript",
			in:   "मेरा पीएनआर दो छह शून्य आठ दो नौ शून्य छह आठ छह है",
			want: "2608290686",
		},
		{
			name: "native numerals",
			in:   "पीएनआर २६०८२९०६८६",
			want: "2608290686",
		},
		{
			name: "pnr no. abbreviation",
			in:   "PNR no. 26082 90686",
			want: "2608290686",
		},
		{
			name: "english at before the number",
			in:   "please check at 26082 90686",
			want: "2608290686",
		},
		{
			name: "english do in the sentence",
			in:   "I do have pnr 26082 90686",
			want: "2608290686",
		},
		{
			name: "gujarati be in a sentence",
			in:   "it should be 2608290686",
			want: "2608290686",
		},
		{
			name:    "no digits",
			in:      "hello there",
			wantErr: true,
		},
		{
			name:    "too few digits",
			in:      "123 456",
			wantErr: true,
		},
		{
			name:    "empty",
			in:      "",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExtractPNR(tt.in)
			if tt.wantErr {
				assert.True(t, errors.Is(err, models.ErrNoPNRFound), "error = %v", err)
				assert.Empty(t, got)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.True(t, models.IsValidPNR(got))
		})
	}
}

func TestDigitRunsOrder(t *testing.T) {
	assert.Equal(t, []string{"12", "345", "6"}, DigitRuns("a12b345c6"))
	assert.Nil(t, DigitRuns("none"))
}
