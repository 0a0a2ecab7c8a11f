package ticket

import (
	"strings"
	"testing"

	"github.com/raphaelgruber/railvoice/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const samplePage = `ConfirmTkt
PNR 2608290686
12560 - SHIVGANGA EXP
Varanasi Junction - BSB
New Delhi - NDLS
15 Nov 2025 | 3A | GN
Chart not prepared
Passenger
Current Status
1
CNF B2 34
CNF B2 34
B2
2
WL 12
WL 20
-
Page 3`

func lines(ls ...string) string {
	return strings.Join(ls, "\n")
}

func TestParseSamplePage(t *testing.T) {
	rec := NewParser(DefaultMarkers()).Parse(samplePage, "2608290686")

	assert.Equal(t, "2608290686", rec.PNR)
	require.NotNil(t, rec.TrainNumber)
	assert.Equal(t, "12560", *rec.TrainNumber)
	require.NotNil(t, rec.TrainName)
	assert.Equal(t, "SHIVGANGA EXP", *rec.TrainName)
	require.NotNil(t, rec.FromStation)
	assert.Equal(t, "Varanasi Junction", *rec.FromStation)
	require.NotNil(t, rec.ToStation)
	assert.Equal(t, "New Delhi", *rec.ToStation)
	require.NotNil(t, rec.DateOfJourney)
	assert.Equal(t, "15 Nov 2025", *rec.DateOfJourney)
	require.NotNil(t, rec.TravelClass)
	assert.Equal(t, "3A", *rec.TravelClass)
	assert.Equal(t, models.ChartNotPrepared, rec.ChartStatus)

	require.Len(t, rec.Passengers, 2)
	assert.Equal(t, 1, rec.Passengers[0].SerialNumber)
	assert.Equal(t, "CNF B2 34", rec.Passengers[0].CurrentStatus)
	assert.Equal(t, "CNF B2 34", rec.Passengers[0].BookingStatus)
	require.NotNil(t, rec.Passengers[0].Coach)
	assert.Equal(t, "B2", *rec.Passengers[0].Coach)
	assert.Equal(t, 2, rec.Passengers[1].SerialNumber)
	assert.Equal(t, "WL 12", rec.Passengers[1].CurrentStatus)
	assert.Equal(t, "WL 20", rec.Passengers[1].BookingStatus)
}

func TestParseTrainIdentity(t *testing.T) {
	tests := []struct {
		name       string
		text       string
		wantNumber string
		wantName   string
	}{
		{"superfast", "12345 - Rajdhani SF Express", "12345", "Rajdhani SF Express"},
		{"lower case marker", "22436 - vande bharat exp", "22436", "vande bharat exp"},
		{"first match wins", lines("11111 - First Exp", "22222 - Second Exp"), "11111", "First Exp"},
		{"separator required", "12345 Rajdhani SF Express", "", ""},
		{"marker required", "12345 - Rajdhani", "", ""},
		{"no such line", "nothing here", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := NewParser(DefaultMarkers()).Parse(tt.text, "1234567890")
			if tt.wantNumber == "" {
				assert.Nil(t, rec.TrainNumber)
				assert.Nil(t, rec.TrainName)
				return
			}
			require.NotNil(t, rec.TrainNumber)
			require.NotNil(t, rec.TrainName)
			assert.Equal(t, tt.wantNumber, *rec.TrainNumber)
			assert.Equal(t, tt.wantName, *rec.TrainName)
		})
	}
}

func TestParseStations(t *testing.T) {
	p := NewParser(DefaultMarkers())

	t.Run("requires exactly two parts", func(t *testing.T) {
		rec := p.Parse("Varanasi Junction - BSB - Platform 4", "1234567890")
		assert.Nil(t, rec.FromStation)
	})

	t.Run("last match wins", func(t *testing.T) {
		rec := p.Parse(lines("Mughal Sarai Junction - MGS", "Varanasi Junction - BSB"), "1234567890")
		require.NotNil(t, rec.FromStation)
		assert.Equal(t, "Varanasi Junction", *rec.FromStation)
	})

	t.Run("configured route", func(t *testing.T) {
		custom := NewParser(Markers{Origin: []string{"HWH"}, Destination: []string{"MAS"}})
		rec := custom.Parse(lines("Howrah - HWH", "Chennai Central - MAS", "New Delhi - NDLS"), "1234567890")
		require.NotNil(t, rec.FromStation)
		assert.Equal(t, "Howrah", *rec.FromStation)
		require.NotNil(t, rec.ToStation)
		assert.Equal(t, "Chennai Central", *rec.ToStation)
	})

	t.Run("empty markers use defaults", func(t *testing.T) {
		assert.Equal(t, DefaultMarkers(), NewParser(Markers{}).Markers())
	})
}

func TestParseDateClassLastWins(t *testing.T) {
	rec := NewParser(DefaultMarkers()).Parse(lines("01 Jan | SL | GN", "02 Feb | 2A | GN"), "1234567890")
	require.NotNil(t, rec.DateOfJourney)
	assert.Equal(t, "02 Feb", *rec.DateOfJourney)
	require.NotNil(t, rec.TravelClass)
	assert.Equal(t, "2A", *rec.TravelClass)
}

func TestParseChartStatus(t *testing.T) {
	p := NewParser(DefaultMarkers())

	tests := []struct {
		name string
		text string
		want models.ChartStatus
	}{
		{"not prepared checked first", lines("Chart prepared", "Chart not prepared"), models.ChartNotPrepared},
		{"prepared", "Chart prepared at 18:00", models.ChartPrepared},
		{"unknown", "no chart info", models.ChartUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, p.Parse(tt.text, "1234567890").ChartStatus)
		})
	}
}

func TestParsePassengers(t *testing.T) {
	p := NewParser(DefaultMarkers())

	t.Run("numeric booking line falls back to current", func(t *testing.T) {
		rec := p.Parse(lines("1", "RAC 5", "2", "S1"), "1234567890")
		require.NotEmpty(t, rec.Passengers)
		assert.Equal(t, "RAC 5", rec.Passengers[0].BookingStatus)
	})

	t.Run("long coach discarded", func(t *testing.T) {
		rec := p.Parse(lines("1", "CNF", "CNF", "COACH B4"), "1234567890")
		require.Len(t, rec.Passengers, 1)
		assert.Nil(t, rec.Passengers[0].Coach)
	})

	t.Run("unrelated numbers ignored", func(t *testing.T) {
		rec := p.Parse(lines("3", "Page footer", "11", "CNF", "0", "WL 1"), "1234567890")
		assert.Empty(t, rec.Passengers)
	})

	t.Run("duplicates kept in encounter order", func(t *testing.T) {
		rec := p.Parse(lines("1", "CNF", "CNF", "A1", "1", "WL 3", "WL 3", "A1"), "1234567890")
		require.Len(t, rec.Passengers, 2)
		assert.Equal(t, 1, rec.Passengers[0].SerialNumber)
		assert.Equal(t, 1, rec.Passengers[1].SerialNumber)
		assert.Equal(t, "WL 3", rec.Passengers[1].CurrentStatus)
	})

	t.Run("last line serial has no status", func(t *testing.T) {
		rec := p.Parse("1", "1234567890")
		assert.Empty(t, rec.Passengers)
	})
}

func TestParseEmptyPage(t *testing.T) {
	rec := NewParser(DefaultMarkers()).Parse("", "1234567890")
	assert.Equal(t, "1234567890", rec.PNR)
	assert.False(t, rec.Populated())
	assert.NotNil(t, rec.Passengers)
}
