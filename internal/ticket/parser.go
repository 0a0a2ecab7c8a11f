// Package ticket recovers a structured ticket record from the text dump of a
// rendered PNR status page.
//
// The page layout is not a contract, so every rule is a line-oriented
// heuristic. Parsing never fails: fields that cannot be recovered stay nil.
// Rule order matters because later rules can override earlier partial
// matches.
package ticket

import (
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/raphaelgruber/railvoice/internal/models"
)

const (
	fieldSeparator = " - "
	maxSerial      = 10
	maxCoachLen    = 3

	chartNotPreparedPhrase = "Chart not prepared"
	chartPreparedPhrase    = "Chart prepared"
)

// trainMarkers identify the train line (compared upper-case).
var trainMarkers = []string{"EXP", "SF"}

// dateClassMarkers identify the "date | class" line.
var dateClassMarkers = []string{"E", "GN"}

// statusMarkers must appear in a passenger's current status for the row to
// count; they filter out page numbers and other stray numeric lines.
var statusMarkers = []string{"CNF", "WL", "RAC"}

// Markers holds the station names or codes that identify the origin and
// destination lines. They describe the route a deployment serves.
type Markers struct {
	Origin      []string `yaml:"origin"`
	Destination []string `yaml:"destination"`
}

// DefaultMarkers returns the markers for the Varanasi to New Delhi route.
func DefaultMarkers() Markers {
	return Markers{
		Origin:      []string{"Junction", "BSB"},
		Destination: []string{"New Delhi", "NDLS"},
	}
}

// Parser converts page text into ticket records.
// It holds no mutable state and is safe for concurrent use.
type Parser struct {
	markers Markers
}

// NewParser creates a parser. Empty marker lists fall back to the defaults.
func NewParser(m Markers) *Parser {
	def := DefaultMarkers()
	if len(m.Origin) == 0 {
		m.Origin = def.Origin
	}
	if len(m.Destination) == 0 {
		m.Destination = def.Destination
	}
	return &Parser{markers: m}
}

// Markers returns the station markers in use.
func (p *Parser) Markers() Markers {
	return p.markers
}

// Parse extracts a ticket record for pnr from newline-delimited page text.
func (p *Parser) Parse(pageText, pnr string) *models.TicketRecord {
	rec := models.NewTicketRecord(pnr)
	lines := strings.Split(pageText, "\n")

	parseTrain(rec, lines)
	p.parseStations(rec, lines)
	parseDateClass(rec, lines)
	rec.ChartStatus = parseChart(pageText)
	rec.Passengers = parsePassengers(lines)

	return rec
}

// parseTrain takes the first "number - name" line mentioning an express or
// superfast service.
func parseTrain(rec *models.TicketRecord, lines []string) {
	for _, line := range lines {
		if !strings.Contains(line, fieldSeparator) || !containsAny(strings.ToUpper(line), trainMarkers) {
			continue
		}
		parts := strings.Split(line, fieldSeparator)
		rec.TrainNumber = models.StringPtr(strings.TrimSpace(parts[0]))
		rec.TrainName = models.StringPtr(strings.TrimSpace(parts[1]))
		return
	}
}

// parseStations scans every line; the last matching line wins.
func (p *Parser) parseStations(rec *models.TicketRecord, lines []string) {
	for _, line := range lines {
		if containsAny(line, p.markers.Origin) {
			if parts := strings.Split(line, fieldSeparator); len(parts) == 2 {
				rec.FromStation = models.StringPtr(strings.TrimSpace(parts[0]))
			}
		}
		if containsAny(line, p.markers.Destination) {
			if parts := strings.Split(line, fieldSeparator); len(parts) == 2 {
				rec.ToStation = models.StringPtr(strings.TrimSpace(parts[0]))
			}
		}
	}
}

// parseDateClass reads "date | class" lines; the last matching line wins.
func parseDateClass(rec *models.TicketRecord, lines []string) {
	for _, line := range lines {
		if !strings.Contains(line, "|") || !containsAny(line, dateClassMarkers) {
			continue
		}
		parts := strings.Split(line, "|")
		rec.DateOfJourney = models.StringPtr(strings.TrimSpace(parts[0]))
		rec.TravelClass = models.StringPtr(strings.TrimSpace(parts[1]))
	}
}

func parseChart(text string) models.ChartStatus {
	switch {
	case strings.Contains(text, chartNotPreparedPhrase):
		return models.ChartNotPrepared
	case strings.Contains(text, chartPreparedPhrase):
		return models.ChartPrepared
	default:
		return models.ChartUnknown
	}
}

// parsePassengers reads rows laid out as serial, current status, booking
// status and coach on consecutive lines.
func parsePassengers(lines []string) []models.PassengerStatus {
	passengers := []models.PassengerStatus{}
	at := func(i int) string {
		if i < len(lines) {
			return strings.TrimSpace(lines[i])
		}
		return ""
	}

	for i, line := range lines {
		serial, ok := serialNumber(strings.TrimSpace(line))
		if !ok || i+1 >= len(lines) {
			continue
		}

		current := at(i + 1)
		if !containsAny(current, statusMarkers) {
			continue
		}

		booking := at(i + 2)
		if booking == "" || isDigits(booking) {
			booking = current
		}

		var coach *string
		if c := at(i + 3); utf8.RuneCountInString(c) <= maxCoachLen {
			coach = models.StringPtr(c)
		}

		passengers = append(passengers, models.PassengerStatus{
			SerialNumber:  serial,
			CurrentStatus: current,
			BookingStatus: booking,
			Coach:         coach,
		})
	}
	return passengers
}

func serialNumber(s string) (int, bool) {
	if !isDigits(s) {
		return 0, false
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 || n > maxSerial {
		return 0, false
	}
	return n, true
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if sub != "" && strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
