package models

import (
	"encoding/json"
	"strings"
)

// ChartStatus reports whether berth allocation has been finalized.
type ChartStatus string

const (
	ChartUnknown     ChartStatus = ""
	ChartNotPrepared ChartStatus = "not prepared"
	ChartPrepared    ChartStatus = "prepared"
)

// ClassifyChart maps free text to a ChartStatus, case-insensitively.
// "not prepared" is checked first because it contains "prepared".
func ClassifyChart(s string) ChartStatus {
	lower := strings.ToLower(s)
	switch {
	case strings.Contains(lower, "not prepared"):
		return ChartNotPrepared
	case strings.Contains(lower, "prepared"):
		return ChartPrepared
	default:
		return ChartUnknown
	}
}

// PassengerStatus is one passenger row of a booking.
type PassengerStatus struct {
	SerialNumber  int     `json:"serial_number"`
	CurrentStatus string  `json:"current_status"`
	BookingStatus string  `json:"booking_status"`
	Coach         *string `json:"coach,omitempty"` // at most 3 characters
}

// TicketRecord is the structured result of a successful lookup.
// Every field except PNR is optional; a record with nothing else set is
// still a valid, low-information result.
type TicketRecord struct {
	PNR           string            `json:"pnr"`
	TrainNumber   *string           `json:"train_number,omitempty"`
	TrainName     *string           `json:"train_name,omitempty"`
	FromStation   *string           `json:"from_station,omitempty"`
	ToStation     *string           `json:"to_station,omitempty"`
	DateOfJourney *string           `json:"date_of_journey,omitempty"`
	TravelClass   *string           `json:"class,omitempty"`
	ChartStatus   ChartStatus       `json:"chart_status,omitempty"`
	Passengers    []PassengerStatus `json:"passengers"`
}

// NewTicketRecord returns an empty record for pnr.
func NewTicketRecord(pnr string) *TicketRecord {
	return &TicketRecord{PNR: pnr, Passengers: []PassengerStatus{}}
}

// Populated reports whether anything beyond the PNR was recovered.
func (t *TicketRecord) Populated() bool {
	if t == nil {
		return false
	}
	return t.TrainNumber != nil || t.TrainName != nil ||
		t.FromStation != nil || t.ToStation != nil ||
		t.DateOfJourney != nil || t.TravelClass != nil ||
		t.ChartStatus != ChartUnknown || len(t.Passengers) > 0
}

// StringPtr returns a pointer to s, or nil when s is empty.
func StringPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// Source identifies which tier produced a resolution.
type Source string

const (
	SourceAPI     Source = "api"
	SourceBrowser Source = "browser"
)

// Resolution is the successful outcome of resolving a PNR.
//
// The two tiers produce different shapes. SourceAPI carries the third-party
// payload unmodified in Raw plus a best-effort projection into Ticket;
// SourceBrowser carries only Ticket. Degraded marks a Ticket with no fields
// beyond the PNR: a weak signal, not a failure.
type Resolution struct {
	PNR      string          `json:"pnr"`
	Source   Source          `json:"source"`
	Ticket   *TicketRecord   `json:"ticket"`
	Raw      json.RawMessage `json:"raw,omitempty"`
	Degraded bool            `json:"degraded"`
}

// Payload returns the data handed to downstream consumers: the raw API
// payload when present, otherwise the ticket record.
func (r *Resolution) Payload() any {
	if r == nil {
		return nil
	}
	if len(r.Raw) > 0 {
		return r.Raw
	}
	return r.Ticket
}
