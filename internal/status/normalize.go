package status

import (
	"strings"
	"unicode/utf8"

	"github.com/raphaelgruber/railvoice/internal/models"
	"github.com/tidwall/gjson"
)

const maxCoachLen = 3

// Normalize projects the well-known fields of a status payload onto a
// TicketRecord. It is best-effort: the payload schema belongs to the API
// provider, and unknown or missing fields are left unset. The payload itself
// is never modified.
func Normalize(payload []byte, pnr string) *models.TicketRecord {
	rec := models.NewTicketRecord(pnr)
	if !gjson.ValidBytes(payload) {
		return rec
	}

	root := gjson.ParseBytes(payload)
	if data := root.Get("data"); data.IsObject() {
		root = data
	}

	rec.TrainNumber = first(root, "trainNumber", "train_number", "trainNo")
	rec.TrainName = first(root, "trainName", "train_name")
	rec.FromStation = first(root, "boardingPoint", "sourceStation", "from")
	rec.ToStation = first(root, "reservationUpto", "destinationStation", "to")
	rec.DateOfJourney = first(root, "dateOfJourney", "doj", "journeyDate")
	rec.TravelClass = first(root, "journeyClass", "class", "bookingClass")

	if chart := first(root, "chartStatus", "chart_status"); chart != nil {
		rec.ChartStatus = models.ClassifyChart(*chart)
	}

	root.Get("passengerList").ForEach(func(_, p gjson.Result) bool {
		serial := int(p.Get("passengerSerialNumber").Int())
		if serial < 1 || serial > 10 {
			return true
		}

		current := value(p, "currentStatusDetails", "currentStatus")
		booking := value(p, "bookingStatusDetails", "bookingStatus")
		if booking == "" {
			booking = current
		}

		var coach *string
		if c := strings.TrimSpace(p.Get("currentCoachId").String()); utf8.RuneCountInString(c) <= maxCoachLen {
			coach = models.StringPtr(c)
		}

		rec.Passengers = append(rec.Passengers, models.PassengerStatus{
			SerialNumber:  serial,
			CurrentStatus: current,
			BookingStatus: booking,
			Coach:         coach,
		})
		return true
	})

	return rec
}

// first returns the first non-empty value among paths.
func first(root gjson.Result, paths ...string) *string {
	return models.StringPtr(value(root, paths...))
}

func value(root gjson.Result, paths ...string) string {
	for _, path := range paths {
		if v := strings.TrimSpace(root.Get(path).String()); v != "" {
			return v
		}
	}
	return ""
}
