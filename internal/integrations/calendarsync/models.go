package calendarsync

import "time"

// BusyInterval is one externally blocked interval from a barber's personal
// calendar.
type BusyInterval struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// BusyResponse is the collaborator's answer for one barber and day.
type BusyResponse struct {
	BarberID  int64          `json:"barberId"`
	Date      string         `json:"date"`
	Intervals []BusyInterval `json:"intervals"`
}
