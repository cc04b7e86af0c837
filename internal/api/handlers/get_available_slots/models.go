package get_available_slots

import (
	"time"

	"github.com/bookedbarber/booking-service/internal/domain"
	getAvailableSlots "github.com/bookedbarber/booking-service/internal/usecase/get_available_slots"
)

// AvailableSlotsResponse is the HTTP projection of one evaluated grid.
type AvailableSlotsResponse struct {
	Date          string          `json:"date"`
	ShopID        int64           `json:"shopId"`
	BarberID      *int64          `json:"barberId,omitempty"`
	ServiceID     *int64          `json:"serviceId,omitempty"`
	BusinessHours BusinessHours   `json:"businessHours"`
	Slots         []AvailableSlot `json:"slots"`
	NextAvailable *string         `json:"nextAvailable,omitempty"`
}

// BusinessHours echoes the policy the grid was built from.
type BusinessHours struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// AvailableSlot is one grid entry.
type AvailableSlot struct {
	Time            string  `json:"time"`
	DurationMinutes int     `json:"durationMinutes"`
	Available       bool    `json:"available"`
	IsNextAvailable bool    `json:"isNextAvailable"`
	BarberIDs       []int64 `json:"barberIds,omitempty"`
}

// ToUseCaseRequest parses path and query values into a use case request.
func ToUseCaseRequest(shopID int64, barberID, serviceID *int64, dateStr string, loc *time.Location) (getAvailableSlots.Request, error) {
	date, err := time.ParseInLocation(domain.DateFormat, dateStr, loc)
	if err != nil {
		return getAvailableSlots.Request{}, err
	}
	return getAvailableSlots.Request{
		ShopID:    shopID,
		BarberID:  barberID,
		ServiceID: serviceID,
		Date:      date,
	}, nil
}

// FromUseCaseResponse converts a use case response to its HTTP form.
func FromUseCaseResponse(resp *getAvailableSlots.Response) *AvailableSlotsResponse {
	out := &AvailableSlotsResponse{
		Date:      resp.Date.Format(domain.DateFormat),
		ShopID:    resp.ShopID,
		BarberID:  resp.BarberID,
		ServiceID: resp.ServiceID,
		BusinessHours: BusinessHours{
			Start: resp.BusinessHours.Start.String(),
			End:   resp.BusinessHours.End.String(),
		},
		Slots: make([]AvailableSlot, 0, len(resp.Slots)),
	}
	for _, s := range resp.Slots {
		out.Slots = append(out.Slots, AvailableSlot{
			Time:            s.Time.String(),
			DurationMinutes: s.DurationMinutes,
			Available:       s.Available,
			IsNextAvailable: s.IsNextAvailable,
			BarberIDs:       s.BarberIDs,
		})
	}
	if resp.NextAvailable != nil {
		next := resp.NextAvailable.String()
		out.NextAvailable = &next
	}
	return out
}
