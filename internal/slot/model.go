package slot

import (
	"strings"
	"time"
)

const DateLayout = "2006-01-02"

// Slot is the appointment triple a booking commits to.
type Slot struct {
	Date        string `json:"date"`
	TimeWindow  string `json:"timeWindow"`
	ServiceArea string `json:"serviceArea"`
}

func (s Slot) Normalize() Slot {
	return Slot{
		Date:        strings.TrimSpace(s.Date),
		TimeWindow:  strings.TrimSpace(s.TimeWindow),
		ServiceArea: strings.TrimSpace(s.ServiceArea),
	}
}

func (s Slot) Day() (time.Time, error) {
	return time.Parse(DateLayout, s.Date)
}

type Availability struct {
	Date        string   `json:"date"`
	ServiceArea string   `json:"serviceArea"`
	Available   []string `json:"availableSlots"`
	Booked      []string `json:"bookedSlots"`
}
