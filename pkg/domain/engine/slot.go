package engine

import "sort"

// Raw slot statuses as reported by the turf API. Servers are inconsistent:
// "booked" may arrive as a status value, as an is_booked flag, or as a
// nested booking whose own status is confirmed/completed. All of them count.
const (
	StatusAvailable     = "available"
	StatusBookedOnline  = "booked_online"
	StatusBookedOffline = "booked_offline"
	StatusBlocked       = "blocked"
)

// RawSlot is one slot record as delivered by the slot service, before
// normalization. BookingStatus is the status of the attached booking,
// empty when the record carries no booking object.
type RawSlot struct {
	ID            int64
	StartTime     string // HH:MM:SS
	EndTime       string // HH:MM:SS
	StartDisplay  string
	EndDisplay    string
	Price         float64
	Status        string
	IsBooked      bool
	BookingStatus string
}

// Booked derives the effective booked state from every signal the
// server is known to use.
func (r RawSlot) Booked() bool {
	switch r.Status {
	case StatusBookedOnline, StatusBookedOffline, StatusBlocked:
		return true
	}
	if r.IsBooked {
		return true
	}
	switch r.BookingStatus {
	case "confirmed", "completed":
		return true
	}
	return false
}

// Slot is a normalized bookable interval. Start and End are wall-clock
// HH:MM:SS strings; slots on one date are back-to-back, so string
// comparison orders them correctly.
type Slot struct {
	ID           int64
	Start        string
	End          string
	StartDisplay string
	EndDisplay   string
	Price        float64
	Booked       bool
}

func normalize(r RawSlot) Slot {
	return Slot{
		ID:           r.ID,
		Start:        r.StartTime,
		End:          r.EndTime,
		StartDisplay: r.StartDisplay,
		EndDisplay:   r.EndDisplay,
		Price:        r.Price,
		Booked:       r.Booked(),
	}
}

// prepare normalizes raw records, drops slots that already started when
// the requested date is today (strictly: a slot starting exactly at
// nowTime is dropped too) and sorts ascending by start time. nowTime is
// empty for future dates, meaning no time filter.
func prepare(raw []RawSlot, nowTime string) []Slot {
	slots := make([]Slot, 0, len(raw))
	for _, r := range raw {
		if nowTime != "" && r.StartTime <= nowTime {
			continue
		}
		slots = append(slots, normalize(r))
	}
	sort.Slice(slots, func(i, j int) bool { return slots[i].Start < slots[j].Start })
	return slots
}
