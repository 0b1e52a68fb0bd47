package turfapi

import (
	"bytes"
	"strconv"
)

// Price is a decimal amount in rupees. The API serializes it as either
// a JSON number or a quoted string depending on the endpoint.
type Price float64

func (p *Price) UnmarshalJSON(b []byte) error {
	s := string(bytes.Trim(bytes.TrimSpace(b), `"`))
	if s == "" || s == "null" {
		*p = 0
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return err
	}
	*p = Price(v)
	return nil
}

// Player is the authenticated user's profile.
type Player struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Phone string `json:"phone"`
	Email string `json:"email"`
}

// Turf is a bookable sports field.
type Turf struct {
	ID           int64    `json:"id"`
	Name         string   `json:"name"`
	City         string   `json:"city"`
	State        string   `json:"state"`
	SportType    string   `json:"sport_type"`
	UniformPrice Price    `json:"uniform_price"`
	IsFeatured   bool     `json:"is_featured"`
	Images       []string `json:"images"`
}

// SlotBooking is the booking object a slot record may carry instead of
// (or in addition to) a booked status.
type SlotBooking struct {
	BookingStatus string `json:"booking_status"`
	PlayerName    string `json:"player_name"`
}

// SlotRecord is one raw slot as the API reports it. Booked state may be
// signalled through Status, IsBooked or Booking.BookingStatus.
type SlotRecord struct {
	ID               int64        `json:"id"`
	TurfID           int64        `json:"turf_id"`
	Date             string       `json:"date"`
	StartTime        string       `json:"start_time"`
	EndTime          string       `json:"end_time"`
	StartTimeDisplay string       `json:"start_time_display"`
	EndTimeDisplay   string       `json:"end_time_display"`
	Price            Price        `json:"price"`
	Status           string       `json:"status"`
	IsBooked         bool         `json:"is_booked"`
	Booking          *SlotBooking `json:"booking"`
}

// BookingTurf is the turf summary embedded in a booking.
type BookingTurf struct {
	Name string `json:"name"`
}

// Booking is one of the player's bookings.
type Booking struct {
	ID            int64        `json:"id"`
	BookingStatus string       `json:"booking_status"`
	BookingDate   string       `json:"booking_date"`
	StartTime     string       `json:"start_time"`
	EndTime       string       `json:"end_time"`
	Amount        Price        `json:"amount"`
	Turf          *BookingTurf `json:"turf"`
}
