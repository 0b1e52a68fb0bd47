package receiver

import (
	"context"

	"github.com/turfhub/tg_turf_bot/pkg/client/turfapi"
	"github.com/turfhub/tg_turf_bot/pkg/domain/engine"
)

// apiSlotService adapts the token-bound API client to the engine's
// SlotService interface.
type apiSlotService struct {
	api *turfapi.Client
}

func (s apiSlotService) AvailableSlots(ctx context.Context, turfID int64, date string) ([]engine.RawSlot, error) {
	records, err := s.api.AvailableSlots(ctx, turfID, date)
	if err != nil {
		return nil, err
	}
	raw := make([]engine.RawSlot, 0, len(records))
	for _, r := range records {
		raw = append(raw, toRawSlot(r))
	}
	return raw, nil
}

func (s apiSlotService) GenerateSlots(ctx context.Context, turfID int64, date string) error {
	return s.api.GenerateSlots(ctx, turfID, date)
}

func toRawSlot(r turfapi.SlotRecord) engine.RawSlot {
	raw := engine.RawSlot{
		ID:           r.ID,
		StartTime:    r.StartTime,
		EndTime:      r.EndTime,
		StartDisplay: r.StartTimeDisplay,
		EndDisplay:   r.EndTimeDisplay,
		Price:        float64(r.Price),
		Status:       r.Status,
		IsBooked:     r.IsBooked,
	}
	if r.Booking != nil {
		raw.BookingStatus = r.Booking.BookingStatus
	}
	return raw
}

// apiBookingService adapts the API client to the engine's BookingService.
type apiBookingService struct {
	api *turfapi.Client
}

func (s apiBookingService) CreateBooking(ctx context.Context, slotIDs []int64) (int64, error) {
	return s.api.CreateBooking(ctx, slotIDs)
}
