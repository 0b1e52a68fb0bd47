package engine

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/turfhub/tg_turf_bot/pkg/utils/errs"
)

// SlotService is the slot query side of the turf API.
type SlotService interface {
	AvailableSlots(ctx context.Context, turfID int64, date string) ([]RawSlot, error)
	GenerateSlots(ctx context.Context, turfID int64, date string) error
}

// BookingService creates bookings from ordered slot ids.
type BookingService interface {
	CreateBooking(ctx context.Context, slotIDs []int64) (int64, error)
}

// Engine owns the slot list and in-progress selection for one booking
// screen: one user, one turf, one date. It normalizes raw slot records,
// filters past slots, enforces contiguity on selection and classifies
// submission failures. All state is session-scoped; nothing is persisted.
//
// Toggle calls are serialized by a mutex so overlapping taps never tear
// the selection, and LoadSlots replaces slots and selection atomically.
type Engine struct {
	slotSvc    SlotService
	bookingSvc BookingService
	logger     zerolog.Logger
	now        func() time.Time

	mu        sync.Mutex
	turfID    int64
	date      string
	slots     []Slot
	selection []Slot
}

func New(slotSvc SlotService, bookingSvc BookingService, logger zerolog.Logger) *Engine {
	return &Engine{
		slotSvc:    slotSvc,
		bookingSvc: bookingSvc,
		logger:     logger.With().Str("component", "engine").Logger(),
		now:        time.Now,
	}
}

const (
	dateLayout = "2006-01-02"
	timeLayout = "15:04:05"
)

// LoadSlots fetches, normalizes and sorts the slots for turfID on date,
// replacing the engine's slot list and clearing the selection. An empty
// schedule triggers one generate+refetch cycle; still empty is not an
// error. For today, slots whose start time has passed are dropped.
func (e *Engine) LoadSlots(ctx context.Context, turfID int64, date time.Time) ([]Slot, error) {
	day := date.Format(dateLayout)

	raw, err := e.slotSvc.AvailableSlots(ctx, turfID, day)
	if err != nil {
		return nil, errs.New("fetch slots failed").Arg("turf_id", turfID).Arg("date", day).Wrap(err)
	}

	if len(raw) == 0 {
		// The venue may simply not have slots generated for this date yet.
		if genErr := e.slotSvc.GenerateSlots(ctx, turfID, day); genErr != nil {
			e.logger.Warn().Err(genErr).Int64("turf_id", turfID).Str("date", day).Msg("slot generation failed")
		} else {
			raw, err = e.slotSvc.AvailableSlots(ctx, turfID, day)
			if err != nil {
				return nil, errs.New("refetch slots failed").Arg("turf_id", turfID).Arg("date", day).Wrap(err)
			}
		}
	}

	now := e.now()
	var nowTime string
	if now.Format(dateLayout) == day {
		nowTime = now.Format(timeLayout)
	}
	slots := prepare(raw, nowTime)

	e.mu.Lock()
	e.turfID = turfID
	e.date = day
	e.slots = slots
	e.selection = nil
	e.mu.Unlock()

	return slots, nil
}

// Toggle adds or removes the slot with the given id. Adding a booked
// slot returns ErrSlotUnavailable, adding a non-adjacent slot returns
// ErrNotContiguous; in both cases the selection is unchanged.
func (e *Engine) Toggle(slotID int64) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	var slot *Slot
	for i := range e.slots {
		if e.slots[i].ID == slotID {
			slot = &e.slots[i]
			break
		}
	}
	if slot == nil {
		return ErrUnknownSlot
	}

	next, err := toggle(e.selection, *slot)
	if err != nil {
		return err
	}
	e.selection = next
	return nil
}

// Slots returns a copy of the loaded slot list.
func (e *Engine) Slots() []Slot {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]Slot, len(e.slots))
	copy(out, e.slots)
	return out
}

// Selection returns a copy of the current selection, sorted by start time.
func (e *Engine) Selection() []Slot {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]Slot, len(e.selection))
	copy(out, e.selection)
	return out
}

// Selected reports whether the slot with the given id is selected.
func (e *Engine) Selected(slotID int64) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, s := range e.selection {
		if s.ID == slotID {
			return true
		}
	}
	return false
}

// Total is the sum of prices over the selection, 0 when empty.
func (e *Engine) Total() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return total(e.selection)
}

// TimeRange returns the start of the earliest and end of the latest
// selected slot; ok is false for an empty selection.
func (e *Engine) TimeRange() (start, end string, ok bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return timeRange(e.selection)
}

// Date returns the date the current slot list was loaded for.
func (e *Engine) Date() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.date
}

// Submit sends the ordered selected slot ids to the booking service and
// classifies the result. The selection is cleared after the attempt
// regardless of outcome: on success the booking now owns the slots, on
// failure the slot list is stale and the caller reloads it either way.
// There is no automatic retry.
func (e *Engine) Submit(ctx context.Context) Outcome {
	e.mu.Lock()
	ids := make([]int64, 0, len(e.selection))
	for _, s := range e.selection {
		ids = append(ids, s.ID)
	}
	e.mu.Unlock()

	if len(ids) == 0 {
		return Outcome{Kind: OutcomeValidationFailure}
	}

	bookingID, err := e.bookingSvc.CreateBooking(ctx, ids)

	e.mu.Lock()
	e.selection = nil
	e.mu.Unlock()

	if err != nil {
		kind := classifyFailure(err)
		e.logger.Warn().Err(err).Str("outcome", kind.String()).Ints64("slot_ids", ids).Msg("booking failed")
		return Outcome{Kind: kind, Err: err}
	}

	e.logger.Info().Int64("booking_id", bookingID).Ints64("slot_ids", ids).Msg("booking created")
	return Outcome{Kind: OutcomeCreated, BookingID: bookingID}
}
