package engine

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

type fakeSlotService struct {
	batches   [][]RawSlot // returned by successive AvailableSlots calls
	calls     int
	generated int
	fetchErr  error
	genErr    error
}

func (f *fakeSlotService) AvailableSlots(_ context.Context, _ int64, _ string) ([]RawSlot, error) {
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	var out []RawSlot
	if f.calls < len(f.batches) {
		out = f.batches[f.calls]
	}
	f.calls++
	return out, nil
}

func (f *fakeSlotService) GenerateSlots(_ context.Context, _ int64, _ string) error {
	f.generated++
	return f.genErr
}

type fakeBookingService struct {
	id      int64
	err     error
	gotIDs  []int64
	calls   int
}

func (f *fakeBookingService) CreateBooking(_ context.Context, slotIDs []int64) (int64, error) {
	f.calls++
	f.gotIDs = slotIDs
	if f.err != nil {
		return 0, f.err
	}
	return f.id, nil
}

type fakeAPIError struct {
	status  int
	message string
	fields  bool
}

func (e *fakeAPIError) Error() string        { return fmt.Sprintf("api error %d: %s", e.status, e.message) }
func (e *fakeAPIError) HTTPStatus() int      { return e.status }
func (e *fakeAPIError) APIMessage() string   { return e.message }
func (e *fakeAPIError) HasFieldErrors() bool { return e.fields }

func newTestEngine(slots SlotService, bookings BookingService, now time.Time) *Engine {
	e := New(slots, bookings, zerolog.Nop())
	e.now = func() time.Time { return now }
	return e
}

func hourlyRaw(startHour, n int) []RawSlot {
	out := make([]RawSlot, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, RawSlot{
			ID:        int64(i + 1),
			StartTime: fmt.Sprintf("%02d:00:00", startHour+i),
			EndTime:   fmt.Sprintf("%02d:00:00", startHour+i+1),
			Price:     500,
			Status:    StatusAvailable,
		})
	}
	return out
}

func TestLoadSlotsGenerateRetry(t *testing.T) {
	svc := &fakeSlotService{batches: [][]RawSlot{nil, hourlyRaw(6, 8)}}
	e := newTestEngine(svc, &fakeBookingService{}, time.Date(2024, 5, 30, 12, 0, 0, 0, time.UTC))

	slots, err := e.LoadSlots(context.Background(), 7, time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("LoadSlots: %v", err)
	}
	if svc.generated != 1 || svc.calls != 2 {
		t.Errorf("generated=%d fetches=%d, want 1 and 2", svc.generated, svc.calls)
	}
	if len(slots) != 8 {
		t.Fatalf("got %d slots, want 8", len(slots))
	}
	if slots[0].Start != "06:00:00" {
		t.Errorf("first start = %q, want 06:00:00", slots[0].Start)
	}
}

func TestLoadSlotsEmptyAfterRetryIsNotError(t *testing.T) {
	svc := &fakeSlotService{}
	e := newTestEngine(svc, &fakeBookingService{}, time.Now())

	slots, err := e.LoadSlots(context.Background(), 7, time.Now().AddDate(0, 0, 1))
	if err != nil {
		t.Fatalf("empty schedule must not be an error, got %v", err)
	}
	if len(slots) != 0 {
		t.Errorf("got %d slots, want 0", len(slots))
	}
}

func TestLoadSlotsGenerateFailureFallsThroughEmpty(t *testing.T) {
	svc := &fakeSlotService{genErr: errors.New("boom")}
	e := newTestEngine(svc, &fakeBookingService{}, time.Now())

	slots, err := e.LoadSlots(context.Background(), 7, time.Now().AddDate(0, 0, 1))
	if err != nil {
		t.Fatalf("failed generate must fall through to empty, got %v", err)
	}
	if len(slots) != 0 || svc.calls != 1 {
		t.Errorf("slots=%d fetches=%d, want 0 and 1", len(slots), svc.calls)
	}
}

func TestLoadSlotsFetchError(t *testing.T) {
	svc := &fakeSlotService{fetchErr: errors.New("connection refused")}
	e := newTestEngine(svc, &fakeBookingService{}, time.Now())

	if _, err := e.LoadSlots(context.Background(), 7, time.Now()); err == nil {
		t.Fatal("transport failure must surface as an error")
	}
}

func TestLoadSlotsTodayFiltering(t *testing.T) {
	now := time.Date(2024, 6, 1, 14, 30, 0, 0, time.UTC)
	svc := &fakeSlotService{batches: [][]RawSlot{{
		{ID: 1, StartTime: "14:00:00", EndTime: "15:00:00", Status: StatusAvailable},
		{ID: 2, StartTime: "14:30:00", EndTime: "15:30:00", Status: StatusAvailable},
		{ID: 3, StartTime: "15:00:00", EndTime: "16:00:00", Status: StatusAvailable},
	}}}
	e := newTestEngine(svc, &fakeBookingService{}, now)

	slots, err := e.LoadSlots(context.Background(), 7, now)
	if err != nil {
		t.Fatal(err)
	}
	if len(slots) != 1 || slots[0].ID != 3 {
		t.Errorf("today filter kept %v, want only slot 3", slots)
	}
}

func TestLoadSlotsClearsSelection(t *testing.T) {
	svc := &fakeSlotService{batches: [][]RawSlot{hourlyRaw(6, 2), hourlyRaw(6, 2)}}
	e := newTestEngine(svc, &fakeBookingService{}, time.Now())
	tomorrow := time.Now().AddDate(0, 0, 1)

	if _, err := e.LoadSlots(context.Background(), 7, tomorrow); err != nil {
		t.Fatal(err)
	}
	if err := e.Toggle(1); err != nil {
		t.Fatal(err)
	}
	if _, err := e.LoadSlots(context.Background(), 7, tomorrow.AddDate(0, 0, 1)); err != nil {
		t.Fatal(err)
	}
	if len(e.Selection()) != 0 {
		t.Error("date change must clear the selection")
	}
}

func TestToggleUnknownSlot(t *testing.T) {
	svc := &fakeSlotService{batches: [][]RawSlot{hourlyRaw(6, 2)}}
	e := newTestEngine(svc, &fakeBookingService{}, time.Now())
	if _, err := e.LoadSlots(context.Background(), 7, time.Now().AddDate(0, 0, 1)); err != nil {
		t.Fatal(err)
	}
	if err := e.Toggle(99); !errors.Is(err, ErrUnknownSlot) {
		t.Errorf("err = %v, want ErrUnknownSlot", err)
	}
}

func TestSubmitEmptySelection(t *testing.T) {
	bookings := &fakeBookingService{}
	e := newTestEngine(&fakeSlotService{}, bookings, time.Now())

	out := e.Submit(context.Background())
	if out.Kind != OutcomeValidationFailure {
		t.Errorf("kind = %v, want validation failure", out.Kind)
	}
	if bookings.calls != 0 {
		t.Error("empty selection must not reach the booking service")
	}
}

func TestSubmitCreated(t *testing.T) {
	svc := &fakeSlotService{batches: [][]RawSlot{hourlyRaw(6, 3)}}
	bookings := &fakeBookingService{id: 42}
	e := newTestEngine(svc, bookings, time.Now())

	if _, err := e.LoadSlots(context.Background(), 7, time.Now().AddDate(0, 0, 1)); err != nil {
		t.Fatal(err)
	}
	for _, id := range []int64{1, 2} {
		if err := e.Toggle(id); err != nil {
			t.Fatal(err)
		}
	}

	out := e.Submit(context.Background())
	if out.Kind != OutcomeCreated || out.BookingID != 42 {
		t.Fatalf("outcome = %+v, want created/42", out)
	}
	if len(bookings.gotIDs) != 2 || bookings.gotIDs[0] != 1 || bookings.gotIDs[1] != 2 {
		t.Errorf("submitted ids = %v, want [1 2]", bookings.gotIDs)
	}
	if len(e.Selection()) != 0 {
		t.Error("selection must be cleared after submission")
	}
}

func TestSubmitClassification(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want OutcomeKind
	}{
		{"400 already booked", &fakeAPIError{status: 400, message: "Slots already booked"}, OutcomeConflict},
		{"400 not available", &fakeAPIError{status: 400, message: "Selected slots are not available"}, OutcomeConflict},
		{"400 with field errors", &fakeAPIError{status: 400, message: "Validation failed", fields: true}, OutcomeInvalidRequest},
		{"bare 400", &fakeAPIError{status: 400, message: "Bad request"}, OutcomeConflict},
		{"409", &fakeAPIError{status: 409, message: "conflict"}, OutcomeConflict},
		{"422", &fakeAPIError{status: 422, message: "unprocessable"}, OutcomeInvalidRequest},
		{"401", &fakeAPIError{status: 401, message: "unauthenticated"}, OutcomeAuthExpired},
		{"403", &fakeAPIError{status: 403, message: "forbidden"}, OutcomeAuthExpired},
		{"500", &fakeAPIError{status: 500, message: "internal"}, OutcomeServerError},
		{"transport failure", errors.New("dial tcp: timeout"), OutcomeNetworkError},
		{"wrapped api error", fmt.Errorf("create booking: %w", &fakeAPIError{status: 409}), OutcomeConflict},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &fakeSlotService{batches: [][]RawSlot{hourlyRaw(6, 1)}}
			e := newTestEngine(svc, &fakeBookingService{err: tt.err}, time.Now())
			if _, err := e.LoadSlots(context.Background(), 7, time.Now().AddDate(0, 0, 1)); err != nil {
				t.Fatal(err)
			}
			if err := e.Toggle(1); err != nil {
				t.Fatal(err)
			}
			out := e.Submit(context.Background())
			if out.Kind != tt.want {
				t.Errorf("kind = %v, want %v", out.Kind, tt.want)
			}
			if len(e.Selection()) != 0 {
				t.Error("selection must be cleared after a failed submission")
			}
		})
	}
}
