package engine

import "testing"

func TestRawSlotBooked(t *testing.T) {
	tests := []struct {
		name string
		raw  RawSlot
		want bool
	}{
		{"available", RawSlot{Status: StatusAvailable}, false},
		{"no signals at all", RawSlot{}, false},
		{"status booked_online", RawSlot{Status: StatusBookedOnline}, true},
		{"status booked_offline", RawSlot{Status: StatusBookedOffline}, true},
		{"status blocked", RawSlot{Status: StatusBlocked}, true},
		{"is_booked flag only", RawSlot{Status: StatusAvailable, IsBooked: true}, true},
		{"confirmed booking attached", RawSlot{Status: StatusAvailable, BookingStatus: "confirmed"}, true},
		{"completed booking attached", RawSlot{Status: StatusAvailable, BookingStatus: "completed"}, true},
		{"cancelled booking attached", RawSlot{Status: StatusAvailable, BookingStatus: "cancelled"}, false},
		{"every signal set", RawSlot{Status: StatusBlocked, IsBooked: true, BookingStatus: "confirmed"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.raw.Booked(); got != tt.want {
				t.Errorf("Booked() = %v, want %v", got, tt.want)
			}
		})
	}
}

// Booked must be monotonic: turning any one signal on can never turn the
// result off.
func TestRawSlotBookedMonotonic(t *testing.T) {
	base := RawSlot{Status: StatusAvailable}
	variants := []RawSlot{
		{Status: StatusBookedOnline},
		{Status: StatusAvailable, IsBooked: true},
		{Status: StatusAvailable, BookingStatus: "confirmed"},
	}
	if base.Booked() {
		t.Fatal("base slot must not be booked")
	}
	for _, v := range variants {
		if !v.Booked() {
			t.Errorf("slot %+v must be booked", v)
		}
		v.IsBooked = true
		if !v.Booked() {
			t.Errorf("adding is_booked flipped %+v to available", v)
		}
	}
}

func TestPrepareFiltersPastSlots(t *testing.T) {
	raw := []RawSlot{
		{ID: 1, StartTime: "14:00:00", EndTime: "15:00:00"},
		{ID: 2, StartTime: "14:30:00", EndTime: "15:30:00"},
		{ID: 3, StartTime: "14:30:01", EndTime: "15:30:01"},
		{ID: 4, StartTime: "18:00:00", EndTime: "19:00:00"},
	}

	slots := prepare(raw, "14:30:00")
	if len(slots) != 2 {
		t.Fatalf("got %d slots, want 2", len(slots))
	}
	if slots[0].ID != 3 || slots[1].ID != 4 {
		t.Errorf("got ids %d,%d, want 3,4", slots[0].ID, slots[1].ID)
	}

	// Future date: no time filter applies.
	all := prepare(raw, "")
	if len(all) != 4 {
		t.Errorf("future date dropped slots: got %d, want 4", len(all))
	}
}

func TestPrepareSortsByStart(t *testing.T) {
	raw := []RawSlot{
		{ID: 3, StartTime: "10:00:00", EndTime: "11:00:00"},
		{ID: 1, StartTime: "06:00:00", EndTime: "07:00:00"},
		{ID: 2, StartTime: "08:00:00", EndTime: "09:00:00"},
	}
	slots := prepare(raw, "")
	for i := 1; i < len(slots); i++ {
		if slots[i-1].Start > slots[i].Start {
			t.Fatalf("slots not sorted: %v", slots)
		}
	}
	if slots[0].ID != 1 {
		t.Errorf("first slot id = %d, want 1", slots[0].ID)
	}
}
