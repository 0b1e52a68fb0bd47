package engine

import (
	"errors"
	"reflect"
	"testing"
)

func hourSlot(id int64, start, end string, price float64) Slot {
	return Slot{ID: id, Start: start, End: end, Price: price}
}

func TestToggleContiguity(t *testing.T) {
	nine := hourSlot(1, "09:00:00", "10:00:00", 300)
	ten := hourSlot(2, "10:00:00", "11:00:00", 300)
	eleven := hourSlot(3, "11:00:00", "12:00:00", 400)

	sel, err := toggle(nil, nine)
	if err != nil {
		t.Fatalf("adding first slot: %v", err)
	}

	// 09-10 plus 11-12 leaves a gap.
	got, err := toggle(sel, eleven)
	if !errors.Is(err, ErrNotContiguous) {
		t.Fatalf("err = %v, want ErrNotContiguous", err)
	}
	if !reflect.DeepEqual(got, sel) {
		t.Errorf("selection changed on rejected add: %v", got)
	}

	// 10-11 bridges to 09-10.
	sel, err = toggle(sel, ten)
	if err != nil {
		t.Fatalf("adding adjacent slot: %v", err)
	}
	sel, err = toggle(sel, eleven)
	if err != nil {
		t.Fatalf("adding third adjacent slot: %v", err)
	}
	for i := 1; i < len(sel); i++ {
		if sel[i].Start != sel[i-1].End {
			t.Fatalf("selection not contiguous: %v", sel)
		}
	}
}

// Adding slots out of chronological order must still work as long as
// the sorted result is contiguous.
func TestToggleAddOutOfOrder(t *testing.T) {
	later := hourSlot(2, "10:00:00", "11:00:00", 300)
	earlier := hourSlot(1, "09:00:00", "10:00:00", 300)

	sel, err := toggle(nil, later)
	if err != nil {
		t.Fatal(err)
	}
	sel, err = toggle(sel, earlier)
	if err != nil {
		t.Fatal(err)
	}
	if sel[0].ID != 1 || sel[1].ID != 2 {
		t.Errorf("selection not sorted by start: %v", sel)
	}
}

func TestToggleBookedSlotRejected(t *testing.T) {
	booked := Slot{ID: 5, Start: "09:00:00", End: "10:00:00", Booked: true}
	sel, err := toggle(nil, booked)
	if !errors.Is(err, ErrSlotUnavailable) {
		t.Fatalf("err = %v, want ErrSlotUnavailable", err)
	}
	if len(sel) != 0 {
		t.Errorf("booked slot entered selection: %v", sel)
	}
}

// Add then remove restores the prior selection exactly.
func TestToggleRemoveRestores(t *testing.T) {
	a := hourSlot(1, "09:00:00", "10:00:00", 300)
	b := hourSlot(2, "10:00:00", "11:00:00", 300)

	sel, _ := toggle(nil, a)
	before := append([]Slot(nil), sel...)

	sel, err := toggle(sel, b)
	if err != nil {
		t.Fatal(err)
	}
	sel, err = toggle(sel, b)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(sel, before) {
		t.Errorf("after add+remove selection = %v, want %v", sel, before)
	}
}

// Removing a middle slot is legal; the discontiguous remainder is the
// caller's problem.
func TestToggleRemoveMiddle(t *testing.T) {
	a := hourSlot(1, "09:00:00", "10:00:00", 300)
	b := hourSlot(2, "10:00:00", "11:00:00", 300)
	c := hourSlot(3, "11:00:00", "12:00:00", 400)

	sel, _ := toggle(nil, a)
	sel, _ = toggle(sel, b)
	sel, _ = toggle(sel, c)

	sel, err := toggle(sel, b)
	if err != nil {
		t.Fatalf("removing middle slot: %v", err)
	}
	if len(sel) != 2 || sel[0].ID != 1 || sel[1].ID != 3 {
		t.Errorf("selection = %v, want slots 1 and 3", sel)
	}
}

func TestTotal(t *testing.T) {
	sel := []Slot{
		hourSlot(1, "09:00:00", "10:00:00", 300),
		hourSlot(2, "10:00:00", "11:00:00", 300),
		hourSlot(3, "11:00:00", "12:00:00", 400),
	}
	if got := total(sel); got != 1000 {
		t.Errorf("total = %v, want 1000", got)
	}
	if got := total(nil); got != 0 {
		t.Errorf("empty total = %v, want 0", got)
	}
}

func TestTimeRange(t *testing.T) {
	sel := []Slot{
		hourSlot(1, "09:00:00", "10:00:00", 300),
		hourSlot(2, "10:00:00", "11:00:00", 300),
	}
	start, end, ok := timeRange(sel)
	if !ok || start != "09:00:00" || end != "11:00:00" {
		t.Errorf("timeRange = %q..%q ok=%v", start, end, ok)
	}
	if _, _, ok := timeRange(nil); ok {
		t.Error("empty selection must report ok=false")
	}
}
