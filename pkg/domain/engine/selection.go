package engine

import (
	"errors"
	"sort"
)

var (
	// ErrSlotUnavailable is returned when the user taps a booked slot.
	ErrSlotUnavailable = errors.New("slot is already booked")
	// ErrNotContiguous is returned when adding a slot would leave a gap
	// in the selection.
	ErrNotContiguous = errors.New("selection must be contiguous")
	// ErrUnknownSlot is returned when the slot id does not belong to the
	// currently loaded date.
	ErrUnknownSlot = errors.New("unknown slot id")
)

// isContiguous reports whether slots, sorted by start time, form one
// unbroken block: every slot ends exactly where the next one starts.
// Zero or one slot is trivially contiguous.
func isContiguous(slots []Slot) bool {
	for i := 1; i < len(slots); i++ {
		if slots[i].Start != slots[i-1].End {
			return false
		}
	}
	return true
}

// toggle returns the selection after adding or removing slot.
//
// Removing a member is always legal, even from the middle of a block;
// contiguity is only enforced at add time. The returned slice is a new
// value, the input is never mutated.
func toggle(selection []Slot, slot Slot) ([]Slot, error) {
	if slot.Booked {
		return selection, ErrSlotUnavailable
	}

	for i, s := range selection {
		if s.ID == slot.ID {
			next := make([]Slot, 0, len(selection)-1)
			next = append(next, selection[:i]...)
			next = append(next, selection[i+1:]...)
			return next, nil
		}
	}

	candidate := make([]Slot, 0, len(selection)+1)
	candidate = append(candidate, selection...)
	candidate = append(candidate, slot)
	sort.Slice(candidate, func(i, j int) bool { return candidate[i].Start < candidate[j].Start })

	if !isContiguous(candidate) {
		return selection, ErrNotContiguous
	}
	return candidate, nil
}

func total(selection []Slot) float64 {
	var sum float64
	for _, s := range selection {
		sum += s.Price
	}
	return sum
}

// timeRange returns the start of the earliest and the end of the latest
// selected slot. ok is false for an empty selection.
func timeRange(selection []Slot) (start, end string, ok bool) {
	if len(selection) == 0 {
		return "", "", false
	}
	return selection[0].Start, selection[len(selection)-1].End, true
}
