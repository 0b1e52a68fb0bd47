package receiver

import (
	"fmt"
	"strings"
	"time"

	"github.com/turfhub/tg_turf_bot/pkg/client/turfapi"
	"github.com/turfhub/tg_turf_bot/pkg/domain/engine"
)

// OutcomeMessage maps a booking outcome to its user-facing text. The
// mapping is fixed: every outcome has exactly one message, used at every
// call site.
func OutcomeMessage(o engine.Outcome) string {
	switch o.Kind {
	case engine.OutcomeCreated:
		return fmt.Sprintf("✅ Booking #%d confirmed. See you on the turf!", o.BookingID)
	case engine.OutcomeValidationFailure:
		return "Please select at least one slot."
	case engine.OutcomeConflict:
		return "Selected time slots are no longer available. Please choose different slots."
	case engine.OutcomeInvalidRequest:
		return "Invalid booking information. Please check all fields."
	case engine.OutcomeServerError:
		return "Server error. Please try again in a moment."
	case engine.OutcomeAuthExpired:
		return "Session expired. Please login again."
	case engine.OutcomeNetworkError:
		return "Network error. Please check your connection."
	}
	return "Unable to create booking. Please try again."
}

func HumanDate(iso string) string {
	t, err := time.Parse("2006-01-02", iso)
	if err != nil {
		return iso
	}
	return t.Format("Mon, 2 Jan")
}

func displayRange(start, end string) string {
	trim := func(s string) string {
		if len(s) >= 5 {
			return s[:5]
		}
		return s
	}
	return trim(start) + " – " + trim(end)
}

func turfCardText(t *turfapi.Turf) string {
	var b strings.Builder
	fmt.Fprintf(&b, "🏟 %s\n", t.Name)
	if t.City != "" || t.State != "" {
		fmt.Fprintf(&b, "📍 %s", t.City)
		if t.State != "" {
			fmt.Fprintf(&b, ", %s", t.State)
		}
		b.WriteString("\n")
	}
	if t.SportType != "" {
		fmt.Fprintf(&b, "⚽ %s\n", t.SportType)
	}
	if t.UniformPrice > 0 {
		fmt.Fprintf(&b, "💰 ₹%.0f per slot\n", float64(t.UniformPrice))
	}
	return b.String()
}

func slotsText(draft BookingDraft, slots []engine.Slot) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s — %s\n", draft.TurfName, HumanDate(draft.Date))
	if len(slots) == 0 {
		b.WriteString("\nNo slots available for this date.")
		return b.String()
	}
	b.WriteString("Tap slots to select a continuous block:")
	if sel := draft.Engine.Selection(); len(sel) > 0 {
		start, end, _ := draft.Engine.TimeRange()
		fmt.Fprintf(&b, "\n\nSelected: %d slot(s), %s\nTotal: ₹%.0f",
			len(sel), displayRange(start, end), draft.Engine.Total())
	}
	return b.String()
}

func confirmText(draft BookingDraft) string {
	sel := draft.Engine.Selection()
	start, end, _ := draft.Engine.TimeRange()
	var b strings.Builder
	b.WriteString("Booking summary\n\n")
	fmt.Fprintf(&b, "🏟 %s\n", draft.TurfName)
	fmt.Fprintf(&b, "📅 %s\n", HumanDate(draft.Date))
	fmt.Fprintf(&b, "🕐 %s (%d slot(s))\n", displayRange(start, end), len(sel))
	fmt.Fprintf(&b, "💰 Total: ₹%.0f", draft.Engine.Total())
	return b.String()
}

func bookingsText(bookings []turfapi.Booking) string {
	if len(bookings) == 0 {
		return "No bookings yet."
	}
	var b strings.Builder
	b.WriteString("Your bookings:\n")
	for _, bk := range bookings {
		name := "Turf"
		if bk.Turf != nil && bk.Turf.Name != "" {
			name = bk.Turf.Name
		}
		fmt.Fprintf(&b, "\n#%d · %s\n%s · %s\n₹%.0f · %s\n",
			bk.ID, name, HumanDate(bk.BookingDate),
			displayRange(bk.StartTime, bk.EndTime),
			float64(bk.Amount), bk.BookingStatus)
	}
	return b.String()
}

func profileText(p *turfapi.Player) string {
	name := p.Name
	if name == "" {
		name = "—"
	}
	email := p.Email
	if email == "" {
		email = "—"
	}
	return fmt.Sprintf("👤 Profile\n\nName: %s\nPhone: %s\nEmail: %s", name, p.Phone, email)
}

const helpText = "Book a turf in three taps: pick a turf, pick a date, " +
	"tap the slots you want (they must form one continuous block) and confirm. " +
	"Cancel confirmed bookings from My bookings."

const welcomeText = "Welcome to the turf booking bot! " +
	"Login with your phone number to browse turfs and book slots."
