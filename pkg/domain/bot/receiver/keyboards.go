package receiver

import (
	"fmt"
	"strconv"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/turfhub/tg_turf_bot/pkg/client/turfapi"
	"github.com/turfhub/tg_turf_bot/pkg/domain/engine"
)

// ---------- UI builders ----------

func backRow() []tgbotapi.InlineKeyboardButton {
	return tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("⬅️ Back", CbBack))
}

func StartMenu() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("🔑 Login", CbStart)),
	)
}

func MainMenu() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("🏟 Book a turf", CbTurfs)),
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("📅 My bookings", CbMy)),
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("👤 Profile", CbProfile)),
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("❓ Help", CbHelp)),
	)
}

func TurfsMenu(turfs []turfapi.Turf) tgbotapi.InlineKeyboardMarkup {
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(turfs)+1)
	for _, t := range turfs {
		label := t.Name
		if t.IsFeatured {
			label = "⭐ " + label
		}
		if t.City != "" {
			label = fmt.Sprintf("%s — %s", label, t.City)
		}
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(label, PTurf+strconv.FormatInt(t.ID, 10)),
		))
	}
	rows = append(rows, backRow())
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func TurfCardMenu() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("🗓 Book this turf", CbBookTurf)),
		backRow(),
	)
}

// DateMenu offers today plus the next four days, the same window the
// mobile app shows.
func DateMenu(now time.Time) tgbotapi.InlineKeyboardMarkup {
	labels := []string{"Today", "Tomorrow"}
	var buttons []tgbotapi.InlineKeyboardButton
	for i := 0; i < 5; i++ {
		d := now.AddDate(0, 0, i)
		iso := d.Format("2006-01-02")
		label := d.Format("2 Jan")
		if i < len(labels) {
			label = labels[i]
		}
		buttons = append(buttons, tgbotapi.NewInlineKeyboardButtonData(label, PDate+iso))
	}
	return tgbotapi.NewInlineKeyboardMarkup(
		buttons[:3],
		buttons[3:],
		backRow(),
	)
}

// SlotsMenu renders the slot grid, two slots per row. Booked slots show
// a lock, selected ones a check mark.
func SlotsMenu(slots []engine.Slot, selected func(int64) bool, hasSelection bool) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	var row []tgbotapi.InlineKeyboardButton
	for _, s := range slots {
		var label string
		switch {
		case s.Booked:
			label = fmt.Sprintf("🔒 %s", slotLabel(s))
		case selected(s.ID):
			label = fmt.Sprintf("✅ %s", slotLabel(s))
		default:
			label = fmt.Sprintf("%s · ₹%.0f", slotLabel(s), s.Price)
		}
		row = append(row, tgbotapi.NewInlineKeyboardButtonData(label, PSlot+strconv.FormatInt(s.ID, 10)))
		if len(row) == 2 {
			rows = append(rows, row)
			row = nil
		}
	}
	if len(row) > 0 {
		rows = append(rows, row)
	}
	if hasSelection {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✔️ Continue", CbSlotsDone),
		))
	}
	rows = append(rows, backRow())
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func slotLabel(s engine.Slot) string {
	if s.StartDisplay != "" {
		return s.StartDisplay
	}
	if len(s.Start) >= 5 {
		return s.Start[:5]
	}
	return s.Start
}

func ConfirmMenu() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("✅ Confirm booking", CbConfirm)),
		backRow(),
	)
}

// BookingsMenu adds a cancel button per confirmed booking.
func BookingsMenu(bookings []turfapi.Booking) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	for _, b := range bookings {
		if b.BookingStatus != "confirmed" {
			continue
		}
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(
				fmt.Sprintf("❌ Cancel #%d", b.ID),
				PCancel+strconv.FormatInt(b.ID, 10),
			),
		))
	}
	rows = append(rows, backRow())
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func ProfileMenu() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✏️ Name", CbEditName),
			tgbotapi.NewInlineKeyboardButtonData("✏️ Email", CbEditEmail),
		),
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("🚪 Logout", CbLogout)),
		backRow(),
	)
}

func BackMenu() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(backRow())
}
