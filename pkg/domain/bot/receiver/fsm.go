package receiver

import (
	"strings"
	"sync"

	"github.com/turfhub/tg_turf_bot/pkg/domain/engine"
)

// ---------- FSM ----------

type State int

const (
	StateStart State = iota
	StateAuthPhone
	StateAuthOTP
	StateMain
	StateTurfs
	StateTurfCard
	StateBookDate
	StateBookSlots
	StateBookConfirm
	StateMy
	StateProfile
	StateProfileEditName
	StateProfileEditEmail
	StateHelp
)

var stateNames = map[State]string{
	StateStart:            "start",
	StateAuthPhone:        "auth_phone",
	StateAuthOTP:          "auth_otp",
	StateMain:             "main",
	StateTurfs:            "turfs",
	StateTurfCard:         "turf_card",
	StateBookDate:         "book_date",
	StateBookSlots:        "book_slots",
	StateBookConfirm:      "book_confirm",
	StateMy:               "my",
	StateProfile:          "profile",
	StateProfileEditName:  "profile_edit_name",
	StateProfileEditEmail: "profile_edit_email",
	StateHelp:             "help",
}

func (s State) String() string {
	if n, ok := stateNames[s]; ok {
		return n
	}
	return "main"
}

func stateFromString(name string) State {
	for s, n := range stateNames {
		if n == name {
			return s
		}
	}
	return StateMain
}

// bookingStates cannot be restored from a persisted snapshot: the slot
// engine's selection only lives in memory.
func (s State) inBookingFlow() bool {
	switch s {
	case StateTurfCard, StateBookDate, StateBookSlots, StateBookConfirm:
		return true
	}
	return false
}

// BookingDraft is the in-progress booking: the chosen turf and date plus
// the slot engine holding the day's slots and the selection.
type BookingDraft struct {
	TurfID   int64
	TurfName string
	Date     string // YYYY-MM-DD
	Engine   *engine.Engine
}

// Session is one user's conversation state. Sessions are only touched
// from the update loop, one update at a time.
type Session struct {
	State   State
	history []State
	Phone   string // phone awaiting OTP verification
	Draft   BookingDraft
	// MenuMessageID is the message the bot keeps editing in place.
	MenuMessageID int
}

func (s *Session) Go(to State) {
	s.history = append(s.history, s.State)
	s.State = to
}

func (s *Session) Back() {
	if n := len(s.history); n > 0 {
		s.State = s.history[n-1]
		s.history = s.history[:n-1]
	} else {
		s.State = StateMain
	}
}

func (s *Session) ResetFlow() {
	s.State = StateMain
	s.history = s.history[:0]
	s.Phone = ""
	s.Draft = BookingDraft{}
}

// ---------- Session store (in-memory, thread-safe) ----------

type Store struct {
	mu sync.RWMutex
	m  map[int64]*Session
}

func NewStore() *Store {
	return &Store{m: make(map[int64]*Session)}
}

func (s *Store) Get(userID int64) *Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sess, ok := s.m[userID]; ok {
		return sess
	}
	se := &Session{State: StateStart}
	s.m[userID] = se
	return se
}

// Put installs a session restored from a persisted snapshot. Existing
// in-memory sessions win.
func (s *Store) Put(userID int64, sess *Session) *Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.m[userID]; ok {
		return existing
	}
	s.m[userID] = sess
	return sess
}

func (s *Store) Has(userID int64) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.m[userID]
	return ok
}

// ---------- Callback keys ----------

const (
	CbStart     = "start"
	CbTurfs     = "turfs"
	CbMy        = "my"
	CbProfile   = "profile"
	CbHelp      = "help"
	CbBack      = "back"
	CbBookTurf  = "book"    // turf card -> date pick
	CbSlotsDone = "done"    // slot grid -> confirmation
	CbConfirm   = "confirm" // confirmation -> submit
	CbLogout    = "logout"
	CbEditName  = "edit_name"
	CbEditEmail = "edit_email"

	PTurf   = "t:" // t:7
	PDate   = "d:" // d:2025-08-30
	PSlot   = "s:" // s:1234
	PCancel = "c:" // c:99  cancel booking
)

func Is(k, prefix string) (string, bool) {
	if strings.HasPrefix(k, prefix) {
		return strings.TrimPrefix(k, prefix), true
	}
	return "", false
}
