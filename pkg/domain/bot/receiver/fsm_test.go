package receiver

import "testing"

func TestSessionGoAndBack(t *testing.T) {
	sess := &Session{State: StateMain}

	sess.Go(StateTurfs)
	sess.Go(StateTurfCard)
	if sess.State != StateTurfCard {
		t.Fatalf("state = %v, want %v", sess.State, StateTurfCard)
	}

	sess.Back()
	if sess.State != StateTurfs {
		t.Fatalf("after back: state = %v, want %v", sess.State, StateTurfs)
	}
	sess.Back()
	if sess.State != StateMain {
		t.Fatalf("after back x2: state = %v, want %v", sess.State, StateMain)
	}

	// Empty history falls back to the main menu.
	sess.Back()
	if sess.State != StateMain {
		t.Fatalf("back on empty history: state = %v, want %v", sess.State, StateMain)
	}
}

func TestSessionResetFlow(t *testing.T) {
	sess := &Session{State: StateMain}
	sess.Go(StateTurfs)
	sess.Go(StateTurfCard)
	sess.Phone = "9876543210"
	sess.Draft = BookingDraft{TurfID: 7, TurfName: "Green Arena", Date: "2026-09-01"}

	sess.ResetFlow()

	if sess.State != StateMain {
		t.Errorf("state = %v, want %v", sess.State, StateMain)
	}
	if sess.Phone != "" {
		t.Errorf("phone not cleared: %q", sess.Phone)
	}
	if sess.Draft.TurfID != 0 || sess.Draft.Engine != nil {
		t.Errorf("draft not cleared: %+v", sess.Draft)
	}
	sess.Back()
	if sess.State != StateMain {
		t.Errorf("history not cleared, back went to %v", sess.State)
	}
}

func TestStateNameRoundTrip(t *testing.T) {
	for st, name := range stateNames {
		if got := stateFromString(name); got != st {
			t.Errorf("stateFromString(%q) = %v, want %v", name, got, st)
		}
	}
	if got := stateFromString("no_such_state"); got != StateMain {
		t.Errorf("unknown name = %v, want %v", got, StateMain)
	}
}

func TestInBookingFlow(t *testing.T) {
	flow := map[State]bool{
		StateTurfCard:    true,
		StateBookDate:    true,
		StateBookSlots:   true,
		StateBookConfirm: true,
	}
	for st := range stateNames {
		if got := st.inBookingFlow(); got != flow[st] {
			t.Errorf("%v.inBookingFlow() = %v, want %v", st, got, flow[st])
		}
	}
}

func TestIsPrefix(t *testing.T) {
	if val, ok := Is("t:42", PTurf); !ok || val != "42" {
		t.Errorf("Is(t:42, PTurf) = %q, %v", val, ok)
	}
	if val, ok := Is("d:2026-09-01", PDate); !ok || val != "2026-09-01" {
		t.Errorf("Is(d:..., PDate) = %q, %v", val, ok)
	}
	if _, ok := Is("s:5", PDate); ok {
		t.Error("Is(s:5, PDate) matched")
	}
}

func TestStorePutKeepsExisting(t *testing.T) {
	store := NewStore()
	orig := store.Get(1)
	orig.Go(StateTurfs)

	restored := store.Put(1, &Session{State: StateMain})
	if restored != orig {
		t.Fatal("Put replaced a live session")
	}
	if !store.Has(1) || store.Has(2) {
		t.Error("Has reports wrong membership")
	}
}
