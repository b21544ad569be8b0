package forward

import (
	"testing"
	"time"
)

type captureDiag struct {
	ids    []string
	values []interface{}
}

func (c *captureDiag) Emit(id, format string, args ...interface{}) {
	c.ids = append(c.ids, id)
	c.values = append(c.values, args...)
}

func TestMaybeWarnMissed_Throttle(t *testing.T) {
	diag := &captureDiag{}
	s := &State{diag: diag}
	base := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

	// Nothing missed: no warning.
	s.MaybeWarnMissed(base)
	if len(diag.ids) != 0 {
		t.Fatalf("warning fired with zero counter")
	}

	// Accumulate loss with no elapsed time: counter grows, no warning yet.
	const n = 7
	for i := 0; i < n; i++ {
		s.missed.Add(1)
	}
	if s.Missed() != n {
		t.Fatalf("missed = %d, want %d", s.Missed(), n)
	}

	// First warning fires immediately and carries the aggregate count.
	s.MaybeWarnMissed(base)
	if len(diag.ids) != 1 {
		t.Fatalf("expected 1 warning, got %d", len(diag.ids))
	}
	if diag.ids[0] != MessageForwardMissedID {
		t.Errorf("warning id = %q", diag.ids[0])
	}
	if diag.values[0] != uint64(n) {
		t.Errorf("warning value = %v, want %d", diag.values[0], n)
	}
	if s.Missed() != 0 {
		t.Errorf("counter not reset after warning: %d", s.Missed())
	}

	// Within the window loss keeps accumulating silently.
	s.missed.Add(3)
	s.MaybeWarnMissed(base.Add(10 * time.Second))
	if len(diag.ids) != 1 {
		t.Fatalf("warning fired inside the 30s window")
	}
	if s.Missed() != 3 {
		t.Errorf("counter disturbed inside the window: %d", s.Missed())
	}

	// Once the window elapses the next call warns with the accumulated count.
	s.MaybeWarnMissed(base.Add(WarnMissedInterval))
	if len(diag.ids) != 2 {
		t.Fatalf("expected second warning after window, got %d", len(diag.ids))
	}
	if diag.values[1] != uint64(3) {
		t.Errorf("second warning value = %v, want 3", diag.values[1])
	}
}
