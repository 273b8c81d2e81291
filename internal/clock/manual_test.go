package clock

import (
	"testing"
	"time"
)

func TestManualScheduler_FiresInDeadlineOrder(t *testing.T) {
	s := NewManualScheduler()

	var fired []string
	s.Schedule(2*time.Second, func() { fired = append(fired, "b") })
	s.Schedule(1*time.Second, func() { fired = append(fired, "a") })
	s.Schedule(3*time.Second, func() { fired = append(fired, "c") })

	s.Advance(2 * time.Second)

	if len(fired) != 2 || fired[0] != "a" || fired[1] != "b" {
		t.Fatalf("expected [a b], got %v", fired)
	}

	s.Advance(1 * time.Second)
	if len(fired) != 3 || fired[2] != "c" {
		t.Fatalf("expected c to fire, got %v", fired)
	}
}

func TestManualScheduler_CancelIsIdempotent(t *testing.T) {
	s := NewManualScheduler()

	fired := false
	h := s.Schedule(time.Second, func() { fired = true })

	h.Cancel()
	h.Cancel() // second cancel is a no-op

	s.Advance(2 * time.Second)
	if fired {
		t.Fatal("cancelled timer must not fire")
	}
	if s.PendingCount() != 0 {
		t.Fatalf("expected 0 pending, got %d", s.PendingCount())
	}
}

func TestManualScheduler_CallbackMayReschedule(t *testing.T) {
	s := NewManualScheduler()

	count := 0
	s.Schedule(time.Second, func() {
		count++
		s.Schedule(time.Second, func() { count++ })
	})

	s.Advance(2 * time.Second)
	if count != 2 {
		t.Fatalf("expected chained timer to fire, count=%d", count)
	}
}

func TestManualScheduler_NowAdvances(t *testing.T) {
	s := NewManualScheduler()
	start := s.Now()

	s.Advance(90 * time.Second)

	if got := s.Now().Sub(start); got != 90*time.Second {
		t.Fatalf("expected 90s elapsed, got %v", got)
	}
}
