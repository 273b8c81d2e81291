package clock

import (
	"sort"
	"sync"
	"time"
)

// ManualScheduler is a deterministic Scheduler for tests. Time only moves
// when Advance is called; due callbacks fire synchronously, in order.
type ManualScheduler struct {
	mu      sync.Mutex
	now     time.Time
	nextID  int64
	pending []*manualTimer
}

type manualTimer struct {
	id        int64
	deadline  time.Time
	fn        func()
	cancelled bool
	sched     *ManualScheduler
}

// NewManualScheduler creates a manual scheduler starting at an arbitrary
// fixed epoch.
func NewManualScheduler() *ManualScheduler {
	return &ManualScheduler{now: time.Unix(1_000_000, 0)}
}

func (s *ManualScheduler) Schedule(delay time.Duration, fn func()) Handle {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	t := &manualTimer{
		id:       s.nextID,
		deadline: s.now.Add(delay),
		fn:       fn,
		sched:    s,
	}
	s.pending = append(s.pending, t)
	return t
}

func (s *ManualScheduler) Now() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.now
}

// Advance moves the clock forward by d, firing every due callback in
// deadline order (FIFO for equal deadlines). Callbacks run without the
// scheduler lock held, so they may schedule or cancel freely.
func (s *ManualScheduler) Advance(d time.Duration) {
	s.mu.Lock()
	target := s.now.Add(d)
	s.mu.Unlock()

	for {
		t := s.popDue(target)
		if t == nil {
			break
		}
		t.fn()
	}

	s.mu.Lock()
	s.now = target
	s.mu.Unlock()
}

// PendingCount returns the number of live (not cancelled, not fired) timers.
func (s *ManualScheduler) PendingCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, t := range s.pending {
		if !t.cancelled {
			n++
		}
	}
	return n
}

// popDue removes and returns the earliest timer due at or before target,
// advancing the internal clock to its deadline. Returns nil if none.
func (s *ManualScheduler) popDue(target time.Time) *manualTimer {
	s.mu.Lock()
	defer s.mu.Unlock()

	sort.SliceStable(s.pending, func(i, j int) bool {
		if s.pending[i].deadline.Equal(s.pending[j].deadline) {
			return s.pending[i].id < s.pending[j].id
		}
		return s.pending[i].deadline.Before(s.pending[j].deadline)
	})

	for i, t := range s.pending {
		if t.cancelled {
			continue
		}
		if t.deadline.After(target) {
			break
		}
		s.pending = append(s.pending[:i], s.pending[i+1:]...)
		if t.deadline.After(s.now) {
			s.now = t.deadline
		}
		return t
	}
	return nil
}

func (t *manualTimer) Cancel() {
	t.sched.mu.Lock()
	defer t.sched.mu.Unlock()
	t.cancelled = true
}
