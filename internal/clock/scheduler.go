package clock

import (
	"sync"
	"time"
)

// Scheduler delays a callback and hands back a cancellable handle.
// Gameplay timers (state reverts, effect expiry, combat cooldown) are all
// driven through this interface so tests can substitute a manual clock.
type Scheduler interface {
	// Schedule runs fn after delay. The callback runs on the scheduler's
	// goroutine; callers that need serialization must lock inside fn.
	Schedule(delay time.Duration, fn func()) Handle

	// Now returns the scheduler's current time.
	Now() time.Time
}

// Handle cancels a scheduled callback. Cancel is idempotent: cancelling an
// already-fired or already-cancelled timer is a no-op.
type Handle interface {
	Cancel()
}

// WallScheduler schedules against the real clock via time.AfterFunc.
type WallScheduler struct{}

// NewWallScheduler returns a Scheduler backed by the system clock.
func NewWallScheduler() *WallScheduler {
	return &WallScheduler{}
}

func (s *WallScheduler) Schedule(delay time.Duration, fn func()) Handle {
	return &wallHandle{timer: time.AfterFunc(delay, fn)}
}

func (s *WallScheduler) Now() time.Time {
	return time.Now()
}

type wallHandle struct {
	mu    sync.Mutex
	timer *time.Timer
}

func (h *wallHandle) Cancel() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.timer != nil {
		h.timer.Stop()
		h.timer = nil
	}
}
