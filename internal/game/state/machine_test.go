package state

import (
	"testing"
	"time"

	"github.com/Aethelvnly/HEAVENSWORN/internal/clock"
	"github.com/Aethelvnly/HEAVENSWORN/internal/events"
)

func newTestMachine() (*Machine, *clock.ManualScheduler, *events.Recorder) {
	sched := clock.NewManualScheduler()
	rec := events.NewRecorder()
	return NewMachine("ent-1", sched, rec), sched, rec
}

func TestSetState_UnknownName(t *testing.T) {
	m, _, rec := newTestMachine()

	if m.SetState("isFlying", true, 0, "test") {
		t.Fatal("unknown state must be rejected")
	}
	if len(rec.Events()) != 0 {
		t.Fatalf("no events expected, got %d", len(rec.Events()))
	}
}

func TestSetState_EmitsStateChanged(t *testing.T) {
	m, _, rec := newTestMachine()

	if !m.SetState(StateSprinting, true, 0, "input") {
		t.Fatal("expected accept")
	}

	changed := rec.OfKind("StateChanged")
	if len(changed) != 1 {
		t.Fatalf("expected 1 StateChanged, got %d", len(changed))
	}
	ev := changed[0].(events.StateChanged)
	if ev.State != StateSprinting || ev.OldValue || !ev.NewValue || ev.Source != "input" {
		t.Fatalf("unexpected event payload: %+v", ev)
	}
}

func TestSetState_UnchangedValueIsNoOp(t *testing.T) {
	m, _, rec := newTestMachine()

	m.SetState(StateGuarding, true, 0, "test")
	rec.Reset()

	if !m.SetState(StateGuarding, true, 0, "test") {
		t.Fatal("unchanged value must return true")
	}
	if len(rec.Events()) != 0 {
		t.Fatalf("no-op must fire no events, got %d", len(rec.Events()))
	}
}

func TestSetState_StunBlocksCombatEntry(t *testing.T) {
	m, _, _ := newTestMachine()

	m.SetState(StateStunned, true, 0, "test")

	if m.SetState(StateInCombat, true, 0, "attack") {
		t.Fatal("stun (priority 90, blocksCombat) must block combat entry")
	}
	if m.GetState(StateInCombat) {
		t.Fatal("combat state must remain false after rejection")
	}
}

func TestSetState_StunBlocksGuardEntry(t *testing.T) {
	m, _, _ := newTestMachine()

	m.SetState(StateStunned, true, 0, "test")

	if m.SetState(StateGuarding, true, 0, "input") {
		t.Fatal("stun (blocksAbilities) must block guard entry")
	}
}

func TestSetState_DeadBlocksEverything(t *testing.T) {
	m, _, _ := newTestMachine()

	m.SetState(StateDead, true, 0, "test")

	for _, name := range []string{StateSprinting, StateGuarding, StateInCombat, StateCrouching} {
		if m.SetState(name, true, 0, "test") {
			t.Fatalf("dead (blocksAllStates) must block %s", name)
		}
	}
}

func TestSetState_LowerPriorityDoesNotBlock(t *testing.T) {
	m, _, _ := newTestMachine()

	// Silenced (70) blocksAbilities but guarding is priority 50... the
	// gate only considers strictly higher priorities, so check the
	// inverse: a lower-priority blocker never gates.
	m.SetState(StateCrouching, true, 0, "test")

	if !m.SetState(StateInCombat, true, 0, "attack") {
		t.Fatal("crouching must not block combat entry")
	}
}

func TestDeathCascade(t *testing.T) {
	m, _, rec := newTestMachine()

	m.SetState(StateInCombat, true, 0, "attack")
	m.SetState(StateGuarding, true, 0, "input")
	rec.Reset()

	if !m.SetState(StateDead, true, 0, "damage") {
		t.Fatal("death must be accepted")
	}

	if m.GetState(StateGuarding) || m.GetState(StateInCombat) {
		t.Fatal("death must force guard and combat off")
	}

	changed := rec.OfKind("StateChanged")
	if len(changed) != 3 {
		t.Fatalf("expected 3 StateChanged (dead, guard, combat), got %d", len(changed))
	}
}

func TestTimer_RevertsAfterDuration(t *testing.T) {
	m, sched, rec := newTestMachine()

	m.SetState(StateStunned, true, 2*time.Second, "spell")
	if !m.GetState(StateStunned) {
		t.Fatal("stun must be active")
	}

	sched.Advance(2 * time.Second)

	if m.GetState(StateStunned) {
		t.Fatal("stun must revert after duration")
	}

	ended := rec.OfKind("TimerEnded")
	if len(ended) != 1 || !ended[0].(events.TimerEnded).Expired {
		t.Fatalf("expected 1 expired TimerEnded, got %+v", ended)
	}
}

func TestTimer_RefreshReplacesExistingTimer(t *testing.T) {
	m, sched, _ := newTestMachine()

	m.SetState(StateInCombat, true, 5*time.Second, "attack")
	sched.Advance(1 * time.Second)
	m.SetState(StateInCombat, true, 5*time.Second, "attack")

	if got := sched.PendingCount(); got != 1 {
		t.Fatalf("expected exactly 1 live timer after refresh, got %d", got)
	}

	// 4s after refresh: the original timer would  have fired by now.
	sched.Advance(4 * time.Second)
	if !m.GetState(StateInCombat) {
		t.Fatal("combat must still be active; refresh restarted the window")
	}

	sched.Advance(1 * time.Second)
	if m.GetState(StateInCombat) {
		t.Fatal("combat must expire 5s after refresh")
	}
}

func TestTimer_UnchangedValueWithDurationRestartsTimer(t *testing.T) {
	m, sched, rec := newTestMachine()

	m.SetState(StateSilenced, true, 3*time.Second, "spell")
	rec.Reset()

	// Same value again, fresh duration: no StateChanged, new timer.
	m.SetState(StateSilenced, true, 3*time.Second, "spell")

	if len(rec.OfKind("StateChanged")) != 0 {
		t.Fatal("unchanged value must not emit StateChanged")
	}
	if len(rec.OfKind("TimerStarted")) != 1 {
		t.Fatal("fresh timer must be armed")
	}

	sched.Advance(3 * time.Second)
	if m.GetState(StateSilenced) {
		t.Fatal("silence must expire after refreshed duration")
	}
}

func TestTimer_ExplicitClearCancelsTimer(t *testing.T) {
	m, sched, _ := newTestMachine()

	m.SetState(StateStunned, true, 2*time.Second, "spell")
	m.SetState(StateStunned, false, 0, "cleanse")

	sched.Advance(5 * time.Second)

	if m.GetState(StateStunned) {
		t.Fatal("cancelled timer must not re-apply")
	}
	if got := sched.PendingCount(); got != 0 {
		t.Fatalf("expected no live timers, got %d", got)
	}
}

func TestEnterCombat_SlidingExpiry(t *testing.T) {
	m, sched, _ := newTestMachine()

	m.EnterCombat("attack")
	sched.Advance(10 * time.Second)
	m.RefreshCombat("attack")
	sched.Advance(10 * time.Second)

	if !m.GetState(StateInCombat) {
		t.Fatal("combat must survive 10s after a refresh")
	}

	sched.Advance(5 * time.Second)
	if m.GetState(StateInCombat) {
		t.Fatal("combat must expire 15s after last refresh")
	}
}

func TestCanPerform(t *testing.T) {
	tests := []struct {
		name    string
		active  []string
		cap     Capability
		allowed bool
	}{
		{"idle allows movement", nil, CapMovement, true},
		{"stun blocks movement", []string{StateStunned}, CapMovement, false},
		{"ragdoll blocks abilities", []string{StateRagdolled}, CapAbilities, false},
		{"guard blocks abilities", []string{StateGuarding}, CapAbilities, false},
		{"silence blocks abilities", []string{StateSilenced}, CapAbilities, false},
		{"guard allows movement", []string{StateGuarding}, CapMovement, true},
		{"stun blocks interaction", []string{StateStunned}, CapInteraction, false},
		{"silence allows interaction", []string{StateSilenced}, CapInteraction, true},
		{"invulnerable blocks damage", []string{StateInvulnerable}, CapTakeDamage, false},
		{"dead blocks damage", []string{StateDead}, CapTakeDamage, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, _, _ := newTestMachine()
			for _, s := range tt.active {
				m.SetState(s, true, 0, "test")
			}
			if got := m.CanPerform(tt.cap); got != tt.allowed {
				t.Fatalf("CanPerform(%s) = %v, want %v", tt.cap, got, tt.allowed)
			}
		})
	}
}

func TestCanPerform_UnknownCapabilityIsPermissive(t *testing.T) {
	m, _, _ := newTestMachine()
	m.SetState(StateDead, true, 0, "test")

	if !m.CanPerform("teleport") {
		t.Fatal("unknown capability must default to allowed")
	}
}

func TestAllStates_ReturnsIndependentCopy(t *testing.T) {
	m, _, _ := newTestMachine()

	snap := m.AllStates()
	snap[StateDead] = true

	if m.GetState(StateDead) {
		t.Fatal("mutating the snapshot must not affect the machine")
	}
}

func TestRestore_ReArmsTimers(t *testing.T) {
	m, sched, _ := newTestMachine()

	m.Restore(
		map[string]bool{StateStunned: true},
		map[string]TimerSnapshot{StateStunned: {RemainingMillis: 1500, RevertValue: false}},
	)

	if !m.GetState(StateStunned) {
		t.Fatal("restored state must be active")
	}

	sched.Advance(1500 * time.Millisecond)
	if m.GetState(StateStunned) {
		t.Fatal("re-armed timer must revert the state")
	}
}

func TestTimerSnapshots_ReportsRemaining(t *testing.T) {
	m, sched, _ := newTestMachine()

	m.SetState(StateStunned, true, 5*time.Second, "spell")
	sched.Advance(2 * time.Second)

	snaps := m.TimerSnapshots()
	snap, ok := snaps[StateStunned]
	if !ok {
		t.Fatal("expected a snapshot for the stun timer")
	}
	if snap.RemainingMillis != 3000 {
		t.Fatalf("expected 3000ms remaining, got %d", snap.RemainingMillis)
	}
	if snap.RevertValue {
		t.Fatal("revert value must be false")
	}
}
