package events

// Event is a gameplay notification published by the state core. Events are
// fire-and-forget: no subscriber acknowledgment, no backpressure.
type Event interface {
	Kind() string
}

// StateChanged fires when a boolean state flips on an entity.
type StateChanged struct {
	EntityID string
	State    string
	OldValue bool
	NewValue bool
	Source   string
}

func (StateChanged) Kind() string { return "StateChanged" }

// TimerStarted fires when a revert timer is armed for a state.
type TimerStarted struct {
	EntityID   string
	State      string
	DurationMs int64
}

func (TimerStarted) Kind() string { return "TimerStarted" }

// TimerEnded fires when a state revert timer expires or is cancelled.
type TimerEnded struct {
	EntityID string
	State    string
	Expired  bool // false when cancelled/replaced before firing
}

func (TimerEnded) Kind() string { return "TimerEnded" }

// EffectApplied fires after an effect instance is added to the stack.
type EffectApplied struct {
	EntityID   string
	InstanceID string
	CatalogID  string
	DurationMs int64 // 0 = permanent until removed
}

func (EffectApplied) Kind() string { return "EffectApplied" }

// EffectRemoved fires after an effect instance leaves the stack.
type EffectRemoved struct {
	EntityID   string
	InstanceID string
	CatalogID  string
	Expired    bool // true when removed by its own duration timer
}

func (EffectRemoved) Kind() string { return "EffectRemoved" }

// StatsModified fires when a recomputation changes any stat. Carries full
// before/after snapshots so subscribers never need to re-query.
type StatsModified struct {
	EntityID string
	Old      map[string]float64
	New      map[string]float64
}

func (StatsModified) Kind() string { return "StatsModified" }

// HealthChanged fires on every health update, including a clamped zero-net
// change (UI feedback relies on the event even when the value held).
type HealthChanged struct {
	EntityID string
	Old      float64
	New      float64
	Max      float64
}

func (HealthChanged) Kind() string { return "HealthChanged" }

// StaminaChanged fires on every stamina update, zero-net included.
type StaminaChanged struct {
	EntityID string
	Old      float64
	New      float64
	Max      float64
}

func (StaminaChanged) Kind() string { return "StaminaChanged" }
