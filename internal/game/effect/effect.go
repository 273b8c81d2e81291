package effect

import (
	"time"
)

// Spec describes an effect to apply: which states it claims, which stat
// modifiers it contributes, and for how long. Duration 0 means permanent
// until explicitly removed.
type Spec struct {
	CatalogID string
	States    map[string]bool
	Modifiers map[string]float64
	Duration  time.Duration
}

// Valid reports whether the spec is well-formed: a catalog id and at least
// one claim of either kind.
func (s Spec) Valid() bool {
	return s.CatalogID != "" && (len(s.States) > 0 || len(s.Modifiers) > 0)
}

// Instance is one live application of a catalog effect. The same catalog
// effect can be applied multiple times as distinct instances. Owned
// exclusively by the Stack.
type Instance struct {
	ID        string
	CatalogID string
	AppliedAt time.Time
	Duration  time.Duration

	// stateClaims / statClaims record only what was actually accepted;
	// claims rejected by the blocking policy are dropped from the
	// bookkeeping.
	stateClaims map[string]bool
	statClaims  map[string]float64

	timerSeq uint64
	handle   cancelable
}

type cancelable interface {
	Cancel()
}

// StateClaims returns a copy of the state claims this instance holds.
func (in *Instance) StateClaims() map[string]bool {
	out := make(map[string]bool, len(in.stateClaims))
	for name, v := range in.stateClaims {
		out[name] = v
	}
	return out
}

// StatClaims returns a copy of the stat modifiers this instance applied.
func (in *Instance) StatClaims() map[string]float64 {
	out := make(map[string]float64, len(in.statClaims))
	for name, v := range in.statClaims {
		out[name] = v
	}
	return out
}
