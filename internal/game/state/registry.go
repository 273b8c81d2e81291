package state

import "time"

// Canonical state names. Serialized blobs and effect catalog entries refer
// to states by these strings.
const (
	StateDead         = "isDead"
	StateStunned      = "isStunned"
	StateRagdolled    = "isRagdolled"
	StateInvulnerable = "isInvulnerable"
	StateSilenced     = "isSilenced"
	StateGuarding     = "isGuarding"
	StateInCombat     = "isInCombat"
	StateSprinting    = "isSprinting"
	StateCrouching    = "isCrouching"
)

// Capability categories checked by CanPerform.
type Capability string

const (
	CapMovement    Capability = "movement"
	CapAbilities   Capability = "abilities"
	CapInteraction Capability = "interaction"
	CapTakeDamage  Capability = "takeDamage"
)

// CombatCooldown is how long combat stance lasts without being refreshed.
const CombatCooldown = 15 * time.Second

// Definition is a static catalog entry for one boolean state.
// Higher priority wins when two active states conflict.
type Definition struct {
	Name     string
	Default  bool
	Priority int32

	BlocksMovement    bool
	BlocksAbilities   bool
	BlocksInteraction bool
	BlocksDamage      bool
	BlocksCombat      bool
	BlocksAllStates   bool

	// Cooldown is only set for the combat state and drives the sliding
	// expiry window of EnterCombat/RefreshCombat.
	Cooldown time.Duration
}

// registry is the static state catalog. Never mutated after init.
var registry = map[string]Definition{
	StateDead: {
		Name:            StateDead,
		Priority:        100,
		BlocksAllStates: true,
	},
	StateStunned: {
		Name:              StateStunned,
		Priority:          90,
		BlocksMovement:    true,
		BlocksAbilities:   true,
		BlocksInteraction: true,
		BlocksCombat:      true,
	},
	StateRagdolled: {
		Name:            StateRagdolled,
		Priority:        85,
		BlocksMovement:  true,
		BlocksAbilities: true,
	},
	StateInvulnerable: {
		Name:         StateInvulnerable,
		Priority:     80,
		BlocksDamage: true,
	},
	StateSilenced: {
		Name:            StateSilenced,
		Priority:        70,
		BlocksAbilities: true,
	},
	StateGuarding: {
		Name:     StateGuarding,
		Priority: 50,
	},
	StateInCombat: {
		Name:     StateInCombat,
		Priority: 40,
		Cooldown: CombatCooldown,
	},
	StateSprinting: {
		Name:     StateSprinting,
		Priority: 20,
	},
	StateCrouching: {
		Name:     StateCrouching,
		Priority: 10,
	},
}

// Lookup returns the catalog definition for name.
func Lookup(name string) (Definition, bool) {
	def, ok := registry[name]
	return def, ok
}

// Known returns true if name is in the catalog.
func Known(name string) bool {
	_, ok := registry[name]
	return ok
}

// Names returns all catalog state names (unordered).
func Names() []string {
	out := make([]string, 0, len(registry))
	for name := range registry {
		out = append(out, name)
	}
	return out
}
