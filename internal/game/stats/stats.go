package stats

// Canonical stat names. The stat set is fixed: modifier tables referring
// to names outside this set are ignored at the fold boundary.
const (
	StatHealth           = "health"
	StatMaxHealth        = "maxHealth"
	StatStamina          = "stamina"
	StatMaxStamina       = "maxStamina"
	StatStrength         = "strength"
	StatMovementSpeed    = "movementSpeed"
	StatDefense          = "defense"
	StatResistance       = "resistance"
	StatAttackSpeed      = "attackSpeed"
	StatPotency          = "potency"
	StatHealthRegenRate  = "healthRegenRate"
	StatStaminaRegenRate = "staminaRegenRate"
	StatMagicProficiency = "magicProficiency"
)

var known = map[string]struct{}{
	StatHealth:           {},
	StatMaxHealth:        {},
	StatStamina:          {},
	StatMaxStamina:       {},
	StatStrength:         {},
	StatMovementSpeed:    {},
	StatDefense:          {},
	StatResistance:       {},
	StatAttackSpeed:      {},
	StatPotency:          {},
	StatHealthRegenRate:  {},
	StatStaminaRegenRate: {},
	StatMagicProficiency: {},
}

// KnownStat returns true if name is part of the fixed stat set.
func KnownStat(name string) bool {
	_, ok := known[name]
	return ok
}

// DefaultBase returns the baseline stat table a fresh entity starts with.
func DefaultBase() map[string]float64 {
	return map[string]float64{
		StatHealth:           100,
		StatMaxHealth:        100,
		StatStamina:          100,
		StatMaxStamina:       100,
		StatStrength:         10,
		StatMovementSpeed:    16,
		StatDefense:          10,
		StatResistance:       10,
		StatAttackSpeed:      1,
		StatPotency:          10,
		StatHealthRegenRate:  0,
		StatStaminaRegenRate: 5,
		StatMagicProficiency: 0,
	}
}
