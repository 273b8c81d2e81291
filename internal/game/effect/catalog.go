package effect

import (
	"fmt"
	"time"

	"github.com/Aethelvnly/HEAVENSWORN/internal/game/state"
	"github.com/Aethelvnly/HEAVENSWORN/internal/game/stats"
)

// catalog maps effect catalog id → template spec. Populated at init with
// the built-in effects; content packs register additional ones at startup.
var catalog = map[string]Spec{}

// Register adds a template to the effect catalog. Returns an error if the
// id is already taken or the spec is malformed.
func Register(spec Spec) error {
	if !spec.Valid() {
		return fmt.Errorf("registering effect %q: malformed spec", spec.CatalogID)
	}
	if _, ok := catalog[spec.CatalogID]; ok {
		return fmt.Errorf("registering effect %q: id already registered", spec.CatalogID)
	}
	catalog[spec.CatalogID] = spec
	return nil
}

// FromCatalog returns the template spec registered under id.
func FromCatalog(id string) (Spec, bool) {
	spec, ok := catalog[id]
	return spec, ok
}

func mustRegister(spec Spec) {
	if err := Register(spec); err != nil {
		panic(err)
	}
}

func init() {
	mustRegister(Spec{
		CatalogID: "stun",
		States:    map[string]bool{state.StateStunned: true},
		Duration:  2 * time.Second,
	})
	mustRegister(Spec{
		CatalogID: "silence",
		States:    map[string]bool{state.StateSilenced: true},
		Duration:  5 * time.Second,
	})
	mustRegister(Spec{
		CatalogID: "aegis",
		States:    map[string]bool{state.StateInvulnerable: true},
		Duration:  3 * time.Second,
	})
	mustRegister(Spec{
		CatalogID: "ironhide",
		Modifiers: map[string]float64{
			stats.StatDefense:    25,
			stats.StatResistance: 10,
		},
		Duration: 10 * time.Second,
	})
	mustRegister(Spec{
		CatalogID: "swiftness",
		Modifiers: map[string]float64{stats.StatMovementSpeed: 6},
		Duration:  8 * time.Second,
	})
	mustRegister(Spec{
		CatalogID: "titanGrip",
		Modifiers: map[string]float64{stats.StatStrength: 15},
		Duration:  12 * time.Second,
	})
	mustRegister(Spec{
		CatalogID: "wither",
		Modifiers: map[string]float64{stats.StatHealthRegenRate: -5},
		Duration:  6 * time.Second,
	})
	mustRegister(Spec{
		CatalogID: "secondWind",
		Modifiers: map[string]float64{
			stats.StatHealthRegenRate:  8,
			stats.StatStaminaRegenRate: 8,
		},
		Duration: 5 * time.Second,
	})
}
