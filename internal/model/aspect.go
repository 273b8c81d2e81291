package model

import (
	"log/slog"
	"sync"
)

// Aspect is a catalog entry describing a playable aspect or sub-aspect
// and its passive stat perks.
type Aspect struct {
	ID       string
	Name     string
	Passives map[string]float64
}

// aspectCatalog holds the known aspects and sub-aspects. Populated at
// init with the built-ins; content packs may register more at startup.
var (
	aspectCatalogMu sync.RWMutex
	aspectCatalog   = map[string]*Aspect{}
)

// RegisterAspect adds an aspect to the catalog, replacing any previous
// entry with the same id.
func RegisterAspect(a *Aspect) {
	aspectCatalogMu.Lock()
	defer aspectCatalogMu.Unlock()
	aspectCatalog[a.ID] = a
}

// LookupAspect returns the catalog aspect for id.
func LookupAspect(id string) (*Aspect, bool) {
	aspectCatalogMu.RLock()
	defer aspectCatalogMu.RUnlock()
	a, ok := aspectCatalog[id]
	return a, ok
}

// AspectHolder tracks the active aspect and sub-aspect of one entity and
// implements stats.AspectSource.
//
// Thread-safe: protected by sync.RWMutex.
type AspectHolder struct {
	mu        sync.RWMutex
	aspect    *Aspect
	subAspect *Aspect
}

// NewAspectHolder creates a holder with no active aspect.
func NewAspectHolder() *AspectHolder {
	return &AspectHolder{}
}

// SetAspect activates the catalog aspect with the given id. Returns false
// and logs if the id is unknown.
func (h *AspectHolder) SetAspect(id string) bool {
	a, ok := LookupAspect(id)
	if !ok {
		slog.Warn("setAspect: unknown aspect", "aspect", id)
		return false
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.aspect = a
	return true
}

// SetSubAspect activates the catalog sub-aspect with the given id.
func (h *AspectHolder) SetSubAspect(id string) bool {
	a, ok := LookupAspect(id)
	if !ok {
		slog.Warn("setSubAspect: unknown sub-aspect", "subAspect", id)
		return false
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.subAspect = a
	return true
}

// AspectPassives returns the active aspect's perk table, empty if none.
func (h *AspectHolder) AspectPassives() map[string]float64 {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.aspect == nil {
		return nil
	}
	return h.aspect.Passives
}

// SubAspectPassives returns the active sub-aspect's perk table.
func (h *AspectHolder) SubAspectPassives() map[string]float64 {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.subAspect == nil {
		return nil
	}
	return h.subAspect.Passives
}

func init() {
	RegisterAspect(&Aspect{
		ID:   "emberblade",
		Name: "Emberblade",
		Passives: map[string]float64{
			"strength": 8,
			"potency":  12,
		},
	})
	RegisterAspect(&Aspect{
		ID:   "wardenOath",
		Name: "Warden's Oath",
		Passives: map[string]float64{
			"defense":   15,
			"maxHealth": 40,
		},
	})
	RegisterAspect(&Aspect{
		ID:   "galewalker",
		Name: "Galewalker",
		Passives: map[string]float64{
			"movementSpeed":    4,
			"staminaRegenRate": 3,
		},
	})
	RegisterAspect(&Aspect{
		ID:   "riteOfCinders",
		Name: "Rite of Cinders",
		Passives: map[string]float64{
			"magicProficiency": 20,
			"healthRegenRate":  1,
		},
	})
}
