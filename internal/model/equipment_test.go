package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEquipment_EquipAndDisplace(t *testing.T) {
	eq := NewEquipment()

	sword := &Item{ID: "sword-1", Name: "Iron Sword", Modifiers: map[string]float64{"strength": 5}}
	axe := &Item{ID: "axe-1", Name: "War Axe", Modifiers: map[string]float64{"strength": 9}}

	assert.Nil(t, eq.Equip(SlotMainHand, sword))
	assert.Equal(t, sword, eq.Equip(SlotMainHand, axe), "equipping returns the displaced item")
	assert.Equal(t, axe, eq.Get(SlotMainHand))
}

func TestEquipment_ModifierSets(t *testing.T) {
	eq := NewEquipment()
	eq.Equip(SlotChest, &Item{ID: "plate", Modifiers: map[string]float64{"defense": 20}})
	eq.Equip(SlotTrinket, &Item{ID: "charm", Modifiers: map[string]float64{"potency": 5}})
	eq.Equip(SlotHead, &Item{ID: "plain-cap"}) // no modifiers

	sets := eq.ModifierSets()

	assert.Len(t, sets, 2, "items without modifiers contribute no set")
}

func TestEquipment_Unequip(t *testing.T) {
	eq := NewEquipment()
	helm := &Item{ID: "helm", Modifiers: map[string]float64{"defense": 6}}
	eq.Equip(SlotHead, helm)

	assert.Equal(t, helm, eq.Unequip(SlotHead))
	assert.Nil(t, eq.Unequip(SlotHead), "unequipping an empty slot returns nil")
	assert.Empty(t, eq.ModifierSets())
}

func TestNormalizeModifiers(t *testing.T) {
	raw := map[string]any{
		"defense":  12.5,
		"strength": 3,
		"resistances": map[string]any{
			"resistance":       4,
			"magicProficiency": 2.0,
		},
		"onHitSound": "clang.ogg", // unusable, dropped
	}

	flat := NormalizeModifiers(raw)

	assert.Equal(t, 12.5, flat["defense"])
	assert.Equal(t, 3.0, flat["strength"])
	assert.Equal(t, 4.0, flat["resistance"], "nested tables flatten one level")
	assert.Equal(t, 2.0, flat["magicProficiency"])
	assert.NotContains(t, flat, "onHitSound")
	assert.NotContains(t, flat, "resistances")
}

func TestAspectHolder(t *testing.T) {
	h := NewAspectHolder()

	assert.Empty(t, h.AspectPassives(), "no aspect yet")
	assert.False(t, h.SetAspect("voidwhisper"), "unknown aspect rejected")

	assert.True(t, h.SetAspect("wardenOath"))
	assert.Equal(t, 15.0, h.AspectPassives()["defense"])

	assert.True(t, h.SetSubAspect("galewalker"))
	assert.Equal(t, 4.0, h.SubAspectPassives()["movementSpeed"])
}
