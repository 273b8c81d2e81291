package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookupAspect_BuiltIns(t *testing.T) {
	a, ok := LookupAspect("emberblade")
	require.True(t, ok)
	assert.Equal(t, "Emberblade", a.Name)
	assert.Equal(t, 8.0, a.Passives["strength"])

	_, ok = LookupAspect("voidwalker")
	assert.False(t, ok)
}

func TestRegisterAspect_ReplacesEntry(t *testing.T) {
	RegisterAspect(&Aspect{
		ID:       "trialAspect",
		Name:     "Trial",
		Passives: map[string]float64{"defense": 1},
	})
	RegisterAspect(&Aspect{
		ID:       "trialAspect",
		Name:     "Trial II",
		Passives: map[string]float64{"defense": 2},
	})

	a, ok := LookupAspect("trialAspect")
	require.True(t, ok)
	assert.Equal(t, "Trial II", a.Name)
	assert.Equal(t, 2.0, a.Passives["defense"])
}

func TestAspectHolder_Passives(t *testing.T) {
	h := NewAspectHolder()
	assert.Nil(t, h.AspectPassives(), "no aspect active yet")
	assert.Nil(t, h.SubAspectPassives())

	require.True(t, h.SetAspect("wardenOath"))
	require.True(t, h.SetSubAspect("galewalker"))

	assert.Equal(t, 15.0, h.AspectPassives()["defense"])
	assert.Equal(t, 4.0, h.SubAspectPassives()["movementSpeed"])
}

func TestAspectHolder_UnknownIDRejected(t *testing.T) {
	h := NewAspectHolder()
	assert.False(t, h.SetAspect("voidwalker"))
	assert.False(t, h.SetSubAspect("voidwalker"))
	assert.Nil(t, h.AspectPassives())
}
