package skins

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ItzWarty/liblolskins/internal/inibin"
)

func TestInventory_Modern(t *testing.T) {
	a := newFixture(t)
	// Non-canonical and empty folders are skipped.
	a.AddFile(CharactersPath+"/Ashe/Skins/Skin1/Skin1.inibin", []byte{})
	a.AddFile(CharactersPath+"/Ashe/Skins/Skin05/readme.txt", []byte("wip"))
	a.AddFile(CharactersPath+"/Ashe/Skins/Chroma/Chroma.inibin", []byte{})

	inv, err := NewResolver(a).Inventory("ASHE")
	require.NoError(t, err)
	assert.Equal(t, "Ashe", inv.Character)
	assert.Equal(t, Modern, inv.Layout)
	assert.Equal(t, []uint32{0, 1, 2}, inv.Indices())
	assert.True(t, inv.Has(2))
	assert.False(t, inv.Has(5))

	// Every listed skin resolves.
	for _, idx := range inv.Indices() {
		_, err := ResolveSkin(a, "Ashe", idx)
		assert.NoError(t, err, "skin %d", idx)
	}
}

func TestInventory_Legacy(t *testing.T) {
	a := newFixture(t)
	inv, err := NewResolver(a).Inventory("garen")
	require.NoError(t, err)
	assert.Equal(t, Legacy, inv.Layout)
	assert.Equal(t, []uint32{0, 1, 2, 3, 4}, inv.Indices())
}

func TestInventory_LegacySparse(t *testing.T) {
	a := newFixture(t)
	data := inibin.NewBuilder().
		Set(LegacySection(0), "SimpleSkin", "Nunu.skn").
		Set(LegacySection(6), "SimpleSkin", "Nunu6.skn").
		Set(LegacySection(3), "SimpleSkin", int32(3)).
		MustBuild()
	a.AddFile(CharactersPath+"/Nunu/Nunu.inibin", data)

	inv, err := NewResolver(a).Inventory("Nunu")
	require.NoError(t, err)
	assert.Equal(t, []uint32{0, 6}, inv.Indices())
}

func TestInventory_NotFound(t *testing.T) {
	_, err := NewResolver(newFixture(t)).Inventory("Teemo")
	assert.Equal(t, OutcomeNotFound, Classify(err))
}

func TestParseSkinFolder(t *testing.T) {
	for _, idx := range []uint32{0, 1, 9, 10, 99, 100, 250} {
		got, ok := parseSkinFolder(SkinFolder(idx))
		assert.True(t, ok, SkinFolder(idx))
		assert.Equal(t, idx, got)
	}
	for _, name := range []string{"Skin00", "Skin1", "Skin", "skin01", "Skin-1", "Skin007", "Chroma"} {
		_, ok := parseSkinFolder(name)
		assert.False(t, ok, name)
	}
}
