package skins

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ItzWarty/liblolskins/internal/archive"
	"github.com/ItzWarty/liblolskins/internal/inibin"
)

// modernConfig builds a per-skin configuration file under the base keys.
func modernConfig(t *testing.T, geometry, skeleton, texture string) []byte {
	t.Helper()
	data, err := inibin.NewBuilder().
		SetString(BaseKeys.Geometry, geometry).
		SetString(BaseKeys.Skeleton, skeleton).
		SetString(BaseKeys.Texture, texture).
		SetInt32(inibin.Hash("Data", "SkinScale"), 1).
		Build()
	require.NoError(t, err)
	return data
}

// legacyConfig builds a legacy character file describing skins 0..n-1 as
// <name><i>.skn, <name><i>.skl and <name><i>.dds.
func legacyConfig(t *testing.T, name string, n uint32) []byte {
	t.Helper()
	b := inibin.NewBuilder()
	for i := uint32(0); i < n; i++ {
		section := LegacySection(i)
		b.Set(section, "SimpleSkin", fmt.Sprintf("%s%d.skn", name, i))
		b.Set(section, "Skeleton", fmt.Sprintf("%s%d.skl", name, i))
		b.Set(section, "Texture", fmt.Sprintf("%s%d.dds", name, i))
	}
	data, err := b.Build()
	require.NoError(t, err)
	return data
}

// newFixture returns an archive with a modern Ashe (base + Skin01 + Skin02)
// and a legacy Garen with five skins.
func newFixture(t *testing.T) *archive.MemoryArchive {
	t.Helper()
	a := archive.NewMemoryArchive()
	ashe := CharactersPath + "/Ashe/Skins/"
	a.AddFile(ashe+"Base/Base.inibin", modernConfig(t, "Ashe.skn", "Ashe.skl", "Ashe_base.dds"))
	a.AddFile(ashe+"Skin01/Skin01.inibin", modernConfig(t, "Ashe_Skin01.skn", "Ashe_Skin01.skl", "Ashe_Skin01_TX_CM.dds"))
	a.AddFile(ashe+"Skin02/Skin02.inibin", modernConfig(t, "Ashe_Skin02.skn", "Ashe.skl", "Ashe_Skin02_TX_CM.dds"))
	a.AddFile(ashe+"Skin01/Ashe_Skin01.skn", []byte("mesh"))

	a.AddFile(CharactersPath+"/Garen/Garen.inibin", legacyConfig(t, "Garen", 5))
	a.AddFile(CharactersPath+"/Garen/Garen3.skl", []byte("skl"))
	return a
}

var errDisk = errors.New("disk on fire")

// faultyReader fails the operations whose path is listed.
type faultyReader struct {
	archive.Reader
	resolve  map[string]bool
	children map[string]bool
	read     map[string]bool
}

func (f *faultyReader) Resolve(base archive.Handle, rel string) (archive.Handle, error) {
	if f.resolve[archive.Join(base, rel)] {
		return archive.Handle{}, errDisk
	}
	return f.Reader.Resolve(base, rel)
}

func (f *faultyReader) Children(dir archive.Handle) ([]archive.Handle, error) {
	if f.children[dir.String()] {
		return nil, errDisk
	}
	return f.Reader.Children(dir)
}

func (f *faultyReader) ReadAll(h archive.Handle) ([]byte, error) {
	if f.read[h.String()] {
		return nil, errDisk
	}
	return f.Reader.ReadAll(h)
}
