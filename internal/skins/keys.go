package skins

import (
	"strconv"

	"github.com/ItzWarty/liblolskins/internal/inibin"
)

// KeySet names the three configuration properties that locate a skin's
// geometry, skeleton and texture files.
type KeySet struct {
	Geometry uint32
	Skeleton uint32
	Texture  uint32
}

// BaseKeys are the [MeshSkin] properties. Modern per-skin configuration
// files always store their skin's assets under these keys.
var BaseKeys = meshSkinKeys("MeshSkin")

// LegacySkinCount is the number of skins a legacy character file can describe.
const LegacySkinCount = 8

// legacyKeys maps a legacy skin index to its [MeshSkin<n>] properties.
// Index 0 is the base skin.
var legacyKeys = [LegacySkinCount]KeySet{
	BaseKeys,
	meshSkinKeys("MeshSkin1"),
	meshSkinKeys("MeshSkin2"),
	meshSkinKeys("MeshSkin3"),
	meshSkinKeys("MeshSkin4"),
	meshSkinKeys("MeshSkin5"),
	meshSkinKeys("MeshSkin6"),
	meshSkinKeys("MeshSkin7"),
}

// LegacyKeys returns the keys of skin index in a legacy character file.
// ok is false for indices without a mapping (8 and above).
func LegacyKeys(index uint32) (keys KeySet, ok bool) {
	if index >= LegacySkinCount {
		return KeySet{}, false
	}
	return legacyKeys[index], true
}

// LegacySection returns the configuration section holding skin index in a
// legacy character file: "MeshSkin" for the base skin, "MeshSkin<n>" otherwise.
func LegacySection(index uint32) string {
	if index == 0 {
		return "MeshSkin"
	}
	return "MeshSkin" + strconv.FormatUint(uint64(index), 10)
}

func meshSkinKeys(section string) KeySet {
	return KeySet{
		Geometry: inibin.Hash(section, "SimpleSkin"),
		Skeleton: inibin.Hash(section, "Skeleton"),
		Texture:  inibin.Hash(section, "Texture"),
	}
}
