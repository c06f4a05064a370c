// Package skins resolves the asset files that make up one skin of a
// character: geometry, skeleton, texture and load-screen texture.
//
// Two archive layouts exist. Modern characters have a Skins directory with
// one folder and configuration file per skin; every such file lists its
// assets under the base [MeshSkin] keys. Legacy characters have a single
// <Name>.inibin whose [MeshSkin], [MeshSkin1] ... [MeshSkin7] sections
// describe up to eight skins.
package skins

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/ItzWarty/liblolskins/internal/archive"
	"github.com/ItzWarty/liblolskins/internal/inibin"
)

// ConfigExt is the extension of character configuration files.
const ConfigExt = ".inibin"

// PropertyTable is a decoded configuration file keyed by property hash.
type PropertyTable interface {
	Get(key uint32) (any, bool)
}

// Decoder turns configuration file bytes into a PropertyTable.
type Decoder interface {
	Decode(data []byte) (PropertyTable, error)
}

// DecoderFunc adapts a function to Decoder.
type DecoderFunc func(data []byte) (PropertyTable, error)

func (f DecoderFunc) Decode(data []byte) (PropertyTable, error) { return f(data) }

// InibinDecoder decodes configuration files with the inibin codec.
var InibinDecoder Decoder = DecoderFunc(func(data []byte) (PropertyTable, error) {
	t, err := inibin.Decode(data)
	if err != nil {
		return nil, err
	}
	return t, nil
})

// Bundle is the resolved set of asset paths for one skin. Paths are
// relative to the archive root.
type Bundle struct {
	Geometry   string `json:"geometry" yaml:"geometry"`
	Skeleton   string `json:"skeleton" yaml:"skeleton"`
	Texture    string `json:"texture" yaml:"texture"`
	LoadScreen string `json:"load_screen" yaml:"load_screen"`
}

// Resolver resolves skins against one archive. It keeps no state between
// calls and is safe for concurrent use if the archive is.
type Resolver struct {
	Archive archive.Reader
	Decoder Decoder
	Logger  zerolog.Logger
}

// NewResolver returns a Resolver using the inibin decoder and no logging.
func NewResolver(a archive.Reader) *Resolver {
	return &Resolver{
		Archive: a,
		Decoder: InibinDecoder,
		Logger:  zerolog.Nop(),
	}
}

// ResolveSkin locates character name in a and resolves skin index.
func ResolveSkin(a archive.Reader, name string, index uint32) (*Bundle, error) {
	return NewResolver(a).Resolve(name, index)
}

// Resolve locates character name and resolves skin index.
//
// Errors: ErrNotFound if no character matches, ErrInvalidSkinIndex if the
// index has no mapping, *IOError for every archive, decode or configuration
// failure.
func (r *Resolver) Resolve(name string, index uint32) (*Bundle, error) {
	dir, err := Locate(r.Archive, name)
	if err != nil {
		return nil, err
	}
	return r.ResolveDir(dir, index)
}

// ResolveDir resolves skin index of the character whose directory is dir.
// Paths in the result are rooted at dir itself.
func (r *Resolver) ResolveDir(dir archive.Handle, index uint32) (*Bundle, error) {
	a := r.Archive
	charName, err := a.Name(dir)
	if err != nil {
		return nil, &IOError{Op: "read name", Path: dir.String(), Err: err}
	}
	layout, err := DetectLayout(a, dir)
	if err != nil {
		return nil, err
	}
	log := r.Logger.With().
		Str("character", charName).
		Uint32("skin", index).
		Stringer("layout", layout).
		Logger()

	charPath := dir.String()
	var (
		keys     KeySet
		blobRel  string
		assetDir string
	)
	switch layout {
	case Modern:
		folder := SkinFolder(index)
		keys = BaseKeys
		blobRel = SkinsDir + "/" + folder + "/" + folder + ConfigExt
		assetDir = charPath + "/" + SkinsDir + "/" + folder
	case Legacy:
		ks, ok := LegacyKeys(index)
		if !ok {
			return nil, fmt.Errorf("%w: %d (legacy characters have skins 0-%d)",
				ErrInvalidSkinIndex, index, LegacySkinCount-1)
		}
		keys = ks
		blobRel = charName + ConfigExt
		assetDir = charPath
	}

	blobPath := archive.Join(dir, blobRel)
	log.Debug().Str("config", blobPath).Msg("loading skin configuration")

	table, err := r.load(dir, blobRel)
	if err != nil {
		return nil, err
	}

	geometry, err := stringProperty(table, keys.Geometry, blobPath)
	if err != nil {
		return nil, err
	}
	skeleton, err := stringProperty(table, keys.Skeleton, blobPath)
	if err != nil {
		return nil, err
	}
	texture, err := stringProperty(table, keys.Texture, blobPath)
	if err != nil {
		return nil, err
	}

	b := &Bundle{
		Geometry:   assetDir + "/" + geometry,
		Skeleton:   assetDir + "/" + skeleton,
		Texture:    assetDir + "/" + texture,
		LoadScreen: assetDir + "/" + LoadScreenName(charName, index),
	}
	log.Debug().Str("geometry", b.Geometry).Msg("resolved skin")
	return b, nil
}

// load reads and decodes one configuration file. The bytes and the decoded
// table live only for the current resolve call.
func (r *Resolver) load(dir archive.Handle, rel string) (PropertyTable, error) {
	p := archive.Join(dir, rel)
	h, err := r.Archive.Resolve(dir, rel)
	if err != nil {
		return nil, &IOError{Op: "locate config", Path: p, Err: err}
	}
	data, err := r.Archive.ReadAll(h)
	if err != nil {
		return nil, &IOError{Op: "read config", Path: p, Err: err}
	}
	table, err := r.Decoder.Decode(data)
	if err != nil {
		return nil, &IOError{Op: "decode config", Path: p, Err: err}
	}
	return table, nil
}

func stringProperty(t PropertyTable, key uint32, blobPath string) (string, error) {
	v, ok := t.Get(key)
	if !ok {
		return "", &IOError{Op: "read property", Path: blobPath,
			Err: fmt.Errorf("%w: key 0x%08x missing", ErrMalformedConfig, key)}
	}
	s, ok := v.(string)
	if !ok {
		return "", &IOError{Op: "read property", Path: blobPath,
			Err: fmt.Errorf("%w: key 0x%08x holds %T, want string", ErrMalformedConfig, key, v)}
	}
	if s == "" {
		return "", &IOError{Op: "read property", Path: blobPath,
			Err: fmt.Errorf("%w: key 0x%08x is empty", ErrMalformedConfig, key)}
	}
	return s, nil
}

// SkinFolder names the modern skin folder of index: "Base" for 0,
// "Skin01", "Skin02", ... otherwise.
func SkinFolder(index uint32) string {
	if index == 0 {
		return "Base"
	}
	return fmt.Sprintf("Skin%02d", index)
}

// LoadScreenName derives the load-screen texture file name. It is never
// read from configuration: "<Name>LoadScreen.dds" for the base skin,
// "<Name>LoadScreen_<index>.dds" (unpadded) otherwise.
func LoadScreenName(character string, index uint32) string {
	if index == 0 {
		return character + "LoadScreen.dds"
	}
	return fmt.Sprintf("%sLoadScreen_%d.dds", character, index)
}
