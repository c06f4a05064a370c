package skins

import (
	"errors"
	"strconv"
	"strings"

	"github.com/RoaringBitmap/roaring"

	"github.com/ItzWarty/liblolskins/internal/archive"
)

// Inventory lists the skins a character has in the archive.
type Inventory struct {
	Character string
	Layout    Layout
	Skins     *roaring.Bitmap
}

// Indices returns the available skin indices in ascending order.
func (inv *Inventory) Indices() []uint32 {
	return inv.Skins.ToArray()
}

// Has reports whether skin index is available.
func (inv *Inventory) Has(index uint32) bool {
	return inv.Skins.Contains(index)
}

// Inventory locates character name and lists its skins.
func (r *Resolver) Inventory(name string) (*Inventory, error) {
	dir, err := Locate(r.Archive, name)
	if err != nil {
		return nil, err
	}
	return r.InventoryDir(dir)
}

// InventoryDir lists the skins of the character whose directory is dir.
//
// Modern: every Skins/<folder> whose name is the canonical folder of an
// index and that contains its configuration file. Legacy: every index
// 0-7 whose geometry property is present in the character file.
func (r *Resolver) InventoryDir(dir archive.Handle) (*Inventory, error) {
	a := r.Archive
	charName, err := a.Name(dir)
	if err != nil {
		return nil, &IOError{Op: "read name", Path: dir.String(), Err: err}
	}
	layout, err := DetectLayout(a, dir)
	if err != nil {
		return nil, err
	}

	inv := &Inventory{Character: charName, Layout: layout, Skins: roaring.New()}
	if layout == Modern {
		err = r.modernSkins(dir, inv.Skins)
	} else {
		err = r.legacySkins(dir, charName, inv.Skins)
	}
	if err != nil {
		return nil, err
	}
	r.Logger.Debug().
		Str("character", charName).
		Stringer("layout", layout).
		Uint64("skins", inv.Skins.GetCardinality()).
		Msg("listed skins")
	return inv, nil
}

func (r *Resolver) modernSkins(dir archive.Handle, out *roaring.Bitmap) error {
	a := r.Archive
	skinsDir, err := a.Resolve(dir, SkinsDir)
	if err != nil {
		return &IOError{Op: "open", Path: archive.Join(dir, SkinsDir), Err: err}
	}
	kids, err := a.Children(skinsDir)
	if err != nil {
		return &IOError{Op: "list skins", Path: skinsDir.String(), Err: err}
	}
	for _, kid := range kids {
		folder, err := a.Name(kid)
		if err != nil {
			return &IOError{Op: "read name", Path: kid.String(), Err: err}
		}
		index, ok := parseSkinFolder(folder)
		if !ok {
			continue
		}
		_, err = a.Resolve(kid, folder+ConfigExt)
		if errors.Is(err, archive.ErrNotFound) {
			continue
		}
		if err != nil {
			return &IOError{Op: "locate config", Path: archive.Join(kid, folder+ConfigExt), Err: err}
		}
		out.Add(index)
	}
	return nil
}

func (r *Resolver) legacySkins(dir archive.Handle, charName string, out *roaring.Bitmap) error {
	table, err := r.load(dir, charName+ConfigExt)
	if err != nil {
		return err
	}
	for i := uint32(0); i < LegacySkinCount; i++ {
		keys, _ := LegacyKeys(i)
		if v, ok := table.Get(keys.Geometry); ok {
			if s, ok := v.(string); ok && s != "" {
				out.Add(i)
			}
		}
	}
	return nil
}

// parseSkinFolder is the inverse of SkinFolder. Only canonical names are
// accepted, so every listed index resolves to the folder it came from.
func parseSkinFolder(name string) (uint32, bool) {
	if name == "Base" {
		return 0, true
	}
	digits, ok := strings.CutPrefix(name, "Skin")
	if !ok {
		return 0, false
	}
	n, err := strconv.ParseUint(digits, 10, 32)
	if err != nil || n == 0 {
		return 0, false
	}
	index := uint32(n)
	if SkinFolder(index) != name {
		return 0, false
	}
	return index, true
}
