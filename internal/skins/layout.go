package skins

import (
	"errors"

	"github.com/ItzWarty/liblolskins/internal/archive"
)

// Layout is the archive layout a character directory uses.
type Layout int

const (
	// Modern characters keep one configuration file per skin under Skins/<folder>/.
	Modern Layout = iota
	// Legacy characters keep a single <Name>.inibin describing up to eight skins.
	Legacy
)

func (l Layout) String() string {
	if l == Legacy {
		return "legacy"
	}
	return "modern"
}

// SkinsDir is the per-skin folder of modern characters.
const SkinsDir = "Skins"

// DetectLayout probes dir for a Skins child. Only "does not exist" selects
// the legacy layout; any other probe failure is an IOError.
func DetectLayout(a archive.Reader, dir archive.Handle) (Layout, error) {
	_, err := a.Resolve(dir, SkinsDir)
	switch {
	case err == nil:
		return Modern, nil
	case errors.Is(err, archive.ErrNotFound):
		return Legacy, nil
	default:
		return 0, &IOError{Op: "probe layout", Path: archive.Join(dir, SkinsDir), Err: err}
	}
}
