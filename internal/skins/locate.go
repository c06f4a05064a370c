package skins

import (
	"fmt"

	"golang.org/x/text/cases"

	"github.com/ItzWarty/liblolskins/internal/archive"
)

// CharactersPath is where character directories live, relative to the archive root.
const CharactersPath = "DATA/Characters"

// Locate finds the directory of the character called name. Names are
// compared with Unicode case folding, so "ashe", "ASHE" and "Ashe" match
// the same directory. The first match in archive order wins.
func Locate(a archive.Reader, name string) (archive.Handle, error) {
	chars, err := charactersDir(a)
	if err != nil {
		return archive.Handle{}, err
	}
	kids, err := a.Children(chars)
	if err != nil {
		return archive.Handle{}, &IOError{Op: "list characters", Path: CharactersPath, Err: err}
	}

	fold := cases.Fold()
	want := fold.String(name)
	for _, kid := range kids {
		got, err := a.Name(kid)
		if err != nil {
			return archive.Handle{}, &IOError{Op: "read name", Path: kid.String(), Err: err}
		}
		if fold.String(got) == want {
			return kid, nil
		}
	}
	return archive.Handle{}, fmt.Errorf("%w: %q", ErrNotFound, name)
}

// Characters returns the names of all character directories in archive order.
func Characters(a archive.Reader) ([]string, error) {
	chars, err := charactersDir(a)
	if err != nil {
		return nil, err
	}
	kids, err := a.Children(chars)
	if err != nil {
		return nil, &IOError{Op: "list characters", Path: CharactersPath, Err: err}
	}
	names := make([]string, 0, len(kids))
	for _, kid := range kids {
		n, err := a.Name(kid)
		if err != nil {
			return nil, &IOError{Op: "read name", Path: kid.String(), Err: err}
		}
		names = append(names, n)
	}
	return names, nil
}

// charactersDir resolves DATA/Characters. Its absence is an archive-level
// failure, not a missing character.
func charactersDir(a archive.Reader) (archive.Handle, error) {
	h, err := a.Resolve(a.Root(), CharactersPath)
	if err != nil {
		return archive.Handle{}, &IOError{Op: "open", Path: CharactersPath, Err: err}
	}
	return h, nil
}
