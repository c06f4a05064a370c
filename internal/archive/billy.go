package archive

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"

	billy "github.com/go-git/go-billy/v5"
)

// BillyArchive implements Archive over a billy.Filesystem: an extracted
// archive on disk (osfs) or an in-memory tree (memfs). Children are
// returned in the order the filesystem lists them.
type BillyArchive struct {
	fs billy.Filesystem
}

func NewBillyArchive(fsys billy.Filesystem) *BillyArchive {
	return &BillyArchive{fs: fsys}
}

// Root implements Reader.
func (a *BillyArchive) Root() Handle { return Handle{} }

// Resolve implements Reader.
func (a *BillyArchive) Resolve(base Handle, rel string) (Handle, error) {
	id := Join(base, rel)
	if id == "" {
		return Handle{}, nil
	}
	if _, err := a.fs.Lstat(a.fsPath(id)); err != nil {
		return Handle{}, mapFSError("resolve", id, err)
	}
	return Handle{id: id}, nil
}

// Children implements Reader.
func (a *BillyArchive) Children(dir Handle) ([]Handle, error) {
	infos, err := a.fs.ReadDir(a.fsPath(dir.id))
	if err != nil {
		return nil, mapFSError("list", dir.id, err)
	}
	out := make([]Handle, 0, len(infos))
	for _, info := range infos {
		out = append(out, Handle{id: Join(dir, info.Name())})
	}
	return out, nil
}

// Name implements Reader.
func (a *BillyArchive) Name(h Handle) (string, error) {
	if h.IsRoot() {
		return "", nil
	}
	info, err := a.fs.Lstat(a.fsPath(h.id))
	if err != nil {
		return "", mapFSError("name", h.id, err)
	}
	return info.Name(), nil
}

// ReadAll implements Reader.
func (a *BillyArchive) ReadAll(file Handle) ([]byte, error) {
	f, err := a.fs.Open(a.fsPath(file.id))
	if err != nil {
		return nil, mapFSError("open", file.id, err)
	}
	defer func() { _ = f.Close() }() // read-only, safe to ignore

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", file.id, err)
	}
	return data, nil
}

// Stat implements Archive.
func (a *BillyArchive) Stat(h Handle) (Entry, error) {
	if h.IsRoot() {
		return Entry{Name: "/", Mode: fs.ModeDir}, nil
	}
	info, err := a.fs.Lstat(a.fsPath(h.id))
	if err != nil {
		return Entry{}, mapFSError("stat", h.id, err)
	}
	e := Entry{Name: info.Name(), ModTime: info.ModTime()}
	if info.IsDir() {
		e.Mode = fs.ModeDir
	} else {
		e.Size = info.Size()
	}
	return e, nil
}

func (a *BillyArchive) fsPath(id string) string {
	return path.Join("/", id)
}

// mapFSError turns "does not exist" into ErrNotFound so callers can tell a
// missing node from a failing filesystem.
func mapFSError(op, id string, err error) error {
	if errors.Is(err, os.ErrNotExist) {
		return ErrNotFound
	}
	return fmt.Errorf("%s %s: %w", op, id, err)
}

var _ Archive = (*BillyArchive)(nil)
