// Package nfsmount exports an asset archive over NFS. It adapts
// archive.Archive to billy.Filesystem for use with willscott/go-nfs.
// The export is read-only.
package nfsmount

import (
	"errors"
	"fmt"
	"os"
	"path"
	"time"

	billy "github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/helper/chroot"

	"github.com/ItzWarty/liblolskins/internal/archive"
)

var errReadOnly = errors.New("read-only filesystem")

// ArchiveFS adapts archive.Archive to billy.Filesystem.
type ArchiveFS struct {
	archive   archive.Archive
	mountTime time.Time
}

// NewArchiveFS creates a billy.Filesystem backed by a.
func NewArchiveFS(a archive.Archive) *ArchiveFS {
	return &ArchiveFS{
		archive:   a,
		mountTime: time.Now(),
	}
}

// --- billy.Basic ---

func (fs *ArchiveFS) Create(filename string) (billy.File, error) {
	return nil, errReadOnly
}

func (fs *ArchiveFS) Open(filename string) (billy.File, error) {
	return fs.OpenFile(filename, os.O_RDONLY, 0)
}

func (fs *ArchiveFS) OpenFile(filename string, flag int, perm os.FileMode) (billy.File, error) {
	filename = cleanPath(filename)
	if flag&(os.O_WRONLY|os.O_RDWR|os.O_CREATE|os.O_TRUNC|os.O_APPEND) != 0 {
		return nil, &os.PathError{Op: "open", Path: filename, Err: errReadOnly}
	}

	h, e, err := fs.lookup(filename)
	if err != nil {
		return nil, &os.PathError{Op: "open", Path: filename, Err: err}
	}
	if e.IsDir() {
		return nil, &os.PathError{Op: "open", Path: filename, Err: fmt.Errorf("is a directory")}
	}
	return &archiveFile{
		name:    filename,
		handle:  h,
		size:    e.Size,
		archive: fs.archive,
	}, nil
}

func (fs *ArchiveFS) Stat(filename string) (os.FileInfo, error) {
	return fs.Lstat(filename)
}

func (fs *ArchiveFS) Rename(oldpath, newpath string) error {
	return errReadOnly
}

func (fs *ArchiveFS) Remove(filename string) error {
	return errReadOnly
}

func (fs *ArchiveFS) Join(elem ...string) string {
	return path.Join(elem...)
}

// --- billy.TempFile ---

func (fs *ArchiveFS) TempFile(dir, prefix string) (billy.File, error) {
	return nil, billy.ErrNotSupported
}

// --- billy.Dir ---

func (fs *ArchiveFS) ReadDir(p string) ([]os.FileInfo, error) {
	p = cleanPath(p)

	h, e, err := fs.lookup(p)
	if err != nil {
		return nil, &os.PathError{Op: "readdir", Path: p, Err: err}
	}
	if !e.IsDir() {
		return nil, &os.PathError{Op: "readdir", Path: p, Err: fmt.Errorf("not a directory")}
	}

	kids, err := fs.archive.Children(h)
	if err != nil {
		return nil, &os.PathError{Op: "readdir", Path: p, Err: err}
	}
	infos := make([]os.FileInfo, 0, len(kids))
	for _, kid := range kids {
		ke, err := fs.archive.Stat(kid)
		if err != nil {
			continue
		}
		infos = append(infos, fs.fileInfo(ke))
	}
	return infos, nil
}

func (fs *ArchiveFS) MkdirAll(filename string, perm os.FileMode) error {
	return errReadOnly
}

// --- billy.Symlink ---

func (fs *ArchiveFS) Lstat(filename string) (os.FileInfo, error) {
	filename = cleanPath(filename)
	_, e, err := fs.lookup(filename)
	if err != nil {
		return nil, &os.PathError{Op: "lstat", Path: filename, Err: err}
	}
	return fs.fileInfo(e), nil
}

func (fs *ArchiveFS) Symlink(target, link string) error {
	return billy.ErrNotSupported
}

func (fs *ArchiveFS) Readlink(link string) (string, error) {
	return "", billy.ErrNotSupported
}

// --- billy.Chroot ---

func (fs *ArchiveFS) Chroot(p string) (billy.Filesystem, error) {
	return chroot.New(fs, p), nil
}

func (fs *ArchiveFS) Root() string {
	return "/"
}

// --- billy.Capable ---

func (fs *ArchiveFS) Capabilities() billy.Capability {
	return billy.ReadCapability | billy.SeekCapability
}

// --- internals ---

// lookup maps a billy path to an archive node. Missing nodes yield
// os.ErrNotExist so go-nfs reports NFS3ERR_NOENT.
func (fs *ArchiveFS) lookup(p string) (archive.Handle, archive.Entry, error) {
	h := archive.HandleFor(p)
	if !h.IsRoot() {
		var err error
		h, err = fs.archive.Resolve(fs.archive.Root(), h.String())
		if err != nil {
			return archive.Handle{}, archive.Entry{}, mapNotExist(err)
		}
	}
	e, err := fs.archive.Stat(h)
	if err != nil {
		return archive.Handle{}, archive.Entry{}, mapNotExist(err)
	}
	return h, e, nil
}

func mapNotExist(err error) error {
	if errors.Is(err, archive.ErrNotFound) {
		return os.ErrNotExist
	}
	return err
}

// cleanPath normalizes a billy path to a clean absolute path.
func cleanPath(p string) string {
	return path.Clean("/" + p)
}

func (fs *ArchiveFS) fileInfo(e archive.Entry) os.FileInfo {
	mode := os.FileMode(0o444)
	if e.IsDir() {
		mode = os.ModeDir | 0o555
	}
	modTime := e.ModTime
	if modTime.IsZero() {
		modTime = fs.mountTime
	}
	return &staticFileInfo{
		name:    e.Name,
		size:    e.Size,
		mode:    mode,
		modTime: modTime,
	}
}

// staticFileInfo implements os.FileInfo with static values.
type staticFileInfo struct {
	name    string
	size    int64
	mode    os.FileMode
	modTime time.Time
}

func (fi *staticFileInfo) Name() string       { return fi.name }
func (fi *staticFileInfo) Size() int64        { return fi.size }
func (fi *staticFileInfo) Mode() os.FileMode  { return fi.mode }
func (fi *staticFileInfo) ModTime() time.Time { return fi.modTime }
func (fi *staticFileInfo) IsDir() bool        { return fi.mode.IsDir() }
func (fi *staticFileInfo) Sys() any           { return nil }

var (
	_ billy.Filesystem = (*ArchiveFS)(nil)
	_ billy.Capable    = (*ArchiveFS)(nil)
	_ billy.File       = (*archiveFile)(nil)
)
