// Package fs exposes an asset archive as a read-only FUSE filesystem.
package fs

import (
	"errors"
	"sync"
	"time"

	"github.com/winfsp/cgofuse/fuse"

	"github.com/ItzWarty/liblolskins/internal/archive"
)

// ArchiveFS implements the FUSE interface from cgofuse
type ArchiveFS struct {
	fuse.FileSystemBase
	Archive   archive.Archive
	mountTime fuse.Timespec

	mu     sync.Mutex
	dirs   map[uint64][]dirEntry
	files  map[uint64][]byte
	nextFh uint64
}

func NewArchiveFS(a archive.Archive) *ArchiveFS {
	return &ArchiveFS{
		Archive:   a,
		mountTime: fuse.NewTimespec(time.Now()),
	}
}

// lookup maps a FUSE path to an archive node.
func (fs *ArchiveFS) lookup(path string) (archive.Handle, archive.Entry, int) {
	h := archive.HandleFor(path)
	if !h.IsRoot() {
		var err error
		h, err = fs.Archive.Resolve(fs.Archive.Root(), h.String())
		if err != nil {
			return archive.Handle{}, archive.Entry{}, errno(err)
		}
	}
	e, err := fs.Archive.Stat(h)
	if err != nil {
		return archive.Handle{}, archive.Entry{}, errno(err)
	}
	return h, e, 0
}

func errno(err error) int {
	if errors.Is(err, archive.ErrNotFound) {
		return -fuse.ENOENT
	}
	return -fuse.EIO
}

// Open succeeds for regular files only. The archive is read-only. The
// content is read once here and served to every Read on the handle.
func (fs *ArchiveFS) Open(path string, flags int) (int, uint64) {
	if flags&(fuse.O_WRONLY|fuse.O_RDWR) != 0 {
		return -fuse.EROFS, 0
	}
	h, e, rc := fs.lookup(path)
	if rc != 0 {
		return rc, 0
	}
	if e.IsDir() {
		return -fuse.EISDIR, 0
	}
	content, err := fs.Archive.ReadAll(h)
	if err != nil {
		return errno(err), 0
	}

	fs.mu.Lock()
	defer fs.mu.Unlock()
	if fs.files == nil {
		fs.files = make(map[uint64][]byte)
	}
	fs.nextFh++
	fs.files[fs.nextFh] = content
	return 0, fs.nextFh
}

// Release drops the content loaded by Open.
func (fs *ArchiveFS) Release(path string, fh uint64) int {
	fs.mu.Lock()
	delete(fs.files, fh)
	fs.mu.Unlock()
	return 0
}

// Getattr (Stat)
func (fs *ArchiveFS) Getattr(path string, stat *fuse.Stat_t, fh uint64) int {
	_, e, rc := fs.lookup(path)
	if rc != 0 {
		return rc
	}
	fs.fill(e, stat)
	return 0
}

func (fs *ArchiveFS) fill(e archive.Entry, stat *fuse.Stat_t) {
	ts := fs.mountTime
	if !e.ModTime.IsZero() {
		ts = fuse.NewTimespec(e.ModTime)
	}
	stat.Atim = ts
	stat.Mtim = ts
	stat.Ctim = ts
	stat.Birthtim = ts
	if e.IsDir() {
		stat.Mode = fuse.S_IFDIR | 0o555
		stat.Nlink = 2
		return
	}
	stat.Mode = fuse.S_IFREG | 0o444
	stat.Nlink = 1
	stat.Size = e.Size
}

// Opendir snapshots the listing of path so paged Readdir calls see a
// consistent view even if the archive is swapped in between.
func (fs *ArchiveFS) Opendir(path string) (int, uint64) {
	entries, rc := fs.list(path)
	if rc != 0 {
		return rc, 0
	}
	fs.mu.Lock()
	defer fs.mu.Unlock()
	if fs.dirs == nil {
		fs.dirs = make(map[uint64][]dirEntry)
	}
	fs.nextFh++
	fs.dirs[fs.nextFh] = entries
	return 0, fs.nextFh
}

// Releasedir drops the listing cached by Opendir.
func (fs *ArchiveFS) Releasedir(path string, fh uint64) int {
	fs.mu.Lock()
	delete(fs.dirs, fh)
	fs.mu.Unlock()
	return 0
}

// Readdir (List directory). ofst is the index of the first entry to send.
func (fs *ArchiveFS) Readdir(path string, fill func(name string, stat *fuse.Stat_t, ofst int64) bool, ofst int64, fh uint64) int {
	fs.mu.Lock()
	entries, ok := fs.dirs[fh]
	fs.mu.Unlock()
	if !ok {
		var rc int
		if entries, rc = fs.list(path); rc != 0 {
			return rc
		}
	}

	for i := ofst; i < int64(len(entries)); i++ {
		e := entries[i]
		if !fill(e.name, e.stat, i+1) {
			break
		}
	}
	return 0
}

type dirEntry struct {
	name string
	stat *fuse.Stat_t
}

// list returns ".", ".." and the children of path in archive order.
func (fs *ArchiveFS) list(path string) ([]dirEntry, int) {
	h, e, rc := fs.lookup(path)
	if rc != 0 {
		return nil, rc
	}
	if !e.IsDir() {
		return nil, -fuse.ENOTDIR
	}
	kids, err := fs.Archive.Children(h)
	if err != nil {
		return nil, errno(err)
	}

	entries := make([]dirEntry, 0, len(kids)+2)
	entries = append(entries, dirEntry{name: "."}, dirEntry{name: ".."})
	for _, kid := range kids {
		ke, err := fs.Archive.Stat(kid)
		if err != nil {
			continue
		}
		st := new(fuse.Stat_t)
		fs.fill(ke, st)
		entries = append(entries, dirEntry{name: ke.Name, stat: st})
	}
	return entries, 0
}

// Read (Cat file). Handles from Open are served from memory; an unknown
// handle falls back to reading the archive.
func (fs *ArchiveFS) Read(path string, buff []byte, ofst int64, fh uint64) int {
	fs.mu.Lock()
	content, ok := fs.files[fh]
	fs.mu.Unlock()
	if !ok {
		h, e, rc := fs.lookup(path)
		if rc != 0 {
			return rc
		}
		if e.IsDir() {
			return -fuse.EISDIR
		}
		var err error
		if content, err = fs.Archive.ReadAll(h); err != nil {
			return errno(err)
		}
	}

	if ofst >= int64(len(content)) {
		return 0
	}
	end := ofst + int64(len(buff))
	if end > int64(len(content)) {
		end = int64(len(content))
	}
	return copy(buff, content[ofst:end])
}
