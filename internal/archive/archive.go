// Package archive models the read-only asset archive that skins are resolved
// against: a hierarchy of named nodes, each either a directory or a file.
package archive

import (
	"errors"
	"io/fs"
	"path"
	"strings"
	"time"
)

var ErrNotFound = errors.New("node not found")

// Handle identifies a node within one archive session.
// The zero Handle is the archive root.
type Handle struct {
	id string
}

// String returns the slash-separated archive path of the node ("" for root).
func (h Handle) String() string { return h.id }

// IsRoot reports whether h is the archive root.
func (h Handle) IsRoot() bool { return h.id == "" }

// Entry describes a node for the serving layers (NFS, FUSE).
type Entry struct {
	Name    string
	Mode    fs.FileMode // fs.ModeDir for directories, 0 for regular files
	Size    int64
	ModTime time.Time
}

// IsDir reports whether the entry is a directory.
func (e Entry) IsDir() bool { return e.Mode.IsDir() }

// Reader is the capability the skin resolver consumes.
// Implementations must be safe for concurrent reads.
type Reader interface {
	// Root returns the handle of the archive root.
	Root() Handle
	// Resolve walks rel (slash-separated) from base. Missing nodes yield ErrNotFound.
	Resolve(base Handle, rel string) (Handle, error)
	// Children lists the immediate children of a directory, in archive order.
	Children(dir Handle) ([]Handle, error)
	// Name returns the final path element of a node.
	Name(h Handle) (string, error)
	// ReadAll returns the full content of a file node.
	ReadAll(file Handle) ([]byte, error)
}

// Archive adds the node metadata needed to serve an archive as a filesystem.
type Archive interface {
	Reader
	Stat(h Handle) (Entry, error)
}

// HandleFor builds a handle from an archive path. Leading slashes and
// "." elements are normalized away.
func HandleFor(p string) Handle {
	return Handle{id: cleanID(p)}
}

// Join returns the archive path of rel resolved against base.
func Join(base Handle, rel string) string {
	return cleanID(base.id + "/" + rel)
}

// cleanID normalizes a node path: no leading or trailing slash, root = "".
func cleanID(p string) string {
	p = path.Clean("/" + strings.ReplaceAll(p, "\\", "/"))
	return strings.TrimPrefix(p, "/")
}

// baseName returns the last element of a node path.
func baseName(id string) string {
	if id == "" {
		return ""
	}
	return path.Base(id)
}

// parentID returns the path of the directory containing id.
func parentID(id string) string {
	dir := path.Dir("/" + id)
	return strings.TrimPrefix(dir, "/")
}
