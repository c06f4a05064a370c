package archive

import (
	"fmt"
	"io/fs"
	"sync"
	"time"
)

// Node is a single entry of an in-memory archive.
// The Mode field explicitly declares whether this is a file or directory.
type Node struct {
	ID       string
	Mode     fs.FileMode // fs.ModeDir for directories, 0 for regular files
	ModTime  time.Time
	Data     []byte   // file content (nil for directories)
	Children []string // child node IDs in archive order (directories only)
}

// MemoryArchive is an Archive held entirely in RAM. Used for fixtures,
// tests and archives small enough to load eagerly.
type MemoryArchive struct {
	mu    sync.RWMutex
	nodes map[string]*Node
	roots []string // children of the archive root
}

func NewMemoryArchive() *MemoryArchive {
	return &MemoryArchive{
		nodes: make(map[string]*Node),
	}
}

// AddNode registers n and links it under its parent directory, creating
// missing parent directories. Re-adding an ID replaces the node in place
// and keeps its position among its siblings.
func (m *MemoryArchive) AddNode(n *Node) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n.ID = cleanID(n.ID)
	if n.ID == "" {
		return
	}
	if old, ok := m.nodes[n.ID]; ok && old.Mode.IsDir() && n.Mode.IsDir() && n.Children == nil {
		n.Children = old.Children
	}
	m.nodes[n.ID] = n
	m.link(n.ID)
}

// AddDir creates a directory (and its parents) if it does not exist yet.
func (m *MemoryArchive) AddDir(p string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ensureDir(cleanID(p))
}

// AddFile stores data at p, creating parent directories as needed.
func (m *MemoryArchive) AddFile(p string, data []byte) {
	m.AddNode(&Node{ID: p, Data: data})
}

// link attaches id to its parent's child list. Must be called with m.mu held.
func (m *MemoryArchive) link(id string) {
	parent := parentID(id)
	if parent == "" {
		m.roots = appendUnique(m.roots, id)
		return
	}
	dir := m.ensureDir(parent)
	dir.Children = appendUnique(dir.Children, id)
}

// ensureDir returns the directory node at id, creating it and its parents.
// Must be called with m.mu held.
func (m *MemoryArchive) ensureDir(id string) *Node {
	if id == "" {
		return nil
	}
	if n, ok := m.nodes[id]; ok {
		return n
	}
	n := &Node{ID: id, Mode: fs.ModeDir}
	m.nodes[id] = n
	m.link(id)
	return n
}

func appendUnique(list []string, id string) []string {
	for _, existing := range list {
		if existing == id {
			return list
		}
	}
	return append(list, id)
}

// Root implements Reader.
func (m *MemoryArchive) Root() Handle { return Handle{} }

// Resolve implements Reader.
func (m *MemoryArchive) Resolve(base Handle, rel string) (Handle, error) {
	id := Join(base, rel)
	if id == "" {
		return Handle{}, nil
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if _, ok := m.nodes[id]; !ok {
		return Handle{}, ErrNotFound
	}
	return Handle{id: id}, nil
}

// Children implements Reader.
func (m *MemoryArchive) Children(dir Handle) ([]Handle, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	ids := m.roots
	if !dir.IsRoot() {
		n, ok := m.nodes[dir.id]
		if !ok {
			return nil, ErrNotFound
		}
		if !n.Mode.IsDir() {
			return nil, fmt.Errorf("list %s: not a directory", dir.id)
		}
		ids = n.Children
	}

	out := make([]Handle, len(ids))
	for i, id := range ids {
		out[i] = Handle{id: id}
	}
	return out, nil
}

// Name implements Reader.
func (m *MemoryArchive) Name(h Handle) (string, error) {
	if h.IsRoot() {
		return "", nil
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if _, ok := m.nodes[h.id]; !ok {
		return "", ErrNotFound
	}
	return baseName(h.id), nil
}

// ReadAll implements Reader. The returned slice is a copy.
func (m *MemoryArchive) ReadAll(file Handle) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	n, ok := m.nodes[file.id]
	if !ok {
		return nil, ErrNotFound
	}
	if n.Mode.IsDir() {
		return nil, fmt.Errorf("read %s: is a directory", file.id)
	}
	return append([]byte(nil), n.Data...), nil
}

// Stat implements Archive.
func (m *MemoryArchive) Stat(h Handle) (Entry, error) {
	if h.IsRoot() {
		return Entry{Name: "/", Mode: fs.ModeDir}, nil
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	n, ok := m.nodes[h.id]
	if !ok {
		return Entry{}, ErrNotFound
	}
	return Entry{
		Name:    baseName(n.ID),
		Mode:    n.Mode,
		Size:    int64(len(n.Data)),
		ModTime: n.ModTime,
	}, nil
}

// Len returns the number of nodes, excluding the root.
func (m *MemoryArchive) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.nodes)
}

var _ Archive = (*MemoryArchive)(nil)
