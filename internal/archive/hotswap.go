package archive

import (
	"io"
	"sync"
)

// HotSwap is a thread-safe wrapper that allows swapping the underlying
// archive while it is being served. Handles are archive paths, so a handle
// obtained before a swap stays meaningful afterwards.
type HotSwap struct {
	mu      sync.RWMutex
	current Archive
}

func NewHotSwap(initial Archive) *HotSwap {
	return &HotSwap{current: initial}
}

// Swap atomically replaces the current archive and closes the old one
// if it holds resources.
func (h *HotSwap) Swap(next Archive) error {
	h.mu.Lock()
	old := h.current
	h.current = next
	h.mu.Unlock()
	return Close(old)
}

// Current returns the archive in use right now.
func (h *HotSwap) Current() Archive {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.current
}

// Root delegates to the current archive.
func (h *HotSwap) Root() Handle {
	return h.Current().Root()
}

// Resolve delegates to the current archive.
func (h *HotSwap) Resolve(base Handle, rel string) (Handle, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.current.Resolve(base, rel)
}

// Children delegates to the current archive.
func (h *HotSwap) Children(dir Handle) ([]Handle, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.current.Children(dir)
}

// Name delegates to the current archive.
func (h *HotSwap) Name(x Handle) (string, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.current.Name(x)
}

// ReadAll delegates to the current archive.
func (h *HotSwap) ReadAll(file Handle) ([]byte, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.current.ReadAll(file)
}

// Stat delegates to the current archive.
func (h *HotSwap) Stat(x Handle) (Entry, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.current.Stat(x)
}

// Close closes the current archive.
func (h *HotSwap) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	return Close(h.current)
}

// Close releases a if it holds resources (e.g. an open database).
func Close(a Archive) error {
	if c, ok := a.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

var _ Archive = (*HotSwap)(nil)
