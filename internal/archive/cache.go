package archive

import "sync"

// blobCache is a FIFO-evicting bounded cache of file contents keyed by node
// path. Skin resolution re-reads the same handful of blobs (one per
// character, one per skin folder), so a small cache absorbs repeated reads
// without holding the whole archive in memory.
type blobCache struct {
	mu      sync.Mutex
	entries map[string][]byte
	keys    []string
	maxSize int
}

func newBlobCache(maxSize int) *blobCache {
	return &blobCache{
		entries: make(map[string][]byte, maxSize),
		keys:    make([]string, 0, maxSize),
		maxSize: maxSize,
	}
}

// get returns a copy so callers own the bytes they decode.
func (c *blobCache) get(key string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	return append([]byte(nil), v...), true
}

func (c *blobCache) put(key string, value []byte) {
	if c.maxSize <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.entries[key]; ok {
		c.entries[key] = value
		return
	}
	if len(c.entries) >= c.maxSize {
		evict := c.keys[0]
		c.keys = c.keys[1:]
		delete(c.entries, evict)
	}
	c.entries[key] = value
	c.keys = append(c.keys, key)
}

func (c *blobCache) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
