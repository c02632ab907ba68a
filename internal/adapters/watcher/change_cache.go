package watcher

import (
	"errors"
	"os"
	"sync"
	"unique"

	"go.trai.ch/letterpress/internal/core/ports"
)

// ChangeCache remembers the content hash of watched files so events that do
// not change content (touch, editor save without edits, a build rewriting an
// identical file) do not trigger a run.
type ChangeCache struct {
	hasher ports.Hasher

	mu     sync.Mutex
	hashes map[unique.Handle[string]]uint64
}

// NewChangeCache creates an empty cache.
func NewChangeCache(hasher ports.Hasher) *ChangeCache {
	return &ChangeCache{
		hasher: hasher,
		hashes: make(map[unique.Handle[string]]uint64),
	}
}

// Prime records the current content of paths without reporting changes.
func (c *ChangeCache) Prime(paths []string) {
	for _, p := range paths {
		c.Changed(p)
	}
}

// Changed reports whether the content at path differs from the last time it
// was seen. Unknown paths count as changed. A removed file is a change once.
func (c *ChangeCache) Changed(path string) bool {
	key := unique.Make(path)

	hash, err := c.hasher.ComputeFileHash(path)

	c.mu.Lock()
	defer c.mu.Unlock()

	prev, known := c.hashes[key]
	if err != nil {
		delete(c.hashes, key)
		if _, statErr := os.Stat(path); errors.Is(statErr, os.ErrNotExist) {
			return known
		}
		// Directories and unreadable files always count as changed.
		return true
	}

	c.hashes[key] = hash
	return !known || prev != hash
}
