// Package cache holds the in-memory vector index cache. The cache is a
// transient copy keyed by session id; the persisted artifact stays the
// source of truth and entries are replaced whenever a new artifact is saved.
package cache

import (
	"sync"

	"docuchat/internal/vectorindex"
)

type IndexCache struct {
	mu          sync.RWMutex
	indexes     map[string]*vectorindex.Index
	generations map[string]uint64
}

func NewIndexCache() *IndexCache {
	return &IndexCache{
		indexes:     make(map[string]*vectorindex.Index),
		generations: make(map[string]uint64),
	}
}

func (c *IndexCache) Get(sessionID string) (*vectorindex.Index, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	ix, ok := c.indexes[sessionID]
	return ix, ok
}

// Generation returns the session's cache generation. The counter advances on
// every Put and Invalidate; a reload that started under an older generation
// must not be stored.
func (c *IndexCache) Generation(sessionID string) uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.generations[sessionID]
}

func (c *IndexCache) Put(sessionID string, ix *vectorindex.Index) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.indexes[sessionID] = ix
	c.generations[sessionID]++
}

// PutIfUnchanged stores ix only when the session's generation still equals
// gen, and reports whether it stored. A re-upload or invalidation between
// reading the generation and calling this leaves the cache untouched.
func (c *IndexCache) PutIfUnchanged(sessionID string, gen uint64, ix *vectorindex.Index) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.generations[sessionID] != gen {
		return false
	}
	c.indexes[sessionID] = ix
	c.generations[sessionID]++
	return true
}

func (c *IndexCache) Invalidate(sessionID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.indexes, sessionID)
	c.generations[sessionID]++
}
