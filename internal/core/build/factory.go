package build

import "sync"

// PrimitiveFactory is the per-library handle the external elaborator uses to
// mint primitive references. Sharing one instance across edits within a
// library is a correctness requirement: two compiles of the same library
// must see the same primitive identities, not merely equal ones.
type PrimitiveFactory struct {
	Library LibraryID
}

// factoryCache is the process-wide primitive-factory cache (spec §5):
// keyed by library identity, populated on first demand, cleared only on
// workspace teardown.
type factoryCache struct {
	mu        sync.Mutex
	factories map[LibraryID]*PrimitiveFactory
}

func newFactoryCache() *factoryCache {
	return &factoryCache{factories: make(map[LibraryID]*PrimitiveFactory)}
}

// GetOrCreate returns the cached factory for id, creating and inserting one
// on first access. Insertion is idempotent under concurrent callers.
func (c *factoryCache) GetOrCreate(id LibraryID) *PrimitiveFactory {
	c.mu.Lock()
	defer c.mu.Unlock()

	if f, ok := c.factories[id]; ok {
		return f
	}
	f := &PrimitiveFactory{Library: id}
	c.factories[id] = f
	return f
}

// Reset clears every cached factory. Callers invoke this only at workspace
// teardown.
func (c *factoryCache) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.factories = make(map[LibraryID]*PrimitiveFactory)
}
