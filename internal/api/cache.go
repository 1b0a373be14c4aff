package api

import (
	"sync"

	"github.com/OnlyWorlds/worldtool/pkg/record"
)

// cache stores fetched records keyed by (recordType, id). It is owned by
// one Client and populated opportunistically on every fetch. It is never
// invalidated implicitly: a hit is served without a network call, so
// staleness is a known trade-off. Callers that fetch specifically to
// test existence must Evict first, or a stale entry can mask a deletion.
type cache struct {
	mu      sync.RWMutex
	records map[cacheKey]record.Record
}

type cacheKey struct {
	recordType string
	id         string
}

func newCache() *cache {
	return &cache{records: make(map[cacheKey]record.Record)}
}

func (c *cache) get(recordType, id string) (record.Record, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	r, ok := c.records[cacheKey{recordType, id}]
	if !ok {
		return nil, false
	}
	return r.Clone(), true
}

func (c *cache) put(recordType string, r record.Record) {
	id := r.ID()
	if id == "" {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.records[cacheKey{recordType, id}] = r.Clone()
}

func (c *cache) evict(recordType, id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.records, cacheKey{recordType, id})
}

func (c *cache) len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.records)
}
