package store

import (
	"sync"
	"time"
)

type snapshot struct {
	records []Record
	expires time.Time
}

// CachedStore wraps a Store with a fixed-TTL read memo. Any write clears
// the entire cache; there is no per-dataset invalidation.
type CachedStore struct {
	inner Store
	ttl   time.Duration

	mu        sync.Mutex
	snapshots map[string]snapshot
}

// NewCachedStore wraps inner with a read cache of the given TTL.
func NewCachedStore(inner Store, ttl time.Duration) *CachedStore {
	return &CachedStore{
		inner:     inner,
		ttl:       ttl,
		snapshots: make(map[string]snapshot),
	}
}

// Read serves a cached snapshot when one is still fresh, otherwise reads
// through and memoizes the result.
func (c *CachedStore) Read(name string) ([]Record, error) {
	c.mu.Lock()
	snap, ok := c.snapshots[name]
	c.mu.Unlock()
	if ok && time.Now().Before(snap.expires) {
		return copyRecords(snap.records), nil
	}

	records, err := c.inner.Read(name)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.snapshots[name] = snapshot{records: records, expires: time.Now().Add(c.ttl)}
	c.mu.Unlock()
	return copyRecords(records), nil
}

// Write passes through and clears the whole cache unconditionally, even
// when the write fails.
func (c *CachedStore) Write(name string, records []Record) error {
	err := c.inner.Write(name, records)
	c.mu.Lock()
	c.snapshots = make(map[string]snapshot)
	c.mu.Unlock()
	return err
}

// Close closes the underlying store.
func (c *CachedStore) Close() error {
	return c.inner.Close()
}

func copyRecords(records []Record) []Record {
	out := make([]Record, len(records))
	copy(out, records)
	return out
}
