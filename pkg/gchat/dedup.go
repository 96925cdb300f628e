// Copyright 2025-2026 Meridian HQ

package gchat

import (
	"container/list"
	"sync"
)

// DefaultDedupCapacity matches the expected redelivery burst size of the
// events feed.
const DefaultDedupCapacity = 1024

// DedupCache is a bounded least-recently-used set of event fingerprints. The
// feed has at-least-once semantics and no reliable unique event id, so the
// cache collapses redeliveries by fingerprint. Entries are evicted only under
// capacity pressure, never by time, and the cache is never persisted: after a
// restart redelivered events may be reprocessed, which is accepted for this
// domain.
//
// CheckAndMark is a single atomic check-then-insert so the cache stays
// correct even if the driver is ever moved to a concurrent delivery model.
type DedupCache struct {
	mu       sync.Mutex
	capacity int
	order    *list.List               // front = most recently touched
	entries  map[string]*list.Element // key -> element whose Value is the key
}

// NewDedupCache creates a cache holding at most capacity fingerprints.
// Non-positive capacities fall back to DefaultDedupCapacity.
func NewDedupCache(capacity int) *DedupCache {
	if capacity <= 0 {
		capacity = DefaultDedupCapacity
	}
	return &DedupCache{
		capacity: capacity,
		order:    list.New(),
		entries:  make(map[string]*list.Element, capacity),
	}
}

// CheckAndMark reports whether key was already present, inserting it if not.
// A true return means the caller must skip reprocessing. Insertion beyond
// capacity evicts the least recently touched key.
func (c *DedupCache) CheckAndMark(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.entries[key]; ok {
		c.order.MoveToFront(elem)
		return true
	}

	c.entries[key] = c.order.PushFront(key)
	if c.order.Len() > c.capacity {
		oldest := c.order.Back()
		c.order.Remove(oldest)
		delete(c.entries, oldest.Value.(string))
	}
	return false
}

// Capacity returns the fixed maximum number of fingerprints the cache holds.
func (c *DedupCache) Capacity() int {
	return c.capacity
}
