// Package discovery holds the cache of discovered service endpoints.
//
// The cache is the single source of truth for which discovery keys the
// configuration template needs and what each key resolved to last. Its key
// set is populated once, by the template scan at startup, and is frozen
// afterwards: later cycles only replace values, they never add or remove
// keys.
package discovery

import (
	"sort"
	"sync"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// Endpoint is one resolved backend target.
type Endpoint struct {
	Name     string
	IP       string
	Port     int
	Priority int
	Weight   int
}

// collator orders endpoint names the way a locale-aware comparison would,
// so that two DNS answers that are permutations of each other always store
// the same list.
var collator = collate.New(language.Und)

// SortEndpoints orders endpoints by name in place.
func SortEndpoints(endpoints []Endpoint) {
	sort.SliceStable(endpoints, func(i, j int) bool {
		return collator.CompareString(endpoints[i].Name, endpoints[j].Name) < 0
	})
}

type entry struct {
	endpoints []Endpoint
	resolved  bool
}

// Cache is an ordered mapping from discovery key to its last resolution
// result. A key is either unresolved (no usable data) or resolved to a
// possibly empty, name-sorted endpoint list.
type Cache struct {
	mu      sync.RWMutex
	keys    []string
	entries map[string]entry
}

// NewCache creates an empty cache.
func NewCache() *Cache {
	return &Cache{
		entries: make(map[string]entry),
	}
}

// Add records a discovery key as unresolved. Adding a key that is already
// present is a no-op, which makes the template scan idempotent.
func (c *Cache) Add(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.entries[key]; exists {
		return
	}
	c.keys = append(c.keys, key)
	c.entries[key] = entry{}
}

// Keys returns the discovery keys in insertion order.
func (c *Cache) Keys() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	keys := make([]string, len(c.keys))
	copy(keys, c.keys)
	return keys
}

// Has reports whether the key was recorded by the scan.
func (c *Cache) Has(key string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()

	_, exists := c.entries[key]
	return exists
}

// Len returns the number of discovery keys.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.keys)
}

// SetResolved stores a fresh resolution result for key. The list is sorted
// by name before storage. Unknown keys are ignored; the key set is frozen
// after the scan.
func (c *Cache) SetResolved(key string, endpoints []Endpoint) {
	sorted := make([]Endpoint, len(endpoints))
	copy(sorted, endpoints)
	SortEndpoints(sorted)

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.entries[key]; !exists {
		return
	}
	c.entries[key] = entry{endpoints: sorted, resolved: true}
}

// SetUnresolved clears any previous result for key, marking it unresolved.
func (c *Cache) SetUnresolved(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.entries[key]; !exists {
		return
	}
	c.entries[key] = entry{}
}

// Lookup returns the endpoint list for key and whether the key is currently
// resolved. Unresolved and unknown keys return (nil, false).
func (c *Cache) Lookup(key string) ([]Endpoint, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, exists := c.entries[key]
	if !exists || !e.resolved {
		return nil, false
	}
	endpoints := make([]Endpoint, len(e.endpoints))
	copy(endpoints, e.endpoints)
	return endpoints, true
}
