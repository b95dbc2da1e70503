package pdf

import (
	"sync"

	"github.com/a3tai/mcp-pdf-filler/internal/form"
)

// CacheStats describes catalog cache usage.
type CacheStats struct {
	Hits     int64   `json:"hits"`
	Misses   int64   `json:"misses"`
	HitRate  float64 `json:"hit_rate"`
	Size     int     `json:"size"`
	Capacity int     `json:"capacity"`
}

// CatalogCache keeps the most recently used field catalogs keyed by template
// hash. A catalog depends only on the template bytes, so entries never go
// stale. Capacity 0 disables caching.
type CatalogCache struct {
	mu       sync.Mutex
	capacity int
	entries  map[string]*catalogEntry
	head     *catalogEntry // sentinel; head.next is the most recent entry
	tail     *catalogEntry // sentinel; tail.prev is evicted first
	hits     int64
	misses   int64
}

type catalogEntry struct {
	hash       string
	catalog    *form.Catalog
	prev, next *catalogEntry
}

// NewCatalogCache creates a cache holding at most capacity catalogs.
func NewCatalogCache(capacity int) *CatalogCache {
	if capacity < 0 {
		capacity = 0
	}
	c := &CatalogCache{
		capacity: capacity,
		entries:  make(map[string]*catalogEntry),
		head:     &catalogEntry{},
		tail:     &catalogEntry{},
	}
	c.head.next = c.tail
	c.tail.prev = c.head
	return c
}

// Get returns the catalog for hash and marks it recently used.
func (c *CatalogCache) Get(hash string) (*form.Catalog, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[hash]
	if !ok {
		c.misses++
		return nil, false
	}
	c.unlink(e)
	c.pushFront(e)
	c.hits++
	return e.catalog, true
}

// Put stores catalog under hash, evicting the least recently used entry when
// the cache is full.
func (c *CatalogCache) Put(hash string, catalog *form.Catalog) {
	if c.capacity == 0 {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.entries[hash]; ok {
		e.catalog = catalog
		c.unlink(e)
		c.pushFront(e)
		return
	}

	e := &catalogEntry{hash: hash, catalog: catalog}
	c.pushFront(e)
	c.entries[hash] = e

	if len(c.entries) > c.capacity {
		oldest := c.tail.prev
		c.unlink(oldest)
		delete(c.entries, oldest.hash)
	}
}

// Len returns the number of cached catalogs.
func (c *CatalogCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Stats returns hit and miss counters.
func (c *CatalogCache) Stats() CacheStats {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := CacheStats{
		Hits:     c.hits,
		Misses:   c.misses,
		Size:     len(c.entries),
		Capacity: c.capacity,
	}
	if total := c.hits + c.misses; total > 0 {
		s.HitRate = float64(c.hits) / float64(total) * 100
	}
	return s
}

func (c *CatalogCache) pushFront(e *catalogEntry) {
	e.prev = c.head
	e.next = c.head.next
	c.head.next.prev = e
	c.head.next = e
}

func (c *CatalogCache) unlink(e *catalogEntry) {
	e.prev.next = e.next
	e.next.prev = e.prev
}
