package cache

import (
	"container/list"
	"sync"
	"time"

	"github.com/phishblock/phishguard/internal/domain"
	"github.com/phishblock/phishguard/internal/urlx"
)

// Cache is an LRU cache with an absolute per-entry TTL, keyed by the
// normalized URL (fragment stripped) so fragment-only navigation within a
// page reuses one entry.
//
// Expired entries are evicted on touch; the periodic sweep is Cleanup,
// driven by an external scheduler. Entries are never mutated in place.
type Cache struct {
	mu      sync.Mutex
	maxSize int
	ttl     time.Duration
	order   *list.List // front = least recently used, back = most recent
	items   map[string]*list.Element

	hits   uint64
	misses uint64

	now func() time.Time // injectable for TTL tests
}

type entry struct {
	key        string
	decision   domain.Decision
	insertedAt time.Time
}

// Stats is a point-in-time snapshot of cache instrumentation.
type Stats struct {
	Hits    uint64        `json:"hits"`
	Misses  uint64        `json:"misses"`
	Size    int           `json:"size"`
	MaxSize int           `json:"max_size"`
	TTL     time.Duration `json:"ttl"`
}

func New(maxSize int, ttl time.Duration) *Cache {
	return &Cache{
		maxSize: maxSize,
		ttl:     ttl,
		order:   list.New(),
		items:   make(map[string]*list.Element, maxSize),
		now:     time.Now,
	}
}

// Get returns the stored decision for url, moving the entry to the
// most-recently-used position. A present-but-expired entry is evicted and
// reported as a miss.
func (c *Cache) Get(url string) (domain.Decision, bool) {
	key := urlx.CacheKey(url)

	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.items[key]
	if !ok {
		c.misses++
		return domain.Decision{}, false
	}

	e := el.Value.(*entry)
	if c.now().Sub(e.insertedAt) > c.ttl {
		c.removeLocked(el)
		c.misses++
		return domain.Decision{}, false
	}

	c.order.MoveToBack(el)
	c.hits++
	return e.decision, true
}

// Set stores a decision for url, evicting the least-recently-used entry
// when at capacity. Re-setting an existing key refreshes its timestamp and
// recency instead of growing the cache.
func (c *Cache) Set(url string, d domain.Decision) {
	key := urlx.CacheKey(url)

	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.items[key]; ok {
		el.Value = &entry{key: key, decision: d, insertedAt: c.now()}
		c.order.MoveToBack(el)
		return
	}

	if c.order.Len() >= c.maxSize {
		if oldest := c.order.Front(); oldest != nil {
			c.removeLocked(oldest)
		}
	}

	c.items[key] = c.order.PushBack(&entry{key: key, decision: d, insertedAt: c.now()})
}

// Cleanup sweeps all expired entries and returns how many were removed.
// Owned by the scheduler collaborator; the cache never self-schedules.
func (c *Cache) Cleanup() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	removed := 0
	for el := c.order.Front(); el != nil; {
		next := el.Next()
		if now.Sub(el.Value.(*entry).insertedAt) > c.ttl {
			c.removeLocked(el)
			removed++
		}
		el = next
	}
	return removed
}

// Clear drops every entry and resets the hit/miss counters. This is the
// only operation that resets instrumentation.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.order.Init()
	c.items = make(map[string]*list.Element, c.maxSize)
	c.hits = 0
	c.misses = 0
}

// Len returns the current number of entries.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}

// Stats returns a snapshot of the monotonic hit/miss counters and sizing.
func (c *Cache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Stats{
		Hits:    c.hits,
		Misses:  c.misses,
		Size:    c.order.Len(),
		MaxSize: c.maxSize,
		TTL:     c.ttl,
	}
}

func (c *Cache) removeLocked(el *list.Element) {
	c.order.Remove(el)
	delete(c.items, el.Value.(*entry).key)
}
