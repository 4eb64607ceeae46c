package lookup

import (
	"strings"
	"sync"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/example/review-platform/internal/media"
)

// InvalidateSubject carries cache invalidation keys; an empty or "ALL"
// payload flushes everything.
const InvalidateSubject = "lookup.cache.invalidate"

type cacheItem struct {
	results   []media.Summary
	expiresAt time.Time
}

// SearchCache is an in-memory TTL cache for catalog search responses with
// optional NATS key-level invalidation. Safe for concurrent use.
type SearchCache struct {
	mu    sync.RWMutex
	items map[string]cacheItem
	ttl   time.Duration
}

// NewSearchCache creates a SearchCache and subscribes for invalidation when
// nc is non-nil.
func NewSearchCache(ttl time.Duration, nc *nats.Conn) *SearchCache {
	if ttl <= 0 {
		ttl = 60 * time.Second
	}
	c := &SearchCache{
		items: make(map[string]cacheItem),
		ttl:   ttl,
	}
	if nc != nil {
		_, _ = nc.Subscribe(InvalidateSubject, func(m *nats.Msg) {
			key := string(m.Data)
			c.mu.Lock()
			defer c.mu.Unlock()
			if key == "" || strings.EqualFold(key, "ALL") {
				c.items = make(map[string]cacheItem)
				return
			}
			delete(c.items, key)
		})
	}
	return c
}

// Key builds the cache key for one search request.
func Key(t media.Type, term, refinement string) string {
	return string(t) + "|" + strings.ToLower(strings.TrimSpace(term)) + "|" + strings.ToLower(strings.TrimSpace(refinement))
}

func (c *SearchCache) Get(key string) ([]media.Summary, bool) {
	c.mu.RLock()
	it, ok := c.items[key]
	c.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if time.Now().After(it.expiresAt) {
		c.mu.Lock()
		if cur, ok2 := c.items[key]; ok2 && time.Now().After(cur.expiresAt) {
			delete(c.items, key)
		}
		c.mu.Unlock()
		return nil, false
	}
	return it.results, true
}

func (c *SearchCache) Set(key string, results []media.Summary) {
	c.mu.Lock()
	c.items[key] = cacheItem{results: results, expiresAt: time.Now().Add(c.ttl)}
	c.mu.Unlock()
}
