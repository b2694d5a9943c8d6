// Package cache holds immutable snapshots of completed analyses so
// repeated requests for the same center and parameters skip the store
// entirely. Entries age out by TTL and capacity; nothing invalidates
// them automatically when relationship data changes, so writers must
// publish invalidations on the Bus (or call Invalidate directly) and
// staleness is otherwise bounded only by the TTL.
package cache

import (
	"container/list"
	"sync"
	"time"

	"github.com/golang/snappy"
)

// DefaultTTL bounds snapshot staleness when the caller does not choose one.
const DefaultTTL = 15 * time.Minute

// Recorder receives cache effectiveness events. *metrics.Registry
// satisfies it; a nil Recorder disables reporting.
type Recorder interface {
	RecordCacheHit()
	RecordCacheMiss()
	RecordCacheEviction()
	RecordCacheInvalidation(scope string)
	SetCacheEntries(n int)
}

// AnalysisCache is an LRU cache of snappy-compressed analysis snapshots
// with per-entry TTL expiry.
type AnalysisCache struct {
	maxSize  int
	ttl      time.Duration
	recorder Recorder

	mu     sync.Mutex
	cache  map[string]*cacheEntry
	byCent map[string]map[string]bool // center id -> keys
	lru    *list.List
	hits   uint64
	misses uint64

	now func() time.Time // test hook
}

// cacheEntry represents a single cache entry
type cacheEntry struct {
	key      string
	centerID string
	payload  []byte // snappy-compressed
	storedAt time.Time
	element  *list.Element
}

// Option configures an AnalysisCache.
type Option func(*AnalysisCache)

// WithTTL overrides the default entry lifetime.
func WithTTL(ttl time.Duration) Option {
	return func(c *AnalysisCache) { c.ttl = ttl }
}

// WithRecorder wires cache events into a metrics sink.
func WithRecorder(r Recorder) Option {
	return func(c *AnalysisCache) { c.recorder = r }
}

// New creates an LRU+TTL cache holding at most maxSize snapshots.
func New(maxSize int, opts ...Option) *AnalysisCache {
	c := &AnalysisCache{
		maxSize: maxSize,
		ttl:     DefaultTTL,
		cache:   make(map[string]*cacheEntry),
		byCent:  make(map[string]map[string]bool),
		lru:     list.New(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get retrieves and decompresses a snapshot. Expired entries count as
// misses and are dropped on access.
func (c *AnalysisCache) Get(key string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, exists := c.cache[key]
	if exists && c.now().Sub(entry.storedAt) > c.ttl {
		c.remove(entry)
		if c.recorder != nil {
			c.recorder.RecordCacheEviction()
		}
		exists = false
	}
	if !exists {
		c.misses++
		if c.recorder != nil {
			c.recorder.RecordCacheMiss()
			c.recorder.SetCacheEntries(c.lru.Len())
		}
		return nil, false
	}

	c.lru.MoveToFront(entry.element)
	c.hits++
	if c.recorder != nil {
		c.recorder.RecordCacheHit()
	}

	payload, err := snappy.Decode(nil, entry.payload)
	if err != nil {
		// A corrupt entry is useless; drop it and report a miss.
		c.remove(entry)
		return nil, false
	}
	return payload, true
}

// Put compresses and stores a snapshot under key, associated with the
// center entity the analysis ran around.
func (c *AnalysisCache) Put(key, centerID string, payload []byte) {
	compressed := snappy.Encode(nil, payload)

	c.mu.Lock()
	defer c.mu.Unlock()

	if entry, exists := c.cache[key]; exists {
		entry.payload = compressed
		entry.storedAt = c.now()
		c.lru.MoveToFront(entry.element)
		return
	}

	entry := &cacheEntry{
		key:      key,
		centerID: centerID,
		payload:  compressed,
		storedAt: c.now(),
	}
	entry.element = c.lru.PushFront(entry)
	c.cache[key] = entry
	if c.byCent[centerID] == nil {
		c.byCent[centerID] = make(map[string]bool)
	}
	c.byCent[centerID][key] = true

	if c.lru.Len() > c.maxSize {
		c.evictOldest()
	}
	if c.recorder != nil {
		c.recorder.SetCacheEntries(c.lru.Len())
	}
}

// Invalidate drops every snapshot centred on entityID and returns how
// many were removed.
func (c *AnalysisCache) Invalidate(entityID string) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	keys := c.byCent[entityID]
	removed := 0
	for key := range keys {
		if entry, ok := c.cache[key]; ok {
			c.remove(entry)
			removed++
		}
	}
	if c.recorder != nil && removed > 0 {
		c.recorder.RecordCacheInvalidation("entity")
		c.recorder.SetCacheEntries(c.lru.Len())
	}
	return removed
}

// InvalidateAll drops every snapshot and returns how many were removed.
func (c *AnalysisCache) InvalidateAll() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	removed := c.lru.Len()
	c.cache = make(map[string]*cacheEntry)
	c.byCent = make(map[string]map[string]bool)
	c.lru = list.New()
	if c.recorder != nil && removed > 0 {
		c.recorder.RecordCacheInvalidation("all")
		c.recorder.SetCacheEntries(0)
	}
	return removed
}

// evictOldest removes the least recently used entry
func (c *AnalysisCache) evictOldest() {
	oldest := c.lru.Back()
	if oldest == nil {
		return
	}
	c.remove(oldest.Value.(*cacheEntry))
	if c.recorder != nil {
		c.recorder.RecordCacheEviction()
	}
}

// remove unlinks an entry from all three indexes. Callers hold the lock.
func (c *AnalysisCache) remove(entry *cacheEntry) {
	c.lru.Remove(entry.element)
	delete(c.cache, entry.key)
	if keys := c.byCent[entry.centerID]; keys != nil {
		delete(keys, entry.key)
		if len(keys) == 0 {
			delete(c.byCent, entry.centerID)
		}
	}
}

// Size returns the current number of entries in the cache
func (c *AnalysisCache) Size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lru.Len()
}

// Stats returns hit/miss counters and the hit rate.
func (c *AnalysisCache) Stats() (hits, misses uint64, hitRate float64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	total := c.hits + c.misses
	if total == 0 {
		return c.hits, c.misses, 0
	}
	return c.hits, c.misses, float64(c.hits) / float64(total)
}
