package data

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"sync"
	"time"

	"vehicle-tco/internal/metrics"
	"vehicle-tco/internal/tco"

	"github.com/google/uuid"
)

// DefaultResultTTL applies when RESULT_CACHE_TTL is unset or invalid.
const DefaultResultTTL = 30 * time.Minute

// ResultEntry is one cached comparison.
type ResultEntry struct {
	ID         string
	Key        string
	Comparison *tco.Comparison
	ExpiresAt  time.Time
}

// ResultCache memoises comparisons by the content hash of their inputs and
// hands out an ID per entry so tables can be fetched later.
//
// The engine itself never caches; callers decide what to store. Entries are
// immutable once stored.
type ResultCache struct {
	mu     sync.RWMutex
	byKey  map[string]*ResultEntry
	byID   map[string]*ResultEntry
	ttl    time.Duration
	logger *log.Logger
	now    func() time.Time
}

var globalCache *ResultCache
var cacheOnce sync.Once

// GetCache returns the process-wide cache. The TTL comes from
// RESULT_CACHE_TTL (a Go duration, e.g. "10m").
func GetCache() *ResultCache {
	cacheOnce.Do(func() {
		ttl := DefaultResultTTL
		if ttlStr := os.Getenv("RESULT_CACHE_TTL"); ttlStr != "" {
			if parsed, err := time.ParseDuration(ttlStr); err == nil && parsed > 0 {
				ttl = parsed
			} else {
				log.Printf("[cache] ignoring invalid RESULT_CACHE_TTL %q", ttlStr)
			}
		}
		globalCache = NewResultCache(ttl, nil)
		go globalCache.cleanup(5 * time.Minute)
	})
	return globalCache
}

// NewResultCache returns an empty cache. A nil logger uses log.Default().
func NewResultCache(ttl time.Duration, logger *log.Logger) *ResultCache {
	if logger == nil {
		logger = log.Default()
	}
	if ttl <= 0 {
		ttl = DefaultResultTTL
	}
	return &ResultCache{
		byKey:  make(map[string]*ResultEntry),
		byID:   make(map[string]*ResultEntry),
		ttl:    ttl,
		logger: logger,
		now:    time.Now,
	}
}

// Key hashes the JSON encoding of v. Map keys are encoded in sorted order,
// so equal inputs give equal keys.
func Key(v any) (string, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("cache key: %w", err)
	}
	hash := sha256.Sum256(raw)
	return hex.EncodeToString(hash[:]), nil
}

// Get returns the live entry stored under key.
func (c *ResultCache) Get(key string) (*ResultEntry, bool) {
	if c == nil {
		return nil, false
	}
	c.mu.RLock()
	entry, ok := c.byKey[key]
	c.mu.RUnlock()

	hit := ok && c.now().Before(entry.ExpiresAt)
	metrics.ObserveCacheLookup(hit)
	if !hit {
		return nil, false
	}
	return entry, true
}

// GetByID returns the live entry with the given ID.
func (c *ResultCache) GetByID(id string) (*ResultEntry, bool) {
	if c == nil {
		return nil, false
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.byID[id]
	if !ok || !c.now().Before(entry.ExpiresAt) {
		return nil, false
	}
	return entry, true
}

// Put stores cmp under key with a fresh ID, replacing any previous entry for
// the same key.
func (c *ResultCache) Put(key string, cmp *tco.Comparison) *ResultEntry {
	if c == nil {
		return &ResultEntry{ID: uuid.NewString(), Key: key, Comparison: cmp}
	}
	entry := &ResultEntry{
		ID:         uuid.NewString(),
		Key:        key,
		Comparison: cmp,
		ExpiresAt:  c.now().Add(c.ttl),
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if old, ok := c.byKey[key]; ok {
		delete(c.byID, old.ID)
	}
	c.byKey[key] = entry
	c.byID[entry.ID] = entry
	metrics.CacheEntries.Set(float64(len(c.byKey)))
	return entry
}

// Len reports the number of stored entries, expired ones included.
func (c *ResultCache) Len() int {
	if c == nil {
		return 0
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.byKey)
}

// Clear removes all entries.
func (c *ResultCache) Clear() {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.byKey = make(map[string]*ResultEntry)
	c.byID = make(map[string]*ResultEntry)
	metrics.CacheEntries.Set(0)
}

// evictExpired drops entries whose TTL has passed and returns how many went.
func (c *ResultCache) evictExpired() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.now()
	n := 0
	for key, entry := range c.byKey {
		if !now.Before(entry.ExpiresAt) {
			delete(c.byKey, key)
			delete(c.byID, entry.ID)
			n++
		}
	}
	metrics.CacheEntries.Set(float64(len(c.byKey)))
	return n
}

func (c *ResultCache) cleanup(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for range ticker.C {
		if n := c.evictExpired(); n > 0 {
			c.logger.Printf("[cache] evicted %d expired results", n)
		}
	}
}
