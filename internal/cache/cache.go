// Package cache is a process-local key/value store with TTL, lazy
// expiry on read, an active sampling sweep, and pattern invalidation
// (spec.md §4.5). It mirrors Redis's active-expiration strategy: most
// keys are found and evicted lazily on read, and a background sampler
// bounds the amortized cost of keys that are set and never read again.
package cache

import (
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/vensus137/coreness-go/pkg/logger"
)

// Cache is safe for concurrent use. A single mutex guards both the
// value map and the expiry map, matching spec.md §4.5's Concurrency
// note that a single mutex over both maps is acceptable (no read
// sharding is done).
type Cache struct {
	mu        sync.Mutex
	store     map[string]any
	expiresAt map[string]time.Time

	defaultTTL      time.Duration
	cleanupInterval time.Duration
	sampleSize      int
	expiredThresh   float64

	stopCh chan struct{}
	wg     sync.WaitGroup
	once   sync.Once
}

// Option configures a Cache at construction time.
type Option func(*Cache)

// WithDefaultTTL sets the TTL applied when Set is called without one.
// A zero default makes every Set call that passes no ttl of its own
// store a permanent key.
func WithDefaultTTL(d time.Duration) Option { return func(c *Cache) { c.defaultTTL = d } }

// WithCleanupInterval sets how often the active sampler runs.
func WithCleanupInterval(d time.Duration) Option { return func(c *Cache) { c.cleanupInterval = d } }

// WithSampleSize sets how many keys the sampler examines per run.
func WithSampleSize(n int) Option { return func(c *Cache) { c.sampleSize = n } }

// WithExpiredThreshold sets the sampled-expired-ratio that triggers a
// full sweep instead of evicting only the sampled subset.
func WithExpiredThreshold(f float64) Option { return func(c *Cache) { c.expiredThresh = f } }

// New creates a Cache and starts its background sampler. Call
// Shutdown to stop it.
func New(opts ...Option) *Cache {
	c := &Cache{
		store:           make(map[string]any),
		expiresAt:       make(map[string]time.Time),
		defaultTTL:      3600 * time.Second,
		cleanupInterval: 60 * time.Second,
		sampleSize:      50,
		expiredThresh:   0.25,
		stopCh:          make(chan struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.wg.Add(1)
	go c.sampleLoop()
	return c
}

// Get returns the value for key. Lazy expiry: if the key is past its
// expiry, it is removed from both maps and Get reports absent — even
// if the active sampler hasn't reached it yet.
func (c *Cache) Get(key string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.getLocked(key, time.Now())
}

func (c *Cache) getLocked(key string, now time.Time) (any, bool) {
	exp, hasExpiry := c.expiresAt[key]
	if hasExpiry && !now.Before(exp) {
		delete(c.store, key)
		delete(c.expiresAt, key)
		return nil, false
	}
	v, ok := c.store[key]
	return v, ok
}

// Set stores value under key. ttl of zero falls back to the cache's
// default TTL (nonzero here in almost every realistic configuration);
// a genuinely permanent key requires both a zero ttl *and* a
// zero default TTL, per spec.md §4.5's Data note.
func (c *Cache) Set(key string, value any, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	effective := ttl
	if effective == 0 {
		effective = c.defaultTTL
	}
	c.store[key] = value
	if effective > 0 {
		c.expiresAt[key] = time.Now().Add(effective)
	} else {
		delete(c.expiresAt, key)
	}
}

// Delete removes key unconditionally.
func (c *Cache) Delete(key string) {
	c.mu.Lock()
	delete(c.store, key)
	delete(c.expiresAt, key)
	c.mu.Unlock()
}

// InvalidatePattern evicts every key matching p:
//
//	"prefix:*" — keys starting with "prefix:"
//	"*:suffix" — keys ending with ":suffix"
//	"a*b"      — single wildcard: startsWith(a) && endsWith(b)
//	literal    — exact match
func (c *Cache) InvalidatePattern(p string) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	match := matcherFor(p)
	var victims []string
	for k := range c.store {
		if match(k) {
			victims = append(victims, k)
		}
	}
	for _, k := range victims {
		delete(c.store, k)
		delete(c.expiresAt, k)
	}
	return len(victims)
}

func matcherFor(p string) func(string) bool {
	switch {
	case strings.HasSuffix(p, ":*"):
		prefix := strings.TrimSuffix(p, "*")
		return func(k string) bool { return strings.HasPrefix(k, prefix) }
	case strings.HasPrefix(p, "*:"):
		suffix := strings.TrimPrefix(p, "*")
		return func(k string) bool { return strings.HasSuffix(k, suffix) }
	case strings.Contains(p, "*"):
		idx := strings.Index(p, "*")
		prefix, suffix := p[:idx], p[idx+1:]
		return func(k string) bool {
			return strings.HasPrefix(k, prefix) && strings.HasSuffix(k, suffix)
		}
	default:
		return func(k string) bool { return k == p }
	}
}

// Shutdown stops the active sampler. Reads and writes remain safe after
// Shutdown; the cache simply stops amortizing expired-key cleanup in
// the background (lazy expiry on Get still applies).
func (c *Cache) Shutdown() {
	c.once.Do(func() { close(c.stopCh) })
	c.wg.Wait()
}

func (c *Cache) sampleLoop() {
	defer c.wg.Done()
	ticker := time.NewTicker(c.cleanupInterval)
	defer ticker.Stop()
	for {
		select {
		case <-c.stopCh:
			return
		case <-ticker.C:
			c.sweep()
		}
	}
}

// sweep runs one active-sampler pass:
//  1. sample up to sampleSize keys uniformly at random from expiresAt
//  2. count how many are already past due
//  3. if the expired ratio ≥ expiredThresh, evict every expired key in
//     the whole map; otherwise evict only the expired sampled subset
func (c *Cache) sweep() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	total := len(c.expiresAt)
	if total == 0 {
		return
	}

	keys := make([]string, 0, total)
	for k := range c.expiresAt {
		keys = append(keys, k)
	}
	sampleN := c.sampleSize
	if sampleN > len(keys) {
		sampleN = len(keys)
	}
	rand.Shuffle(len(keys), func(i, j int) { keys[i], keys[j] = keys[j], keys[i] })
	sample := keys[:sampleN]

	var expiredSample []string
	for _, k := range sample {
		if now.After(c.expiresAt[k]) || now.Equal(c.expiresAt[k]) {
			expiredSample = append(expiredSample, k)
		}
	}
	if sampleN == 0 {
		return
	}
	ratio := float64(len(expiredSample)) / float64(sampleN)

	if ratio >= c.expiredThresh {
		var evicted int
		for k, exp := range c.expiresAt {
			if !now.Before(exp) {
				delete(c.store, k)
				delete(c.expiresAt, k)
				evicted++
			}
		}
		logger.Debug("cache: full sweep", logger.FieldCount, evicted, "ratio", ratio)
		return
	}

	for _, k := range expiredSample {
		delete(c.store, k)
		delete(c.expiresAt, k)
	}
	if len(expiredSample) > 0 {
		logger.Debug("cache: sampled sweep", logger.FieldCount, len(expiredSample))
	}
}

// Len reports the number of stored key/value pairs, including expired
// ones not yet evicted, without triggering lazy expiry — it is a
// diagnostic, not a read path.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.store)
}
