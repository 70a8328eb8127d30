package cache

import (
	"testing"
	"time"
)

func TestSetGet(t *testing.T) {
	c := New(WithCleanupInterval(time.Hour))
	defer c.Shutdown()

	c.Set("k1", "v1", time.Minute)
	v, ok := c.Get("k1")
	if !ok || v != "v1" {
		t.Fatalf("Get(k1) = %v, %v; want v1, true", v, ok)
	}
}

func TestGet_Miss(t *testing.T) {
	c := New(WithCleanupInterval(time.Hour))
	defer c.Shutdown()

	if _, ok := c.Get("missing"); ok {
		t.Fatal("expected miss for unknown key")
	}
}

func TestGet_LazyExpiry(t *testing.T) {
	c := New(WithCleanupInterval(time.Hour))
	defer c.Shutdown()

	c.Set("k1", "v1", time.Millisecond)
	time.Sleep(5 * time.Millisecond)

	if _, ok := c.Get("k1"); ok {
		t.Fatal("expired key should be absent on read")
	}
	if c.Len() != 0 {
		t.Fatalf("expired key should be removed from both maps, Len() = %d", c.Len())
	}
}

func TestSet_ZeroTTLUsesDefault(t *testing.T) {
	c := New(WithDefaultTTL(time.Millisecond), WithCleanupInterval(time.Hour))
	defer c.Shutdown()

	c.Set("k1", "v1", 0)
	time.Sleep(5 * time.Millisecond)
	if _, ok := c.Get("k1"); ok {
		t.Fatal("key should have inherited the default TTL and expired")
	}
}

func TestSet_ZeroTTLAndZeroDefaultIsPermanent(t *testing.T) {
	c := New(WithDefaultTTL(0), WithCleanupInterval(time.Hour))
	defer c.Shutdown()

	c.Set("k1", "v1", 0)
	time.Sleep(5 * time.Millisecond)
	if _, ok := c.Get("k1"); !ok {
		t.Fatal("key with no TTL anywhere should never expire")
	}
}

func TestDelete(t *testing.T) {
	c := New(WithCleanupInterval(time.Hour))
	defer c.Shutdown()

	c.Set("k1", "v1", time.Minute)
	c.Delete("k1")
	if _, ok := c.Get("k1"); ok {
		t.Fatal("deleted key should be absent")
	}
}

func TestInvalidatePattern(t *testing.T) {
	tests := []struct {
		name    string
		pattern string
		keys    []string
		want    []string
	}{
		{"prefix", "tenant:*", []string{"tenant:1:bot_id", "tenant:2:bot_id", "bot:1"}, []string{"bot:1"}},
		{"suffix", "*:bot_id", []string{"tenant:1:bot_id", "tenant:2:bot_id", "bot:1"}, []string{"bot:1"}},
		{"single_wildcard", "tenant:1*config", []string{"tenant:1:config", "tenant:2:config", "bot:1"}, []string{"tenant:2:config", "bot:1"}},
		{"literal", "bot:1", []string{"bot:1", "bot:2"}, []string{"bot:2"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := New(WithCleanupInterval(time.Hour))
			defer c.Shutdown()
			for _, k := range tt.keys {
				c.Set(k, true, time.Minute)
			}
			c.InvalidatePattern(tt.pattern)

			remaining := map[string]bool{}
			for _, k := range tt.keys {
				if _, ok := c.Get(k); ok {
					remaining[k] = true
				}
			}
			if len(remaining) != len(tt.want) {
				t.Fatalf("remaining = %v, want %v", remaining, tt.want)
			}
			for _, k := range tt.want {
				if !remaining[k] {
					t.Errorf("expected %q to survive invalidation", k)
				}
			}
		})
	}
}

func TestActiveSampler_EvictsExpiredKeys(t *testing.T) {
	c := New(WithCleanupInterval(10*time.Millisecond), WithSampleSize(10), WithExpiredThreshold(0.25))
	defer c.Shutdown()

	for i := 0; i < 5; i++ {
		c.Set(string(rune('a'+i)), i, time.Millisecond)
	}
	time.Sleep(100 * time.Millisecond)

	c.mu.Lock()
	n := len(c.expiresAt)
	c.mu.Unlock()
	if n != 0 {
		t.Fatalf("active sampler should have evicted all expired keys, %d remain", n)
	}
}

func TestShutdown_StopsSampler(t *testing.T) {
	c := New(WithCleanupInterval(5 * time.Millisecond))
	c.Shutdown()

	// Reads/writes must remain safe after shutdown.
	c.Set("k1", "v1", time.Minute)
	if _, ok := c.Get("k1"); !ok {
		t.Fatal("cache should still serve reads/writes after Shutdown")
	}
}
