package cache

import (
	"fmt"
	"testing"
	"time"
)

func TestSetGet(t *testing.T) {
	c := New[string](4, time.Minute)
	c.Set("a", "alpha")

	got, ok := c.Get("a")
	if !ok || got != "alpha" {
		t.Fatalf("Get(a) = %q, %v", got, ok)
	}
	if _, ok := c.Get("missing"); ok {
		t.Fatalf("expected miss for unknown key")
	}
}

func TestExpiry(t *testing.T) {
	c := New[int](4, 10*time.Millisecond)
	c.Set("n", 42)
	time.Sleep(20 * time.Millisecond)

	if _, ok := c.Get("n"); ok {
		t.Fatalf("expected entry to expire")
	}
	if c.Len() != 0 {
		t.Fatalf("expired entry should be dropped on access, len=%d", c.Len())
	}
}

func TestZeroTTLNeverExpires(t *testing.T) {
	c := New[int](4, 0)
	c.Set("n", 1)
	time.Sleep(5 * time.Millisecond)
	if _, ok := c.Get("n"); !ok {
		t.Fatalf("zero TTL entry must not expire")
	}
}

func TestCapacityEvictsLeastRecentlyUsed(t *testing.T) {
	c := New[int](2, time.Minute)
	c.Set("a", 1)
	c.Set("b", 2)
	c.Get("a") // refresh recency, b becomes oldest
	c.Set("c", 3)

	if _, ok := c.Get("b"); ok {
		t.Fatalf("expected b to be evicted")
	}
	if _, ok := c.Get("a"); !ok {
		t.Fatalf("a should survive eviction")
	}
	if _, ok := c.Get("c"); !ok {
		t.Fatalf("c should be present")
	}
}

func TestInvalidate(t *testing.T) {
	c := New[int](4, time.Minute)
	c.Set("a", 1)
	c.Set("b", 2)

	c.Invalidate("a")
	if _, ok := c.Get("a"); ok {
		t.Fatalf("a should be gone after Invalidate")
	}

	c.InvalidateAll()
	if c.Len() != 0 {
		t.Fatalf("expected empty cache after InvalidateAll, len=%d", c.Len())
	}
}

func TestSweep(t *testing.T) {
	c := New[int](10, 10*time.Millisecond)
	for i := 0; i < 5; i++ {
		c.Set(fmt.Sprintf("k%d", i), i)
	}
	time.Sleep(20 * time.Millisecond)
	c.Set("fresh", 99)

	if dropped := c.Sweep(); dropped != 5 {
		t.Fatalf("Sweep dropped %d, want 5", dropped)
	}
	if _, ok := c.Get("fresh"); !ok {
		t.Fatalf("fresh entry must survive sweep")
	}
}

func TestSetRefreshesExisting(t *testing.T) {
	c := New[int](2, time.Minute)
	c.Set("a", 1)
	c.Set("b", 2)
	c.Set("a", 10) // refresh, b becomes oldest
	c.Set("c", 3)

	if got, ok := c.Get("a"); !ok || got != 10 {
		t.Fatalf("Get(a) = %d, %v; want 10, true", got, ok)
	}
	if _, ok := c.Get("b"); ok {
		t.Fatalf("expected b to be evicted")
	}
}
