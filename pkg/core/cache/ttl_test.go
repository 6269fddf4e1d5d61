package cache

import (
	"sync"
	"testing"
	"time"
)

func TestTTLExpiry(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	c := NewTTL[string](time.Hour).WithClock(func() time.Time { return now })

	c.Set("q", "answer")
	if v, ok := c.Get("q"); !ok || v != "answer" {
		t.Fatalf("Expected hit, got %q %v", v, ok)
	}

	now = now.Add(59 * time.Minute)
	if _, ok := c.Get("q"); !ok {
		t.Error("Entry should survive until the TTL elapses")
	}

	now = now.Add(time.Minute)
	if _, ok := c.Get("q"); ok {
		t.Error("Entry should expire at the TTL")
	}

	s := c.Stats()
	if s.Hits != 2 || s.Misses != 1 || s.Entries != 0 {
		t.Errorf("Unexpected stats %+v", s)
	}
}

func TestZeroTTLDisablesCaching(t *testing.T) {
	c := NewTTL[int](0)
	c.Set("k", 1)
	if _, ok := c.Get("k"); ok {
		t.Error("Zero TTL should never store")
	}
}

func TestPurge(t *testing.T) {
	now := time.Unix(0, 0)
	c := NewTTL[int](time.Minute).WithClock(func() time.Time { return now })
	c.Set("a", 1)
	now = now.Add(30 * time.Second)
	c.Set("b", 2)
	now = now.Add(45 * time.Second)

	if removed := c.Purge(); removed != 1 {
		t.Errorf("Expected 1 purged, got %d", removed)
	}
	if _, ok := c.Get("b"); !ok {
		t.Error("b should still be live")
	}
}

func TestClearAndCounters(t *testing.T) {
	c := NewTTL[string](time.Hour)
	c.Set("a", "1")
	c.Set("b", "2")
	c.Set("a", "3")
	if v, _ := c.Get("a"); v != "3" {
		t.Errorf("Expected overwrite, got %q", v)
	}

	c.Clear()
	if _, ok := c.Get("b"); ok {
		t.Error("Clear should drop every entry")
	}
	s := c.Stats()
	if s.Insertions != 2 || s.Evictions != 2 || s.Entries != 0 {
		t.Errorf("Unexpected stats %+v", s)
	}
}

func TestConcurrentAccess(t *testing.T) {
	c := NewTTL[int](time.Hour)
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			c.Set("k", i)
			c.Get("k")
		}(i)
	}
	wg.Wait()
	if s := c.Stats(); s.Hits+s.Misses != 50 {
		t.Errorf("Expected 50 lookups, got %+v", s)
	}
}
