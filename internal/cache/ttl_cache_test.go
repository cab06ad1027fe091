package cache

import (
	"errors"
	"testing"
	"time"
)

func TestTTLCacheExpiry(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	c := NewTTLCacheWithClock[string, int](func() time.Time { return now })

	c.Set("a", 1, time.Minute)
	c.Set("b", 2, 0)
	if v, ok := c.Get("a"); !ok || v != 1 {
		t.Fatalf("expected hit, got %d %v", v, ok)
	}

	now = now.Add(2 * time.Minute)
	if _, ok := c.Get("a"); ok {
		t.Fatalf("expected expired entry to miss")
	}
	if v, ok := c.Get("b"); !ok || v != 2 {
		t.Fatalf("entries without ttl must not expire")
	}
	if c.Len() != 1 {
		t.Fatalf("expected one live entry, got %d", c.Len())
	}
}

func TestDeleteFunc(t *testing.T) {
	c := NewTTLCache[string, int]()
	c.Set("org1:sales", 1, time.Minute)
	c.Set("org1:flow", 2, time.Minute)
	c.Set("org2:sales", 3, time.Minute)

	c.DeleteFunc(func(key string) bool { return key[:5] == "org1:" })
	if c.Len() != 1 {
		t.Fatalf("expected one entry left, got %d", c.Len())
	}
}

func TestGetOrLoad(t *testing.T) {
	c := NewTTLCache[string, int]()
	calls := 0
	load := func() (int, error) {
		calls++
		return 42, nil
	}

	for i := 0; i < 3; i++ {
		v, err := GetOrLoad[string, int](c, "k", time.Minute, load)
		if err != nil || v != 42 {
			t.Fatalf("unexpected result %d %v", v, err)
		}
	}
	if calls != 1 {
		t.Fatalf("expected a single load, got %d", calls)
	}

	boom := errors.New("boom")
	if _, err := GetOrLoad[string, int](c, "other", time.Minute, func() (int, error) { return 0, boom }); !errors.Is(err, boom) {
		t.Fatalf("expected load error, got %v", err)
	}
	if _, ok := c.Get("other"); ok {
		t.Fatalf("errors must not be cached")
	}
}

func TestNilAndNoopCache(t *testing.T) {
	var c *TTLCache[string, int]
	c.Set("a", 1, time.Minute)
	if _, ok := c.Get("a"); ok {
		t.Fatalf("nil cache must miss")
	}

	var noop NoopCache[string, int]
	noop.Set("a", 1, time.Minute)
	if _, ok := noop.Get("a"); ok {
		t.Fatalf("noop cache must miss")
	}
}
