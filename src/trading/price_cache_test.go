package trading

import (
	"testing"
	"time"
)

func TestPriceCacheTTL(t *testing.T) {
	cache := newPriceCache(30 * time.Second)
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	cache.now = func() time.Time { return now }

	if _, ok := cache.get("addr"); ok {
		t.Fatal("empty cache should miss")
	}

	cache.put("addr", 1.5)
	if price, ok := cache.get("addr"); !ok || price != 1.5 {
		t.Fatalf("expected fresh hit of 1.5, got %f / %v", price, ok)
	}

	now = now.Add(29 * time.Second)
	if _, ok := cache.get("addr"); !ok {
		t.Fatal("entry within TTL should hit")
	}

	now = now.Add(time.Second)
	if _, ok := cache.get("addr"); ok {
		t.Fatal("entry at TTL should be stale")
	}

	// A fresh put resets the clock.
	cache.put("addr", 2.0)
	if price, ok := cache.get("addr"); !ok || price != 2.0 {
		t.Fatalf("expected refreshed entry, got %f / %v", price, ok)
	}
}
