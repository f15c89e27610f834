package trading

import (
	"sync"
	"time"
)

// priceCache bounds venue price-API call volume during monitoring. Entries
// expire after a short TTL; a stale entry triggers a fresh venue query.
type priceCache struct {
	ttl time.Duration
	now func() time.Time

	mu      sync.RWMutex
	entries map[string]priceEntry
}

type priceEntry struct {
	price float64
	at    time.Time
}

func newPriceCache(ttl time.Duration) *priceCache {
	return &priceCache{
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[string]priceEntry),
	}
}

func (c *priceCache) get(address string) (float64, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.entries[address]
	if !ok || c.now().Sub(entry.at) >= c.ttl {
		return 0, false
	}
	return entry.price, true
}

func (c *priceCache) put(address string, price float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[address] = priceEntry{price: price, at: c.now()}
}
