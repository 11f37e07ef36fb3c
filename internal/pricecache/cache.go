package pricecache

import (
	"sync"

	"github.com/shopspring/decimal"
)

// Cache holds the last observed price per trading-pair symbol
// (e.g. "BTCUSDT"). The ticker loop writes into it, the account loop
// reads from it; a single mutex covers both directions.
type Cache struct {
	mu     sync.RWMutex
	prices map[string]decimal.Decimal
}

func New() *Cache {
	return &Cache{prices: make(map[string]decimal.Decimal)}
}

// Merge replaces the cached price for every symbol present in updates
// and leaves other symbols untouched. The whole update becomes visible
// at once: readers never see a half-applied merge.
func (c *Cache) Merge(updates map[string]decimal.Decimal) {
	if len(updates) == 0 {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	for symbol, price := range updates {
		c.prices[symbol] = price
	}
}

// Snapshot returns an independent copy of the cache for one valuation
// pass. Later merges do not affect the returned map.
func (c *Cache) Snapshot() map[string]decimal.Decimal {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make(map[string]decimal.Decimal, len(c.prices))
	for symbol, price := range c.prices {
		out[symbol] = price
	}
	return out
}

// Len reports how many symbols are currently cached.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.prices)
}
