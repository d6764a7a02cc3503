package stockdetails

import (
	"strings"

	"etf-analysis/internal/domain"

	lru "github.com/hashicorp/golang-lru/v2"
)

// Cache is a bounded, thread-safe read-through cache of stock details keyed by
// upper-case ticker. A nil entry records that the ticker is known to be missing.
// Entries are only replaced by Add or evicted by size; nothing expires.
type Cache struct {
	entries *lru.Cache[string, *domain.StockDetail]
}

func NewCache(size int) (*Cache, error) {
	entries, err := lru.New[string, *domain.StockDetail](size)
	if err != nil {
		return nil, err
	}
	return &Cache{entries: entries}, nil
}

func cacheKey(ticker string) string {
	return strings.ToUpper(strings.TrimSpace(ticker))
}

// Get returns a copy of the cached detail. cached is false on a miss; a cached
// negative entry returns (nil, true).
func (c *Cache) Get(ticker string) (detail *domain.StockDetail, cached bool) {
	d, ok := c.entries.Get(cacheKey(ticker))
	if !ok {
		return nil, false
	}
	if d == nil {
		return nil, true
	}
	cp := *d
	return &cp, true
}

// Add stores a copy of detail; nil records a negative entry.
func (c *Cache) Add(ticker string, detail *domain.StockDetail) {
	var stored *domain.StockDetail
	if detail != nil {
		cp := *detail
		stored = &cp
	}
	c.entries.Add(cacheKey(ticker), stored)
}

func (c *Cache) Len() int {
	return c.entries.Len()
}
