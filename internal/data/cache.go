package data

import (
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
)

// CachedLookup keeps the most recently resolved locations in memory in front
// of another LocationLookup. Only successful lookups are cached.
type CachedLookup struct {
	next  LocationLookup
	cache *lru.Cache[uint32, Location]
}

// NewCachedLookup wraps next with an LRU cache holding up to size entries.
func NewCachedLookup(next LocationLookup, size int) (*CachedLookup, error) {
	cache, err := lru.New[uint32, Location](size)
	if err != nil {
		return nil, fmt.Errorf("failed to create lookup cache: %w", err)
	}
	return &CachedLookup{next: next, cache: cache}, nil
}

// LookupLocation returns the cached location for id or asks the wrapped lookup.
func (c *CachedLookup) LookupLocation(id uint32) (Location, error) {
	if loc, ok := c.cache.Get(id); ok {
		return loc, nil
	}
	loc, err := c.next.LookupLocation(id)
	if err != nil {
		return Location{}, err
	}
	c.cache.Add(id, loc)
	return loc, nil
}

// Len returns the number of cached entries.
func (c *CachedLookup) Len() int {
	return c.cache.Len()
}

// Close purges the cache and closes the wrapped lookup.
func (c *CachedLookup) Close() error {
	c.cache.Purge()
	return c.next.Close()
}
