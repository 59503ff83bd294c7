// Package catalog caches the categorized model catalog for the process.
//
// The first Get fetches the catalog and concurrent callers share that one
// fetch. A failed fetch is not cached, so the next popover open retries.
package catalog

import (
	"context"
	"log"
	"sync"
	"time"

	"chatui/models"

	"golang.org/x/sync/singleflight"
)

// Fetcher loads the catalog from the backend
type Fetcher interface {
	Categorized(ctx context.Context) (*models.Catalog, error)
}

// Cache holds the most recently loaded catalog
type Cache struct {
	fetcher Fetcher
	group   singleflight.Group

	mu       sync.RWMutex
	catalog  *models.Catalog
	loadedAt time.Time
	lastErr  error
}

// NewCache creates an empty cache
func NewCache(fetcher Fetcher) *Cache {
	return &Cache{fetcher: fetcher}
}

// Get returns the cached catalog, fetching it on first use
func (c *Cache) Get(ctx context.Context) (*models.Catalog, error) {
	if cat := c.Peek(); cat != nil {
		return cat, nil
	}

	v, err, shared := c.group.Do("categorized", func() (interface{}, error) {
		// Another flight may have stored it while we waited for the lock
		if cat := c.Peek(); cat != nil {
			return cat, nil
		}

		start := time.Now()
		cat, err := c.fetcher.Categorized(ctx)

		c.mu.Lock()
		defer c.mu.Unlock()
		if err != nil {
			c.lastErr = err
			log.Printf("[Catalog] Error loading models: %v", err)
			return nil, err
		}
		c.catalog = cat
		c.loadedAt = time.Now()
		c.lastErr = nil
		log.Printf("[Catalog] Loaded %d models in %s", cat.Len(), time.Since(start).Round(time.Millisecond))
		return cat, nil
	})
	if err != nil {
		return nil, err
	}
	if shared {
		log.Printf("[Catalog] Shared in-flight catalog fetch")
	}
	return v.(*models.Catalog), nil
}

// Peek returns the cached catalog without fetching. Nil when not loaded.
func (c *Cache) Peek() *models.Catalog {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.catalog
}

// Invalidate drops the cached catalog so the next Get fetches again
func (c *Cache) Invalidate() {
	c.mu.Lock()
	c.catalog = nil
	c.loadedAt = time.Time{}
	c.mu.Unlock()
}

// Status describes the cache for the health endpoint
type Status struct {
	Loaded   bool      `json:"loaded"`
	Models   int       `json:"models"`
	LoadedAt time.Time `json:"loaded_at,omitempty"`
	Error    string    `json:"error,omitempty"`
}

// Status reports whether the catalog is loaded
func (c *Cache) Status() Status {
	c.mu.RLock()
	defer c.mu.RUnlock()
	s := Status{
		Loaded:   c.catalog != nil,
		Models:   c.catalog.Len(),
		LoadedAt: c.loadedAt,
	}
	if c.lastErr != nil {
		s.Error = c.lastErr.Error()
	}
	return s
}
