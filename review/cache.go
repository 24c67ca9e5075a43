package review

import (
	"sync"

	"github.com/bibgraph/bibgraph/config"
)

// Cache holds the result of the latest build and rebuilds lazily. The core
// pipeline is stateless; this is the single place build results live between
// requests.
type Cache struct {
	cfg *config.Config

	mu     sync.RWMutex
	result *Result
}

// NewCache creates a cache that builds from cfg on demand.
func NewCache(cfg *config.Config) *Cache {
	return &Cache{cfg: cfg}
}

// Load returns the cached result, building it first if needed.
func (c *Cache) Load() (*Result, error) {
	c.mu.RLock()
	result := c.result
	c.mu.RUnlock()
	if result != nil {
		return result, nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.result != nil {
		return c.result, nil
	}
	result, err := Build(c.cfg)
	if err != nil {
		return nil, err
	}
	c.result = result
	return result, nil
}

// Invalidate drops the cached result so the next Load rebuilds.
func (c *Cache) Invalidate() {
	c.mu.Lock()
	c.result = nil
	c.mu.Unlock()
}

// Reload invalidates and rebuilds immediately.
func (c *Cache) Reload() (*Result, error) {
	c.Invalidate()
	return c.Load()
}
