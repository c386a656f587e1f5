package xsd

import (
	"context"
	"log/slog"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/mcsuka/xml-xsd-json/pkg/logging"
)

// Cache memoizes one Parser per normalised schema location. It is safe for
// concurrent use; concurrent requests for the same location share a single
// load.
type Cache struct {
	mu      sync.RWMutex
	parsers map[string]*Parser
	group   singleflight.Group
	log     *slog.Logger
}

// CacheOption configures a Cache.
type CacheOption func(*Cache)

// WithLogger sets the logger handed to the cache and its parsers.
func WithLogger(log *slog.Logger) CacheOption {
	return func(c *Cache) {
		if log != nil {
			c.log = log
		}
	}
}

// NewCache creates an empty cache.
func NewCache(opts ...CacheOption) *Cache {
	c := &Cache{
		parsers: make(map[string]*Parser),
		log:     logging.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get returns the parser for location, creating it on first use.
func (c *Cache) Get(ctx context.Context, location string, src DocumentSource) (*Parser, error) {
	loc, err := NormalizeLocation(location)
	if err != nil {
		return nil, err
	}
	key := loc
	if k, ok := src.(CacheKeyer); ok {
		key = k.CacheKey(loc)
	}

	c.mu.RLock()
	p, ok := c.parsers[key]
	c.mu.RUnlock()
	if ok {
		return p, nil
	}

	// The shared load ignores cancellation; each caller stops waiting on
	// its own ctx.
	ch := c.group.DoChan(key, func() (any, error) {
		c.mu.RLock()
		p, ok := c.parsers[key]
		c.mu.RUnlock()
		if ok {
			return p, nil
		}

		p, err := newParser(context.WithoutCancel(ctx), loc, src, c)
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		c.parsers[key] = p
		c.mu.Unlock()
		c.log.Debug("schema parser created", "location", loc, "targetNamespace", p.TargetNamespace())
		return p, nil
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case r := <-ch:
		if r.Err != nil {
			return nil, r.Err
		}
		return r.Val.(*Parser), nil
	}
}

// Len returns the number of cached parsers.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.parsers)
}

// Clear drops every cached parser.
func (c *Cache) Clear() {
	c.mu.Lock()
	c.parsers = make(map[string]*Parser)
	c.mu.Unlock()
}
