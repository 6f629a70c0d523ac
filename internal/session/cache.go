package session

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// DefaultStaleAfter is how long a controller is reused after its last fetch.
const DefaultStaleAfter = 5 * time.Minute

// Cache keeps one controller per query so a listing survives the view that
// showed it. A controller that has not fetched within the staleness window
// is closed and replaced on next access.
type Cache struct {
	fetcher    Fetcher
	staleAfter time.Duration
	logger     *slog.Logger
	now        func() time.Time

	mu      sync.Mutex
	entries map[string]*Controller
	starts  singleflight.Group
}

// NewCache creates a cache. A non-positive staleAfter uses DefaultStaleAfter.
func NewCache(fetcher Fetcher, staleAfter time.Duration, logger *slog.Logger) *Cache {
	if staleAfter <= 0 {
		staleAfter = DefaultStaleAfter
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Cache{
		fetcher:    fetcher,
		staleAfter: staleAfter,
		logger:     logger,
		now:        time.Now,
		entries:    make(map[string]*Controller),
	}
}

// Get returns the live controller for q, creating a fresh idle one when
// there is none or the cached one went stale.
func (c *Cache) Get(q Query) *Controller {
	key := q.Key()

	c.mu.Lock()
	defer c.mu.Unlock()

	if ctrl, ok := c.entries[key]; ok {
		if !ctrl.Closed() && !c.stale(ctrl) {
			return ctrl
		}
		ctrl.Close()
		c.logger.Debug("replacing stale session", "query", key, "session", ctrl.ID())
	}

	ctrl := NewController(q, c.fetcher, c.logger)
	ctrl.now = c.now
	ctrl.createdAt = c.now()
	c.entries[key] = ctrl
	return ctrl
}

// Load returns the controller for q and makes sure its first page was
// requested. Concurrent loads of the same query share one first fetch.
func (c *Cache) Load(ctx context.Context, q Query) (*Controller, error) {
	ctrl := c.Get(q)
	if ctrl.State() != StateIdle {
		return ctrl, nil
	}
	_, err, _ := c.starts.Do(ctrl.ID(), func() (any, error) {
		_, err := ctrl.Start(ctx)
		return nil, err
	})
	return ctrl, err
}

// Invalidate closes and forgets the controller for q.
func (c *Cache) Invalidate(q Query) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if ctrl, ok := c.entries[q.Key()]; ok {
		ctrl.Close()
		delete(c.entries, q.Key())
	}
}

// Len returns the number of cached controllers.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Close closes every cached controller.
func (c *Cache) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for key, ctrl := range c.entries {
		ctrl.Close()
		delete(c.entries, key)
	}
}

// stale reports whether ctrl outlived the window. A controller with a fetch
// in flight is never stale.
func (c *Cache) stale(ctrl *Controller) bool {
	if ctrl.busy() {
		return false
	}
	return c.now().Sub(ctrl.lastActivity()) > c.staleAfter
}
