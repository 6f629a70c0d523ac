// Package session drives infinite lists on the client side: a Controller
// accumulates the pages of one listing query and decides when to fetch the
// next one, and a Cache keeps controllers alive between views.
package session

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/reelfeed/reelfeed-server/internal/feed"
	"github.com/reelfeed/reelfeed-server/internal/id"
)

// ErrDiscarded is returned by a fetch whose result arrived after the
// controller was closed. The result is dropped.
var ErrDiscarded = errors.New("session: controller closed while fetching")

// Fetcher fetches one page of a provider's listing.
type Fetcher interface {
	FetchPage(ctx context.Context, provider string, cursor feed.Cursor) (feed.Page, error)
}

// State is where a controller is in its lifecycle.
type State int

// Controller states.
const (
	StateIdle State = iota
	StateLoading
	StateReady
	StateLoadingMore
	StateExhausted
	StateError
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateLoading:
		return "loading"
	case StateReady:
		return "ready"
	case StateLoadingMore:
		return "loading_more"
	case StateExhausted:
		return "exhausted"
	case StateError:
		return "error"
	default:
		return "unknown"
	}
}

// Query identifies one listing. A different query is a different session.
type Query struct {
	Provider string
	Kind     feed.Kind
}

// Key is the cache key of the query.
func (q Query) Key() string {
	return q.Provider + "|" + q.Kind.String()
}

// Snapshot is a consistent copy of a controller's observable state.
type Snapshot struct {
	ID        string
	Query     Query
	State     State
	Items     []feed.Item
	Pages     int
	HasNext   bool
	Err       error
	UpdatedAt time.Time
}

// Controller accumulates the pages of one query. At most one fetch runs at
// a time; the lock is not held during the network call.
type Controller struct {
	id      string
	query   Query
	initial feed.Cursor
	fetcher Fetcher
	logger  *slog.Logger
	now     func() time.Time

	mu        sync.Mutex
	state     State
	pages     []feed.Page
	items     []feed.Item
	attempted feed.Cursor
	err       error
	inFlight  bool
	gen       uint64
	closed    bool
	createdAt time.Time
	updatedAt time.Time
}

// NewController creates an idle controller for q.
func NewController(q Query, fetcher Fetcher, logger *slog.Logger) *Controller {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	sid := id.MustGenerate(id.PrefixSession)
	c := &Controller{
		id:      sid,
		query:   q,
		initial: feed.Initial(q.Kind),
		fetcher: fetcher,
		logger:  logger.With("session", sid, "provider", q.Provider),
		now:     time.Now,
		items:   []feed.Item{},
	}
	c.createdAt = c.now()
	return c
}

// ID returns the session id.
func (c *Controller) ID() string { return c.id }

// Query returns the query the controller serves.
func (c *Controller) Query() Query { return c.query }

// Start loads the first page. It reports false without fetching unless the
// controller is idle.
func (c *Controller) Start(ctx context.Context) (bool, error) {
	c.mu.Lock()
	if c.closed || c.inFlight || c.state != StateIdle {
		c.mu.Unlock()
		return false, nil
	}
	return c.fetchLocked(ctx, c.initial, StateLoading)
}

// LoadMore fetches the next page when the controller is ready, a next cursor
// exists and nothing is in flight. Otherwise it reports false.
func (c *Controller) LoadMore(ctx context.Context) (bool, error) {
	c.mu.Lock()
	if c.closed || c.inFlight || c.state != StateReady {
		c.mu.Unlock()
		return false, nil
	}
	next, ok := feed.NextCursor(c.initial, c.pages)
	if !ok {
		c.state = StateExhausted
		c.mu.Unlock()
		return false, nil
	}
	return c.fetchLocked(ctx, next, StateLoadingMore)
}

// Retry re-issues the last attempted cursor after a failure, keeping the
// pages already loaded.
func (c *Controller) Retry(ctx context.Context) (bool, error) {
	c.mu.Lock()
	if c.closed || c.inFlight || c.state != StateError {
		c.mu.Unlock()
		return false, nil
	}
	state := StateLoading
	if len(c.pages) > 0 {
		state = StateLoadingMore
	}
	return c.fetchLocked(ctx, c.attempted, state)
}

// fetchLocked runs one fetch. It must be called with c.mu held and returns
// with it released.
func (c *Controller) fetchLocked(ctx context.Context, cursor feed.Cursor, state State) (bool, error) {
	c.state = state
	c.inFlight = true
	c.attempted = cursor
	c.err = nil
	gen := c.gen
	c.mu.Unlock()

	c.logger.Debug("fetching page", "cursor", cursor.String(), "state", state.String())
	page, err := c.fetcher.FetchPage(ctx, c.query.Provider, cursor)

	c.mu.Lock()
	defer c.mu.Unlock()

	if gen != c.gen {
		c.logger.Debug("dropping result of closed session", "cursor", cursor.String())
		return true, ErrDiscarded
	}
	c.inFlight = false

	if err != nil {
		c.state = StateError
		c.err = err
		c.logger.Warn("page fetch failed", "cursor", cursor.String(), "error", err)
		return true, err
	}

	c.pages = append(c.pages, page)
	c.items = append(c.items, page.Items...)
	c.updatedAt = c.now()

	if _, ok := feed.NextCursor(c.initial, c.pages); ok {
		c.state = StateReady
	} else {
		c.state = StateExhausted
		c.logger.Debug("listing exhausted", "pages", len(c.pages), "items", len(c.items))
	}
	return true, nil
}

// Close ends the session. A fetch still in flight has its result discarded.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	c.gen++
	c.inFlight = false
}

// Closed reports whether Close was called.
func (c *Controller) Closed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

// State returns the current state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Items returns the accumulated items in fetch order.
func (c *Controller) Items() []feed.Item {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.items)
}

// HasNext reports whether LoadMore could still fetch something.
func (c *Controller) HasNext() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hasNextLocked()
}

func (c *Controller) hasNextLocked() bool {
	switch c.state {
	case StateIdle:
		return true
	case StateExhausted:
		return false
	}
	_, ok := feed.NextCursor(c.initial, c.pages)
	return ok
}

// Err returns the error of the last failed fetch, if the controller is in
// the error state.
func (c *Controller) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}

// Snapshot returns a copy of the observable state.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Snapshot{
		ID:        c.id,
		Query:     c.query,
		State:     c.state,
		Items:     slices.Clone(c.items),
		Pages:     len(c.pages),
		HasNext:   c.hasNextLocked(),
		Err:       c.err,
		UpdatedAt: c.updatedAt,
	}
}

// lastActivity is the time of the last successful fetch, or creation.
func (c *Controller) lastActivity() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.updatedAt.IsZero() {
		return c.createdAt
	}
	return c.updatedAt
}

func (c *Controller) busy() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.inFlight
}
