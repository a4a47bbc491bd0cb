package query

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"time"
)

// Status is the lifecycle state of a query.
type Status int

const (
	StatusIdle Status = iota
	StatusLoading
	StatusSuccess
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusLoading:
		return "loading"
	case StatusSuccess:
		return "success"
	case StatusError:
		return "error"
	}
	return "unknown"
}

// State is an untyped snapshot of one cache entry, delivered to listeners.
type State struct {
	Status    Status
	Data      any
	Err       error
	Stale     bool
	UpdatedAt time.Time
}

// HasData reports whether a successful result was ever stored.
func (s State) HasData() bool { return !s.UpdatedAt.IsZero() }

// Result is the typed view of a State. Data keeps the last successful value
// even when Status is StatusError.
type Result[T any] struct {
	Status    Status
	Data      T
	Err       error
	Stale     bool
	UpdatedAt time.Time
}

// HasData reports whether Data holds a value fetched from the server.
func (r Result[T]) HasData() bool { return !r.UpdatedAt.IsZero() }

func typed[T any](s State) Result[T] {
	data, _ := s.Data.(T)
	return Result[T]{
		Status:    s.Status,
		Data:      data,
		Err:       s.Err,
		Stale:     s.Stale,
		UpdatedAt: s.UpdatedAt,
	}
}

// ErrReset is the result of a fetch that was still running when the cache
// was reset. Its data belongs to the previous credential and is dropped.
var ErrReset = errors.New("query: cache reset during fetch")

// Listener receives the new state of a key after every change.
type Listener func(key Key, state State)

type fetchFunc func(ctx context.Context) (any, error)

type entry struct {
	status    Status
	data      any
	err       error
	invalid   bool
	updatedAt time.Time
	fetch     fetchFunc
	listeners map[int]Listener
}

// Cache stores query results per Key. It is safe for concurrent use;
// listeners and fetch functions run outside the lock.
type Cache struct {
	staleTime time.Duration
	now       func() time.Time
	logger    *slog.Logger

	mu      sync.Mutex
	entries map[Key]*entry
	nextID  int
	gen     uint64 // bumped by Reset
}

// Option configures a Cache.
type Option func(*Cache)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(c *Cache) { c.now = now }
}

// WithLogger sets the logger used for query failures.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Cache) { c.logger = logger }
}

// New creates a cache whose entries stay fresh for staleTime after a
// successful fetch. A zero staleTime refetches on every read.
func New(staleTime time.Duration, opts ...Option) *Cache {
	c := &Cache{
		staleTime: staleTime,
		now:       time.Now,
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
		entries:   make(map[Key]*entry),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Fetch returns the cached value for key when it is fresh; otherwise it calls
// fn once and stores the outcome. A failed fetch keeps the previous data.
func Fetch[T any](ctx context.Context, c *Cache, key Key, fn func(ctx context.Context) (T, error)) Result[T] {
	return typed[T](c.fetch(ctx, key, func(ctx context.Context) (any, error) {
		return fn(ctx)
	}))
}

// Peek returns the cached state for key without fetching.
func Peek[T any](c *Cache, key Key) (Result[T], bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok {
		return Result[T]{}, false
	}
	return typed[T](c.snapshot(e)), true
}

func (c *Cache) fetch(ctx context.Context, key Key, fn fetchFunc) State {
	c.mu.Lock()
	e := c.entry(key)
	e.fetch = fn
	if e.status == StatusSuccess && !c.isStale(e) {
		s := c.snapshot(e)
		c.mu.Unlock()
		return s
	}
	e.status = StatusLoading
	loading := c.snapshot(e)
	listeners := e.listenerList()
	gen := c.gen
	c.mu.Unlock()

	notify(listeners, key, loading)
	return c.run(ctx, key, fn, gen)
}

// run calls fn and records its outcome unless the cache was reset since
// gen was read.
func (c *Cache) run(ctx context.Context, key Key, fn fetchFunc, gen uint64) State {
	data, err := fn(ctx)

	c.mu.Lock()
	if gen != c.gen {
		c.mu.Unlock()
		c.logger.Debug("query result dropped after reset", "key", key.String())
		return State{Status: StatusError, Err: ErrReset, Stale: true}
	}
	e := c.entry(key)
	if err != nil {
		e.status = StatusError
		e.err = err
	} else {
		e.status = StatusSuccess
		e.data = data
		e.err = nil
		e.invalid = false
		e.updatedAt = c.now()
	}
	s := c.snapshot(e)
	listeners := e.listenerList()
	c.mu.Unlock()

	if err != nil {
		c.logger.Warn("query failed", "key", key.String(), "err", err, "has_data", s.HasData())
	}
	notify(listeners, key, s)
	return s
}

// Invalidate marks every entry selected by m as stale and notifies its
// listeners. Entries that have listeners are refetched right away; the
// rest are refetched on their next read.
func (c *Cache) Invalidate(ctx context.Context, m Match) {
	type pending struct {
		key       Key
		state     State
		listeners []Listener
		fetch     fetchFunc
	}

	c.mu.Lock()
	var matched []pending
	for key, e := range c.entries {
		if !m.Matches(key) {
			continue
		}
		e.invalid = true
		matched = append(matched, pending{
			key:       key,
			state:     c.snapshot(e),
			listeners: e.listenerList(),
			fetch:     e.fetch,
		})
	}
	c.mu.Unlock()

	for _, p := range matched {
		notify(p.listeners, p.key, p.state)
	}
	for _, p := range matched {
		if len(p.listeners) > 0 && p.fetch != nil {
			c.fetch(ctx, p.key, p.fetch)
		}
	}
}

// Subscribe registers fn for changes to key. The returned function removes
// it; calling it more than once is a no-op.
func (c *Cache) Subscribe(key Key, fn Listener) (unsubscribe func()) {
	c.mu.Lock()
	e := c.entry(key)
	id := c.nextID
	c.nextID++
	e.listeners[id] = fn
	c.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			c.mu.Lock()
			if e, ok := c.entries[key]; ok {
				delete(e.listeners, id)
			}
			c.mu.Unlock()
		})
	}
}

// Reset drops all cached data but keeps listeners. Fetches still running
// when Reset is called do not store their results.
func (c *Cache) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gen++
	for key, e := range c.entries {
		if len(e.listeners) == 0 {
			delete(c.entries, key)
			continue
		}
		e.status = StatusIdle
		e.data = nil
		e.err = nil
		e.invalid = false
		e.updatedAt = time.Time{}
	}
}

// entry returns the entry for key, creating it. Must be called with mu held.
func (c *Cache) entry(key Key) *entry {
	e, ok := c.entries[key]
	if !ok {
		e = &entry{listeners: make(map[int]Listener)}
		c.entries[key] = e
	}
	return e
}

// Must be called with mu held.
func (c *Cache) isStale(e *entry) bool {
	return e.invalid || c.now().Sub(e.updatedAt) >= c.staleTime
}

// Must be called with mu held.
func (c *Cache) snapshot(e *entry) State {
	return State{
		Status:    e.status,
		Data:      e.data,
		Err:       e.err,
		Stale:     e.updatedAt.IsZero() || c.isStale(e),
		UpdatedAt: e.updatedAt,
	}
}

func (e *entry) listenerList() []Listener {
	out := make([]Listener, 0, len(e.listeners))
	for _, fn := range e.listeners {
		out = append(out, fn)
	}
	return out
}

func notify(listeners []Listener, key Key, s State) {
	for _, fn := range listeners {
		fn(key, s)
	}
}
