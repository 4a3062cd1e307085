// Package querycache deduplicates and caches read queries.
//
// Entries are keyed by resource kind and parameters. Concurrent callers of
// the same key share one in-flight fetch, and results stay cached until the
// kind or key is invalidated (or the optional TTL lapses). Subscribers of a
// key are told about every completed fetch. A context marked WithRefresh
// makes Load skip the cached value.
package querycache

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"bookmyworkspace/pkg/logger"

	"golang.org/x/sync/singleflight"
)

type Key struct {
	Kind   string
	Params string
}

// NewKey builds a key from a kind and its query parameters.
func NewKey(kind string, params ...any) Key {
	parts := make([]string, len(params))
	for i, p := range params {
		parts[i] = fmt.Sprint(p)
	}
	return Key{Kind: kind, Params: strings.Join(parts, "|")}
}

func (k Key) String() string {
	return k.Kind + ":" + k.Params
}

// Listener receives the outcome of each completed fetch for a key.
type Listener func(value any, err error)

type entry struct {
	value     any
	fetchedAt time.Time
}

// stamp identifies the invalidation epoch a fetch started in.
type stamp struct {
	kind uint64
	key  uint64
}

type Cache struct {
	mu          sync.Mutex
	group       singleflight.Group
	entries     map[Key]entry
	generations map[string]uint64
	keyGens     map[Key]uint64
	listeners   map[Key]map[uint64]Listener
	nextID      uint64
	ttl         time.Duration
	now         func() time.Time
	log         *logger.Logger
}

// New creates a cache. A zero ttl keeps entries until invalidated.
func New(log *logger.Logger, ttl time.Duration) *Cache {
	if log == nil {
		log = logger.Discard()
	}
	return &Cache{
		entries:     make(map[Key]entry),
		generations: make(map[string]uint64),
		keyGens:     make(map[Key]uint64),
		listeners:   make(map[Key]map[uint64]Listener),
		ttl:         ttl,
		now:         time.Now,
		log:         log,
	}
}

type refreshKey struct{}

// WithRefresh marks ctx so that Load fetches again instead of reading the
// cached value.
func WithRefresh(ctx context.Context) context.Context {
	return context.WithValue(ctx, refreshKey{}, true)
}

func RefreshRequested(ctx context.Context) bool {
	v, _ := ctx.Value(refreshKey{}).(bool)
	return v
}

// Load is Fetch, or Refetch when ctx was marked WithRefresh.
func Load[T any](ctx context.Context, c *Cache, key Key, fetch func(ctx context.Context) (T, error)) (T, error) {
	if RefreshRequested(ctx) {
		return Refetch(ctx, c, key, fetch)
	}
	return Fetch(ctx, c, key, fetch)
}

// Fetch returns the cached value for key or runs fetch once for all
// concurrent callers.
func Fetch[T any](ctx context.Context, c *Cache, key Key, fetch func(ctx context.Context) (T, error)) (T, error) {
	if v, ok := c.lookup(key); ok {
		if typed, ok := v.(T); ok {
			return typed, nil
		}
	}
	return run(ctx, c, key, fetch)
}

// Refetch bypasses the cached value and forces a new fetch. Fetches of key
// already in flight are not joined.
func Refetch[T any](ctx context.Context, c *Cache, key Key, fetch func(ctx context.Context) (T, error)) (T, error) {
	c.InvalidateKey(key)
	return run(ctx, c, key, fetch)
}

func run[T any](ctx context.Context, c *Cache, key Key, fetch func(ctx context.Context) (T, error)) (T, error) {
	st := c.stamp(key)
	flightKey := fmt.Sprintf("%s#%d.%d", key, st.kind, st.key)

	ch := c.group.DoChan(flightKey, func() (any, error) {
		v, err := fetch(context.WithoutCancel(ctx))
		if err == nil {
			c.store(key, st, v)
		}
		c.notify(key, v, err)
		return v, err
	})

	var zero T
	select {
	case <-ctx.Done():
		return zero, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return zero, res.Err
		}
		if res.Shared {
			c.log.Debug("query deduplicated", "key", key.String())
		}
		typed, ok := res.Val.(T)
		if !ok {
			return zero, fmt.Errorf("querycache: unexpected type %T for key %s", res.Val, key)
		}
		return typed, nil
	}
}

func (c *Cache) lookup(key Key) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	if c.ttl > 0 && c.now().Sub(e.fetchedAt) > c.ttl {
		delete(c.entries, key)
		return nil, false
	}
	return e.value, true
}

func (c *Cache) stamp(key Key) stamp {
	c.mu.Lock()
	defer c.mu.Unlock()
	return stamp{kind: c.generations[key.Kind], key: c.keyGens[key]}
}

// store drops results whose kind or key was invalidated while they were in
// flight.
func (c *Cache) store(key Key, st stamp, v any) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.generations[key.Kind] != st.kind || c.keyGens[key] != st.key {
		return
	}
	c.entries[key] = entry{value: v, fetchedAt: c.now()}
}

func (c *Cache) notify(key Key, v any, err error) {
	c.mu.Lock()
	listeners := make([]Listener, 0, len(c.listeners[key]))
	for _, l := range c.listeners[key] {
		listeners = append(listeners, l)
	}
	c.mu.Unlock()

	for _, l := range listeners {
		l(v, err)
	}
}

// Invalidate drops every entry of the given kinds, including fetches still in flight.
func (c *Cache) Invalidate(kinds ...string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, kind := range kinds {
		c.generations[kind]++
		for key := range c.entries {
			if key.Kind == kind {
				delete(c.entries, key)
			}
		}
		// the kind generation now rejects older fetches on its own
		for key := range c.keyGens {
			if key.Kind == kind {
				delete(c.keyGens, key)
			}
		}
	}
}

// InvalidateKey drops one entry, including a fetch of it still in flight.
func (c *Cache) InvalidateKey(key Key) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.keyGens[key]++
	delete(c.entries, key)
}

// Subscribe registers l for key and returns a function that removes it.
func (c *Cache) Subscribe(key Key, l Listener) func() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.nextID++
	id := c.nextID
	if c.listeners[key] == nil {
		c.listeners[key] = make(map[uint64]Listener)
	}
	c.listeners[key][id] = l

	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		delete(c.listeners[key], id)
		if len(c.listeners[key]) == 0 {
			delete(c.listeners, key)
		}
	}
}

// Subscribers reports how many listeners key has.
func (c *Cache) Subscribers(key Key) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.listeners[key])
}

func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
