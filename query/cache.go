// Package query caches server state by key.
//
// A Cache deduplicates concurrent fetches for the same key, serves cached
// data while revalidating in the background, keeps the last good data when
// a refetch fails and refetches invalidated entries that are being watched.
// Entries nobody watches are evicted once idle for longer than the GC time.
package query

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	apperrors "github.com/jrsteele09/go-booking-client/internal/errors"
	"github.com/jrsteele09/go-booking-client/internal/metrics"
	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"
)

const (
	// DefaultStaleTime makes cached data stale as soon as it is stored.
	DefaultStaleTime = time.Duration(0)
	// DefaultGCTime is how long an unwatched entry survives.
	DefaultGCTime = 5 * time.Minute
)

// ErrNoFetcher is returned by Fetch for a key no fetch function was ever given for.
var ErrNoFetcher = apperrors.ErrNoFetcher

// ErrClosed is returned by Fetch once Close has been called and no fetch
// for the key is already in flight.
var ErrClosed = apperrors.ErrCacheClosed

// ErrReset is returned to callers awaiting a fetch whose entry was removed
// by Reset before the fetch finished. The result is discarded.
var ErrReset = errors.New("query: cache reset during fetch")

// Cache is a keyed store of fetch results. It is safe for concurrent use.
type Cache struct {
	mu      sync.Mutex
	entries map[string]*entry
	epoch   uint64
	nextSub uint64
	closed  bool

	group   singleflight.Group
	flights sync.WaitGroup

	staleTime time.Duration
	gcTime    time.Duration
	now       func() time.Time
	logger    zerolog.Logger
	metrics   *metrics.Metrics
}

// Option configures the Cache.
type Option func(*Cache)

// WithStaleTime sets the default freshness window for reads.
func WithStaleTime(d time.Duration) Option {
	return func(c *Cache) { c.staleTime = d }
}

// WithGCTime sets how long an entry without subscribers is kept.
// A negative value disables eviction.
func WithGCTime(d time.Duration) Option {
	return func(c *Cache) { c.gcTime = d }
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(c *Cache) { c.now = now }
}

// WithLogger sets a structured logger.
func WithLogger(l zerolog.Logger) Option {
	return func(c *Cache) { c.logger = l }
}

// WithMetrics sets the metrics recorder.
func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Cache) { c.metrics = m }
}

// New creates an empty Cache.
func New(opts ...Option) *Cache {
	c := &Cache{
		entries:   make(map[string]*entry),
		staleTime: DefaultStaleTime,
		gcTime:    DefaultGCTime,
		now:       time.Now,
		logger:    zerolog.Nop(),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// ReadOption adjusts a single Read or Fetch.
type ReadOption func(*readOptions)

type readOptions struct {
	staleTime time.Duration
	force     bool
}

// StaleTime overrides the freshness window for one read.
func StaleTime(d time.Duration) ReadOption {
	return func(o *readOptions) { o.staleTime = d }
}

// Force fetches even when the cached data is fresh. A fetch already in
// flight for the key is joined rather than duplicated.
func Force() ReadOption {
	return func(o *readOptions) { o.force = true }
}

func (c *Cache) readOptions(opts []ReadOption) readOptions {
	o := readOptions{staleTime: c.staleTime}
	for _, fn := range opts {
		fn(&o)
	}
	return o
}

// Read returns the current entry for key and starts a background fetch when
// the entry is absent, stale, invalidated, failed or forced. It never waits
// for the fetch. fetch may be nil to reuse the function from an earlier read.
func (c *Cache) Read(ctx context.Context, key Key, fetch FetchFunc, opts ...ReadOption) Entry {
	o := c.readOptions(opts)
	now := c.now()

	c.mu.Lock()
	e := c.entryLocked(key, now)
	c.prepareLocked(e, fetch, now)

	var listeners []func(Entry)
	if e.fetch != nil && (o.force || e.stale(now, o.staleTime)) {
		c.metrics.RecordCacheMiss()
		if _, started := c.startLocked(ctx, e); started {
			listeners = e.listeners()
		}
	} else {
		c.metrics.RecordCacheHit()
	}
	snap := e.snapshot()
	c.mu.Unlock()

	notify(listeners, snap)
	return snap
}

// Fetch returns fresh cached data for key, or starts (or joins) a fetch and
// waits for its result. If ctx ends first Fetch returns ctx.Err(); the fetch
// itself keeps running and its result is still cached.
func (c *Cache) Fetch(ctx context.Context, key Key, fetch FetchFunc, opts ...ReadOption) (any, error) {
	o := c.readOptions(opts)
	now := c.now()

	c.mu.Lock()
	e := c.entryLocked(key, now)
	c.prepareLocked(e, fetch, now)
	if e.fetch == nil {
		c.mu.Unlock()
		return nil, fmt.Errorf("[Cache Fetch] %s: %w", key, ErrNoFetcher)
	}
	if !o.force && !e.stale(now, o.staleTime) {
		data := e.data
		c.metrics.RecordCacheHit()
		c.mu.Unlock()
		return data, nil
	}

	c.metrics.RecordCacheMiss()
	ch, started := c.startLocked(ctx, e)
	if ch == nil {
		c.mu.Unlock()
		return nil, fmt.Errorf("[Cache Fetch] %s: %w", key, ErrClosed)
	}
	var listeners []func(Entry)
	if started {
		listeners = e.listeners()
	}
	snap := e.snapshot()
	c.mu.Unlock()

	notify(listeners, snap)

	select {
	case res := <-ch:
		return res.Val, res.Err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Get returns the entry for key without fetching.
func (c *Cache) Get(key Key) (Entry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key.String()]
	if !ok {
		return Entry{}, false
	}
	return e.snapshot(), true
}

// Len returns the number of entries.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// SetData stores data for key as if a fetch had just succeeded.
func (c *Cache) SetData(key Key, data any) {
	now := c.now()

	c.mu.Lock()
	e := c.entryLocked(key, now)
	e.data = data
	e.err = nil
	e.lastFetchedAt = now
	e.invalidated = false
	if !e.fetching {
		e.status = StatusSuccess
	}
	snap := e.snapshot()
	listeners := e.listeners()
	c.mu.Unlock()

	notify(listeners, snap)
}

// Subscribe registers fn to receive the entry for key after every change.
// The entry is created if needed. The returned function removes the
// subscription; it does not cancel a fetch in flight.
func (c *Cache) Subscribe(key Key, fn func(Entry)) (unsubscribe func()) {
	now := c.now()

	c.mu.Lock()
	e := c.entryLocked(key, now)
	id := c.nextSub
	c.nextSub++
	e.subscribers[id] = fn
	c.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			c.mu.Lock()
			defer c.mu.Unlock()
			// Reset may have moved the subscription to a new entry.
			cur, ok := c.entries[e.id]
			if !ok {
				return
			}
			delete(cur.subscribers, id)
			if len(cur.subscribers) == 0 {
				cur.lastUsedAt = c.now()
			}
		})
	}
}

// Invalidate marks every entry whose key starts with pattern as stale.
// Entries with subscribers are refetched immediately; the others refetch on
// their next read. It returns the number of entries marked.
func (c *Cache) Invalidate(pattern Key) int {
	type change struct {
		listeners []func(Entry)
		snap      Entry
	}

	c.mu.Lock()
	var changes []change
	for _, e := range c.entries {
		if !e.key.HasPrefix(pattern) {
			continue
		}
		e.invalidated = true
		e.version++
		// A fetch already in flight refetches on completion instead.
		if len(e.subscribers) > 0 && e.fetch != nil && !e.fetching {
			c.startLocked(context.Background(), e)
		}
		changes = append(changes, change{listeners: e.listeners(), snap: e.snapshot()})
	}
	c.mu.Unlock()

	for _, ch := range changes {
		notify(ch.listeners, ch.snap)
	}
	c.logger.Debug().Str("pattern", pattern.String()).Int("count", len(changes)).Msg("queries invalidated")
	return len(changes)
}

// Reset drops every cached result. Fetches in flight complete but their
// results are discarded and their waiters receive ErrReset.
//
// Keys that still have subscribers keep them: each is replaced by an idle
// entry without data, the subscribers are notified with it, and later
// reads and invalidations of the key reach them as before.
func (c *Cache) Reset() {
	type change struct {
		listeners []func(Entry)
		snap      Entry
	}
	now := c.now()

	c.mu.Lock()
	old := c.entries
	c.entries = make(map[string]*entry)
	c.epoch++

	var changes []change
	for id, e := range old {
		if len(e.subscribers) == 0 {
			continue
		}
		fresh := newEntry(e.key, id, now)
		fresh.fetch = e.fetch
		fresh.subscribers = e.subscribers
		e.subscribers = nil
		c.entries[id] = fresh
		changes = append(changes, change{listeners: fresh.listeners(), snap: fresh.snapshot()})
	}
	evicted := len(old) - len(c.entries)
	size := len(c.entries)
	c.mu.Unlock()

	for _, ch := range changes {
		notify(ch.listeners, ch.snap)
	}
	c.metrics.RecordEviction("reset", evicted)
	c.metrics.SetCacheSize(size)
	c.logger.Debug().Int("evicted", evicted).Int("watched", size).Msg("query cache reset")
}

// CleanUp evicts entries that have had no subscribers and no reads for
// longer than the GC time. It returns the number evicted.
func (c *Cache) CleanUp() int {
	if c.gcTime < 0 {
		return 0
	}
	now := c.now()

	c.mu.Lock()
	n := 0
	for id, e := range c.entries {
		if len(e.subscribers) > 0 || e.fetching {
			continue
		}
		if now.Sub(e.lastUsedAt) > c.gcTime {
			delete(c.entries, id)
			n++
		}
	}
	size := len(c.entries)
	c.mu.Unlock()

	c.metrics.RecordEviction("gc", n)
	c.metrics.SetCacheSize(size)
	return n
}

// PeriodicCleanUp runs CleanUp every interval until stop is closed.
//
//	stop := make(chan struct{})
//	go cache.PeriodicCleanUp(time.Minute, stop)
//	...
//	close(stop)
func (c *Cache) PeriodicCleanUp(interval time.Duration, stop <-chan struct{}) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if n := c.CleanUp(); n > 0 {
				c.logger.Debug().Int("evicted", n).Msg("idle queries evicted")
			}
		case <-stop:
			return
		}
	}
}

// Wait blocks until no fetch is in flight. It must not race with reads
// that may start a fetch; use Close for a final shutdown.
func (c *Cache) Wait() {
	c.flights.Wait()
}

// Close stops new fetches from starting and waits for those in flight.
// Cached data stays readable; Fetch of stale data returns ErrClosed.
func (c *Cache) Close() {
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()
	c.flights.Wait()
}

func (c *Cache) entryLocked(key Key, now time.Time) *entry {
	id := key.String()
	e, ok := c.entries[id]
	if !ok {
		e = newEntry(key, id, now)
		c.entries[id] = e
		c.metrics.SetCacheSize(len(c.entries))
	}
	return e
}

func (c *Cache) prepareLocked(e *entry, fetch FetchFunc, now time.Time) {
	if fetch != nil {
		e.fetch = fetch
	}
	e.lastUsedAt = now
}

// startLocked starts a fetch for e, or joins the one in flight.
// started reports whether a new fetch began. ch is nil when the cache is
// closed and there is nothing to join.
func (c *Cache) startLocked(ctx context.Context, e *entry) (ch <-chan singleflight.Result, started bool) {
	if e.fetching {
		return c.group.DoChan(e.flightKey, discarded), false
	}
	if c.closed {
		return nil, false
	}

	e.fetching = true
	e.status = StatusFetching
	e.flightSeq++
	e.flightKey = e.id + "@" + strconv.FormatUint(c.epoch, 10) + "#" + strconv.FormatUint(e.flightSeq, 10)

	c.flights.Add(1)
	return c.group.DoChan(e.flightKey, c.flight(context.WithoutCancel(ctx), e, e.fetch, c.epoch, e.version)), true
}

// flight runs one fetch and applies its result to e.
func (c *Cache) flight(ctx context.Context, e *entry, fetch FetchFunc, epoch, version uint64) func() (any, error) {
	return func() (any, error) {
		defer c.flights.Done()

		data, err := runFetch(ctx, fetch)
		if err != nil {
			c.metrics.RecordFetch("error")
			c.logger.Debug().Err(err).Str("key", e.id).Msg("query fetch failed")
		} else {
			c.metrics.RecordFetch("success")
		}

		c.mu.Lock()
		if c.epoch != epoch || c.entries[e.id] != e {
			c.mu.Unlock()
			return nil, ErrReset
		}

		e.fetching = false
		e.flightKey = ""
		if err != nil {
			e.status = StatusError
			e.err = err
		} else {
			e.status = StatusSuccess
			e.data = data
			e.err = nil
			e.lastFetchedAt = c.now()
		}
		if e.version == version {
			e.invalidated = false
		}
		snap := e.snapshot()
		listeners := e.listeners()

		if e.invalidated && len(e.subscribers) > 0 {
			c.startLocked(context.Background(), e)
		}
		c.mu.Unlock()

		notify(listeners, snap)
		return data, err
	}
}

// discarded stands in for the fetch when joining a flight. The flight is
// registered while e.fetching is set, so it is never called.
func discarded() (any, error) {
	return nil, ErrReset
}

func runFetch(ctx context.Context, fetch FetchFunc) (data any, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("query fetch panicked: %v", r)
		}
	}()
	return fetch(ctx)
}

func notify(listeners []func(Entry), snap Entry) {
	for _, fn := range listeners {
		fn(snap)
	}
}
