package query

import (
	"context"
	"sync"
	"time"
)

// Result is the typed view of an entry.
type Result[T any] struct {
	Data          T
	HasData       bool
	Status        Status
	Err           error
	LastFetchedAt time.Time
	Invalidated   bool
}

func resultOf[T any](e Entry) Result[T] {
	r := Result[T]{
		Status:        e.Status,
		Err:           e.Err,
		LastFetchedAt: e.LastFetchedAt,
		Invalidated:   e.Invalidated,
	}
	if v, ok := e.Data.(T); ok {
		r.Data = v
		r.HasData = e.HasData()
	}
	return r
}

// Observer watches one key for as long as it is open. It keeps the entry
// subscribed, so invalidations refetch it and GC leaves it alone.
type Observer[T any] struct {
	cache *Cache
	key   Key
	fetch FetchFunc
	opts  []ReadOption

	mu        sync.Mutex
	listeners map[uint64]func(Result[T])
	nextID    uint64
	closed    bool

	unsubscribe func()
}

// Use subscribes to key and triggers a read. Close the observer when done.
func Use[T any](ctx context.Context, c *Cache, key Key, fetch func(ctx context.Context) (T, error), opts ...ReadOption) *Observer[T] {
	o := &Observer[T]{
		cache:     c,
		key:       key,
		fetch:     func(ctx context.Context) (any, error) { return fetch(ctx) },
		opts:      opts,
		listeners: make(map[uint64]func(Result[T])),
	}
	o.unsubscribe = c.Subscribe(key, o.forward)
	c.Read(ctx, key, o.fetch, opts...)
	return o
}

// Key returns the observed key.
func (o *Observer[T]) Key() Key {
	return o.key
}

// Result returns the current state of the observed entry.
func (o *Observer[T]) Result() Result[T] {
	e, ok := o.cache.Get(o.key)
	if !ok {
		return Result[T]{Status: StatusIdle}
	}
	return resultOf[T](e)
}

// Refetch fetches the key regardless of freshness and waits for the result.
func (o *Observer[T]) Refetch(ctx context.Context) (T, error) {
	var zero T
	opts := append(append([]ReadOption{}, o.opts...), Force())
	data, err := o.cache.Fetch(ctx, o.key, o.fetch, opts...)
	if err != nil {
		return zero, err
	}
	v, _ := data.(T)
	return v, nil
}

// Await returns cached data when fresh, otherwise waits for a fetch.
func (o *Observer[T]) Await(ctx context.Context) (T, error) {
	var zero T
	data, err := o.cache.Fetch(ctx, o.key, o.fetch, o.opts...)
	if err != nil {
		return zero, err
	}
	v, _ := data.(T)
	return v, nil
}

// Subscribe registers fn to receive the result after each change.
func (o *Observer[T]) Subscribe(fn func(Result[T])) (unsubscribe func()) {
	o.mu.Lock()
	id := o.nextID
	o.nextID++
	o.listeners[id] = fn
	o.mu.Unlock()

	return func() {
		o.mu.Lock()
		delete(o.listeners, id)
		o.mu.Unlock()
	}
}

// Close releases the subscription. A fetch in flight is not cancelled.
func (o *Observer[T]) Close() {
	o.mu.Lock()
	if o.closed {
		o.mu.Unlock()
		return
	}
	o.closed = true
	o.listeners = map[uint64]func(Result[T]){}
	o.mu.Unlock()
	o.unsubscribe()
}

func (o *Observer[T]) forward(e Entry) {
	o.mu.Lock()
	listeners := make([]func(Result[T]), 0, len(o.listeners))
	for _, fn := range o.listeners {
		listeners = append(listeners, fn)
	}
	o.mu.Unlock()

	r := resultOf[T](e)
	for _, fn := range listeners {
		fn(r)
	}
}
