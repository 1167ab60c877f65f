package query

import (
	"context"
	"time"
)

// Status is the fetch state of an entry.
type Status int

const (
	StatusIdle Status = iota
	StatusFetching
	StatusSuccess
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusFetching:
		return "fetching"
	case StatusSuccess:
		return "success"
	case StatusError:
		return "error"
	}
	return "unknown"
}

// FetchFunc loads the data for one key.
type FetchFunc func(ctx context.Context) (any, error)

// Entry is a point-in-time copy of a cached read.
type Entry struct {
	Key    Key
	Status Status
	// Data is the result of the last successful fetch, kept across later
	// failures. Nil until the first success.
	Data any
	// Err is the error of the last fetch when it failed, nil otherwise.
	Err           error
	LastFetchedAt time.Time
	Subscribers   int
	// Invalidated is set by Invalidate and cleared by the next fetch that
	// started after it.
	Invalidated bool
}

// HasData reports whether the entry holds the result of a successful fetch.
func (e Entry) HasData() bool {
	return !e.LastFetchedAt.IsZero()
}

// Fetching reports whether a fetch for the entry is in flight.
func (e Entry) Fetching() bool {
	return e.Status == StatusFetching
}

// entry is the mutable record behind an Entry. Guarded by Cache.mu.
type entry struct {
	key           Key
	id            string
	status        Status
	data          any
	err           error
	lastFetchedAt time.Time
	lastUsedAt    time.Time

	invalidated bool

	// version is bumped by every invalidation; a flight that started at an
	// older version leaves the entry invalidated.
	version uint64

	fetch FetchFunc

	fetching  bool
	flightKey string
	flightSeq uint64

	// subscribers is keyed by Cache.nextSub so a subscription can follow
	// its key into the entry that replaces this one on Reset.
	subscribers map[uint64]func(Entry)
}

func newEntry(key Key, id string, now time.Time) *entry {
	return &entry{
		key:         key,
		id:          id,
		status:      StatusIdle,
		lastUsedAt:  now,
		subscribers: make(map[uint64]func(Entry)),
	}
}

func (e *entry) snapshot() Entry {
	return Entry{
		Key:           e.key,
		Status:        e.status,
		Data:          e.data,
		Err:           e.err,
		LastFetchedAt: e.lastFetchedAt,
		Subscribers:   len(e.subscribers),
		Invalidated:   e.invalidated,
	}
}

func (e *entry) stale(now time.Time, staleTime time.Duration) bool {
	if e.lastFetchedAt.IsZero() || e.invalidated || e.status == StatusError {
		return true
	}
	return staleTime <= 0 || now.Sub(e.lastFetchedAt) > staleTime
}

func (e *entry) listeners() []func(Entry) {
	out := make([]func(Entry), 0, len(e.subscribers))
	for _, fn := range e.subscribers {
		out = append(out, fn)
	}
	return out
}
