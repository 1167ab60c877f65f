// Package mutation runs state-changing API calls and invalidates the
// cached reads they affect.
package mutation

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/jrsteele09/go-booking-client/query"
	"github.com/rs/zerolog"
)

// Status is the state of a mutation.
type Status int

const (
	StatusIdle Status = iota
	StatusPending
	StatusSuccess
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusPending:
		return "pending"
	case StatusSuccess:
		return "success"
	case StatusError:
		return "error"
	}
	return "unknown"
}

// Invalidator marks cached reads stale. *query.Cache satisfies it.
type Invalidator interface {
	Invalidate(pattern query.Key) int
}

// Spec declares one kind of mutation.
type Spec[In, Out any] struct {
	Name string
	Fn   func(ctx context.Context, in In) (Out, error)
	// Invalidates lists the key patterns marked stale after a success.
	Invalidates []query.Key
	// OnSuccess runs after invalidation.
	OnSuccess func(ctx context.Context, in In, out Out)
}

// Record describes one mutation call. It exists only for the call.
type Record struct {
	ID          string
	Name        string
	Status      Status
	Invalidates []query.Key
}

// Coordinator ties mutations to a cache.
type Coordinator struct {
	cache  Invalidator
	logger zerolog.Logger
}

// Option configures the Coordinator.
type Option func(*Coordinator)

// WithLogger sets a structured logger.
func WithLogger(l zerolog.Logger) Option {
	return func(c *Coordinator) { c.logger = l }
}

// NewCoordinator creates a Coordinator invalidating through cache.
func NewCoordinator(cache Invalidator, opts ...Option) *Coordinator {
	c := &Coordinator{cache: cache, logger: zerolog.Nop()}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Run calls spec.Fn. On success it makes exactly one invalidation pass over
// spec.Invalidates, then calls OnSuccess. On failure the error from Fn is
// returned unchanged and nothing is invalidated.
func Run[In, Out any](ctx context.Context, c *Coordinator, spec Spec[In, Out], in In) (Out, error) {
	rec := Record{
		ID:          uuid.NewString(),
		Name:        spec.Name,
		Status:      StatusPending,
		Invalidates: spec.Invalidates,
	}
	log := c.logger.With().Str("mutation", rec.Name).Str("mutation_id", rec.ID).Logger()

	out, err := spec.Fn(ctx, in)
	if err != nil {
		rec.Status = StatusError
		log.Debug().Err(err).Msg("mutation failed")
		return out, err
	}

	rec.Status = StatusSuccess
	marked := c.invalidate(rec.Invalidates)
	log.Debug().Int("invalidated", marked).Msg("mutation succeeded")

	if spec.OnSuccess != nil {
		spec.OnSuccess(ctx, in, out)
	}
	return out, nil
}

// invalidate marks each distinct pattern once.
func (c *Coordinator) invalidate(patterns []query.Key) int {
	if c.cache == nil {
		return 0
	}
	seen := make(map[string]bool, len(patterns))
	marked := 0
	for _, p := range patterns {
		id := p.String()
		if seen[id] {
			continue
		}
		seen[id] = true
		marked += c.cache.Invalidate(p)
	}
	return marked
}

// Mutator is a reusable handle for one Spec that tracks the last call.
type Mutator[In, Out any] struct {
	coordinator *Coordinator
	spec        Spec[In, Out]

	mu     sync.RWMutex
	status Status
	data   Out
	err    error
}

// New creates a Mutator for spec.
func New[In, Out any](c *Coordinator, spec Spec[In, Out]) *Mutator[In, Out] {
	return &Mutator[In, Out]{coordinator: c, spec: spec}
}

// Mutate runs the mutation. See Run.
func (m *Mutator[In, Out]) Mutate(ctx context.Context, in In) (Out, error) {
	m.mu.Lock()
	m.status = StatusPending
	m.err = nil
	m.mu.Unlock()

	out, err := Run(ctx, m.coordinator, m.spec, in)

	m.mu.Lock()
	defer m.mu.Unlock()
	if err != nil {
		m.status = StatusError
		m.err = err
		return out, err
	}
	m.status = StatusSuccess
	m.data = out
	return out, nil
}

// Status returns the state of the last call.
func (m *Mutator[In, Out]) Status() Status {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.status
}

// Err returns the error of the last call, if it failed.
func (m *Mutator[In, Out]) Err() error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.err
}

// Data returns the result of the last successful call.
func (m *Mutator[In, Out]) Data() Out {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.data
}

// Reset returns the Mutator to StatusIdle.
func (m *Mutator[In, Out]) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	var zero Out
	m.status = StatusIdle
	m.data = zero
	m.err = nil
}
