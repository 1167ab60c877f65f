// Package session owns the authentication token's lifecycle.
//
// A Manager restores the token from a credstore.Store exactly once, exposes
// it to the request executor, persists sign-in/sign-up/sign-out, drives
// navigation on token presence and resets the query cache when the identity
// goes away. It is the only holder of the live token; other components read
// it through Token for the duration of a single request.
package session

import (
	"context"
	"sync"
	"time"

	"github.com/jrsteele09/go-booking-client/credstore"
	"github.com/jrsteele09/go-booking-client/internal/metrics"
	"github.com/jrsteele09/go-booking-client/token"
	"github.com/rs/zerolog"
)

// DefaultRestoreTimeout bounds the initial durable read so a hung store
// cannot block startup.
const DefaultRestoreTimeout = 5 * time.Second

// Manager implements the session state machine.
type Manager struct {
	store          credstore.Store
	key            string
	logger         zerolog.Logger
	metrics        *metrics.Metrics
	navigator      Navigator
	cache          CacheResetter
	restoreTimeout time.Duration

	mu        sync.RWMutex
	token     string
	state     State
	pending   *pendingWrite
	observers map[uint64]func(Snapshot)
	nextID    uint64

	// queue holds transitions not yet delivered to observers. Only one
	// goroutine delivers at a time, see deliver.
	queue      []transition
	delivering bool

	restored chan struct{}
	ready    chan struct{}

	// writes serializes durable writes so they reach the store in call order.
	writes sync.Mutex
}

// pendingWrite is a durable write that failed and has not been retried yet.
// An empty token means the stored token should be removed.
type pendingWrite struct {
	token string
}

type transition struct {
	snap     Snapshot
	restored bool
}

// Option configures the Manager.
type Option func(*Manager)

// WithLogger sets a structured logger.
func WithLogger(l zerolog.Logger) Option {
	return func(m *Manager) { m.logger = l }
}

// WithNavigator sets the navigation target for token presence changes.
func WithNavigator(n Navigator) Option {
	return func(m *Manager) { m.navigator = n }
}

// WithCacheResetter sets the cache reset on sign-out.
func WithCacheResetter(c CacheResetter) Option {
	return func(m *Manager) { m.cache = c }
}

// WithTokenKey overrides the durable name of the token (default credstore.TokenKey).
func WithTokenKey(key string) Option {
	return func(m *Manager) { m.key = key }
}

// WithMetrics sets the metrics recorder.
func WithMetrics(mt *metrics.Metrics) Option {
	return func(m *Manager) { m.metrics = mt }
}

// WithRestoreTimeout bounds the initial durable read. Default: 5 seconds.
func WithRestoreTimeout(d time.Duration) Option {
	return func(m *Manager) { m.restoreTimeout = d }
}

// NewManager creates a Manager in StateRestoring and starts the one-time
// restore from store in the background.
func NewManager(store credstore.Store, opts ...Option) *Manager {
	m := &Manager{
		store:          store,
		key:            credstore.TokenKey,
		logger:         zerolog.Nop(),
		restoreTimeout: DefaultRestoreTimeout,
		state:          StateRestoring,
		observers:      make(map[uint64]func(Snapshot)),
		restored:       make(chan struct{}),
		ready:          make(chan struct{}),
	}
	for _, o := range opts {
		o(m)
	}
	go m.restore()
	return m
}

func (m *Manager) restore() {
	ctx, cancel := context.WithTimeout(context.Background(), m.restoreTimeout)
	defer cancel()

	value, found, err := m.store.Get(ctx, m.key)
	if err != nil {
		m.logger.Warn().Err(err).Str("key", m.key).Msg("session restore failed, continuing anonymous")
		value = ""
	}

	m.mu.Lock()
	m.token = value
	m.state = StateAnonymous
	if value != "" {
		m.state = StateAuthenticated
	}
	snap := m.snapshotLocked()
	m.queue = append(m.queue, transition{snap: snap, restored: true})
	m.mu.Unlock()

	m.logger.Debug().Str("state", snap.State.String()).Bool("found", found).Msg("session restored")
	close(m.restored)
	m.deliver()
}

// Ready returns a channel closed once the restored state, and any transition
// an observer made in response, has been delivered to observers and the
// navigator.
func (m *Manager) Ready() <-chan struct{} {
	return m.ready
}

// WaitReady blocks until Ready is closed or ctx ends. Observers must not
// call it.
func (m *Manager) WaitReady(ctx context.Context) error {
	select {
	case <-m.ready:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Token returns the current token, empty when anonymous.
// It returns ErrNotReady while the session is restoring.
func (m *Manager) Token() (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.state == StateRestoring {
		return "", ErrNotReady
	}
	return m.token, nil
}

// Snapshot returns the current session view.
func (m *Manager) Snapshot() Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.snapshotLocked()
}

func (m *Manager) snapshotLocked() Snapshot {
	return Snapshot{
		Token:     m.token,
		IsLoading: m.state == StateRestoring,
		State:     m.state,
	}
}

// Claims decodes the current token when it is a JWT.
func (m *Manager) Claims() (*token.Claims, error) {
	tok, err := m.Token()
	if err != nil {
		return nil, err
	}
	if tok == "" {
		return nil, ErrNoToken
	}
	return token.Parse(tok)
}

// SignIn persists tok, makes it the live token and navigates to the home area.
// If the durable write fails the in-memory session still proceeds and a
// *PersistenceError is returned.
func (m *Manager) SignIn(ctx context.Context, tok string) error {
	return m.authenticate(ctx, "sign in", tok)
}

// SignUp has the same effect as SignIn: registration also authenticates.
func (m *Manager) SignUp(ctx context.Context, tok string) error {
	return m.authenticate(ctx, "sign up", tok)
}

func (m *Manager) authenticate(ctx context.Context, op, tok string) error {
	if tok == "" {
		return ErrEmptyToken
	}
	if err := m.waitRestored(ctx); err != nil {
		return err
	}

	m.writes.Lock()
	err := m.store.Set(ctx, m.key, tok)

	m.mu.Lock()
	previous := m.token
	m.token = tok
	m.state = StateAuthenticated
	m.pending = nil
	if err != nil {
		m.pending = &pendingWrite{token: tok}
	}
	snap := m.snapshotLocked()
	m.queue = append(m.queue, transition{snap: snap})
	m.mu.Unlock()
	m.writes.Unlock()

	if previous != "" && previous != tok {
		// A different identity must not see the previous one's data.
		m.resetCache()
	}
	m.deliver()

	if err != nil {
		m.logger.Error().Err(err).Str("op", op).Msg("token not persisted")
		return &PersistenceError{Op: op, Err: err}
	}
	m.logger.Info().Str("op", op).Msg("session authenticated")
	return nil
}

// SignOut clears the durable and in-memory token, resets the query cache and
// navigates to the login area. A durable failure is returned as a
// *PersistenceError after the in-memory effects have been applied.
func (m *Manager) SignOut(ctx context.Context) error {
	if err := m.waitRestored(ctx); err != nil {
		return err
	}

	m.writes.Lock()
	err := m.store.Remove(ctx, m.key)

	m.mu.Lock()
	m.token = ""
	m.state = StateAnonymous
	m.pending = nil
	if err != nil {
		m.pending = &pendingWrite{}
	}
	snap := m.snapshotLocked()
	m.queue = append(m.queue, transition{snap: snap})
	m.mu.Unlock()
	m.writes.Unlock()

	m.resetCache()
	m.deliver()

	if err != nil {
		m.logger.Error().Err(err).Msg("token not removed from durable store")
		return &PersistenceError{Op: "sign out", Err: err}
	}
	m.logger.Info().Msg("session signed out")
	return nil
}

// PendingPersist reports whether a failed durable write is waiting for RetryPersist.
func (m *Manager) PendingPersist() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.pending != nil
}

// RetryPersist re-applies the last failed durable write, if any.
func (m *Manager) RetryPersist(ctx context.Context) error {
	m.writes.Lock()
	defer m.writes.Unlock()

	m.mu.RLock()
	pending := m.pending
	m.mu.RUnlock()
	if pending == nil {
		return nil
	}

	var err error
	if pending.token == "" {
		err = m.store.Remove(ctx, m.key)
	} else {
		err = m.store.Set(ctx, m.key, pending.token)
	}
	if err != nil {
		return &PersistenceError{Op: "retry", Err: err}
	}

	m.mu.Lock()
	if m.pending == pending {
		m.pending = nil
	}
	m.mu.Unlock()
	m.logger.Info().Msg("pending token write persisted")
	return nil
}

// Subscribe registers fn to receive a Snapshot after every state change.
// The returned function removes the subscription.
func (m *Manager) Subscribe(fn func(Snapshot)) (unsubscribe func()) {
	m.mu.Lock()
	id := m.nextID
	m.nextID++
	m.observers[id] = fn
	m.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			m.mu.Lock()
			delete(m.observers, id)
			m.mu.Unlock()
		})
	}
}

func (m *Manager) resetCache() {
	if m.cache != nil {
		m.cache.Reset()
	}
}

// deliver notifies observers and the navigator of queued transitions in
// the order they happened. No Manager lock is held while they run, so an
// observer may call SignIn or SignOut: the transition it causes is queued
// and delivered by this loop once the observer returns.
func (m *Manager) deliver() {
	m.mu.Lock()
	if m.delivering {
		m.mu.Unlock()
		return
	}
	m.delivering = true
	restored := false
	for len(m.queue) > 0 {
		t := m.queue[0]
		m.queue = m.queue[1:]
		observers := make([]func(Snapshot), 0, len(m.observers))
		for _, fn := range m.observers {
			observers = append(observers, fn)
		}
		m.mu.Unlock()

		m.notify(t.snap, observers)
		restored = restored || t.restored

		m.mu.Lock()
	}
	m.delivering = false
	m.mu.Unlock()

	if restored {
		close(m.ready)
	}
}

func (m *Manager) notify(snap Snapshot, observers []func(Snapshot)) {
	m.metrics.RecordSessionTransition(snap.State.String())
	for _, fn := range observers {
		fn(snap)
	}
	if m.navigator == nil {
		return
	}
	if snap.Authenticated() {
		m.navigator.Navigate(RouteHome)
	} else {
		m.navigator.Navigate(RouteLogin)
	}
}

func (m *Manager) waitRestored(ctx context.Context) error {
	select {
	case <-m.restored:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
