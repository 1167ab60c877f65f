// Package client assembles the session, request executor, query cache,
// mutation coordinator and booking service from configuration.
package client

import (
	"context"
	"net/http"
	"sync"

	"github.com/jrsteele09/go-booking-client/api"
	"github.com/jrsteele09/go-booking-client/booking"
	"github.com/jrsteele09/go-booking-client/credstore"
	"github.com/jrsteele09/go-booking-client/internal/config"
	apperrors "github.com/jrsteele09/go-booking-client/internal/errors"
	"github.com/jrsteele09/go-booking-client/internal/metrics"
	"github.com/jrsteele09/go-booking-client/mutation"
	"github.com/jrsteele09/go-booking-client/query"
	"github.com/jrsteele09/go-booking-client/session"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
)

// Client owns every component of one signed-in (or anonymous) process.
type Client struct {
	Config      config.Config
	Store       credstore.Store
	Session     *session.Manager
	Cache       *query.Cache
	Executor    *api.Executor
	Coordinator *mutation.Coordinator
	Booking     *booking.Service
	Metrics     *metrics.Metrics

	registry   *prometheus.Registry
	closeStore func() error
	stopGC     chan struct{}
	gcDone     chan struct{}
	closeOnce  sync.Once
}

type options struct {
	logger     zerolog.Logger
	navigator  session.Navigator
	store      credstore.Store
	httpClient *http.Client
	registry   *prometheus.Registry
}

// Option configures New.
type Option func(*options)

// WithLogger sets the logger shared by all components.
func WithLogger(l zerolog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithNavigator receives navigation driven by the session.
func WithNavigator(n session.Navigator) Option {
	return func(o *options) { o.navigator = n }
}

// WithStore uses store instead of the configured backend.
func WithStore(store credstore.Store) Option {
	return func(o *options) { o.store = store }
}

// WithHTTPClient sets the HTTP client used by the executor.
func WithHTTPClient(c *http.Client) Option {
	return func(o *options) { o.httpClient = c }
}

// WithRegistry registers metrics on reg. Without it a private registry is
// used when metrics are enabled in the config.
func WithRegistry(reg *prometheus.Registry) Option {
	return func(o *options) { o.registry = reg }
}

// New builds a Client from cfg. The session restore starts immediately;
// use Session.WaitReady to wait for it.
func New(cfg config.Config, opts ...Option) (*Client, error) {
	o := options{logger: zerolog.Nop()}
	for _, fn := range opts {
		fn(&o)
	}

	c := &Client{Config: cfg, closeStore: func() error { return nil }}

	if o.registry == nil && cfg.GetMetricsEnabled() {
		o.registry = prometheus.NewRegistry()
	}
	c.registry = o.registry
	if c.registry != nil {
		c.Metrics = metrics.New(c.registry)
	} else {
		c.Metrics = metrics.Nop()
	}

	c.Store = o.store
	if c.Store == nil {
		store, closeStore, err := OpenStore(cfg)
		if err != nil {
			return nil, err
		}
		c.Store = store
		c.closeStore = closeStore
	}

	c.Cache = query.New(
		query.WithStaleTime(cfg.GetStaleTime()),
		query.WithGCTime(cfg.GetGCTime()),
		query.WithLogger(o.logger.With().Str("component", "query").Logger()),
		query.WithMetrics(c.Metrics),
	)

	sessionOpts := []session.Option{
		session.WithLogger(o.logger.With().Str("component", "session").Logger()),
		session.WithCacheResetter(c.Cache),
		session.WithTokenKey(cfg.GetTokenKey()),
		session.WithMetrics(c.Metrics),
	}
	if o.navigator != nil {
		sessionOpts = append(sessionOpts, session.WithNavigator(o.navigator))
	}
	c.Session = session.NewManager(c.Store, sessionOpts...)

	execOpts := []api.Option{
		api.WithTimeout(cfg.GetRequestTimeout()),
		api.WithUserAgent(cfg.GetAppName()),
		api.WithLogger(o.logger.With().Str("component", "api").Logger()),
		api.WithMetrics(c.Metrics),
	}
	if o.httpClient != nil {
		execOpts = append(execOpts, api.WithHTTPClient(o.httpClient))
	}
	c.Executor = api.NewExecutor(cfg.GetAPIBaseURL(), c.Session, execOpts...)

	c.Coordinator = mutation.NewCoordinator(c.Cache,
		mutation.WithLogger(o.logger.With().Str("component", "mutation").Logger()))
	c.Booking = booking.NewService(c.Executor, c.Cache, c.Coordinator, c.Session,
		booking.WithLogger(o.logger.With().Str("component", "booking").Logger()))

	if interval := cfg.GetGCInterval(); interval > 0 {
		c.stopGC = make(chan struct{})
		c.gcDone = make(chan struct{})
		go func() {
			defer close(c.gcDone)
			c.Cache.PeriodicCleanUp(interval, c.stopGC)
		}()
	}
	return c, nil
}

// Registry returns the metrics registry, or nil when metrics are disabled.
func (c *Client) Registry() *prometheus.Registry {
	return c.registry
}

// WaitReady waits for the session restore.
func (c *Client) WaitReady(ctx context.Context) error {
	return c.Session.WaitReady(ctx)
}

// Close stops cache GC, waits for the session restore and any fetch in
// flight, retries a token write that failed earlier, then releases the store.
func (c *Client) Close() error {
	var err error
	c.closeOnce.Do(func() {
		if c.stopGC != nil {
			close(c.stopGC)
			<-c.gcDone
		}
		<-c.Session.Ready()
		c.Cache.Close()

		var retryErr error
		if c.Session.PendingPersist() {
			ctx, cancel := context.WithTimeout(context.Background(), c.Config.GetRequestTimeout())
			retryErr = c.Session.RetryPersist(ctx)
			cancel()
		}
		err = apperrors.Join(retryErr, c.closeStore())
	})
	return err
}
