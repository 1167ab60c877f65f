// Package booking is the typed surface of the event-booking API.
//
// Reads go through the query cache under the keys in keys.go. Writes are
// mutations that invalidate the reads they affect. Login, Register and
// Logout drive the session.
package booking

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/jrsteele09/go-booking-client/api"
	"github.com/jrsteele09/go-booking-client/mutation"
	"github.com/jrsteele09/go-booking-client/query"
	"github.com/rs/zerolog"
)

// Session is the part of *session.Manager the service drives.
type Session interface {
	SignIn(ctx context.Context, token string) error
	SignUp(ctx context.Context, token string) error
	SignOut(ctx context.Context) error
}

// Service exposes the booking API.
type Service struct {
	exec        api.Doer
	cache       *query.Cache
	coordinator *mutation.Coordinator
	session     Session
	logger      zerolog.Logger
}

// Option configures the Service.
type Option func(*Service)

// WithLogger sets a structured logger.
func WithLogger(l zerolog.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// NewService creates a Service.
func NewService(exec api.Doer, cache *query.Cache, coordinator *mutation.Coordinator, sess Session, opts ...Option) *Service {
	s := &Service{
		exec:        exec,
		cache:       cache,
		coordinator: coordinator,
		session:     sess,
		logger:      zerolog.Nop(),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// FetchEvents calls GET /events?page=.
func (s *Service) FetchEvents(ctx context.Context, page int) (api.Page[Event], error) {
	resp, err := s.exec.Execute(ctx, api.Request{
		Method:       http.MethodGet,
		Path:         "/events",
		Query:        api.PageQuery(page),
		AuthRequired: true,
	})
	if err != nil {
		return api.Page[Event]{}, err
	}
	return decodePage[Event](resp.Body)
}

// FetchEvent calls GET /events/{id}.
func (s *Service) FetchEvent(ctx context.Context, id int) (Event, error) {
	resp, err := s.exec.Execute(ctx, api.Request{
		Method:       http.MethodGet,
		Path:         "/events/" + strconv.Itoa(id),
		AuthRequired: true,
	})
	if err != nil {
		return Event{}, err
	}
	return decodeItem[Event](resp.Body)
}

// FetchBookings calls GET /bookings?page=.
func (s *Service) FetchBookings(ctx context.Context, page int) (api.Page[Booking], error) {
	resp, err := s.exec.Execute(ctx, api.Request{
		Method:       http.MethodGet,
		Path:         "/bookings",
		Query:        api.PageQuery(page),
		AuthRequired: true,
	})
	if err != nil {
		return api.Page[Booking]{}, err
	}
	return decodePage[Booking](resp.Body)
}

// FetchProfile calls GET /user.
func (s *Service) FetchProfile(ctx context.Context) (User, error) {
	resp, err := s.exec.Execute(ctx, api.Request{Method: http.MethodGet, Path: "/user", AuthRequired: true})
	if err != nil {
		return User{}, err
	}
	return decodeItem[User](resp.Body)
}

// FetchPaymentInfo calls GET /profile/me.
func (s *Service) FetchPaymentInfo(ctx context.Context) (PaymentInfo, error) {
	resp, err := s.exec.Execute(ctx, api.Request{Method: http.MethodGet, Path: "/profile/me", AuthRequired: true})
	if err != nil {
		return PaymentInfo{}, err
	}
	return decodeItem[PaymentInfo](resp.Body)
}

// Events returns a page of events through the cache.
func (s *Service) Events(ctx context.Context, page int, opts ...query.ReadOption) (api.Page[Event], error) {
	return cached(ctx, s.cache, KeyEvents(page), func(ctx context.Context) (api.Page[Event], error) {
		return s.FetchEvents(ctx, page)
	}, opts...)
}

// Event returns one event through the cache.
func (s *Service) Event(ctx context.Context, id int, opts ...query.ReadOption) (Event, error) {
	return cached(ctx, s.cache, KeyEvent(id), func(ctx context.Context) (Event, error) {
		return s.FetchEvent(ctx, id)
	}, opts...)
}

// Bookings returns a page of bookings through the cache.
func (s *Service) Bookings(ctx context.Context, page int, opts ...query.ReadOption) (api.Page[Booking], error) {
	return cached(ctx, s.cache, KeyBookings(page), func(ctx context.Context) (api.Page[Booking], error) {
		return s.FetchBookings(ctx, page)
	}, opts...)
}

// Profile returns the signed-in account through the cache.
func (s *Service) Profile(ctx context.Context, opts ...query.ReadOption) (User, error) {
	return cached(ctx, s.cache, KeyProfile(), s.FetchProfile, opts...)
}

// PaymentInfo returns the payment profile through the cache.
func (s *Service) PaymentInfo(ctx context.Context, opts ...query.ReadOption) (PaymentInfo, error) {
	return cached(ctx, s.cache, KeyPaymentInfo(), s.FetchPaymentInfo, opts...)
}

// WatchEvents observes a page of events.
func (s *Service) WatchEvents(ctx context.Context, page int, opts ...query.ReadOption) *query.Observer[api.Page[Event]] {
	return query.Use(ctx, s.cache, KeyEvents(page), func(ctx context.Context) (api.Page[Event], error) {
		return s.FetchEvents(ctx, page)
	}, opts...)
}

// WatchBookings observes a page of bookings.
func (s *Service) WatchBookings(ctx context.Context, page int, opts ...query.ReadOption) *query.Observer[api.Page[Booking]] {
	return query.Use(ctx, s.cache, KeyBookings(page), func(ctx context.Context) (api.Page[Booking], error) {
		return s.FetchBookings(ctx, page)
	}, opts...)
}

// WatchProfile observes the signed-in account.
func (s *Service) WatchProfile(ctx context.Context, opts ...query.ReadOption) *query.Observer[User] {
	return query.Use(ctx, s.cache, KeyProfile(), s.FetchProfile, opts...)
}

func cached[T any](ctx context.Context, c *query.Cache, key query.Key, fetch func(context.Context) (T, error), opts ...query.ReadOption) (T, error) {
	var zero T
	data, err := c.Fetch(ctx, key, func(ctx context.Context) (any, error) { return fetch(ctx) }, opts...)
	if err != nil {
		return zero, err
	}
	v, ok := data.(T)
	if !ok {
		return zero, fmt.Errorf("[booking cached] %s holds %T", key, data)
	}
	return v, nil
}
