package mutation_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/jrsteele09/go-booking-client/mutation"
	"github.com/jrsteele09/go-booking-client/query"
	"github.com/stretchr/testify/require"
)

type recordingInvalidator struct {
	mu       sync.Mutex
	patterns []string
}

func (r *recordingInvalidator) Invalidate(pattern query.Key) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.patterns = append(r.patterns, pattern.String())
	return 1
}

func (r *recordingInvalidator) calls() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.patterns...)
}

type bookingInput struct {
	EventID int
}

func TestRun_InvalidatesOnceOnSuccess(t *testing.T) {
	inv := &recordingInvalidator{}
	c := mutation.NewCoordinator(inv)

	var hookCalls int
	spec := mutation.Spec[bookingInput, int]{
		Name:        "bookEvent",
		Fn:          func(ctx context.Context, in bookingInput) (int, error) { return in.EventID * 10, nil },
		Invalidates: []query.Key{query.K("bookings"), query.K("events"), query.K("bookings")},
		OnSuccess: func(ctx context.Context, in bookingInput, out int) {
			hookCalls++
			// Invalidation has already happened when the hook runs.
			require.Len(t, inv.calls(), 2)
		},
	}

	out, err := mutation.Run(context.Background(), c, spec, bookingInput{EventID: 7})
	require.NoError(t, err)
	require.Equal(t, 70, out)
	require.Equal(t, []string{`["bookings"]`, `["events"]`}, inv.calls())
	require.Equal(t, 1, hookCalls)
}

func TestRun_ErrorSkipsInvalidation(t *testing.T) {
	inv := &recordingInvalidator{}
	c := mutation.NewCoordinator(inv)
	errFull := errors.New("event full")

	spec := mutation.Spec[bookingInput, int]{
		Name:        "bookEvent",
		Fn:          func(ctx context.Context, in bookingInput) (int, error) { return 0, errFull },
		Invalidates: []query.Key{query.K("bookings")},
		OnSuccess:   func(context.Context, bookingInput, int) { t.Fatal("OnSuccess called after failure") },
	}

	_, err := mutation.Run(context.Background(), c, spec, bookingInput{EventID: 7})
	require.Same(t, errFull, err)
	require.Empty(t, inv.calls())
}

func TestRun_NilCache(t *testing.T) {
	c := mutation.NewCoordinator(nil)
	out, err := mutation.Run(context.Background(), c, mutation.Spec[string, string]{
		Fn:          func(ctx context.Context, in string) (string, error) { return in + "!", nil },
		Invalidates: []query.Key{query.K("profile")},
	}, "ok")
	require.NoError(t, err)
	require.Equal(t, "ok!", out)
}

func TestRun_StaleReadRefetches(t *testing.T) {
	ctx := context.Background()
	cache := query.New(query.WithStaleTime(time.Hour))
	defer cache.Wait()
	c := mutation.NewCoordinator(cache)

	bookings := []string{"booking1"}
	var mu sync.Mutex
	calls := 0
	fetch := func(context.Context) (any, error) {
		mu.Lock()
		defer mu.Unlock()
		calls++
		return append([]string(nil), bookings...), nil
	}

	data, err := cache.Fetch(ctx, query.K("bookings"), fetch)
	require.NoError(t, err)
	require.Equal(t, []string{"booking1"}, data)

	spec := mutation.Spec[string, string]{
		Name: "bookEvent",
		Fn: func(ctx context.Context, id string) (string, error) {
			mu.Lock()
			defer mu.Unlock()
			bookings = append(bookings, id)
			return id, nil
		},
		Invalidates: []query.Key{query.K("bookings")},
	}
	_, err = mutation.Run(ctx, c, spec, "booking2")
	require.NoError(t, err)

	data, err = cache.Fetch(ctx, query.K("bookings"), fetch)
	require.NoError(t, err)
	require.Equal(t, []string{"booking1", "booking2"}, data)
	mu.Lock()
	require.Equal(t, 2, calls)
	mu.Unlock()
}

func TestMutator(t *testing.T) {
	inv := &recordingInvalidator{}
	c := mutation.NewCoordinator(inv)
	fail := true
	m := mutation.New(c, mutation.Spec[string, string]{
		Name: "updateProfile",
		Fn: func(ctx context.Context, name string) (string, error) {
			if fail {
				return "", errors.New("invalid name")
			}
			return name, nil
		},
		Invalidates: []query.Key{query.K("profile")},
	})
	require.Equal(t, mutation.StatusIdle, m.Status())

	_, err := m.Mutate(context.Background(), "")
	require.Error(t, err)
	require.Equal(t, mutation.StatusError, m.Status())
	require.Equal(t, err, m.Err())

	fail = false
	out, err := m.Mutate(context.Background(), "Ada")
	require.NoError(t, err)
	require.Equal(t, "Ada", out)
	require.Equal(t, mutation.StatusSuccess, m.Status())
	require.NoError(t, m.Err())
	require.Equal(t, "Ada", m.Data())
	require.Equal(t, []string{`["profile"]`}, inv.calls())

	m.Reset()
	require.Equal(t, mutation.StatusIdle, m.Status())
	require.Empty(t, m.Data())
}
