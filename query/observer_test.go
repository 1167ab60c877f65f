package query_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jrsteele09/go-booking-client/query"
	"github.com/stretchr/testify/require"
)

type booking struct {
	ID      int
	EventID int
}

func TestUse(t *testing.T) {
	ctx := context.Background()
	cache := query.New(query.WithStaleTime(time.Hour))
	defer cache.Wait()

	var calls atomic.Int32
	fetch := func(context.Context) ([]booking, error) {
		n := int(calls.Add(1))
		return []booking{{ID: n, EventID: 7}}, nil
	}

	obs := query.Use(ctx, cache, query.K("bookings", 1), fetch)
	defer obs.Close()

	data, err := obs.Await(ctx)
	require.NoError(t, err)
	require.Equal(t, []booking{{ID: 1, EventID: 7}}, data)

	res := obs.Result()
	require.True(t, res.HasData)
	require.Equal(t, query.StatusSuccess, res.Status)
	require.Equal(t, data, res.Data)

	var mu sync.Mutex
	var got []query.Result[[]booking]
	unsubscribe := obs.Subscribe(func(r query.Result[[]booking]) {
		mu.Lock()
		defer mu.Unlock()
		got = append(got, r)
	})
	defer unsubscribe()

	data, err = obs.Refetch(ctx)
	require.NoError(t, err)
	require.Equal(t, []booking{{ID: 2, EventID: 7}}, data)
	require.Equal(t, int32(2), calls.Load())

	mu.Lock()
	require.NotEmpty(t, got)
	last := got[len(got)-1]
	mu.Unlock()
	require.Equal(t, query.StatusSuccess, last.Status)
	require.Equal(t, data, last.Data)
}

func TestUse_InvalidateRefetches(t *testing.T) {
	ctx := context.Background()
	cache := query.New(query.WithStaleTime(time.Hour))
	defer cache.Wait()

	var calls atomic.Int32
	obs := query.Use(ctx, cache, query.K("profile"), func(context.Context) (string, error) {
		calls.Add(1)
		return "me", nil
	})
	defer obs.Close()
	cache.Wait()
	require.Equal(t, int32(1), calls.Load())

	cache.Invalidate(query.K("profile"))
	cache.Wait()
	require.Equal(t, int32(2), calls.Load())
}

func TestUse_Close(t *testing.T) {
	ctx := context.Background()
	cache := query.New()
	defer cache.Wait()

	obs := query.Use(ctx, cache, query.K("events", 1), func(context.Context) (string, error) {
		return "event", nil
	})
	cache.Wait()

	e, _ := cache.Get(obs.Key())
	require.Equal(t, 1, e.Subscribers)

	obs.Close()
	obs.Close()
	e, _ = cache.Get(obs.Key())
	require.Zero(t, e.Subscribers)
}

func TestUse_ResultClearedByReset(t *testing.T) {
	ctx := context.Background()
	cache := query.New()
	defer cache.Wait()

	obs := query.Use(ctx, cache, query.K("events"), func(context.Context) (int, error) { return 1, nil })
	defer obs.Close()
	cache.Wait()

	cache.Reset()
	res := obs.Result()
	require.Equal(t, query.StatusIdle, res.Status)
	require.False(t, res.HasData)
}

func TestUse_SurvivesReset(t *testing.T) {
	ctx := context.Background()
	cache := query.New(query.WithStaleTime(time.Hour))
	defer cache.Wait()

	var identity atomic.Value
	identity.Store("ada")
	var calls atomic.Int32
	obs := query.Use(ctx, cache, query.K("profile"), func(context.Context) (string, error) {
		calls.Add(1)
		return identity.Load().(string), nil
	})
	defer obs.Close()

	name, err := obs.Await(ctx)
	require.NoError(t, err)
	require.Equal(t, "ada", name)

	var mu sync.Mutex
	var got []query.Result[string]
	unsubscribe := obs.Subscribe(func(r query.Result[string]) {
		mu.Lock()
		defer mu.Unlock()
		got = append(got, r)
	})
	defer unsubscribe()

	cache.Reset()

	mu.Lock()
	require.Len(t, got, 1)
	require.Equal(t, query.StatusIdle, got[0].Status)
	require.False(t, got[0].HasData)
	mu.Unlock()

	e, ok := cache.Get(query.K("profile"))
	require.True(t, ok)
	require.Equal(t, 1, e.Subscribers)

	// Another identity signs in; the open observer sees its data.
	identity.Store("bob")
	cache.Read(ctx, query.K("profile"), nil)
	cache.Wait()
	require.Equal(t, int32(2), calls.Load())
	require.Equal(t, "bob", obs.Result().Data)

	require.Equal(t, 1, cache.Invalidate(query.K("profile")))
	cache.Wait()
	require.Equal(t, int32(3), calls.Load())

	mu.Lock()
	last := got[len(got)-1]
	mu.Unlock()
	require.Equal(t, query.StatusSuccess, last.Status)
	require.Equal(t, "bob", last.Data)

	obs.Close()
	e, _ = cache.Get(query.K("profile"))
	require.Zero(t, e.Subscribers)
}
