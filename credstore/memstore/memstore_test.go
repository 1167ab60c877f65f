package memstore_test

import (
	"context"
	"errors"
	"testing"

	"github.com/jrsteele09/go-booking-client/credstore"
	"github.com/jrsteele09/go-booking-client/credstore/memstore"
	"github.com/stretchr/testify/require"
)

func TestSetGetRemove(t *testing.T) {
	ctx := context.Background()
	s := memstore.New()

	_, found, err := s.Get(ctx, credstore.TokenKey)
	require.NoError(t, err)
	require.False(t, found)

	require.NoError(t, s.Set(ctx, credstore.TokenKey, "abc123"))
	v, found, err := s.Get(ctx, credstore.TokenKey)
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, "abc123", v)

	require.NoError(t, s.Remove(ctx, credstore.TokenKey))
	require.NoError(t, s.Remove(ctx, credstore.TokenKey))
	_, found, err = s.Get(ctx, credstore.TokenKey)
	require.NoError(t, err)
	require.False(t, found)
}

func TestCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s := memstore.NewWithValues(map[string]string{credstore.TokenKey: "abc123"})
	_, _, err := s.Get(ctx, credstore.TokenKey)

	var se *credstore.StorageError
	require.True(t, errors.As(err, &se))
	require.Equal(t, credstore.OpGet, se.Op)
	require.ErrorIs(t, err, context.Canceled)
}
