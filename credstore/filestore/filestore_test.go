package filestore_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/jrsteele09/go-booking-client/credstore"
	"github.com/jrsteele09/go-booking-client/credstore/filestore"
	"github.com/stretchr/testify/require"
)

func TestSetGetRemove(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "credentials.yaml")
	s := filestore.New(path)

	_, found, err := s.Get(ctx, credstore.TokenKey)
	require.NoError(t, err)
	require.False(t, found)

	require.NoError(t, s.Set(ctx, credstore.TokenKey, "abc123"))
	require.NoError(t, s.Set(ctx, "other", "value"))

	info, err := os.Stat(path)
	require.NoError(t, err)
	require.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	// A second store over the same file sees the persisted value.
	reopened := filestore.New(path)
	v, found, err := reopened.Get(ctx, credstore.TokenKey)
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, "abc123", v)

	require.NoError(t, reopened.Remove(ctx, credstore.TokenKey))
	require.NoError(t, reopened.Remove(ctx, credstore.TokenKey))

	_, found, err = s.Get(ctx, credstore.TokenKey)
	require.NoError(t, err)
	require.False(t, found)

	v, found, err = s.Get(ctx, "other")
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, "value", v)
}

func TestCorruptFile(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "credentials.yaml")
	require.NoError(t, os.WriteFile(path, []byte("- not\n- a map\n"), 0o600))

	s := filestore.New(path)
	_, _, err := s.Get(ctx, credstore.TokenKey)
	require.Error(t, err)

	var se *credstore.StorageError
	require.True(t, errors.As(err, &se))
	require.Equal(t, credstore.OpGet, se.Op)
	require.Equal(t, credstore.TokenKey, se.Name)
}
