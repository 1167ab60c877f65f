package gormstore_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/jrsteele09/go-booking-client/credstore"
	"github.com/jrsteele09/go-booking-client/credstore/gormstore"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func getStore(t *testing.T) *gormstore.GORMStore {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{})
	require.NoError(t, err)
	s, err := gormstore.New(db)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestSetGetRemove(t *testing.T) {
	ctx := context.Background()
	s := getStore(t)

	_, found, err := s.Get(ctx, credstore.TokenKey)
	require.NoError(t, err)
	require.False(t, found)

	require.NoError(t, s.Set(ctx, credstore.TokenKey, "abc123"))
	require.NoError(t, s.Set(ctx, credstore.TokenKey, "def456"))

	v, found, err := s.Get(ctx, credstore.TokenKey)
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, "def456", v)

	require.NoError(t, s.Remove(ctx, credstore.TokenKey))
	require.NoError(t, s.Remove(ctx, credstore.TokenKey))

	_, found, err = s.Get(ctx, credstore.TokenKey)
	require.NoError(t, err)
	require.False(t, found)
}

func TestOpenSQLite_Persists(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "credentials.db")

	s, err := gormstore.OpenSQLite(path)
	require.NoError(t, err)
	require.NoError(t, s.Set(ctx, credstore.TokenKey, "abc123"))
	require.NoError(t, s.Close())

	reopened, err := gormstore.OpenSQLite(path)
	require.NoError(t, err)
	defer reopened.Close()

	v, found, err := reopened.Get(ctx, credstore.TokenKey)
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, "abc123", v)
}

func TestClosedDatabase(t *testing.T) {
	s := getStore(t)
	require.NoError(t, s.Close())

	err := s.Set(context.Background(), credstore.TokenKey, "abc123")
	require.Error(t, err)

	var se *credstore.StorageError
	require.True(t, errors.As(err, &se))
	require.Equal(t, credstore.OpSet, se.Op)
}
