package client_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/jrsteele09/go-booking-client/booking"
	"github.com/jrsteele09/go-booking-client/client"
	"github.com/jrsteele09/go-booking-client/credstore/filestore"
	"github.com/jrsteele09/go-booking-client/credstore/gormstore"
	"github.com/jrsteele09/go-booking-client/credstore/memstore"
	"github.com/jrsteele09/go-booking-client/credstore/redisstore"
	"github.com/jrsteele09/go-booking-client/internal/config"
	apperrors "github.com/jrsteele09/go-booking-client/internal/errors"
	"github.com/jrsteele09/go-booking-client/session"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestOpenStore(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name    string
		env     map[string]string
		check   func(t *testing.T, store any)
		wantErr error
	}{
		{
			name: "memory",
			env:  map[string]string{"STORE_BACKEND": "memory"},
			check: func(t *testing.T, store any) {
				require.IsType(t, &memstore.Memstore{}, store)
			},
		},
		{
			name: "file",
			env:  map[string]string{"STORE_BACKEND": "file", "STORE_PATH": filepath.Join(dir, "creds.yaml")},
			check: func(t *testing.T, store any) {
				fs, ok := store.(*filestore.FileStore)
				require.True(t, ok)
				require.Equal(t, filepath.Join(dir, "creds.yaml"), fs.Path())
			},
		},
		{
			name: "sqlite",
			env:  map[string]string{"STORE_BACKEND": "SQLite", "STORE_PATH": filepath.Join(dir, "nested", "creds.db")},
			check: func(t *testing.T, store any) {
				require.IsType(t, &gormstore.GORMStore{}, store)
			},
		},
		{
			name: "redis",
			env:  map[string]string{"STORE_BACKEND": "redis", "REDIS_ADDR": "127.0.0.1:1"},
			check: func(t *testing.T, store any) {
				require.IsType(t, &redisstore.RedisStore{}, store)
			},
		},
		{
			name:    "unsupported",
			env:     map[string]string{"STORE_BACKEND": "etcd"},
			wantErr: apperrors.ErrUnsupportedBackend,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			store, closeStore, err := client.OpenStore(config.New())
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			defer func() { require.NoError(t, closeStore()) }()
			tt.check(t, store)
		})
	}
}

type routeRecorder struct {
	mu     sync.Mutex
	routes []session.Route
}

func (r *routeRecorder) Navigate(route session.Route) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.routes = append(r.routes, route)
}

func (r *routeRecorder) last() session.Route {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.routes) == 0 {
		return ""
	}
	return r.routes[len(r.routes)-1]
}

func newAPIServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/v1/login", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"token":"persisted-token"}`))
	})
	mux.HandleFunc("GET /api/v1/events", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer persisted-token" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"message":"Unauthenticated."}`))
			return
		}
		_, _ = w.Write([]byte(`{"data":[{"id":1,"name":"Jazz night"}]}`))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestClient_SessionSurvivesRestart(t *testing.T) {
	srv := newAPIServer(t)
	t.Setenv("API_BASE_URL", srv.URL+"/api/v1")
	t.Setenv("STORE_BACKEND", "file")
	t.Setenv("STORE_PATH", filepath.Join(t.TempDir(), "credentials.yaml"))
	t.Setenv("METRICS_ENABLED", "true")
	t.Setenv("GC_INTERVAL", "10ms")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	nav := &routeRecorder{}
	first, err := client.New(config.New(), client.WithNavigator(nav))
	require.NoError(t, err)
	require.NoError(t, first.WaitReady(ctx))
	require.Equal(t, session.RouteLogin, nav.last())

	_, err = first.Booking.Login(ctx, booking.Credentials{Identify: "ada@example.com", Password: "secret"})
	require.NoError(t, err)
	require.Equal(t, session.RouteHome, nav.last())

	page, err := first.Booking.Events(ctx, 1)
	require.NoError(t, err)
	require.Len(t, page.Data, 1)

	count, err := testutil.GatherAndCount(first.Registry(), "booking_client_requests_total")
	require.NoError(t, err)
	require.Equal(t, 2, count)
	require.NoError(t, first.Close())
	require.NoError(t, first.Close())

	second, err := client.New(config.New())
	require.NoError(t, err)
	defer second.Close()
	require.NoError(t, second.WaitReady(ctx))
	require.True(t, second.Session.Snapshot().Authenticated())

	_, err = second.Booking.Events(ctx, 1)
	require.NoError(t, err)

	require.NoError(t, second.Booking.Logout(ctx))
	require.Zero(t, second.Cache.Len())
}

func TestClient_WithStore(t *testing.T) {
	t.Setenv("METRICS_ENABLED", "false")
	store := memstore.NewWithValues(map[string]string{"@token": "abc123"})

	c, err := client.New(config.New(), client.WithStore(store))
	require.NoError(t, err)
	defer c.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, c.WaitReady(ctx))

	tok, err := c.Session.Token()
	require.NoError(t, err)
	require.Equal(t, "abc123", tok)
	require.Nil(t, c.Registry())
}
