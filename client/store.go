package client

import (
	"os"
	"path/filepath"

	"github.com/jrsteele09/go-booking-client/credstore"
	"github.com/jrsteele09/go-booking-client/credstore/filestore"
	"github.com/jrsteele09/go-booking-client/credstore/gormstore"
	"github.com/jrsteele09/go-booking-client/credstore/memstore"
	"github.com/jrsteele09/go-booking-client/credstore/redisstore"
	"github.com/jrsteele09/go-booking-client/internal/config"
	apperrors "github.com/jrsteele09/go-booking-client/internal/errors"
	"github.com/redis/go-redis/v9"
)

// OpenStore returns the credential store selected by cfg and a function
// that releases it.
func OpenStore(cfg config.StoreConfig) (credstore.Store, func() error, error) {
	nop := func() error { return nil }

	switch cfg.GetStoreBackend() {
	case config.BackendMemory:
		return memstore.New(), nop, nil

	case config.BackendFile:
		return filestore.New(cfg.GetStorePath()), nop, nil

	case config.BackendRedis:
		rdb := redis.NewClient(&redis.Options{Addr: cfg.GetRedisAddr()})
		s := redisstore.New(rdb, redisstore.WithPrefix(cfg.GetRedisPrefix()))
		return s, s.Close, nil

	case config.BackendSQLite:
		path := cfg.GetStorePath()
		if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
			return nil, nil, apperrors.Wrapf(err, "[client OpenStore] create %s", filepath.Dir(path))
		}
		s, err := gormstore.OpenSQLite(path)
		if err != nil {
			return nil, nil, apperrors.Wrapf(err, "[client OpenStore] open %s", path)
		}
		return s, s.Close, nil
	}
	return nil, nil, apperrors.Wrapf(apperrors.ErrUnsupportedBackend, "[client OpenStore] %q", cfg.GetStoreBackend())
}
