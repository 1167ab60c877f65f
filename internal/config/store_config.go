package config

import (
	"os"
	"path/filepath"
	"strings"
)

const (
	storeBackendVar = "STORE_BACKEND"
	storePathVar    = "STORE_PATH"
	redisAddrVar    = "REDIS_ADDR"
	redisPrefixVar  = "REDIS_PREFIX"
	tokenKeyVar     = "TOKEN_KEY"
)

const (
	BackendMemory = "memory"
	BackendFile   = "file"
	BackendRedis  = "redis"
	BackendSQLite = "sqlite"
)

type Store struct {
	file *File
}

var _ StoreConfig = Store{}

func (s Store) GetStoreBackend() string {
	return strings.ToLower(getValue(s.file, storeBackendVar, BackendFile))
}

// GetStorePath is the credentials file for the file backend or the database file for sqlite.
func (s Store) GetStorePath() string {
	return getValue(s.file, storePathVar, defaultStorePath(s.GetStoreBackend()))
}

func (s Store) GetRedisAddr() string {
	return getValue(s.file, redisAddrVar, "localhost:6379")
}

func (s Store) GetRedisPrefix() string {
	return getValue(s.file, redisPrefixVar, "booking:")
}

func (s Store) GetTokenKey() string {
	return getValue(s.file, tokenKeyVar, "@token")
}

func defaultStorePath(backend string) string {
	name := "credentials.yaml"
	if backend == BackendSQLite {
		name = "credentials.db"
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return name
	}
	return filepath.Join(home, ".bookingctl", name)
}
