package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config interface {
	EnvConfig
	HTTPConfig
	CacheConfig
	StoreConfig
}

type EnvConfig interface {
	GetAppName() string
	GetEnv() string
	GetLogLevel() string
	GetMetricsEnabled() bool
}

type HTTPConfig interface {
	GetAPIBaseURL() string
	GetRequestTimeout() time.Duration
}

type CacheConfig interface {
	GetStaleTime() time.Duration
	GetGCTime() time.Duration
	GetGCInterval() time.Duration
}

type StoreConfig interface {
	GetStoreBackend() string
	GetStorePath() string
	GetRedisAddr() string
	GetRedisPrefix() string
	GetTokenKey() string
}

type mainConfig struct {
	EnvVars
	HTTP
	Cache
	Store
}

// New returns a Config driven by environment variables only.
func New() Config {
	return newMainConfig(nil)
}

// Load reads a YAML config file and returns a Config where environment
// variables take precedence over file values, and file values over defaults.
// A missing file is not an error.
func Load(path string) (Config, error) {
	if path == "" {
		return New(), nil
	}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return New(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("[config Load] read %s: %w", path, err)
	}

	f := &File{}
	if err := yaml.Unmarshal(data, f); err != nil {
		return nil, fmt.Errorf("[config Load] parse %s: %w", path, err)
	}
	return newMainConfig(f), nil
}

func newMainConfig(f *File) mainConfig {
	return mainConfig{
		EnvVars: EnvVars{file: f},
		HTTP:    HTTP{file: f},
		Cache:   Cache{file: f},
		Store:   Store{file: f},
	}
}
