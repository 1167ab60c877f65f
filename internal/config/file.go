package config

// File is the on-disk YAML layout. Every field is optional.
type File struct {
	AppName        string `yaml:"app_name"`
	Env            string `yaml:"env"`
	LogLevel       string `yaml:"log_level"`
	MetricsEnabled string `yaml:"metrics_enabled"`

	APIBaseURL     string `yaml:"api_base_url"`
	RequestTimeout string `yaml:"request_timeout"`

	StaleTime  string `yaml:"stale_time"`
	GCTime     string `yaml:"gc_time"`
	GCInterval string `yaml:"gc_interval"`

	Store FileStore `yaml:"store"`
}

type FileStore struct {
	Backend     string `yaml:"backend"`
	Path        string `yaml:"path"`
	RedisAddr   string `yaml:"redis_addr"`
	RedisPrefix string `yaml:"redis_prefix"`
	TokenKey    string `yaml:"token_key"`
}

// lookup maps an environment variable name to its file counterpart.
func (f *File) lookup(envVar string) string {
	if f == nil {
		return ""
	}
	switch envVar {
	case appNameVar:
		return f.AppName
	case envVarEnv:
		return f.Env
	case logLevelVar:
		return f.LogLevel
	case metricsEnabledVar:
		return f.MetricsEnabled
	case apiBaseURLVar:
		return f.APIBaseURL
	case requestTimeoutVar:
		return f.RequestTimeout
	case staleTimeVar:
		return f.StaleTime
	case gcTimeVar:
		return f.GCTime
	case gcIntervalVar:
		return f.GCInterval
	case storeBackendVar:
		return f.Store.Backend
	case storePathVar:
		return f.Store.Path
	case redisAddrVar:
		return f.Store.RedisAddr
	case redisPrefixVar:
		return f.Store.RedisPrefix
	case tokenKeyVar:
		return f.Store.TokenKey
	}
	return ""
}
