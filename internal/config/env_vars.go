package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	appNameVar        = "APP_NAME"
	envVarEnv         = "ENV"
	logLevelVar       = "LOG_LEVEL"
	metricsEnabledVar = "METRICS_ENABLED"
)

type EnvVars struct {
	file *File
}

var _ EnvConfig = EnvVars{}

func (e EnvVars) GetAppName() string {
	return getValue(e.file, appNameVar, "Event Booking")
}

func (e EnvVars) GetEnv() string {
	return strings.ToUpper(getValue(e.file, envVarEnv, "DEV"))
}

func (e EnvVars) GetLogLevel() string {
	return strings.ToLower(getValue(e.file, logLevelVar, "info"))
}

func (e EnvVars) GetMetricsEnabled() bool {
	enabled, err := strconv.ParseBool(getValue(e.file, metricsEnabledVar, "false"))
	return err == nil && enabled
}

func GetEnv(envVar, defaultValue string) string {
	value := os.Getenv(envVar)
	if value == "" {
		return defaultValue
	}
	return value
}

// getValue resolves envVar from the environment, then the config file, then the default.
func getValue(f *File, envVar, defaultValue string) string {
	if value := os.Getenv(envVar); value != "" {
		return value
	}
	if value := f.lookup(envVar); value != "" {
		return value
	}
	return defaultValue
}

// getDuration is getValue for durations; unparsable values fall back to the default.
func getDuration(f *File, envVar string, defaultValue time.Duration) time.Duration {
	raw := getValue(f, envVar, "")
	if raw == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d < 0 {
		return defaultValue
	}
	return d
}
