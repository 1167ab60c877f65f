package config

import (
	"strings"
	"time"
)

const (
	apiBaseURLVar     = "API_BASE_URL"
	requestTimeoutVar = "REQUEST_TIMEOUT"
)

type HTTP struct {
	file *File
}

var _ HTTPConfig = HTTP{}

// GetAPIBaseURL returns the API root including the version prefix (e.g. "https://api.example.com/api/v1")
func (h HTTP) GetAPIBaseURL() string {
	return strings.TrimRight(getValue(h.file, apiBaseURLVar, "http://localhost:8000/api/v1"), "/")
}

func (h HTTP) GetRequestTimeout() time.Duration {
	return getDuration(h.file, requestTimeoutVar, 15*time.Second)
}
