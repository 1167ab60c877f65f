package config

import "time"

const (
	staleTimeVar  = "STALE_TIME"
	gcTimeVar     = "GC_TIME"
	gcIntervalVar = "GC_INTERVAL"
)

type Cache struct {
	file *File
}

var _ CacheConfig = Cache{}

// GetStaleTime is how long fetched data counts as fresh. Zero means always stale.
func (c Cache) GetStaleTime() time.Duration {
	return getDuration(c.file, staleTimeVar, 0)
}

// GetGCTime is how long an unobserved entry is kept before eviction.
func (c Cache) GetGCTime() time.Duration {
	return getDuration(c.file, gcTimeVar, 5*time.Minute)
}

func (c Cache) GetGCInterval() time.Duration {
	return getDuration(c.file, gcIntervalVar, time.Minute)
}
