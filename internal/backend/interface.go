package backend

import (
	"context"
	"time"

	"hypotheek/internal/cache"
	"hypotheek/internal/core"
)

// ScheduleCache stores generated schedules keyed by MortgageParams.Key.
type ScheduleCache = cache.Cache[[]core.Installment]

// CleanupFunc represents a cleanup function for resources
type CleanupFunc func() error

// ReadyFunc reports whether the backend can currently serve requests
type ReadyFunc func(ctx context.Context) error

// BackendResult contains the cache instance and its lifecycle hooks
type BackendResult struct {
	Cache   ScheduleCache
	Cleanup CleanupFunc
	Ready   ReadyFunc
}

// Factory creates schedule caches based on configuration
type Factory interface {
	// CreateBackend creates a cache instance based on the provided config
	CreateBackend(ctx context.Context, config Config) (*BackendResult, error)
}

// Config holds configuration for backend creation
type Config struct {
	Type BackendType

	// Shared
	TTL time.Duration

	// Memory specific
	Size            int
	CleanupInterval time.Duration

	// Redis specific
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	RedisPrefix   string
}

// BackendType represents the type of cache backend
type BackendType string

const (
	MemoryBackend BackendType = "memory"
	RedisBackend  BackendType = "redis"
)

// String implements fmt.Stringer
func (bt BackendType) String() string {
	return string(bt)
}

// IsValid returns true if the backend type is valid
func (bt BackendType) IsValid() bool {
	for _, t := range GetBackendTypes() {
		if bt == t {
			return true
		}
	}
	return false
}
