package backend

import (
	"context"
	"fmt"
	"log/slog"

	"hypotheek/internal/cache"
	"hypotheek/internal/core"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *slog.Logger
}

// NewFactory creates a new backend factory
func NewFactory(logger *slog.Logger) Factory {
	if logger == nil {
		logger = slog.Default()
	}
	return &DefaultFactory{
		logger: logger,
	}
}

// CreateBackend implements Factory.CreateBackend
func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*BackendResult, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	switch config.Type {
	case MemoryBackend:
		return f.createMemoryBackend(config)
	case RedisBackend:
		return f.createRedisBackend(ctx, config)
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
}

func (f *DefaultFactory) createMemoryBackend(config Config) (*BackendResult, error) {
	lru := cache.NewLRUCache[[]core.Installment](config.Size, config.TTL)

	manager := cache.NewManager()
	manager.Register(lru)
	if config.CleanupInterval > 0 {
		manager.StartCleanup(config.CleanupInterval)
	}

	f.logger.Info("Using in-memory schedule cache",
		"component", "cache",
		"size", config.Size,
		"ttl", config.TTL)

	return &BackendResult{
		Cache: lru,
		Cleanup: func() error {
			manager.Stop()
			return nil
		},
		Ready: func(context.Context) error { return nil },
	}, nil
}

func (f *DefaultFactory) createRedisBackend(ctx context.Context, config Config) (*BackendResult, error) {
	rc, err := cache.NewRedisCache[[]core.Installment](ctx, cache.RedisOptions{
		Addr:     config.RedisAddr,
		Password: config.RedisPassword,
		DB:       config.RedisDB,
		Prefix:   config.RedisPrefix,
		TTL:      config.TTL,
	}, f.logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize redis cache: %w", err)
	}

	f.logger.Info("Using Redis schedule cache",
		"component", "cache",
		"addr", config.RedisAddr,
		"db", config.RedisDB,
		"ttl", config.TTL)

	return &BackendResult{
		Cache:   rc,
		Cleanup: rc.Close,
		Ready:   rc.Ping,
	}, nil
}
