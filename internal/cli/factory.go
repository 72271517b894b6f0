package cli

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aretw0/arbor"
	"github.com/aretw0/arbor/internal/config"
	"github.com/aretw0/arbor/pkg/adapters/file"
	"github.com/aretw0/arbor/pkg/adapters/memory"
	"github.com/aretw0/arbor/pkg/adapters/redis"
	"github.com/aretw0/arbor/pkg/observability"
	"github.com/aretw0/arbor/pkg/persistence/middleware"
	"github.com/aretw0/arbor/pkg/ports"
)

// Backend bundles the store selected by the configuration with its optional locker.
type Backend struct {
	Store  ports.DocumentStore
	Locker ports.DistributedLocker
	close  func() error
}

// Close releases the connections held by the backend.
func (b *Backend) Close() error {
	if b.close == nil {
		return nil
	}
	return b.close()
}

// OpenBackend creates the document store described by cfg.
// For redis it checks the connection before returning.
func OpenBackend(ctx context.Context, cfg config.StoreConfig, logger *slog.Logger) (*Backend, error) {
	switch cfg.Backend {
	case config.BackendMemory, "":
		logger.Debug("using memory store")
		return &Backend{Store: memory.NewStore()}, nil

	case config.BackendFile:
		logger.Debug("using file store", "path", cfg.Path)
		return &Backend{Store: file.New(cfg.Path)}, nil

	case config.BackendRedis:
		ttl, err := cfg.Redis.Expiry()
		if err != nil {
			return nil, err
		}
		opts := []redis.Option{redis.WithTTL(ttl)}
		if cfg.Redis.Prefix != "" {
			opts = append(opts, redis.WithPrefix(cfg.Redis.Prefix))
		}

		store := redis.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, opts...)
		if err := store.Ping(ctx); err != nil {
			_ = store.Close()
			return nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.Redis.Addr, err)
		}

		b := &Backend{Store: store, close: store.Close}
		if cfg.Redis.Lock {
			b.Locker = redis.NewLocker(store.Client(), store.Prefix())
		}
		logger.Debug("using redis store", "addr", cfg.Redis.Addr, "prefix", store.Prefix(), "lock", cfg.Redis.Lock)
		return b, nil
	}
	return nil, fmt.Errorf("unknown store backend '%s'", cfg.Backend)
}

// EditorOptions converts the configuration into editor options.
// The backend store is wrapped with logging and integrity checks. Backend and
// metrics may be nil; the logging hooks are always installed.
func EditorOptions(cfg config.Config, backend *Backend, logger *slog.Logger, metrics *observability.Metrics) []arbor.Option {
	hooks := observability.LoggingHooks(logger)
	if metrics != nil {
		hooks = observability.Combine(hooks, metrics.Hooks())
	}

	opts := []arbor.Option{
		arbor.WithLogger(logger),
		arbor.WithResolverOptions(cfg.ResolverOptions()...),
		arbor.WithHistoryLimit(cfg.HistoryLimit),
		arbor.WithLifecycleHooks(hooks),
	}
	if backend != nil {
		store := middleware.Chain(backend.Store,
			middleware.NewLoggingMiddleware(logger),
			middleware.NewIntegrityMiddleware(cfg.ContainerTypes),
		)
		opts = append(opts, arbor.WithStore(store))
		if backend.Locker != nil {
			opts = append(opts, arbor.WithLocker(backend.Locker))
		}
	}
	return opts
}
