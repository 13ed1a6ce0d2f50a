package backend

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"finweb/internal/log"
	"finweb/internal/session"
	"finweb/internal/storage"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *log.Logger
}

// NewFactory creates a new session store factory
func NewFactory(logger *log.Logger) Factory {
	if logger == nil {
		logger = log.Discard()
	}
	return &DefaultFactory{
		logger: logger.WithComponent(log.ComponentBackend),
	}
}

// CreateBackend implements Factory.CreateBackend
func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*BackendResult, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	switch config.Type {
	case SQLiteBackend:
		return f.createSQLiteBackend(config)
	case RedisBackend:
		return f.createRedisBackend(ctx, config)
	case MemoryBackend:
		return f.createMemoryBackend(config)
	default:
		return nil, fmt.Errorf("unsupported backend type: %s (supported: %v)", config.Type, GetBackendTypes())
	}
}

func (f *DefaultFactory) createSQLiteBackend(config Config) (*BackendResult, error) {
	repo, err := storage.NewSQLiteRepository(config.SQLiteDBPath, f.logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize SQLite session store: %w", err)
	}

	f.logger.Info("Initialized SQLite session store", "db_path", config.SQLiteDBPath)

	return &BackendResult{
		Store:   repo,
		Cleaner: repo,
		Cleanup: repo.Close,
	}, nil
}

func (f *DefaultFactory) createRedisBackend(ctx context.Context, config Config) (*BackendResult, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     config.RedisAddr,
		Password: config.RedisPassword,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", config.RedisAddr, err)
	}

	f.logger.Info("Initialized Redis session store", "addr", config.RedisAddr)

	store := session.NewRedisStore(client)
	return &BackendResult{
		Store:   store,
		Cleanup: store.Close,
	}, nil
}

func (f *DefaultFactory) createMemoryBackend(config Config) (*BackendResult, error) {
	ttl := config.TTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	store := session.NewMemoryStore(ttl)

	f.logger.Info("Initialized memory session store", "ttl", ttl.String())

	return &BackendResult{
		Store:   store,
		Cleaner: store.Cache(),
	}, nil
}
