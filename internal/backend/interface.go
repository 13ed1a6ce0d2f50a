package backend

import (
	"context"
	"time"

	"finweb/internal/cache"
	"finweb/internal/session"
)

// CleanupFunc represents a cleanup function for resources
type CleanupFunc func() error

// BackendResult contains the session store and optional cleanup function
type BackendResult struct {
	Store session.Store
	// Cleaner is set for stores that need periodic expiry sweeps
	Cleaner cache.Cleaner
	Cleanup CleanupFunc
}

// Factory creates session stores based on configuration
type Factory interface {
	CreateBackend(ctx context.Context, config Config) (*BackendResult, error)
}

// Config holds configuration for session store creation
type Config struct {
	Type BackendType
	TTL  time.Duration

	// SQLite specific
	SQLiteDBPath string

	// Redis specific
	RedisAddr     string
	RedisPassword string
}

// BackendType represents the type of session store
type BackendType string

const (
	MemoryBackend BackendType = "memory"
	SQLiteBackend BackendType = "sqlite"
	RedisBackend  BackendType = "redis"
)

// String implements fmt.Stringer
func (bt BackendType) String() string {
	return string(bt)
}

// IsValid returns true if the backend type is valid
func (bt BackendType) IsValid() bool {
	switch bt {
	case MemoryBackend, SQLiteBackend, RedisBackend:
		return true
	default:
		return false
	}
}
