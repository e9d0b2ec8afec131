// Package storage persists per-client preferences.
//
// Each browser is identified by a client ID and owns a small key-value bucket,
// the server-side counterpart of the browser's local storage.
package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
)

var (
	ErrUnknownDriver = errors.New("storage: unknown driver")
	ErrClosed        = errors.New("storage: store is closed")
)

// Store holds string values keyed by client ID and key.
type Store interface {
	// Get returns the value and true, or false when the key is absent.
	Get(ctx context.Context, clientID, key string) (string, bool, error)
	Set(ctx context.Context, clientID, key, value string) error
	Close() error
}

const (
	DriverMemory = "memory"
	DriverSQLite = "sqlite"
	DriverRedis  = "redis"
)

// Options selects and configures a Store implementation.
type Options struct {
	Driver string

	// SQLitePath is the database file for the sqlite driver.
	SQLitePath string

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	RedisPrefix   string
}

// Open creates the store selected by opts.Driver.
func Open(ctx context.Context, opts Options, logger *zap.Logger) (Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	switch opts.Driver {
	case DriverMemory, "":
		logger.Info("using in-memory preference store")
		return NewMemory(), nil
	case DriverSQLite:
		s, err := OpenSQLite(ctx, opts.SQLitePath)
		if err != nil {
			return nil, err
		}
		logger.Info("using sqlite preference store", zap.String("path", opts.SQLitePath))
		return s, nil
	case DriverRedis:
		s, err := OpenRedis(ctx, opts.RedisAddr, opts.RedisPassword, opts.RedisDB, opts.RedisPrefix)
		if err != nil {
			return nil, err
		}
		logger.Info("using redis preference store", zap.String("addr", opts.RedisAddr))
		return s, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, opts.Driver)
	}
}

// DefaultTimeout bounds each Bucket operation.
const DefaultTimeout = 2 * time.Second

// Bucket exposes one client's values with a local-storage style interface.
type Bucket struct {
	store    Store
	clientID string
	timeout  time.Duration
}

// NewBucket returns the bucket of clientID in store.
func NewBucket(store Store, clientID string) *Bucket {
	return &Bucket{store: store, clientID: clientID, timeout: DefaultTimeout}
}

// GetItem returns the value stored under key.
func (b *Bucket) GetItem(key string) (string, bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), b.timeout)
	defer cancel()
	return b.store.Get(ctx, b.clientID, key)
}

// SetItem stores value under key.
func (b *Bucket) SetItem(key, value string) error {
	ctx, cancel := context.WithTimeout(context.Background(), b.timeout)
	defer cancel()
	return b.store.Set(ctx, b.clientID, key, value)
}
