package ports

import (
	"context"
	"errors"
)

// ErrNotFound is returned by KVStore.Get when the key has never been written.
var ErrNotFound = errors.New("key not found")

// KVStore persists JSON-serialisable values under string keys.
type KVStore interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}) error
	Delete(ctx context.Context, key string) error
	Close() error
}
