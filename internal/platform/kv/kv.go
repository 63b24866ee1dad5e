// Package kv defines the durable key-value contract that store snapshots are written to.
package kv

import (
	"context"
	"errors"
)

// ErrNotFound indicates a key has never been written.
var ErrNotFound = errors.New("key not found")

// Store persists opaque values by key.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Close() error
}
