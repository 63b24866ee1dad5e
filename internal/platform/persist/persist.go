// Package persist binds store snapshots to a kv.Store: rehydrate once at startup, write after every mutation.
package persist

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/georgemunganga/tablepos/internal/platform/kv"
	"github.com/georgemunganga/tablepos/internal/platform/storeopt"
	"go.uber.org/zap"
)

// Keys under which each store's persisted subset is written.
const (
	KeyCatalog   = "pos-catalog"
	KeyRoster    = "pos-roster"
	KeyFloorPlan = "pos-floorplan"
	KeyOrders    = "pos-orders"
)

const writeTimeout = 5 * time.Second

// Hook carries the backend and observability collaborators for persistence.
type Hook struct {
	KV       kv.Store
	Logger   *zap.Logger
	Recorder storeopt.Recorder
}

// Restore decodes the record at key into dst. It reports false when the key was never written.
func Restore[T any](ctx context.Context, h Hook, key string, dst *T) (bool, error) {
	raw, err := h.KV.Get(ctx, key)
	if errors.Is(err, kv.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("restore %s: %w", key, err)
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return false, fmt.Errorf("decode %s: %w", key, err)
	}
	return true, nil
}

// Attach subscribes to a store and writes every published snapshot to key. It returns the unsubscribe function.
func Attach[T any](ctx context.Context, h Hook, key string, subscribe func(func(T)) func()) func() {
	logger := h.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return subscribe(func(snapshot T) {
		err := Save(ctx, h, key, snapshot)
		if h.Recorder != nil {
			h.Recorder.Mutation("persist", key, err)
		}
		if err != nil {
			logger.Error("persist snapshot failed", zap.String("key", key), zap.Error(err))
		}
	})
}

// Save encodes snapshot and writes it to key. Cancellation of ctx does not abort an in-flight write.
func Save[T any](ctx context.Context, h Hook, key string, snapshot T) error {
	raw, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	writeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), writeTimeout)
	defer cancel()
	if err := h.KV.Put(writeCtx, key, raw); err != nil {
		return fmt.Errorf("write %s: %w", key, err)
	}
	return nil
}
