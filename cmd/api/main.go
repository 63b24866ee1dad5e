package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/georgemunganga/tablepos/internal/modules/catalog"
	"github.com/georgemunganga/tablepos/internal/modules/floorplan"
	"github.com/georgemunganga/tablepos/internal/modules/order"
	"github.com/georgemunganga/tablepos/internal/modules/pos"
	"github.com/georgemunganga/tablepos/internal/modules/roster"
	"github.com/georgemunganga/tablepos/internal/platform/config"
	"github.com/georgemunganga/tablepos/internal/platform/kv"
	"github.com/georgemunganga/tablepos/internal/platform/kv/memory"
	"github.com/georgemunganga/tablepos/internal/platform/kv/postgres"
	"github.com/georgemunganga/tablepos/internal/platform/kv/sqlite"
	"github.com/georgemunganga/tablepos/internal/platform/logger"
	"github.com/georgemunganga/tablepos/internal/platform/metrics"
	"github.com/georgemunganga/tablepos/internal/platform/persist"
	"github.com/georgemunganga/tablepos/internal/platform/storeopt"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	zl, err := logger.New(logger.Config{Level: cfg.LogLevel, Environment: cfg.Environment, Service: "tablepos"})
	if err != nil {
		log.Fatalf("logger: %v", err)
	}

	if code := finish(zl, run(cfg, zl)); code != 0 {
		os.Exit(code)
	}
}

// finish logs the outcome of run and flushes zl before the process exits.
func finish(zl *zap.Logger, err error) int {
	if err != nil {
		zl.Error("server stopped", zap.Error(err))
	}
	_ = zl.Sync()
	if err != nil {
		return 1
	}
	return 0
}

func run(cfg config.Config, zl *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	loc, err := cfg.Location()
	if err != nil {
		return err
	}
	m := metrics.New("pos")

	// ── Storage ─────────────────────────────────────────────
	store, err := openKV(ctx, cfg)
	if err != nil {
		return err
	}
	defer store.Close()
	zl.Info("storage ready", zap.String("driver", cfg.StorageDriver))

	hook := persist.Hook{KV: store, Logger: zl, Recorder: m}
	opts := []storeopt.Option{
		storeopt.WithLogger(zl),
		storeopt.WithRecorder(m),
		storeopt.WithLocation(loc),
	}

	// ── Stores ──────────────────────────────────────────────
	var menuState catalog.Snapshot
	if _, err := persist.Restore(ctx, hook, persist.KeyCatalog, &menuState); err != nil {
		return err
	}
	menu := catalog.NewStore(menuState, opts...)
	defer menu.Dispose()

	var staffState roster.Snapshot
	if _, err := persist.Restore(ctx, hook, persist.KeyRoster, &staffState); err != nil {
		return err
	}
	staff := roster.NewStore(staffState, opts...)
	defer staff.Dispose()

	var floorState floorplan.Snapshot
	if _, err := persist.Restore(ctx, hook, persist.KeyFloorPlan, &floorState); err != nil {
		return err
	}
	tables := floorplan.NewStore(floorState, opts...)
	defer tables.Dispose()

	var orderState order.Snapshot
	if _, err := persist.Restore(ctx, hook, persist.KeyOrders, &orderState); err != nil {
		return err
	}
	orders := order.NewLedger(orderState, opts...)
	defer orders.Dispose()

	persist.Attach(ctx, hook, persist.KeyCatalog, menu.Subscribe)
	persist.Attach(ctx, hook, persist.KeyRoster, staff.Subscribe)
	persist.Attach(ctx, hook, persist.KeyFloorPlan, tables.Subscribe)
	persist.Attach(ctx, hook, persist.KeyOrders, orders.Subscribe)

	checkout := pos.NewCheckout(menu, staff, tables, orders, zl)

	// ── Router ──────────────────────────────────────────────
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Recoverer)
	router.Use(logger.Middleware(zl))
	router.Use(m.Middleware)

	router.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	if cfg.MetricsEnabled {
		router.Handle("/metrics", m.Handler())
	}

	catalog.NewHandler(menu).RegisterRoutes(router)
	roster.NewHandler(staff).RegisterRoutes(router)
	floorplan.NewHandler(tables).RegisterRoutes(router)
	order.NewHandler(orders).RegisterRoutes(router)
	pos.NewHandler(checkout).RegisterRoutes(router)

	// ── Start Server ────────────────────────────────────────
	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		zl.Info("tablepos API starting", zap.String("addr", srv.Addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	zl.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func openKV(ctx context.Context, cfg config.Config) (kv.Store, error) {
	switch cfg.StorageDriver {
	case config.DriverSQLite:
		if err := os.MkdirAll(filepath.Dir(cfg.SQLitePath), 0o755); err != nil {
			return nil, fmt.Errorf("create data dir: %w", err)
		}
		return sqlite.Open(ctx, cfg.SQLitePath)
	case config.DriverPostgres:
		return postgres.Open(ctx, cfg.DatabaseURL)
	case config.DriverMemory:
		return memory.New(), nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
	}
}
