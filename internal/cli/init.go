// Package cli provides the initialization shared by cmd/moneta and
// cmd/moneta-worker.
package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"moneta/internal/backend"
	"moneta/internal/config"
	"moneta/internal/log"
	"moneta/internal/store"
)

// SetupLogger builds the process logger at the given LOG_LEVEL and makes
// it the slog default.
func SetupLogger(level string) *log.Logger {
	cfg := log.DefaultConfig()
	cfg.Level = log.ParseLevel(level)
	logger := log.New(cfg)
	log.SetDefault(logger)
	return logger
}

// LoadEnvFile loads the .env file for local development.
// Errors are ignored silently as this is optional in production.
func LoadEnvFile() {
	_ = godotenv.Load()
}

// LoadAndValidateConfig loads configuration from the environment and
// validates it.
func LoadAndValidateConfig(logger *log.Logger) (*config.Config, error) {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", log.FieldError, err)
		return nil, err
	}
	return cfg, nil
}

// OpenStore opens the configured backend, repairs the raw snapshot and
// loads it into a new store. The returned cleanup releases the backend.
func OpenStore(ctx context.Context, cfg *config.Config, logger *log.Logger, opts ...store.Option) (*store.Store, backend.CleanupFunc, error) {
	bcfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		return nil, nil, err
	}
	res, err := backend.NewFactory(logger).CreateBackend(ctx, bcfg)
	if err != nil {
		return nil, nil, fmt.Errorf("create backend: %w", err)
	}

	base := []store.Option{store.WithKey(cfg.StorageKey), store.WithLogger(logger)}
	if res.Notifier != nil {
		base = append(base, store.WithNotifier(res.Notifier))
	}
	st := store.New(res.KV, append(base, opts...)...)

	if fixed := st.RepairStorage(ctx); fixed > 0 {
		logger.InfoContext(ctx, "Repaired stored transactions", "fixed", fixed)
	}
	report := st.Load(ctx)
	if report.Cause != nil {
		logger.WarnContext(ctx, "Stored data was unusable, demo data loaded", log.FieldError, report.Cause)
	}
	logger.InfoContext(ctx, "Store ready",
		log.FieldOutcome, report.Outcome.String(),
		log.FieldRevision, st.Revision(),
		"repaired_ids", report.RepairedIDs,
		"dropped", len(report.Dropped))

	return st, res.Cleanup, nil
}

// SignalContext returns a context cancelled on SIGINT or SIGTERM.
func SignalContext(parent context.Context, logger *log.Logger) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		defer signal.Stop(sigChan)
		select {
		case sig := <-sigChan:
			logger.Info("Shutdown signal received", "signal", sig.String())
			cancel()
		case <-ctx.Done():
		}
	}()
	return ctx, cancel
}
