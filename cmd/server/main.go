package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"
	"golang.org/x/sync/errgroup"

	"github.com/mmynk/duespay/internal/auth"
	"github.com/mmynk/duespay/internal/config"
	"github.com/mmynk/duespay/internal/ledger"
	"github.com/mmynk/duespay/internal/metrics"
	"github.com/mmynk/duespay/internal/receipts"
	"github.com/mmynk/duespay/internal/service"
	"github.com/mmynk/duespay/internal/storage"
	"github.com/mmynk/duespay/internal/storage/postgres"
	"github.com/mmynk/duespay/internal/storage/sqlite"
	"github.com/mmynk/duespay/pkg/logging"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Invalid configuration", "error", err)
		os.Exit(1)
	}
	logger := logging.Setup(cfg.LogLevel, cfg.LogFormat)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("Server failed", "error", err)
		os.Exit(1)
	}
}

func openStore(ctx context.Context, cfg *config.Config) (storage.Store, error) {
	switch cfg.DBDriver {
	case "postgres":
		return postgres.New(ctx, cfg.DatabaseURL)
	default:
		return sqlite.New(cfg.DBPath)
	}
}

func run(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	store, err := openStore(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer store.Close()
	logger.Info("Storage initialized", "driver", cfg.DBDriver)

	receiptStore, err := receipts.NewLocalStore(cfg.ReceiptDir, cfg.ReceiptMaxBytes, logger)
	if err != nil {
		return err
	}

	m := metrics.New()
	handler := service.NewHandler(service.Deps{
		Ledger:        ledger.New(store, ledger.WithLogger(logger), ledger.WithHooks(m.LedgerHooks())),
		Authenticator: auth.NewPasswordAuthenticator(store),
		Users:         store,
		JWT:           auth.NewJWTManager(cfg.JWTSecret, cfg.TokenTTL),
		Receipts:      receiptStore,
		Metrics:       m,
		Logger:        logger,
	})

	srv := &http.Server{
		Addr: cfg.Addr(),
		// h2c serves HTTP/2 without TLS for connect clients.
		Handler:           h2c.NewHandler(handler, &http2.Server{}),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("Connect server starting", "address", srv.Addr, "url", fmt.Sprintf("http://localhost%s", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
