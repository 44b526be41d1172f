package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	delivery "github.com/egannguyen/go-food-delivery/internal/delivery/http"
	"github.com/egannguyen/go-food-delivery/internal/metrics"
	"github.com/egannguyen/go-food-delivery/internal/repository/memory"
	"github.com/egannguyen/go-food-delivery/internal/service"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	Long: `Run the HTTP API.

Examples:
  # Defaults: port 5050, JSON files under ./data, no event broker
  fooddelivery serve

  # Postgres storage and Kafka events
  STORAGE_DRIVER=postgres STORAGE_POSTGRES_DSN=postgres://... \
  MESSAGING_DRIVER=kafka MESSAGING_BROKERS=localhost:9092 fooddelivery serve`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, logger, err := loadConfig()
	if err != nil {
		return err
	}
	defer logger.Sync()

	ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// --- Storage ---
	persister, err := openPersister(ctx, cfg.Storage, logger)
	if err != nil {
		return fmt.Errorf("failed to open storage: %w", err)
	}
	defer persister.Close()

	ds, err := persister.Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to load data: %w", err)
	}
	if cfg.Storage.SeedOnEmpty {
		if ds, err = seedIfEmpty(ctx, persister, ds, cfg.Auth.BcryptCost, logger); err != nil {
			return err
		}
	}
	repos := memory.FromDataset(ds, persister)
	logger.Info("data loaded",
		zap.String("driver", cfg.Storage.Driver),
		zap.Int("users", len(ds.Users)),
		zap.Int("stores", len(ds.Stores)),
		zap.Int("products", len(ds.Products)),
		zap.Int("orders", len(ds.Orders)),
	)

	// --- Messaging ---
	publisher, subscriber, err := openMessaging(cfg.Messaging, logger)
	if err != nil {
		return fmt.Errorf("failed to open messaging: %w", err)
	}
	defer publisher.Close()
	if subscriber != nil {
		defer subscriber.Close()
	}

	// --- Services ---
	m := metrics.New()
	orders := service.NewOrderService(repos.Orders, repos.Users, repos.Stores, publisher, m, logger)
	catalog := service.NewCatalogService(repos.Stores, repos.Products, publisher, logger)
	auth := service.NewAuthService(repos.Users, m, logger)

	// --- HTTP API ---
	handler := delivery.NewHandler(orders, catalog, auth, logger)
	server, err := delivery.NewServer(handler, m, logger, &delivery.Config{
		Host:       cfg.Server.Host,
		Port:       cfg.Server.Port,
		LoginRate:  cfg.Auth.LoginRate,
		LoginBurst: cfg.Auth.LoginBurst,
	})
	if err != nil {
		return err
	}

	errCh := make(chan error, 1)
	go func() {
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
	}

	logger.Info("shutting down")
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancelShutdown()
	return server.Shutdown(shutdownCtx)
}
