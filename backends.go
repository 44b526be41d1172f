package main

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/egannguyen/go-food-delivery/internal/config"
	"github.com/egannguyen/go-food-delivery/internal/entity"
	"github.com/egannguyen/go-food-delivery/internal/logging"
	"github.com/egannguyen/go-food-delivery/internal/messaging"
	"github.com/egannguyen/go-food-delivery/internal/messaging/kafka"
	"github.com/egannguyen/go-food-delivery/internal/messaging/nats"
	"github.com/egannguyen/go-food-delivery/internal/messaging/watermill"
	"github.com/egannguyen/go-food-delivery/internal/repository"
	"github.com/egannguyen/go-food-delivery/internal/repository/jsonfile"
	"github.com/egannguyen/go-food-delivery/internal/repository/memory"
	"github.com/egannguyen/go-food-delivery/internal/repository/postgres"
	"github.com/egannguyen/go-food-delivery/internal/repository/redis"
	"github.com/egannguyen/go-food-delivery/internal/seed"
)

func loadConfig() (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, err
	}
	logger, err := logging.New(cfg.Logging)
	if err != nil {
		return nil, nil, err
	}
	return cfg, logger, nil
}

func openPersister(ctx context.Context, cfg config.StorageConfig, logger *zap.Logger) (repository.Persister, error) {
	switch cfg.Driver {
	case config.StorageJSON:
		return jsonfile.New(cfg.DataDir)
	case config.StoragePostgres:
		db, err := postgres.InitDB(ctx, cfg.PostgresDSN, logger)
		if err != nil {
			return nil, err
		}
		return postgres.NewPersister(db), nil
	case config.StorageRedis:
		return redis.New(ctx, redis.Config{
			Addr:      cfg.RedisAddr,
			Password:  cfg.RedisPassword,
			DB:        cfg.RedisDB,
			KeyPrefix: cfg.RedisPrefix,
		})
	case config.StorageMemory:
		return memory.NopPersister{}, nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}

// seedIfEmpty writes the demo dataset when p holds no data at all and returns
// what p now holds.
func seedIfEmpty(ctx context.Context, p repository.Persister, ds *entity.Dataset, bcryptCost int, logger *zap.Logger) (*entity.Dataset, error) {
	if !ds.Empty() {
		return ds, nil
	}
	demo, err := seed.Dataset(bcryptCost)
	if err != nil {
		return nil, err
	}
	if err := writeDataset(ctx, p, demo); err != nil {
		return nil, err
	}
	logger.Info("seeded demo dataset",
		zap.Int("users", len(demo.Users)),
		zap.Int("stores", len(demo.Stores)),
		zap.Int("products", len(demo.Products)),
	)
	return demo, nil
}

func writeDataset(ctx context.Context, p repository.Persister, ds *entity.Dataset) error {
	if err := p.SaveUsers(ctx, ds.Users); err != nil {
		return fmt.Errorf("failed to save users: %w", err)
	}
	if err := p.SaveStores(ctx, ds.Stores); err != nil {
		return fmt.Errorf("failed to save stores: %w", err)
	}
	if err := p.SaveProducts(ctx, ds.Products); err != nil {
		return fmt.Errorf("failed to save products: %w", err)
	}
	if err := p.SaveOrders(ctx, ds.Orders); err != nil {
		return fmt.Errorf("failed to save orders: %w", err)
	}
	return nil
}

// openMessaging returns the publisher for cfg.Driver. The subscriber is nil
// for drivers that cannot read events back.
func openMessaging(cfg config.MessagingConfig, logger *zap.Logger) (messaging.Publisher, messaging.Subscriber, error) {
	switch cfg.Driver {
	case config.MessagingNone:
		return messaging.NopPublisher(), nil, nil
	case config.MessagingKafka:
		pub, sub := kafka.NewKafkaBroker(cfg.Brokers, logger)
		return pub, sub, nil
	case config.MessagingWatermill:
		pub, err := watermill.NewPublisher(cfg.Brokers, cfg.ClientID, logging.NewWatermillAdapter(logger))
		if err != nil {
			return nil, nil, err
		}
		// Watermill writes plain Kafka messages, so the Kafka reader can tail them.
		_, sub := kafka.NewKafkaBroker(cfg.Brokers, logger)
		return pub, sub, nil
	case config.MessagingNATS:
		return nats.Connect(cfg.NATSURL, logger)
	default:
		return nil, nil, fmt.Errorf("unknown messaging driver %q", cfg.Driver)
	}
}
