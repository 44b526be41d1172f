// Package redis persists each entity collection as one JSON value per key.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	goredis "github.com/redis/go-redis/v9"

	"github.com/egannguyen/go-food-delivery/internal/entity"
	"github.com/egannguyen/go-food-delivery/internal/repository"
)

// Config selects the Redis server and the key namespace.
type Config struct {
	Addr      string
	Password  string
	DB        int
	KeyPrefix string
}

type persister struct {
	client *goredis.Client
	prefix string
}

// New connects to Redis and returns a Persister that stores collections under
// "<prefix>:users", "<prefix>:stores", "<prefix>:products" and "<prefix>:orders".
func New(ctx context.Context, cfg Config) (repository.Persister, error) {
	client := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to ping redis at %s: %w", cfg.Addr, err)
	}
	return NewWithClient(client, cfg.KeyPrefix), nil
}

// NewWithClient wraps an existing client.
func NewWithClient(client *goredis.Client, prefix string) repository.Persister {
	if prefix == "" {
		prefix = "fooddelivery"
	}
	return &persister{client: client, prefix: prefix}
}

func (p *persister) key(collection string) string {
	return p.prefix + ":" + collection
}

func (p *persister) Load(ctx context.Context) (*entity.Dataset, error) {
	ds := &entity.Dataset{}
	if err := p.get(ctx, "users", &ds.Users); err != nil {
		return nil, err
	}
	if err := p.get(ctx, "stores", &ds.Stores); err != nil {
		return nil, err
	}
	if err := p.get(ctx, "products", &ds.Products); err != nil {
		return nil, err
	}
	if err := p.get(ctx, "orders", &ds.Orders); err != nil {
		return nil, err
	}
	return ds, nil
}

func (p *persister) SaveUsers(ctx context.Context, users []entity.User) error {
	return p.set(ctx, "users", users)
}

func (p *persister) SaveStores(ctx context.Context, stores []entity.Store) error {
	return p.set(ctx, "stores", stores)
}

func (p *persister) SaveProducts(ctx context.Context, products []entity.Product) error {
	return p.set(ctx, "products", products)
}

func (p *persister) SaveOrders(ctx context.Context, orders []entity.Order) error {
	return p.set(ctx, "orders", orders)
}

func (p *persister) Close() error {
	return p.client.Close()
}

func (p *persister) get(ctx context.Context, collection string, v any) error {
	data, err := p.client.Get(ctx, p.key(collection)).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to get %s: %w", collection, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to decode %s: %w", collection, err)
	}
	return nil
}

func (p *persister) set(ctx context.Context, collection string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", collection, err)
	}
	if err := p.client.Set(ctx, p.key(collection), data, 0).Err(); err != nil {
		return fmt.Errorf("failed to set %s: %w", collection, err)
	}
	return nil
}
