package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/egannguyen/go-food-delivery/internal/entity"
	"github.com/egannguyen/go-food-delivery/internal/repository/memory"
)

const testPassword = "secret"

type published struct {
	topic string
	key   string
	event any
}

// recordingPublisher keeps every published event and fails when err is set.
type recordingPublisher struct {
	mu     sync.Mutex
	err    error
	events []published
}

func (p *recordingPublisher) PublishEvent(_ context.Context, topic, key string, event any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, published{topic: topic, key: key, event: event})
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) published() []published {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]published(nil), p.events...)
}

// failingPersister rejects every write.
type failingPersister struct {
	memory.NopPersister
}

var errWriteFailed = errors.New("write failed")

func (failingPersister) SaveOrders(context.Context, []entity.Order) error     { return errWriteFailed }
func (failingPersister) SaveProducts(context.Context, []entity.Product) error { return errWriteFailed }
func (failingPersister) SaveStores(context.Context, []entity.Store) error     { return errWriteFailed }

func testDataset(t *testing.T) *entity.Dataset {
	t.Helper()

	hash, err := HashPassword(testPassword, bcrypt.MinCost)
	require.NoError(t, err)

	return &entity.Dataset{
		Users: []entity.User{
			{ID: 1, Name: "Ana", Email: "consumer@demo.com", PasswordHash: hash, Role: entity.RoleConsumer},
			{ID: 2, Name: "Carlos", Email: "store@demo.com", PasswordHash: hash, Role: entity.RoleStore},
			{ID: 3, Name: "Diego", Email: "delivery@demo.com", PasswordHash: hash, Role: entity.RoleDelivery},
		},
		Stores: []entity.Store{
			{ID: 1, OwnerID: 2, Name: "Napoli", IsOpen: true},
			{ID: 2, OwnerID: 4, Name: "Zen", IsOpen: false},
		},
		Products: []entity.Product{
			{ID: 1, Name: "Margarita", Price: 8.5, StoreID: 1},
			{ID: 2, Name: "Pepperoni", Price: 9.75, StoreID: 1},
			{ID: 3, Name: "Lasaña", Price: 11, StoreID: 1},
		},
	}
}

func validOrder() entity.CreateOrder {
	return entity.CreateOrder{
		UserID:  1,
		StoreID: 1,
		Products: []entity.OrderItem{
			{ID: 1, Name: "Margarita", Price: 8.5, Quantity: 2},
			{ID: 2, Name: "Pepperoni", Price: 9.75, Quantity: 1},
		},
		Total:         26.75,
		Address:       "Calle Falsa 123",
		PaymentMethod: "cash",
	}
}
