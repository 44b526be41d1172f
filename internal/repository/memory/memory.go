// Package memory holds the entity collections in process memory and writes
// each collection through to a repository.Persister after every mutation.
package memory

import (
	"context"
	"fmt"

	"github.com/egannguyen/go-food-delivery/internal/entity"
	"github.com/egannguyen/go-food-delivery/internal/repository"
)

// Repositories bundles one repository per entity type over a single backend.
type Repositories struct {
	Users    *UserRepository
	Stores   *StoreRepository
	Products *ProductRepository
	Orders   *OrderRepository
}

// Open loads every collection from p and returns repositories that persist through it.
func Open(ctx context.Context, p repository.Persister) (*Repositories, error) {
	ds, err := p.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load collections: %w", err)
	}
	return FromDataset(ds, p), nil
}

// FromDataset builds repositories over ds without reading from p.
func FromDataset(ds *entity.Dataset, p repository.Persister) *Repositories {
	return &Repositories{
		Users:    newUserRepository(ds.Users, p.SaveUsers),
		Stores:   newStoreRepository(ds.Stores, p.SaveStores),
		Products: newProductRepository(ds.Products, p.SaveProducts),
		Orders:   newOrderRepository(ds.Orders, p.SaveOrders),
	}
}

var (
	_ repository.UserRepository    = (*UserRepository)(nil)
	_ repository.StoreRepository   = (*StoreRepository)(nil)
	_ repository.ProductRepository = (*ProductRepository)(nil)
	_ repository.OrderRepository   = (*OrderRepository)(nil)
)
