package repository

import (
	"context"

	"github.com/egannguyen/go-food-delivery/internal/entity"
)

// Persister is the backing store for whole entity collections. Every Save call
// replaces the stored collection with the given slice.
type Persister interface {
	// Load returns every collection. Collections that were never saved are empty.
	Load(ctx context.Context) (*entity.Dataset, error)
	SaveUsers(ctx context.Context, users []entity.User) error
	SaveStores(ctx context.Context, stores []entity.Store) error
	SaveProducts(ctx context.Context, products []entity.Product) error
	SaveOrders(ctx context.Context, orders []entity.Order) error
	Close() error
}

// UserRepository handles lookups of seeded users.
type UserRepository interface {
	FindAll(ctx context.Context) ([]entity.User, error)
	FindByID(ctx context.Context, id int) (entity.User, error)
	FindByEmail(ctx context.Context, email string) (entity.User, error)
}

// StoreRepository handles persistence for Stores.
type StoreRepository interface {
	FindAll(ctx context.Context) ([]entity.Store, error)
	FindByID(ctx context.Context, id int) (entity.Store, error)
	FindByOwner(ctx context.Context, ownerID int) (entity.Store, error)
	// SetOpen reports whether the flag differed from isOpen before the write.
	SetOpen(ctx context.Context, id int, isOpen bool) (store entity.Store, changed bool, err error)
}

// ProductRepository handles persistence for Products.
type ProductRepository interface {
	FindByStore(ctx context.Context, storeID int) ([]entity.Product, error)
	FindByID(ctx context.Context, id int) (entity.Product, error)
	Create(ctx context.Context, in entity.ProductInput) (entity.Product, error)
	Update(ctx context.Context, id int, in entity.ProductInput) (entity.Product, error)
	Delete(ctx context.Context, id int) error
}

// OrderRepository handles persistence for Orders.
type OrderRepository interface {
	// Create stores o under a freshly assigned id and returns the stored order.
	Create(ctx context.Context, o entity.Order) (entity.Order, error)
	FindByID(ctx context.Context, id int) (entity.Order, error)
	// Find returns the orders matching keep, in insertion order.
	Find(ctx context.Context, keep func(entity.Order) bool) ([]entity.Order, error)
	// Update applies mutate to order id and persists the result. No other
	// writer can observe or change the order between mutate and the save.
	Update(ctx context.Context, id int, mutate func(o *entity.Order) error) (entity.Order, error)
}
