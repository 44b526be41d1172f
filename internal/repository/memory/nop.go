package memory

import (
	"context"

	"github.com/egannguyen/go-food-delivery/internal/entity"
)

// NopPersister keeps nothing. Collections live only as long as the process.
type NopPersister struct{}

func (NopPersister) Load(context.Context) (*entity.Dataset, error)        { return &entity.Dataset{}, nil }
func (NopPersister) SaveUsers(context.Context, []entity.User) error       { return nil }
func (NopPersister) SaveStores(context.Context, []entity.Store) error     { return nil }
func (NopPersister) SaveProducts(context.Context, []entity.Product) error { return nil }
func (NopPersister) SaveOrders(context.Context, []entity.Order) error     { return nil }
func (NopPersister) Close() error                                         { return nil }
