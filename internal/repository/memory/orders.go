package memory

import (
	"context"

	"github.com/egannguyen/go-food-delivery/internal/entity"
)

type OrderRepository struct {
	c *collection[entity.Order]
}

func newOrderRepository(orders []entity.Order, save func(context.Context, []entity.Order) error) *OrderRepository {
	return &OrderRepository{
		c: newCollection("orders", orders, func(o entity.Order) int { return o.ID }, entity.Order.Clone, save),
	}
}

// Create ignores o.ID and assigns the next id of the collection.
func (r *OrderRepository) Create(ctx context.Context, o entity.Order) (entity.Order, error) {
	o = o.Clone()
	return r.c.insert(ctx, func(id int) entity.Order {
		o.ID = id
		return o
	})
}

func (r *OrderRepository) FindByID(ctx context.Context, id int) (entity.Order, error) {
	if o, ok := r.c.get(id); ok {
		return o, nil
	}
	return entity.Order{}, &entity.NotFoundError{Kind: "order", ID: id}
}

func (r *OrderRepository) Find(ctx context.Context, keep func(entity.Order) bool) ([]entity.Order, error) {
	return r.c.filter(keep), nil
}

func (r *OrderRepository) Update(ctx context.Context, id int, mutate func(o *entity.Order) error) (entity.Order, error) {
	o, ok, err := r.c.update(ctx, id, mutate)
	if !ok {
		return entity.Order{}, &entity.NotFoundError{Kind: "order", ID: id}
	}
	return o, err
}
