package memory

import (
	"context"

	"github.com/egannguyen/go-food-delivery/internal/entity"
)

type ProductRepository struct {
	c *collection[entity.Product]
}

func newProductRepository(products []entity.Product, save func(context.Context, []entity.Product) error) *ProductRepository {
	return &ProductRepository{
		c: newCollection("products", products, func(p entity.Product) int { return p.ID }, nil, save),
	}
}

func (r *ProductRepository) FindByStore(ctx context.Context, storeID int) ([]entity.Product, error) {
	return r.c.filter(func(p entity.Product) bool { return p.StoreID == storeID }), nil
}

func (r *ProductRepository) FindByID(ctx context.Context, id int) (entity.Product, error) {
	if p, ok := r.c.get(id); ok {
		return p, nil
	}
	return entity.Product{}, &entity.NotFoundError{Kind: "product", ID: id}
}

func (r *ProductRepository) Create(ctx context.Context, in entity.ProductInput) (entity.Product, error) {
	return r.c.insert(ctx, func(id int) entity.Product {
		return entity.Product{
			ID:      id,
			Name:    in.Name,
			Price:   in.Price,
			Image:   in.Image,
			StoreID: in.StoreID,
		}
	})
}

// Update overwrites every writable field of product id.
func (r *ProductRepository) Update(ctx context.Context, id int, in entity.ProductInput) (entity.Product, error) {
	p, ok, err := r.c.update(ctx, id, func(p *entity.Product) error {
		p.Name = in.Name
		p.Price = in.Price
		p.Image = in.Image
		p.StoreID = in.StoreID
		return nil
	})
	if !ok {
		return entity.Product{}, &entity.NotFoundError{Kind: "product", ID: id}
	}
	return p, err
}

func (r *ProductRepository) Delete(ctx context.Context, id int) error {
	ok, err := r.c.remove(ctx, id)
	if !ok {
		return &entity.NotFoundError{Kind: "product", ID: id}
	}
	return err
}
