package memory

import (
	"context"

	"github.com/egannguyen/go-food-delivery/internal/entity"
)

type StoreRepository struct {
	c *collection[entity.Store]
}

func newStoreRepository(stores []entity.Store, save func(context.Context, []entity.Store) error) *StoreRepository {
	return &StoreRepository{
		c: newCollection("stores", stores, func(s entity.Store) int { return s.ID }, nil, save),
	}
}

func (r *StoreRepository) FindAll(ctx context.Context) ([]entity.Store, error) {
	return r.c.filter(nil), nil
}

func (r *StoreRepository) FindByID(ctx context.Context, id int) (entity.Store, error) {
	if s, ok := r.c.get(id); ok {
		return s, nil
	}
	return entity.Store{}, &entity.NotFoundError{Kind: "store", ID: id}
}

// FindByOwner returns the first store owned by ownerID.
func (r *StoreRepository) FindByOwner(ctx context.Context, ownerID int) (entity.Store, error) {
	owned := r.c.filter(func(s entity.Store) bool { return s.OwnerID == ownerID })
	if len(owned) == 0 {
		return entity.Store{}, &entity.NotFoundError{Kind: "store for owner", ID: ownerID}
	}
	return owned[0], nil
}

// SetOpen sets the open flag. Writing the current value again still succeeds
// and reports changed as false.
func (r *StoreRepository) SetOpen(ctx context.Context, id int, isOpen bool) (entity.Store, bool, error) {
	var changed bool
	s, ok, err := r.c.update(ctx, id, func(s *entity.Store) error {
		changed = s.IsOpen != isOpen
		s.IsOpen = isOpen
		return nil
	})
	if !ok {
		return entity.Store{}, false, &entity.NotFoundError{Kind: "store", ID: id}
	}
	if err != nil {
		return entity.Store{}, false, err
	}
	return s, changed, nil
}
