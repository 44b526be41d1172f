package memory

import (
	"context"
	"strings"

	"github.com/egannguyen/go-food-delivery/internal/entity"
)

// UserRepository serves the seeded users. Users are immutable after seed.
type UserRepository struct {
	c *collection[entity.User]
}

func newUserRepository(users []entity.User, save func(context.Context, []entity.User) error) *UserRepository {
	return &UserRepository{
		c: newCollection("users", users, func(u entity.User) int { return u.ID }, nil, save),
	}
}

func (r *UserRepository) FindAll(ctx context.Context) ([]entity.User, error) {
	return r.c.filter(nil), nil
}

func (r *UserRepository) FindByID(ctx context.Context, id int) (entity.User, error) {
	if u, ok := r.c.get(id); ok {
		return u, nil
	}
	return entity.User{}, &entity.NotFoundError{Kind: "user", ID: id}
}

// FindByEmail matches case-insensitively. The returned error carries ID 0.
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (entity.User, error) {
	matches := r.c.filter(func(u entity.User) bool {
		return strings.EqualFold(u.Email, email)
	})
	if len(matches) == 0 {
		return entity.User{}, &entity.NotFoundError{Kind: "user"}
	}
	return matches[0], nil
}
