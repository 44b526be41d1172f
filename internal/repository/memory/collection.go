package memory

import (
	"context"
	"sync"

	"github.com/egannguyen/go-food-delivery/internal/entity"
)

// collection is an ordered set of records guarded by a single writer lock.
// Mutations build the next snapshot, hand it to save and only keep it once
// save succeeds.
type collection[T any] struct {
	mu     sync.RWMutex
	name   string
	items  []T
	nextID int
	idOf   func(T) int
	clone  func(T) T
	save   func(ctx context.Context, items []T) error
}

func newCollection[T any](name string, items []T, idOf func(T) int, clone func(T) T, save func(context.Context, []T) error) *collection[T] {
	if clone == nil {
		clone = func(v T) T { return v }
	}
	c := &collection[T]{
		name:  name,
		items: append([]T(nil), items...),
		idOf:  idOf,
		clone: clone,
		save:  save,
	}
	for _, it := range c.items {
		if id := idOf(it); id > c.nextID {
			c.nextID = id
		}
	}
	return c
}

func (c *collection[T]) indexOf(id int) int {
	for i, it := range c.items {
		if c.idOf(it) == id {
			return i
		}
	}
	return -1
}

func (c *collection[T]) filter(keep func(T) bool) []T {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]T, 0, len(c.items))
	for _, it := range c.items {
		if keep == nil || keep(it) {
			out = append(out, c.clone(it))
		}
	}
	return out
}

func (c *collection[T]) get(id int) (T, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if i := c.indexOf(id); i >= 0 {
		return c.clone(c.items[i]), true
	}
	var zero T
	return zero, false
}

func (c *collection[T]) commit(ctx context.Context, next []T) error {
	if err := c.save(ctx, next); err != nil {
		return &entity.PersistenceError{Collection: c.name, Err: err}
	}
	c.items = next
	return nil
}

// insert assigns the next id, builds the record with it and persists.
// Ids are never handed out twice, even when the save fails.
func (c *collection[T]) insert(ctx context.Context, build func(id int) T) (T, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.nextID++
	rec := build(c.nextID)

	next := make([]T, len(c.items), len(c.items)+1)
	copy(next, c.items)
	next = append(next, rec)

	if err := c.commit(ctx, next); err != nil {
		var zero T
		return zero, err
	}
	return c.clone(rec), nil
}

// update applies mutate to a private copy of record id. When mutate fails
// nothing is saved. ok is false when id is absent.
func (c *collection[T]) update(ctx context.Context, id int, mutate func(*T) error) (rec T, ok bool, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	i := c.indexOf(id)
	if i < 0 {
		return rec, false, nil
	}

	var zero T
	rec = c.clone(c.items[i])
	if err := mutate(&rec); err != nil {
		return zero, true, err
	}

	next := append([]T(nil), c.items...)
	next[i] = rec
	if err := c.commit(ctx, next); err != nil {
		return zero, true, err
	}
	return c.clone(rec), true, nil
}

func (c *collection[T]) remove(ctx context.Context, id int) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	i := c.indexOf(id)
	if i < 0 {
		return false, nil
	}

	next := make([]T, 0, len(c.items)-1)
	next = append(next, c.items[:i]...)
	next = append(next, c.items[i+1:]...)
	return true, c.commit(ctx, next)
}
