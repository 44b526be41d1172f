// Package jsonfile persists each entity collection as an indented JSON array
// in its own file under a data directory.
package jsonfile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/egannguyen/go-food-delivery/internal/entity"
	"github.com/egannguyen/go-food-delivery/internal/repository"
)

const (
	UsersFile    = "users.json"
	StoresFile   = "stores.json"
	ProductsFile = "products.json"
	OrdersFile   = "orders.json"
)

type persister struct {
	dir string
	// mu serializes renames into dir across collections.
	mu sync.Mutex
}

// New creates a Persister rooted at dir, creating the directory if needed.
func New(dir string) (repository.Persister, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data directory %s: %w", dir, err)
	}
	return &persister{dir: dir}, nil
}

func (p *persister) Load(ctx context.Context) (*entity.Dataset, error) {
	ds := &entity.Dataset{}
	if err := p.read(UsersFile, &ds.Users); err != nil {
		return nil, err
	}
	if err := p.read(StoresFile, &ds.Stores); err != nil {
		return nil, err
	}
	if err := p.read(ProductsFile, &ds.Products); err != nil {
		return nil, err
	}
	if err := p.read(OrdersFile, &ds.Orders); err != nil {
		return nil, err
	}
	return ds, nil
}

func (p *persister) SaveUsers(ctx context.Context, users []entity.User) error {
	return p.write(UsersFile, users)
}

func (p *persister) SaveStores(ctx context.Context, stores []entity.Store) error {
	return p.write(StoresFile, stores)
}

func (p *persister) SaveProducts(ctx context.Context, products []entity.Product) error {
	return p.write(ProductsFile, products)
}

func (p *persister) SaveOrders(ctx context.Context, orders []entity.Order) error {
	return p.write(OrdersFile, orders)
}

func (p *persister) Close() error { return nil }

// read decodes name into v. A missing file leaves v untouched.
func (p *persister) read(name string, v any) error {
	data, err := os.ReadFile(filepath.Join(p.dir, name))
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", name, err)
	}
	if len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to decode %s: %w", name, err)
	}
	return nil
}

// write replaces name atomically: the collection is written to a temp file in
// the same directory, synced, then renamed over the old file.
func (p *persister) write(name string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", name, err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	tmp, err := os.CreateTemp(p.dir, name+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file for %s: %w", name, err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write %s: %w", name, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to sync %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", name, err)
	}
	if err := os.Rename(tmpName, filepath.Join(p.dir, name)); err != nil {
		return fmt.Errorf("failed to replace %s: %w", name, err)
	}
	return nil
}
