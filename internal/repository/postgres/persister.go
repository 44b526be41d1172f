package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/egannguyen/go-food-delivery/internal/entity"
	"github.com/egannguyen/go-food-delivery/internal/repository"
)

type persister struct {
	db *sql.DB
}

// NewPersister creates a Persister backed by Postgres. Each Save call replaces
// the collection's rows inside one transaction.
func NewPersister(db *sql.DB) repository.Persister {
	return &persister{db: db}
}

func (p *persister) Load(ctx context.Context) (*entity.Dataset, error) {
	ds := &entity.Dataset{}
	var err error
	if ds.Users, err = p.loadUsers(ctx); err != nil {
		return nil, err
	}
	if ds.Stores, err = p.loadStores(ctx); err != nil {
		return nil, err
	}
	if ds.Products, err = p.loadProducts(ctx); err != nil {
		return nil, err
	}
	if ds.Orders, err = p.loadOrders(ctx); err != nil {
		return nil, err
	}
	return ds, nil
}

func (p *persister) loadUsers(ctx context.Context) ([]entity.User, error) {
	rows, err := p.db.QueryContext(ctx, "SELECT id, name, email, password_hash, role FROM users ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("failed to query users: %w", err)
	}
	defer rows.Close()

	var users []entity.User
	for rows.Next() {
		var u entity.User
		if err := rows.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Role); err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (p *persister) loadStores(ctx context.Context) ([]entity.Store, error) {
	rows, err := p.db.QueryContext(ctx, "SELECT id, owner_id, name, description, address, phone, is_open FROM stores ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("failed to query stores: %w", err)
	}
	defer rows.Close()

	var stores []entity.Store
	for rows.Next() {
		var s entity.Store
		if err := rows.Scan(&s.ID, &s.OwnerID, &s.Name, &s.Description, &s.Address, &s.Phone, &s.IsOpen); err != nil {
			return nil, fmt.Errorf("failed to scan store: %w", err)
		}
		stores = append(stores, s)
	}
	return stores, rows.Err()
}

func (p *persister) loadProducts(ctx context.Context) ([]entity.Product, error) {
	rows, err := p.db.QueryContext(ctx, "SELECT id, name, price, image, store_id FROM products ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()

	var products []entity.Product
	for rows.Next() {
		var pr entity.Product
		if err := rows.Scan(&pr.ID, &pr.Name, &pr.Price, &pr.Image, &pr.StoreID); err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, pr)
	}
	return products, rows.Err()
}

func (p *persister) loadOrders(ctx context.Context) ([]entity.Order, error) {
	rows, err := p.db.QueryContext(ctx,
		"SELECT id, user_id, store_id, total, address, payment_method, status, created_at FROM orders ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("failed to query orders: %w", err)
	}

	var orders []entity.Order
	for rows.Next() {
		var o entity.Order
		if err := rows.Scan(&o.ID, &o.UserID, &o.StoreID, &o.Total, &o.Address, &o.PaymentMethod, &o.Status, &o.CreatedAt); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		o.CreatedAt = o.CreatedAt.UTC()
		orders = append(orders, o)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate orders: %w", err)
	}

	// Fetch items for each order
	for i := range orders {
		itemRows, err := p.db.QueryContext(ctx,
			"SELECT product_id, name, price, quantity FROM order_items WHERE order_id = $1 ORDER BY position",
			orders[i].ID,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to query order items: %w", err)
		}

		for itemRows.Next() {
			var item entity.OrderItem
			if err := itemRows.Scan(&item.ID, &item.Name, &item.Price, &item.Quantity); err != nil {
				itemRows.Close()
				return nil, fmt.Errorf("failed to scan order item: %w", err)
			}
			orders[i].Products = append(orders[i].Products, item)
		}
		if err := itemRows.Err(); err != nil {
			itemRows.Close()
			return nil, fmt.Errorf("failed to iterate order items: %w", err)
		}
		itemRows.Close()
	}

	return orders, nil
}

// replace runs fn inside a transaction after clearing table.
func (p *persister) replace(ctx context.Context, table string, fn func(tx *sql.Tx) error) error {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
		return fmt.Errorf("failed to clear %s: %w", table, err)
	}
	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (p *persister) SaveUsers(ctx context.Context, users []entity.User) error {
	return p.replace(ctx, "users", func(tx *sql.Tx) error {
		for _, u := range users {
			_, err := tx.ExecContext(ctx,
				"INSERT INTO users (id, name, email, password_hash, role) VALUES ($1, $2, $3, $4, $5)",
				u.ID, u.Name, u.Email, u.PasswordHash, string(u.Role),
			)
			if err != nil {
				return fmt.Errorf("failed to insert user %d: %w", u.ID, err)
			}
		}
		return nil
	})
}

func (p *persister) SaveStores(ctx context.Context, stores []entity.Store) error {
	return p.replace(ctx, "stores", func(tx *sql.Tx) error {
		for _, s := range stores {
			_, err := tx.ExecContext(ctx,
				"INSERT INTO stores (id, owner_id, name, description, address, phone, is_open) VALUES ($1, $2, $3, $4, $5, $6, $7)",
				s.ID, s.OwnerID, s.Name, s.Description, s.Address, s.Phone, s.IsOpen,
			)
			if err != nil {
				return fmt.Errorf("failed to insert store %d: %w", s.ID, err)
			}
		}
		return nil
	})
}

func (p *persister) SaveProducts(ctx context.Context, products []entity.Product) error {
	return p.replace(ctx, "products", func(tx *sql.Tx) error {
		for _, pr := range products {
			_, err := tx.ExecContext(ctx,
				"INSERT INTO products (id, name, price, image, store_id) VALUES ($1, $2, $3, $4, $5)",
				pr.ID, pr.Name, pr.Price, pr.Image, pr.StoreID,
			)
			if err != nil {
				return fmt.Errorf("failed to insert product %d: %w", pr.ID, err)
			}
		}
		return nil
	})
}

// SaveOrders relies on ON DELETE CASCADE to clear order_items with the orders.
func (p *persister) SaveOrders(ctx context.Context, orders []entity.Order) error {
	return p.replace(ctx, "orders", func(tx *sql.Tx) error {
		for _, o := range orders {
			_, err := tx.ExecContext(ctx,
				"INSERT INTO orders (id, user_id, store_id, total, address, payment_method, status, created_at) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)",
				o.ID, o.UserID, o.StoreID, o.Total, o.Address, o.PaymentMethod, string(o.Status), o.CreatedAt,
			)
			if err != nil {
				return fmt.Errorf("failed to insert order %d: %w", o.ID, err)
			}

			for pos, item := range o.Products {
				_, err = tx.ExecContext(ctx,
					"INSERT INTO order_items (order_id, position, product_id, name, price, quantity) VALUES ($1, $2, $3, $4, $5, $6)",
					o.ID, pos, item.ID, item.Name, item.Price, item.Quantity,
				)
				if err != nil {
					return fmt.Errorf("failed to insert order item: %w", err)
				}
			}
		}
		return nil
	})
}

func (p *persister) Close() error {
	return p.db.Close()
}
