package entity

import (
	"time"
)

// Role identifies which front-end a user signs in to.
type Role string

const (
	RoleConsumer Role = "consumer"
	RoleStore    Role = "store"
	RoleDelivery Role = "delivery"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleConsumer, RoleStore, RoleDelivery:
		return true
	}
	return false
}

// User is an account seeded with the dataset. PasswordHash is a bcrypt hash.
type User struct {
	ID           int    `json:"id"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	PasswordHash string `json:"passwordHash"`
	Role         Role   `json:"role"`
}

// Store is a merchant that lists products and receives orders.
type Store struct {
	ID          int    `json:"id"`
	OwnerID     int    `json:"ownerId"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Address     string `json:"address"`
	Phone       string `json:"phone"`
	IsOpen      bool   `json:"isOpen"`
}

// Product is an item on a store's menu.
type Product struct {
	ID      int     `json:"id"`
	Name    string  `json:"name"`
	Price   float64 `json:"price"`
	Image   string  `json:"image"`
	StoreID int     `json:"storeId"`
}

// OrderItem is a line item within an order. It is a snapshot of the product
// at the time the order was placed, not a live reference.
type OrderItem struct {
	ID       int     `json:"id"`
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Quantity int     `json:"quantity"`
}

// Order represents a consumer order against a single store.
type Order struct {
	ID            int         `json:"id"`
	UserID        int         `json:"userId"`
	StoreID       int         `json:"storeId"`
	Products      []OrderItem `json:"products"`
	Total         float64     `json:"total"`
	Address       string      `json:"address"`
	PaymentMethod string      `json:"paymentMethod"`
	Status        OrderStatus `json:"status"`
	CreatedAt     time.Time   `json:"createdAt"`
}

// Clone returns a copy of o that shares no memory with it.
func (o Order) Clone() Order {
	o.Products = append([]OrderItem(nil), o.Products...)
	return o
}

// --- Commands ---

// CreateOrder is a command to place a new order.
type CreateOrder struct {
	UserID        int         `json:"userId"`
	StoreID       int         `json:"storeId"`
	Products      []OrderItem `json:"products"`
	Total         float64     `json:"total"`
	Address       string      `json:"address"`
	PaymentMethod string      `json:"paymentMethod"`
}

// ProductInput carries the full set of writable product fields.
type ProductInput struct {
	Name    string  `json:"name"`
	Price   float64 `json:"price"`
	Image   string  `json:"image"`
	StoreID int     `json:"storeId"`
}

// Dataset is the full set of entity collections as held by a persistence backend.
type Dataset struct {
	Users    []User
	Stores   []Store
	Products []Product
	Orders   []Order
}

// Empty reports whether no collection holds any record.
func (d *Dataset) Empty() bool {
	return len(d.Users) == 0 && len(d.Stores) == 0 && len(d.Products) == 0 && len(d.Orders) == 0
}
