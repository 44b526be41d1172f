package entity

import "time"

// Event represents a domain event.
type Event interface {
	EventType() string
}

// OrderPlaced is emitted once an order has been stored in status pending.
type OrderPlaced struct {
	OrderID  int         `json:"order_id"`
	UserID   int         `json:"user_id"`
	StoreID  int         `json:"store_id"`
	Items    []OrderItem `json:"items"`
	Total    float64     `json:"total"`
	PlacedAt time.Time   `json:"placed_at"`
}

func (e OrderPlaced) EventType() string { return "OrderPlaced" }

// OrderStatusChanged is emitted when an order moves one step along its lifecycle.
type OrderStatusChanged struct {
	OrderID   int         `json:"order_id"`
	StoreID   int         `json:"store_id"`
	From      OrderStatus `json:"from"`
	To        OrderStatus `json:"to"`
	ChangedAt time.Time   `json:"changed_at"`
}

func (e OrderStatusChanged) EventType() string { return "OrderStatusChanged" }

// StoreStatusChanged is emitted when an owner opens or closes a store.
type StoreStatusChanged struct {
	StoreID   int       `json:"store_id"`
	IsOpen    bool      `json:"is_open"`
	ChangedAt time.Time `json:"changed_at"`
}

func (e StoreStatusChanged) EventType() string { return "StoreStatusChanged" }
