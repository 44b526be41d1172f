// Package seed provides the demo dataset written on first start.
package seed

import (
	"fmt"

	"github.com/egannguyen/go-food-delivery/internal/entity"
	"github.com/egannguyen/go-food-delivery/internal/service"
)

// DemoPassword is the clear-text password of every demo account.
const DemoPassword = "123456"

type account struct {
	id    int
	name  string
	email string
	role  entity.Role
}

var accounts = []account{
	{1, "Ana Consumidora", "consumer@demo.com", entity.RoleConsumer},
	{2, "Carlos Tienda", "store@demo.com", entity.RoleStore},
	{3, "Diego Repartidor", "delivery@demo.com", entity.RoleDelivery},
	{4, "Lucía Tienda", "store2@demo.com", entity.RoleStore},
}

var stores = []entity.Store{
	{ID: 1, OwnerID: 2, Name: "Pizzería Napoli", Description: "Pizzas al horno de leña", Address: "Av. Principal 123", Phone: "555-0101", IsOpen: true},
	{ID: 2, OwnerID: 4, Name: "Sushi Zen", Description: "Rolls y nigiris frescos", Address: "Calle Secundaria 45", Phone: "555-0202", IsOpen: false},
}

var products = []entity.Product{
	{ID: 1, Name: "Pizza Margarita", Price: 8.50, Image: "https://placehold.co/300x200?text=Margarita", StoreID: 1},
	{ID: 2, Name: "Pizza Pepperoni", Price: 9.75, Image: "https://placehold.co/300x200?text=Pepperoni", StoreID: 1},
	{ID: 3, Name: "Lasaña", Price: 11.00, Image: "https://placehold.co/300x200?text=Lasana", StoreID: 1},
	{ID: 4, Name: "California Roll", Price: 7.25, Image: "https://placehold.co/300x200?text=California", StoreID: 2},
	{ID: 5, Name: "Nigiri de Salmón", Price: 6.50, Image: "https://placehold.co/300x200?text=Nigiri", StoreID: 2},
}

// Dataset returns the demo users, stores and products with passwords hashed at
// bcryptCost. It holds no orders.
func Dataset(bcryptCost int) (*entity.Dataset, error) {
	hash, err := service.HashPassword(DemoPassword, bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to seed users: %w", err)
	}

	ds := &entity.Dataset{
		Users:    make([]entity.User, 0, len(accounts)),
		Stores:   append([]entity.Store(nil), stores...),
		Products: append([]entity.Product(nil), products...),
		Orders:   []entity.Order{},
	}
	for _, a := range accounts {
		ds.Users = append(ds.Users, entity.User{
			ID:           a.id,
			Name:         a.name,
			Email:        a.email,
			PasswordHash: hash,
			Role:         a.role,
		})
	}
	return ds, nil
}
