package postgres

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/egannguyen/go-food-delivery/internal/entity"
)

var placedAt = time.Date(2024, 6, 1, 18, 30, 0, 123456000, time.UTC)

func newMockPersister(t *testing.T) (*persister, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		db.Close()
	})
	return &persister{db: db}, mock
}

func q(sql string) string { return regexp.QuoteMeta(sql) }

func TestSaveOrders_ReplacesInOneTransaction(t *testing.T) {
	p, mock := newMockPersister(t)

	orders := []entity.Order{{
		ID:      1,
		UserID:  1,
		StoreID: 1,
		Products: []entity.OrderItem{
			{ID: 1, Name: "Margarita", Price: 8.5, Quantity: 2},
			{ID: 2, Name: "Pepperoni", Price: 9.75, Quantity: 1},
		},
		Total:         26.75,
		Address:       "Calle 1",
		PaymentMethod: "cash",
		Status:        entity.StatusPending,
		CreatedAt:     placedAt,
	}}

	mock.ExpectBegin()
	mock.ExpectExec(q("DELETE FROM orders")).WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectExec(q("INSERT INTO orders (")).
		WithArgs(1, 1, 1, 26.75, "Calle 1", "cash", "pending", placedAt).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(q("INSERT INTO order_items (")).
		WithArgs(1, 0, 1, "Margarita", 8.5, 2).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(q("INSERT INTO order_items (")).
		WithArgs(1, 1, 2, "Pepperoni", 9.75, 1).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	require.NoError(t, p.SaveOrders(context.Background(), orders))
}

func TestSaveUsers_RollsBackOnInsertFailure(t *testing.T) {
	p, mock := newMockPersister(t)
	insertErr := errors.New("duplicate key")

	mock.ExpectBegin()
	mock.ExpectExec(q("DELETE FROM users")).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(q("INSERT INTO users (")).
		WithArgs(1, "Ana", "consumer@demo.com", "hash", "consumer").
		WillReturnError(insertErr)
	mock.ExpectRollback()

	err := p.SaveUsers(context.Background(), []entity.User{
		{ID: 1, Name: "Ana", Email: "consumer@demo.com", PasswordHash: "hash", Role: entity.RoleConsumer},
		{ID: 2, Name: "Carlos", Email: "store@demo.com", PasswordHash: "hash", Role: entity.RoleStore},
	})
	require.ErrorIs(t, err, insertErr)
	assert.ErrorContains(t, err, "failed to insert user 1")
}

func TestSaveStores_RollsBackWhenClearFails(t *testing.T) {
	p, mock := newMockPersister(t)

	mock.ExpectBegin()
	mock.ExpectExec(q("DELETE FROM stores")).WillReturnError(errors.New("connection reset"))
	mock.ExpectRollback()

	err := p.SaveStores(context.Background(), []entity.Store{{ID: 1, OwnerID: 2, Name: "Napoli"}})
	assert.ErrorContains(t, err, "failed to clear stores")
}

func TestSaveProducts_EmptyCollectionClearsTable(t *testing.T) {
	p, mock := newMockPersister(t)

	mock.ExpectBegin()
	mock.ExpectExec(q("DELETE FROM products")).WillReturnResult(sqlmock.NewResult(0, 5))
	mock.ExpectCommit()

	require.NoError(t, p.SaveProducts(context.Background(), nil))
}

// expectCatalog queues the three non-order queries run by Load.
func expectCatalog(mock sqlmock.Sqlmock) {
	mock.ExpectQuery(q("FROM users")).WillReturnRows(
		sqlmock.NewRows([]string{"id", "name", "email", "password_hash", "role"}).
			AddRow(1, "Ana", "consumer@demo.com", "hash", "consumer"))
	mock.ExpectQuery(q("FROM stores")).WillReturnRows(
		sqlmock.NewRows([]string{"id", "owner_id", "name", "description", "address", "phone", "is_open"}).
			AddRow(1, 2, "Napoli", "Pizzas", "Av. 1", "555", true))
	mock.ExpectQuery(q("FROM products")).WillReturnRows(
		sqlmock.NewRows([]string{"id", "name", "price", "image", "store_id"}).
			AddRow(1, "Margarita", 8.5, "m.png", 1))
}

func TestLoad_MapsRowsAndOrderItems(t *testing.T) {
	p, mock := newMockPersister(t)

	expectCatalog(mock)
	mock.ExpectQuery(q("FROM orders")).WillReturnRows(
		sqlmock.NewRows([]string{"id", "user_id", "store_id", "total", "address", "payment_method", "status", "created_at"}).
			AddRow(1, 1, 1, 17.0, "Calle 1", "cash", "accepted", placedAt.In(time.FixedZone("CEST", 2*3600))))
	mock.ExpectQuery(q("FROM order_items")).WithArgs(1).WillReturnRows(
		sqlmock.NewRows([]string{"product_id", "name", "price", "quantity"}).
			AddRow(1, "Margarita", 8.5, 2))

	ds, err := p.Load(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []entity.User{{ID: 1, Name: "Ana", Email: "consumer@demo.com", PasswordHash: "hash", Role: entity.RoleConsumer}}, ds.Users)
	assert.Equal(t, []entity.Store{{ID: 1, OwnerID: 2, Name: "Napoli", Description: "Pizzas", Address: "Av. 1", Phone: "555", IsOpen: true}}, ds.Stores)
	assert.Equal(t, []entity.Product{{ID: 1, Name: "Margarita", Price: 8.5, Image: "m.png", StoreID: 1}}, ds.Products)

	require.Len(t, ds.Orders, 1)
	o := ds.Orders[0]
	assert.Equal(t, entity.StatusAccepted, o.Status)
	assert.Equal(t, placedAt, o.CreatedAt)
	assert.Equal(t, []entity.OrderItem{{ID: 1, Name: "Margarita", Price: 8.5, Quantity: 2}}, o.Products)
}

func TestLoad_OrderItemIterationError(t *testing.T) {
	p, mock := newMockPersister(t)
	iterErr := errors.New("connection lost")

	expectCatalog(mock)
	mock.ExpectQuery(q("FROM orders")).WillReturnRows(
		sqlmock.NewRows([]string{"id", "user_id", "store_id", "total", "address", "payment_method", "status", "created_at"}).
			AddRow(1, 1, 1, 17.0, "Calle 1", "cash", "pending", placedAt))
	mock.ExpectQuery(q("FROM order_items")).WithArgs(1).WillReturnRows(
		sqlmock.NewRows([]string{"product_id", "name", "price", "quantity"}).
			AddRow(1, "Margarita", 8.5, 1).
			AddRow(2, "Pepperoni", 9.75, 1).
			RowError(1, iterErr))

	_, err := p.Load(context.Background())
	require.ErrorIs(t, err, iterErr)
	assert.ErrorContains(t, err, "failed to iterate order items")
}

func TestLoad_QueryFailure(t *testing.T) {
	p, mock := newMockPersister(t)

	mock.ExpectQuery(q("FROM users")).WillReturnError(errors.New("relation does not exist"))

	_, err := p.Load(context.Background())
	assert.ErrorContains(t, err, "failed to query users")
}

func TestMigrateDB(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS users .*CREATE TABLE IF NOT EXISTS order_items`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, migrateDB(context.Background(), db))
	assert.NoError(t, mock.ExpectationsWereMet())
}
