package jsonfile

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/egannguyen/go-food-delivery/internal/entity"
)

func sampleDataset() *entity.Dataset {
	return &entity.Dataset{
		Users: []entity.User{
			{ID: 1, Name: "Ana", Email: "ana@demo.com", PasswordHash: "$2a$04$abc", Role: entity.RoleConsumer},
		},
		Stores: []entity.Store{
			{ID: 1, OwnerID: 2, Name: "Napoli", Description: "Pizzas", Address: "Av. 1", Phone: "555", IsOpen: true},
		},
		Products: []entity.Product{
			{ID: 1, Name: "Margarita", Price: 8.5, Image: "m.png", StoreID: 1},
		},
		Orders: []entity.Order{
			{
				ID:            1,
				UserID:        1,
				StoreID:       1,
				Products:      []entity.OrderItem{{ID: 1, Name: "Margarita", Price: 8.5, Quantity: 2}},
				Total:         17,
				Address:       "Calle 2",
				PaymentMethod: "cash",
				Status:        entity.StatusAccepted,
				CreatedAt:     time.Date(2024, 5, 1, 12, 30, 0, 0, time.UTC),
			},
		},
	}
}

func TestPersister_RoundTrip(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	p, err := New(dir)
	require.NoError(t, err)

	want := sampleDataset()
	require.NoError(t, p.SaveUsers(ctx, want.Users))
	require.NoError(t, p.SaveStores(ctx, want.Stores))
	require.NoError(t, p.SaveProducts(ctx, want.Products))
	require.NoError(t, p.SaveOrders(ctx, want.Orders))

	reopened, err := New(dir)
	require.NoError(t, err)
	got, err := reopened.Load(ctx)
	require.NoError(t, err)

	assert.Equal(t, want, got)
}

func TestPersister_MissingFilesLoadEmpty(t *testing.T) {
	p, err := New(filepath.Join(t.TempDir(), "nested", "data"))
	require.NoError(t, err)

	ds, err := p.Load(context.Background())
	require.NoError(t, err)
	assert.True(t, ds.Empty())
}

func TestPersister_UsesSourceFieldNames(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	p, err := New(dir)
	require.NoError(t, err)

	require.NoError(t, p.SaveOrders(ctx, sampleDataset().Orders))

	data, err := os.ReadFile(filepath.Join(dir, OrdersFile))
	require.NoError(t, err)
	for _, field := range []string{`"userId"`, `"storeId"`, `"paymentMethod"`, `"createdAt"`, `"status": "accepted"`} {
		assert.Contains(t, string(data), field)
	}
}

func TestPersister_LeavesNoTempFiles(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	p, err := New(dir)
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		require.NoError(t, p.SaveProducts(ctx, sampleDataset().Products))
	}

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, ProductsFile, entries[0].Name())
}

func TestPersister_CorruptFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, StoresFile), []byte("{not json"), 0o644))

	p, err := New(dir)
	require.NoError(t, err)

	_, err = p.Load(context.Background())
	assert.ErrorContains(t, err, StoresFile)
}
