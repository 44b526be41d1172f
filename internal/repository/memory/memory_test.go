package memory

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/egannguyen/go-food-delivery/internal/entity"
)

// flakyPersister records what was saved and fails while fail is set.
type flakyPersister struct {
	NopPersister

	mu     sync.Mutex
	fail   bool
	orders [][]entity.Order
	prods  [][]entity.Product
}

var errDiskFull = errors.New("disk full")

func (p *flakyPersister) setFail(v bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.fail = v
}

func (p *flakyPersister) SaveOrders(_ context.Context, orders []entity.Order) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.fail {
		return errDiskFull
	}
	p.orders = append(p.orders, orders)
	return nil
}

func (p *flakyPersister) SaveProducts(_ context.Context, products []entity.Product) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.fail {
		return errDiskFull
	}
	p.prods = append(p.prods, products)
	return nil
}

func fixture() *entity.Dataset {
	return &entity.Dataset{
		Users: []entity.User{
			{ID: 1, Name: "Ana", Email: "ana@demo.com", Role: entity.RoleConsumer},
			{ID: 2, Name: "Carlos", Email: "carlos@demo.com", Role: entity.RoleStore},
		},
		Stores: []entity.Store{
			{ID: 1, OwnerID: 2, Name: "Napoli", IsOpen: true},
		},
		Products: []entity.Product{
			{ID: 1, Name: "Margarita", Price: 8.5, StoreID: 1},
			{ID: 2, Name: "Pepperoni", Price: 9.75, StoreID: 1},
			{ID: 3, Name: "Lasaña", Price: 11, StoreID: 1},
		},
	}
}

func newOrder(userID int) entity.Order {
	return entity.Order{
		UserID:   userID,
		StoreID:  1,
		Products: []entity.OrderItem{{ID: 1, Name: "Margarita", Price: 8.5, Quantity: 1}},
		Total:    8.5,
		Status:   entity.StatusPending,
	}
}

func TestOrderRepository_CreateAssignsSequentialIDs(t *testing.T) {
	ctx := context.Background()
	p := &flakyPersister{}
	repos := FromDataset(fixture(), p)

	first, err := repos.Orders.Create(ctx, newOrder(1))
	require.NoError(t, err)
	second, err := repos.Orders.Create(ctx, newOrder(1))
	require.NoError(t, err)

	assert.Equal(t, 1, first.ID)
	assert.Equal(t, 2, second.ID)
	require.Len(t, p.orders, 2)
	assert.Len(t, p.orders[1], 2)
}

func TestOrderRepository_SeedsCounterFromExistingIDs(t *testing.T) {
	ds := fixture()
	ds.Orders = []entity.Order{{ID: 41, UserID: 1, Status: entity.StatusDelivered}}
	repos := FromDataset(ds, NopPersister{})

	o, err := repos.Orders.Create(context.Background(), newOrder(1))
	require.NoError(t, err)
	assert.Equal(t, 42, o.ID)
}

func TestOrderRepository_FailedSaveLeavesStateUnchanged(t *testing.T) {
	ctx := context.Background()
	p := &flakyPersister{}
	repos := FromDataset(fixture(), p)

	created, err := repos.Orders.Create(ctx, newOrder(1))
	require.NoError(t, err)

	p.setFail(true)

	_, err = repos.Orders.Create(ctx, newOrder(1))
	var pe *entity.PersistenceError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, "orders", pe.Collection)
	assert.ErrorIs(t, err, errDiskFull)

	_, err = repos.Orders.Update(ctx, created.ID, func(o *entity.Order) error {
		o.Status = entity.StatusAccepted
		return nil
	})
	assert.ErrorIs(t, err, entity.ErrPersistence)

	all, err := repos.Orders.Find(ctx, nil)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, entity.StatusPending, all[0].Status)

	p.setFail(false)

	// The id handed out during the failed create is not reused.
	next, err := repos.Orders.Create(ctx, newOrder(1))
	require.NoError(t, err)
	assert.Equal(t, 3, next.ID)
}

func TestOrderRepository_UpdateMutateErrorSavesNothing(t *testing.T) {
	ctx := context.Background()
	p := &flakyPersister{}
	repos := FromDataset(fixture(), p)

	created, err := repos.Orders.Create(ctx, newOrder(1))
	require.NoError(t, err)

	boom := errors.New("rejected")
	o, err := repos.Orders.Update(ctx, created.ID, func(o *entity.Order) error {
		o.Status = entity.StatusDelivered
		return boom
	})
	assert.ErrorIs(t, err, boom)
	assert.Zero(t, o.ID)
	assert.Len(t, p.orders, 1)

	got, err := repos.Orders.FindByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.StatusPending, got.Status)
}

func TestOrderRepository_NotFound(t *testing.T) {
	ctx := context.Background()
	repos := FromDataset(fixture(), NopPersister{})

	_, err := repos.Orders.FindByID(ctx, 99)
	assert.ErrorIs(t, err, entity.ErrNotFound)

	called := false
	_, err = repos.Orders.Update(ctx, 99, func(o *entity.Order) error {
		called = true
		return nil
	})
	var nf *entity.NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "order", nf.Kind)
	assert.Equal(t, 99, nf.ID)
	assert.False(t, called)
}

func TestOrderRepository_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	repos := FromDataset(fixture(), NopPersister{})

	created, err := repos.Orders.Create(ctx, newOrder(1))
	require.NoError(t, err)
	created.Products[0].Quantity = 100

	got, err := repos.Orders.FindByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.Products[0].Quantity)

	got.Products[0].Name = "changed"
	again, err := repos.Orders.FindByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Margarita", again.Products[0].Name)
}

func TestProductRepository_DeletedIDsAreNotReused(t *testing.T) {
	ctx := context.Background()
	repos := FromDataset(fixture(), &flakyPersister{})

	require.NoError(t, repos.Products.Delete(ctx, 3))

	p, err := repos.Products.Create(ctx, entity.ProductInput{Name: "Calzone", Price: 10, StoreID: 1})
	require.NoError(t, err)
	assert.Equal(t, 4, p.ID)

	_, err = repos.Products.Update(ctx, 3, entity.ProductInput{Name: "Lasaña", Price: 11, StoreID: 1})
	assert.ErrorIs(t, err, entity.ErrNotFound)

	err = repos.Products.Delete(ctx, 3)
	assert.ErrorIs(t, err, entity.ErrNotFound)
}

func TestProductRepository_FindByStoreKeepsInsertionOrder(t *testing.T) {
	ctx := context.Background()
	repos := FromDataset(fixture(), NopPersister{})

	_, err := repos.Products.Create(ctx, entity.ProductInput{Name: "Pizza", Price: 9.99, StoreID: 1})
	require.NoError(t, err)

	products, err := repos.Products.FindByStore(ctx, 1)
	require.NoError(t, err)

	names := make([]string, 0, len(products))
	for _, p := range products {
		names = append(names, p.Name)
	}
	assert.Equal(t, []string{"Margarita", "Pepperoni", "Lasaña", "Pizza"}, names)

	none, err := repos.Products.FindByStore(ctx, 99)
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)
}

func TestStoreRepository_SetOpen(t *testing.T) {
	ctx := context.Background()
	repos := FromDataset(fixture(), NopPersister{})

	s, changed, err := repos.Stores.SetOpen(ctx, 1, false)
	require.NoError(t, err)
	assert.False(t, s.IsOpen)
	assert.True(t, changed)

	s, changed, err = repos.Stores.SetOpen(ctx, 1, false)
	require.NoError(t, err)
	assert.False(t, s.IsOpen)
	assert.False(t, changed)

	_, _, err = repos.Stores.SetOpen(ctx, 9, true)
	assert.ErrorIs(t, err, entity.ErrNotFound)

	owned, err := repos.Stores.FindByOwner(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, 1, owned.ID)

	_, err = repos.Stores.FindByOwner(ctx, 1)
	assert.ErrorIs(t, err, entity.ErrNotFound)
}

func TestUserRepository_FindByEmail(t *testing.T) {
	ctx := context.Background()
	repos := FromDataset(fixture(), NopPersister{})

	u, err := repos.Users.FindByEmail(ctx, "ANA@demo.com")
	require.NoError(t, err)
	assert.Equal(t, 1, u.ID)

	_, err = repos.Users.FindByEmail(ctx, "nobody@demo.com")
	assert.ErrorIs(t, err, entity.ErrNotFound)
}

func TestOrderRepository_ConcurrentUpdatesSerialize(t *testing.T) {
	ctx := context.Background()
	repos := FromDataset(fixture(), NopPersister{})

	created, err := repos.Orders.Create(ctx, newOrder(1))
	require.NoError(t, err)

	const workers = 20
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
	)
	start := make(chan struct{})
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			_, err := repos.Orders.Update(ctx, created.ID, func(o *entity.Order) error {
				if o.Status != entity.StatusPending {
					return errors.New("already claimed")
				}
				o.Status = entity.StatusAccepted
				return nil
			})
			if err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
			}
		}()
	}
	close(start)

	done := make(chan struct{})
	go func() { wg.Wait(); close(done) }()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("updates did not finish")
	}

	assert.Equal(t, 1, succeeded)
}

func TestOpen_LoadsFromPersister(t *testing.T) {
	repos, err := Open(context.Background(), NopPersister{})
	require.NoError(t, err)

	users, err := repos.Users.FindAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, users)
}
