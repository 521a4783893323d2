package cart

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	product "github.com/angelmondragon/ezshop-backend/internal/products"
	"github.com/angelmondragon/ezshop-backend/pkg/db/dbtest"
	"github.com/angelmondragon/ezshop-backend/pkg/db/models"
	"github.com/angelmondragon/ezshop-backend/pkg/enums"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var storeNow = time.Date(2026, 4, 2, 9, 30, 0, 0, time.UTC)

type storeFixture struct {
	store    *Store
	products *product.Repository
	carts    *Repository
	db       *gorm.DB
}

func newStoreFixture(t *testing.T) *storeFixture {
	t.Helper()
	client := dbtest.Open(t, "cart_store")
	products := product.NewRepository(client.DB())
	carts := NewRepository(client.DB())
	store, err := NewStore(client, products, carts, func() time.Time { return storeNow })
	require.NoError(t, err)
	return &storeFixture{store: store, products: products, carts: carts, db: client.DB()}
}

func (f *storeFixture) seed(t *testing.T, model string, priceCents int64, stock int) {
	t.Helper()
	require.NoError(t, f.products.CreateProduct(context.Background(), &models.Product{
		Model:             model,
		Category:          enums.ProductCategorySmartphone,
		SellingPriceCents: priceCents,
		StockQuantity:     stock,
		ArrivalDate:       time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	}))
}

func (f *storeFixture) stock(t *testing.T, model string) int {
	t.Helper()
	p, err := f.products.GetProduct(context.Background(), model)
	require.NoError(t, err)
	return p.StockQuantity
}

func lineQuantity(cart *models.Cart, model string) int {
	for _, line := range cart.Lines {
		if line.ProductModel == model {
			return line.Quantity
		}
	}
	return 0
}

func TestNewStoreRequiresDependencies(t *testing.T) {
	_, err := NewStore(nil, nil, nil, nil)
	assert.Error(t, err)
}

func TestScenarioAddRemoveCheckout(t *testing.T) {
	f := newStoreFixture(t)
	ctx := context.Background()
	f.seed(t, "m1", 10000, 5)

	require.NoError(t, f.store.AddLine(ctx, "alice", "m1"))
	cart, err := f.store.GetCurrentCart(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, int64(10000), cart.TotalCents)
	assert.Equal(t, 4, f.stock(t, "m1"))

	require.NoError(t, f.store.AddLine(ctx, "alice", "m1"))
	cart, err = f.store.GetCurrentCart(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, cart.Lines, 1)
	assert.Equal(t, 2, lineQuantity(cart, "m1"))
	assert.Equal(t, int64(20000), cart.TotalCents)
	assert.Equal(t, 3, f.stock(t, "m1"))

	require.NoError(t, f.store.RemoveLine(ctx, "alice", "m1"))
	cart, err = f.store.GetCurrentCart(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, 1, lineQuantity(cart, "m1"))
	assert.Equal(t, int64(10000), cart.TotalCents)
	assert.Equal(t, 4, f.stock(t, "m1"))

	paid, err := f.store.Checkout(ctx, "alice")
	require.NoError(t, err)
	assert.True(t, paid.Paid)
	require.NotNil(t, paid.PaymentDate)
	assert.Equal(t, "2026-04-02", paid.PaymentDate.Format("2006-01-02"))
	assert.Equal(t, int64(10000), paid.TotalCents)
	require.Len(t, paid.Lines, 1)
	require.NotNil(t, paid.Lines[0].Product)
	assert.Equal(t, 4, f.stock(t, "m1"))

	_, err = f.store.Checkout(ctx, "alice")
	assert.ErrorIs(t, err, ErrCartNotFound)

	history, err := f.store.GetPastCarts(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, paid.ID, history[0].ID)

	current, err := f.store.GetCurrentCart(ctx, "alice")
	require.NoError(t, err)
	assert.Zero(t, current.TotalCents)
	assert.Empty(t, current.Lines)
}

func TestAddLineEmptyStockLeavesStateUntouched(t *testing.T) {
	f := newStoreFixture(t)
	ctx := context.Background()
	f.seed(t, "sold-out", 10000, 0)

	err := f.store.AddLine(ctx, "bob", "sold-out")
	assert.ErrorIs(t, err, product.ErrEmptyStock)
	assert.Equal(t, 0, f.stock(t, "sold-out"))

	_, err = f.carts.FindCurrent(ctx, "bob", false)
	assert.ErrorIs(t, err, ErrCartNotFound)
}

func TestAddLineUnknownProduct(t *testing.T) {
	f := newStoreFixture(t)
	err := f.store.AddLine(context.Background(), "bob", "ghost")
	assert.ErrorIs(t, err, product.ErrProductNotFound)
}

func TestAddThenRemoveRestoresState(t *testing.T) {
	f := newStoreFixture(t)
	ctx := context.Background()
	f.seed(t, "m1", 2500, 2)

	require.NoError(t, f.store.AddLine(ctx, "carol", "m1"))
	require.NoError(t, f.store.RemoveLine(ctx, "carol", "m1"))

	assert.Equal(t, 2, f.stock(t, "m1"))
	cart, err := f.carts.FindCurrent(ctx, "carol", false)
	require.NoError(t, err)
	assert.Zero(t, cart.TotalCents)
	assert.Empty(t, cart.Lines)
}

func TestRemoveLineErrors(t *testing.T) {
	f := newStoreFixture(t)
	ctx := context.Background()
	f.seed(t, "m1", 100, 3)
	f.seed(t, "m2", 100, 3)

	assert.ErrorIs(t, f.store.RemoveLine(ctx, "dan", "ghost"), product.ErrProductNotFound)
	assert.ErrorIs(t, f.store.RemoveLine(ctx, "dan", "m1"), ErrCartNotFound)

	require.NoError(t, f.store.AddLine(ctx, "dan", "m1"))
	assert.ErrorIs(t, f.store.RemoveLine(ctx, "dan", "m2"), ErrProductNotInCart)

	require.NoError(t, f.store.RemoveLine(ctx, "dan", "m1"))
	// the cart exists but is empty
	assert.ErrorIs(t, f.store.RemoveLine(ctx, "dan", "m1"), ErrCartNotFound)
}

func TestClearCartRestoresStock(t *testing.T) {
	f := newStoreFixture(t)
	ctx := context.Background()
	f.seed(t, "m1", 100, 3)
	f.seed(t, "m2", 300, 1)

	assert.ErrorIs(t, f.store.ClearCart(ctx, "erin"), ErrCartNotFound)

	require.NoError(t, f.store.AddLine(ctx, "erin", "m1"))
	require.NoError(t, f.store.AddLine(ctx, "erin", "m1"))
	require.NoError(t, f.store.AddLine(ctx, "erin", "m2"))
	assert.Equal(t, 1, f.stock(t, "m1"))
	assert.Equal(t, 0, f.stock(t, "m2"))

	require.NoError(t, f.store.ClearCart(ctx, "erin"))
	assert.Equal(t, 3, f.stock(t, "m1"))
	assert.Equal(t, 1, f.stock(t, "m2"))

	cart, err := f.carts.FindCurrent(ctx, "erin", false)
	require.NoError(t, err)
	assert.Zero(t, cart.TotalCents)
	assert.Empty(t, cart.Lines)
}

func TestCheckoutEmptyCart(t *testing.T) {
	f := newStoreFixture(t)
	ctx := context.Background()
	f.seed(t, "m1", 100, 1)

	_, err := f.store.Checkout(ctx, "fay")
	assert.ErrorIs(t, err, ErrCartNotFound)

	require.NoError(t, f.store.AddLine(ctx, "fay", "m1"))
	require.NoError(t, f.store.RemoveLine(ctx, "fay", "m1"))

	_, err = f.store.Checkout(ctx, "fay")
	assert.ErrorIs(t, err, ErrEmptyCart)
	assert.Equal(t, 1, f.stock(t, "m1"))
}

func TestCheckoutLastUnit(t *testing.T) {
	f := newStoreFixture(t)
	ctx := context.Background()
	f.seed(t, "m1", 100, 1)

	require.NoError(t, f.store.AddLine(ctx, "gus", "m1"))
	assert.Equal(t, 0, f.stock(t, "m1"))

	paid, err := f.store.Checkout(ctx, "gus")
	require.NoError(t, err)
	assert.True(t, paid.Paid)
	assert.Equal(t, 0, f.stock(t, "m1"))
}

func TestCheckoutFailsWhenProductDeleted(t *testing.T) {
	f := newStoreFixture(t)
	ctx := context.Background()
	f.seed(t, "m1", 100, 2)

	require.NoError(t, f.store.AddLine(ctx, "hal", "m1"))
	require.NoError(t, f.products.DeleteProduct(ctx, "m1"))

	_, err := f.store.Checkout(ctx, "hal")
	assert.ErrorIs(t, err, product.ErrProductNotFound)

	cart, err := f.carts.FindCurrent(ctx, "hal", false)
	require.NoError(t, err)
	assert.False(t, cart.Paid)
}

func TestStockNeverNegative(t *testing.T) {
	f := newStoreFixture(t)
	ctx := context.Background()
	f.seed(t, "m1", 100, 2)

	require.NoError(t, f.store.AddLine(ctx, "ivy", "m1"))
	require.NoError(t, f.store.AddLine(ctx, "jon", "m1"))
	assert.ErrorIs(t, f.store.AddLine(ctx, "ivy", "m1"), product.ErrEmptyStock)
	assert.GreaterOrEqual(t, f.stock(t, "m1"), 0)
}

func TestOneCurrentCartPerCustomer(t *testing.T) {
	f := newStoreFixture(t)
	ctx := context.Background()
	f.seed(t, "m1", 100, 5)
	f.seed(t, "m2", 100, 5)

	require.NoError(t, f.store.AddLine(ctx, "kim", "m1"))
	require.NoError(t, f.store.AddLine(ctx, "kim", "m2"))

	var count int64
	require.NoError(t, f.db.Model(&models.Cart{}).Where("customer_id = ?", "kim").Count(&count).Error)
	assert.Equal(t, int64(1), count)

	err := f.carts.Create(ctx, &models.Cart{CustomerID: "kim"})
	assert.Error(t, err, "second unpaid cart must violate the unique index")
}

func TestAdminPurgeAndList(t *testing.T) {
	f := newStoreFixture(t)
	ctx := context.Background()
	f.seed(t, "m1", 100, 5)

	require.NoError(t, f.store.AddLine(ctx, "lee", "m1"))
	_, err := f.store.Checkout(ctx, "lee")
	require.NoError(t, err)
	require.NoError(t, f.store.AddLine(ctx, "lee", "m1"))
	require.NoError(t, f.store.AddLine(ctx, "max", "m1"))

	all, err := f.store.ListAllCarts(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	require.NoError(t, f.store.DeleteAllCarts(ctx))
	all, err = f.store.ListAllCarts(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)

	var lines int64
	require.NoError(t, f.db.Model(&models.CartLine{}).Count(&lines).Error)
	assert.Zero(t, lines)
}

func TestConcurrentAddsAllReflected(t *testing.T) {
	f := newStoreFixture(t)
	ctx := context.Background()
	f.seed(t, "m1", 100, 50)

	const adds = 20
	var wg sync.WaitGroup
	errs := make(chan error, adds)
	for i := 0; i < adds; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- f.store.AddLine(ctx, "alice", "m1")
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	assert.Equal(t, 50-adds, f.stock(t, "m1"))
	cart, err := f.carts.FindCurrent(ctx, "alice", false)
	require.NoError(t, err)
	assert.Equal(t, int64(adds*100), cart.TotalCents)
	require.Len(t, cart.Lines, 1)
	assert.Equal(t, adds, cart.Lines[0].Quantity)
}

func TestIncrementLineUsesStoreClock(t *testing.T) {
	f := newStoreFixture(t)
	ctx := context.Background()
	f.seed(t, "m1", 100, 5)

	require.NoError(t, f.store.AddLine(ctx, "alice", "m1"))
	require.NoError(t, f.store.AddLine(ctx, "alice", "m1"))

	var line models.CartLine
	require.NoError(t, f.db.Where("product_model = ?", "m1").First(&line).Error)
	assert.Equal(t, 2, line.Quantity)
	assert.True(t, line.UpdatedAt.Equal(storeNow), "updated_at %v", line.UpdatedAt)
	assert.True(t, line.CreatedAt.Equal(storeNow), "created_at %v", line.CreatedAt)
}

// lockLog records the order in which rows are locked within one operation.
type lockLog struct {
	mu     sync.Mutex
	events []string
}

func (l *lockLog) add(event string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, event)
}

func (l *lockLog) reset() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	events := l.events
	l.events = nil
	return events
}

type recordingBinder struct {
	inner catalogBinder
	log   *lockLog
}

func (b recordingBinder) Catalog(tx *gorm.DB) product.Catalog {
	return recordingCatalog{Catalog: b.inner.Catalog(tx), log: b.log}
}

type recordingCatalog struct {
	product.Catalog
	log *lockLog
}

func (c recordingCatalog) LockProduct(ctx context.Context, model string) (*models.Product, error) {
	c.log.add("product")
	return c.Catalog.LockProduct(ctx, model)
}

func (c recordingCatalog) AdjustStock(ctx context.Context, model string, delta int) (int, error) {
	c.log.add("product")
	return c.Catalog.AdjustStock(ctx, model, delta)
}

type recordingCarts struct {
	CartRepository
	log *lockLog
}

func (r recordingCarts) WithTx(tx *gorm.DB) CartRepository {
	return recordingCarts{CartRepository: r.CartRepository.WithTx(tx), log: r.log}
}

func (r recordingCarts) FindCurrent(ctx context.Context, customer string, lock bool) (*models.Cart, error) {
	if lock {
		r.log.add("cart")
	}
	return r.CartRepository.FindCurrent(ctx, customer, lock)
}

func TestCartLockedBeforeProducts(t *testing.T) {
	client := dbtest.Open(t, "cart_lock_order")
	products := product.NewRepository(client.DB())
	log := &lockLog{}
	store, err := NewStore(client, recordingBinder{inner: products, log: log}, recordingCarts{CartRepository: NewRepository(client.DB()), log: log}, func() time.Time { return storeNow })
	require.NoError(t, err)
	ctx := context.Background()
	for _, model := range []string{"m1", "m2"} {
		require.NoError(t, products.CreateProduct(ctx, &models.Product{
			Model:             model,
			Category:          enums.ProductCategoryLaptop,
			SellingPriceCents: 100,
			StockQuantity:     5,
			ArrivalDate:       time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		}))
	}

	steps := []struct {
		name string
		run  func() error
	}{
		{"add to a new cart", func() error { return store.AddLine(ctx, "alice", "m1") }},
		{"add to an existing cart", func() error { return store.AddLine(ctx, "alice", "m2") }},
		{"remove", func() error { return store.RemoveLine(ctx, "alice", "m2") }},
		{"clear", func() error { return store.ClearCart(ctx, "alice") }},
		{"add again", func() error { return store.AddLine(ctx, "alice", "m1") }},
		{"checkout", func() error { _, err := store.Checkout(ctx, "alice"); return err }},
	}
	for _, step := range steps {
		log.reset()
		require.NoError(t, step.run(), step.name)
		events := log.reset()
		require.NotEmpty(t, events, step.name)
		assert.Equal(t, "cart", events[0], "%s locked %v", step.name, events)
		assert.Contains(t, events, "product", step.name)
	}
}

type failingReadCarts struct {
	*Repository
}

func (failingReadCarts) FindByID(context.Context, uuid.UUID) (*models.Cart, error) {
	return nil, errors.New("read replica unavailable")
}

func TestCheckoutReturnsCartReadInTransaction(t *testing.T) {
	client := dbtest.Open(t, "cart_checkout_read")
	products := product.NewRepository(client.DB())
	store, err := NewStore(client, products, failingReadCarts{NewRepository(client.DB())}, func() time.Time { return storeNow })
	require.NoError(t, err)
	ctx := context.Background()
	require.NoError(t, products.CreateProduct(ctx, &models.Product{
		Model:             "m1",
		Category:          enums.ProductCategoryAppliance,
		SellingPriceCents: 4200,
		StockQuantity:     1,
		ArrivalDate:       time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	}))
	require.NoError(t, store.AddLine(ctx, "alice", "m1"))

	paid, err := store.Checkout(ctx, "alice")
	require.NoError(t, err)
	assert.True(t, paid.Paid)
	assert.Equal(t, int64(4200), paid.TotalCents)
	require.Len(t, paid.Lines, 1)
	require.NotNil(t, paid.PaymentDate)
	assert.Equal(t, "2026-04-02", paid.PaymentDate.Format("2006-01-02"))
}
