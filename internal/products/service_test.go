package product

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/angelmondragon/ezshop-backend/pkg/db/dbtest"
	"github.com/angelmondragon/ezshop-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/ezshop-backend/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var fixedNow = time.Date(2026, 3, 10, 15, 0, 0, 0, time.UTC)

func newTestService(t *testing.T) (Service, *gorm.DB) {
	t.Helper()
	client := dbtest.Open(t, "products_service")
	svc, err := NewService(NewRepository(client.DB()), client, func() time.Time { return fixedNow })
	require.NoError(t, err)
	return svc, client.DB()
}

func datePtr(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &t
}

func requireCode(t *testing.T, err error, code pkgerrors.Code) {
	t.Helper()
	typed := pkgerrors.As(err)
	if typed == nil {
		t.Fatalf("expected %s, got untyped error %v", code, err)
	}
	if typed.Code() != code {
		t.Fatalf("expected %s, got %s (%v)", code, typed.Code(), err)
	}
}

func TestNewServiceRequiresDependencies(t *testing.T) {
	if _, err := NewService(nil, nil, nil); err == nil {
		t.Fatal("expected error without repository")
	}
	if _, err := NewService(NewRepository(nil), nil, nil); err == nil {
		t.Fatal("expected error without transaction runner")
	}
}

func TestRegisterArrival(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	details := "  128GB  "
	dto, err := svc.RegisterArrival(ctx, RegisterArrivalInput{
		Model:      "pixel8",
		Category:   "smartphone",
		Quantity:   10,
		PriceCents: 69900,
		Details:    &details,
	})
	require.NoError(t, err)
	assert.Equal(t, "Smartphone", dto.Category)
	assert.Equal(t, "2026-03-10", dto.ArrivalDate)
	assert.Equal(t, "699", dto.SellingPrice.String())
	require.NotNil(t, dto.Details)
	assert.Equal(t, "128GB", *dto.Details)

	_, err = svc.RegisterArrival(ctx, RegisterArrivalInput{Model: "pixel8", Category: "Smartphone", Quantity: 1, PriceCents: 1})
	requireCode(t, err, pkgerrors.CodeProductAlreadyExists)

	_, err = svc.RegisterArrival(ctx, RegisterArrivalInput{
		Model: "future", Category: "Laptop", Quantity: 1, PriceCents: 1,
		ArrivalDate: datePtr(2026, 3, 11),
	})
	requireCode(t, err, pkgerrors.CodeInvalidDate)
}

func TestRegisterArrivalAggregatesValidation(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.RegisterArrival(context.Background(), RegisterArrivalInput{Category: "Toaster"})
	requireCode(t, err, pkgerrors.CodeValidation)

	details, ok := pkgerrors.As(err).Details().(map[string]any)
	require.True(t, ok)
	assert.Len(t, details["errors"], 4)
}

func TestSell(t *testing.T) {
	svc, conn := newTestService(t)
	ctx := context.Background()
	seedProduct(t, conn, "ipad", enums.ProductCategorySmartphone, 50000, 3)

	got, err := svc.Sell(ctx, "ipad", 2, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, got.Quantity)

	product, err := svc.GetProduct(ctx, "ipad")
	require.NoError(t, err)
	require.NotNil(t, product.SellingDate)
	assert.Equal(t, "2026-03-10", *product.SellingDate)

	_, err = svc.Sell(ctx, "ipad", 2, nil)
	requireCode(t, err, pkgerrors.CodeLowStock)

	_, err = svc.Sell(ctx, "ipad", 1, datePtr(2026, 1, 4))
	requireCode(t, err, pkgerrors.CodeInvalidDate)

	_, err = svc.Sell(ctx, "ipad", 1, datePtr(2026, 3, 11))
	requireCode(t, err, pkgerrors.CodeInvalidDate)

	_, err = svc.Sell(ctx, "ipad", 1, datePtr(2026, 1, 5))
	require.NoError(t, err)

	_, err = svc.Sell(ctx, "ipad", 1, nil)
	requireCode(t, err, pkgerrors.CodeEmptyStock)

	_, err = svc.Sell(ctx, "nope", 1, nil)
	requireCode(t, err, pkgerrors.CodeProductNotFound)

	_, err = svc.Sell(ctx, "ipad", 0, nil)
	requireCode(t, err, pkgerrors.CodeValidation)
}

func TestChangeQuantity(t *testing.T) {
	svc, conn := newTestService(t)
	ctx := context.Background()
	seedProduct(t, conn, "dryer", enums.ProductCategoryAppliance, 30000, 0)

	got, err := svc.ChangeQuantity(ctx, "dryer", 5, datePtr(2026, 2, 1))
	require.NoError(t, err)
	assert.Equal(t, 5, got.Quantity)

	_, err = svc.ChangeQuantity(ctx, "dryer", -1, nil)
	requireCode(t, err, pkgerrors.CodeValidation)

	_, err = svc.ChangeQuantity(ctx, "dryer", 1, datePtr(2025, 12, 31))
	requireCode(t, err, pkgerrors.CodeInvalidDate)

	_, err = svc.ChangeQuantity(ctx, "ghost", 1, nil)
	requireCode(t, err, pkgerrors.CodeProductNotFound)
}

func TestListProductsGrouping(t *testing.T) {
	svc, conn := newTestService(t)
	ctx := context.Background()
	seedProduct(t, conn, "s1", enums.ProductCategorySmartphone, 100, 0)
	seedProduct(t, conn, "s2", enums.ProductCategorySmartphone, 100, 1)
	seedProduct(t, conn, "l1", enums.ProductCategoryLaptop, 100, 1)

	all, err := svc.ListProducts(ctx, ListProductsInput{})
	require.NoError(t, err)
	assert.Len(t, all, 3)

	phones, err := svc.ListProducts(ctx, ListProductsInput{Grouping: "category", Category: "Smartphone"})
	require.NoError(t, err)
	assert.Len(t, phones, 2)

	available, err := svc.ListAvailableProducts(ctx, ListProductsInput{Grouping: "category", Category: "Smartphone"})
	require.NoError(t, err)
	require.Len(t, available, 1)
	assert.Equal(t, "s2", available[0].Model)

	none, err := svc.ListAvailableProducts(ctx, ListProductsInput{Grouping: "model", Model: "s1"})
	require.NoError(t, err)
	assert.Empty(t, none)

	_, err = svc.ListProducts(ctx, ListProductsInput{Grouping: "model", Model: "ghost"})
	requireCode(t, err, pkgerrors.CodeProductNotFound)

	invalid := []ListProductsInput{
		{Category: "Laptop"},
		{Model: "s1"},
		{Grouping: "category"},
		{Grouping: "category", Category: "Laptop", Model: "l1"},
		{Grouping: "model"},
		{Grouping: "model", Model: "l1", Category: "Laptop"},
		{Grouping: "brand"},
	}
	for _, input := range invalid {
		_, err := svc.ListProducts(ctx, input)
		requireCode(t, err, pkgerrors.CodeInvalidGrouping)
	}
}

func TestDeleteProducts(t *testing.T) {
	svc, conn := newTestService(t)
	ctx := context.Background()
	seedProduct(t, conn, "a", enums.ProductCategoryLaptop, 100, 1)
	seedProduct(t, conn, "b", enums.ProductCategoryLaptop, 100, 1)

	require.NoError(t, svc.DeleteProduct(ctx, "a"))
	requireCode(t, svc.DeleteProduct(ctx, "a"), pkgerrors.CodeProductNotFound)
	require.NoError(t, svc.DeleteAllProducts(ctx))

	all, err := svc.ListProducts(ctx, ListProductsInput{})
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestTranslateError(t *testing.T) {
	cases := map[error]pkgerrors.Code{
		ErrProductNotFound:      pkgerrors.CodeProductNotFound,
		ErrProductAlreadyExists: pkgerrors.CodeProductAlreadyExists,
		ErrEmptyStock:           pkgerrors.CodeEmptyStock,
		ErrLowStock:             pkgerrors.CodeLowStock,
		ErrInvalidDate:          pkgerrors.CodeInvalidDate,
		ErrInvalidGrouping:      pkgerrors.CodeInvalidGrouping,
		ErrNegativeStock:        pkgerrors.CodeInternal,
		errors.New("db down"):   pkgerrors.CodeInternal,
	}
	for in, want := range cases {
		requireCode(t, TranslateError(in), want)
	}
	if TranslateError(nil) != nil {
		t.Fatal("expected nil passthrough")
	}
}
