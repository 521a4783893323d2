package cart

import (
	"context"
	"time"

	product "github.com/angelmondragon/ezshop-backend/internal/products"
	"github.com/angelmondragon/ezshop-backend/pkg/db/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CartRepository defines the persistence surface required by the cart store.
type CartRepository interface {
	WithTx(tx *gorm.DB) CartRepository
	FindCurrent(ctx context.Context, customer string, lock bool) (*models.Cart, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Cart, error)
	Create(ctx context.Context, cart *models.Cart) error
	ListPaid(ctx context.Context, customer string) ([]models.Cart, error)
	ListAll(ctx context.Context) ([]models.Cart, error)
	ListLines(ctx context.Context, cartID uuid.UUID) ([]models.CartLine, error)
	GetLine(ctx context.Context, cartID uuid.UUID, model string) (*models.CartLine, error)
	IncrementLine(ctx context.Context, cartID uuid.UUID, model string, at time.Time) error
	DecrementLine(ctx context.Context, cartID uuid.UUID, model string) error
	DeleteLine(ctx context.Context, cartID uuid.UUID, model string) error
	DeleteLines(ctx context.Context, cartID uuid.UUID) error
	AddTotal(ctx context.Context, cartID uuid.UUID, deltaCents int64) error
	ResetTotal(ctx context.Context, cartID uuid.UUID) error
	MarkPaid(ctx context.Context, cartID uuid.UUID, paymentDate time.Time) error
	DeleteAll(ctx context.Context) (int64, error)
}

// catalogBinder hands out the product catalog bound to a transaction.
type catalogBinder interface {
	Catalog(tx *gorm.DB) product.Catalog
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// cartStore is the store surface the service composes.
type cartStore interface {
	GetCurrentCart(ctx context.Context, customer string) (*models.Cart, error)
	GetPastCarts(ctx context.Context, customer string) ([]models.Cart, error)
	AddLine(ctx context.Context, customer, model string) error
	RemoveLine(ctx context.Context, customer, model string) error
	ClearCart(ctx context.Context, customer string) error
	Checkout(ctx context.Context, customer string) (*models.Cart, error)
	DeleteAllCarts(ctx context.Context) error
	ListAllCarts(ctx context.Context) ([]models.Cart, error)
}
