package cart

import (
	"context"
	"errors"
	"fmt"
	"time"

	product "github.com/angelmondragon/ezshop-backend/internal/products"
	"github.com/angelmondragon/ezshop-backend/pkg/dates"
	"github.com/angelmondragon/ezshop-backend/pkg/db"
	"github.com/angelmondragon/ezshop-backend/pkg/db/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const createCartSavepoint = "create_current_cart"

// Store owns the add/remove/clear/checkout protocol. Every mutation runs in a
// single transaction that touches both the cart rows and product stock.
// The cart row is always locked before any product row.
type Store struct {
	tx      txRunner
	catalog catalogBinder
	carts   CartRepository
	now     func() time.Time
}

// NewStore wires the store to its catalog and cart persistence.
func NewStore(tx txRunner, catalog catalogBinder, carts CartRepository, now func() time.Time) (*Store, error) {
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if catalog == nil {
		return nil, fmt.Errorf("product catalog required")
	}
	if carts == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	if now == nil {
		now = time.Now
	}
	return &Store{tx: tx, catalog: catalog, carts: carts, now: now}, nil
}

// GetCurrentCart returns the customer's unpaid cart, or an empty unsaved cart
// when there is none or it holds nothing.
func (s *Store) GetCurrentCart(ctx context.Context, customer string) (*models.Cart, error) {
	cart, err := s.carts.FindCurrent(ctx, customer, false)
	if err != nil {
		if errors.Is(err, ErrCartNotFound) {
			return emptyCart(customer), nil
		}
		return nil, err
	}
	if cart.TotalCents <= 0 {
		return emptyCart(customer), nil
	}
	return cart, nil
}

func emptyCart(customer string) *models.Cart {
	return &models.Cart{CustomerID: customer, Lines: []models.CartLine{}}
}

func (s *Store) GetPastCarts(ctx context.Context, customer string) ([]models.Cart, error) {
	return s.carts.ListPaid(ctx, customer)
}

// AddLine reserves one unit of model in the customer's current cart,
// creating the cart on first use.
func (s *Store) AddLine(ctx context.Context, customer, model string) error {
	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		catalog := s.catalog.Catalog(tx)
		carts := s.carts.WithTx(tx)

		cart, cartErr := carts.FindCurrent(ctx, customer, true)
		if cartErr != nil && !errors.Is(cartErr, ErrCartNotFound) {
			return cartErr
		}

		p, err := catalog.LockProduct(ctx, model)
		if err != nil {
			return err
		}
		if p.StockQuantity == 0 {
			return product.ErrEmptyStock
		}

		if cartErr != nil {
			if cart, err = createCurrent(ctx, tx, carts, customer); err != nil {
				return err
			}
		}

		if err := carts.IncrementLine(ctx, cart.ID, model, s.now().UTC()); err != nil {
			return err
		}
		if _, err := catalog.AdjustStock(ctx, model, -1); err != nil {
			return err
		}
		return carts.AddTotal(ctx, cart.ID, p.SellingPriceCents)
	})
}

// createCurrent inserts the customer's current cart. A concurrent insert
// trips the one-unpaid-cart index; the savepoint keeps the transaction usable
// so the winner's row can be read back.
func createCurrent(ctx context.Context, tx *gorm.DB, carts CartRepository, customer string) (*models.Cart, error) {
	if err := tx.SavePoint(createCartSavepoint).Error; err != nil {
		return nil, err
	}
	cart := &models.Cart{ID: uuid.New(), CustomerID: customer}
	if err := carts.Create(ctx, cart); err != nil {
		if !db.IsUniqueViolation(err, "") {
			return nil, err
		}
		if err := tx.RollbackTo(createCartSavepoint).Error; err != nil {
			return nil, err
		}
		return carts.FindCurrent(ctx, customer, true)
	}
	return cart, nil
}

// RemoveLine releases one unit of model from the customer's current cart.
func (s *Store) RemoveLine(ctx context.Context, customer, model string) error {
	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		catalog := s.catalog.Catalog(tx)
		carts := s.carts.WithTx(tx)

		cart, cartErr := carts.FindCurrent(ctx, customer, true)
		if cartErr != nil && !errors.Is(cartErr, ErrCartNotFound) {
			return cartErr
		}

		// an unknown product is reported before a missing cart
		p, err := catalog.LockProduct(ctx, model)
		if err != nil {
			return err
		}
		if cartErr != nil {
			return cartErr
		}
		if cart.TotalCents <= 0 {
			return ErrCartNotFound
		}

		line, err := carts.GetLine(ctx, cart.ID, model)
		if err != nil {
			return err
		}
		if line.Quantity <= 1 {
			err = carts.DeleteLine(ctx, cart.ID, model)
		} else {
			err = carts.DecrementLine(ctx, cart.ID, model)
		}
		if err != nil {
			return err
		}

		if _, err := catalog.AdjustStock(ctx, model, 1); err != nil {
			return err
		}
		return carts.AddTotal(ctx, cart.ID, -p.SellingPriceCents)
	})
}

// ClearCart empties the current cart and returns every reserved unit to stock.
func (s *Store) ClearCart(ctx context.Context, customer string) error {
	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		catalog := s.catalog.Catalog(tx)
		carts := s.carts.WithTx(tx)

		cart, err := carts.FindCurrent(ctx, customer, true)
		if err != nil {
			return err
		}
		lines, err := carts.ListLines(ctx, cart.ID)
		if err != nil {
			return err
		}
		for _, line := range lines {
			if _, err := catalog.AdjustStock(ctx, line.ProductModel, line.Quantity); err != nil {
				// the product was deleted while reserved; nothing to restore
				if errors.Is(err, product.ErrProductNotFound) {
					continue
				}
				return err
			}
		}
		if err := carts.DeleteLines(ctx, cart.ID); err != nil {
			return err
		}
		return carts.ResetTotal(ctx, cart.ID)
	})
}

// Checkout pays the current cart. Stock was already taken when the lines were
// added, so it is only re-validated here, never decremented again.
func (s *Store) Checkout(ctx context.Context, customer string) (*models.Cart, error) {
	var paid *models.Cart
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		catalog := s.catalog.Catalog(tx)
		carts := s.carts.WithTx(tx)

		cart, err := carts.FindCurrent(ctx, customer, true)
		if err != nil {
			return err
		}
		if cart.TotalCents <= 0 {
			return ErrEmptyCart
		}

		// lines come back sorted by model, which fixes the lock order
		lines, err := carts.ListLines(ctx, cart.ID)
		if err != nil {
			return err
		}
		for _, line := range lines {
			p, err := catalog.LockProduct(ctx, line.ProductModel)
			if err != nil {
				return err
			}
			if err := checkReservation(p, line); err != nil {
				return err
			}
		}

		if err := carts.MarkPaid(ctx, cart.ID, dates.Today(s.now)); err != nil {
			return err
		}
		// read back inside the transaction so a committed checkout always
		// returns its cart
		paid, err = carts.FindByID(ctx, cart.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return paid, nil
}

// checkReservation verifies that the stock row still backs the reserved units.
func checkReservation(p *models.Product, line models.CartLine) error {
	switch {
	case p.StockQuantity < 0 && p.StockQuantity+line.Quantity <= 0:
		return fmt.Errorf("%w: %s", product.ErrEmptyStock, p.Model)
	case p.StockQuantity < 0:
		return fmt.Errorf("%w: %s short by %d", product.ErrLowStock, p.Model, -p.StockQuantity)
	default:
		return nil
	}
}

// DeleteAllCarts purges every cart and line, paid or not.
func (s *Store) DeleteAllCarts(ctx context.Context) error {
	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		_, err := s.carts.WithTx(tx).DeleteAll(ctx)
		return err
	})
}

func (s *Store) ListAllCarts(ctx context.Context) ([]models.Cart, error) {
	return s.carts.ListAll(ctx)
}
