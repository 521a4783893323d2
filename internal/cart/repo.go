package cart

import (
	"context"
	"errors"
	"time"

	"github.com/angelmondragon/ezshop-backend/pkg/db/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository exposes persistence operations for carts and their lines.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a cart repository bound to the provided DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx binds the repository to a transaction.
func (r *Repository) WithTx(tx *gorm.DB) CartRepository {
	if tx == nil {
		return r
	}
	return &Repository{db: tx}
}

func (r *Repository) withLines(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Preload("Lines", func(db *gorm.DB) *gorm.DB {
			return db.Order("cart_lines.product_model ASC")
		}).
		Preload("Lines.Product")
}

// FindCurrent loads the customer's unpaid cart with its lines. When lock is
// set the cart row stays locked until the transaction ends.
func (r *Repository) FindCurrent(ctx context.Context, customer string, lock bool) (*models.Cart, error) {
	q := r.withLines(ctx)
	if lock {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var cart models.Cart
	err := q.Where("customer_id = ? AND paid = ?", customer, false).First(&cart).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCartNotFound
		}
		return nil, err
	}
	return &cart, nil
}

// FindByID loads a cart with its lines.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Cart, error) {
	var cart models.Cart
	if err := r.withLines(ctx).Where("id = ?", id).First(&cart).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCartNotFound
		}
		return nil, err
	}
	return &cart, nil
}

// Create inserts a new cart row.
func (r *Repository) Create(ctx context.Context, cart *models.Cart) error {
	if cart.ID == uuid.Nil {
		cart.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Omit("Lines").Create(cart).Error
}

// ListPaid returns the customer's paid carts, oldest payment first.
func (r *Repository) ListPaid(ctx context.Context, customer string) ([]models.Cart, error) {
	var carts []models.Cart
	err := r.withLines(ctx).
		Where("customer_id = ? AND paid = ?", customer, true).
		Order("payment_date ASC").
		Order("created_at ASC").
		Find(&carts).Error
	return carts, err
}

// ListAll returns every cart, paid or not.
func (r *Repository) ListAll(ctx context.Context) ([]models.Cart, error) {
	var carts []models.Cart
	err := r.withLines(ctx).
		Order("customer_id ASC").
		Order("created_at ASC").
		Find(&carts).Error
	return carts, err
}

// ListLines returns the lines of a cart ordered by product model.
func (r *Repository) ListLines(ctx context.Context, cartID uuid.UUID) ([]models.CartLine, error) {
	var lines []models.CartLine
	err := r.db.WithContext(ctx).
		Where("cart_id = ?", cartID).
		Order("product_model ASC").
		Find(&lines).Error
	return lines, err
}

// GetLine loads a single line.
func (r *Repository) GetLine(ctx context.Context, cartID uuid.UUID, model string) (*models.CartLine, error) {
	var line models.CartLine
	err := r.db.WithContext(ctx).
		Where("cart_id = ? AND product_model = ?", cartID, model).
		First(&line).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotInCart
		}
		return nil, err
	}
	return &line, nil
}

// IncrementLine inserts the line with quantity 1 or bumps an existing one.
func (r *Repository) IncrementLine(ctx context.Context, cartID uuid.UUID, model string, at time.Time) error {
	line := models.CartLine{CartID: cartID, ProductModel: model, Quantity: 1, CreatedAt: at, UpdatedAt: at}
	return r.db.WithContext(ctx).
		Omit("Product").
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "cart_id"}, {Name: "product_model"}},
			DoUpdates: clause.Assignments(map[string]any{
				"quantity":   gorm.Expr("cart_lines.quantity + 1"),
				"updated_at": at,
			}),
		}).
		Create(&line).Error
}

// DecrementLine lowers the quantity by one. Lines at quantity 1 must be
// deleted instead; the quantity check constraint rejects zero.
func (r *Repository) DecrementLine(ctx context.Context, cartID uuid.UUID, model string) error {
	res := r.db.WithContext(ctx).
		Model(&models.CartLine{}).
		Where("cart_id = ? AND product_model = ? AND quantity > 1", cartID, model).
		Update("quantity", gorm.Expr("quantity - 1"))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrProductNotInCart
	}
	return nil
}

func (r *Repository) DeleteLine(ctx context.Context, cartID uuid.UUID, model string) error {
	res := r.db.WithContext(ctx).
		Where("cart_id = ? AND product_model = ?", cartID, model).
		Delete(&models.CartLine{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrProductNotInCart
	}
	return nil
}

func (r *Repository) DeleteLines(ctx context.Context, cartID uuid.UUID) error {
	return r.db.WithContext(ctx).Where("cart_id = ?", cartID).Delete(&models.CartLine{}).Error
}

// AddTotal applies total_cents += delta in SQL.
func (r *Repository) AddTotal(ctx context.Context, cartID uuid.UUID, deltaCents int64) error {
	return r.updateCart(ctx, cartID, map[string]any{
		"total_cents": gorm.Expr("total_cents + ?", deltaCents),
	})
}

func (r *Repository) ResetTotal(ctx context.Context, cartID uuid.UUID) error {
	return r.updateCart(ctx, cartID, map[string]any{"total_cents": 0})
}

// MarkPaid flips an unpaid cart to paid. Paid carts are never touched again.
func (r *Repository) MarkPaid(ctx context.Context, cartID uuid.UUID, paymentDate time.Time) error {
	res := r.db.WithContext(ctx).
		Model(&models.Cart{}).
		Where("id = ? AND paid = ?", cartID, false).
		Updates(map[string]any{"paid": true, "payment_date": paymentDate})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrCartNotFound
	}
	return nil
}

func (r *Repository) updateCart(ctx context.Context, cartID uuid.UUID, updates map[string]any) error {
	res := r.db.WithContext(ctx).
		Model(&models.Cart{}).
		Where("id = ? AND paid = ?", cartID, false).
		Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrCartNotFound
	}
	return nil
}

// DeleteAll purges every cart; lines cascade.
func (r *Repository) DeleteAll(ctx context.Context) (int64, error) {
	if err := r.db.WithContext(ctx).
		Session(&gorm.Session{AllowGlobalUpdate: true}).
		Delete(&models.CartLine{}).Error; err != nil {
		return 0, err
	}
	res := r.db.WithContext(ctx).
		Session(&gorm.Session{AllowGlobalUpdate: true}).
		Delete(&models.Cart{})
	return res.RowsAffected, res.Error
}
