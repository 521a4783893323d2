package product

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/angelmondragon/ezshop-backend/pkg/db"
	"github.com/angelmondragon/ezshop-backend/pkg/db/models"
	"github.com/angelmondragon/ezshop-backend/pkg/enums"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Catalog is the stock surface consumed by the cart store.
type Catalog interface {
	GetProduct(ctx context.Context, model string) (*models.Product, error)
	LockProduct(ctx context.Context, model string) (*models.Product, error)
	AdjustStock(ctx context.Context, model string, delta int) (int, error)
}

// Repository exposes persistence operations for catalog products.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a repository bound to the provided DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the given transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	if tx == nil {
		return r
	}
	return &Repository{db: tx}
}

// Catalog returns the stock surface bound to tx.
func (r *Repository) Catalog(tx *gorm.DB) Catalog {
	return r.WithTx(tx)
}

// ListFilter narrows List. Zero values match everything.
type ListFilter struct {
	Category      enums.ProductCategory
	Model         string
	AvailableOnly bool
}

// CreateProduct inserts a new product row.
func (r *Repository) CreateProduct(ctx context.Context, product *models.Product) error {
	if err := r.db.WithContext(ctx).Create(product).Error; err != nil {
		if db.IsUniqueViolation(err, "") {
			return ErrProductAlreadyExists
		}
		return err
	}
	return nil
}

// GetProduct loads a product by model.
func (r *Repository) GetProduct(ctx context.Context, model string) (*models.Product, error) {
	return r.first(r.db.WithContext(ctx), model)
}

// LockProduct loads a product by model and holds a row lock until the
// surrounding transaction ends.
func (r *Repository) LockProduct(ctx context.Context, model string) (*models.Product, error) {
	return r.first(r.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}), model)
}

func (r *Repository) first(q *gorm.DB, model string) (*models.Product, error) {
	var product models.Product
	if err := q.Where("model = ?", model).First(&product).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	return &product, nil
}

// AdjustStock applies stock_quantity += delta and returns the new quantity.
// The update is guarded in SQL so stock never drops below zero.
func (r *Repository) AdjustStock(ctx context.Context, model string, delta int) (int, error) {
	return r.adjust(ctx, model, delta, map[string]any{
		"stock_quantity": gorm.Expr("stock_quantity + ?", delta),
	})
}

// MarkSold removes quantity units from stock and records the selling date.
func (r *Repository) MarkSold(ctx context.Context, model string, quantity int, sellingDate time.Time) (int, error) {
	if quantity <= 0 {
		return 0, fmt.Errorf("sold quantity must be positive, got %d", quantity)
	}
	return r.adjust(ctx, model, -quantity, map[string]any{
		"stock_quantity": gorm.Expr("stock_quantity - ?", quantity),
		"selling_date":   sellingDate,
	})
}

func (r *Repository) adjust(ctx context.Context, model string, delta int, updates map[string]any) (int, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("model = ? AND stock_quantity + ? >= 0", model, delta).
		Updates(updates)
	if res.Error != nil {
		return 0, res.Error
	}
	if res.RowsAffected == 0 {
		if _, err := r.GetProduct(ctx, model); err != nil {
			return 0, err
		}
		return 0, ErrNegativeStock
	}

	var quantity int
	if err := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Select("stock_quantity").
		Where("model = ?", model).
		Scan(&quantity).Error; err != nil {
		return 0, err
	}
	return quantity, nil
}

// ListProducts returns products matching filter ordered by model.
func (r *Repository) ListProducts(ctx context.Context, filter ListFilter) ([]models.Product, error) {
	q := r.db.WithContext(ctx).Model(&models.Product{})
	if filter.Category != "" {
		q = q.Where("category = ?", filter.Category)
	}
	if filter.Model != "" {
		q = q.Where("model = ?", filter.Model)
	}
	if filter.AvailableOnly {
		q = q.Where("stock_quantity > 0")
	}

	var products []models.Product
	if err := q.Order("model ASC").Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

// DeleteProduct removes a product; reviews cascade.
func (r *Repository) DeleteProduct(ctx context.Context, model string) error {
	res := r.db.WithContext(ctx).Where("model = ?", model).Delete(&models.Product{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrProductNotFound
	}
	return nil
}

// DeleteAllProducts wipes the catalog and returns the number of rows removed.
func (r *Repository) DeleteAllProducts(ctx context.Context) (int64, error) {
	res := r.db.WithContext(ctx).Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&models.Product{})
	return res.RowsAffected, res.Error
}
