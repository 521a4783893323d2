package reviews

import (
	"context"

	"github.com/angelmondragon/ezshop-backend/pkg/db"
	"github.com/angelmondragon/ezshop-backend/pkg/db/models"
	"gorm.io/gorm"
)

// Repository manages review rows.
type Repository struct {
	db *gorm.DB
}

// NewRepository binds the review repository to the provided DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a review. A second review by the same user is rejected by
// the primary key.
func (r *Repository) Create(ctx context.Context, review *models.Review) error {
	if err := r.db.WithContext(ctx).Create(review).Error; err != nil {
		if db.IsUniqueViolation(err, "") {
			return ErrReviewExists
		}
		return err
	}
	return nil
}

// ListByProduct returns the reviews of a product, oldest first.
func (r *Repository) ListByProduct(ctx context.Context, model string) ([]models.Review, error) {
	var reviews []models.Review
	err := r.db.WithContext(ctx).
		Where("product_model = ?", model).
		Order("date ASC").
		Order("username ASC").
		Find(&reviews).Error
	return reviews, err
}

func (r *Repository) Delete(ctx context.Context, model, username string) error {
	res := r.db.WithContext(ctx).
		Where("product_model = ? AND username = ?", model, username).
		Delete(&models.Review{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrReviewNotFound
	}
	return nil
}

func (r *Repository) DeleteByProduct(ctx context.Context, model string) error {
	return r.db.WithContext(ctx).Where("product_model = ?", model).Delete(&models.Review{}).Error
}

func (r *Repository) DeleteAll(ctx context.Context) error {
	return r.db.WithContext(ctx).
		Session(&gorm.Session{AllowGlobalUpdate: true}).
		Delete(&models.Review{}).Error
}
