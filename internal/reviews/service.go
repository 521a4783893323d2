package reviews

import (
	"context"
	"errors"
	"strings"
	"time"

	product "github.com/angelmondragon/ezshop-backend/internal/products"
	"github.com/angelmondragon/ezshop-backend/pkg/dates"
	"github.com/angelmondragon/ezshop-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/ezshop-backend/pkg/errors"
)

const (
	minScore = 1
	maxScore = 5
)

type productReader interface {
	GetProduct(ctx context.Context, model string) (*models.Product, error)
}

// ServiceParams groups dependencies for the review service.
type ServiceParams struct {
	ReviewRepo  *Repository
	ProductRepo productReader
	Now         func() time.Time
}

// Service exposes review rules. Role checks happen at the router.
type Service interface {
	AddReview(ctx context.Context, model, username string, score int, comment string) error
	GetProductReviews(ctx context.Context, model string) ([]ReviewDTO, error)
	DeleteReview(ctx context.Context, model, username string) error
	DeleteReviewsOfProduct(ctx context.Context, model string) error
	DeleteAllReviews(ctx context.Context) error
}

type service struct {
	repo     *Repository
	products productReader
	now      func() time.Time
}

// NewService builds a review service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.ReviewRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "review repo is required")
	}
	if params.ProductRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product repo is required")
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &service{repo: params.ReviewRepo, products: params.ProductRepo, now: now}, nil
}

// AddReview stores the user's single review of model, dated today.
func (s *service) AddReview(ctx context.Context, model, username string, score int, comment string) error {
	if err := s.ensureProduct(ctx, model); err != nil {
		return err
	}
	if score < minScore || score > maxScore {
		return pkgerrors.New(pkgerrors.CodeValidation, "score must be between 1 and 5")
	}
	comment = strings.TrimSpace(comment)
	if comment == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "comment is required")
	}

	err := s.repo.Create(ctx, &models.Review{
		ProductModel: model,
		Username:     username,
		Score:        score,
		Comment:      comment,
		Date:         dates.Today(s.now),
	})
	return translateError(err)
}

func (s *service) GetProductReviews(ctx context.Context, model string) ([]ReviewDTO, error) {
	if err := s.ensureProduct(ctx, model); err != nil {
		return nil, err
	}
	rows, err := s.repo.ListByProduct(ctx, model)
	if err != nil {
		return nil, translateError(err)
	}
	out := make([]ReviewDTO, 0, len(rows))
	for _, row := range rows {
		out = append(out, newReviewDTO(row))
	}
	return out, nil
}

func (s *service) DeleteReview(ctx context.Context, model, username string) error {
	if err := s.ensureProduct(ctx, model); err != nil {
		return err
	}
	return translateError(s.repo.Delete(ctx, model, username))
}

func (s *service) DeleteReviewsOfProduct(ctx context.Context, model string) error {
	if err := s.ensureProduct(ctx, model); err != nil {
		return err
	}
	return translateError(s.repo.DeleteByProduct(ctx, model))
}

func (s *service) DeleteAllReviews(ctx context.Context) error {
	return translateError(s.repo.DeleteAll(ctx))
}

func (s *service) ensureProduct(ctx context.Context, model string) error {
	if strings.TrimSpace(model) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "model is required")
	}
	if _, err := s.products.GetProduct(ctx, model); err != nil {
		return product.TranslateError(err)
	}
	return nil
}

func translateError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrReviewExists):
		return pkgerrors.Wrap(pkgerrors.CodeReviewExists, err, "you have already reviewed this product")
	case errors.Is(err, ErrReviewNotFound):
		return pkgerrors.Wrap(pkgerrors.CodeReviewNotFound, err, "you have not reviewed this product")
	default:
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "review storage failure")
	}
}
