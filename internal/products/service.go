package product

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/angelmondragon/ezshop-backend/pkg/dates"
	"github.com/angelmondragon/ezshop-backend/pkg/db/models"
	"github.com/angelmondragon/ezshop-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/ezshop-backend/pkg/errors"
	"go.uber.org/multierr"
	"gorm.io/gorm"
)

// Service exposes catalog management operations.
type Service interface {
	RegisterArrival(ctx context.Context, input RegisterArrivalInput) (*ProductDTO, error)
	ChangeQuantity(ctx context.Context, model string, delta int, changeDate *time.Time) (*QuantityDTO, error)
	Sell(ctx context.Context, model string, quantity int, sellingDate *time.Time) (*QuantityDTO, error)
	GetProduct(ctx context.Context, model string) (*ProductDTO, error)
	ListProducts(ctx context.Context, input ListProductsInput) ([]ProductDTO, error)
	ListAvailableProducts(ctx context.Context, input ListProductsInput) ([]ProductDTO, error)
	DeleteProduct(ctx context.Context, model string) error
	DeleteAllProducts(ctx context.Context) error
}

// RegisterArrivalInput holds the payload to record a new product arrival.
type RegisterArrivalInput struct {
	Model       string
	Category    string
	Quantity    int
	PriceCents  int64
	ArrivalDate *time.Time
	Details     *string
}

// ListProductsInput captures the grouping knobs of the listing endpoints.
type ListProductsInput struct {
	Grouping string
	Category string
	Model    string
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type service struct {
	repo *Repository
	tx   txRunner
	now  func() time.Time
}

// NewService constructs a catalog service instance.
func NewService(repo *Repository, tx txRunner, now func() time.Time) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("product repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if now == nil {
		now = time.Now
	}
	return &service{repo: repo, tx: tx, now: now}, nil
}

func (s *service) RegisterArrival(ctx context.Context, input RegisterArrivalInput) (*ProductDTO, error) {
	model := strings.TrimSpace(input.Model)
	var errs error
	if model == "" {
		errs = multierr.Append(errs, errors.New("model is required"))
	}
	category, err := enums.ParseProductCategory(input.Category)
	if err != nil {
		errs = multierr.Append(errs, err)
	}
	if input.Quantity <= 0 {
		errs = multierr.Append(errs, errors.New("quantity must be greater than zero"))
	}
	if input.PriceCents <= 0 {
		errs = multierr.Append(errs, errors.New("price must be greater than zero"))
	}
	if errs != nil {
		return nil, validationError(errs)
	}

	today := dates.Today(s.now)
	arrival := today
	if input.ArrivalDate != nil {
		arrival = dates.Day(*input.ArrivalDate)
		if arrival.After(today) {
			return nil, TranslateError(fmt.Errorf("%w: arrival date is in the future", ErrInvalidDate))
		}
	}

	product := &models.Product{
		Model:             model,
		Category:          category,
		SellingPriceCents: input.PriceCents,
		StockQuantity:     input.Quantity,
		ArrivalDate:       arrival,
		Details:           trimmedOrNil(input.Details),
	}
	if err := s.repo.CreateProduct(ctx, product); err != nil {
		return nil, TranslateError(err)
	}
	return NewProductDTO(product), nil
}

func (s *service) ChangeQuantity(ctx context.Context, model string, delta int, changeDate *time.Time) (*QuantityDTO, error) {
	if delta <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be greater than zero")
	}

	var quantity int
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		product, err := repo.LockProduct(ctx, model)
		if err != nil {
			return err
		}
		if err := s.checkDate(changeDate, product); err != nil {
			return err
		}
		quantity, err = repo.AdjustStock(ctx, model, delta)
		return err
	})
	if err != nil {
		return nil, TranslateError(err)
	}
	return &QuantityDTO{Model: model, Quantity: quantity}, nil
}

func (s *service) Sell(ctx context.Context, model string, quantity int, sellingDate *time.Time) (*QuantityDTO, error) {
	if quantity <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be greater than zero")
	}

	var remaining int
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		product, err := repo.LockProduct(ctx, model)
		if err != nil {
			return err
		}
		if err := s.checkDate(sellingDate, product); err != nil {
			return err
		}
		if product.StockQuantity == 0 {
			return ErrEmptyStock
		}
		if product.StockQuantity < quantity {
			return fmt.Errorf("%w: requested %d, available %d", ErrLowStock, quantity, product.StockQuantity)
		}
		date := dates.Today(s.now)
		if sellingDate != nil {
			date = dates.Day(*sellingDate)
		}
		remaining, err = repo.MarkSold(ctx, model, quantity, date)
		return err
	})
	if err != nil {
		return nil, TranslateError(err)
	}
	return &QuantityDTO{Model: model, Quantity: remaining}, nil
}

// checkDate enforces arrivalDate <= date <= today. A nil date means today.
func (s *service) checkDate(date *time.Time, product *models.Product) error {
	if date == nil {
		return nil
	}
	if !dates.Between(*date, product.ArrivalDate, dates.Today(s.now)) {
		return fmt.Errorf("%w: %s must be between %s and today", ErrInvalidDate, dates.Format(*date), dates.Format(product.ArrivalDate))
	}
	return nil
}

func (s *service) GetProduct(ctx context.Context, model string) (*ProductDTO, error) {
	product, err := s.repo.GetProduct(ctx, model)
	if err != nil {
		return nil, TranslateError(err)
	}
	return NewProductDTO(product), nil
}

func (s *service) ListProducts(ctx context.Context, input ListProductsInput) ([]ProductDTO, error) {
	return s.list(ctx, input, false)
}

func (s *service) ListAvailableProducts(ctx context.Context, input ListProductsInput) ([]ProductDTO, error) {
	return s.list(ctx, input, true)
}

func (s *service) list(ctx context.Context, input ListProductsInput, availableOnly bool) ([]ProductDTO, error) {
	filter, err := buildListFilter(input)
	if err != nil {
		return nil, TranslateError(err)
	}
	filter.AvailableOnly = availableOnly

	if filter.Model != "" {
		if _, err := s.repo.GetProduct(ctx, filter.Model); err != nil {
			return nil, TranslateError(err)
		}
	}

	products, err := s.repo.ListProducts(ctx, filter)
	if err != nil {
		return nil, TranslateError(err)
	}
	return newProductDTOs(products), nil
}

// buildListFilter validates the grouping combination:
// none takes no filters, category needs only a category, model needs only a model.
func buildListFilter(input ListProductsInput) (ListFilter, error) {
	grouping, err := enums.ParseProductGrouping(input.Grouping)
	if err != nil {
		return ListFilter{}, fmt.Errorf("%w: %v", ErrInvalidGrouping, err)
	}
	category := strings.TrimSpace(input.Category)
	model := strings.TrimSpace(input.Model)

	switch grouping {
	case enums.ProductGroupingCategory:
		if model != "" {
			return ListFilter{}, fmt.Errorf("%w: model is not allowed when grouping by category", ErrInvalidGrouping)
		}
		parsed, err := enums.ParseProductCategory(category)
		if err != nil {
			return ListFilter{}, fmt.Errorf("%w: %v", ErrInvalidGrouping, err)
		}
		return ListFilter{Category: parsed}, nil
	case enums.ProductGroupingModel:
		if category != "" {
			return ListFilter{}, fmt.Errorf("%w: category is not allowed when grouping by model", ErrInvalidGrouping)
		}
		if model == "" {
			return ListFilter{}, fmt.Errorf("%w: model is required when grouping by model", ErrInvalidGrouping)
		}
		return ListFilter{Model: model}, nil
	default:
		if category != "" || model != "" {
			return ListFilter{}, fmt.Errorf("%w: filters require a grouping", ErrInvalidGrouping)
		}
		return ListFilter{}, nil
	}
}

func (s *service) DeleteProduct(ctx context.Context, model string) error {
	if err := s.repo.DeleteProduct(ctx, model); err != nil {
		return TranslateError(err)
	}
	return nil
}

func (s *service) DeleteAllProducts(ctx context.Context) error {
	if _, err := s.repo.DeleteAllProducts(ctx); err != nil {
		return TranslateError(err)
	}
	return nil
}

// TranslateError maps catalog sentinel errors onto API error codes.
// Errors that already carry a code pass through unchanged.
func TranslateError(err error) error {
	if err == nil {
		return nil
	}
	if typed := pkgerrors.As(err); typed != nil {
		return typed
	}
	switch {
	case errors.Is(err, ErrProductNotFound):
		return pkgerrors.Wrap(pkgerrors.CodeProductNotFound, err, "product not found")
	case errors.Is(err, ErrProductAlreadyExists):
		return pkgerrors.Wrap(pkgerrors.CodeProductAlreadyExists, err, "product already exists")
	case errors.Is(err, ErrEmptyStock):
		return pkgerrors.Wrap(pkgerrors.CodeEmptyStock, err, "product is out of stock")
	case errors.Is(err, ErrLowStock):
		return pkgerrors.Wrap(pkgerrors.CodeLowStock, err, err.Error())
	case errors.Is(err, ErrInvalidDate):
		return pkgerrors.Wrap(pkgerrors.CodeInvalidDate, err, err.Error())
	case errors.Is(err, ErrInvalidGrouping):
		return pkgerrors.Wrap(pkgerrors.CodeInvalidGrouping, err, err.Error())
	case errors.Is(err, ErrNegativeStock):
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "stock consistency violated")
	default:
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "catalog storage failure")
	}
}

func validationError(errs error) error {
	messages := make([]string, 0)
	for _, err := range multierr.Errors(errs) {
		messages = append(messages, err.Error())
	}
	return pkgerrors.New(pkgerrors.CodeValidation, "invalid product").WithDetails(map[string]any{"errors": messages})
}

func trimmedOrNil(value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
