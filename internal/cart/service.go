package cart

import (
	"context"
	"errors"
	"fmt"
	"strings"

	product "github.com/angelmondragon/ezshop-backend/internal/products"
	"github.com/angelmondragon/ezshop-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/ezshop-backend/pkg/errors"
	"github.com/angelmondragon/ezshop-backend/pkg/metrics"
)

// Caller identifies who is acting on a cart.
type Caller struct {
	Username string
	Role     enums.Role
}

// Service exposes cart operations to the API layer.
type Service interface {
	GetCurrentCart(ctx context.Context, caller Caller) (*CartDTO, error)
	GetPastCarts(ctx context.Context, caller Caller) ([]CartDTO, error)
	AddProduct(ctx context.Context, caller Caller, model string) error
	RemoveProduct(ctx context.Context, caller Caller, model string) error
	ClearCart(ctx context.Context, caller Caller) error
	Checkout(ctx context.Context, caller Caller) (*CartDTO, error)
	DeleteAllCarts(ctx context.Context, caller Caller) error
	ListAllCarts(ctx context.Context, caller Caller) ([]CartDTO, error)
}

type service struct {
	store   cartStore
	metrics *metrics.CartMetrics
}

// NewService builds the cart façade over the store. metrics may be nil.
func NewService(store cartStore, m *metrics.CartMetrics) (Service, error) {
	if store == nil {
		return nil, fmt.Errorf("cart store required")
	}
	return &service{store: store, metrics: m}, nil
}

func (s *service) GetCurrentCart(ctx context.Context, caller Caller) (*CartDTO, error) {
	if err := requireRole(caller, enums.RoleCustomer); err != nil {
		return nil, s.record("get_current", err)
	}
	cart, err := s.store.GetCurrentCart(ctx, caller.Username)
	if err != nil {
		return nil, s.record("get_current", err)
	}
	s.record("get_current", nil)
	return NewCartDTO(cart), nil
}

func (s *service) GetPastCarts(ctx context.Context, caller Caller) ([]CartDTO, error) {
	if err := requireRole(caller, enums.RoleCustomer); err != nil {
		return nil, s.record("history", err)
	}
	carts, err := s.store.GetPastCarts(ctx, caller.Username)
	if err != nil {
		return nil, s.record("history", err)
	}
	s.record("history", nil)
	return newCartDTOs(carts), nil
}

func (s *service) AddProduct(ctx context.Context, caller Caller, model string) error {
	if err := requireRole(caller, enums.RoleCustomer); err != nil {
		return s.record("add", err)
	}
	model = strings.TrimSpace(model)
	if model == "" {
		return s.record("add", pkgerrors.New(pkgerrors.CodeValidation, "model is required"))
	}
	return s.record("add", s.store.AddLine(ctx, caller.Username, model))
}

func (s *service) RemoveProduct(ctx context.Context, caller Caller, model string) error {
	if err := requireRole(caller, enums.RoleCustomer); err != nil {
		return s.record("remove", err)
	}
	model = strings.TrimSpace(model)
	if model == "" {
		return s.record("remove", pkgerrors.New(pkgerrors.CodeValidation, "model is required"))
	}
	return s.record("remove", s.store.RemoveLine(ctx, caller.Username, model))
}

func (s *service) ClearCart(ctx context.Context, caller Caller) error {
	if err := requireRole(caller, enums.RoleCustomer); err != nil {
		return s.record("clear", err)
	}
	return s.record("clear", s.store.ClearCart(ctx, caller.Username))
}

func (s *service) Checkout(ctx context.Context, caller Caller) (*CartDTO, error) {
	if err := requireRole(caller, enums.RoleCustomer); err != nil {
		return nil, s.record("checkout", err)
	}
	cart, err := s.store.Checkout(ctx, caller.Username)
	if err != nil {
		return nil, s.record("checkout", err)
	}
	s.record("checkout", nil)
	s.metrics.ObserveCheckout(cart.TotalCents)
	return NewCartDTO(cart), nil
}

func (s *service) DeleteAllCarts(ctx context.Context, caller Caller) error {
	if err := requireRole(caller, enums.RoleAdmin); err != nil {
		return s.record("delete_all", err)
	}
	return s.record("delete_all", s.store.DeleteAllCarts(ctx))
}

func (s *service) ListAllCarts(ctx context.Context, caller Caller) ([]CartDTO, error) {
	if err := requireRole(caller, enums.RoleAdmin); err != nil {
		return nil, s.record("list_all", err)
	}
	carts, err := s.store.ListAllCarts(ctx)
	if err != nil {
		return nil, s.record("list_all", err)
	}
	s.record("list_all", nil)
	return newCartDTOs(carts), nil
}

// record translates err, counts the outcome and returns the translated error.
func (s *service) record(operation string, err error) error {
	translated := translateError(err)
	outcome := ""
	if typed := pkgerrors.As(translated); typed != nil {
		outcome = strings.ToLower(string(typed.Code()))
	}
	s.metrics.IncOperation(operation, outcome)
	return translated
}

func requireRole(caller Caller, role enums.Role) error {
	if strings.TrimSpace(caller.Username) == "" {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "caller identity required")
	}
	if caller.Role != role {
		return pkgerrors.New(pkgerrors.CodeForbidden, fmt.Sprintf("%s role required", role))
	}
	return nil
}

func translateError(err error) error {
	if err == nil {
		return nil
	}
	if typed := pkgerrors.As(err); typed != nil {
		return typed
	}
	switch {
	case errors.Is(err, ErrCartNotFound):
		return pkgerrors.Wrap(pkgerrors.CodeCartNotFound, err, "cart not found")
	case errors.Is(err, ErrEmptyCart):
		return pkgerrors.Wrap(pkgerrors.CodeEmptyCart, err, "cart is empty")
	case errors.Is(err, ErrProductNotInCart):
		return pkgerrors.Wrap(pkgerrors.CodeProductNotInCart, err, "product not in cart")
	default:
		return product.TranslateError(err)
	}
}
