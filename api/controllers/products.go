package controllers

import (
	"context"
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/ezshop-backend/api/responses"
	"github.com/angelmondragon/ezshop-backend/api/validators"
	product "github.com/angelmondragon/ezshop-backend/internal/products"
	"github.com/angelmondragon/ezshop-backend/pkg/logger"
	"github.com/angelmondragon/ezshop-backend/pkg/money"
)

type registerArrivalRequest struct {
	Model        string          `json:"model" validate:"required,max=64"`
	Category     string          `json:"category" validate:"required"`
	Quantity     int             `json:"quantity"`
	SellingPrice decimal.Decimal `json:"sellingPrice"`
	ArrivalDate  string          `json:"arrivalDate" validate:"omitempty,date"`
	Details      *string         `json:"details" validate:"omitempty,max=1024"`
}

type quantityChangeRequest struct {
	Quantity   int    `json:"quantity" validate:"gt=0"`
	ChangeDate string `json:"changeDate" validate:"omitempty,date"`
}

type sellRequest struct {
	Quantity    int    `json:"quantity" validate:"gt=0"`
	SellingDate string `json:"sellingDate" validate:"omitempty,date"`
}

// ProductRegisterArrival records a new product arrival.
func ProductRegisterArrival(svc product.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload registerArrivalRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		arrival, err := validators.OptionalDate("arrivalDate", payload.ArrivalDate)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		dto, err := svc.RegisterArrival(r.Context(), product.RegisterArrivalInput{
			Model:       validators.SanitizeString(payload.Model, maxModelLen),
			Category:    validators.SanitizeString(payload.Category, 32),
			Quantity:    payload.Quantity,
			PriceCents:  money.ToCents(payload.SellingPrice),
			ArrivalDate: arrival,
			Details:     payload.Details,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, dto)
	}
}

// ProductChangeQuantity adds stock to an existing product.
func ProductChangeQuantity(svc product.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		model, err := modelParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload quantityChangeRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		changeDate, err := validators.OptionalDate("changeDate", payload.ChangeDate)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		dto, err := svc.ChangeQuantity(r.Context(), model, payload.Quantity, changeDate)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, dto)
	}
}

// ProductSell records a direct sale that bypasses carts.
func ProductSell(svc product.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		model, err := modelParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload sellRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		sellingDate, err := validators.OptionalDate("sellingDate", payload.SellingDate)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		dto, err := svc.Sell(r.Context(), model, payload.Quantity, sellingDate)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, dto)
	}
}

func ProductGet(svc product.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		model, err := modelParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		dto, err := svc.GetProduct(r.Context(), model)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, dto)
	}
}

// ProductList lists the catalog, optionally grouped by category or model.
func ProductList(svc product.Service, logg *logger.Logger) http.HandlerFunc {
	return productListHandler(svc.ListProducts, logg)
}

// ProductListAvailable is ProductList restricted to products in stock.
func ProductListAvailable(svc product.Service, logg *logger.Logger) http.HandlerFunc {
	return productListHandler(svc.ListAvailableProducts, logg)
}

type productLister func(ctx context.Context, input product.ListProductsInput) ([]product.ProductDTO, error)

func productListHandler(list productLister, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		input := product.ListProductsInput{
			Grouping: validators.QueryString(r, "grouping", 16),
			Category: validators.QueryString(r, "category", 32),
			Model:    validators.QueryString(r, "model", maxModelLen),
		}
		products, err := list(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, products)
	}
}

func ProductDelete(svc product.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		model, err := modelParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.DeleteProduct(r.Context(), model); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, ok)
	}
}

func ProductDeleteAll(svc product.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := svc.DeleteAllProducts(r.Context()); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, ok)
	}
}
