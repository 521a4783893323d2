package cart

import (
	"github.com/angelmondragon/ezshop-backend/pkg/dates"
	"github.com/angelmondragon/ezshop-backend/pkg/db/models"
	"github.com/angelmondragon/ezshop-backend/pkg/money"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CartDTO is the cart payload returned to clients.
type CartDTO struct {
	ID          *uuid.UUID      `json:"id,omitempty"`
	Customer    string          `json:"customer"`
	Paid        bool            `json:"paid"`
	PaymentDate *string         `json:"paymentDate"`
	Total       decimal.Decimal `json:"total"`
	Products    []CartLineDTO   `json:"products"`
}

// CartLineDTO joins a line with the product's current category and price.
type CartLineDTO struct {
	Model    string          `json:"model"`
	Category string          `json:"category,omitempty"`
	Quantity int             `json:"quantity"`
	Price    decimal.Decimal `json:"price"`
}

// NewCartDTO builds a DTO from the persisted cart. Unsaved carts carry no id.
func NewCartDTO(cart *models.Cart) *CartDTO {
	if cart == nil {
		return nil
	}
	dto := &CartDTO{
		Customer:    cart.CustomerID,
		Paid:        cart.Paid,
		PaymentDate: dates.FormatPtr(cart.PaymentDate),
		Total:       money.FromCents(cart.TotalCents),
		Products:    make([]CartLineDTO, 0, len(cart.Lines)),
	}
	if cart.ID != uuid.Nil {
		id := cart.ID
		dto.ID = &id
	}
	for _, line := range cart.Lines {
		item := CartLineDTO{
			Model:    line.ProductModel,
			Quantity: line.Quantity,
			Price:    decimal.Zero,
		}
		if line.Product != nil {
			item.Category = line.Product.Category.String()
			item.Price = money.FromCents(line.Product.SellingPriceCents)
		}
		dto.Products = append(dto.Products, item)
	}
	return dto
}

func newCartDTOs(carts []models.Cart) []CartDTO {
	out := make([]CartDTO, 0, len(carts))
	for i := range carts {
		out = append(out, *NewCartDTO(&carts[i]))
	}
	return out
}
