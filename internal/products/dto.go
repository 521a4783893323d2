package product

import (
	"github.com/angelmondragon/ezshop-backend/pkg/dates"
	"github.com/angelmondragon/ezshop-backend/pkg/db/models"
	"github.com/angelmondragon/ezshop-backend/pkg/money"
	"github.com/shopspring/decimal"
)

// ProductDTO is the catalog payload returned to clients.
type ProductDTO struct {
	Model         string          `json:"model"`
	Category      string          `json:"category"`
	SellingPrice  decimal.Decimal `json:"sellingPrice"`
	StockQuantity int             `json:"quantity"`
	ArrivalDate   string          `json:"arrivalDate"`
	SellingDate   *string         `json:"sellingDate,omitempty"`
	Details       *string         `json:"details,omitempty"`
}

// NewProductDTO builds a DTO from the persisted model.
func NewProductDTO(product *models.Product) *ProductDTO {
	if product == nil {
		return nil
	}
	return &ProductDTO{
		Model:         product.Model,
		Category:      product.Category.String(),
		SellingPrice:  money.FromCents(product.SellingPriceCents),
		StockQuantity: product.StockQuantity,
		ArrivalDate:   dates.Format(product.ArrivalDate),
		SellingDate:   dates.FormatPtr(product.SellingDate),
		Details:       product.Details,
	}
}

func newProductDTOs(products []models.Product) []ProductDTO {
	out := make([]ProductDTO, 0, len(products))
	for i := range products {
		out = append(out, *NewProductDTO(&products[i]))
	}
	return out
}

// QuantityDTO is returned by stock mutations.
type QuantityDTO struct {
	Model    string `json:"model"`
	Quantity int    `json:"quantity"`
}
