package models

import (
	"time"

	"github.com/angelmondragon/ezshop-backend/pkg/enums"
)

// Product is a catalog entry keyed by its model name. StockQuantity counts
// units that are neither sold nor reserved in a cart.
type Product struct {
	Model             string                `gorm:"column:model;primaryKey"`
	Category          enums.ProductCategory `gorm:"column:category;not null"`
	SellingPriceCents int64                 `gorm:"column:selling_price_cents;not null"`
	StockQuantity     int                   `gorm:"column:stock_quantity;not null;default:0"`
	ArrivalDate       time.Time             `gorm:"column:arrival_date;type:date;not null"`
	SellingDate       *time.Time            `gorm:"column:selling_date;type:date"`
	Details           *string               `gorm:"column:details"`
	CreatedAt         time.Time             `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt         time.Time             `gorm:"column:updated_at;autoUpdateTime"`
}

func (Product) TableName() string { return "products" }
