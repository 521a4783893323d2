package models

import (
	"time"

	"github.com/google/uuid"
)

// Cart is a customer's basket. At most one unpaid cart exists per customer;
// paid carts are the purchase history and never change again.
type Cart struct {
	ID          uuid.UUID  `gorm:"column:id;type:uuid;primaryKey"`
	CustomerID  string     `gorm:"column:customer_id;not null"`
	Paid        bool       `gorm:"column:paid;not null;default:false"`
	PaymentDate *time.Time `gorm:"column:payment_date;type:date"`
	TotalCents  int64      `gorm:"column:total_cents;not null;default:0"`
	Lines       []CartLine `gorm:"foreignKey:CartID;constraint:OnDelete:CASCADE"`
	CreatedAt   time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}

func (Cart) TableName() string { return "carts" }

// CartLine is unique per (cart, product model).
type CartLine struct {
	CartID       uuid.UUID `gorm:"column:cart_id;type:uuid;primaryKey"`
	ProductModel string    `gorm:"column:product_model;primaryKey"`
	Quantity     int       `gorm:"column:quantity;not null"`
	Product      *Product  `gorm:"foreignKey:ProductModel;references:Model"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (CartLine) TableName() string { return "cart_lines" }
