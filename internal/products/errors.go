package product

import "errors"

var (
	ErrProductNotFound      = errors.New("product not found")
	ErrProductAlreadyExists = errors.New("product already exists")
	ErrEmptyStock           = errors.New("product is out of stock")
	ErrLowStock             = errors.New("not enough stock")
	// ErrNegativeStock is returned when a stock adjustment would drop below zero.
	ErrNegativeStock   = errors.New("stock cannot become negative")
	ErrInvalidDate     = errors.New("invalid date")
	ErrInvalidGrouping = errors.New("invalid grouping")
)
