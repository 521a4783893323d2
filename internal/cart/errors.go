package cart

import "errors"

var (
	ErrCartNotFound     = errors.New("cart not found")
	ErrEmptyCart        = errors.New("cart is empty")
	ErrProductNotInCart = errors.New("product not in cart")
)
