package errors

import (
	stdErrors "errors"
	"fmt"
	"net/http"
)

type Code string

const (
	CodeValidation   Code = "VALIDATION_ERROR"
	CodeUnauthorized Code = "UNAUTHORIZED"
	CodeForbidden    Code = "FORBIDDEN"
	CodeNotFound     Code = "NOT_FOUND"
	CodeConflict     Code = "CONFLICT"
	CodeIdempotency  Code = "IDEMPOTENCY_KEY_REUSED"
	CodeRateLimit    Code = "RATE_LIMIT_EXCEEDED"
	CodeInternal     Code = "INTERNAL_ERROR"
	CodeDependency   Code = "DEPENDENCY_ERROR"

	// catalog
	CodeProductNotFound      Code = "PRODUCT_NOT_FOUND"
	CodeProductAlreadyExists Code = "PRODUCT_ALREADY_EXISTS"
	CodeEmptyStock           Code = "EMPTY_STOCK"
	CodeLowStock             Code = "LOW_STOCK"
	CodeInvalidDate          Code = "INVALID_DATE"
	CodeInvalidGrouping      Code = "INVALID_GROUPING"

	// cart
	CodeCartNotFound     Code = "CART_NOT_FOUND"
	CodeProductNotInCart Code = "PRODUCT_NOT_IN_CART"
	CodeEmptyCart        Code = "EMPTY_CART"

	// reviews
	CodeReviewExists   Code = "REVIEW_EXISTS"
	CodeReviewNotFound Code = "REVIEW_NOT_FOUND"
)

type Metadata struct {
	HTTPStatus     int
	Retryable      bool
	PublicMessage  string
	DetailsAllowed bool
}

var metadataByCode = map[Code]Metadata{
	CodeValidation: {
		HTTPStatus:     http.StatusBadRequest,
		PublicMessage:  "validation failed",
		DetailsAllowed: true,
	},
	CodeUnauthorized: {
		HTTPStatus:    http.StatusUnauthorized,
		PublicMessage: "authentication required",
	},
	CodeForbidden: {
		HTTPStatus:    http.StatusForbidden,
		PublicMessage: "access denied",
	},
	CodeNotFound: {
		HTTPStatus:    http.StatusNotFound,
		PublicMessage: "resource not found",
	},
	CodeConflict: {
		HTTPStatus:    http.StatusConflict,
		PublicMessage: "conflict detected",
	},
	CodeIdempotency: {
		HTTPStatus:     http.StatusConflict,
		PublicMessage:  "idempotency key reused",
		DetailsAllowed: true,
	},
	CodeRateLimit: {
		HTTPStatus:    http.StatusTooManyRequests,
		PublicMessage: "rate limit exceeded",
	},
	CodeInternal: {
		HTTPStatus:    http.StatusInternalServerError,
		PublicMessage: "internal server error",
	},
	CodeDependency: {
		HTTPStatus:     http.StatusServiceUnavailable,
		Retryable:      true,
		PublicMessage:  "dependency unavailable",
		DetailsAllowed: true,
	},
	CodeProductNotFound: {
		HTTPStatus:    http.StatusNotFound,
		PublicMessage: "product not found",
	},
	CodeProductAlreadyExists: {
		HTTPStatus:    http.StatusConflict,
		PublicMessage: "product already exists",
	},
	CodeEmptyStock: {
		HTTPStatus:    http.StatusConflict,
		PublicMessage: "product is out of stock",
	},
	CodeLowStock: {
		HTTPStatus:     http.StatusConflict,
		PublicMessage:  "not enough stock",
		DetailsAllowed: true,
	},
	CodeInvalidDate: {
		HTTPStatus:     http.StatusBadRequest,
		PublicMessage:  "invalid date",
		DetailsAllowed: true,
	},
	CodeInvalidGrouping: {
		HTTPStatus:     http.StatusUnprocessableEntity,
		PublicMessage:  "invalid grouping",
		DetailsAllowed: true,
	},
	CodeCartNotFound: {
		HTTPStatus:    http.StatusNotFound,
		PublicMessage: "cart not found",
	},
	CodeProductNotInCart: {
		HTTPStatus:    http.StatusNotFound,
		PublicMessage: "product not in cart",
	},
	CodeEmptyCart: {
		HTTPStatus:    http.StatusBadRequest,
		PublicMessage: "cart is empty",
	},
	CodeReviewExists: {
		HTTPStatus:    http.StatusConflict,
		PublicMessage: "review already exists",
	},
	CodeReviewNotFound: {
		HTTPStatus:    http.StatusNotFound,
		PublicMessage: "review not found",
	},
}

func MetadataFor(code Code) Metadata {
	if meta, ok := metadataByCode[code]; ok {
		return meta
	}
	return metadataByCode[CodeInternal]
}

type Error struct {
	code    Code
	message string
	details any
	cause   error
}

func New(code Code, message string) *Error {
	return &Error{code: code, message: message}
}

func Wrap(code Code, err error, message string) *Error {
	if err == nil {
		return New(code, message)
	}
	return &Error{code: code, message: message, cause: err}
}

func (e *Error) Code() Code {
	if e == nil {
		return CodeInternal
	}
	return e.code
}

func (e *Error) Message() string {
	if e == nil {
		return ""
	}
	return e.message
}

func (e *Error) Details() any {
	if e == nil {
		return nil
	}
	return e.details
}

func (e *Error) WithDetails(details any) *Error {
	if e == nil {
		return nil
	}
	e.details = details
	return e
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("%s: %s", e.code, e.message)
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.cause
}

func As(err error) *Error {
	if err == nil {
		return nil
	}
	var typed *Error
	if stdErrors.As(err, &typed) {
		return typed
	}
	return nil
}

// Is reports whether err carries the given code anywhere in its chain.
func Is(err error, code Code) bool {
	typed := As(err)
	return typed != nil && typed.code == code
}
