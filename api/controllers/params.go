package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/angelmondragon/ezshop-backend/api/middleware"
	cartsvc "github.com/angelmondragon/ezshop-backend/internal/cart"
	pkgerrors "github.com/angelmondragon/ezshop-backend/pkg/errors"
)

const maxModelLen = 64

func callerFrom(r *http.Request) cartsvc.Caller {
	return cartsvc.Caller{
		Username: middleware.UsernameFromContext(r.Context()),
		Role:     middleware.RoleFromContext(r.Context()),
	}
}

func modelParam(r *http.Request) (string, error) {
	model := strings.TrimSpace(chi.URLParam(r, "model"))
	if model == "" {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "model is required")
	}
	if len(model) > maxModelLen {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "model is too long")
	}
	return model, nil
}

type successResponse struct {
	Success bool `json:"success"`
}

var ok = successResponse{Success: true}
