package validators

import (
	"net/http/httptest"
	"strings"
	"testing"

	pkgerrors "github.com/angelmondragon/ezshop-backend/pkg/errors"
)

type sellBody struct {
	Quantity    int    `json:"quantity" validate:"required,gt=0"`
	SellingDate string `json:"sellingDate" validate:"omitempty,date"`
}

func TestDecodeJSONBody(t *testing.T) {
	req := httptest.NewRequest("PATCH", "/", strings.NewReader(`{"quantity":2,"sellingDate":"2026-01-02"}`))
	var body sellBody
	if err := DecodeJSONBody(req, &body); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if body.Quantity != 2 || body.SellingDate != "2026-01-02" {
		t.Fatalf("unexpected body %+v", body)
	}
}

func TestDecodeJSONBodyRejectsUnknownFields(t *testing.T) {
	req := httptest.NewRequest("PATCH", "/", strings.NewReader(`{"quantity":2,"price":1}`))
	var body sellBody
	err := DecodeJSONBody(req, &body)
	if !pkgerrors.Is(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestDecodeJSONBodyNamesFieldsByJSONTag(t *testing.T) {
	req := httptest.NewRequest("PATCH", "/", strings.NewReader(`{"quantity":0,"sellingDate":"02/01/2026"}`))
	var body sellBody
	err := DecodeJSONBody(req, &body)
	typed := pkgerrors.As(err)
	if typed == nil {
		t.Fatalf("expected typed error, got %v", err)
	}
	details, ok := typed.Details().(map[string]string)
	if !ok {
		t.Fatalf("unexpected details %T", typed.Details())
	}
	if details["quantity"] != "is required" {
		t.Fatalf("unexpected quantity message %q", details["quantity"])
	}
	if !strings.Contains(details["sellingDate"], "YYYY") && !strings.Contains(details["sellingDate"], "2006-01-02") {
		t.Fatalf("unexpected date message %q", details["sellingDate"])
	}
}

func TestOptionalDate(t *testing.T) {
	got, err := OptionalDate("changeDate", "")
	if err != nil || got != nil {
		t.Fatalf("expected nil for blank, got %v %v", got, err)
	}
	if _, err := OptionalDate("changeDate", "yesterday"); !pkgerrors.Is(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestQueryString(t *testing.T) {
	req := httptest.NewRequest("GET", "/?model=%20iphone%20", nil)
	if got := QueryString(req, "model", 3); got != "iph" {
		t.Fatalf("unexpected value %q", got)
	}
}
