package enums

import (
	"fmt"
	"strings"
)

// ProductCategory represents the canonical product categories supported by the catalog.
type ProductCategory string

const (
	ProductCategorySmartphone ProductCategory = "Smartphone"
	ProductCategoryLaptop     ProductCategory = "Laptop"
	ProductCategoryAppliance  ProductCategory = "Appliance"
)

var validProductCategories = []ProductCategory{
	ProductCategorySmartphone,
	ProductCategoryLaptop,
	ProductCategoryAppliance,
}

// String implements fmt.Stringer.
func (c ProductCategory) String() string {
	return string(c)
}

// IsValid reports whether the value is a known ProductCategory.
func (c ProductCategory) IsValid() bool {
	for _, candidate := range validProductCategories {
		if candidate == c {
			return true
		}
	}
	return false
}

// ParseProductCategory converts raw input into a ProductCategory.
// Matching ignores case so "laptop" and "Laptop" are equivalent.
func ParseProductCategory(value string) (ProductCategory, error) {
	trimmed := strings.TrimSpace(value)
	for _, candidate := range validProductCategories {
		if strings.EqualFold(string(candidate), trimmed) {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid product category %q", value)
}

// ProductGrouping selects how catalog listings are filtered.
type ProductGrouping string

const (
	ProductGroupingNone     ProductGrouping = ""
	ProductGroupingCategory ProductGrouping = "category"
	ProductGroupingModel    ProductGrouping = "model"
)

// IsValid reports whether the value is a known ProductGrouping.
func (g ProductGrouping) IsValid() bool {
	switch g {
	case ProductGroupingNone, ProductGroupingCategory, ProductGroupingModel:
		return true
	default:
		return false
	}
}

// ParseProductGrouping converts raw input into a ProductGrouping.
func ParseProductGrouping(value string) (ProductGrouping, error) {
	g := ProductGrouping(strings.ToLower(strings.TrimSpace(value)))
	if !g.IsValid() {
		return "", fmt.Errorf("invalid product grouping %q", value)
	}
	return g, nil
}
