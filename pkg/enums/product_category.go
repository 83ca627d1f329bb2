package enums

import "fmt"

// ProductCategory represents the canonical jewelry categories supported by the catalog.
type ProductCategory string

const (
	ProductCategoryRings     ProductCategory = "rings"
	ProductCategoryNecklaces ProductCategory = "necklaces"
	ProductCategoryBracelets ProductCategory = "bracelets"
	ProductCategoryEarrings  ProductCategory = "earrings"
	ProductCategoryWatches   ProductCategory = "watches"
	ProductCategorySets      ProductCategory = "sets"
)

var validProductCategories = []ProductCategory{
	ProductCategoryRings,
	ProductCategoryNecklaces,
	ProductCategoryBracelets,
	ProductCategoryEarrings,
	ProductCategoryWatches,
	ProductCategorySets,
}

// String implements fmt.Stringer.
func (p ProductCategory) String() string {
	return string(p)
}

// IsValid reports whether the value is a known ProductCategory.
func (p ProductCategory) IsValid() bool {
	for _, candidate := range validProductCategories {
		if candidate == p {
			return true
		}
	}
	return false
}

// ParseProductCategory converts raw input into a ProductCategory.
func ParseProductCategory(value string) (ProductCategory, error) {
	for _, candidate := range validProductCategories {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid product category %q", value)
}
