package enums

import "fmt"

// WasteCategory partitions orders and vehicles into independent solving pools.
type WasteCategory string

const (
	WasteCategoryGeneral    WasteCategory = "general"
	WasteCategoryRecyclable WasteCategory = "recyclable"
	WasteCategoryOrganic    WasteCategory = "organic"
)

var validWasteCategories = []WasteCategory{
	WasteCategoryGeneral,
	WasteCategoryRecyclable,
	WasteCategoryOrganic,
}

// WasteCategories returns the canonical category list in a stable order.
func WasteCategories() []WasteCategory {
	out := make([]WasteCategory, len(validWasteCategories))
	copy(out, validWasteCategories)
	return out
}

// String implements fmt.Stringer.
func (w WasteCategory) String() string {
	return string(w)
}

// IsValid reports whether the value is a known WasteCategory.
func (w WasteCategory) IsValid() bool {
	for _, candidate := range validWasteCategories {
		if candidate == w {
			return true
		}
	}
	return false
}

// ParseWasteCategory converts raw input into a WasteCategory.
func ParseWasteCategory(value string) (WasteCategory, error) {
	for _, candidate := range validWasteCategories {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid waste category %q", value)
}
