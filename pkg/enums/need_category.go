package enums

import "fmt"

// NeedCategory groups needs for browsing and filtering.
type NeedCategory string

const (
	NeedCategoryEducation NeedCategory = "education"
	NeedCategorySports    NeedCategory = "sports"
	NeedCategoryFamily    NeedCategory = "family"
	NeedCategoryMedical   NeedCategory = "medical"
	NeedCategoryOther     NeedCategory = "other"
)

var validNeedCategories = []NeedCategory{
	NeedCategoryEducation,
	NeedCategorySports,
	NeedCategoryFamily,
	NeedCategoryMedical,
	NeedCategoryOther,
}

// String implements fmt.Stringer.
func (n NeedCategory) String() string {
	return string(n)
}

// IsValid reports whether the value is a known NeedCategory.
func (n NeedCategory) IsValid() bool {
	for _, candidate := range validNeedCategories {
		if candidate == n {
			return true
		}
	}
	return false
}

// ParseNeedCategory converts raw input into a NeedCategory.
func ParseNeedCategory(value string) (NeedCategory, error) {
	for _, candidate := range validNeedCategories {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid need category %q", value)
}
