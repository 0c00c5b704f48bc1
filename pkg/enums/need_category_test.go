package enums

import "testing"

func TestNeedCategoryValues(t *testing.T) {
	want := []NeedCategory{
		NeedCategoryEducation,
		NeedCategorySports,
		NeedCategoryFamily,
		NeedCategoryMedical,
		NeedCategoryOther,
	}
	if len(validNeedCategories) != len(want) {
		t.Fatalf("expected %d categories, got %d", len(want), len(validNeedCategories))
	}
	for i, category := range want {
		if validNeedCategories[i] != category {
			t.Fatalf("category %d: expected %s, got %s", i, category, validNeedCategories[i])
		}
	}
}

func TestParseNeedCategory(t *testing.T) {
	for _, raw := range []string{"education", "sports", "family", "medical", "other"} {
		category, err := ParseNeedCategory(raw)
		if err != nil {
			t.Fatalf("parsing %q: %v", raw, err)
		}
		if !category.IsValid() {
			t.Fatalf("%q should be valid", raw)
		}
	}

	if _, err := ParseNeedCategory("housing"); err == nil {
		t.Fatal("housing is not a recognized category")
	}
}
