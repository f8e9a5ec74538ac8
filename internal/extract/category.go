package extract

import (
	"fmt"
	"strings"
)

// Category identifies one of the supported insurance document kinds.
type Category string

const (
	CategoryPolicy        Category = "policy"
	CategoryDischarge     Category = "discharge"
	CategoryBills         Category = "bills"
	CategoryReports       Category = "reports"
	CategoryPrescriptions Category = "prescriptions"
	CategoryClaim         Category = "claim"
)

// Categories lists every supported category in the fixed processing order
// used by aggregation: policy, bills, discharge, then the conditional ones.
func Categories() []Category {
	return []Category{
		CategoryPolicy,
		CategoryBills,
		CategoryDischarge,
		CategoryReports,
		CategoryPrescriptions,
		CategoryClaim,
	}
}

// RequiredCategories lists the categories a claim assessment cannot run
// without.
func RequiredCategories() []Category {
	return []Category{CategoryPolicy, CategoryDischarge, CategoryBills}
}

// ParseCategory maps a request path segment to a Category.
func ParseCategory(raw string) (Category, error) {
	switch Category(strings.ToLower(strings.TrimSpace(raw))) {
	case CategoryPolicy:
		return CategoryPolicy, nil
	case CategoryDischarge:
		return CategoryDischarge, nil
	case CategoryBills:
		return CategoryBills, nil
	case CategoryReports:
		return CategoryReports, nil
	case CategoryPrescriptions:
		return CategoryPrescriptions, nil
	case CategoryClaim:
		return CategoryClaim, nil
	default:
		return "", fmt.Errorf("unknown document category %q", raw)
	}
}
