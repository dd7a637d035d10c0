package domain

import dErrors "warmpath/pkg/domain-errors"

// Category is the business classification of a contact.
//
// Usage: construct via ParseCategory at trust boundaries (classifier
// responses, API input) to enforce the allowlist; direct casting bypasses
// validation.
type Category string

const (
	CategoryVC            Category = "vc"
	CategoryAngel         Category = "angel"
	CategorySalesProspect Category = "sales_prospect"
	CategoryIrrelevant    Category = "irrelevant"
	CategoryUncategorized Category = "uncategorized"
)

// validCategories is the single source of truth for valid categories.
var validCategories = map[Category]bool{
	CategoryVC:            true,
	CategoryAngel:         true,
	CategorySalesProspect: true,
	CategoryIrrelevant:    true,
	CategoryUncategorized: true,
}

// ParseCategory constructs a Category from external input.
//
// Errors: returns CodeInvalidInput when the value is empty or unsupported.
// Classifier responses that fail this check are treated as collaborator
// failures, never stored.
func ParseCategory(s string) (Category, error) {
	if s == "" {
		return "", dErrors.New(dErrors.CodeInvalidInput, "category cannot be empty")
	}
	c := Category(s)
	if !c.IsValid() {
		return "", dErrors.Newf(dErrors.CodeInvalidInput, "invalid category %q", s)
	}
	return c, nil
}

// IsValid checks if the category is one of the supported enum values.
func (c Category) IsValid() bool { return validCategories[c] }

func (c Category) String() string { return string(c) }

// CategorySource records which authority assigned a contact's category.
type CategorySource string

const (
	CategorySourceRule       CategorySource = "rule"
	CategorySourceClassifier CategorySource = "external-classifier"
	CategorySourceManual     CategorySource = "manual"
)

func (s CategorySource) String() string { return string(s) }
