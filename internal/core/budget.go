package core

import (
	"errors"
	"strings"
)

// Category is a spending taxonomy entry; subcategories point at a parent.
type Category struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	ParentID string `json:"parentId,omitempty"` // empty for top-level categories
}

// Budget is a monthly spending ceiling for a category or a single
// subcategory. An empty SubcategoryID means the whole category is budgeted.
type Budget struct {
	CategoryID    string `json:"categoryId"`
	SubcategoryID string `json:"subcategoryId,omitempty"`
	Month         Month  `json:"month"`
	Planned       Money  `json:"planned"`
}

var ErrMissingCategory = errors.New("budget category is required")

func (b Budget) Validate() error {
	if strings.TrimSpace(b.CategoryID) == "" {
		return ErrMissingCategory
	}
	if b.Planned.Cents < 0 {
		return ErrInvalidAmount
	}
	return nil
}

// CategoryIndex resolves category ids to display names.
type CategoryIndex map[string]string

// NewCategoryIndex builds a lookup from a category list. A nil index is safe
// to use and resolves everything to the empty string.
func NewCategoryIndex(cats []Category) CategoryIndex {
	idx := make(CategoryIndex, len(cats))
	for _, c := range cats {
		idx[c.ID] = c.Name
	}
	return idx
}

// Name resolves an id, returning "" for unknown ids or a nil index.
func (idx CategoryIndex) Name(id string) string {
	if idx == nil {
		return ""
	}
	return idx[id]
}
