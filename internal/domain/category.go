package domain

import (
	"fmt"
	"strings"
)

type CategoryType string

const (
	CategoryTypeIncome  CategoryType = "income"
	CategoryTypeExpense CategoryType = "expense"
)

// ParseCategoryType accepts exactly "income" or "expense".
func ParseCategoryType(s string) (CategoryType, error) {
	switch CategoryType(strings.TrimSpace(s)) {
	case CategoryTypeIncome:
		return CategoryTypeIncome, nil
	case CategoryTypeExpense:
		return CategoryTypeExpense, nil
	default:
		return "", fmt.Errorf("invalid category type %q", s)
	}
}

func (t CategoryType) Valid() bool {
	return t == CategoryTypeIncome || t == CategoryTypeExpense
}

// Category is a per-user bucket for transactions.
type Category struct {
	ID     int64
	UserID int64
	Name   string
	Type   CategoryType
}
