package models

import "time"

// ExpenseCategory represents the category of an expense
type ExpenseCategory string

const (
	CategoryFood          ExpenseCategory = "Food"
	CategoryTransport     ExpenseCategory = "Transport"
	CategoryEntertainment ExpenseCategory = "Entertainment"
	CategoryUtilities     ExpenseCategory = "Utilities"
	CategoryHealthcare    ExpenseCategory = "Healthcare"
	CategoryOther         ExpenseCategory = "Other"
)

// ExpenseCategories lists every valid category.
var ExpenseCategories = []ExpenseCategory{
	CategoryFood,
	CategoryTransport,
	CategoryEntertainment,
	CategoryUtilities,
	CategoryHealthcare,
	CategoryOther,
}

// Valid reports whether c is a member of the fixed category set.
func (c ExpenseCategory) Valid() bool {
	for _, v := range ExpenseCategories {
		if c == v {
			return true
		}
	}
	return false
}

// Expense represents a single expense record. Amounts are stored in cents.
// The owner reference is set on creation and never changes.
type Expense struct {
	Base
	UserID      uint            `gorm:"not null;index" json:"user_id"`
	Title       string          `gorm:"not null" json:"title"`
	Amount      int64           `gorm:"type:bigint;not null" json:"amount"`
	Category    ExpenseCategory `gorm:"not null" json:"category"`
	Date        time.Time       `gorm:"not null;index" json:"date"`
	Description string          `json:"description"`
}
