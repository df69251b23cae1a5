package services

import (
	"time"

	"spendtrack/internal/models"
	"spendtrack/internal/pagination"
)

// ProfileUpdate holds the optional fields of a profile edit. Nil means the
// field was not supplied and keeps its current value.
type ProfileUpdate struct {
	Name          *string
	Email         *string
	Currency      *string
	MonthlyBudget *int64
	Password      *string
}

// UserServicer defines the contract for user-related business logic.
type UserServicer interface {
	CreateUser(name, email, password string) (*models.User, error)
	GetUserByEmail(email string) (*models.User, error)
	GetUserByID(id uint) (*models.User, error)
	VerifyPassword(user *models.User, password string) bool
	UpsertGoogleUser(googleID, email, name, avatar string) (*models.User, error)
	UpdateProfile(userID uint, update ProfileUpdate) (*models.User, error)
}

// PasswordResetServicer defines the contract for the OTP reset flow.
type PasswordResetServicer interface {
	RequestReset(email string) (string, error)
	VerifyCode(email, code string) (string, error)
	CompleteReset(token, newPassword string) error
}

// ExpenseUpdate holds the optional fields of an expense edit. Nil means the
// field was not supplied and keeps its current value.
type ExpenseUpdate struct {
	Title       *string
	Amount      *int64
	Category    *models.ExpenseCategory
	Date        *time.Time
	Description *string
}

// CategorySummary is one row of the per-category expense breakdown.
type CategorySummary struct {
	Category models.ExpenseCategory `json:"category"`
	Total    int64                  `json:"total"`
	Count    int64                  `json:"count"`
}

// ExpenseSummary aggregates a user's expenses by category.
type ExpenseSummary struct {
	ByCategory []CategorySummary `json:"by_category"`
	Total      int64             `json:"total"`
}

// ExpenseServicer defines the contract for expense-related business logic.
type ExpenseServicer interface {
	CreateExpense(userID uint, title string, amount int64, category models.ExpenseCategory, date *time.Time, description string) (*models.Expense, error)
	ListExpenses(userID uint, page pagination.PageRequest) (*pagination.PageResponse[models.Expense], error)
	GetExpenseByID(userID, expenseID uint) (*models.Expense, error)
	UpdateExpense(userID, expenseID uint, update ExpenseUpdate) (*models.Expense, error)
	DeleteExpense(userID, expenseID uint) error
	SummarizeExpenses(userID uint) (*ExpenseSummary, error)
}
