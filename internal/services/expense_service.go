package services

import (
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	apperrors "spendtrack/internal/errors"
	"spendtrack/internal/models"
	"spendtrack/internal/pagination"
)

// expenseService handles expense-related business logic. Every operation is
// scoped to the owning user.
type expenseService struct {
	db *gorm.DB
}

// NewExpenseService creates a new ExpenseServicer.
func NewExpenseService(db *gorm.DB) ExpenseServicer {
	return &expenseService{db: db}
}

// CreateExpense validates and persists a new expense for the user. The date
// defaults to the current time when omitted.
func (s *expenseService) CreateExpense(
	userID uint,
	title string,
	amount int64,
	category models.ExpenseCategory,
	date *time.Time,
	description string,
) (*models.Expense, error) {
	if strings.TrimSpace(title) == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "Title is required")
	}
	if amount < 0 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "Amount cannot be negative")
	}
	if !category.Valid() {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "Unknown category")
	}

	expenseDate := time.Now()
	if date != nil {
		expenseDate = *date
	}

	expense := &models.Expense{
		UserID:      userID,
		Title:       title,
		Amount:      amount,
		Category:    category,
		Date:        expenseDate,
		Description: description,
	}

	if err := s.db.Create(expense).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	return expense, nil
}

// ListExpenses returns a page of the user's expenses, most recent date first.
func (s *expenseService) ListExpenses(userID uint, page pagination.PageRequest) (*pagination.PageResponse[models.Expense], error) {
	page.Defaults()

	var totalItems int64
	base := s.db.Model(&models.Expense{}).Where("user_id = ?", userID)
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var expenses []models.Expense
	if err := base.Order("date DESC").Scopes(pagination.Paginate(page)).Find(&expenses).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(expenses, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// GetExpenseByID returns an expense if it exists and the user owns it.
// Existence is checked before ownership so a foreign record reads as
// forbidden, not missing.
func (s *expenseService) GetExpenseByID(userID, expenseID uint) (*models.Expense, error) {
	var expense models.Expense
	if err := s.db.First(&expense, expenseID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrExpenseNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if expense.UserID != userID {
		return nil, apperrors.ErrForbidden
	}
	return &expense, nil
}

// UpdateExpense merges only the supplied fields into the expense and
// re-validates the result. The owner reference never changes.
func (s *expenseService) UpdateExpense(userID, expenseID uint, update ExpenseUpdate) (*models.Expense, error) {
	expense, err := s.GetExpenseByID(userID, expenseID)
	if err != nil {
		return nil, err
	}

	if update.Title != nil {
		if strings.TrimSpace(*update.Title) == "" {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "Title cannot be empty")
		}
		expense.Title = *update.Title
	}
	if update.Amount != nil {
		if *update.Amount < 0 {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "Amount cannot be negative")
		}
		expense.Amount = *update.Amount
	}
	if update.Category != nil {
		if !update.Category.Valid() {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "Unknown category")
		}
		expense.Category = *update.Category
	}
	if update.Date != nil {
		expense.Date = *update.Date
	}
	if update.Description != nil {
		expense.Description = *update.Description
	}

	if err := s.db.Save(expense).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	return expense, nil
}

// DeleteExpense removes an expense after the same ownership check. Deleting
// the same record twice fails the second time with not-found.
func (s *expenseService) DeleteExpense(userID, expenseID uint) error {
	expense, err := s.GetExpenseByID(userID, expenseID)
	if err != nil {
		return err
	}

	if err := s.db.Delete(expense).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	return nil
}

// SummarizeExpenses groups the user's expenses by category with summed
// amounts and record counts, ordered by descending total.
func (s *expenseService) SummarizeExpenses(userID uint) (*ExpenseSummary, error) {
	var rows []CategorySummary
	err := s.db.Model(&models.Expense{}).
		Select("category, SUM(amount) AS total, COUNT(*) AS count").
		Where("user_id = ?", userID).
		Group("category").
		Order("total DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	summary := &ExpenseSummary{ByCategory: rows}
	if summary.ByCategory == nil {
		summary.ByCategory = []CategorySummary{}
	}
	for _, row := range rows {
		summary.Total += row.Total
	}

	return summary, nil
}
