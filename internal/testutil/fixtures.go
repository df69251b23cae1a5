package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"spendtrack/internal/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// counter provides unique values across fixtures within a test run.
var counter atomic.Int64

func nextID() int64 {
	return counter.Add(1)
}

// CreateTestUser creates a local user with a hashed password and unique email.
// The plaintext password is always "password123".
func CreateTestUser(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()
	email := fmt.Sprintf("user%d@test.com", nextID())
	return CreateTestUserWithEmail(t, db, email)
}

// CreateTestUserWithEmail creates a local user with the given email.
func CreateTestUserWithEmail(t *testing.T, db *gorm.DB, email string) *models.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	user := &models.User{
		Name:       fmt.Sprintf("Test User %d", nextID()),
		Email:      email,
		Password:   string(hash),
		AuthMethod: models.AuthMethodLocal,
		Currency:   "USD",
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

// CreateTestGoogleUser creates a user that authenticates via Google and
// carries no password hash.
func CreateTestGoogleUser(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()

	n := nextID()
	user := &models.User{
		Name:       fmt.Sprintf("Google User %d", n),
		Email:      fmt.Sprintf("google%d@test.com", n),
		AuthMethod: models.AuthMethodGoogle,
		GoogleID:   fmt.Sprintf("google-sub-%d", n),
		IsVerified: true,
		Currency:   "USD",
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create test google user: %v", err)
	}
	return user
}

// CreateTestExpense creates an expense for the user with the given category and amount (in cents).
func CreateTestExpense(t *testing.T, db *gorm.DB, userID uint, category models.ExpenseCategory, amount int64) *models.Expense {
	t.Helper()
	return CreateTestExpenseOnDate(t, db, userID, category, amount, time.Now())
}

// CreateTestExpenseOnDate creates an expense dated at the given time.
func CreateTestExpenseOnDate(t *testing.T, db *gorm.DB, userID uint, category models.ExpenseCategory, amount int64, date time.Time) *models.Expense {
	t.Helper()

	expense := &models.Expense{
		UserID:   userID,
		Title:    fmt.Sprintf("Test Expense %d", nextID()),
		Amount:   amount,
		Category: category,
		Date:     date,
	}
	if err := db.Create(expense).Error; err != nil {
		t.Fatalf("failed to create test expense: %v", err)
	}
	return expense
}
