package models

import "time"

// AuthMethod identifies how a user authenticates.
type AuthMethod string

const (
	AuthMethodLocal  AuthMethod = "local"
	AuthMethodGoogle AuthMethod = "google"
)

// User represents the user model in the database.
//
// Google accounts carry no password hash and never go through bcrypt
// comparison. The reset_* columns drive the password-reset flow and are
// cleared as soon as they are consumed or replaced; they are never exposed
// over JSON.
type User struct {
	Base
	Email         string     `gorm:"uniqueIndex;not null" json:"email"`
	Password      string     `json:"-"`
	Name          string     `gorm:"not null" json:"name"`
	Avatar        string     `json:"avatar"`
	AuthMethod    AuthMethod `gorm:"not null;default:local" json:"auth_method"`
	GoogleID      string     `gorm:"index" json:"-"`
	IsVerified    bool       `gorm:"default:false" json:"is_verified"`
	Currency      string     `gorm:"not null;default:USD" json:"currency"`
	MonthlyBudget int64      `gorm:"type:bigint;not null;default:0" json:"monthly_budget"`

	// Password-reset state.
	ResetOTP            string     `json:"-"`
	ResetOTPExpiresAt   *time.Time `json:"-"`
	ResetTokenHash      string     `gorm:"size:64" json:"-"`
	ResetTokenExpiresAt *time.Time `json:"-"`

	Expenses []Expense `gorm:"foreignKey:UserID" json:"expenses,omitempty"`
}
