package services

import (
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	apperrors "spendtrack/internal/errors"
	"spendtrack/internal/models"
)

// bcryptHash hashes a plaintext password at the default cost.
func bcryptHash(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(hashed), err
}

// userService handles user-related business logic.
type userService struct {
	db *gorm.DB
}

// NewUserService creates a new UserServicer.
func NewUserService(db *gorm.DB) UserServicer {
	return &userService{db: db}
}

// CreateUser registers a new local-credentials user.
func (s *userService) CreateUser(name, email, password string) (*models.User, error) {
	if name == "" || email == "" || password == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "name, email and password are required")
	}

	email = strings.ToLower(email)

	// Check if user with email exists
	var count int64
	s.db.Model(&models.User{}).Where("email = ?", email).Count(&count)
	if count > 0 {
		return nil, apperrors.ErrDuplicateEmail
	}

	hashedPassword, err := bcryptHash(password)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	user := &models.User{
		Name:       name,
		Email:      email,
		Password:   hashedPassword,
		AuthMethod: models.AuthMethodLocal,
		Currency:   "USD",
	}

	if err := s.db.Create(user).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	return user, nil
}

// GetUserByEmail retrieves a user by email
func (s *userService) GetUserByEmail(email string) (*models.User, error) {
	var user models.User
	if err := s.db.Where("email = ?", strings.ToLower(email)).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &user, nil
}

// GetUserByID retrieves a user by ID
func (s *userService) GetUserByID(id uint) (*models.User, error) {
	var user models.User
	if err := s.db.First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &user, nil
}

// VerifyPassword checks if the provided password matches the stored hash.
// Google accounts never have a digest, so the comparison short-circuits
// without invoking bcrypt.
func (s *userService) VerifyPassword(user *models.User, password string) bool {
	if user.AuthMethod != models.AuthMethodLocal || user.Password == "" {
		return false
	}
	err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password))
	return err == nil
}

// UpsertGoogleUser finds or creates the account for a Google sign-in. An
// existing local account with the same email is linked rather than duplicated.
func (s *userService) UpsertGoogleUser(googleID, email, name, avatar string) (*models.User, error) {
	if googleID == "" || email == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "google id and email are required")
	}

	email = strings.ToLower(email)

	var user models.User
	err := s.db.Where("google_id = ?", googleID).First(&user).Error
	if err == nil {
		return &user, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	// Link by email if the address already has an account.
	err = s.db.Where("email = ?", email).First(&user).Error
	if err == nil {
		user.GoogleID = googleID
		if user.Avatar == "" {
			user.Avatar = avatar
		}
		user.IsVerified = true
		if err := s.db.Save(&user).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return &user, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	user = models.User{
		Name:       name,
		Email:      email,
		Avatar:     avatar,
		AuthMethod: models.AuthMethodGoogle,
		GoogleID:   googleID,
		IsVerified: true,
		Currency:   "USD",
	}
	if err := s.db.Create(&user).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	return &user, nil
}

// UpdateProfile merges the supplied fields into the user's profile. The
// password is only replaced for local-credentials accounts.
func (s *userService) UpdateProfile(userID uint, update ProfileUpdate) (*models.User, error) {
	user, err := s.GetUserByID(userID)
	if err != nil {
		return nil, err
	}

	if update.Name != nil {
		if *update.Name == "" {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "name cannot be empty")
		}
		user.Name = *update.Name
	}

	if update.Email != nil {
		email := strings.ToLower(*update.Email)
		if email != user.Email {
			var count int64
			s.db.Model(&models.User{}).Where("email = ? AND id <> ?", email, user.ID).Count(&count)
			if count > 0 {
				return nil, apperrors.ErrDuplicateEmail
			}
			user.Email = email
		}
	}

	if update.Currency != nil {
		user.Currency = *update.Currency
	}

	if update.MonthlyBudget != nil {
		if *update.MonthlyBudget < 0 {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "monthly budget cannot be negative")
		}
		user.MonthlyBudget = *update.MonthlyBudget
	}

	if update.Password != nil && user.AuthMethod == models.AuthMethodLocal {
		hashed, err := bcryptHash(*update.Password)
		if err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		user.Password = hashed
	}

	if err := s.db.Save(user).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	return user, nil
}
