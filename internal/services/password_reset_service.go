package services

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"gorm.io/gorm"

	apperrors "spendtrack/internal/errors"
	"spendtrack/internal/logger"
	"spendtrack/internal/mailer"
	"spendtrack/internal/models"
)

const (
	otpTTL          = 10 * time.Minute
	resetTokenTTL   = 30 * time.Minute
	resetTokenBytes = 20
	mailTimeout     = 20 * time.Second
)

// passwordResetService implements the OTP password-reset flow: issue a short
// code over email, exchange it for a longer-lived opaque token, then change
// the password with that token. Only the SHA-256 of the token is ever stored.
type passwordResetService struct {
	db         *gorm.DB
	dispatcher mailer.Dispatcher
}

// NewPasswordResetService creates a new PasswordResetServicer using the given
// mail dispatcher.
func NewPasswordResetService(db *gorm.DB, dispatcher mailer.Dispatcher) PasswordResetServicer {
	return &passwordResetService{db: db, dispatcher: dispatcher}
}

// RequestReset issues a fresh one-time code for the account behind email and
// mails it. To prevent account enumeration it succeeds silently when the
// account does not exist or uses Google sign-in; no code is issued in either
// case. A previously issued code is overwritten.
//
// The returned code feeds the debug-echo path only and must never reach a
// response in production configurations.
func (s *passwordResetService) RequestReset(email string) (string, error) {
	user, err := s.userByEmail(email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Get().Infow("password reset requested for unknown email")
			return "", nil
		}
		return "", apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	if user.AuthMethod != models.AuthMethodLocal {
		logger.Get().Infow("password reset requested for google account", "user_id", user.ID)
		return "", nil
	}

	code, err := generateOTP()
	if err != nil {
		return "", apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	expiresAt := time.Now().Add(otpTTL)

	updates := map[string]interface{}{
		"reset_otp":            code,
		"reset_otp_expires_at": expiresAt,
	}
	if err := s.db.Model(&models.User{}).Where("id = ?", user.ID).Updates(updates).Error; err != nil {
		return "", apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	htmlBody, textBody, err := mailer.RenderOTPEmail(user.Name, code)
	if err != nil {
		logger.Get().Errorw("failed to render OTP email", "error", err)
		return code, nil
	}
	s.dispatch(user.Email, "Password Reset Code - Spendtrack", htmlBody, textBody)

	return code, nil
}

// VerifyCode exchanges a valid, unexpired code for an opaque reset token.
// The check and the clear happen in one conditional UPDATE, so a code can be
// consumed at most once even under concurrent verification attempts.
func (s *passwordResetService) VerifyCode(email, code string) (string, error) {
	if email == "" || code == "" {
		return "", apperrors.ErrInvalidOrExpiredCode
	}

	token, err := generateResetToken()
	if err != nil {
		return "", apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	res := s.db.Model(&models.User{}).
		Where("email = ? AND reset_otp = ? AND reset_otp_expires_at > ?", strings.ToLower(email), code, time.Now()).
		Updates(map[string]interface{}{
			"reset_otp":              "",
			"reset_otp_expires_at":   nil,
			"reset_token_hash":       hashToken(token),
			"reset_token_expires_at": time.Now().Add(resetTokenTTL),
		})
	if res.Error != nil {
		return "", apperrors.Wrap(apperrors.ErrInternalServer, res.Error)
	}
	if res.RowsAffected == 0 {
		return "", apperrors.ErrInvalidOrExpiredCode
	}

	return token, nil
}

// CompleteReset replaces the password of the account holding the token's
// hash, provided the token has not expired. The token fields are cleared in
// the same update, so a token works exactly once.
func (s *passwordResetService) CompleteReset(token, newPassword string) error {
	if token == "" || newPassword == "" {
		return apperrors.ErrInvalidOrExpiredToken
	}

	var user models.User
	err := s.db.Where("reset_token_hash = ? AND reset_token_expires_at > ?", hashToken(token), time.Now()).
		First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrInvalidOrExpiredToken
		}
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	hashed, err := bcryptHash(newPassword)
	if err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	updates := map[string]interface{}{
		"password":               hashed,
		"reset_token_hash":       "",
		"reset_token_expires_at": nil,
	}
	if err := s.db.Model(&models.User{}).Where("id = ?", user.ID).Updates(updates).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	// Best-effort confirmation; the password has already changed.
	htmlBody, textBody, err := mailer.RenderResetConfirmationEmail(user.Name, user.Email, time.Now())
	if err != nil {
		logger.Get().Errorw("failed to render confirmation email", "error", err)
		return nil
	}
	s.dispatch(user.Email, "Password Updated Successfully - Spendtrack", htmlBody, textBody)

	return nil
}

func (s *passwordResetService) userByEmail(email string) (*models.User, error) {
	var user models.User
	if err := s.db.Where("email = ?", strings.ToLower(email)).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// dispatch sends mail inside a non-propagating boundary: failures are logged
// and never surface to the caller.
func (s *passwordResetService) dispatch(to, subject, htmlBody, textBody string) {
	ctx, cancel := context.WithTimeout(context.Background(), mailTimeout)
	defer cancel()

	if err := s.dispatcher.Send(ctx, to, subject, htmlBody, textBody); err != nil {
		logger.Get().Warnw("mail dispatch failed", "subject", subject, "error", err)
	}
}

// generateOTP returns a uniformly random 6-digit code, zero-padded to fixed
// width so leading zeros survive.
func generateOTP() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

// generateResetToken returns a hex-encoded opaque token with 20 bytes of entropy.
func generateResetToken() (string, error) {
	buf := make([]byte, resetTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

// hashToken returns the SHA-256 hex digest of a token string.
func hashToken(token string) string {
	h := sha256.Sum256([]byte(token))
	return hex.EncodeToString(h[:])
}
