package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "spendtrack/internal/errors"
	"spendtrack/internal/services"
)

// genericResetMessage is returned for every forgot-password request so the
// response never reveals whether the account exists.
const genericResetMessage = "If an account with that email exists, we have sent a reset code"

// PasswordResetHandler handles the OTP password-reset flow.
type PasswordResetHandler struct {
	resetService services.PasswordResetServicer

	// echoOTP includes the issued code in the forgot-password response.
	// Development only; config refuses to enable it in production.
	echoOTP bool
}

// NewPasswordResetHandler creates a new PasswordResetHandler.
func NewPasswordResetHandler(resetService services.PasswordResetServicer, echoOTP bool) *PasswordResetHandler {
	return &PasswordResetHandler{resetService: resetService, echoOTP: echoOTP}
}

// ForgotPasswordRequest represents the forgot-password request payload
type ForgotPasswordRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// VerifyOTPRequest represents the OTP verification request payload
type VerifyOTPRequest struct {
	Email string `json:"email" binding:"required,email"`
	OTP   string `json:"otp" binding:"required,len=6,numeric"`
}

// ResetPasswordRequest represents the final password reset payload
type ResetPasswordRequest struct {
	Token    string `json:"token" binding:"required"`
	Password string `json:"password" binding:"required,min=6,max=128"`
}

// ForgotPassword issues a one-time reset code and mails it to the account.
// The response is identical whether or not the account exists.
// @Summary     Request a password reset code
// @Description Send a one-time reset code to the given email if an account exists
// @Tags        auth
// @Accept      json
// @Produce     json
// @Param       request body ForgotPasswordRequest true "Account email"
// @Success     200 {object} map[string]string "Generic confirmation"
// @Failure     400 {object} ErrorResponse "Invalid email format"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /auth/forgot-password [post]
func (h *PasswordResetHandler) ForgotPassword(c *gin.Context) {
	var req ForgotPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	code, err := h.resetService.RequestReset(req.Email)
	if err != nil {
		respondWithError(c, err)
		return
	}

	resp := gin.H{"message": genericResetMessage}
	if h.echoOTP && code != "" {
		resp["otp"] = code
	}

	c.JSON(http.StatusOK, resp)
}

// VerifyOTP exchanges a valid code for a reset token.
// @Summary     Verify a password reset code
// @Description Exchange a valid one-time code for a short-lived reset token
// @Tags        auth
// @Accept      json
// @Produce     json
// @Param       request body VerifyOTPRequest true "Email and code"
// @Success     200 {object} map[string]string "Reset token"
// @Failure     400 {object} ErrorResponse "Invalid or expired code"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /auth/verify-otp [post]
func (h *PasswordResetHandler) VerifyOTP(c *gin.Context) {
	var req VerifyOTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.ErrInvalidOrExpiredCode)
		return
	}

	token, err := h.resetService.VerifyCode(req.Email, req.OTP)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":     "OTP verified successfully",
		"reset_token": token,
	})
}

// ResetPassword sets a new password using a previously issued reset token.
// @Summary     Complete a password reset
// @Description Replace the password using the reset token from OTP verification
// @Tags        auth
// @Accept      json
// @Produce     json
// @Param       request body ResetPasswordRequest true "Reset token and new password"
// @Success     200 {object} map[string]string "Password changed"
// @Failure     400 {object} ErrorResponse "Invalid or expired token"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /auth/reset-password [put]
func (h *PasswordResetHandler) ResetPassword(c *gin.Context) {
	var req ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	if err := h.resetService.CompleteReset(req.Token, req.Password); err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Password reset successful"})
}
