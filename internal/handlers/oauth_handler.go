package handlers

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "spendtrack/internal/errors"
	"spendtrack/internal/logger"
	"spendtrack/internal/middleware"
	"spendtrack/internal/oauth"
	"spendtrack/internal/services"
)

const (
	stateCookieName   = "oauth_state"
	stateCookieMaxAge = 600 // seconds
)

// GoogleAuthenticator is the subset of the Google provider the handler needs.
type GoogleAuthenticator interface {
	AuthCodeURL(state string) string
	Exchange(ctx context.Context, code string) (*oauth.GoogleUser, error)
}

// OAuthHandler handles the Google sign-in redirect flow.
type OAuthHandler struct {
	google      GoogleAuthenticator
	userService services.UserServicer
	clientURL   string
}

// NewOAuthHandler creates a new OAuthHandler. clientURL is the browser
// client's origin, the target of the post-login redirects.
func NewOAuthHandler(google GoogleAuthenticator, userService services.UserServicer, clientURL string) *OAuthHandler {
	return &OAuthHandler{google: google, userService: userService, clientURL: clientURL}
}

// GoogleLogin redirects the browser to Google's consent page.
// @Summary     Start Google sign-in
// @Description Redirect to the Google OAuth consent page
// @Tags        auth
// @Success     302 {string} string "Redirect to Google"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /auth/google [get]
func (h *OAuthHandler) GoogleLogin(c *gin.Context) {
	state, err := randomState()
	if err != nil {
		respondWithError(c, apperrors.Wrap(apperrors.ErrInternalServer, err))
		return
	}

	c.SetCookie(stateCookieName, state, stateCookieMaxAge, "/", "", false, true)
	c.Redirect(http.StatusFound, h.google.AuthCodeURL(state))
}

// GoogleCallback completes the consent flow: it validates the state, trades
// the code for a profile, upserts the account, and redirects back to the
// client with a session token. Every failure redirects with an error flag
// instead of rendering an API error.
// @Summary     Google sign-in callback
// @Description Handle the provider redirect and forward a session token to the client
// @Tags        auth
// @Success     302 {string} string "Redirect to client"
// @Router      /auth/google/callback [get]
func (h *OAuthHandler) GoogleCallback(c *gin.Context) {
	failureURL := fmt.Sprintf("%s/login?error=auth_failed", h.clientURL)

	state := c.Query("state")
	cookieState, err := c.Cookie(stateCookieName)
	if err != nil || state == "" || state != cookieState {
		logger.Get().Warnw("google callback state mismatch")
		c.Redirect(http.StatusFound, failureURL)
		return
	}
	// The state is single-use.
	c.SetCookie(stateCookieName, "", -1, "/", "", false, true)

	code := c.Query("code")
	if code == "" {
		c.Redirect(http.StatusFound, failureURL)
		return
	}

	profile, err := h.google.Exchange(c.Request.Context(), code)
	if err != nil {
		logger.Get().Warnw("google code exchange failed", "error", err)
		c.Redirect(http.StatusFound, failureURL)
		return
	}

	user, err := h.userService.UpsertGoogleUser(profile.ID, profile.Email, profile.Name, profile.Picture)
	if err != nil {
		logger.Get().Errorw("google user upsert failed", "error", err)
		c.Redirect(http.StatusFound, failureURL)
		return
	}

	token, err := middleware.GenerateToken(user)
	if err != nil {
		logger.Get().Errorw("token generation failed after google login", "error", err)
		c.Redirect(http.StatusFound, failureURL)
		return
	}

	c.Redirect(http.StatusFound, fmt.Sprintf("%s/auth/success?token=%s", h.clientURL, token))
}

func randomState() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
