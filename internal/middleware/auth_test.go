package middleware

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"spendtrack/internal/config"
	apperrors "spendtrack/internal/errors"
	"spendtrack/internal/models"
	"spendtrack/internal/services"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

// mockUsers resolves user IDs for the middleware without a database.
type mockUsers struct {
	getUserByIDFn func(id uint) (*models.User, error)
}

func (m *mockUsers) CreateUser(name, email, password string) (*models.User, error) {
	return nil, apperrors.ErrInternalServer
}

func (m *mockUsers) GetUserByEmail(email string) (*models.User, error) {
	return nil, apperrors.ErrUserNotFound
}

func (m *mockUsers) GetUserByID(id uint) (*models.User, error) {
	if m.getUserByIDFn == nil {
		return nil, apperrors.ErrUserNotFound
	}
	return m.getUserByIDFn(id)
}

func (m *mockUsers) VerifyPassword(user *models.User, password string) bool { return false }

func (m *mockUsers) UpsertGoogleUser(googleID, email, name, avatar string) (*models.User, error) {
	return nil, apperrors.ErrInternalServer
}

func (m *mockUsers) UpdateProfile(userID uint, update services.ProfileUpdate) (*models.User, error) {
	return nil, apperrors.ErrInternalServer
}

func setupProtectedRouter(users *mockUsers) *gin.Engine {
	router := gin.New()
	router.GET("/protected", AuthMiddleware(users), func(c *gin.Context) {
		userID := c.MustGet("userID").(uint)
		c.JSON(http.StatusOK, gin.H{"user_id": userID})
	})
	return router
}

func request(router *gin.Engine, authHeader string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func existingUser(id uint) *models.User {
	return &models.User{
		Base:       models.Base{ID: id},
		Email:      "user@example.com",
		AuthMethod: models.AuthMethodLocal,
	}
}

func TestGenerateAndParseToken(t *testing.T) {
	user := existingUser(9)

	token, err := GenerateToken(user)
	if err != nil {
		t.Fatalf("failed to generate token: %v", err)
	}

	claims, err := ParseToken(token)
	if err != nil {
		t.Fatalf("failed to parse token: %v", err)
	}
	if claims.UserID != 9 {
		t.Errorf("expected user ID 9 in claims, got %d", claims.UserID)
	}
	if claims.Issuer != "spendtrack-api" {
		t.Errorf("expected issuer spendtrack-api, got %s", claims.Issuer)
	}
}

func TestAuthMiddleware(t *testing.T) {
	t.Run("valid_token", func(t *testing.T) {
		users := &mockUsers{
			getUserByIDFn: func(id uint) (*models.User, error) {
				return existingUser(id), nil
			},
		}
		router := setupProtectedRouter(users)

		token, err := GenerateToken(existingUser(5))
		if err != nil {
			t.Fatalf("failed to generate token: %v", err)
		}

		w := request(router, "Bearer "+token)
		if w.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
		}

		var body map[string]interface{}
		if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
			t.Fatalf("failed to decode body: %v", err)
		}
		if body["user_id"] != float64(5) {
			t.Errorf("expected user_id 5 in context, got %v", body["user_id"])
		}
	})

	t.Run("missing_header", func(t *testing.T) {
		router := setupProtectedRouter(&mockUsers{})

		w := request(router, "")
		if w.Code != http.StatusUnauthorized {
			t.Errorf("expected 401, got %d", w.Code)
		}
	})

	t.Run("malformed_header", func(t *testing.T) {
		router := setupProtectedRouter(&mockUsers{})

		for _, header := range []string{"Bearer", "Basic abc123", "Bearer a b"} {
			w := request(router, header)
			if w.Code != http.StatusUnauthorized {
				t.Errorf("header %q: expected 401, got %d", header, w.Code)
			}
		}
	})

	t.Run("garbage_token", func(t *testing.T) {
		router := setupProtectedRouter(&mockUsers{})

		w := request(router, "Bearer not-a-jwt")
		if w.Code != http.StatusUnauthorized {
			t.Errorf("expected 401, got %d", w.Code)
		}
	})

	t.Run("expired_token", func(t *testing.T) {
		router := setupProtectedRouter(&mockUsers{
			getUserByIDFn: func(id uint) (*models.User, error) {
				return existingUser(id), nil
			},
		})

		now := time.Now()
		claims := &JWTClaims{
			UserID: 5,
			RegisteredClaims: jwt.RegisteredClaims{
				ExpiresAt: jwt.NewNumericDate(now.Add(-time.Hour)),
				IssuedAt:  jwt.NewNumericDate(now.Add(-2 * time.Hour)),
				Issuer:    "spendtrack-api",
				Subject:   fmt.Sprintf("%d", 5),
			},
		}
		expired, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).
			SignedString([]byte(config.Get().JWTSecret))
		if err != nil {
			t.Fatalf("failed to sign token: %v", err)
		}

		w := request(router, "Bearer "+expired)
		if w.Code != http.StatusUnauthorized {
			t.Errorf("expected 401, got %d", w.Code)
		}
	})

	t.Run("wrong_signing_key", func(t *testing.T) {
		router := setupProtectedRouter(&mockUsers{
			getUserByIDFn: func(id uint) (*models.User, error) {
				return existingUser(id), nil
			},
		})

		claims := &JWTClaims{
			UserID: 5,
			RegisteredClaims: jwt.RegisteredClaims{
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			},
		}
		forged, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).
			SignedString([]byte("some-other-key"))
		if err != nil {
			t.Fatalf("failed to sign token: %v", err)
		}

		w := request(router, "Bearer "+forged)
		if w.Code != http.StatusUnauthorized {
			t.Errorf("expected 401, got %d", w.Code)
		}
	})

	t.Run("vanished_user", func(t *testing.T) {
		router := setupProtectedRouter(&mockUsers{
			getUserByIDFn: func(id uint) (*models.User, error) {
				return nil, apperrors.ErrUserNotFound
			},
		})

		token, err := GenerateToken(existingUser(5))
		if err != nil {
			t.Fatalf("failed to generate token: %v", err)
		}

		w := request(router, "Bearer "+token)
		if w.Code != http.StatusUnauthorized {
			t.Errorf("expected 401, got %d", w.Code)
		}
	})
}
