package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/Oghenemaro93/QGlide/pkg/models"
)

const testSecret = "test-secret"

func signToken(t *testing.T, claims *Claims) string {
	t.Helper()
	claims.RegisteredClaims = jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	assert.NoError(t, err)
	return token
}

func activeClaims(role models.UserRole) *Claims {
	return &Claims{
		UserID:      uuid.New(),
		Role:        role,
		CountryCode: "US",
		IsActive:    true,
		IsVerified:  true,
	}
}

func authRequest(token string, handlers ...gin.HandlerFunc) *httptest.ResponseRecorder {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/protected", handlers...)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestAuthMiddleware_ValidToken(t *testing.T) {
	claims := activeClaims(models.RoleRider)
	token := signToken(t, claims)

	var actor models.Actor
	w := authRequest(token, AuthMiddleware(testSecret), func(c *gin.Context) {
		var err error
		actor, err = GetActor(c)
		assert.NoError(t, err)
		c.Status(http.StatusOK)
	})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, claims.UserID, actor.ID)
	assert.Equal(t, models.RoleRider, actor.Role)
	assert.Equal(t, "US", actor.CountryCode)
}

func TestAuthMiddleware_MissingToken(t *testing.T) {
	w := authRequest("", AuthMiddleware(testSecret), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthMiddleware_WrongSecret(t *testing.T) {
	claims := activeClaims(models.RoleRider)
	claims.RegisteredClaims = jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("other-secret"))
	assert.NoError(t, err)

	w := authRequest(token, AuthMiddleware(testSecret), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthMiddleware_AccountStateGates(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Claims)
	}{
		{"deleted account", func(c *Claims) { c.IsDeleted = true }},
		{"suspended account", func(c *Claims) { c.IsSuspended = true }},
		{"deactivated account", func(c *Claims) { c.IsActive = false }},
		{"unverified account", func(c *Claims) { c.IsVerified = false }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims := activeClaims(models.RoleDriver)
			tt.mutate(claims)
			token := signToken(t, claims)

			w := authRequest(token, AuthMiddleware(testSecret), func(c *gin.Context) {
				c.Status(http.StatusOK)
			})
			assert.Equal(t, http.StatusForbidden, w.Code)
		})
	}
}

func TestRequireRole(t *testing.T) {
	token := signToken(t, activeClaims(models.RoleRider))

	w := authRequest(token, AuthMiddleware(testSecret), RequireRole(models.RoleDriver), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = authRequest(token, AuthMiddleware(testSecret), RequireRole(models.RoleRider, models.RoleDriver), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	assert.Equal(t, http.StatusOK, w.Code)
}
