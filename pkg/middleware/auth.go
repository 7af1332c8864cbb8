package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/Oghenemaro93/QGlide/pkg/common"
	"github.com/Oghenemaro93/QGlide/pkg/models"
)

// Claims represents JWT claims issued to riders and drivers. Account state
// flags are embedded in the token so a revoked or suspended account is
// rejected before the request reaches a handler.
type Claims struct {
	UserID      uuid.UUID       `json:"user_id"`
	Role        models.UserRole `json:"role"`
	CountryCode string          `json:"country_code"`
	IsActive    bool            `json:"is_active"`
	IsVerified  bool            `json:"is_verified"`
	IsSuspended bool            `json:"is_suspended"`
	IsDeleted   bool            `json:"is_deleted"`
	jwt.RegisteredClaims
}

// AuthMiddleware validates the Bearer token and gates out accounts that are
// deleted, suspended, deactivated or unverified.
func AuthMiddleware(jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			common.ErrorResponse(c, http.StatusUnauthorized, "authorization required")
			c.Abort()
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			common.ErrorResponse(c, http.StatusUnauthorized, "invalid authorization header format")
			c.Abort()
			return
		}

		token, err := jwt.ParseWithClaims(parts[1], &Claims{}, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return []byte(jwtSecret), nil
		})
		if err != nil || !token.Valid {
			common.ErrorResponse(c, http.StatusUnauthorized, "invalid or expired token")
			c.Abort()
			return
		}

		claims, ok := token.Claims.(*Claims)
		if !ok {
			common.ErrorResponse(c, http.StatusUnauthorized, "invalid token claims")
			c.Abort()
			return
		}

		if msg := accountStateError(claims); msg != "" {
			common.AppErrorResponse(c, common.NewForbiddenError(msg))
			c.Abort()
			return
		}

		c.Set("user_id", claims.UserID)
		c.Set("user_role", claims.Role)
		c.Set("country_code", claims.CountryCode)

		c.Next()
	}
}

func accountStateError(claims *Claims) string {
	switch {
	case claims.IsDeleted:
		return "account has been deleted"
	case claims.IsSuspended:
		return "account is suspended"
	case !claims.IsActive:
		return "account is deactivated"
	case !claims.IsVerified:
		return "account is not verified"
	}
	return ""
}

// RequireRole ensures the authenticated user has one of the given roles.
func RequireRole(roles ...models.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		userRole, exists := c.Get("user_role")
		if !exists {
			common.ErrorResponse(c, http.StatusUnauthorized, "user role not found")
			c.Abort()
			return
		}

		role := userRole.(models.UserRole)
		for _, required := range roles {
			if role == required {
				c.Next()
				return
			}
		}

		common.ErrorResponse(c, http.StatusForbidden, "insufficient permissions")
		c.Abort()
	}
}

// GetUserID extracts the authenticated user ID from context.
func GetUserID(c *gin.Context) (uuid.UUID, error) {
	userID, exists := c.Get("user_id")
	if !exists {
		return uuid.Nil, common.ErrUnauthorized
	}
	return userID.(uuid.UUID), nil
}

// GetUserRole extracts the authenticated user role from context.
func GetUserRole(c *gin.Context) (models.UserRole, error) {
	role, exists := c.Get("user_role")
	if !exists {
		return "", common.ErrUnauthorized
	}
	return role.(models.UserRole), nil
}

// GetActor builds the acting party from the authenticated request context.
func GetActor(c *gin.Context) (models.Actor, error) {
	userID, err := GetUserID(c)
	if err != nil {
		return models.Actor{}, err
	}
	role, err := GetUserRole(c)
	if err != nil {
		return models.Actor{}, err
	}
	actor := models.Actor{ID: userID, Role: role}
	if cc, exists := c.Get("country_code"); exists {
		actor.CountryCode, _ = cc.(string)
	}
	return actor, nil
}
