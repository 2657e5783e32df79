package middleware

import (
	"net/http"
	"strings"

	"go-pos-ledger/internal/apperr"
	"go-pos-ledger/internal/auth"
	"go-pos-ledger/internal/logging"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// TenantKey is the gin context key holding the authenticated tenant id.
const TenantKey = "tenantID"

// TokenValidator is implemented by *auth.TokenManager.
type TokenValidator interface {
	ValidateToken(token string) (*auth.Claims, error)
}

func unauthorized(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"title":   apperr.KindUnauthorized.Title(),
		"message": "User is not authorized",
	})
}

// AuthMiddleware checks if the caller has a valid JWT token
func AuthMiddleware(tokens TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Format: "Bearer <token>"
		authHeader := c.GetHeader("Authorization")
		tokenString := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
		if authHeader == "" || tokenString == authHeader || tokenString == "" {
			unauthorized(c)
			return
		}

		claims, err := tokens.ValidateToken(tokenString)
		if err != nil {
			logging.FromContext(c.Request.Context()).Info("token_rejected", zap.Error(err))
			unauthorized(c)
			return
		}

		c.Set(TenantKey, claims.Admin.ID)
		log := logging.FromContext(c.Request.Context()).With(zap.String("tenant_id", claims.Admin.ID))
		c.Request = c.Request.WithContext(logging.ContextWithLogger(c.Request.Context(), log))

		c.Next()
	}
}

// TenantID returns the tenant set by AuthMiddleware, or "".
func TenantID(c *gin.Context) string {
	return c.GetString(TenantKey)
}
