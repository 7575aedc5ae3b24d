package middleware

import (
	"net/http"
	"strings"

	"safecity-dashboard/be/config"
	"safecity-dashboard/be/logger"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

// Context keys set for authenticated requests.
const (
	ContextUsername = "username"
	ContextRole     = "role"
)

// ParseToken validates an HS256 token and returns its claims.
func ParseToken(tokenString, secret string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, jwt.ErrTokenInvalidClaims
	}
	return claims, nil
}

// TokenFromRequest reads "Authorization: Bearer <token>", then ?token=.
func TokenFromRequest(c *gin.Context) string {
	if authHeader := c.GetHeader("Authorization"); authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return strings.TrimSpace(parts[1])
		}
	}
	return c.Query("token")
}

// AuthMiddleware guards settings writes with the admin token. When no admin
// password is configured every request passes.
func AuthMiddleware(cfg config.JWTConfig) gin.HandlerFunc {
	log := logger.GetLoggerWith(logger.NameAuth)

	return func(c *gin.Context) {
		if !cfg.AuthEnabled() {
			c.Next()
			return
		}

		tokenString := TokenFromRequest(c)
		if tokenString == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "Authorization required"})
			c.Abort()
			return
		}

		claims, err := ParseToken(tokenString, cfg.Secret)
		if err != nil {
			log.Debug("Rejected token", zap.String("path", c.FullPath()), zap.Error(err))
			c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "Invalid or expired token"})
			c.Abort()
			return
		}

		if username, ok := claims["username"].(string); ok {
			c.Set(ContextUsername, username)
		}
		if role, ok := claims["role"].(string); ok {
			c.Set(ContextRole, role)
		}
		c.Next()
	}
}
