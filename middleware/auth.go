package middleware

import (
	"log/slog"
	"strings"

	"restaurant-pos/jwt"
	"restaurant-pos/logger"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// AuthMiddleware attaches the caller's identity when a valid bearer token is present.
// It never rejects; CheckLoginMiddleware does that.
func AuthMiddleware(db *gorm.DB, tokens *jwt.Manager, log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		token := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))

		if token == "" {
			c.Next()
			return
		}

		claims, err := tokens.VerifyToken(token, db)
		if err != nil {
			log.Warn("token_rejected", c.GetString(RequestIDKey), "Invalid token", slog.String("reason", err.Error()))
			c.Next()
			return
		}

		c.Set("Token", token)
		c.Set("UserID", claims.UserID)
		c.Set("Username", claims.Username)
		c.Set("Role", claims.Role)
		c.Next()
	}
}
