package middleware

import (
	"net/http"

	"restaurant-pos/models"

	"github.com/gin-gonic/gin"
)

// CheckStaffPermissionMiddleware admits admins and staff; everyone else gets 403.
func CheckStaffPermissionMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		role := c.GetString("Role")
		if role != models.RoleAdmin && role != models.RoleStaff {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"message": "Insufficient permissions",
			})
			return
		}

		c.Next()
	}
}

// CheckAdminPermissionMiddleware admits admins only.
func CheckAdminPermissionMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetString("Role") != models.RoleAdmin {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"message": "Admin permission required",
			})
			return
		}

		c.Next()
	}
}
