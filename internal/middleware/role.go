package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"resortbooking/internal/pkg/response"
)

// RequireRole ensures the authenticated user has one of the given roles.
func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, exists := c.Get("role")
		if !exists {
			response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "Role not found in token")
			c.Abort()
			return
		}

		for _, allowed := range roles {
			if role.(string) == allowed {
				c.Next()
				return
			}
		}

		response.Error(c, http.StatusForbidden, "FORBIDDEN", "Access denied: insufficient permissions")
		c.Abort()
	}
}

// StaffOnly allows reception staff and admins.
func StaffOnly() gin.HandlerFunc {
	return RequireRole("staff", "admin")
}

// AdminOnly allows admins.
func AdminOnly() gin.HandlerFunc {
	return RequireRole("admin")
}
