package handlers

import (
	"errors"
	"net/http"

	"ecopoints-server/models"
	"ecopoints-server/services"

	"github.com/gin-gonic/gin"
)

// StaffMiddleware checks that the caller is collection point staff. The
// role is re-read from the store rather than trusted from the token, so a
// role change takes effect without waiting for tokens to expire.
func StaffMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c)
		if !ok {
			c.Abort()
			return
		}

		user, err := Store.GetUser(c.Request.Context(), userID)
		if errors.Is(err, services.ErrUserNotFound) {
			// Token outlived its user
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
			c.Abort()
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check user role"})
			c.Abort()
			return
		}

		if user.Role != models.RoleStaff {
			c.JSON(http.StatusForbidden, gin.H{"error": "Staff access required"})
			c.Abort()
			return
		}

		c.Next()
	}
}
