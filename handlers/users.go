package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// GetProfile handles GET /api/v1/users/me
func GetProfile(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	user, err := Store.GetUser(c.Request.Context(), userID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user": gin.H{
			"id":         user.ID,
			"email":      user.Email,
			"full_name":  user.FullName,
			"avatar":     user.Avatar,
			"role":       user.Role,
			"created_at": user.CreatedAt,
		},
		"stats": gin.H{
			"points":           user.Points,
			"total_deliveries": user.TotalDeliveries,
			"total_weight":     user.TotalWeight,
		},
	})
}
