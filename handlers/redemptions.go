package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// RedeemReward handles POST /api/v1/redemptions
func RedeemReward(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var request struct {
		RewardID string `json:"reward_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	rewardID, err := uuid.Parse(request.RewardID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid reward ID"})
		return
	}

	redemption, err := Redemptions.Redeem(c.Request.Context(), userID, rewardID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"redemption": redemption,
		"message":    "Reward redeemed",
	})
}

// GetMyRedemptions handles GET /api/v1/redemptions
func GetMyRedemptions(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	redemptions, err := Redemptions.ListByUser(c.Request.Context(), userID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"redemptions": redemptions,
		"count":       len(redemptions),
	})
}
