package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// GetWasteTypes handles GET /api/v1/waste-types
func GetWasteTypes(c *gin.Context) {
	types, err := Catalog.ListWasteTypes(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"waste_types": types,
		"count":       len(types),
	})
}

// GetRewards handles GET /api/v1/rewards
func GetRewards(c *gin.Context) {
	rewards, err := Catalog.ListRewards(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"rewards": rewards,
		"count":   len(rewards),
	})
}
