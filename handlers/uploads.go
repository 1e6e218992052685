package handlers

import (
	"net/http"

	"ecopoints-server/services"

	"github.com/gin-gonic/gin"
)

// UploadDeliveryPhoto handles POST /api/v1/uploads/delivery-photo. The
// returned URL can be attached to a delivery at registration time.
func UploadDeliveryPhoto(c *gin.Context) {
	if services.Photos == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Photo uploads are not configured"})
		return
	}

	file, header, err := c.Request.FormFile("photo")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Photo file is required"})
		return
	}
	defer file.Close()

	// 10 MB cap
	if header.Size > 10<<20 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Photo must be smaller than 10MB"})
		return
	}

	url, err := services.Photos.UploadDeliveryPhoto(c.Request.Context(), file)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to upload photo"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"photo_url": url})
}
