package handlers

import (
	"net/http"

	"ecopoints-server/models"
	"ecopoints-server/services"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type itemRequest struct {
	WasteTypeID string  `json:"waste_type_id" binding:"required"`
	Weight      float64 `json:"weight" binding:"required"`
}

func parseItems(c *gin.Context, items []itemRequest) ([]services.ItemInput, bool) {
	inputs := make([]services.ItemInput, 0, len(items))
	for _, item := range items {
		wasteTypeID, err := uuid.Parse(item.WasteTypeID)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid waste type ID"})
			return nil, false
		}
		inputs = append(inputs, services.ItemInput{WasteTypeID: wasteTypeID, Weight: item.Weight})
	}
	return inputs, true
}

// CreateDelivery handles POST /api/v1/deliveries
func CreateDelivery(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var request struct {
		Items    []itemRequest `json:"items" binding:"required"`
		Notes    *string       `json:"notes"`
		PhotoURL *string       `json:"photo_url"`
	}
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	items, ok := parseItems(c, request.Items)
	if !ok {
		return
	}

	delivery, err := Deliveries.CreatePreDelivery(c.Request.Context(), userID, items, request.Notes, request.PhotoURL)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"delivery": delivery,
		"message":  "Delivery registered, bring your materials to the collection point",
	})
}

// GetMyDeliveries handles GET /api/v1/deliveries
func GetMyDeliveries(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	deliveries, err := Deliveries.ListByOwner(c.Request.Context(), userID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"deliveries": deliveries,
		"count":      len(deliveries),
	})
}

// GetPendingDeliveries handles GET /api/v1/deliveries/pending (staff only).
// Oldest first, so the queue is served in arrival order.
func GetPendingDeliveries(c *gin.Context) {
	deliveries, err := Deliveries.ListPending(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"deliveries": deliveries,
		"count":      len(deliveries),
	})
}

// GetDelivery handles GET /api/v1/deliveries/:id
func GetDelivery(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	deliveryID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid delivery ID"})
		return
	}

	delivery, err := Deliveries.Get(c.Request.Context(), deliveryID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	// Students can only see their own deliveries
	if delivery.OwnerID != userID && c.GetString("user_role") != models.RoleStaff {
		c.JSON(http.StatusForbidden, gin.H{"error": "Not your delivery"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"delivery": delivery})
}

// ValidateDelivery handles POST /api/v1/deliveries/:id/validate (staff only)
func ValidateDelivery(c *gin.Context) {
	staffID, ok := currentUserID(c)
	if !ok {
		return
	}

	deliveryID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid delivery ID"})
		return
	}

	var request struct {
		Items []itemRequest `json:"items" binding:"required"`
		Notes *string       `json:"notes"`
	}
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	items, ok := parseItems(c, request.Items)
	if !ok {
		return
	}

	delivery, err := Deliveries.Validate(c.Request.Context(), deliveryID, staffID, items, request.Notes)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"delivery": delivery,
		"message":  "Delivery validated, points credited",
	})
}
