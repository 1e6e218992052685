package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// GetBalance handles GET /api/v1/points/balance
func GetBalance(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	balance, err := Ledger.Balance(c.Request.Context(), userID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"balance": balance})
}

// GetPointsHistory handles GET /api/v1/points/history. Entries come back
// in creation order, so the balance can be replayed from them.
func GetPointsHistory(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	entries, err := Ledger.History(c.Request.Context(), userID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"entries": entries,
		"count":   len(entries),
	})
}
