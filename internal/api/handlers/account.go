package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"folderr-backend/internal/database"
	"folderr-backend/internal/models"
)

// GetProfile returns the account with its tier limits and usage.
func GetProfile(c *gin.Context) {
	db := database.GetDB()
	user := currentUser(c)
	if user == nil {
		return
	}

	assetCount, err := user.AssetCount(db)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count assets"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user": user,
		"limits": gin.H{
			"max_assets":        user.MaxAssets(),
			"max_storage":       user.MaxStorage(),
			"max_receipt_scans": user.MaxReceiptScans(),
			"max_emails":        user.MaxEmails(),
		},
		"usage": gin.H{
			"assets":             assetCount,
			"storage_bytes_used": user.StorageBytesUsed,
			"receipt_scans":      user.ReceiptScans,
			"emails_received":    user.EmailsReceived,
		},
	})
}

// UpdateProfile updates the user's name.
func UpdateProfile(c *gin.Context) {
	var input struct {
		FirstName string `json:"first_name" binding:"max=100"`
		LastName  string `json:"last_name" binding:"max=100"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	db := database.GetDB()
	user := currentUser(c)
	if user == nil {
		return
	}

	updates := map[string]interface{}{}
	if input.FirstName != "" {
		updates["first_name"] = input.FirstName
	}
	if input.LastName != "" {
		updates["last_name"] = input.LastName
	}
	if len(updates) > 0 {
		if err := db.Model(user).Updates(updates).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update profile"})
			return
		}
	}

	c.JSON(http.StatusOK, user)
}

// SetMembership switches the account between Free and Plus. Billing
// verification lives outside this service; this endpoint applies the
// already-verified tier.
func SetMembership(c *gin.Context) {
	var input struct {
		Membership *int `json:"membership" binding:"required,min=0,max=1"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	db := database.GetDB()
	user := currentUser(c)
	if user == nil {
		return
	}

	var err error
	if *input.Membership == models.PlusMembership {
		err = user.UpgradeToPlus(db)
	} else {
		err = user.DowngradeToFree(db)
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update membership"})
		return
	}

	c.JSON(http.StatusOK, user)
}

// HealthCheck reports service liveness.
func HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
