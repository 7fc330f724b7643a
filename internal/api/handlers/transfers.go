package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"folderr-backend/internal/database"
	"folderr-backend/internal/models"
	"folderr-backend/internal/tasks"
)

// TransferFolder starts (or retargets) an ownership transfer of an asset.
// The folder disappears from the owner's listings until the transfer is
// claimed or cancelled.
func TransferFolder(c *gin.Context) {
	var input struct {
		ToEmail string `json:"to_email" binding:"required,email"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	db := database.GetDB()
	userID := c.GetUint("user_id")

	var folder models.Folder
	if err := db.First(&folder, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Folder not found"})
		return
	}
	if folder.CreatedByID != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "Only the owner can transfer a folder"})
		return
	}
	if !folder.IsRoot {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Only assets can be transferred"})
		return
	}

	transfer, err := folder.TransferToEmail(db, input.ToEmail)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create transfer"})
		return
	}

	tasks.Publish(tasks.SubjectTransferEmail, tasks.TransferEmailTask{TransferID: transfer.ID})

	c.JSON(http.StatusCreated, transfer)
}

// ClaimTransfer completes a transfer addressed to the authenticated user's
// email. Claiming is one-shot; a claimed transfer stays claimed.
func ClaimTransfer(c *gin.Context) {
	db := database.GetDB()
	user := currentUser(c)
	if user == nil {
		return
	}

	var transfer models.FolderTransfer
	if err := db.Where("folder_id = ?", c.Param("id")).First(&transfer).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Transfer not found"})
		return
	}
	if transfer.ToEmail != user.Email {
		c.JSON(http.StatusForbidden, gin.H{"error": "This transfer is not addressed to you"})
		return
	}

	if err := transfer.Claim(db); err != nil {
		switch {
		case errors.Is(err, models.ErrTransferClaimed):
			c.JSON(http.StatusConflict, gin.H{"error": "Transfer already claimed"})
		case errors.Is(err, gorm.ErrRecordNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "No account exists for the transfer target"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to claim transfer"})
		}
		return
	}

	c.JSON(http.StatusOK, transfer)
}

// CancelTransfer aborts a pending transfer and restores the folder's
// visibility.
func CancelTransfer(c *gin.Context) {
	db := database.GetDB()
	userID := c.GetUint("user_id")

	var folder models.Folder
	if err := db.First(&folder, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Folder not found"})
		return
	}
	if folder.CreatedByID != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "Only the owner can cancel a transfer"})
		return
	}

	if err := folder.CancelTransfer(db); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to cancel transfer"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Transfer cancelled"})
}
