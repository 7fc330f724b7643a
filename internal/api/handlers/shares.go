package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"folderr-backend/internal/database"
	"folderr-backend/internal/models"
	"folderr-backend/internal/tasks"
)

// CreateShare grants another user access to a root folder. The receiver is
// either an existing account or an email address that may register later.
func CreateShare(c *gin.Context) {
	var input struct {
		FolderID      uint   `json:"folder_id" binding:"required"`
		Permission    int    `json:"permission" binding:"required,min=1,max=3"`
		ReceiverID    *uint  `json:"receiver_id"`
		ReceiverEmail string `json:"receiver_email"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if input.ReceiverID == nil && input.ReceiverEmail == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "receiver or receiver_email is required"})
		return
	}

	db := database.GetDB()
	userID := c.GetUint("user_id")

	var folder models.Folder
	if err := db.First(&folder, input.FolderID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Folder not found"})
		return
	}
	if folder.CreatedByID != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "Only the owner can share a folder"})
		return
	}

	share := models.Share{
		FolderID:   folder.ID,
		Permission: input.Permission,
		SenderID:   userID,
	}
	if input.ReceiverID != nil {
		if *input.ReceiverID == userID {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Cannot share a folder with yourself"})
			return
		}
		var receiver models.User
		if err := db.First(&receiver, *input.ReceiverID).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Receiver not found"})
			return
		}
		share.ReceiverID = &receiver.ID
	} else {
		// Bind now if the email already has an account.
		receiver, err := models.GetUserByEmail(db, input.ReceiverEmail)
		switch {
		case err == nil:
			if receiver.ID == userID {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Cannot share a folder with yourself"})
				return
			}
			share.ReceiverID = &receiver.ID
		case errors.Is(err, gorm.ErrRecordNotFound):
			share.ReceiverEmail = &input.ReceiverEmail
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to look up receiver"})
			return
		}
	}

	if err := db.Create(&share).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create share"})
		return
	}

	tasks.Publish(tasks.SubjectShareEmail, tasks.ShareEmailTask{ShareID: share.ID})

	c.JSON(http.StatusCreated, share)
}

// ListShares lists the grants on a folder (owner) or the user's received
// grants when no folder is given.
func ListShares(c *gin.Context) {
	db := database.GetDB()
	userID := c.GetUint("user_id")

	folderID := c.Query("folder_id")
	var shares []models.Share
	if folderID != "" {
		var folder models.Folder
		if err := db.First(&folder, folderID).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Folder not found"})
			return
		}
		if folder.CreatedByID != userID {
			c.JSON(http.StatusForbidden, gin.H{"error": "Only the owner can list a folder's shares"})
			return
		}
		if err := db.Where("folder_id = ?", folder.ID).Find(&shares).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch shares"})
			return
		}
	} else {
		if err := db.Where("receiver_id = ?", userID).Find(&shares).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch shares"})
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{"shares": shares})
}

// DeleteShare revokes a grant. The sender may unshare; the receiver may
// leave.
func DeleteShare(c *gin.Context) {
	db := database.GetDB()
	userID := c.GetUint("user_id")

	var share models.Share
	if err := db.First(&share, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Share not found"})
		return
	}
	isReceiver := share.ReceiverID != nil && *share.ReceiverID == userID
	if share.SenderID != userID && !isReceiver {
		c.JSON(http.StatusForbidden, gin.H{"error": "No permission to remove this share"})
		return
	}

	if err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("share_id = ?", share.ID).Delete(&models.ShareNotification{}).Error; err != nil {
			return err
		}
		return tx.Delete(&share).Error
	}); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete share"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Share removed"})
}

// ListShareNotifications returns the user's share notifications, newest
// first.
func ListShareNotifications(c *gin.Context) {
	db := database.GetDB()
	userID := c.GetUint("user_id")

	var notifications []models.ShareNotification
	if err := db.
		Joins("JOIN shares ON shares.id = share_notifications.share_id").
		Where("shares.receiver_id = ?", userID).
		Order("share_notifications.updated_at DESC").
		Find(&notifications).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch notifications"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"notifications": notifications})
}

// MarkNotificationSeen stamps a notification as read.
func MarkNotificationSeen(c *gin.Context) {
	db := database.GetDB()
	userID := c.GetUint("user_id")

	var notification models.ShareNotification
	if err := db.Preload("Share").First(&notification, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Notification not found"})
		return
	}
	if notification.Share == nil || notification.Share.ReceiverID == nil ||
		*notification.Share.ReceiverID != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "Not your notification"})
		return
	}

	now := time.Now()
	if err := db.Model(&notification).Update("seen_at", &now).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update notification"})
		return
	}

	c.JSON(http.StatusOK, notification)
}
