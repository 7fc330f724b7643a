package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"folderr-backend/internal/database"
	"folderr-backend/internal/models"
	"folderr-backend/internal/permissions"
)

// CreateNote pins a sticky note to a folder.
func CreateNote(c *gin.Context) {
	var input struct {
		FolderID    uint   `json:"folder_id" binding:"required"`
		Description string `json:"description" binding:"required,max=500"`
		Color       string `json:"color" binding:"required,max=10"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	db := database.GetDB()
	userID := c.GetUint("user_id")

	var folder models.Folder
	if err := db.First(&folder, input.FolderID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Folder not found"})
		return
	}

	capability, err := permissions.Resolve(db, &folder, userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to resolve permissions"})
		return
	}
	if !capability.CanCreate() {
		c.JSON(http.StatusForbidden, gin.H{"error": "No permission to add notes to this folder"})
		return
	}

	note := models.StickyNote{
		CreatedByID: userID,
		Description: input.Description,
		Color:       input.Color,
		FolderID:    folder.ID,
	}
	if err := db.Create(&note).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create note"})
		return
	}

	c.JSON(http.StatusCreated, note)
}

// ListNotes lists a folder's sticky notes.
func ListNotes(c *gin.Context) {
	db := database.GetDB()
	userID := c.GetUint("user_id")

	var folder models.Folder
	if err := db.First(&folder, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Folder not found"})
		return
	}

	capability, err := permissions.Resolve(db, &folder, userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to resolve permissions"})
		return
	}
	if !capability.CanView() {
		c.JSON(http.StatusForbidden, gin.H{"error": "No permission to view this folder"})
		return
	}

	var notes []models.StickyNote
	if err := db.Where("folder_id = ?", folder.ID).Order("created_at DESC").Find(&notes).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch notes"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"notes": notes})
}

// DeleteNote removes a note. Only its author may delete it.
func DeleteNote(c *gin.Context) {
	db := database.GetDB()
	userID := c.GetUint("user_id")

	result := db.Where("id = ? AND created_by_id = ?", c.Param("id"), userID).Delete(&models.StickyNote{})
	if result.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete note"})
		return
	}
	if result.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Note not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Note deleted"})
}
