package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"folderr-backend/internal/database"
	"folderr-backend/internal/models"
	"folderr-backend/internal/permissions"
)

// CreateFolder handles creation of both assets (root folders) and
// subfolders. Assets count against the tier limit; subfolders need create
// permission on a root parent.
func CreateFolder(c *gin.Context) {
	var input struct {
		Title        string      `json:"title" binding:"required,min=1,max=100"`
		ParentID     *uint       `json:"parent_id"`
		AssetTypeID  *uint       `json:"asset_type_id"`
		FolderTypeID uint        `json:"folder_type_id"`
		CustomFields models.JSON `json:"custom_fields"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: folder title is required"})
		return
	}

	db := database.GetDB()
	user := currentUser(c)
	if user == nil {
		return
	}

	if input.ParentID == nil {
		ok, err := user.CanCreateAsset(db)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check asset limit"})
			return
		}
		if !ok {
			c.JSON(http.StatusForbidden, gin.H{"error": "Asset limit reached for your plan"})
			return
		}
	} else {
		var parent models.Folder
		if err := db.First(&parent, *input.ParentID).Error; err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Parent folder not found"})
			return
		}
		// Two-level tree only: the parent must itself be a root folder.
		if !parent.IsRoot {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Subfolders cannot be nested"})
			return
		}
		capability, err := permissions.Resolve(db, &parent, user.ID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to resolve permissions"})
			return
		}
		if !capability.CanCreate() {
			c.JSON(http.StatusForbidden, gin.H{"error": "No permission to add to this folder"})
			return
		}
	}

	folderTypeID := input.FolderTypeID
	if folderTypeID == 0 {
		folderTypeID = 1
	}
	folder := models.Folder{
		Title:        input.Title,
		ParentID:     input.ParentID,
		AssetTypeID:  input.AssetTypeID,
		FolderTypeID: folderTypeID,
		CustomFields: input.CustomFields,
		CreatedByID:  user.ID,
	}
	if err := db.Create(&folder).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create folder"})
		return
	}

	c.JSON(http.StatusCreated, folder)
}

// ListFolders lists the user's visible folders plus those shared with them.
func ListFolders(c *gin.Context) {
	db := database.GetDB()
	userID, _ := c.Get("user_id")

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))
	search := c.Query("search")
	parentID := c.Query("parent_id")

	sharedIDs := db.Model(&models.Share{}).Select("folder_id").Where("receiver_id = ?", userID)
	query := db.Model(&models.Folder{}).
		Where("(created_by_id = ? AND visible = ?) OR id IN (?)", userID, true, sharedIDs)

	if search != "" {
		query = query.Where("title ILIKE ?", "%"+search+"%")
	}
	if parentID != "" {
		if parentID == "root" {
			query = query.Where("parent_id IS NULL")
		} else {
			query = query.Where("parent_id = ?", parentID)
		}
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count folders"})
		return
	}

	var folders []models.Folder
	offset := (page - 1) * limit
	if err := query.Offset(offset).Limit(limit).
		Order("created_at DESC").
		Find(&folders).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch folders"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"folders": folders,
		"pagination": gin.H{
			"current_page": page,
			"total_pages":  (total + int64(limit) - 1) / int64(limit),
			"total_items":  total,
			"per_page":     limit,
		},
	})
}

// GetFolder retrieves a folder the user owns or has view access to.
func GetFolder(c *gin.Context) {
	db := database.GetDB()
	userID := c.GetUint("user_id")

	var folder models.Folder
	if err := db.Preload("Subfolders").First(&folder, c.Param("id")).Error; err != nil {
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

	c.JSON(http.StatusOK, folder)
}

// UpdateFolder updates title and custom fields. The AI subfolder is managed
// by the system and cannot be renamed.
func UpdateFolder(c *gin.Context) {
	var input struct {
		Title        string      `json:"title"`
		CustomFields models.JSON `json:"custom_fields"`
		IsPublic     *bool       `json:"is_public"`
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
	if folder.Title == models.AIFolderTitle && !folder.IsRoot {
		c.JSON(http.StatusForbidden, gin.H{"error": "The AI folder cannot be modified"})
		return
	}

	capability, err := permissions.Resolve(db, &folder, userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to resolve permissions"})
		return
	}
	if !capability.CanUpdate() {
		c.JSON(http.StatusForbidden, gin.H{"error": "No permission to update this folder"})
		return
	}

	updates := map[string]interface{}{}
	if input.Title != "" {
		updates["title"] = input.Title
	}
	if input.CustomFields != nil {
		updates["custom_fields"] = input.CustomFields
	}
	if input.IsPublic != nil {
		updates["is_public"] = *input.IsPublic
	}
	if len(updates) > 0 {
		if err := db.Model(&folder).Updates(updates).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update folder"})
			return
		}
	}

	c.JSON(http.StatusOK, folder)
}

// DeleteFolder removes a folder and everything in it.
func DeleteFolder(c *gin.Context) {
	db := database.GetDB()
	userID := c.GetUint("user_id")

	var folder models.Folder
	if err := db.First(&folder, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Folder not found"})
		return
	}
	if folder.Title == models.AIFolderTitle && !folder.IsRoot {
		c.JSON(http.StatusForbidden, gin.H{"error": "The AI folder cannot be deleted"})
		return
	}

	capability, err := permissions.Resolve(db, &folder, userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to resolve permissions"})
		return
	}
	if !capability.CanDelete() {
		c.JSON(http.StatusForbidden, gin.H{"error": "No permission to delete this folder"})
		return
	}

	if err := folder.DeleteCascade(db); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete folder"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Folder deleted successfully"})
}
