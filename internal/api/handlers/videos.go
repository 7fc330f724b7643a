package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"folderr-backend/internal/config"
	"folderr-backend/internal/database"
	"folderr-backend/internal/models"
	"folderr-backend/internal/permissions"
	"folderr-backend/internal/storage"
	"folderr-backend/internal/tasks"
)

// UploadVideo stores a video in a folder. Bytes are charged to the folder
// owner; the worker flips status to ready once processing finishes.
func UploadVideo(c *gin.Context) {
	db := database.GetDB()
	user := currentUser(c)
	if user == nil {
		return
	}

	folderID, err := strconv.ParseUint(c.PostForm("folder_id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "folder_id is required"})
		return
	}
	var folder models.Folder
	if err := db.Preload("CreatedBy").First(&folder, uint(folderID)).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Folder not found"})
		return
	}

	capability, err := permissions.Resolve(db, &folder, user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to resolve permissions"})
		return
	}
	if !capability.CanCreate() {
		c.JSON(http.StatusForbidden, gin.H{"error": "No permission to add videos to this folder"})
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file is required"})
		return
	}
	if fileHeader.Size > config.Get().Storage.MaxUploadSize {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "File too large"})
		return
	}
	// Video bytes count against the folder owner's quota.
	if folder.CreatedBy != nil && !folder.CreatedBy.CanUpload(fileHeader.Size) {
		c.JSON(http.StatusForbidden, gin.H{"error": models.ErrStorageLimitExceeded.Error()})
		return
	}

	src, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read upload"})
		return
	}
	defer src.Close()

	contentType := fileHeader.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "video/mp4"
	}

	videoID := uuid.NewString()
	objectKey := models.StorageKey(folder.CreatedByID, videoID, fileHeader.Filename)
	if err := storage.Get().Upload(c.Request.Context(), objectKey, src, fileHeader.Size, contentType); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store video"})
		return
	}

	video := models.VideoFile{
		ID:        videoID,
		Title:     fileHeader.Filename,
		FolderID:  folder.ID,
		ObjectKey: objectKey,
		Size:      fileHeader.Size,
	}
	if err := db.Create(&video).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save video"})
		return
	}

	tasks.Publish(tasks.SubjectVideoThumbnail, tasks.VideoThumbnailTask{VideoID: video.ID})

	c.JSON(http.StatusCreated, video)
}

// ListVideos lists a folder's videos.
func ListVideos(c *gin.Context) {
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

	var videos []models.VideoFile
	if err := db.Where("folder_id = ?", folder.ID).Order("created_at DESC").Find(&videos).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch videos"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"videos": videos})
}

// DeleteVideo removes a video and releases its bytes.
func DeleteVideo(c *gin.Context) {
	db := database.GetDB()
	userID := c.GetUint("user_id")

	var video models.VideoFile
	if err := db.First(&video, "id = ?", c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Video not found"})
		return
	}
	var folder models.Folder
	if err := db.First(&folder, video.FolderID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Folder not found"})
		return
	}

	capability, err := permissions.Resolve(db, &folder, userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to resolve permissions"})
		return
	}
	if !capability.CanDelete() {
		c.JSON(http.StatusForbidden, gin.H{"error": "No permission to delete this video"})
		return
	}

	if err := db.Delete(&video).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete video"})
		return
	}
	if err := storage.Get().Remove(c.Request.Context(), video.ObjectKey); err != nil {
		c.JSON(http.StatusOK, gin.H{"message": "Video deleted, object removal pending"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Video deleted successfully"})
}
