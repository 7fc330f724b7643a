package handlers

import (
	"io"
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

// UploadFile stores a document in a folder. The upload is rejected when it
// would push the user over their storage limit.
func UploadFile(c *gin.Context) {
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
	if err := db.First(&folder, uint(folderID)).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Folder not found"})
		return
	}

	capability, err := permissions.Resolve(db, &folder, user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to resolve permissions"})
		return
	}
	if !capability.CanCreate() {
		c.JSON(http.StatusForbidden, gin.H{"error": "No permission to add files to this folder"})
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
	if !user.CanUpload(fileHeader.Size) {
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
		contentType = "application/octet-stream"
	}

	fileID := uuid.NewString()
	objectKey := models.StorageKey(user.ID, fileID, fileHeader.Filename)
	if err := storage.Get().Upload(c.Request.Context(), objectKey, src, fileHeader.Size, contentType); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store file"})
		return
	}

	file := models.File{
		ID:          fileID,
		FileName:    fileHeader.Filename,
		FolderID:    folder.ID,
		CreatedByID: user.ID,
		ObjectKey:   objectKey,
		MimeType:    contentType,
		Size:        fileHeader.Size,
	}
	if err := db.Create(&file).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save file"})
		return
	}

	tasks.Publish(tasks.SubjectFileThumbnail, tasks.FileThumbnailTask{FileID: file.ID})

	c.JSON(http.StatusCreated, file)
}

// ListFiles lists a folder's files.
func ListFiles(c *gin.Context) {
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

	var files []models.File
	if err := db.Where("folder_id = ?", folder.ID).Order("created_at DESC").Find(&files).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch files"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"files": files})
}

// DownloadFile streams the file's bytes from the object store.
func DownloadFile(c *gin.Context) {
	db := database.GetDB()
	userID := c.GetUint("user_id")

	file, folder := loadFile(c)
	if file == nil {
		return
	}

	capability, err := permissions.Resolve(db, folder, userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to resolve permissions"})
		return
	}
	if file.CreatedByID != userID && !capability.CanView() {
		c.JSON(http.StatusForbidden, gin.H{"error": "No permission to view this file"})
		return
	}

	rc, err := storage.Get().Download(c.Request.Context(), file.ObjectKey)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch file"})
		return
	}
	defer rc.Close()

	c.Header("Content-Disposition", `attachment; filename="`+file.FileName+`"`)
	c.Header("Content-Type", file.MimeType)
	if _, err := io.Copy(c.Writer, rc); err != nil {
		return
	}
}

// DeleteFile removes a file and releases its bytes.
func DeleteFile(c *gin.Context) {
	db := database.GetDB()
	userID := c.GetUint("user_id")

	file, folder := loadFile(c)
	if file == nil {
		return
	}

	capability, err := permissions.Resolve(db, folder, userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to resolve permissions"})
		return
	}
	if file.CreatedByID != userID && !capability.CanDelete() {
		c.JSON(http.StatusForbidden, gin.H{"error": "No permission to delete this file"})
		return
	}

	if err := db.Delete(file).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete file"})
		return
	}
	if err := storage.Get().Remove(c.Request.Context(), file.ObjectKey); err != nil {
		// Row is gone; orphaned object is cleaned up by a bucket lifecycle rule.
		c.JSON(http.StatusOK, gin.H{"message": "File deleted, object removal pending"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "File deleted successfully"})
}

func loadFile(c *gin.Context) (*models.File, *models.Folder) {
	db := database.GetDB()
	var file models.File
	if err := db.First(&file, "id = ?", c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "File not found"})
		return nil, nil
	}
	var folder models.Folder
	if err := db.First(&folder, file.FolderID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Folder not found"})
		return nil, nil
	}
	return &file, &folder
}
