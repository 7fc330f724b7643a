package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Video processing states
const (
	VideoStatusProcessing = 0
	VideoStatusReady      = 1
)

// File is a document stored in a folder. Bytes live in the object store
// under ObjectKey; the row carries the metadata.
type File struct {
	ID           string  `json:"id" gorm:"primarykey"`
	FileName     string  `json:"file_name" gorm:"size:1000;not null"`
	FolderID     uint    `json:"folder_id" gorm:"not null;index"`
	Folder       *Folder `json:"-"`
	CreatedByID  uint    `json:"created_by_id" gorm:"not null;index"`
	CreatedBy    *User   `json:"-"`
	ObjectKey    string  `json:"-" gorm:"not null"`
	ThumbnailKey string  `json:"-"`
	MimeType     string  `json:"mime_type"`
	Size         int64   `json:"size" gorm:"not null;default:0"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
	DeletedAt    gorm.DeletedAt `gorm:"index"`
}

func (f *File) BeforeCreate(tx *gorm.DB) error {
	if f.ID == "" {
		f.ID = uuid.NewString()
	}
	return nil
}

// AfterCreate charges the file's size to the creator's storage total and
// the owning asset's counter.
func (f *File) AfterCreate(tx *gorm.DB) error {
	user := User{Model: gorm.Model{ID: f.CreatedByID}}
	if err := user.RecordDiskUsage(tx, f.Size); err != nil {
		return err
	}
	return f.folderUsage(tx, true)
}

// AfterDelete releases the bytes again. Callers must load the row before
// deleting so Size and FolderID are populated.
func (f *File) AfterDelete(tx *gorm.DB) error {
	user := User{Model: gorm.Model{ID: f.CreatedByID}}
	if err := user.ReduceDiskUsage(tx, f.Size); err != nil {
		return err
	}
	return f.folderUsage(tx, false)
}

func (f *File) folderUsage(tx *gorm.DB, add bool) error {
	var folder Folder
	if err := tx.First(&folder, f.FolderID).Error; err != nil {
		return err
	}
	if add {
		return folder.RecordDiskUsage(tx, f.Size)
	}
	return folder.ReduceDiskUsage(tx, f.Size)
}

// StorageKey builds the object-store key for a file upload.
func StorageKey(userID uint, fileID, filename string) string {
	return fmt.Sprintf("files/%d/%s/%s", userID, fileID, filename)
}

// VideoFile is uploaded video content attached to a folder. Thumbnails are
// generated out of band; status flips to ready once processing finishes.
type VideoFile struct {
	ID           string  `json:"id" gorm:"primarykey"`
	Title        string  `json:"title" gorm:"size:150;not null"`
	FolderID     uint    `json:"folder_id" gorm:"not null;index"`
	Folder       *Folder `json:"-"`
	ObjectKey    string  `json:"-" gorm:"not null"`
	ThumbnailKey string  `json:"-"`
	Status       int     `json:"status" gorm:"not null;default:0"`
	Size         int64   `json:"size" gorm:"not null;default:0"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
	DeletedAt    gorm.DeletedAt `gorm:"index"`
}

func (v *VideoFile) BeforeCreate(tx *gorm.DB) error {
	if v.ID == "" {
		v.ID = uuid.NewString()
	}
	return nil
}

// Video bytes count against the folder owner rather than the uploader.
func (v *VideoFile) AfterCreate(tx *gorm.DB) error {
	var folder Folder
	if err := tx.First(&folder, v.FolderID).Error; err != nil {
		return err
	}
	user := User{Model: gorm.Model{ID: folder.CreatedByID}}
	if err := user.RecordDiskUsage(tx, v.Size); err != nil {
		return err
	}
	return folder.RecordDiskUsage(tx, v.Size)
}

func (v *VideoFile) AfterDelete(tx *gorm.DB) error {
	var folder Folder
	if err := tx.First(&folder, v.FolderID).Error; err != nil {
		return err
	}
	user := User{Model: gorm.Model{ID: folder.CreatedByID}}
	if err := user.ReduceDiskUsage(tx, v.Size); err != nil {
		return err
	}
	return folder.ReduceDiskUsage(tx, v.Size)
}

func (v *VideoFile) StatusDisplay() string {
	if v.Status == VideoStatusReady {
		return "Ready"
	}
	return "Processing"
}
