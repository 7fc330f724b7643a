package models

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// Visibility reasons
const (
	VisibilityReasonTransferred = 0
	VisibilityReasonUnknown     = 1
)

// AIFolderTitle names the subfolder auto-created under every asset.
const AIFolderTitle = "AI"

// FolderEmailDomain is the domain used for folder inbound addresses,
// overridden from configuration at startup.
var FolderEmailDomain = "in.folderr.com"

// FolderType distinguishes Assets from Records
type FolderType struct {
	gorm.Model
	Title string `json:"title" gorm:"not null"`
}

type AssetType struct {
	gorm.Model
	Title  string `json:"title" gorm:"not null"`
	Hidden bool   `json:"hidden" gorm:"not null;default:false"`
}

func folderDefaultCustomFields() JSON {
	return JSON{"Description": ""}
}

// Folder is either a root folder (an asset, parent is nil) or a subfolder
// nested directly under a root. Subfolders cannot nest further.
type Folder struct {
	gorm.Model
	Title            string  `json:"title" gorm:"size:100;not null"`
	ParentID         *uint   `json:"parent_id" gorm:"index"`
	Parent           *Folder `json:"-"`
	// No default tag here: the flag is derived in BeforeSave and false is
	// the zero value, so a column default would override it on insert.
	IsRoot           bool    `json:"is_root" gorm:"not null"`
	IsPublic         bool    `json:"is_public" gorm:"not null;default:false"`
	FolderTypeID     uint    `json:"folder_type_id" gorm:"not null;default:1"`
	AssetTypeID      *uint   `json:"asset_type_id"`
	CustomFields     JSON    `json:"custom_fields" gorm:"type:jsonb"`
	Email            *string `json:"email" gorm:"uniqueIndex"`
	Visible          bool    `json:"visible" gorm:"not null;default:true"`
	VisibilityReason int     `json:"visibility_reason" gorm:"not null;default:1"`
	DiskUsageBytes   int64   `json:"disk_usage_bytes" gorm:"not null;default:0"`
	CreatedByID      uint    `json:"created_by_id" gorm:"not null;index"`
	CreatedBy        *User   `json:"-"`

	Subfolders []Folder    `json:"subfolders,omitempty" gorm:"foreignKey:ParentID;constraint:OnDelete:CASCADE"`
	Files      []File      `json:"files,omitempty" gorm:"constraint:OnDelete:CASCADE"`
	VideoFiles []VideoFile `json:"video_files,omitempty" gorm:"constraint:OnDelete:CASCADE"`
	SharedWith []Share     `json:"shared_with,omitempty" gorm:"constraint:OnDelete:CASCADE"`
}

// BeforeSave keeps the root flag consistent with the parent pointer:
// a folder is a root folder exactly when it has no parent.
func (f *Folder) BeforeSave(tx *gorm.DB) error {
	f.IsRoot = f.ParentID == nil
	if f.CustomFields == nil {
		f.CustomFields = folderDefaultCustomFields()
	}
	return nil
}

// AfterCreate assigns the folder's inbound email address and, for root
// folders, creates the AI subfolder.
func (f *Folder) AfterCreate(tx *gorm.DB) error {
	if f.Email == nil {
		if err := f.setEmail(tx); err != nil {
			return err
		}
		if err := tx.Model(f).UpdateColumn("email", f.Email).Error; err != nil {
			return err
		}
	}

	if f.IsRoot {
		log.Info().Uint("folder_id", f.ID).Msg("creating AI subfolder for new asset")
		var aiType AssetType
		if err := tx.Where("title = ?", AIFolderTitle).First(&aiType).Error; err != nil {
			return err
		}
		parentID := f.ID
		subfolder := Folder{
			Title:        AIFolderTitle,
			ParentID:     &parentID,
			FolderTypeID: f.FolderTypeID,
			AssetTypeID:  &aiType.ID,
			CreatedByID:  f.CreatedByID,
		}
		if err := tx.Create(&subfolder).Error; err != nil {
			return err
		}
	}
	return nil
}

// setEmail picks a random 6-digit address, retrying on collision.
func (f *Folder) setEmail(tx *gorm.DB) error {
	for {
		sequence := ""
		for i := 0; i < 6; i++ {
			n, err := rand.Int(rand.Reader, big.NewInt(10))
			if err != nil {
				return err
			}
			sequence += n.String()
		}
		email := fmt.Sprintf("%s@%s", sequence, FolderEmailDomain)

		taken, err := folderEmailTaken(tx, email)
		if err != nil {
			return err
		}
		if !taken {
			f.Email = &email
			return nil
		}
	}
}

// folderEmailTaken checks the address against all rows, soft-deleted ones
// included: the unique index on email still covers them.
func folderEmailTaken(tx *gorm.DB, email string) (bool, error) {
	var count int64
	err := tx.Unscoped().Model(&Folder{}).Where("email = ?", email).Count(&count).Error
	return count > 0, err
}

// FullAddress derives a mailing address from the free-form custom fields.
func (f *Folder) FullAddress() string {
	get := func(key string) string {
		v, _ := f.CustomFields[key].(string)
		return v
	}
	return fmt.Sprintf("%s, %s, %s, %s",
		get("Address"), get("City"), get("State"), get("ZIP"))
}

// RecordDiskUsage adds size bytes to the asset's usage counter. Subfolder
// contributions roll up to the root folder.
func (f *Folder) RecordDiskUsage(db *gorm.DB, size int64) error {
	return db.Model(&Folder{}).Where("id = ?", f.rootID()).
		UpdateColumn("disk_usage_bytes", gorm.Expr("disk_usage_bytes + ?", size)).Error
}

// ReduceDiskUsage subtracts size bytes from the asset's usage counter,
// clamping at zero.
func (f *Folder) ReduceDiskUsage(db *gorm.DB, size int64) error {
	return db.Model(&Folder{}).Where("id = ?", f.rootID()).
		UpdateColumn("disk_usage_bytes", gorm.Expr(
			"CASE WHEN disk_usage_bytes > ? THEN disk_usage_bytes - ? ELSE 0 END", size, size)).Error
}

func (f *Folder) rootID() uint {
	if f.IsRoot || f.ParentID == nil {
		return f.ID
	}
	return *f.ParentID
}

// TransferToEmail creates the folder's pending transfer, or retargets an
// existing unclaimed one, and hides the folder from the owner's listings.
func (f *Folder) TransferToEmail(db *gorm.DB, toEmail string) (*FolderTransfer, error) {
	var transfer FolderTransfer
	err := db.Where("folder_id = ?", f.ID).First(&transfer).Error
	switch {
	case err == nil:
		transfer.FromUserID = f.CreatedByID
		transfer.ToEmail = toEmail
		transfer.Claimed = false
	case errors.Is(err, gorm.ErrRecordNotFound):
		transfer = FolderTransfer{
			FolderID:   f.ID,
			FromUserID: f.CreatedByID,
			ToEmail:    toEmail,
		}
	default:
		return nil, err
	}

	if err := db.Save(&transfer).Error; err != nil {
		return nil, err
	}

	f.Visible = false
	f.VisibilityReason = VisibilityReasonTransferred
	if err := db.Model(f).Updates(map[string]interface{}{
		"visible":           false,
		"visibility_reason": VisibilityReasonTransferred,
	}).Error; err != nil {
		return nil, err
	}
	return &transfer, nil
}

// CancelTransfer deletes the pending transfer and restores visibility.
func (f *Folder) CancelTransfer(db *gorm.DB) error {
	result := db.Where("folder_id = ?", f.ID).Delete(&FolderTransfer{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return nil
	}
	f.Visible = true
	return db.Model(f).Update("visible", true).Error
}

// DeleteCascade removes the folder together with its subfolders, files,
// videos, shares and transfer, releasing the bytes they held from both the
// owner's and the asset's usage counters.
func (f *Folder) DeleteCascade(db *gorm.DB) error {
	return db.Transaction(func(tx *gorm.DB) error {
		ids := []uint{f.ID}
		if f.IsRoot {
			var subfolderIDs []uint
			if err := tx.Model(&Folder{}).Where("parent_id = ?", f.ID).
				Pluck("id", &subfolderIDs).Error; err != nil {
				return err
			}
			ids = append(ids, subfolderIDs...)
		}

		var files []File
		if err := tx.Where("folder_id IN ?", ids).Find(&files).Error; err != nil {
			return err
		}
		var videos []VideoFile
		if err := tx.Where("folder_id IN ?", ids).Find(&videos).Error; err != nil {
			return err
		}
		for i := range files {
			if err := tx.Delete(&files[i]).Error; err != nil {
				return err
			}
		}
		for i := range videos {
			if err := tx.Delete(&videos[i]).Error; err != nil {
				return err
			}
		}

		var shareIDs []uint
		if err := tx.Model(&Share{}).Where("folder_id IN ?", ids).
			Pluck("id", &shareIDs).Error; err != nil {
			return err
		}
		if len(shareIDs) > 0 {
			if err := tx.Where("share_id IN ?", shareIDs).Delete(&ShareNotification{}).Error; err != nil {
				return err
			}
		}
		if err := tx.Where("folder_id IN ?", ids).Delete(&Share{}).Error; err != nil {
			return err
		}
		if err := tx.Where("folder_id IN ?", ids).Delete(&FolderTransfer{}).Error; err != nil {
			return err
		}
		if err := tx.Where("folder_id IN ?", ids).Delete(&StickyNote{}).Error; err != nil {
			return err
		}
		if len(ids) > 1 {
			if err := tx.Where("id IN ?", ids[1:]).Delete(&Folder{}).Error; err != nil {
				return err
			}
		}
		return tx.Delete(f).Error
	})
}
