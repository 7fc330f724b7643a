package models

import (
	"fmt"
	"time"

	"gorm.io/gorm"
)

// Share permission levels
const (
	PermissionCoOwner     = 1
	PermissionContributor = 2
	PermissionViewOnly    = 3
)

// Share grants a non-owner limited access to a root folder. The receiver is
// either a bound user or, until that email registers, just an address.
type Share struct {
	gorm.Model
	FolderID      uint    `json:"folder_id" gorm:"not null;index"`
	Folder        *Folder `json:"-"`
	Permission    int     `json:"permission" gorm:"not null"`
	SenderID      uint    `json:"sender_id" gorm:"not null;index"`
	Sender        *User   `json:"-"`
	ReceiverID    *uint   `json:"receiver_id" gorm:"index"`
	Receiver      *User   `json:"-"`
	ReceiverEmail *string `json:"receiver_email" gorm:"size:256"`

	Notifications []ShareNotification `json:"-" gorm:"constraint:OnDelete:CASCADE"`
}

// AfterCreate notifies the receiver about the new grant.
func (s *Share) AfterCreate(tx *gorm.DB) error {
	var sender User
	if err := tx.First(&sender, s.SenderID).Error; err != nil {
		return err
	}
	notification := ShareNotification{
		ShareID: s.ID,
		Content: JSON{
			"title":   "New shared folder",
			"level":   "success",
			"message": fmt.Sprintf("%s shared a folder with you.", sender.Email),
		},
	}
	return tx.Create(&notification).Error
}

type ShareNotification struct {
	gorm.Model
	ShareID uint       `json:"share_id" gorm:"not null;index"`
	Share   *Share     `json:"-"`
	Content JSON       `json:"content" gorm:"type:jsonb"`
	SeenAt  *time.Time `json:"seen_at"`
}

// BindPendingShares attaches shares addressed to the user's email before
// they had an account.
func BindPendingShares(db *gorm.DB, user *User) error {
	return db.Model(&Share{}).
		Where("receiver_id IS NULL AND receiver_email = ?", user.Email).
		Update("receiver_id", user.ID).Error
}
