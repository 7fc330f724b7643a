package models

import (
	"errors"
	"time"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// ErrTransferClaimed rejects a second claim on the same transfer. Claiming
// twice would move the folder's bytes between owner totals twice.
var ErrTransferClaimed = errors.New("folder transfer already claimed")

// FolderTransfer records an in-flight ownership change of a root folder.
// A folder has at most one transfer; claiming is terminal. Cancelling
// deletes the row outright, so no DeletedAt here: a soft-deleted transfer
// would still occupy the folder's unique slot.
type FolderTransfer struct {
	ID         uint      `json:"id" gorm:"primarykey"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
	FolderID   uint      `json:"folder_id" gorm:"uniqueIndex;not null"`
	Folder     *Folder `json:"-"`
	FromUserID uint    `json:"from_user_id" gorm:"not null"`
	FromUser   *User   `json:"-"`
	ToEmail    string  `json:"to_email" gorm:"not null"`
	Claimed    bool    `json:"claimed" gorm:"not null;default:false"`
}

// Claim reassigns the folder to the user registered under ToEmail, restores
// the folder's visibility and moves its bytes from the previous owner's
// total to the new owner's. Returns gorm.ErrRecordNotFound when no account
// exists for ToEmail and ErrTransferClaimed on re-entry.
func (t *FolderTransfer) Claim(db *gorm.DB) error {
	if t.Claimed {
		return ErrTransferClaimed
	}

	return db.Transaction(func(tx *gorm.DB) error {
		target, err := GetUserByEmail(tx, t.ToEmail)
		if err != nil {
			return err
		}

		var folder Folder
		if err := tx.First(&folder, t.FolderID).Error; err != nil {
			return err
		}
		var previous User
		if err := tx.First(&previous, folder.CreatedByID).Error; err != nil {
			return err
		}

		folder.CreatedByID = target.ID
		folder.Visible = true
		folder.VisibilityReason = VisibilityReasonUnknown
		if err := tx.Model(&folder).Updates(map[string]interface{}{
			"created_by_id":     target.ID,
			"visible":           true,
			"visibility_reason": VisibilityReasonUnknown,
		}).Error; err != nil {
			return err
		}

		// Conditional flip so two claimers racing on the same row cannot
		// both pass; the loser sees zero rows affected.
		flip := tx.Model(&FolderTransfer{}).
			Where("id = ? AND claimed = ?", t.ID, false).
			Update("claimed", true)
		if flip.Error != nil {
			return flip.Error
		}
		if flip.RowsAffected == 0 {
			return ErrTransferClaimed
		}
		t.Claimed = true

		if err := previous.ReduceDiskUsage(tx, folder.DiskUsageBytes); err != nil {
			return err
		}
		if err := target.RecordDiskUsage(tx, folder.DiskUsageBytes); err != nil {
			return err
		}

		log.Info().
			Uint("folder_id", folder.ID).
			Uint("user_id", target.ID).
			Msg("folder claimed")
		return nil
	})
}

func (t *FolderTransfer) ClaimDisplay() string {
	if t.Claimed {
		return "Claimed"
	}
	return "Unclaimed"
}
