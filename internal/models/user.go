package models

import (
	"errors"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// Membership tiers
const (
	FreeMembership = 0
	PlusMembership = 1
)

const gib = 1073741824

var ErrStorageLimitExceeded = errors.New("storage limit exceeded, upgrade your plan")

type User struct {
	gorm.Model
	Email            string `json:"email" gorm:"uniqueIndex;not null"`
	FirstName        string `json:"first_name" gorm:"size:100"`
	LastName         string `json:"last_name" gorm:"size:100"`
	PasswordHash     string `json:"-" gorm:"not null"`
	Membership       int    `json:"membership" gorm:"not null;default:0"`
	ReceiptScans     int    `json:"receipt_scans" gorm:"not null;default:0"`
	EmailsReceived   int    `json:"emails_received" gorm:"not null;default:0"`
	StorageBytesUsed int64  `json:"storage_bytes_used" gorm:"not null;default:0"`
}

func (u *User) IsPlus() bool {
	return u.Membership == PlusMembership
}

func (u *User) MaxAssets() int {
	if u.IsPlus() {
		return 20
	}
	return 3
}

func (u *User) MaxStorage() int64 {
	if u.IsPlus() {
		return 100 * gib
	}
	return 5 * gib
}

func (u *User) MaxReceiptScans() int {
	if u.IsPlus() {
		return 100
	}
	return 10
}

// MaxEmails returns the inbound email cap, -1 meaning unlimited.
func (u *User) MaxEmails() int {
	if u.IsPlus() {
		return -1
	}
	return 100
}

// CanUpload reports whether adding fileSize bytes stays within the tier's
// storage limit. Pass 0 to check the current usage alone.
func (u *User) CanUpload(fileSize int64) bool {
	return u.StorageBytesUsed+fileSize < u.MaxStorage()
}

func (u *User) CanScanReceipt() bool {
	return u.ReceiptScans < u.MaxReceiptScans()
}

func (u *User) CanReceiveEmail() bool {
	if u.IsPlus() {
		return true
	}
	return u.EmailsReceived < u.MaxEmails()
}

func (u *User) AssetCount(db *gorm.DB) (int64, error) {
	var count int64
	err := db.Model(&Folder{}).
		Where("created_by_id = ? AND is_root = ?", u.ID, true).
		Count(&count).Error
	return count, err
}

func (u *User) CanCreateAsset(db *gorm.DB) (bool, error) {
	count, err := u.AssetCount(db)
	if err != nil {
		return false, err
	}
	return count < int64(u.MaxAssets()), nil
}

// RecordDiskUsage adds size bytes to the user's storage counter. The update
// happens database-side so concurrent writers cannot lose increments.
func (u *User) RecordDiskUsage(db *gorm.DB, size int64) error {
	err := db.Model(&User{}).Where("id = ?", u.ID).
		UpdateColumn("storage_bytes_used", gorm.Expr("storage_bytes_used + ?", size)).Error
	if err != nil {
		return err
	}
	return db.First(u, u.ID).Error
}

// ReduceDiskUsage subtracts size bytes, clamping the counter at zero.
func (u *User) ReduceDiskUsage(db *gorm.DB, size int64) error {
	err := db.Model(&User{}).Where("id = ?", u.ID).
		UpdateColumn("storage_bytes_used", gorm.Expr(
			"CASE WHEN storage_bytes_used > ? THEN storage_bytes_used - ? ELSE 0 END", size, size)).Error
	if err != nil {
		return err
	}
	return db.First(u, u.ID).Error
}

func (u *User) RecordReceiptScan(db *gorm.DB) error {
	log.Info().Uint("user_id", u.ID).Msg("recording receipt scan")
	return db.Model(&User{}).Where("id = ?", u.ID).
		UpdateColumn("receipt_scans", gorm.Expr("receipt_scans + 1")).Error
}

func (u *User) RecordEmailReceipt(db *gorm.DB) error {
	log.Info().Uint("user_id", u.ID).Msg("recording email receipt")
	return db.Model(&User{}).Where("id = ?", u.ID).
		UpdateColumn("emails_received", gorm.Expr("emails_received + 1")).Error
}

func (u *User) UpgradeToPlus(db *gorm.DB) error {
	u.Membership = PlusMembership
	return db.Model(u).Update("membership", PlusMembership).Error
}

func (u *User) DowngradeToFree(db *gorm.DB) error {
	u.Membership = FreeMembership
	return db.Model(u).Update("membership", FreeMembership).Error
}

// GetUserByEmail retrieves a user by email address
func GetUserByEmail(db *gorm.DB, email string) (*User, error) {
	var user User
	if err := db.Where("email = ?", email).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}
