package models

import (
	"crypto/rand"
	"encoding/base32"
	"net/url"

	"github.com/pquerna/otp/totp"
	"gorm.io/gorm"
)

// TOTP is a registered authenticator for a user. Inactive rows are pending
// enrollments awaiting their first verified code.
type TOTP struct {
	gorm.Model
	UserID      uint   `json:"user_id" gorm:"not null;index"`
	User        *User  `json:"-"`
	Name        string `json:"name" gorm:"size:100;not null"`
	Secret      string `json:"-" gorm:"not null"`
	BackupCodes JSON   `json:"-" gorm:"type:jsonb"`
	Active      bool   `json:"active" gorm:"not null;default:false"`
}

// NewTOTP generates a pending enrollment with a fresh secret and backup codes.
func NewTOTP(user *User, name string) (*TOTP, error) {
	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      "Folderr",
		AccountName: user.Email,
	})
	if err != nil {
		return nil, err
	}

	codes := make([]interface{}, 0, 8)
	for i := 0; i < 8; i++ {
		buf := make([]byte, 5)
		if _, err := rand.Read(buf); err != nil {
			return nil, err
		}
		codes = append(codes, base32.StdEncoding.WithPadding(base32.NoPadding).EncodeToString(buf))
	}

	return &TOTP{
		UserID:      user.ID,
		Name:        name,
		Secret:      key.Secret(),
		BackupCodes: JSON{"codes": codes},
	}, nil
}

// ProvisioningURI returns the otpauth:// URI for authenticator apps.
func (t *TOTP) ProvisioningURI(email string) string {
	v := url.Values{}
	v.Set("secret", t.Secret)
	v.Set("issuer", "Folderr")
	u := url.URL{
		Scheme:   "otpauth",
		Host:     "totp",
		Path:     "/" + "Folderr:" + email,
		RawQuery: v.Encode(),
	}
	return u.String()
}

func (t *TOTP) Verify(code string) bool {
	return totp.Validate(code, t.Secret)
}

// HasActive2FA reports whether the user has any active authenticator.
func HasActive2FA(db *gorm.DB, userID uint) (bool, error) {
	var count int64
	err := db.Model(&TOTP{}).Where("user_id = ? AND active = ?", userID, true).Count(&count).Error
	return count > 0, err
}
