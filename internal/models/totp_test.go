package models

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTOTPEnrollment(t *testing.T) {
	db := setupTestDB(t)
	user := createTestUser(t, db, "2fa@example.com")

	totp, err := NewTOTP(user, "Phone")
	require.NoError(t, err)
	require.NoError(t, db.Create(totp).Error)

	assert.NotEmpty(t, totp.Secret)
	codes, ok := totp.BackupCodes["codes"].([]interface{})
	require.True(t, ok)
	assert.Len(t, codes, 8)

	uri := totp.ProvisioningURI(user.Email)
	assert.True(t, strings.HasPrefix(uri, "otpauth://totp/"))
	assert.Contains(t, uri, "secret="+totp.Secret)
	assert.Contains(t, uri, "issuer=Folderr")

	// Pending enrollments don't count as active 2FA.
	active, err := HasActive2FA(db, user.ID)
	require.NoError(t, err)
	assert.False(t, active)

	require.NoError(t, db.Model(totp).Update("active", true).Error)
	active, err = HasActive2FA(db, user.ID)
	require.NoError(t, err)
	assert.True(t, active)

	assert.False(t, totp.Verify("000000"))
}
