package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTierLimits(t *testing.T) {
	free := User{Membership: FreeMembership}
	plus := User{Membership: PlusMembership}

	assert.Equal(t, 3, free.MaxAssets())
	assert.Equal(t, int64(5*gib), free.MaxStorage())
	assert.Equal(t, 10, free.MaxReceiptScans())
	assert.Equal(t, 100, free.MaxEmails())

	assert.Equal(t, 20, plus.MaxAssets())
	assert.Equal(t, int64(100*gib), plus.MaxStorage())
	assert.Equal(t, 100, plus.MaxReceiptScans())
	assert.Equal(t, -1, plus.MaxEmails())
}

func TestCanUpload(t *testing.T) {
	tests := []struct {
		name     string
		used     int64
		fileSize int64
		want     bool
	}{
		{"empty account", 0, 1024, true},
		{"well under the limit", gib, gib, true},
		{"one byte short of full", 5*gib - 1, 10, false},
		{"exactly at the limit", 5 * gib, 1, false},
		{"zero size at limit", 5 * gib, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			user := User{Membership: FreeMembership, StorageBytesUsed: tt.used}
			assert.Equal(t, tt.want, user.CanUpload(tt.fileSize))
		})
	}
}

func TestDiskUsageNeverNegative(t *testing.T) {
	db := setupTestDB(t)
	user := createTestUser(t, db, "quota@example.com")

	require.NoError(t, user.RecordDiskUsage(db, 1000))
	assert.Equal(t, int64(1000), user.StorageBytesUsed)

	require.NoError(t, user.ReduceDiskUsage(db, 400))
	assert.Equal(t, int64(600), user.StorageBytesUsed)

	// Reducing past zero clamps instead of going negative.
	require.NoError(t, user.ReduceDiskUsage(db, 5000))
	assert.Equal(t, int64(0), user.StorageBytesUsed)

	require.NoError(t, user.ReduceDiskUsage(db, 100))
	assert.Equal(t, int64(0), user.StorageBytesUsed)
}

func TestCanCreateAsset(t *testing.T) {
	db := setupTestDB(t)
	user := createTestUser(t, db, "assets@example.com")

	for i := 0; i < 3; i++ {
		ok, err := user.CanCreateAsset(db)
		require.NoError(t, err)
		assert.True(t, ok)
		createTestFolder(t, db, user, "Asset", nil)
	}

	// Free tier caps at three assets; the auto-created AI subfolders
	// must not count.
	ok, err := user.CanCreateAsset(db)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, user.UpgradeToPlus(db))
	ok, err = user.CanCreateAsset(db)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRecordReceiptScan(t *testing.T) {
	db := setupTestDB(t)
	user := createTestUser(t, db, "scans@example.com")

	require.NoError(t, user.RecordReceiptScan(db))
	require.NoError(t, user.RecordReceiptScan(db))

	var reloaded User
	require.NoError(t, db.First(&reloaded, user.ID).Error)
	assert.Equal(t, 2, reloaded.ReceiptScans)
	assert.True(t, reloaded.CanScanReceipt())
}
