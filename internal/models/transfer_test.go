package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestTransferToEmailHidesFolder(t *testing.T) {
	db := setupTestDB(t)
	owner := createTestUser(t, db, "from@example.com")
	folder := createTestFolder(t, db, owner, "House", nil)

	transfer, err := folder.TransferToEmail(db, "to@example.com")
	require.NoError(t, err)
	assert.False(t, transfer.Claimed)
	assert.Equal(t, "to@example.com", transfer.ToEmail)

	var reloaded Folder
	require.NoError(t, db.First(&reloaded, folder.ID).Error)
	assert.False(t, reloaded.Visible)
	assert.Equal(t, VisibilityReasonTransferred, reloaded.VisibilityReason)

	// Retargeting reuses the single transfer row.
	second, err := folder.TransferToEmail(db, "other@example.com")
	require.NoError(t, err)
	assert.Equal(t, transfer.ID, second.ID)
	assert.Equal(t, "other@example.com", second.ToEmail)

	var count int64
	require.NoError(t, db.Model(&FolderTransfer{}).Where("folder_id = ?", folder.ID).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestClaimMovesUsageExactlyOnce(t *testing.T) {
	db := setupTestDB(t)
	owner := createTestUser(t, db, "from@example.com")
	target := createTestUser(t, db, "to@example.com")
	folder := createTestFolder(t, db, owner, "House", nil)

	file := &File{
		FileName:    "deed.pdf",
		FolderID:    folder.ID,
		CreatedByID: owner.ID,
		ObjectKey:   "files/1/x/deed.pdf",
		Size:        3000,
	}
	require.NoError(t, db.Create(file).Error)

	transfer, err := folder.TransferToEmail(db, target.Email)
	require.NoError(t, err)

	require.NoError(t, transfer.Claim(db))
	assert.True(t, transfer.Claimed)

	var reloaded Folder
	require.NoError(t, db.First(&reloaded, folder.ID).Error)
	assert.Equal(t, target.ID, reloaded.CreatedByID)
	assert.True(t, reloaded.Visible)
	assert.Equal(t, VisibilityReasonUnknown, reloaded.VisibilityReason)

	var previous, next User
	require.NoError(t, db.First(&previous, owner.ID).Error)
	require.NoError(t, db.First(&next, target.ID).Error)
	assert.Zero(t, previous.StorageBytesUsed)
	assert.Equal(t, int64(3000), next.StorageBytesUsed)

	// Claiming is terminal; a second claim must not move bytes again.
	err = transfer.Claim(db)
	assert.ErrorIs(t, err, ErrTransferClaimed)

	var fromDB FolderTransfer
	require.NoError(t, db.Where("folder_id = ?", folder.ID).First(&fromDB).Error)
	err = fromDB.Claim(db)
	assert.ErrorIs(t, err, ErrTransferClaimed)

	require.NoError(t, db.First(&next, target.ID).Error)
	assert.Equal(t, int64(3000), next.StorageBytesUsed)
}

func TestClaimWithStaleCopyMovesNothing(t *testing.T) {
	db := setupTestDB(t)
	owner := createTestUser(t, db, "from@example.com")
	target := createTestUser(t, db, "to@example.com")
	folder := createTestFolder(t, db, owner, "House", nil)

	file := &File{
		FileName:    "deed.pdf",
		FolderID:    folder.ID,
		CreatedByID: owner.ID,
		ObjectKey:   "files/1/x/deed.pdf",
		Size:        3000,
	}
	require.NoError(t, db.Create(file).Error)

	transfer, err := folder.TransferToEmail(db, target.Email)
	require.NoError(t, err)

	// A second loader holding claimed=false, as a concurrent claimer would.
	var stale FolderTransfer
	require.NoError(t, db.First(&stale, transfer.ID).Error)

	require.NoError(t, transfer.Claim(db))

	// The stale copy passes the in-memory guard but must lose on the
	// conditional row update.
	err = stale.Claim(db)
	assert.ErrorIs(t, err, ErrTransferClaimed)

	var next User
	require.NoError(t, db.First(&next, target.ID).Error)
	assert.Equal(t, int64(3000), next.StorageBytesUsed)
}

func TestClaimFailsForUnknownTarget(t *testing.T) {
	db := setupTestDB(t)
	owner := createTestUser(t, db, "from@example.com")
	folder := createTestFolder(t, db, owner, "House", nil)

	transfer, err := folder.TransferToEmail(db, "nobody@example.com")
	require.NoError(t, err)

	err = transfer.Claim(db)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	assert.False(t, transfer.Claimed)
}

func TestCancelTransferRestoresVisibility(t *testing.T) {
	db := setupTestDB(t)
	owner := createTestUser(t, db, "from@example.com")
	folder := createTestFolder(t, db, owner, "House", nil)

	_, err := folder.TransferToEmail(db, "to@example.com")
	require.NoError(t, err)

	require.NoError(t, folder.CancelTransfer(db))

	var count int64
	require.NoError(t, db.Model(&FolderTransfer{}).Where("folder_id = ?", folder.ID).Count(&count).Error)
	assert.Zero(t, count)

	var reloaded Folder
	require.NoError(t, db.First(&reloaded, folder.ID).Error)
	assert.True(t, reloaded.Visible)
}
