package models

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootFlagFollowsParent(t *testing.T) {
	db := setupTestDB(t)
	user := createTestUser(t, db, "root@example.com")

	root := createTestFolder(t, db, user, "House", nil)
	assert.True(t, root.IsRoot)

	sub := createTestFolder(t, db, user, "Garage", &root.ID)
	assert.False(t, sub.IsRoot)

	// The flag is derived, not trusted from the caller.
	wrong := &Folder{Title: "Wrong", ParentID: &root.ID, IsRoot: true, CreatedByID: user.ID}
	require.NoError(t, db.Create(wrong).Error)
	assert.False(t, wrong.IsRoot)

	// The stored rows must agree with the structs: a column default would
	// silently win over the derived false on insert.
	for _, id := range []uint{sub.ID, wrong.ID} {
		var persisted Folder
		require.NoError(t, db.First(&persisted, id).Error)
		assert.False(t, persisted.IsRoot)
	}
	var persistedRoot Folder
	require.NoError(t, db.First(&persistedRoot, root.ID).Error)
	assert.True(t, persistedRoot.IsRoot)
}

func TestFolderEmailSurvivesSoftDelete(t *testing.T) {
	db := setupTestDB(t)
	user := createTestUser(t, db, "emails@example.com")
	folder := createTestFolder(t, db, user, "House", nil)
	require.NotNil(t, folder.Email)

	require.NoError(t, db.Delete(folder).Error)

	// The unique index still covers the deleted row, so its address stays
	// reserved and cannot be handed out again.
	taken, err := folderEmailTaken(db, *folder.Email)
	require.NoError(t, err)
	assert.True(t, taken)

	taken, err = folderEmailTaken(db, "000000@unused.example.com")
	require.NoError(t, err)
	assert.False(t, taken)
}

func TestFolderCreateSideEffects(t *testing.T) {
	db := setupTestDB(t)
	user := createTestUser(t, db, "side@example.com")

	root := createTestFolder(t, db, user, "House", nil)

	require.NotNil(t, root.Email)
	assert.True(t, strings.HasSuffix(*root.Email, "@"+FolderEmailDomain))

	var subfolders []Folder
	require.NoError(t, db.Where("parent_id = ?", root.ID).Find(&subfolders).Error)
	require.Len(t, subfolders, 1)
	assert.Equal(t, AIFolderTitle, subfolders[0].Title)
	assert.False(t, subfolders[0].IsRoot)

	// No AI subfolder under subfolders.
	var nested int64
	require.NoError(t, db.Model(&Folder{}).Where("parent_id = ?", subfolders[0].ID).Count(&nested).Error)
	assert.Zero(t, nested)

	assert.Equal(t, "", root.CustomFields["Description"])
}

func TestDiskUsageRollsUpToRoot(t *testing.T) {
	db := setupTestDB(t)
	user := createTestUser(t, db, "usage@example.com")
	root := createTestFolder(t, db, user, "House", nil)
	sub := createTestFolder(t, db, user, "Garage", &root.ID)

	file := &File{
		FileName:    "deed.pdf",
		FolderID:    sub.ID,
		CreatedByID: user.ID,
		ObjectKey:   "files/1/x/deed.pdf",
		Size:        2048,
	}
	require.NoError(t, db.Create(file).Error)

	var reloadedRoot Folder
	require.NoError(t, db.First(&reloadedRoot, root.ID).Error)
	assert.Equal(t, int64(2048), reloadedRoot.DiskUsageBytes)

	var reloadedSub Folder
	require.NoError(t, db.First(&reloadedSub, sub.ID).Error)
	assert.Zero(t, reloadedSub.DiskUsageBytes)

	var reloadedUser User
	require.NoError(t, db.First(&reloadedUser, user.ID).Error)
	assert.Equal(t, int64(2048), reloadedUser.StorageBytesUsed)

	require.NoError(t, db.Delete(file).Error)

	require.NoError(t, db.First(&reloadedRoot, root.ID).Error)
	assert.Zero(t, reloadedRoot.DiskUsageBytes)
	require.NoError(t, db.First(&reloadedUser, user.ID).Error)
	assert.Zero(t, reloadedUser.StorageBytesUsed)
}

func TestVideoUsageChargedToFolderOwner(t *testing.T) {
	db := setupTestDB(t)
	owner := createTestUser(t, db, "owner@example.com")
	root := createTestFolder(t, db, owner, "House", nil)

	video := &VideoFile{
		Title:     "tour.mp4",
		FolderID:  root.ID,
		ObjectKey: "files/1/x/tour.mp4",
		Size:      4096,
	}
	require.NoError(t, db.Create(video).Error)
	assert.Equal(t, VideoStatusProcessing, video.Status)

	var reloadedOwner User
	require.NoError(t, db.First(&reloadedOwner, owner.ID).Error)
	assert.Equal(t, int64(4096), reloadedOwner.StorageBytesUsed)
}

func TestDeleteCascade(t *testing.T) {
	db := setupTestDB(t)
	owner := createTestUser(t, db, "cascade@example.com")
	receiver := createTestUser(t, db, "receiver@example.com")
	root := createTestFolder(t, db, owner, "House", nil)
	sub := createTestFolder(t, db, owner, "Garage", &root.ID)

	file := &File{
		FileName:    "deed.pdf",
		FolderID:    sub.ID,
		CreatedByID: owner.ID,
		ObjectKey:   "files/1/x/deed.pdf",
		Size:        1024,
	}
	require.NoError(t, db.Create(file).Error)
	share := &Share{
		FolderID:   root.ID,
		Permission: PermissionViewOnly,
		SenderID:   owner.ID,
		ReceiverID: &receiver.ID,
	}
	require.NoError(t, db.Create(share).Error)

	require.NoError(t, root.DeleteCascade(db))

	var folderCount, fileCount, shareCount, notificationCount int64
	require.NoError(t, db.Model(&Folder{}).Where("id IN ?", []uint{root.ID, sub.ID}).Count(&folderCount).Error)
	require.NoError(t, db.Model(&File{}).Where("folder_id = ?", sub.ID).Count(&fileCount).Error)
	require.NoError(t, db.Model(&Share{}).Where("folder_id = ?", root.ID).Count(&shareCount).Error)
	require.NoError(t, db.Model(&ShareNotification{}).Where("share_id = ?", share.ID).Count(&notificationCount).Error)
	assert.Zero(t, folderCount)
	assert.Zero(t, fileCount)
	assert.Zero(t, shareCount)
	assert.Zero(t, notificationCount)

	// Bytes released back to the owner.
	var reloadedOwner User
	require.NoError(t, db.First(&reloadedOwner, owner.ID).Error)
	assert.Zero(t, reloadedOwner.StorageBytesUsed)
}

func TestFullAddress(t *testing.T) {
	folder := Folder{CustomFields: JSON{
		"Address": "1 Main St",
		"City":    "Springfield",
		"State":   "IL",
		"ZIP":     "62701",
	}}
	assert.Equal(t, "1 Main St, Springfield, IL, 62701", folder.FullAddress())
}
