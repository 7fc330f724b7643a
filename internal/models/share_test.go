package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShareCreatesNotification(t *testing.T) {
	db := setupTestDB(t)
	sender := createTestUser(t, db, "sender@example.com")
	receiver := createTestUser(t, db, "receiver@example.com")
	folder := createTestFolder(t, db, sender, "House", nil)

	share := &Share{
		FolderID:   folder.ID,
		Permission: PermissionContributor,
		SenderID:   sender.ID,
		ReceiverID: &receiver.ID,
	}
	require.NoError(t, db.Create(share).Error)

	var notification ShareNotification
	require.NoError(t, db.Where("share_id = ?", share.ID).First(&notification).Error)
	assert.Equal(t, "New shared folder", notification.Content["title"])
	assert.Contains(t, notification.Content["message"], sender.Email)
	assert.Nil(t, notification.SeenAt)
}

func TestBindPendingShares(t *testing.T) {
	db := setupTestDB(t)
	sender := createTestUser(t, db, "sender@example.com")
	folder := createTestFolder(t, db, sender, "House", nil)

	email := "late@example.com"
	pending := &Share{
		FolderID:      folder.ID,
		Permission:    PermissionViewOnly,
		SenderID:      sender.ID,
		ReceiverEmail: &email,
	}
	require.NoError(t, db.Create(pending).Error)

	other := "someoneelse@example.com"
	unrelated := &Share{
		FolderID:      folder.ID,
		Permission:    PermissionViewOnly,
		SenderID:      sender.ID,
		ReceiverEmail: &other,
	}
	require.NoError(t, db.Create(unrelated).Error)

	late := createTestUser(t, db, email)
	require.NoError(t, BindPendingShares(db, late))

	var bound Share
	require.NoError(t, db.First(&bound, pending.ID).Error)
	require.NotNil(t, bound.ReceiverID)
	assert.Equal(t, late.ID, *bound.ReceiverID)

	var untouched Share
	require.NoError(t, db.First(&untouched, unrelated.ID).Error)
	assert.Nil(t, untouched.ReceiverID)
}

func TestStickyNoteShortDescription(t *testing.T) {
	db := setupTestDB(t)
	user := createTestUser(t, db, "notes@example.com")
	folder := createTestFolder(t, db, user, "House", nil)

	note := &StickyNote{
		CreatedByID: user.ID,
		Description: "<p>Remember to <b>renew</b> the insurance</p>",
		Color:       "#FF0000",
		FolderID:    folder.ID,
	}
	require.NoError(t, db.Create(note).Error)
	assert.Equal(t, "Remember to renew the insurance", note.ShortDescription)
}
