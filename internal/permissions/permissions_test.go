package permissions

import (
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"folderr-backend/internal/models"
)

func TestCapabilityActions(t *testing.T) {
	tests := []struct {
		name       string
		capability Capability
		action     Action
		want       bool
	}{
		{"owner can view", Capability{UserID: 1, OwnerID: 1}, ActionView, true},
		{"owner can delete", Capability{UserID: 1, OwnerID: 1}, ActionDelete, true},
		{"stranger cannot view", Capability{UserID: 2, OwnerID: 1}, ActionView, false},
		{"view-only can view", Capability{UserID: 2, OwnerID: 1, Grants: []int{models.PermissionViewOnly}}, ActionView, true},
		{"view-only cannot create", Capability{UserID: 2, OwnerID: 1, Grants: []int{models.PermissionViewOnly}}, ActionCreate, false},
		{"view-only cannot update", Capability{UserID: 2, OwnerID: 1, Grants: []int{models.PermissionViewOnly}}, ActionUpdate, false},
		{"view-only cannot delete", Capability{UserID: 2, OwnerID: 1, Grants: []int{models.PermissionViewOnly}}, ActionDelete, false},
		{"contributor can create", Capability{UserID: 2, OwnerID: 1, Grants: []int{models.PermissionContributor}}, ActionCreate, true},
		{"contributor cannot update", Capability{UserID: 2, OwnerID: 1, Grants: []int{models.PermissionContributor}}, ActionUpdate, false},
		{"contributor cannot delete", Capability{UserID: 2, OwnerID: 1, Grants: []int{models.PermissionContributor}}, ActionDelete, false},
		{"co-owner can update", Capability{UserID: 2, OwnerID: 1, Grants: []int{models.PermissionCoOwner}}, ActionUpdate, true},
		{"co-owner can delete", Capability{UserID: 2, OwnerID: 1, Grants: []int{models.PermissionCoOwner}}, ActionDelete, true},
		{"sender can delete", Capability{UserID: 2, OwnerID: 1, IsSender: true}, ActionDelete, true},
		{"sender cannot update", Capability{UserID: 2, OwnerID: 1, IsSender: true}, ActionUpdate, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.capability.Can(tt.action))
		})
	}
}

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, models.Migrate(db))
	return db
}

func TestResolveInheritsParentShares(t *testing.T) {
	db := setupTestDB(t)

	owner := models.User{Email: "owner@example.com", PasswordHash: "x"}
	require.NoError(t, db.Create(&owner).Error)
	receiver := models.User{Email: "receiver@example.com", PasswordHash: "x"}
	require.NoError(t, db.Create(&receiver).Error)

	root := models.Folder{Title: "House", CreatedByID: owner.ID}
	require.NoError(t, db.Create(&root).Error)
	sub := models.Folder{Title: "Garage", ParentID: &root.ID, CreatedByID: owner.ID}
	require.NoError(t, db.Create(&sub).Error)

	share := models.Share{
		FolderID:   root.ID,
		Permission: models.PermissionContributor,
		SenderID:   owner.ID,
		ReceiverID: &receiver.ID,
	}
	require.NoError(t, db.Create(&share).Error)

	// The grant on the root covers the subfolder.
	capability, err := Resolve(db, &sub, receiver.ID)
	require.NoError(t, err)
	assert.True(t, capability.CanCreate())
	assert.True(t, capability.CanView())
	assert.False(t, capability.CanUpdate())
	assert.False(t, capability.IsOwner())

	// And the root itself.
	capability, err = Resolve(db, &root, receiver.ID)
	require.NoError(t, err)
	assert.True(t, capability.CanCreate())

	// Pending email shares grant nothing until bound.
	email := "pending@example.com"
	pendingShare := models.Share{
		FolderID:      root.ID,
		Permission:    models.PermissionCoOwner,
		SenderID:      owner.ID,
		ReceiverEmail: &email,
	}
	require.NoError(t, db.Create(&pendingShare).Error)
	capability, err = Resolve(db, &root, 9999)
	require.NoError(t, err)
	assert.False(t, capability.CanView())
}

func TestSharedPredicate(t *testing.T) {
	db := setupTestDB(t)

	owner := models.User{Email: "owner@example.com", PasswordHash: "x"}
	require.NoError(t, db.Create(&owner).Error)
	viewer := models.User{Email: "viewer@example.com", PasswordHash: "x"}
	require.NoError(t, db.Create(&viewer).Error)

	root := models.Folder{Title: "House", CreatedByID: owner.ID}
	require.NoError(t, db.Create(&root).Error)

	share := models.Share{
		FolderID:   root.ID,
		Permission: models.PermissionViewOnly,
		SenderID:   owner.ID,
		ReceiverID: &viewer.ID,
	}
	require.NoError(t, db.Create(&share).Error)

	ok, err := Shared(db, &root, viewer.ID, ActionView)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = Shared(db, &root, viewer.ID, ActionDelete)
	require.NoError(t, err)
	assert.False(t, ok)
}
