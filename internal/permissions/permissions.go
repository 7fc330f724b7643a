// Package permissions decides what a user may do with a folder or file.
// Grants are resolved once per request into a Capability, so the predicates
// themselves never touch the database.
package permissions

import (
	"gorm.io/gorm"

	"folderr-backend/internal/models"
)

type Action int

const (
	ActionCreate Action = iota + 1
	ActionUpdate
	ActionDelete
	ActionView
)

// acceptedPermissions maps an action to the share permission levels that
// allow it.
var acceptedPermissions = map[Action][]int{
	ActionCreate: {models.PermissionCoOwner, models.PermissionContributor},
	ActionUpdate: {models.PermissionCoOwner},
	ActionDelete: {models.PermissionCoOwner},
	ActionView:   {models.PermissionCoOwner, models.PermissionContributor, models.PermissionViewOnly},
}

// Capability carries the grants resolved for one requester on one folder:
// the shares naming the requester as receiver on the folder or its parent,
// and whether the requester sent any share on either.
type Capability struct {
	UserID   uint
	OwnerID  uint
	Grants   []int
	IsSender bool
}

// Resolve looks up the requester's grants for the folder. Subfolders inherit
// shares from their root, so the parent's shares are included.
func Resolve(db *gorm.DB, folder *models.Folder, userID uint) (*Capability, error) {
	folderIDs := []uint{folder.ID}
	if folder.ParentID != nil {
		folderIDs = append(folderIDs, *folder.ParentID)
	}

	var shares []models.Share
	if err := db.Where("folder_id IN ?", folderIDs).Find(&shares).Error; err != nil {
		return nil, err
	}

	capability := &Capability{
		UserID:  userID,
		OwnerID: folder.CreatedByID,
	}
	for _, share := range shares {
		if share.ReceiverID != nil && *share.ReceiverID == userID {
			capability.Grants = append(capability.Grants, share.Permission)
		}
		if share.SenderID == userID {
			capability.IsSender = true
		}
	}
	return capability, nil
}

// IsOwner reports whether the requester created the folder.
func (c *Capability) IsOwner() bool {
	return c.UserID == c.OwnerID
}

// Can reports whether the requester may perform the action. Owners may do
// everything; everyone else needs a grant whose permission level covers the
// action. Deletion is additionally open to the share's sender, matching the
// delete-shared-asset rule.
func (c *Capability) Can(action Action) bool {
	if c.IsOwner() {
		return true
	}
	if action == ActionDelete && c.IsSender {
		return true
	}
	accepted := acceptedPermissions[action]
	for _, grant := range c.Grants {
		for _, level := range accepted {
			if grant == level {
				return true
			}
		}
	}
	return false
}

func (c *Capability) CanView() bool   { return c.Can(ActionView) }
func (c *Capability) CanCreate() bool { return c.Can(ActionCreate) }
func (c *Capability) CanUpdate() bool { return c.Can(ActionUpdate) }
func (c *Capability) CanDelete() bool { return c.Can(ActionDelete) }

// Shared reports whether a share row grants the user the given action on the
// folder or its parent, ignoring ownership.
func Shared(db *gorm.DB, folder *models.Folder, userID uint, action Action) (bool, error) {
	capability, err := Resolve(db, folder, userID)
	if err != nil {
		return false, err
	}
	accepted := acceptedPermissions[action]
	for _, grant := range capability.Grants {
		for _, level := range accepted {
			if grant == level {
				return true, nil
			}
		}
	}
	return false, nil
}
