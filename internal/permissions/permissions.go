// Package permissions holds the pure access predicates for collections and
// shop administration. Every function is a plain computation over its
// arguments; callers load the collection, role and share rows first.
package permissions

import "github.com/qrshelf/qrshelf-api/internal/models"

// CanViewCollection reports whether a user may see a collection.
// Shop-visible collections are open to every member. Personal collections
// are visible to their owner, the shop owner, and anyone holding a share
// at any permission level.
func CanViewCollection(c models.Collection, userID string, role models.ShopRole, shares []models.CollectionShare) bool {
	if c.Visibility == models.VisibilityShop {
		return true
	}
	if c.OwnerID == userID {
		return true
	}
	if role == models.RoleOwner {
		return true
	}
	for _, s := range shares {
		if s.UserID == userID {
			return true
		}
	}
	return false
}

// CanEditCollection reports whether a user may modify a collection.
// The collection owner always can. Shop owners and admins can edit
// shop-visible collections but get no bypass on someone else's personal
// collection; there only a readwrite share grants access. Unrecognized
// permission strings count as read-only.
func CanEditCollection(c models.Collection, userID string, role models.ShopRole, shares []models.CollectionShare) bool {
	if c.OwnerID == userID {
		return true
	}
	if role == models.RoleOwner || role == models.RoleAdmin {
		if c.Visibility == models.VisibilityShop {
			return true
		}
	}
	for _, s := range shares {
		if s.UserID == userID {
			return s.Permission == models.PermissionReadWrite
		}
	}
	return false
}

// CanManageShop reports whether a role may change shop settings.
func CanManageShop(role models.ShopRole) bool {
	return role == models.RoleOwner || role == models.RoleAdmin
}

// CanManageTeam reports whether a role may manage shop members.
func CanManageTeam(role models.ShopRole) bool {
	return role == models.RoleOwner || role == models.RoleAdmin
}
