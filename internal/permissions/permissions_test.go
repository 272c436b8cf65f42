package permissions

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/qrshelf/qrshelf-api/internal/models"
)

func shopCollection(ownerID string) models.Collection {
	return models.Collection{ID: "col-1", OwnerID: ownerID, Visibility: models.VisibilityShop}
}

func personalCollection(ownerID string) models.Collection {
	return models.Collection{ID: "col-2", OwnerID: ownerID, Visibility: models.VisibilityPersonal}
}

func share(userID string, perm models.SharePermission) models.CollectionShare {
	return models.CollectionShare{CollectionID: "col-2", UserID: userID, Permission: perm}
}

func TestCanViewShopCollectionOpenToEveryone(t *testing.T) {
	c := shopCollection("owner-1")
	for _, role := range []models.ShopRole{models.RoleOwner, models.RoleAdmin, models.RoleMember} {
		assert.True(t, CanViewCollection(c, "anyone", role, nil), "role %s", role)
	}
}

func TestCanViewPersonalCollection(t *testing.T) {
	c := personalCollection("owner-1")

	assert.True(t, CanViewCollection(c, "owner-1", models.RoleMember, nil), "collection owner")
	assert.True(t, CanViewCollection(c, "boss", models.RoleOwner, nil), "shop owner bypass")
	assert.False(t, CanViewCollection(c, "stranger", models.RoleMember, nil))
	assert.False(t, CanViewCollection(c, "stranger", models.RoleAdmin, nil), "admin gets no view bypass")

	shares := []models.CollectionShare{share("stranger", models.PermissionRead)}
	assert.True(t, CanViewCollection(c, "stranger", models.RoleMember, shares), "read-only share grants view")
}

func TestCanViewEmptySharesBehavesLikeNoShare(t *testing.T) {
	c := personalCollection("owner-1")
	assert.Equal(t,
		CanViewCollection(c, "u", models.RoleMember, nil),
		CanViewCollection(c, "u", models.RoleMember, []models.CollectionShare{}),
	)
}

func TestCanEditCollectionOwnerAlwaysEdits(t *testing.T) {
	assert.True(t, CanEditCollection(shopCollection("u1"), "u1", models.RoleMember, nil))
	assert.True(t, CanEditCollection(personalCollection("u1"), "u1", models.RoleMember, nil))
}

func TestCanEditShopCollectionByRole(t *testing.T) {
	c := shopCollection("someone-else")
	assert.True(t, CanEditCollection(c, "adm", models.RoleAdmin, nil))
	assert.True(t, CanEditCollection(c, "boss", models.RoleOwner, nil))
	assert.False(t, CanEditCollection(c, "mem", models.RoleMember, nil))
}

func TestCanEditPersonalCollectionNoRoleBypass(t *testing.T) {
	c := personalCollection("someone-else")
	assert.False(t, CanEditCollection(c, "adm", models.RoleAdmin, nil))
	assert.False(t, CanEditCollection(c, "boss", models.RoleOwner, nil))
}

func TestCanEditSharePermissions(t *testing.T) {
	c := personalCollection("someone-else")

	readOnly := []models.CollectionShare{share("u", models.PermissionRead)}
	assert.False(t, CanEditCollection(c, "u", models.RoleMember, readOnly))

	readWrite := []models.CollectionShare{share("u", models.PermissionReadWrite)}
	assert.True(t, CanEditCollection(c, "u", models.RoleMember, readWrite))

	unknown := []models.CollectionShare{share("u", models.SharePermission("superuser"))}
	assert.False(t, CanEditCollection(c, "u", models.RoleMember, unknown), "unknown permission is read-only")
}

func TestCanEditOtherUsersShareDoesNotLeak(t *testing.T) {
	c := personalCollection("someone-else")
	shares := []models.CollectionShare{share("other", models.PermissionReadWrite)}
	assert.False(t, CanEditCollection(c, "u", models.RoleMember, shares))
}

func TestCanManageShopAndTeam(t *testing.T) {
	assert.True(t, CanManageShop(models.RoleOwner))
	assert.True(t, CanManageShop(models.RoleAdmin))
	assert.False(t, CanManageShop(models.RoleMember))
	assert.False(t, CanManageShop(models.ShopRole("viewer")))

	assert.True(t, CanManageTeam(models.RoleOwner))
	assert.True(t, CanManageTeam(models.RoleAdmin))
	assert.False(t, CanManageTeam(models.RoleMember))
}
