package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/qrshelf/qrshelf-api/internal/models"
	appErrors "github.com/qrshelf/qrshelf-api/pkg/errors"
)

type mockCollectionRepo struct {
	collections map[string]*models.Collection
	shares      map[string][]models.CollectionShare
	updated     *models.Collection
	deleted     []string
	upserted    []*models.CollectionShare
}

func (m *mockCollectionRepo) Create(ctx context.Context, c *models.Collection) error {
	if m.collections == nil {
		m.collections = make(map[string]*models.Collection)
	}
	m.collections[c.ID] = c
	return nil
}

func (m *mockCollectionRepo) FindByID(ctx context.Context, id string) (*models.Collection, error) {
	c, ok := m.collections[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	copied := *c
	return &copied, nil
}

func (m *mockCollectionRepo) ListByShop(ctx context.Context, shopID string) ([]models.Collection, error) {
	var out []models.Collection
	for _, c := range m.collections {
		if c.ShopID == shopID {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (m *mockCollectionRepo) Update(ctx context.Context, c *models.Collection) error {
	m.updated = c
	return nil
}

func (m *mockCollectionRepo) Delete(ctx context.Context, id string) error {
	m.deleted = append(m.deleted, id)
	return nil
}

func (m *mockCollectionRepo) ListShares(ctx context.Context, collectionID string) ([]models.CollectionShare, error) {
	return m.shares[collectionID], nil
}

func (m *mockCollectionRepo) UpsertShare(ctx context.Context, share *models.CollectionShare) error {
	m.upserted = append(m.upserted, share)
	return nil
}

func (m *mockCollectionRepo) DeleteShare(ctx context.Context, collectionID, userID string) error {
	return nil
}

func newCollectionFixture(t *testing.T) (*CollectionService, *mockCollectionRepo) {
	t.Helper()
	repo := &mockCollectionRepo{
		collections: map[string]*models.Collection{
			"col-shop": {
				ID: "col-shop", ShopID: "shop-1", OwnerID: "owner-1",
				Title: "Shop Picks", Slug: "shop-picks",
				Visibility: models.VisibilityShop, Active: true,
			},
			"col-personal": {
				ID: "col-personal", ShopID: "shop-1", OwnerID: "owner-1",
				Title: "Private Picks", Slug: "private-picks",
				Visibility: models.VisibilityPersonal, Active: true,
			},
		},
		shares: map[string][]models.CollectionShare{
			"col-personal": {
				{ID: "share-1", CollectionID: "col-personal", UserID: "editor-1", Permission: models.PermissionReadWrite},
				{ID: "share-2", CollectionID: "col-personal", UserID: "viewer-1", Permission: models.PermissionRead},
			},
		},
	}
	return NewCollectionService(repo, validator.New(), zap.NewNop()), repo
}

func TestCollectionServiceCreate(t *testing.T) {
	svc, repo := newCollectionFixture(t)

	c, err := svc.Create(context.Background(), "shop-1", "user-1", models.CreateCollectionRequest{
		Title:      "Summer Picks",
		Visibility: models.VisibilityShop,
	})
	require.NoError(t, err)
	assert.Equal(t, "summer-picks", c.Slug)
	assert.Equal(t, "user-1", c.OwnerID)
	assert.True(t, c.Active)
	assert.Contains(t, repo.collections, c.ID)
}

func TestCollectionServiceCreateValidation(t *testing.T) {
	svc, _ := newCollectionFixture(t)

	_, err := svc.Create(context.Background(), "shop-1", "user-1", models.CreateCollectionRequest{
		Title:      "Summer Picks",
		Visibility: "public",
	})
	appErr := appErrors.FromError(err)
	require.NotNil(t, appErr)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
}

func TestCollectionServiceGetPersonalDeniedToMember(t *testing.T) {
	svc, _ := newCollectionFixture(t)

	_, err := svc.Get(context.Background(), "col-personal", "stranger-1", models.RoleMember)
	appErr := appErrors.FromError(err)
	require.NotNil(t, appErr)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErr.Code)
}

func TestCollectionServiceGetPersonalAllowedViaShare(t *testing.T) {
	svc, _ := newCollectionFixture(t)

	c, err := svc.Get(context.Background(), "col-personal", "viewer-1", models.RoleMember)
	require.NoError(t, err)
	assert.Equal(t, "col-personal", c.ID)
}

func TestCollectionServiceUpdateAdminNoBypassOnPersonal(t *testing.T) {
	svc, _ := newCollectionFixture(t)

	_, err := svc.Update(context.Background(), "col-personal", "admin-1", models.RoleAdmin, models.UpdateCollectionRequest{
		Title:      "Renamed",
		Visibility: models.VisibilityPersonal,
		Active:     true,
	})
	appErr := appErrors.FromError(err)
	require.NotNil(t, appErr)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErr.Code)
}

func TestCollectionServiceUpdateViaReadWriteShare(t *testing.T) {
	svc, repo := newCollectionFixture(t)

	c, err := svc.Update(context.Background(), "col-personal", "editor-1", models.RoleMember, models.UpdateCollectionRequest{
		Title:      "Renamed Picks",
		Visibility: models.VisibilityPersonal,
		Active:     true,
	})
	require.NoError(t, err)
	assert.Equal(t, "Renamed Picks", c.Title)
	assert.Equal(t, "renamed-picks", c.Slug)
	require.NotNil(t, repo.updated)
}

func TestCollectionServiceUpdateReadShareDenied(t *testing.T) {
	svc, _ := newCollectionFixture(t)

	_, err := svc.Update(context.Background(), "col-personal", "viewer-1", models.RoleMember, models.UpdateCollectionRequest{
		Title:      "Renamed",
		Visibility: models.VisibilityPersonal,
	})
	appErr := appErrors.FromError(err)
	require.NotNil(t, appErr)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErr.Code)
}

func TestCollectionServiceDeleteNotFound(t *testing.T) {
	svc, _ := newCollectionFixture(t)

	err := svc.Delete(context.Background(), "missing", "owner-1", models.RoleOwner)
	appErr := appErrors.FromError(err)
	require.NotNil(t, appErr)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErr.Code)
}

func TestCollectionServiceShare(t *testing.T) {
	svc, repo := newCollectionFixture(t)

	share, err := svc.Share(context.Background(), "col-personal", "owner-1", models.RoleMember, models.ShareCollectionRequest{
		UserID:     "new-user",
		Permission: models.PermissionRead,
	})
	require.NoError(t, err)
	assert.Equal(t, "new-user", share.UserID)
	require.Len(t, repo.upserted, 1)
}

func TestSlugify(t *testing.T) {
	cases := map[string]string{
		"Summer Picks":      "summer-picks",
		"  Fancy -- Stuff ": "fancy-stuff",
		"Éclair & Co":       "clair-co",
	}
	for input, want := range cases {
		assert.Equal(t, want, Slugify(input))
	}
	assert.NotEmpty(t, Slugify("你好"))
}
