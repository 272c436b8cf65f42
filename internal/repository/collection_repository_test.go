package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qrshelf/qrshelf-api/internal/models"
)

func newCollectionRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	sqlxDB := sqlx.NewDb(db, "postgres")
	return sqlxDB, mock, func() {
		sqlxDB.Close()
		db.Close()
	}
}

func TestCollectionRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newCollectionRepoMock(t)
	defer cleanup()

	repo := NewCollectionRepository(db)
	mock.ExpectExec("INSERT INTO collections").
		WillReturnResult(sqlmock.NewResult(1, 1))

	c := &models.Collection{
		ShopID:     "shop-1",
		OwnerID:    "user-1",
		Title:      "Summer Picks",
		Slug:       "summer",
		Visibility: models.VisibilityShop,
		Active:     true,
	}
	require.NoError(t, repo.Create(context.Background(), c))
	assert.NotEmpty(t, c.ID)
}

func TestCollectionRepositoryFindByIDNotFound(t *testing.T) {
	db, mock, cleanup := newCollectionRepoMock(t)
	defer cleanup()

	repo := NewCollectionRepository(db)
	mock.ExpectQuery("SELECT id, shop_id, owner_id").
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	c, err := repo.FindByID(context.Background(), "missing")
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.Nil(t, c)
}

func TestCollectionRepositoryListShares(t *testing.T) {
	db, mock, cleanup := newCollectionRepoMock(t)
	defer cleanup()

	repo := NewCollectionRepository(db)
	rows := sqlmock.NewRows([]string{"id", "collection_id", "user_id", "permission", "created_at"}).
		AddRow("share-1", "col-1", "user-2", "read", time.Now()).
		AddRow("share-2", "col-1", "user-3", "readwrite", time.Now())
	mock.ExpectQuery("SELECT id, collection_id, user_id").
		WithArgs("col-1").
		WillReturnRows(rows)

	shares, err := repo.ListShares(context.Background(), "col-1")
	require.NoError(t, err)
	require.Len(t, shares, 2)
	assert.Equal(t, models.PermissionRead, shares[0].Permission)
	assert.Equal(t, models.PermissionReadWrite, shares[1].Permission)
}

func TestCollectionRepositoryUpsertShare(t *testing.T) {
	db, mock, cleanup := newCollectionRepoMock(t)
	defer cleanup()

	repo := NewCollectionRepository(db)
	mock.ExpectExec("INSERT INTO collection_shares").
		WillReturnResult(sqlmock.NewResult(1, 1))

	share := &models.CollectionShare{
		CollectionID: "col-1",
		UserID:       "user-2",
		Permission:   models.PermissionReadWrite,
	}
	require.NoError(t, repo.UpsertShare(context.Background(), share))
	assert.NotEmpty(t, share.ID)
}

func TestCollectionRepositoryDeleteShare(t *testing.T) {
	db, mock, cleanup := newCollectionRepoMock(t)
	defer cleanup()

	repo := NewCollectionRepository(db)
	mock.ExpectExec("DELETE FROM collection_shares").
		WithArgs("col-1", "user-2").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.DeleteShare(context.Background(), "col-1", "user-2"))
}
