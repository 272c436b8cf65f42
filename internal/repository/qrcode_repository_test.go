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

func newQrCodeRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	sqlxDB := sqlx.NewDb(db, "postgres")
	return sqlxDB, mock, func() {
		sqlxDB.Close()
		db.Close()
	}
}

func TestQrCodeRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newQrCodeRepoMock(t)
	defer cleanup()

	repo := NewQrCodeRepository(db)
	mock.ExpectExec("INSERT INTO qr_codes").
		WillReturnResult(sqlmock.NewResult(1, 1))

	qr := &models.QrCode{
		Code:         "abc123",
		ShopID:       "shop-1",
		RedirectPath: "/s/shop1/summer",
	}
	require.NoError(t, repo.Create(context.Background(), qr))
	assert.NotEmpty(t, qr.ID)
	assert.False(t, qr.CreatedAt.IsZero())
}

func TestQrCodeRepositoryResolveByCode(t *testing.T) {
	db, mock, cleanup := newQrCodeRepoMock(t)
	defer cleanup()

	repo := NewQrCodeRepository(db)
	rows := sqlmock.NewRows([]string{"id", "code", "collection_id", "item_id", "redirect_path", "shop_slug", "collection_slug"}).
		AddRow("qr-1", "abc123", "col-1", nil, "/s/shop1/summer", "shop1", "summer")
	mock.ExpectQuery("SELECT q.id, q.code").
		WithArgs("abc123").
		WillReturnRows(rows)

	resolved, err := repo.ResolveByCode(context.Background(), "abc123")
	require.NoError(t, err)
	assert.Equal(t, "qr-1", resolved.ID)
	require.NotNil(t, resolved.CollectionSlug)
	assert.Equal(t, "summer", *resolved.CollectionSlug)

	target := resolved.Target()
	assert.Equal(t, models.TargetCollection, target.Kind)
	assert.Equal(t, "/s/shop1/summer", target.Path)
}

func TestQrCodeRepositoryResolveByCodeNotFound(t *testing.T) {
	db, mock, cleanup := newQrCodeRepoMock(t)
	defer cleanup()

	repo := NewQrCodeRepository(db)
	mock.ExpectQuery("SELECT q.id, q.code").
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	resolved, err := repo.ResolveByCode(context.Background(), "missing")
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.Nil(t, resolved)
}

func TestQrCodeRepositoryCodeExists(t *testing.T) {
	db, mock, cleanup := newQrCodeRepoMock(t)
	defer cleanup()

	repo := NewQrCodeRepository(db)
	mock.ExpectQuery("SELECT EXISTS").
		WithArgs("abc123").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	exists, err := repo.CodeExists(context.Background(), "abc123")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestQrCodeRepositoryListByShop(t *testing.T) {
	db, mock, cleanup := newQrCodeRepoMock(t)
	defer cleanup()

	repo := NewQrCodeRepository(db)
	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "code", "label", "collection_id", "item_id", "shop_id", "redirect_path", "created_at", "updated_at"}).
		AddRow("qr-2", "def456", "Counter sticker", nil, "item-1", "shop-1", "/p/shop1/item-1", now, now).
		AddRow("qr-1", "abc123", "Window poster", "col-1", nil, "shop-1", "/s/shop1/summer", now, now)
	mock.ExpectQuery("SELECT id, code, label").
		WithArgs("shop-1").
		WillReturnRows(rows)

	codes, err := repo.ListByShop(context.Background(), "shop-1")
	require.NoError(t, err)
	require.Len(t, codes, 2)
	assert.Equal(t, "def456", codes[0].Code)
}
