package repository

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qrshelf/qrshelf-api/internal/models"
)

func newEventRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	sqlxDB := sqlx.NewDb(db, "postgres")
	return sqlxDB, mock, func() {
		sqlxDB.Close()
		db.Close()
	}
}

func TestEventRepositoryInsertScan(t *testing.T) {
	db, mock, cleanup := newEventRepoMock(t)
	defer cleanup()

	repo := NewEventRepository(db)
	mock.ExpectExec("INSERT INTO scan_events").
		WillReturnResult(sqlmock.NewResult(1, 1))

	event := &models.ScanEvent{
		QrCodeID:   "qr-1",
		UserAgent:  "Mozilla/5.0 (iPhone; CPU iPhone OS 17_0 like Mac OS X)",
		DeviceType: models.DeviceMobile,
		IPHash:     "a1b2c3d4e5f60718",
	}
	require.NoError(t, repo.InsertScan(context.Background(), event))
	assert.NotEmpty(t, event.ID)
	assert.False(t, event.ScannedAt.IsZero())
}

func TestEventRepositoryInsertClick(t *testing.T) {
	db, mock, cleanup := newEventRepoMock(t)
	defer cleanup()

	repo := NewEventRepository(db)
	mock.ExpectExec("INSERT INTO click_events").
		WillReturnResult(sqlmock.NewResult(1, 1))

	collectionID := "col-1"
	event := &models.ClickEvent{
		CollectionID: &collectionID,
		ItemID:       "item-1",
	}
	require.NoError(t, repo.InsertClick(context.Background(), event))
	assert.NotEmpty(t, event.ID)
}

func TestEventRepositoryCountScans(t *testing.T) {
	db, mock, cleanup := newEventRepoMock(t)
	defer cleanup()

	repo := NewEventRepository(db)
	mock.ExpectQuery(`SELECT COUNT\(\*\)`).
		WithArgs("shop-1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(42))

	total, err := repo.CountScans(context.Background(), "shop-1")
	require.NoError(t, err)
	assert.Equal(t, 42, total)
}

func TestEventRepositoryScansByCode(t *testing.T) {
	db, mock, cleanup := newEventRepoMock(t)
	defer cleanup()

	repo := NewEventRepository(db)
	rows := sqlmock.NewRows([]string{"qr_code_id", "code", "label", "scans"}).
		AddRow("qr-1", "abc123", "Window poster", 30).
		AddRow("qr-2", "def456", "Counter sticker", 5)
	mock.ExpectQuery("SELECT q.id AS qr_code_id").
		WithArgs("shop-1").
		WillReturnRows(rows)

	counts, err := repo.ScansByCode(context.Background(), "shop-1")
	require.NoError(t, err)
	require.Len(t, counts, 2)
	assert.Equal(t, "abc123", counts[0].Code)
	assert.Equal(t, 30, counts[0].Scans)
}

func TestEventRepositoryDeviceSplit(t *testing.T) {
	db, mock, cleanup := newEventRepoMock(t)
	defer cleanup()

	repo := NewEventRepository(db)
	rows := sqlmock.NewRows([]string{"device_type", "count"}).
		AddRow("mobile", 28).
		AddRow("desktop", 7)
	mock.ExpectQuery("SELECT e.device_type").
		WithArgs("shop-1").
		WillReturnRows(rows)

	counts, err := repo.DeviceSplit(context.Background(), "shop-1")
	require.NoError(t, err)
	require.Len(t, counts, 2)
	assert.Equal(t, "mobile", counts[0].DeviceType)
}

func TestEventRepositoryScanExportRows(t *testing.T) {
	db, mock, cleanup := newEventRepoMock(t)
	defer cleanup()

	repo := NewEventRepository(db)
	scannedAt := time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{"id", "qr_code", "qr_label", "scanned_at", "device_type", "referrer", "ip_hash"}).
		AddRow("ev-1", "abc123", "Window poster", scannedAt, "mobile", "", "a1b2c3d4e5f60718")
	mock.ExpectQuery("SELECT e.id, q.code AS qr_code").
		WithArgs("shop-1", 100).
		WillReturnRows(rows)

	exported, err := repo.ScanExportRows(context.Background(), "shop-1", 100)
	require.NoError(t, err)
	require.Len(t, exported, 1)
	assert.Equal(t, "abc123", exported[0].QrCode)
	assert.Equal(t, scannedAt, exported[0].ScannedAt)
}
