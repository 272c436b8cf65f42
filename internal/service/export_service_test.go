package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/qrshelf/qrshelf-api/internal/models"
	appErrors "github.com/qrshelf/qrshelf-api/pkg/errors"
	"github.com/qrshelf/qrshelf-api/pkg/storage"
)

type mockExportRepo struct {
	scans  []models.ScanExportRow
	clicks []models.ClickExportRow
	limit  int
}

func (m *mockExportRepo) ScanExportRows(ctx context.Context, shopID string, limit int) ([]models.ScanExportRow, error) {
	m.limit = limit
	return m.scans, nil
}

func (m *mockExportRepo) ClickExportRows(ctx context.Context, shopID string, limit int) ([]models.ClickExportRow, error) {
	m.limit = limit
	return m.clicks, nil
}

func TestExportServiceScansCSV(t *testing.T) {
	repo := &mockExportRepo{scans: []models.ScanExportRow{
		{
			ID:         "ev-1",
			QrCode:     "abc123",
			QrLabel:    "Window poster",
			ScannedAt:  time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC),
			DeviceType: "mobile",
			Referrer:   "https://example.com",
			IPHash:     "a1b2c3d4e5f60718",
		},
	}}
	svc := NewExportService(repo, nil, nil, 500, zap.NewNop())

	result, err := svc.ExportScans(context.Background(), "shop-1", FormatCSV)
	require.NoError(t, err)
	assert.Equal(t, 500, repo.limit)
	assert.Equal(t, "text/csv", result.ContentType)
	assert.True(t, strings.HasSuffix(result.FileName, ".csv"))

	body := string(result.Data)
	assert.Contains(t, body, "Code,Label,Scanned At,Device,Referrer,Visitor")
	assert.Contains(t, body, "abc123")
	assert.Contains(t, body, "2026-03-14T09:30:00Z")
}

func TestExportServiceClicksPDF(t *testing.T) {
	repo := &mockExportRepo{clicks: []models.ClickExportRow{
		{ID: "ev-2", ItemTitle: "Ceramic Mug", CollectionTitle: "Summer Picks", ClickedAt: time.Now()},
	}}
	svc := NewExportService(repo, nil, nil, 0, zap.NewNop())

	result, err := svc.ExportClicks(context.Background(), "shop-1", FormatPDF)
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", result.ContentType)
	assert.NotEmpty(t, result.Data)
	assert.Equal(t, 10000, repo.limit)
}

func TestExportServiceUnsupportedFormat(t *testing.T) {
	svc := NewExportService(&mockExportRepo{}, nil, nil, 10, zap.NewNop())

	_, err := svc.ExportScans(context.Background(), "shop-1", "xlsx")
	appErr := appErrors.FromError(err)
	require.NotNil(t, appErr)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
}

func TestExportServiceArchivedDownload(t *testing.T) {
	repo := &mockExportRepo{scans: []models.ScanExportRow{
		{ID: "ev-1", QrCode: "abc123", ScannedAt: time.Now()},
	}}
	store, err := storage.NewFileStore(t.TempDir())
	require.NoError(t, err)
	signer := storage.NewDownloadSigner("export-secret", time.Hour)
	svc := NewExportService(repo, store, signer, 100, zap.NewNop())

	result, err := svc.ExportScans(context.Background(), "shop-1", FormatCSV)
	require.NoError(t, err)
	require.NotEmpty(t, result.DownloadToken)
	assert.True(t, result.ExpiresAt.After(time.Now()))

	archived, err := svc.Download(context.Background(), "shop-1", result.DownloadToken)
	require.NoError(t, err)
	assert.Equal(t, result.FileName, archived.FileName)
	assert.Equal(t, "text/csv", archived.ContentType)
	assert.Equal(t, result.Data, archived.Data)

	_, err = svc.Download(context.Background(), "shop-2", result.DownloadToken)
	appErr := appErrors.FromError(err)
	require.NotNil(t, appErr)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErr.Code)
}
