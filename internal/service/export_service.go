package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/qrshelf/qrshelf-api/internal/models"
	appErrors "github.com/qrshelf/qrshelf-api/pkg/errors"
	"github.com/qrshelf/qrshelf-api/pkg/export"
	"github.com/qrshelf/qrshelf-api/pkg/storage"
)

type exportEventRepository interface {
	ScanExportRows(ctx context.Context, shopID string, limit int) ([]models.ScanExportRow, error)
	ClickExportRows(ctx context.Context, shopID string, limit int) ([]models.ClickExportRow, error)
}

// ExportFormat selects the rendered output.
type ExportFormat string

const (
	FormatCSV ExportFormat = "csv"
	FormatPDF ExportFormat = "pdf"
)

// ExportResult is a rendered document ready for download. When the
// service has a file store, DownloadToken references an archived copy
// that can be fetched later without re-rendering.
type ExportResult struct {
	FileName      string
	ContentType   string
	Data          []byte
	DownloadToken string
	ExpiresAt     time.Time
}

// ExportService renders a shop's event history as CSV or PDF downloads.
type ExportService struct {
	events  exportEventRepository
	csv     *export.CSVExporter
	pdf     *export.PDFExporter
	store   *storage.FileStore
	signer  *storage.DownloadSigner
	maxRows int
	logger  *zap.Logger
}

// NewExportService constructs an ExportService instance. Store and
// signer are optional together; with both set, rendered documents are
// archived on disk and returned with a signed download token.
func NewExportService(events exportEventRepository, store *storage.FileStore, signer *storage.DownloadSigner, maxRows int, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if maxRows <= 0 {
		maxRows = 10000
	}
	return &ExportService{
		events:  events,
		csv:     export.NewCSVExporter(),
		pdf:     export.NewPDFExporter(),
		store:   store,
		signer:  signer,
		maxRows: maxRows,
		logger:  logger,
	}
}

// ExportScans renders the shop's recent scan events.
func (s *ExportService) ExportScans(ctx context.Context, shopID string, format ExportFormat) (*ExportResult, error) {
	rows, err := s.events.ScanExportRows(ctx, shopID, s.maxRows)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load scan events")
	}

	dataset := export.Dataset{
		Headers: []string{"Code", "Label", "Scanned At", "Device", "Referrer", "Visitor"},
	}
	for _, row := range rows {
		dataset.Rows = append(dataset.Rows, map[string]string{
			"Code":       row.QrCode,
			"Label":      row.QrLabel,
			"Scanned At": row.ScannedAt.UTC().Format(time.RFC3339),
			"Device":     row.DeviceType,
			"Referrer":   row.Referrer,
			"Visitor":    row.IPHash,
		})
	}
	return s.render(dataset, format, shopID, "scans", "Scan History")
}

// ExportClicks renders the shop's recent click events.
func (s *ExportService) ExportClicks(ctx context.Context, shopID string, format ExportFormat) (*ExportResult, error) {
	rows, err := s.events.ClickExportRows(ctx, shopID, s.maxRows)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load click events")
	}

	dataset := export.Dataset{
		Headers: []string{"Item", "Collection", "Clicked At"},
	}
	for _, row := range rows {
		dataset.Rows = append(dataset.Rows, map[string]string{
			"Item":       row.ItemTitle,
			"Collection": row.CollectionTitle,
			"Clicked At": row.ClickedAt.UTC().Format(time.RFC3339),
		})
	}
	return s.render(dataset, format, shopID, "clicks", "Click History")
}

// Download fetches a previously archived export by its signed token.
// Tokens are scoped to the shop they were issued for.
func (s *ExportService) Download(ctx context.Context, shopID, token string) (*ExportResult, error) {
	if s.store == nil || s.signer == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "export downloads are not enabled")
	}

	tokenShopID, name, err := s.signer.Verify(token)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid download token")
	}
	if tokenShopID != shopID {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "download token does not belong to this shop")
	}

	data, err := s.store.Load(name)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "export file no longer available")
	}

	return &ExportResult{
		FileName:    name[strings.LastIndex(name, "/")+1:],
		ContentType: contentTypeFor(name),
		Data:        data,
	}, nil
}

func (s *ExportService) render(dataset export.Dataset, format ExportFormat, shopID, name, title string) (*ExportResult, error) {
	stamp := time.Now().UTC().Format("2006-01-02")

	var result *ExportResult
	switch format {
	case FormatCSV, "":
		data, err := s.csv.Render(dataset)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv")
		}
		result = &ExportResult{
			FileName:    fmt.Sprintf("%s-%s.csv", name, stamp),
			ContentType: "text/csv",
			Data:        data,
		}
	case FormatPDF:
		data, err := s.pdf.Render(dataset, title)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf")
		}
		result = &ExportResult{
			FileName:    fmt.Sprintf("%s-%s.pdf", name, stamp),
			ContentType: "application/pdf",
			Data:        data,
		}
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported format %q", format))
	}

	s.archive(shopID, result)
	return result, nil
}

// archive stores a copy of the rendered document and attaches a signed
// token. Failures are logged and never block the inline download.
func (s *ExportService) archive(shopID string, result *ExportResult) {
	if s.store == nil || s.signer == nil {
		return
	}

	stored := "exports/" + shopID + "/" + result.FileName
	if err := s.store.Save(stored, result.Data); err != nil {
		s.logger.Warn("failed to archive export",
			zap.String("shop_id", shopID),
			zap.String("file", stored),
			zap.Error(err))
		return
	}

	token, expiresAt, err := s.signer.Sign(shopID, stored)
	if err != nil {
		s.logger.Warn("failed to sign export download", zap.String("shop_id", shopID), zap.Error(err))
		return
	}
	result.DownloadToken = token
	result.ExpiresAt = expiresAt
}

func contentTypeFor(name string) string {
	switch {
	case strings.HasSuffix(name, ".pdf"):
		return "application/pdf"
	case strings.HasSuffix(name, ".csv"):
		return "text/csv"
	default:
		return "application/octet-stream"
	}
}
