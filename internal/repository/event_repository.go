package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/qrshelf/qrshelf-api/internal/models"
)

// EventRepository is the append-only sink for scan and click events and
// the read side for their aggregates. Event rows are never updated.
type EventRepository struct {
	db *sqlx.DB
}

// NewEventRepository creates a new instance of EventRepository.
func NewEventRepository(db *sqlx.DB) *EventRepository {
	return &EventRepository{db: db}
}

// InsertScan appends one scan event.
func (r *EventRepository) InsertScan(ctx context.Context, event *models.ScanEvent) error {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.ScannedAt.IsZero() {
		event.ScannedAt = time.Now().UTC()
	}
	const query = `INSERT INTO scan_events (id, qr_code_id, scanned_at, user_agent, device_type, referrer, ip_hash) VALUES (:id, :qr_code_id, :scanned_at, :user_agent, :device_type, :referrer, :ip_hash)`
	if _, err := r.db.NamedExecContext(ctx, query, event); err != nil {
		return fmt.Errorf("insert scan event: %w", err)
	}
	return nil
}

// InsertClick appends one click event.
func (r *EventRepository) InsertClick(ctx context.Context, event *models.ClickEvent) error {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.ClickedAt.IsZero() {
		event.ClickedAt = time.Now().UTC()
	}
	const query = `INSERT INTO click_events (id, qr_code_id, collection_id, item_id, clicked_at, user_agent) VALUES (:id, :qr_code_id, :collection_id, :item_id, :clicked_at, :user_agent)`
	if _, err := r.db.NamedExecContext(ctx, query, event); err != nil {
		return fmt.Errorf("insert click event: %w", err)
	}
	return nil
}

// CountScans returns the scan total across a shop's QR codes.
func (r *EventRepository) CountScans(ctx context.Context, shopID string) (int, error) {
	const query = `
SELECT COUNT(*)
FROM scan_events e
JOIN qr_codes q ON q.id = e.qr_code_id
WHERE q.shop_id = $1`
	var total int
	if err := r.db.GetContext(ctx, &total, query, shopID); err != nil {
		return 0, fmt.Errorf("count scans: %w", err)
	}
	return total, nil
}

// CountClicks returns the click total across a shop's items.
func (r *EventRepository) CountClicks(ctx context.Context, shopID string) (int, error) {
	const query = `
SELECT COUNT(*)
FROM click_events e
JOIN items i ON i.id = e.item_id
WHERE i.shop_id = $1`
	var total int
	if err := r.db.GetContext(ctx, &total, query, shopID); err != nil {
		return 0, fmt.Errorf("count clicks: %w", err)
	}
	return total, nil
}

// ScansByCode returns per-QR scan totals for a shop, busiest first.
func (r *EventRepository) ScansByCode(ctx context.Context, shopID string) ([]models.QrCodeScanCount, error) {
	const query = `
SELECT q.id AS qr_code_id, q.code, q.label, COUNT(e.id) AS scans
FROM qr_codes q
LEFT JOIN scan_events e ON e.qr_code_id = q.id
WHERE q.shop_id = $1
GROUP BY q.id, q.code, q.label
ORDER BY scans DESC`
	var counts []models.QrCodeScanCount
	if err := r.db.SelectContext(ctx, &counts, query, shopID); err != nil {
		return nil, fmt.Errorf("scans by code: %w", err)
	}
	return counts, nil
}

// ClicksByItem returns per-item click totals for a shop, most clicked first.
func (r *EventRepository) ClicksByItem(ctx context.Context, shopID string) ([]models.ItemClickCount, error) {
	const query = `
SELECT i.id AS item_id, i.title, COUNT(e.id) AS clicks
FROM items i
LEFT JOIN click_events e ON e.item_id = i.id
WHERE i.shop_id = $1
GROUP BY i.id, i.title
ORDER BY clicks DESC`
	var counts []models.ItemClickCount
	if err := r.db.SelectContext(ctx, &counts, query, shopID); err != nil {
		return nil, fmt.Errorf("clicks by item: %w", err)
	}
	return counts, nil
}

// DailyScans buckets a shop's scans per UTC day over the trailing window.
func (r *EventRepository) DailyScans(ctx context.Context, shopID string, days int) ([]models.DailyCount, error) {
	const query = `
SELECT date_trunc('day', e.scanned_at) AS day, COUNT(*) AS count
FROM scan_events e
JOIN qr_codes q ON q.id = e.qr_code_id
WHERE q.shop_id = $1 AND e.scanned_at >= NOW() - ($2 || ' days')::interval
GROUP BY day
ORDER BY day`
	var counts []models.DailyCount
	if err := r.db.SelectContext(ctx, &counts, query, shopID, days); err != nil {
		return nil, fmt.Errorf("daily scans: %w", err)
	}
	return counts, nil
}

// DeviceSplit buckets a shop's scans per device classification.
func (r *EventRepository) DeviceSplit(ctx context.Context, shopID string) ([]models.DeviceCount, error) {
	const query = `
SELECT e.device_type, COUNT(*) AS count
FROM scan_events e
JOIN qr_codes q ON q.id = e.qr_code_id
WHERE q.shop_id = $1
GROUP BY e.device_type
ORDER BY count DESC`
	var counts []models.DeviceCount
	if err := r.db.SelectContext(ctx, &counts, query, shopID); err != nil {
		return nil, fmt.Errorf("device split: %w", err)
	}
	return counts, nil
}

// ScanExportRows returns recent scan events for a shop joined with QR info.
func (r *EventRepository) ScanExportRows(ctx context.Context, shopID string, limit int) ([]models.ScanExportRow, error) {
	const query = `
SELECT e.id, q.code AS qr_code, q.label AS qr_label, e.scanned_at, e.device_type, e.referrer, e.ip_hash
FROM scan_events e
JOIN qr_codes q ON q.id = e.qr_code_id
WHERE q.shop_id = $1
ORDER BY e.scanned_at DESC
LIMIT $2`
	var rows []models.ScanExportRow
	if err := r.db.SelectContext(ctx, &rows, query, shopID, limit); err != nil {
		return nil, fmt.Errorf("scan export rows: %w", err)
	}
	return rows, nil
}

// ClickExportRows returns recent click events for a shop joined with titles.
func (r *EventRepository) ClickExportRows(ctx context.Context, shopID string, limit int) ([]models.ClickExportRow, error) {
	const query = `
SELECT e.id, COALESCE(c.title, '') AS collection_title, i.title AS item_title, e.clicked_at
FROM click_events e
JOIN items i ON i.id = e.item_id
LEFT JOIN collections c ON c.id = e.collection_id
WHERE i.shop_id = $1
ORDER BY e.clicked_at DESC
LIMIT $2`
	var rows []models.ClickExportRow
	if err := r.db.SelectContext(ctx, &rows, query, shopID, limit); err != nil {
		return nil, fmt.Errorf("click export rows: %w", err)
	}
	return rows, nil
}
