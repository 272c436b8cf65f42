package models

import "time"

// DeviceType is the coarse client classification derived from a user agent.
type DeviceType string

const (
	DeviceMobile  DeviceType = "mobile"
	DeviceTablet  DeviceType = "tablet"
	DeviceDesktop DeviceType = "desktop"
)

// ScanEvent is an append-only record of a QR code scan. Rows are never
// mutated after insert; downstream reporting only aggregates them.
type ScanEvent struct {
	ID         string     `db:"id" json:"id"`
	QrCodeID   string     `db:"qr_code_id" json:"qr_code_id"`
	ScannedAt  time.Time  `db:"scanned_at" json:"scanned_at"`
	UserAgent  string     `db:"user_agent" json:"user_agent,omitempty"`
	DeviceType DeviceType `db:"device_type" json:"device_type"`
	Referrer   string     `db:"referrer" json:"referrer,omitempty"`
	IPHash     string     `db:"ip_hash" json:"ip_hash"`
}

// ClickEvent is an append-only record of a visitor following through to
// the external product link.
type ClickEvent struct {
	ID           string    `db:"id" json:"id"`
	QrCodeID     *string   `db:"qr_code_id" json:"qr_code_id,omitempty"`
	CollectionID *string   `db:"collection_id" json:"collection_id,omitempty"`
	ItemID       string    `db:"item_id" json:"item_id"`
	ClickedAt    time.Time `db:"clicked_at" json:"clicked_at"`
	UserAgent    string    `db:"user_agent" json:"user_agent,omitempty"`
}

// TrackClickRequest is the public click attribution payload.
type TrackClickRequest struct {
	ItemID       string  `json:"item_id" validate:"required"`
	CollectionID *string `json:"collection_id"`
	QrCodeID     *string `json:"qr_code_id"`
}

// TrackScanRequest is the explicit scan tracking payload used when a
// visitor is deep-linked straight to a landing page.
type TrackScanRequest struct {
	Code string `json:"code" validate:"required"`
}

// ScanExportRow is a scan event joined with its QR code for exports.
type ScanExportRow struct {
	ID         string    `db:"id"`
	QrCode     string    `db:"qr_code"`
	QrLabel    string    `db:"qr_label"`
	ScannedAt  time.Time `db:"scanned_at"`
	DeviceType string    `db:"device_type"`
	Referrer   string    `db:"referrer"`
	IPHash     string    `db:"ip_hash"`
}

// ClickExportRow is a click event joined with item/collection titles.
type ClickExportRow struct {
	ID              string    `db:"id"`
	CollectionTitle string    `db:"collection_title"`
	ItemTitle       string    `db:"item_title"`
	ClickedAt       time.Time `db:"clicked_at"`
}
