package models

import "time"

// ShopAnalytics aggregates scan and click activity for one shop.
type ShopAnalytics struct {
	ShopID       string            `json:"shop_id"`
	TotalScans   int               `json:"total_scans"`
	TotalClicks  int               `json:"total_clicks"`
	ScansByCode  []QrCodeScanCount `json:"scans_by_code"`
	ClicksByItem []ItemClickCount  `json:"clicks_by_item"`
	DailyScans   []DailyCount      `json:"daily_scans"`
	DeviceSplit  []DeviceCount     `json:"device_split"`
	GeneratedAt  time.Time         `json:"generated_at"`
}

// QrCodeScanCount is the scan total for one QR code.
type QrCodeScanCount struct {
	QrCodeID string `db:"qr_code_id" json:"qr_code_id"`
	Code     string `db:"code" json:"code"`
	Label    string `db:"label" json:"label,omitempty"`
	Scans    int    `db:"scans" json:"scans"`
}

// ItemClickCount is the click total for one item.
type ItemClickCount struct {
	ItemID string `db:"item_id" json:"item_id"`
	Title  string `db:"title" json:"title"`
	Clicks int    `db:"clicks" json:"clicks"`
}

// DailyCount buckets events per UTC calendar day.
type DailyCount struct {
	Day   time.Time `db:"day" json:"day"`
	Count int       `db:"count" json:"count"`
}

// DeviceCount buckets scans per device classification.
type DeviceCount struct {
	DeviceType string `db:"device_type" json:"device_type"`
	Count      int    `db:"count" json:"count"`
}

// SystemMetrics is a lightweight snapshot of process health counters.
type SystemMetrics struct {
	CacheHitRatio            float64   `json:"cache_hit_ratio"`
	CacheHits                uint64    `json:"cache_hits"`
	CacheMisses              uint64    `json:"cache_misses"`
	RequestsTotal            uint64    `json:"requests_total"`
	AverageRequestDurationMs float64   `json:"average_request_duration_ms"`
	ScansTotal               uint64    `json:"scans_total"`
	ClicksTotal              uint64    `json:"clicks_total"`
	RateLimitedTotal         uint64    `json:"rate_limited_total"`
	Goroutines               int       `json:"goroutines"`
	GeneratedAt              time.Time `json:"generated_at"`
}
