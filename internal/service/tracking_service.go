package service

import (
	"context"
	"database/sql"
	"errors"
	"net/url"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/qrshelf/qrshelf-api/internal/models"
	"github.com/qrshelf/qrshelf-api/internal/privacy"
	"github.com/qrshelf/qrshelf-api/internal/ratelimit"
	appErrors "github.com/qrshelf/qrshelf-api/pkg/errors"
)

// maxFieldLen caps user-supplied header values before they reach storage.
const maxFieldLen = 500

type trackingCodeRepository interface {
	ResolveByCode(ctx context.Context, code string) (*models.ResolvedQrCode, error)
}

type trackingEventRepository interface {
	InsertScan(ctx context.Context, event *models.ScanEvent) error
	InsertClick(ctx context.Context, event *models.ClickEvent) error
}

type trackingMetrics interface {
	RecordScan(device models.DeviceType)
	RecordClick()
	RecordRateLimited()
}

type scanLimiter interface {
	Check(key string) ratelimit.Result
}

// TrackingService runs the public scan and click attribution flows. A scan
// is rate checked per client IP, resolved to its landing target and logged
// without blocking the redirect.
type TrackingService struct {
	codes     trackingCodeRepository
	events    trackingEventRepository
	limiter   scanLimiter
	hasher    *privacy.Hasher
	metrics   trackingMetrics
	validator *validator.Validate
	logger    *zap.Logger

	publicBaseURL string
	logTimeout    time.Duration
}

// NewTrackingService constructs a TrackingService instance.
func NewTrackingService(
	codes trackingCodeRepository,
	events trackingEventRepository,
	limiter scanLimiter,
	hasher *privacy.Hasher,
	metrics trackingMetrics,
	validate *validator.Validate,
	logger *zap.Logger,
	publicBaseURL string,
) *TrackingService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	if hasher == nil {
		hasher = privacy.NewHasher("")
	}
	return &TrackingService{
		codes:         codes,
		events:        events,
		limiter:       limiter,
		hasher:        hasher,
		metrics:       metrics,
		validator:     validate,
		logger:        logger,
		publicBaseURL: strings.TrimRight(publicBaseURL, "/"),
		logTimeout:    5 * time.Second,
	}
}

// ScanContext carries the request attributes of one scan.
type ScanContext struct {
	IP        string
	UserAgent string
	Referrer  string
}

// Redirect resolves a scanned code into its destination URL. The scan
// event write happens in the background; a logging failure never costs
// the visitor their redirect.
func (s *TrackingService) Redirect(ctx context.Context, code string, scan ScanContext) (string, error) {
	if result := s.limiter.Check(scanLimitKey(scan.IP)); !result.Allowed {
		if s.metrics != nil {
			s.metrics.RecordRateLimited()
		}
		return "", appErrors.Clone(appErrors.ErrRateLimited, "too many scans from this address")
	}

	resolved, err := s.codes.ResolveByCode(ctx, code)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", appErrors.Clone(appErrors.ErrCodeNotFound, "unknown code")
		}
		return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve code")
	}

	event := s.buildScanEvent(resolved.ID, scan)
	go s.logScan(event)

	if s.metrics != nil {
		s.metrics.RecordScan(event.DeviceType)
	}

	return s.destinationURL(resolved), nil
}

// TrackScan records a scan for a visitor who landed without passing
// through the redirect, for example via a deep link that embeds the code.
func (s *TrackingService) TrackScan(ctx context.Context, req models.TrackScanRequest, scan ScanContext) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid scan payload")
	}

	if result := s.limiter.Check(scanLimitKey(scan.IP)); !result.Allowed {
		if s.metrics != nil {
			s.metrics.RecordRateLimited()
		}
		return appErrors.Clone(appErrors.ErrRateLimited, "too many scans from this address")
	}

	resolved, err := s.codes.ResolveByCode(ctx, req.Code)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrCodeNotFound, "unknown code")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve code")
	}

	event := s.buildScanEvent(resolved.ID, scan)
	if err := s.events.InsertScan(ctx, event); err != nil {
		// Best-effort logging. A lost scan never becomes a visitor-facing error.
		s.logger.Warn("failed to record scan event",
			zap.String("qr_code_id", event.QrCodeID),
			zap.Error(err))
		return nil
	}

	if s.metrics != nil {
		s.metrics.RecordScan(event.DeviceType)
	}
	return nil
}

// TrackClick records a visitor following an item's outbound product link.
func (s *TrackingService) TrackClick(ctx context.Context, req models.TrackClickRequest, userAgent string) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid click payload")
	}

	event := &models.ClickEvent{
		QrCodeID:     req.QrCodeID,
		CollectionID: req.CollectionID,
		ItemID:       req.ItemID,
		UserAgent:    truncate(userAgent, maxFieldLen),
	}
	if err := s.events.InsertClick(ctx, event); err != nil {
		// The click simply goes uncounted.
		s.logger.Warn("failed to record click event",
			zap.String("item_id", event.ItemID),
			zap.Error(err))
		return nil
	}

	if s.metrics != nil {
		s.metrics.RecordClick()
	}
	return nil
}

func (s *TrackingService) buildScanEvent(qrCodeID string, scan ScanContext) *models.ScanEvent {
	return &models.ScanEvent{
		QrCodeID:   qrCodeID,
		ScannedAt:  time.Now().UTC(),
		UserAgent:  truncate(scan.UserAgent, maxFieldLen),
		DeviceType: DetectDevice(scan.UserAgent),
		Referrer:   truncate(scan.Referrer, maxFieldLen),
		IPHash:     s.hasher.HashIP(scan.IP),
	}
}

func (s *TrackingService) logScan(event *models.ScanEvent) {
	ctx, cancel := context.WithTimeout(context.Background(), s.logTimeout)
	defer cancel()

	if err := s.events.InsertScan(ctx, event); err != nil {
		s.logger.Warn("failed to record scan event",
			zap.String("qr_code_id", event.QrCodeID),
			zap.Error(err))
	}
}

// destinationURL joins the resolved landing path with the attribution
// parameter. Relative paths are anchored on the public base URL; a stored
// absolute URL passes through untouched.
func (s *TrackingService) destinationURL(resolved *models.ResolvedQrCode) string {
	target := resolved.Target()
	dest := target.Path
	if !strings.HasPrefix(dest, "http://") && !strings.HasPrefix(dest, "https://") {
		dest = s.publicBaseURL + dest
	}

	sep := "?"
	if strings.Contains(dest, "?") {
		sep = "&"
	}
	return dest + sep + "src=" + url.QueryEscape(resolved.Code)
}

// DetectDevice classifies a user agent into a coarse device bucket. The
// mobile check runs first, so an iPad UA carrying a Mobile token counts
// as mobile.
func DetectDevice(userAgent string) models.DeviceType {
	ua := strings.ToLower(userAgent)
	switch {
	case strings.Contains(ua, "mobile"):
		return models.DeviceMobile
	case strings.Contains(ua, "tablet") || strings.Contains(ua, "ipad"):
		return models.DeviceTablet
	default:
		return models.DeviceDesktop
	}
}

// scanLimitKey namespaces limiter entries so a limiter shared with
// another pipeline cannot collide with scan counting.
func scanLimitKey(ip string) string {
	return "scan:" + ip
}

func truncate(value string, limit int) string {
	if len(value) <= limit {
		return value
	}
	return value[:limit]
}
