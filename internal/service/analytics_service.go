package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/qrshelf/qrshelf-api/internal/models"
	"github.com/qrshelf/qrshelf-api/internal/repository"
	appErrors "github.com/qrshelf/qrshelf-api/pkg/errors"
)

type analyticsEventRepository interface {
	CountScans(ctx context.Context, shopID string) (int, error)
	CountClicks(ctx context.Context, shopID string) (int, error)
	ScansByCode(ctx context.Context, shopID string) ([]models.QrCodeScanCount, error)
	ClicksByItem(ctx context.Context, shopID string) ([]models.ItemClickCount, error)
	DailyScans(ctx context.Context, shopID string, days int) ([]models.DailyCount, error)
	DeviceSplit(ctx context.Context, shopID string) ([]models.DeviceCount, error)
}

type analyticsCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
}

type analyticsMetrics interface {
	RecordCacheOperation(hit bool)
}

// AnalyticsService assembles per-shop scan and click reporting. Payloads
// are cached in Redis for a short TTL because each one fans out into six
// aggregate queries.
type AnalyticsService struct {
	events   analyticsEventRepository
	cache    analyticsCache
	metrics  analyticsMetrics
	cacheTTL time.Duration
	logger   *zap.Logger
}

// NewAnalyticsService constructs an AnalyticsService instance. The cache
// is optional; without one every call hits the database.
func NewAnalyticsService(events analyticsEventRepository, cache analyticsCache, metrics analyticsMetrics, cacheTTL time.Duration, logger *zap.Logger) *AnalyticsService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cacheTTL <= 0 {
		cacheTTL = 5 * time.Minute
	}
	return &AnalyticsService{events: events, cache: cache, metrics: metrics, cacheTTL: cacheTTL, logger: logger}
}

// ShopAnalytics returns the aggregate dashboard payload for one shop over
// the trailing number of days.
func (s *AnalyticsService) ShopAnalytics(ctx context.Context, shopID string, days int) (*models.ShopAnalytics, error) {
	if days <= 0 || days > 365 {
		days = 30
	}

	cacheKey := repository.ShopAnalyticsKey(shopID, days)
	if s.cache != nil {
		var cached models.ShopAnalytics
		if err := s.cache.Get(ctx, cacheKey, &cached); err == nil {
			if s.metrics != nil {
				s.metrics.RecordCacheOperation(true)
			}
			return &cached, nil
		} else if !errors.Is(err, appErrors.ErrCacheMiss) {
			s.logger.Warn("analytics cache read failed", zap.String("shop_id", shopID), zap.Error(err))
		}
		if s.metrics != nil {
			s.metrics.RecordCacheOperation(false)
		}
	}

	analytics, err := s.buildAnalytics(ctx, shopID, days)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, cacheKey, analytics, s.cacheTTL); err != nil {
			s.logger.Warn("analytics cache write failed", zap.String("shop_id", shopID), zap.Error(err))
		}
	}
	return analytics, nil
}

func (s *AnalyticsService) buildAnalytics(ctx context.Context, shopID string, days int) (*models.ShopAnalytics, error) {
	totalScans, err := s.events.CountScans(ctx, shopID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count scans")
	}
	totalClicks, err := s.events.CountClicks(ctx, shopID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count clicks")
	}
	byCode, err := s.events.ScansByCode(ctx, shopID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to aggregate scans")
	}
	byItem, err := s.events.ClicksByItem(ctx, shopID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to aggregate clicks")
	}
	daily, err := s.events.DailyScans(ctx, shopID, days)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to bucket daily scans")
	}
	devices, err := s.events.DeviceSplit(ctx, shopID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to bucket devices")
	}

	return &models.ShopAnalytics{
		ShopID:       shopID,
		TotalScans:   totalScans,
		TotalClicks:  totalClicks,
		ScansByCode:  byCode,
		ClicksByItem: byItem,
		DailyScans:   daily,
		DeviceSplit:  devices,
		GeneratedAt:  time.Now().UTC(),
	}, nil
}
