package service

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/qrshelf/qrshelf-api/internal/models"
	"github.com/qrshelf/qrshelf-api/internal/privacy"
	"github.com/qrshelf/qrshelf-api/internal/ratelimit"
	appErrors "github.com/qrshelf/qrshelf-api/pkg/errors"
)

type mockCodeRepo struct {
	codes map[string]*models.ResolvedQrCode
	err   error
}

func (m *mockCodeRepo) ResolveByCode(ctx context.Context, code string) (*models.ResolvedQrCode, error) {
	if m.err != nil {
		return nil, m.err
	}
	resolved, ok := m.codes[code]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return resolved, nil
}

type mockEventRepo struct {
	mu        sync.Mutex
	scans     []*models.ScanEvent
	clicks    []*models.ClickEvent
	insertErr error
}

func (m *mockEventRepo) InsertScan(ctx context.Context, event *models.ScanEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.insertErr != nil {
		return m.insertErr
	}
	m.scans = append(m.scans, event)
	return nil
}

func (m *mockEventRepo) InsertClick(ctx context.Context, event *models.ClickEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.insertErr != nil {
		return m.insertErr
	}
	m.clicks = append(m.clicks, event)
	return nil
}

func (m *mockEventRepo) scanCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.scans)
}

func (m *mockEventRepo) firstScan() *models.ScanEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.scans) == 0 {
		return nil
	}
	return m.scans[0]
}

func strPtrT(value string) *string {
	return &value
}

func newTrackingFixture(t *testing.T) (*TrackingService, *mockEventRepo, *ratelimit.Limiter) {
	t.Helper()
	codes := &mockCodeRepo{codes: map[string]*models.ResolvedQrCode{
		"abc123": {
			ID:       "qr-1",
			Code:     "abc123",
			ItemID:   strPtrT("item-1"),
			ShopSlug: strPtrT("shop1"),
		},
		"def456": {
			ID:             "qr-2",
			Code:           "def456",
			CollectionID:   strPtrT("col-1"),
			ShopSlug:       strPtrT("shop1"),
			CollectionSlug: strPtrT("summer"),
		},
	}}
	events := &mockEventRepo{}
	limiter := ratelimit.New(time.Minute, 30)
	t.Cleanup(limiter.Stop)

	svc := NewTrackingService(
		codes, events, limiter,
		privacy.NewHasher("test-secret"),
		nil,
		validator.New(),
		zap.NewNop(),
		"http://localhost:3000",
	)
	return svc, events, limiter
}

func TestTrackingServiceRedirectItemTarget(t *testing.T) {
	svc, events, _ := newTrackingFixture(t)

	dest, err := svc.Redirect(context.Background(), "abc123", ScanContext{
		IP:        "203.0.113.9",
		UserAgent: "Mozilla/5.0 (iPhone; CPU iPhone OS 17_0 like Mac OS X) Mobile/15E148 Safari/604.1",
		Referrer:  "https://example.com/menu",
	})
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:3000/p/shop1/item-1?src=abc123", dest)

	require.Eventually(t, func() bool {
		return events.scanCount() == 1
	}, time.Second, 10*time.Millisecond)

	scan := events.firstScan()
	assert.Equal(t, "qr-1", scan.QrCodeID)
	assert.Equal(t, models.DeviceMobile, scan.DeviceType)
	assert.Equal(t, "https://example.com/menu", scan.Referrer)
	assert.Regexp(t, regexp.MustCompile(`^[0-9a-f]{16}$`), scan.IPHash)
}

func TestTrackingServiceRedirectCollectionTarget(t *testing.T) {
	svc, _, _ := newTrackingFixture(t)

	dest, err := svc.Redirect(context.Background(), "def456", ScanContext{IP: "203.0.113.9"})
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:3000/s/shop1/summer?src=def456", dest)
}

func TestTrackingServiceRedirectUnknownCode(t *testing.T) {
	svc, events, _ := newTrackingFixture(t)

	dest, err := svc.Redirect(context.Background(), "missing", ScanContext{IP: "203.0.113.9"})
	assert.Empty(t, dest)

	appErr := appErrors.FromError(err)
	require.NotNil(t, appErr)
	assert.Equal(t, appErrors.ErrCodeNotFound.Code, appErr.Code)
	assert.Equal(t, 0, events.scanCount())
}

func TestTrackingServiceRedirectRateLimited(t *testing.T) {
	svc, events, _ := newTrackingFixture(t)
	scan := ScanContext{IP: "198.51.100.7"}

	for i := 0; i < 30; i++ {
		_, err := svc.Redirect(context.Background(), "abc123", scan)
		require.NoError(t, err)
	}

	_, err := svc.Redirect(context.Background(), "abc123", scan)
	appErr := appErrors.FromError(err)
	require.NotNil(t, appErr)
	assert.Equal(t, appErrors.ErrRateLimited.Code, appErr.Code)
	assert.Equal(t, 429, appErr.Status)

	require.Eventually(t, func() bool {
		return events.scanCount() == 30
	}, time.Second, 10*time.Millisecond)
}

func TestTrackingServiceRedirectTruncatesLongUserAgent(t *testing.T) {
	svc, events, _ := newTrackingFixture(t)

	_, err := svc.Redirect(context.Background(), "abc123", ScanContext{
		IP:        "203.0.113.9",
		UserAgent: strings.Repeat("x", 600),
	})
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		return events.scanCount() == 1
	}, time.Second, 10*time.Millisecond)
	assert.Len(t, events.firstScan().UserAgent, 500)
}

func TestTrackingServiceTrackScan(t *testing.T) {
	svc, events, _ := newTrackingFixture(t)

	err := svc.TrackScan(context.Background(), models.TrackScanRequest{Code: "abc123"}, ScanContext{
		IP:        "203.0.113.9",
		UserAgent: "Mozilla/5.0 (iPad; CPU OS 17_0 like Mac OS X)",
	})
	require.NoError(t, err)
	require.Equal(t, 1, events.scanCount())
	assert.Equal(t, models.DeviceTablet, events.firstScan().DeviceType)
}

func TestTrackingServiceTrackScanRequiresCode(t *testing.T) {
	svc, _, _ := newTrackingFixture(t)

	err := svc.TrackScan(context.Background(), models.TrackScanRequest{}, ScanContext{IP: "203.0.113.9"})
	appErr := appErrors.FromError(err)
	require.NotNil(t, appErr)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
}

func TestTrackingServiceTrackClick(t *testing.T) {
	svc, events, _ := newTrackingFixture(t)

	err := svc.TrackClick(context.Background(), models.TrackClickRequest{
		ItemID:       "item-1",
		CollectionID: strPtrT("col-1"),
	}, "Mozilla/5.0")
	require.NoError(t, err)
	require.Len(t, events.clicks, 1)
	assert.Equal(t, "item-1", events.clicks[0].ItemID)
}

func TestTrackingServiceTrackClickValidation(t *testing.T) {
	svc, events, _ := newTrackingFixture(t)

	err := svc.TrackClick(context.Background(), models.TrackClickRequest{}, "")
	appErr := appErrors.FromError(err)
	require.NotNil(t, appErr)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
	assert.Empty(t, events.clicks)
}

type recordingLimiter struct {
	keys []string
}

func (r *recordingLimiter) Check(key string) ratelimit.Result {
	r.keys = append(r.keys, key)
	return ratelimit.Result{Allowed: true}
}

func TestTrackingServiceLimiterKeyNamespaced(t *testing.T) {
	limiter := &recordingLimiter{}
	codes := &mockCodeRepo{codes: map[string]*models.ResolvedQrCode{
		"abc123": {ID: "qr-1", Code: "abc123", ItemID: strPtrT("item-1"), ShopSlug: strPtrT("shop1")},
	}}
	svc := NewTrackingService(
		codes, &mockEventRepo{}, limiter,
		privacy.NewHasher("test-secret"),
		nil,
		validator.New(),
		zap.NewNop(),
		"http://localhost:3000",
	)

	_, err := svc.Redirect(context.Background(), "abc123", ScanContext{IP: "203.0.113.9"})
	require.NoError(t, err)
	err = svc.TrackScan(context.Background(), models.TrackScanRequest{Code: "abc123"}, ScanContext{IP: "203.0.113.9"})
	require.NoError(t, err)

	require.Len(t, limiter.keys, 2)
	assert.Equal(t, "scan:203.0.113.9", limiter.keys[0])
	assert.Equal(t, "scan:203.0.113.9", limiter.keys[1])
}

func TestTrackingServiceTrackScanInsertFailureSwallowed(t *testing.T) {
	svc, events, _ := newTrackingFixture(t)
	events.insertErr = errors.New("sink down")

	err := svc.TrackScan(context.Background(), models.TrackScanRequest{Code: "abc123"}, ScanContext{
		IP: "203.0.113.9",
	})
	require.NoError(t, err)
	assert.Equal(t, 0, events.scanCount())
}

func TestTrackingServiceTrackClickInsertFailureSwallowed(t *testing.T) {
	svc, events, _ := newTrackingFixture(t)
	events.insertErr = errors.New("sink down")

	err := svc.TrackClick(context.Background(), models.TrackClickRequest{ItemID: "item-1"}, "Mozilla/5.0")
	require.NoError(t, err)
	assert.Empty(t, events.clicks)
}

func TestDetectDevice(t *testing.T) {
	cases := []struct {
		name string
		ua   string
		want models.DeviceType
	}{
		{"iphone", "Mozilla/5.0 (iPhone; CPU iPhone OS 17_0 like Mac OS X) Mobile/15E148 Safari/604.1", models.DeviceMobile},
		{"android phone", "Mozilla/5.0 (Linux; Android 14; Pixel 8) Mobile", models.DeviceMobile},
		{"ipad safari with mobile token", "Mozilla/5.0 (iPad; CPU OS 17_0 like Mac OS X) Mobile/15E148 Safari/604.1", models.DeviceMobile},
		{"ipad", "Mozilla/5.0 (iPad; CPU OS 17_0 like Mac OS X)", models.DeviceTablet},
		{"android tablet", "Mozilla/5.0 (Linux; Android 14; SM-X910) Tablet Safari/537.36", models.DeviceTablet},
		{"desktop", "Mozilla/5.0 (Macintosh; Intel Mac OS X 14_0)", models.DeviceDesktop},
		{"empty", "", models.DeviceDesktop},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, DetectDevice(tc.ua))
		})
	}
}
