package handler

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTrackHandlerScan(t *testing.T) {
	gin.SetMode(gin.TestMode)
	events := &trackingEventRepoStub{}
	handler := NewTrackHandler(newTrackingHandlerService(t, events, 30))

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodPost, "/track-scan", bytes.NewBufferString(`{"code":"abc123"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "Mozilla/5.0 (iPad; CPU OS 17_0 like Mac OS X)")
	c.Request = req

	handler.TrackScan(c)

	require.Equal(t, http.StatusOK, w.Code)
	require.Eventually(t, func() bool {
		return events.scanCount() == 1
	}, time.Second, 10*time.Millisecond)
}

func TestTrackHandlerScanUnknownCode(t *testing.T) {
	gin.SetMode(gin.TestMode)
	events := &trackingEventRepoStub{}
	handler := NewTrackHandler(newTrackingHandlerService(t, events, 30))

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodPost, "/track-scan", bytes.NewBufferString(`{"code":"missing"}`))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req

	handler.TrackScan(c)

	require.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, 0, events.scanCount())
}

func TestTrackHandlerScanInvalidBody(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewTrackHandler(newTrackingHandlerService(t, &trackingEventRepoStub{}, 30))

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodPost, "/track-scan", bytes.NewBufferString(`{"code":`))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req

	handler.TrackScan(c)

	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestTrackHandlerClick(t *testing.T) {
	gin.SetMode(gin.TestMode)
	events := &trackingEventRepoStub{}
	handler := NewTrackHandler(newTrackingHandlerService(t, events, 30))

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodPost, "/track-click", bytes.NewBufferString(`{"item_id":"item-1","qr_code_id":"qr-1"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64)")
	c.Request = req

	handler.TrackClick(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, events.clickCount())
}

func TestTrackHandlerClickMissingItem(t *testing.T) {
	gin.SetMode(gin.TestMode)
	events := &trackingEventRepoStub{}
	handler := NewTrackHandler(newTrackingHandlerService(t, events, 30))

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodPost, "/track-click", bytes.NewBufferString(`{"collection_id":"col-1"}`))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req

	handler.TrackClick(c)

	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, 0, events.clickCount())
}
