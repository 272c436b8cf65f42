package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/qrshelf/qrshelf-api/internal/models"
	"github.com/qrshelf/qrshelf-api/internal/service"
	appErrors "github.com/qrshelf/qrshelf-api/pkg/errors"
	"github.com/qrshelf/qrshelf-api/pkg/response"
)

// TrackHandler serves the public attribution endpoints used by landing
// pages. Neither endpoint requires authentication.
type TrackHandler struct {
	service *service.TrackingService
}

// NewTrackHandler creates a new handler.
func NewTrackHandler(svc *service.TrackingService) *TrackHandler {
	return &TrackHandler{service: svc}
}

// TrackScan godoc
// @Summary Track a scan
// @Description Record a scan for a visitor who deep-linked past the redirect
// @Tags Public
// @Accept json
// @Produce json
// @Param payload body models.TrackScanRequest true "Scan payload"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 429 {object} response.Envelope
// @Router /track-scan [post]
func (h *TrackHandler) TrackScan(c *gin.Context) {
	var req models.TrackScanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid scan payload"))
		return
	}

	err := h.service.TrackScan(c.Request.Context(), req, service.ScanContext{
		IP:        c.ClientIP(),
		UserAgent: c.GetHeader("User-Agent"),
		Referrer:  c.GetHeader("Referer"),
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, gin.H{"ok": true}, nil)
}

// TrackClick godoc
// @Summary Track a click
// @Description Record a visitor following an item's outbound link
// @Tags Public
// @Accept json
// @Produce json
// @Param payload body models.TrackClickRequest true "Click payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /track-click [post]
func (h *TrackHandler) TrackClick(c *gin.Context) {
	var req models.TrackClickRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid click payload"))
		return
	}

	if err := h.service.TrackClick(c.Request.Context(), req, c.GetHeader("User-Agent")); err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, gin.H{"ok": true}, nil)
}
