package handler

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/qrshelf/qrshelf-api/internal/permissions"
	"github.com/qrshelf/qrshelf-api/internal/service"
	appErrors "github.com/qrshelf/qrshelf-api/pkg/errors"
	"github.com/qrshelf/qrshelf-api/pkg/response"
)

// ExportHandler serves event history downloads.
type ExportHandler struct {
	service *service.ExportService
}

// NewExportHandler creates a new handler.
func NewExportHandler(svc *service.ExportService) *ExportHandler {
	return &ExportHandler{service: svc}
}

// ExportScans godoc
// @Summary Export scan events
// @Description Download the shop's scan history as CSV or PDF
// @Tags Analytics
// @Produce octet-stream
// @Param slug path string true "Shop slug"
// @Param format query string false "csv or pdf"
// @Success 200 {file} binary
// @Failure 403 {object} response.Envelope
// @Router /shops/{slug}/exports/scans [get]
func (h *ExportHandler) ExportScans(c *gin.Context) {
	h.export(c, h.service.ExportScans)
}

// ExportClicks godoc
// @Summary Export click events
// @Description Download the shop's click history as CSV or PDF
// @Tags Analytics
// @Produce octet-stream
// @Param slug path string true "Shop slug"
// @Param format query string false "csv or pdf"
// @Success 200 {file} binary
// @Failure 403 {object} response.Envelope
// @Router /shops/{slug}/exports/clicks [get]
func (h *ExportHandler) ExportClicks(c *gin.Context) {
	h.export(c, h.service.ExportClicks)
}

// Export godoc
// @Summary Export event history
// @Description Download the shop's scan or click history as CSV or PDF
// @Tags Analytics
// @Produce octet-stream
// @Param slug path string true "Shop slug"
// @Param type query string false "scans or clicks"
// @Param format query string false "csv or pdf"
// @Success 200 {file} binary
// @Failure 400 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /shops/{slug}/export [get]
func (h *ExportHandler) Export(c *gin.Context) {
	switch c.DefaultQuery("type", "scans") {
	case "scans":
		h.export(c, h.service.ExportScans)
	case "clicks":
		h.export(c, h.service.ExportClicks)
	default:
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "type must be scans or clicks"))
	}
}

func (h *ExportHandler) export(c *gin.Context, render func(ctx context.Context, shopID string, format service.ExportFormat) (*service.ExportResult, error)) {
	shop := shopFromContext(c)
	if !permissions.CanManageShop(roleFromContext(c)) {
		response.Error(c, appErrors.Clone(appErrors.ErrForbidden, "only owners and admins can export events"))
		return
	}

	format := service.ExportFormat(c.DefaultQuery("format", "csv"))
	result, err := render(c.Request.Context(), shop.ID, format)
	if err != nil {
		response.Error(c, err)
		return
	}

	if result.DownloadToken != "" {
		c.Header("X-Download-Token", result.DownloadToken)
		c.Header("X-Download-Expires", result.ExpiresAt.UTC().Format(time.RFC3339))
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", result.FileName))
	c.Data(http.StatusOK, result.ContentType, result.Data)
}

// Download godoc
// @Summary Download an archived export
// @Description Fetch a previously rendered export using its signed token
// @Tags Analytics
// @Produce octet-stream
// @Param slug path string true "Shop slug"
// @Param token query string true "Signed download token"
// @Success 200 {file} binary
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /shops/{slug}/exports/download [get]
func (h *ExportHandler) Download(c *gin.Context) {
	shop := shopFromContext(c)
	if !permissions.CanManageShop(roleFromContext(c)) {
		response.Error(c, appErrors.Clone(appErrors.ErrForbidden, "only owners and admins can export events"))
		return
	}

	result, err := h.service.Download(c.Request.Context(), shop.ID, c.Query("token"))
	if err != nil {
		response.Error(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", result.FileName))
	c.Data(http.StatusOK, result.ContentType, result.Data)
}
