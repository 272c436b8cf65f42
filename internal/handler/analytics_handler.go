package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/qrshelf/qrshelf-api/internal/permissions"
	"github.com/qrshelf/qrshelf-api/internal/service"
	appErrors "github.com/qrshelf/qrshelf-api/pkg/errors"
	"github.com/qrshelf/qrshelf-api/pkg/response"
)

// AnalyticsHandler wires HTTP endpoints to the analytics service.
type AnalyticsHandler struct {
	service *service.AnalyticsService
}

// NewAnalyticsHandler creates a new handler.
func NewAnalyticsHandler(svc *service.AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{service: svc}
}

// ShopAnalytics godoc
// @Summary Shop analytics
// @Description Aggregate scan and click reporting for a shop
// @Tags Analytics
// @Produce json
// @Param slug path string true "Shop slug"
// @Param days query int false "Trailing window in days"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /shops/{slug}/analytics [get]
func (h *AnalyticsHandler) ShopAnalytics(c *gin.Context) {
	shop := shopFromContext(c)
	if !permissions.CanManageShop(roleFromContext(c)) {
		response.Error(c, appErrors.Clone(appErrors.ErrForbidden, "only owners and admins can view analytics"))
		return
	}

	days, _ := strconv.Atoi(c.DefaultQuery("days", "30"))
	analytics, err := h.service.ShopAnalytics(c.Request.Context(), shop.ID, days)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, analytics, nil)
}
