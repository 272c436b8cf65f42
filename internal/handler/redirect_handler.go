package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/qrshelf/qrshelf-api/internal/service"
	"github.com/qrshelf/qrshelf-api/pkg/response"
)

// RedirectHandler serves the public scan entrypoint.
type RedirectHandler struct {
	service *service.TrackingService
}

// NewRedirectHandler creates a new handler.
func NewRedirectHandler(svc *service.TrackingService) *RedirectHandler {
	return &RedirectHandler{service: svc}
}

// Redirect godoc
// @Summary Resolve a scanned code
// @Description Log the scan and redirect the visitor to the code's landing page
// @Tags Public
// @Param code path string true "Short code"
// @Success 302
// @Failure 404 {object} response.Envelope
// @Failure 429 {object} response.Envelope
// @Router /r/{code} [get]
func (h *RedirectHandler) Redirect(c *gin.Context) {
	dest, err := h.service.Redirect(c.Request.Context(), c.Param("code"), service.ScanContext{
		IP:        c.ClientIP(),
		UserAgent: c.GetHeader("User-Agent"),
		Referrer:  c.GetHeader("Referer"),
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	c.Redirect(http.StatusFound, dest)
}
