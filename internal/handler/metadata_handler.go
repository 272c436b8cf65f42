package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/qrshelf/qrshelf-api/internal/models"
	"github.com/qrshelf/qrshelf-api/internal/service"
	appErrors "github.com/qrshelf/qrshelf-api/pkg/errors"
	"github.com/qrshelf/qrshelf-api/pkg/response"
)

// MetadataHandler serves the product-page metadata fetcher.
type MetadataHandler struct {
	service *service.MetadataService
}

// NewMetadataHandler creates a new handler.
func NewMetadataHandler(svc *service.MetadataService) *MetadataHandler {
	return &MetadataHandler{service: svc}
}

// Fetch godoc
// @Summary Fetch link metadata
// @Description Scrape best-effort Open Graph metadata from a product URL
// @Tags Metadata
// @Accept json
// @Produce json
// @Param payload body models.FetchMetadataRequest true "Metadata payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /metadata [post]
func (h *MetadataHandler) Fetch(c *gin.Context) {
	var req models.FetchMetadataRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid metadata payload"))
		return
	}

	meta, err := h.service.Fetch(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, meta, nil)
}
