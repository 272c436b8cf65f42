package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/qrshelf/qrshelf-api/internal/models"
	"github.com/qrshelf/qrshelf-api/internal/service"
	appErrors "github.com/qrshelf/qrshelf-api/pkg/errors"
	"github.com/qrshelf/qrshelf-api/pkg/response"
)

// QrCodeHandler wires HTTP endpoints to the QR code service.
type QrCodeHandler struct {
	service *service.QrCodeService
}

// NewQrCodeHandler creates a new handler.
func NewQrCodeHandler(svc *service.QrCodeService) *QrCodeHandler {
	return &QrCodeHandler{service: svc}
}

// Create godoc
// @Summary Mint QR code
// @Description Mint a short code for a collection or an item
// @Tags QR Codes
// @Accept json
// @Produce json
// @Param slug path string true "Shop slug"
// @Param payload body models.CreateQrCodeRequest true "QR code payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /shops/{slug}/qr-codes [post]
func (h *QrCodeHandler) Create(c *gin.Context) {
	shop := shopFromContext(c)

	var req models.CreateQrCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid qr code payload"))
		return
	}

	qr, err := h.service.Create(c.Request.Context(), shop.ID, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, qr)
}

// List godoc
// @Summary List QR codes
// @Tags QR Codes
// @Produce json
// @Param slug path string true "Shop slug"
// @Success 200 {object} response.Envelope
// @Router /shops/{slug}/qr-codes [get]
func (h *QrCodeHandler) List(c *gin.Context) {
	shop := shopFromContext(c)

	codes, err := h.service.List(c.Request.Context(), shop.ID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, codes, nil)
}

// Get godoc
// @Summary Get QR code
// @Tags QR Codes
// @Produce json
// @Param slug path string true "Shop slug"
// @Param id path string true "QR code ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /shops/{slug}/qr-codes/{id} [get]
func (h *QrCodeHandler) Get(c *gin.Context) {
	shop := shopFromContext(c)

	qr, err := h.service.Get(c.Request.Context(), shop.ID, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, qr, nil)
}

// PNG godoc
// @Summary Download QR image
// @Description Render the printable PNG for a code
// @Tags QR Codes
// @Produce png
// @Param slug path string true "Shop slug"
// @Param id path string true "QR code ID"
// @Param size query int false "Image size in pixels"
// @Success 200 {file} binary
// @Failure 404 {object} response.Envelope
// @Router /shops/{slug}/qr-codes/{id}/image [get]
func (h *QrCodeHandler) PNG(c *gin.Context) {
	shop := shopFromContext(c)

	size, _ := strconv.Atoi(c.DefaultQuery("size", "512"))
	png, err := h.service.PNG(c.Request.Context(), shop.ID, c.Param("id"), size)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.Data(http.StatusOK, "image/png", png)
}

// Delete godoc
// @Summary Delete QR code
// @Tags QR Codes
// @Produce json
// @Param slug path string true "Shop slug"
// @Param id path string true "QR code ID"
// @Success 204 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /shops/{slug}/qr-codes/{id} [delete]
func (h *QrCodeHandler) Delete(c *gin.Context) {
	shop := shopFromContext(c)

	if err := h.service.Delete(c.Request.Context(), shop.ID, c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}

	response.NoContent(c)
}
