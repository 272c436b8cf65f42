package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/qrshelf/qrshelf-api/internal/models"
	"github.com/qrshelf/qrshelf-api/internal/service"
	appErrors "github.com/qrshelf/qrshelf-api/pkg/errors"
	"github.com/qrshelf/qrshelf-api/pkg/response"
)

// ItemHandler wires HTTP endpoints to the item service.
type ItemHandler struct {
	service *service.ItemService
}

// NewItemHandler creates a new handler.
func NewItemHandler(svc *service.ItemService) *ItemHandler {
	return &ItemHandler{service: svc}
}

// Create godoc
// @Summary Create item
// @Description Add an item, standalone or inside a collection
// @Tags Items
// @Accept json
// @Produce json
// @Param slug path string true "Shop slug"
// @Param payload body models.CreateItemRequest true "Item payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /shops/{slug}/items [post]
func (h *ItemHandler) Create(c *gin.Context) {
	claims := claimsFromContext(c)
	shop := shopFromContext(c)

	var req models.CreateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid item payload"))
		return
	}

	item, err := h.service.Create(c.Request.Context(), shop.ID, claims.UserID, roleFromContext(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, item)
}

// ListStandalone godoc
// @Summary List standalone items
// @Tags Items
// @Produce json
// @Param slug path string true "Shop slug"
// @Success 200 {object} response.Envelope
// @Router /shops/{slug}/items [get]
func (h *ItemHandler) ListStandalone(c *gin.Context) {
	shop := shopFromContext(c)

	items, err := h.service.ListStandalone(c.Request.Context(), shop.ID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, items, nil)
}

// Get godoc
// @Summary Get item
// @Tags Items
// @Produce json
// @Param slug path string true "Shop slug"
// @Param id path string true "Item ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /shops/{slug}/items/{id} [get]
func (h *ItemHandler) Get(c *gin.Context) {
	shop := shopFromContext(c)

	item, err := h.service.Get(c.Request.Context(), shop.ID, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, item, nil)
}

// Update godoc
// @Summary Update item
// @Tags Items
// @Accept json
// @Produce json
// @Param slug path string true "Shop slug"
// @Param id path string true "Item ID"
// @Param payload body models.UpdateItemRequest true "Item payload"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /shops/{slug}/items/{id} [put]
func (h *ItemHandler) Update(c *gin.Context) {
	claims := claimsFromContext(c)
	shop := shopFromContext(c)

	var req models.UpdateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid item payload"))
		return
	}

	item, err := h.service.Update(c.Request.Context(), shop.ID, c.Param("id"), claims.UserID, roleFromContext(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, item, nil)
}

// Delete godoc
// @Summary Delete item
// @Tags Items
// @Produce json
// @Param slug path string true "Shop slug"
// @Param id path string true "Item ID"
// @Success 204 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /shops/{slug}/items/{id} [delete]
func (h *ItemHandler) Delete(c *gin.Context) {
	claims := claimsFromContext(c)
	shop := shopFromContext(c)

	if err := h.service.Delete(c.Request.Context(), shop.ID, c.Param("id"), claims.UserID, roleFromContext(c)); err != nil {
		response.Error(c, err)
		return
	}

	response.NoContent(c)
}
