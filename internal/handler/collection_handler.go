package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/qrshelf/qrshelf-api/internal/models"
	"github.com/qrshelf/qrshelf-api/internal/service"
	appErrors "github.com/qrshelf/qrshelf-api/pkg/errors"
	"github.com/qrshelf/qrshelf-api/pkg/response"
)

// CollectionHandler wires HTTP endpoints to the collection service.
type CollectionHandler struct {
	service *service.CollectionService
	items   *service.ItemService
}

// NewCollectionHandler creates a new handler.
func NewCollectionHandler(svc *service.CollectionService, items *service.ItemService) *CollectionHandler {
	return &CollectionHandler{service: svc, items: items}
}

// Create godoc
// @Summary Create collection
// @Tags Collections
// @Accept json
// @Produce json
// @Param slug path string true "Shop slug"
// @Param payload body models.CreateCollectionRequest true "Collection payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /shops/{slug}/collections [post]
func (h *CollectionHandler) Create(c *gin.Context) {
	claims := claimsFromContext(c)
	shop := shopFromContext(c)

	var req models.CreateCollectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid collection payload"))
		return
	}

	collection, err := h.service.Create(c.Request.Context(), shop.ID, claims.UserID, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, collection)
}

// List godoc
// @Summary List collections
// @Description List the shop's collections visible to the caller
// @Tags Collections
// @Produce json
// @Param slug path string true "Shop slug"
// @Success 200 {object} response.Envelope
// @Router /shops/{slug}/collections [get]
func (h *CollectionHandler) List(c *gin.Context) {
	claims := claimsFromContext(c)
	shop := shopFromContext(c)

	collections, err := h.service.List(c.Request.Context(), shop.ID, claims.UserID, roleFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, collections, nil)
}

// Get godoc
// @Summary Get collection
// @Tags Collections
// @Produce json
// @Param slug path string true "Shop slug"
// @Param id path string true "Collection ID"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /shops/{slug}/collections/{id} [get]
func (h *CollectionHandler) Get(c *gin.Context) {
	claims := claimsFromContext(c)

	collection, err := h.service.Get(c.Request.Context(), c.Param("id"), claims.UserID, roleFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, collection, nil)
}

// Update godoc
// @Summary Update collection
// @Tags Collections
// @Accept json
// @Produce json
// @Param slug path string true "Shop slug"
// @Param id path string true "Collection ID"
// @Param payload body models.UpdateCollectionRequest true "Collection payload"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /shops/{slug}/collections/{id} [put]
func (h *CollectionHandler) Update(c *gin.Context) {
	claims := claimsFromContext(c)

	var req models.UpdateCollectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid collection payload"))
		return
	}

	collection, err := h.service.Update(c.Request.Context(), c.Param("id"), claims.UserID, roleFromContext(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, collection, nil)
}

// Delete godoc
// @Summary Delete collection
// @Tags Collections
// @Produce json
// @Param slug path string true "Shop slug"
// @Param id path string true "Collection ID"
// @Success 204 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /shops/{slug}/collections/{id} [delete]
func (h *CollectionHandler) Delete(c *gin.Context) {
	claims := claimsFromContext(c)

	if err := h.service.Delete(c.Request.Context(), c.Param("id"), claims.UserID, roleFromContext(c)); err != nil {
		response.Error(c, err)
		return
	}

	response.NoContent(c)
}

// ListItems godoc
// @Summary List collection items
// @Tags Collections
// @Produce json
// @Param slug path string true "Shop slug"
// @Param id path string true "Collection ID"
// @Success 200 {object} response.Envelope
// @Router /shops/{slug}/collections/{id}/items [get]
func (h *CollectionHandler) ListItems(c *gin.Context) {
	claims := claimsFromContext(c)

	// Visibility check rides on the collection load.
	if _, err := h.service.Get(c.Request.Context(), c.Param("id"), claims.UserID, roleFromContext(c)); err != nil {
		response.Error(c, err)
		return
	}

	items, err := h.items.ListByCollection(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, items, nil)
}

// ListShares godoc
// @Summary List collection shares
// @Tags Collections
// @Produce json
// @Param slug path string true "Shop slug"
// @Param id path string true "Collection ID"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /shops/{slug}/collections/{id}/shares [get]
func (h *CollectionHandler) ListShares(c *gin.Context) {
	claims := claimsFromContext(c)

	shares, err := h.service.ListShares(c.Request.Context(), c.Param("id"), claims.UserID, roleFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, shares, nil)
}

// Share godoc
// @Summary Share collection
// @Description Grant or update a user's access to a personal collection
// @Tags Collections
// @Accept json
// @Produce json
// @Param slug path string true "Shop slug"
// @Param id path string true "Collection ID"
// @Param payload body models.ShareCollectionRequest true "Share payload"
// @Success 201 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /shops/{slug}/collections/{id}/shares [post]
func (h *CollectionHandler) Share(c *gin.Context) {
	claims := claimsFromContext(c)

	var req models.ShareCollectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid share payload"))
		return
	}

	share, err := h.service.Share(c.Request.Context(), c.Param("id"), claims.UserID, roleFromContext(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, share)
}

// Unshare godoc
// @Summary Revoke collection share
// @Tags Collections
// @Produce json
// @Param slug path string true "Shop slug"
// @Param id path string true "Collection ID"
// @Param userId path string true "User ID"
// @Success 204 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /shops/{slug}/collections/{id}/shares/{userId} [delete]
func (h *CollectionHandler) Unshare(c *gin.Context) {
	claims := claimsFromContext(c)

	if err := h.service.Unshare(c.Request.Context(), c.Param("id"), claims.UserID, roleFromContext(c), c.Param("userId")); err != nil {
		response.Error(c, err)
		return
	}

	response.NoContent(c)
}
