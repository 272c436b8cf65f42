package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/qrshelf/qrshelf-api/internal/models"
	"github.com/qrshelf/qrshelf-api/internal/service"
	appErrors "github.com/qrshelf/qrshelf-api/pkg/errors"
	"github.com/qrshelf/qrshelf-api/pkg/response"
)

// ShopHandler wires HTTP endpoints to the shop service.
type ShopHandler struct {
	service *service.ShopService
}

// NewShopHandler creates a new handler.
func NewShopHandler(svc *service.ShopService) *ShopHandler {
	return &ShopHandler{service: svc}
}

// Create godoc
// @Summary Create shop
// @Description Create a shop owned by the current user
// @Tags Shops
// @Accept json
// @Produce json
// @Param payload body models.CreateShopRequest true "Shop payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /shops [post]
func (h *ShopHandler) Create(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req models.CreateShopRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid shop payload"))
		return
	}

	shop, err := h.service.Create(c.Request.Context(), claims.UserID, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, shop)
}

// List godoc
// @Summary List shops
// @Description List the shops the current user belongs to
// @Tags Shops
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /shops [get]
func (h *ShopHandler) List(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	shops, err := h.service.ListForUser(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, shops, nil)
}

// Get godoc
// @Summary Get shop
// @Description Get the shop resolved from the slug
// @Tags Shops
// @Produce json
// @Param slug path string true "Shop slug"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /shops/{slug} [get]
func (h *ShopHandler) Get(c *gin.Context) {
	response.JSON(c, http.StatusOK, shopFromContext(c), nil)
}

// Update godoc
// @Summary Update shop
// @Description Update shop branding, owner and admin only
// @Tags Shops
// @Accept json
// @Produce json
// @Param slug path string true "Shop slug"
// @Param payload body models.UpdateShopRequest true "Shop payload"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /shops/{slug} [put]
func (h *ShopHandler) Update(c *gin.Context) {
	shop := shopFromContext(c)

	var req models.UpdateShopRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid shop payload"))
		return
	}

	updated, err := h.service.Update(c.Request.Context(), shop.ID, roleFromContext(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, updated, nil)
}

// ListMembers godoc
// @Summary List team
// @Description List members and pending invites, owner and admin only
// @Tags Team
// @Produce json
// @Param slug path string true "Shop slug"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /shops/{slug}/members [get]
func (h *ShopHandler) ListMembers(c *gin.Context) {
	shop := shopFromContext(c)

	members, err := h.service.ListMembers(c.Request.Context(), shop.ID, roleFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, members, nil)
}

// InviteMember godoc
// @Summary Invite member
// @Description Invite a user to the shop by email
// @Tags Team
// @Accept json
// @Produce json
// @Param slug path string true "Shop slug"
// @Param payload body models.InviteMemberRequest true "Invite payload"
// @Success 201 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /shops/{slug}/members [post]
func (h *ShopHandler) InviteMember(c *gin.Context) {
	shop := shopFromContext(c)

	var req models.InviteMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid invite payload"))
		return
	}

	member, err := h.service.InviteMember(c.Request.Context(), shop.ID, roleFromContext(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, member)
}

// AcceptInvite godoc
// @Summary Accept invite
// @Description Bind a pending invite for the caller's email to their account
// @Tags Team
// @Produce json
// @Param slug path string true "Shop slug"
// @Success 204 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /shops/{slug}/members/accept [post]
func (h *ShopHandler) AcceptInvite(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	shop, err := h.service.GetBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		response.Error(c, err)
		return
	}

	if err := h.service.AcceptInvite(c.Request.Context(), shop.ID, claims.UserID, claims.Email); err != nil {
		response.Error(c, err)
		return
	}

	response.NoContent(c)
}

// UpdateMemberRole godoc
// @Summary Change member role
// @Tags Team
// @Accept json
// @Produce json
// @Param slug path string true "Shop slug"
// @Param memberId path string true "Member ID"
// @Param payload body models.UpdateMemberRoleRequest true "Role payload"
// @Success 204 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /shops/{slug}/members/{memberId} [put]
func (h *ShopHandler) UpdateMemberRole(c *gin.Context) {
	shop := shopFromContext(c)

	var req models.UpdateMemberRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid role payload"))
		return
	}

	if err := h.service.UpdateMemberRole(c.Request.Context(), shop.ID, c.Param("memberId"), roleFromContext(c), req); err != nil {
		response.Error(c, err)
		return
	}

	response.NoContent(c)
}

// RemoveMember godoc
// @Summary Remove member
// @Tags Team
// @Produce json
// @Param slug path string true "Shop slug"
// @Param memberId path string true "Member ID"
// @Success 204 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /shops/{slug}/members/{memberId} [delete]
func (h *ShopHandler) RemoveMember(c *gin.Context) {
	shop := shopFromContext(c)

	if err := h.service.RemoveMember(c.Request.Context(), shop.ID, c.Param("memberId"), roleFromContext(c)); err != nil {
		response.Error(c, err)
		return
	}

	response.NoContent(c)
}
