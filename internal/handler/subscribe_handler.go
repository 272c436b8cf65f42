package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/qrshelf/qrshelf-api/internal/models"
	"github.com/qrshelf/qrshelf-api/internal/service"
	appErrors "github.com/qrshelf/qrshelf-api/pkg/errors"
	"github.com/qrshelf/qrshelf-api/pkg/response"
)

// SubscribeHandler serves the public subscription endpoint.
type SubscribeHandler struct {
	service *service.SubscriberService
}

// NewSubscribeHandler creates a new handler.
func NewSubscribeHandler(svc *service.SubscriberService) *SubscribeHandler {
	return &SubscribeHandler{service: svc}
}

// Subscribe godoc
// @Summary Subscribe to a collection
// @Description Add an email to a collection's update list
// @Tags Public
// @Accept json
// @Produce json
// @Param payload body models.SubscribeRequest true "Subscribe payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /subscribe [post]
func (h *SubscribeHandler) Subscribe(c *gin.Context) {
	var req models.SubscribeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid subscribe payload"))
		return
	}

	if err := h.service.Subscribe(c.Request.Context(), req); err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusCreated, gin.H{"subscribed": true}, nil)
}
