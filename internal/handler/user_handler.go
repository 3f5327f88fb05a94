package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/attendance-api/internal/models"
	"github.com/noah-isme/attendance-api/pkg/response"
)

type userService interface {
	List(ctx context.Context, actorID string) ([]models.UserInfo, *models.Pagination, error)
	Promote(ctx context.Context, actorID, targetID string) (*models.UserInfo, error)
}

// UserHandler exposes administrator account management.
type UserHandler struct {
	service userService
}

// NewUserHandler constructs the handler.
func NewUserHandler(service userService) *UserHandler {
	return &UserHandler{service: service}
}

// List godoc
// @Summary List accounts
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /admin/users [get]
func (h *UserHandler) List(c *gin.Context) {
	if h.service == nil {
		serviceMissing(c, "user")
		return
	}
	userID, ok := actorID(c)
	if !ok {
		return
	}
	users, pagination, err := h.service.List(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, users, pagination)
}

// Promote godoc
// @Summary Promote an account to administrator
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Param id path string true "User ID"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /admin/users/{id}/promote [post]
func (h *UserHandler) Promote(c *gin.Context) {
	if h.service == nil {
		serviceMissing(c, "user")
		return
	}
	userID, ok := actorID(c)
	if !ok {
		return
	}
	user, err := h.service.Promote(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, user, nil)
}
