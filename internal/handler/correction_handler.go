package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/attendance-api/internal/dto"
	"github.com/noah-isme/attendance-api/internal/models"
	appErrors "github.com/noah-isme/attendance-api/pkg/errors"
	"github.com/noah-isme/attendance-api/pkg/response"
)

type correctionService interface {
	Submit(ctx context.Context, actorID string, req dto.CreateCorrectionRequest) (*models.CorrectionRequest, error)
	Approve(ctx context.Context, actorID, requestID string) (*dto.ReviewResult, error)
	Deny(ctx context.Context, actorID, requestID string) (*dto.ReviewResult, error)
	ListMine(ctx context.Context, actorID string) ([]models.CorrectionRequest, error)
	ListAll(ctx context.Context, actorID string, query dto.CorrectionQuery) ([]models.CorrectionRequest, error)
}

// CorrectionHandler exposes the correction request workflow.
type CorrectionHandler struct {
	service correctionService
}

// NewCorrectionHandler constructs the handler.
func NewCorrectionHandler(service correctionService) *CorrectionHandler {
	return &CorrectionHandler{service: service}
}

// Create godoc
// @Summary Request a time correction
// @Description Requests that one of my events be moved to HH:MM on the same date.
// @Tags Corrections
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body dto.CreateCorrectionRequest true "Correction payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /corrections [post]
func (h *CorrectionHandler) Create(c *gin.Context) {
	if h.service == nil {
		serviceMissing(c, "correction")
		return
	}
	userID, ok := actorID(c)
	if !ok {
		return
	}
	var req dto.CreateCorrectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid correction payload"))
		return
	}
	created, err := h.service.Submit(c.Request.Context(), userID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, created)
}

// ListMine godoc
// @Summary List my correction requests
// @Tags Corrections
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /corrections [get]
func (h *CorrectionHandler) ListMine(c *gin.Context) {
	if h.service == nil {
		serviceMissing(c, "correction")
		return
	}
	userID, ok := actorID(c)
	if !ok {
		return
	}
	requests, err := h.service.ListMine(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, requests, nil)
}

// ListAll godoc
// @Summary List correction requests
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Param status query string false "Comma separated statuses (Pending, Approved, Denied)"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /admin/corrections [get]
func (h *CorrectionHandler) ListAll(c *gin.Context) {
	if h.service == nil {
		serviceMissing(c, "correction")
		return
	}
	userID, ok := actorID(c)
	if !ok {
		return
	}
	var query dto.CorrectionQuery
	if raw := c.Query("status"); raw != "" {
		for _, part := range strings.Split(raw, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			status, ok := models.ParseCorrectionStatus(part)
			if !ok {
				response.Error(c, appErrors.Clone(appErrors.ErrValidation, "unknown status "+part))
				return
			}
			query.Status = append(query.Status, status)
		}
	}
	requests, err := h.service.ListAll(c.Request.Context(), userID, query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, requests, nil, map[string]interface{}{"count": len(requests)})
}

// Approve godoc
// @Summary Approve a correction request
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Param id path string true "Request ID"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /admin/corrections/{id}/approve [post]
func (h *CorrectionHandler) Approve(c *gin.Context) {
	h.review(c, true)
}

// Deny godoc
// @Summary Deny a correction request
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Param id path string true "Request ID"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /admin/corrections/{id}/deny [post]
func (h *CorrectionHandler) Deny(c *gin.Context) {
	h.review(c, false)
}

func (h *CorrectionHandler) review(c *gin.Context, approve bool) {
	if h.service == nil {
		serviceMissing(c, "correction")
		return
	}
	userID, ok := actorID(c)
	if !ok {
		return
	}
	var (
		result *dto.ReviewResult
		err    error
	)
	if approve {
		result, err = h.service.Approve(c.Request.Context(), userID, c.Param("id"))
	} else {
		result, err = h.service.Deny(c.Request.Context(), userID, c.Param("id"))
	}
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}
