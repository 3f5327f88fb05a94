package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/attendance-api/internal/dto"
	"github.com/noah-isme/attendance-api/internal/models"
	appErrors "github.com/noah-isme/attendance-api/pkg/errors"
	"github.com/noah-isme/attendance-api/pkg/response"
)

type attendanceService interface {
	RecordEvent(ctx context.Context, actorID, kind string) (*models.AttendanceEvent, error)
	ListEvents(ctx context.Context, actorID string) ([]models.AttendanceEvent, error)
	Reset(ctx context.Context, actorID string) error
	Status(ctx context.Context, actorID string) (*dto.StatusResponse, error)
	Summary(ctx context.Context, actorID string) (*dto.SummaryResponse, error)
	TeamStatus(ctx context.Context, actorID string) ([]dto.TeamStatusItem, error)
	Export(ctx context.Context, actorID string, format dto.ExportFormat) (*dto.ExportFile, error)
}

// AttendanceHandler exposes the caller's attendance log, status and work time.
type AttendanceHandler struct {
	service attendanceService
	tick    time.Duration
}

// NewAttendanceHandler constructs the handler. tick is the summary stream cadence.
func NewAttendanceHandler(service attendanceService, tick time.Duration) *AttendanceHandler {
	if tick <= 0 {
		tick = time.Second
	}
	return &AttendanceHandler{service: service, tick: tick}
}

// ListEvents godoc
// @Summary List my attendance events
// @Tags Attendance
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /attendance/events [get]
func (h *AttendanceHandler) ListEvents(c *gin.Context) {
	if h.service == nil {
		serviceMissing(c, "attendance")
		return
	}
	userID, ok := actorID(c)
	if !ok {
		return
	}
	events, err := h.service.ListEvents(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, events, nil, map[string]interface{}{"count": len(events)})
}

// RecordEvent godoc
// @Summary Record a clock event
// @Description Appends ClockIn, ClockOut, BreakStart or BreakEnd stamped with the server time.
// @Tags Attendance
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body dto.RecordEventRequest true "Event type"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /attendance/events [post]
func (h *AttendanceHandler) RecordEvent(c *gin.Context) {
	if h.service == nil {
		serviceMissing(c, "attendance")
		return
	}
	userID, ok := actorID(c)
	if !ok {
		return
	}
	var req dto.RecordEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid event payload"))
		return
	}
	event, err := h.service.RecordEvent(c.Request.Context(), userID, req.Type)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, event)
}

// Reset godoc
// @Summary Clear my attendance log
// @Tags Attendance
// @Security BearerAuth
// @Success 204
// @Router /attendance/events [delete]
func (h *AttendanceHandler) Reset(c *gin.Context) {
	if h.service == nil {
		serviceMissing(c, "attendance")
		return
	}
	userID, ok := actorID(c)
	if !ok {
		return
	}
	if err := h.service.Reset(c.Request.Context(), userID); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Status godoc
// @Summary Current attendance status
// @Tags Attendance
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /attendance/status [get]
func (h *AttendanceHandler) Status(c *gin.Context) {
	if h.service == nil {
		serviceMissing(c, "attendance")
		return
	}
	userID, ok := actorID(c)
	if !ok {
		return
	}
	status, err := h.service.Status(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, status, nil)
}

// Summary godoc
// @Summary Work time summary
// @Tags Attendance
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /attendance/summary [get]
func (h *AttendanceHandler) Summary(c *gin.Context) {
	if h.service == nil {
		serviceMissing(c, "attendance")
		return
	}
	userID, ok := actorID(c)
	if !ok {
		return
	}
	summary, err := h.service.Summary(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, summary, nil)
}

// SummaryStream godoc
// @Summary Live work time summary
// @Description Server-Sent Events stream emitting a "summary" event on every tick until the client disconnects.
// @Tags Attendance
// @Produce text/event-stream
// @Security BearerAuth
// @Success 200 {string} string "event stream"
// @Router /attendance/summary/stream [get]
func (h *AttendanceHandler) SummaryStream(c *gin.Context) {
	if h.service == nil {
		serviceMissing(c, "attendance")
		return
	}
	userID, ok := actorID(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()

	// Fail before committing to a stream so errors keep their status code.
	first, err := h.service.Summary(ctx, userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")
	c.Status(http.StatusOK)

	emit := func(summary *dto.SummaryResponse) {
		c.SSEvent("summary", summary)
		c.Writer.Flush()
	}
	emit(first)

	ticker := time.NewTicker(h.tick)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			summary, err := h.service.Summary(ctx, userID)
			if err != nil {
				c.SSEvent("error", appErrors.FromError(err))
				c.Writer.Flush()
				return
			}
			emit(summary)
		}
	}
}

// Team godoc
// @Summary Team attendance overview
// @Tags Attendance
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /attendance/team [get]
func (h *AttendanceHandler) Team(c *gin.Context) {
	if h.service == nil {
		serviceMissing(c, "attendance")
		return
	}
	userID, ok := actorID(c)
	if !ok {
		return
	}
	items, err := h.service.TeamStatus(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, nil)
}

// Export godoc
// @Summary Download my timesheet
// @Tags Attendance
// @Produce text/csv
// @Produce application/pdf
// @Security BearerAuth
// @Param format query string false "csv or pdf" Enums(csv, pdf)
// @Success 200 {file} file
// @Router /attendance/export [get]
func (h *AttendanceHandler) Export(c *gin.Context) {
	if h.service == nil {
		serviceMissing(c, "attendance")
		return
	}
	userID, ok := actorID(c)
	if !ok {
		return
	}
	format := dto.ExportFormat(strings.ToLower(strings.TrimSpace(c.DefaultQuery("format", string(dto.ExportFormatCSV)))))
	file, err := h.service.Export(c.Request.Context(), userID, format)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, file.Filename, file.ContentType, file.Content)
}
