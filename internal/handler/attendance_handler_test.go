package handler

import (
	"context"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/attendance-api/internal/dto"
	"github.com/noah-isme/attendance-api/internal/models"
	appErrors "github.com/noah-isme/attendance-api/pkg/errors"
)

type stubAttendanceService struct {
	recordedKind string
	recordedBy   string
	resetBy      string
	events       []models.AttendanceEvent
	summaryCalls int
	exportFormat dto.ExportFormat
	err          error
}

func (s *stubAttendanceService) RecordEvent(_ context.Context, actorID, kind string) (*models.AttendanceEvent, error) {
	if s.err != nil {
		return nil, s.err
	}
	s.recordedBy, s.recordedKind = actorID, kind
	return &models.AttendanceEvent{ID: "ev-1", Kind: models.EventKind(kind), Timestamp: time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)}, nil
}

func (s *stubAttendanceService) ListEvents(context.Context, string) ([]models.AttendanceEvent, error) {
	return s.events, s.err
}

func (s *stubAttendanceService) Reset(_ context.Context, actorID string) error {
	s.resetBy = actorID
	return s.err
}

func (s *stubAttendanceService) Status(context.Context, string) (*dto.StatusResponse, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &dto.StatusResponse{Status: models.StatusClockedIn, AvailableActions: []models.EventKind{models.EventBreakStart, models.EventClockOut}}, nil
}

func (s *stubAttendanceService) Summary(context.Context, string) (*dto.SummaryResponse, error) {
	if s.err != nil {
		return nil, s.err
	}
	s.summaryCalls++
	return &dto.SummaryResponse{Status: models.StatusClockedIn, GrossWork: "01:00:00", TotalBreak: "00:00:00", NetWork: "01:00:00"}, nil
}

func (s *stubAttendanceService) TeamStatus(_ context.Context, actorID string) ([]dto.TeamStatusItem, error) {
	return []dto.TeamStatusItem{{UserID: actorID, Username: "alice", Status: models.StatusOnBreak, IsCurrentUser: true}}, s.err
}

func (s *stubAttendanceService) Export(_ context.Context, _ string, format dto.ExportFormat) (*dto.ExportFile, error) {
	s.exportFormat = format
	if format != dto.ExportFormatCSV {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unsupported export format")
	}
	return &dto.ExportFile{Filename: "timesheet.csv", ContentType: "text/csv", Content: []byte("a,b\n")}, nil
}

func TestAttendanceHandlerRecordEvent(t *testing.T) {
	svc := &stubAttendanceService{}
	h := NewAttendanceHandler(svc, 0)

	c, w := newContext(http.MethodPost, "/attendance/events", dto.RecordEventRequest{Type: "ClockIn"}, userClaims("alice"))
	h.RecordEvent(c)

	require.Equal(t, http.StatusCreated, w.Code)
	var ev models.AttendanceEvent
	decode(t, w, &ev)
	assert.Equal(t, "ev-1", ev.ID)
	assert.Equal(t, "alice", svc.recordedBy)
	assert.Equal(t, "ClockIn", svc.recordedKind)
}

func TestAttendanceHandlerRecordEventRejectsMalformedBody(t *testing.T) {
	h := NewAttendanceHandler(&stubAttendanceService{}, 0)
	c, w := newContext(http.MethodPost, "/attendance/events", "ClockIn", userClaims("alice"))
	h.RecordEvent(c)
	requireErrorCode(t, w, http.StatusBadRequest, "VALIDATION_ERROR")
}

func TestAttendanceHandlerPropagatesServiceErrors(t *testing.T) {
	svc := &stubAttendanceService{err: appErrors.Clone(appErrors.ErrNotFound, "user not found")}
	h := NewAttendanceHandler(svc, 0)
	c, w := newContext(http.MethodGet, "/attendance/status", nil, userClaims("ghost"))
	h.Status(c)
	requireErrorCode(t, w, http.StatusNotFound, "NOT_FOUND")
}

func TestAttendanceHandlerListAndReset(t *testing.T) {
	svc := &stubAttendanceService{events: []models.AttendanceEvent{{ID: "a"}, {ID: "b"}}}
	h := NewAttendanceHandler(svc, 0)

	c, w := newContext(http.MethodGet, "/attendance/events", nil, userClaims("alice"))
	h.ListEvents(c)
	require.Equal(t, http.StatusOK, w.Code)
	var events []models.AttendanceEvent
	env := decode(t, w, &events)
	assert.Len(t, events, 2)
	assert.EqualValues(t, 2, env.Meta["count"])

	c, w = newContext(http.MethodDelete, "/attendance/events", nil, userClaims("alice"))
	h.Reset(c)
	c.Writer.WriteHeaderNow()
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "alice", svc.resetBy)
}

func TestAttendanceHandlerStatusAndTeam(t *testing.T) {
	h := NewAttendanceHandler(&stubAttendanceService{}, 0)

	c, w := newContext(http.MethodGet, "/attendance/status", nil, userClaims("alice"))
	h.Status(c)
	require.Equal(t, http.StatusOK, w.Code)
	var status dto.StatusResponse
	decode(t, w, &status)
	assert.Equal(t, models.StatusClockedIn, status.Status)

	c, w = newContext(http.MethodGet, "/attendance/team", nil, userClaims("alice"))
	h.Team(c)
	require.Equal(t, http.StatusOK, w.Code)
	var team []dto.TeamStatusItem
	decode(t, w, &team)
	require.Len(t, team, 1)
	assert.True(t, team[0].IsCurrentUser)
	assert.Contains(t, w.Body.String(), `"isCurrentUser":true`)
	assert.Contains(t, w.Body.String(), `"userId":"alice"`)
}

func TestAttendanceHandlerExport(t *testing.T) {
	svc := &stubAttendanceService{}
	h := NewAttendanceHandler(svc, 0)

	c, w := newContext(http.MethodGet, "/attendance/export", nil, userClaims("alice"))
	h.Export(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, dto.ExportFormatCSV, svc.exportFormat)
	assert.Equal(t, "text/csv", w.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="timesheet.csv"`, w.Header().Get("Content-Disposition"))
	assert.Equal(t, "a,b\n", w.Body.String())

	c, w = newContext(http.MethodGet, "/attendance/export?format=XLSX", nil, userClaims("alice"))
	h.Export(c)
	assert.Equal(t, dto.ExportFormat("xlsx"), svc.exportFormat)
	requireErrorCode(t, w, http.StatusBadRequest, "VALIDATION_ERROR")
}

func TestAttendanceHandlerSummaryStream(t *testing.T) {
	svc := &stubAttendanceService{}
	h := NewAttendanceHandler(svc, 10*time.Millisecond)

	c, w := newContext(http.MethodGet, "/attendance/summary/stream", nil, userClaims("alice"))
	ctx, cancel := context.WithTimeout(context.Background(), 55*time.Millisecond)
	defer cancel()
	c.Request = c.Request.WithContext(ctx)

	h.SummaryStream(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/event-stream", w.Header().Get("Content-Type"))
	body := w.Body.String()
	assert.GreaterOrEqual(t, strings.Count(body, "event:summary"), 2)
	assert.Contains(t, body, `"netWork":"01:00:00"`)
	assert.GreaterOrEqual(t, svc.summaryCalls, 2)
}

func TestAttendanceHandlerSummaryStreamFailsFast(t *testing.T) {
	svc := &stubAttendanceService{err: appErrors.Clone(appErrors.ErrNotFound, "user not found")}
	h := NewAttendanceHandler(svc, time.Hour)

	c, w := newContext(http.MethodGet, "/attendance/summary/stream", nil, userClaims("ghost"))
	h.SummaryStream(c)
	requireErrorCode(t, w, http.StatusNotFound, "NOT_FOUND")
}
