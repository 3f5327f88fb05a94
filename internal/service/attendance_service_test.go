package service

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/attendance-api/internal/dto"
	"github.com/noah-isme/attendance-api/internal/models"
	appErrors "github.com/noah-isme/attendance-api/pkg/errors"
)

func newAttendanceFixture(t *testing.T) (*AttendanceService, *fakeClock, *recordingMetrics) {
	clock := newFakeClock(at(8, 0))
	metrics := &recordingMetrics{}
	svc := NewAttendanceService(seededStore(t), clock, metrics, nil, AttendanceConfig{Location: time.UTC})
	return svc, clock, metrics
}

func TestAttendanceServiceRecordEventAppendsWithClockTime(t *testing.T) {
	svc, clock, metrics := newAttendanceFixture(t)

	first := record(t, svc, clock, aliceID, models.EventClockIn, at(9, 0))
	second := record(t, svc, clock, aliceID, models.EventBreakStart, at(12, 0))

	events, err := svc.ListEvents(context.Background(), aliceID)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, first.ID, events[0].ID)
	assert.Equal(t, second.ID, events[1].ID)
	assert.Equal(t, at(9, 0), events[0].Timestamp)
	assert.NotEqual(t, first.ID, second.ID)
	assert.Equal(t, []models.EventKind{models.EventClockIn, models.EventBreakStart}, metrics.events)

	others, err := svc.ListEvents(context.Background(), bobID)
	require.NoError(t, err)
	assert.Empty(t, others)
}

func TestAttendanceServiceRecordEventAcceptsAnyOrder(t *testing.T) {
	svc, clock, _ := newAttendanceFixture(t)

	record(t, svc, clock, aliceID, models.EventClockOut, at(9, 0))
	record(t, svc, clock, aliceID, models.EventClockOut, at(9, 5))

	status, err := svc.Status(context.Background(), aliceID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusClockedOut, status.Status)
}

func TestAttendanceServiceRecordEventValidatesKind(t *testing.T) {
	svc, _, _ := newAttendanceFixture(t)

	_, err := svc.RecordEvent(context.Background(), aliceID, "Lunch")
	requireCode(t, err, appErrors.ErrValidation)

	ev, err := svc.RecordEvent(context.Background(), aliceID, "出勤")
	require.NoError(t, err)
	assert.Equal(t, models.EventClockIn, ev.Kind)
}

func TestAttendanceServiceRecordEventUnknownUser(t *testing.T) {
	svc, _, _ := newAttendanceFixture(t)
	_, err := svc.RecordEvent(context.Background(), "ghost", string(models.EventClockIn))
	requireCode(t, err, appErrors.ErrNotFound)
}

func TestAttendanceServiceResetClearsOnlyActorLog(t *testing.T) {
	svc, clock, _ := newAttendanceFixture(t)
	record(t, svc, clock, aliceID, models.EventClockIn, at(9, 0))
	record(t, svc, clock, bobID, models.EventClockIn, at(9, 0))

	require.NoError(t, svc.Reset(context.Background(), aliceID))

	alice, _ := svc.ListEvents(context.Background(), aliceID)
	bob, _ := svc.ListEvents(context.Background(), bobID)
	assert.Empty(t, alice)
	assert.Len(t, bob, 1)

	status, err := svc.Status(context.Background(), aliceID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusNotClockedIn, status.Status)
	assert.Nil(t, status.LastEvent)
}

func TestAttendanceServiceStatusOffersActions(t *testing.T) {
	svc, clock, _ := newAttendanceFixture(t)
	ev := record(t, svc, clock, aliceID, models.EventClockIn, at(9, 0))

	status, err := svc.Status(context.Background(), aliceID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusClockedIn, status.Status)
	assert.Equal(t, []models.EventKind{models.EventBreakStart, models.EventClockOut}, status.AvailableActions)
	require.NotNil(t, status.LastEvent)
	assert.Equal(t, ev.ID, status.LastEvent.ID)
}

func TestAttendanceServiceSummaryTracksNow(t *testing.T) {
	svc, clock, _ := newAttendanceFixture(t)
	record(t, svc, clock, aliceID, models.EventClockIn, at(9, 0))
	record(t, svc, clock, aliceID, models.EventBreakStart, at(12, 0))

	clock.Set(at(12, 20))
	sum, err := svc.Summary(context.Background(), aliceID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusOnBreak, sum.Status)
	assert.Equal(t, "00:20:00", sum.TotalBreak)
	assert.Equal(t, "03:20:00", sum.GrossWork)
	assert.Equal(t, "03:00:00", sum.NetWork)
	assert.Equal(t, int64(3*3600), sum.NetWorkSeconds)

	clock.Set(at(12, 45))
	later, err := svc.Summary(context.Background(), aliceID)
	require.NoError(t, err)
	assert.Equal(t, "00:45:00", later.TotalBreak)
	assert.Equal(t, at(12, 45), later.ComputedAt)
}

func TestAttendanceServiceTeamStatus(t *testing.T) {
	svc, clock, _ := newAttendanceFixture(t)
	record(t, svc, clock, bobID, models.EventClockIn, at(9, 0))

	items, err := svc.TeamStatus(context.Background(), aliceID)
	require.NoError(t, err)
	require.Len(t, items, 3)
	assert.Equal(t, "admin", items[0].Username)
	assert.Equal(t, models.StatusNotClockedIn, items[1].Status)
	assert.True(t, items[1].IsCurrentUser)
	assert.False(t, items[2].IsCurrentUser)
	assert.Equal(t, models.StatusClockedIn, items[2].Status)
}

func TestAttendanceServiceExport(t *testing.T) {
	svc, clock, _ := newAttendanceFixture(t)
	record(t, svc, clock, aliceID, models.EventClockIn, at(9, 0))
	record(t, svc, clock, aliceID, models.EventClockOut, at(17, 30))

	file, err := svc.Export(context.Background(), aliceID, dto.ExportFormatCSV)
	require.NoError(t, err)
	assert.Equal(t, "timesheet-alice-20240501.csv", file.Filename)
	assert.Equal(t, "text/csv", file.ContentType)
	body := string(file.Content)
	assert.True(t, strings.HasPrefix(body, "#,Event,Timestamp\n1,ClockIn,2024-05-01 09:00:00\n2,ClockOut,2024-05-01 17:30:00\n"))
	assert.Contains(t, body, "Net work,08:30:00")

	pdf, err := svc.Export(context.Background(), aliceID, dto.ExportFormatPDF)
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", pdf.ContentType)
	assert.True(t, bytes.HasPrefix(pdf.Content, []byte("%PDF-")))

	_, err = svc.Export(context.Background(), aliceID, dto.ExportFormat("xlsx"))
	requireCode(t, err, appErrors.ErrValidation)
}
