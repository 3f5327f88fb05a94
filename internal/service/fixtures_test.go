package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/attendance-api/internal/models"
	"github.com/noah-isme/attendance-api/internal/repository"
	appErrors "github.com/noah-isme/attendance-api/pkg/errors"
)

const (
	adminID = "admin-1"
	aliceID = "user-alice"
	bobID   = "user-bob"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock(t time.Time) *fakeClock { return &fakeClock{now: t} }

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Set(t time.Time) {
	c.mu.Lock()
	c.now = t
	c.mu.Unlock()
}

func seededStore(t *testing.T) *repository.StateStore {
	t.Helper()
	return repository.NewStateStore(&models.Document{
		Users: []models.User{
			{ID: adminID, Username: "admin", Password: "admin", Role: models.RoleAdmin},
			{ID: aliceID, Username: "alice", Password: "alice-pw", Role: models.RoleUser},
			{ID: bobID, Username: "bob", Password: "bob-pw", Role: models.RoleUser},
		},
	})
}

func requireCode(t *testing.T, err error, want *appErrors.Error) {
	t.Helper()
	require.Error(t, err)
	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr), "expected typed error, got %v", err)
	require.Equal(t, want.Code, appErr.Code)
	require.Equal(t, want.Status, appErr.Status)
}

func record(t *testing.T, svc *AttendanceService, clock *fakeClock, userID string, kind models.EventKind, ts time.Time) models.AttendanceEvent {
	t.Helper()
	clock.Set(ts)
	ev, err := svc.RecordEvent(context.Background(), userID, string(kind))
	require.NoError(t, err)
	return *ev
}

type recordingMetrics struct {
	mu      sync.Mutex
	events  []models.EventKind
	reviews []string
	saves   []bool
}

func (m *recordingMetrics) RecordAttendanceEvent(kind models.EventKind) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, kind)
}

func (m *recordingMetrics) RecordCorrectionReview(decision models.CorrectionStatus, applied bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	label := string(decision)
	if applied {
		label += "+applied"
	}
	m.reviews = append(m.reviews, label)
}

func (m *recordingMetrics) ObserveDocumentSave(success bool, _ time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saves = append(m.saves, success)
}
