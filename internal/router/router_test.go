package router

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/attendance-api/internal/handler"
	"github.com/noah-isme/attendance-api/internal/models"
	"github.com/noah-isme/attendance-api/internal/repository"
	"github.com/noah-isme/attendance-api/internal/service"
	"github.com/noah-isme/attendance-api/pkg/config"
)

type testServer struct {
	engine *gin.Engine
	store  *repository.StateStore
}

type envelope struct {
	Data  json.RawMessage `json:"data"`
	Error *struct {
		Code string `json:"code"`
	} `json:"error"`
}

func newTestServer(t *testing.T, mutate func(cfg *config.Config)) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{
		Env:       config.EnvDevelopment,
		APIPrefix: "/api/v1",
		JWT:       config.JWTConfig{Secret: "router-test", Expiration: time.Hour, Issuer: "attendance-api"},
		Metrics:   config.MetricsConfig{Enabled: true},
		Exports:   config.ExportsConfig{Enabled: true},
	}
	if mutate != nil {
		mutate(cfg)
	}

	store := repository.NewStateStore(&models.Document{
		Users: []models.User{{ID: "admin-1", Username: "admin", Password: "admin", Role: models.RoleAdmin}},
	})
	validate := validator.New()
	metrics := service.NewMetricsService()
	clock := service.SystemClock

	authSvc := service.NewAuthService(store, validate, nil, clock, service.AuthConfig{
		AccessTokenSecret: cfg.JWT.Secret,
		AccessTokenExpiry: cfg.JWT.Expiration,
		Issuer:            cfg.JWT.Issuer,
	})
	attendanceSvc := service.NewAttendanceService(store, clock, metrics, nil, service.AttendanceConfig{Location: time.UTC})
	correctionSvc := service.NewCorrectionService(store, validate, metrics, nil, time.UTC)
	userSvc := service.NewUserService(store, nil)

	engine := Setup(cfg, Handlers{
		Auth:       handler.NewAuthHandler(authSvc),
		Attendance: handler.NewAttendanceHandler(attendanceSvc, 10*time.Millisecond),
		Correction: handler.NewCorrectionHandler(correctionSvc),
		User:       handler.NewUserHandler(userSvc),
		Metrics:    handler.NewMetricsHandler(metrics, func() bool { return true }),
	}, authSvc, metrics, nil)

	return &testServer{engine: engine, store: store}
}

func (s *testServer) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		require.NoError(t, err)
	}
	req := httptest.NewRequest(method, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)
	return w
}

func (s *testServer) token(t *testing.T, path, username, password string, wantStatus int) string {
	t.Helper()
	w := s.do(t, http.MethodPost, path, "", map[string]string{"username": username, "password": password})
	require.Equal(t, wantStatus, w.Code, w.Body.String())
	var login models.LoginResponse
	unwrap(t, w, &login)
	require.NotEmpty(t, login.AccessToken)
	return login.AccessToken
}

func unwrap(t *testing.T, w *httptest.ResponseRecorder, data interface{}) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	if data != nil {
		require.NoError(t, json.Unmarshal(env.Data, data))
	}
	return env
}

func TestRouterAttendanceAndCorrectionFlow(t *testing.T) {
	srv := newTestServer(t, nil)
	adminToken := srv.token(t, "/api/v1/auth/login", "admin", "admin", http.StatusOK)
	aliceToken := srv.token(t, "/api/v1/auth/register", "alice", "secret", http.StatusCreated)

	w := srv.do(t, http.MethodPost, "/api/v1/attendance/events", aliceToken, map[string]string{"type": "ClockIn"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var event models.AttendanceEvent
	unwrap(t, w, &event)
	assert.Equal(t, models.EventClockIn, event.Kind)

	w = srv.do(t, http.MethodGet, "/api/v1/attendance/status", aliceToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var status struct {
		Status models.AttendanceStatus `json:"status"`
	}
	unwrap(t, w, &status)
	assert.Equal(t, models.StatusClockedIn, status.Status)

	w = srv.do(t, http.MethodPost, "/api/v1/corrections", aliceToken, map[string]string{
		"recordId":      event.ID,
		"requestedTime": "08:30",
		"reason":        "forgot to clock in",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var request models.CorrectionRequest
	unwrap(t, w, &request)
	assert.Equal(t, models.CorrectionPending, request.Status)

	w = srv.do(t, http.MethodPost, "/api/v1/admin/corrections/"+request.ID+"/approve", aliceToken, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = srv.do(t, http.MethodPost, "/api/v1/admin/corrections/"+request.ID+"/approve", adminToken, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var result struct {
		Request models.CorrectionRequest `json:"request"`
		Applied bool                     `json:"applied"`
	}
	unwrap(t, w, &result)
	assert.True(t, result.Applied)
	assert.Equal(t, models.CorrectionApproved, result.Request.Status)

	events := srv.store.Snapshot().Events(result.Request.UserID)
	require.Len(t, events, 1)
	assert.Equal(t, 8, events[0].Timestamp.Hour())
	assert.Equal(t, 30, events[0].Timestamp.Minute())

	w = srv.do(t, http.MethodPost, "/api/v1/admin/corrections/"+request.ID+"/deny", adminToken, nil)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestRouterRejectsMissingToken(t *testing.T) {
	srv := newTestServer(t, nil)

	w := srv.do(t, http.MethodGet, "/api/v1/attendance/status", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = srv.do(t, http.MethodGet, "/api/v1/attendance/status", "not-a-token", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRouterAdminRoutesRequireAdminRole(t *testing.T) {
	srv := newTestServer(t, nil)
	aliceToken := srv.token(t, "/api/v1/auth/register", "alice", "secret", http.StatusCreated)
	adminToken := srv.token(t, "/api/v1/auth/login", "admin", "admin", http.StatusOK)

	w := srv.do(t, http.MethodGet, "/api/v1/admin/users", aliceToken, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = srv.do(t, http.MethodGet, "/api/v1/admin/users", adminToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var users []models.UserInfo
	unwrap(t, w, &users)
	require.Len(t, users, 2)
	assert.NotContains(t, w.Body.String(), "secret")
}

func TestRouterExportAndMetrics(t *testing.T) {
	srv := newTestServer(t, nil)
	token := srv.token(t, "/api/v1/auth/register", "carol", "pw", http.StatusCreated)
	srv.do(t, http.MethodPost, "/api/v1/attendance/events", token, map[string]string{"type": "ClockIn"})

	w := srv.do(t, http.MethodGet, "/api/v1/attendance/export?format=csv", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), "timesheet-carol-")
	assert.Contains(t, w.Body.String(), "ClockIn")

	w = srv.do(t, http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.True(t, strings.Contains(body, "http_requests_total"))
	assert.True(t, strings.Contains(body, `attendance_events_recorded_total{type="ClockIn"} 1`))

	w = srv.do(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRouterFeatureToggles(t *testing.T) {
	srv := newTestServer(t, func(cfg *config.Config) {
		cfg.Metrics.Enabled = false
		cfg.Exports.Enabled = false
	})
	token := srv.token(t, "/api/v1/auth/register", "dave", "pw", http.StatusCreated)

	w := srv.do(t, http.MethodGet, "/api/v1/attendance/export", token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = srv.do(t, http.MethodGet, "/metrics", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRouterPromotionAppliesToExistingToken(t *testing.T) {
	srv := newTestServer(t, nil)
	adminToken := srv.token(t, "/api/v1/auth/login", "admin", "admin", http.StatusOK)

	w := srv.do(t, http.MethodPost, "/api/v1/auth/register", "", map[string]string{"username": "bob", "password": "pw"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var bob models.LoginResponse
	unwrap(t, w, &bob)

	w = srv.do(t, http.MethodGet, "/api/v1/admin/users", bob.AccessToken, nil)
	require.Equal(t, http.StatusForbidden, w.Code)

	w = srv.do(t, http.MethodPost, "/api/v1/admin/users/"+bob.User.ID+"/promote", adminToken, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = srv.do(t, http.MethodGet, "/api/v1/admin/users", bob.AccessToken, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var users []models.UserInfo
	unwrap(t, w, &users)
	assert.Len(t, users, 2)
}
