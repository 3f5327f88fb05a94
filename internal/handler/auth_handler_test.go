package handler

import (
	"context"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/attendance-api/internal/models"
	appErrors "github.com/noah-isme/attendance-api/pkg/errors"
)

type stubAuthService struct {
	err error
}

func (s *stubAuthService) Register(_ context.Context, req models.RegisterRequest) (*models.LoginResponse, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &models.LoginResponse{AccessToken: "token", User: models.UserInfo{ID: "u1", Username: req.Username, Role: models.RoleUser}}, nil
}

func (s *stubAuthService) Login(_ context.Context, req models.LoginRequest) (*models.LoginResponse, error) {
	if req.Password != "secret" {
		return nil, appErrors.Clone(appErrors.ErrInvalidCredentials, "")
	}
	return &models.LoginResponse{AccessToken: "token", User: models.UserInfo{ID: "u1", Username: req.Username}}, nil
}

func (s *stubAuthService) Me(_ context.Context, actorID string) (*models.UserInfo, error) {
	return &models.UserInfo{ID: actorID, Username: "alice", Role: models.RoleUser}, nil
}

type stubUserService struct {
	promoted string
	err      error
}

func (s *stubUserService) List(context.Context, string) ([]models.UserInfo, *models.Pagination, error) {
	if s.err != nil {
		return nil, nil, s.err
	}
	users := []models.UserInfo{{ID: "a", Username: "admin", Role: models.RoleAdmin}}
	return users, &models.Pagination{Page: 1, PageSize: 1, TotalCount: 1}, nil
}

func (s *stubUserService) Promote(_ context.Context, _ string, targetID string) (*models.UserInfo, error) {
	if s.err != nil {
		return nil, s.err
	}
	s.promoted = targetID
	return &models.UserInfo{ID: targetID, Role: models.RoleAdmin}, nil
}

func TestAuthHandlerRegister(t *testing.T) {
	h := NewAuthHandler(&stubAuthService{})
	c, w := newContext(http.MethodPost, "/auth/register", models.RegisterRequest{Username: "carol", Password: "pw"}, nil)
	h.Register(c)

	require.Equal(t, http.StatusCreated, w.Code)
	var resp models.LoginResponse
	decode(t, w, &resp)
	assert.Equal(t, "token", resp.AccessToken)
	assert.Equal(t, "carol", resp.User.Username)
	assert.NotContains(t, w.Body.String(), "password")
}

func TestAuthHandlerRegisterConflict(t *testing.T) {
	h := NewAuthHandler(&stubAuthService{err: appErrors.Clone(appErrors.ErrConflict, "username already taken")})
	c, w := newContext(http.MethodPost, "/auth/register", models.RegisterRequest{Username: "alice", Password: "pw"}, nil)
	h.Register(c)
	requireErrorCode(t, w, http.StatusConflict, "CONFLICT")
}

func TestAuthHandlerLogin(t *testing.T) {
	h := NewAuthHandler(&stubAuthService{})

	c, w := newContext(http.MethodPost, "/auth/login", models.LoginRequest{Username: "alice", Password: "secret"}, nil)
	h.Login(c)
	require.Equal(t, http.StatusOK, w.Code)

	c, w = newContext(http.MethodPost, "/auth/login", models.LoginRequest{Username: "alice", Password: "bad"}, nil)
	h.Login(c)
	requireErrorCode(t, w, http.StatusUnauthorized, "INVALID_CREDENTIALS")

	c, w = newContext(http.MethodPost, "/auth/login", "garbage", nil)
	h.Login(c)
	requireErrorCode(t, w, http.StatusUnauthorized, "INVALID_CREDENTIALS")
}

func TestAuthHandlerMe(t *testing.T) {
	h := NewAuthHandler(&stubAuthService{})
	c, w := newContext(http.MethodGet, "/auth/me", nil, userClaims("u7"))
	h.Me(c)

	require.Equal(t, http.StatusOK, w.Code)
	var me models.UserInfo
	decode(t, w, &me)
	assert.Equal(t, "u7", me.ID)
}

func TestUserHandlerListAndPromote(t *testing.T) {
	svc := &stubUserService{}
	h := NewUserHandler(svc)

	c, w := newContext(http.MethodGet, "/admin/users", nil, adminClaims("a"))
	h.List(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"total_count":1`)

	c, w = newContext(http.MethodPost, "/admin/users/u2/promote", nil, adminClaims("a"))
	c.Params = gin.Params{{Key: "id", Value: "u2"}}
	h.Promote(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "u2", svc.promoted)
}

func TestUserHandlerForbidden(t *testing.T) {
	h := NewUserHandler(&stubUserService{err: appErrors.Clone(appErrors.ErrForbidden, "administrator role required")})
	c, w := newContext(http.MethodGet, "/admin/users", nil, userClaims("u"))
	h.List(c)
	requireErrorCode(t, w, http.StatusForbidden, "FORBIDDEN")
}
