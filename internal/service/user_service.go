package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/noah-isme/attendance-api/internal/models"
	appErrors "github.com/noah-isme/attendance-api/pkg/errors"
)

// UserService handles administrator account management.
type UserService struct {
	store  stateStore
	logger *zap.Logger
}

// NewUserService creates an instance of UserService.
func NewUserService(store stateStore, logger *zap.Logger) *UserService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UserService{store: store, logger: logger}
}

// List returns every account in registration order. Admin only.
func (s *UserService) List(ctx context.Context, actorID string) ([]models.UserInfo, *models.Pagination, error) {
	doc := s.store.Snapshot()
	if _, err := requireAdmin(doc, actorID); err != nil {
		return nil, nil, err
	}
	users := make([]models.UserInfo, 0, len(doc.Users))
	for _, u := range doc.Users {
		users = append(users, models.NewUserInfo(u))
	}
	return users, &models.Pagination{Page: 1, PageSize: len(users), TotalCount: len(users)}, nil
}

// Promote grants the Admin role to a User account. There is no demotion.
func (s *UserService) Promote(ctx context.Context, actorID, targetID string) (*models.UserInfo, error) {
	var promoted models.User
	_, err := s.store.Apply(ctx, func(doc *models.Document) error {
		if _, err := requireAdmin(doc, actorID); err != nil {
			return err
		}
		target, ok := doc.UserByID(targetID)
		if !ok {
			return appErrors.Clone(appErrors.ErrNotFound, "user not found")
		}
		if target.IsAdmin() {
			return appErrors.Clone(appErrors.ErrConflict, "user is already an administrator")
		}
		target.Role = models.RoleAdmin
		promoted = *target
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("user promoted", zap.String("user_id", targetID), zap.String("promoted_by", actorID))
	info := models.NewUserInfo(promoted)
	return &info, nil
}
