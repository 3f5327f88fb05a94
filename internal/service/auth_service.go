package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/attendance-api/internal/models"
	appErrors "github.com/noah-isme/attendance-api/pkg/errors"
)

// AuthConfig defines configuration for token issuance.
type AuthConfig struct {
	AccessTokenSecret string
	AccessTokenExpiry time.Duration
	Issuer            string
}

// AuthService registers accounts, signs users in and validates tokens.
type AuthService struct {
	store     stateStore
	validator *validator.Validate
	logger    *zap.Logger
	clock     Clock
	config    AuthConfig
}

// NewAuthService constructs an AuthService instance.
func NewAuthService(store stateStore, validate *validator.Validate, logger *zap.Logger, clock Clock, config AuthConfig) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	if config.AccessTokenExpiry <= 0 {
		config.AccessTokenExpiry = 24 * time.Hour
	}
	return &AuthService{store: store, validator: validate, logger: logger, clock: clockOrSystem(clock), config: config}
}

// Register creates a User-role account with an empty log and signs it in.
func (s *AuthService) Register(ctx context.Context, req models.RegisterRequest) (*models.LoginResponse, error) {
	username := models.NormalizeUsername(req.Username)
	req.Username = username
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "username and password are required")
	}
	if strings.TrimSpace(req.Password) == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "username and password are required")
	}

	user := models.User{ID: uuid.NewString(), Username: username, Password: req.Password, Role: models.RoleUser}
	_, err := s.store.Apply(ctx, func(doc *models.Document) error {
		if _, exists := doc.UserByUsername(username); exists {
			return appErrors.Clone(appErrors.ErrConflict, "username already taken")
		}
		doc.Users = append(doc.Users, user)
		doc.Records[user.ID] = []models.AttendanceEvent{}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("user registered", zap.String("user_id", user.ID), zap.String("username", username))
	return s.issue(user)
}

// Login authenticates by exact username and password match; neither value is
// trimmed. Every failure yields the same error so callers cannot probe for
// accounts.
func (s *AuthService) Login(ctx context.Context, req models.LoginRequest) (*models.LoginResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Clone(appErrors.ErrInvalidCredentials, "")
	}

	user, ok := s.store.Snapshot().UserByUsername(req.Username)
	if !ok || user.Password != req.Password {
		s.logger.Info("login rejected", zap.String("username", req.Username))
		return nil, appErrors.Clone(appErrors.ErrInvalidCredentials, "")
	}

	return s.issue(*user)
}

// Me returns the caller's account without credentials.
func (s *AuthService) Me(ctx context.Context, actorID string) (*models.UserInfo, error) {
	user, ok := s.store.Snapshot().UserByID(actorID)
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "user not found")
	}
	info := models.NewUserInfo(*user)
	return &info, nil
}

// CurrentRole reports the stored role of an account.
func (s *AuthService) CurrentRole(userID string) (models.UserRole, bool) {
	user, ok := s.store.Snapshot().UserByID(userID)
	if !ok {
		return "", false
	}
	return user.Role, true
}

// ValidateToken parses and validates an access token returning the claims.
func (s *AuthService) ValidateToken(tokenString string) (*models.JWTClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &models.JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.config.AccessTokenSecret), nil
	}, jwt.WithTimeFunc(s.clock.Now))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUnauthorized.Code, appErrors.ErrUnauthorized.Status, "invalid token")
	}

	claims, ok := token.Claims.(*models.JWTClaims)
	if !ok || !token.Valid {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid token claims")
	}

	return claims, nil
}

func (s *AuthService) issue(user models.User) (*models.LoginResponse, error) {
	issuedAt := s.clock.Now().UTC()
	token, err := s.generateAccessToken(user, issuedAt)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create access token")
	}
	return &models.LoginResponse{
		AccessToken: token,
		ExpiresIn:   int64(s.config.AccessTokenExpiry.Seconds()),
		User:        models.NewUserInfo(user),
		IssuedAt:    issuedAt,
	}, nil
}

func (s *AuthService) generateAccessToken(user models.User, issuedAt time.Time) (string, error) {
	claims := &models.JWTClaims{
		UserID:   user.ID,
		Username: user.Username,
		Role:     user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    s.config.Issuer,
			Subject:   user.ID,
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(s.config.AccessTokenExpiry)),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			NotBefore: jwt.NewNumericDate(issuedAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.config.AccessTokenSecret))
}
