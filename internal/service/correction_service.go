package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/attendance-api/internal/dto"
	"github.com/noah-isme/attendance-api/internal/models"
	appErrors "github.com/noah-isme/attendance-api/pkg/errors"
)

type correctionMetrics interface {
	RecordCorrectionReview(decision models.CorrectionStatus, applied bool)
}

// CorrectionService runs the submit/approve/deny workflow for event time corrections.
type CorrectionService struct {
	store     stateStore
	validator *validator.Validate
	metrics   correctionMetrics
	logger    *zap.Logger
	location  *time.Location
}

// NewCorrectionService constructs a CorrectionService. Requested times are
// interpreted in loc, which defaults to the host zone.
func NewCorrectionService(store stateStore, validate *validator.Validate, metrics correctionMetrics, logger *zap.Logger, loc *time.Location) *CorrectionService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	if loc == nil {
		loc = time.Local
	}
	return &CorrectionService{store: store, validator: validate, metrics: metrics, logger: logger, location: loc}
}

// Submit files a Pending request to move one of the actor's own events to a
// new time of day on the same calendar date.
func (s *CorrectionService) Submit(ctx context.Context, actorID string, req dto.CreateCorrectionRequest) (*models.CorrectionRequest, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid correction payload")
	}
	reason := strings.TrimSpace(req.Reason)
	if reason == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "reason is required")
	}
	hour, minute, err := parseClockTime(req.RequestedTime)
	if err != nil {
		return nil, err
	}

	var created models.CorrectionRequest
	_, err = s.store.Apply(ctx, func(doc *models.Document) error {
		actor, ok := doc.UserByID(actorID)
		if !ok {
			return appErrors.Clone(appErrors.ErrNotFound, "user not found")
		}
		event, ok := doc.EventByID(actorID, req.RecordID)
		if !ok {
			return appErrors.Clone(appErrors.ErrNotFound, "attendance record not found")
		}

		original := event.Timestamp.In(s.location)
		created = models.CorrectionRequest{
			ID:                 uuid.NewString(),
			UserID:             actor.ID,
			Username:           actor.Username,
			RecordID:           event.ID,
			RecordType:         event.Kind,
			OriginalTimestamp:  event.Timestamp,
			RequestedTimestamp: time.Date(original.Year(), original.Month(), original.Day(), hour, minute, 0, 0, s.location),
			Reason:             reason,
			Status:             models.CorrectionPending,
		}
		doc.Requests = append(doc.Requests, created)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("correction submitted",
		zap.String("request_id", created.ID),
		zap.String("user_id", actorID),
		zap.String("record_id", created.RecordID),
	)
	return &created, nil
}

func parseClockTime(raw string) (int, int, error) {
	t, err := time.Parse("15:04", strings.TrimSpace(raw))
	if err != nil {
		return 0, 0, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, fmt.Sprintf("requested time %q must be HH:MM", raw))
	}
	return t.Hour(), t.Minute(), nil
}

// Approve accepts a Pending request and moves the target event to the
// requested timestamp in place. When the event no longer exists the request
// is still approved and Applied is reported as false.
func (s *CorrectionService) Approve(ctx context.Context, actorID, requestID string) (*dto.ReviewResult, error) {
	return s.review(ctx, actorID, requestID, models.CorrectionApproved)
}

// Deny rejects a Pending request. The event log is not touched.
func (s *CorrectionService) Deny(ctx context.Context, actorID, requestID string) (*dto.ReviewResult, error) {
	return s.review(ctx, actorID, requestID, models.CorrectionDenied)
}

func (s *CorrectionService) review(ctx context.Context, actorID, requestID string, decision models.CorrectionStatus) (*dto.ReviewResult, error) {
	var result dto.ReviewResult
	_, err := s.store.Apply(ctx, func(doc *models.Document) error {
		if _, err := requireAdmin(doc, actorID); err != nil {
			return err
		}
		req, ok := doc.RequestByID(requestID)
		if !ok {
			return appErrors.Clone(appErrors.ErrNotFound, "correction request not found")
		}
		if req.Status.Terminal() {
			return appErrors.Clone(appErrors.ErrConflict, fmt.Sprintf("correction request already %s", strings.ToLower(string(req.Status))))
		}

		if decision == models.CorrectionApproved {
			if event, ok := doc.EventByID(req.UserID, req.RecordID); ok {
				event.Timestamp = req.RequestedTimestamp
				result.Applied = true
			}
		}
		req.Status = decision
		result.Request = *req
		return nil
	})
	if err != nil {
		return nil, err
	}

	if decision == models.CorrectionApproved && !result.Applied {
		s.logger.Warn("approved correction target no longer exists",
			zap.String("request_id", requestID),
			zap.String("record_id", result.Request.RecordID),
			zap.String("user_id", result.Request.UserID),
		)
	}
	if s.metrics != nil {
		s.metrics.RecordCorrectionReview(decision, result.Applied)
	}
	s.logger.Info("correction reviewed",
		zap.String("request_id", requestID),
		zap.String("reviewer_id", actorID),
		zap.String("decision", string(decision)),
	)
	return &result, nil
}

// ListMine returns the actor's own requests in submission order.
func (s *CorrectionService) ListMine(ctx context.Context, actorID string) ([]models.CorrectionRequest, error) {
	return filterRequests(s.store.Snapshot(), models.CorrectionFilter{UserID: actorID}), nil
}

// ListAll returns every request matching the query. Admin only.
func (s *CorrectionService) ListAll(ctx context.Context, actorID string, query dto.CorrectionQuery) ([]models.CorrectionRequest, error) {
	doc := s.store.Snapshot()
	if _, err := requireAdmin(doc, actorID); err != nil {
		return nil, err
	}
	return filterRequests(doc, models.CorrectionFilter{Status: query.Status}), nil
}

func filterRequests(doc *models.Document, filter models.CorrectionFilter) []models.CorrectionRequest {
	out := make([]models.CorrectionRequest, 0)
	for _, req := range doc.Requests {
		if filter.Matches(req) {
			out = append(out, req)
		}
	}
	return out
}
