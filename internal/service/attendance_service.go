package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/attendance-api/internal/dto"
	"github.com/noah-isme/attendance-api/internal/models"
	appErrors "github.com/noah-isme/attendance-api/pkg/errors"
	"github.com/noah-isme/attendance-api/pkg/export"
)

// stateStore is the view of the in-memory document every use case works on.
type stateStore interface {
	Snapshot() *models.Document
	Apply(ctx context.Context, mutate func(doc *models.Document) error) (*models.Document, error)
}

type attendanceMetrics interface {
	RecordAttendanceEvent(kind models.EventKind)
}

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

// AttendanceConfig tunes time handling for attendance accounting.
type AttendanceConfig struct {
	Location *time.Location
}

// AttendanceService records clock events and derives status and work time.
type AttendanceService struct {
	store   stateStore
	clock   Clock
	metrics attendanceMetrics
	csv     csvRenderer
	pdf     pdfRenderer
	logger  *zap.Logger
	cfg     AttendanceConfig
}

// NewAttendanceService constructs an AttendanceService.
func NewAttendanceService(store stateStore, clock Clock, metrics attendanceMetrics, logger *zap.Logger, cfg AttendanceConfig) *AttendanceService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	return &AttendanceService{
		store:   store,
		clock:   clockOrSystem(clock),
		metrics: metrics,
		csv:     export.NewCSVExporter(),
		pdf:     export.NewPDFExporter(),
		logger:  logger,
		cfg:     cfg,
	}
}

// RecordEvent appends an event of the given kind, stamped with the current
// time, to the actor's own log.
func (s *AttendanceService) RecordEvent(ctx context.Context, actorID, rawKind string) (*models.AttendanceEvent, error) {
	kind, ok := models.ParseEventKind(strings.TrimSpace(rawKind))
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported event type %q", rawKind))
	}

	event := models.AttendanceEvent{ID: uuid.NewString(), Kind: kind}
	_, err := s.store.Apply(ctx, func(doc *models.Document) error {
		if _, ok := doc.UserByID(actorID); !ok {
			return appErrors.Clone(appErrors.ErrNotFound, "user not found")
		}
		event.Timestamp = s.clock.Now()
		doc.Records[actorID] = append(doc.Records[actorID], event)
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.RecordAttendanceEvent(kind)
	}
	s.logger.Debug("attendance event recorded", zap.String("user_id", actorID), zap.String("type", string(kind)))
	return &event, nil
}

// ListEvents returns the actor's log in recording order.
func (s *AttendanceService) ListEvents(ctx context.Context, actorID string) ([]models.AttendanceEvent, error) {
	doc := s.store.Snapshot()
	if _, ok := doc.UserByID(actorID); !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "user not found")
	}
	events := doc.Events(actorID)
	return append(make([]models.AttendanceEvent, 0, len(events)), events...), nil
}

// Reset clears the actor's entire log. Correction requests that reference
// cleared events are kept.
func (s *AttendanceService) Reset(ctx context.Context, actorID string) error {
	_, err := s.store.Apply(ctx, func(doc *models.Document) error {
		if _, ok := doc.UserByID(actorID); !ok {
			return appErrors.Clone(appErrors.ErrNotFound, "user not found")
		}
		doc.Records[actorID] = []models.AttendanceEvent{}
		return nil
	})
	if err != nil {
		return err
	}
	s.logger.Info("attendance log reset", zap.String("user_id", actorID))
	return nil
}

// Status derives the actor's current status and the actions a client should offer.
func (s *AttendanceService) Status(ctx context.Context, actorID string) (*dto.StatusResponse, error) {
	events, err := s.ListEvents(ctx, actorID)
	if err != nil {
		return nil, err
	}
	status := DeriveStatus(events)
	resp := &dto.StatusResponse{Status: status, AvailableActions: AvailableActions(status)}
	if n := len(events); n > 0 {
		last := events[n-1]
		resp.LastEvent = &last
	}
	return resp, nil
}

// Summary computes work time for the actor at the current instant.
func (s *AttendanceService) Summary(ctx context.Context, actorID string) (*dto.SummaryResponse, error) {
	events, err := s.ListEvents(ctx, actorID)
	if err != nil {
		return nil, err
	}
	return buildSummary(events, s.clock.Now()), nil
}

func buildSummary(events []models.AttendanceEvent, now time.Time) *dto.SummaryResponse {
	status := DeriveStatus(events)
	sum := ComputeSummary(events, status, now)
	return &dto.SummaryResponse{
		Status:            status,
		GrossWork:         FormatDuration(sum.GrossWork),
		TotalBreak:        FormatDuration(sum.TotalBreak),
		NetWork:           FormatDuration(sum.NetWork),
		GrossWorkSeconds:  int64(sum.GrossWork / time.Second),
		TotalBreakSeconds: int64(sum.TotalBreak / time.Second),
		NetWorkSeconds:    int64(sum.NetWork / time.Second),
		ComputedAt:        now,
	}
}

// TeamStatus lists every account in registration order with its derived status.
func (s *AttendanceService) TeamStatus(ctx context.Context, actorID string) ([]dto.TeamStatusItem, error) {
	doc := s.store.Snapshot()
	items := make([]dto.TeamStatusItem, 0, len(doc.Users))
	for _, u := range doc.Users {
		items = append(items, dto.TeamStatusItem{
			UserID:        u.ID,
			Username:      u.Username,
			Role:          u.Role,
			Status:        DeriveStatus(doc.Events(u.ID)),
			IsCurrentUser: u.ID == actorID,
		})
	}
	return items, nil
}

// Export renders the actor's log and current summary as a timesheet file.
func (s *AttendanceService) Export(ctx context.Context, actorID string, format dto.ExportFormat) (*dto.ExportFile, error) {
	doc := s.store.Snapshot()
	user, ok := doc.UserByID(actorID)
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "user not found")
	}
	events := doc.Events(actorID)
	now := s.clock.Now()
	summary := buildSummary(events, now)

	data := export.Dataset{
		Title:   "Timesheet " + user.Username,
		Headers: []string{"#", "Event", "Timestamp"},
		Rows:    make([][]string, 0, len(events)),
		Totals: []export.Field{
			{Label: "Status", Value: string(summary.Status)},
			{Label: "Gross work", Value: summary.GrossWork},
			{Label: "Total break", Value: summary.TotalBreak},
			{Label: "Net work", Value: summary.NetWork},
		},
	}
	for i, e := range events {
		data.Rows = append(data.Rows, []string{
			fmt.Sprintf("%d", i+1),
			string(e.Kind),
			e.Timestamp.In(s.cfg.Location).Format("2006-01-02 15:04:05"),
		})
	}

	base := fmt.Sprintf("timesheet-%s-%s", user.Username, now.In(s.cfg.Location).Format("20060102"))
	switch format {
	case dto.ExportFormatCSV, "":
		content, err := s.csv.Render(data)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv")
		}
		return &dto.ExportFile{Filename: base + ".csv", ContentType: "text/csv", Content: content}, nil
	case dto.ExportFormatPDF:
		content, err := s.pdf.Render(data)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf")
		}
		return &dto.ExportFile{Filename: base + ".pdf", ContentType: "application/pdf", Content: content}, nil
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported export format %q", format))
	}
}
