package dto

import (
	"time"

	"github.com/noah-isme/attendance-api/internal/models"
)

// RecordEventRequest appends a clock marker to the caller's log.
type RecordEventRequest struct {
	Type string `json:"type" validate:"required"`
}

// StatusResponse reports the derived status of the caller's log.
type StatusResponse struct {
	Status           models.AttendanceStatus `json:"status"`
	AvailableActions []models.EventKind      `json:"availableActions"`
	LastEvent        *models.AttendanceEvent `json:"lastEvent,omitempty"`
}

// SummaryResponse carries work-time accounting formatted as HH:MM:SS.
type SummaryResponse struct {
	Status            models.AttendanceStatus `json:"status"`
	GrossWork         string                  `json:"grossWork"`
	TotalBreak        string                  `json:"totalBreak"`
	NetWork           string                  `json:"netWork"`
	GrossWorkSeconds  int64                   `json:"grossWorkSeconds"`
	TotalBreakSeconds int64                   `json:"totalBreakSeconds"`
	NetWorkSeconds    int64                   `json:"netWorkSeconds"`
	ComputedAt        time.Time               `json:"computedAt"`
}

// TeamStatusItem is one row of the team overview.
type TeamStatusItem struct {
	UserID        string                  `json:"userId"`
	Username      string                  `json:"username"`
	Role          models.UserRole         `json:"role"`
	Status        models.AttendanceStatus `json:"status"`
	IsCurrentUser bool                    `json:"isCurrentUser"`
}
