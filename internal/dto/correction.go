package dto

import "github.com/noah-isme/attendance-api/internal/models"

// CreateCorrectionRequest asks for one event's time of day to be changed.
// RequestedTime is a 24h "HH:MM" value applied to the event's original date.
type CreateCorrectionRequest struct {
	RecordID      string `json:"recordId" validate:"required"`
	RequestedTime string `json:"requestedTime" validate:"required"`
	Reason        string `json:"reason" validate:"required"`
}

// CorrectionQuery mirrors supported listing filters.
type CorrectionQuery struct {
	Status []models.CorrectionStatus
}

// ReviewResult reports an administrator decision. Applied is false when the
// request was approved but its target event no longer exists.
type ReviewResult struct {
	Request models.CorrectionRequest `json:"request"`
	Applied bool                     `json:"applied"`
}
