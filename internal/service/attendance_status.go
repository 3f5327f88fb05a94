package service

import "github.com/noah-isme/attendance-api/internal/models"

// DeriveStatus classifies a log by its most recent event only. It is total:
// any sequence, including inconsistent ones, yields a status.
func DeriveStatus(events []models.AttendanceEvent) models.AttendanceStatus {
	if len(events) == 0 {
		return models.StatusNotClockedIn
	}
	switch events[len(events)-1].Kind {
	case models.EventClockIn, models.EventBreakEnd:
		return models.StatusClockedIn
	case models.EventBreakStart:
		return models.StatusOnBreak
	case models.EventClockOut:
		return models.StatusClockedOut
	default:
		return models.StatusNotClockedIn
	}
}

// AvailableActions lists the events a client would normally offer for the
// status. The log itself accepts any kind at any time.
func AvailableActions(status models.AttendanceStatus) []models.EventKind {
	switch status {
	case models.StatusNotClockedIn:
		return []models.EventKind{models.EventClockIn}
	case models.StatusClockedIn:
		return []models.EventKind{models.EventBreakStart, models.EventClockOut}
	case models.StatusOnBreak:
		return []models.EventKind{models.EventBreakEnd}
	default:
		return []models.EventKind{}
	}
}
