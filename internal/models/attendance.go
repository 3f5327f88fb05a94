package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// EventKind identifies the clock marker an attendance event records.
type EventKind string

const (
	EventClockIn    EventKind = "ClockIn"
	EventClockOut   EventKind = "ClockOut"
	EventBreakStart EventKind = "BreakStart"
	EventBreakEnd   EventKind = "BreakEnd"
)

// Labels written by the browser-only version of the tracker.
var legacyEventKinds = map[string]EventKind{
	"出勤":   EventClockIn,
	"退勤":   EventClockOut,
	"休憩開始": EventBreakStart,
	"休憩終了": EventBreakEnd,
}

// Valid returns true when the kind is a supported value.
func (k EventKind) Valid() bool {
	switch k {
	case EventClockIn, EventClockOut, EventBreakStart, EventBreakEnd:
		return true
	default:
		return false
	}
}

// ParseEventKind accepts canonical names and legacy labels.
func ParseEventKind(raw string) (EventKind, bool) {
	if k := EventKind(raw); k.Valid() {
		return k, true
	}
	k, ok := legacyEventKinds[raw]
	return k, ok
}

// UnmarshalJSON decodes canonical or legacy labels.
func (k *EventKind) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	kind, ok := ParseEventKind(raw)
	if !ok {
		return fmt.Errorf("unknown attendance event type %q", raw)
	}
	*k = kind
	return nil
}

// AttendanceEvent is a single clock marker in a user's log. Only Timestamp
// may change after creation, and only through an approved correction.
type AttendanceEvent struct {
	ID        string    `json:"id"`
	Kind      EventKind `json:"type"`
	Timestamp time.Time `json:"timestamp"`
}

// AttendanceStatus is the point-in-time classification derived from a log.
type AttendanceStatus string

const (
	StatusNotClockedIn AttendanceStatus = "NotClockedIn"
	StatusClockedIn    AttendanceStatus = "ClockedIn"
	StatusOnBreak      AttendanceStatus = "OnBreak"
	StatusClockedOut   AttendanceStatus = "ClockedOut"
)

// WorkSummary holds work-time accounting for one log. All values are >= 0.
type WorkSummary struct {
	GrossWork  time.Duration
	TotalBreak time.Duration
	NetWork    time.Duration
}
