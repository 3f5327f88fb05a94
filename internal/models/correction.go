package models

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// CorrectionStatus captures workflow states for correction requests.
type CorrectionStatus string

const (
	CorrectionPending  CorrectionStatus = "Pending"
	CorrectionApproved CorrectionStatus = "Approved"
	CorrectionDenied   CorrectionStatus = "Denied"
)

var legacyCorrectionStatuses = map[string]CorrectionStatus{
	"保留中":  CorrectionPending,
	"承認済み": CorrectionApproved,
	"却下済み": CorrectionDenied,
}

// Valid returns true when the status is a supported value.
func (s CorrectionStatus) Valid() bool {
	switch s {
	case CorrectionPending, CorrectionApproved, CorrectionDenied:
		return true
	default:
		return false
	}
}

// Terminal reports whether no further transition is allowed.
func (s CorrectionStatus) Terminal() bool {
	return s == CorrectionApproved || s == CorrectionDenied
}

// ParseCorrectionStatus accepts canonical names (case-insensitive) and legacy labels.
func ParseCorrectionStatus(raw string) (CorrectionStatus, bool) {
	for _, s := range []CorrectionStatus{CorrectionPending, CorrectionApproved, CorrectionDenied} {
		if strings.EqualFold(string(s), raw) {
			return s, true
		}
	}
	s, ok := legacyCorrectionStatuses[raw]
	return s, ok
}

// UnmarshalJSON decodes canonical or legacy labels.
func (s *CorrectionStatus) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	status, ok := ParseCorrectionStatus(raw)
	if !ok {
		return fmt.Errorf("unknown correction status %q", raw)
	}
	*s = status
	return nil
}

// CorrectionRequest is a user's proposal to move one event's time of day.
// RecordType and Username are copies taken at submission time.
type CorrectionRequest struct {
	ID                 string           `json:"id"`
	UserID             string           `json:"userId"`
	Username           string           `json:"username"`
	RecordID           string           `json:"recordId"`
	RecordType         EventKind        `json:"recordType"`
	OriginalTimestamp  time.Time        `json:"originalTimestamp"`
	RequestedTimestamp time.Time        `json:"requestedTimestamp"`
	Reason             string           `json:"reason"`
	Status             CorrectionStatus `json:"status"`
}

// CorrectionFilter constrains listing queries.
type CorrectionFilter struct {
	Status []CorrectionStatus
	UserID string
}

// Matches reports whether the request passes the filter.
func (f CorrectionFilter) Matches(req CorrectionRequest) bool {
	if f.UserID != "" && req.UserID != f.UserID {
		return false
	}
	if len(f.Status) == 0 {
		return true
	}
	for _, s := range f.Status {
		if req.Status == s {
			return true
		}
	}
	return false
}
