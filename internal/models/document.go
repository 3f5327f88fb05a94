package models

// Document is the complete application state: accounts, per-user event logs
// and correction requests. It is persisted as a single JSON value.
type Document struct {
	Users    []User                       `json:"users"`
	Records  map[string][]AttendanceEvent `json:"records"`
	Requests []CorrectionRequest          `json:"requests"`
}

// NewDocument returns an empty, normalized document.
func NewDocument() *Document {
	return &Document{
		Users:    []User{},
		Records:  map[string][]AttendanceEvent{},
		Requests: []CorrectionRequest{},
	}
}

// Normalize replaces nil collections so the document is safe to mutate and
// always encodes with arrays/objects instead of null.
func (d *Document) Normalize() *Document {
	if d.Users == nil {
		d.Users = []User{}
	}
	if d.Records == nil {
		d.Records = map[string][]AttendanceEvent{}
	}
	if d.Requests == nil {
		d.Requests = []CorrectionRequest{}
	}
	for _, u := range d.Users {
		if _, ok := d.Records[u.ID]; !ok {
			d.Records[u.ID] = []AttendanceEvent{}
		}
	}
	return d
}

// Clone returns a deep copy.
func (d *Document) Clone() *Document {
	if d == nil {
		return NewDocument()
	}
	out := &Document{
		Users:    append(make([]User, 0, len(d.Users)), d.Users...),
		Records:  make(map[string][]AttendanceEvent, len(d.Records)),
		Requests: append(make([]CorrectionRequest, 0, len(d.Requests)), d.Requests...),
	}
	for userID, events := range d.Records {
		out.Records[userID] = append(make([]AttendanceEvent, 0, len(events)), events...)
	}
	return out
}

// UserByID returns a pointer into Users so callers holding a private clone can mutate it.
func (d *Document) UserByID(id string) (*User, bool) {
	for i := range d.Users {
		if d.Users[i].ID == id {
			return &d.Users[i], true
		}
	}
	return nil, false
}

// UserByUsername looks up an account by exact username.
func (d *Document) UserByUsername(username string) (*User, bool) {
	for i := range d.Users {
		if d.Users[i].Username == username {
			return &d.Users[i], true
		}
	}
	return nil, false
}

// Events returns the user's log in recording order.
func (d *Document) Events(userID string) []AttendanceEvent {
	return d.Records[userID]
}

// EventByID returns a pointer to the event inside userID's log.
func (d *Document) EventByID(userID, eventID string) (*AttendanceEvent, bool) {
	events := d.Records[userID]
	for i := range events {
		if events[i].ID == eventID {
			return &events[i], true
		}
	}
	return nil, false
}

// RequestByID returns a pointer to the correction request.
func (d *Document) RequestByID(id string) (*CorrectionRequest, bool) {
	for i := range d.Requests {
		if d.Requests[i].ID == id {
			return &d.Requests[i], true
		}
	}
	return nil, false
}
