package repository

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/noah-isme/attendance-api/internal/models"
)

// StateStore owns the in-memory application document. Readers receive the
// latest committed snapshot and must treat it as read-only; writers go through
// Apply, which mutates a private clone and swaps it in only on success.
type StateStore struct {
	mu       sync.Mutex
	current  atomic.Pointer[models.Document]
	version  atomic.Uint64
	onChange func(version uint64)
}

// NewStateStore seeds the store with an initial document.
func NewStateStore(doc *models.Document) *StateStore {
	if doc == nil {
		doc = models.NewDocument()
	}
	s := &StateStore{}
	s.current.Store(doc.Clone().Normalize())
	return s
}

// OnChange registers a callback invoked after every committed mutation.
// The callback runs outside the writer lock.
func (s *StateStore) OnChange(fn func(version uint64)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onChange = fn
}

// Snapshot returns the latest committed document.
func (s *StateStore) Snapshot() *models.Document {
	return s.current.Load()
}

// Version counts committed mutations since start.
func (s *StateStore) Version() uint64 {
	return s.version.Load()
}

// Apply runs mutate against a clone of the current document and commits the
// clone when mutate returns nil. On error the current document is untouched.
func (s *StateStore) Apply(ctx context.Context, mutate func(doc *models.Document) error) (*models.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	next := s.current.Load().Clone()
	if err := mutate(next); err != nil {
		s.mu.Unlock()
		return nil, err
	}
	s.current.Store(next)
	version := s.version.Add(1)
	notify := s.onChange
	s.mu.Unlock()

	if notify != nil {
		notify(version)
	}
	return next, nil
}
