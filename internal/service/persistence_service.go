package service

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/attendance-api/internal/models"
	appErrors "github.com/noah-isme/attendance-api/pkg/errors"
	"github.com/noah-isme/attendance-api/pkg/jobs"
)

const persistJobType = "document.save"

type documentRepository interface {
	Load(ctx context.Context) (*models.Document, error)
	Save(ctx context.Context, doc *models.Document) error
}

type versionedSnapshotter interface {
	Snapshot() *models.Document
	Version() uint64
}

type persistenceMetrics interface {
	ObserveDocumentSave(success bool, duration time.Duration)
}

// PersistenceConfig tunes document persistence.
type PersistenceConfig struct {
	QueueBuffer   int
	SaveTimeout   time.Duration
	AdminUsername string
	AdminPassword string
}

// PersistenceService loads the application document at startup and writes
// the latest snapshot back after every committed change. Writes run on a
// single-worker queue so they are ordered; a failed write is logged and
// counted, and the in-memory state remains authoritative.
type PersistenceService struct {
	repo    documentRepository
	metrics persistenceMetrics
	logger  *zap.Logger
	cfg     PersistenceConfig
	queue   *jobs.Queue

	store versionedSnapshotter
	mu    sync.Mutex
	saved uint64
}

// NewPersistenceService constructs a PersistenceService.
func NewPersistenceService(repo documentRepository, metrics persistenceMetrics, logger *zap.Logger, cfg PersistenceConfig) *PersistenceService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.SaveTimeout <= 0 {
		cfg.SaveTimeout = 10 * time.Second
	}
	if cfg.AdminUsername == "" {
		cfg.AdminUsername = "admin"
	}
	if cfg.AdminPassword == "" {
		cfg.AdminPassword = "admin"
	}
	s := &PersistenceService{repo: repo, metrics: metrics, logger: logger, cfg: cfg}
	s.queue = jobs.NewQueue("persistence", s.handle, jobs.QueueConfig{
		Workers:    1,
		BufferSize: cfg.QueueBuffer,
		MaxRetries: -1,
		Logger:     logger,
	})
	return s
}

// LoadOrSeed returns the stored document. When none exists yet it seeds one
// administrator account, writes the new document and reports seeded=true.
// Any other load failure is returned as a persistence error.
func (s *PersistenceService) LoadOrSeed(ctx context.Context) (*models.Document, bool, error) {
	doc, err := s.repo.Load(ctx)
	if err == nil {
		return doc.Normalize(), false, nil
	}
	if !errors.Is(err, appErrors.ErrDocumentNotFound) {
		return nil, false, appErrors.Wrap(err, appErrors.ErrPersistence.Code, appErrors.ErrPersistence.Status, "failed to load stored document")
	}

	doc = models.NewDocument()
	admin := models.User{ID: uuid.NewString(), Username: s.cfg.AdminUsername, Password: s.cfg.AdminPassword, Role: models.RoleAdmin}
	doc.Users = append(doc.Users, admin)
	doc.Records[admin.ID] = []models.AttendanceEvent{}

	if err := s.repo.Save(ctx, doc); err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrPersistence.Code, appErrors.ErrPersistence.Status, "failed to write seeded document")
	}
	s.logger.Info("seeded initial document", zap.String("admin_username", admin.Username))
	return doc, true, nil
}

// Start attaches the store whose snapshots are persisted and starts the worker.
func (s *PersistenceService) Start(ctx context.Context, store versionedSnapshotter) {
	s.mu.Lock()
	s.store = store
	s.saved = store.Version()
	s.mu.Unlock()
	s.queue.Start(ctx)
}

// Schedule requests a write for the given store version. It never blocks:
// when the buffer is full a queued job will already pick up the latest snapshot.
func (s *PersistenceService) Schedule(version uint64) {
	err := s.queue.TryEnqueue(jobs.Job{
		ID:      strconv.FormatUint(version, 10),
		Type:    persistJobType,
		Payload: version,
	})
	switch {
	case err == nil:
	case errors.Is(err, jobs.ErrQueueFull):
		s.logger.Debug("persist queue full, coalescing", zap.Uint64("version", version))
	default:
		s.logger.Warn("persist job not scheduled", zap.Uint64("version", version), zap.Error(err))
	}
}

// Stop halts the worker and writes the latest snapshot synchronously.
func (s *PersistenceService) Stop(ctx context.Context) error {
	s.queue.Stop()
	return s.Flush(ctx)
}

// Flush writes the latest snapshot if it has not been written yet.
func (s *PersistenceService) Flush(ctx context.Context) error {
	return s.persistLatest(ctx)
}

func (s *PersistenceService) handle(ctx context.Context, _ jobs.Job) error {
	if err := s.persistLatest(ctx); err != nil {
		s.logger.Error("failed to persist document", zap.Error(err))
	}
	return nil
}

func (s *PersistenceService) persistLatest(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.store == nil {
		return nil
	}

	// Read the version before the snapshot so the snapshot is never older
	// than the version recorded as saved.
	version := s.store.Version()
	if version <= s.saved {
		return nil
	}
	doc := s.store.Snapshot()

	saveCtx, cancel := context.WithTimeout(ctx, s.cfg.SaveTimeout)
	defer cancel()
	start := time.Now()
	err := s.repo.Save(saveCtx, doc)
	if s.metrics != nil {
		s.metrics.ObserveDocumentSave(err == nil, time.Since(start))
	}
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrPersistence.Code, appErrors.ErrPersistence.Status, "failed to save document")
	}
	s.saved = version
	return nil
}
