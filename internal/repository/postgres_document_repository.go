package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/attendance-api/internal/models"
	appErrors "github.com/noah-isme/attendance-api/pkg/errors"
)

const createDocumentsTable = `CREATE TABLE IF NOT EXISTS app_documents (
	key TEXT PRIMARY KEY,
	payload JSONB NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
)`

// PostgresDocumentRepository stores the document as one JSONB row keyed by storage key.
type PostgresDocumentRepository struct {
	db  *sqlx.DB
	key string
	now func() time.Time
}

// NewPostgresDocumentRepository constructs the repository.
func NewPostgresDocumentRepository(db *sqlx.DB, key string) *PostgresDocumentRepository {
	return &PostgresDocumentRepository{db: db, key: key, now: func() time.Time { return time.Now().UTC() }}
}

// EnsureSchema creates the backing table when missing.
func (r *PostgresDocumentRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, createDocumentsTable); err != nil {
		return fmt.Errorf("create app_documents: %w", err)
	}
	return nil
}

// Load fetches and decodes the stored document.
func (r *PostgresDocumentRepository) Load(ctx context.Context) (*models.Document, error) {
	const query = `SELECT payload FROM app_documents WHERE key = $1 LIMIT 1`
	var payload []byte
	if err := r.db.GetContext(ctx, &payload, query, r.key); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrDocumentNotFound
		}
		return nil, fmt.Errorf("load document: %w", err)
	}
	return DecodeDocument(payload)
}

// Save upserts the document row.
func (r *PostgresDocumentRepository) Save(ctx context.Context, doc *models.Document) error {
	payload, err := EncodeDocument(doc)
	if err != nil {
		return err
	}
	const query = `INSERT INTO app_documents (key, payload, updated_at) VALUES ($1, $2, $3)
ON CONFLICT (key) DO UPDATE SET payload = EXCLUDED.payload, updated_at = EXCLUDED.updated_at`
	if _, err := r.db.ExecContext(ctx, query, r.key, payload, r.now()); err != nil {
		return fmt.Errorf("save document: %w", err)
	}
	return nil
}
