package repository

import (
	"context"
	"errors"
	"os"

	"github.com/noah-isme/attendance-api/internal/models"
	appErrors "github.com/noah-isme/attendance-api/pkg/errors"
)

type fileStorage interface {
	Save(filename string, data []byte) (string, error)
	Read(filename string) ([]byte, error)
}

// FileDocumentRepository keeps the document as <key>.json on local disk.
type FileDocumentRepository struct {
	storage fileStorage
	key     string
}

// NewFileDocumentRepository constructs the repository.
func NewFileDocumentRepository(storage fileStorage, key string) *FileDocumentRepository {
	return &FileDocumentRepository{storage: storage, key: key}
}

func (r *FileDocumentRepository) filename() string {
	return r.key + ".json"
}

// Load reads and decodes the stored document.
func (r *FileDocumentRepository) Load(ctx context.Context) (*models.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	payload, err := r.storage.Read(r.filename())
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, appErrors.ErrDocumentNotFound
		}
		return nil, err
	}
	return DecodeDocument(payload)
}

// Save encodes and atomically replaces the stored document.
func (r *FileDocumentRepository) Save(ctx context.Context, doc *models.Document) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	payload, err := EncodeDocument(doc)
	if err != nil {
		return err
	}
	_, err = r.storage.Save(r.filename(), payload)
	return err
}
