package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/noah-isme/attendance-api/internal/models"
	appErrors "github.com/noah-isme/attendance-api/pkg/errors"
)

var errClientNotConfigured = errors.New("redis client not configured")

// RedisDocumentRepository stores the document under a single Redis key with no expiry.
type RedisDocumentRepository struct {
	client *redis.Client
	key    string
}

// NewRedisDocumentRepository constructs the repository.
func NewRedisDocumentRepository(client *redis.Client, key string) *RedisDocumentRepository {
	return &RedisDocumentRepository{client: client, key: key}
}

// Load fetches and decodes the stored document.
func (r *RedisDocumentRepository) Load(ctx context.Context) (*models.Document, error) {
	if r.client == nil {
		return nil, errClientNotConfigured
	}
	raw, err := r.client.Get(ctx, r.key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, appErrors.ErrDocumentNotFound
		}
		return nil, fmt.Errorf("redis get %s: %w", r.key, err)
	}
	return DecodeDocument(raw)
}

// Save encodes the document and overwrites the key.
func (r *RedisDocumentRepository) Save(ctx context.Context, doc *models.Document) error {
	if r.client == nil {
		return errClientNotConfigured
	}
	payload, err := EncodeDocument(doc)
	if err != nil {
		return err
	}
	if err := r.client.Set(ctx, r.key, payload, 0).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", r.key, err)
	}
	return nil
}

// Close releases the underlying Redis connection if present.
func (r *RedisDocumentRepository) Close() error {
	if r.client == nil {
		return nil
	}
	return r.client.Close()
}
