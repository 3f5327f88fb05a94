package repository

import (
	"encoding/json"
	"fmt"

	"github.com/noah-isme/attendance-api/internal/models"
)

// EncodeDocument serializes the document in its stored shape.
func EncodeDocument(doc *models.Document) ([]byte, error) {
	if doc == nil {
		doc = models.NewDocument()
	}
	payload, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}
	return payload, nil
}

// DecodeDocument parses a stored document. Date fields are typed on the
// entities, so timestamps come back as time values rather than strings.
func DecodeDocument(payload []byte) (*models.Document, error) {
	doc := &models.Document{}
	if err := json.Unmarshal(payload, doc); err != nil {
		return nil, fmt.Errorf("decode document: %w", err)
	}
	return doc.Normalize(), nil
}
