package service

import (
	"github.com/noah-isme/attendance-api/internal/models"
	appErrors "github.com/noah-isme/attendance-api/pkg/errors"
)

// requireAdmin resolves the actor's current account and rejects callers
// without the Admin role. The role is read from the document rather than the
// token so a stale token cannot outlive the account it was issued for.
func requireAdmin(doc *models.Document, actorID string) (*models.User, error) {
	actor, ok := doc.UserByID(actorID)
	if !ok || !actor.IsAdmin() {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "administrator role required")
	}
	return actor, nil
}
