package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/attendance-api/internal/models"
	appErrors "github.com/noah-isme/attendance-api/pkg/errors"
	"github.com/noah-isme/attendance-api/pkg/response"
)

// RoleResolver reports the role currently stored for an account.
type RoleResolver interface {
	CurrentRole(userID string) (models.UserRole, bool)
}

// RBAC enforces role-based access control. When a resolver is supplied the
// stored role wins over the one carried in the token, so a promotion applies
// to tokens issued before it. Without a resolver the token role is used.
func RBAC(roles RoleResolver, allowed ...models.UserRole) gin.HandlerFunc {
	allowedRoles := make(map[models.UserRole]struct{}, len(allowed))
	for _, r := range allowed {
		allowedRoles[r] = struct{}{}
	}

	return func(c *gin.Context) {
		claimsValue, exists := c.Get(ContextUserKey)
		if !exists {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}
		claims, ok := claimsValue.(*models.JWTClaims)
		if !ok {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}

		role := claims.Role
		if roles != nil {
			current, found := roles.CurrentRole(claims.UserID)
			if !found {
				response.Error(c, appErrors.Clone(appErrors.ErrUnauthorized, "account no longer exists"))
				c.Abort()
				return
			}
			role = current
		}

		if _, ok := allowedRoles[role]; ok {
			c.Next()
			return
		}

		response.Error(c, appErrors.Clone(appErrors.ErrForbidden, "administrator role required"))
		c.Abort()
	}
}

// RequireAdmin limits a route to administrators.
func RequireAdmin(roles RoleResolver) gin.HandlerFunc {
	return RBAC(roles, models.RoleAdmin)
}
