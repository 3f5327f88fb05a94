package models

import "strings"

// UserRole represents the capability tier of an account.
type UserRole string

const (
	RoleAdmin UserRole = "Admin"
	RoleUser  UserRole = "User"
)

// Valid reports whether the role is one of the supported tiers.
func (r UserRole) Valid() bool {
	return r == RoleAdmin || r == RoleUser
}

// User is an account record as stored in the application document.
// Password is kept verbatim; the stored document format predates hashing.
type User struct {
	ID       string   `json:"id"`
	Username string   `json:"username"`
	Password string   `json:"password"`
	Role     UserRole `json:"role"`
}

// IsAdmin reports whether the user holds administrator capabilities.
func (u User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// NormalizeUsername trims surrounding whitespace; comparison stays case sensitive.
func NormalizeUsername(raw string) string {
	return strings.TrimSpace(raw)
}

// Pagination contains pagination metadata returned in list responses.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
}
