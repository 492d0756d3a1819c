package domain

import "time"

type Role string

const (
	RoleAdmin         Role = "admin"
	RoleDocumentOwner Role = "document_owner"
	RoleAuditor       Role = "auditor"
	RoleGuest         Role = "guest"
)

// ParseRole maps a stored role string onto the closed role set. Anything
// unrecognized resolves to Guest, the most restrictive role, so a corrupted
// or legacy value can never widen access.
func ParseRole(value string) Role {
	switch Role(value) {
	case RoleAdmin, RoleDocumentOwner, RoleAuditor, RoleGuest:
		return Role(value)
	default:
		return RoleGuest
	}
}

// ValidRole reports whether value names a member of the closed role set.
func ValidRole(value string) bool {
	switch Role(value) {
	case RoleAdmin, RoleDocumentOwner, RoleAuditor, RoleGuest:
		return true
	default:
		return false
	}
}

// User is an account identity. Users are soft-deactivated, never deleted.
type User struct {
	Username       string
	CredentialHash string
	Role           Role
	Active         bool
	CreatedAt      time.Time
	LastLogin      *time.Time
}
