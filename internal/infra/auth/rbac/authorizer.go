package rbac

import (
	"errors"

	"docvault/internal/domain"
)

// Capability is one of the ten privileged actions the matrix gates.
type Capability int

const (
	CapCreateUsers Capability = iota
	CapDeleteUsers
	CapViewAllDocuments
	CapRegisterDocuments
	CapVerifyDocuments
	CapViewAuditLogs
	CapExportAuditLogs
	CapManageSystem
	CapViewAllSignatures
	CapDeleteDocuments

	capabilityCount
)

var capabilityNames = [capabilityCount]string{
	CapCreateUsers:       "can_create_users",
	CapDeleteUsers:       "can_delete_users",
	CapViewAllDocuments:  "can_view_all_documents",
	CapRegisterDocuments: "can_register_documents",
	CapVerifyDocuments:   "can_verify_documents",
	CapViewAuditLogs:     "can_view_audit_logs",
	CapExportAuditLogs:   "can_export_audit_logs",
	CapManageSystem:      "can_manage_system",
	CapViewAllSignatures: "can_view_all_signatures",
	CapDeleteDocuments:   "can_delete_documents",
}

func (c Capability) String() string {
	if c < 0 || c >= capabilityCount {
		return "unknown"
	}
	return capabilityNames[c]
}

// ParseCapability resolves an external capability name.
func ParseCapability(name string) (Capability, bool) {
	for c, n := range capabilityNames {
		if n == name {
			return Capability(c), true
		}
	}
	return 0, false
}

const roleCount = 4

func roleIndex(role domain.Role) int {
	switch role {
	case domain.RoleAdmin:
		return 0
	case domain.RoleDocumentOwner:
		return 1
	case domain.RoleAuditor:
		return 2
	default:
		// Unknown roles collapse onto Guest, the most restrictive row.
		return 3
	}
}

// matrix is the full role x capability table. Fixed-size arrays make the
// lookup total at compile time: every role has an entry for every
// capability, and nothing falls through to a runtime default.
var matrix = [roleCount][capabilityCount]bool{
	// Admin
	{
		CapCreateUsers:       true,
		CapDeleteUsers:       true,
		CapViewAllDocuments:  true,
		CapRegisterDocuments: true,
		CapVerifyDocuments:   true,
		CapViewAuditLogs:     true,
		CapExportAuditLogs:   true,
		CapManageSystem:      true,
		CapViewAllSignatures: true,
		CapDeleteDocuments:   true,
	},
	// DocumentOwner
	{
		CapRegisterDocuments: true,
		CapVerifyDocuments:   true,
	},
	// Auditor
	{
		CapViewAllDocuments:  true,
		CapVerifyDocuments:   true,
		CapViewAuditLogs:     true,
		CapExportAuditLogs:   true,
		CapViewAllSignatures: true,
	},
	// Guest: denies everything.
	{},
}

var roleDescriptions = map[domain.Role]string{
	domain.RoleAdmin:         "Full system access - can manage users, documents, and view all audit logs",
	domain.RoleDocumentOwner: "Can register and verify documents and manage their own documents",
	domain.RoleAuditor:       "Read-only access to all documents and audit logs for compliance",
	domain.RoleGuest:         "No privileged access",
}

type AuthzError struct {
	Code string
	Err  error
}

func (e *AuthzError) Error() string {
	if e == nil {
		return ""
	}
	return e.Code
}

func (e *AuthzError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func IsAuthzError(err error) (*AuthzError, bool) {
	var authz *AuthzError
	if errors.As(err, &authz) {
		return authz, true
	}
	return nil, false
}

// Authorizer is a pure decision function over the static matrix. It holds no
// state and performs no I/O, so it is safe to call as a synchronous guard at
// the top of every operation.
type Authorizer struct{}

func NewAuthorizer() *Authorizer {
	return &Authorizer{}
}

// Allowed is the O(1) matrix lookup. Out-of-range capabilities are denied.
func (a *Authorizer) Allowed(role domain.Role, cap Capability) bool {
	if cap < 0 || cap >= capabilityCount {
		return false
	}
	return matrix[roleIndex(role)][cap]
}

// Require gates a capability for a user and reports a denial before any side
// effect happens. Inactive users are denied everything.
func (a *Authorizer) Require(user domain.User, cap Capability) error {
	if user.Username == "" {
		return domain.ErrUnauthorized
	}
	if !user.Active {
		return &AuthzError{Code: "ACCOUNT_DEACTIVATED", Err: domain.ErrPermissionDenied}
	}
	if !a.Allowed(user.Role, cap) {
		return &AuthzError{Code: "MISSING_CAPABILITY", Err: domain.ErrPermissionDenied}
	}
	return nil
}

// RequireOwner enforces the ownership rule, orthogonal to the matrix: the
// document's owner may act on it, and Admin may act unconditionally.
func (a *Authorizer) RequireOwner(user domain.User, owner string) error {
	if user.Username == "" {
		return domain.ErrUnauthorized
	}
	if user.Role == domain.RoleAdmin {
		return nil
	}
	if user.Username == owner {
		return nil
	}
	return &AuthzError{Code: "NOT_OWNER", Err: domain.ErrPermissionDenied}
}

// Describe returns the human-readable summary of a role.
func Describe(role domain.Role) string {
	if desc, ok := roleDescriptions[role]; ok {
		return desc
	}
	return roleDescriptions[domain.RoleGuest]
}

// Permissions lists every capability with its grant for a role.
func Permissions(role domain.Role) map[string]bool {
	out := make(map[string]bool, capabilityCount)
	for c := Capability(0); c < capabilityCount; c++ {
		out[c.String()] = matrix[roleIndex(role)][c]
	}
	return out
}
