package usecase

import (
	"context"
	"io"

	"docvault/internal/domain"
	"docvault/internal/infra/auth/rbac"
)

type DocumentRepository interface {
	Upsert(ctx context.Context, rec domain.DocumentRecord) error
	Get(ctx context.Context, name string) (*domain.DocumentRecord, error)
	List(ctx context.Context, filter domain.DocumentFilter) ([]domain.DocumentRecord, error)
	Delete(ctx context.Context, name string) error
}

type UserRepository interface {
	Create(ctx context.Context, user domain.User) error
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	Update(ctx context.Context, user domain.User) error
}

type AuditLog interface {
	Append(ctx context.Context, event domain.AuditEvent) (domain.AuditEvent, error)
	Recent(ctx context.Context, document string, limit int) ([]domain.AuditEvent, error)
}

type AlertMailbox interface {
	Enqueue(ctx context.Context, recipient string, alert domain.Alert) (domain.Alert, error)
	List(ctx context.Context, recipient string, unreadOnly bool) ([]domain.Alert, error)
	MarkRead(ctx context.Context, recipient, alertID string) error
	MarkAllRead(ctx context.Context, recipient string) (int, error)
	Clear(ctx context.Context, recipient string) (int, error)
}

type ObjectStore interface {
	Put(ctx context.Context, name string, r io.Reader) error
	Get(ctx context.Context, name string) (io.ReadCloser, error)
	Delete(ctx context.Context, name string) error
}

type Notifier interface {
	Notify(ctx context.Context, alert domain.Alert) error
}

type SignatureService interface {
	Sign(ctx context.Context, digest string, signer string) (domain.SignatureBlock, error)
	Verify(ctx context.Context, digest string, block domain.SignatureBlock) (bool, error)
	Secure() bool
}

type Fingerprinter interface {
	Digest(r io.Reader) (string, error)
}

// Guard is the synchronous authorization gate checked before any side
// effect. rbac.Authorizer satisfies it.
type Guard interface {
	Allowed(role domain.Role, cap rbac.Capability) bool
	Require(user domain.User, cap rbac.Capability) error
	RequireOwner(user domain.User, owner string) error
}

type TokenIssuer interface {
	Issue(username string, role domain.Role) (string, error)
}

type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(hash, password string) bool
}

// AlertPolicy selects who receives tamper and invalid-signature alerts.
type AlertPolicy string

const (
	AlertOwner  AlertPolicy = "owner"
	AlertCaller AlertPolicy = "caller"
	AlertBoth   AlertPolicy = "both"
)

func ParseAlertPolicy(raw string) (AlertPolicy, bool) {
	switch AlertPolicy(raw) {
	case AlertOwner, AlertCaller, AlertBoth:
		return AlertPolicy(raw), true
	case "":
		return AlertOwner, true
	}
	return AlertOwner, false
}

// notifyDenied drops a warning into the actor's own mailbox after a
// privileged action was refused. Best effort: a full or broken mailbox
// never changes the denial.
func notifyDenied(ctx context.Context, alerts AlertMailbox, actor domain.User, action string) {
	if alerts == nil || actor.Username == "" {
		return
	}
	_, _ = alerts.Enqueue(ctx, actor.Username, domain.NewUnauthorizedAlert(actor.Username, action))
}
