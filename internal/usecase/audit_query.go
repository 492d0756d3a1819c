package usecase

import (
	"context"

	"docvault/internal/domain"
	"docvault/internal/infra/auth/rbac"
)

const defaultAuditLimit = 500

// AuditQuery is the read surface over the audit log. Results come back
// most recent first; listing and export are gated separately.
type AuditQuery struct {
	Guard    Guard
	Audit    AuditLog
	Alerts   AlertMailbox
	MaxLimit int
}

func (q *AuditQuery) Recent(ctx context.Context, actor domain.User, document string, limit int) ([]domain.AuditEvent, error) {
	if err := q.Guard.Require(actor, rbac.CapViewAuditLogs); err != nil {
		notifyDenied(ctx, q.Alerts, actor, "view audit logs")
		return nil, err
	}
	return q.Audit.Recent(ctx, document, q.clamp(limit))
}

// Export returns the full retained window for offline analysis.
func (q *AuditQuery) Export(ctx context.Context, actor domain.User, document string) ([]domain.AuditEvent, error) {
	if err := q.Guard.Require(actor, rbac.CapExportAuditLogs); err != nil {
		notifyDenied(ctx, q.Alerts, actor, "export audit logs")
		return nil, err
	}
	return q.Audit.Recent(ctx, document, q.max())
}

func (q *AuditQuery) clamp(limit int) int {
	max := q.max()
	if limit <= 0 || limit > max {
		return max
	}
	return limit
}

func (q *AuditQuery) max() int {
	if q.MaxLimit > 0 {
		return q.MaxLimit
	}
	return defaultAuditLimit
}
