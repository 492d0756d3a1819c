package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"docvault/internal/domain"
	"docvault/internal/infra/auth/rbac"
)

func newAuditFixture(t *testing.T) (*AuditQuery, *fakeAudit) {
	t.Helper()
	audit := &fakeAudit{}
	base := time.Date(2026, 5, 1, 8, 0, 0, 0, time.UTC)
	for i, doc := range []string{"a.pdf", "b.pdf", "a.pdf"} {
		if _, err := audit.Append(context.Background(), domain.AuditEvent{
			Document:  doc,
			Action:    domain.AuditActionVerify,
			Outcome:   string(domain.OutcomeAuthentic),
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}); err != nil {
			t.Fatalf("seed audit: %v", err)
		}
	}
	return &AuditQuery{
		Guard:  rbac.NewAuthorizer(),
		Audit:  audit,
		Alerts: newFakeMailbox(),
	}, audit
}

func TestAuditQuery_RecentIsGatedAndOrdered(t *testing.T) {
	q, _ := newAuditFixture(t)

	events, err := q.Recent(context.Background(), activeUser("carol", domain.RoleAuditor), "", 0)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(events) != 3 {
		t.Fatalf("expected 3 events, got %d", len(events))
	}
	if !events[0].CreatedAt.After(events[1].CreatedAt) {
		t.Fatal("expected most-recent-first ordering")
	}

	filtered, err := q.Recent(context.Background(), activeUser("carol", domain.RoleAuditor), "a.pdf", 10)
	if err != nil {
		t.Fatalf("filtered recent: %v", err)
	}
	if len(filtered) != 2 {
		t.Fatalf("expected 2 events for a.pdf, got %d", len(filtered))
	}

	if _, err := q.Recent(context.Background(), activeUser("alice", domain.RoleDocumentOwner), "", 0); !errors.Is(err, domain.ErrPermissionDenied) {
		t.Fatalf("expected owner denial, got %v", err)
	}
}

func TestAuditQuery_ClampsLimit(t *testing.T) {
	q, _ := newAuditFixture(t)
	q.MaxLimit = 2

	events, err := q.Recent(context.Background(), activeUser("carol", domain.RoleAuditor), "", 500)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("expected the limit to clamp at 2, got %d", len(events))
	}
}

func TestAuditQuery_ExportGatedSeparately(t *testing.T) {
	q, _ := newAuditFixture(t)

	if _, err := q.Export(context.Background(), activeUser("carol", domain.RoleAuditor), ""); err != nil {
		t.Fatalf("auditor export: %v", err)
	}
	if _, err := q.Export(context.Background(), activeUser("alice", domain.RoleDocumentOwner), ""); !errors.Is(err, domain.ErrPermissionDenied) {
		t.Fatalf("expected export denial, got %v", err)
	}
}
