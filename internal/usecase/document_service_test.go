package usecase

import (
	"context"
	"errors"
	"testing"

	"docvault/internal/domain"
	"docvault/internal/infra/auth/rbac"
)

func newDocumentFixture() (*DocumentService, *fakeRegistry, *fakeStore) {
	registry := newFakeRegistry()
	store := newFakeStore()
	registry.records["a.pdf"] = domain.DocumentRecord{Name: "a.pdf", Digest: "d1", Owner: "alice"}
	registry.records["b.pdf"] = domain.DocumentRecord{Name: "b.pdf", Digest: "d2", Owner: "bob"}
	store.blobs["a.pdf"] = []byte("payload-a")
	svc := &DocumentService{
		Guard:    rbac.NewAuthorizer(),
		Registry: registry,
		Blobs:    store,
		Alerts:   newFakeMailbox(),
	}
	return svc, registry, store
}

func TestDocumentService_ListScopedByRole(t *testing.T) {
	svc, _, _ := newDocumentFixture()

	own, err := svc.List(context.Background(), activeUser("alice", domain.RoleDocumentOwner))
	if err != nil {
		t.Fatalf("list as owner: %v", err)
	}
	if len(own) != 1 || own[0].Name != "a.pdf" {
		t.Fatalf("owner must only see own records, got %+v", own)
	}

	all, err := svc.List(context.Background(), activeUser("carol", domain.RoleAuditor))
	if err != nil {
		t.Fatalf("list as auditor: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("auditor must see every record, got %d", len(all))
	}

	if _, err := svc.List(context.Background(), activeUser("eve", domain.RoleGuest)); !errors.Is(err, domain.ErrPermissionDenied) {
		t.Fatalf("expected guest denial, got %v", err)
	}

	inactive := activeUser("carol", domain.RoleAuditor)
	inactive.Active = false
	if _, err := svc.List(context.Background(), inactive); !errors.Is(err, domain.ErrPermissionDenied) {
		t.Fatalf("expected inactive auditor denial, got %v", err)
	}
}

func TestDocumentService_GetHonorsOwnership(t *testing.T) {
	svc, _, _ := newDocumentFixture()

	if _, err := svc.Get(context.Background(), activeUser("alice", domain.RoleDocumentOwner), "a.pdf"); err != nil {
		t.Fatalf("owner get: %v", err)
	}
	if _, err := svc.Get(context.Background(), activeUser("alice", domain.RoleDocumentOwner), "b.pdf"); !errors.Is(err, domain.ErrPermissionDenied) {
		t.Fatalf("expected NOT_OWNER denial, got %v", err)
	}
	if _, err := svc.Get(context.Background(), activeUser("root", domain.RoleAdmin), "b.pdf"); err != nil {
		t.Fatalf("admin get: %v", err)
	}
	if _, err := svc.Get(context.Background(), activeUser("carol", domain.RoleAuditor), "b.pdf"); err != nil {
		t.Fatalf("auditor get: %v", err)
	}
	if _, err := svc.Get(context.Background(), activeUser("alice", domain.RoleDocumentOwner), "ghost.pdf"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestDocumentService_DeleteOwnerOrAdmin(t *testing.T) {
	svc, registry, store := newDocumentFixture()

	if err := svc.Delete(context.Background(), activeUser("bob", domain.RoleDocumentOwner), "a.pdf"); !errors.Is(err, domain.ErrPermissionDenied) {
		t.Fatalf("expected NOT_OWNER denial, got %v", err)
	}
	if err := svc.Delete(context.Background(), activeUser("alice", domain.RoleDocumentOwner), "a.pdf"); err != nil {
		t.Fatalf("owner delete: %v", err)
	}
	if _, ok := registry.records["a.pdf"]; ok {
		t.Fatal("record not deleted")
	}
	if _, ok := store.blobs["a.pdf"]; ok {
		t.Fatal("payload not deleted")
	}
	if err := svc.Delete(context.Background(), activeUser("root", domain.RoleAdmin), "b.pdf"); err != nil {
		t.Fatalf("admin delete: %v", err)
	}
}
