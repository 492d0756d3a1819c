package docmem

import (
	"context"
	"errors"
	"testing"
	"time"

	"docvault/internal/domain"
)

func TestRegistry_LastWriteWins(t *testing.T) {
	reg := New()
	ctx := context.Background()
	base := time.Date(2026, 5, 1, 8, 0, 0, 0, time.UTC)

	if err := reg.Upsert(ctx, domain.DocumentRecord{Name: "a.pdf", Digest: "d1", Owner: "alice", RegisteredAt: base}); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if err := reg.Upsert(ctx, domain.DocumentRecord{Name: "a.pdf", Digest: "d2", Owner: "bob", RegisteredAt: base.Add(time.Minute)}); err != nil {
		t.Fatalf("upsert overwrite: %v", err)
	}

	got, err := reg.Get(ctx, "a.pdf")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Digest != "d2" || got.Owner != "bob" {
		t.Fatalf("expected last write, got %+v", got)
	}
}

func TestRegistry_ListFiltersAndOrders(t *testing.T) {
	reg := New()
	ctx := context.Background()
	base := time.Date(2026, 5, 1, 8, 0, 0, 0, time.UTC)
	reg.Upsert(ctx, domain.DocumentRecord{Name: "a.pdf", Owner: "alice", RegisteredAt: base})
	reg.Upsert(ctx, domain.DocumentRecord{Name: "b.pdf", Owner: "bob", RegisteredAt: base.Add(time.Minute)})
	reg.Upsert(ctx, domain.DocumentRecord{Name: "c.pdf", Owner: "alice", RegisteredAt: base.Add(2 * time.Minute)})

	all, err := reg.List(ctx, domain.DocumentFilter{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 3 || all[0].Name != "c.pdf" {
		t.Fatalf("expected newest-first listing, got %+v", all)
	}

	mine, err := reg.List(ctx, domain.DocumentFilter{Owner: "alice"})
	if err != nil {
		t.Fatalf("filtered list: %v", err)
	}
	if len(mine) != 2 {
		t.Fatalf("expected 2 records for alice, got %d", len(mine))
	}
}

func TestRegistry_DeleteMissing(t *testing.T) {
	reg := New()
	if err := reg.Delete(context.Background(), "ghost.pdf"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}
