//go:build integration
// +build integration

package alertredis

import (
	"context"
	"fmt"
	"os"
	"testing"

	"docvault/internal/domain"
)

func setupMailbox(t *testing.T) *Mailbox {
	t.Helper()
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set")
	}
	m, err := New(addr, os.Getenv("REDIS_PASSWORD"), 0)
	if err != nil {
		t.Fatalf("new mailbox: %v", err)
	}
	if _, err := m.Clear(context.Background(), "it-alice"); err != nil {
		t.Fatalf("clear: %v", err)
	}
	return m
}

func TestEnqueue_CapEnforcedInRedis(t *testing.T) {
	m := setupMailbox(t)
	for i := 0; i < 150; i++ {
		_, err := m.Enqueue(context.Background(), "it-alice", domain.Alert{
			ID:    fmt.Sprintf("alert-%03d", i),
			Title: "x",
		})
		if err != nil {
			t.Fatalf("enqueue %d: %v", i, err)
		}
	}
	alerts, err := m.List(context.Background(), "it-alice", false)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(alerts) != domain.MailboxCapacity {
		t.Fatalf("expected %d alerts, got %d", domain.MailboxCapacity, len(alerts))
	}
	if alerts[0].ID != "alert-149" {
		t.Fatalf("expected newest first, got %s", alerts[0].ID)
	}
}

func TestClear_ReturnsDroppedCount(t *testing.T) {
	m := setupMailbox(t)
	for i := 0; i < 3; i++ {
		if _, err := m.Enqueue(context.Background(), "it-alice", domain.Alert{Title: "x"}); err != nil {
			t.Fatalf("enqueue %d: %v", i, err)
		}
	}
	dropped, err := m.Clear(context.Background(), "it-alice")
	if err != nil {
		t.Fatalf("clear: %v", err)
	}
	if dropped != 3 {
		t.Fatalf("expected 3 dropped, got %d", dropped)
	}
	dropped, err = m.Clear(context.Background(), "it-alice")
	if err != nil {
		t.Fatalf("clear empty: %v", err)
	}
	if dropped != 0 {
		t.Fatalf("expected empty mailbox to clear 0, got %d", dropped)
	}
}

func TestMarkRead_IdempotentInRedis(t *testing.T) {
	m := setupMailbox(t)
	stored, err := m.Enqueue(context.Background(), "it-alice", domain.Alert{Title: "x"})
	if err != nil {
		t.Fatalf("enqueue: %v", err)
	}
	if err := m.MarkRead(context.Background(), "it-alice", stored.ID); err != nil {
		t.Fatalf("mark read: %v", err)
	}
	if err := m.MarkRead(context.Background(), "it-alice", stored.ID); err != nil {
		t.Fatalf("mark read again: %v", err)
	}
	if err := m.MarkRead(context.Background(), "it-alice", "missing"); err != domain.ErrNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}
