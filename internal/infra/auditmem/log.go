package auditmem

import (
	"context"
	"sync"
	"time"

	"docvault/internal/domain"

	"github.com/google/uuid"
)

// Log is an append-only in-memory audit trail, used in no-db mode and in
// tests. Events are never reordered, coalesced, mutated, or deleted.
type Log struct {
	mu     sync.RWMutex
	events []domain.AuditEvent
	clock  func() time.Time
}

func New() *Log {
	return &Log{clock: time.Now}
}

func NewWithClock(clock func() time.Time) *Log {
	if clock == nil {
		clock = time.Now
	}
	return &Log{clock: clock}
}

func (l *Log) Append(ctx context.Context, event domain.AuditEvent) (domain.AuditEvent, error) {
	if err := ctx.Err(); err != nil {
		return domain.AuditEvent{}, err
	}
	if event.Action == "" {
		return domain.AuditEvent{}, domain.ErrInvalidInput
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = l.clock().UTC()
	}
	l.mu.Lock()
	l.events = append(l.events, event)
	l.mu.Unlock()
	return event, nil
}

// Recent returns events most-recent-first, optionally filtered by document.
func (l *Log) Recent(ctx context.Context, document string, limit int) ([]domain.AuditEvent, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]domain.AuditEvent, 0, limit)
	for i := len(l.events) - 1; i >= 0; i-- {
		if document != "" && l.events[i].Document != document {
			continue
		}
		out = append(out, l.events[i])
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}
