package alertmem

import (
	"context"
	"sync"
	"time"

	"docvault/internal/domain"

	"github.com/google/uuid"
)

// Mailbox keeps per-recipient alert queues in memory. Each recipient has its
// own lock so concurrent appends for the same recipient serialize without
// losing entries when the cap is enforced, while unrelated recipients do not
// contend.
type Mailbox struct {
	mu    sync.RWMutex
	boxes map[string]*box
	clock func() time.Time
}

type box struct {
	mu     sync.Mutex
	alerts []domain.Alert // oldest first
}

func New() *Mailbox {
	return &Mailbox{
		boxes: make(map[string]*box),
		clock: time.Now,
	}
}

func NewWithClock(clock func() time.Time) *Mailbox {
	if clock == nil {
		clock = time.Now
	}
	return &Mailbox{
		boxes: make(map[string]*box),
		clock: clock,
	}
}

func (m *Mailbox) Enqueue(ctx context.Context, recipient string, alert domain.Alert) (domain.Alert, error) {
	if err := ctx.Err(); err != nil {
		return domain.Alert{}, err
	}
	if recipient == "" {
		return domain.Alert{}, domain.ErrInvalidInput
	}
	if alert.ID == "" {
		alert.ID = uuid.NewString()
	}
	if alert.CreatedAt.IsZero() {
		alert.CreatedAt = m.clock().UTC()
	}
	alert.Recipient = recipient

	b := m.ensureBox(recipient)
	b.mu.Lock()
	defer b.mu.Unlock()
	b.alerts = append(b.alerts, alert)
	if excess := len(b.alerts) - domain.MailboxCapacity; excess > 0 {
		// Oldest dropped first.
		b.alerts = append([]domain.Alert(nil), b.alerts[excess:]...)
	}
	return alert, nil
}

// List returns the recipient's alerts, newest first.
func (m *Mailbox) List(ctx context.Context, recipient string, unreadOnly bool) ([]domain.Alert, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	b := m.boxes[recipient]
	m.mu.RUnlock()
	if b == nil {
		return nil, nil
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]domain.Alert, 0, len(b.alerts))
	for i := len(b.alerts) - 1; i >= 0; i-- {
		if unreadOnly && b.alerts[i].Read {
			continue
		}
		out = append(out, b.alerts[i])
	}
	return out, nil
}

// MarkRead is idempotent: marking an already-read alert succeeds unchanged.
func (m *Mailbox) MarkRead(ctx context.Context, recipient, alertID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.RLock()
	b := m.boxes[recipient]
	m.mu.RUnlock()
	if b == nil {
		return domain.ErrNotFound
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	for i := range b.alerts {
		if b.alerts[i].ID == alertID {
			b.alerts[i].Read = true
			return nil
		}
	}
	return domain.ErrNotFound
}

func (m *Mailbox) MarkAllRead(ctx context.Context, recipient string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	m.mu.RLock()
	b := m.boxes[recipient]
	m.mu.RUnlock()
	if b == nil {
		return 0, nil
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	count := 0
	for i := range b.alerts {
		if !b.alerts[i].Read {
			b.alerts[i].Read = true
			count++
		}
	}
	return count, nil
}

func (m *Mailbox) Clear(ctx context.Context, recipient string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	m.mu.RLock()
	b := m.boxes[recipient]
	m.mu.RUnlock()
	if b == nil {
		return 0, nil
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	count := len(b.alerts)
	b.alerts = nil
	return count, nil
}

func (m *Mailbox) ensureBox(recipient string) *box {
	m.mu.RLock()
	b := m.boxes[recipient]
	m.mu.RUnlock()
	if b != nil {
		return b
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if b = m.boxes[recipient]; b == nil {
		b = &box{}
		m.boxes[recipient] = b
	}
	return b
}
