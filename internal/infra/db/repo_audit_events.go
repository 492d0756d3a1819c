package db

import (
	"context"
	"time"

	"docvault/internal/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AuditEventRepository is append-only: rows are created, queried, and never
// updated or deleted.
type AuditEventRepository struct {
	db *gorm.DB
}

func NewAuditEventRepository(db *gorm.DB) *AuditEventRepository {
	return &AuditEventRepository{db: db}
}

func (r *AuditEventRepository) Append(ctx context.Context, event domain.AuditEvent) (domain.AuditEvent, error) {
	if r.db == nil {
		return domain.AuditEvent{}, errDBUnavailable
	}
	if event.Action == "" {
		return domain.AuditEvent{}, domain.ErrInvalidInput
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now().UTC()
	}
	model := AuditEventModel{
		ID:        event.ID,
		Document:  event.Document,
		Action:    string(event.Action),
		Outcome:   event.Outcome,
		Actor:     event.Actor,
		CreatedAt: event.CreatedAt,
	}
	if err := r.db.WithContext(ctx).Create(&model).Error; err != nil {
		return domain.AuditEvent{}, err
	}
	return event, nil
}

// Recent returns events most-recent-first, optionally filtered by document.
func (r *AuditEventRepository) Recent(ctx context.Context, document string, limit int) ([]domain.AuditEvent, error) {
	if r.db == nil {
		return nil, errDBUnavailable
	}
	q := r.db.WithContext(ctx).Order("created_at DESC")
	if document != "" {
		q = q.Where("document = ?", document)
	}
	if limit > 0 {
		q = q.Limit(limit)
	}
	var models []AuditEventModel
	if err := q.Find(&models).Error; err != nil {
		return nil, err
	}
	out := make([]domain.AuditEvent, 0, len(models))
	for _, m := range models {
		out = append(out, domain.AuditEvent{
			ID:        m.ID,
			Document:  m.Document,
			Action:    domain.AuditAction(m.Action),
			Outcome:   m.Outcome,
			Actor:     m.Actor,
			CreatedAt: m.CreatedAt,
		})
	}
	return out, nil
}
