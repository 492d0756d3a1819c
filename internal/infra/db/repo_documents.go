package db

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"docvault/internal/domain"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DocumentRepository is the registry: one live record per logical name,
// upserts overwrite unconditionally (last write wins).
type DocumentRepository struct {
	db *gorm.DB
}

func NewDocumentRepository(db *gorm.DB) *DocumentRepository {
	return &DocumentRepository{db: db}
}

func (r *DocumentRepository) Upsert(ctx context.Context, rec domain.DocumentRecord) error {
	if r.db == nil {
		return errDBUnavailable
	}
	if rec.Name == "" {
		return domain.ErrInvalidInput
	}
	if rec.RegisteredAt.IsZero() {
		rec.RegisteredAt = time.Now().UTC()
	}
	var sigJSON []byte
	if rec.Signature != nil {
		var err error
		sigJSON, err = json.Marshal(rec.Signature)
		if err != nil {
			return err
		}
	}
	model := DocumentModel{
		Name:          rec.Name,
		Digest:        rec.Digest,
		Owner:         rec.Owner,
		SignatureJSON: sigJSON,
		RegisteredAt:  rec.RegisteredAt,
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		UpdateAll: true,
	}).Create(&model).Error
}

func (r *DocumentRepository) Get(ctx context.Context, name string) (*domain.DocumentRecord, error) {
	if r.db == nil {
		return nil, errDBUnavailable
	}
	var model DocumentModel
	err := r.db.WithContext(ctx).First(&model, "name = ?", name).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return recordFromModel(model)
}

func (r *DocumentRepository) List(ctx context.Context, filter domain.DocumentFilter) ([]domain.DocumentRecord, error) {
	if r.db == nil {
		return nil, errDBUnavailable
	}
	q := r.db.WithContext(ctx).Order("registered_at DESC")
	if filter.Owner != "" {
		q = q.Where("owner = ?", filter.Owner)
	}
	var models []DocumentModel
	if err := q.Find(&models).Error; err != nil {
		return nil, err
	}
	out := make([]domain.DocumentRecord, 0, len(models))
	for _, m := range models {
		rec, err := recordFromModel(m)
		if err != nil {
			return nil, err
		}
		out = append(out, *rec)
	}
	return out, nil
}

func (r *DocumentRepository) Delete(ctx context.Context, name string) error {
	if r.db == nil {
		return errDBUnavailable
	}
	res := r.db.WithContext(ctx).Delete(&DocumentModel{}, "name = ?", name)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func recordFromModel(model DocumentModel) (*domain.DocumentRecord, error) {
	rec := domain.DocumentRecord{
		Name:         model.Name,
		Digest:       model.Digest,
		Owner:        model.Owner,
		RegisteredAt: model.RegisteredAt,
	}
	if len(model.SignatureJSON) > 0 {
		var sig domain.SignatureBlock
		if err := json.Unmarshal(model.SignatureJSON, &sig); err != nil {
			return nil, err
		}
		rec.Signature = &sig
	}
	return &rec, nil
}
