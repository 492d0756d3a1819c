// Package docmem is the in-memory document registry used when no
// database is configured. Same contract as the gorm-backed repository.
package docmem

import (
	"context"
	"sort"
	"sync"

	"docvault/internal/domain"
)

type Registry struct {
	mu      sync.RWMutex
	records map[string]domain.DocumentRecord
}

func New() *Registry {
	return &Registry{records: map[string]domain.DocumentRecord{}}
}

func (r *Registry) Upsert(ctx context.Context, rec domain.DocumentRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records[rec.Name] = rec
	return nil
}

func (r *Registry) Get(ctx context.Context, name string) (*domain.DocumentRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rec, ok := r.records[name]
	if !ok {
		return nil, domain.ErrNotFound
	}
	out := rec
	return &out, nil
}

func (r *Registry) List(ctx context.Context, filter domain.DocumentFilter) ([]domain.DocumentRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.DocumentRecord, 0, len(r.records))
	for _, rec := range r.records {
		if filter.Owner != "" && rec.Owner != filter.Owner {
			continue
		}
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].RegisteredAt.After(out[j].RegisteredAt)
	})
	return out, nil
}

func (r *Registry) Delete(ctx context.Context, name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.records[name]; !ok {
		return domain.ErrNotFound
	}
	delete(r.records, name)
	return nil
}
