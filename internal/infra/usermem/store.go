// Package usermem is the in-memory account store used when no database
// is configured.
package usermem

import (
	"context"
	"sync"

	"docvault/internal/domain"
)

type Store struct {
	mu     sync.RWMutex
	byName map[string]domain.User
}

func New() *Store {
	return &Store{byName: map[string]domain.User{}}
}

func (s *Store) Create(ctx context.Context, user domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byName[user.Username]; ok {
		return domain.ErrUserExists
	}
	s.byName[user.Username] = user
	return nil
}

func (s *Store) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	user, ok := s.byName[username]
	if !ok {
		return nil, domain.ErrNotFound
	}
	out := user
	return &out, nil
}

func (s *Store) Update(ctx context.Context, user domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byName[user.Username]; !ok {
		return domain.ErrNotFound
	}
	s.byName[user.Username] = user
	return nil
}
