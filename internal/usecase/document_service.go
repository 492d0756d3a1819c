package usecase

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"docvault/internal/domain"
	"docvault/internal/infra/auth/rbac"
)

// DocumentService covers the read and delete side of the registry.
// Visibility follows the ownership rule: holders of the view-all
// capability see everything, everyone else sees their own records.
type DocumentService struct {
	Guard    Guard
	Registry DocumentRepository
	Blobs    ObjectStore // optional
	Alerts   AlertMailbox
	Logger   *zap.Logger
}

func (s *DocumentService) List(ctx context.Context, actor domain.User) ([]domain.DocumentRecord, error) {
	need := rbac.CapViewAllDocuments
	filter := domain.DocumentFilter{}
	if !s.Guard.Allowed(actor.Role, rbac.CapViewAllDocuments) {
		need = rbac.CapRegisterDocuments
		filter.Owner = actor.Username
	}
	if err := s.Guard.Require(actor, need); err != nil {
		notifyDenied(ctx, s.Alerts, actor, "list documents")
		return nil, err
	}
	return s.Registry.List(ctx, filter)
}

func (s *DocumentService) Get(ctx context.Context, actor domain.User, name string) (*domain.DocumentRecord, error) {
	record, err := s.Registry.Get(ctx, name)
	if err != nil {
		return nil, err
	}
	if actor.Active && s.Guard.Allowed(actor.Role, rbac.CapViewAllDocuments) {
		return record, nil
	}
	if err := s.Guard.RequireOwner(actor, record.Owner); err != nil {
		notifyDenied(ctx, s.Alerts, actor, "view "+name)
		return nil, err
	}
	return record, nil
}

// Delete removes a record, allowed to the owner or an admin. The stored
// payload is removed best effort after the registry row.
func (s *DocumentService) Delete(ctx context.Context, actor domain.User, name string) error {
	record, err := s.Registry.Get(ctx, name)
	if err != nil {
		return err
	}
	if err := s.Guard.RequireOwner(actor, record.Owner); err != nil {
		notifyDenied(ctx, s.Alerts, actor, "delete "+name)
		return err
	}
	if err := s.Registry.Delete(ctx, name); err != nil {
		return err
	}
	if s.Blobs != nil {
		if err := s.Blobs.Delete(ctx, name); err != nil && !errors.Is(err, domain.ErrNotFound) {
			s.logger().Warn("payload delete failed", zap.String("document", name), zap.Error(err))
		}
	}
	return nil
}

func (s *DocumentService) logger() *zap.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return zap.NewNop()
}
