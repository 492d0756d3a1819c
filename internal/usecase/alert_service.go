package usecase

import (
	"context"

	"docvault/internal/domain"
)

// AlertService exposes a user's own mailbox. There is no capability for
// it: every active account may read what was addressed to it, and only
// that.
type AlertService struct {
	Mailbox AlertMailbox
}

func (s *AlertService) List(ctx context.Context, actor domain.User, unreadOnly bool) ([]domain.Alert, error) {
	if err := checkActive(actor); err != nil {
		return nil, err
	}
	return s.Mailbox.List(ctx, actor.Username, unreadOnly)
}

func (s *AlertService) MarkRead(ctx context.Context, actor domain.User, alertID string) error {
	if err := checkActive(actor); err != nil {
		return err
	}
	return s.Mailbox.MarkRead(ctx, actor.Username, alertID)
}

func (s *AlertService) MarkAllRead(ctx context.Context, actor domain.User) (int, error) {
	if err := checkActive(actor); err != nil {
		return 0, err
	}
	return s.Mailbox.MarkAllRead(ctx, actor.Username)
}

func (s *AlertService) Clear(ctx context.Context, actor domain.User) (int, error) {
	if err := checkActive(actor); err != nil {
		return 0, err
	}
	return s.Mailbox.Clear(ctx, actor.Username)
}

func checkActive(actor domain.User) error {
	if actor.Username == "" {
		return domain.ErrUnauthorized
	}
	if !actor.Active {
		return domain.ErrUserInactive
	}
	return nil
}
