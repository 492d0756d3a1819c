package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"docvault/internal/domain"
	"docvault/internal/infra/auth/rbac"
)

const minPasswordLen = 8

// UserService owns the account lifecycle. Accounts are deactivated,
// never deleted, so audit events keep resolving to a real actor.
type UserService struct {
	Users     UserRepository
	Guard     Guard
	Tokens    TokenIssuer
	Passwords PasswordHasher
	Alerts    AlertMailbox
	Logger    *zap.Logger
	Now       func() time.Time
}

// Signup self-registers a new document owner account.
func (s *UserService) Signup(ctx context.Context, username, password string) (*domain.User, error) {
	return s.create(ctx, username, password, domain.RoleDocumentOwner)
}

// CreateUser is the admin path: any valid role may be assigned.
func (s *UserService) CreateUser(ctx context.Context, actor domain.User, username, password, role string) (*domain.User, error) {
	if err := s.Guard.Require(actor, rbac.CapCreateUsers); err != nil {
		notifyDenied(ctx, s.Alerts, actor, "create user "+username)
		return nil, err
	}
	if !domain.ValidRole(role) {
		return nil, fmt.Errorf("%w: unknown role %q", domain.ErrInvalidInput, role)
	}
	return s.create(ctx, username, password, domain.Role(role))
}

func (s *UserService) create(ctx context.Context, username, password string, role domain.Role) (*domain.User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, fmt.Errorf("%w: username is required", domain.ErrInvalidInput)
	}
	if len(password) < minPasswordLen {
		return nil, fmt.Errorf("%w: password must be at least %d characters", domain.ErrInvalidInput, minPasswordLen)
	}
	hash, err := s.Passwords.Hash(password)
	if err != nil {
		return nil, err
	}
	user := domain.User{
		Username:       username,
		CredentialHash: hash,
		Role:           role,
		Active:         true,
		CreatedAt:      s.now(),
	}
	if err := s.Users.Create(ctx, user); err != nil {
		return nil, err
	}
	return &user, nil
}

// Login checks the credential and returns a signed access token. The
// last-login timestamp is updated best effort.
func (s *UserService) Login(ctx context.Context, username, password string) (string, *domain.User, error) {
	user, err := s.Users.GetByUsername(ctx, username)
	if err != nil {
		// Same response for a missing user as for a bad password.
		return "", nil, domain.ErrUnauthorized
	}
	if !s.Passwords.Verify(user.CredentialHash, password) {
		return "", nil, domain.ErrUnauthorized
	}
	if !user.Active {
		return "", nil, domain.ErrUserInactive
	}

	now := s.now()
	user.LastLogin = &now
	if err := s.Users.Update(ctx, *user); err != nil {
		s.logger().Warn("last login update failed", zap.String("username", username), zap.Error(err))
	}

	token, err := s.Tokens.Issue(user.Username, user.Role)
	if err != nil {
		return "", nil, err
	}
	return token, user, nil
}

// ChangeRole reassigns a user's role.
func (s *UserService) ChangeRole(ctx context.Context, actor domain.User, username, role string) (*domain.User, error) {
	if err := s.Guard.Require(actor, rbac.CapManageSystem); err != nil {
		notifyDenied(ctx, s.Alerts, actor, "change role of "+username)
		return nil, err
	}
	if !domain.ValidRole(role) {
		return nil, fmt.Errorf("%w: unknown role %q", domain.ErrInvalidInput, role)
	}
	user, err := s.Users.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	user.Role = domain.Role(role)
	if err := s.Users.Update(ctx, *user); err != nil {
		return nil, err
	}
	return user, nil
}

// Deactivate soft-deletes an account. Self-deactivation is refused so an
// admin cannot lock themselves out.
func (s *UserService) Deactivate(ctx context.Context, actor domain.User, username string) error {
	if err := s.Guard.Require(actor, rbac.CapDeleteUsers); err != nil {
		notifyDenied(ctx, s.Alerts, actor, "deactivate user "+username)
		return err
	}
	if actor.Username == username {
		return fmt.Errorf("%w: cannot deactivate own account", domain.ErrInvalidInput)
	}
	user, err := s.Users.GetByUsername(ctx, username)
	if err != nil {
		return err
	}
	if !user.Active {
		return nil
	}
	user.Active = false
	if err := s.Users.Update(ctx, *user); err != nil {
		return err
	}
	if s.Alerts != nil {
		_, _ = s.Alerts.Enqueue(ctx, username, domain.Alert{
			Recipient: username,
			Type:      domain.AlertAccountDeactivated,
			Severity:  domain.SeverityWarning,
			Title:     "Account deactivated",
			Message:   "Your account was deactivated by " + actor.Username + ".",
		})
	}
	return nil
}

// ChangePassword lets an authenticated user rotate their own credential.
func (s *UserService) ChangePassword(ctx context.Context, actor domain.User, oldPassword, newPassword string) error {
	user, err := s.Users.GetByUsername(ctx, actor.Username)
	if err != nil {
		return err
	}
	if !s.Passwords.Verify(user.CredentialHash, oldPassword) {
		return domain.ErrUnauthorized
	}
	if len(newPassword) < minPasswordLen {
		return fmt.Errorf("%w: password must be at least %d characters", domain.ErrInvalidInput, minPasswordLen)
	}
	hash, err := s.Passwords.Hash(newPassword)
	if err != nil {
		return err
	}
	user.CredentialHash = hash
	return s.Users.Update(ctx, *user)
}

func (s *UserService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now().UTC()
}

func (s *UserService) logger() *zap.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return zap.NewNop()
}
