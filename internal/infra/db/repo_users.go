package db

import (
	"context"
	"errors"
	"time"

	"docvault/internal/domain"

	"gorm.io/gorm"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(ctx context.Context, user domain.User) error {
	if r.db == nil {
		return errDBUnavailable
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}
	model := userModelFromDomain(user)
	err := r.db.WithContext(ctx).Create(&model).Error
	if err != nil && errors.Is(err, gorm.ErrDuplicatedKey) {
		return domain.ErrUserExists
	}
	return err
}

func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	if r.db == nil {
		return nil, errDBUnavailable
	}
	var model UserModel
	err := r.db.WithContext(ctx).First(&model, "username = ?", username).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	user := userFromModel(model)
	return &user, nil
}

// Update rewrites the mutable fields of an existing user. Users are never
// physically deleted; deactivation flows through here.
func (r *UserRepository) Update(ctx context.Context, user domain.User) error {
	if r.db == nil {
		return errDBUnavailable
	}
	model := userModelFromDomain(user)
	res := r.db.WithContext(ctx).Model(&UserModel{}).
		Where("username = ?", user.Username).
		Select("credential_hash", "role", "active", "last_login").
		Updates(model)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func userModelFromDomain(user domain.User) UserModel {
	return UserModel{
		Username:       user.Username,
		CredentialHash: user.CredentialHash,
		Role:           string(user.Role),
		Active:         user.Active,
		CreatedAt:      user.CreatedAt,
		LastLogin:      user.LastLogin,
	}
}

func userFromModel(model UserModel) domain.User {
	return domain.User{
		Username:       model.Username,
		CredentialHash: model.CredentialHash,
		Role:           domain.ParseRole(model.Role),
		Active:         model.Active,
		CreatedAt:      model.CreatedAt,
		LastLogin:      model.LastLogin,
	}
}
