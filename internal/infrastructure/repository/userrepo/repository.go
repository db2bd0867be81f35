package userrepo

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"r2-dashboard/internal/domain/user"
	"r2-dashboard/internal/infrastructure/database/entities"
	"r2-dashboard/internal/utils/platformerrors"
)

// Repository handles account persistence.
type Repository struct {
	db *gorm.DB
}

var _ user.Repository = (*Repository)(nil)

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Create(ctx context.Context, u *user.User) error {
	entity := toEntity(u)
	if err := r.db.WithContext(ctx).Create(&entity).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeConflict,
				"email is already registered", err, "a1d7e3f9-6b20-4c85-9e4a-0f3b8d2c6e71")
		}
		return platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeDatabaseError,
			"failed to create user", err, "c4e8b2a6-1f93-4d07-a5c2-7e0b9d3f1a58")
	}
	u.CreatedAt, u.UpdatedAt = entity.CreatedAt, entity.UpdatedAt
	return nil
}

func (r *Repository) FindByID(ctx context.Context, id string) (*user.User, error) {
	var entity entities.User
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&entity).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeNotFound,
				"user not found", err, "e9f1c3b7-40a2-4d6e-8b5f-2a7c0e4d9b16")
		}
		return nil, platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeDatabaseError,
			"failed to get user by id", err, "5b0d8a2e-7c14-4f39-b6e8-3d1a9f0c7e52")
	}
	return mapEntity(entity), nil
}

// FindByEmail returns nil without error when no account uses email.
func (r *Repository) FindByEmail(ctx context.Context, email string) (*user.User, error) {
	var entity entities.User
	err := r.db.WithContext(ctx).Where("LOWER(email) = ?", user.NormalizeEmail(email)).First(&entity).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeDatabaseError,
			"failed to find user by email", err, "8f2a6c0e-d3b5-4e71-9a04-c6e2b8f1d735")
	}
	return mapEntity(entity), nil
}

func (r *Repository) Update(ctx context.Context, u *user.User) error {
	entity := toEntity(u)
	result := r.db.WithContext(ctx).Model(&entities.User{}).Where("id = ?", u.ID).Updates(map[string]any{
		"name":          entity.Name,
		"email":         entity.Email,
		"password_hash": entity.PasswordHash,
		"role":          entity.Role,
	})
	if result.Error != nil {
		return platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeDatabaseError,
			"failed to update user", result.Error, "2c9e5a1f-8b37-4d60-a4f2-e7b0c3d6a918")
	}
	if result.RowsAffected == 0 {
		return platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeNotFound,
			"user not found", nil, "d6a3f0b8-25e9-4c17-b8d1-4f7e2a0c9b63")
	}
	return nil
}

func (r *Repository) Delete(ctx context.Context, id string) error {
	if err := r.db.WithContext(ctx).Where("id = ?", id).Delete(&entities.User{}).Error; err != nil {
		return platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeDatabaseError,
			"failed to delete user", err, "71b4e9c2-0a5d-4f83-96e7-b2c8d1f4a05e")
	}
	return nil
}

// Count returns the number of accounts.
func (r *Repository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&entities.User{}).Count(&n).Error; err != nil {
		return 0, platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeDatabaseError,
			"failed to count users", err, "f03c7d9a-6e12-4b58-a1d4-9e5b0c8f2d76")
	}
	return n, nil
}

func toEntity(u *user.User) entities.User {
	return entities.User{
		ID:           u.ID,
		Name:         u.Name,
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
		Role:         u.Role,
	}
}

func mapEntity(entity entities.User) *user.User {
	return &user.User{
		ID:           entity.ID,
		Name:         entity.Name,
		Email:        entity.Email,
		PasswordHash: entity.PasswordHash,
		Role:         entity.Role,
		CreatedAt:    entity.CreatedAt,
		UpdatedAt:    entity.UpdatedAt,
	}
}
