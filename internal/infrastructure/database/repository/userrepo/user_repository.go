package userrepo

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"todo-server/services/todo-api/internal/domain/user"
	"todo-server/services/todo-api/internal/infrastructure/database/dbschema"
	"todo-server/services/todo-api/internal/utils/platformerrors"
)

type UserGormRepository struct {
	db *gorm.DB
}

var _ user.UserRepository = (*UserGormRepository)(nil)

func NewUserGormRepository(db *gorm.DB) user.UserRepository {
	return &UserGormRepository{db: db}
}

func (repo *UserGormRepository) Create(ctx context.Context, u *user.User) error {
	entity := dbschema.NewSchemaUser(u)
	if err := repo.db.WithContext(ctx).Create(entity).Error; err != nil {
		return platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to create user",
			err,
			"e9f0a1b2-c3d4-4e5f-8a6b-7c8d9e0f1a2c",
		)
	}
	u.ID = entity.ID
	u.CreatedAt = entity.CreatedAt
	u.UpdatedAt = entity.UpdatedAt
	return nil
}

func (repo *UserGormRepository) FindByEmail(ctx context.Context, email string) (*user.User, error) {
	var entity dbschema.User
	err := repo.db.WithContext(ctx).
		Where("email = ?", email).
		First(&entity).
		Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeNotFound,
			"user not found",
			nil,
			"a1b2c3d4-e5f6-4a7b-8c8d-9e0f1a2b3c4e",
		)
	}
	if err != nil {
		return nil, platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to find user by email",
			err,
			"c3d4e5f6-a7b8-4c9d-8e0f-1a2b3c4d5e60",
		)
	}
	return entity.EtoD(), nil
}

func (repo *UserGormRepository) FindByID(ctx context.Context, id uint) (*user.User, error) {
	var entity dbschema.User
	err := repo.db.WithContext(ctx).
		Where("id = ?", id).
		First(&entity).
		Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeNotFound,
			"user not found",
			nil,
			"e5f6a7b8-c9d0-4e1f-8a2b-3c4d5e6f7a8c",
		)
	}
	if err != nil {
		return nil, platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to find user by ID",
			err,
			"a7b8c9d0-e1f2-4a3b-8c4d-5e6f7a8b9c0e",
		)
	}
	return entity.EtoD(), nil
}
