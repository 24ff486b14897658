package taskrepo

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"todo-server/services/todo-api/internal/domain/task"
	"todo-server/services/todo-api/internal/infrastructure/database/dbschema"
	"todo-server/services/todo-api/internal/utils/functional"
	"todo-server/services/todo-api/internal/utils/platformerrors"
)

type TaskGormRepository struct {
	db *gorm.DB
}

var _ task.TaskRepository = (*TaskGormRepository)(nil)

func NewTaskGormRepository(db *gorm.DB) task.TaskRepository {
	return &TaskGormRepository{db: db}
}

func (repo *TaskGormRepository) Create(ctx context.Context, t *task.Task) error {
	entity := dbschema.NewSchemaTask(t)
	if err := repo.db.WithContext(ctx).Create(entity).Error; err != nil {
		return platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to create task",
			err,
			"c1d2e3f4-a5b6-4c7d-8e9f-0a1b2c3d4e5f",
		)
	}
	t.ID = entity.ID
	t.CreatedAt = entity.CreatedAt
	t.UpdatedAt = entity.UpdatedAt
	return nil
}

func (repo *TaskGormRepository) FindByFilter(ctx context.Context, filter task.TaskFilter) ([]*task.Task, error) {
	var entities []dbschema.Task
	query := repo.applyFilter(repo.db.WithContext(ctx), filter)
	if err := query.Order("created_at ASC, id ASC").Find(&entities).Error; err != nil {
		return nil, platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to list tasks",
			err,
			"e3f4a5b6-c7d8-4e9f-8a0b-1c2d3e4f5a6b",
		)
	}

	return functional.Map(entities, func(e dbschema.Task) *task.Task {
		return e.EtoD()
	}), nil
}

func (repo *TaskGormRepository) FindByPublicID(ctx context.Context, publicID string) (*task.Task, error) {
	var entity dbschema.Task
	err := repo.db.WithContext(ctx).
		Where("public_id = ?", publicID).
		First(&entity).
		Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeNotFound,
			"task not found",
			nil,
			"a5b6c7d8-e9f0-4a1b-8c2d-3e4f5a6b7c8d",
		)
	}
	if err != nil {
		return nil, platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to find task",
			err,
			"c7d8e9f0-a1b2-4c3d-8e4f-5a6b7c8d9e0f",
		)
	}
	return entity.EtoD(), nil
}

func (repo *TaskGormRepository) Count(ctx context.Context, filter task.TaskFilter) (int64, error) {
	var count int64
	query := repo.applyFilter(repo.db.WithContext(ctx).Model(&dbschema.Task{}), filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to count tasks",
			err,
			"e9f0a1b2-c3d4-4e5f-8a6b-7c8d9e0f1a2b",
		)
	}
	return count, nil
}

func (repo *TaskGormRepository) Update(ctx context.Context, t *task.Task) error {
	entity := dbschema.NewSchemaTask(t)
	if err := repo.db.WithContext(ctx).Save(entity).Error; err != nil {
		return platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to update task",
			err,
			"a1b2c3d4-e5f6-4a7b-8c8d-9e0f1a2b3c4d",
		)
	}
	return nil
}

func (repo *TaskGormRepository) Delete(ctx context.Context, id uint) error {
	if err := repo.db.WithContext(ctx).Delete(&dbschema.Task{}, id).Error; err != nil {
		return platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to delete task",
			err,
			"c3d4e5f6-a7b8-4c9d-8e0f-1a2b3c4d5e6f",
		)
	}
	return nil
}

func (repo *TaskGormRepository) applyFilter(query *gorm.DB, filter task.TaskFilter) *gorm.DB {
	if filter.ID != nil {
		query = query.Where("id = ?", *filter.ID)
	}
	if filter.PublicID != nil {
		query = query.Where("public_id = ?", *filter.PublicID)
	}
	if filter.UserID != nil {
		query = query.Where("user_id = ?", *filter.UserID)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", string(*filter.Status))
	}
	return query
}
