package task

import (
	"context"
	"time"

	"todo-server/services/todo-api/internal/utils/idgen"
	"todo-server/services/todo-api/internal/utils/platformerrors"
)

// TaskService handles business logic for tasks. It is the single backing
// store surface for both the REST handlers and the agent tools, so the
// ownership rules live here exactly once.
type TaskService struct {
	repo      TaskRepository
	validator *TaskValidator
}

func NewTaskService(repo TaskRepository) *TaskService {
	return &TaskService{
		repo:      repo,
		validator: NewTaskValidator(),
	}
}

// CreateTaskInput represents the input for creating a task
type CreateTaskInput struct {
	Title       string
	Description *string
	Status      *TaskStatus
}

// UpdateTaskInput represents the input for updating a task. Nil fields are
// left untouched.
type UpdateTaskInput struct {
	Title       *string
	Description *string
	Status      *TaskStatus
}

// CreateTask validates input and persists a new task owned by userID.
func (s *TaskService) CreateTask(ctx context.Context, userID uint, input CreateTaskInput) (*Task, error) {
	if err := s.validator.ValidateTitle(input.Title); err != nil {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeValidation, err.Error(), nil, "8f0a3b1c-2d4e-4f6a-8b9c-0d1e2f3a4b5c")
	}
	if err := s.validator.ValidateDescription(input.Description); err != nil {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeValidation, err.Error(), nil, "1a2b3c4d-5e6f-4a7b-8c9d-0e1f2a3b4c5d")
	}

	publicID, err := idgen.GenerateSecureID("task", 16)
	if err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "failed to generate task ID")
	}

	t := NewTask(publicID, userID, input.Title, input.Description)
	if input.Status != nil {
		if err := s.validator.ValidateStatus(*input.Status); err != nil {
			return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeValidation, err.Error(), nil, "3c4d5e6f-7a8b-4c9d-8e0f-1a2b3c4d5e6f")
		}
		t.Status = *input.Status
	}

	if err := s.repo.Create(ctx, t); err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "failed to create task")
	}

	return t, nil
}

// ListTasks returns every task owned by userID, oldest first, optionally
// filtered by status. Listing is a read-only snapshot: calling it twice with
// no intervening mutation yields identical results.
func (s *TaskService) ListTasks(ctx context.Context, userID uint, status *TaskStatus) ([]*Task, error) {
	if status != nil {
		if err := s.validator.ValidateStatus(*status); err != nil {
			return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeValidation, err.Error(), nil, "5e6f7a8b-9c0d-4e1f-8a2b-3c4d5e6f7a8b")
		}
	}

	tasks, err := s.repo.FindByFilter(ctx, TaskFilter{UserID: &userID, Status: status})
	if err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "failed to list tasks")
	}
	return tasks, nil
}

// GetOwnedTask retrieves a task by public ID and validates ownership. A task
// that does not exist and a task owned by someone else are indistinguishable
// to the caller: both come back NOT_FOUND.
func (s *TaskService) GetOwnedTask(ctx context.Context, userID uint, publicID string) (*Task, error) {
	t, err := s.repo.FindByPublicID(ctx, publicID)
	if err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "task not found")
	}
	if t.UserID != userID {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeNotFound, "task not found", nil, "7a8b9c0d-1e2f-4a3b-8c4d-5e6f7a8b9c0d")
	}
	return t, nil
}

// UpdateTask applies the non-nil fields of input to an owned task.
func (s *TaskService) UpdateTask(ctx context.Context, userID uint, publicID string, input UpdateTaskInput) (*Task, error) {
	t, err := s.GetOwnedTask(ctx, userID, publicID)
	if err != nil {
		return nil, err
	}

	if input.Title != nil {
		if err := s.validator.ValidateTitle(*input.Title); err != nil {
			return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeValidation, err.Error(), nil, "9c0d1e2f-3a4b-4c5d-8e6f-7a8b9c0d1e2f")
		}
		t.Title = *input.Title
	}
	if input.Description != nil {
		if err := s.validator.ValidateDescription(input.Description); err != nil {
			return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeValidation, err.Error(), nil, "0d1e2f3a-4b5c-4d6e-8f7a-8b9c0d1e2f3a")
		}
		t.Description = input.Description
	}
	if input.Status != nil {
		if err := s.validator.ValidateStatus(*input.Status); err != nil {
			return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeValidation, err.Error(), nil, "2f3a4b5c-6d7e-4f8a-8b9c-0d1e2f3a4b5c")
		}
		t.Status = *input.Status
	}

	t.UpdatedAt = time.Now().UTC()

	if err := s.repo.Update(ctx, t); err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "failed to update task")
	}

	return t, nil
}

// DeleteTask removes an owned task and returns its public ID.
func (s *TaskService) DeleteTask(ctx context.Context, userID uint, publicID string) (string, error) {
	t, err := s.GetOwnedTask(ctx, userID, publicID)
	if err != nil {
		return "", err
	}

	if err := s.repo.Delete(ctx, t.ID); err != nil {
		return "", platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "failed to delete task")
	}

	return t.PublicID, nil
}

// SetCompletion toggles completion on an owned task: completed=true forces
// status "completed", completed=false reverts to "pending".
func (s *TaskService) SetCompletion(ctx context.Context, userID uint, publicID string, completed bool) (*Task, error) {
	t, err := s.GetOwnedTask(ctx, userID, publicID)
	if err != nil {
		return nil, err
	}

	if completed {
		t.Status = StatusCompleted
	} else {
		t.Status = StatusPending
	}
	t.UpdatedAt = time.Now().UTC()

	if err := s.repo.Update(ctx, t); err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "failed to update task status")
	}

	return t, nil
}
