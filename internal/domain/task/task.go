package task

import (
	"context"
	"time"
)

// ===============================================
// Task Types
// ===============================================

type TaskStatus string

const (
	StatusPending    TaskStatus = "pending"
	StatusInProgress TaskStatus = "in_progress"
	StatusCompleted  TaskStatus = "completed"
)

// ValidStatus reports whether s is one of the three allowed statuses.
func ValidStatus(s TaskStatus) bool {
	switch s {
	case StatusPending, StatusInProgress, StatusCompleted:
		return true
	}
	return false
}

const (
	MaxTitleLength       = 500
	MaxDescriptionLength = 2000
)

// Task is a to-do item owned by exactly one user. All reads and writes are
// filtered by that owner.
type Task struct {
	ID          uint       `json:"-"`
	PublicID    string     `json:"id"` // String ID like "task_abc123"
	UserID      uint       `json:"-"`
	Title       string     `json:"title"`
	Description *string    `json:"description,omitempty"`
	Status      TaskStatus `json:"status"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ===============================================
// Task Repository
// ===============================================

type TaskFilter struct {
	ID       *uint
	PublicID *string
	UserID   *uint
	Status   *TaskStatus
}

type TaskRepository interface {
	Create(ctx context.Context, task *Task) error
	FindByFilter(ctx context.Context, filter TaskFilter) ([]*Task, error)
	FindByPublicID(ctx context.Context, publicID string) (*Task, error)
	Count(ctx context.Context, filter TaskFilter) (int64, error)
	Update(ctx context.Context, task *Task) error
	Delete(ctx context.Context, id uint) error
}

// ===============================================
// Task Factory Functions
// ===============================================

// NewTask creates a pending task for the given owner.
func NewTask(publicID string, userID uint, title string, description *string) *Task {
	now := time.Now().UTC()
	return &Task{
		PublicID:    publicID,
		UserID:      userID,
		Title:       title,
		Description: description,
		Status:      StatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}
