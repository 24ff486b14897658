package dbschema

import (
	"todo-server/services/todo-api/internal/domain/task"
	"todo-server/services/todo-api/internal/infrastructure/database"
)

func init() {
	database.RegisterSchemaForAutoMigrate(Task{})
}

// Task represents the persisted task schema.
type Task struct {
	BaseModel
	PublicID    string  `gorm:"type:varchar(50);uniqueIndex;not null"`
	UserID      uint    `gorm:"index:idx_task_user_status;not null"`
	User        User    `gorm:"foreignKey:UserID"`
	Title       string  `gorm:"type:varchar(500);not null"`
	Description *string `gorm:"type:varchar(2000)"`
	Status      string  `gorm:"type:varchar(20);index:idx_task_user_status;not null;default:'pending'"`
}

// NewSchemaTask converts a domain task into a schema instance.
func NewSchemaTask(t *task.Task) *Task {
	if t == nil {
		return nil
	}

	return &Task{
		BaseModel: BaseModel{
			ID:        t.ID,
			CreatedAt: t.CreatedAt,
			UpdatedAt: t.UpdatedAt,
		},
		PublicID:    t.PublicID,
		UserID:      t.UserID,
		Title:       t.Title,
		Description: t.Description,
		Status:      string(t.Status),
	}
}

// EtoD converts the schema entity into a domain task.
func (e *Task) EtoD() *task.Task {
	if e == nil {
		return nil
	}

	return &task.Task{
		ID:          e.ID,
		PublicID:    e.PublicID,
		UserID:      e.UserID,
		Title:       e.Title,
		Description: e.Description,
		Status:      task.TaskStatus(e.Status),
		CreatedAt:   e.CreatedAt,
		UpdatedAt:   e.UpdatedAt,
	}
}
