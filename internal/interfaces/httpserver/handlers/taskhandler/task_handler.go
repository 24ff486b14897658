package taskhandler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"todo-server/services/todo-api/internal/domain/task"
	"todo-server/services/todo-api/internal/interfaces/httpserver/middlewares"
	"todo-server/services/todo-api/internal/interfaces/httpserver/responses"
	"todo-server/services/todo-api/internal/utils/platformerrors"
)

// TaskHandler exposes task CRUD over REST. It shares the task service with
// the agent tools, so both surfaces enforce identical rules.
type TaskHandler struct {
	tasks  *task.TaskService
	logger zerolog.Logger
}

func NewTaskHandler(tasks *task.TaskService, logger zerolog.Logger) *TaskHandler {
	return &TaskHandler{
		tasks:  tasks,
		logger: logger,
	}
}

type createTaskRequest struct {
	Title       string  `json:"title" binding:"required,max=500"`
	Description *string `json:"description" binding:"omitempty,max=2000"`
	Status      *string `json:"status" binding:"omitempty,oneof=pending in_progress completed"`
}

type updateTaskRequest struct {
	Title       *string `json:"title" binding:"omitempty,max=500"`
	Description *string `json:"description" binding:"omitempty,max=2000"`
	Status      *string `json:"status" binding:"omitempty,oneof=pending in_progress completed"`
}

type completeTaskRequest struct {
	Completed *bool `json:"completed" binding:"required"`
}

// CreateTask handles POST /v1/tasks.
func (h *TaskHandler) CreateTask(c *gin.Context) {
	principal, ok := middlewares.PrincipalFromContext(c)
	if !ok {
		responses.HandleNewError(c, platformerrors.ErrorTypeUnauthorized, "authentication required", "6d7e8f9a-0b1c-4d2e-8f3a-4b5c6d7e8f9b")
		return
	}

	var req createTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.HandleNewError(c, platformerrors.ErrorTypeValidation, err.Error(), "8f9a0b1c-2d3e-4f4a-8b5c-6d7e8f9a0b1d")
		return
	}

	input := task.CreateTaskInput{
		Title:       req.Title,
		Description: req.Description,
	}
	if req.Status != nil {
		status := task.TaskStatus(*req.Status)
		input.Status = &status
	}

	t, err := h.tasks.CreateTask(c.Request.Context(), principal.UserID, input)
	if err != nil {
		responses.HandleError(c, err, "failed to create task")
		return
	}

	c.JSON(http.StatusCreated, t)
}

// ListTasks handles GET /v1/tasks with an optional status query filter.
func (h *TaskHandler) ListTasks(c *gin.Context) {
	principal, ok := middlewares.PrincipalFromContext(c)
	if !ok {
		responses.HandleNewError(c, platformerrors.ErrorTypeUnauthorized, "authentication required", "0b1c2d3e-4f5a-4b6c-8d7e-8f9a0b1c2d3f")
		return
	}

	var status *task.TaskStatus
	if raw := c.Query("status"); raw != "" {
		s := task.TaskStatus(raw)
		status = &s
	}

	tasks, err := h.tasks.ListTasks(c.Request.Context(), principal.UserID, status)
	if err != nil {
		responses.HandleError(c, err, "failed to list tasks")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"tasks": tasks,
		"count": len(tasks),
	})
}

// GetTask handles GET /v1/tasks/:task_id.
func (h *TaskHandler) GetTask(c *gin.Context) {
	principal, ok := middlewares.PrincipalFromContext(c)
	if !ok {
		responses.HandleNewError(c, platformerrors.ErrorTypeUnauthorized, "authentication required", "2d3e4f5a-6b7c-4d8e-8f9a-0b1c2d3e4f5b")
		return
	}

	t, err := h.tasks.GetOwnedTask(c.Request.Context(), principal.UserID, c.Param("task_id"))
	if err != nil {
		responses.HandleError(c, err, "task not found")
		return
	}

	c.JSON(http.StatusOK, t)
}

// UpdateTask handles PUT /v1/tasks/:task_id.
func (h *TaskHandler) UpdateTask(c *gin.Context) {
	principal, ok := middlewares.PrincipalFromContext(c)
	if !ok {
		responses.HandleNewError(c, platformerrors.ErrorTypeUnauthorized, "authentication required", "4f5a6b7c-8d9e-4f0a-8b1c-2d3e4f5a6b7d")
		return
	}

	var req updateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.HandleNewError(c, platformerrors.ErrorTypeValidation, err.Error(), "6b7c8d9e-0f1a-4b2c-8d3e-4f5a6b7c8d9f")
		return
	}

	input := task.UpdateTaskInput{
		Title:       req.Title,
		Description: req.Description,
	}
	if req.Status != nil {
		status := task.TaskStatus(*req.Status)
		input.Status = &status
	}

	t, err := h.tasks.UpdateTask(c.Request.Context(), principal.UserID, c.Param("task_id"), input)
	if err != nil {
		responses.HandleError(c, err, "failed to update task")
		return
	}

	c.JSON(http.StatusOK, t)
}

// DeleteTask handles DELETE /v1/tasks/:task_id.
func (h *TaskHandler) DeleteTask(c *gin.Context) {
	principal, ok := middlewares.PrincipalFromContext(c)
	if !ok {
		responses.HandleNewError(c, platformerrors.ErrorTypeUnauthorized, "authentication required", "8d9e0f1a-2b3c-4d4e-8f5a-6b7c8d9e0f1b")
		return
	}

	deletedID, err := h.tasks.DeleteTask(c.Request.Context(), principal.UserID, c.Param("task_id"))
	if err != nil {
		responses.HandleError(c, err, "failed to delete task")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":      deletedID,
		"deleted": true,
	})
}

// CompleteTask handles PATCH /v1/tasks/:task_id/complete.
func (h *TaskHandler) CompleteTask(c *gin.Context) {
	principal, ok := middlewares.PrincipalFromContext(c)
	if !ok {
		responses.HandleNewError(c, platformerrors.ErrorTypeUnauthorized, "authentication required", "0f1a2b3c-4d5e-4f6a-8b7c-8d9e0f1a2b3d")
		return
	}

	var req completeTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.HandleNewError(c, platformerrors.ErrorTypeValidation, "completed is required", "2b3c4d5e-6f7a-4b8c-8d9e-0f1a2b3c4d5f")
		return
	}

	t, err := h.tasks.SetCompletion(c.Request.Context(), principal.UserID, c.Param("task_id"), *req.Completed)
	if err != nil {
		responses.HandleError(c, err, "failed to update task status")
		return
	}

	c.JSON(http.StatusOK, t)
}
