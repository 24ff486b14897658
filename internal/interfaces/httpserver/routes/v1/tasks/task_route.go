package tasks

import (
	"github.com/gin-gonic/gin"

	"todo-server/services/todo-api/internal/interfaces/httpserver/handlers/taskhandler"
)

type TaskRoute struct {
	handler *taskhandler.TaskHandler
}

func NewTaskRoute(handler *taskhandler.TaskHandler) *TaskRoute {
	return &TaskRoute{handler: handler}
}

func (r *TaskRoute) RegisterRouter(router gin.IRouter) {
	taskRouter := router.Group("/tasks")
	taskRouter.POST("", r.handler.CreateTask)
	taskRouter.GET("", r.handler.ListTasks)
	taskRouter.GET("/:task_id", r.handler.GetTask)
	taskRouter.PUT("/:task_id", r.handler.UpdateTask)
	taskRouter.DELETE("/:task_id", r.handler.DeleteTask)
	taskRouter.PATCH("/:task_id/complete", r.handler.CompleteTask)
}
