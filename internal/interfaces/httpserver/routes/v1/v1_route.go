package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"todo-server/services/todo-api/internal/config"
	"todo-server/services/todo-api/internal/interfaces/httpserver/routes/v1/chat"
	"todo-server/services/todo-api/internal/interfaces/httpserver/routes/v1/tasks"
)

type V1Route struct {
	chat  *chat.ChatRoute
	tasks *tasks.TaskRoute
}

func NewV1Route(
	chat *chat.ChatRoute,
	tasks *tasks.TaskRoute,
) *V1Route {
	return &V1Route{
		chat,
		tasks,
	}
}

func (v1Route *V1Route) RegisterRouter(router gin.IRouter) {
	v1Router := router.Group("/v1")
	v1Router.GET("/version", GetVersion)
	v1Router.GET("/healthz", GetHealthz)
	v1Router.GET("/readyz", GetReadyz)

	v1Route.chat.RegisterRouter(v1Router)
	v1Route.tasks.RegisterRouter(v1Router)
}

// GetVersion returns the current build version of the API server.
func GetVersion(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"version": config.Version})
}

// GetHealthz returns the health status of the API server.
func GetHealthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// GetReadyz returns the readiness status of the API server.
func GetReadyz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ready"})
}
