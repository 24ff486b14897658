package auth

import (
	"github.com/gin-gonic/gin"

	"todo-server/services/todo-api/internal/interfaces/httpserver/handlers/authhandler"
)

type AuthRoute struct {
	handler *authhandler.AuthHandler
}

func NewAuthRoute(handler *authhandler.AuthHandler) *AuthRoute {
	return &AuthRoute{handler: handler}
}

// RegisterRouter mounts the public auth endpoints. These are the only
// endpoints reachable without a bearer token.
func (r *AuthRoute) RegisterRouter(router gin.IRouter) {
	authRouter := router.Group("/auth")
	authRouter.POST("/signup", r.handler.Signup)
	authRouter.POST("/signin", r.handler.Signin)
}
