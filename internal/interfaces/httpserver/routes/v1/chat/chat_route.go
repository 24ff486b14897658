package chat

import (
	"github.com/gin-gonic/gin"

	"todo-server/services/todo-api/internal/interfaces/httpserver/handlers/chathandler"
)

type ChatRoute struct {
	handler *chathandler.ChatHandler
}

func NewChatRoute(handler *chathandler.ChatHandler) *ChatRoute {
	return &ChatRoute{handler: handler}
}

func (r *ChatRoute) RegisterRouter(router gin.IRouter) {
	chatRouter := router.Group("/chat")
	chatRouter.POST("", r.handler.Chat)
	chatRouter.GET("/conversations", r.handler.ListConversations)
	chatRouter.GET("/conversations/:conversation_id/messages", r.handler.ListMessages)
}
