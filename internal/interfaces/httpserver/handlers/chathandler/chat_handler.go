package chathandler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"todo-server/services/todo-api/internal/domain/agent"
	"todo-server/services/todo-api/internal/domain/conversation"
	"todo-server/services/todo-api/internal/interfaces/httpserver/middlewares"
	"todo-server/services/todo-api/internal/interfaces/httpserver/responses"
	"todo-server/services/todo-api/internal/utils/platformerrors"
)

// ChatHandler is the single natural-language entry point. One POST carries a
// user message through the agent loop and returns the assistant's reply.
type ChatHandler struct {
	orchestrator  *agent.Orchestrator
	conversations *conversation.ConversationService
	chatTimeout   time.Duration
	logger        zerolog.Logger
}

func NewChatHandler(
	orchestrator *agent.Orchestrator,
	conversations *conversation.ConversationService,
	chatTimeout time.Duration,
	logger zerolog.Logger,
) *ChatHandler {
	return &ChatHandler{
		orchestrator:  orchestrator,
		conversations: conversations,
		chatTimeout:   chatTimeout,
		logger:        logger,
	}
}

type chatRequest struct {
	Message        string  `json:"message" binding:"required,min=1,max=1000"`
	ConversationID *string `json:"conversation_id"`
}

type chatResponse struct {
	ConversationID string                        `json:"conversation_id"`
	Reply          string                        `json:"response"`
	MessageID      string                        `json:"message_id"`
	CreatedAt      time.Time                     `json:"created_at"`
	ToolCalls      []conversation.ToolCallRecord `json:"tool_calls,omitempty"`
}

// Chat handles POST /v1/chat.
func (h *ChatHandler) Chat(c *gin.Context) {
	principal, ok := middlewares.PrincipalFromContext(c)
	if !ok {
		responses.HandleNewError(c, platformerrors.ErrorTypeUnauthorized, "authentication required", "4d5e6f7a-8b9c-4d0e-8f1a-2b3c4d5e6f7b")
		return
	}

	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.HandleNewError(c, platformerrors.ErrorTypeValidation, "message is required and must be 1-1000 characters", "6f7a8b9c-0d1e-4f2a-8b3c-4d5e6f7a8b9d")
		return
	}

	ctx := c.Request.Context()
	if h.chatTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.chatTimeout)
		defer cancel()
	}

	output, err := h.orchestrator.Chat(ctx, agent.ChatInput{
		UserID:         principal.UserID,
		ConversationID: req.ConversationID,
		Message:        req.Message,
	})
	if err != nil {
		if ctx.Err() != nil && !platformerrors.IsErrorType(err, platformerrors.ErrorTypeTimeout) {
			responses.HandleNewError(c, platformerrors.ErrorTypeTimeout, "chat request timed out, please try again", "8b9c0d1e-2f3a-4b4c-8d5e-6f7a8b9c0d1f")
			return
		}
		if platformerrors.IsErrorType(err, platformerrors.ErrorTypeExternal) {
			responses.HandleError(c, err, "the assistant is temporarily unavailable, please try again")
			return
		}
		responses.HandleError(c, err, "chat request failed")
		return
	}

	c.JSON(http.StatusOK, chatResponse{
		ConversationID: output.ConversationID,
		Reply:          output.Reply,
		MessageID:      output.MessageID,
		CreatedAt:      output.CreatedAt,
		ToolCalls:      output.ToolCalls,
	})
}

// ListConversations handles GET /v1/chat/conversations.
func (h *ChatHandler) ListConversations(c *gin.Context) {
	principal, ok := middlewares.PrincipalFromContext(c)
	if !ok {
		responses.HandleNewError(c, platformerrors.ErrorTypeUnauthorized, "authentication required", "0d1e2f3a-4b5c-4d6e-8f7a-8b9c0d1e2f3c")
		return
	}

	conversations, err := h.conversations.ListConversations(c.Request.Context(), principal.UserID)
	if err != nil {
		responses.HandleError(c, err, "failed to list conversations")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"conversations": conversations,
		"count":         len(conversations),
	})
}

// ListMessages handles GET /v1/chat/conversations/:conversation_id/messages.
func (h *ChatHandler) ListMessages(c *gin.Context) {
	principal, ok := middlewares.PrincipalFromContext(c)
	if !ok {
		responses.HandleNewError(c, platformerrors.ErrorTypeUnauthorized, "authentication required", "2f3a4b5c-6d7e-4f8a-8b9c-0d1e2f3a4b5e")
		return
	}

	conv, err := h.conversations.GetOwnedConversation(c.Request.Context(), principal.UserID, c.Param("conversation_id"))
	if err != nil {
		responses.HandleError(c, err, "conversation not found")
		return
	}

	messages, err := h.conversations.Transcript(c.Request.Context(), conv)
	if err != nil {
		responses.HandleError(c, err, "failed to load messages")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"conversation_id": conv.PublicID,
		"messages":        messages,
		"count":           len(messages),
	})
}
