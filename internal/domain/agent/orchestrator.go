package agent

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rs/zerolog"
	"github.com/sashabaranov/go-openai"

	"todo-server/services/todo-api/internal/domain/conversation"
	"todo-server/services/todo-api/internal/infrastructure/metrics"
)

// FallbackReply is returned when the model keeps requesting tools past the
// round limit. The turn still completes normally with this text.
const FallbackReply = "I wasn't able to finish that request. The actions I completed so far have been applied; please try again with a simpler request."

// ===============================================
// Orchestrator
// ===============================================

// ChatInput is one user turn entering the loop.
type ChatInput struct {
	UserID         uint
	ConversationID *string
	Message        string
}

// ChatOutput is the completed turn.
type ChatOutput struct {
	ConversationID string
	Reply          string
	MessageID      string
	CreatedAt      time.Time
	ToolCalls      []conversation.ToolCallRecord
}

// Orchestrator drives the tool-calling loop for one chat turn. It holds no
// per-conversation state: everything it needs is reloaded from the
// conversation store on each call.
type Orchestrator struct {
	conversations *conversation.ConversationService
	registry      *Registry
	resolver      Resolver
	maxToolRounds int
	historyWindow int
	logger        zerolog.Logger
}

func NewOrchestrator(
	conversations *conversation.ConversationService,
	registry *Registry,
	resolver Resolver,
	maxToolRounds int,
	historyWindow int,
	logger zerolog.Logger,
) *Orchestrator {
	return &Orchestrator{
		conversations: conversations,
		registry:      registry,
		resolver:      resolver,
		maxToolRounds: maxToolRounds,
		historyWindow: historyWindow,
		logger:        logger,
	}
}

// Chat processes one user message end to end: resolve or create the
// conversation, persist the user message, run the bounded tool loop, and
// persist the assistant reply with its tool-call audit trail.
//
// The user message is persisted before the first resolver call, so a failed
// turn still leaves the user's side of the exchange durable.
func (o *Orchestrator) Chat(ctx context.Context, input ChatInput) (*ChatOutput, error) {
	conv, isNew, err := o.resolveConversation(ctx, input)
	if err != nil {
		return nil, err
	}
	if isNew {
		metrics.ConversationsCreatedTotal.Inc()
	}

	// History is captured before the new message is written so the window
	// never double-counts the current turn.
	history, err := o.conversations.LoadHistory(ctx, conv, o.historyWindow)
	if err != nil {
		return nil, err
	}

	if _, err := o.conversations.AppendMessage(ctx, conv, conversation.RoleUser, input.Message, nil); err != nil {
		return nil, err
	}

	messages := o.buildMessageWindow(history, input.Message)
	tools := o.registry.Definitions()

	var auditTrail []conversation.ToolCallRecord
	reply := ""
	rounds := 0

	for round := 0; ; round++ {
		if round >= o.maxToolRounds {
			o.logger.Warn().
				Str("conversation_id", conv.PublicID).
				Int("rounds", round).
				Msg("tool round limit reached, falling back")
			reply = FallbackReply
			break
		}

		outcome, err := o.resolver.Resolve(ctx, messages, tools)
		if err != nil {
			return nil, err
		}
		rounds++

		if len(outcome.ToolCalls) == 0 {
			reply = outcome.Reply
			break
		}

		assistantMsg := openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleAssistant,
			Content: outcome.Reply,
		}
		for _, tc := range outcome.ToolCalls {
			assistantMsg.ToolCalls = append(assistantMsg.ToolCalls, openai.ToolCall{
				ID:   tc.ID,
				Type: openai.ToolTypeFunction,
				Function: openai.FunctionCall{
					Name:      tc.Name,
					Arguments: string(tc.Arguments),
				},
			})
		}
		messages = append(messages, assistantMsg)

		for _, tc := range outcome.ToolCalls {
			result, err := o.registry.Execute(ctx, input.UserID, tc.Name, tc.Arguments)
			if err != nil {
				return nil, err
			}

			outcomeLabel := "ok"
			var probe ToolResult
			if json.Unmarshal(result, &probe) == nil && probe.Error != "" {
				outcomeLabel = "error"
			}
			metrics.ToolCallsTotal.WithLabelValues(tc.Name, outcomeLabel).Inc()

			o.logger.Debug().
				Str("conversation_id", conv.PublicID).
				Str("tool", tc.Name).
				Str("outcome", outcomeLabel).
				Msg("executed tool")

			auditTrail = append(auditTrail, conversation.ToolCallRecord{
				Tool:      tc.Name,
				Arguments: tc.Arguments,
				Result:    result,
			})
			messages = append(messages, openai.ChatCompletionMessage{
				Role:       openai.ChatMessageRoleTool,
				ToolCallID: tc.ID,
				Content:    string(result),
			})
		}
	}

	metrics.ToolRounds.Observe(float64(rounds))

	if reply == "" {
		reply = "Done."
	}

	assistant, err := o.conversations.AppendMessage(ctx, conv, conversation.RoleAssistant, reply, auditTrail)
	if err != nil {
		return nil, err
	}

	return &ChatOutput{
		ConversationID: conv.PublicID,
		Reply:          reply,
		MessageID:      assistant.PublicID,
		CreatedAt:      assistant.CreatedAt,
		ToolCalls:      auditTrail,
	}, nil
}

// resolveConversation loads the caller's conversation or starts a new one
// titled from the first message.
func (o *Orchestrator) resolveConversation(ctx context.Context, input ChatInput) (*conversation.Conversation, bool, error) {
	if input.ConversationID != nil && *input.ConversationID != "" {
		conv, err := o.conversations.GetOwnedConversation(ctx, input.UserID, *input.ConversationID)
		if err != nil {
			return nil, false, err
		}
		return conv, false, nil
	}

	conv, err := o.conversations.CreateConversation(ctx, input.UserID, input.Message)
	if err != nil {
		return nil, false, err
	}
	return conv, true, nil
}

func (o *Orchestrator) buildMessageWindow(history []*conversation.Message, userMessage string) []openai.ChatCompletionMessage {
	messages := make([]openai.ChatCompletionMessage, 0, len(history)+2)
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleSystem,
		Content: SystemPrompt,
	})
	for _, m := range history {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    string(m.Role),
			Content: m.Content,
		})
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: userMessage,
	})
	return messages
}
