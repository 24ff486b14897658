package agent

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/sashabaranov/go-openai"

	"todo-server/services/todo-api/internal/infrastructure/llmclient"
	"todo-server/services/todo-api/internal/utils/platformerrors"
)

// ===============================================
// Resolver
// ===============================================

// ToolCall is one tool invocation requested by the model.
type ToolCall struct {
	ID        string
	Name      string
	Arguments json.RawMessage
}

// Outcome is the interpreted result of one model turn: either a final reply
// or a batch of tool calls to execute before asking again.
type Outcome struct {
	Reply     string
	ToolCalls []ToolCall
}

// Resolver turns a message window plus tool schemas into the model's next
// move. Implementations must be safe for concurrent use.
type Resolver interface {
	Resolve(ctx context.Context, messages []openai.ChatCompletionMessage, tools []openai.Tool) (*Outcome, error)
}

// ===============================================
// Completion Resolver
// ===============================================

// CompletionResolver resolves intents through an OpenAI-compatible chat
// completion endpoint. One transparent retry absorbs transient upstream
// blips; anything past that surfaces as EXTERNAL.
type CompletionResolver struct {
	client *llmclient.Client
	model  string
}

func NewCompletionResolver(client *llmclient.Client, model string) *CompletionResolver {
	return &CompletionResolver{client: client, model: model}
}

func (r *CompletionResolver) Resolve(ctx context.Context, messages []openai.ChatCompletionMessage, tools []openai.Tool) (*Outcome, error) {
	request := openai.ChatCompletionRequest{
		Model:    r.model,
		Messages: messages,
		Tools:    tools,
	}

	response, err := r.client.CreateChatCompletion(ctx, request)
	if err != nil && platformerrors.IsErrorType(err, platformerrors.ErrorTypeExternal) && ctx.Err() == nil {
		response, err = r.client.CreateChatCompletion(ctx, request)
	}
	if err != nil {
		return nil, err
	}

	if len(response.Choices) == 0 {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeExternal, "completion returned no choices", nil, "1e2f3a4b-5c6d-4e7f-8a8b-9c0d1e2f3a4b")
	}

	choice := response.Choices[0].Message
	outcome := &Outcome{Reply: strings.TrimSpace(choice.Content)}

	for _, tc := range choice.ToolCalls {
		if tc.Type != openai.ToolTypeFunction {
			continue
		}
		outcome.ToolCalls = append(outcome.ToolCalls, ToolCall{
			ID:        tc.ID,
			Name:      tc.Function.Name,
			Arguments: json.RawMessage(tc.Function.Arguments),
		})
	}

	return outcome, nil
}
