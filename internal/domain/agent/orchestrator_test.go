package agent_test

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/sashabaranov/go-openai"

	"todo-server/services/todo-api/internal/domain/agent"
	"todo-server/services/todo-api/internal/domain/conversation"
	"todo-server/services/todo-api/internal/domain/task"
	"todo-server/services/todo-api/internal/utils/platformerrors"
)

// fakeConversationRepository is an in-memory ConversationRepository.
type fakeConversationRepository struct {
	nextConvID uint
	nextMsgID  uint
	convs      map[uint]*conversation.Conversation
	messages   map[uint][]*conversation.Message
}

func newFakeConversationRepository() *fakeConversationRepository {
	return &fakeConversationRepository{
		convs:    make(map[uint]*conversation.Conversation),
		messages: make(map[uint][]*conversation.Message),
	}
}

func (f *fakeConversationRepository) Create(ctx context.Context, conv *conversation.Conversation) error {
	f.nextConvID++
	conv.ID = f.nextConvID
	clone := *conv
	f.convs[conv.ID] = &clone
	return nil
}

func (f *fakeConversationRepository) FindByFilter(ctx context.Context, filter conversation.ConversationFilter) ([]*conversation.Conversation, error) {
	var out []*conversation.Conversation
	for _, c := range f.convs {
		if filter.UserID != nil && c.UserID != *filter.UserID {
			continue
		}
		clone := *c
		out = append(out, &clone)
	}
	return out, nil
}

func (f *fakeConversationRepository) FindByPublicID(ctx context.Context, publicID string) (*conversation.Conversation, error) {
	for _, c := range f.convs {
		if c.PublicID == publicID {
			clone := *c
			return &clone, nil
		}
	}
	return nil, platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeNotFound, "conversation not found", nil, "00000000-0000-4000-8000-000000000004")
}

func (f *fakeConversationRepository) Update(ctx context.Context, conv *conversation.Conversation) error {
	clone := *conv
	f.convs[conv.ID] = &clone
	return nil
}

func (f *fakeConversationRepository) AddMessage(ctx context.Context, conversationID uint, msg *conversation.Message) error {
	f.nextMsgID++
	msg.ID = f.nextMsgID
	msg.CreatedAt = time.Now().UTC()
	clone := *msg
	f.messages[conversationID] = append(f.messages[conversationID], &clone)
	if c, ok := f.convs[conversationID]; ok {
		c.UpdatedAt = msg.CreatedAt
	}
	return nil
}

func (f *fakeConversationRepository) RecentMessages(ctx context.Context, conversationID uint, limit int) ([]*conversation.Message, error) {
	msgs := f.messages[conversationID]
	if len(msgs) > limit {
		msgs = msgs[len(msgs)-limit:]
	}
	out := make([]*conversation.Message, len(msgs))
	copy(out, msgs)
	return out, nil
}

func (f *fakeConversationRepository) AllMessages(ctx context.Context, conversationID uint) ([]*conversation.Message, error) {
	msgs := f.messages[conversationID]
	out := make([]*conversation.Message, len(msgs))
	copy(out, msgs)
	return out, nil
}

func (f *fakeConversationRepository) CountMessages(ctx context.Context, conversationID uint) (int64, error) {
	return int64(len(f.messages[conversationID])), nil
}

// scriptedResolver plays back a fixed script of outcomes and records every
// message window it was shown.
type scriptedResolver struct {
	script  []*agent.Outcome
	err     error
	calls   int
	windows [][]openai.ChatCompletionMessage
}

func (s *scriptedResolver) Resolve(ctx context.Context, messages []openai.ChatCompletionMessage, tools []openai.Tool) (*agent.Outcome, error) {
	s.calls++
	window := make([]openai.ChatCompletionMessage, len(messages))
	copy(window, messages)
	s.windows = append(s.windows, window)

	if s.err != nil {
		return nil, s.err
	}
	if len(s.script) == 0 {
		return &agent.Outcome{Reply: "default reply"}, nil
	}
	next := s.script[0]
	if len(s.script) > 1 {
		s.script = s.script[1:]
	}
	return next, nil
}

type orchestratorFixture struct {
	orchestrator  *agent.Orchestrator
	conversations *conversation.ConversationService
	taskRepo      *fakeTaskRepository
	convRepo      *fakeConversationRepository
	resolver      *scriptedResolver
}

func newOrchestratorFixture(resolver *scriptedResolver, maxRounds int) *orchestratorFixture {
	taskRepo := newFakeTaskRepository()
	convRepo := newFakeConversationRepository()
	conversations := conversation.NewConversationService(convRepo)
	registry := agent.NewRegistry(task.NewTaskService(taskRepo))

	return &orchestratorFixture{
		orchestrator:  agent.NewOrchestrator(conversations, registry, resolver, maxRounds, 20, zerolog.Nop()),
		conversations: conversations,
		taskRepo:      taskRepo,
		convRepo:      convRepo,
		resolver:      resolver,
	}
}

func TestChatDirectReply(t *testing.T) {
	resolver := &scriptedResolver{script: []*agent.Outcome{{Reply: "You have no todos yet."}}}
	fx := newOrchestratorFixture(resolver, 5)

	output, err := fx.orchestrator.Chat(context.Background(), agent.ChatInput{
		UserID:  1,
		Message: "what's on my list?",
	})
	if err != nil {
		t.Fatalf("Chat returned error: %v", err)
	}
	if output.Reply != "You have no todos yet." {
		t.Errorf("unexpected reply: %q", output.Reply)
	}
	if output.ConversationID == "" || output.MessageID == "" {
		t.Error("expected conversation and message IDs in output")
	}
	if len(output.ToolCalls) != 0 {
		t.Errorf("expected no tool calls, got %d", len(output.ToolCalls))
	}

	// Both sides of the turn are persisted in order.
	msgs := fx.convRepo.messages[1]
	if len(msgs) != 2 {
		t.Fatalf("expected 2 persisted messages, got %d", len(msgs))
	}
	if msgs[0].Role != conversation.RoleUser || msgs[1].Role != conversation.RoleAssistant {
		t.Errorf("unexpected roles: %s, %s", msgs[0].Role, msgs[1].Role)
	}

	// The resolver window starts with the system prompt and ends with the
	// user's message.
	window := resolver.windows[0]
	if window[0].Role != openai.ChatMessageRoleSystem {
		t.Errorf("expected system prompt first, got role %s", window[0].Role)
	}
	if window[len(window)-1].Content != "what's on my list?" {
		t.Errorf("expected user message last, got %q", window[len(window)-1].Content)
	}
}

func TestChatToolLoop(t *testing.T) {
	resolver := &scriptedResolver{script: []*agent.Outcome{
		{ToolCalls: []agent.ToolCall{{
			ID:        "call_1",
			Name:      "create_todo",
			Arguments: []byte(`{"title":"Buy groceries"}`),
		}}},
		{Reply: "Created your todo!"},
	}}
	fx := newOrchestratorFixture(resolver, 5)

	output, err := fx.orchestrator.Chat(context.Background(), agent.ChatInput{
		UserID:  7,
		Message: "add buy groceries",
	})
	if err != nil {
		t.Fatalf("Chat returned error: %v", err)
	}
	if output.Reply != "Created your todo!" {
		t.Errorf("unexpected reply: %q", output.Reply)
	}

	// The tool actually ran against the caller's task store.
	userID := uint(7)
	tasks, _ := fx.taskRepo.FindByFilter(context.Background(), task.TaskFilter{UserID: &userID})
	if len(tasks) != 1 || tasks[0].Title != "Buy groceries" {
		t.Fatalf("expected one created task for user 7, got %v", tasks)
	}

	// The audit trail is returned and persisted with the assistant message.
	if len(output.ToolCalls) != 1 || output.ToolCalls[0].Tool != "create_todo" {
		t.Fatalf("expected create_todo audit record, got %+v", output.ToolCalls)
	}
	msgs := fx.convRepo.messages[1]
	assistant := msgs[len(msgs)-1]
	if len(assistant.ToolCalls) != 1 {
		t.Errorf("expected audit trail on persisted assistant message, got %d records", len(assistant.ToolCalls))
	}

	// The second resolver call saw the tool result.
	second := resolver.windows[1]
	last := second[len(second)-1]
	if last.Role != openai.ChatMessageRoleTool || last.ToolCallID != "call_1" {
		t.Errorf("expected tool result fed back to resolver, got role=%s id=%s", last.Role, last.ToolCallID)
	}
}

func TestChatRoundLimitFallback(t *testing.T) {
	// A resolver that always wants another tool round.
	resolver := &scriptedResolver{script: []*agent.Outcome{
		{ToolCalls: []agent.ToolCall{{
			ID:        "call_loop",
			Name:      "list_todos",
			Arguments: []byte(`{}`),
		}}},
	}}
	fx := newOrchestratorFixture(resolver, 3)

	output, err := fx.orchestrator.Chat(context.Background(), agent.ChatInput{
		UserID:  1,
		Message: "loop forever",
	})
	if err != nil {
		t.Fatalf("round limit must not surface as an error, got %v", err)
	}
	if output.Reply != agent.FallbackReply {
		t.Errorf("expected fallback reply, got %q", output.Reply)
	}
	if resolver.calls != 3 {
		t.Errorf("expected exactly 3 resolver calls, got %d", resolver.calls)
	}

	// The turn still persisted both messages.
	msgs := fx.convRepo.messages[1]
	if len(msgs) != 2 {
		t.Fatalf("expected 2 persisted messages, got %d", len(msgs))
	}
	if msgs[1].Content != agent.FallbackReply {
		t.Errorf("fallback reply should be persisted, got %q", msgs[1].Content)
	}
}

func TestChatUserMessageDurableOnResolverFailure(t *testing.T) {
	resolver := &scriptedResolver{
		err: platformerrors.NewError(context.Background(), platformerrors.LayerInfrastructure, platformerrors.ErrorTypeExternal, "provider down", nil, "00000000-0000-4000-8000-000000000005"),
	}
	fx := newOrchestratorFixture(resolver, 5)

	_, err := fx.orchestrator.Chat(context.Background(), agent.ChatInput{
		UserID:  1,
		Message: "hello?",
	})
	if !platformerrors.IsErrorType(err, platformerrors.ErrorTypeExternal) {
		t.Fatalf("expected EXTERNAL error, got %v", err)
	}

	// The user's message survived the failed turn.
	msgs := fx.convRepo.messages[1]
	if len(msgs) != 1 || msgs[0].Role != conversation.RoleUser || msgs[0].Content != "hello?" {
		t.Fatalf("expected durable user message, got %v", msgs)
	}
}

func TestChatExistingConversation(t *testing.T) {
	resolver := &scriptedResolver{script: []*agent.Outcome{{Reply: "continuing"}}}
	fx := newOrchestratorFixture(resolver, 5)

	first, err := fx.orchestrator.Chat(context.Background(), agent.ChatInput{
		UserID:  1,
		Message: "first turn",
	})
	if err != nil {
		t.Fatalf("Chat returned error: %v", err)
	}

	second, err := fx.orchestrator.Chat(context.Background(), agent.ChatInput{
		UserID:         1,
		ConversationID: &first.ConversationID,
		Message:        "second turn",
	})
	if err != nil {
		t.Fatalf("Chat returned error: %v", err)
	}
	if second.ConversationID != first.ConversationID {
		t.Errorf("expected the same conversation, got %s and %s", first.ConversationID, second.ConversationID)
	}

	// The second turn's window replays the first exchange.
	window := resolver.windows[1]
	var sawFirstTurn bool
	for _, msg := range window {
		if msg.Content == "first turn" {
			sawFirstTurn = true
		}
	}
	if !sawFirstTurn {
		t.Error("expected history replayed into the second resolver window")
	}

	// A foreign conversation ID is NOT_FOUND.
	_, err = fx.orchestrator.Chat(context.Background(), agent.ChatInput{
		UserID:         2,
		ConversationID: &first.ConversationID,
		Message:        "intruder",
	})
	if !platformerrors.IsErrorType(err, platformerrors.ErrorTypeNotFound) {
		t.Errorf("expected NOT_FOUND for foreign conversation, got %v", err)
	}
}
