package conversation_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"todo-server/services/todo-api/internal/domain/conversation"
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
	// newest updated first
	for i := 0; i < len(out); i++ {
		for j := i + 1; j < len(out); j++ {
			if out[j].UpdatedAt.After(out[i].UpdatedAt) {
				out[i], out[j] = out[j], out[i]
			}
		}
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
	return nil, platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeNotFound, "conversation not found", nil, "00000000-0000-4000-8000-000000000002")
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

func TestCreateConversationTitleSeed(t *testing.T) {
	svc := conversation.NewConversationService(newFakeConversationRepository())
	ctx := context.Background()

	conv, err := svc.CreateConversation(ctx, 1, "Add a todo to buy groceries")
	if err != nil {
		t.Fatalf("CreateConversation returned error: %v", err)
	}
	if !strings.HasPrefix(conv.PublicID, "conv_") {
		t.Errorf("expected conv_ prefixed public ID, got %s", conv.PublicID)
	}
	if conv.Title == nil || *conv.Title != "Add a todo to buy groceries" {
		t.Errorf("short seed should be the title verbatim, got %v", conv.Title)
	}

	long, err := svc.CreateConversation(ctx, 1, strings.Repeat("x", 80))
	if err != nil {
		t.Fatalf("CreateConversation returned error: %v", err)
	}
	if long.Title == nil || *long.Title != strings.Repeat("x", 50)+"..." {
		t.Errorf("long seed should be truncated to 50 chars plus ellipsis, got %v", long.Title)
	}
}

func TestGetOwnedConversation(t *testing.T) {
	svc := conversation.NewConversationService(newFakeConversationRepository())
	ctx := context.Background()

	mine, _ := svc.CreateConversation(ctx, 1, "mine")
	theirs, _ := svc.CreateConversation(ctx, 2, "theirs")

	if _, err := svc.GetOwnedConversation(ctx, 1, mine.PublicID); err != nil {
		t.Errorf("expected own conversation to resolve, got %v", err)
	}

	if _, err := svc.GetOwnedConversation(ctx, 1, theirs.PublicID); !platformerrors.IsErrorType(err, platformerrors.ErrorTypeNotFound) {
		t.Errorf("expected NOT_FOUND for foreign conversation, got %v", err)
	}
	if _, err := svc.GetOwnedConversation(ctx, 1, "conv_missing00000000"); !platformerrors.IsErrorType(err, platformerrors.ErrorTypeNotFound) {
		t.Errorf("expected NOT_FOUND for missing conversation, got %v", err)
	}
	if _, err := svc.GetOwnedConversation(ctx, 1, "not-a-conversation-id"); !platformerrors.IsErrorType(err, platformerrors.ErrorTypeValidation) {
		t.Errorf("expected VALIDATION for malformed ID, got %v", err)
	}
}

func TestAppendMessageValidation(t *testing.T) {
	svc := conversation.NewConversationService(newFakeConversationRepository())
	ctx := context.Background()

	conv, _ := svc.CreateConversation(ctx, 1, "hello")

	if _, err := svc.AppendMessage(ctx, conv, conversation.MessageRole("tool"), "hi", nil); !platformerrors.IsErrorType(err, platformerrors.ErrorTypeValidation) {
		t.Errorf("expected VALIDATION for bad role, got %v", err)
	}
	if _, err := svc.AppendMessage(ctx, conv, conversation.RoleUser, "   ", nil); !platformerrors.IsErrorType(err, platformerrors.ErrorTypeValidation) {
		t.Errorf("expected VALIDATION for empty content, got %v", err)
	}
	if _, err := svc.AppendMessage(ctx, conv, conversation.RoleUser, strings.Repeat("a", 10_001), nil); !platformerrors.IsErrorType(err, platformerrors.ErrorTypeValidation) {
		t.Errorf("expected VALIDATION for oversized content, got %v", err)
	}

	msg, err := svc.AppendMessage(ctx, conv, conversation.RoleUser, "hello there", nil)
	if err != nil {
		t.Fatalf("AppendMessage returned error: %v", err)
	}
	if !strings.HasPrefix(msg.PublicID, "msg_") {
		t.Errorf("expected msg_ prefixed public ID, got %s", msg.PublicID)
	}
}

func TestLoadHistoryWindow(t *testing.T) {
	repo := newFakeConversationRepository()
	svc := conversation.NewConversationService(repo)
	ctx := context.Background()

	conv, _ := svc.CreateConversation(ctx, 1, "windowed")
	for i := 0; i < 30; i++ {
		content := "message " + strings.Repeat("x", i+1)
		if _, err := svc.AppendMessage(ctx, conv, conversation.RoleUser, content, nil); err != nil {
			t.Fatalf("AppendMessage: %v", err)
		}
	}

	history, err := svc.LoadHistory(ctx, conv, 20)
	if err != nil {
		t.Fatalf("LoadHistory returned error: %v", err)
	}
	if len(history) != 20 {
		t.Fatalf("expected window of 20 messages, got %d", len(history))
	}
	// Oldest-first within the window: the first returned message is the 11th appended.
	if history[0].Content != "message "+strings.Repeat("x", 11) {
		t.Errorf("unexpected first message in window: %q", history[0].Content)
	}
	if history[19].Content != "message "+strings.Repeat("x", 30) {
		t.Errorf("unexpected last message in window: %q", history[19].Content)
	}
}

func TestAppendMessageBumpsConversation(t *testing.T) {
	repo := newFakeConversationRepository()
	svc := conversation.NewConversationService(repo)
	ctx := context.Background()

	older, _ := svc.CreateConversation(ctx, 1, "older")
	newer, _ := svc.CreateConversation(ctx, 1, "newer")

	time.Sleep(2 * time.Millisecond)
	if _, err := svc.AppendMessage(ctx, older, conversation.RoleUser, "bump", nil); err != nil {
		t.Fatalf("AppendMessage: %v", err)
	}

	list, err := svc.ListConversations(ctx, 1)
	if err != nil {
		t.Fatalf("ListConversations returned error: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("expected 2 conversations, got %d", len(list))
	}
	if list[0].PublicID != older.PublicID {
		t.Errorf("expected bumped conversation first, got %s (newer is %s)", list[0].PublicID, newer.PublicID)
	}
}
