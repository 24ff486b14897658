package conversation

import (
	"context"

	"todo-server/services/todo-api/internal/utils/idgen"
	"todo-server/services/todo-api/internal/utils/platformerrors"
)

// ConversationService handles business logic for conversations and their
// messages. Nothing is cached between calls: every request reconstructs its
// context from the repository so any process instance can serve any request.
type ConversationService struct {
	repo      ConversationRepository
	validator *ConversationValidator
}

func NewConversationService(repo ConversationRepository) *ConversationService {
	return &ConversationService{
		repo:      repo,
		validator: NewConversationValidator(),
	}
}

// CreateConversation creates a conversation for userID titled from seedTitle.
func (s *ConversationService) CreateConversation(ctx context.Context, userID uint, seedTitle string) (*Conversation, error) {
	publicID, err := idgen.GenerateSecureID("conv", 16)
	if err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "failed to generate conversation ID")
	}

	conv := NewConversation(publicID, userID, seedTitle)
	if err := s.repo.Create(ctx, conv); err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "failed to create conversation")
	}

	return conv, nil
}

// GetOwnedConversation retrieves a conversation by public ID and validates
// ownership. Missing and foreign conversations are both NOT_FOUND so callers
// cannot probe for other users' conversation IDs.
func (s *ConversationService) GetOwnedConversation(ctx context.Context, userID uint, publicID string) (*Conversation, error) {
	if err := s.validator.ValidateConversationID(publicID); err != nil {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeValidation, "invalid conversation ID", err, "4b5c6d7e-8f9a-4b0c-8d1e-2f3a4b5c6d7e")
	}

	conv, err := s.repo.FindByPublicID(ctx, publicID)
	if err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "conversation not found")
	}

	if conv.UserID != userID {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeNotFound, "conversation not found", nil, "6d7e8f9a-0b1c-4d2e-8f3a-4b5c6d7e8f9a")
	}

	return conv, nil
}

// ListConversations returns the caller's conversations, most recently
// updated first.
func (s *ConversationService) ListConversations(ctx context.Context, userID uint) ([]*Conversation, error) {
	conversations, err := s.repo.FindByFilter(ctx, ConversationFilter{UserID: &userID})
	if err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "failed to list conversations")
	}
	return conversations, nil
}

// LoadHistory returns at most limit of the newest messages in the
// conversation, oldest-first, ready to replay to the resolver.
func (s *ConversationService) LoadHistory(ctx context.Context, conv *Conversation, limit int) ([]*Message, error) {
	messages, err := s.repo.RecentMessages(ctx, conv.ID, limit)
	if err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "failed to load conversation history")
	}
	return messages, nil
}

// Transcript returns the full message history of an owned conversation.
func (s *ConversationService) Transcript(ctx context.Context, conv *Conversation) ([]*Message, error) {
	messages, err := s.repo.AllMessages(ctx, conv.ID)
	if err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "failed to load conversation messages")
	}
	return messages, nil
}

// AppendMessage validates and durably appends one message, bumping the
// parent conversation's updated timestamp. Messages are immutable once
// written.
func (s *ConversationService) AppendMessage(ctx context.Context, conv *Conversation, role MessageRole, content string, toolCalls []ToolCallRecord) (*Message, error) {
	if err := s.validator.ValidateMessage(role, content); err != nil {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeValidation, err.Error(), nil, "8f9a0b1c-2d3e-4f4a-8b5c-6d7e8f9a0b1c")
	}

	publicID, err := idgen.GenerateSecureID("msg", 16)
	if err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "failed to generate message ID")
	}

	msg := &Message{
		PublicID:       publicID,
		ConversationID: conv.ID,
		Role:           role,
		Content:        content,
		ToolCalls:      toolCalls,
	}

	if err := s.repo.AddMessage(ctx, conv.ID, msg); err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "failed to append message")
	}

	return msg, nil
}
