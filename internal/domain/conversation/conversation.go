package conversation

import (
	"context"
	"encoding/json"
	"time"
)

// ===============================================
// Conversation Types
// ===============================================

type MessageRole string

const (
	RoleUser      MessageRole = "user"
	RoleAssistant MessageRole = "assistant"
	RoleSystem    MessageRole = "system"
)

// ValidRole reports whether r is one of the three allowed message roles.
func ValidRole(r MessageRole) bool {
	switch r {
	case RoleUser, RoleAssistant, RoleSystem:
		return true
	}
	return false
}

const (
	MaxMessageLength = 10_000
	MaxTitleSeedLen  = 50
)

// Conversation is a chat thread owned by exactly one user. Its UpdatedAt is
// bumped on every appended message so listing can order by recency.
type Conversation struct {
	ID       uint    `json:"-"`
	PublicID string  `json:"id"` // String ID like "conv_abc123"
	UserID   uint    `json:"-"`
	Title    *string `json:"title,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Message is one immutable turn in a conversation. Messages are append-only
// and strictly ordered by creation time; they are never edited or removed.
type Message struct {
	ID             uint             `json:"-"`
	PublicID       string           `json:"id"` // String ID like "msg_abc123"
	ConversationID uint             `json:"-"`
	Role           MessageRole      `json:"role"`
	Content        string           `json:"content"`
	ToolCalls      []ToolCallRecord `json:"tool_calls,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

// ToolCallRecord is the audit trail of one tool invocation made while
// producing an assistant message. It is metadata on the message, not an
// entity of its own.
type ToolCallRecord struct {
	Tool      string          `json:"tool"`
	Arguments json.RawMessage `json:"arguments"`
	Result    json.RawMessage `json:"result"`
}

// ===============================================
// Conversation Repository
// ===============================================

type ConversationFilter struct {
	ID       *uint
	PublicID *string
	UserID   *uint
}

type ConversationRepository interface {
	Create(ctx context.Context, conv *Conversation) error
	FindByFilter(ctx context.Context, filter ConversationFilter) ([]*Conversation, error)
	FindByPublicID(ctx context.Context, publicID string) (*Conversation, error)
	// Update persists the conversation's mutable fields (title, updated-at).
	Update(ctx context.Context, conv *Conversation) error

	// AddMessage persists a message and bumps the parent conversation's
	// updated timestamp in the same transaction.
	AddMessage(ctx context.Context, conversationID uint, msg *Message) error
	// RecentMessages returns at most limit of the newest messages in the
	// conversation, reordered oldest-first.
	RecentMessages(ctx context.Context, conversationID uint, limit int) ([]*Message, error)
	// AllMessages returns the full transcript oldest-first.
	AllMessages(ctx context.Context, conversationID uint) ([]*Message, error)
	CountMessages(ctx context.Context, conversationID uint) (int64, error)
}

// ===============================================
// Conversation Factory Functions
// ===============================================

// NewConversation creates a conversation titled from the seed text,
// truncated to MaxTitleSeedLen with a trailing ellipsis when longer.
func NewConversation(publicID string, userID uint, seedTitle string) *Conversation {
	now := time.Now().UTC()

	title := seedTitle
	if len(title) > MaxTitleSeedLen {
		title = title[:MaxTitleSeedLen] + "..."
	}

	conv := &Conversation{
		PublicID:  publicID,
		UserID:    userID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if title != "" {
		conv.Title = &title
	}
	return conv
}
