package dbschema

import (
	"encoding/json"

	"gorm.io/datatypes"

	"todo-server/services/todo-api/internal/domain/conversation"
	"todo-server/services/todo-api/internal/infrastructure/database"
)

func init() {
	database.RegisterSchemaForAutoMigrate(Conversation{})
	database.RegisterSchemaForAutoMigrate(Message{})
}

// Conversation represents the persisted conversation schema.
type Conversation struct {
	BaseModel
	PublicID string  `gorm:"type:varchar(50);uniqueIndex;not null"`
	UserID   uint    `gorm:"index:idx_conversation_user_updated;not null"`
	User     User    `gorm:"foreignKey:UserID"`
	Title    *string `gorm:"type:varchar(256)"`

	Messages []Message `gorm:"foreignKey:ConversationID"`
}

// Message represents the persisted message schema. The tool-call audit trail
// is stored as a JSONB column on the message row.
type Message struct {
	BaseModel
	PublicID       string         `gorm:"type:varchar(50);uniqueIndex;not null"`
	ConversationID uint           `gorm:"index:idx_message_conversation_created;not null"`
	Conversation   Conversation   `gorm:"foreignKey:ConversationID"`
	Role           string         `gorm:"type:varchar(20);not null"`
	Content        string         `gorm:"type:text;not null"`
	ToolCalls      datatypes.JSON `gorm:"type:jsonb"`
}

// NewSchemaConversation converts a domain conversation into a schema instance.
func NewSchemaConversation(c *conversation.Conversation) *Conversation {
	if c == nil {
		return nil
	}

	return &Conversation{
		BaseModel: BaseModel{
			ID:        c.ID,
			CreatedAt: c.CreatedAt,
			UpdatedAt: c.UpdatedAt,
		},
		PublicID: c.PublicID,
		UserID:   c.UserID,
		Title:    c.Title,
	}
}

// EtoD converts the schema entity into a domain conversation.
func (e *Conversation) EtoD() *conversation.Conversation {
	if e == nil {
		return nil
	}

	return &conversation.Conversation{
		ID:        e.ID,
		PublicID:  e.PublicID,
		UserID:    e.UserID,
		Title:     e.Title,
		CreatedAt: e.CreatedAt,
		UpdatedAt: e.UpdatedAt,
	}
}

// NewSchemaMessage converts a domain message into a schema instance.
func NewSchemaMessage(m *conversation.Message) (*Message, error) {
	if m == nil {
		return nil, nil
	}

	var toolCalls datatypes.JSON
	if len(m.ToolCalls) > 0 {
		data, err := json.Marshal(m.ToolCalls)
		if err != nil {
			return nil, err
		}
		toolCalls = datatypes.JSON(data)
	}

	return &Message{
		BaseModel: BaseModel{
			ID:        m.ID,
			CreatedAt: m.CreatedAt,
		},
		PublicID:       m.PublicID,
		ConversationID: m.ConversationID,
		Role:           string(m.Role),
		Content:        m.Content,
		ToolCalls:      toolCalls,
	}, nil
}

// EtoD converts the schema entity into a domain message.
func (e *Message) EtoD() (*conversation.Message, error) {
	if e == nil {
		return nil, nil
	}

	var toolCalls []conversation.ToolCallRecord
	if len(e.ToolCalls) > 0 {
		if err := json.Unmarshal(e.ToolCalls, &toolCalls); err != nil {
			return nil, err
		}
	}

	return &conversation.Message{
		ID:             e.ID,
		PublicID:       e.PublicID,
		ConversationID: e.ConversationID,
		Role:           conversation.MessageRole(e.Role),
		Content:        e.Content,
		ToolCalls:      toolCalls,
		CreatedAt:      e.CreatedAt,
	}, nil
}
