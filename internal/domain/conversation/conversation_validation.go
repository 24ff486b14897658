package conversation

import (
	"errors"
	"fmt"
	"strings"
)

// ConversationValidator enforces message bounds before anything is persisted.
type ConversationValidator struct{}

func NewConversationValidator() *ConversationValidator {
	return &ConversationValidator{}
}

// ValidateMessage checks role and content of a message about to be appended.
func (v *ConversationValidator) ValidateMessage(role MessageRole, content string) error {
	if !ValidRole(role) {
		return fmt.Errorf("role must be one of: %s, %s, %s", RoleUser, RoleAssistant, RoleSystem)
	}
	if strings.TrimSpace(content) == "" {
		return errors.New("message content cannot be empty")
	}
	if len(content) > MaxMessageLength {
		return fmt.Errorf("message content cannot exceed %d characters", MaxMessageLength)
	}
	return nil
}

// ValidateConversationID checks the public ID shape without touching storage.
func (v *ConversationValidator) ValidateConversationID(publicID string) error {
	if !strings.HasPrefix(publicID, "conv_") {
		return errors.New("invalid conversation ID format")
	}
	return nil
}
