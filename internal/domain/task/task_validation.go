package task

import (
	"errors"
	"fmt"
	"strings"
)

// TaskValidator enforces the task field bounds shared by the REST handlers
// and the agent tools.
type TaskValidator struct{}

func NewTaskValidator() *TaskValidator {
	return &TaskValidator{}
}

// ValidateTitle checks the title is non-empty after trimming and within bounds.
func (v *TaskValidator) ValidateTitle(title string) error {
	if strings.TrimSpace(title) == "" {
		return errors.New("title is required and cannot be empty")
	}
	if len(title) > MaxTitleLength {
		return fmt.Errorf("title cannot exceed %d characters", MaxTitleLength)
	}
	return nil
}

// ValidateDescription checks an optional description against its bound.
func (v *TaskValidator) ValidateDescription(description *string) error {
	if description == nil {
		return nil
	}
	if len(*description) > MaxDescriptionLength {
		return fmt.Errorf("description cannot exceed %d characters", MaxDescriptionLength)
	}
	return nil
}

// ValidateStatus checks a status value against the allowed set.
func (v *TaskValidator) ValidateStatus(status TaskStatus) error {
	if !ValidStatus(status) {
		return fmt.Errorf("status must be one of: %s, %s, %s", StatusPending, StatusInProgress, StatusCompleted)
	}
	return nil
}
