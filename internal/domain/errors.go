package domain

import (
	"errors"
	"fmt"
)

// ErrEmptyState is returned when a turn begins on a conversation that
// contains no messages. This is a programming-contract violation in the
// caller and is fatal for the turn.
var ErrEmptyState = errors.New("conversation contains no messages")

// ValidationError signals a booking or update tool invoked without a
// required identifier or without authorization. It fails before any side
// effect and must surface to the caller rather than degrade into text.
type ValidationError struct {
	Tool   ToolName
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Tool, e.Reason)
}

// NewValidationError builds a ValidationError for a tool precondition.
func NewValidationError(tool ToolName, reason string) *ValidationError {
	return &ValidationError{Tool: tool, Reason: reason}
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
