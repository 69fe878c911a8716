package common

import (
	"errors"
	"strings"
)

// ErrValidation is matched by every ValidationError via errors.Is.
var ErrValidation = errors.New("validation error")

// ValidationError is a local form error. It never reaches the network and
// its message is shown to the user as-is.
type ValidationError struct {
	Field   string
	Message string
}

func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

func (e *ValidationError) Error() string {
	return e.Message
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// messenger is implemented by errors that carry a server-supplied message.
type messenger interface {
	ServerMessage() string
}

// UserMessage turns err into the text shown inline to the user.
//
// Validation errors are shown verbatim, errors carrying a server message
// show that message, everything else collapses to fallback.
func UserMessage(err error, fallback string) string {
	if err == nil {
		return ""
	}

	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Message
	}

	var m messenger
	if errors.As(err, &m) {
		if msg := strings.TrimSpace(m.ServerMessage()); msg != "" {
			return msg
		}
	}

	return fallback
}
