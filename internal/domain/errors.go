package domain

import (
	"errors"
	"fmt"
)

// ErrorKind classifies failures so callers can branch on them without
// parsing messages.
type ErrorKind string

const (
	KindValidation     ErrorKind = "VALIDATION_ERROR"
	KindAuthentication ErrorKind = "AUTHENTICATION_ERROR"
	KindAuthorization  ErrorKind = "AUTHORIZATION_ERROR"
	KindConflict       ErrorKind = "CONFLICT"
	KindState          ErrorKind = "STATE_ERROR"
	KindNotFound       ErrorKind = "NOT_FOUND"
	KindTransport      ErrorKind = "TRANSPORT_ERROR"
	KindUnsupported    ErrorKind = "UNSUPPORTED"
	KindInternal       ErrorKind = "INTERNAL_ERROR"
)

// Error is the error type shared by the client models and the backend.
// Message, when set, is safe to show to an end user.
type Error struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *Error) Error() string {
	switch {
	case e.Message != "" && e.Err != nil:
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	case e.Message != "":
		return fmt.Sprintf("%s: %s", e.Kind, e.Message)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	}
	return string(e.Kind)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is the sentinel of the same kind. Sentinels are
// the package-level Err* values and carry no message.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Message == "" && t.Err == nil && t.Kind == e.Kind
}

var (
	ErrValidation     = &Error{Kind: KindValidation}
	ErrAuthentication = &Error{Kind: KindAuthentication}
	ErrAuthorization  = &Error{Kind: KindAuthorization}
	ErrConflict       = &Error{Kind: KindConflict}
	ErrState          = &Error{Kind: KindState}
	ErrNotFound       = &Error{Kind: KindNotFound}
	ErrTransport      = &Error{Kind: KindTransport}
	ErrUnsupported    = &Error{Kind: KindUnsupported}
	ErrInternal       = &Error{Kind: KindInternal}
)

func NewValidationError(message string) *Error {
	return &Error{Kind: KindValidation, Message: message}
}

func NewAuthenticationError(message string) *Error {
	return &Error{Kind: KindAuthentication, Message: message}
}

func NewAuthorizationError(message string) *Error {
	return &Error{Kind: KindAuthorization, Message: message}
}

func NewConflictError(message string) *Error {
	return &Error{Kind: KindConflict, Message: message}
}

func NewStateError(message string) *Error {
	return &Error{Kind: KindState, Message: message}
}

func NewNotFoundError(resource string, id any) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf("%s %v not found", resource, id)}
}

func NewUnsupportedError(message string) *Error {
	return &Error{Kind: KindUnsupported, Message: message}
}

func NewTransportError(err error) *Error {
	return &Error{Kind: KindTransport, Err: err}
}

func NewInternalError(err error) *Error {
	return &Error{Kind: KindInternal, Err: err}
}

// KindOf returns the kind of the first *Error in err's chain, or
// KindInternal when there is none.
func KindOf(err error) ErrorKind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return KindInternal
}

var fallbackMessages = map[ErrorKind]string{
	KindValidation:     "Please check the required fields and try again.",
	KindAuthentication: "Authentication failed. Please log in again.",
	KindAuthorization:  "You are not allowed to perform this action.",
	KindConflict:       "This item was changed by someone else. Please refresh and try again.",
	KindState:          "This action is not allowed in the item's current state.",
	KindNotFound:       "This item is no longer available.",
	KindTransport:      "Unable to reach the server. Please try again.",
	KindUnsupported:    "This feature is not available yet.",
	KindInternal:       "Something went wrong. Please try again.",
}

// UserMessage returns the message to display for err: the carried message
// when there is one, otherwise a generic text for its kind.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var de *Error
	if errors.As(err, &de) {
		if de.Message != "" {
			return de.Message
		}
		return fallbackMessages[de.Kind]
	}
	return fallbackMessages[KindInternal]
}
