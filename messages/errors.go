package messages

import "fmt"

// ErrorCode represents a unified error code for message handling failures.
type ErrorCode string

const (
	// ErrCodeTypeMismatch: the merge engine met structurally incompatible
	// values at a key. Never silently coerced.
	ErrCodeTypeMismatch ErrorCode = "TYPE_MISMATCH"
	// ErrCodeRoleConflict: two chunks of incompatible kinds, or of the same
	// kind with different discriminants, were combined.
	ErrCodeRoleConflict ErrorCode = "ROLE_CONFLICT"
	// ErrCodeUnsupportedRole: a dict-form message carried an unrecognized
	// role or type string.
	ErrCodeUnsupportedRole ErrorCode = "UNSUPPORTED_ROLE"
	// ErrCodeInvalidMessage: a dict-form message was structurally invalid
	// (wrong shape, missing required field).
	ErrCodeInvalidMessage ErrorCode = "INVALID_MESSAGE"
)

// Error is a structured message-handling error with code and optional cause.
type Error struct {
	Code    ErrorCode
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Cause
}

// NewError creates a new Error with the given code and message.
func NewError(code ErrorCode, message string) *Error {
	return &Error{Code: code, Message: message}
}

// WithCause adds a cause to the error.
func (e *Error) WithCause(cause error) *Error {
	e.Cause = cause
	return e
}

// GetErrorCode extracts the error code from an error.
func GetErrorCode(err error) ErrorCode {
	if e, ok := err.(*Error); ok {
		return e.Code
	}
	return ""
}

func roleConflictf(format string, args ...any) *Error {
	return NewError(ErrCodeRoleConflict, fmt.Sprintf(format, args...))
}

func unsupportedRolef(format string, args ...any) *Error {
	return NewError(ErrCodeUnsupportedRole, fmt.Sprintf(format, args...))
}

func invalidMessagef(format string, args ...any) *Error {
	return NewError(ErrCodeInvalidMessage, fmt.Sprintf(format, args...))
}
