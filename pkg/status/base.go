package status

import pkgerrors "github.com/pkg/errors"

// baseError carries the fields common to every Status: the underlying cause
// (if any), a display message, a categorizing Kind, and free-form details
// for structured logging.
type baseError struct {
	cause   error
	message string
	kind    Kind
	details map[string]any
}

// newBaseError builds a baseError with no underlying cause.
func newBaseError(kind Kind, msg string) *baseError {
	return &baseError{kind: kind, message: msg}
}

// wrapBaseError builds a baseError around an existing failure, using
// pkg/errors so the original stack trace and Cause() chain survive
// alongside Go's native errors.Is/errors.As.
func wrapBaseError(cause error, kind Kind, msg string) *baseError {
	if cause == nil {
		return newBaseError(kind, msg)
	}
	return &baseError{cause: pkgerrors.Wrap(cause, msg), kind: kind, message: msg}
}

// WithDetail adds contextual information to help with debugging and
// structured logging. The details map is lazily initialized.
func (be *baseError) WithDetail(key string, value any) *baseError {
	if be.details == nil {
		be.details = make(map[string]any)
	}
	be.details[key] = value
	return be
}

// Error implements the error interface.
func (b *baseError) Error() string {
	if b.cause != nil {
		return b.message + ": " + b.cause.Error()
	}
	return b.message
}

// Unwrap enables errors.Is/errors.As against the underlying cause.
func (b *baseError) Unwrap() error {
	return b.cause
}

// Kind returns the Status category.
func (b *baseError) Kind() Kind {
	return b.kind
}

// Details returns the structured context attached to this error.
func (b *baseError) Details() map[string]any {
	return b.details
}
