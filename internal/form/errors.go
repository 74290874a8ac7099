// internal/form/errors.go
//
// Formdesk - forms subsystem: error taxonomy.
//
// Context
//   Handlers map these onto HTTP statuses: ErrBadRequest → 400,
//   ErrForbidden → 403, ErrNotFound → 404, ErrConflict → 409, and
//   ValidationError → 400 with the full message list.  Anything else is an
//   internal failure and is logged, never echoed.
//
//------------------------------------------------------------------------------

package form

import (
	"errors"
	"strings"
)

var (
	ErrBadRequest = errors.New("bad request")
	ErrForbidden  = errors.New("caller identity required")
	ErrNotFound   = errors.New("form not found")
	ErrConflict   = errors.New("form id already in use")
)

// InputError is a malformed-payload failure with a user-facing message.  It
// matches ErrBadRequest under errors.Is.
type InputError struct{ Message string }

func (e *InputError) Error() string        { return "bad request: " + e.Message }
func (e *InputError) Is(target error) bool { return target == ErrBadRequest }

func badRequest(msg string) error { return &InputError{Message: msg} }

// ValidationError carries every field violation of one submission, in form
// field order.
type ValidationError struct{ Messages []string }

func (ve *ValidationError) Error() string {
	return "form validation failed: " + strings.Join(ve.Messages, "; ")
}

// IsValidationError reports whether err came from a rejected submission.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// Messages returns the user-facing text of a bad-request or validation error.
// The boolean is false for internal failures.
func Messages(err error) ([]string, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Messages, true
	}
	var ie *InputError
	if errors.As(err, &ie) {
		return []string{ie.Message}, true
	}
	return nil, false
}
