package shared

import (
	"errors"
	"fmt"
)

var (
	// ErrUnauthenticated indicates no caller identity was presented at all.
	ErrUnauthenticated = errors.New("unauthenticated")
	// ErrUnauthorized indicates the caller resolved but is not an administrator.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrNotFound indicates resource not found.
	ErrNotFound = errors.New("not found")
	// ErrValidation indicates a malformed input field.
	ErrValidation = errors.New("validation failed")
	// ErrDuplicate indicates a unique constraint was violated.
	ErrDuplicate = errors.New("duplicate entry")
	// ErrConflict indicates the stored record moved past the caller's precondition.
	ErrConflict = errors.New("conflict")
	// ErrProviderUnavailable indicates the external identity provider is unreachable.
	ErrProviderUnavailable = errors.New("identity provider unavailable")
)

// PartialDeleteError reports a delete where the local record was removed but the
// mirrored identity was not. The external id is kept so an operator can finish
// the removal at the provider.
type PartialDeleteError struct {
	ExternalID string
	Err        error
}

func (e *PartialDeleteError) Error() string {
	return fmt.Sprintf("local record deleted, mirrored identity %s remains: %v", e.ExternalID, e.Err)
}

func (e *PartialDeleteError) Unwrap() error {
	return e.Err
}
