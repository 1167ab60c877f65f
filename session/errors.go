package session

import (
	"fmt"

	apperrors "github.com/jrsteele09/go-booking-client/internal/errors"
)

var (
	// ErrNotReady is returned when the token is read before the restore finished.
	ErrNotReady = apperrors.ErrNotReady
	// ErrEmptyToken is returned when signing in with an empty token.
	ErrEmptyToken = apperrors.ErrEmptyToken
)

// PersistenceError reports that the in-memory session changed but the
// durable mirror could not be updated. The write stays pending until
// RetryPersist succeeds or a later sign-in/sign-out supersedes it.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("session: %s: durable write failed: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// Is lets callers match any persistence failure with errors.Is(err, ErrNotPersisted).
func (e *PersistenceError) Is(target error) bool {
	return target == apperrors.ErrNotPersisted
}

// ErrNotPersisted matches every *PersistenceError.
var ErrNotPersisted = apperrors.ErrNotPersisted

// ErrNoToken is returned by Claims when the session is anonymous.
var ErrNoToken = apperrors.ErrNoToken
