package errors

import (
	"errors"
	"fmt"
)

// Common error values shared across the client packages
var (
	// Session errors
	ErrNotReady     = errors.New("session not ready")
	ErrEmptyToken   = errors.New("empty token")
	ErrNoToken      = errors.New("no token")
	ErrNotPersisted = errors.New("token not persisted")

	// Store errors
	ErrUnsupportedBackend = errors.New("unsupported store backend")

	// Cache errors
	ErrNoFetcher   = errors.New("no fetch function registered")
	ErrCacheClosed = errors.New("cache closed")

	// General errors
	ErrNotFound       = errors.New("not found")
	ErrInvalidRequest = errors.New("invalid request")
)

// Wrapf wraps an error with context using fmt.Errorf
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}

// Is reports whether any error in err's chain matches target
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

// Join returns an error that wraps the given errors, discarding nils.
func Join(errs ...error) error {
	return errors.Join(errs...)
}
