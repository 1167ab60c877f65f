// Package credstore defines the durable key/value storage used to keep the
// session token across restarts.
//
// A Store wraps whatever persistent storage the host provides: a file in the
// user's home directory, a redis instance, or a SQL database. Stores report
// every failure as a *StorageError; the caller decides on fallback behaviour.
package credstore

import (
	"context"
	"fmt"
)

// TokenKey is the fixed name under which the session token is stored.
const TokenKey = "@token"

// Store defines the interface for durable credential storage backends.
// Operations on the same name from the same caller are observed in call order.
type Store interface {
	// Get retrieves the value stored under name. It returns the value,
	// a boolean indicating whether the name was found, and an error if
	// the lookup failed.
	Get(ctx context.Context, name string) (value string, found bool, err error)

	// Set stores value under name, overwriting any previous value.
	Set(ctx context.Context, name, value string) error

	// Remove deletes the value stored under name. Removing a name that
	// does not exist is not an error.
	Remove(ctx context.Context, name string) error
}

// Operation names reported in StorageError.Op
const (
	OpGet    = "get"
	OpSet    = "set"
	OpRemove = "remove"
)

// StorageError reports a failed durable read or write.
type StorageError struct {
	Op   string
	Name string
	Err  error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("credstore: %s %q: %v", e.Op, e.Name, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// Wrap returns err as a *StorageError for op on name. It returns nil for a
// nil err and leaves an existing *StorageError untouched.
func Wrap(op, name string, err error) error {
	if err == nil {
		return nil
	}
	if se, ok := err.(*StorageError); ok {
		return se
	}
	return &StorageError{Op: op, Name: name, Err: err}
}
