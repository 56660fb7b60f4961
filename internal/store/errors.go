package store

import "errors"

// ErrNotFound is returned when a mutation references an id that is not
// in the collection. It usually means the caller's view is stale.
var ErrNotFound = errors.New("record not found")

// ValidationError reports a field that failed its validation rule. It
// is an expected, recoverable outcome, never a fatal failure.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return "invalid " + e.Field + ": " + e.Reason
}

// PersistenceError reports that the medium rejected a write. The
// in-memory collection has been rolled back to its pre-mutation state;
// callers should warn the user that the change did not survive.
type PersistenceError struct {
	Err error
}

func (e *PersistenceError) Error() string {
	return "persist collection: " + e.Err.Error()
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}
