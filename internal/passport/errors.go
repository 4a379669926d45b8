// internal/passport/errors.go
package passport

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound          = errors.New("item not found")
	ErrInvalidTransition = errors.New("invalid status transition")
	// ErrDuplicateID is returned by stores when a freshly generated resource
	// id collides with an existing item; Submit retries on it.
	ErrDuplicateID = errors.New("resource id already exists")
	// ErrVersionConflict signals that the item changed between read and write.
	ErrVersionConflict = errors.New("concurrent modification detected")
)

// ValidationError reports malformed or out-of-policy input. It is always
// raised before any write, so a failed validation leaves no trace.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// PersistenceError wraps a store failure. The store's transaction boundary
// guarantees the item row and its ledger entry were applied together or not
// at all, so the aggregate is never half-updated behind this error.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence failure during %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}
