package storage

import (
	"fmt"

	"github.com/aayushbajaj/activity-telemetry/internal/model"
)

// StoreError reports a failed storage operation. It unwraps to both the
// driver error and model.ErrPersistence so callers can tell a failure apart
// from an empty result.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("storage: %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() []error {
	return []error{e.Err, model.ErrPersistence}
}

func wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	return &StoreError{Op: op, Err: err}
}
