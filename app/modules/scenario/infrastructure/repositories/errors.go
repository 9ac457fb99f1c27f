package scenariodb

import "errors"

var (
	// ErrNotFound is returned when a user has no stored history.
	ErrNotFound = errors.New("scenario history not found")

	// ErrVersionConflict is returned when another writer saved the history
	// after it was loaded.
	ErrVersionConflict = errors.New("scenario history version conflict")

	// ErrStorage marks persistence read/write failures.
	ErrStorage = errors.New("scenario storage failure")
)

// StorageError wraps a persistence failure so callers can match ErrStorage
// while keeping the driver error in the chain.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return "scenario storage " + e.Op + ": " + e.Err.Error()
}

func (e *StorageError) Unwrap() []error { return []error{ErrStorage, e.Err} }

func storageErr(op string, err error) error {
	return &StorageError{Op: op, Err: err}
}
