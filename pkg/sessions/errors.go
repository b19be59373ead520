package sessions

import (
	"errors"
	"fmt"
)

var (
	ErrStorage    = errors.New("storage error")
	ErrValidation = errors.New("validation error")
	ErrClosed     = errors.New("session store closed")
)

// StorageError reports a failing persistence backend (disk full, locked
// database, corrupt file...).
type StorageError struct {
	Op   string
	Name string
	Err  error
}

func (e *StorageError) Error() string {
	if e == nil {
		return ErrStorage.Error()
	}
	if e.Name == "" {
		return fmt.Sprintf("%s: %s: %v", ErrStorage, e.Op, e.Err)
	}
	return fmt.Sprintf("%s: %s %q: %v", ErrStorage, e.Op, e.Name, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

func (e *StorageError) Is(target error) bool { return target == ErrStorage }

// ValidationError reports an unusable session name.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e == nil {
		return ErrValidation.Error()
	}
	return fmt.Sprintf("%s (%s): %s", ErrValidation, e.Field, e.Reason)
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

func storageErr(op string, name string, err error) error {
	if err == nil {
		return nil
	}
	return &StorageError{Op: op, Name: name, Err: err}
}
