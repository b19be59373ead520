package exchange

import (
	"fmt"

	"github.com/go-go-golems/replayer/pkg/claude/api"
	"github.com/pkg/errors"
)

var (
	ErrValidation = errors.New("validation error")
	ErrRemote     = errors.New("remote error")
	ErrEditClosed = errors.New("edit session already finished")
)

// ValidationError reports missing input detected before any I/O.
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

// RemoteError reports a failed call to the conversational API. Status is 0
// for transport failures, in which case Err holds the cause.
type RemoteError struct {
	Status  int
	Type    string
	Message string
	Err     error
}

func (e *RemoteError) Error() string {
	if e == nil {
		return ErrRemote.Error()
	}
	switch {
	case e.Status != 0 && e.Type != "":
		return fmt.Sprintf("%s: %d %s: %s", ErrRemote, e.Status, e.Type, e.Message)
	case e.Status != 0:
		return fmt.Sprintf("%s: %d: %s", ErrRemote, e.Status, e.Message)
	default:
		return fmt.Sprintf("%s: %s", ErrRemote, e.Message)
	}
}

func (e *RemoteError) Unwrap() error { return e.Err }

func (e *RemoteError) Is(target error) bool { return target == ErrRemote }

func newRemoteError(err error) *RemoteError {
	var apiErr *api.APIError
	if errors.As(err, &apiErr) {
		return &RemoteError{
			Status:  apiErr.StatusCode,
			Type:    apiErr.Type,
			Message: apiErr.Message,
			Err:     err,
		}
	}
	return &RemoteError{Message: err.Error(), Err: err}
}
