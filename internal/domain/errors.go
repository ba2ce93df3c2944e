package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrFetchFailed marks a failed catalog or inventory read.
	ErrFetchFailed = errors.New("fetch failed")

	// ErrValidationFailed marks a local precondition that blocked a request
	// before it reached the network.
	ErrValidationFailed = errors.New("validation failed")

	// ErrEmptySelection is a validation failure: nothing with a quantity was selected.
	ErrEmptySelection = fmt.Errorf("%w: please select at least one item", ErrValidationFailed)

	// ErrRemoteRejected marks a request the remote API answered with an error status.
	ErrRemoteRejected = errors.New("remote rejected")

	ErrNotAuthenticated = errors.New("not authenticated")
	ErrNotFound         = errors.New("not found")
)

// LineError explains why one draft line or import row was rejected.
// Line is 1-based.
type LineError struct {
	Line      int    `json:"line"`
	ProductID string `json:"productId,omitempty"`
	Reason    string `json:"reason"`
}

func (e LineError) String() string {
	return fmt.Sprintf("line %d: %s", e.Line, e.Reason)
}

// ValidationError collects per-line reasons. It matches ErrValidationFailed.
type ValidationError struct {
	Lines []LineError
}

func (e *ValidationError) Error() string {
	if len(e.Lines) == 0 {
		return ErrValidationFailed.Error()
	}
	parts := make([]string, len(e.Lines))
	for i, l := range e.Lines {
		parts[i] = l.String()
	}
	return fmt.Sprintf("%s: %s", ErrValidationFailed, strings.Join(parts, "; "))
}

func (e *ValidationError) Unwrap() error { return ErrValidationFailed }

// NewValidationError builds a single-reason validation error.
func NewValidationError(reason string) error {
	return fmt.Errorf("%w: %s", ErrValidationFailed, reason)
}

// RemoteError is an error status returned by the remote API. Message holds
// the remote's own explanation when the body carried one.
type RemoteError struct {
	Status  int
	Message string
}

func (e *RemoteError) Error() string {
	return e.Message
}

func (e *RemoteError) Unwrap() error { return ErrRemoteRejected }

// UserMessage returns the text to show a user for err: the remote reason
// verbatim when there is one, the error text otherwise.
func UserMessage(err error) string {
	var remote *RemoteError
	if errors.As(err, &remote) {
		return remote.Message
	}
	return err.Error()
}
