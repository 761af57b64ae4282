package planner

import "errors"

// InvalidRequestError marks user-facing validation failures: an empty prompt,
// or a request from which no URL could be resolved. It is the only error
// class allowed to abort a run.
type InvalidRequestError struct {
	Message string
}

func (e *InvalidRequestError) Error() string {
	return e.Message
}

// NewInvalidRequest creates an InvalidRequestError with the given message
func NewInvalidRequest(message string) *InvalidRequestError {
	return &InvalidRequestError{Message: message}
}

// IsInvalidRequest reports whether err is (or wraps) an InvalidRequestError
func IsInvalidRequest(err error) bool {
	var invalid *InvalidRequestError
	return errors.As(err, &invalid)
}
