package queue

import (
	"errors"
	"fmt"
)

// PermanentError marks a job failure that retrying cannot fix. The worker
// moves the job straight to the terminal failed state.
type PermanentError struct {
	Err error
}

func (e *PermanentError) Error() string {
	return e.Err.Error()
}

func (e *PermanentError) Unwrap() error {
	return e.Err
}

// Permanent wraps err so the worker skips the retry schedule.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &PermanentError{Err: err}
}

// IsPermanent reports whether err carries a PermanentError anywhere in its
// chain.
func IsPermanent(err error) bool {
	var pe *PermanentError
	return errors.As(err, &pe)
}

// PayloadError reports a payload that failed to decode or validate at
// dequeue time. Always permanent: redelivering the same bytes cannot help.
type PayloadError struct {
	Queue   string
	Message string
	Cause   error
}

func (e *PayloadError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("invalid payload on %s: %s: %v", e.Queue, e.Message, e.Cause)
	}
	return fmt.Sprintf("invalid payload on %s: %s", e.Queue, e.Message)
}

func (e *PayloadError) Unwrap() error {
	return e.Cause
}
