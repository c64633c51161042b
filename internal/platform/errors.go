package platform

import (
	"errors"
	"fmt"
)

type ErrorKind string

const (
	// KindTransport covers timeouts, refused connections and unreadable responses.
	KindTransport ErrorKind = "transport"
	// KindRejection is a structured failure returned by the platform.
	KindRejection ErrorKind = "rejection"
)

// Error is the only error type returned by Client methods.
type Error struct {
	Op      string
	Kind    ErrorKind
	Status  int
	Message string
	Err     error
}

func (e *Error) Error() string {
	switch {
	case e.Err != nil:
		return fmt.Sprintf("platform %s: %s: %v", e.Op, e.Kind, e.Err)
	case e.Status != 0:
		return fmt.Sprintf("platform %s: %s (status %d): %s", e.Op, e.Kind, e.Status, e.Message)
	default:
		return fmt.Sprintf("platform %s: %s: %s", e.Op, e.Kind, e.Message)
	}
}

func (e *Error) Unwrap() error { return e.Err }

func IsTransport(err error) bool {
	var pe *Error
	return errors.As(err, &pe) && pe.Kind == KindTransport
}

func IsRejection(err error) bool {
	var pe *Error
	return errors.As(err, &pe) && pe.Kind == KindRejection
}
