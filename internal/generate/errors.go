package generate

import (
	"errors"
	"fmt"
)

// ErrInFlight is returned by Submit while an earlier submission is outstanding.
var ErrInFlight = errors.New("a generation is already in flight")

const (
	fallbackServiceReason = "Failed to generate content"
	transportReason       = "Unable to reach the generation service"
)

// ValidationError is a local pre-submission failure. The service is never contacted.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ServiceError is a structured error reported by the generation service.
type ServiceError struct {
	Status  int
	Message string
}

func (e *ServiceError) Error() string {
	return fmt.Sprintf("generation service: status %d: %s", e.Status, e.reason())
}

func (e *ServiceError) reason() string {
	if e.Message == "" {
		return fallbackServiceReason
	}
	return e.Message
}

// TransportError means no response came back from the generation service.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("generation service unreachable: %v", e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// Reason turns a generation error into the text shown to the user.
func Reason(err error) string {
	var verr *ValidationError
	var serr *ServiceError
	var terr *TransportError
	switch {
	case err == nil:
		return ""
	case errors.As(err, &verr):
		return verr.Message
	case errors.As(err, &serr):
		return serr.reason()
	case errors.As(err, &terr):
		return transportReason
	default:
		return fallbackServiceReason
	}
}
