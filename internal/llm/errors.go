package llm

import (
	"context"
	"errors"
	"fmt"
)

// ErrorKind classifies structured generation failures
type ErrorKind string

const (
	// KindProviderUnavailable means the provider could not be reached after retries
	KindProviderUnavailable ErrorKind = "provider_unavailable"
	// KindSchemaViolation means the output never satisfied the target schema
	KindSchemaViolation ErrorKind = "schema_violation"
	// KindTimeout means the context expired before a valid response arrived
	KindTimeout ErrorKind = "timeout"
)

// GatewayError is returned by Generate when no valid instance could be produced
type GatewayError struct {
	Kind     ErrorKind
	Target   string
	Attempts int
	Cause    error
}

func (e *GatewayError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("structured generation of %s failed (%s after %d attempt(s)): %v", e.Target, e.Kind, e.Attempts, e.Cause)
	}
	return fmt.Sprintf("structured generation of %s failed (%s after %d attempt(s))", e.Target, e.Kind, e.Attempts)
}

func (e *GatewayError) Unwrap() error {
	return e.Cause
}

// IsKind reports whether err is a GatewayError of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var gerr *GatewayError
	return errors.As(err, &gerr) && gerr.Kind == kind
}

func isContextErr(err error) bool {
	return errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled)
}
