package observability

import (
	"errors"
	"fmt"
)

// ObservabilityErrorCode represents error codes specific to observability setup.
type ObservabilityErrorCode string

const (
	// ErrExporterConnection indicates an exporter could not be created.
	ErrExporterConnection ObservabilityErrorCode = "OBSERVABILITY_EXPORTER_CONNECTION"

	// ErrInvalidConfig indicates a tracing or metrics configuration is unusable.
	ErrInvalidConfig ObservabilityErrorCode = "OBSERVABILITY_INVALID_CONFIG"

	// ErrShutdownTimeout indicates pending telemetry could not be flushed in time.
	ErrShutdownTimeout ObservabilityErrorCode = "OBSERVABILITY_SHUTDOWN_TIMEOUT"
)

// ObservabilityError represents a structured error for observability operations.
type ObservabilityError struct {
	Code    ObservabilityErrorCode
	Message string
	Cause   error
}

// Error returns "[CODE] message" or "[CODE] message: cause".
func (e *ObservabilityError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *ObservabilityError) Unwrap() error {
	return e.Cause
}

// Is matches another ObservabilityError by code.
func (e *ObservabilityError) Is(target error) bool {
	var obsErr *ObservabilityError
	if errors.As(target, &obsErr) {
		return e.Code == obsErr.Code
	}
	return false
}

// NewObservabilityError creates an ObservabilityError without a cause.
func NewObservabilityError(code ObservabilityErrorCode, message string) *ObservabilityError {
	return &ObservabilityError{Code: code, Message: message}
}

// WrapObservabilityError creates an ObservabilityError wrapping cause.
func WrapObservabilityError(code ObservabilityErrorCode, message string, cause error) *ObservabilityError {
	return &ObservabilityError{Code: code, Message: message, Cause: cause}
}
