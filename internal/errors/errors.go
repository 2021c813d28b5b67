package apperrors

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Application exit codes define the standard exit statuses for the application.
// These codes are used to signal the outcome of the program execution to the OS.
const (
	ExitSuccess                 = 0   // Assessment started and either pending or terminated.
	ExitErrorSinkConstruction   = 1   // The notification sink could not be constructed.
	ExitErrorStartFailed        = 2   // The service rejected the assessment request.
	ExitErrorEnvironment        = 3   // The component environment could not be initialized.
	ExitErrorServiceUnavailable = 4   // The assessment service could not be instantiated.
	ExitErrorTimeout            = 5   // Waiting for the completion event timed out.
	ExitErrorConfig             = 6   // Indicates a configuration error.
	ExitErrorGeneric            = 7   // Indicates an unclassified error.
	ExitErrorCanceled           = 130 // Indicates the wait was canceled (e.g., SIGINT).
)

// Sentinel errors of the notification protocol.
var (
	// ErrNotSupported is returned by a capability query for an identifier the
	// object does not implement.
	ErrNotSupported = errors.New("capability not supported")

	// ErrEventAfterCompletion is returned when the service delivers an event
	// after the terminal completion event.
	ErrEventAfterCompletion = errors.New("event delivered after completion")
)

// ConfigError represents a user configuration error, such as invalid flags or
// values. It indicates that the application cannot proceed due to incorrect user input.
type ConfigError struct {
	// Message explains the specific configuration error.
	Message string
}

// Error returns the error message for a ConfigError.
func (e ConfigError) Error() string { return e.Message }

// NewConfigError creates a new ConfigError with a formatted message.
//
// Parameters:
//   - format: A format string (see fmt.Sprintf).
//   - a: Arguments to be formatted into the string.
//
// Returns:
//   - error: A new ConfigError instance containing the formatted message.
func NewConfigError(format string, a ...any) error {
	return ConfigError{Message: fmt.Sprintf(format, a...)}
}

// EnvironmentInitError reports that the component environment could not be
// brought up for the requested threading mode.
type EnvironmentInitError struct {
	// Mode is the threading mode that was requested.
	Mode string
	// Cause is the underlying failure, if any.
	Cause error
}

// Error returns a formatted message describing the initialization failure.
func (e EnvironmentInitError) Error() string {
	if e.Cause == nil {
		return fmt.Sprintf("environment initialization failed (%s)", e.Mode)
	}
	return fmt.Sprintf("environment initialization failed (%s): %v", e.Mode, e.Cause)
}

// Unwrap returns the underlying cause.
func (e EnvironmentInitError) Unwrap() error { return e.Cause }

// ServiceUnavailableError reports that no handle to the assessment service
// could be acquired.
type ServiceUnavailableError struct {
	Code Code
}

// Error returns a formatted message including the status code.
func (e ServiceUnavailableError) Error() string {
	return fmt.Sprintf("assessment service unavailable: %s", e.Code)
}

// ResourceExhaustedError reports that a bounded resource (e.g. the live sink
// budget) has no capacity left.
type ResourceExhaustedError struct {
	// Resource names the exhausted resource.
	Resource string
	// Limit is the configured capacity.
	Limit int64
}

// Error returns a formatted message describing the exhausted resource.
func (e ResourceExhaustedError) Error() string {
	return fmt.Sprintf("resource exhausted: %s (limit %d)", e.Resource, e.Limit)
}

// StartFailedError reports that the service rejected a request to start an
// assessment outright. No completion event follows such a rejection.
type StartFailedError struct {
	Code Code
}

// Error returns a formatted message including the status code.
func (e StartFailedError) Error() string {
	return fmt.Sprintf("assessment start rejected: %s", e.Code)
}

// ServiceReportedFailure is the asynchronous failure carried by a completion
// event. It is never returned by a synchronous call.
type ServiceReportedFailure struct {
	Code        Code
	Description string
}

// Error returns the code and description reported by the service.
func (e ServiceReportedFailure) Error() string {
	return fmt.Sprintf("assessment failed with %s (%s)", e.Code, e.Description)
}

// TimeoutError represents a bounded wait that expired. It captures the
// operation name and the duration limit that was exceeded.
type TimeoutError struct {
	// Operation is the name of the operation that timed out.
	Operation string
	// Limit is the duration after which the operation was considered timed out.
	Limit time.Duration
}

// Error returns a formatted message describing the timeout.
func (e TimeoutError) Error() string {
	return fmt.Sprintf("operation %q timed out after %s", e.Operation, e.Limit)
}

// WrapError wraps an error with additional context using fmt.Errorf and %w.
// This allows the wrapped error to be unwrapped with errors.Unwrap() and
// checked with errors.Is() and errors.As().
//
// Parameters:
//   - err: The error to wrap.
//   - format: A format string for the context message.
//   - args: Arguments for the format string.
//
// Returns:
//   - error: The wrapped error, or nil if err is nil.
func WrapError(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	message := fmt.Sprintf(format, args...)
	return fmt.Errorf("%s: %w", message, err)
}

// IsContextError checks if the error is a context cancellation or deadline exceeded error.
func IsContextError(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

// CodeOf extracts the status code carried by err, if any.
func CodeOf(err error) (Code, bool) {
	var unavailable ServiceUnavailableError
	if errors.As(err, &unavailable) {
		return unavailable.Code, true
	}
	var start StartFailedError
	if errors.As(err, &start) {
		return start.Code, true
	}
	var reported ServiceReportedFailure
	if errors.As(err, &reported) {
		return reported.Code, true
	}
	if errors.Is(err, ErrNotSupported) {
		return ENoInterface, true
	}
	return 0, false
}

// ExitCodeFor maps an error from the synchronous orchestration path to a
// process exit code. A nil error maps to ExitSuccess, and so does a
// ServiceReportedFailure: asynchronous failures are surfaced through the
// completion event, not the exit status.
func ExitCodeFor(err error) int {
	if err == nil {
		return ExitSuccess
	}

	var (
		configErr      ConfigError
		envErr         EnvironmentInitError
		unavailableErr ServiceUnavailableError
		exhaustedErr   ResourceExhaustedError
		startErr       StartFailedError
		timeoutErr     TimeoutError
		reportedErr    ServiceReportedFailure
	)
	switch {
	case errors.As(err, &reportedErr):
		return ExitSuccess
	case errors.As(err, &configErr):
		return ExitErrorConfig
	case errors.As(err, &envErr):
		return ExitErrorEnvironment
	case errors.As(err, &unavailableErr):
		return ExitErrorServiceUnavailable
	case errors.As(err, &exhaustedErr):
		return ExitErrorSinkConstruction
	case errors.As(err, &startErr):
		return ExitErrorStartFailed
	case errors.As(err, &timeoutErr), errors.Is(err, context.DeadlineExceeded):
		return ExitErrorTimeout
	case errors.Is(err, context.Canceled):
		return ExitErrorCanceled
	}
	return ExitErrorGeneric
}
