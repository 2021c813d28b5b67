// Package apperrors defines structured application error types for the
// assessment orchestrator: the synchronous failures of the start sequence,
// the asynchronous failure carried by a completion event, HRESULT-style
// status codes and the mapping from errors to process exit codes.
//
// Error Wrapping Guidelines:
// This package follows Go's error wrapping conventions using fmt.Errorf with %w.
// Error types that carry a cause implement Unwrap() to support errors.Is() and errors.As().
package apperrors
