// Package orchestration drives one formal assessment: it brings the component
// environment up, acquires the service, hands it a notification sink and
// blocks until the sink reports completion, a timeout expires or the caller
// cancels. Cleanup runs on every path in a fixed order: service handle, sink
// reference, environment.
package orchestration
