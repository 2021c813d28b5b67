// Package assessment defines the contracts between the winsatrun client and an
// assessment service.
//
// A run is driven through an Environment: the client initializes it, acquires
// a Handle and asks the Handle to start a formal assessment, passing an
// Unknown that the service queries for the event-delivery capability. The
// service then calls OnProgress zero or more times and OnCompletion exactly
// once, from goroutines it owns.
//
// Reference counting follows the acquire/release discipline: every successful
// QueryCapability and every AcquireReference must be balanced by exactly one
// ReleaseReference.
package assessment
