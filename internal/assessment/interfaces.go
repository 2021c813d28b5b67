//go:generate mockgen -source=interfaces.go -destination=mocks/mock_assessment.go -package=mocks

package assessment

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	apperrors "github.com/agbru/winsatrun/internal/errors"
)

// CapabilityID identifies a capability an object may expose.
type CapabilityID = uuid.UUID

var (
	// CapabilityIdentity is the base identity capability every object exposes.
	CapabilityIdentity = uuid.MustParse("00000000-0000-0000-c000-000000000046")
	// CapabilityEvents is the event-delivery capability of a notification sink.
	CapabilityEvents = uuid.MustParse("262a1918-ba0d-41d5-92c2-fab4633ee74f")
)

// Unknown is the identity view of a reference-counted object.
type Unknown interface {
	// QueryCapability returns a view of the object for id and takes one
	// reference on success. Unknown ids yield apperrors.ErrNotSupported and
	// leave the count unchanged.
	QueryCapability(id CapabilityID) (Unknown, error)
	// AcquireReference increments the count and returns the new value.
	AcquireReference() int64
	// ReleaseReference decrements the count and returns the new value. The
	// object is destroyed when the count reaches zero.
	ReleaseReference() int64
}

// InitiateEvents is the event-delivery view of a notification sink.
type InitiateEvents interface {
	Unknown
	OnProgress(ev ProgressEvent) error
	OnCompletion(ev CompletionEvent) error
}

// QueryEvents asks obj for its event-delivery capability. On success the
// caller owns one reference and must release it.
func QueryEvents(obj Unknown) (InitiateEvents, error) {
	u, err := obj.QueryCapability(CapabilityEvents)
	if err != nil {
		return nil, err
	}
	ev, ok := u.(InitiateEvents)
	if !ok {
		u.ReleaseReference()
		return nil, fmt.Errorf("query events: %w", apperrors.ErrNotSupported)
	}
	return ev, nil
}

// ProgressEvent reports advancement of the running assessment.
type ProgressEvent struct {
	CurrentUnit uint32
	TotalUnits  uint32
	Label       string
}

// Percent returns CurrentUnit*100/TotalUnits. ok is false when TotalUnits is
// zero.
func (p ProgressEvent) Percent() (pct uint64, ok bool) {
	if p.TotalUnits == 0 {
		return 0, false
	}
	return uint64(p.CurrentUnit) * 100 / uint64(p.TotalUnits), true
}

// Result is the terminal outcome of an assessment. The zero value is success.
type Result struct {
	// Code is zero on success.
	Code apperrors.Code
	// Description is the failure text; empty on success.
	Description string
}

// Success returns a successful Result.
func Success() Result { return Result{} }

// Failure returns a failed Result carrying code and description.
func Failure(code apperrors.Code, description string) Result {
	return Result{Code: code, Description: description}
}

// Succeeded reports whether the result is a success.
func (r Result) Succeeded() bool { return r.Code == apperrors.SOK }

// Err returns the result as an error, or nil on success.
func (r Result) Err() error {
	if r.Succeeded() {
		return nil
	}
	return apperrors.ServiceReportedFailure{Code: r.Code, Description: r.Description}
}

// CompletionEvent is the single terminal event of an assessment.
type CompletionEvent struct {
	Result Result
	// Description is the success text.
	Description string
}

// ThreadingMode selects how the component environment dispatches calls.
type ThreadingMode int

const (
	// ThreadingApartment serializes calls onto the initializing thread.
	ThreadingApartment ThreadingMode = iota
	// ThreadingMulti allows calls from any goroutine.
	ThreadingMulti
)

func (m ThreadingMode) String() string {
	switch m {
	case ThreadingApartment:
		return "apartment"
	case ThreadingMulti:
		return "multi"
	}
	return fmt.Sprintf("ThreadingMode(%d)", int(m))
}

// ParseThreadingMode parses "apartment" or "multi".
func ParseThreadingMode(s string) (ThreadingMode, error) {
	switch s {
	case "apartment", "sta":
		return ThreadingApartment, nil
	case "multi", "mta":
		return ThreadingMulti, nil
	}
	return 0, apperrors.NewConfigError("invalid threading mode %q (want apartment or multi)", s)
}

// Options carries optional parameters of a start request.
type Options struct {
	RunID uuid.UUID
}

// Environment is the component environment hosting the assessment service.
type Environment interface {
	// Initialize brings the environment up in the given mode.
	Initialize(mode ThreadingMode) error
	// Teardown undoes a successful Initialize.
	Teardown()
	// AcquireHandle obtains a handle to the assessment service.
	AcquireHandle(ctx context.Context) (Handle, error)
}

// Handle is a client handle to the assessment service.
type Handle interface {
	// InitiateFormalAssessment starts an assessment and returns without
	// waiting for it. On error no events will be delivered and the service
	// holds no reference to sink.
	InitiateFormalAssessment(ctx context.Context, sink Unknown, opts *Options) error
	// QueryAssessment returns the assessment the service has on record.
	QueryAssessment(ctx context.Context) (Info, error)
	// Release gives the handle back. It must be called exactly once.
	Release()
}
