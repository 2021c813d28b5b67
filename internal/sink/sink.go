package sink

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/agbru/winsatrun/internal/assessment"
	apperrors "github.com/agbru/winsatrun/internal/errors"
	"github.com/agbru/winsatrun/internal/logging"
	"github.com/agbru/winsatrun/internal/metrics"
)

// State is the delivery state of a sink.
type State int32

const (
	// StateIdle means no event has been delivered yet.
	StateIdle State = iota
	// StateActive means at least one progress event was delivered.
	StateActive
	// StateCompleted means a successful completion was delivered.
	StateCompleted
	// StateFailed means a failed completion was delivered.
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateActive:
		return "active"
	case StateCompleted:
		return "completed"
	case StateFailed:
		return "failed"
	}
	return fmt.Sprintf("State(%d)", int32(s))
}

// Terminal reports whether s is Completed or Failed.
func (s State) Terminal() bool { return s == StateCompleted || s == StateFailed }

// ProgressView is what a Presenter receives for one progress event.
type ProgressView struct {
	Label   string
	Current uint32
	Total   uint32
	// Percent is Current*100/Total; valid only when HasPercent is set.
	Percent    uint64
	HasPercent bool
}

// Presenter is the output port of a sink. Its methods are called from the
// service's goroutines, one at a time per sink.
type Presenter interface {
	PresentProgress(v ProgressView)
	PresentCompletion(ev assessment.CompletionEvent)
}

// Sink is the reference-counted notification sink.
type Sink struct {
	id   uuid.UUID
	refs atomic.Int64

	destroyed atomic.Bool
	state     atomic.Int32

	// mu serializes event delivery and guards outcome.
	mu         sync.Mutex
	outcome    assessment.CompletionEvent
	hasOutcome bool

	done     chan struct{}
	doneOnce sync.Once

	presenter Presenter
	logger    logging.Logger
	recorder  metrics.Recorder
	onDestroy []func()
}

// Option configures a Sink.
type Option func(*options)

type options struct {
	logger    logging.Logger
	recorder  metrics.Recorder
	onDestroy []func()
}

// WithLogger sets the logger used for diagnostics.
func WithLogger(l logging.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithRecorder sets the metrics recorder.
func WithRecorder(r metrics.Recorder) Option {
	return func(o *options) { o.recorder = r }
}

// WithDestroyHook registers fn to run once when the sink is destroyed.
func WithDestroyHook(fn func()) Option {
	return func(o *options) { o.onDestroy = append(o.onDestroy, fn) }
}

func buildOptions(opts []Option) options {
	o := options{
		logger:   logging.NewNopLogger(),
		recorder: metrics.Nop(),
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// New creates a sink holding one reference, owned by the caller. presenter
// may be nil.
func New(presenter Presenter, opts ...Option) *Sink {
	o := buildOptions(opts)
	s := &Sink{
		id:        uuid.New(),
		done:      make(chan struct{}),
		presenter: presenter,
		logger:    o.logger,
		recorder:  o.recorder,
		onDestroy: o.onDestroy,
	}
	s.refs.Store(1)
	s.recorder.SinkCreated()
	s.logger.Debug("sink created", logging.String("sink_id", s.id.String()))
	return s
}

// ID returns the sink's diagnostic identifier.
func (s *Sink) ID() uuid.UUID { return s.id }

// QueryCapability returns s for the identity and event-delivery capabilities
// and takes one reference. Any other id returns ErrNotSupported.
func (s *Sink) QueryCapability(id assessment.CapabilityID) (assessment.Unknown, error) {
	switch id {
	case assessment.CapabilityIdentity, assessment.CapabilityEvents:
		s.AcquireReference()
		return s, nil
	}
	return nil, fmt.Errorf("query capability %s: %w", id, apperrors.ErrNotSupported)
}

// AcquireReference increments the count and returns the new value. It
// panics if the sink was already destroyed.
func (s *Sink) AcquireReference() int64 {
	n := s.refs.Add(1)
	if n <= 1 {
		panic(fmt.Sprintf("sink %s: reference acquired after destruction", s.id))
	}
	return n
}

// ReleaseReference decrements the count and returns the new value. The
// release that reaches zero destroys the sink before returning.
func (s *Sink) ReleaseReference() int64 {
	n := s.refs.Add(-1)
	switch {
	case n == 0:
		s.destroy()
	case n < 0:
		panic(fmt.Sprintf("sink %s: reference released below zero", s.id))
	}
	return n
}

// RefCount returns the current count. Diagnostic only.
func (s *Sink) RefCount() int64 { return s.refs.Load() }

// Destroyed reports whether the count has reached zero.
func (s *Sink) Destroyed() bool { return s.destroyed.Load() }

func (s *Sink) destroy() {
	if !s.destroyed.CompareAndSwap(false, true) {
		panic(fmt.Sprintf("sink %s: destroyed twice", s.id))
	}
	s.logger.Debug("sink destroyed", logging.String("sink_id", s.id.String()))
	s.recorder.SinkDestroyed()
	for _, fn := range s.onDestroy {
		fn()
	}
}

// OnProgress forwards a progress event to the presenter.
func (s *Sink) OnProgress(ev assessment.ProgressEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if State(s.state.Load()).Terminal() {
		s.recorder.EventDropped("progress")
		s.logger.Debug("progress after completion dropped",
			logging.String("sink_id", s.id.String()),
			logging.String("label", ev.Label))
		return apperrors.ErrEventAfterCompletion
	}
	s.state.Store(int32(StateActive))

	view := ProgressView{Label: ev.Label, Current: ev.CurrentUnit, Total: ev.TotalUnits}
	view.Percent, view.HasPercent = ev.Percent()

	s.recorder.ProgressDelivered()
	if s.presenter != nil {
		s.present("progress", func() { s.presenter.PresentProgress(view) })
	}
	return nil
}

// OnCompletion records the terminal outcome, forwards it to the presenter
// and closes Done. Only the first call has any effect.
func (s *Sink) OnCompletion(ev assessment.CompletionEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.hasOutcome {
		s.recorder.EventDropped("completion")
		s.logger.Debug("duplicate completion dropped", logging.String("sink_id", s.id.String()))
		return apperrors.ErrEventAfterCompletion
	}

	next, outcome := StateCompleted, "success"
	if !ev.Result.Succeeded() {
		next, outcome = StateFailed, "failure"
	}
	s.outcome = ev
	s.hasOutcome = true
	s.state.Store(int32(next))

	s.recorder.CompletionDelivered(outcome)
	s.logger.Info("assessment completed",
		logging.String("sink_id", s.id.String()),
		logging.String("outcome", outcome),
		logging.String("code", ev.Result.Code.String()))
	if s.presenter != nil {
		s.present("completion", func() { s.presenter.PresentCompletion(ev) })
	}
	s.doneOnce.Do(func() { close(s.done) })
	return nil
}

func (s *Sink) present(kind string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("presenter panicked", fmt.Errorf("%v", r),
				logging.String("sink_id", s.id.String()),
				logging.String("event", kind))
		}
	}()
	fn()
}

// Detach disconnects the presenter once any delivery in progress returns.
// Later events still update the state and outcome but are not presented.
func (s *Sink) Detach() {
	s.mu.Lock()
	s.presenter = nil
	s.mu.Unlock()
}

// Done is closed after the completion event has been presented.
func (s *Sink) Done() <-chan struct{} { return s.done }

// Outcome returns the completion event, if one was delivered.
func (s *Sink) Outcome() (assessment.CompletionEvent, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.outcome, s.hasOutcome
}

// State returns the current delivery state.
func (s *Sink) State() State { return State(s.state.Load()) }

var _ assessment.InitiateEvents = (*Sink)(nil)
