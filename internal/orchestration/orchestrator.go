package orchestration

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"github.com/agbru/winsatrun/internal/assessment"
	apperrors "github.com/agbru/winsatrun/internal/errors"
	"github.com/agbru/winsatrun/internal/logging"
	"github.com/agbru/winsatrun/internal/metrics"
	"github.com/agbru/winsatrun/internal/sink"
	"github.com/agbru/winsatrun/internal/telemetry"
)

// Steps named in diagnostics.
const (
	StepInitialize = "initialize the component environment"
	StepAcquire    = "acquire the assessment service"
	StepCreateSink = "create the notification sink"
	StepInitiate   = "start the formal assessment"
	StepWait       = "wait for the assessment to complete"
	StepQuery      = "query the assessment on record"
)

// Config holds the parameters of a run.
type Config struct {
	// Mode is the threading mode the environment is initialized with.
	Mode assessment.ThreadingMode
	// Timeout bounds the wait for the completion event. Zero waits until the
	// context is done.
	Timeout time.Duration
	// QueryScores reads the assessment on record after a successful run.
	QueryScores bool
}

// RunResult describes a finished Run.
type RunResult struct {
	RunID    uuid.UUID
	ExitCode int
	// Err is the synchronous failure, if any. A failure reported through the
	// completion event is in Outcome, not here.
	Err error
	// Step is the step that failed, empty on success.
	Step string
	// Outcome is the completion event, when one arrived.
	Outcome *assessment.CompletionEvent
	// Info is the assessment on record, when it was queried.
	Info    *assessment.Info
	Elapsed time.Duration
}

// Orchestrator runs formal assessments against an Environment.
type Orchestrator struct {
	env       assessment.Environment
	factory   SinkFactory
	presenter Presenter
	cfg       Config

	logger   logging.Logger
	recorder metrics.Recorder
	tracer   *telemetry.Tracer
	newRunID func() uuid.UUID
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithLogger sets the logger.
func WithLogger(l logging.Logger) Option { return func(o *Orchestrator) { o.logger = l } }

// WithRecorder sets the metrics recorder.
func WithRecorder(r metrics.Recorder) Option { return func(o *Orchestrator) { o.recorder = r } }

// WithTracer sets the tracer used for step spans.
func WithTracer(t *telemetry.Tracer) Option { return func(o *Orchestrator) { o.tracer = t } }

// WithRunIDs overrides run id generation.
func WithRunIDs(fn func() uuid.UUID) Option { return func(o *Orchestrator) { o.newRunID = fn } }

// New returns an Orchestrator. presenter may be nil.
func New(env assessment.Environment, factory SinkFactory, presenter Presenter, cfg Config, opts ...Option) *Orchestrator {
	if presenter == nil {
		presenter = NullPresenter{}
	}
	o := &Orchestrator{
		env:       env,
		factory:   factory,
		presenter: presenter,
		cfg:       cfg,
		logger:    logging.NewNopLogger(),
		recorder:  metrics.Nop(),
		newRunID:  uuid.New,
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.tracer == nil {
		o.tracer = telemetry.NewTracer(nil)
	}
	return o
}

// Run executes one assessment and returns the process exit code.
func (o *Orchestrator) Run(ctx context.Context) int {
	return o.Execute(ctx).ExitCode
}

// Execute executes one assessment. The control goroutine blocks until the
// completion event, the timeout or ctx. Asynchronous failure still yields
// ExitSuccess: the assessment was started and terminated.
func (o *Orchestrator) Execute(ctx context.Context) (res RunResult) {
	start := time.Now()
	res.RunID = o.newRunID()
	log := o.logger

	ctx, span := o.tracer.Start(ctx, telemetry.SpanRun,
		attribute.String("run.id", res.RunID.String()),
		attribute.String("threading.mode", o.cfg.Mode.String()))
	defer func() {
		res.Elapsed = time.Since(start)
		o.recorder.RunFinished(res.ExitCode, res.Elapsed)
		span.SetAttributes(attribute.Int("exit.code", res.ExitCode))
		telemetry.End(span, res.Err)
	}()

	if err := o.step(ctx, telemetry.SpanInitialize, func(context.Context) error {
		return o.env.Initialize(o.cfg.Mode)
	}); err != nil {
		return o.fail(res, StepInitialize, apperrors.ExitErrorEnvironment, err)
	}
	defer func() {
		_, tspan := o.tracer.Start(ctx, telemetry.SpanTeardown)
		o.env.Teardown()
		telemetry.End(tspan, nil)
	}()

	handle, err := o.acquire(ctx)
	if err != nil {
		return o.fail(res, StepAcquire, apperrors.ExitErrorServiceUnavailable, err)
	}

	var s *sink.Sink
	defer func() {
		handle.Release()
		if s != nil {
			s.ReleaseReference()
		}
	}()

	if err := o.step(ctx, telemetry.SpanCreateSink, func(context.Context) error {
		var err error
		s, err = o.factory.New(o.presenter)
		return err
	}); err != nil {
		return o.fail(res, StepCreateSink, apperrors.ExitErrorSinkConstruction, err)
	}

	o.presenter.PresentStart(res.RunID)
	if err := o.step(ctx, telemetry.SpanInitiate, func(ctx context.Context) error {
		return handle.InitiateFormalAssessment(ctx, s, &assessment.Options{RunID: res.RunID})
	}); err != nil {
		return o.fail(res, StepInitiate, apperrors.ExitErrorStartFailed, err)
	}
	log.Info("formal assessment started", logging.String("run_id", res.RunID.String()))

	if err := o.step(ctx, telemetry.SpanWait, func(ctx context.Context) error {
		return o.wait(ctx, s)
	}); err != nil {
		// The run is abandoned: nothing the service delivers from now on
		// belongs to this result.
		s.Detach()
		return o.fail(res, StepWait, apperrors.ExitCodeFor(err), err)
	}

	if ev, ok := s.Outcome(); ok {
		res.Outcome = &ev
		span.SetAttributes(attribute.Bool("assessment.success", ev.Result.Succeeded()))
		if o.cfg.QueryScores && ev.Result.Succeeded() {
			res.Info = o.queryAfterRun(ctx, handle)
		}
	}
	res.ExitCode = apperrors.ExitSuccess
	return res
}

// Query reads the assessment on record without starting a new one.
func (o *Orchestrator) Query(ctx context.Context) (res RunResult) {
	start := time.Now()
	res.RunID = o.newRunID()

	ctx, span := o.tracer.Start(ctx, telemetry.SpanQueryRun,
		attribute.String("run.id", res.RunID.String()),
		attribute.String("threading.mode", o.cfg.Mode.String()))
	defer func() {
		res.Elapsed = time.Since(start)
		span.SetAttributes(attribute.Int("exit.code", res.ExitCode))
		telemetry.End(span, res.Err)
	}()

	if err := o.step(ctx, telemetry.SpanInitialize, func(context.Context) error {
		return o.env.Initialize(o.cfg.Mode)
	}); err != nil {
		return o.fail(res, StepInitialize, apperrors.ExitErrorEnvironment, err)
	}
	defer o.env.Teardown()

	handle, err := o.acquire(ctx)
	if err != nil {
		return o.fail(res, StepAcquire, apperrors.ExitErrorServiceUnavailable, err)
	}
	defer handle.Release()

	var info assessment.Info
	if err := o.step(ctx, telemetry.SpanQuery, func(ctx context.Context) error {
		var err error
		info, err = handle.QueryAssessment(ctx)
		return err
	}); err != nil {
		return o.fail(res, StepQuery, apperrors.ExitErrorServiceUnavailable, err)
	}
	o.logger.Info("assessment on record",
		logging.String("run_id", res.RunID.String()),
		logging.String("state", info.State.String()))
	span.SetAttributes(attribute.String("assessment.state", info.State.String()))
	res.Info = &info
	res.ExitCode = apperrors.ExitSuccess
	return res
}

// acquire obtains a service handle. A nil handle without an error is
// treated as an unavailable service.
func (o *Orchestrator) acquire(ctx context.Context) (assessment.Handle, error) {
	var handle assessment.Handle
	err := o.step(ctx, telemetry.SpanAcquire, func(ctx context.Context) error {
		var err error
		handle, err = o.env.AcquireHandle(ctx)
		if err == nil && handle == nil {
			err = apperrors.ServiceUnavailableError{Code: apperrors.EUnexpected}
		}
		return err
	})
	return handle, err
}

// queryAfterRun reads the scores of a finished run. A failed query does not
// change the run's result.
func (o *Orchestrator) queryAfterRun(ctx context.Context, handle assessment.Handle) *assessment.Info {
	var info assessment.Info
	if err := o.step(ctx, telemetry.SpanQuery, func(ctx context.Context) error {
		var err error
		info, err = handle.QueryAssessment(ctx)
		return err
	}); err != nil {
		o.logger.Error("assessment scores unavailable", err)
		return nil
	}
	return &info
}

func (o *Orchestrator) wait(ctx context.Context, s *sink.Sink) error {
	waitCtx := ctx
	if o.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		waitCtx, cancel = context.WithTimeout(ctx, o.cfg.Timeout)
		defer cancel()
	}
	select {
	case <-s.Done():
		return nil
	case <-waitCtx.Done():
	}
	// Completion may have raced the deadline.
	select {
	case <-s.Done():
		return nil
	default:
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return apperrors.TimeoutError{Operation: "assessment completion", Limit: o.cfg.Timeout}
}

func (o *Orchestrator) step(ctx context.Context, name string, fn func(context.Context) error) error {
	ctx, span := o.tracer.Start(ctx, name)
	err := fn(ctx)
	telemetry.End(span, err)
	return err
}

// fail records a failed step. Cancellation and deadline errors override the
// step's exit code.
func (o *Orchestrator) fail(res RunResult, step string, exitCode int, err error) RunResult {
	if apperrors.IsContextError(err) {
		exitCode = apperrors.ExitCodeFor(err)
	}
	res.Err = err
	res.Step = step
	res.ExitCode = exitCode
	o.logger.Error("assessment step failed", err,
		logging.String("run_id", res.RunID.String()),
		logging.String("step", step),
		logging.Int("exit_code", exitCode))
	o.presenter.PresentError(step, err)
	return res
}
