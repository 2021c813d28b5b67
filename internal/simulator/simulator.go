// Package simulator provides an in-process assessment service that honors
// the notification contract of a real one: it delivers events from its own
// goroutines, holds its own reference on the sink while a run is in flight
// and can be told to fail at every step. It also keeps the last assessment
// on record and reports it with per-stage subscores.
package simulator

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/agbru/winsatrun/internal/assessment"
	apperrors "github.com/agbru/winsatrun/internal/errors"
	"github.com/agbru/winsatrun/internal/format"
	"github.com/agbru/winsatrun/internal/logging"
	"github.com/agbru/winsatrun/internal/sysmon"
)

// ErrSimulatedInit is the cause reported when Initialize is told to fail.
var ErrSimulatedInit = errors.New("simulated environment failure")

// SuccessDescription is the text of a successful completion.
const SuccessDescription = "Assessment complete"

// Service is the simulated assessment service. It implements
// assessment.Environment.
type Service struct {
	cfg    Config
	logger logging.Logger

	mu          sync.Mutex
	initCount   int
	mode        assessment.ThreadingMode
	ctx         context.Context
	cancel      context.CancelFunc
	runs        sync.WaitGroup
	runsStarted atomic.Int64
	stored      assessment.Info
}

// New returns a simulated service using cfg.
func New(cfg Config, logger logging.Logger) *Service {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	cfg = cfg.withDefaults()
	return &Service{
		cfg:    cfg,
		logger: logger,
		stored: assessment.Info{State: cfg.StoredState, AssessedAt: cfg.StoredAt},
	}
}

// Initialize brings the simulated environment up. Calls nest; each successful
// Initialize must be matched by a Teardown.
func (s *Service) Initialize(mode assessment.ThreadingMode) error {
	if s.cfg.FailInit {
		return apperrors.EnvironmentInitError{Mode: mode.String(), Cause: ErrSimulatedInit}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.initCount == 0 {
		s.mode = mode
		s.ctx, s.cancel = context.WithCancel(context.Background())
	}
	s.initCount++
	s.logger.Debug("environment initialized", logging.String("mode", mode.String()))
	return nil
}

// Teardown undoes one Initialize. The last Teardown aborts runs still in
// flight and waits until they have released their sink references. An
// aborted run delivers no completion event.
func (s *Service) Teardown() {
	s.mu.Lock()
	if s.initCount == 0 {
		s.mu.Unlock()
		return
	}
	s.initCount--
	last := s.initCount == 0
	cancel := s.cancel
	s.mu.Unlock()

	if !last {
		return
	}
	cancel()
	s.runs.Wait()
	s.logger.Debug("environment torn down")
}

// AcquireHandle returns a handle to the service.
func (s *Service) AcquireHandle(ctx context.Context) (assessment.Handle, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	initialized := s.initCount > 0
	s.mu.Unlock()
	if !initialized {
		return nil, apperrors.ServiceUnavailableError{Code: apperrors.EUnexpected}
	}
	if s.cfg.AcquireFailure != apperrors.SOK {
		return nil, apperrors.ServiceUnavailableError{Code: s.cfg.AcquireFailure}
	}
	return &handle{svc: s}, nil
}

// RunsStarted returns the number of assessments accepted so far.
func (s *Service) RunsStarted() int64 { return s.runsStarted.Load() }

type handle struct {
	svc      *Service
	released atomic.Bool
}

func (h *handle) InitiateFormalAssessment(ctx context.Context, sink assessment.Unknown, opts *assessment.Options) error {
	s := h.svc
	if h.released.Load() {
		return apperrors.StartFailedError{Code: apperrors.EUnexpected}
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if s.cfg.StartFailure != apperrors.SOK {
		return apperrors.StartFailedError{Code: s.cfg.StartFailure}
	}
	events, err := assessment.QueryEvents(sink)
	if err != nil {
		return apperrors.StartFailedError{Code: apperrors.ENoInterface}
	}

	s.mu.Lock()
	if s.initCount == 0 {
		s.mu.Unlock()
		events.ReleaseReference()
		return apperrors.StartFailedError{Code: apperrors.EUnexpected}
	}
	runCtx := s.ctx
	s.runs.Add(1)
	s.mu.Unlock()
	s.runsStarted.Add(1)

	runID := "none"
	if opts != nil {
		runID = opts.RunID.String()
	}
	s.logger.Info("formal assessment started", logging.String("run_id", runID))
	go s.run(runCtx, events, runID)
	return nil
}

// QueryAssessment reports the assessment on record. Scores are only filled
// in when the stored state carries them.
func (h *handle) QueryAssessment(ctx context.Context) (assessment.Info, error) {
	s := h.svc
	if h.released.Load() {
		return assessment.Info{}, apperrors.ServiceUnavailableError{Code: apperrors.EUnexpected}
	}
	if err := ctx.Err(); err != nil {
		return assessment.Info{}, err
	}
	if s.cfg.QueryFailure != apperrors.SOK {
		return assessment.Info{}, apperrors.ServiceUnavailableError{Code: s.cfg.QueryFailure}
	}
	return s.storedInfo(ctx), nil
}

func (h *handle) Release() {
	if !h.released.CompareAndSwap(false, true) {
		panic("simulator: handle released twice")
	}
}

type stage struct {
	name  string
	label string
}

func (s *Service) run(ctx context.Context, events assessment.InitiateEvents, runID string) {
	defer s.runs.Done()
	defer events.ReleaseReference()

	stages, hw := s.plan(ctx)
	ticks := s.cfg.TicksPerStage
	total := uint32(len(stages) * ticks)
	if s.cfg.UnknownTotal {
		total = 0
	}

	failing := s.cfg.RunFailure != apperrors.SOK
	var current uint32
	for i, st := range stages {
		if failing && i > s.cfg.FailAtStage {
			break
		}
		for range ticks {
			if !sleep(ctx, s.cfg.TickInterval) {
				s.logger.Info("formal assessment abandoned at teardown", logging.String("run_id", runID))
				return
			}
			current++
			s.deliverProgress(events, assessment.ProgressEvent{CurrentUnit: current, TotalUnits: total, Label: st.label})
		}
	}

	result := assessment.Success()
	if failing {
		result = assessment.Failure(s.cfg.RunFailure, s.cfg.RunFailureDescription)
	} else {
		s.record(scoreInfo(assessment.StateValid, stages, hw, time.Now()))
	}
	s.complete(events, runID, result)

	if s.cfg.ExtraEventsAfterCompletion {
		s.deliverProgress(events, assessment.ProgressEvent{CurrentUnit: current, TotalUnits: total, Label: "late"})
		s.complete(events, runID, assessment.Success())
	}
}

func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

func (s *Service) deliverProgress(events assessment.InitiateEvents, ev assessment.ProgressEvent) {
	if err := events.OnProgress(ev); err != nil {
		s.logger.Debug("progress rejected by sink", logging.Err(err))
	}
}

func (s *Service) complete(events assessment.InitiateEvents, runID string, r assessment.Result) {
	ev := assessment.CompletionEvent{Result: r}
	if r.Succeeded() {
		ev.Description = SuccessDescription
	}
	if err := events.OnCompletion(ev); err != nil {
		s.logger.Debug("completion rejected by sink", logging.Err(err), logging.String("run_id", runID))
		return
	}
	s.logger.Info("formal assessment finished",
		logging.String("run_id", runID),
		logging.Bool("success", r.Succeeded()),
		logging.String("code", r.Code.String()))
}

// plan resolves the stage labels, naming them after the probed hardware
// when enabled.
func (s *Service) plan(ctx context.Context) ([]stage, sysmon.Hardware) {
	stages := make([]stage, len(s.cfg.Stages))
	for i, name := range s.cfg.Stages {
		stages[i] = stage{name: name, label: name}
	}
	if !s.cfg.ProbeHardware {
		return stages, sysmon.Hardware{}
	}

	hw, err := sysmon.ProbeHardware(ctx, s.cfg.DiskPath)
	if err != nil {
		s.logger.Debug("hardware probe incomplete", logging.Err(err))
	}
	for i := range stages {
		if detail := describe(stages[i].name, hw); detail != "" {
			stages[i].label = fmt.Sprintf("%s (%s)", stages[i].name, detail)
		}
	}
	return stages, hw
}

func (s *Service) record(info assessment.Info) {
	s.mu.Lock()
	s.stored = info
	s.mu.Unlock()
}

// storedInfo returns a copy of the assessment on record, scoring the stage
// plan the first time a state with scores is queried before any run.
func (s *Service) storedInfo(ctx context.Context) assessment.Info {
	s.mu.Lock()
	info := s.stored
	s.mu.Unlock()

	if info.State.HasScores() && len(info.Subscores) == 0 {
		stages, hw := s.plan(ctx)
		scored := scoreInfo(info.State, stages, hw, info.AssessedAt)
		s.mu.Lock()
		if len(s.stored.Subscores) == 0 {
			s.stored = scored
		}
		info = s.stored
		s.mu.Unlock()
	}
	info.Subscores = append([]assessment.Subscore(nil), info.Subscores...)
	return info
}

// scoreInfo scores each stage on the 1.0 to 9.9 scale. The base score is
// the lowest subscore.
func scoreInfo(state assessment.State, stages []stage, hw sysmon.Hardware, at time.Time) assessment.Info {
	info := assessment.Info{
		State:       state,
		RatingState: ratingState(state),
		AssessedAt:  at,
		Subscores:   make([]assessment.Subscore, 0, len(stages)),
	}
	for i, st := range stages {
		sub := assessment.Subscore{Title: st.name, Score: score(st.name, hw), Description: componentDescription(st.name)}
		info.Subscores = append(info.Subscores, sub)
		if i == 0 || sub.Score < info.BaseScore {
			info.BaseScore = sub.Score
		}
	}
	return info
}

func ratingState(state assessment.State) string {
	switch state {
	case assessment.StateValid:
		return "The rating is up to date"
	case assessment.StateIncoherentWithHardware:
		return "The hardware changed since the last assessment"
	}
	return ""
}

const defaultScore = 5.0

func score(stageName string, hw sysmon.Hardware) float32 {
	v := defaultScore
	switch strings.ToLower(stageName) {
	case "memory":
		if hw.TotalMemory > 0 {
			v = 4 + math.Log2(float64(hw.TotalMemory)/(1<<30))
		}
	case "processor":
		if hw.LogicalCPUs > 0 {
			v = 4 + math.Log2(float64(hw.LogicalCPUs)) + 0.2*float64(len(hw.CPUFeatures))
		}
	case "disk":
		if hw.DiskTotal > 0 {
			v = 5.9
		}
	}
	v = min(max(v, 1), 9.9)
	return float32(math.Round(v*10) / 10)
}

func componentDescription(stageName string) string {
	switch strings.ToLower(stageName) {
	case "memory":
		return "Memory operations per second"
	case "processor":
		return "Calculations per second"
	case "graphics":
		return "Desktop graphics performance"
	case "gaming graphics":
		return "3D business and gaming graphics performance"
	case "disk":
		return "Disk data transfer rate"
	}
	return stageName + " performance"
}

func describe(stageName string, hw sysmon.Hardware) string {
	switch strings.ToLower(stageName) {
	case "memory":
		if hw.TotalMemory > 0 {
			return format.Bytes(hw.TotalMemory)
		}
	case "processor":
		parts := make([]string, 0, 2)
		if hw.LogicalCPUs > 0 {
			parts = append(parts, fmt.Sprintf("%d logical", hw.LogicalCPUs))
		}
		if len(hw.CPUFeatures) > 0 {
			parts = append(parts, strings.Join(hw.CPUFeatures, "/"))
		}
		return strings.Join(parts, ", ")
	case "disk":
		if hw.DiskTotal > 0 {
			return fmt.Sprintf("%s, %s", hw.DiskPath, format.Bytes(hw.DiskTotal))
		}
	}
	return ""
}

var _ assessment.Environment = (*Service)(nil)
