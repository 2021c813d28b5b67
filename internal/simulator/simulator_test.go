package simulator

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/agbru/winsatrun/internal/assessment"
	apperrors "github.com/agbru/winsatrun/internal/errors"
	"github.com/agbru/winsatrun/internal/sink"
	"github.com/agbru/winsatrun/internal/sysmon"
)

type capture struct {
	mu          sync.Mutex
	progress    []sink.ProgressView
	completions []assessment.CompletionEvent
}

func (c *capture) PresentProgress(v sink.ProgressView) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.progress = append(c.progress, v)
}

func (c *capture) PresentCompletion(ev assessment.CompletionEvent) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.completions = append(c.completions, ev)
}

func fastConfig() Config {
	return Config{
		Stages:        []string{"Stage A", "Stage B"},
		TicksPerStage: 2,
		TickInterval:  0,
		FailAtStage:   -1,
	}
}

// start runs the service through Initialize, AcquireHandle and
// InitiateFormalAssessment against a fresh sink.
func start(t *testing.T, svc *Service) (*sink.Sink, *capture, assessment.Handle) {
	t.Helper()
	if err := svc.Initialize(assessment.ThreadingApartment); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	h, err := svc.AcquireHandle(context.Background())
	if err != nil {
		t.Fatalf("AcquireHandle: %v", err)
	}
	c := &capture{}
	s := sink.New(c)
	if err := h.InitiateFormalAssessment(context.Background(), s, &assessment.Options{RunID: uuid.New()}); err != nil {
		t.Fatalf("InitiateFormalAssessment: %v", err)
	}
	return s, c, h
}

func waitDone(t *testing.T, s *sink.Sink) {
	t.Helper()
	select {
	case <-s.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("completion not delivered")
	}
}

func TestRun_Success(t *testing.T) {
	t.Parallel()
	svc := New(fastConfig(), nil)
	s, c, h := start(t, svc)
	waitDone(t, s)
	h.Release()
	svc.Teardown()

	c.mu.Lock()
	defer c.mu.Unlock()
	wantPct := []uint64{25, 50, 75, 100}
	if len(c.progress) != len(wantPct) {
		t.Fatalf("got %d progress events, want %d", len(c.progress), len(wantPct))
	}
	for i, v := range c.progress {
		if !v.HasPercent || v.Percent != wantPct[i] {
			t.Errorf("progress[%d] = %+v, want %d%%", i, v, wantPct[i])
		}
	}
	if c.progress[0].Label != "Stage A" || c.progress[3].Label != "Stage B" {
		t.Errorf("unexpected labels: %q, %q", c.progress[0].Label, c.progress[3].Label)
	}
	if len(c.completions) != 1 || !c.completions[0].Result.Succeeded() || c.completions[0].Description != SuccessDescription {
		t.Errorf("completions = %+v", c.completions)
	}
	if got := s.RefCount(); got != 1 {
		t.Errorf("service should have released its reference, RefCount() = %d", got)
	}
	if s.ReleaseReference() != 0 || !s.Destroyed() {
		t.Error("final release should destroy the sink")
	}
	if svc.RunsStarted() != 1 {
		t.Errorf("RunsStarted() = %d", svc.RunsStarted())
	}
}

func TestInitialize_Failure(t *testing.T) {
	t.Parallel()
	cfg := fastConfig()
	cfg.FailInit = true
	err := New(cfg, nil).Initialize(assessment.ThreadingMulti)

	var envErr apperrors.EnvironmentInitError
	if !errors.As(err, &envErr) || envErr.Mode != "multi" {
		t.Fatalf("err = %v, want EnvironmentInitError(multi)", err)
	}
	if !errors.Is(err, ErrSimulatedInit) {
		t.Error("cause should be ErrSimulatedInit")
	}
}

func TestAcquireHandle_Failures(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name     string
		cfg      func() Config
		init     bool
		wantCode apperrors.Code
	}{
		{"configured failure", func() Config { c := fastConfig(); c.AcquireFailure = apperrors.EFail; return c }, true, apperrors.EFail},
		{"not initialized", fastConfig, false, apperrors.EUnexpected},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			svc := New(tt.cfg(), nil)
			if tt.init {
				if err := svc.Initialize(assessment.ThreadingApartment); err != nil {
					t.Fatal(err)
				}
				defer svc.Teardown()
			}
			h, err := svc.AcquireHandle(context.Background())
			var unavailable apperrors.ServiceUnavailableError
			if !errors.As(err, &unavailable) || unavailable.Code != tt.wantCode {
				t.Fatalf("err = %v, want ServiceUnavailableError(%s)", err, tt.wantCode)
			}
			if h != nil {
				t.Error("handle should be nil on failure")
			}
		})
	}
}

func TestInitiate_StartRejected(t *testing.T) {
	t.Parallel()
	cfg := fastConfig()
	cfg.StartFailure = apperrors.EAccessDenied
	svc := New(cfg, nil)
	if err := svc.Initialize(assessment.ThreadingApartment); err != nil {
		t.Fatal(err)
	}
	defer svc.Teardown()
	h, err := svc.AcquireHandle(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	defer h.Release()

	s := sink.New(nil)
	err = h.InitiateFormalAssessment(context.Background(), s, nil)
	var startErr apperrors.StartFailedError
	if !errors.As(err, &startErr) || startErr.Code != apperrors.EAccessDenied {
		t.Fatalf("err = %v, want StartFailedError(0x80070005)", err)
	}
	if s.RefCount() != 1 {
		t.Errorf("rejected start must not keep a reference, RefCount() = %d", s.RefCount())
	}
	if svc.RunsStarted() != 0 {
		t.Error("no run should have started")
	}
}

func TestRun_FailureWithoutProgress(t *testing.T) {
	t.Parallel()
	cfg := fastConfig()
	cfg.RunFailure = apperrors.EFileNotFound
	cfg.RunFailureDescription = "disk error"
	svc := New(cfg, nil)
	s, c, h := start(t, svc)
	waitDone(t, s)
	h.Release()
	svc.Teardown()

	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.progress) != 0 {
		t.Errorf("got %d progress events, want none", len(c.progress))
	}
	if len(c.completions) != 1 {
		t.Fatalf("got %d completions, want 1", len(c.completions))
	}
	r := c.completions[0].Result
	if r.Code != apperrors.EFileNotFound || r.Description != "disk error" {
		t.Errorf("result = %+v", r)
	}
}

func TestRun_FailAtStage(t *testing.T) {
	t.Parallel()
	cfg := fastConfig()
	cfg.RunFailure = apperrors.EFail
	cfg.FailAtStage = 0
	svc := New(cfg, nil)
	s, c, h := start(t, svc)
	waitDone(t, s)
	h.Release()
	svc.Teardown()

	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.progress) != cfg.TicksPerStage {
		t.Errorf("got %d progress events, want %d", len(c.progress), cfg.TicksPerStage)
	}
	if c.completions[0].Result.Description != "assessment failed" {
		t.Errorf("default failure description = %q", c.completions[0].Result.Description)
	}
}

func TestRun_UnknownTotal(t *testing.T) {
	t.Parallel()
	cfg := fastConfig()
	cfg.UnknownTotal = true
	svc := New(cfg, nil)
	s, c, h := start(t, svc)
	waitDone(t, s)
	h.Release()
	svc.Teardown()

	c.mu.Lock()
	defer c.mu.Unlock()
	for _, v := range c.progress {
		if v.HasPercent || v.Total != 0 {
			t.Errorf("progress %+v should carry no percentage", v)
		}
	}
}

func TestRun_ExtraEventsAreDropped(t *testing.T) {
	t.Parallel()
	cfg := fastConfig()
	cfg.ExtraEventsAfterCompletion = true
	svc := New(cfg, nil)
	s, c, h := start(t, svc)
	waitDone(t, s)
	h.Release()
	svc.Teardown()

	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.completions) != 1 {
		t.Errorf("got %d completions, want 1", len(c.completions))
	}
	if len(c.progress) != 4 {
		t.Errorf("got %d progress events, want 4", len(c.progress))
	}
}

func TestTeardown_AbortsInFlightRunWithoutCompletion(t *testing.T) {
	t.Parallel()
	cfg := fastConfig()
	cfg.TickInterval = time.Hour
	svc := New(cfg, nil)
	s, c, h := start(t, svc)
	h.Release()
	svc.Teardown()

	select {
	case <-s.Done():
		t.Error("an aborted run must not deliver a completion event")
	default:
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.completions) != 0 {
		t.Errorf("completions = %+v, want none", c.completions)
	}
	if s.RefCount() != 1 {
		t.Errorf("RefCount() = %d after teardown, want 1", s.RefCount())
	}
	if _, ok := s.Outcome(); ok {
		t.Error("Outcome() should report no completion")
	}
}

func TestHandle_ReleaseTwicePanics(t *testing.T) {
	t.Parallel()
	svc := New(fastConfig(), nil)
	if err := svc.Initialize(assessment.ThreadingApartment); err != nil {
		t.Fatal(err)
	}
	defer svc.Teardown()
	h, err := svc.AcquireHandle(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	h.Release()
	defer func() {
		if recover() == nil {
			t.Error("second Release should panic")
		}
	}()
	h.Release()
}

func TestDescribe(t *testing.T) {
	t.Parallel()
	hw := sysmon.Hardware{
		TotalMemory: 8 << 30,
		LogicalCPUs: 8,
		CPUFeatures: []string{"AVX", "AVX2"},
		DiskPath:    "/tmp",
		DiskTotal:   100 << 30,
	}
	tests := []struct {
		stage string
		want  string
	}{
		{"Memory", "8.0 GiB"},
		{"Processor", "8 logical, AVX/AVX2"},
		{"Disk", "/tmp, 100.0 GiB"},
		{"Graphics", ""},
	}
	for _, tt := range tests {
		if got := describe(tt.stage, hw); got != tt.want {
			t.Errorf("describe(%q) = %q, want %q", tt.stage, got, tt.want)
		}
	}
	if got := describe("Memory", sysmon.Hardware{}); got != "" {
		t.Errorf("describe with failed probe = %q, want empty", got)
	}
}

func TestPlan_ProbedLabels(t *testing.T) {
	t.Parallel()
	cfg := fastConfig()
	cfg.Stages = []string{"Processor", "Graphics"}
	cfg.ProbeHardware = true
	svc := New(cfg, nil)

	stages, _ := svc.plan(context.Background())
	if !strings.HasPrefix(stages[0].label, "Processor (") {
		t.Errorf("processor label = %q", stages[0].label)
	}
	if stages[1].label != "Graphics" {
		t.Errorf("graphics label = %q", stages[1].label)
	}
}

func TestDefaultConfig(t *testing.T) {
	t.Parallel()
	cfg := DefaultConfig()
	if len(cfg.Stages) != 5 || cfg.Stages[0] != "Memory" || cfg.Stages[4] != "Disk" {
		t.Errorf("default stages = %v", cfg.Stages)
	}
	if cfg.TicksPerStage != DefaultTicksPerStage || cfg.TickInterval != DefaultTickInterval {
		t.Errorf("default ticks = %d every %v", cfg.TicksPerStage, cfg.TickInterval)
	}
}

func TestQueryAssessment_StoredState(t *testing.T) {
	t.Parallel()
	assessedAt := time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)
	tests := []struct {
		name      string
		state     assessment.State
		wantSubs  int
		wantState string
	}{
		{"valid", assessment.StateValid, 2, "The rating is up to date"},
		{"incoherent", assessment.StateIncoherentWithHardware, 2, "The hardware changed since the last assessment"},
		{"unavailable", assessment.StateNotAvailable, 0, ""},
		{"invalid", assessment.StateInvalid, 0, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := fastConfig()
			cfg.StoredState = tt.state
			cfg.StoredAt = assessedAt
			svc := New(cfg, nil)
			if err := svc.Initialize(assessment.ThreadingApartment); err != nil {
				t.Fatal(err)
			}
			defer svc.Teardown()
			h, err := svc.AcquireHandle(context.Background())
			if err != nil {
				t.Fatal(err)
			}
			defer h.Release()

			info, err := h.QueryAssessment(context.Background())
			if err != nil {
				t.Fatalf("QueryAssessment: %v", err)
			}
			if info.State != tt.state {
				t.Errorf("State = %v, want %v", info.State, tt.state)
			}
			if len(info.Subscores) != tt.wantSubs {
				t.Fatalf("got %d subscores, want %d", len(info.Subscores), tt.wantSubs)
			}
			if info.RatingState != tt.wantState {
				t.Errorf("RatingState = %q, want %q", info.RatingState, tt.wantState)
			}
			if tt.wantSubs == 0 {
				return
			}
			if info.Subscores[0].Title != "Stage A" || info.Subscores[1].Title != "Stage B" {
				t.Errorf("subscore titles = %q, %q", info.Subscores[0].Title, info.Subscores[1].Title)
			}
			if info.BaseScore != defaultScore || assessment.FormatScore(info.BaseScore) != "5.0" {
				t.Errorf("BaseScore = %v, want 5.0", info.BaseScore)
			}
			if !info.AssessedAt.Equal(assessedAt) {
				t.Errorf("AssessedAt = %v, want %v", info.AssessedAt, assessedAt)
			}
		})
	}
}

func TestQueryAssessment_AfterRun(t *testing.T) {
	t.Parallel()
	cfg := fastConfig()
	cfg.StoredState = assessment.StateNotAvailable
	svc := New(cfg, nil)
	s, _, h := start(t, svc)
	waitDone(t, s)
	defer svc.Teardown()
	defer h.Release()

	info, err := h.QueryAssessment(context.Background())
	if err != nil {
		t.Fatalf("QueryAssessment: %v", err)
	}
	if info.State != assessment.StateValid || len(info.Subscores) != 2 {
		t.Fatalf("info = %+v, want a valid assessment with 2 subscores", info)
	}
	if time.Since(info.AssessedAt) > time.Minute {
		t.Errorf("AssessedAt = %v, want the time of the run", info.AssessedAt)
	}

	info.Subscores[0].Title = "changed"
	again, _ := h.QueryAssessment(context.Background())
	if again.Subscores[0].Title != "Stage A" {
		t.Error("QueryAssessment should return a copy of the subscores")
	}
}

func TestQueryAssessment_FailedRunKeepsRecord(t *testing.T) {
	t.Parallel()
	cfg := fastConfig()
	cfg.StoredState = assessment.StateInvalid
	cfg.RunFailure = apperrors.EFail
	svc := New(cfg, nil)
	s, _, h := start(t, svc)
	waitDone(t, s)
	defer svc.Teardown()
	defer h.Release()

	info, err := h.QueryAssessment(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if info.State != assessment.StateInvalid {
		t.Errorf("State = %v, want invalid after a failed run", info.State)
	}
}

func TestQueryAssessment_Errors(t *testing.T) {
	t.Parallel()
	cfg := fastConfig()
	cfg.QueryFailure = apperrors.EAccessDenied
	svc := New(cfg, nil)
	if err := svc.Initialize(assessment.ThreadingApartment); err != nil {
		t.Fatal(err)
	}
	defer svc.Teardown()
	h, err := svc.AcquireHandle(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	_, err = h.QueryAssessment(context.Background())
	var unavailable apperrors.ServiceUnavailableError
	if !errors.As(err, &unavailable) || unavailable.Code != apperrors.EAccessDenied {
		t.Errorf("err = %v, want ServiceUnavailableError(0x80070005)", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := h.QueryAssessment(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}

	h.Release()
	if _, err := h.QueryAssessment(context.Background()); !errors.As(err, &unavailable) {
		t.Errorf("query on a released handle: err = %v", err)
	}
}

func TestScore(t *testing.T) {
	t.Parallel()
	hw := sysmon.Hardware{
		TotalMemory: 16 << 30,
		LogicalCPUs: 8,
		CPUFeatures: []string{"AVX", "AVX2"},
		DiskTotal:   100 << 30,
	}
	tests := []struct {
		stage string
		hw    sysmon.Hardware
		want  string
	}{
		{"Memory", hw, "8.0"},
		{"Processor", hw, "7.4"},
		{"Disk", hw, "5.9"},
		{"Graphics", hw, "5.0"},
		{"Memory", sysmon.Hardware{}, "5.0"},
		{"Memory", sysmon.Hardware{TotalMemory: 1 << 40}, "9.9"},
		{"Memory", sysmon.Hardware{TotalMemory: 1 << 20}, "1.0"},
	}
	for _, tt := range tests {
		if got := assessment.FormatScore(score(tt.stage, tt.hw)); got != tt.want {
			t.Errorf("score(%q) = %s, want %s", tt.stage, got, tt.want)
		}
	}
}

func TestScoreInfo_BaseScoreIsLowest(t *testing.T) {
	t.Parallel()
	stages := []stage{{name: "Memory"}, {name: "Graphics"}, {name: "Processor"}}
	hw := sysmon.Hardware{TotalMemory: 16 << 30, LogicalCPUs: 2}
	info := scoreInfo(assessment.StateValid, stages, hw, time.Time{})

	if got := assessment.FormatScore(info.BaseScore); got != "5.0" {
		t.Errorf("BaseScore = %s, want 5.0", got)
	}
	if info.Subscores[1].Description != "Desktop graphics performance" {
		t.Errorf("graphics description = %q", info.Subscores[1].Description)
	}
}
