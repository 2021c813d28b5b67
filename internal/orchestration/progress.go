package orchestration

import (
	"time"

	"github.com/agbru/winsatrun/internal/sink"
)

// etaSmoothing is the weight of the newest rate sample in the exponential
// moving average used for the ETA.
const etaSmoothing = 0.3

// ProgressTracker turns the sink's progress views into an overall fraction
// and an ETA. Both the console presenter and the dashboard use it so the
// estimate is computed the same way in each.
//
// A ProgressTracker is not safe for concurrent use; the sink already
// serializes delivery.
type ProgressTracker struct {
	start    time.Time
	lastAt   time.Time
	last     float64
	rate     float64 // fraction per second, smoothed
	now      func() time.Time
	stage    string
	stages   int
	hasTotal bool
}

// NewProgressTracker starts tracking at the current time.
func NewProgressTracker() *ProgressTracker {
	return newProgressTracker(time.Now)
}

func newProgressTracker(now func() time.Time) *ProgressTracker {
	t := now()
	return &ProgressTracker{start: t, lastAt: t, now: now}
}

// TrackedProgress is the result of one Update.
type TrackedProgress struct {
	// Fraction is the overall progress in 0..1; valid when Known is set.
	Fraction float64
	Known    bool
	// ETA is the estimated remaining time; zero when unknown.
	ETA time.Duration
	// Stage is the label of the current stage.
	Stage string
	// StageChanged is set when Stage differs from the previous update.
	StageChanged bool
	// Stages counts distinct stages seen so far.
	Stages int
}

// Update folds v into the tracker.
func (p *ProgressTracker) Update(v sink.ProgressView) TrackedProgress {
	out := TrackedProgress{Stage: v.Label}
	if v.Label != p.stage {
		p.stage = v.Label
		p.stages++
		out.StageChanged = true
	}
	out.Stages = p.stages

	if !v.HasPercent {
		return out
	}
	frac := float64(v.Percent) / 100
	if frac > 1 {
		frac = 1
	}
	p.hasTotal = true
	now := p.now()
	if dt := now.Sub(p.lastAt).Seconds(); dt > 0 && frac > p.last {
		sample := (frac - p.last) / dt
		if p.rate == 0 {
			p.rate = sample
		} else {
			p.rate = etaSmoothing*sample + (1-etaSmoothing)*p.rate
		}
	}
	p.last, p.lastAt = frac, now

	out.Fraction, out.Known = frac, true
	out.ETA = p.ETA()
	return out
}

// Fraction returns the last known overall fraction.
func (p *ProgressTracker) Fraction() (float64, bool) { return p.last, p.hasTotal }

// ETA returns the estimated remaining time, or zero when unknown.
func (p *ProgressTracker) ETA() time.Duration {
	if p.rate <= 0 || p.last >= 1 {
		return 0
	}
	return time.Duration((1 - p.last) / p.rate * float64(time.Second))
}

// Elapsed returns the time since tracking started.
func (p *ProgressTracker) Elapsed() time.Duration { return p.now().Sub(p.start) }
