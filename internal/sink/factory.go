package sink

import (
	"math"

	"golang.org/x/sync/semaphore"

	apperrors "github.com/agbru/winsatrun/internal/errors"
)

// Factory constructs sinks within a budget of live (not yet destroyed)
// instances. A slot is returned when its sink is destroyed.
type Factory struct {
	sem   *semaphore.Weighted
	limit int64
	opts  []Option
}

// NewFactory returns a Factory allowing at most maxLive live sinks. A
// non-positive maxLive means no limit. opts are applied to every sink.
func NewFactory(maxLive int64, opts ...Option) *Factory {
	if maxLive <= 0 {
		maxLive = math.MaxInt64
	}
	return &Factory{
		sem:   semaphore.NewWeighted(maxLive),
		limit: maxLive,
		opts:  opts,
	}
}

// New creates a sink for presenter, or fails with ResourceExhaustedError
// when the budget is used up.
func (f *Factory) New(presenter Presenter) (*Sink, error) {
	if !f.sem.TryAcquire(1) {
		buildOptions(f.opts).recorder.SinkRejected()
		return nil, apperrors.ResourceExhaustedError{Resource: "notification sinks", Limit: f.limit}
	}
	opts := make([]Option, 0, len(f.opts)+1)
	opts = append(opts, f.opts...)
	opts = append(opts, WithDestroyHook(func() { f.sem.Release(1) }))
	return New(presenter, opts...), nil
}
