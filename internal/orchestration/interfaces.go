package orchestration

import (
	"github.com/google/uuid"

	"github.com/agbru/winsatrun/internal/assessment"
	"github.com/agbru/winsatrun/internal/sink"
)

// Presenter is the orchestrator's output port. It receives the sink's events
// plus the run banner and one diagnostic line per failed step.
//
// Implementations handle the visual representation (console lines, spinner,
// dashboard) while the orchestrator focuses on the protocol.
type Presenter interface {
	sink.Presenter
	// PresentStart announces a run about to be started.
	PresentStart(runID uuid.UUID)
	// PresentError reports that step failed with err, as in
	// "Failed to <step>: <err>".
	PresentError(step string, err error)
}

// NullPresenter is a no-op implementation of Presenter.
// Useful for quiet embedding or testing.
type NullPresenter struct{}

func (NullPresenter) PresentStart(uuid.UUID)                       {}
func (NullPresenter) PresentProgress(sink.ProgressView)            {}
func (NullPresenter) PresentCompletion(assessment.CompletionEvent) {}
func (NullPresenter) PresentError(string, error)                   {}

// SinkFactory constructs notification sinks.
type SinkFactory interface {
	New(p sink.Presenter) (*sink.Sink, error)
}

// MultiPresenter fans every call out to each presenter in order.
type MultiPresenter []Presenter

func (m MultiPresenter) PresentStart(runID uuid.UUID) {
	for _, p := range m {
		p.PresentStart(runID)
	}
}

func (m MultiPresenter) PresentProgress(v sink.ProgressView) {
	for _, p := range m {
		p.PresentProgress(v)
	}
}

func (m MultiPresenter) PresentCompletion(ev assessment.CompletionEvent) {
	for _, p := range m {
		p.PresentCompletion(ev)
	}
}

func (m MultiPresenter) PresentError(step string, err error) {
	for _, p := range m {
		p.PresentError(step, err)
	}
}

var (
	_ Presenter   = NullPresenter{}
	_ Presenter   = MultiPresenter(nil)
	_ SinkFactory = (*sink.Factory)(nil)
)
