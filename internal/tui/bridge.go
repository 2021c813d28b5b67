package tui

import (
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"

	"github.com/agbru/winsatrun/internal/assessment"
	"github.com/agbru/winsatrun/internal/orchestration"
	"github.com/agbru/winsatrun/internal/sink"
)

// programRef is a shared reference to the tea.Program.
// Because bubbletea copies the model on every Update, we need a pointer
// that survives copies so the presenter can send messages.
type programRef struct {
	mu      sync.RWMutex
	program *tea.Program
}

// SetProgram sets the tea.Program reference (thread-safe).
func (r *programRef) SetProgram(p *tea.Program) {
	r.mu.Lock()
	r.program = p
	r.mu.Unlock()
}

// Send sends a message to the bubbletea program (thread-safe).
func (r *programRef) Send(msg tea.Msg) {
	r.mu.RLock()
	p := r.program
	r.mu.RUnlock()
	if p != nil {
		p.Send(msg)
	}
}

// Messages sent by Presenter.
type (
	StartMsg struct {
		RunID uuid.UUID
		At    time.Time
	}
	ProgressMsg struct {
		View    sink.ProgressView
		Tracked orchestration.TrackedProgress
		At      time.Time
	}
	CompletionMsg struct {
		Event assessment.CompletionEvent
		At    time.Time
	}
	ErrorMsg struct {
		Step string
		Err  error
		At   time.Time
	}
	// RunDoneMsg carries the orchestrator's result once Execute returned.
	RunDoneMsg struct {
		Result orchestration.RunResult
	}
)

// Presenter implements orchestration.Presenter by forwarding every call to
// the dashboard as a message.
type Presenter struct {
	ref     *programRef
	tracker *orchestration.ProgressTracker
	now     func() time.Time
}

var _ orchestration.Presenter = (*Presenter)(nil)

func newPresenter(ref *programRef) *Presenter {
	return &Presenter{ref: ref, tracker: orchestration.NewProgressTracker(), now: time.Now}
}

func (p *Presenter) PresentStart(runID uuid.UUID) {
	p.ref.Send(StartMsg{RunID: runID, At: p.now()})
}

func (p *Presenter) PresentProgress(v sink.ProgressView) {
	p.ref.Send(ProgressMsg{View: v, Tracked: p.tracker.Update(v), At: p.now()})
}

func (p *Presenter) PresentCompletion(ev assessment.CompletionEvent) {
	p.ref.Send(CompletionMsg{Event: ev, At: p.now()})
}

func (p *Presenter) PresentError(step string, err error) {
	p.ref.Send(ErrorMsg{Step: step, Err: err, At: p.now()})
}
