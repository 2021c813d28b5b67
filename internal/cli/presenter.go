package cli

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/agbru/winsatrun/internal/assessment"
	"github.com/agbru/winsatrun/internal/format"
	"github.com/agbru/winsatrun/internal/orchestration"
	"github.com/agbru/winsatrun/internal/sink"
	"github.com/agbru/winsatrun/internal/ui"
)

// ConsolePresenter implements orchestration.Presenter with line output.
//
// Every event produces the fixed "*** " prefixed lines scripts rely on. In
// quiet mode only the completion and diagnostic lines are written. When a
// spinner is enabled it animates between events and is paused while a line
// is written.
type ConsolePresenter struct {
	out   io.Writer
	quiet bool
	spin  bool

	newSpinner func(io.Writer) Spinner

	mu      sync.Mutex
	spinner Spinner
	tracker *orchestration.ProgressTracker
}

// Verify interface compliance.
var _ orchestration.Presenter = (*ConsolePresenter)(nil)

// NewConsolePresenter creates a presenter writing to out. spin enables the
// wait spinner; callers should only set it when out is a terminal.
func NewConsolePresenter(out io.Writer, quiet, spin bool) *ConsolePresenter {
	return &ConsolePresenter{
		out:        out,
		quiet:      quiet,
		spin:       spin && !quiet,
		newSpinner: newSpinner,
		tracker:    orchestration.NewProgressTracker(),
	}
}

// PresentStart prints the run banner and starts the spinner.
func (p *ConsolePresenter) PresentStart(runID uuid.UUID) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.quiet {
		return
	}
	fmt.Fprintf(p.out, "Running formal assessment (run %s)...\n", runID)
	if p.spin && p.spinner == nil {
		p.spinner = p.newSpinner(p.out)
		p.spinner.UpdateSuffix(" waiting for the assessment service")
		p.spinner.Start()
	}
}

// PresentProgress prints the percentage (when the total is known) and the
// current stage label.
func (p *ConsolePresenter) PresentProgress(v sink.ProgressView) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.quiet {
		return
	}
	tracked := p.tracker.Update(v)
	p.pauseSpinner()
	if v.HasPercent {
		fmt.Fprintf(p.out, "*** Percent complete: %d%%\n", v.Percent)
	}
	fmt.Fprintf(p.out, "*** Currently assessing: %s\n", v.Label)
	if p.spinner != nil {
		p.spinner.UpdateSuffix(spinnerSuffix(v, tracked.ETA))
		p.spinner.Start()
	}
}

// PresentCompletion prints the outcome line and stops the spinner.
func (p *ConsolePresenter) PresentCompletion(ev assessment.CompletionEvent) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stopSpinner()
	fmt.Fprintln(p.out, FormatCompletion(ev))
}

// PresentError prints a diagnostic line and stops the spinner.
func (p *ConsolePresenter) PresentError(step string, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stopSpinner()
	fmt.Fprintf(p.out, "%sFailed to %s: %v%s\n", ui.ColorRed(), step, err, ui.ColorReset())
}

func (p *ConsolePresenter) pauseSpinner() {
	if p.spinner != nil {
		p.spinner.Stop()
	}
}

func (p *ConsolePresenter) stopSpinner() {
	if p.spinner != nil {
		p.spinner.Stop()
		p.spinner = nil
	}
}

// FormatCompletion returns the outcome line of a completion event.
func FormatCompletion(ev assessment.CompletionEvent) string {
	if ev.Result.Succeeded() {
		return ui.Colorize(ui.ColorGreen(), "*** "+ev.Description)
	}
	return ui.Colorize(ui.ColorRed(), fmt.Sprintf("*** The assessment failed with %s (%s)",
		ev.Result.Code, ev.Result.Description))
}

func spinnerSuffix(v sink.ProgressView, eta time.Duration) string {
	if !v.HasPercent {
		return " " + v.Label
	}
	s := fmt.Sprintf(" %s %s %s", format.ProgressBar(v.Percent, ProgressBarWidth), format.Percent(v.Percent), v.Label)
	if eta > 0 {
		s += " (ETA " + format.FormatElapsed(eta.Round(time.Second)) + ")"
	}
	return s
}
