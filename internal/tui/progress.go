package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"

	"github.com/agbru/winsatrun/internal/assessment"
	"github.com/agbru/winsatrun/internal/format"
)

// ProgressModel shows the current stage, the overall progress bar, the ETA
// and the stage plan.
type ProgressModel struct {
	bar     progress.Model
	plan    []string
	done    map[int]bool
	current int // index in plan, -1 when the label matches no stage
	last    ProgressMsg
	started bool
	outcome *assessment.CompletionEvent
	width   int
	height  int
}

// NewProgressModel creates the panel for the given stage plan.
func NewProgressModel(plan []string) ProgressModel {
	return ProgressModel{
		bar:     progress.New(progress.WithDefaultGradient(), progress.WithoutPercentage()),
		plan:    append([]string(nil), plan...),
		done:    make(map[int]bool),
		current: -1,
	}
}

// SetSize updates the outer panel dimensions.
func (m *ProgressModel) SetSize(w, h int) {
	m.width, m.height = w, h
	m.bar.Width = max(w-12, 10)
}

// Update folds a progress message into the panel.
func (m *ProgressModel) Update(msg ProgressMsg) {
	m.started = true
	m.last = msg
	idx := m.stageIndex(msg.View.Label)
	if idx >= 0 && idx != m.current {
		for i := 0; i < idx; i++ {
			m.done[i] = true
		}
	}
	m.current = idx
}

// SetOutcome records the completion event.
func (m *ProgressModel) SetOutcome(ev assessment.CompletionEvent) {
	m.outcome = &ev
	if ev.Result.Succeeded() {
		for i := range m.plan {
			m.done[i] = true
		}
	}
}

// stageIndex matches a progress label to the plan. Labels may carry a
// description after the stage name, e.g. "Memory (16.0 GiB)".
func (m ProgressModel) stageIndex(label string) int {
	for i, s := range m.plan {
		if label == s || strings.HasPrefix(label, s+" ") {
			return i
		}
	}
	return -1
}

// Fraction returns the displayed fraction.
func (m ProgressModel) Fraction() float64 {
	if m.outcome != nil && m.outcome.Result.Succeeded() {
		return 1
	}
	if m.last.Tracked.Known {
		return m.last.Tracked.Fraction
	}
	return 0
}

// View renders the panel.
func (m ProgressModel) View() string {
	var b strings.Builder

	switch {
	case m.outcome != nil && m.outcome.Result.Succeeded():
		fmt.Fprintf(&b, "%s\n", logSuccessStyle.Render(m.outcome.Description))
	case m.outcome != nil:
		fmt.Fprintf(&b, "%s\n", logErrorStyle.Render(fmt.Sprintf("Failed with %s (%s)",
			m.outcome.Result.Code, m.outcome.Result.Description)))
	case m.started:
		fmt.Fprintf(&b, "Assessing: %s\n", logStageStyle.Render(m.last.View.Label))
	default:
		fmt.Fprintf(&b, "%s\n", dimStyle.Render("Waiting for the assessment service..."))
	}

	pct := "--"
	if m.last.Tracked.Known || m.outcome != nil {
		pct = fmt.Sprintf("%3.0f%%", m.Fraction()*100)
	}
	fmt.Fprintf(&b, "%s %s\n", m.bar.ViewAs(m.Fraction()), accentStyle.Render(pct))

	eta := "--:--"
	if d := m.last.Tracked.ETA; d > 0 && m.outcome == nil {
		eta = format.FormatElapsed(d.Round(time.Second))
	}
	units := "--"
	if m.started && m.last.View.Total > 0 {
		units = fmt.Sprintf("%d/%d", m.last.View.Current, m.last.View.Total)
	}
	fmt.Fprintf(&b, "%s %s   %s %s\n", dimStyle.Render("Units"), units, dimStyle.Render("ETA"), eta)

	for i, s := range m.plan {
		marker := dimStyle.Render("·")
		switch {
		case m.done[i]:
			marker = logSuccessStyle.Render("✓")
		case i == m.current && m.outcome == nil:
			marker = accentStyle.Render("▶")
		case i == m.current:
			marker = logErrorStyle.Render("✗")
		}
		fmt.Fprintf(&b, "%s %s\n", marker, s)
	}
	return panel("Assessment", strings.TrimRight(b.String(), "\n"), m.width, m.height)
}
