package tui

import (
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"

	"github.com/agbru/winsatrun/internal/format"
)

// runStatus is the state shown in the header.
type runStatus int

const (
	statusStarting runStatus = iota
	statusRunning
	statusCompleted
	statusFailed
	statusAborted
)

func (s runStatus) String() string {
	switch s {
	case statusRunning:
		return "RUNNING"
	case statusCompleted:
		return "COMPLETED"
	case statusFailed:
		return "FAILED"
	case statusAborted:
		return "ABORTED"
	}
	return "STARTING"
}

// HeaderModel renders the top bar: title, version, run, status, elapsed time.
type HeaderModel struct {
	startTime time.Time
	endTime   time.Time
	version   string
	runID     uuid.UUID
	status    runStatus
	width     int
}

// NewHeaderModel creates a new header.
func NewHeaderModel(version string, now time.Time) HeaderModel {
	return HeaderModel{startTime: now, version: version}
}

// SetRun records the run identifier and marks the run as started.
func (h *HeaderModel) SetRun(id uuid.UUID) {
	h.runID = id
	h.status = statusRunning
}

// Finish freezes the elapsed timer at t with the final status.
func (h *HeaderModel) Finish(status runStatus, t time.Time) {
	h.status = status
	if h.endTime.IsZero() {
		h.endTime = t
	}
}

// SetWidth updates the available width.
func (h *HeaderModel) SetWidth(w int) {
	h.width = w
}

// Elapsed returns the time since start, frozen once finished.
func (h HeaderModel) Elapsed(now time.Time) time.Duration {
	if !h.endTime.IsZero() {
		return h.endTime.Sub(h.startTime)
	}
	return now.Sub(h.startTime)
}

// View renders the header at now.
func (h HeaderModel) View(now time.Time) string {
	titleText := "WinSAT Run"
	if h.version != "" && h.version != "dev" {
		titleText += " " + h.version
	}
	left := titleStyle.Render(titleText)
	if h.runID != uuid.Nil {
		left += dimStyle.Render(" | run ") + accentStyle.Render(h.runID.String()[:8])
	}

	var st string
	switch h.status {
	case statusCompleted:
		st = statusDoneStyle.Render(h.status.String())
	case statusFailed, statusAborted:
		st = statusErrorStyle.Render(h.status.String())
	default:
		st = statusStyle.Render(h.status.String())
	}
	right := st + dimStyle.Render(" | ") + accentStyle.Render("Elapsed "+format.FormatElapsed(h.Elapsed(now)))

	gap := h.width - 2 - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}
	return headerStyle.Width(h.width).Render(left + spaces(gap) + right)
}

// spaces returns a string of n space characters.
func spaces(n int) string {
	if n <= 0 {
		return ""
	}
	b := make([]byte, n)
	for i := range b {
		b[i] = ' '
	}
	return string(b)
}
