package tui

import (
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
)

// maxLogLines bounds the event log.
const maxLogLines = 500

// LogsModel is the scrollable event log.
type LogsModel struct {
	vp     viewport.Model
	lines  []string
	width  int
	height int
}

// NewLogsModel creates an empty log.
func NewLogsModel() LogsModel {
	return LogsModel{vp: viewport.New(0, 0)}
}

// SetSize updates the outer panel dimensions.
func (m *LogsModel) SetSize(w, h int) {
	m.width, m.height = w, h
	m.vp.Width = max(w-4, 1)
	m.vp.Height = max(h-3, 1)
	m.refresh(true)
}

// Add appends a line stamped with at. The view follows new lines unless
// the user scrolled up.
func (m *LogsModel) Add(at time.Time, line string) {
	follow := m.vp.AtBottom()
	m.lines = append(m.lines, logTimeStyle.Render(at.Format("15:04:05"))+" "+line)
	if len(m.lines) > maxLogLines {
		m.lines = m.lines[len(m.lines)-maxLogLines:]
	}
	m.refresh(follow)
}

// Lines returns the number of buffered lines.
func (m LogsModel) Lines() int { return len(m.lines) }

func (m *LogsModel) refresh(follow bool) {
	m.vp.SetContent(strings.Join(m.lines, "\n"))
	if follow {
		m.vp.GotoBottom()
	}
}

// Update forwards scroll keys to the viewport.
func (m *LogsModel) Update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	m.vp, cmd = m.vp.Update(msg)
	return cmd
}

// View renders the panel.
func (m LogsModel) View() string {
	return panel("Events", m.vp.View(), m.width, m.height)
}
