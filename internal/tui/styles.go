package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/agbru/winsatrun/internal/ui"
)

// Style variables for the dashboard.
// Initialized from the ui theme system via initTUIStyles().
var (
	panelStyle       lipgloss.Style
	panelTitleStyle  lipgloss.Style
	headerStyle      lipgloss.Style
	titleStyle       lipgloss.Style
	dimStyle         lipgloss.Style
	accentStyle      lipgloss.Style
	logTimeStyle     lipgloss.Style
	logStageStyle    lipgloss.Style
	logSuccessStyle  lipgloss.Style
	logErrorStyle    lipgloss.Style
	statusStyle      lipgloss.Style
	statusDoneStyle  lipgloss.Style
	statusErrorStyle lipgloss.Style
	cpuLineStyle     lipgloss.Style
	memLineStyle     lipgloss.Style
)

func init() {
	initTUIStyles()
}

// initTUIStyles rebuilds all dashboard styles from the current ui theme.
// Called at package init and again from Run() after InitTheme has been invoked.
func initTUIStyles() {
	t := ui.GetCurrentTUITheme()

	panelStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.Border).
		Foreground(t.Text).
		Padding(0, 1)
	panelTitleStyle = lipgloss.NewStyle().Foreground(t.Accent).Bold(true)
	headerStyle = lipgloss.NewStyle().Foreground(t.Accent).Bold(true).Padding(0, 1)
	titleStyle = lipgloss.NewStyle().Foreground(t.Accent).Bold(true)
	dimStyle = lipgloss.NewStyle().Foreground(t.Dim)
	accentStyle = lipgloss.NewStyle().Foreground(t.Accent)
	logTimeStyle = lipgloss.NewStyle().Foreground(t.Dim)
	logStageStyle = lipgloss.NewStyle().Foreground(t.Info)
	logSuccessStyle = lipgloss.NewStyle().Foreground(t.Success)
	logErrorStyle = lipgloss.NewStyle().Foreground(t.Error)
	statusStyle = lipgloss.NewStyle().Foreground(t.Success).Bold(true)
	statusDoneStyle = lipgloss.NewStyle().Foreground(t.Accent).Bold(true)
	statusErrorStyle = lipgloss.NewStyle().Foreground(t.Error).Bold(true)
	cpuLineStyle = lipgloss.NewStyle().Foreground(t.Accent)
	memLineStyle = lipgloss.NewStyle().Foreground(t.Warning)
}

// panel renders body inside a bordered box of the given outer size.
func panel(title, body string, width, height int) string {
	innerW := width - 4
	innerH := height - 2
	if innerW < 1 {
		innerW = 1
	}
	if innerH < 1 {
		innerH = 1
	}
	content := lipgloss.JoinVertical(lipgloss.Left, panelTitleStyle.Render(title), body)
	return panelStyle.Width(innerW + 2).Height(innerH).MaxHeight(height).Render(content)
}
