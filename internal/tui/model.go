// Package tui implements the interactive dashboard shown with --tui.
package tui

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	apperrors "github.com/agbru/winsatrun/internal/errors"
	"github.com/agbru/winsatrun/internal/metrics"
	"github.com/agbru/winsatrun/internal/orchestration"
	"github.com/agbru/winsatrun/internal/sysmon"
)

// Layout constants for the dashboard.
const (
	headerHeight          = 1
	footerHeight          = 1
	minBodyHeight         = 10
	LogsPanelWidthPercent = 55
	tickInterval          = 500 * time.Millisecond
)

// TickMsg drives periodic sampling and the elapsed clock.
type TickMsg time.Time

// Options configures the dashboard.
type Options struct {
	Version string
	// Stages is the stage plan shown in the progress panel.
	Stages []string
	// DiskPath is the volume reported by the hardware probe.
	DiskPath string
}

// ExecuteFunc runs the assessment, reporting through p, and returns when
// the orchestrator is done.
type ExecuteFunc func(ctx context.Context, p orchestration.Presenter) orchestration.RunResult

// Model is the root bubbletea model for the dashboard.
type Model struct {
	header   HeaderModel
	progress ProgressModel
	logs     LogsModel
	system   SystemModel
	help     help.Model
	keymap   KeyMap

	width  int
	height int

	cancel   context.CancelFunc
	diskPath string
	now      func() time.Time
	mem      *metrics.MemoryCollector

	done   bool
	result orchestration.RunResult
}

// NewModel creates a dashboard model. cancel aborts the run.
func NewModel(opts Options, cancel context.CancelFunc) Model {
	now := time.Now
	return Model{
		header:   NewHeaderModel(opts.Version, now()),
		progress: NewProgressModel(opts.Stages),
		logs:     NewLogsModel(),
		system:   NewSystemModel(),
		help:     help.New(),
		keymap:   DefaultKeyMap(),
		cancel:   cancel,
		diskPath: opts.DiskPath,
		now:      now,
		mem:      metrics.NewMemoryCollector(),
	}
}

// Init returns the initial commands.
func (m Model) Init() tea.Cmd {
	return tea.Batch(tickCmd(), sampleSysStatsCmd(m.mem), probeHardwareCmd(m.diskPath))
}

// Update handles all incoming messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.layoutPanels()
		return m, nil

	case StartMsg:
		m.header.SetRun(msg.RunID)
		m.logs.Add(msg.At, fmt.Sprintf("Running formal assessment (run %s)", msg.RunID))
		return m, nil

	case ProgressMsg:
		m.progress.Update(msg)
		if msg.Tracked.StageChanged {
			m.logs.Add(msg.At, "Currently assessing: "+logStageStyle.Render(msg.View.Label))
		}
		if msg.View.HasPercent {
			m.logs.Add(msg.At, fmt.Sprintf("Percent complete: %d%%", msg.View.Percent))
		}
		return m, nil

	case CompletionMsg:
		m.progress.SetOutcome(msg.Event)
		if msg.Event.Result.Succeeded() {
			m.header.Finish(statusCompleted, msg.At)
			m.logs.Add(msg.At, logSuccessStyle.Render(msg.Event.Description))
		} else {
			m.header.Finish(statusFailed, msg.At)
			m.logs.Add(msg.At, logErrorStyle.Render(fmt.Sprintf("The assessment failed with %s (%s)",
				msg.Event.Result.Code, msg.Event.Result.Description)))
		}
		return m, nil

	case ErrorMsg:
		status := statusFailed
		if apperrors.IsContextError(msg.Err) || errors.As(msg.Err, new(apperrors.TimeoutError)) {
			status = statusAborted
		}
		m.header.Finish(status, msg.At)
		m.logs.Add(msg.At, logErrorStyle.Render(fmt.Sprintf("Failed to %s: %v", msg.Step, msg.Err)))
		return m, nil

	case RunDoneMsg:
		m.done = true
		m.result = msg.Result
		if m.header.status == statusRunning || m.header.status == statusStarting {
			status := statusCompleted
			if msg.Result.ExitCode != apperrors.ExitSuccess {
				status = statusFailed
			}
			m.header.Finish(status, m.now())
		}
		m.logs.Add(m.now(), dimStyle.Render(fmt.Sprintf("Run finished with exit code %d", msg.Result.ExitCode)))
		return m, nil

	case TickMsg:
		if m.done {
			return m, nil
		}
		return m, tea.Batch(sampleSysStatsCmd(m.mem), tickCmd())

	case SysStatsMsg:
		m.system.Push(msg)
		return m, nil

	case HardwareMsg:
		m.system.SetHardware(msg)
		return m, nil
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keymap.Quit):
		if m.cancel != nil {
			m.cancel()
		}
		return m, tea.Quit

	case key.Matches(msg, m.keymap.Up), key.Matches(msg, m.keymap.Down),
		key.Matches(msg, m.keymap.PageUp), key.Matches(msg, m.keymap.PageDown):
		return m, m.logs.Update(msg)
	}
	return m, nil
}

// Done reports whether the orchestrator returned.
func (m Model) Done() bool { return m.done }

// View renders the entire dashboard.
func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return "Initializing..."
	}

	left := lipgloss.JoinVertical(lipgloss.Left, m.progress.View(), m.system.View())
	body := lipgloss.JoinHorizontal(lipgloss.Top, left, m.logs.View())
	return lipgloss.JoinVertical(lipgloss.Left, m.header.View(m.now()), body, m.footerView())
}

func (m Model) footerView() string {
	status := dimStyle.Render("waiting for completion")
	if m.done {
		status = accentStyle.Render(fmt.Sprintf("done (exit %d), press q to exit", m.result.ExitCode))
	}
	return " " + m.help.View(m.keymap) + dimStyle.Render("  |  ") + status
}

func (m *Model) layoutPanels() {
	body := m.height - headerHeight - footerHeight
	if body < minBodyHeight {
		body = minBodyHeight
	}
	logsW := m.width * LogsPanelWidthPercent / 100
	leftW := m.width - logsW
	progressH := body - 6
	if limit := len(m.progress.plan) + 6; progressH > limit {
		progressH = limit
	}

	m.header.SetWidth(m.width)
	m.help.Width = m.width
	m.progress.SetSize(leftW, progressH)
	m.system.SetSize(leftW, body-progressH)
	m.logs.SetSize(logsW, body)
}

// Run shows the dashboard while execute runs the assessment, and returns
// the orchestrator's result. Quitting the dashboard cancels the run; Run
// still waits for execute to return so cleanup completes.
func Run(ctx context.Context, opts Options, execute ExecuteFunc, teaOpts ...tea.ProgramOption) (orchestration.RunResult, error) {
	// Rebuild styles from the current ui theme (set by app.Run via InitTheme).
	initTUIStyles()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	ref := &programRef{}
	model := NewModel(opts, cancel)
	p := tea.NewProgram(model, append([]tea.ProgramOption{tea.WithAltScreen()}, teaOpts...)...)
	ref.SetProgram(p)

	resultCh := make(chan orchestration.RunResult, 1)
	go func() {
		res := execute(ctx, newPresenter(ref))
		resultCh <- res
		ref.Send(RunDoneMsg{Result: res})
	}()

	_, err := p.Run()
	cancel()
	res := <-resultCh
	if err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return res, fmt.Errorf("dashboard: %w", err)
	}
	return res, nil
}

// tickCmd returns a command that sends a TickMsg after tickInterval.
func tickCmd() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

// sampleSysStatsCmd reads host CPU and memory usage and the client's own
// memory statistics.
func sampleSysStatsCmd(mc *metrics.MemoryCollector) tea.Cmd {
	return func() tea.Msg {
		return SysStatsMsg{Stats: sysmon.Sample(), Client: mc.Snapshot()}
	}
}

// probeHardwareCmd probes the host once for the system panel.
func probeHardwareCmd(diskPath string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		hw, err := sysmon.ProbeHardware(ctx, diskPath)
		return HardwareMsg{Hardware: hw, Err: err}
	}
}
