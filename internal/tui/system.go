package tui

import (
	"fmt"
	"strings"

	"github.com/agbru/winsatrun/internal/format"
	"github.com/agbru/winsatrun/internal/metrics"
	"github.com/agbru/winsatrun/internal/sysmon"
)

// historySize is the default number of CPU and memory samples kept.
const historySize = 60

// SysStatsMsg carries one host sample.
type SysStatsMsg struct {
	Stats  sysmon.Stats
	Client metrics.MemorySnapshot
}

// HardwareMsg carries the result of the hardware probe.
type HardwareMsg struct {
	Hardware sysmon.Hardware
	Err      error
}

// SystemModel shows host CPU and memory usage with their history, the
// probed hardware and the client's own memory use.
type SystemModel struct {
	cpu      *History
	mem      *History
	client   metrics.MemorySnapshot
	hw       sysmon.Hardware
	hwKnown  bool
	hwFailed bool
	width    int
	height   int
}

// NewSystemModel creates an empty panel.
func NewSystemModel() SystemModel {
	return SystemModel{cpu: NewHistory(historySize), mem: NewHistory(historySize)}
}

// SetSize updates the outer panel dimensions and the history length.
func (m *SystemModel) SetSize(w, h int) {
	m.width, m.height = w, h
	if n := w - 16; n > 0 {
		m.cpu.SetLimit(n)
		m.mem.SetLimit(n)
	}
}

// Push records a sample.
func (m *SystemModel) Push(msg SysStatsMsg) {
	m.cpu.Add(msg.Stats.CPUPercent)
	m.mem.Add(msg.Stats.MemPercent)
	m.client = msg.Client
}

// SetHardware records the probe result.
func (m *SystemModel) SetHardware(msg HardwareMsg) {
	m.hw = msg.Hardware
	m.hwKnown = true
	m.hwFailed = msg.Err != nil
}

// View renders the panel.
func (m SystemModel) View() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %5.1f%% %s\n", dimStyle.Render("CPU"), m.cpu.Latest(), cpuLineStyle.Render(m.cpu.Sparkline()))
	fmt.Fprintf(&b, "%s %5.1f%% %s\n", dimStyle.Render("MEM"), m.mem.Latest(), memLineStyle.Render(m.mem.Sparkline()))

	switch {
	case !m.hwKnown:
		fmt.Fprintf(&b, "%s\n", dimStyle.Render("Probing hardware..."))
	default:
		host := fmt.Sprintf("%d CPUs, %s RAM", m.hw.LogicalCPUs, format.Bytes(m.hw.TotalMemory))
		if m.hw.CPUModel != "" {
			host += ", " + m.hw.CPUModel
		}
		if m.hwFailed {
			host += " (partial)"
		}
		fmt.Fprintf(&b, "%s %s\n", dimStyle.Render("Host"), host)
	}
	fmt.Fprintf(&b, "%s %s heap, %d goroutines", dimStyle.Render("Client"),
		format.Bytes(m.client.HeapAlloc), m.client.Goroutines)
	return panel("System", b.String(), m.width, m.height)
}
