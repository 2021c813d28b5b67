package cli

import (
	"fmt"
	"io"
	"runtime"
	"strings"

	"github.com/agbru/winsatrun/internal/config"
	"github.com/agbru/winsatrun/internal/format"
	"github.com/agbru/winsatrun/internal/metrics"
	"github.com/agbru/winsatrun/internal/orchestration"
	"github.com/agbru/winsatrun/internal/ui"
)

// PrintExecutionConfig displays the execution configuration: the wait
// timeout, the threading mode and sink budget, and the local environment.
func PrintExecutionConfig(cfg config.AppConfig, out io.Writer) {
	timeout := "none"
	if cfg.Timeout > 0 {
		timeout = cfg.Timeout.String()
	}
	sinks := "unlimited"
	if cfg.MaxLiveSinks > 0 {
		sinks = fmt.Sprintf("%d", cfg.MaxLiveSinks)
	}
	fmt.Fprintf(out, "--- Execution Configuration ---\n")
	fmt.Fprintf(out, "Completion timeout: %s%s%s, threading mode: %s%s%s, live sinks: %s.\n",
		ui.ColorYellow(), timeout, ui.ColorReset(),
		ui.ColorCyan(), cfg.ThreadingMode, ui.ColorReset(), sinks)
	fmt.Fprintf(out, "Environment: %s%d%s logical processors, Go %s%s%s.\n",
		ui.ColorCyan(), runtime.NumCPU(), ui.ColorReset(), ui.ColorCyan(), runtime.Version(), ui.ColorReset())
	fmt.Fprintf(out, "Stages: %s.\n", strings.Join(cfg.Simulation.Stages, ", "))
	fmt.Fprintf(out, "\n--- Starting Execution ---\n")
}

// DisplayRunSummary shows the elapsed time, the exit status and the
// client's memory use after a run.
func DisplayRunSummary(result orchestration.RunResult, mem metrics.MemorySnapshot, out io.Writer) {
	fmt.Fprintf(out, "\n--- Run Summary ---\n")
	fmt.Fprintf(out, "Run:       %s\n", result.RunID)
	fmt.Fprintf(out, "Elapsed:   %s%s%s\n", ui.ColorYellow(), format.FormatExecutionDuration(result.Elapsed), ui.ColorReset())
	switch {
	case result.Err != nil:
		fmt.Fprintf(out, "Status:    %sfailed to %s%s\n", ui.ColorRed(), result.Step, ui.ColorReset())
	case result.Outcome == nil && result.Info != nil:
		fmt.Fprintf(out, "Status:    assessment on record is %s\n", result.Info.State)
	case result.Outcome == nil:
		fmt.Fprintf(out, "Status:    started, no completion received\n")
	case result.Outcome.Result.Succeeded():
		fmt.Fprintf(out, "Status:    %scompleted%s\n", ui.ColorGreen(), ui.ColorReset())
	default:
		fmt.Fprintf(out, "Status:    %sfailed (%s)%s\n", ui.ColorRed(), result.Outcome.Result.Code, ui.ColorReset())
	}
	fmt.Fprintf(out, "Exit code: %d\n", result.ExitCode)
	fmt.Fprintf(out, "Memory:    %s heap, %s from OS, %d GC cycles\n",
		format.Bytes(mem.HeapAlloc), format.Bytes(mem.Sys), mem.NumGC)
}
