// # Naming Conventions
//
// Functions in this package follow consistent naming patterns based on their behavior:
//
//   - Present* methods implement the orchestrator's presenter port.
//   - Display* and Print* functions write formatted output to an [io.Writer].
//   - Format* functions return a formatted string without performing I/O.
//   - Write* functions write data to files on the filesystem.

package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/agbru/winsatrun/internal/assessment"
	apperrors "github.com/agbru/winsatrun/internal/errors"
	"github.com/agbru/winsatrun/internal/metrics"
	"github.com/agbru/winsatrun/internal/orchestration"
	"github.com/agbru/winsatrun/internal/sink"
)

// ProgressEntry is one progress event in a run report.
type ProgressEntry struct {
	At      time.Time `json:"at"`
	Label   string    `json:"label"`
	Current uint32    `json:"current"`
	Total   uint32    `json:"total"`
	Percent *uint64   `json:"percent,omitempty"`
}

// OutcomeReport is the completion event in a run report.
type OutcomeReport struct {
	Succeeded   bool   `json:"succeeded"`
	Code        string `json:"code"`
	CodeName    string `json:"code_name,omitempty"`
	Description string `json:"description"`
}

// RunReport is the JSON document written by --output.
type RunReport struct {
	RunID      uuid.UUID              `json:"run_id"`
	Started    time.Time              `json:"started"`
	Finished   time.Time              `json:"finished"`
	Elapsed    string                 `json:"elapsed"`
	ExitCode   int                    `json:"exit_code"`
	Step       string                 `json:"failed_step,omitempty"`
	Error      string                 `json:"error,omitempty"`
	Outcome    *OutcomeReport         `json:"outcome,omitempty"`
	Progress   []ProgressEntry        `json:"progress"`
	Assessment *AssessmentReport      `json:"assessment,omitempty"`
	Memory     metrics.MemorySnapshot `json:"memory"`
}

// ReportRecorder is a presenter that records the events of a run for the
// JSON report. It prints nothing.
type ReportRecorder struct {
	now func() time.Time

	mu       sync.Mutex
	started  time.Time
	progress []ProgressEntry
	outcome  *OutcomeReport
}

var _ orchestration.Presenter = (*ReportRecorder)(nil)

// NewReportRecorder creates a recorder using the wall clock.
func NewReportRecorder() *ReportRecorder {
	return &ReportRecorder{now: time.Now}
}

func (r *ReportRecorder) PresentStart(uuid.UUID) {
	r.mu.Lock()
	r.started = r.now()
	r.mu.Unlock()
}

func (r *ReportRecorder) PresentProgress(v sink.ProgressView) {
	entry := ProgressEntry{Label: v.Label, Current: v.Current, Total: v.Total}
	if v.HasPercent {
		pct := v.Percent
		entry.Percent = &pct
	}
	r.mu.Lock()
	entry.At = r.now()
	r.progress = append(r.progress, entry)
	r.mu.Unlock()
}

func (r *ReportRecorder) PresentCompletion(ev assessment.CompletionEvent) {
	out := &OutcomeReport{
		Succeeded:   ev.Result.Succeeded(),
		Code:        ev.Result.Code.String(),
		CodeName:    ev.Result.Code.Name(),
		Description: ev.Description,
	}
	if !out.Succeeded {
		out.Description = ev.Result.Description
	}
	r.mu.Lock()
	r.outcome = out
	r.mu.Unlock()
}

func (r *ReportRecorder) PresentError(string, error) {}

// Report assembles the report of a finished run.
func (r *ReportRecorder) Report(result orchestration.RunResult, mem metrics.MemorySnapshot) RunReport {
	r.mu.Lock()
	defer r.mu.Unlock()

	finished := r.now()
	started := r.started
	if started.IsZero() {
		started = finished.Add(-result.Elapsed)
	}
	report := RunReport{
		RunID:    result.RunID,
		Started:  started,
		Finished: finished,
		Elapsed:  result.Elapsed.String(),
		ExitCode: result.ExitCode,
		Step:     result.Step,
		Outcome:  r.outcome,
		Progress: append([]ProgressEntry{}, r.progress...),
		Memory:   mem,
	}
	if result.Info != nil {
		report.Assessment = NewAssessmentReport(*result.Info)
	}
	if result.Err != nil {
		report.Error = result.Err.Error()
		if code, ok := apperrors.CodeOf(result.Err); ok && code.Name() != "" {
			report.Error = fmt.Sprintf("%s [%s]", report.Error, code.Name())
		}
	}
	return report
}

// WriteReportToFile writes report as indented JSON to path, creating the
// parent directory if needed.
func WriteReportToFile(report RunReport, path string) error {
	if path == "" {
		return nil
	}

	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}

	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}
	return nil
}
