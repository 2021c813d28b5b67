package app

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/golang/mock/gomock"

	"github.com/agbru/winsatrun/internal/assessment"
	"github.com/agbru/winsatrun/internal/assessment/mocks"
	"github.com/agbru/winsatrun/internal/config"
	apperrors "github.com/agbru/winsatrun/internal/errors"
	"github.com/agbru/winsatrun/internal/logging"
)

// fastArgs runs the simulated service without delays or hardware probes.
var fastArgs = []string{"winsatrun", "--no-color", "--sim-interval=0s", "--sim-ticks=1", "--sim-no-probe", "--sim-stages=Memory,Disk"}

func runApp(t *testing.T, extra ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	args := append(append([]string(nil), fastArgs...), extra...)
	application, err := New(args, &stderr)
	if err != nil {
		t.Fatalf("New(%v) error = %v", args, err)
	}
	code := application.Run(context.Background(), &stdout)
	return code, stdout.String(), stderr.String()
}

func TestNew_Errors(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name     string
		args     []string
		wantHelp bool
	}{
		{"help", []string{"winsatrun", "--help"}, true},
		{"unknown flag", []string{"winsatrun", "--bogus"}, false},
		{"invalid threading", []string{"winsatrun", "--threading", "fibers"}, false},
		{"positional argument", []string{"winsatrun", "extra"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := New(tt.args, &bytes.Buffer{})
			if err == nil {
				t.Fatal("expected an error")
			}
			if IsHelpError(err) != tt.wantHelp {
				t.Errorf("IsHelpError(%v) = %v, want %v", err, !tt.wantHelp, tt.wantHelp)
			}
			if !tt.wantHelp && apperrors.ExitCodeFor(err) != apperrors.ExitErrorConfig {
				t.Errorf("ExitCodeFor(%v) = %d, want %d", err, apperrors.ExitCodeFor(err), apperrors.ExitErrorConfig)
			}
		})
	}
}

func TestRun_ExitCodes(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name     string
		args     []string
		wantCode int
		wantOut  []string
		wantNot  []string
	}{
		{
			name:     "success",
			wantCode: apperrors.ExitSuccess,
			wantOut:  []string{"Running formal assessment (run ", "*** Percent complete: 100%", "*** Currently assessing: Disk", "*** Assessment complete"},
		},
		{
			name:     "quiet",
			args:     []string{"--quiet"},
			wantCode: apperrors.ExitSuccess,
			wantOut:  []string{"*** Assessment complete"},
			wantNot:  []string{"Running formal assessment", "Currently assessing"},
		},
		{
			name:     "asynchronous failure still exits zero",
			args:     []string{"--sim-run-failure", "0x80070002", "--sim-run-failure-description", "disk error"},
			wantCode: apperrors.ExitSuccess,
			wantOut:  []string{"*** The assessment failed with 0x80070002 (disk error)"},
			wantNot:  []string{"Currently assessing"},
		},
		{
			name:     "start rejected",
			args:     []string{"--sim-start-failure", "E_ACCESSDENIED"},
			wantCode: apperrors.ExitErrorStartFailed,
			wantOut:  []string{"Failed to start the formal assessment"},
			wantNot:  []string{"***"},
		},
		{
			name:     "service unavailable",
			args:     []string{"--sim-acquire-failure", "0x80004005"},
			wantCode: apperrors.ExitErrorServiceUnavailable,
			wantOut:  []string{"Failed to acquire the assessment service"},
			wantNot:  []string{"Running formal assessment"},
		},
		{
			name:     "environment",
			args:     []string{"--sim-fail-init"},
			wantCode: apperrors.ExitErrorEnvironment,
			wantOut:  []string{"Failed to initialize the component environment"},
		},
		{
			name:     "verbose",
			args:     []string{"--verbose"},
			wantCode: apperrors.ExitSuccess,
			wantOut: []string{"--- Execution Configuration ---", "Stages: Memory, Disk.", "--- Run Summary ---", "Exit code: 0",
				"--- Assessment on Record ---", "Base score: 5.0"},
		},
		{
			name:     "timeout",
			args:     []string{"--timeout=50ms", "--sim-interval=10s"},
			wantCode: apperrors.ExitErrorTimeout,
			wantOut:  []string{"Failed to wait for the assessment to complete"},
			wantNot:  []string{"***", "assessment aborted"},
		},
		{
			name:     "query",
			args:     []string{"--query"},
			wantCode: apperrors.ExitSuccess,
			wantOut:  []string{"State:      valid (The rating is up to date)", "Base score: 5.0", "  Memory  5.0  Memory operations per second"},
			wantNot:  []string{"Running formal assessment", "***"},
		},
		{
			name:     "query without scores",
			args:     []string{"--query", "--sim-state=invalid"},
			wantCode: apperrors.ExitSuccess,
			wantOut:  []string{"State:      invalid", "No scores are available."},
		},
		{
			name:     "query failure",
			args:     []string{"--query", "--sim-query-failure=E_ACCESSDENIED"},
			wantCode: apperrors.ExitErrorServiceUnavailable,
			wantOut:  []string{"Failed to query the assessment on record"},
			wantNot:  []string{"--- Assessment on Record ---"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			code, out, _ := runApp(t, tt.args...)
			if code != tt.wantCode {
				t.Errorf("exit code = %d, want %d\noutput:\n%s", code, tt.wantCode, out)
			}
			for _, want := range tt.wantOut {
				if !strings.Contains(out, want) {
					t.Errorf("output missing %q:\n%s", want, out)
				}
			}
			for _, not := range tt.wantNot {
				if strings.Contains(out, not) {
					t.Errorf("output should not contain %q:\n%s", not, out)
				}
			}
		})
	}
}

func TestRun_ProgressOrder(t *testing.T) {
	t.Parallel()
	code, out, _ := runApp(t, "--sim-ticks=2", "--sim-stages=Memory")
	if code != apperrors.ExitSuccess {
		t.Fatalf("exit code = %d", code)
	}
	var got []string
	for _, line := range strings.Split(strings.TrimSpace(out), "\n") {
		if strings.HasPrefix(line, "***") {
			got = append(got, line)
		}
	}
	want := []string{
		"*** Percent complete: 50%",
		"*** Currently assessing: Memory",
		"*** Percent complete: 100%",
		"*** Currently assessing: Memory",
		"*** Assessment complete",
	}
	if strings.Join(got, "\n") != strings.Join(want, "\n") {
		t.Errorf("event lines =\n%s\nwant\n%s", strings.Join(got, "\n"), strings.Join(want, "\n"))
	}
}

func TestRun_TimeoutIsTheLastLine(t *testing.T) {
	t.Parallel()
	code, out, _ := runApp(t, "--timeout=50ms", "--sim-interval=10s")
	if code != apperrors.ExitErrorTimeout {
		t.Fatalf("exit code = %d, want %d", code, apperrors.ExitErrorTimeout)
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	last := lines[len(lines)-1]
	if !strings.HasPrefix(last, "Failed to wait for the assessment to complete") {
		t.Errorf("last line = %q, want the wait failure\n%s", last, out)
	}
}

func TestRun_WritesReport(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "reports", "run.json")
	code, out, _ := runApp(t, "--output", path)
	if code != apperrors.ExitSuccess {
		t.Fatalf("exit code = %d", code)
	}
	if !strings.Contains(out, "Report saved to: "+path) {
		t.Errorf("output missing report notice:\n%s", out)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	var report struct {
		ExitCode int `json:"exit_code"`
		Outcome  struct {
			Succeeded   bool   `json:"succeeded"`
			Description string `json:"description"`
		} `json:"outcome"`
		Progress   []json.RawMessage `json:"progress"`
		Assessment struct {
			State     string `json:"state"`
			Subscores []struct {
				Title string `json:"title"`
				Score string `json:"score"`
			} `json:"subscores"`
		} `json:"assessment"`
	}
	if err := json.Unmarshal(data, &report); err != nil {
		t.Fatalf("report is not valid JSON: %v", err)
	}
	if report.ExitCode != 0 || !report.Outcome.Succeeded || report.Outcome.Description != "Assessment complete" {
		t.Errorf("unexpected report: %s", data)
	}
	if len(report.Progress) != 2 {
		t.Errorf("progress entries = %d, want 2", len(report.Progress))
	}
	if a := report.Assessment; a.State != "valid" || len(a.Subscores) != 2 || a.Subscores[1].Score != "5.0" {
		t.Errorf("assessment = %+v", a)
	}
}

func TestRun_MetricsServer(t *testing.T) {
	t.Parallel()
	code, out, _ := runApp(t, "--metrics-addr", "127.0.0.1:0")
	if code != apperrors.ExitSuccess {
		t.Errorf("exit code = %d\n%s", code, out)
	}

	code, _, stderr := runApp(t, "--metrics-addr", "256.0.0.1:bad")
	if code != apperrors.ExitErrorConfig {
		t.Errorf("exit code with a bad address = %d, want %d", code, apperrors.ExitErrorConfig)
	}
	if !strings.Contains(stderr, "metrics server") {
		t.Errorf("stderr missing listen error: %s", stderr)
	}
}

func TestRun_CustomEnvironment(t *testing.T) {
	t.Parallel()
	ctrl := gomock.NewController(t)
	env := mocks.NewMockEnvironment(ctrl)
	handle := mocks.NewMockHandle(ctrl)

	gomock.InOrder(
		env.EXPECT().Initialize(assessment.ThreadingMulti).Return(nil),
		env.EXPECT().AcquireHandle(gomock.Any()).Return(handle, nil),
		handle.EXPECT().InitiateFormalAssessment(gomock.Any(), gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, sink assessment.Unknown, _ *assessment.Options) error {
				events, err := assessment.QueryEvents(sink)
				if err != nil {
					return err
				}
				go func() {
					defer events.ReleaseReference()
					_ = events.OnProgress(assessment.ProgressEvent{CurrentUnit: 25, TotalUnits: 100, Label: "Stage A"})
					_ = events.OnCompletion(assessment.CompletionEvent{Description: "done"})
				}()
				return nil
			}),
		handle.EXPECT().Release(),
		env.EXPECT().Teardown(),
	)

	var stdout bytes.Buffer
	application, err := New([]string{"winsatrun", "--no-color", "--threading", "multi"}, &bytes.Buffer{},
		WithEnvironment(func(config.AppConfig, logging.Logger) (assessment.Environment, error) { return env, nil }))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if code := application.Run(context.Background(), &stdout); code != apperrors.ExitSuccess {
		t.Errorf("exit code = %d", code)
	}
	out := stdout.String()
	for _, want := range []string{"*** Percent complete: 25%", "*** Currently assessing: Stage A", "*** done"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestRun_EnvironmentConstructionError(t *testing.T) {
	t.Parallel()
	var stderr bytes.Buffer
	application, err := New([]string{"winsatrun", "--no-color"}, &stderr,
		WithEnvironment(func(config.AppConfig, logging.Logger) (assessment.Environment, error) {
			return nil, apperrors.NewConfigError("bad service")
		}))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if code := application.Run(context.Background(), &bytes.Buffer{}); code != apperrors.ExitErrorConfig {
		t.Errorf("exit code = %d, want %d", code, apperrors.ExitErrorConfig)
	}
	if !strings.Contains(stderr.String(), "bad service") {
		t.Errorf("stderr = %q", stderr.String())
	}
}

func TestRun_CanceledContext(t *testing.T) {
	t.Parallel()
	var stdout bytes.Buffer
	args := []string{"winsatrun", "--no-color", "--sim-interval=1h", "--sim-no-probe"}
	application, err := New(args, &bytes.Buffer{})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if code := application.Run(ctx, &stdout); code != apperrors.ExitErrorCanceled {
		t.Errorf("exit code = %d, want %d\n%s", code, apperrors.ExitErrorCanceled, stdout.String())
	}
}

func TestVersion(t *testing.T) {
	t.Parallel()
	tests := []struct {
		args []string
		want bool
	}{
		{[]string{"--version"}, true},
		{[]string{"-q", "-V"}, true},
		{[]string{"-version"}, true},
		{[]string{"--", "--version"}, false},
		{[]string{"--quiet"}, false},
		{nil, false},
	}
	for _, tt := range tests {
		if got := HasVersionFlag(tt.args); got != tt.want {
			t.Errorf("HasVersionFlag(%v) = %v, want %v", tt.args, got, tt.want)
		}
	}

	var buf bytes.Buffer
	PrintVersion(&buf)
	if !strings.HasPrefix(buf.String(), "winsatrun "+Version) {
		t.Errorf("PrintVersion() = %q", buf.String())
	}
}

func TestIsHelpError(t *testing.T) {
	t.Parallel()
	if IsHelpError(errors.New("boom")) {
		t.Error("a plain error is not a help error")
	}
}
