package config

import (
	"bytes"
	"errors"
	"flag"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/agbru/winsatrun/internal/assessment"
	apperrors "github.com/agbru/winsatrun/internal/errors"
)

func TestParseConfig_Defaults(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	cfg, err := ParseConfig("winsatrun", nil, &buf)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Timeout != DefaultTimeout {
		t.Errorf("Timeout = %s, want %s", cfg.Timeout, DefaultTimeout)
	}
	if cfg.ThreadingMode != "apartment" {
		t.Errorf("ThreadingMode = %q, want apartment", cfg.ThreadingMode)
	}
	if cfg.MaxLiveSinks != DefaultMaxLiveSinks {
		t.Errorf("MaxLiveSinks = %d, want %d", cfg.MaxLiveSinks, DefaultMaxLiveSinks)
	}
	if !reflect.DeepEqual(cfg.Simulation.Stages, DefaultStages) {
		t.Errorf("Stages = %v, want %v", cfg.Simulation.Stages, DefaultStages)
	}
	if cfg.Simulation.FailAtStage != -1 {
		t.Errorf("FailAtStage = %d, want -1", cfg.Simulation.FailAtStage)
	}
	if st, err := cfg.Simulation.StoredState(); err != nil || st != assessment.StateValid || cfg.Query {
		t.Errorf("StoredState() = %v, %v; Query = %v", st, err, cfg.Query)
	}
	mode, err := cfg.Threading()
	if err != nil || mode != assessment.ThreadingApartment {
		t.Errorf("Threading() = %v, %v", mode, err)
	}
}

func TestParseConfig_Flags(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	cfg, err := ParseConfig("winsatrun", []string{
		"--timeout", "10s",
		"-q",
		"--threading", "multi",
		"--max-live-sinks", "0",
		"-o", "report.json",
		"--sim-stages", "Memory, Disk,,",
		"--sim-ticks", "2",
		"--sim-interval", "1ms",
		"--sim-run-failure", "0x80070002",
		"--sim-run-failure-description", "disk error",
		"--query",
		"--sim-state", "Incoherent",
		"--sim-query-failure", "E_FAIL",
	}, &buf)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Timeout != 10*time.Second || !cfg.Quiet || cfg.MaxLiveSinks != 0 || cfg.OutputFile != "report.json" {
		t.Errorf("unexpected config: %+v", cfg)
	}
	if got := cfg.Simulation.Stages; !reflect.DeepEqual(got, []string{"Memory", "Disk"}) {
		t.Errorf("Stages = %v", got)
	}
	codes, err := cfg.Simulation.Codes()
	if err != nil {
		t.Fatalf("Codes() error: %v", err)
	}
	if codes.Run != apperrors.EFileNotFound || codes.Start != 0 || codes.Acquire != 0 || codes.Query != apperrors.EFail {
		t.Errorf("unexpected codes: %+v", codes)
	}
	if st, _ := cfg.Simulation.StoredState(); !cfg.Query || st != assessment.StateIncoherentWithHardware {
		t.Errorf("Query = %v, StoredState() = %v", cfg.Query, st)
	}
}

func TestParseConfig_Errors(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		args []string
	}{
		{"negative timeout", []string{"--timeout", "-1s"}},
		{"quiet and verbose", []string{"-q", "-v"}},
		{"quiet and tui", []string{"--quiet", "--tui"}},
		{"bad threading", []string{"--threading", "fibers"}},
		{"bad log level", []string{"--log-level", "loud"}},
		{"bad log format", []string{"--log-format", "xml"}},
		{"negative sinks", []string{"--max-live-sinks", "-2"}},
		{"no stages", []string{"--sim-stages", " , "}},
		{"zero ticks", []string{"--sim-ticks", "0"}},
		{"bad code", []string{"--sim-start-failure", "disk"}},
		{"bad query code", []string{"--sim-query-failure", "0xZZ"}},
		{"bad stored state", []string{"--sim-state", "stale"}},
		{"query and tui", []string{"--query", "--tui"}},
		{"unknown flag", []string{"--frobnicate"}},
		{"positional", []string{"extra"}},
		{"missing file", []string{"--config", "/nonexistent/winsatrun.yaml"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			var buf bytes.Buffer
			_, err := ParseConfig("winsatrun", tt.args, &buf)
			var cfgErr apperrors.ConfigError
			if !errors.As(err, &cfgErr) {
				t.Fatalf("expected ConfigError, got %v", err)
			}
			if apperrors.ExitCodeFor(err) != apperrors.ExitErrorConfig {
				t.Errorf("exit code = %d", apperrors.ExitCodeFor(err))
			}
		})
	}
}

func TestParseConfig_Help(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	_, err := ParseConfig("winsatrun", []string{"--help"}, &buf)
	if !errors.Is(err, flag.ErrHelp) {
		t.Fatalf("expected flag.ErrHelp, got %v", err)
	}
	if !strings.Contains(buf.String(), "Usage: winsatrun") || !strings.Contains(buf.String(), "-sim-fail-init") {
		t.Errorf("usage output missing expected text:\n%s", buf.String())
	}
}

func TestParseConfig_EnvOverrides(t *testing.T) {
	t.Setenv("WINSAT_TIMEOUT", "42s")
	t.Setenv("WINSAT_QUIET", "yes")
	t.Setenv("WINSAT_THREADING", "mta")
	t.Setenv("WINSAT_SIM_TICKS", "7")
	t.Setenv("WINSAT_SIM_STAGES", "A,B,C")
	t.Setenv("WINSAT_SIM_FAIL_INIT", "1")
	t.Setenv("WINSAT_MAX_LIVE_SINKS", "not-a-number")

	var buf bytes.Buffer
	cfg, err := ParseConfig("winsatrun", []string{"--sim-ticks", "3"}, &buf)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Timeout != 42*time.Second {
		t.Errorf("Timeout = %s, want 42s", cfg.Timeout)
	}
	if !cfg.Quiet || !cfg.Simulation.FailInit {
		t.Error("boolean env overrides not applied")
	}
	if mode, _ := cfg.Threading(); mode != assessment.ThreadingMulti {
		t.Errorf("Threading = %v, want multi", mode)
	}
	if cfg.Simulation.TicksPerStage != 3 {
		t.Errorf("flag should win over env: TicksPerStage = %d", cfg.Simulation.TicksPerStage)
	}
	if !reflect.DeepEqual(cfg.Simulation.Stages, []string{"A", "B", "C"}) {
		t.Errorf("Stages = %v", cfg.Simulation.Stages)
	}
	if cfg.MaxLiveSinks != DefaultMaxLiveSinks {
		t.Errorf("malformed env value should be ignored, got %d", cfg.MaxLiveSinks)
	}
}

func TestParseConfig_FilePrecedence(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "winsatrun.yaml")
	content := `timeout: 90s
verbose: true
log_level: info
simulation:
  stages: [Memory, Processor]
  ticks_per_stage: 5
  tick_interval: 10ms
  run_failure: E_FAIL
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("WINSAT_SIM_TICKS", "6")

	var buf bytes.Buffer
	cfg, err := ParseConfig("winsatrun", []string{"--config", path, "--log-level", "debug"}, &buf)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.ConfigFile != path {
		t.Errorf("ConfigFile = %q", cfg.ConfigFile)
	}
	if cfg.Timeout != 90*time.Second || !cfg.Verbose {
		t.Errorf("file values not applied: %+v", cfg)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("flag should win over file: LogLevel = %q", cfg.LogLevel)
	}
	if cfg.Simulation.TicksPerStage != 6 {
		t.Errorf("env should win over file: TicksPerStage = %d", cfg.Simulation.TicksPerStage)
	}
	if cfg.Simulation.TickInterval != 10*time.Millisecond {
		t.Errorf("TickInterval = %s", cfg.Simulation.TickInterval)
	}
	if !reflect.DeepEqual(cfg.Simulation.Stages, []string{"Memory", "Processor"}) {
		t.Errorf("Stages = %v", cfg.Simulation.Stages)
	}
}

func TestParseConfig_FileFromEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "c.yaml")
	if err := os.WriteFile(path, []byte("max_live_sinks: 4\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("WINSAT_CONFIG", path)

	var buf bytes.Buffer
	cfg, err := ParseConfig("winsatrun", nil, &buf)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.MaxLiveSinks != 4 {
		t.Errorf("MaxLiveSinks = %d, want 4", cfg.MaxLiveSinks)
	}
}

func TestLoadFile_Errors(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		content string
		wantErr bool
	}{
		{"empty file", "", false},
		{"unknown key", "colour: red\n", true},
		{"bad duration", "timeout: soon\n", true},
		{"not a mapping", "- a\n- b\n", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := Default()
			err := decodeYAML([]byte(tt.content), &cfg, "test.yaml")
			if (err != nil) != tt.wantErr {
				t.Fatalf("decodeYAML() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				var cfgErr apperrors.ConfigError
				if !errors.As(err, &cfgErr) {
					t.Errorf("expected ConfigError, got %T", err)
				}
			}
		})
	}
}

func TestParseBoolEnv(t *testing.T) {
	t.Parallel()
	tests := []struct {
		in   string
		def  bool
		want bool
	}{
		{"true", false, true},
		{"YES", false, true},
		{"1", false, true},
		{"no", true, false},
		{"0", true, false},
		{"maybe", true, true},
		{"maybe", false, false},
	}
	for _, tt := range tests {
		if got := parseBoolEnv(tt.in, tt.def); got != tt.want {
			t.Errorf("parseBoolEnv(%q, %v) = %v, want %v", tt.in, tt.def, got, tt.want)
		}
	}
}
