// Package config parses the winsatrun command line.
//
// Values are resolved with the priority
// flags > WINSAT_* environment variables > YAML file (--config) > defaults.
package config

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/agbru/winsatrun/internal/assessment"
	apperrors "github.com/agbru/winsatrun/internal/errors"
	"github.com/agbru/winsatrun/internal/logging"
)

// EnvPrefix prefixes every environment variable read by ParseConfig.
const EnvPrefix = "WINSAT_"

// Defaults.
const (
	DefaultTimeout       = 3 * time.Minute
	DefaultThreading     = "apartment"
	DefaultLogLevel      = "warn"
	DefaultLogFormat     = "console"
	DefaultMaxLiveSinks  = 1
	DefaultTicksPerStage = 4
	DefaultTickInterval  = 250 * time.Millisecond
	DefaultStoredState   = "valid"
)

// DefaultStages is the stage plan of the simulated service.
var DefaultStages = []string{"Memory", "Processor", "Graphics", "Gaming graphics", "Disk"}

// SimulationConfig configures the simulated assessment service. Failure
// codes are written as names (E_FAIL), hex (0x80004005) or decimal; empty
// means no failure.
type SimulationConfig struct {
	Stages                []string      `yaml:"stages"`
	TicksPerStage         int           `yaml:"ticks_per_stage"`
	TickInterval          time.Duration `yaml:"tick_interval"`
	UnknownTotal          bool          `yaml:"unknown_total"`
	NoProbe               bool          `yaml:"no_probe"`
	DiskPath              string        `yaml:"disk_path"`
	FailInit              bool          `yaml:"fail_init"`
	AcquireFailure        string        `yaml:"acquire_failure"`
	StartFailure          string        `yaml:"start_failure"`
	RunFailure            string        `yaml:"run_failure"`
	RunFailureDescription string        `yaml:"run_failure_description"`
	FailAtStage           int           `yaml:"fail_at_stage"`
	ExtraEvents           bool          `yaml:"extra_events"`
	// State is the assessment on record before any run: valid, incoherent,
	// unavailable or invalid.
	State        string `yaml:"state"`
	QueryFailure string `yaml:"query_failure"`
}

// StoredState parses State.
func (s SimulationConfig) StoredState() (assessment.State, error) {
	st, err := assessment.ParseState(s.State)
	if err != nil {
		return assessment.StateUnknown, apperrors.NewConfigError("invalid value for --sim-state: %v", err)
	}
	return st, nil
}

// SimulationCodes are the parsed failure codes of a SimulationConfig.
type SimulationCodes struct {
	Acquire apperrors.Code
	Start   apperrors.Code
	Run     apperrors.Code
	Query   apperrors.Code
}

// Codes parses the configured failure codes.
func (s SimulationConfig) Codes() (SimulationCodes, error) {
	var c SimulationCodes
	for _, f := range []struct {
		name string
		raw  string
		dst  *apperrors.Code
	}{
		{"sim-acquire-failure", s.AcquireFailure, &c.Acquire},
		{"sim-start-failure", s.StartFailure, &c.Start},
		{"sim-run-failure", s.RunFailure, &c.Run},
		{"sim-query-failure", s.QueryFailure, &c.Query},
	} {
		if strings.TrimSpace(f.raw) == "" {
			continue
		}
		code, err := apperrors.ParseCode(f.raw)
		if err != nil {
			return SimulationCodes{}, apperrors.NewConfigError("invalid value for --%s: %v", f.name, err)
		}
		*f.dst = code
	}
	return c, nil
}

// AppConfig aggregates the application's configuration parameters.
type AppConfig struct {
	// Timeout bounds the wait for the completion event. Zero disables it.
	Timeout time.Duration `yaml:"timeout"`
	// Quiet prints only the completion and diagnostic lines.
	Quiet bool `yaml:"quiet"`
	// Verbose prints the execution banner and run summary.
	Verbose bool `yaml:"verbose"`
	// TUI runs the interactive dashboard.
	TUI bool `yaml:"tui"`
	// Query reports the assessment on record instead of running one.
	Query bool `yaml:"query"`
	// NoColor disables colored output.
	NoColor bool `yaml:"no_color"`
	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level"`
	// LogFormat is console or json.
	LogFormat string `yaml:"log_format"`
	// MetricsAddr, when set, serves /metrics and /healthz on this address.
	MetricsAddr string `yaml:"metrics_addr"`
	// ThreadingMode is apartment or multi.
	ThreadingMode string `yaml:"threading_mode"`
	// MaxLiveSinks bounds the number of live notification sinks.
	MaxLiveSinks int64 `yaml:"max_live_sinks"`
	// OutputFile, when set, receives a JSON run report.
	OutputFile string `yaml:"output"`
	// ConfigFile is the YAML file the configuration was loaded from.
	ConfigFile string `yaml:"-"`

	Simulation SimulationConfig `yaml:"simulation"`
}

// Default returns the built-in configuration.
func Default() AppConfig {
	return AppConfig{
		Timeout:       DefaultTimeout,
		LogLevel:      DefaultLogLevel,
		LogFormat:     DefaultLogFormat,
		ThreadingMode: DefaultThreading,
		MaxLiveSinks:  DefaultMaxLiveSinks,
		Simulation: SimulationConfig{
			Stages:        append([]string(nil), DefaultStages...),
			TicksPerStage: DefaultTicksPerStage,
			TickInterval:  DefaultTickInterval,
			FailAtStage:   -1,
			State:         DefaultStoredState,
		},
	}
}

// Threading returns the parsed threading mode.
func (c AppConfig) Threading() (assessment.ThreadingMode, error) {
	return assessment.ParseThreadingMode(strings.ToLower(c.ThreadingMode))
}

// Validate checks the configuration for consistency.
func (c AppConfig) Validate() error {
	if c.Timeout < 0 {
		return apperrors.NewConfigError("--timeout must not be negative (got %s)", c.Timeout)
	}
	if c.Quiet && c.Verbose {
		return apperrors.NewConfigError("--quiet and --verbose are mutually exclusive")
	}
	if c.Quiet && c.TUI {
		return apperrors.NewConfigError("--quiet and --tui are mutually exclusive")
	}
	if c.Query && c.TUI {
		return apperrors.NewConfigError("--query and --tui are mutually exclusive")
	}
	if _, err := c.Threading(); err != nil {
		return err
	}
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		return apperrors.NewConfigError("invalid value for --log-level: %v", err)
	}
	switch c.LogFormat {
	case "console", "json":
	default:
		return apperrors.NewConfigError("invalid value %q for --log-format (want console or json)", c.LogFormat)
	}
	if c.MaxLiveSinks < 0 {
		return apperrors.NewConfigError("--max-live-sinks must not be negative (got %d)", c.MaxLiveSinks)
	}
	sim := c.Simulation
	if len(sim.Stages) == 0 {
		return apperrors.NewConfigError("--sim-stages must name at least one stage")
	}
	if sim.TicksPerStage < 1 {
		return apperrors.NewConfigError("--sim-ticks must be at least 1 (got %d)", sim.TicksPerStage)
	}
	if sim.TickInterval < 0 {
		return apperrors.NewConfigError("--sim-interval must not be negative (got %s)", sim.TickInterval)
	}
	if _, err := sim.Codes(); err != nil {
		return err
	}
	if _, err := sim.StoredState(); err != nil {
		return err
	}
	return nil
}

// stageList is a flag.Value holding a comma-separated stage plan.
type stageList struct{ dst *[]string }

func (s stageList) String() string {
	if s.dst == nil {
		return ""
	}
	return strings.Join(*s.dst, ",")
}

func (s stageList) Set(v string) error {
	*s.dst = splitStages(v)
	return nil
}

func splitStages(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// newFlagSet binds every flag to cfg, using its current values as defaults.
func newFlagSet(programName string, cfg *AppConfig) *flag.FlagSet {
	fs := flag.NewFlagSet(programName, flag.ContinueOnError)
	fs.StringVar(&cfg.ConfigFile, "config", cfg.ConfigFile, "YAML configuration file.")
	fs.DurationVar(&cfg.Timeout, "timeout", cfg.Timeout, "Maximum wait for the completion event (0 disables it).")
	fs.BoolVar(&cfg.Quiet, "quiet", cfg.Quiet, "Print only the outcome and diagnostics.")
	fs.BoolVar(&cfg.Quiet, "q", cfg.Quiet, "Shorthand for --quiet.")
	fs.BoolVar(&cfg.Verbose, "verbose", cfg.Verbose, "Print the execution banner and a run summary.")
	fs.BoolVar(&cfg.Verbose, "v", cfg.Verbose, "Shorthand for --verbose.")
	fs.BoolVar(&cfg.TUI, "tui", cfg.TUI, "Show the interactive dashboard.")
	fs.BoolVar(&cfg.Query, "query", cfg.Query, "Report the assessment on record instead of running a new one.")
	fs.BoolVar(&cfg.NoColor, "no-color", cfg.NoColor, "Disable colored output.")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Log level: debug, info, warn or error.")
	fs.StringVar(&cfg.LogFormat, "log-format", cfg.LogFormat, "Log format: console or json.")
	fs.StringVar(&cfg.MetricsAddr, "metrics-addr", cfg.MetricsAddr, "Serve Prometheus metrics on this address (e.g. :9090).")
	fs.StringVar(&cfg.ThreadingMode, "threading", cfg.ThreadingMode, "Component threading mode: apartment or multi.")
	fs.Int64Var(&cfg.MaxLiveSinks, "max-live-sinks", cfg.MaxLiveSinks, "Maximum number of live notification sinks (0 = unlimited).")
	fs.StringVar(&cfg.OutputFile, "output", cfg.OutputFile, "Write a JSON run report to this file.")
	fs.StringVar(&cfg.OutputFile, "o", cfg.OutputFile, "Shorthand for --output.")

	sim := &cfg.Simulation
	fs.Var(stageList{&sim.Stages}, "sim-stages", "Comma-separated stage plan of the simulated service.")
	fs.IntVar(&sim.TicksPerStage, "sim-ticks", sim.TicksPerStage, "Progress events per simulated stage.")
	fs.DurationVar(&sim.TickInterval, "sim-interval", sim.TickInterval, "Delay before each simulated progress event.")
	fs.BoolVar(&sim.UnknownTotal, "sim-unknown-total", sim.UnknownTotal, "Report progress without a total.")
	fs.BoolVar(&sim.NoProbe, "sim-no-probe", sim.NoProbe, "Do not name stages after the probed hardware.")
	fs.StringVar(&sim.DiskPath, "sim-disk-path", sim.DiskPath, "Volume probed for the Disk stage.")
	fs.BoolVar(&sim.FailInit, "sim-fail-init", sim.FailInit, "Fail environment initialization.")
	fs.StringVar(&sim.AcquireFailure, "sim-acquire-failure", sim.AcquireFailure, "Fail service acquisition with this code.")
	fs.StringVar(&sim.StartFailure, "sim-start-failure", sim.StartFailure, "Reject the start request with this code.")
	fs.StringVar(&sim.RunFailure, "sim-run-failure", sim.RunFailure, "Complete the run with this failure code.")
	fs.StringVar(&sim.RunFailureDescription, "sim-run-failure-description", sim.RunFailureDescription, "Description of the run failure.")
	fs.IntVar(&sim.FailAtStage, "sim-fail-at-stage", sim.FailAtStage, "Zero-based stage after which the run fails (-1: before any progress).")
	fs.BoolVar(&sim.ExtraEvents, "sim-extra-events", sim.ExtraEvents, "Deliver stray events after completion.")
	fs.StringVar(&sim.State, "sim-state", sim.State, "Assessment on record before any run: valid, incoherent, unavailable or invalid.")
	fs.StringVar(&sim.QueryFailure, "sim-query-failure", sim.QueryFailure, "Fail the assessment query with this code.")
	return fs
}

// ParseConfig resolves the configuration from defaults, the YAML file,
// environment variables and args, in increasing priority.
//
// Parameters:
//   - programName: The name of the program (used in usage output).
//   - args: The command-line arguments, without the program name.
//   - errorWriter: Where usage and parse errors are written.
//
// Returns:
//   - AppConfig: The resolved configuration.
//   - error: flag.ErrHelp for --help, a ConfigError for invalid values.
func ParseConfig(programName string, args []string, errorWriter io.Writer) (AppConfig, error) {
	cfg := Default()

	path := configPath(programName, args)
	if path != "" {
		if err := LoadFile(path, &cfg); err != nil {
			return AppConfig{}, err
		}
		cfg.ConfigFile = path
	}

	fs := newFlagSet(programName, &cfg)
	fs.SetOutput(errorWriter)
	fs.Usage = func() {
		fmt.Fprintf(errorWriter, "Usage: %s [flags]\n\nRuns a formal system assessment and reports its progress.\n\nFlags:\n", programName)
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return AppConfig{}, err
		}
		return AppConfig{}, apperrors.NewConfigError("%v", err)
	}
	if fs.NArg() > 0 {
		return AppConfig{}, apperrors.NewConfigError("unexpected arguments: %s", strings.Join(fs.Args(), " "))
	}

	applyEnvOverrides(&cfg, fs)

	if err := cfg.Validate(); err != nil {
		return AppConfig{}, err
	}
	return cfg, nil
}

// configPath finds --config in args, falling back to WINSAT_CONFIG.
func configPath(programName string, args []string) string {
	probe := Default()
	fs := newFlagSet(programName, &probe)
	fs.SetOutput(io.Discard)
	fs.Usage = func() {}
	if err := fs.Parse(args); err == nil && probe.ConfigFile != "" {
		return probe.ConfigFile
	}
	return os.Getenv(EnvPrefix + "CONFIG")
}
