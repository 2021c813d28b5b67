// This file contains environment variable utilities for configuration override.

package config

import (
	"flag"
	"os"
	"strconv"
	"strings"
	"time"
)

// isFlagSet checks if a flag was explicitly set on the command line.
// This is used to determine whether to apply environment variable overrides.
func isFlagSet(fs *flag.FlagSet, name string) bool {
	found := false
	fs.Visit(func(f *flag.Flag) {
		if f.Name == name {
			found = true
		}
	})
	return found
}

// isFlagSetAny checks if any of the specified flags were explicitly set.
// This is useful for aliased flags where either the short or long form may be used.
func isFlagSetAny(fs *flag.FlagSet, names ...string) bool {
	for _, name := range names {
		if isFlagSet(fs, name) {
			return true
		}
	}
	return false
}

// envOverride declares a single environment variable override.
// Each entry maps an env key (without the WINSAT_ prefix) to the CLI flag
// name(s) it corresponds to and a function that applies the env value.
type envOverride struct {
	envKey string
	flags  []string
	apply  func(*AppConfig, string)
}

// envOverrides is the declarative table of all environment variable overrides.
// Malformed numeric and duration values are ignored.
var envOverrides = []envOverride{
	// Duration overrides
	{"TIMEOUT", []string{"timeout"}, func(c *AppConfig, v string) {
		c.Timeout = parseDurationEnv(v, c.Timeout)
	}},
	{"SIM_INTERVAL", []string{"sim-interval"}, func(c *AppConfig, v string) {
		c.Simulation.TickInterval = parseDurationEnv(v, c.Simulation.TickInterval)
	}},

	// Numeric overrides
	{"MAX_LIVE_SINKS", []string{"max-live-sinks"}, func(c *AppConfig, v string) {
		if parsed, err := strconv.ParseInt(v, 10, 64); err == nil {
			c.MaxLiveSinks = parsed
		}
	}},
	{"SIM_TICKS", []string{"sim-ticks"}, func(c *AppConfig, v string) {
		if parsed, err := strconv.Atoi(v); err == nil {
			c.Simulation.TicksPerStage = parsed
		}
	}},
	{"SIM_FAIL_AT_STAGE", []string{"sim-fail-at-stage"}, func(c *AppConfig, v string) {
		if parsed, err := strconv.Atoi(v); err == nil {
			c.Simulation.FailAtStage = parsed
		}
	}},

	// String overrides
	{"LOG_LEVEL", []string{"log-level"}, func(c *AppConfig, v string) {
		c.LogLevel = strings.ToLower(v)
	}},
	{"LOG_FORMAT", []string{"log-format"}, func(c *AppConfig, v string) {
		c.LogFormat = strings.ToLower(v)
	}},
	{"METRICS_ADDR", []string{"metrics-addr"}, func(c *AppConfig, v string) {
		c.MetricsAddr = v
	}},
	{"THREADING", []string{"threading"}, func(c *AppConfig, v string) {
		c.ThreadingMode = v
	}},
	{"OUTPUT", []string{"output", "o"}, func(c *AppConfig, v string) {
		c.OutputFile = v
	}},
	{"SIM_STAGES", []string{"sim-stages"}, func(c *AppConfig, v string) {
		if stages := splitStages(v); len(stages) > 0 {
			c.Simulation.Stages = stages
		}
	}},
	{"SIM_DISK_PATH", []string{"sim-disk-path"}, func(c *AppConfig, v string) {
		c.Simulation.DiskPath = v
	}},
	{"SIM_ACQUIRE_FAILURE", []string{"sim-acquire-failure"}, func(c *AppConfig, v string) {
		c.Simulation.AcquireFailure = v
	}},
	{"SIM_START_FAILURE", []string{"sim-start-failure"}, func(c *AppConfig, v string) {
		c.Simulation.StartFailure = v
	}},
	{"SIM_RUN_FAILURE", []string{"sim-run-failure"}, func(c *AppConfig, v string) {
		c.Simulation.RunFailure = v
	}},
	{"SIM_STATE", []string{"sim-state"}, func(c *AppConfig, v string) {
		c.Simulation.State = v
	}},
	{"SIM_QUERY_FAILURE", []string{"sim-query-failure"}, func(c *AppConfig, v string) {
		c.Simulation.QueryFailure = v
	}},
	{"SIM_RUN_FAILURE_DESCRIPTION", []string{"sim-run-failure-description"}, func(c *AppConfig, v string) {
		c.Simulation.RunFailureDescription = v
	}},

	// Boolean overrides
	{"QUIET", []string{"quiet", "q"}, func(c *AppConfig, v string) {
		c.Quiet = parseBoolEnv(v, c.Quiet)
	}},
	{"VERBOSE", []string{"v", "verbose"}, func(c *AppConfig, v string) {
		c.Verbose = parseBoolEnv(v, c.Verbose)
	}},
	{"TUI", []string{"tui"}, func(c *AppConfig, v string) {
		c.TUI = parseBoolEnv(v, c.TUI)
	}},
	{"QUERY", []string{"query"}, func(c *AppConfig, v string) {
		c.Query = parseBoolEnv(v, c.Query)
	}},
	{"NO_COLOR", []string{"no-color"}, func(c *AppConfig, v string) {
		c.NoColor = parseBoolEnv(v, c.NoColor)
	}},
	{"SIM_UNKNOWN_TOTAL", []string{"sim-unknown-total"}, func(c *AppConfig, v string) {
		c.Simulation.UnknownTotal = parseBoolEnv(v, c.Simulation.UnknownTotal)
	}},
	{"SIM_NO_PROBE", []string{"sim-no-probe"}, func(c *AppConfig, v string) {
		c.Simulation.NoProbe = parseBoolEnv(v, c.Simulation.NoProbe)
	}},
	{"SIM_FAIL_INIT", []string{"sim-fail-init"}, func(c *AppConfig, v string) {
		c.Simulation.FailInit = parseBoolEnv(v, c.Simulation.FailInit)
	}},
	{"SIM_EXTRA_EVENTS", []string{"sim-extra-events"}, func(c *AppConfig, v string) {
		c.Simulation.ExtraEvents = parseBoolEnv(v, c.Simulation.ExtraEvents)
	}},
}

// parseBoolEnv parses a boolean environment variable value.
// Accepts "true", "1", "yes" as true; "false", "0", "no" as false (case-insensitive).
// Returns defaultVal if the value is not recognized.
func parseBoolEnv(val string, defaultVal bool) bool {
	switch strings.ToLower(val) {
	case "true", "1", "yes":
		return true
	case "false", "0", "no":
		return false
	}
	return defaultVal
}

func parseDurationEnv(val string, defaultVal time.Duration) time.Duration {
	if parsed, err := time.ParseDuration(val); err == nil {
		return parsed
	}
	return defaultVal
}

// applyEnvOverrides applies environment variable values to the configuration
// for any flags that were not explicitly set on the command line.
// This implements the priority: CLI flags > Environment variables > file > Defaults.
func applyEnvOverrides(config *AppConfig, fs *flag.FlagSet) {
	for _, o := range envOverrides {
		if isFlagSetAny(fs, o.flags...) {
			continue
		}
		if val := os.Getenv(EnvPrefix + o.envKey); val != "" {
			o.apply(config, val)
		}
	}
}
