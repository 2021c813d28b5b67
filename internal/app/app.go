package app

import (
	"context"
	"errors"
	"flag"
	"io"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"

	"github.com/agbru/winsatrun/internal/assessment"
	"github.com/agbru/winsatrun/internal/config"
	"github.com/agbru/winsatrun/internal/logging"
	"github.com/agbru/winsatrun/internal/simulator"
	"github.com/agbru/winsatrun/internal/ui"
)

// Application represents the winsatrun application instance.
type Application struct {
	Config    config.AppConfig
	ErrWriter io.Writer
	// NewEnvironment builds the assessment service environment. It defaults
	// to the simulated service configured by Config.Simulation.
	NewEnvironment func(cfg config.AppConfig, logger logging.Logger) (assessment.Environment, error)
}

// AppOption configures an Application during construction.
type AppOption func(*Application)

// WithEnvironment sets a custom environment constructor.
func WithEnvironment(fn func(config.AppConfig, logging.Logger) (assessment.Environment, error)) AppOption {
	return func(a *Application) { a.NewEnvironment = fn }
}

// New creates a new Application instance by parsing command-line arguments.
func New(args []string, errWriter io.Writer, opts ...AppOption) (*Application, error) {
	app := &Application{ErrWriter: errWriter}
	for _, opt := range opts {
		opt(app)
	}
	if app.NewEnvironment == nil {
		app.NewEnvironment = newSimulatedEnvironment
	}

	programName := "winsatrun"
	var cmdArgs []string
	if len(args) > 0 {
		programName = args[0]
		cmdArgs = args[1:]
	}

	cfg, err := config.ParseConfig(programName, cmdArgs, errWriter)
	if err != nil {
		return nil, err
	}
	app.Config = cfg
	return app, nil
}

// Run executes one formal assessment and returns the process exit code.
func (a *Application) Run(ctx context.Context, out io.Writer) int {
	level, err := logging.ParseLevel(a.Config.LogLevel)
	if err != nil {
		level = zerolog.WarnLevel
	}
	zerolog.SetGlobalLevel(level)
	ui.InitTheme(a.Config.NoColor)

	ctx, stopSignals := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stopSignals()

	return a.runAssessment(ctx, out)
}

// newLogger returns the diagnostic logger. The dashboard owns the terminal,
// so logs are discarded while it runs.
func (a *Application) newLogger() logging.Logger {
	w := a.ErrWriter
	if a.Config.TUI {
		w = io.Discard
	}
	if a.Config.LogFormat == "json" {
		return logging.NewLogger(w, "winsatrun")
	}
	return logging.NewConsoleLogger(w, "winsatrun", !ui.ColorsEnabled())
}

// newSimulatedEnvironment builds the simulated assessment service.
func newSimulatedEnvironment(cfg config.AppConfig, logger logging.Logger) (assessment.Environment, error) {
	sim := cfg.Simulation
	codes, err := sim.Codes()
	if err != nil {
		return nil, err
	}
	stored, err := sim.StoredState()
	if err != nil {
		return nil, err
	}
	return simulator.New(simulator.Config{
		Stages:                     sim.Stages,
		TicksPerStage:              sim.TicksPerStage,
		TickInterval:               sim.TickInterval,
		UnknownTotal:               sim.UnknownTotal,
		ProbeHardware:              !sim.NoProbe,
		DiskPath:                   sim.DiskPath,
		FailInit:                   sim.FailInit,
		AcquireFailure:             codes.Acquire,
		StartFailure:               codes.Start,
		RunFailure:                 codes.Run,
		RunFailureDescription:      sim.RunFailureDescription,
		FailAtStage:                sim.FailAtStage,
		StoredState:                stored,
		QueryFailure:               codes.Query,
		ExtraEventsAfterCompletion: sim.ExtraEvents,
	}, logger), nil
}

// IsHelpError checks if the error is a help flag error (--help was used).
func IsHelpError(err error) bool {
	return errors.Is(err, flag.ErrHelp)
}
