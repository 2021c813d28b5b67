package app

import (
	"context"
	"fmt"
	"io"
	"os"

	"golang.org/x/sync/errgroup"

	"github.com/agbru/winsatrun/internal/cli"
	apperrors "github.com/agbru/winsatrun/internal/errors"
	"github.com/agbru/winsatrun/internal/metrics"
	"github.com/agbru/winsatrun/internal/orchestration"
	"github.com/agbru/winsatrun/internal/server"
	"github.com/agbru/winsatrun/internal/sink"
	"github.com/agbru/winsatrun/internal/telemetry"
	"github.com/agbru/winsatrun/internal/tui"
	"github.com/agbru/winsatrun/internal/ui"
)

// runAssessment wires the environment, the sink factory, the orchestrator
// and the presenters, then runs one assessment or, with --query, reads the
// one on record. When a metrics address is configured the metrics server
// runs alongside it and stops with it.
func (a *Application) runAssessment(ctx context.Context, out io.Writer) int {
	logger := a.newLogger()
	collectors := metrics.NewCollectors()

	env, err := a.NewEnvironment(a.Config, logger)
	if err != nil {
		fmt.Fprintf(a.ErrWriter, "%sError: %v%s\n", ui.ColorRed(), err, ui.ColorReset())
		return apperrors.ExitCodeFor(err)
	}
	mode, err := a.Config.Threading()
	if err != nil {
		fmt.Fprintf(a.ErrWriter, "%sError: %v%s\n", ui.ColorRed(), err, ui.ColorReset())
		return apperrors.ExitErrorConfig
	}

	factory := sink.NewFactory(a.Config.MaxLiveSinks,
		sink.WithLogger(logger),
		sink.WithRecorder(collectors))
	orchCfg := orchestration.Config{
		Mode:        mode,
		Timeout:     a.Config.Timeout,
		QueryScores: a.Config.Verbose || a.Config.OutputFile != "",
	}
	orchOpts := []orchestration.Option{
		orchestration.WithLogger(logger),
		orchestration.WithRecorder(collectors),
		orchestration.WithTracer(telemetry.NewTracer(nil)),
	}
	execute := func(ctx context.Context, p orchestration.Presenter) orchestration.RunResult {
		o := orchestration.New(env, factory, p, orchCfg, orchOpts...)
		if a.Config.Query {
			return o.Query(ctx)
		}
		return o.Execute(ctx)
	}

	var srv *server.Server
	if a.Config.MetricsAddr != "" {
		srv = server.New(a.Config.MetricsAddr, collectors, logger)
	}
	if srv == nil {
		return a.present(ctx, out, execute)
	}

	ln, err := srv.Listen(ctx)
	if err != nil {
		fmt.Fprintf(a.ErrWriter, "%sError: %v%s\n", ui.ColorRed(), err, ui.ColorReset())
		return apperrors.ExitErrorConfig
	}
	g, gctx := errgroup.WithContext(ctx)
	serveCtx, stopServer := context.WithCancel(gctx)
	g.Go(func() error { return srv.Serve(serveCtx, ln) })

	var code int
	g.Go(func() error {
		defer stopServer()
		code = a.present(gctx, out, execute)
		return nil
	})
	if err := g.Wait(); err != nil {
		logger.Error("metrics server stopped", err)
	}
	return code
}

// present runs execute with the console presenter or the dashboard, records
// the run report when requested and returns the exit code.
func (a *Application) present(ctx context.Context, out io.Writer, execute tui.ExecuteFunc) int {
	mem := metrics.NewMemoryCollector()
	var recorder *cli.ReportRecorder
	if a.Config.OutputFile != "" {
		recorder = cli.NewReportRecorder()
	}
	withRecorder := func(p orchestration.Presenter) orchestration.Presenter {
		if recorder == nil {
			return p
		}
		return orchestration.MultiPresenter{p, recorder}
	}

	var result orchestration.RunResult
	if a.Config.TUI {
		opts := tui.Options{
			Version:  Version,
			Stages:   a.Config.Simulation.Stages,
			DiskPath: a.Config.Simulation.DiskPath,
		}
		if opts.DiskPath == "" {
			opts.DiskPath = os.TempDir()
		}
		var err error
		result, err = tui.Run(ctx, opts, func(ctx context.Context, p orchestration.Presenter) orchestration.RunResult {
			return execute(ctx, withRecorder(p))
		})
		if err != nil {
			fmt.Fprintf(a.ErrWriter, "%sError: %v%s\n", ui.ColorRed(), err, ui.ColorReset())
			if result.ExitCode == apperrors.ExitSuccess {
				result.ExitCode = apperrors.ExitErrorGeneric
			}
		}
	} else {
		if a.Config.Verbose && !a.Config.Query {
			cli.PrintExecutionConfig(a.Config, out)
		}
		presenter := cli.NewConsolePresenter(out, a.Config.Quiet, cli.IsTerminal(out))
		result = execute(ctx, withRecorder(presenter))
		if result.Info != nil && (a.Config.Query || a.Config.Verbose) {
			cli.PrintAssessmentInfo(*result.Info, out)
		}
		if a.Config.Verbose {
			cli.DisplayRunSummary(result, mem.Snapshot(), out)
		}
	}

	if recorder != nil {
		report := recorder.Report(result, mem.Snapshot())
		if err := cli.WriteReportToFile(report, a.Config.OutputFile); err != nil {
			fmt.Fprintf(a.ErrWriter, "%sError saving report: %v%s\n", ui.ColorRed(), err, ui.ColorReset())
			if result.ExitCode == apperrors.ExitSuccess {
				return apperrors.ExitErrorGeneric
			}
		} else if !a.Config.Quiet && !a.Config.TUI {
			fmt.Fprintf(out, "Report saved to: %s%s%s\n", ui.ColorCyan(), a.Config.OutputFile, ui.ColorReset())
		}
	}
	return result.ExitCode
}
