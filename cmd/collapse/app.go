package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"github.com/rescuesim/collapse/internal/blockade"
	"github.com/rescuesim/collapse/internal/collapse"
	"github.com/rescuesim/collapse/internal/config"
	"github.com/rescuesim/collapse/internal/dispatcher"
	"github.com/rescuesim/collapse/internal/geo"
	"github.com/rescuesim/collapse/internal/influx"
	"github.com/rescuesim/collapse/internal/logging"
	"github.com/rescuesim/collapse/internal/run"
	"github.com/rescuesim/collapse/internal/scenario"
	"github.com/rescuesim/collapse/internal/storage"
	"github.com/rescuesim/collapse/internal/world"
	"github.com/rescuesim/collapse/pkg/core"
)

const appName = "collapse"

type options struct {
	ConfigDir string
	Scenario  string
	Name      string
	Steps     int
	Console   io.Writer
}

// app holds everything one simulation run needs.
type app struct {
	log     zerolog.Logger
	logFile *os.File

	world      *world.Model
	sim        *collapse.Simulator
	dispatcher *dispatcher.Dispatcher
	backend    storage.Backend
	metrics    *influx.Manager
	runCtx     *run.Context
	name       string
	seed       int64
}

func newApp(ctx context.Context, opts options) (*app, error) {
	start := time.Now()
	if err := config.Load(opts.ConfigDir); err != nil {
		return nil, err
	}
	cfg, err := config.GetCollapseConfig()
	if err != nil {
		return nil, err
	}

	a := &app{runCtx: run.NewContext(), seed: cfg.Seed}
	if err := a.setupLogging(opts.Console, start); err != nil {
		return nil, err
	}

	f, err := scenario.Read(opts.Scenario)
	if err != nil {
		a.close()
		return nil, err
	}
	a.world, err = f.Build()
	if err != nil {
		a.close()
		return nil, err
	}
	a.name = opts.Name
	if a.name == "" {
		a.name = f.Name
	}
	a.log.Info().Str("scenario", opts.Scenario).Int("entities", a.world.Len()).Msg("Scenario loaded")

	if err := a.setupStorage(); err != nil {
		a.close()
		return nil, err
	}
	a.setupMetrics(ctx)

	adapter := logging.NewZeroLogger(a.log)
	a.sim, err = collapse.New(cfg, a.world, adapter)
	if err != nil {
		a.close()
		return nil, err
	}
	a.dispatcher, err = dispatcher.New(adapter)
	if err != nil {
		a.close()
		return nil, err
	}
	a.dispatcher.Register(dispatcher.CommandStep, a.handleStep, dispatcher.Logged())
	return a, nil
}

func (a *app) setupLogging(console io.Writer, start time.Time) error {
	logsDir := config.GetString("logsDir")
	if err := os.MkdirAll(logsDir, 0755); err != nil {
		return fmt.Errorf("creating logs dir: %w", err)
	}
	file, err := os.OpenFile(logging.LogFilePath(logsDir, appName, start), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("opening log file: %w", err)
	}
	a.logFile = file

	opts := logging.Options{
		Level:   config.GetString("logLevel"),
		Console: console,
		File:    file,
	}
	if gl := config.GetGraylogConfig(); gl.Enabled {
		w, err := logging.NewGraylogWriter(gl.Address)
		if err != nil {
			fmt.Fprintf(os.Stderr, "graylog disabled: %v\n", err)
		} else {
			opts.Graylog = w
		}
	}
	a.log = logging.Setup(opts)
	return nil
}

func (a *app) setupStorage() error {
	opts := storage.Options{
		DB:     config.GetDBConfig(),
		Logger: a.log,
	}
	if g := config.GetGeoConfig(); g.Enabled {
		opts.Georef = geo.NewGeoreference(g.OriginX, g.OriginY)
	}

	storageCfg := config.GetStorageConfig()
	backend, err := storage.NewBackend(storageCfg, opts)
	if err != nil {
		return fmt.Errorf("failed to create storage backend: %w", err)
	}
	if err := backend.Init(); err != nil {
		return fmt.Errorf("failed to initialize storage backend: %w", err)
	}
	a.backend = backend
	a.log.Info().Str("type", storageCfg.Type).Msg("Storage backend initialized")
	return nil
}

func (a *app) setupMetrics(ctx context.Context) {
	m := influx.NewManager(config.GetInfluxConfig(), a.log)
	err := m.Connect(ctx)
	switch {
	case errors.Is(err, influx.ErrDisabled):
		return
	case err != nil:
		a.log.Warn().Err(err).Msg("Metrics disabled")
		return
	}
	a.metrics = m
}

// handleStep runs one kernel step. A failed blockade creation keeps the
// damage of the step and the run continues.
func (a *app) handleStep(ctx context.Context, e dispatcher.Event) (any, error) {
	if err := a.runCtx.Advance(e.Time); err != nil {
		return nil, err
	}

	changes := world.NewChangeSet()
	report, err := a.sim.ProcessCommands(ctx, collapse.Commands{Time: e.Time}, changes)
	if err != nil && !errors.Is(err, blockade.ErrIDAllocation) {
		return nil, err
	}
	if err := a.world.Merge(changes); err != nil {
		return nil, fmt.Errorf("merging step %d: %w", e.Time, err)
	}

	rec := collapse.NewStepRecord(report, changes)
	if err := a.backend.RecordStep(&rec); err != nil {
		return nil, err
	}

	if a.metrics != nil {
		if err := a.metrics.WritePoints(influx.StepPoints(a.name, report, e.Timestamp)); err != nil {
			a.log.Warn().Err(err).Int("time", e.Time).Msg("Failed to write step metrics")
		}
	}
	return report, nil
}

// run records a run of the given number of steps.
func (a *app) run(ctx context.Context, steps int) error {
	r := &core.Run{Name: a.name, Seed: a.seed, StartTime: time.Now()}
	if err := a.backend.StartRun(r); err != nil {
		return err
	}
	a.runCtx.Start(r)
	a.log.Info().Str("name", r.Name).Uint("id", r.ID).Int("steps", steps).Msg("Run started")

	var stepErr error
	for t := 1; t <= steps; t++ {
		if _, err := a.dispatcher.Dispatch(ctx, dispatcher.Event{Command: dispatcher.CommandStep, Time: t}); err != nil {
			stepErr = fmt.Errorf("step %d: %w", t, err)
			break
		}
	}

	if _, err := a.runCtx.End(); err != nil {
		return errors.Join(stepErr, err)
	}
	if err := a.backend.EndRun(); err != nil {
		return errors.Join(stepErr, err)
	}
	if exp, ok := a.backend.(storage.Exportable); ok && exp.ExportedFilePath() != "" {
		a.log.Info().Str("path", exp.ExportedFilePath()).Msg("Run exported")
	}
	return stepErr
}

func (a *app) close() {
	if a.metrics != nil {
		if err := a.metrics.Close(); err != nil {
			a.log.Warn().Err(err).Msg("Failed to close metrics")
		}
	}
	if a.backend != nil {
		if err := a.backend.Close(); err != nil {
			a.log.Warn().Err(err).Msg("Failed to close storage backend")
		}
	}
	if a.logFile != nil {
		_ = a.logFile.Close()
	}
}

// defaultConfigDir is the directory of the executable.
func defaultConfigDir() string {
	exe, err := os.Executable()
	if err != nil {
		return "."
	}
	return filepath.Dir(exe)
}
