package collapse

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/metric"

	"github.com/rescuesim/collapse/internal/blockade"
	"github.com/rescuesim/collapse/internal/logging"
	"github.com/rescuesim/collapse/internal/world"
	"github.com/rescuesim/collapse/pkg/core"
)

// Commands is the per-step damage command.
type Commands struct {
	Time int
}

// Generator creates blockades for damaged buildings.
type Generator interface {
	Generate(ctx context.Context, changed []*core.Building) ([]blockade.RoadBlockades, error)
}

// StepReport describes everything one step changed.
type StepReport struct {
	Time      int
	Summary   Summary
	Changed   []*core.Building
	Blockades []blockade.RoadBlockades
	// BlockadeErr is set when blockade creation was abandoned for the step.
	BlockadeErr error
	Duration    time.Duration
}

// NewBlockades returns every blockade created in the step, in road order.
func (r *StepReport) NewBlockades() []*core.Blockade {
	var out []*core.Blockade
	for _, rb := range r.Blockades {
		out = append(out, rb.Blockades...)
	}
	return out
}

// Simulator runs the collapse engine and the blockade generator per step.
type Simulator struct {
	engine          *Engine
	generator       Generator
	createBlockades bool
	log             logging.Logger

	damaged   metric.Int64Counter
	blockades metric.Int64Counter
	steps     metric.Int64Counter
}

// NewSimulator creates a simulator. The generator is only consulted when
// createBlockades is set.
// Uses the global OTel meter for metrics (no-op if not configured).
func NewSimulator(engine *Engine, generator Generator, createBlockades bool, log logging.Logger) (*Simulator, error) {
	if log == nil {
		log = logging.Nop()
	}
	s := &Simulator{
		engine:          engine,
		generator:       generator,
		createBlockades: createBlockades,
		log:             log,
	}

	m := meter()

	var err error

	s.damaged, err = m.Int64Counter(
		"collapse.buildings.damaged",
		metric.WithDescription("Total building damage increases"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating damaged counter: %w", err)
	}

	s.blockades, err = m.Int64Counter(
		"collapse.blockades.created",
		metric.WithDescription("Total blockades created"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating blockades counter: %w", err)
	}

	s.steps, err = m.Int64Counter(
		"collapse.steps.processed",
		metric.WithDescription("Total simulation steps processed"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating steps counter: %w", err)
	}

	return s, nil
}

// ProcessCommands applies one step's damage and creates the resulting
// blockades. New blockades are attached to their roads and reported to
// changes together with the roads. If blockade creation fails the error is
// returned alongside the report and the damage written this step stays.
func (s *Simulator) ProcessCommands(ctx context.Context, cmd Commands, changes *world.ChangeSet) (*StepReport, error) {
	start := time.Now()
	res := s.engine.Collapse(cmd.Time, changes)

	report := &StepReport{
		Time:    cmd.Time,
		Summary: res.Summary,
		Changed: res.Changed,
	}
	defer func() {
		report.Duration = time.Since(start)
		s.steps.Add(ctx, 1)
	}()
	s.damaged.Add(ctx, int64(len(res.Changed)))

	if !s.createBlockades || len(res.Changed) == 0 {
		return report, nil
	}

	out, err := s.generator.Generate(ctx, res.Changed)
	if err != nil {
		report.BlockadeErr = err
		s.log.Error("Blockade creation abandoned", "time", cmd.Time, "buildings", len(res.Changed), "error", err)
		return report, err
	}

	created := 0
	for _, rb := range out {
		ids := make([]core.EntityID, 0, len(rb.Blockades))
		for _, b := range rb.Blockades {
			ids = append(ids, b.ID)
			changes.AddEntities(b)
		}
		rb.Road.AppendBlockades(ids...)
		changes.AddChange(rb.Road, world.PropertyBlockades, rb.Road.Blockades)
		created += len(ids)
	}
	report.Blockades = out
	s.blockades.Add(ctx, int64(created))

	s.log.Debug("Step processed", "time", cmd.Time, "damaged", len(res.Changed), "blockades", created, "roads", len(out))
	return report, nil
}
