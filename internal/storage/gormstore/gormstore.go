// Package gormstore implements the storage.Backend interface using GORM with
// internal queues flushed once per step. The same backend serves SQLite and
// Postgres; with a dump path set, the database is vacuumed to that file at
// the end of every run.
package gormstore

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/rescuesim/collapse/internal/database"
	"github.com/rescuesim/collapse/internal/model"
	"github.com/rescuesim/collapse/internal/model/convert"
	"github.com/rescuesim/collapse/internal/queue"
	"github.com/rescuesim/collapse/pkg/core"
	"github.com/rs/zerolog"

	"gorm.io/gorm"
)

// Dependencies holds all dependencies for the GORM storage backend.
type Dependencies struct {
	DB       *gorm.DB
	Georef   convert.Georeferencer // optional
	Logger   zerolog.Logger
	DumpPath string // SQLite only
}

// queues holds the rows waiting for the next flush.
type queues struct {
	Summaries  *queue.Queue[model.StepSummary]
	Brokenness *queue.Queue[model.BrokennessUpdate]
	Blockades  *queue.Queue[model.BlockadeRecord]
}

func newQueues() *queues {
	return &queues{
		Summaries:  queue.New[model.StepSummary](),
		Brokenness: queue.New[model.BrokennessUpdate](),
		Blockades:  queue.New[model.BlockadeRecord](),
	}
}

// Backend implements storage.Backend using GORM.
type Backend struct {
	deps   Dependencies
	queues *queues
	runID  uint
	steps  uint
}

// New creates a new GORM storage backend.
func New(deps Dependencies) *Backend {
	return &Backend{
		deps:   deps,
		queues: newQueues(),
	}
}

// Init runs schema migration.
func (b *Backend) Init() error {
	if b.deps.DB == nil {
		return fmt.Errorf("no database connection")
	}
	if err := database.Setup(b.deps.DB, b.deps.Logger); err != nil {
		return fmt.Errorf("failed to setup DB: %w", err)
	}
	return nil
}

// Close flushes pending rows and closes the connection.
func (b *Backend) Close() error {
	if b.deps.DB == nil {
		return nil
	}
	if err := b.flush(); err != nil {
		b.deps.Logger.Error().Err(err).Msg("Failed to flush pending rows on close")
	}
	sqlDB, err := b.deps.DB.DB()
	if err != nil {
		return fmt.Errorf("failed to access sql interface: %w", err)
	}
	return sqlDB.Close()
}

// StartRun inserts the run and assigns its DB-generated ID.
func (b *Backend) StartRun(run *core.Run) error {
	row := convert.CoreToRun(*run)
	row.ID = 0
	if err := b.deps.DB.Create(&row).Error; err != nil {
		return fmt.Errorf("failed to insert new run: %w", err)
	}
	run.ID = row.ID
	b.runID = row.ID
	b.steps = 0
	b.queues = newQueues()

	b.deps.Logger.Info().Uint("run", row.ID).Str("name", row.Name).Msg("Run started")
	return nil
}

// RecordStep converts the step into rows and writes them.
// Rows that fail to write stay queued for the next flush.
func (b *Backend) RecordStep(step *core.StepRecord) error {
	if b.runID == 0 {
		return fmt.Errorf("recording step %d: %w", step.Time, core.ErrNoRun)
	}

	b.queues.Summaries.Push(convert.CoreToStepSummary(b.runID, *step))
	b.queues.Brokenness.Push(convert.CoreToBrokennessUpdates(b.runID, *step)...)
	for _, bl := range step.Blockades {
		b.queues.Blockades.Push(convert.CoreToBlockadeRecord(b.runID, step.Time, bl, b.deps.Georef))
	}
	b.steps++

	return b.flush()
}

// EndRun flushes, stamps the run end and dumps SQLite to disk if configured.
func (b *Backend) EndRun() error {
	if b.runID == 0 {
		return core.ErrNoRun
	}
	if err := b.flush(); err != nil {
		return err
	}

	err := b.deps.DB.Model(&model.Run{}).Where("id = ?", b.runID).Updates(map[string]any{
		"end_time": sql.NullTime{Time: time.Now(), Valid: true},
		"steps":    b.steps,
	}).Error
	if err != nil {
		return fmt.Errorf("failed to finish run: %w", err)
	}

	if b.deps.DumpPath != "" && b.deps.DB.Name() == "sqlite" {
		start := time.Now()
		if err := database.DumpMemoryDBToDisk(b.deps.DB, b.deps.DumpPath); err != nil {
			return err
		}
		b.deps.Logger.Debug().Dur("duration", time.Since(start)).Str("path", b.deps.DumpPath).Msg("Dumped to disk")
	}

	b.deps.Logger.Info().Uint("run", b.runID).Uint("steps", b.steps).Msg("Run finished")
	b.runID = 0
	return nil
}

// flush writes every queued row in one transaction.
func (b *Backend) flush() error {
	summaries := b.queues.Summaries.Drain()
	brokenness := b.queues.Brokenness.Drain()
	blockades := b.queues.Blockades.Drain()
	if len(summaries)+len(brokenness)+len(blockades) == 0 {
		return nil
	}

	start := time.Now()
	err := b.deps.DB.Transaction(func(tx *gorm.DB) error {
		if err := writeRows(tx, summaries); err != nil {
			return fmt.Errorf("step_summaries: %w", err)
		}
		if err := writeRows(tx, brokenness); err != nil {
			return fmt.Errorf("brokenness_updates: %w", err)
		}
		if err := writeRows(tx, blockades); err != nil {
			return fmt.Errorf("blockade_records: %w", err)
		}
		return nil
	})
	if err != nil {
		b.queues.Summaries.Requeue(summaries)
		b.queues.Brokenness.Requeue(brokenness)
		b.queues.Blockades.Requeue(blockades)
		return fmt.Errorf("failed to write step: %w", err)
	}

	b.deps.Logger.Debug().
		Int("summaries", len(summaries)).
		Int("brokenness", len(brokenness)).
		Int("blockades", len(blockades)).
		Dur("duration", time.Since(start)).
		Msg("Flushed rows")
	return nil
}

func writeRows[T any](tx *gorm.DB, rows []T) error {
	if len(rows) == 0 {
		return nil
	}
	return tx.CreateInBatches(rows, 1000).Error
}
