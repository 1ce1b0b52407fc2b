// internal/storage/memory/memory.go
package memory

import (
	"fmt"
	"sync"

	"github.com/rescuesim/collapse/internal/config"
	"github.com/rescuesim/collapse/internal/queue"
	"github.com/rescuesim/collapse/pkg/core"
)

// Backend stores run data in memory and exports to JSON
type Backend struct {
	cfg   config.MemoryConfig
	run   *core.Run
	steps *queue.Queue[core.StepRecord]

	idCounter      uint
	lastExportPath string
	mu             sync.RWMutex
}

// New creates a new memory backend
func New(cfg config.MemoryConfig) *Backend {
	return &Backend{
		cfg:   cfg,
		steps: queue.New[core.StepRecord](),
	}
}

// Init initializes the backend
func (b *Backend) Init() error {
	return nil
}

// Close cleans up resources
func (b *Backend) Close() error {
	return nil
}

// StartRun begins recording a new run
func (b *Backend) StartRun(run *core.Run) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.idCounter++
	run.ID = b.idCounter
	b.run = run
	b.steps.Drain()
	b.lastExportPath = ""

	return nil
}

// RecordStep stores a copy of the step
func (b *Backend) RecordStep(step *core.StepRecord) error {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.run == nil {
		return fmt.Errorf("recording step %d: %w", step.Time, core.ErrNoRun)
	}
	b.steps.Push(cloneStep(*step))
	return nil
}

// EndRun finalizes and exports the run data
func (b *Backend) EndRun() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.run == nil {
		return core.ErrNoRun
	}
	if err := b.exportJSON(); err != nil {
		return err
	}
	b.run = nil
	return nil
}

// ExportedFilePath returns the file written by the last EndRun.
func (b *Backend) ExportedFilePath() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.lastExportPath
}

// Steps returns the steps recorded for the current run.
func (b *Backend) Steps() []core.StepRecord {
	return b.steps.Snapshot()
}

func cloneStep(s core.StepRecord) core.StepRecord {
	s.BrokennessUpdates = append([]core.BrokennessUpdate(nil), s.BrokennessUpdates...)
	blockades := make([]core.Blockade, len(s.Blockades))
	for i, bl := range s.Blockades {
		bl.Apexes = append([]int(nil), bl.Apexes...)
		blockades[i] = bl
	}
	s.Blockades = blockades
	return s
}
