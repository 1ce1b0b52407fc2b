// internal/storage/storage.go
package storage

import "github.com/rescuesim/collapse/pkg/core"

// Backend is the interface all storage implementations must satisfy
type Backend interface {
	// Lifecycle
	Init() error
	Close() error

	// Run management (assigns ID to the passed pointer)
	StartRun(run *core.Run) error
	EndRun() error

	// State recording
	RecordStep(step *core.StepRecord) error
}

// Exportable is an optional interface for storage backends that write the
// finished run to a file.
type Exportable interface {
	ExportedFilePath() string
}
