// pkg/core/run.go
package core

import (
	"errors"
	"time"
)

// ErrNoRun is returned when a step is recorded outside of a run.
var ErrNoRun = errors.New("no run started")

// Run describes one simulation run for recording purposes.
type Run struct {
	ID        uint
	Name      string
	Seed      int64
	StartTime time.Time
}

// BrokennessUpdate is a single brokenness write made during a step.
type BrokennessUpdate struct {
	BuildingID EntityID
	Brokenness int
}

// StepRecord is everything a step changed, in the order it happened.
type StepRecord struct {
	Time              int
	BrokennessUpdates []BrokennessUpdate
	Blockades         []Blockade
	FireDamaged       int
	BlockadeErr       string
	Duration          time.Duration
}
