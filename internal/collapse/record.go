package collapse

import (
	"github.com/rescuesim/collapse/internal/world"
	"github.com/rescuesim/collapse/pkg/core"
)

// NewStepRecord flattens a step for storage. Brokenness writes are taken
// from changes in write order.
func NewStepRecord(r *StepReport, changes *world.ChangeSet) core.StepRecord {
	rec := core.StepRecord{
		Time:        r.Time,
		FireDamaged: r.Summary.FireDamaged,
		Duration:    r.Duration,
	}
	for _, ch := range changes.ChangesFor(world.PropertyBrokenness) {
		v, ok := ch.Value.(int)
		if !ok {
			continue
		}
		rec.BrokennessUpdates = append(rec.BrokennessUpdates, core.BrokennessUpdate{BuildingID: ch.EntityID, Brokenness: v})
	}
	for _, b := range r.NewBlockades() {
		rec.Blockades = append(rec.Blockades, *b)
	}
	if r.BlockadeErr != nil {
		rec.BlockadeErr = r.BlockadeErr.Error()
	}
	return rec
}
