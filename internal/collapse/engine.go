// Package collapse applies earthquake and fire damage to buildings and turns
// the walls of damaged buildings into road blockades, one step at a time.
package collapse

import (
	"github.com/rescuesim/collapse/internal/cache"
	"github.com/rescuesim/collapse/internal/damage"
	"github.com/rescuesim/collapse/internal/logging"
	"github.com/rescuesim/collapse/internal/world"
	"github.com/rescuesim/collapse/pkg/core"
)

// EarthquakeTime is the only step at which the earthquake strikes.
const EarthquakeTime = 1

// DegreeCounts counts buildings per collapse degree.
type DegreeCounts map[damage.CollapseDegree]int

// Summary describes the damage one step did.
type Summary struct {
	// Earthquake is nil on steps without an earthquake.
	Earthquake  map[core.BuildingCode]DegreeCounts
	FireDamaged int
}

// Result of one collapse step.
type Result struct {
	// Changed holds the buildings whose brokenness rose, ascending by ID.
	Changed []*core.Building
	Summary Summary
}

// Engine runs the damage phases over the tracked buildings.
type Engine struct {
	model     *damage.Model
	buildings cache.BuildingSource
	log       logging.Logger

	earthquakeDone bool
}

// NewEngine creates an engine over the given building source.
func NewEngine(model *damage.Model, buildings cache.BuildingSource, log logging.Logger) *Engine {
	if log == nil {
		log = logging.Nop()
	}
	return &Engine{model: model, buildings: buildings, log: log}
}

// Collapse applies the earthquake (first step only) and then fire damage.
// Every brokenness write is reported to changes.
func (e *Engine) Collapse(time int, changes *world.ChangeSet) Result {
	buildings := e.buildings.Buildings()
	changed := make(map[core.EntityID]bool)

	var res Result
	if time == EarthquakeTime && !e.earthquakeDone {
		res.Summary.Earthquake = e.earthquake(buildings, changes, changed)
		e.earthquakeDone = true
	}
	res.Summary.FireDamaged = e.fire(buildings, changes, changed)

	for _, b := range buildings {
		if changed[b.ID] {
			res.Changed = append(res.Changed, b)
		}
	}
	return res
}

func (e *Engine) earthquake(buildings []*core.Building, changes *world.ChangeSet, changed map[core.EntityID]bool) map[core.BuildingCode]DegreeCounts {
	counts := make(map[core.BuildingCode]DegreeCounts, len(core.BuildingCodes))
	for _, code := range core.BuildingCodes {
		counts[code] = make(DegreeCounts, len(damage.Degrees))
	}

	for _, b := range buildings {
		dmg := damage.Clamp(e.model.DrawEarthquakeDamage(b.Code))
		b.SetBrokenness(dmg)
		changes.AddChange(b, world.PropertyBrokenness, dmg)
		if dmg > 0 {
			changed[b.ID] = true
		}
		if b.Code != nil {
			if c, ok := counts[*b.Code]; ok {
				c[damage.DegreeOf(dmg)]++
			}
		}
	}

	for _, code := range core.BuildingCodes {
		kv := make([]any, 0, 2*len(damage.Degrees)+2)
		kv = append(kv, "code", code.String())
		for _, d := range damage.Degrees {
			kv = append(kv, d.Lower(), counts[code][d])
		}
		e.log.Info("Earthquake damage", kv...)
	}
	return counts
}

func (e *Engine) fire(buildings []*core.Building, changes *world.ChangeSet, changed map[core.EntityID]bool) int {
	raised := 0
	for _, b := range buildings {
		if b.Fieryness == nil {
			continue
		}
		minimum := e.model.FireMinimumDamage(b.Fieryness)
		if b.BrokennessOrZero() >= minimum {
			continue
		}
		b.SetBrokenness(minimum)
		changes.AddChange(b, world.PropertyBrokenness, minimum)
		changed[b.ID] = true
		raised++
	}
	if raised > 0 {
		e.log.Debug("Fire damage", "buildings", raised)
	}
	return raised
}
