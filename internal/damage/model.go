// Package damage implements the probabilistic building damage model: the
// per-building-code earthquake draw and the fire-stage minimum damage.
package damage

import (
	"errors"
	"fmt"
	"math"

	"github.com/rescuesim/collapse/pkg/core"
)

// ErrMissingStats is returned when a known building code has no configured stats.
var ErrMissingStats = errors.New("no collapse stats configured for building code")

// Probabilities are the independent per-severity probabilities of one code.
type Probabilities struct {
	Destroyed float64
	Severe    float64
	Moderate  float64
	Slight    float64
}

// Stats holds the cumulative thresholds of one building code.
type Stats struct {
	PDestroyed float64
	PSevere    float64
	PModerate  float64
	PSlight    float64
}

// NewStats sums probabilities into cumulative thresholds.
func NewStats(p Probabilities) Stats {
	s := Stats{PDestroyed: p.Destroyed}
	s.PSevere = s.PDestroyed + p.Severe
	s.PModerate = s.PSevere + p.Moderate
	s.PSlight = s.PModerate + p.Slight
	return s
}

// Classify maps a uniform draw to the severity it selects. A draw equal to a
// threshold falls into the next, milder category.
func (s Stats) Classify(draw float64) CollapseDegree {
	switch {
	case draw < s.PDestroyed:
		return Destroyed
	case draw < s.PSevere:
		return Severe
	case draw < s.PModerate:
		return Moderate
	case draw < s.PSlight:
		return Slight
	default:
		return None
	}
}

// Distribution is a mean/standard deviation pair.
type Distribution struct {
	Mean float64
	SD   float64
}

// Params configures a Model.
type Params struct {
	Stats     map[core.BuildingCode]Probabilities
	Slight    Distribution
	Moderate  Distribution
	Severe    Distribution
	Destroyed Distribution
}

// Model draws building damage. It is built once at startup and only its
// random streams advance afterwards.
type Model struct {
	stats     map[core.BuildingCode]Stats
	uniform   NumberGenerator
	magnitude map[CollapseDegree]NumberGenerator
}

// NewModel builds the damage model, seeding every sampler from src.
// Every code in core.BuildingCodes must have stats.
func NewModel(p Params, src *Source) (*Model, error) {
	stats := make(map[core.BuildingCode]Stats, len(core.BuildingCodes))
	for _, code := range core.BuildingCodes {
		probs, ok := p.Stats[code]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingStats, code)
		}
		stats[code] = NewStats(probs)
	}
	return NewModelWithGenerators(stats, src.Unit(), map[CollapseDegree]NumberGenerator{
		Slight:    src.Gaussian(p.Slight.Mean, p.Slight.SD),
		Moderate:  src.Gaussian(p.Moderate.Mean, p.Moderate.SD),
		Severe:    src.Gaussian(p.Severe.Mean, p.Severe.SD),
		Destroyed: src.Gaussian(p.Destroyed.Mean, p.Destroyed.SD),
	}), nil
}

// NewModelWithGenerators builds a model from explicit generators, for
// deterministic tests and replays.
func NewModelWithGenerators(stats map[core.BuildingCode]Stats, uniform NumberGenerator, magnitude map[CollapseDegree]NumberGenerator) *Model {
	return &Model{
		stats:     stats,
		uniform:   uniform,
		magnitude: magnitude,
	}
}

// DrawEarthquakeDamage returns the damage one earthquake does to a building
// of the given code, in [0, 100]. Unknown or undefined codes take no damage.
func (m *Model) DrawEarthquakeDamage(code *core.BuildingCode) int {
	if code == nil {
		return 0
	}
	s, ok := m.stats[*code]
	if !ok {
		return 0
	}
	return m.sample(s.Classify(m.uniform.Next()))
}

// FireMinimumDamage returns the least damage a building in fire state f must
// have, in [0, 100].
func (m *Model) FireMinimumDamage(f *core.Fieryness) int {
	if f == nil {
		return 0
	}
	switch *f {
	case core.Heating:
		return m.sample(Slight)
	case core.Burning:
		return m.sample(Moderate)
	case core.Inferno:
		return m.sample(Severe)
	case core.BurntOut:
		return m.sample(Destroyed)
	default:
		return 0
	}
}

func (m *Model) sample(d CollapseDegree) int {
	g, ok := m.magnitude[d]
	if !ok {
		return 0
	}
	return Clamp(toInt(g.Next()))
}

// Clamp restricts a damage value to [0, 100].
func Clamp(v int) int {
	if v < 0 {
		return 0
	}
	if v > core.MaxBrokenness {
		return core.MaxBrokenness
	}
	return v
}

// toInt truncates toward zero, saturating for values outside the int range.
func toInt(v float64) int {
	switch {
	case math.IsNaN(v):
		return 0
	case v >= math.MaxInt32:
		return math.MaxInt32
	case v <= math.MinInt32:
		return math.MinInt32
	default:
		return int(v)
	}
}
