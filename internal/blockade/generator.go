// Package blockade turns the walls of damaged buildings into road blockades.
package blockade

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/rescuesim/collapse/internal/damage"
	"github.com/rescuesim/collapse/internal/geo"
	"github.com/rescuesim/collapse/internal/logging"
	"github.com/rescuesim/collapse/internal/world"
	"github.com/rescuesim/collapse/pkg/core"
)

// ErrIDAllocation is returned when fresh blockade identities could not be
// obtained. No blockades are created for the step.
var ErrIDAllocation = errors.New("blockade id allocation failed")

// CostPerSquareMM converts an area in mm² into repair cost units.
const CostPerSquareMM = 1e-6

// Config holds the wall projection parameters.
type Config struct {
	FloorHeight float64 // millimetres
	Extent      damage.NumberGenerator
	Flatness    float64
}

// World is the part of the world model the generator reads.
type World interface {
	Roads() []*core.Road
	Blockades() []*core.Blockade
}

// RoadBlockades are the blockades created on one road in one step.
type RoadBlockades struct {
	Road      *core.Road
	Blockades []*core.Blockade
}

// Generator builds blockades for buildings whose damage rose.
type Generator struct {
	cfg   Config
	world World
	ids   world.IDAllocator
	log   logging.Logger
}

// NewGenerator creates a blockade generator.
func NewGenerator(cfg Config, w World, ids world.IDAllocator, log logging.Logger) *Generator {
	if log == nil {
		log = logging.Nop()
	}
	return &Generator{cfg: cfg, world: w, ids: ids, log: log}
}

type candidate struct {
	road   *core.Road
	apexes []int
	x, y   int
	cost   int
}

type roadArea struct {
	road   *core.Road
	region geo.Region
}

// Generate projects the walls of every changed building onto the roads and
// returns the new blockades grouped by road, roads in ascending ID order.
// Area claimed earlier in the same call is never claimed twice.
func (g *Generator) Generate(ctx context.Context, changed []*core.Building) ([]RoadBlockades, error) {
	existing, err := g.existingCoverage()
	if err != nil {
		return nil, err
	}
	roads := g.roadAreas()

	var candidates []candidate
	for _, b := range changed {
		d := g.distance(b)
		wall, err := WallArea(b, d, g.cfg.Flatness)
		if err != nil {
			g.log.Error("Failed to build wall area", "building", b.ID, "distance", d, "error", err)
			continue
		}
		if wall.IsEmpty() {
			continue
		}
		for _, r := range roads {
			found, err := g.claim(r, wall, &existing)
			if err != nil {
				g.log.Error("Failed to intersect wall area with road", "building", b.ID, "road", r.road.ID, "error", err)
				continue
			}
			candidates = append(candidates, found...)
		}
	}
	if len(candidates) == 0 {
		return nil, nil
	}

	ids, err := g.ids.RequestNewEntityIDs(ctx, len(candidates))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrIDAllocation, err)
	}
	if len(ids) != len(candidates) {
		return nil, fmt.Errorf("%w: requested %d ids, got %d", ErrIDAllocation, len(candidates), len(ids))
	}

	byRoad := make(map[core.EntityID]*RoadBlockades)
	for i, c := range candidates {
		rb, ok := byRoad[c.road.ID]
		if !ok {
			rb = &RoadBlockades{Road: c.road}
			byRoad[c.road.ID] = rb
		}
		rb.Blockades = append(rb.Blockades, &core.Blockade{
			ID:         ids[i],
			Position:   c.road.ID,
			Apexes:     c.apexes,
			X:          c.x,
			Y:          c.y,
			RepairCost: c.cost,
		})
	}

	out := make([]RoadBlockades, 0, len(byRoad))
	for _, rb := range byRoad {
		out = append(out, *rb)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Road.ID < out[j].Road.ID })
	g.log.Debug("Generated blockades", "count", len(candidates), "roads", len(out))
	return out, nil
}

// distance is how far the walls of b fall. The extent factor is drawn once
// per building.
func (g *Generator) distance(b *core.Building) float64 {
	extent := 0.0
	if g.cfg.Extent != nil {
		extent = g.cfg.Extent.Next()
	}
	return g.cfg.FloorHeight * float64(b.Floors) * float64(b.BrokennessOrZero()) / core.MaxBrokenness * extent
}

// claim takes the part of the road covered by wall and not yet blocked, adds
// it to existing and converts it into blockade candidates.
func (g *Generator) claim(r roadArea, wall geo.Region, existing *geo.Region) ([]candidate, error) {
	hit, err := r.region.Intersect(wall)
	if err != nil {
		return nil, err
	}
	hit, err = hit.Subtract(*existing)
	if err != nil {
		return nil, err
	}
	if hit.IsEmpty() {
		return nil, nil
	}
	merged, err := existing.Union(hit)
	if err != nil {
		return nil, err
	}
	*existing = merged

	polys, err := hit.Decompose()
	if err != nil {
		return nil, err
	}
	var out []candidate
	for _, p := range polys {
		if c, ok := newCandidate(r.road, p); ok {
			out = append(out, c)
		}
	}
	return out, nil
}

func newCandidate(road *core.Road, p geo.SimplePolygon) (candidate, bool) {
	apexes := geo.Apexes(p)
	pts := geo.VertexArrayToPoints(apexes)
	cost := RepairCost(pts)
	if cost == 0 {
		return candidate{}, false
	}
	centre, ok := geo.Centroid(pts)
	if !ok {
		return candidate{}, false
	}
	return candidate{
		road:   road,
		apexes: apexes,
		x:      int(centre.X),
		y:      int(centre.Y),
		cost:   cost,
	}, true
}

// RepairCost is the cost of clearing a blockade with the given outline.
func RepairCost(pts []geo.Point) int {
	return int(math.Round(geo.Area(pts) * CostPerSquareMM))
}

func (g *Generator) existingCoverage() (geo.Region, error) {
	blockades := g.world.Blockades()
	regions := make([]geo.Region, 0, len(blockades))
	for _, b := range blockades {
		r, err := geo.PolygonRegion(geo.VertexArrayToPoints(b.Apexes))
		if err != nil {
			g.log.Warn("Ignoring blockade without area", "blockade", b.ID, "error", err)
			continue
		}
		regions = append(regions, r)
	}
	existing, err := geo.UnionAll(regions)
	if err != nil {
		return geo.Region{}, fmt.Errorf("union of existing blockades: %w", err)
	}
	return existing, nil
}

func (g *Generator) roadAreas() []roadArea {
	roads := g.world.Roads()
	out := make([]roadArea, 0, len(roads))
	for _, r := range roads {
		region, err := geo.PolygonRegion(geo.EdgesToPoints(r.Edges))
		if err != nil {
			g.log.Warn("Ignoring road without area", "road", r.ID, "error", err)
			continue
		}
		out = append(out, roadArea{road: r, region: region})
	}
	return out
}
