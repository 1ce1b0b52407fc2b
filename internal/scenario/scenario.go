// Package scenario loads a world from a YAML description of its buildings,
// roads and blockades. Edges are written as [x1, y1, x2, y2] in millimetres.
package scenario

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/rescuesim/collapse/internal/geo"
	"github.com/rescuesim/collapse/internal/world"
	"github.com/rescuesim/collapse/pkg/core"
)

// ErrInvalidScenario is returned for scenarios that parse but describe an
// impossible world.
var ErrInvalidScenario = errors.New("invalid scenario")

// File is a parsed scenario.
type File struct {
	Name      string     `yaml:"name"`
	Buildings []Building `yaml:"buildings"`
	Roads     []Road     `yaml:"roads"`
	Blockades []Blockade `yaml:"blockades"`
}

type Building struct {
	ID         int32   `yaml:"id"`
	Floors     int     `yaml:"floors"`
	Code       string  `yaml:"code"`
	Brokenness *int    `yaml:"brokenness"`
	Fieryness  string  `yaml:"fieryness"`
	Edges      [][]int `yaml:"edges"`
}

type Road struct {
	ID        int32   `yaml:"id"`
	Edges     [][]int `yaml:"edges"`
	Blockades []int32 `yaml:"blockades"`
}

type Blockade struct {
	ID         int32 `yaml:"id"`
	Road       int32 `yaml:"road"`
	Apexes     []int `yaml:"apexes"`
	RepairCost int   `yaml:"repairCost"`
}

// Load reads the scenario at path and builds its world.
func Load(path string) (*world.Model, error) {
	f, err := Read(path)
	if err != nil {
		return nil, err
	}
	return f.Build()
}

// Read parses the scenario at path without building it.
func Read(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading scenario: %w", err)
	}
	return Parse(data)
}

// Parse decodes a scenario. Unknown keys are rejected.
func Parse(data []byte) (*File, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var f File
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidScenario, err)
	}
	return &f, nil
}

// Build creates a world holding every entity of the scenario.
func (f *File) Build() (*world.Model, error) {
	w := world.NewModel()

	for _, b := range f.Buildings {
		building, err := b.toCore()
		if err != nil {
			return nil, fmt.Errorf("%w: building %d: %w", ErrInvalidScenario, b.ID, err)
		}
		if err := w.AddEntity(building); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidScenario, err)
		}
	}

	roads := make(map[int32]bool, len(f.Roads))
	for _, r := range f.Roads {
		edges, err := boundary(r.Edges)
		if err != nil {
			return nil, fmt.Errorf("%w: road %d: %w", ErrInvalidScenario, r.ID, err)
		}
		road := &core.Road{ID: core.EntityID(r.ID), Edges: edges}
		for _, id := range r.Blockades {
			road.Blockades = append(road.Blockades, core.EntityID(id))
		}
		if err := w.AddEntity(road); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidScenario, err)
		}
		roads[r.ID] = true
	}

	for _, b := range f.Blockades {
		if !roads[b.Road] {
			return nil, fmt.Errorf("%w: blockade %d: unknown road %d", ErrInvalidScenario, b.ID, b.Road)
		}
		blockade, err := b.toCore()
		if err != nil {
			return nil, fmt.Errorf("%w: blockade %d: %w", ErrInvalidScenario, b.ID, err)
		}
		if err := w.AddEntity(blockade); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidScenario, err)
		}
	}

	for _, r := range f.Roads {
		for _, id := range r.Blockades {
			if _, ok := w.Entity(core.EntityID(id)); !ok {
				return nil, fmt.Errorf("%w: road %d lists unknown blockade %d", ErrInvalidScenario, r.ID, id)
			}
		}
	}
	return w, nil
}

func (b Building) toCore() (*core.Building, error) {
	edges, err := boundary(b.Edges)
	if err != nil {
		return nil, err
	}
	out := &core.Building{ID: core.EntityID(b.ID), Edges: edges, Floors: b.Floors}

	if b.Code != "" {
		code, ok := parseCode(b.Code)
		if !ok {
			return nil, fmt.Errorf("unknown building code %q", b.Code)
		}
		out.Code = &code
	}
	if b.Fieryness != "" {
		f, ok := parseFieryness(b.Fieryness)
		if !ok {
			return nil, fmt.Errorf("unknown fieryness %q", b.Fieryness)
		}
		out.Fieryness = &f
	}
	if b.Brokenness != nil {
		v := *b.Brokenness
		if v < 0 || v > core.MaxBrokenness {
			return nil, fmt.Errorf("brokenness %d out of range", v)
		}
		out.SetBrokenness(v)
	}
	return out, nil
}

func (b Blockade) toCore() (*core.Blockade, error) {
	if len(b.Apexes) < 6 || len(b.Apexes)%2 != 0 {
		return nil, fmt.Errorf("need at least three apexes, got %d values", len(b.Apexes))
	}
	c, ok := geo.Centroid(geo.VertexArrayToPoints(b.Apexes))
	if !ok {
		return nil, errors.New("apexes enclose no area")
	}
	return &core.Blockade{
		ID:         core.EntityID(b.ID),
		Position:   core.EntityID(b.Road),
		Apexes:     append([]int(nil), b.Apexes...),
		X:          int(c.X),
		Y:          int(c.Y),
		RepairCost: b.RepairCost,
	}, nil
}

// boundary converts raw edges, requiring a closed chain.
func boundary(raw [][]int) ([]core.Edge, error) {
	if len(raw) < 3 {
		return nil, fmt.Errorf("need at least three edges, got %d", len(raw))
	}
	edges := make([]core.Edge, len(raw))
	for i, e := range raw {
		if len(e) != 4 {
			return nil, fmt.Errorf("edge %d: want [x1, y1, x2, y2], got %v", i, e)
		}
		edges[i] = core.Edge{StartX: e[0], StartY: e[1], EndX: e[2], EndY: e[3]}
	}
	for i, e := range edges {
		next := edges[(i+1)%len(edges)]
		if e.EndX != next.StartX || e.EndY != next.StartY {
			return nil, fmt.Errorf("edge %d does not meet edge %d", i, (i+1)%len(edges))
		}
	}
	return edges, nil
}

func parseCode(s string) (core.BuildingCode, bool) {
	for _, c := range core.BuildingCodes {
		if c.String() == s {
			return c, true
		}
	}
	return 0, false
}

func parseFieryness(s string) (core.Fieryness, bool) {
	for f := core.Unburnt; f <= core.BurntOut; f++ {
		if f.String() == s {
			return f, true
		}
	}
	return 0, false
}
