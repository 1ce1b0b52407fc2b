package collapse

import (
	"fmt"

	"github.com/rescuesim/collapse/internal/blockade"
	"github.com/rescuesim/collapse/internal/cache"
	"github.com/rescuesim/collapse/internal/config"
	"github.com/rescuesim/collapse/internal/damage"
	"github.com/rescuesim/collapse/internal/logging"
	"github.com/rescuesim/collapse/internal/world"
)

// New wires a simulator onto a world model: the damage model and extent
// sampler share one seeded source, and a building cache follows the world.
func New(cfg config.CollapseConfig, w *world.Model, log logging.Logger) (*Simulator, error) {
	src := damage.NewSource(cfg.Seed)
	model, err := damage.NewModel(cfg.DamageParams(), src)
	if err != nil {
		return nil, fmt.Errorf("building damage model: %w", err)
	}

	buildings := cache.NewBuildingCache()
	buildings.Seed(w)
	w.AddListener(buildings)

	gen := blockade.NewGenerator(blockade.Config{
		FloorHeight: cfg.FloorHeight * 1000,
		Extent:      src.Uniform(cfg.WallExtentMin, cfg.WallExtentMax),
		Flatness:    cfg.Flatness,
	}, w, w, log)

	return NewSimulator(NewEngine(model, buildings, log), gen, cfg.CreateRoadBlockage, log)
}
