package convert

import (
	"encoding/json"

	"github.com/rescuesim/collapse/internal/model"
	"github.com/rescuesim/collapse/pkg/core"
	geom "github.com/peterstace/simplefeatures/geom"
)

// pointToXY converts a geom.Point to integer world coordinates
func pointToXY(p geom.Point) (x, y int) {
	coord, ok := p.Coordinates()
	if !ok {
		return 0, 0
	}
	return int(coord.XY.X), int(coord.XY.Y)
}

// BlockadeRecordToCore converts a stored blockade back into a core.Blockade
func BlockadeRecordToCore(rec model.BlockadeRecord) (core.Blockade, error) {
	var apexes []int
	if len(rec.Apexes) > 0 {
		if err := json.Unmarshal(rec.Apexes, &apexes); err != nil {
			return core.Blockade{}, err
		}
	}
	x, y := pointToXY(rec.Centroid)
	return core.Blockade{
		ID:         core.EntityID(rec.BlockadeID),
		Position:   core.EntityID(rec.RoadID),
		Apexes:     apexes,
		X:          x,
		Y:          y,
		RepairCost: rec.RepairCost,
	}, nil
}

// RunToCore converts a GORM model.Run to a core.Run
func RunToCore(r model.Run) core.Run {
	return core.Run{
		ID:        r.ID,
		Name:      r.Name,
		Seed:      r.Seed,
		StartTime: r.StartTime,
	}
}
