// Package convert provides functions to convert between GORM models and core models
package convert

import (
	"database/sql"
	"encoding/json"

	"github.com/rescuesim/collapse/internal/model"
	"github.com/rescuesim/collapse/pkg/core"
	geom "github.com/peterstace/simplefeatures/geom"
	"gorm.io/datatypes"
)

// Georeferencer maps world millimetres to WGS84 longitude/latitude.
type Georeferencer interface {
	ToWGS84(xmm, ymm float64) (lon, lat float64)
}

// xyToPoint converts world coordinates to a geom.Point
func xyToPoint(x, y int) geom.Point {
	coords := geom.Coordinates{XY: geom.XY{X: float64(x), Y: float64(y)}}
	// integer coordinates are always finite, so construction cannot fail
	pt, _ := geom.NewPoint(coords)
	return pt
}

// apexesToJSON converts a flat vertex array to datatypes.JSON for DB storage.
func apexesToJSON(apexes []int) datatypes.JSON {
	if len(apexes) == 0 {
		return datatypes.JSON("[]")
	}
	data, _ := json.Marshal(apexes)
	return datatypes.JSON(data)
}

// CoreToRun converts a core.Run to a GORM model.Run
func CoreToRun(r core.Run) model.Run {
	return model.Run{
		ID:        r.ID,
		Name:      r.Name,
		Seed:      r.Seed,
		StartTime: r.StartTime,
	}
}

// CoreToStepSummary converts a core.StepRecord into its summary row
func CoreToStepSummary(runID uint, s core.StepRecord) model.StepSummary {
	return model.StepSummary{
		RunID:         runID,
		Time:          s.Time,
		Updates:       len(s.BrokennessUpdates),
		FireDamaged:   s.FireDamaged,
		Blockades:     len(s.Blockades),
		BlockadeError: s.BlockadeErr,
		DurationMs:    float32(s.Duration.Microseconds()) / 1000,
	}
}

// CoreToBrokennessUpdates converts the brokenness writes of a step
func CoreToBrokennessUpdates(runID uint, s core.StepRecord) []model.BrokennessUpdate {
	out := make([]model.BrokennessUpdate, 0, len(s.BrokennessUpdates))
	for _, u := range s.BrokennessUpdates {
		out = append(out, model.BrokennessUpdate{
			RunID:      runID,
			Time:       s.Time,
			BuildingID: int32(u.BuildingID),
			Brokenness: u.Brokenness,
		})
	}
	return out
}

// CoreToBlockadeRecord converts a core.Blockade to a GORM model.BlockadeRecord.
// geo may be nil, leaving longitude and latitude NULL.
func CoreToBlockadeRecord(runID uint, time int, b core.Blockade, geo Georeferencer) model.BlockadeRecord {
	rec := model.BlockadeRecord{
		RunID:      runID,
		Time:       time,
		BlockadeID: int32(b.ID),
		RoadID:     int32(b.Position),
		Apexes:     apexesToJSON(b.Apexes),
		Centroid:   xyToPoint(b.X, b.Y),
		RepairCost: b.RepairCost,
	}
	if geo != nil {
		lon, lat := geo.ToWGS84(float64(b.X), float64(b.Y))
		rec.Longitude = sql.NullFloat64{Float64: lon, Valid: true}
		rec.Latitude = sql.NullFloat64{Float64: lat, Valid: true}
	}
	return rec
}
