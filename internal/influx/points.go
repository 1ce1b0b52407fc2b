package influx

import (
	"strconv"
	"time"

	influxdb2_write "github.com/influxdata/influxdb-client-go/v2/api/write"

	"github.com/rescuesim/collapse/internal/collapse"
	"github.com/rescuesim/collapse/internal/damage"
	"github.com/rescuesim/collapse/pkg/core"
)

const (
	MeasurementDegree = "collapse_degree"
	MeasurementStep   = "collapse_step"
)

// StepPoints converts a step report into points. Earthquake steps get one
// collapse_degree point per building code and degree.
func StepPoints(run string, r *collapse.StepReport, ts time.Time) []*influxdb2_write.Point {
	var points []*influxdb2_write.Point

	if r.Summary.Earthquake != nil {
		for _, code := range core.BuildingCodes {
			counts := r.Summary.Earthquake[code]
			for _, d := range damage.Degrees {
				points = append(points, influxdb2_write.NewPoint(
					MeasurementDegree,
					map[string]string{
						"run":    run,
						"code":   code.String(),
						"degree": d.String(),
					},
					map[string]interface{}{
						"buildings": counts[d],
					},
					ts,
				))
			}
		}
	}

	points = append(points, influxdb2_write.NewPoint(
		MeasurementStep,
		map[string]string{
			"run":  run,
			"time": strconv.Itoa(r.Time),
		},
		map[string]interface{}{
			"damaged":        len(r.Changed),
			"fire_damaged":   r.Summary.FireDamaged,
			"blockades":      len(r.NewBlockades()),
			"roads_blocked":  len(r.Blockades),
			"blockade_error": r.BlockadeErr != nil,
			"duration_ms":    float64(r.Duration.Microseconds()) / 1000,
		},
		ts,
	))
	return points
}
