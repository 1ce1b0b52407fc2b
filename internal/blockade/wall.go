package blockade

import (
	"errors"

	"github.com/rescuesim/collapse/internal/geo"
	"github.com/rescuesim/collapse/pkg/core"
)

// WallArea returns the region covered by the walls of b when they fall
// outward by d: every edge swept d along its outward normal, with a disc of
// radius d on each end point to close the corners. d <= 0 covers nothing.
func WallArea(b *core.Building, d, flatness float64) (geo.Region, error) {
	if d <= 0 || len(b.Edges) == 0 {
		return geo.EmptyRegion(), nil
	}

	// The left normal points out of a clockwise footprint.
	side := 1.0
	if geo.SignedArea(geo.EdgesToPoints(b.Edges)) > 0 {
		side = -1
	}

	parts := make([]geo.Region, 0, 3*len(b.Edges))
	for _, e := range b.Edges {
		line := geo.EdgeLine(e)
		start, end := line.Origin, line.EndPoint()
		offset := line.Direction.Normal().Normalised().Scale(side * d)

		quad, err := geo.PolygonRegion([]geo.Point{start, end, end.Plus(offset), start.Plus(offset)})
		switch {
		case errors.Is(err, geo.ErrDegeneratePolygon):
			// zero-length edge, the caps still cover its end point
		case err != nil:
			return geo.Region{}, err
		default:
			parts = append(parts, quad)
		}

		for _, p := range []geo.Point{start, end} {
			disc, err := geo.CircleRegion(p, d, flatness)
			if err != nil {
				return geo.Region{}, err
			}
			parts = append(parts, disc)
		}
	}
	return geo.UnionAll(parts)
}
