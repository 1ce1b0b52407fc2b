package geo

import "math"

// minCircleSegments keeps tiny circles from collapsing into slivers.
const minCircleSegments = 8

// FlattenCircle approximates a circle by an inscribed polygon whose chords
// never deviate from the arc by more than tolerance. The vertex count is a
// multiple of four with a vertex on each axis, so the polygon's bounding box
// equals the circle's.
func FlattenCircle(center Point, radius, tolerance float64) []Point {
	if radius <= 0 {
		return nil
	}
	n := minCircleSegments
	if tolerance > 0 && tolerance < radius {
		step := 2 * math.Acos(1-tolerance/radius)
		n = int(math.Ceil(2 * math.Pi / step))
	}
	if n < minCircleSegments {
		n = minCircleSegments
	}
	if r := n % 4; r != 0 {
		n += 4 - r
	}
	pts := make([]Point, n)
	for i := range pts {
		angle := 2 * math.Pi * float64(i) / float64(n)
		pts[i] = Point{
			X: center.X + radius*math.Cos(angle),
			Y: center.Y + radius*math.Sin(angle),
		}
	}
	// snap axis vertices so the bounds are exact
	q := n / 4
	pts[0] = Point{X: center.X + radius, Y: center.Y}
	pts[q] = Point{X: center.X, Y: center.Y + radius}
	pts[2*q] = Point{X: center.X - radius, Y: center.Y}
	pts[3*q] = Point{X: center.X, Y: center.Y - radius}
	return pts
}
