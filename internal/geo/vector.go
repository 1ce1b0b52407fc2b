// Package geo provides the 2D geometry used to turn collapsed walls into
// road blockades: points and vectors in millimetres, polygon regions with
// boolean operations, circle flattening and vertex-list measurements.
package geo

import (
	"math"

	"github.com/rescuesim/collapse/pkg/core"
)

// Point is a location in the world plane.
type Point struct {
	X float64
	Y float64
}

// Plus translates p by v.
func (p Point) Plus(v Vector) Point {
	return Point{X: p.X + v.DX, Y: p.Y + v.DY}
}

// Minus returns the vector from o to p.
func (p Point) Minus(o Point) Vector {
	return Vector{DX: p.X - o.X, DY: p.Y - o.Y}
}

// Vector is a displacement in the world plane.
type Vector struct {
	DX float64
	DY float64
}

// Length returns the euclidean length of v.
func (v Vector) Length() float64 {
	return math.Hypot(v.DX, v.DY)
}

// Scale multiplies v by s.
func (v Vector) Scale(s float64) Vector {
	return Vector{DX: v.DX * s, DY: v.DY * s}
}

// Normalised returns a unit vector in the direction of v, or the zero vector.
func (v Vector) Normalised() Vector {
	l := v.Length()
	if l == 0 {
		return Vector{}
	}
	return v.Scale(1 / l)
}

// Normal returns v rotated a quarter turn counterclockwise.
func (v Vector) Normal() Vector {
	return Vector{DX: -v.DY, DY: v.DX}
}

// Line is a segment from Origin along Direction.
type Line struct {
	Origin    Point
	Direction Vector
}

// NewLine creates the segment from start to end.
func NewLine(start, end Point) Line {
	return Line{Origin: start, Direction: end.Minus(start)}
}

// EndPoint returns the far end of the segment.
func (l Line) EndPoint() Point {
	return l.Origin.Plus(l.Direction)
}

// PointAt returns the point at parameter t (0 = origin, 1 = end point).
func (l Line) PointAt(t float64) Point {
	return l.Origin.Plus(l.Direction.Scale(t))
}

// EdgeLine converts a boundary edge into a line.
func EdgeLine(e core.Edge) Line {
	return NewLine(
		Point{X: float64(e.StartX), Y: float64(e.StartY)},
		Point{X: float64(e.EndX), Y: float64(e.EndY)},
	)
}

// EdgesToPoints returns the vertex chain described by a closed edge list:
// the start of the first edge followed by the end of every edge, without the
// closing vertex.
func EdgesToPoints(edges []core.Edge) []Point {
	if len(edges) == 0 {
		return nil
	}
	pts := make([]Point, 0, len(edges)+1)
	pts = append(pts, Point{X: float64(edges[0].StartX), Y: float64(edges[0].StartY)})
	for _, e := range edges {
		pts = append(pts, Point{X: float64(e.EndX), Y: float64(e.EndY)})
	}
	if pts[0] == pts[len(pts)-1] {
		pts = pts[:len(pts)-1]
	}
	return pts
}

// VertexArrayToPoints converts a flat x,y array into points.
// A trailing odd value is ignored.
func VertexArrayToPoints(apexes []int) []Point {
	pts := make([]Point, 0, len(apexes)/2)
	for i := 0; i+1 < len(apexes); i += 2 {
		pts = append(pts, Point{X: float64(apexes[i]), Y: float64(apexes[i+1])})
	}
	return pts
}
