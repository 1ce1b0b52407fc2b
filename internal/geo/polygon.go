package geo

import "math"

// SignedArea returns the shoelace area of the closed vertex list:
// positive for counterclockwise winding.
func SignedArea(pts []Point) float64 {
	n := len(pts)
	if n < 3 {
		return 0
	}
	var sum float64
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		sum += pts[i].X*pts[j].Y - pts[j].X*pts[i].Y
	}
	return sum / 2
}

// Area returns the unsigned area of the closed vertex list.
func Area(pts []Point) float64 {
	return math.Abs(SignedArea(pts))
}

// Centroid returns the area centroid of the closed vertex list.
// ok is false for degenerate (zero area) polygons.
func Centroid(pts []Point) (c Point, ok bool) {
	a := SignedArea(pts)
	if a == 0 {
		return Point{}, false
	}
	n := len(pts)
	var cx, cy float64
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		cross := pts[i].X*pts[j].Y - pts[j].X*pts[i].Y
		cx += (pts[i].X + pts[j].X) * cross
		cy += (pts[i].Y + pts[j].Y) * cross
	}
	return Point{X: cx / (6 * a), Y: cy / (6 * a)}, true
}

// BoundingBox returns the axis-aligned bounds of pts.
func BoundingBox(pts []Point) (lo, hi Point) {
	if len(pts) == 0 {
		return Point{}, Point{}
	}
	lo, hi = pts[0], pts[0]
	for _, p := range pts[1:] {
		lo.X = math.Min(lo.X, p.X)
		lo.Y = math.Min(lo.Y, p.Y)
		hi.X = math.Max(hi.X, p.X)
		hi.Y = math.Max(hi.Y, p.Y)
	}
	return lo, hi
}

// EnsureCCW returns pts in counterclockwise order.
func EnsureCCW(pts []Point) []Point {
	if SignedArea(pts) >= 0 {
		return pts
	}
	out := make([]Point, len(pts))
	for i, p := range pts {
		out[len(pts)-1-i] = p
	}
	return out
}

// Apexes flattens a simple polygon into integer x,y pairs, truncating toward
// zero and dropping consecutive duplicates, including a closing vertex equal
// to the first. Truncation can move an outline up to 1 mm past the area it
// was built from.
func Apexes(poly SimplePolygon) []int {
	out := make([]int, 0, 2*len(poly))
	for _, p := range poly {
		x, y := int(p.X), int(p.Y)
		if n := len(out); n >= 2 && out[n-2] == x && out[n-1] == y {
			continue
		}
		out = append(out, x, y)
	}
	for n := len(out); n >= 4 && out[0] == out[n-2] && out[1] == out[n-1]; n = len(out) {
		out = out[:n-2]
	}
	return out
}
