package geo

import (
	"errors"
	"fmt"

	geom "github.com/peterstace/simplefeatures/geom"
)

// ErrDegeneratePolygon is returned when a vertex list does not enclose any area.
var ErrDegeneratePolygon = errors.New("polygon has no area")

// SimplePolygon is a single contour without self-intersections, listed
// without its closing vertex.
type SimplePolygon []Point

// Region is a possibly multi-part polygonal area. Only areal components are
// kept: line and point leftovers of an overlay are dropped.
type Region struct {
	g geom.Geometry
}

// EmptyRegion returns a region covering nothing.
func EmptyRegion() Region {
	return Region{}
}

// PolygonRegion builds a region from a closed vertex list.
func PolygonRegion(pts []Point) (Region, error) {
	if len(pts) < 3 || SignedArea(pts) == 0 {
		return Region{}, ErrDegeneratePolygon
	}
	poly, err := newPolygon(EnsureCCW(pts))
	if err != nil {
		return Region{}, err
	}
	return Region{g: poly.AsGeometry()}, nil
}

// CircleRegion builds the flattened disc of the given radius.
func CircleRegion(center Point, radius, tolerance float64) (Region, error) {
	return PolygonRegion(FlattenCircle(center, radius, tolerance))
}

// IsEmpty reports whether the region covers no area.
func (r Region) IsEmpty() bool {
	return len(polygonsOf(r.g)) == 0
}

// Union returns r ∪ o.
func (r Region) Union(o Region) (Region, error) {
	if r.IsEmpty() {
		return o, nil
	}
	if o.IsEmpty() {
		return r, nil
	}
	g, err := geom.Union(r.g, o.g)
	if err != nil {
		return Region{}, fmt.Errorf("union: %w", err)
	}
	return areal(g)
}

// Intersect returns r ∩ o.
func (r Region) Intersect(o Region) (Region, error) {
	if r.IsEmpty() || o.IsEmpty() {
		return Region{}, nil
	}
	g, err := geom.Intersection(r.g, o.g)
	if err != nil {
		return Region{}, fmt.Errorf("intersection: %w", err)
	}
	return areal(g)
}

// Subtract returns r − o.
func (r Region) Subtract(o Region) (Region, error) {
	if r.IsEmpty() || o.IsEmpty() {
		return r, nil
	}
	g, err := geom.Difference(r.g, o.g)
	if err != nil {
		return Region{}, fmt.Errorf("difference: %w", err)
	}
	return areal(g)
}

// isSingular reports whether the region is exactly one polygon without holes.
func (r Region) isSingular() bool {
	polys := polygonsOf(r.g)
	return len(polys) == 1 && polys[0].NumInteriorRings() == 0
}

// Area returns the total enclosed area.
func (r Region) Area() float64 {
	var total float64
	for _, p := range polygonsOf(r.g) {
		total += Area(ringPoints(p.ExteriorRing()))
		for i := 0; i < p.NumInteriorRings(); i++ {
			total -= Area(ringPoints(p.InteriorRingN(i)))
		}
	}
	return total
}

// Decompose splits the region into simple polygons. Polygons with holes are
// cut through each hole until none remain, so the pieces cover exactly the
// region.
func (r Region) Decompose() ([]SimplePolygon, error) {
	if r.isSingular() {
		p := polygonsOf(r.g)[0]
		return []SimplePolygon{ringPoints(p.ExteriorRing())}, nil
	}
	var out []SimplePolygon
	for _, p := range polygonsOf(r.g) {
		pieces, err := splitHoles(p)
		if err != nil {
			return nil, err
		}
		for _, piece := range pieces {
			out = append(out, SimplePolygon(ringPoints(piece.ExteriorRing())))
		}
	}
	return out, nil
}

// UnionAll folds every region into one.
func UnionAll(regions []Region) (Region, error) {
	acc := EmptyRegion()
	for _, r := range regions {
		var err error
		acc, err = acc.Union(r)
		if err != nil {
			return Region{}, err
		}
	}
	return acc, nil
}

func splitHoles(p geom.Polygon) ([]geom.Polygon, error) {
	if p.NumInteriorRings() == 0 {
		return []geom.Polygon{p}, nil
	}
	lo, hi := BoundingBox(ringPoints(p.ExteriorRing()))
	hlo, hhi := BoundingBox(ringPoints(p.InteriorRingN(0)))
	cut := (hlo.X + hhi.X) / 2
	lo.X, lo.Y, hi.X, hi.Y = lo.X-1, lo.Y-1, hi.X+1, hi.Y+1

	var out []geom.Polygon
	for _, half := range [][]Point{
		{lo, {X: cut, Y: lo.Y}, {X: cut, Y: hi.Y}, {X: lo.X, Y: hi.Y}},
		{{X: cut, Y: lo.Y}, {X: hi.X, Y: lo.Y}, hi, {X: cut, Y: hi.Y}},
	} {
		box, err := newPolygon(half)
		if err != nil {
			return nil, fmt.Errorf("splitting polygon hole: %w", err)
		}
		g, err := geom.Intersection(p.AsGeometry(), box.AsGeometry())
		if err != nil {
			return nil, fmt.Errorf("splitting polygon hole: %w", err)
		}
		for _, part := range polygonsOf(g) {
			pieces, err := splitHoles(part)
			if err != nil {
				return nil, err
			}
			out = append(out, pieces...)
		}
	}
	return out, nil
}

// areal keeps only the polygonal part of an overlay result.
func areal(g geom.Geometry) (Region, error) {
	polys := polygonsOf(g)
	switch len(polys) {
	case 0:
		return Region{}, nil
	case 1:
		return Region{g: polys[0].AsGeometry()}, nil
	default:
		mp, err := geom.NewMultiPolygon(polys)
		if err != nil {
			return Region{}, fmt.Errorf("building multipolygon: %w", err)
		}
		return Region{g: mp.AsGeometry()}, nil
	}
}

func polygonsOf(g geom.Geometry) []geom.Polygon {
	if g.IsEmpty() {
		return nil
	}
	switch g.Type() {
	case geom.TypePolygon:
		p, _ := g.AsPolygon()
		return []geom.Polygon{p}
	case geom.TypeMultiPolygon:
		mp, _ := g.AsMultiPolygon()
		polys := make([]geom.Polygon, 0, mp.NumPolygons())
		for i := 0; i < mp.NumPolygons(); i++ {
			if p := mp.PolygonN(i); !p.IsEmpty() {
				polys = append(polys, p)
			}
		}
		return polys
	case geom.TypeGeometryCollection:
		gc, _ := g.AsGeometryCollection()
		var polys []geom.Polygon
		for i := 0; i < gc.NumGeometries(); i++ {
			polys = append(polys, polygonsOf(gc.GeometryN(i))...)
		}
		return polys
	default:
		return nil
	}
}

// newPolygon builds a single-ring polygon, closing the ring itself.
func newPolygon(pts []Point) (geom.Polygon, error) {
	coords := make([]float64, 0, 2*(len(pts)+1))
	for _, p := range pts {
		coords = append(coords, p.X, p.Y)
	}
	coords = append(coords, pts[0].X, pts[0].Y)
	ring, err := geom.NewLineString(geom.NewSequence(coords, geom.DimXY))
	if err != nil {
		return geom.Polygon{}, fmt.Errorf("building ring: %w", err)
	}
	poly, err := geom.NewPolygon([]geom.LineString{ring})
	if err != nil {
		return geom.Polygon{}, fmt.Errorf("building polygon: %w", err)
	}
	return poly, nil
}

func ringPoints(ls geom.LineString) []Point {
	seq := ls.Coordinates()
	n := seq.Length()
	pts := make([]Point, 0, n)
	for i := 0; i < n; i++ {
		xy := seq.GetXY(i)
		pts = append(pts, Point{X: xy.X, Y: xy.Y})
	}
	if len(pts) > 1 && pts[0] == pts[len(pts)-1] {
		pts = pts[:len(pts)-1]
	}
	return pts
}
