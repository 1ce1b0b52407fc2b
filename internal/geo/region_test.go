package geo

import (
	"testing"

	geom "github.com/peterstace/simplefeatures/geom"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustRegion(t *testing.T, pts []Point) Region {
	t.Helper()
	r, err := PolygonRegion(pts)
	require.NoError(t, err)
	return r
}

func TestPolygonRegion_Degenerate(t *testing.T) {
	_, err := PolygonRegion([]Point{{0, 0}, {1, 1}})
	assert.ErrorIs(t, err, ErrDegeneratePolygon)

	_, err = PolygonRegion([]Point{{0, 0}, {1, 1}, {2, 2}})
	assert.ErrorIs(t, err, ErrDegeneratePolygon)
}

func TestEmptyRegion(t *testing.T) {
	r := EmptyRegion()
	assert.True(t, r.IsEmpty())
	assert.False(t, r.isSingular())
	assert.Equal(t, 0.0, r.Area())

	parts, err := r.Decompose()
	require.NoError(t, err)
	assert.Empty(t, parts)
}

func TestRegion_UnionOverlapping(t *testing.T) {
	a := mustRegion(t, square(0, 0, 10))
	b := mustRegion(t, square(5, 0, 10))

	u, err := a.Union(b)
	require.NoError(t, err)
	assert.InDelta(t, 150, u.Area(), 1e-6)
	assert.True(t, u.isSingular())

	parts, err := u.Decompose()
	require.NoError(t, err)
	require.Len(t, parts, 1)
	lo, hi := BoundingBox(parts[0])
	assert.Equal(t, Point{0, 0}, lo)
	assert.Equal(t, Point{15, 10}, hi)
}

func TestRegion_UnionDisjointIsNotSingular(t *testing.T) {
	a := mustRegion(t, square(0, 0, 10))
	b := mustRegion(t, square(20, 0, 10))

	u, err := a.Union(b)
	require.NoError(t, err)
	assert.False(t, u.isSingular())
	assert.InDelta(t, 200, u.Area(), 1e-6)

	parts, err := u.Decompose()
	require.NoError(t, err)
	assert.Len(t, parts, 2)
}

func TestRegion_Intersect(t *testing.T) {
	a := mustRegion(t, square(0, 0, 10))
	b := mustRegion(t, square(5, 5, 10))

	i, err := a.Intersect(b)
	require.NoError(t, err)
	assert.InDelta(t, 25, i.Area(), 1e-6)

	c := mustRegion(t, square(50, 50, 1))
	none, err := a.Intersect(c)
	require.NoError(t, err)
	assert.True(t, none.IsEmpty())
}

func TestRegion_IntersectTouchingEdgeIsEmpty(t *testing.T) {
	a := mustRegion(t, square(0, 0, 10))
	b := mustRegion(t, square(10, 0, 10))

	i, err := a.Intersect(b)
	require.NoError(t, err)
	assert.True(t, i.IsEmpty(), "shared edge has no area")
}

func TestRegion_Subtract(t *testing.T) {
	a := mustRegion(t, square(0, 0, 10))
	b := mustRegion(t, square(5, 0, 10))

	d, err := a.Subtract(b)
	require.NoError(t, err)
	assert.InDelta(t, 50, d.Area(), 1e-6)

	all, err := a.Subtract(a)
	require.NoError(t, err)
	assert.True(t, all.IsEmpty())

	same, err := a.Subtract(EmptyRegion())
	require.NoError(t, err)
	assert.InDelta(t, 100, same.Area(), 1e-6)
}

func TestRegion_DecomposeSplitsHoles(t *testing.T) {
	outer := mustRegion(t, square(0, 0, 30))
	hole := mustRegion(t, square(10, 10, 10))

	ring, err := outer.Subtract(hole)
	require.NoError(t, err)
	assert.False(t, ring.isSingular(), "a polygon with a hole is not singular")
	assert.InDelta(t, 800, ring.Area(), 1e-6)

	parts, err := ring.Decompose()
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(parts), 2)

	var total float64
	for _, p := range parts {
		total += Area(p)
		piece := mustRegion(t, p)
		overlap, err := piece.Intersect(hole)
		require.NoError(t, err)
		assert.InDelta(t, 0, overlap.Area(), 1e-6, "pieces must not cover the hole")
	}
	assert.InDelta(t, 800, total, 1e-6)
}

func TestUnionAll(t *testing.T) {
	u, err := UnionAll([]Region{
		mustRegion(t, square(0, 0, 10)),
		mustRegion(t, square(10, 0, 10)),
		mustRegion(t, square(20, 0, 10)),
	})
	require.NoError(t, err)
	assert.InDelta(t, 300, u.Area(), 1e-6)
	assert.True(t, u.isSingular())

	empty, err := UnionAll(nil)
	require.NoError(t, err)
	assert.True(t, empty.IsEmpty())
}

func TestCircleRegion(t *testing.T) {
	c, err := CircleRegion(Point{0, 0}, 1000, 10)
	require.NoError(t, err)
	assert.InDelta(t, 3.14159e6, c.Area(), 0.02*3.14159e6)

	_, err = CircleRegion(Point{0, 0}, 0, 10)
	assert.ErrorIs(t, err, ErrDegeneratePolygon)
}

func TestRegion_DecomposeSingularKeepsRing(t *testing.T) {
	tri := []Point{{0, 0}, {10, 0}, {0, 10}}
	r := mustRegion(t, tri)
	require.True(t, r.isSingular())

	parts, err := r.Decompose()
	require.NoError(t, err)
	require.Len(t, parts, 1)
	assert.Len(t, parts[0], 3)
	assert.InDelta(t, 50, Area(parts[0]), 1e-6)
}

func TestPolygonsOf_MultiPart(t *testing.T) {
	a := mustRegion(t, square(0, 0, 10))
	b := mustRegion(t, square(20, 0, 10))
	c := mustRegion(t, square(40, 0, 10))

	ab, err := a.Union(b)
	require.NoError(t, err)
	abc, err := ab.Union(c)
	require.NoError(t, err)

	assert.Equal(t, geom.TypeMultiPolygon, abc.g.Type())
	assert.Len(t, polygonsOf(abc.g), 3)
	assert.Len(t, polygonsOf(a.g), 1)
	assert.Empty(t, polygonsOf(geom.Geometry{}))
}
