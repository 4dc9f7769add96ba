package recast

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gorustyt/gorecast/common"
)

func TestMarkWalkableTriangles(t *testing.T) {
	verts := []float64{
		0, 0, 0,
		1, 0, 0,
		0, 0, -1,
	}

	areas := RcMarkWalkableTriangles(nil, 45, verts, []int{0, 1, 2})
	assert.Equal(t, []int{RC_WALKABLE_AREA}, areas, "one walkable triangle")

	areas = RcMarkWalkableTriangles(nil, 45, verts, []int{0, 2, 1})
	assert.Equal(t, []int{RC_NULL_AREA}, areas, "a downward facing triangle is not walkable")

	steep := []float64{
		0, 0, 0,
		1, 2, 0,
		0, 0, -1,
	}
	areas = RcMarkWalkableTriangles(nil, 45, steep, []int{0, 1, 2})
	assert.Equal(t, []int{RC_NULL_AREA}, areas, "a slope steeper than the limit is not walkable")
	areas = RcMarkWalkableTriangles(nil, 70, steep, []int{0, 1, 2})
	assert.Equal(t, []int{RC_WALKABLE_AREA}, areas, "a slope below a higher limit is walkable")
}

func TestClearUnwalkableTriangles(t *testing.T) {
	verts := []float64{
		0, 0, 0,
		1, 0, 0,
		0, 0, -1,
	}

	areas := []int{42}
	RcClearUnwalkableTriangles(nil, 45, verts, []int{0, 1, 2}, areas)
	assert.Equal(t, 42, areas[0], "walkable triangles keep their area")

	RcClearUnwalkableTriangles(nil, 45, verts, []int{0, 2, 1}, areas)
	assert.Equal(t, RC_NULL_AREA, areas[0], "unwalkable triangles are cleared")
}

func TestRasterizeTriangle(t *testing.T) {
	verts := []float64{
		0, 0, 0,
		1, 0, 0,
		0, 0, -1,
	}
	bmin, bmax := RcCalcBounds(verts)
	w, h := RcCalcGridSize(bmin, bmax, 0.5)
	require.Equal(t, 2, w)
	require.Equal(t, 2, h)
	solid := RcCreateHeightfield(w, h, bmin, bmax, 0.5, 0.5, 0)

	const area = 42
	RcRasterizeTriangle(nil, verts[0:3], verts[3:6], verts[6:9], area, solid, 1)

	assert.Empty(t, solid.Column(1, 0))
	for _, c := range [][2]int{{0, 0}, {0, 1}, {1, 1}} {
		assert.Equal(t, []RcSpan{{Smin: 0, Smax: 1, Area: area, Next: RC_NULL_SPAN}}, solid.Column(c[0], c[1]), "cell %v", c)
	}
}

func TestRasterizeTriangleOutsideField(t *testing.T) {
	// The bounding boxes overlap but the triangle itself misses the field.
	solid := RcCreateHeightfield(10, 10, common.Vec3{0, 0, 0}, common.Vec3{10, 10, 10}, 1, 1, 0)
	verts := []float64{
		-10.0, 5.5, -10.0,
		-10.0, 5.5, 3,
		3.0, 5.5, -10.0,
	}
	RcRasterizeTriangle(nil, verts[0:3], verts[3:6], verts[6:9], 42, solid, 1)

	assert.Zero(t, solid.WalkableSpanCount())
	for _, s := range solid.Spans {
		assert.Equal(t, RC_NULL_SPAN, s)
	}
}

func TestRasterizeSkinnyTriangles(t *testing.T) {
	cases := map[string][]float64{
		"along x": {
			5, 0, 0.005,
			5, 0, -0.005,
			-5, 0, 0.005,

			-5, 0, 0.005,
			5, 0, -0.005,
			-5, 0, -0.005,
		},
		"along z": {
			0.005, 0, 5,
			-0.005, 0, 5,
			0.005, 0, -5,

			0.005, 0, -5,
			-0.005, 0, 5,
			-0.005, 0, -5,
		},
	}
	for name, verts := range cases {
		t.Run(name, func(t *testing.T) {
			bmin, bmax := RcCalcBounds(verts)
			w, h := RcCalcGridSize(bmin, bmax, 1)
			solid := RcCreateHeightfield(w, h, bmin, bmax, 1, 1, 0)
			assert.NotPanics(t, func() {
				RcRasterizeTriangleList(nil, verts, []int{42, 42}, solid, 1)
			})
		})
	}
}

func TestRasterizeTrianglesIndexed(t *testing.T) {
	verts := []float64{
		0, 0, 0,
		4, 0, 0,
		4, 0, 4,
		0, 0, 4,
	}
	tris := []int{0, 2, 1, 0, 3, 2}
	bmin, bmax := RcCalcBounds(verts)
	bmax[1] = 2
	solid := RcCreateHeightfield(4, 4, bmin, bmax, 1, 0.5, 0)

	areas := RcMarkWalkableTriangles(nil, 45, verts, tris)
	RcRasterizeTriangles(nil, verts, tris, areas, solid, 1)

	assert.Equal(t, 16, solid.WalkableSpanCount())
	for z := 0; z < 4; z++ {
		for x := 0; x < 4; x++ {
			col := solid.Column(x, z)
			require.Len(t, col, 1, "cell %d,%d", x, z)
			assert.Equal(t, 0, col[0].Smin)
			assert.Equal(t, 1, col[0].Smax)
		}
	}
}

func TestRasterizeRaisedTriangle(t *testing.T) {
	verts := []float64{
		0, 1, 0,
		2, 1, 0,
		2, 1, 2,
		0, 1, 2,
	}
	tris := []int{0, 2, 1, 0, 3, 2}
	solid := RcCreateHeightfield(2, 2, common.Vec3{0, 0, 0}, common.Vec3{2, 4, 2}, 1, 0.25, 0)
	RcRasterizeTriangles(nil, verts, tris, []int{RC_WALKABLE_AREA, RC_WALKABLE_AREA}, solid, 1)

	col := solid.Column(1, 1)
	require.Len(t, col, 1)
	assert.Equal(t, 4, col[0].Smin)
	assert.Equal(t, 5, col[0].Smax, "a flat span is one voxel thick")
}
