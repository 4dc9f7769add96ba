package recast

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gorustyt/gorecast/common"
)

const volumeArea = 7

// volumeField is a 10x10x10 world unit field with 0.5 cells and 0.1 voxels.
func volumeField() *RcHeightfield {
	return RcCreateHeightfield(20, 20, common.Vec3{0, 0, 0}, common.Vec3{10, 10, 10}, 0.5, 0.1, 0)
}

func cellCenter(hf *RcHeightfield, x, z int) (float64, float64) {
	return hf.Bmin[0] + (float64(x)+0.5)*hf.Cs, hf.Bmin[2] + (float64(z)+0.5)*hf.Cs
}

// spanWorld returns the world y range of the only span of column (x, z).
func spanWorld(t *testing.T, hf *RcHeightfield, x, z int) (lo, hi float64) {
	col := hf.Column(x, z)
	require.Len(t, col, 1, "cell %d,%d", x, z)
	return hf.Bmin[1] + float64(col[0].Smin)*hf.Ch, hf.Bmin[1] + float64(col[0].Smax)*hf.Ch
}

func TestRasterizeSphere(t *testing.T) {
	hf := volumeField()
	center := common.Vec3{5, 5, 5}
	const radius = 3.0
	RcRasterizeSphere(nil, hf, center, radius, volumeArea, 1)

	tolerance := hf.Cs * math.Sqrt2 / 2
	filled := 0
	for z := 0; z < hf.Height; z++ {
		for x := 0; x < hf.Width; x++ {
			cx, cz := cellCenter(hf, x, z)
			d := math.Hypot(cx-center[0], cz-center[2])
			col := hf.Column(x, z)
			if len(col) == 0 {
				assert.Greater(t, d, radius-tolerance, "cell %d,%d inside the sphere has no span", x, z)
				continue
			}
			filled++
			assert.LessOrEqual(t, d, radius+tolerance, "cell %d,%d outside the sphere has a span", x, z)
			assert.Equal(t, volumeArea, col[0].Area)
			if d < radius {
				half := math.Sqrt(radius*radius - d*d)
				lo, hi := spanWorld(t, hf, x, z)
				assert.LessOrEqual(t, lo, center[1]-half+1e-9, "cell %d,%d", x, z)
				assert.GreaterOrEqual(t, hi, center[1]+half-1e-9, "cell %d,%d", x, z)
				assert.GreaterOrEqual(t, lo, center[1]-radius-hf.Ch, "cell %d,%d", x, z)
				assert.LessOrEqual(t, hi, center[1]+radius+hf.Ch, "cell %d,%d", x, z)
			}
		}
	}
	assert.Greater(t, filled, 80)
}

func TestRasterizeSphereOutsideField(t *testing.T) {
	hf := volumeField()
	RcRasterizeSphere(nil, hf, common.Vec3{-5, 5, -5}, 2, volumeArea, 1)
	assert.Zero(t, hf.WalkableSpanCount())
}

func TestRasterizeCylinder(t *testing.T) {
	hf := volumeField()
	RcRasterizeCylinder(nil, hf, common.Vec3{5, 1, 5}, common.Vec3{5, 3, 5}, 1, volumeArea, 1)

	lo, hi := spanWorld(t, hf, 10, 10)
	assert.InDelta(t, 1.0, lo, hf.Ch)
	assert.InDelta(t, 3.0, hi, hf.Ch)
	assert.Empty(t, hf.Column(14, 10), "cells beyond the radius stay empty")
	assert.Empty(t, hf.Column(10, 5))
}

func TestRasterizeCapsule(t *testing.T) {
	hf := volumeField()
	RcRasterizeCapsule(nil, hf, common.Vec3{5, 2, 5}, common.Vec3{5, 4, 5}, 1, volumeArea, 1)

	lo, hi := spanWorld(t, hf, 10, 10)
	assert.InDelta(t, 1.0, lo, hf.Ch)
	assert.InDelta(t, 5.0, hi, hf.Ch)

	// Near the rim only the hemispheres are hit.
	lo, hi = spanWorld(t, hf, 11, 10)
	assert.Greater(t, lo, 1.0-hf.Ch)
	assert.Less(t, hi, 5.0+hf.Ch)
	assert.Empty(t, hf.Column(14, 10))
}

func TestRasterizeBox(t *testing.T) {
	hf := volumeField()
	halfEdges := [3]common.Vec3{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}}
	RcRasterizeBox(nil, hf, common.Vec3{5, 2, 5}, halfEdges, volumeArea, 1)

	for x := 8; x <= 11; x++ {
		for z := 8; z <= 11; z++ {
			lo, hi := spanWorld(t, hf, x, z)
			assert.InDelta(t, 1.0, lo, hf.Ch, "cell %d,%d", x, z)
			assert.InDelta(t, 3.0, hi, hf.Ch, "cell %d,%d", x, z)
		}
	}
	assert.Empty(t, hf.Column(5, 10))
	assert.Empty(t, hf.Column(10, 14))
}

func TestRasterizeRotatedBox(t *testing.T) {
	hf := volumeField()
	s := math.Sqrt2 / 2
	// A 2x2x2 box turned 45 degrees around the y-axis.
	halfEdges := [3]common.Vec3{{s, 0, s}, {0, 1, 0}, {-s, 0, s}}
	RcRasterizeBox(nil, hf, common.Vec3{5, 2, 5}, halfEdges, volumeArea, 1)

	lo, hi := spanWorld(t, hf, 10, 10)
	assert.InDelta(t, 1.0, lo, hf.Ch)
	assert.InDelta(t, 3.0, hi, hf.Ch)
	// The corners of the axis aligned footprint lie outside the turned box.
	assert.Empty(t, hf.Column(7, 7))
	assert.Empty(t, hf.Column(12, 12))
}

func TestRasterizeConvex(t *testing.T) {
	hf := volumeField()
	verts := []float64{
		4, 1, 4,
		6, 1, 4,
		4, 3, 4,
		6, 3, 4,
		4, 1, 6,
		6, 1, 6,
		4, 3, 6,
		6, 3, 6,
	}
	tris := []int{
		0, 2, 1, 1, 2, 3, // -z
		4, 5, 6, 5, 7, 6, // +z
		0, 4, 2, 2, 4, 6, // -x
		1, 3, 5, 3, 7, 5, // +x
		0, 1, 4, 1, 5, 4, // -y
		2, 6, 3, 3, 6, 7, // +y
	}
	RcRasterizeConvex(nil, hf, verts, tris, volumeArea, 1)

	for x := 8; x <= 11; x++ {
		for z := 8; z <= 11; z++ {
			lo, hi := spanWorld(t, hf, x, z)
			assert.InDelta(t, 1.0, lo, hf.Ch, "cell %d,%d", x, z)
			assert.InDelta(t, 3.0, hi, hf.Ch, "cell %d,%d", x, z)
		}
	}
	assert.Empty(t, hf.Column(5, 10))
}

func TestRasterizeVolumeMergesWithTriangles(t *testing.T) {
	hf := volumeField()
	floor := []float64{
		0, 0, 0,
		10, 0, 0,
		10, 0, 10,
		0, 0, 10,
	}
	RcRasterizeTriangles(nil, floor, []int{0, 2, 1, 0, 3, 2}, []int{RC_WALKABLE_AREA, RC_WALKABLE_AREA}, hf, 1)
	RcRasterizeBox(nil, hf, common.Vec3{5, 0.5, 5}, [3]common.Vec3{{1, 0, 0}, {0, 0.5, 0}, {0, 0, 1}}, volumeArea, 1)

	col := hf.Column(10, 10)
	require.Len(t, col, 1, "the box sits on the floor and merges with its span")
	assert.Equal(t, 0, col[0].Smin)
	assert.Equal(t, volumeArea, col[0].Area, "the box top is far above the floor")
}
