package recast

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func contourCorners(c *RcContour) [][2]int {
	var res [][2]int
	for i := 0; i < c.Nverts; i++ {
		res = append(res, [2]int{c.Verts[i*4], c.Verts[i*4+2]})
	}
	return res
}

func TestBuildContoursSquare(t *testing.T) {
	chf := flatField(t, 10)
	RcErodeWalkableArea(nil, 1, chf)
	require.NoError(t, RcPartition(nil, chf, PartitionWatershed, 4, 400))

	cset, err := RcBuildContours(nil, chf, 1.3, 12, RC_CONTOUR_TESS_WALL_EDGES)
	require.NoError(t, err)
	require.Equal(t, 1, cset.Nconts())

	c := cset.Conts[0]
	assert.Equal(t, 4, c.Nverts)
	assert.ElementsMatch(t, [][2]int{{1, 1}, {9, 1}, {9, 9}, {1, 9}}, contourCorners(c))
	assert.Equal(t, 4*8, c.Nrverts, "one raw vertex per boundary cell edge")
	assert.Equal(t, RC_WALKABLE_AREA, c.Area)
	assert.NotZero(t, c.Reg)
	for i := 0; i < c.Nverts; i++ {
		assert.Equal(t, 1, c.Verts[i*4+1], "corner height")
		assert.Zero(t, c.Verts[i*4+3]&RC_CONTOUR_REG_MASK, "wall edge")
	}
	assert.Equal(t, 1.3, cset.MaxError)
}

func TestBuildContoursTessellatesLongWalls(t *testing.T) {
	chf := flatField(t, 30)
	require.NoError(t, RcPartition(nil, chf, PartitionMonotone, 4, 400))

	cset, err := RcBuildContours(nil, chf, 1.3, 8, RC_CONTOUR_TESS_WALL_EDGES)
	require.NoError(t, err)
	require.Equal(t, 1, cset.Nconts())

	c := cset.Conts[0]
	assert.Greater(t, c.Nverts, 4)
	for i := 0; i < c.Nverts; i++ {
		j := (i + 1) % c.Nverts
		dx := c.Verts[j*4] - c.Verts[i*4]
		dz := c.Verts[j*4+2] - c.Verts[i*4+2]
		assert.LessOrEqual(t, dx*dx+dz*dz, 8*8, "edge %d", i)
	}

	plain, err := RcBuildContours(nil, chf, 1.3, 8, 0)
	require.NoError(t, err)
	assert.Equal(t, 4, plain.Conts[0].Nverts, "walls are kept long without the flag")
}

func TestBuildContoursDeterministic(t *testing.T) {
	build := func() *RcContourSet {
		g := (&testGeom{}).
			quad(0, 0, 10, 4, 0).
			quad(0, 6, 10, 10, 0).
			quad(0, 4, 4, 6, 0).
			quad(6, 4, 10, 6, 0)
		return runPipeline(t, g, testConfig()).cset
	}
	a := build()
	b := build()
	require.Equal(t, a.Nconts(), b.Nconts())
	for i := range a.Conts {
		assert.Equal(t, a.Conts[i].Verts, b.Conts[i].Verts)
		assert.Equal(t, a.Conts[i].Rverts, b.Conts[i].Rverts)
	}
}

func TestBuildContoursMergesHoles(t *testing.T) {
	g := (&testGeom{}).
		quad(0, 0, 10, 4, 0).
		quad(0, 6, 10, 10, 0).
		quad(0, 4, 4, 6, 0).
		quad(6, 4, 10, 6, 0)
	p := runPipeline(t, g, testConfig())
	require.Positive(t, p.cset.Nconts())

	regs := map[int]bool{}
	for _, c := range p.cset.Conts {
		assert.False(t, regs[c.Reg], "region %d has more than one contour", c.Reg)
		regs[c.Reg] = true
		assert.GreaterOrEqual(t, c.Nverts, 3)
		assert.Positive(t, calcAreaOfPolygon2D(c.Verts, c.Nverts), "outlines wind counter clockwise")
	}
}

func TestBuildContoursEmpty(t *testing.T) {
	chf := flatField(t, 4)
	RcErodeWalkableArea(nil, 4, chf)
	require.NoError(t, RcPartition(nil, chf, PartitionWatershed, 0, 0))

	cset, err := RcBuildContours(nil, chf, 1.3, 12, RC_CONTOUR_TESS_WALL_EDGES)
	require.NoError(t, err)
	assert.Zero(t, cset.Nconts())
}

// squareContour returns a 4x4 contour of region reg at (x, z). Clockwise
// ones have a negative area and count as holes.
func squareContour(reg, x, z int, clockwise bool) *RcContour {
	corners := [][2]int{{x, z}, {x, z + 4}, {x + 4, z + 4}, {x + 4, z}}
	if clockwise {
		corners = [][2]int{{x, z}, {x + 4, z}, {x + 4, z + 4}, {x, z + 4}}
	}
	c := &RcContour{Reg: reg, Area: RC_WALKABLE_AREA, Nverts: len(corners)}
	for _, p := range corners {
		c.Verts = append(c.Verts, p[0], 0, p[1], 0)
	}
	return c
}

func TestMergeHolesNeedsOutline(t *testing.T) {
	hole := squareContour(1, 2, 2, true)
	require.Negative(t, calcAreaOfPolygon2D(hole.Verts, hole.Nverts))
	outline := squareContour(1, 0, 0, false)
	require.Positive(t, calcAreaOfPolygon2D(outline.Verts, outline.Nverts))

	t.Run("hole without outline", func(t *testing.T) {
		cset := &RcContourSet{Conts: []*RcContour{hole}}
		err := mergeHoles(nil, cset, 1)
		assert.ErrorIs(t, err, ErrContourOutline)
		assert.ErrorContains(t, err, "bad outline for region 1")
	})

	t.Run("two outlines", func(t *testing.T) {
		cset := &RcContourSet{Conts: []*RcContour{outline, squareContour(1, 8, 0, false), hole}}
		err := mergeHoles(nil, cset, 1)
		assert.ErrorIs(t, err, ErrContourOutline)
		assert.ErrorContains(t, err, "multiple outlines for region 1")
	})

	t.Run("outlines only", func(t *testing.T) {
		cset := &RcContourSet{Conts: []*RcContour{outline, squareContour(1, 8, 0, false)}}
		assert.NoError(t, mergeHoles(nil, cset, 1), "nothing to merge")
	})
}
