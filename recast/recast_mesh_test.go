package recast

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// polyVerts returns the xz coordinates of polygon i.
func polyVerts(mesh *RcPolyMesh, i int) [][2]int {
	p := mesh.Poly(i)
	var res [][2]int
	for j := 0; j < mesh.PolyVertCount(i); j++ {
		v := p[j] * 3
		res = append(res, [2]int{mesh.Verts[v], mesh.Verts[v+2]})
	}
	return res
}

func requireConvex(t *testing.T, mesh *RcPolyMesh, i int) {
	t.Helper()
	vs := polyVerts(mesh, i)
	sign := 0
	for j := range vs {
		a, b, c := vs[j], vs[(j+1)%len(vs)], vs[(j+2)%len(vs)]
		cross := (b[0]-a[0])*(c[1]-a[1]) - (c[0]-a[0])*(b[1]-a[1])
		switch {
		case cross > 0 && sign < 0, cross < 0 && sign > 0:
			require.Fail(t, "polygon is not convex", "poly %d %v", i, vs)
		case cross > 0:
			sign = 1
		case cross < 0:
			sign = -1
		}
	}
}

func requireSymmetricAdjacency(t *testing.T, mesh *RcPolyMesh) int {
	t.Helper()
	nvp := mesh.Nvp
	links := 0
	for i := 0; i < mesh.Npolys; i++ {
		p := mesh.Poly(i)
		nv := mesh.PolyVertCount(i)
		for j := 0; j < nv; j++ {
			n := p[nvp+j]
			if n == RC_MESH_NULL_IDX || n&RC_PORTAL_FLAG != 0 {
				continue
			}
			links++
			va, vb := p[j], p[(j+1)%nv]
			q := mesh.Poly(n)
			qn := mesh.PolyVertCount(n)
			found := false
			for k := 0; k < qn; k++ {
				if q[k] == vb && q[(k+1)%qn] == va {
					assert.Equal(t, i, q[nvp+k], "poly %d edge %d", n, k)
					found = true
				}
			}
			assert.True(t, found, "poly %d does not share edge %d-%d back", n, va, vb)
		}
	}
	return links
}

func TestBuildPolyMeshFlatQuad(t *testing.T) {
	for _, part := range partitions {
		t.Run(part.String(), func(t *testing.T) {
			cfg := testConfig()
			cfg.Partition = part
			p := runPipeline(t, (&testGeom{}).quad(0, 0, 10, 10, 0), cfg)

			assert.Len(t, regionIds(p.chf), 1)
			require.Equal(t, 1, p.cset.Nconts())
			assert.Equal(t, 4, p.cset.Conts[0].Nverts)

			require.NotNil(t, p.pmesh)
			require.Equal(t, 1, p.pmesh.Npolys)
			assert.Equal(t, 4, p.pmesh.PolyVertCount(0))
			assert.Equal(t, 4, p.pmesh.Nverts)
			assert.Equal(t, RC_WALKABLE_AREA, p.pmesh.Areas[0])
			assert.NotZero(t, p.pmesh.Regs[0])
			assert.Len(t, p.pmesh.Flags, 1)
			assert.Equal(t, 6, p.pmesh.Nvp)
			assert.Equal(t, cfg.EdgeMaxError, p.pmesh.MaxEdgeError)
		})
	}
}

func TestBuildPolyMeshSeparateIslands(t *testing.T) {
	cfg := testConfig()
	cfg.Partition = PartitionMonotone
	g := (&testGeom{}).quad(0, 0, 4, 4, 0).quad(6, 0, 10, 4, 0)
	p := runPipeline(t, g, cfg)

	assert.Len(t, regionIds(p.chf), 2)
	require.NotNil(t, p.pmesh)
	require.Equal(t, 2, p.pmesh.Npolys)
	assert.NotEqual(t, p.pmesh.Regs[0], p.pmesh.Regs[1])
	assert.Zero(t, requireSymmetricAdjacency(t, p.pmesh), "islands share no edge")
}

func TestBuildPolyMeshWallSplitsFloor(t *testing.T) {
	g := (&testGeom{}).quad(0, 0, 10, 10, 0).wallX(5, 0, 10, 0, 3)
	p := runPipeline(t, g, testConfig())

	assert.Len(t, regionIds(p.chf), 2)
	require.NotNil(t, p.pmesh)
	require.Equal(t, 2, p.pmesh.Npolys)
	assert.Zero(t, requireSymmetricAdjacency(t, p.pmesh))

	wallCell := int(5 / p.pmesh.Cs)
	for i := 0; i < p.pmesh.Npolys; i++ {
		vs := polyVerts(p.pmesh, i)
		west := vs[0][0] <= wallCell
		for _, v := range vs {
			assert.Equal(t, west, v[0] <= wallCell, "poly %d crosses the wall", i)
		}
	}

	// Neither outline links to the other region: every edge facing the
	// wall borders the eroded strip in front of it.
	require.Len(t, p.cset.Conts, 2)
	for _, c := range p.cset.Conts {
		minx, maxx := 1<<30, -1
		for i := 0; i < c.Nverts; i++ {
			minx, maxx = min(minx, c.Verts[i*4]), max(maxx, c.Verts[i*4])
		}
		west := maxx <= wallCell
		assert.True(t, west || minx > wallCell, "region %d straddles the wall", c.Reg)

		facing := 0
		for i := 0; i < c.Nverts; i++ {
			flags := c.Verts[i*4+3]
			assert.Zero(t, flags&RC_CONTOUR_REG_MASK, "region %d vertex %d has a neighbour region", c.Reg, i)
			assert.Zero(t, flags&RC_BORDER_VERTEX, "no tile border")
			if (west && c.Verts[i*4] == maxx) || (!west && c.Verts[i*4] == minx) {
				facing++
				assert.NotZero(t, flags&RC_AREA_BORDER, "region %d vertex %d faces the wall", c.Reg, i)
			}
		}
		assert.Positive(t, facing)
	}
}

func TestBuildPolyMeshRingAdjacency(t *testing.T) {
	g := (&testGeom{}).
		quad(0, 0, 10, 3, 0).
		quad(0, 7, 10, 10, 0).
		quad(0, 3, 3, 7, 0).
		quad(7, 3, 10, 7, 0)
	p := runPipeline(t, g, testConfig())
	require.NotNil(t, p.pmesh)
	require.Greater(t, p.pmesh.Npolys, 1)

	assert.Positive(t, requireSymmetricAdjacency(t, p.pmesh))
	for i := 0; i < p.pmesh.Npolys; i++ {
		assert.LessOrEqual(t, p.pmesh.PolyVertCount(i), p.pmesh.Nvp)
		assert.GreaterOrEqual(t, p.pmesh.PolyVertCount(i), 3)
		requireConvex(t, p.pmesh, i)
	}
	for i := 0; i < p.pmesh.Nverts; i++ {
		x, z := p.pmesh.Verts[i*3], p.pmesh.Verts[i*3+2]
		inHole := x > int(3.5/p.pmesh.Cs) && x < int(6.5/p.pmesh.Cs) &&
			z > int(3.5/p.pmesh.Cs) && z < int(6.5/p.pmesh.Cs)
		assert.False(t, inHole, "vertex %d lies in the hole", i)
	}
}

func TestBuildPolyMeshTriangles(t *testing.T) {
	cfg := testConfig()
	cfg.MaxVertsPerPoly = 3
	g := (&testGeom{}).quad(0, 0, 10, 4, 0).quad(0, 4, 4, 10, 0)
	p := runPipeline(t, g, cfg)
	require.NotNil(t, p.pmesh)
	require.Positive(t, p.pmesh.Npolys)

	for i := 0; i < p.pmesh.Npolys; i++ {
		assert.Equal(t, 3, p.pmesh.PolyVertCount(i))
	}
	requireSymmetricAdjacency(t, p.pmesh)
}

func TestBuildPolyMeshTiledPortals(t *testing.T) {
	cfg := testConfig()
	cfg.TileSize = 16
	g := (&testGeom{}).quad(0, 0, 20, 20, 0)
	bmin, bmax := RcCalcBounds(g.verts)
	rc := NewBuilderConfig(cfg, bmin, bmax, 1, 1)

	hf := RcCreateHeightfield(rc.Width, rc.Height, rc.Bmin, rc.Bmax, rc.Cs, rc.Ch, rc.BorderSize)
	areas := RcMarkWalkableTriangles(nil, rc.WalkableSlopeAngle, g.verts, g.tris)
	RcRasterizeTriangles(nil, g.verts, g.tris, areas, hf, rc.WalkableClimb)
	chf, err := RcBuildCompactHeightfield(nil, rc.WalkableHeight, rc.WalkableClimb, hf)
	require.NoError(t, err)
	RcErodeWalkableArea(nil, rc.WalkableRadius, chf)
	require.NoError(t, RcPartition(nil, chf, PartitionWatershed, rc.MinRegionArea, rc.MergeRegionArea))
	cset, err := RcBuildContours(nil, chf, rc.MaxSimplificationError, rc.MaxEdgeLen, cfg.ContourFlags)
	require.NoError(t, err)
	pmesh, err := RcBuildPolyMesh(nil, cset, rc.MaxVertsPerPoly)
	require.NoError(t, err)
	require.Positive(t, pmesh.Npolys)

	// An inner tile of a larger floor has portals on all four sides.
	sides := map[int]bool{}
	for i := 0; i < pmesh.Npolys; i++ {
		p := pmesh.Poly(i)
		for j := 0; j < pmesh.PolyVertCount(i); j++ {
			if n := p[pmesh.Nvp+j]; n != RC_MESH_NULL_IDX && n&RC_PORTAL_FLAG != 0 {
				sides[n&0xf] = true
			}
		}
	}
	assert.Equal(t, map[int]bool{0: true, 1: true, 2: true, 3: true}, sides)
	for i := 0; i < pmesh.Nverts; i++ {
		assert.GreaterOrEqual(t, pmesh.Verts[i*3], 0)
		assert.LessOrEqual(t, pmesh.Verts[i*3], cfg.TileSize)
		assert.GreaterOrEqual(t, pmesh.Verts[i*3+2], 0)
		assert.LessOrEqual(t, pmesh.Verts[i*3+2], cfg.TileSize)
	}
}

// meshAt builds a square floor mesh with its corner at (x, 0, z).
func meshAt(t *testing.T, x, z float64) *RcPolyMesh {
	cfg := testConfig()
	cfg.CellSize = 0.25
	p := runPipeline(t, (&testGeom{}).quad(x, z, x+4, z+4, 0), cfg)
	require.NotNil(t, p.pmesh)
	return p.pmesh
}

func TestMergePolyMeshes(t *testing.T) {
	a := meshAt(t, 0, 0)
	b := meshAt(t, 4, 0)

	merged, err := RcMergePolyMeshes(nil, []*RcPolyMesh{a, b})
	require.NoError(t, err)
	require.NotNil(t, merged)

	assert.Equal(t, a.Npolys+b.Npolys, merged.Npolys)
	assert.Equal(t, a.Nverts+b.Nverts, merged.Nverts, "the floors do not touch after erosion")
	assert.Equal(t, a.Bmin, merged.Bmin)
	assert.Equal(t, b.Bmax[0], merged.Bmax[0])

	off := 16
	for i := 0; i < b.Nverts; i++ {
		v := []int{b.Verts[i*3] + off, b.Verts[i*3+1], b.Verts[i*3+2]}
		found := false
		for j := 0; j < merged.Nverts && !found; j++ {
			found = merged.Verts[j*3] == v[0] && merged.Verts[j*3+1] == v[1] && merged.Verts[j*3+2] == v[2]
		}
		assert.True(t, found, "vertex %v of the second mesh", v)
	}
	requireSymmetricAdjacency(t, merged)
}

func TestMergePolyMeshesSharedVertices(t *testing.T) {
	a := meshAt(t, 0, 0)
	merged, err := RcMergePolyMeshes(nil, []*RcPolyMesh{a, RcCopyPolyMesh(a)})
	require.NoError(t, err)
	assert.Equal(t, a.Nverts, merged.Nverts, "coincident vertices are welded")
	assert.Equal(t, 2*a.Npolys, merged.Npolys)
}

func TestMergePolyMeshesMismatch(t *testing.T) {
	a := meshAt(t, 0, 0)
	b := RcCopyPolyMesh(a)
	b.Nvp = 3
	_, err := RcMergePolyMeshes(nil, []*RcPolyMesh{a, b})
	assert.ErrorIs(t, err, ErrMeshMismatch)

	merged, err := RcMergePolyMeshes(nil, nil)
	assert.NoError(t, err)
	assert.Nil(t, merged)
}

func TestCopyPolyMesh(t *testing.T) {
	a := meshAt(t, 0, 0)
	b := RcCopyPolyMesh(a)
	require.Equal(t, a.Npolys, b.Npolys)
	assert.Equal(t, a.Verts[:a.Nverts*3], b.Verts)
	assert.Equal(t, b.Npolys, b.Maxpolys)

	b.Verts[0] += 100
	b.Polys[0] = RC_MESH_NULL_IDX
	b.Areas[0] = RC_NULL_AREA
	assert.NotEqual(t, b.Verts[0], a.Verts[0])
	assert.NotEqual(t, b.Polys[0], a.Polys[0])
	assert.Equal(t, RC_WALKABLE_AREA, a.Areas[0])
}
