package recast

import (
	"fmt"
	"math"

	"github.com/gorustyt/gorecast/common"
)

const (
	VERTEX_BUCKET_COUNT = 1 << 12
	/// Polygon touches multiple regions.
	/// If a polygon has this region ID it was merged with or created
	/// from polygons of different regions during the polymesh
	/// build step that removes redundant border vertices.
	RC_MULTIPLE_REGS = 0
	/// An value which indicates an invalid index within a mesh.
	/// @note This does not necessarily indicate an error.
	RC_MESH_NULL_IDX = 0xffff
	// Largest vertex and polygon count addressable by 16-bit indices.
	RC_MAX_MESH_INDEX = 0xffff
	// Portal edge markers; the low nibble is the side (0:-x 1:+z 2:+x 3:-z).
	RC_PORTAL_FLAG = 0x8000
)

// / Represents a polygon mesh suitable for use in building a navigation mesh.
type RcPolyMesh struct {
	Verts        []int       ///< The mesh vertices. [Form: (x, y, z) * #Nverts]
	Polys        []int       ///< Polygon and neighbor data. [Length: #Maxpolys * 2 * #Nvp]
	Regs         []int       ///< The region id assigned to each polygon. [Length: #Maxpolys]
	Flags        []int       ///< The user defined flags for each polygon. [Length: #Maxpolys]
	Areas        []int       ///< The area id assigned to each polygon. [Length: #Maxpolys]
	Nverts       int         ///< The number of vertices.
	Npolys       int         ///< The number of polygons.
	Maxpolys     int         ///< The number of allocated polygons.
	Nvp          int         ///< The maximum number of vertices per polygon.
	Bmin         common.Vec3 ///< The minimum bounds in world space. [(x, y, z)]
	Bmax         common.Vec3 ///< The maximum bounds in world space. [(x, y, z)]
	Cs           float64     ///< The size of each cell. (On the xz-plane.)
	Ch           float64     ///< The height of each cell. (The minimum increment along the y-axis.)
	BorderSize   int         ///< The AABB border size used to generate the source data from which the mesh was derived.
	MaxEdgeError float64     ///< The max error of the polygon edges in the mesh.
}

// Poly returns the 2*Nvp slots of polygon i: vertex indices then neighbours.
func (mesh *RcPolyMesh) Poly(i int) []int {
	return mesh.Polys[i*2*mesh.Nvp : (i+1)*2*mesh.Nvp]
}

// PolyVertCount returns the number of used vertex slots of polygon i.
func (mesh *RcPolyMesh) PolyVertCount(i int) int {
	return countPolyVerts(mesh.Poly(i), mesh.Nvp)
}

type rcEdge struct {
	vert     [2]int
	polyEdge [2]int
	poly     [2]int
}

// buildMeshAdjacency fills the neighbour half of every polygon record.
// Based on code by Eric Lengyel from:
// https://web.archive.org/web/20080704083314/http://www.terathon.com/code/edges.php
func buildMeshAdjacency(polys []int, npolys, nverts, vertsPerPoly int) {
	maxEdgeCount := npolys * vertsPerPoly
	firstEdge := make([]int, nverts)
	nextEdge := make([]int, maxEdgeCount)
	edges := make([]rcEdge, 0, maxEdgeCount)
	common.Fill(firstEdge, RC_MESH_NULL_IDX)

	edgeOf := func(t []int, j int) (v0, v1 int) {
		v0 = t[j]
		if j+1 >= vertsPerPoly || t[j+1] == RC_MESH_NULL_IDX {
			return v0, t[0]
		}
		return v0, t[j+1]
	}

	for i := 0; i < npolys; i++ {
		t := polys[i*vertsPerPoly*2:]
		for j := 0; j < vertsPerPoly; j++ {
			if t[j] == RC_MESH_NULL_IDX {
				break
			}
			v0, v1 := edgeOf(t, j)
			if v0 < v1 {
				nextEdge[len(edges)] = firstEdge[v0]
				firstEdge[v0] = len(edges)
				edges = append(edges, rcEdge{
					vert:     [2]int{v0, v1},
					poly:     [2]int{i, i},
					polyEdge: [2]int{j, 0},
				})
			}
		}
	}

	for i := 0; i < npolys; i++ {
		t := polys[i*vertsPerPoly*2:]
		for j := 0; j < vertsPerPoly; j++ {
			if t[j] == RC_MESH_NULL_IDX {
				break
			}
			v0, v1 := edgeOf(t, j)
			if v0 > v1 {
				for e := firstEdge[v1]; e != RC_MESH_NULL_IDX; e = nextEdge[e] {
					edge := &edges[e]
					if edge.vert[1] == v0 && edge.poly[0] == edge.poly[1] {
						edge.poly[1] = i
						edge.polyEdge[1] = j
						break
					}
				}
			}
		}
	}

	// Store adjacency
	for _, e := range edges {
		if e.poly[0] != e.poly[1] {
			p0 := polys[e.poly[0]*vertsPerPoly*2:]
			p1 := polys[e.poly[1]*vertsPerPoly*2:]
			p0[vertsPerPoly+e.polyEdge[0]] = e.poly[1]
			p1[vertsPerPoly+e.polyEdge[1]] = e.poly[0]
		}
	}
}

func computeVertexHash(x, z int) int {
	const h1 = 0x8da6b343 // Large multiplicative constants;
	const h3 = 0xcb1ab31f // here arbitrarily chosen primes
	n := uint32(h1*int64(x) + h3*int64(z))
	return int(n & (VERTEX_BUCKET_COUNT - 1))
}

// addVertex returns the index of a vertex at (x, z) within two height units
// of y, appending a new one when none exists.
func addVertex(x, y, z int, verts []int, firstVert, nextVert []int, nv *int) int {
	bucket := computeVertexHash(x, z)
	for i := firstVert[bucket]; i != -1; i = nextVert[i] {
		v := common.GetVert3(verts, i)
		if v[0] == x && common.Abs(v[1]-y) <= 2 && v[2] == z {
			return i
		}
	}

	// Could not find, create new.
	i := *nv
	*nv++
	v := common.GetVert3(verts, i)
	v[0] = x
	v[1] = y
	v[2] = z
	nextVert[i] = firstVert[bucket]
	firstVert[bucket] = i
	return i
}

func countPolyVerts(p []int, nvp int) int {
	for i := 0; i < nvp; i++ {
		if p[i] == RC_MESH_NULL_IDX {
			return i
		}
	}
	return nvp
}

func uleft(a, b, c []int) bool {
	return (b[0]-a[0])*(c[2]-a[2])-(c[0]-a[0])*(b[2]-a[2]) < 0
}

// getPolyMergeValue returns the squared length of the edge shared by pa and
// pb, or -1 when merging them would exceed nvp or break convexity.
func getPolyMergeValue(pa, pb []int, verts []int, nvp int) (value, ea, eb int) {
	na := countPolyVerts(pa, nvp)
	nb := countPolyVerts(pb, nvp)

	// If the merged polygon would be too big, do not merge.
	if na+nb-2 > nvp {
		return -1, -1, -1
	}

	// Check if the polygons share an edge.
	ea, eb = -1, -1
	for i := 0; i < na; i++ {
		va0 := pa[i]
		va1 := pa[(i+1)%na]
		if va0 > va1 {
			va0, va1 = va1, va0
		}
		for j := 0; j < nb; j++ {
			vb0 := pb[j]
			vb1 := pb[(j+1)%nb]
			if vb0 > vb1 {
				vb0, vb1 = vb1, vb0
			}
			if va0 == vb0 && va1 == vb1 {
				ea = i
				eb = j
				break
			}
		}
	}

	// No common edge, cannot merge.
	if ea == -1 || eb == -1 {
		return -1, ea, eb
	}

	// Check to see if the merged polygon would be convex.
	va := pa[(ea+na-1)%na]
	vb := pa[ea]
	vc := pb[(eb+2)%nb]
	if !uleft(common.GetVert3(verts, va), common.GetVert3(verts, vb), common.GetVert3(verts, vc)) {
		return -1, ea, eb
	}

	va = pb[(eb+nb-1)%nb]
	vb = pb[eb]
	vc = pa[(ea+2)%na]
	if !uleft(common.GetVert3(verts, va), common.GetVert3(verts, vb), common.GetVert3(verts, vc)) {
		return -1, ea, eb
	}

	va = pa[ea]
	vb = pa[(ea+1)%na]
	dx := verts[va*3] - verts[vb*3]
	dz := verts[va*3+2] - verts[vb*3+2]
	return dx*dx + dz*dz, ea, eb
}

// mergePolyVerts writes the union of pa and pb, joined at edges ea/eb, into pa.
func mergePolyVerts(pa, pb []int, ea, eb int, tmp []int, nvp int) {
	na := countPolyVerts(pa, nvp)
	nb := countPolyVerts(pb, nvp)

	common.Fill(tmp[:nvp], RC_MESH_NULL_IDX)
	n := 0
	for i := 0; i < na-1; i++ {
		tmp[n] = pa[(ea+1+i)%na]
		n++
	}
	for i := 0; i < nb-1; i++ {
		tmp[n] = pb[(eb+1+i)%nb]
		n++
	}
	copy(pa[:nvp], tmp[:nvp])
}

// mergePolygons greedily merges the polygon pair with the longest shared
// edge until no pair is mergeable. polys holds npolys records of nvp slots
// plus one scratch record. When regs is set the merged region ids follow.
func mergePolygons(polys []int, npolys, nvp int, verts []int, regs, areas []int) int {
	tmp := polys[len(polys)-nvp:]
	for {
		bestMergeVal := 0
		bestPa, bestPb, bestEa, bestEb := 0, 0, 0, 0

		for j := 0; j < npolys-1; j++ {
			pj := polys[j*nvp : (j+1)*nvp]
			for k := j + 1; k < npolys; k++ {
				pk := polys[k*nvp : (k+1)*nvp]
				v, ea, eb := getPolyMergeValue(pj, pk, verts, nvp)
				if v > bestMergeVal {
					bestMergeVal = v
					bestPa = j
					bestPb = k
					bestEa = ea
					bestEb = eb
				}
			}
		}

		if bestMergeVal <= 0 {
			// Could not merge any polygons, stop.
			return npolys
		}

		pa := polys[bestPa*nvp : (bestPa+1)*nvp]
		pb := polys[bestPb*nvp : (bestPb+1)*nvp]
		mergePolyVerts(pa, pb, bestEa, bestEb, tmp, nvp)
		if regs != nil && regs[bestPa] != regs[bestPb] {
			regs[bestPa] = RC_MULTIPLE_REGS
		}
		last := (npolys - 1) * nvp
		if bestPb*nvp != last {
			copy(pb, polys[last:last+nvp])
		}
		if regs != nil {
			regs[bestPb] = regs[npolys-1]
			areas[bestPb] = areas[npolys-1]
		}
		npolys--
	}
}

// canRemoveVertex reports whether removing rem leaves a hole that can be
// re-triangulated.
func canRemoveVertex(mesh *RcPolyMesh, rem int) bool {
	nvp := mesh.Nvp

	// Count number of polygons to remove.
	numTouchedVerts := 0
	numRemainingEdges := 0
	for i := 0; i < mesh.Npolys; i++ {
		p := mesh.Poly(i)
		nv := countPolyVerts(p, nvp)
		numRemoved := 0
		for j := 0; j < nv; j++ {
			if p[j] == rem {
				numTouchedVerts++
				numRemoved++
			}
		}
		if numRemoved > 0 {
			numRemainingEdges += nv - (numRemoved + 1)
		}
	}

	// There would be too few edges remaining to create a polygon.
	// This can happen for example when a tip of a triangle is marked
	// as deletion, but there are no other polys that share the vertex.
	if numRemainingEdges <= 2 {
		return false
	}

	// Find edges which share the removed vertex.
	type sharedEdge struct{ a, b, count int }
	edges := make([]sharedEdge, 0, numTouchedVerts*2)
	for i := 0; i < mesh.Npolys; i++ {
		p := mesh.Poly(i)
		nv := countPolyVerts(p, nvp)

		for j, k := 0, nv-1; j < nv; k, j = j, j+1 {
			if p[j] != rem && p[k] != rem {
				continue
			}
			// Arrange edge so that a=rem.
			a := p[j]
			b := p[k]
			if b == rem {
				a, b = b, a
			}
			exists := false
			for m := range edges {
				if edges[m].b == b {
					// Exists, increment vertex share count.
					edges[m].count++
					exists = true
				}
			}
			if !exists {
				edges = append(edges, sharedEdge{a, b, 1})
			}
		}
	}

	// There should be no more than 2 open edges.
	// This catches the case that two non-adjacent polygons
	// share the removed vertex. In that case, do not remove the vertex.
	numOpenEdges := 0
	for _, e := range edges {
		if e.count < 2 {
			numOpenEdges++
		}
	}
	return numOpenEdges <= 2
}

// removeVertex deletes vertex rem with every polygon using it and
// re-triangulates the resulting hole.
func removeVertex(ctx Telemetry, mesh *RcPolyMesh, rem, maxTris int) error {
	nvp := mesh.Nvp

	type holeEdge struct{ a, b, reg, area int }
	var edges []holeEdge

	for i := 0; i < mesh.Npolys; i++ {
		p := mesh.Poly(i)
		nv := countPolyVerts(p, nvp)
		hasRem := false
		for j := 0; j < nv; j++ {
			if p[j] == rem {
				hasRem = true
				break
			}
		}
		if !hasRem {
			continue
		}
		// Collect edges which do not touch the removed vertex.
		for j, k := 0, nv-1; j < nv; k, j = j, j+1 {
			if p[j] != rem && p[k] != rem {
				edges = append(edges, holeEdge{p[k], p[j], mesh.Regs[i], mesh.Areas[i]})
			}
		}
		// Remove the polygon.
		if i != mesh.Npolys-1 {
			copy(p[:nvp], mesh.Poly(mesh.Npolys - 1)[:nvp])
		}
		common.Fill(p[nvp:], RC_MESH_NULL_IDX)
		mesh.Regs[i] = mesh.Regs[mesh.Npolys-1]
		mesh.Areas[i] = mesh.Areas[mesh.Npolys-1]
		mesh.Npolys--
		i--
	}

	// Remove vertex.
	copy(mesh.Verts[rem*3:], mesh.Verts[(rem+1)*3:mesh.Nverts*3])
	mesh.Nverts--

	// Adjust indices to match the removed vertex layout.
	for i := 0; i < mesh.Npolys; i++ {
		p := mesh.Poly(i)
		nv := countPolyVerts(p, nvp)
		for j := 0; j < nv; j++ {
			if p[j] > rem {
				p[j]--
			}
		}
	}
	for i := range edges {
		if edges[i].a > rem {
			edges[i].a--
		}
		if edges[i].b > rem {
			edges[i].b--
		}
	}

	if len(edges) == 0 {
		return nil
	}

	// Start with one vertex, keep appending connected
	// segments to the start and end of the hole.
	hole := []int{edges[0].a}
	hreg := []int{edges[0].reg}
	harea := []int{edges[0].area}

	for len(edges) > 0 {
		match := false
		for i := 0; i < len(edges); i++ {
			e := edges[i]
			add := false
			if hole[0] == e.b {
				// The segment matches the beginning of the hole boundary.
				hole = append([]int{e.a}, hole...)
				hreg = append([]int{e.reg}, hreg...)
				harea = append([]int{e.area}, harea...)
				add = true
			} else if hole[len(hole)-1] == e.a {
				// The segment matches the end of the hole boundary.
				hole = append(hole, e.b)
				hreg = append(hreg, e.reg)
				harea = append(harea, e.area)
				add = true
			}
			if add {
				// The edge segment was added, remove it.
				edges[i] = edges[len(edges)-1]
				edges = edges[:len(edges)-1]
				match = true
				i--
			}
		}
		if !match {
			break
		}
	}

	nhole := len(hole)
	tris := make([]int, nhole*3)
	tverts := make([]int, nhole*4)
	thole := make([]int, nhole)

	// Generate temp vertex array for triangulation.
	for i, h := range hole {
		copy(tverts[i*4:i*4+3], mesh.Verts[h*3:h*3+3])
		thole[i] = i
	}

	// Triangulate the hole.
	ntris := triangulate(nhole, tverts, thole, tris)
	if ntris < 0 {
		ntris = -ntris
		warn(ctx, "removeVertex: triangulate() returned bad results.")
	}

	// Merge the hole triangles back to polygons.
	polys := make([]int, (ntris+1)*nvp)
	pregs := make([]int, ntris)
	pareas := make([]int, ntris)
	common.Fill(polys, RC_MESH_NULL_IDX)

	// Build initial polygons.
	npolys := 0
	for j := 0; j < ntris; j++ {
		t := tris[j*3 : j*3+3]
		if t[0] == t[1] || t[0] == t[2] || t[1] == t[2] {
			continue
		}
		polys[npolys*nvp] = hole[t[0]]
		polys[npolys*nvp+1] = hole[t[1]]
		polys[npolys*nvp+2] = hole[t[2]]

		// If this polygon covers multiple region types then mark it as such.
		if hreg[t[0]] != hreg[t[1]] || hreg[t[1]] != hreg[t[2]] {
			pregs[npolys] = RC_MULTIPLE_REGS
		} else {
			pregs[npolys] = hreg[t[0]]
		}
		pareas[npolys] = harea[t[0]]
		npolys++
	}
	if npolys == 0 {
		return nil
	}

	if nvp > 3 {
		npolys = mergePolygons(polys, npolys, nvp, mesh.Verts, pregs, pareas)
	}

	// Store polygons.
	for i := 0; i < npolys; i++ {
		if mesh.Npolys >= maxTris {
			break
		}
		p := mesh.Poly(mesh.Npolys)
		common.Fill(p, RC_MESH_NULL_IDX)
		copy(p[:nvp], polys[i*nvp:(i+1)*nvp])
		mesh.Regs[mesh.Npolys] = pregs[i]
		mesh.Areas[mesh.Npolys] = pareas[i]
		mesh.Npolys++
		if mesh.Npolys > maxTris {
			return fmt.Errorf("removeVertex: too many polygons %d (max: %d): %w", mesh.Npolys, maxTris, ErrTooManyPolygons)
		}
	}
	return nil
}

// / Builds a polygon mesh from the provided contours.
// /
// / If the mesh data is to be used to construct a navigation mesh the upper
// / limit of nvp must be restricted to 6.
func RcBuildPolyMesh(ctx Telemetry, cset *RcContourSet, nvp int) (*RcPolyMesh, error) {
	startTimer(ctx, RC_TIMER_POLYMESH)
	defer stopTimer(ctx, RC_TIMER_POLYMESH)

	mesh := &RcPolyMesh{
		Bmin:         cset.Bmin,
		Bmax:         cset.Bmax,
		Cs:           cset.Cs,
		Ch:           cset.Ch,
		BorderSize:   cset.BorderSize,
		MaxEdgeError: cset.MaxError,
		Nvp:          nvp,
	}

	maxVertices := 0
	maxTris := 0
	maxVertsPerCont := 0
	for _, cont := range cset.Conts {
		// Skip null contours.
		if cont.Nverts < 3 {
			continue
		}
		maxVertices += cont.Nverts
		maxTris += cont.Nverts - 2
		maxVertsPerCont = max(maxVertsPerCont, cont.Nverts)
	}

	if maxVertices >= 0xfffe {
		return nil, fmt.Errorf("rcBuildPolyMesh: too many vertices %d: %w", maxVertices, ErrTooManyVertices)
	}

	vflags := make([]bool, maxVertices)

	mesh.Verts = make([]int, maxVertices*3)
	mesh.Polys = make([]int, maxTris*nvp*2)
	mesh.Regs = make([]int, maxTris)
	mesh.Areas = make([]int, maxTris)
	mesh.Maxpolys = maxTris
	common.Fill(mesh.Polys, RC_MESH_NULL_IDX)

	nextVert := make([]int, maxVertices)
	firstVert := make([]int, VERTEX_BUCKET_COUNT)
	common.Fill(firstVert, -1)

	indices := make([]int, maxVertsPerCont)
	tris := make([]int, maxVertsPerCont*3)
	polys := make([]int, (maxVertsPerCont+1)*nvp)

	for i, cont := range cset.Conts {
		if cont.Nverts < 3 {
			continue
		}

		// Triangulate contour
		for j := 0; j < cont.Nverts; j++ {
			indices[j] = j
		}
		ntris := triangulate(cont.Nverts, cont.Verts, indices, tris)
		if ntris <= 0 {
			// Bad triangulation, should not happen.
			warn(ctx, fmt.Sprintf("rcBuildPolyMesh: Bad triangulation Contour %d.", i))
			ntris = -ntris
		}

		// Add and merge vertices.
		for j := 0; j < cont.Nverts; j++ {
			v := common.GetVert4(cont.Verts, j)
			indices[j] = addVertex(v[0], v[1], v[2], mesh.Verts, firstVert, nextVert, &mesh.Nverts)
			if v[3]&RC_BORDER_VERTEX != 0 {
				// This vertex should be removed.
				vflags[indices[j]] = true
			}
		}

		// Build initial polygons.
		npolys := 0
		common.Fill(polys, RC_MESH_NULL_IDX)
		for j := 0; j < ntris; j++ {
			t := tris[j*3 : j*3+3]
			if t[0] != t[1] && t[0] != t[2] && t[1] != t[2] {
				polys[npolys*nvp] = indices[t[0]]
				polys[npolys*nvp+1] = indices[t[1]]
				polys[npolys*nvp+2] = indices[t[2]]
				npolys++
			}
		}
		if npolys == 0 {
			continue
		}

		if nvp > 3 {
			npolys = mergePolygons(polys, npolys, nvp, mesh.Verts, nil, nil)
		}

		// Store polygons.
		for j := 0; j < npolys; j++ {
			if mesh.Npolys >= maxTris {
				return nil, fmt.Errorf("rcBuildPolyMesh: too many polygons %d (max: %d): %w", mesh.Npolys+1, maxTris, ErrTooManyPolygons)
			}
			p := mesh.Poly(mesh.Npolys)
			copy(p[:nvp], polys[j*nvp:(j+1)*nvp])
			mesh.Regs[mesh.Npolys] = cont.Reg
			mesh.Areas[mesh.Npolys] = cont.Area
			mesh.Npolys++
		}
	}

	// Remove edge vertices.
	for i := 0; i < mesh.Nverts; i++ {
		if !vflags[i] {
			continue
		}
		if !canRemoveVertex(mesh, i) {
			continue
		}
		if err := removeVertex(ctx, mesh, i, maxTris); err != nil {
			return nil, fmt.Errorf("rcBuildPolyMesh: failed to remove edge vertex %d: %w", i, err)
		}
		// removeVertex already decremented mesh.Nverts.
		copy(vflags[i:mesh.Nverts], vflags[i+1:mesh.Nverts+1])
		i--
	}

	// Calculate adjacency.
	buildMeshAdjacency(mesh.Polys, mesh.Npolys, mesh.Nverts, nvp)

	// Find portal edges
	if mesh.BorderSize > 0 {
		findPortalEdges(mesh, cset.Width, cset.Height)
	}

	// The user is responsible to fill the flags.
	mesh.Flags = make([]int, mesh.Npolys)

	if mesh.Nverts > RC_MAX_MESH_INDEX {
		return nil, fmt.Errorf("rcBuildPolyMesh: the resulting mesh has too many vertices %d (max %d): %w", mesh.Nverts, RC_MAX_MESH_INDEX, ErrTooManyVertices)
	}
	if mesh.Npolys > RC_MAX_MESH_INDEX {
		return nil, fmt.Errorf("rcBuildPolyMesh: the resulting mesh has too many polygons %d (max %d): %w", mesh.Npolys, RC_MAX_MESH_INDEX, ErrTooManyPolygons)
	}
	return mesh, nil
}

// findPortalEdges tags unconnected edges lying on the tile border with
// RC_PORTAL_FLAG and the side they face.
func findPortalEdges(mesh *RcPolyMesh, w, h int) {
	nvp := mesh.Nvp
	for i := 0; i < mesh.Npolys; i++ {
		p := mesh.Poly(i)
		for j := 0; j < nvp; j++ {
			if p[j] == RC_MESH_NULL_IDX {
				break
			}
			// Skip connected edges.
			if p[nvp+j] != RC_MESH_NULL_IDX {
				continue
			}
			nj := j + 1
			if nj >= nvp || p[nj] == RC_MESH_NULL_IDX {
				nj = 0
			}
			va := common.GetVert3(mesh.Verts, p[j])
			vb := common.GetVert3(mesh.Verts, p[nj])

			switch {
			case va[0] == 0 && vb[0] == 0:
				p[nvp+j] = RC_PORTAL_FLAG | 0
			case va[2] == h && vb[2] == h:
				p[nvp+j] = RC_PORTAL_FLAG | 1
			case va[0] == w && vb[0] == w:
				p[nvp+j] = RC_PORTAL_FLAG | 2
			case va[2] == 0 && vb[2] == 0:
				p[nvp+j] = RC_PORTAL_FLAG | 3
			}
		}
	}
}

// / Merges multiple polygon meshes into a single mesh.
// / All meshes must share cell size and nvp.
func RcMergePolyMeshes(ctx Telemetry, meshes []*RcPolyMesh) (*RcPolyMesh, error) {
	if len(meshes) == 0 {
		return nil, nil
	}
	startTimer(ctx, RC_TIMER_MERGE_POLYMESH)
	defer stopTimer(ctx, RC_TIMER_MERGE_POLYMESH)

	first := meshes[0]
	mesh := &RcPolyMesh{
		Nvp:  first.Nvp,
		Cs:   first.Cs,
		Ch:   first.Ch,
		Bmin: first.Bmin,
		Bmax: first.Bmax,
	}

	maxVerts := 0
	maxPolys := 0
	maxVertsPerMesh := 0
	for _, pm := range meshes {
		if pm.Nvp != mesh.Nvp {
			return nil, fmt.Errorf("rcMergePolyMeshes: nvp %d != %d: %w", pm.Nvp, mesh.Nvp, ErrMeshMismatch)
		}
		common.Vmin(mesh.Bmin[:], pm.Bmin[:])
		common.Vmax(mesh.Bmax[:], pm.Bmax[:])
		maxVertsPerMesh = max(maxVertsPerMesh, pm.Nverts)
		maxVerts += pm.Nverts
		maxPolys += pm.Npolys
	}

	mesh.Verts = make([]int, maxVerts*3)
	mesh.Polys = make([]int, maxPolys*2*mesh.Nvp)
	mesh.Regs = make([]int, maxPolys)
	mesh.Areas = make([]int, maxPolys)
	mesh.Flags = make([]int, maxPolys)
	mesh.Maxpolys = maxPolys
	common.Fill(mesh.Polys, RC_MESH_NULL_IDX)

	nextVert := make([]int, maxVerts)
	firstVert := make([]int, VERTEX_BUCKET_COUNT)
	common.Fill(firstVert, -1)
	vremap := make([]int, maxVertsPerMesh)

	nvp := mesh.Nvp
	for _, pmesh := range meshes {
		ox := int(math.Floor((pmesh.Bmin[0]-mesh.Bmin[0])/mesh.Cs + 0.5))
		oz := int(math.Floor((pmesh.Bmin[2]-mesh.Bmin[2])/mesh.Cs + 0.5))

		isMinX := ox == 0
		isMinZ := oz == 0
		isMaxX := int(math.Floor((mesh.Bmax[0]-pmesh.Bmax[0])/mesh.Cs+0.5)) == 0
		isMaxZ := int(math.Floor((mesh.Bmax[2]-pmesh.Bmax[2])/mesh.Cs+0.5)) == 0
		isOnBorder := isMinX || isMinZ || isMaxX || isMaxZ

		for j := 0; j < pmesh.Nverts; j++ {
			v := common.GetVert3(pmesh.Verts, j)
			vremap[j] = addVertex(v[0]+ox, v[1], v[2]+oz, mesh.Verts, firstVert, nextVert, &mesh.Nverts)
		}

		for j := 0; j < pmesh.Npolys; j++ {
			tgt := mesh.Poly(mesh.Npolys)
			src := pmesh.Poly(j)
			mesh.Regs[mesh.Npolys] = pmesh.Regs[j]
			mesh.Areas[mesh.Npolys] = pmesh.Areas[j]
			mesh.Flags[mesh.Npolys] = pmesh.Flags[j]
			mesh.Npolys++
			for k := 0; k < nvp; k++ {
				if src[k] == RC_MESH_NULL_IDX {
					break
				}
				tgt[k] = vremap[src[k]]
			}

			if !isOnBorder {
				continue
			}
			// Portals on the outer border of the merged mesh survive.
			for k := nvp; k < nvp*2; k++ {
				if src[k]&RC_PORTAL_FLAG == 0 || src[k] == RC_MESH_NULL_IDX {
					continue
				}
				switch src[k] & 0xf {
				case 0:
					if isMinX {
						tgt[k] = src[k]
					}
				case 1:
					if isMaxZ {
						tgt[k] = src[k]
					}
				case 2:
					if isMaxX {
						tgt[k] = src[k]
					}
				case 3:
					if isMinZ {
						tgt[k] = src[k]
					}
				}
			}
		}
	}

	// Calculate adjacency.
	buildMeshAdjacency(mesh.Polys, mesh.Npolys, mesh.Nverts, nvp)

	if mesh.Nverts > RC_MAX_MESH_INDEX {
		return nil, fmt.Errorf("rcMergePolyMeshes: the resulting mesh has too many vertices %d (max %d): %w", mesh.Nverts, RC_MAX_MESH_INDEX, ErrTooManyVertices)
	}
	if mesh.Npolys > RC_MAX_MESH_INDEX {
		return nil, fmt.Errorf("rcMergePolyMeshes: the resulting mesh has too many polygons %d (max %d): %w", mesh.Npolys, RC_MAX_MESH_INDEX, ErrTooManyPolygons)
	}
	return mesh, nil
}

// RcCopyPolyMesh returns a deep copy of src.
func RcCopyPolyMesh(src *RcPolyMesh) *RcPolyMesh {
	dst := *src
	dst.Maxpolys = src.Npolys
	dst.Verts = append([]int(nil), src.Verts[:src.Nverts*3]...)
	dst.Polys = append([]int(nil), src.Polys[:src.Npolys*2*src.Nvp]...)
	dst.Regs = append([]int(nil), src.Regs[:src.Npolys]...)
	dst.Areas = append([]int(nil), src.Areas[:src.Npolys]...)
	dst.Flags = append([]int(nil), src.Flags[:src.Npolys]...)
	return &dst
}
