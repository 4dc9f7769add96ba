package recast

import (
	"fmt"
	"math"

	"github.com/gorustyt/gorecast/common"
)

const (
	RC_UNSET_HEIGHT = 0xffff
	// Max tris for delaunay is 2n-2-k (n=num verts, k=num hull verts);
	// triangle indices must fit a byte.
	MAX_TRIS           = 255
	MAX_VERTS          = 127
	MAX_VERTS_PER_EDGE = 32
)

// / Contains triangle meshes that represent detailed height data associated
// / with the polygons in its associated polygon mesh object.
type RcPolyMeshDetail struct {
	Meshes  []int     ///< The sub-mesh data. [(baseVertIndex, vertCount, baseTriIndex, triCount) * #Nmeshes]
	Verts   []float64 ///< The mesh vertices. [(x, y, z) * #Nverts]
	Tris    []int     ///< The mesh triangles. [(vertIndexA, vertIndexB, vertIndexC, flags) * #Ntris]
	Nmeshes int       ///< The number of sub-meshes defined by #Meshes.
	Nverts  int       ///< The number of vertices in #Verts.
	Ntris   int       ///< The number of triangles in #Tris.
}

// SubMesh returns the detail vertices and triangles of polygon i. Triangle
// indices are local to the returned vertices.
func (dmesh *RcPolyMeshDetail) SubMesh(i int) (verts []float64, tris []int) {
	m := dmesh.Meshes[i*4 : i*4+4]
	return dmesh.Verts[m[0]*3 : (m[0]+m[1])*3], dmesh.Tris[m[2]*4 : (m[2]+m[3])*4]
}

type rcHeightPatch struct {
	data                      []int
	xmin, ymin, width, height int
}

func (hp *rcHeightPatch) reset(v int) {
	if n := hp.width * hp.height; n > 0 {
		common.Fill(hp.data[:n], v)
	}
}

var seedOffset = [9 * 2]int{0, 0, -1, -1, 0, -1, 1, -1, 1, 0, 1, 1, 0, 1, -1, 1, -1, 0}

func distPtTri(p, a, b, c []float64) float64 {
	var v0, v1, v2 common.Vec3
	common.Vsub(v0[:], c, a)
	common.Vsub(v1[:], b, a)
	common.Vsub(v2[:], p, a)

	dot00 := common.Vdot2D(v0[:], v0[:])
	dot01 := common.Vdot2D(v0[:], v1[:])
	dot02 := common.Vdot2D(v0[:], v2[:])
	dot11 := common.Vdot2D(v1[:], v1[:])
	dot12 := common.Vdot2D(v1[:], v2[:])

	// Compute barycentric coordinates
	invDenom := 1.0 / (dot00*dot11 - dot01*dot01)
	u := (dot11*dot02 - dot01*dot12) * invDenom
	v := (dot00*dot12 - dot01*dot02) * invDenom

	// If point lies inside the triangle, return interpolated y-coord.
	const eps = 1e-4
	if u >= -eps && v >= -eps && (u+v) <= 1+eps {
		y := a[1] + v0[1]*u + v1[1]*v
		return math.Abs(y - p[1])
	}
	return math.MaxFloat64
}

func clampUnit(t, d float64) float64 {
	if d > 0 {
		t /= d
	}
	return common.Clamp(t, 0, 1)
}

func distPtSeg3d(pt, p, q []float64) float64 {
	pqx := q[0] - p[0]
	pqy := q[1] - p[1]
	pqz := q[2] - p[2]
	dx := pt[0] - p[0]
	dy := pt[1] - p[1]
	dz := pt[2] - p[2]
	d := pqx*pqx + pqy*pqy + pqz*pqz
	t := clampUnit(pqx*dx+pqy*dy+pqz*dz, d)

	dx = p[0] + t*pqx - pt[0]
	dy = p[1] + t*pqy - pt[1]
	dz = p[2] + t*pqz - pt[2]
	return dx*dx + dy*dy + dz*dz
}

func distPtSeg2d(pt, p, q []float64) float64 {
	pqx := q[0] - p[0]
	pqz := q[2] - p[2]
	dx := pt[0] - p[0]
	dz := pt[2] - p[2]
	d := pqx*pqx + pqz*pqz
	t := clampUnit(pqx*dx+pqz*dz, d)

	dx = p[0] + t*pqx - pt[0]
	dz = p[2] + t*pqz - pt[2]
	return dx*dx + dz*dz
}

// distToTriMesh returns the vertical distance from p to the detail triangles
// under it, or -1 when p misses them all.
func distToTriMesh(p, verts []float64, tris []int) float64 {
	dmin := math.MaxFloat64
	for i := 0; i < len(tris); i += 4 {
		va := common.GetVert3(verts, tris[i])
		vb := common.GetVert3(verts, tris[i+1])
		vc := common.GetVert3(verts, tris[i+2])
		dmin = min(dmin, distPtTri(p, va, vb, vc))
	}
	if dmin == math.MaxFloat64 {
		return -1
	}
	return dmin
}

// distToPoly returns the signed 2D distance from p to the polygon outline,
// negative inside.
func distToPoly(nvert int, verts, p []float64) float64 {
	dmin := math.MaxFloat64
	c := false
	for i, j := 0, nvert-1; i < nvert; j, i = i, i+1 {
		vi := common.GetVert3(verts, i)
		vj := common.GetVert3(verts, j)
		if ((vi[2] > p[2]) != (vj[2] > p[2])) &&
			(p[0] < (vj[0]-vi[0])*(p[2]-vi[2])/(vj[2]-vi[2])+vi[0]) {
			c = !c
		}
		dmin = min(dmin, distPtSeg2d(p, vj, vi))
	}
	if c {
		return -dmin
	}
	return dmin
}

// getHeight samples the patch at (fx, fz). Unset cells are resolved by a
// spiral search of up to radius cells, keeping the ring closest to the
// centre and the height closest to fy within it.
func getHeight(fx, fy, fz, ics, ch float64, radius int, hp *rcHeightPatch) int {
	if hp.width <= 0 || hp.height <= 0 {
		return RC_UNSET_HEIGHT
	}
	ix := int(math.Floor(fx*ics + 0.01))
	iz := int(math.Floor(fz*ics + 0.01))
	ix = common.Clamp(ix-hp.xmin, 0, hp.width-1)
	iz = common.Clamp(iz-hp.ymin, 0, hp.height-1)
	h := hp.data[ix+iz*hp.width]
	if h != RC_UNSET_HEIGHT {
		return h
	}

	x, z, dx, dz := 1, 0, 1, 0
	maxSize := radius*2 + 1
	maxIter := maxSize*maxSize - 1

	nextRingIterStart := 8
	nextRingIterations := 16

	dmin := math.MaxFloat64
	for i := 0; i < maxIter; i++ {
		nx := ix + x
		nz := iz + z
		if nx >= 0 && nz >= 0 && nx < hp.width && nz < hp.height {
			nh := hp.data[nx+nz*hp.width]
			if nh != RC_UNSET_HEIGHT {
				d := math.Abs(float64(nh)*ch - fy)
				if d < dmin {
					h = nh
					dmin = d
				}
			}
		}

		// Stop at the end of the first ring that produced a height.
		if i+1 == nextRingIterStart {
			if h != RC_UNSET_HEIGHT {
				break
			}
			nextRingIterStart += nextRingIterations
			nextRingIterations += 8
		}

		if x == z || (x < 0 && x == -z) || (x > 0 && x == 1-z) {
			dx, dz = -dz, dx
		}
		x += dx
		z += dz
	}
	return h
}

// polyMinExtent returns the smallest of the polygon's widths measured
// perpendicular to each edge.
func polyMinExtent(verts []float64, nverts int) float64 {
	minDist := math.MaxFloat64
	for i := 0; i < nverts; i++ {
		ni := (i + 1) % nverts
		p1 := common.GetVert3(verts, i)
		p2 := common.GetVert3(verts, ni)
		maxEdgeDist := 0.0
		for j := 0; j < nverts; j++ {
			if j == i || j == ni {
				continue
			}
			d := distPtSeg2d(common.GetVert3(verts, j), p1, p2)
			maxEdgeDist = max(maxEdgeDist, d)
		}
		minDist = min(minDist, maxEdgeDist)
	}
	return math.Sqrt(minDist)
}

// triangulateHull fans the hull starting from the ear with the shortest
// perimeter, advancing along whichever side gives the shorter next triangle.
func triangulateHull(verts []float64, hull []int, nin int, tris []int) []int {
	nhull := len(hull)
	start, left, right := 0, 1, nhull-1

	dmin := math.MaxFloat64
	for i := 0; i < nhull; i++ {
		// Ears are triangles with original vertices as middle vertex while
		// others are actually line segments on edges.
		if hull[i] >= nin {
			continue
		}
		pi := common.Prev(i, nhull)
		ni := common.Next(i, nhull)
		pv := common.GetVert3(verts, hull[pi])
		cv := common.GetVert3(verts, hull[i])
		nv := common.GetVert3(verts, hull[ni])
		d := common.Vdist2D(pv, cv) + common.Vdist2D(cv, nv) + common.Vdist2D(nv, pv)
		if d < dmin {
			start = i
			left = ni
			right = pi
			dmin = d
		}
	}

	// Add first triangle
	tris = append(tris, hull[start], hull[left], hull[right], 0)

	for common.Next(left, nhull) != right {
		nleft := common.Next(left, nhull)
		nright := common.Prev(right, nhull)

		cvleft := common.GetVert3(verts, hull[left])
		nvleft := common.GetVert3(verts, hull[nleft])
		cvright := common.GetVert3(verts, hull[right])
		nvright := common.GetVert3(verts, hull[nright])
		dleft := common.Vdist2D(cvleft, nvleft) + common.Vdist2D(nvleft, cvright)
		dright := common.Vdist2D(cvright, nvright) + common.Vdist2D(cvleft, nvright)

		if dleft < dright {
			tris = append(tris, hull[left], hull[nleft], hull[right], 0)
			left = nleft
		} else {
			tris = append(tris, hull[left], hull[nright], hull[right], 0)
			right = nright
		}
	}
	return tris
}

func getJitterX(i int) float64 {
	return float64((uint32(i)*0x8da6b343)&0xffff)/65535.0*2.0 - 1.0
}

func getJitterY(i int) float64 {
	return float64((uint32(i)*0xd8163841)&0xffff)/65535.0*2.0 - 1.0
}

type detailBuilder struct {
	ctx                Telemetry
	chf                *RcCompactHeightfield
	sampleDist         float64
	sampleMaxError     float64
	heightSearchRadius int

	verts   []float64
	hull    []int
	tris    []int
	samples []int
	edge    []float64
}

// buildPolyDetail builds the detail triangles of one polygon given in local
// world units. It returns the detail vertex count; vertices are left in
// b.verts and triangles in b.tris.
func (b *detailBuilder) buildPolyDetail(in []float64, nin int, hp *rcHeightPatch) (int, error) {
	chf := b.chf
	cs := chf.Cs
	ics := 1.0 / cs
	sampleDist := b.sampleDist

	nverts := nin
	copy(b.verts, in[:nin*3])
	b.hull = b.hull[:0]
	b.tris = b.tris[:0]

	// Calculate minimum extents of the polygon based on input data.
	minExtent := polyMinExtent(b.verts, nverts)

	// Tessellate outlines.
	// This is done in separate pass to ensure
	// seamless height values across the ply boundaries.
	if sampleDist > 0 {
		for i, j := 0, nin-1; i < nin; j, i = i, i+1 {
			vj := common.GetVert3(in, j)
			vi := common.GetVert3(in, i)
			swapped := false
			// Make sure the segments are always handled in same order
			// using lexological sort or else there will be seams.
			if math.Abs(vj[0]-vi[0]) < 1e-6 {
				if vj[2] > vi[2] {
					vj, vi = vi, vj
					swapped = true
				}
			} else if vj[0] > vi[0] {
				vj, vi = vi, vj
				swapped = true
			}

			// Create samples along the edge.
			dx := vi[0] - vj[0]
			dy := vi[1] - vj[1]
			dz := vi[2] - vj[2]
			d := math.Sqrt(dx*dx + dz*dz)
			nn := 1 + int(math.Floor(d/sampleDist))
			if nn >= MAX_VERTS_PER_EDGE {
				nn = MAX_VERTS_PER_EDGE - 1
			}
			if nverts+nn >= MAX_VERTS {
				nn = MAX_VERTS - 1 - nverts
			}

			for k := 0; k <= nn; k++ {
				u := float64(k) / float64(nn)
				pos := b.edge[k*3 : k*3+3]
				pos[0] = vj[0] + dx*u
				pos[1] = vj[1] + dy*u
				pos[2] = vj[2] + dz*u
				pos[1] = float64(getHeight(pos[0], pos[1], pos[2], ics, chf.Ch, b.heightSearchRadius, hp)) * chf.Ch
			}

			// Simplify samples.
			idx := make([]int, 2, MAX_VERTS_PER_EDGE)
			idx[0] = 0
			idx[1] = nn
			for k := 0; k < len(idx)-1; {
				a := idx[k]
				bi := idx[k+1]
				va := common.GetVert3(b.edge, a)
				vb := common.GetVert3(b.edge, bi)
				// Find maximum deviation along the segment.
				maxd := 0.0
				maxi := -1
				for m := a + 1; m < bi; m++ {
					dev := distPtSeg3d(common.GetVert3(b.edge, m), va, vb)
					if dev > maxd {
						maxd = dev
						maxi = m
					}
				}
				// If the max deviation is larger than accepted error,
				// add new point, else continue to next segment.
				if maxi != -1 && maxd > b.sampleMaxError*b.sampleMaxError {
					idx = append(idx, 0)
					copy(idx[k+2:], idx[k+1:])
					idx[k+1] = maxi
				} else {
					k++
				}
			}

			b.hull = append(b.hull, j)
			// Add new vertices.
			if swapped {
				for k := len(idx) - 2; k > 0; k-- {
					copy(b.verts[nverts*3:nverts*3+3], common.GetVert3(b.edge, idx[k]))
					b.hull = append(b.hull, nverts)
					nverts++
				}
			} else {
				for k := 1; k < len(idx)-1; k++ {
					copy(b.verts[nverts*3:nverts*3+3], common.GetVert3(b.edge, idx[k]))
					b.hull = append(b.hull, nverts)
					nverts++
				}
			}
		}
	} else {
		for i := 0; i < nin; i++ {
			b.hull = append(b.hull, i)
		}
	}

	// If the polygon minimum extent is small (sliver or small triangle), do not try to add internal points.
	if minExtent < sampleDist*2 {
		b.tris = triangulateHull(b.verts, b.hull, nin, b.tris)
		return nverts, nil
	}

	// Tessellate the base mesh.
	// We're using the triangulateHull instead of delaunayHull as it tends to
	// create a bit better triangulation for long thin triangles when there
	// are no internal points.
	b.tris = triangulateHull(b.verts, b.hull, nin, b.tris)

	if len(b.tris) == 0 {
		// Could not triangulate the poly, make sure there is some valid data there.
		warn(b.ctx, fmt.Sprintf("buildPolyDetail: Could not triangulate polygon (%d verts).", nverts))
		return nverts, nil
	}

	if sampleDist > 0 {
		// Create sample locations in a grid.
		var bmin, bmax common.Vec3
		copy(bmin[:], in[:3])
		copy(bmax[:], in[:3])
		for i := 1; i < nin; i++ {
			common.Vmin(bmin[:], common.GetVert3(in, i))
			common.Vmax(bmax[:], common.GetVert3(in, i))
		}
		x0 := int(math.Floor(bmin[0] / sampleDist))
		x1 := int(math.Ceil(bmax[0] / sampleDist))
		z0 := int(math.Floor(bmin[2] / sampleDist))
		z1 := int(math.Ceil(bmax[2] / sampleDist))
		b.samples = b.samples[:0]
		for z := z0; z < z1; z++ {
			for x := x0; x < x1; x++ {
				pt := common.Vec3{float64(x) * sampleDist, (bmax[1] + bmin[1]) * 0.5, float64(z) * sampleDist}
				// Make sure the samples are not too close to the edges.
				if distToPoly(nin, in, pt[:]) > -sampleDist/2 {
					continue
				}
				b.samples = append(b.samples, x, getHeight(pt[0], pt[1], pt[2], ics, chf.Ch, b.heightSearchRadius, hp), z, 0)
			}
		}

		// Add the samples starting from the one that has the most
		// error. The procedure stops when all samples are added
		// or when the max error is within threshold.
		nsamples := len(b.samples) / 4
		for iter := 0; iter < nsamples; iter++ {
			if nverts >= MAX_VERTS {
				break
			}

			// Find sample with most error.
			var bestpt common.Vec3
			bestd := 0.0
			besti := -1
			for i := 0; i < nsamples; i++ {
				s := b.samples[i*4 : i*4+4]
				if s[3] != 0 {
					continue // skip added.
				}
				// The sample location is jittered to get rid of some bad triangulations
				// which are cause by symmetrical data from the grid structure.
				pt := common.Vec3{
					float64(s[0])*sampleDist + getJitterX(i)*cs*0.1,
					float64(s[1]) * chf.Ch,
					float64(s[2])*sampleDist + getJitterY(i)*cs*0.1,
				}
				d := distToTriMesh(pt[:], b.verts[:nverts*3], b.tris)
				if d < 0 {
					continue // did not hit the mesh.
				}
				if d > bestd {
					bestd = d
					besti = i
					bestpt = pt
				}
			}
			// If the max error is within accepted threshold, stop tessellating.
			if bestd <= b.sampleMaxError || besti == -1 {
				break
			}
			// Mark sample as added.
			b.samples[besti*4+3] = 1
			// Add the new sample point.
			copy(b.verts[nverts*3:nverts*3+3], bestpt[:])
			nverts++

			// Create new triangulation.
			var err error
			if b.tris, err = delaunayHull(nverts, b.verts, b.hull, b.tris); err != nil {
				return nverts, err
			}
		}
	}

	if ntris := len(b.tris) / 4; ntris > MAX_TRIS {
		b.tris = b.tris[:MAX_TRIS*4]
		warn(b.ctx, fmt.Sprintf("rcBuildPolyMeshDetail: Shrinking triangle count from %d to max %d.", ntris, MAX_TRIS))
	}
	return nverts, nil
}

// seedArrayWithPolyCenter seeds the height patch from the span closest to
// the polygon's centre, reached by a depth-first walk from the span nearest
// to one of its vertices. When the walk stalls the last reached span is used.
func seedArrayWithPolyCenter(ctx Telemetry, chf *RcCompactHeightfield, poly []int, npoly int, verts []int, bs int, hp *rcHeightPatch, array []int) []int {
	// Note: Reads to the compact heightfield are offset by border size (bs)
	// since border size offset is already removed from the polymesh vertices.

	startCellX, startCellZ := 0, 0
	startSpanIndex := -1
	dmin := RC_UNSET_HEIGHT
	for j := 0; j < npoly && dmin > 0; j++ {
		pv := common.GetVert3(verts, poly[j])
		for k := 0; k < 9 && dmin > 0; k++ {
			ax := pv[0] + seedOffset[k*2]
			ay := pv[1]
			az := pv[2] + seedOffset[k*2+1]
			if ax < hp.xmin || ax >= hp.xmin+hp.width || az < hp.ymin || az >= hp.ymin+hp.height {
				continue
			}
			c := (ax + bs) + (az+bs)*chf.Width
			for i := chf.Index[c]; i < chf.EndIndex[c] && dmin > 0; i++ {
				d := common.Abs(ay - chf.Spans[i].Y)
				if d < dmin {
					startCellX = ax
					startCellZ = az
					startSpanIndex = i
					dmin = d
				}
			}
		}
	}
	if startSpanIndex == -1 {
		warn(ctx, "seedArrayWithPolyCenter: no span found under the polygon.")
		return array[:0]
	}

	// Find center of the polygon
	pcx, pcz := 0, 0
	for j := 0; j < npoly; j++ {
		pcx += verts[poly[j]*3]
		pcz += verts[poly[j]*3+2]
	}
	pcx /= npoly
	pcz /= npoly

	array = append(array[:0], startCellX, startCellZ, startSpanIndex)

	dirs := [4]int{0, 1, 2, 3}
	hp.reset(0)
	// DFS to move to the center. Note that we need a DFS here and can not just move
	// directly towards the center without recording intermediate nodes, even though the polygons
	// are convex. In very rare we can get stuck due to contour simplification if we do not
	// record nodes.
	cx, cz, ci := -1, -1, -1
	for {
		if len(array) < 3 {
			warn(ctx, "Walk towards polygon center failed to reach center")
			break
		}
		n := len(array)
		cx, cz, ci = array[n-3], array[n-2], array[n-1]
		array = array[:n-3]

		if cx == pcx && cz == pcz {
			break
		}

		// If we are already at the correct X-position, prefer direction
		// directly towards the center in the Y-axis; otherwise prefer
		// direction in the X-axis
		var directDir int
		if cx == pcx {
			if pcz > cz {
				directDir = common.GetDirForOffset(0, 1)
			} else {
				directDir = common.GetDirForOffset(0, -1)
			}
		} else if pcx > cx {
			directDir = common.GetDirForOffset(1, 0)
		} else {
			directDir = common.GetDirForOffset(-1, 0)
		}

		// Push the direct dir last so we start with this on next iteration
		dirs[directDir], dirs[3] = dirs[3], dirs[directDir]

		cs := &chf.Spans[ci]
		for _, dir := range dirs {
			if RcGetCon(cs, dir) == RC_NOT_CONNECTED {
				continue
			}
			newX := cx + common.GetDirOffsetX(dir)
			newZ := cz + common.GetDirOffsetY(dir)

			hpx := newX - hp.xmin
			hpz := newZ - hp.ymin
			if hpx < 0 || hpx >= hp.width || hpz < 0 || hpz >= hp.height {
				continue
			}
			if hp.data[hpx+hpz*hp.width] != 0 {
				continue
			}
			hp.data[hpx+hpz*hp.width] = 1
			array = append(array, newX, newZ, chf.Index[(newX+bs)+(newZ+bs)*chf.Width]+RcGetCon(cs, dir))
		}

		dirs[directDir], dirs[3] = dirs[3], dirs[directDir]
	}

	// getHeightData seeds are given in coordinates with borders
	array = append(array[:0], cx+bs, cz+bs, ci)

	hp.reset(RC_UNSET_HEIGHT)
	hp.data[cx-hp.xmin+(cz-hp.ymin)*hp.width] = chf.Spans[ci].Y
	return array
}

// getHeightData fills hp with span heights under the polygon by flooding out
// from same-region border spans, or from the polygon centre when the polygon
// spans several regions.
func getHeightData(ctx Telemetry, chf *RcCompactHeightfield, poly []int, npoly int, verts []int, bs int, hp *rcHeightPatch, queue []int, region int) []int {
	// Note: Reads to the compact heightfield are offset by border size (bs)
	// since border size offset is already removed from the polymesh vertices.
	queue = queue[:0]
	hp.reset(RC_UNSET_HEIGHT)

	empty := true

	// We cannot sample from this poly if it was created from polys
	// of different regions. If it was then it could potentially be overlapping
	// with polys of that region and the heights sampled here could be wrong.
	if region != RC_MULTIPLE_REGS {
		// Copy the height from the same region, and mark region borders
		// as seed points to fill the rest.
		for hz := 0; hz < hp.height; hz++ {
			z := hp.ymin + hz + bs
			for hx := 0; hx < hp.width; hx++ {
				x := hp.xmin + hx + bs
				c := x + z*chf.Width
				for i := chf.Index[c]; i < chf.EndIndex[c]; i++ {
					s := &chf.Spans[i]
					if s.Reg != region {
						continue
					}
					// Store height
					hp.data[hx+hz*hp.width] = s.Y
					empty = false

					// If any of the neighbours is not in same region,
					// add the current location as flood fill start
					border := false
					for dir := 0; dir < 4; dir++ {
						if RcGetCon(s, dir) != RC_NOT_CONNECTED {
							_, _, ai := chf.neighbour(x, z, i, dir)
							if chf.Spans[ai].Reg != region {
								border = true
								break
							}
						}
					}
					if border {
						queue = append(queue, x, z, i)
					}
					break
				}
			}
		}
	}

	// if the polygon does not contain any points from the current region (rare, but happens)
	// or if it could potentially be overlapping polygons of the same region,
	// then use the center as the seed point.
	if empty {
		queue = seedArrayWithPolyCenter(ctx, chf, poly, npoly, verts, bs, hp, queue)
	}

	// We assume the seed is centered in the polygon, so a BFS to collect
	// height data will ensure we do not move onto overlapping polygons and
	// sample wrong heights.
	for head := 0; head < len(queue); head += 3 {
		cx, cz, ci := queue[head], queue[head+1], queue[head+2]
		cs := &chf.Spans[ci]
		for dir := 0; dir < 4; dir++ {
			if RcGetCon(cs, dir) == RC_NOT_CONNECTED {
				continue
			}
			ax, az, ai := chf.neighbour(cx, cz, ci, dir)
			hx := ax - hp.xmin - bs
			hz := az - hp.ymin - bs
			if hx < 0 || hz < 0 || hx >= hp.width || hz >= hp.height {
				continue
			}
			if hp.data[hx+hz*hp.width] != RC_UNSET_HEIGHT {
				continue
			}
			hp.data[hx+hz*hp.width] = chf.Spans[ai].Y
			queue = append(queue, ax, az, ai)
		}
	}
	return queue
}

// getEdgeFlags reports 1 when edge (va, vb) lies on the polygon boundary.
func getEdgeFlags(va, vb, vpoly []float64, npoly int) int {
	const thrSqr = 0.001 * 0.001
	for i, j := 0, npoly-1; i < npoly; j, i = i, i+1 {
		pj := common.GetVert3(vpoly, j)
		pi := common.GetVert3(vpoly, i)
		if distPtSeg2d(va, pj, pi) < thrSqr && distPtSeg2d(vb, pj, pi) < thrSqr {
			return 1
		}
	}
	return 0
}

func getTriFlags(va, vb, vc, vpoly []float64, npoly int) int {
	flags := getEdgeFlags(va, vb, vpoly, npoly)
	flags |= getEdgeFlags(vb, vc, vpoly, npoly) << 2
	flags |= getEdgeFlags(vc, va, vpoly, npoly) << 4
	return flags
}

// / Builds a detail mesh from the provided polygon mesh.
func RcBuildPolyMeshDetail(ctx Telemetry, mesh *RcPolyMesh, chf *RcCompactHeightfield, sampleDist, sampleMaxError float64) (*RcPolyMeshDetail, error) {
	startTimer(ctx, RC_TIMER_POLYMESHDETAIL)
	defer stopTimer(ctx, RC_TIMER_POLYMESHDETAIL)

	dmesh := &RcPolyMeshDetail{}
	if mesh.Nverts == 0 || mesh.Npolys == 0 {
		return dmesh, nil
	}

	nvp := mesh.Nvp
	cs := mesh.Cs
	ch := mesh.Ch
	orig := mesh.Bmin
	borderSize := mesh.BorderSize
	heightSearchRadius := max(1, int(math.Ceil(mesh.MaxEdgeError)))

	b := &detailBuilder{
		ctx:                ctx,
		chf:                chf,
		sampleDist:         sampleDist,
		sampleMaxError:     sampleMaxError,
		heightSearchRadius: heightSearchRadius,
		verts:              make([]float64, 256*3),
		hull:               make([]int, 0, MAX_VERTS),
		tris:               make([]int, 0, 512),
		samples:            make([]int, 0, 512),
		edge:               make([]float64, (MAX_VERTS_PER_EDGE+1)*3),
	}

	bounds := make([]int, mesh.Npolys*4)
	poly := make([]float64, nvp*3)

	// Find max size for a polygon area.
	nPolyVerts := 0
	maxhw, maxhh := 0, 0
	for i := 0; i < mesh.Npolys; i++ {
		p := mesh.Poly(i)
		xmin, xmax := chf.Width, 0
		zmin, zmax := chf.Height, 0
		for j := 0; j < nvp; j++ {
			if p[j] == RC_MESH_NULL_IDX {
				break
			}
			v := common.GetVert3(mesh.Verts, p[j])
			xmin = min(xmin, v[0])
			xmax = max(xmax, v[0])
			zmin = min(zmin, v[2])
			zmax = max(zmax, v[2])
			nPolyVerts++
		}
		xmin = max(0, xmin-1)
		xmax = min(chf.Width, xmax+1)
		zmin = max(0, zmin-1)
		zmax = min(chf.Height, zmax+1)
		bounds[i*4], bounds[i*4+1], bounds[i*4+2], bounds[i*4+3] = xmin, xmax, zmin, zmax
		if xmin >= xmax || zmin >= zmax {
			continue
		}
		maxhw = max(maxhw, xmax-xmin)
		maxhh = max(maxhh, zmax-zmin)
	}

	hp := &rcHeightPatch{data: make([]int, maxhw*maxhh)}

	dmesh.Nmeshes = mesh.Npolys
	dmesh.Meshes = make([]int, dmesh.Nmeshes*4)
	vcap := nPolyVerts + nPolyVerts/2
	dmesh.Verts = make([]float64, 0, vcap*3)
	dmesh.Tris = make([]int, 0, vcap*2*4)

	queue := make([]int, 0, 512)
	for i := 0; i < mesh.Npolys; i++ {
		p := mesh.Poly(i)

		// Store polygon vertices for processing.
		npoly := 0
		for j := 0; j < nvp; j++ {
			if p[j] == RC_MESH_NULL_IDX {
				break
			}
			v := common.GetVert3(mesh.Verts, p[j])
			poly[j*3] = float64(v[0]) * cs
			poly[j*3+1] = float64(v[1]) * ch
			poly[j*3+2] = float64(v[2]) * cs
			npoly++
		}

		// Get the height data from the area of the polygon.
		hp.xmin = bounds[i*4]
		hp.ymin = bounds[i*4+2]
		hp.width = bounds[i*4+1] - bounds[i*4]
		hp.height = bounds[i*4+3] - bounds[i*4+2]
		queue = getHeightData(ctx, chf, p, npoly, mesh.Verts, borderSize, hp, queue, mesh.Regs[i])

		// Build detail mesh.
		nverts, err := b.buildPolyDetail(poly, npoly, hp)
		if err != nil {
			return nil, fmt.Errorf("rcBuildPolyMeshDetail: polygon %d: %w", i, err)
		}

		// Move detail verts to world space.
		for j := 0; j < nverts; j++ {
			b.verts[j*3] += orig[0]
			b.verts[j*3+1] += orig[1] + chf.Ch // Is this offset necessary?
			b.verts[j*3+2] += orig[2]
		}
		// Offset poly too, will be used to flag checking.
		for j := 0; j < npoly; j++ {
			poly[j*3] += orig[0]
			poly[j*3+1] += orig[1]
			poly[j*3+2] += orig[2]
		}

		// Store detail submesh.
		ntris := len(b.tris) / 4
		dmesh.Meshes[i*4] = dmesh.Nverts
		dmesh.Meshes[i*4+1] = nverts
		dmesh.Meshes[i*4+2] = dmesh.Ntris
		dmesh.Meshes[i*4+3] = ntris

		dmesh.Verts = append(dmesh.Verts, b.verts[:nverts*3]...)
		dmesh.Nverts += nverts

		for j := 0; j < ntris; j++ {
			t := b.tris[j*4 : j*4+4]
			flags := getTriFlags(common.GetVert3(b.verts, t[0]), common.GetVert3(b.verts, t[1]), common.GetVert3(b.verts, t[2]), poly, npoly)
			dmesh.Tris = append(dmesh.Tris, t[0], t[1], t[2], flags)
		}
		dmesh.Ntris += ntris
	}
	return dmesh, nil
}

// / Merges multiple detail meshes into a single detail mesh.
func RcMergePolyMeshDetails(ctx Telemetry, meshes []*RcPolyMeshDetail) *RcPolyMeshDetail {
	startTimer(ctx, RC_TIMER_MERGE_POLYMESHDETAIL)
	defer stopTimer(ctx, RC_TIMER_MERGE_POLYMESHDETAIL)

	maxVerts, maxTris, maxMeshes := 0, 0, 0
	for _, dm := range meshes {
		if dm == nil {
			continue
		}
		maxVerts += dm.Nverts
		maxTris += dm.Ntris
		maxMeshes += dm.Nmeshes
	}

	mesh := &RcPolyMeshDetail{
		Meshes: make([]int, 0, maxMeshes*4),
		Verts:  make([]float64, 0, maxVerts*3),
		Tris:   make([]int, 0, maxTris*4),
	}

	// Merge datas.
	for _, dm := range meshes {
		if dm == nil {
			continue
		}
		for j := 0; j < dm.Nmeshes; j++ {
			src := dm.Meshes[j*4 : j*4+4]
			mesh.Meshes = append(mesh.Meshes, mesh.Nverts+src[0], src[1], mesh.Ntris+src[2], src[3])
		}
		mesh.Nmeshes += dm.Nmeshes

		mesh.Verts = append(mesh.Verts, dm.Verts[:dm.Nverts*3]...)
		mesh.Nverts += dm.Nverts

		mesh.Tris = append(mesh.Tris, dm.Tris[:dm.Ntris*4]...)
		mesh.Ntris += dm.Ntris
	}
	return mesh
}
