package recast

import (
	"math"
	"sort"

	"github.com/gorustyt/gorecast/common"
)

// Bits of an area id that are rewritten when no explicit mask is given.
const RC_AREA_FLAGS_MASK = 0x3f

// AreaModification overwrites the masked bits of an area id with Value.
type AreaModification struct {
	Value int
	Mask  int
}

// NewAreaModification returns a modification that replaces the whole area id.
func NewAreaModification(value int) AreaModification {
	return AreaModification{Value: value, Mask: RC_AREA_FLAGS_MASK}
}

func (m AreaModification) Apply(area int) int {
	return (m.Value & m.Mask) | (area &^ m.Mask)
}

// chamferPasses runs the two raster passes of a 2-3 chamfer distance
// transform over dist. Values are capped at limit.
func chamferPasses(chf *RcCompactHeightfield, dist []int, limit int) {
	w := chf.Width
	h := chf.Height

	relax := func(i, ai, cost int) {
		if nd := min(dist[ai]+cost, limit); nd < dist[i] {
			dist[i] = nd
		}
	}
	// step follows dir from span i, then dir2 from that neighbour.
	step := func(x, z, i, dir, dir2 int) {
		s := &chf.Spans[i]
		if RcGetCon(s, dir) == RC_NOT_CONNECTED {
			return
		}
		ax, az, ai := chf.neighbour(x, z, i, dir)
		relax(i, ai, 2)
		if RcGetCon(&chf.Spans[ai], dir2) != RC_NOT_CONNECTED {
			_, _, bi := chf.neighbour(ax, az, ai, dir2)
			relax(i, bi, 3)
		}
	}

	for z := 0; z < h; z++ {
		for x := 0; x < w; x++ {
			c := x + z*w
			for i := chf.Index[c]; i < chf.EndIndex[c]; i++ {
				step(x, z, i, 0, 3) // (-1,0) then (-1,-1)
				step(x, z, i, 3, 2) // (0,-1) then (1,-1)
			}
		}
	}
	for z := h - 1; z >= 0; z-- {
		for x := w - 1; x >= 0; x-- {
			c := x + z*w
			for i := chf.Index[c]; i < chf.EndIndex[c]; i++ {
				step(x, z, i, 2, 1) // (1,0) then (1,1)
				step(x, z, i, 1, 0) // (0,1) then (-1,1)
			}
		}
	}
}

// / Erodes the walkable area within the heightfield by the specified radius.
// / Spans closer than radius to a boundary or obstruction are marked RC_NULL_AREA.
func RcErodeWalkableArea(ctx Telemetry, radius int, chf *RcCompactHeightfield) {
	startTimer(ctx, RC_TIMER_ERODE_AREA)
	defer stopTimer(ctx, RC_TIMER_ERODE_AREA)

	w := chf.Width
	h := chf.Height
	dist := make([]int, chf.SpanCount)
	common.Fill(dist, 0xff)

	for z := 0; z < h; z++ {
		for x := 0; x < w; x++ {
			c := x + z*w
			for i := chf.Index[c]; i < chf.EndIndex[c]; i++ {
				if chf.Areas[i] == RC_NULL_AREA {
					dist[i] = 0
					continue
				}
				nc := 0
				for dir := 0; dir < 4; dir++ {
					if RcGetCon(&chf.Spans[i], dir) == RC_NOT_CONNECTED {
						break
					}
					_, _, ai := chf.neighbour(x, z, i, dir)
					if chf.Areas[ai] == RC_NULL_AREA {
						break
					}
					nc++
				}
				if nc != 4 {
					dist[i] = 0
				}
			}
		}
	}

	chamferPasses(chf, dist, 255)

	thr := radius * 2
	for i := 0; i < chf.SpanCount; i++ {
		if dist[i] < thr {
			chf.Areas[i] = RC_NULL_AREA
		}
	}
}

// / Applies a median filter to walkable area types (based on area id), removing noise.
// / Run this after the area marking and erosion passes.
func RcMedianFilterWalkableArea(ctx Telemetry, chf *RcCompactHeightfield) {
	startTimer(ctx, RC_TIMER_MEDIAN_AREA)
	defer stopTimer(ctx, RC_TIMER_MEDIAN_AREA)

	w := chf.Width
	h := chf.Height
	areas := make([]int, chf.SpanCount)

	for z := 0; z < h; z++ {
		for x := 0; x < w; x++ {
			c := x + z*w
			for i := chf.Index[c]; i < chf.EndIndex[c]; i++ {
				if chf.Areas[i] == RC_NULL_AREA {
					areas[i] = RC_NULL_AREA
					continue
				}
				var nei [9]int
				for k := range nei {
					nei[k] = chf.Areas[i]
				}
				for dir := 0; dir < 4; dir++ {
					if RcGetCon(&chf.Spans[i], dir) == RC_NOT_CONNECTED {
						continue
					}
					ax, az, ai := chf.neighbour(x, z, i, dir)
					if chf.Areas[ai] != RC_NULL_AREA {
						nei[dir*2+0] = chf.Areas[ai]
					}
					dir2 := (dir + 1) & 0x3
					if RcGetCon(&chf.Spans[ai], dir2) != RC_NOT_CONNECTED {
						_, _, bi := chf.neighbour(ax, az, ai, dir2)
						if chf.Areas[bi] != RC_NULL_AREA {
							nei[dir*2+1] = chf.Areas[bi]
						}
					}
				}
				sort.Ints(nei[:])
				areas[i] = nei[4]
			}
		}
	}
	copy(chf.Areas, areas)
}

// cellRange converts a world-space AABB to a clamped cell rectangle and a voxel y range.
// ok is false when the box misses the grid.
func (chf *RcCompactHeightfield) cellRange(bmin, bmax []float64) (minx, miny, minz, maxx, maxy, maxz int, ok bool) {
	minx = int((bmin[0] - chf.Bmin[0]) / chf.Cs)
	miny = int((bmin[1] - chf.Bmin[1]) / chf.Ch)
	minz = int((bmin[2] - chf.Bmin[2]) / chf.Cs)
	maxx = int((bmax[0] - chf.Bmin[0]) / chf.Cs)
	maxy = int((bmax[1] - chf.Bmin[1]) / chf.Ch)
	maxz = int((bmax[2] - chf.Bmin[2]) / chf.Cs)
	if maxx < 0 || minx >= chf.Width || maxz < 0 || minz >= chf.Height {
		return
	}
	minx = max(minx, 0)
	maxx = min(maxx, chf.Width-1)
	minz = max(minz, 0)
	maxz = min(maxz, chf.Height-1)
	ok = true
	return
}

// / Applies areaMod to all spans within the specified bounding box.
func RcMarkBoxArea(ctx Telemetry, bmin, bmax []float64, areaMod AreaModification, chf *RcCompactHeightfield) {
	startTimer(ctx, RC_TIMER_MARK_BOX_AREA)
	defer stopTimer(ctx, RC_TIMER_MARK_BOX_AREA)

	minx, miny, minz, maxx, maxy, maxz, ok := chf.cellRange(bmin, bmax)
	if !ok {
		return
	}
	for z := minz; z <= maxz; z++ {
		for x := minx; x <= maxx; x++ {
			c := x + z*chf.Width
			for i := chf.Index[c]; i < chf.EndIndex[c]; i++ {
				y := chf.Spans[i].Y
				if y < miny || y > maxy || chf.Areas[i] == RC_NULL_AREA {
					continue
				}
				chf.Areas[i] = areaMod.Apply(chf.Areas[i])
			}
		}
	}
}

// pointInPoly tests pt against a polygon on the xz-plane.
func pointInPoly(verts []float64, pt []float64) bool {
	nv := len(verts) / 3
	c := false
	for i, j := 0, nv-1; i < nv; j, i = i, i+1 {
		vi := verts[i*3 : i*3+3]
		vj := verts[j*3 : j*3+3]
		if (vi[2] > pt[2]) != (vj[2] > pt[2]) &&
			pt[0] < (vj[0]-vi[0])*(pt[2]-vi[2])/(vj[2]-vi[2])+vi[0] {
			c = !c
		}
	}
	return c
}

// / Applies areaMod to the spans within the specified convex polygon.
// / The y-values of verts are ignored; hmin and hmax bound the volume.
func RcMarkConvexPolyArea(ctx Telemetry, verts []float64, hmin, hmax float64, areaMod AreaModification, chf *RcCompactHeightfield) {
	startTimer(ctx, RC_TIMER_MARK_CONVEXPOLY_AREA)
	defer stopTimer(ctx, RC_TIMER_MARK_CONVEXPOLY_AREA)

	var bmin, bmax [3]float64
	copy(bmin[:], verts[:3])
	copy(bmax[:], verts[:3])
	for i := 1; i < len(verts)/3; i++ {
		common.Vmin(bmin[:], verts[i*3:i*3+3])
		common.Vmax(bmax[:], verts[i*3:i*3+3])
	}
	bmin[1] = hmin
	bmax[1] = hmax

	minx, miny, minz, maxx, maxy, maxz, ok := chf.cellRange(bmin[:], bmax[:])
	if !ok {
		return
	}
	for z := minz; z <= maxz; z++ {
		for x := minx; x <= maxx; x++ {
			pt := [3]float64{
				chf.Bmin[0] + (float64(x)+0.5)*chf.Cs,
				0,
				chf.Bmin[2] + (float64(z)+0.5)*chf.Cs,
			}
			c := x + z*chf.Width
			for i := chf.Index[c]; i < chf.EndIndex[c]; i++ {
				if chf.Areas[i] == RC_NULL_AREA {
					continue
				}
				y := chf.Spans[i].Y
				if y < miny || y > maxy {
					continue
				}
				if pointInPoly(verts, pt[:]) {
					chf.Areas[i] = areaMod.Apply(chf.Areas[i])
				}
			}
		}
	}
}

// / Applies areaMod to all spans within the specified y-axis-aligned cylinder.
func RcMarkCylinderArea(ctx Telemetry, pos []float64, r, h float64, areaMod AreaModification, chf *RcCompactHeightfield) {
	startTimer(ctx, RC_TIMER_MARK_CYLINDER_AREA)
	defer stopTimer(ctx, RC_TIMER_MARK_CYLINDER_AREA)

	bmin := [3]float64{pos[0] - r, pos[1], pos[2] - r}
	bmax := [3]float64{pos[0] + r, pos[1] + h, pos[2] + r}
	minx, miny, minz, maxx, maxy, maxz, ok := chf.cellRange(bmin[:], bmax[:])
	if !ok {
		return
	}
	r2 := r * r
	for z := minz; z <= maxz; z++ {
		for x := minx; x <= maxx; x++ {
			dx := chf.Bmin[0] + (float64(x)+0.5)*chf.Cs - pos[0]
			dz := chf.Bmin[2] + (float64(z)+0.5)*chf.Cs - pos[2]
			if dx*dx+dz*dz >= r2 {
				continue
			}
			c := x + z*chf.Width
			for i := chf.Index[c]; i < chf.EndIndex[c]; i++ {
				if chf.Areas[i] == RC_NULL_AREA {
					continue
				}
				if y := chf.Spans[i].Y; y >= miny && y <= maxy {
					chf.Areas[i] = areaMod.Apply(chf.Areas[i])
				}
			}
		}
	}
}

func safeNormalize2D(v []float64) {
	sq := v[0]*v[0] + v[2]*v[2]
	if sq > 1e-6 {
		inv := 1.0 / math.Sqrt(sq)
		v[0] *= inv
		v[2] *= inv
	}
}

// / Expands a convex polygon along its vertex normals by the given offset amount.
// / Acute convex corners are beveled. Returns nil if the result would exceed
// / maxOutVerts vertices.
func RcOffsetPoly(verts []float64, offset float64, maxOutVerts int) []float64 {
	// The limit at which a miter becomes a bevel.
	const miterLimit = 1.20

	nv := len(verts) / 3
	out := make([]float64, 0, maxOutVerts*3)
	for i := 0; i < nv; i++ {
		a := verts[((i+nv-1)%nv)*3:][:3]
		b := verts[i*3:][:3]
		c := verts[((i+1)%nv)*3:][:3]

		prevDir := [3]float64{b[0] - a[0], 0, b[2] - a[2]}
		currDir := [3]float64{c[0] - b[0], 0, c[2] - b[2]}
		safeNormalize2D(prevDir[:])
		safeNormalize2D(currDir[:])
		cross := currDir[0]*prevDir[2] - prevDir[0]*currDir[2]

		prevNx, prevNz := -prevDir[2], prevDir[0]
		currNx, currNz := -currDir[2], currDir[0]

		mx := (prevNx + currNx) * 0.5
		mz := (prevNz + currNz) * 0.5
		msq := mx*mx + mz*mz
		bevel := msq*miterLimit*miterLimit < 1.0
		if msq > 1e-6 {
			mx /= msq
			mz /= msq
		}

		if bevel && cross < 0 {
			if len(out)/3+2 > maxOutVerts {
				return nil
			}
			d := (1.0 - (prevDir[0]*currDir[0]+prevDir[2]*currDir[2])) * 0.5
			out = append(out,
				b[0]+(-prevNx+prevDir[0]*d)*offset, b[1], b[2]+(-prevNz+prevDir[2]*d)*offset,
				b[0]+(-currNx-currDir[0]*d)*offset, b[1], b[2]+(-currNz-currDir[2]*d)*offset)
			continue
		}
		if len(out)/3+1 > maxOutVerts {
			return nil
		}
		out = append(out, b[0]-mx*offset, b[1], b[2]-mz*offset)
	}
	return out
}
