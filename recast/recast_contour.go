package recast

import (
	"fmt"
	"sort"

	"github.com/gorustyt/gorecast/common"
)

const (
	/// Applied to the region id field of contour vertices in order to extract the region id.
	/// The region id field of a vertex may have several flags applied to it.  So the
	/// fields value can't be used directly.
	RC_CONTOUR_REG_MASK = 0xffff
	/// Area border flag.
	/// If a region ID has this bit set, then the associated element lies on
	/// the border of an area.
	RC_AREA_BORDER = 0x20000
	/// Border vertex flag.
	/// If a contour vertex's region ID has this bit set, the vertex will later
	/// be removed in order to match the segments and vertices at tile boundaries.
	RC_BORDER_VERTEX = 0x10000

	RC_CONTOUR_TESS_WALL_EDGES = 0x01 ///< Tessellate solid (impassable) edges during contour simplification.
	RC_CONTOUR_TESS_AREA_EDGES = 0x02 ///< Tessellate edges between areas during contour simplification.

	// Step limit of a boundary walk.
	rcMaxContourWalk = 40000
)

// / Represents a simple, non-overlapping contour in field space.
type RcContour struct {
	Verts   []int ///< Simplified contour vertex and connection data. [Size: 4 * #Nverts]
	Nverts  int   ///< The number of vertices in the simplified contour.
	Rverts  []int ///< Raw contour vertex and connection data. [Size: 4 * #Nrverts]
	Nrverts int   ///< The number of vertices in the raw contour.
	Reg     int   ///< The region id of the contour.
	Area    int   ///< The area id of the contour.
}

// / Represents a group of related contours.
type RcContourSet struct {
	Conts      []*RcContour ///< An array of the contours in the set.
	Bmin       common.Vec3  ///< The minimum bounds in world space. [(x, y, z)]
	Bmax       common.Vec3  ///< The maximum bounds in world space. [(x, y, z)]
	Cs         float64      ///< The size of each cell. (On the xz-plane.)
	Ch         float64      ///< The height of each cell. (The minimum increment along the y-axis.)
	Width      int          ///< The width of the set. (Along the x-axis in cell units.)
	Height     int          ///< The height of the set. (Along the z-axis in cell units.)
	BorderSize int          ///< The AABB border size used to generate the source data from which the contours were derived.
	MaxError   float64      ///< The max edge error that this contour set was simplified with.
}

func (cset *RcContourSet) Nconts() int { return len(cset.Conts) }

// getCornerHeight returns the highest floor around the corner clockwise of
// dir and whether the corner is a tile border vertex.
func getCornerHeight(x, z, i, dir int, chf *RcCompactHeightfield) (ch int, isBorderVertex bool) {
	s := &chf.Spans[i]
	ch = s.Y
	dirp := (dir + 1) & 0x3

	// Combine region and area codes in order to prevent
	// border vertices which are in between two areas to be removed.
	var regs [4]int
	regs[0] = s.Reg | (chf.Areas[i] << 16)

	if RcGetCon(s, dir) != RC_NOT_CONNECTED {
		ax, az, ai := chf.neighbour(x, z, i, dir)
		as := &chf.Spans[ai]
		ch = max(ch, as.Y)
		regs[1] = as.Reg | (chf.Areas[ai] << 16)
		if RcGetCon(as, dirp) != RC_NOT_CONNECTED {
			_, _, ai2 := chf.neighbour(ax, az, ai, dirp)
			as2 := &chf.Spans[ai2]
			ch = max(ch, as2.Y)
			regs[2] = as2.Reg | (chf.Areas[ai2] << 16)
		}
	}
	if RcGetCon(s, dirp) != RC_NOT_CONNECTED {
		ax, az, ai := chf.neighbour(x, z, i, dirp)
		as := &chf.Spans[ai]
		ch = max(ch, as.Y)
		regs[3] = as.Reg | (chf.Areas[ai] << 16)
		if RcGetCon(as, dir) != RC_NOT_CONNECTED {
			_, _, ai2 := chf.neighbour(ax, az, ai, dir)
			as2 := &chf.Spans[ai2]
			ch = max(ch, as2.Y)
			regs[2] = as2.Reg | (chf.Areas[ai2] << 16)
		}
	}

	// A border vertex has two same exterior cells in a row, followed by two
	// interior cells of one area, with no null region around it.
	for j := 0; j < 4; j++ {
		a := j
		b := (j + 1) & 0x3
		c := (j + 2) & 0x3
		d := (j + 3) & 0x3

		twoSameExts := (regs[a]&regs[b]&RC_BORDER_REG) != 0 && regs[a] == regs[b]
		twoInts := ((regs[c] | regs[d]) & RC_BORDER_REG) == 0
		intsSameArea := (regs[c] >> 16) == (regs[d] >> 16)
		noZeros := regs[a] != 0 && regs[b] != 0 && regs[c] != 0 && regs[d] != 0
		if twoSameExts && twoInts && intsSameArea && noZeros {
			isBorderVertex = true
			break
		}
	}
	return ch, isBorderVertex
}

// walkContour traces the raw boundary of the region owning span i, clearing
// the visited edge bits of flags.
func walkContour(x, z, i int, chf *RcCompactHeightfield, flags []int, points *common.Stack[int]) error {
	dir := 0
	for flags[i]&(1<<dir) == 0 {
		dir++
	}
	startDir := dir
	starti := i
	area := chf.Areas[i]

	for iter := 1; ; iter++ {
		if iter >= rcMaxContourWalk {
			return fmt.Errorf("walk from (%d,%d) exceeded %d steps: %w", x, z, rcMaxContourWalk, ErrContourWalk)
		}
		if flags[i]&(1<<dir) != 0 {
			// Choose the edge corner
			py, isBorderVertex := getCornerHeight(x, z, i, dir, chf)
			isAreaBorder := false
			px := x
			pz := z
			switch dir {
			case 0:
				pz++
			case 1:
				px++
				pz++
			case 2:
				px++
			}
			r := 0
			s := &chf.Spans[i]
			if RcGetCon(s, dir) != RC_NOT_CONNECTED {
				_, _, ai := chf.neighbour(x, z, i, dir)
				r = chf.Spans[ai].Reg
				if area != chf.Areas[ai] {
					isAreaBorder = true
				}
			}
			if isBorderVertex {
				r |= RC_BORDER_VERTEX
			}
			if isAreaBorder {
				r |= RC_AREA_BORDER
			}
			points.Push(px)
			points.Push(py)
			points.Push(pz)
			points.Push(r)

			flags[i] &^= 1 << dir // Remove visited edges
			dir = (dir + 1) & 0x3 // Rotate CW
		} else {
			if RcGetCon(&chf.Spans[i], dir) == RC_NOT_CONNECTED {
				// Should not happen.
				return nil
			}
			x, z, i = chf.neighbour(x, z, i, dir)
			dir = (dir + 3) & 0x3 // Rotate CCW
		}

		if starti == i && startDir == dir {
			return nil
		}
	}
}

func distancePtSeg(x, z, px, pz, qx, qz int) float64 {
	pqx := float64(qx - px)
	pqz := float64(qz - pz)
	dx := float64(x - px)
	dz := float64(z - pz)
	d := pqx*pqx + pqz*pqz
	t := pqx*dx + pqz*dz
	if d > 0 {
		t /= d
	}
	t = common.Clamp(t, 0, 1)

	dx = float64(px) + t*pqx - float64(x)
	dz = float64(pz) + t*pqz - float64(z)
	return dx*dx + dz*dz
}

// insertSimplifiedPoint inserts raw point maxi after simplified vertex i.
func insertSimplifiedPoint(simplified, points *common.Stack[int], i, maxi int) {
	at := (i + 1) * 4
	simplified.Insert(at, maxi)
	simplified.Insert(at, points.Index(maxi*4+2))
	simplified.Insert(at, points.Index(maxi*4+1))
	simplified.Insert(at, points.Index(maxi*4))
}

func simplifyContour(points, simplified *common.Stack[int], maxError float64, maxEdgeLen, buildFlags int) {
	pts := points.Data()
	pn := len(pts) / 4

	hasConnections := false
	for i := 0; i < len(pts); i += 4 {
		if pts[i+3]&RC_CONTOUR_REG_MASK != 0 {
			hasConnections = true
			break
		}
	}

	if hasConnections {
		// The contour has some portals to other regions.
		// Add a new point to every location where the region changes.
		for i := 0; i < pn; i++ {
			ii := (i + 1) % pn
			differentRegs := pts[i*4+3]&RC_CONTOUR_REG_MASK != pts[ii*4+3]&RC_CONTOUR_REG_MASK
			areaBorders := pts[i*4+3]&RC_AREA_BORDER != pts[ii*4+3]&RC_AREA_BORDER
			if differentRegs || areaBorders {
				simplified.Push(pts[i*4])
				simplified.Push(pts[i*4+1])
				simplified.Push(pts[i*4+2])
				simplified.Push(i)
			}
		}
	}

	if simplified.Len() == 0 {
		// Seed with the lower-left and upper-right vertices.
		llx, lly, llz, lli := pts[0], pts[1], pts[2], 0
		urx, ury, urz, uri := pts[0], pts[1], pts[2], 0
		for i := 0; i < len(pts); i += 4 {
			x, y, z := pts[i], pts[i+1], pts[i+2]
			if x < llx || (x == llx && z < llz) {
				llx, lly, llz, lli = x, y, z, i/4
			}
			if x > urx || (x == urx && z > urz) {
				urx, ury, urz, uri = x, y, z, i/4
			}
		}
		simplified.Push(llx)
		simplified.Push(lly)
		simplified.Push(llz)
		simplified.Push(lli)
		simplified.Push(urx)
		simplified.Push(ury)
		simplified.Push(urz)
		simplified.Push(uri)
	}

	// Add points until all raw points are within
	// error tolerance to the simplified shape.
	for i := 0; i < simplified.Len()/4; {
		ii := (i + 1) % (simplified.Len() / 4)
		sv := simplified.Data()

		ax, az, ai := sv[i*4], sv[i*4+2], sv[i*4+3]
		bx, bz, bi := sv[ii*4], sv[ii*4+2], sv[ii*4+3]

		maxd := 0.0
		maxi := -1
		var ci, cinc, endi int

		// Traverse the segment in lexilogical order so that the
		// max deviation is calculated similarly when traversing
		// opposite segments.
		if bx > ax || (bx == ax && bz > az) {
			cinc = 1
			ci = (ai + cinc) % pn
			endi = bi
		} else {
			cinc = pn - 1
			ci = (bi + cinc) % pn
			endi = ai
			ax, bx = bx, ax
			az, bz = bz, az
		}

		// Tessellate only outer edges or edges between areas.
		if pts[ci*4+3]&RC_CONTOUR_REG_MASK == 0 || pts[ci*4+3]&RC_AREA_BORDER != 0 {
			for ci != endi {
				d := distancePtSeg(pts[ci*4], pts[ci*4+2], ax, az, bx, bz)
				if d > maxd {
					maxd = d
					maxi = ci
				}
				ci = (ci + cinc) % pn
			}
		}

		if maxi != -1 && maxd > maxError*maxError {
			insertSimplifiedPoint(simplified, points, i, maxi)
		} else {
			i++
		}
	}

	// Split too long edges.
	if maxEdgeLen > 0 && buildFlags&(RC_CONTOUR_TESS_WALL_EDGES|RC_CONTOUR_TESS_AREA_EDGES) != 0 {
		for i := 0; i < simplified.Len()/4; {
			ii := (i + 1) % (simplified.Len() / 4)
			sv := simplified.Data()

			ax, az, ai := sv[i*4], sv[i*4+2], sv[i*4+3]
			bx, bz, bi := sv[ii*4], sv[ii*4+2], sv[ii*4+3]

			maxi := -1
			ci := (ai + 1) % pn

			tess := false
			// Wall edges.
			if buildFlags&RC_CONTOUR_TESS_WALL_EDGES != 0 && pts[ci*4+3]&RC_CONTOUR_REG_MASK == 0 {
				tess = true
			}
			// Edges between areas.
			if buildFlags&RC_CONTOUR_TESS_AREA_EDGES != 0 && pts[ci*4+3]&RC_AREA_BORDER != 0 {
				tess = true
			}

			if tess {
				dx := bx - ax
				dz := bz - az
				if dx*dx+dz*dz > maxEdgeLen*maxEdgeLen {
					// Round based on the segments in lexilogical order so that the
					// max tesselation is consistent regardless in which direction
					// segments are traversed.
					n := bi - ai
					if bi < ai {
						n = bi + pn - ai
					}
					if n > 1 {
						if bx > ax || (bx == ax && bz > az) {
							maxi = (ai + n/2) % pn
						} else {
							maxi = (ai + (n+1)/2) % pn
						}
					}
				}
			}

			if maxi != -1 {
				insertSimplifiedPoint(simplified, points, i, maxi)
			} else {
				i++
			}
		}
	}

	sv := simplified.Data()
	for i := 0; i < len(sv)/4; i++ {
		// The edge vertex flag is take from the current raw point,
		// and the neighbour region is take from the next raw point.
		ai := (sv[i*4+3] + 1) % pn
		bi := sv[i*4+3]
		sv[i*4+3] = (pts[ai*4+3] & (RC_CONTOUR_REG_MASK | RC_AREA_BORDER)) | (pts[bi*4+3] & RC_BORDER_VERTEX)
	}
}

// removeDegenerateSegments drops vertices equal to their successor on the
// xz-plane, or else the triangulator will get confused.
func removeDegenerateSegments(simplified *common.Stack[int]) {
	npts := simplified.Len() / 4
	for i := 0; i < npts; i++ {
		ni := common.Next(i, npts)
		sv := simplified.Data()
		if vequal(sv[i*4:], sv[ni*4:]) {
			for k := 0; k < 4; k++ {
				simplified.RemoveAt(i * 4)
			}
			npts--
		}
	}
}

func calcAreaOfPolygon2D(verts []int, nverts int) int {
	area := 0
	for i, j := 0, nverts-1; i < nverts; j, i = i, i+1 {
		vi := verts[i*4:]
		vj := verts[j*4:]
		area += vi[0]*vj[2] - vj[0]*vi[2]
	}
	return (area + 1) / 2
}

// mergeContours splices hole cb into outline ca along the diagonal ia-ib.
func mergeContours(ca, cb *RcContour, ia, ib int) {
	verts := make([]int, 0, (ca.Nverts+cb.Nverts+2)*4)

	for i := 0; i <= ca.Nverts; i++ {
		verts = append(verts, common.GetVert4(ca.Verts, (ia+i)%ca.Nverts)...)
	}
	for i := 0; i <= cb.Nverts; i++ {
		verts = append(verts, common.GetVert4(cb.Verts, (ib+i)%cb.Nverts)...)
	}

	ca.Verts = verts
	ca.Nverts = len(verts) / 4
	cb.Verts = nil
	cb.Nverts = 0
}

type rcContourHole struct {
	contour  *RcContour
	minx     int
	minz     int
	leftmost int
}

type rcContourRegion struct {
	outline *RcContour
	holes   []*rcContourHole
}

type rcPotentialDiagonal struct {
	vert int
	dist int
}

// Finds the lowest leftmost vertex of a contour.
func findLeftMostVertex(contour *RcContour) (minx, minz, leftmost int) {
	minx = contour.Verts[0]
	minz = contour.Verts[2]
	for i := 1; i < contour.Nverts; i++ {
		x := contour.Verts[i*4]
		z := contour.Verts[i*4+2]
		if x < minx || (x == minx && z < minz) {
			minx = x
			minz = z
			leftmost = i
		}
	}
	return
}

// contourInCone reports whether pj lies in the cone of outline vertex i.
func contourInCone(i, n int, verts, pj []int) bool {
	pi := common.GetVert4(verts, i)
	pi1 := common.GetVert4(verts, common.Next(i, n))
	pin1 := common.GetVert4(verts, common.Prev(i, n))

	// If P[i] is a convex vertex [ i+1 left or on (i-1,i) ].
	if leftOn(pin1, pi, pi1) {
		return left(pi, pj, pin1) && left(pj, pi, pi1)
	}
	return !(leftOn(pi, pj, pi1) && leftOn(pj, pi, pin1))
}

func intersectSegContour(d0, d1 []int, i, n int, verts []int) bool {
	for k := 0; k < n; k++ {
		k1 := common.Next(k, n)
		// Skip edges incident to i.
		if i == k || i == k1 {
			continue
		}
		p0 := common.GetVert4(verts, k)
		p1 := common.GetVert4(verts, k1)
		if vequal(d0, p0) || vequal(d1, p0) || vequal(d0, p1) || vequal(d1, p1) {
			continue
		}
		if intersect(d0, d1, p0, p1) {
			return true
		}
	}
	return false
}

func mergeRegionHoles(ctx Telemetry, region *rcContourRegion) {
	for _, hole := range region.holes {
		hole.minx, hole.minz, hole.leftmost = findLeftMostVertex(hole.contour)
	}
	// Left to right.
	sort.SliceStable(region.holes, func(a, b int) bool {
		ha, hb := region.holes[a], region.holes[b]
		if ha.minx == hb.minx {
			return ha.minz < hb.minz
		}
		return ha.minx < hb.minx
	})

	maxVerts := region.outline.Nverts
	for _, hole := range region.holes {
		maxVerts += hole.contour.Nverts
	}
	diags := make([]rcPotentialDiagonal, 0, maxVerts)

	outline := region.outline

	// Merge holes into the outline one by one.
	for i, h := range region.holes {
		hole := h.contour

		index := -1
		bestVertex := h.leftmost
		for iter := 0; iter < hole.Nverts; iter++ {
			// The 'best' vertex must be in the cone described by 3
			// consecutive vertices of the outline.
			diags = diags[:0]
			corner := common.GetVert4(hole.Verts, bestVertex)
			for j := 0; j < outline.Nverts; j++ {
				if contourInCone(j, outline.Nverts, outline.Verts, corner) {
					dx := outline.Verts[j*4] - corner[0]
					dz := outline.Verts[j*4+2] - corner[2]
					diags = append(diags, rcPotentialDiagonal{vert: j, dist: dx*dx + dz*dz})
				}
			}
			// Shortest connection first.
			sort.SliceStable(diags, func(a, b int) bool { return diags[a].dist < diags[b].dist })

			// Find a diagonal that is not intersecting the outline nor the remaining holes.
			for _, dg := range diags {
				pt := common.GetVert4(outline.Verts, dg.vert)
				isect := intersectSegContour(pt, corner, dg.vert, outline.Nverts, outline.Verts)
				for k := i; k < len(region.holes) && !isect; k++ {
					other := region.holes[k].contour
					isect = intersectSegContour(pt, corner, -1, other.Nverts, other.Verts)
				}
				if !isect {
					index = dg.vert
					break
				}
			}
			if index != -1 {
				break
			}
			// All the potential diagonals for the current vertex were intersecting, try next vertex.
			bestVertex = (bestVertex + 1) % hole.Nverts
		}

		if index == -1 {
			warn(ctx, fmt.Sprintf("mergeHoles: failed to find merge points for a hole of region %d.", hole.Reg))
			continue
		}
		mergeContours(region.outline, hole, index, bestVertex)
	}
}

// mergeHoles folds every backwards wound contour into the outline of its region.
func mergeHoles(ctx Telemetry, cset *RcContourSet, maxRegions int) error {
	winding := make([]int, len(cset.Conts))
	nholes := 0
	for i, cont := range cset.Conts {
		// If the contour is wound backwards, it is a hole.
		winding[i] = 1
		if calcAreaOfPolygon2D(cont.Verts, cont.Nverts) < 0 {
			winding[i] = -1
			nholes++
		}
	}
	if nholes == 0 {
		return nil
	}

	regions := make([]rcContourRegion, maxRegions+1)
	for i, cont := range cset.Conts {
		reg := &regions[cont.Reg]
		if winding[i] > 0 {
			if reg.outline != nil {
				return fmt.Errorf("rcBuildContours: multiple outlines for region %d: %w", cont.Reg, ErrContourOutline)
			}
			reg.outline = cont
		} else {
			reg.holes = append(reg.holes, &rcContourHole{contour: cont})
		}
	}

	for i := range regions {
		reg := &regions[i]
		if len(reg.holes) == 0 {
			continue
		}
		if reg.outline == nil {
			// The contour became self-overlapping because of
			// too aggressive simplification settings.
			return fmt.Errorf("rcBuildContours: bad outline for region %d, contour simplification is likely too aggressive: %w", i, ErrContourOutline)
		}
		mergeRegionHoles(ctx, reg)
	}
	return nil
}

// / Builds a contour set from the region outlines in the provided compact heightfield.
// /
// / The raw contours will match the region outlines exactly. maxError and
// / maxEdgeLen control how closely the simplified contours follow them.
// / Setting maxEdgeLen to zero disables the edge length feature.
func RcBuildContours(ctx Telemetry, chf *RcCompactHeightfield, maxError float64, maxEdgeLen int, buildFlags int) (*RcContourSet, error) {
	startTimer(ctx, RC_TIMER_CONTOURS)
	defer stopTimer(ctx, RC_TIMER_CONTOURS)

	w := chf.Width
	h := chf.Height
	borderSize := chf.BorderSize

	cset := &RcContourSet{
		Bmin:       chf.Bmin,
		Bmax:       chf.Bmax,
		Cs:         chf.Cs,
		Ch:         chf.Ch,
		Width:      chf.Width - chf.BorderSize*2,
		Height:     chf.Height - chf.BorderSize*2,
		BorderSize: chf.BorderSize,
		MaxError:   maxError,
	}
	if borderSize > 0 {
		// If the heightfield was build with bordersize, remove the offset.
		pad := float64(borderSize) * chf.Cs
		cset.Bmin[0] += pad
		cset.Bmin[2] += pad
		cset.Bmax[0] -= pad
		cset.Bmax[2] -= pad
	}

	flags := make([]int, chf.SpanCount)

	startTimer(ctx, RC_TIMER_CONTOURS_TRACE)
	// Mark boundaries.
	for z := 0; z < h; z++ {
		for x := 0; x < w; x++ {
			c := x + z*w
			for i := chf.Index[c]; i < chf.EndIndex[c]; i++ {
				s := &chf.Spans[i]
				if s.Reg == 0 || s.Reg&RC_BORDER_REG != 0 {
					flags[i] = 0
					continue
				}
				res := 0
				for dir := 0; dir < 4; dir++ {
					r := 0
					if RcGetCon(s, dir) != RC_NOT_CONNECTED {
						_, _, ai := chf.neighbour(x, z, i, dir)
						r = chf.Spans[ai].Reg
					}
					if r == s.Reg {
						res |= 1 << dir
					}
				}
				flags[i] = res ^ 0xf // Inverse, mark non connected edges.
			}
		}
	}
	stopTimer(ctx, RC_TIMER_CONTOURS_TRACE)

	verts := common.NewStack[int](256)
	simplified := common.NewStack[int](64)

	for z := 0; z < h; z++ {
		for x := 0; x < w; x++ {
			c := x + z*w
			for i := chf.Index[c]; i < chf.EndIndex[c]; i++ {
				if flags[i] == 0 || flags[i] == 0xf {
					flags[i] = 0
					continue
				}
				reg := chf.Spans[i].Reg
				if reg == 0 || reg&RC_BORDER_REG != 0 {
					continue
				}
				area := chf.Areas[i]

				verts.Clear()
				simplified.Clear()

				startTimer(ctx, RC_TIMER_CONTOURS_WALK)
				err := walkContour(x, z, i, chf, flags, verts)
				stopTimer(ctx, RC_TIMER_CONTOURS_WALK)
				if err != nil {
					return nil, fmt.Errorf("rcBuildContours: region %d: %w", reg, err)
				}

				startTimer(ctx, RC_TIMER_CONTOURS_SIMPLIFY)
				simplifyContour(verts, simplified, maxError, maxEdgeLen, buildFlags)
				removeDegenerateSegments(simplified)
				stopTimer(ctx, RC_TIMER_CONTOURS_SIMPLIFY)

				if simplified.Len()/4 < 3 {
					continue
				}
				cont := &RcContour{
					Verts:   append([]int(nil), simplified.Data()...),
					Nverts:  simplified.Len() / 4,
					Rverts:  append([]int(nil), verts.Data()...),
					Nrverts: verts.Len() / 4,
					Reg:     reg,
					Area:    area,
				}
				if borderSize > 0 {
					// If the heightfield was build with bordersize, remove the offset.
					for j := 0; j < cont.Nverts; j++ {
						cont.Verts[j*4] -= borderSize
						cont.Verts[j*4+2] -= borderSize
					}
					for j := 0; j < cont.Nrverts; j++ {
						cont.Rverts[j*4] -= borderSize
						cont.Rverts[j*4+2] -= borderSize
					}
				}
				cset.Conts = append(cset.Conts, cont)
			}
		}
	}

	if len(cset.Conts) > 0 {
		if err := mergeHoles(ctx, cset, chf.MaxRegions); err != nil {
			return nil, err
		}
		// Drop the holes spliced into their outlines.
		conts := cset.Conts[:0]
		for _, cont := range cset.Conts {
			if cont.Nverts > 0 {
				conts = append(conts, cont)
			}
		}
		cset.Conts = conts
	}
	return cset, nil
}
