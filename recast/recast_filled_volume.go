package recast

import (
	"math"

	"github.com/gorustyt/gorecast/common"
)

const rcFilledEpsilon = 0.00001

var boxEdges = [24]int{0, 1, 0, 2, 0, 4, 1, 3, 1, 5, 2, 3, 2, 6, 3, 7, 4, 5, 4, 6, 5, 7, 6, 7}

// cellRect is the xz footprint of one heightfield column plus the floor of
// the heightfield.
type cellRect struct {
	minx, minz, maxx, maxz float64
	y                      float64
}

// heightRange is an optional [lo, hi] interval along y.
type heightRange struct {
	lo, hi float64
	ok     bool
}

func (r heightRange) merge(o heightRange) heightRange {
	if !r.ok {
		return o
	}
	if !o.ok {
		return r
	}
	return heightRange{math.Min(r.lo, o.lo), math.Max(r.hi, o.hi), true}
}

func (r *heightRange) include(y float64) {
	if !r.ok {
		*r = heightRange{y, y, true}
		return
	}
	r.lo = math.Min(r.lo, y)
	r.hi = math.Max(r.hi, y)
}

// rasterizeFilledShape adds one span per column under bounds for which
// intersect reports a height range.
func rasterizeFilledShape(hf *RcHeightfield, bounds [6]float64, area, flagMergeThr int, intersect func(r *cellRect) heightRange) {
	if !overlapBounds(hf.Bmin[:], hf.Bmax[:], bounds[:3], bounds[3:]) {
		return
	}
	bounds[3] = math.Min(bounds[3], hf.Bmax[0])
	bounds[5] = math.Min(bounds[5], hf.Bmax[2])
	bounds[0] = math.Max(bounds[0], hf.Bmin[0])
	bounds[2] = math.Max(bounds[2], hf.Bmin[2])
	if bounds[3] <= bounds[0] || bounds[4] <= bounds[1] || bounds[5] <= bounds[2] {
		return
	}

	ics := 1.0 / hf.Cs
	ich := 1.0 / hf.Ch
	xMin := int((bounds[0] - hf.Bmin[0]) * ics)
	zMin := int((bounds[2] - hf.Bmin[2]) * ics)
	xMax := min(hf.Width-1, int((bounds[3]-hf.Bmin[0])*ics))
	zMax := min(hf.Height-1, int((bounds[5]-hf.Bmin[2])*ics))

	rect := cellRect{y: hf.Bmin[1]}
	for x := xMin; x <= xMax; x++ {
		for z := zMin; z <= zMax; z++ {
			rect.minx = float64(x)*hf.Cs + hf.Bmin[0]
			rect.minz = float64(z)*hf.Cs + hf.Bmin[2]
			rect.maxx = rect.minx + hf.Cs
			rect.maxz = rect.minz + hf.Cs
			h := intersect(&rect)
			if !h.ok {
				continue
			}
			smin := int(math.Floor((h.lo - hf.Bmin[1]) * ich))
			smax := int(math.Ceil((h.hi - hf.Bmin[1]) * ich))
			if smin == smax {
				continue
			}
			ismin := common.Clamp(smin, 0, RC_SPAN_MAX_HEIGHT)
			ismax := common.Clamp(smax, ismin+1, RC_SPAN_MAX_HEIGHT)
			RcAddSpan(hf, x, z, ismin, ismax, area, flagMergeThr)
		}
	}
}

// / Rasterizes a solid sphere into the heightfield.
func RcRasterizeSphere(ctx Telemetry, hf *RcHeightfield, center common.Vec3, radius float64, area, flagMergeThr int) {
	startTimer(ctx, RC_TIMER_RASTERIZE_SPHERE)
	defer stopTimer(ctx, RC_TIMER_RASTERIZE_SPHERE)

	bounds := [6]float64{
		center[0] - radius, center[1] - radius, center[2] - radius,
		center[0] + radius, center[1] + radius, center[2] + radius,
	}
	radiusSqr := radius * radius
	rasterizeFilledShape(hf, bounds, area, flagMergeThr, func(r *cellRect) heightRange {
		return intersectSphere(r, center, radiusSqr)
	})
}

func capsuleBounds(start, end common.Vec3, radius float64) [6]float64 {
	return [6]float64{
		math.Min(start[0], end[0]) - radius, math.Min(start[1], end[1]) - radius, math.Min(start[2], end[2]) - radius,
		math.Max(start[0], end[0]) + radius, math.Max(start[1], end[1]) + radius, math.Max(start[2], end[2]) + radius,
	}
}

// / Rasterizes a solid capsule (segment start-end swept by radius).
func RcRasterizeCapsule(ctx Telemetry, hf *RcHeightfield, start, end common.Vec3, radius float64, area, flagMergeThr int) {
	startTimer(ctx, RC_TIMER_RASTERIZE_CAPSULE)
	defer stopTimer(ctx, RC_TIMER_RASTERIZE_CAPSULE)

	axis := end.Sub(start)
	radiusSqr := radius * radius
	rasterizeFilledShape(hf, capsuleBounds(start, end, radius), area, flagMergeThr, func(r *cellRect) heightRange {
		return intersectCapsule(r, start, end, axis, radiusSqr)
	})
}

// / Rasterizes a solid cylinder with flat caps at start and end.
func RcRasterizeCylinder(ctx Telemetry, hf *RcHeightfield, start, end common.Vec3, radius float64, area, flagMergeThr int) {
	startTimer(ctx, RC_TIMER_RASTERIZE_CYLINDER)
	defer stopTimer(ctx, RC_TIMER_RASTERIZE_CYLINDER)

	axis := end.Sub(start)
	radiusSqr := radius * radius
	rasterizeFilledShape(hf, capsuleBounds(start, end, radius), area, flagMergeThr, func(r *cellRect) heightRange {
		return intersectCylinder(r, start, end, axis, radiusSqr)
	})
}

// / Rasterizes an oriented box given by its center and three half-edge vectors.
func RcRasterizeBox(ctx Telemetry, hf *RcHeightfield, center common.Vec3, halfEdges [3]common.Vec3, area, flagMergeThr int) {
	startTimer(ctx, RC_TIMER_RASTERIZE_BOX)
	defer stopTimer(ctx, RC_TIMER_RASTERIZE_BOX)

	normals := [3]common.Vec3{halfEdges[0].Normalize(), halfEdges[1].Normalize(), halfEdges[2].Normalize()}

	var verts [8]common.Vec3
	bounds := [6]float64{math.Inf(1), math.Inf(1), math.Inf(1), math.Inf(-1), math.Inf(-1), math.Inf(-1)}
	for i := range verts {
		s0, s1, s2 := -1.0, -1.0, -1.0
		if i&1 != 0 {
			s0 = 1
		}
		if i&2 != 0 {
			s1 = 1
		}
		if i&4 != 0 {
			s2 = 1
		}
		v := center.Add(halfEdges[0].Mul(s0)).Add(halfEdges[1].Mul(s1)).Add(halfEdges[2].Mul(s2))
		verts[i] = v
		for k := 0; k < 3; k++ {
			bounds[k] = math.Min(bounds[k], v[k])
			bounds[k+3] = math.Max(bounds[k+3], v[k])
		}
	}

	// Planes are (nx, ny, nz, d) with the box on the side where n.p <= d.
	var planes [6][4]float64
	for i := range planes {
		m, vi := -1.0, 0
		if i >= 3 {
			m, vi = 1.0, 7
		}
		n := normals[i%3].Mul(m)
		planes[i] = [4]float64{n[0], n[1], n[2], n.Dot(verts[vi])}
	}

	rasterizeFilledShape(hf, bounds, area, flagMergeThr, func(r *cellRect) heightRange {
		return intersectBox(r, &verts, &planes)
	})
}

// / Rasterizes a closed convex hull given as a triangle list.
func RcRasterizeConvex(ctx Telemetry, hf *RcHeightfield, verts []float64, tris []int, area, flagMergeThr int) {
	startTimer(ctx, RC_TIMER_RASTERIZE_CONVEX)
	defer stopTimer(ctx, RC_TIMER_RASTERIZE_CONVEX)

	bmin, bmax := RcCalcBounds(verts)
	bounds := [6]float64{bmin[0], bmin[1], bmin[2], bmax[0], bmax[1], bmax[2]}

	// Per triangle: the supporting plane, then two edge planes scaled so that
	// they evaluate to the barycentric coordinates u and v.
	planes := make([][4]float64, len(tris))
	triBounds := make([][4]float64, len(tris)/3)
	for i, j := 0, 0; i < len(tris); i, j = i+3, j+1 {
		a := common.Vec3Of(common.GetVert3(verts, tris[i]))
		b := common.Vec3Of(common.GetVert3(verts, tris[i+1]))
		c := common.Vec3Of(common.GetVert3(verts, tris[i+2]))

		n := b.Sub(a).Cross(c.Sub(a))
		planes[i] = [4]float64{n[0], n[1], n[2], n.Dot(a)}

		nb := n.Cross(c.Sub(b))
		s := 1.0 / (a.Dot(nb) - nb.Dot(b))
		planes[i+1] = [4]float64{nb[0] * s, nb[1] * s, nb[2] * s, nb.Dot(b) * s}

		nc := n.Cross(a.Sub(c))
		s = 1.0 / (b.Dot(nc) - nc.Dot(c))
		planes[i+2] = [4]float64{nc[0] * s, nc[1] * s, nc[2] * s, nc.Dot(c) * s}

		triBounds[j] = [4]float64{
			math.Min(math.Min(a[0], b[0]), c[0]),
			math.Min(math.Min(a[2], b[2]), c[2]),
			math.Max(math.Max(a[0], b[0]), c[0]),
			math.Max(math.Max(a[2], b[2]), c[2]),
		}
	}

	rasterizeFilledShape(hf, bounds, area, flagMergeThr, func(r *cellRect) heightRange {
		return intersectConvex(r, tris, verts, planes, triBounds)
	})
}

func intersectSphere(r *cellRect, center common.Vec3, radiusSqr float64) heightRange {
	x := math.Max(r.minx, math.Min(center[0], r.maxx))
	y := r.y
	z := math.Max(r.minz, math.Min(center[2], r.maxz))
	m := common.Vec3{x - center[0], y - center[1], z - center[2]}
	c := m.LenSqr() - radiusSqr
	if c > 0 && m[1] > 0 {
		return heightRange{}
	}
	discr := m[1]*m[1] - c
	if discr < 0 {
		return heightRange{}
	}
	discrSqrt := math.Sqrt(discr)
	tmin := math.Max(0, -m[1]-discrSqrt)
	tmax := -m[1] + discrSqrt
	return heightRange{y + tmin, y + tmax, true}
}

func intersectCapsule(r *cellRect, start, end, axis common.Vec3, radiusSqr float64) heightRange {
	s := intersectSphere(r, start, radiusSqr).merge(intersectSphere(r, end, radiusSqr))
	if axis[0]*axis[0]+axis[2]*axis[2] > rcFilledEpsilon {
		s = slabsCylinderIntersection(r, start, end, axis, radiusSqr, s)
	}
	return s
}

func intersectCylinder(r *cellRect, start, end, axis common.Vec3, radiusSqr float64) heightRange {
	s := rayCylinderIntersection(common.Vec3{
		common.Clamp(start[0], r.minx, r.maxx), r.y, common.Clamp(start[2], r.minz, r.maxz),
	}, start, axis, radiusSqr)
	s = s.merge(rayCylinderIntersection(common.Vec3{
		common.Clamp(end[0], r.minx, r.maxx), r.y, common.Clamp(end[2], r.minz, r.maxz),
	}, start, axis, radiusSqr))

	if axis[0]*axis[0]+axis[2]*axis[2] > rcFilledEpsilon {
		s = slabsCylinderIntersection(r, start, end, axis, radiusSqr, s)
	}
	if axis[1]*axis[1] > rcFilledEpsilon {
		// Project the cell corners onto both cap planes along y.
		var onStart, onEnd [4]common.Vec3
		ds := axis.Dot(start)
		de := axis.Dot(end)
		for i := 0; i < 4; i++ {
			x := r.minx
			if (i+1)&2 != 0 {
				x = r.maxx
			}
			z := r.minz
			if i&2 != 0 {
				z = r.maxz
			}
			dotAxisA := axis.Dot(common.Vec3{x, r.y, z})
			onStart[i] = common.Vec3{x, r.y + (ds-dotAxisA)/axis[1], z}
			onEnd[i] = common.Vec3{x, r.y + (de-dotAxisA)/axis[1], z}
		}
		for i := 0; i < 4; i++ {
			s = cylinderCapIntersection(start, radiusSqr, s, i, &onStart)
			s = cylinderCapIntersection(end, radiusSqr, s, i, &onEnd)
		}
	}
	return s
}

// cylinderCapIntersection clips edge i of the projected cell against the
// cap disc around center.
func cylinderCapIntersection(center common.Vec3, radiusSqr float64, s heightRange, i int, onPlane *[4]common.Vec3) heightRange {
	j := (i + 1) % 4
	// Ray against sphere intersection
	m := onPlane[i].Sub(center)
	d := onPlane[j].Sub(onPlane[i])
	dl := d.LenSqr()
	b := m.Dot(d) / dl
	c := (m.LenSqr() - radiusSqr) / dl
	discr := b*b - c
	if discr <= rcFilledEpsilon {
		return s
	}
	discrSqrt := math.Sqrt(discr)
	t1 := -b - discrSqrt
	t2 := -b + discrSqrt
	if t1 > 1 || t2 < 0 {
		return s
	}
	t1 = math.Max(0, t1)
	t2 = math.Min(1, t2)
	y1 := onPlane[i][1] + t1*d[1]
	y2 := onPlane[i][1] + t2*d[1]
	return s.merge(heightRange{math.Min(y1, y2), math.Max(y1, y2), true})
}

func slabsCylinderIntersection(r *cellRect, start, end, axis common.Vec3, radiusSqr float64, s heightRange) heightRange {
	if math.Min(start[0], end[0]) < r.minx {
		s = s.merge(rayCylinderIntersection(xSlabRayIntersection(r, start, axis, r.minx), start, axis, radiusSqr))
	}
	if math.Max(start[0], end[0]) > r.maxx {
		s = s.merge(rayCylinderIntersection(xSlabRayIntersection(r, start, axis, r.maxx), start, axis, radiusSqr))
	}
	if math.Min(start[2], end[2]) < r.minz {
		s = s.merge(rayCylinderIntersection(zSlabRayIntersection(r, start, axis, r.minz), start, axis, radiusSqr))
	}
	if math.Max(start[2], end[2]) > r.maxz {
		s = s.merge(rayCylinderIntersection(zSlabRayIntersection(r, start, axis, r.maxz), start, axis, radiusSqr))
	}
	return s
}

// xSlabRayIntersection is the 2D intersection of the axis with the plane x,
// clamped to the cell.
func xSlabRayIntersection(r *cellRect, start, direction common.Vec3, x float64) common.Vec3 {
	t := (x - start[0]) / direction[0]
	z := common.Clamp(start[2]+t*direction[2], r.minz, r.maxz)
	return common.Vec3{x, r.y, z}
}

func zSlabRayIntersection(r *cellRect, start, direction common.Vec3, z float64) common.Vec3 {
	t := (z - start[2]) / direction[2]
	x := common.Clamp(start[0]+t*direction[0], r.minx, r.maxx)
	return common.Vec3{x, r.y, z}
}

// rayCylinderIntersection intersects the vertical ray through point with the
// finite cylinder start + t*axis, t in [0, 1].
// Based on Christer Ericson's "Real-Time Collision Detection".
func rayCylinderIntersection(point, start, axis common.Vec3, radiusSqr float64) heightRange {
	m := point.Sub(start)
	// The ray direction is n = (0, 1, 0).
	md := m.Dot(axis)
	nd := axis[1]
	dd := axis.LenSqr()
	const nn = 1.0
	mn := m[1]
	a := dd - nd*nd
	k := m.LenSqr() - radiusSqr
	c := dd*k - md*md
	if math.Abs(a) < rcFilledEpsilon {
		// Segment runs parallel to cylinder axis
		if c > 0 {
			return heightRange{} // 'a' and thus the segment lie outside cylinder
		}
		// Now known that segment intersects cylinder; figure out how it intersects
		t1 := -mn / nn       // Intersect segment against 'p' endcap
		t2 := (nd - mn) / nn // Intersect segment against 'q' endcap
		return heightRange{point[1] + math.Min(t1, t2), point[1] + math.Max(t1, t2), true}
	}
	b := dd*mn - nd*md
	discr := b*b - a*c
	if discr < 0 {
		return heightRange{} // No real roots; no intersection
	}
	discSqrt := math.Sqrt(discr)
	t1 := (-b - discSqrt) / a
	t2 := (-b + discSqrt) / a

	clip := func(t float64) (float64, bool) {
		if md+t*nd < 0 {
			// Intersection outside cylinder on 'p' side
			t = -md / nd
			return t, k+t*(2*mn+t*nn) <= 0
		}
		if md+t*nd > dd {
			// Intersection outside cylinder on 'q' side
			t = (dd - md) / nd
			return t, k+dd-2*md+t*(2*(mn-nd)+t*nn) <= 0
		}
		return t, true
	}
	var ok bool
	if t1, ok = clip(t1); !ok {
		return heightRange{}
	}
	if t2, ok = clip(t2); !ok {
		return heightRange{}
	}
	return heightRange{point[1] + math.Min(t1, t2), point[1] + math.Max(t1, t2), true}
}

func intersectBox(r *cellRect, verts *[8]common.Vec3, planes *[6][4]float64) heightRange {
	var h heightRange
	// check intersection with rays starting in box vertices first
	for _, v := range verts {
		if v[0] >= r.minx && v[0] < r.maxx && v[2] >= r.minz && v[2] < r.maxz {
			h.include(v[1])
		}
	}

	// check intersection with rays starting in rectangle vertices
	for i := 0; i < 4; i++ {
		px := r.minx
		if i&1 != 0 {
			px = r.maxx
		}
		pz := r.minz
		if i&2 != 0 {
			pz = r.maxz
		}
		for j := range planes {
			if math.Abs(planes[j][1]) <= rcFilledEpsilon {
				continue
			}
			y := (planes[j][3] - px*planes[j][0] - pz*planes[j][2]) / planes[j][1]
			valid := true
			for k := range planes {
				if k != j && px*planes[k][0]+y*planes[k][1]+pz*planes[k][2] > planes[k][3] {
					valid = false
					break
				}
			}
			if valid {
				h.include(y)
			}
		}
	}

	// check intersection with box edges
	for i := 0; i < len(boxEdges); i += 2 {
		vi := verts[boxEdges[i]]
		vj := verts[boxEdges[i+1]]
		edgeSlabIntersections(r, vi, vj.Sub(vi), &h)
	}
	return h
}

// edgeSlabIntersections adds the heights where segment v+t*d crosses the
// four side planes of the cell.
func edgeSlabIntersections(r *cellRect, v, d common.Vec3, h *heightRange) {
	if math.Abs(d[0]) > rcFilledEpsilon {
		if y, ok := xSlabSegmentIntersection(r, v, d, r.minx); ok {
			h.include(y)
		}
		if y, ok := xSlabSegmentIntersection(r, v, d, r.maxx); ok {
			h.include(y)
		}
	}
	if math.Abs(d[2]) > rcFilledEpsilon {
		if y, ok := zSlabSegmentIntersection(r, v, d, r.minz); ok {
			h.include(y)
		}
		if y, ok := zSlabSegmentIntersection(r, v, d, r.maxz); ok {
			h.include(y)
		}
	}
}

func intersectConvex(r *cellRect, tris []int, verts []float64, planes, triBounds [][4]float64) heightRange {
	var h heightRange
	for tri, tr := 0, 0; tri < len(tris); tri, tr = tri+3, tr+1 {
		tb := triBounds[tr]
		if tb[0] > r.maxx || tb[2] < r.minx || tb[1] > r.maxz || tb[3] < r.minz {
			continue
		}
		if math.Abs(planes[tri][1]) < rcFilledEpsilon {
			continue
		}
		for i := 0; i < 3; i++ {
			vi := common.Vec3Of(common.GetVert3(verts, tris[tri+i]))
			vj := common.Vec3Of(common.GetVert3(verts, tris[tri+(i+1)%3]))
			// triangle vertex
			if vi[0] >= r.minx && vi[0] <= r.maxx && vi[2] >= r.minz && vi[2] <= r.maxz {
				h.include(vi[1])
			}
			// triangle slab intersection
			edgeSlabIntersections(r, vi, vj.Sub(vi), &h)
		}
		// rectangle vertex
		for i := 0; i < 4; i++ {
			p := common.Vec3{r.minx, r.y, r.minz}
			if i&1 != 0 {
				p[0] = r.maxx
			}
			if i&2 != 0 {
				p[2] = r.maxz
			}
			if y, ok := rayTriangleIntersection(p, planes[tri:tri+3]); ok {
				h.include(y)
			}
		}
	}
	if h.ok && h.lo < h.hi {
		return h
	}
	return heightRange{}
}

func xSlabSegmentIntersection(r *cellRect, v, d common.Vec3, slabX float64) (float64, bool) {
	x2 := v[0] + d[0]
	if (v[0] < slabX && x2 > slabX) || (v[0] > slabX && x2 < slabX) {
		t := (slabX - v[0]) / d[0]
		iz := v[2] + d[2]*t
		if iz >= r.minz && iz <= r.maxz {
			return v[1] + d[1]*t, true
		}
	}
	return 0, false
}

func zSlabSegmentIntersection(r *cellRect, v, d common.Vec3, slabZ float64) (float64, bool) {
	z2 := v[2] + d[2]
	if (v[2] < slabZ && z2 > slabZ) || (v[2] > slabZ && z2 < slabZ) {
		t := (slabZ - v[2]) / d[2]
		ix := v[0] + d[0]*t
		if ix >= r.minx && ix <= r.maxx {
			return v[1] + d[1]*t, true
		}
	}
	return 0, false
}

// rayTriangleIntersection intersects the vertical line through p with the
// triangle described by its supporting and barycentric planes.
func rayTriangleIntersection(p common.Vec3, planes [][4]float64) (float64, bool) {
	pl := planes[0]
	t := (pl[3] - (pl[0]*p[0] + pl[1]*p[1] + pl[2]*p[2])) / pl[1]
	s := common.Vec3{p[0], p[1] + t, p[2]}
	pu := planes[1]
	u := s[0]*pu[0] + s[1]*pu[1] + s[2]*pu[2] - pu[3]
	if u < 0 || u > 1 {
		return 0, false
	}
	pv := planes[2]
	v := s[0]*pv[0] + s[1]*pv[1] + s[2]*pv[2] - pv[3]
	if v < 0 {
		return 0, false
	}
	if 1-u-v < 0 {
		return 0, false
	}
	return s[1], true
}
