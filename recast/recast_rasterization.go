package recast

import (
	"math"

	"github.com/gorustyt/gorecast/common"
)

const (
	RC_AXIS_X = 0
	RC_AXIS_Y = 1
	RC_AXIS_Z = 2
)

func overlapBounds(amin, amax, bmin, bmax []float64) bool {
	return amin[0] <= bmax[0] && amax[0] >= bmin[0] &&
		amin[1] <= bmax[1] && amax[1] >= bmin[1] &&
		amin[2] <= bmax[2] && amax[2] >= bmin[2]
}

// / Divides a convex polygon of max 12 vertices into two convex polygons
// / across a separating axis. out1 receives the part below axisOffset,
// / out2 the remainder.
func dividePoly(in []float64, nin int, out1 []float64, nout1 *int, out2 []float64, nout2 *int, axisOffset float64, axis int) {
	var d [12]float64
	for i := 0; i < nin; i++ {
		d[i] = axisOffset - in[i*3+axis]
	}

	m, n := 0, 0
	for i, j := 0, nin-1; i < nin; j, i = i, i+1 {
		ina := d[j] >= 0
		inb := d[i] >= 0
		if ina != inb {
			s := d[j] / (d[j] - d[i])
			out1[m*3+0] = in[j*3+0] + (in[i*3+0]-in[j*3+0])*s
			out1[m*3+1] = in[j*3+1] + (in[i*3+1]-in[j*3+1])*s
			out1[m*3+2] = in[j*3+2] + (in[i*3+2]-in[j*3+2])*s
			copy(out2[n*3:n*3+3], out1[m*3:m*3+3])
			m++
			n++
			// Points on the dividing line were added above.
			if d[i] > 0 {
				copy(out1[m*3:m*3+3], in[i*3:i*3+3])
				m++
			} else if d[i] < 0 {
				copy(out2[n*3:n*3+3], in[i*3:i*3+3])
				n++
			}
			continue
		}
		if d[i] >= 0 {
			copy(out1[m*3:m*3+3], in[i*3:i*3+3])
			m++
			if d[i] != 0 {
				continue
			}
		}
		copy(out2[n*3:n*3+3], in[i*3:i*3+3])
		n++
	}
	*nout1 = m
	*nout2 = n
}

// rasterizeTri clips the triangle against every z-row and x-column it touches
// and adds one span per clipped cell.
func rasterizeTri(v0, v1, v2 []float64, area int, hf *RcHeightfield, bmin, bmax []float64, cs, ics, ich float64, flagMergeThr int) {
	w := hf.Width
	h := hf.Height
	var tmin, tmax [3]float64
	copy(tmin[:], v0)
	copy(tmax[:], v0)
	common.Vmin(tmin[:], v1)
	common.Vmin(tmin[:], v2)
	common.Vmax(tmax[:], v1)
	common.Vmax(tmax[:], v2)

	if !overlapBounds(bmin, bmax, tmin[:], tmax[:]) {
		return
	}
	by := bmax[1] - bmin[1]

	z0 := int((tmin[2] - bmin[2]) * ics)
	z1 := int((tmax[2] - bmin[2]) * ics)
	// -1 rather than 0 so the polygon is cut at the start of the tile.
	z0 = common.Clamp(z0, -1, h-1)
	z1 = common.Clamp(z1, 0, h-1)

	var buf [7 * 3 * 4]float64
	in := buf[0 : 7*3]
	inRow := buf[7*3 : 14*3]
	p1 := buf[14*3 : 21*3]
	p2 := buf[21*3 : 28*3]

	copy(in[0:3], v0)
	copy(in[3:6], v1)
	copy(in[6:9], v2)
	nvIn, nvRow := 3, 0

	for z := z0; z <= z1; z++ {
		cz := bmin[2] + float64(z)*cs
		dividePoly(in, nvIn, inRow, &nvRow, p1, &nvIn, cz+cs, RC_AXIS_Z)
		in, p1 = p1, in
		if nvRow < 3 || z < 0 {
			continue
		}

		minX, maxX := inRow[0], inRow[0]
		for i := 1; i < nvRow; i++ {
			minX = min(minX, inRow[i*3])
			maxX = max(maxX, inRow[i*3])
		}
		x0 := int((minX - bmin[0]) * ics)
		x1 := int((maxX - bmin[0]) * ics)
		if x1 < 0 || x0 >= w {
			continue
		}
		x0 = common.Clamp(x0, -1, w-1)
		x1 = common.Clamp(x1, 0, w-1)

		nv, nv2 := 0, nvRow
		for x := x0; x <= x1; x++ {
			cx := bmin[0] + float64(x)*cs
			dividePoly(inRow, nv2, p1, &nv, p2, &nv2, cx+cs, RC_AXIS_X)
			inRow, p2 = p2, inRow
			if nv < 3 || x < 0 {
				continue
			}

			smin, smax := p1[1], p1[1]
			for i := 1; i < nv; i++ {
				smin = min(smin, p1[i*3+1])
				smax = max(smax, p1[i*3+1])
			}
			smin -= bmin[1]
			smax -= bmin[1]
			if smax < 0 || smin > by {
				continue
			}
			smin = max(smin, 0)
			smax = min(smax, by)

			ismin := common.Clamp(int(math.Floor(smin*ich)), 0, RC_SPAN_MAX_HEIGHT)
			ismax := common.Clamp(int(math.Ceil(smax*ich)), ismin+1, RC_SPAN_MAX_HEIGHT)
			RcAddSpan(hf, x, z, ismin, ismax, area, flagMergeThr)
		}
	}
}

// RcRasterizeTriangle rasterizes a single triangle.
func RcRasterizeTriangle(ctx Telemetry, v0, v1, v2 []float64, area int, hf *RcHeightfield, flagMergeThr int) {
	startTimer(ctx, RC_TIMER_RASTERIZE_TRIANGLES)
	defer stopTimer(ctx, RC_TIMER_RASTERIZE_TRIANGLES)
	rasterizeTri(v0, v1, v2, area, hf, hf.Bmin[:], hf.Bmax[:], hf.Cs, 1.0/hf.Cs, 1.0/hf.Ch, flagMergeThr)
}

// / Rasterizes an indexed triangle mesh into the heightfield.
// / areas holds one area id per triangle.
func RcRasterizeTriangles(ctx Telemetry, verts []float64, tris []int, areas []int, hf *RcHeightfield, flagMergeThr int) {
	startTimer(ctx, RC_TIMER_RASTERIZE_TRIANGLES)
	defer stopTimer(ctx, RC_TIMER_RASTERIZE_TRIANGLES)

	ics := 1.0 / hf.Cs
	ich := 1.0 / hf.Ch
	for i := 0; i < len(tris)/3; i++ {
		v0 := common.GetVert3(verts, tris[i*3+0])
		v1 := common.GetVert3(verts, tris[i*3+1])
		v2 := common.GetVert3(verts, tris[i*3+2])
		rasterizeTri(v0, v1, v2, areas[i], hf, hf.Bmin[:], hf.Bmax[:], hf.Cs, ics, ich, flagMergeThr)
	}
}

// / Rasterizes an unindexed triangle list, three consecutive vertices per triangle.
func RcRasterizeTriangleList(ctx Telemetry, verts []float64, areas []int, hf *RcHeightfield, flagMergeThr int) {
	startTimer(ctx, RC_TIMER_RASTERIZE_TRIANGLES)
	defer stopTimer(ctx, RC_TIMER_RASTERIZE_TRIANGLES)

	ics := 1.0 / hf.Cs
	ich := 1.0 / hf.Ch
	for i := 0; i < len(verts)/9; i++ {
		v0 := common.GetVert3(verts, i*3+0)
		v1 := common.GetVert3(verts, i*3+1)
		v2 := common.GetVert3(verts, i*3+2)
		rasterizeTri(v0, v1, v2, areas[i], hf, hf.Bmin[:], hf.Bmax[:], hf.Cs, ics, ich, flagMergeThr)
	}
}
