package recast

import (
	"fmt"
	"math"

	"github.com/gorustyt/gorecast/common"
)

// Edge records are (s, t, leftFace, rightFace) quadruples.
const (
	EV_UNDEF = -1
	EV_HULL  = -2
)

func findEdge(edges []int, s, t int) int {
	for e := 0; e < len(edges); e += 4 {
		if (edges[e] == s && edges[e+1] == t) || (edges[e] == t && edges[e+1] == s) {
			return e / 4
		}
	}
	return EV_UNDEF
}

func addEdge(edges []int, maxEdges, s, t, l, r int) ([]int, error) {
	if len(edges)/4 >= maxEdges {
		return edges, fmt.Errorf("addEdge: too many edges (%d/%d): %w", len(edges)/4, maxEdges, ErrTooManyDelaunayEdges)
	}

	// Add edge if not already in the triangulation.
	if findEdge(edges, s, t) == EV_UNDEF {
		edges = append(edges, s, t, l, r)
	}
	return edges, nil
}

func updateLeftFace(edges []int, e, s, t, f int) {
	edge := edges[e*4 : e*4+4]
	if edge[0] == s && edge[1] == t && edge[2] == EV_UNDEF {
		edge[2] = f
	} else if edge[1] == s && edge[0] == t && edge[3] == EV_UNDEF {
		edge[3] = f
	}
}

func overlapSegSeg2d(a, b, c, d []float64) bool {
	a1 := common.Vcross2D(a, b, d)
	a2 := common.Vcross2D(a, b, c)
	if a1*a2 < 0 {
		a3 := common.Vcross2D(c, d, a)
		a4 := a3 + a2 - a1
		return a3*a4 < 0
	}
	return false
}

// overlapEdges reports whether segment s1-t1 crosses any edge not sharing
// one of its endpoints.
func overlapEdges(pts []float64, edges []int, s1, t1 int) bool {
	for e := 0; e < len(edges); e += 4 {
		s0 := edges[e]
		t0 := edges[e+1]
		// Same or connected edges do not overlap.
		if s0 == s1 || s0 == t1 || t0 == s1 || t0 == t1 {
			continue
		}
		if overlapSegSeg2d(common.GetVert3(pts, s0), common.GetVert3(pts, t0), common.GetVert3(pts, s1), common.GetVert3(pts, t1)) {
			return true
		}
	}
	return false
}

// circumCircle returns the xz circumcircle of the triangle. Degenerate
// triangles yield p1 with radius 0.
func circumCircle(p1, p2, p3 []float64) (c common.Vec3, r float64) {
	const eps = 1e-6
	// Calculate the circle relative to p1, to avoid some precision issues.
	var v1, v2, v3 common.Vec3
	common.Vsub(v2[:], p2, p1)
	common.Vsub(v3[:], p3, p1)

	cp := common.Vcross2D(v1[:], v2[:], v3[:])
	if math.Abs(cp) > eps {
		v1Sq := common.Vdot2D(v1[:], v1[:])
		v2Sq := common.Vdot2D(v2[:], v2[:])
		v3Sq := common.Vdot2D(v3[:], v3[:])
		c[0] = (v1Sq*(v2[2]-v3[2]) + v2Sq*(v3[2]-v1[2]) + v3Sq*(v1[2]-v2[2])) / (2 * cp)
		c[1] = 0
		c[2] = (v1Sq*(v3[0]-v2[0]) + v2Sq*(v1[0]-v3[0]) + v3Sq*(v2[0]-v1[0])) / (2 * cp)
		r = common.Vdist2D(c[:], v1[:])
		common.Vadd(c[:], c[:], p1)
		return c, r
	}
	return common.Vec3Of(p1), 0
}

func completeFacet(pts []float64, npts int, edges []int, maxEdges, nfaces, e int) ([]int, int, error) {
	const eps = 1e-5
	const tol = 0.001

	// Cache s and t.
	var s, t int
	switch {
	case edges[e*4+2] == EV_UNDEF:
		s = edges[e*4]
		t = edges[e*4+1]
	case edges[e*4+3] == EV_UNDEF:
		s = edges[e*4+1]
		t = edges[e*4]
	default:
		// Edge already completed.
		return edges, nfaces, nil
	}

	ps := common.GetVert3(pts, s)
	pt0 := common.GetVert3(pts, t)

	// Find best point on left of edge.
	pt := npts
	var c common.Vec3
	r := -1.0
	for u := 0; u < npts; u++ {
		if u == s || u == t {
			continue
		}
		pu := common.GetVert3(pts, u)
		if common.Vcross2D(ps, pt0, pu) <= eps {
			continue
		}
		if r < 0 {
			// The circle is not updated yet, do it now.
			pt = u
			c, r = circumCircle(ps, pt0, pu)
			continue
		}
		d := common.Vdist2D(c[:], pu)
		if d > r*(1+tol) {
			// Outside current circumcircle, skip.
			continue
		}
		if d >= r*(1-tol) {
			// Inside epsilon circumcircle, do extra tests to make sure the edge is valid.
			// s-u and t-u cannot overlap with s-pt nor t-pt if they exists.
			if overlapEdges(pts, edges, s, u) || overlapEdges(pts, edges, t, u) {
				continue
			}
		}
		pt = u
		c, r = circumCircle(ps, pt0, pu)
	}

	if pt >= npts {
		// s-t is on the hull.
		updateLeftFace(edges, e, s, t, EV_HULL)
		return edges, nfaces, nil
	}

	// Update face information of edge being completed.
	updateLeftFace(edges, e, s, t, nfaces)

	var err error
	// Add new edge or update face info of old edge.
	if e = findEdge(edges, pt, s); e == EV_UNDEF {
		if edges, err = addEdge(edges, maxEdges, pt, s, nfaces, EV_UNDEF); err != nil {
			return edges, nfaces, err
		}
	} else {
		updateLeftFace(edges, e, pt, s, nfaces)
	}

	// Add new edge or update face info of old edge.
	if e = findEdge(edges, t, pt); e == EV_UNDEF {
		if edges, err = addEdge(edges, maxEdges, t, pt, nfaces, EV_UNDEF); err != nil {
			return edges, nfaces, err
		}
	} else {
		updateLeftFace(edges, e, t, pt, nfaces)
	}
	return edges, nfaces + 1, nil
}

// delaunayHull triangulates the first npts points of pts constrained to the
// given hull, writing (a, b, c, flags) records into tris.
func delaunayHull(npts int, pts []float64, hull []int, tris []int) ([]int, error) {
	nfaces := 0
	maxEdges := npts * 10
	edges := make([]int, 0, 64)

	var err error
	for i, j := 0, len(hull)-1; i < len(hull); j, i = i, i+1 {
		if edges, err = addEdge(edges, maxEdges, hull[j], hull[i], EV_HULL, EV_UNDEF); err != nil {
			return tris[:0], err
		}
	}

	for currentEdge := 0; currentEdge < len(edges)/4; currentEdge++ {
		if edges[currentEdge*4+2] == EV_UNDEF {
			if edges, nfaces, err = completeFacet(pts, npts, edges, maxEdges, nfaces, currentEdge); err != nil {
				return tris[:0], err
			}
		}
		if edges[currentEdge*4+3] == EV_UNDEF {
			if edges, nfaces, err = completeFacet(pts, npts, edges, maxEdges, nfaces, currentEdge); err != nil {
				return tris[:0], err
			}
		}
	}

	// Create tris
	tris = tris[:0]
	for i := 0; i < nfaces*4; i++ {
		tris = append(tris, -1)
	}
	for e := 0; e < len(edges); e += 4 {
		if edges[e+3] >= 0 {
			// Left face
			t := tris[edges[e+3]*4:]
			if t[0] == -1 {
				t[0] = edges[e]
				t[1] = edges[e+1]
			} else if t[0] == edges[e+1] {
				t[2] = edges[e]
			} else if t[1] == edges[e] {
				t[2] = edges[e+1]
			}
		}
		if edges[e+2] >= 0 {
			// Right
			t := tris[edges[e+2]*4:]
			if t[0] == -1 {
				t[0] = edges[e+1]
				t[1] = edges[e]
			} else if t[0] == edges[e] {
				t[2] = edges[e+1]
			} else if t[1] == edges[e+1] {
				t[2] = edges[e]
			}
		}
	}

	// Remove dangling faces.
	for t := 0; t < len(tris); t += 4 {
		if tris[t] == -1 || tris[t+1] == -1 || tris[t+2] == -1 {
			copy(tris[t:t+4], tris[len(tris)-4:])
			tris = tris[:len(tris)-4]
			t -= 4
		}
	}
	return tris, nil
}
