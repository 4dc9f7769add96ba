package recast

import (
	"github.com/gorustyt/gorecast/common"
)

// Integer xz-plane predicates shared by contour hole merging and polygon
// triangulation. Vertices are (x, y, z, flags) quadruples.

const (
	rcIndexMask     = 0x0fffffff
	rcRemovableFlag = 0x80000000
)

func area2(a, b, c []int) int {
	return (b[0]-a[0])*(c[2]-a[2]) - (c[0]-a[0])*(b[2]-a[2])
}

// Returns true iff c is strictly to the left of the directed
// line through a to b.
func left(a, b, c []int) bool {
	return area2(a, b, c) < 0
}

func leftOn(a, b, c []int) bool {
	return area2(a, b, c) <= 0
}

func collinear(a, b, c []int) bool {
	return area2(a, b, c) == 0
}

// Returns true iff ab properly intersects cd: they share
// a point interior to both segments.
func intersectProp(a, b, c, d []int) bool {
	if collinear(a, b, c) || collinear(a, b, d) || collinear(c, d, a) || collinear(c, d, b) {
		return false
	}
	return (left(a, b, c) != left(a, b, d)) && (left(c, d, a) != left(c, d, b))
}

// Returns true iff (a,b,c) are collinear and point c lies
// on the closed segment ab.
func between(a, b, c []int) bool {
	if !collinear(a, b, c) {
		return false
	}
	// If ab not vertical, check betweenness on x; else on z.
	if a[0] != b[0] {
		return (a[0] <= c[0] && c[0] <= b[0]) || (a[0] >= c[0] && c[0] >= b[0])
	}
	return (a[2] <= c[2] && c[2] <= b[2]) || (a[2] >= c[2] && c[2] >= b[2])
}

// Returns true iff segments ab and cd intersect, properly or improperly.
func intersect(a, b, c, d []int) bool {
	if intersectProp(a, b, c, d) {
		return true
	}
	return between(a, b, c) || between(a, b, d) || between(c, d, a) || between(c, d, b)
}

func vequal(a, b []int) bool {
	return a[0] == b[0] && a[2] == b[2]
}

func polyVert(verts, indices []int, i int) []int {
	return common.GetVert4(verts, indices[i]&rcIndexMask)
}

// diagonalie reports whether (v_i, v_j) crosses no edge of the polygon,
// ignoring edges incident to v_i and v_j. With loose set only proper
// crossings count.
func diagonalie(i, j, n int, verts, indices []int, loose bool) bool {
	d0 := polyVert(verts, indices, i)
	d1 := polyVert(verts, indices, j)

	for k := 0; k < n; k++ {
		k1 := common.Next(k, n)
		if k == i || k1 == i || k == j || k1 == j {
			continue
		}
		p0 := polyVert(verts, indices, k)
		p1 := polyVert(verts, indices, k1)
		if vequal(d0, p0) || vequal(d1, p0) || vequal(d0, p1) || vequal(d1, p1) {
			continue
		}
		if loose {
			if intersectProp(d0, d1, p0, p1) {
				return false
			}
		} else if intersect(d0, d1, p0, p1) {
			return false
		}
	}
	return true
}

// inCone reports whether the diagonal (i,j) is internal to the polygon in
// the neighbourhood of the i endpoint.
func inCone(i, j, n int, verts, indices []int, loose bool) bool {
	pi := polyVert(verts, indices, i)
	pj := polyVert(verts, indices, j)
	pi1 := polyVert(verts, indices, common.Next(i, n))
	pin1 := polyVert(verts, indices, common.Prev(i, n))

	// If P[i] is a convex vertex [ i+1 left or on (i-1,i) ].
	if leftOn(pin1, pi, pi1) {
		if loose {
			return leftOn(pi, pj, pin1) && leftOn(pj, pi, pi1)
		}
		return left(pi, pj, pin1) && left(pj, pi, pi1)
	}
	// P[i] is reflex.
	return !(leftOn(pi, pj, pi1) && leftOn(pj, pi, pin1))
}

func diagonal(i, j, n int, verts, indices []int) bool {
	return inCone(i, j, n, verts, indices, false) && diagonalie(i, j, n, verts, indices, false)
}

func diagonalLoose(i, j, n int, verts, indices []int) bool {
	return inCone(i, j, n, verts, indices, true) && diagonalie(i, j, n, verts, indices, true)
}

// triangulate ear-clips the polygon given by indices into tris, always
// cutting the shortest available ear. It returns the triangle count, negated
// when the polygon could not be fully triangulated.
func triangulate(n int, verts, indices, tris []int) int {
	ntris := 0
	dst := 0

	// The top bit of an index marks a removable (ear tip) vertex.
	for i := 0; i < n; i++ {
		i1 := common.Next(i, n)
		i2 := common.Next(i1, n)
		if diagonal(i, i2, n, verts, indices) {
			indices[i1] |= rcRemovableFlag
		}
	}

	for n > 3 {
		minLen := -1
		mini := -1
		for i := 0; i < n; i++ {
			i1 := common.Next(i, n)
			if indices[i1]&rcRemovableFlag != 0 {
				p0 := polyVert(verts, indices, i)
				p2 := polyVert(verts, indices, common.Next(i1, n))
				dx := p2[0] - p0[0]
				dz := p2[2] - p0[2]
				l := dx*dx + dz*dz
				if minLen < 0 || l < minLen {
					minLen = l
					mini = i
				}
			}
		}

		if mini == -1 {
			// Overlapping segments in the contour; retry with a looser
			// inCone test so a diagonal along the overlap can be used.
			for i := 0; i < n; i++ {
				i1 := common.Next(i, n)
				i2 := common.Next(i1, n)
				if diagonalLoose(i, i2, n, verts, indices) {
					p0 := polyVert(verts, indices, i)
					p2 := polyVert(verts, indices, common.Next(i2, n))
					dx := p2[0] - p0[0]
					dz := p2[2] - p0[2]
					l := dx*dx + dz*dz
					if minLen < 0 || l < minLen {
						minLen = l
						mini = i
					}
				}
			}
			if mini == -1 {
				// Usually the result of too aggressive contour simplification.
				return -ntris
			}
		}

		i := mini
		i1 := common.Next(i, n)
		i2 := common.Next(i1, n)

		tris[dst] = indices[i] & rcIndexMask
		tris[dst+1] = indices[i1] & rcIndexMask
		tris[dst+2] = indices[i2] & rcIndexMask
		dst += 3
		ntris++

		// Remove P[i1].
		n--
		copy(indices[i1:n], indices[i1+1:n+1])

		if i1 >= n {
			i1 = 0
		}
		i = common.Prev(i1, n)

		if diagonal(common.Prev(i, n), i1, n, verts, indices) {
			indices[i] |= rcRemovableFlag
		} else {
			indices[i] &= rcIndexMask
		}
		if diagonal(i, common.Next(i1, n), n, verts, indices) {
			indices[i1] |= rcRemovableFlag
		} else {
			indices[i1] &= rcIndexMask
		}
	}

	tris[dst] = indices[0] & rcIndexMask
	tris[dst+1] = indices[1] & rcIndexMask
	tris[dst+2] = indices[2] & rcIndexMask
	ntris++
	return ntris
}
